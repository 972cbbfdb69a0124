// Package auth supplies the permission signal used to filter the widget catalog.
package auth

// RoleProvider reports whether the current session may see widgets carrying a
// given permission tag. Definitions without a tag are visible to everyone.
type RoleProvider interface {
	Role() string
	HasPermission(permission string) bool
}

// StaticProvider is a fixed-role provider with an explicit grant set.
type StaticProvider struct {
	role   string
	grants map[string]struct{}
}

// NewStaticProvider creates a provider for the given role and granted
// permission tags.
func NewStaticProvider(role string, permissions ...string) *StaticProvider {
	grants := make(map[string]struct{}, len(permissions))

	for _, p := range permissions {
		grants[p] = struct{}{}
	}

	return &StaticProvider{role: role, grants: grants}
}

func (p *StaticProvider) Role() string {
	return p.role
}

func (p *StaticProvider) HasPermission(permission string) bool {
	_, ok := p.grants[permission]

	return ok
}

// AllowAll grants every permission. It is the default when no session
// collaborator is wired.
type AllowAll struct{}

func (AllowAll) Role() string { return "admin" }

func (AllowAll) HasPermission(string) bool { return true }
