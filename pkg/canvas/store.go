package canvas

import (
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/panelkit/panelkit/pkg/models"
	"github.com/panelkit/panelkit/pkg/registry"
)

// Store is the single in-memory source of truth for a canvas's node graph and
// selection state. All maps are unexported; mutation happens only through the
// methods below, and in the wired system only the data-flow manager calls
// them. The selection set is always a subset of existing node ids.
type Store struct {
	registry *registry.Registry

	mu        sync.RWMutex
	nodes     map[string]*models.CanvasNode
	order     []string
	selection map[string]struct{}
	dirty     bool
}

// NewStore creates an empty store. The registry supplies widget size bounds
// for layout validation; a nil registry skips type and bounds checks.
func NewStore(reg *registry.Registry) *Store {
	return &Store{
		registry:  reg,
		nodes:     make(map[string]*models.CanvasNode),
		order:     make([]string, 0),
		selection: make(map[string]struct{}),
	}
}

// AddNode places a node on the canvas. It fails with ErrDuplicateNodeID on id
// collision, ErrUnknownWidgetType when the registry does not expose the
// node's widget type, and ErrLayoutOutOfBounds when the rectangle violates
// the widget's declared footprint.
func (s *Store) AddNode(node *models.CanvasNode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.nodes[node.ID]; exists {
		return &NodeError{Op: "AddNode", NodeID: node.ID, Err: ErrDuplicateNodeID}
	}

	if err := s.checkLayout(node.WidgetType, node.Layout); err != nil {
		return &NodeError{Op: "AddNode", NodeID: node.ID, Err: err}
	}

	if node.CreatedAt.IsZero() {
		node.CreatedAt = time.Now().UTC()
	}

	if node.Config == nil {
		node.Config = make(map[string]any)
	}

	s.nodes[node.ID] = node
	s.order = append(s.order, node.ID)
	s.dirty = true

	return nil
}

// UpdateNode merges a patch into an existing node. Nil patch fields are left
// untouched; a patch config replaces keys rather than the whole map. Fails
// with ErrNodeNotFound if the id is absent.
func (s *Store) UpdateNode(id string, patch models.NodePatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, exists := s.nodes[id]
	if !exists {
		return &NodeError{Op: "UpdateNode", NodeID: id, Err: ErrNodeNotFound}
	}

	if patch.Layout != nil {
		if err := s.checkLayout(node.WidgetType, *patch.Layout); err != nil {
			return &NodeError{Op: "UpdateNode", NodeID: id, Err: err}
		}

		node.Layout = *patch.Layout
	}

	if patch.Name != nil {
		node.Name = *patch.Name
	}

	if patch.Config != nil {
		if node.Config == nil {
			node.Config = make(map[string]any, len(patch.Config))
		}

		maps.Copy(node.Config, patch.Config)
	}

	s.dirty = true

	return nil
}

// RemoveNode deletes a node and clears it from the selection set. Removing an
// absent id is a no-op.
func (s *Store) RemoveNode(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.nodes[id]; !exists {
		return
	}

	delete(s.nodes, id)
	delete(s.selection, id)
	s.order = slices.DeleteFunc(s.order, func(existing string) bool { return existing == id })
	s.dirty = true
}

// SelectNodes replaces the selection set. Ids not present in the graph are
// silently dropped, keeping the subset invariant.
func (s *Store) SelectNodes(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.selection = make(map[string]struct{}, len(ids))

	for _, id := range ids {
		if _, exists := s.nodes[id]; exists {
			s.selection[id] = struct{}{}
		}
	}

	s.dirty = true
}

// Node returns the node with the given id, or nil.
func (s *Store) Node(id string) *models.CanvasNode {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.nodes[id]
}

// Nodes returns all nodes in placement order.
func (s *Store) Nodes() []*models.CanvasNode {
	s.mu.RLock()
	defer s.mu.RUnlock()

	nodes := make([]*models.CanvasNode, 0, len(s.order))

	for _, id := range s.order {
		nodes = append(nodes, s.nodes[id])
	}

	return nodes
}

// Selection returns the selected node ids in placement order.
func (s *Store) Selection() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	selected := make([]string, 0, len(s.selection))

	for _, id := range s.order {
		if _, ok := s.selection[id]; ok {
			selected = append(selected, id)
		}
	}

	return selected
}

// HasUnsavedChanges reports whether a mutation happened since the last
// MarkSaved.
func (s *Store) HasUnsavedChanges() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.dirty
}

// MarkSaved clears the dirty flag after a successful persist.
func (s *Store) MarkSaved() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dirty = false
}

// Clear empties the canvas, the selection set and the dirty flag.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nodes = make(map[string]*models.CanvasNode)
	s.order = s.order[:0]
	s.selection = make(map[string]struct{})
	s.dirty = false
}

// Snapshot captures the current graph into a dashboard aggregate for
// persistence. Node pointers are shared, not copied; callers persist the
// snapshot before the next mutation.
func (s *Store) Snapshot(dashboard *models.Dashboard) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dashboard.Nodes = make([]*models.CanvasNode, 0, len(s.order))

	for _, id := range s.order {
		dashboard.Nodes = append(dashboard.Nodes, s.nodes[id])
	}

	dashboard.Selection = make([]string, 0, len(s.selection))

	for _, id := range s.order {
		if _, ok := s.selection[id]; ok {
			dashboard.Selection = append(dashboard.Selection, id)
		}
	}
}

// Load replaces the store contents with a persisted dashboard. Selection
// entries pointing at unknown nodes are dropped. The store comes up clean.
func (s *Store) Load(dashboard *models.Dashboard) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nodes = make(map[string]*models.CanvasNode, len(dashboard.Nodes))
	s.order = make([]string, 0, len(dashboard.Nodes))

	for _, node := range dashboard.Nodes {
		if _, exists := s.nodes[node.ID]; exists {
			continue
		}

		s.nodes[node.ID] = node
		s.order = append(s.order, node.ID)
	}

	s.selection = make(map[string]struct{}, len(dashboard.Selection))

	for _, id := range dashboard.Selection {
		if _, exists := s.nodes[id]; exists {
			s.selection[id] = struct{}{}
		}
	}

	s.dirty = false
}

func (s *Store) checkLayout(widgetType string, rect models.Rect) error {
	if s.registry == nil {
		return nil
	}

	definition := s.registry.Definition(widgetType)
	if definition == nil {
		return ErrUnknownWidgetType
	}

	if !rect.FitsLayout(definition.DefaultLayout) {
		return ErrLayoutOutOfBounds
	}

	return nil
}
