package models

// ActionType enumerates the user actions the data-flow manager accepts.
type ActionType string

const (
	ActionAddNode             ActionType = "add-node"
	ActionUpdateNode          ActionType = "update-node"
	ActionRemoveNode          ActionType = "remove-node"
	ActionUpdateConfiguration ActionType = "update-configuration"
	ActionSelectNodes         ActionType = "select-nodes"
)

// ActionState tracks an action through the dispatch pipeline.
type ActionState string

const (
	ActionStateReceived       ActionState = "received"
	ActionStateValidated      ActionState = "validated"
	ActionStateApplied        ActionState = "applied"
	ActionStateSideEffectsRun ActionState = "side-effects-run"
	ActionStateCompleted      ActionState = "completed"
	ActionStateFailed         ActionState = "failed"
)

// UserAction is a discrete mutation request. Actions are ephemeral: built,
// dispatched through the manager's funnel and discarded once handlers ran.
type UserAction struct {
	Type     ActionType     `json:"type"      validate:"required"`
	TargetID string         `json:"target_id,omitempty"`
	Node     *CanvasNode    `json:"node,omitempty"`
	Patch    *NodePatch     `json:"patch,omitempty"`
	Config   map[string]any `json:"config,omitempty"`
	NodeIDs  []string       `json:"node_ids,omitempty"`
}

// ActionResult reports the outcome of one dispatched action. Validation and
// reference failures come back here as Err rather than being thrown across
// the API boundary.
type ActionResult struct {
	Action UserAction  `json:"action"`
	State  ActionState `json:"state"`
	Err    error       `json:"-"`
}

// OK reports whether the action completed.
func (r ActionResult) OK() bool {
	return r.State == ActionStateCompleted
}
