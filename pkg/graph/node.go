package graph

// Kind is the structural variant of a node.
type Kind string

const (
	KindStage             Kind = "Stage"
	KindStep              Kind = "Step"
	KindStepGroup         Kind = "StepGroup"
	KindServiceDependency Kind = "ServiceDependency"
)

// NodeType values assigned when the source item has no type of its own.
const (
	NodeTypeStage                  = "Stage"
	NodeTypeStep                   = "Step"
	NodeTypeStepGroup              = "StepGroup"
	NodeTypeServiceDependency      = "ServiceDependency"
	NodeTypeServiceDependencyGroup = "ServiceDependencyGroup"
)

// ServiceDependencyGroupID is the identifier of the synthetic group that
// holds a stage's service dependencies.
const ServiceDependencyGroupID = "service-dependencies"

// Terminal IDs of the synthetic nodes bounding every diagram.
const (
	TerminalStart  = "start"
	TerminalCreate = "create"
	TerminalEnd    = "end"
)

// HeaderID returns the ID of the connector anchor inside a group, where
// links that end within the group converge.
func HeaderID(groupID string) string { return groupID + "#header" }

// Status is the execution status of a node.
type Status string

const (
	StatusNotStarted       Status = "NotStarted"
	StatusWaiting          Status = "Waiting"
	StatusRunning          Status = "Running"
	StatusSuccess          Status = "Success"
	StatusFailed           Status = "Failed"
	StatusSkipped          Status = "Skipped"
	StatusAborted          Status = "Aborted"
	StatusErrored          Status = "Errored"
	StatusIgnoreFailed     Status = "IgnoreFailed"
	StatusApprovalRejected Status = "ApprovalRejected"
)

// Executed reports whether a node with this status has started running, which
// marks its outgoing links as executed.
func (s Status) Executed() bool {
	switch s {
	case StatusSuccess, StatusFailed, StatusRunning, StatusAborted,
		StatusErrored, StatusIgnoreFailed, StatusApprovalRejected:
		return true
	}
	return false
}

// Data is the metadata carried by a node. Layout and routing read only
// Steps; everything else passes through to renderers.
type Data struct {
	Path         string         `json:"path"`
	Conditional  bool           `json:"hasConditionalExecution"`
	Looping      bool           `json:"hasLoopingStrategy"`
	StrategyType string         `json:"strategyType,omitempty"`
	Template     string         `json:"templateRef,omitempty"`
	Incomplete   bool           `json:"isIncomplete"`
	Steps        []*Node        `json:"steps,omitempty"`
	Source       any            `json:"-"`
	Meta         map[string]any `json:"meta,omitempty"`
}

// Node is one element of the graph-state tree.
type Node struct {
	ID         string  `json:"id"`
	Identifier string  `json:"identifier"`
	Name       string  `json:"name,omitempty"`
	Kind       Kind    `json:"kind"`
	NodeType   string  `json:"nodeType"`
	Status     Status  `json:"status,omitempty"`
	ParentID   string  `json:"parentId,omitempty"`
	Data       Data    `json:"data"`
	Children   []*Node `json:"children,omitempty"`
}

// IsBranch reports whether the node starts a parallel fan-out.
func (n *Node) IsBranch() bool { return len(n.Children) > 0 }

// IsGroup reports whether the node carries a nested sub-sequence.
func (n *Node) IsGroup() bool { return n.Kind == KindStepGroup }

// Members returns the node followed by its parallel siblings.
func (n *Node) Members() []*Node {
	out := make([]*Node, 0, 1+len(n.Children))
	out = append(out, n)
	return append(out, n.Children...)
}

// Matrix reports whether the node repeats over a matrix strategy.
func (n *Node) Matrix() bool { return n.Data.StrategyType == "matrix" }

// Executed reports whether links leaving the node count as executed.
func (n *Node) Executed() bool { return n.Status.Executed() }
