package graph

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/stagegraph/pkg/errors"
	"github.com/matzehuels/stagegraph/pkg/workflow"
)

// Mode selects how a sequence is interpreted.
type Mode int

const (
	// ModeAuto decides from the shape of the first element.
	ModeAuto Mode = iota
	ModeStages
	ModeSteps
)

// IDFunc generates node IDs.
type IDFunc func() string

// DefaultSyntheticID matches identifiers generated by editors for items the
// user has not named yet, such as "step_3f2a9c1e-55b1-4f0e-9a57-0d3c2b1a9e8f".
var DefaultSyntheticID = regexp.MustCompile(
	`^[A-Za-z]*_?[0-9a-fA-F]{8}([-_][0-9a-fA-F]{4}){3}[-_][0-9a-fA-F]{12}$`)

// Options configure a build.
type Options struct {
	// Mode forces stage or step interpretation. ModeAuto inspects the first element.
	Mode Mode
	// Path is the dot path of the sequence inside its document,
	// e.g. "pipeline.stages".
	Path string
	// IDFunc generates node IDs. Defaults to uuid.NewString.
	IDFunc IDFunc
	// Errors is the validation-error map used to flag incomplete nodes.
	Errors workflow.ErrorMap
	// Statuses maps identifiers to execution status.
	Statuses map[string]Status
	// ServiceDependencies are prepended as one group to a step sequence.
	ServiceDependencies []workflow.ServiceDependency
	// ServiceDependenciesPath is the dot path of ServiceDependencies.
	ServiceDependenciesPath string
	// SyntheticID overrides DefaultSyntheticID.
	SyntheticID *regexp.Regexp
	Logger      *log.Logger
}

type builder struct {
	opts   Options
	newID  IDFunc
	synth  *regexp.Regexp
	logger *log.Logger
}

// Build transforms a workflow sequence into the graph-state tree.
// Malformed elements are skipped and logged at debug level.
func Build(items []workflow.Element, opts Options) []*Node {
	b := &builder{opts: opts, newID: opts.IDFunc, synth: opts.SyntheticID, logger: opts.Logger}
	if b.newID == nil {
		b.newID = uuid.NewString
	}
	if b.synth == nil {
		b.synth = DefaultSyntheticID
	}
	if b.logger == nil {
		b.logger = log.New(io.Discard)
	}

	stages := opts.Mode == ModeStages || (opts.Mode == ModeAuto && workflow.IsStageSequence(items))
	nodes := b.sequence(items, stages, opts.Path, "")
	if !stages && len(opts.ServiceDependencies) > 0 {
		nodes = append([]*Node{b.serviceGroup()}, nodes...)
	}
	return nodes
}

// BuildDocument builds the top-level sequence of a document: its stages, or
// its bare step list.
func BuildDocument(doc *workflow.Document, opts Options) []*Node {
	if stages := doc.StageList(); len(stages) > 0 || doc.Pipeline != nil {
		opts.Mode = ModeStages
		if opts.Path == "" {
			opts.Path = doc.StagePath()
		}
		return Build(stages, opts)
	}
	opts.Mode = ModeSteps
	if opts.Path == "" {
		opts.Path = "steps"
	}
	return Build(doc.Steps, opts)
}

// BuildStage builds the step sequence of the stage with the given identifier,
// including its service dependencies.
func BuildStage(doc *workflow.Document, identifier string, opts Options) ([]*Node, error) {
	stage, path, err := doc.FindStage(identifier)
	if err != nil {
		return nil, err
	}
	if stage.Spec == nil {
		return nil, errors.New(errors.ErrCodeInvalidWorkflow, "stage %q has no spec", identifier)
	}
	opts.Mode = ModeSteps
	opts.Path = path
	opts.ServiceDependencies = stage.ServiceDependencies()
	opts.ServiceDependenciesPath = strings.TrimSuffix(path, ".execution.steps") + ".serviceDependencies"
	return Build(stage.Steps(), opts), nil
}

func (b *builder) sequence(items []workflow.Element, stages bool, path, parentID string) []*Node {
	nodes := make([]*Node, 0, len(items))
	for i, e := range items {
		p := strconv.Itoa(i)
		if path != "" {
			p = path + "." + p
		}
		var n *Node
		if e.Stage == nil && e.Step == nil && e.StepGroup == nil && len(e.Parallel) > 0 {
			n = b.parallel(e.Parallel, stages, p, parentID)
		} else {
			n = b.item(e, stages, p, parentID)
		}
		if n == nil {
			b.logger.Debug("skipping malformed element", "path", p)
			continue
		}
		nodes = append(nodes, n)
	}
	return nodes
}

// parallel builds a branch node from a parallel wrapper at path p. The first
// well-formed member keeps p; member k > 0 is numbered "p.parallel.(k-1)".
func (b *builder) parallel(members []workflow.Element, stages bool, p, parentID string) *Node {
	var first *Node
	for k, m := range members {
		if k == 0 {
			first = b.item(m, stages, p, parentID)
			continue
		}
		n := b.item(m, stages, fmt.Sprintf("%s.parallel.%d", p, k-1), parentID)
		switch {
		case n == nil:
			b.logger.Debug("skipping malformed parallel member", "path", p, "index", k)
		case first == nil:
			first = n
		default:
			first.Children = append(first.Children, n)
		}
	}
	return first
}

func (b *builder) item(e workflow.Element, stages bool, path, parentID string) *Node {
	if !e.Valid() || len(e.Parallel) > 0 {
		return nil
	}
	if stages {
		if e.Stage == nil {
			return nil
		}
		return b.stage(e.Stage, path, parentID)
	}
	switch {
	case e.Step != nil:
		return b.step(e.Step, path, parentID)
	case e.StepGroup != nil:
		return b.stepGroup(e.StepGroup, path, parentID)
	}
	return nil
}

func (b *builder) stage(s *workflow.Stage, path, parentID string) *Node {
	n := b.node(KindStage, s.Identifier, s.Name, orDefault(s.Type, NodeTypeStage), path, parentID)
	n.Data.Conditional = s.When.Conditional()
	b.strategy(n, s.Strategy)
	b.template(n, s.Template)
	n.Data.Source = s
	return n
}

func (b *builder) step(s *workflow.Step, path, parentID string) *Node {
	n := b.node(KindStep, s.Identifier, s.Name, orDefault(s.Type, NodeTypeStep), path, parentID)
	n.Data.Conditional = s.When.Conditional()
	b.strategy(n, s.Strategy)
	b.template(n, s.Template)
	n.Data.Source = s
	return n
}

func (b *builder) stepGroup(g *workflow.StepGroup, path, parentID string) *Node {
	n := b.node(KindStepGroup, g.Identifier, g.Name, NodeTypeStepGroup, path, parentID)
	n.Data.Conditional = g.When.Conditional()
	b.strategy(n, g.Strategy)
	b.template(n, g.Template)
	n.Data.Source = g
	n.Data.Steps = b.sequence(g.Steps, false, path+".stepGroup.steps", n.ID)
	return n
}

func (b *builder) serviceGroup() *Node {
	path := b.opts.ServiceDependenciesPath
	n := b.node(KindStepGroup, ServiceDependencyGroupID, "Service Dependencies",
		NodeTypeServiceDependencyGroup, path, "")
	n.Data.Source = b.opts.ServiceDependencies
	for i := range b.opts.ServiceDependencies {
		dep := &b.opts.ServiceDependencies[i]
		child := b.node(KindServiceDependency, dep.Identifier, dep.Name,
			orDefault(dep.Type, NodeTypeServiceDependency), fmt.Sprintf("%s.%d", path, i), n.ID)
		child.Data.Source = dep
		n.Data.Steps = append(n.Data.Steps, child)
	}
	return n
}

func (b *builder) node(kind Kind, identifier, name, nodeType, path, parentID string) *Node {
	return &Node{
		ID:         b.newID(),
		Identifier: identifier,
		Name:       name,
		Kind:       kind,
		NodeType:   nodeType,
		Status:     b.opts.Statuses[identifier],
		ParentID:   parentID,
		Data: Data{
			Path:       path,
			Incomplete: b.incomplete(identifier, path),
		},
	}
}

// incomplete reports whether the item still needs user input: its identifier
// is missing or editor-generated, or validation reported errors under its path.
func (b *builder) incomplete(identifier, path string) bool {
	if identifier == "" || b.synth.MatchString(identifier) {
		return true
	}
	return b.opts.Errors.HasPrefix(path)
}

func (b *builder) strategy(n *Node, s workflow.Strategy) {
	n.Data.Looping = s.Declared()
	n.Data.StrategyType = s.Type()
}

func (b *builder) template(n *Node, t *workflow.TemplateRef) {
	if t != nil {
		n.Data.Template = t.TemplateRef
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
