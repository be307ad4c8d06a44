package workflow

// Document is the root of a workflow file. Exactly one of Pipeline, Stages
// or Steps is expected to be set.
type Document struct {
	Pipeline *Pipeline `json:"pipeline,omitempty"`
	Stages   []Element `json:"stages,omitempty"`
	Steps    []Element `json:"steps,omitempty"`
}

// Pipeline is a named stage sequence.
type Pipeline struct {
	Identifier string    `json:"identifier,omitempty"`
	Name       string    `json:"name,omitempty"`
	Stages     []Element `json:"stages,omitempty"`
}

// Element is one entry of a stage or step sequence. A well-formed element
// sets exactly one of its fields: a plain stage, a plain step, a step group,
// or a parallel wrapper holding the members that run concurrently.
type Element struct {
	Stage     *Stage     `json:"stage,omitempty"`
	Step      *Step      `json:"step,omitempty"`
	StepGroup *StepGroup `json:"stepGroup,omitempty"`
	Parallel  []Element  `json:"parallel,omitempty"`
}

// Stage is a plain stage item.
type Stage struct {
	Identifier string       `json:"identifier"`
	Name       string       `json:"name,omitempty"`
	Type       string       `json:"type,omitempty"`
	When       *StageWhen   `json:"when,omitempty"`
	Strategy   Strategy     `json:"strategy,omitempty"`
	Template   *TemplateRef `json:"template,omitempty"`
	Spec       *StageSpec   `json:"spec,omitempty"`
}

// StageSpec carries the stage body the diagram cares about.
type StageSpec struct {
	Execution           *Execution          `json:"execution,omitempty"`
	ServiceDependencies []ServiceDependency `json:"serviceDependencies,omitempty"`
}

// Execution is the step sequence of a stage.
type Execution struct {
	Steps []Element `json:"steps,omitempty"`
}

// Step is a plain step item.
type Step struct {
	Identifier string       `json:"identifier"`
	Name       string       `json:"name,omitempty"`
	Type       string       `json:"type,omitempty"`
	When       *StepWhen    `json:"when,omitempty"`
	Strategy   Strategy     `json:"strategy,omitempty"`
	Template   *TemplateRef `json:"template,omitempty"`
}

// StepGroup wraps a nested step sequence.
type StepGroup struct {
	Identifier string       `json:"identifier"`
	Name       string       `json:"name,omitempty"`
	Steps      []Element    `json:"steps,omitempty"`
	When       *StepWhen    `json:"when,omitempty"`
	Strategy   Strategy     `json:"strategy,omitempty"`
	Template   *TemplateRef `json:"template,omitempty"`
}

// ServiceDependency is a background service started before a stage's steps.
type ServiceDependency struct {
	Identifier string         `json:"identifier"`
	Name       string         `json:"name,omitempty"`
	Type       string         `json:"type,omitempty"`
	Spec       map[string]any `json:"spec,omitempty"`
}

// TemplateRef marks an item whose body comes from a template.
type TemplateRef struct {
	TemplateRef  string `json:"templateRef"`
	VersionLabel string `json:"versionLabel,omitempty"`
}

// StageWhen is the run condition of a stage.
type StageWhen struct {
	PipelineStatus string `json:"pipelineStatus,omitempty"`
	Condition      string `json:"condition,omitempty"`
}

// StepWhen is the run condition of a step or step group.
type StepWhen struct {
	StageStatus string `json:"stageStatus,omitempty"`
	Condition   string `json:"condition,omitempty"`
}

// Strategy is a looping strategy declaration (matrix, parallelism, repeat).
// Its body is opaque to the diagram.
type Strategy map[string]any

// IsStageSequence reports whether the element list is shaped like a stage
// sequence, judged from the first element only.
func IsStageSequence(items []Element) bool {
	if len(items) == 0 {
		return false
	}
	first := items[0]
	if first.Stage != nil {
		return true
	}
	return len(first.Parallel) > 0 && first.Parallel[0].Stage != nil
}

// Valid reports whether exactly one shape is set.
func (e Element) Valid() bool {
	n := 0
	if e.Stage != nil {
		n++
	}
	if e.Step != nil {
		n++
	}
	if e.StepGroup != nil {
		n++
	}
	if len(e.Parallel) > 0 {
		n++
	}
	return n == 1
}

// Steps returns the stage's step sequence, or nil.
func (s *Stage) Steps() []Element {
	if s == nil || s.Spec == nil || s.Spec.Execution == nil {
		return nil
	}
	return s.Spec.Execution.Steps
}

// ServiceDependencies returns the stage's service dependencies, or nil.
func (s *Stage) ServiceDependencies() []ServiceDependency {
	if s == nil || s.Spec == nil {
		return nil
	}
	return s.Spec.ServiceDependencies
}

// StageList returns the top-level stage sequence of the document.
func (d *Document) StageList() []Element {
	if d.Pipeline != nil {
		return d.Pipeline.Stages
	}
	return d.Stages
}
