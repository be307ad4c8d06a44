package workflow

import "strings"

// StatusSuccess is the default run condition status for stages and steps.
const StatusSuccess = "Success"

// Strategy types recognised by the diagram.
const (
	StrategyMatrix      = "matrix"
	StrategyParallelism = "parallelism"
	StrategyRepeat      = "repeat"
)

// Conditional reports whether the stage runs under a non-default condition.
// Only "run on pipeline success with no custom expression" is unconditional;
// a stage without a when block is unconditional too.
func (w *StageWhen) Conditional() bool {
	if w == nil {
		return false
	}
	return !(w.PipelineStatus == StatusSuccess && strings.TrimSpace(w.Condition) == "")
}

// Conditional reports whether the step runs under a non-default condition.
func (w *StepWhen) Conditional() bool {
	if w == nil {
		return false
	}
	return !(w.StageStatus == StatusSuccess && strings.TrimSpace(w.Condition) == "")
}

// Declared reports whether the strategy declares any repetition.
func (s Strategy) Declared() bool { return len(s) > 0 }

// Type returns the repetition kind declared by the strategy, or "".
func (s Strategy) Type() string {
	for _, k := range []string{StrategyMatrix, StrategyParallelism, StrategyRepeat} {
		if _, ok := s[k]; ok {
			return k
		}
	}
	return ""
}
