// Package workflow defines the workflow description that diagrams are built
// from: stage sequences, step sequences, parallel wrappers and step groups.
//
// # Shapes
//
// A sequence is a list of elements. Each element is exactly one of:
//
//   - a plain item ([Element.Stage], [Element.Step])
//   - a parallel wrapper holding items that run concurrently
//     ([Element.Parallel])
//   - a step group wrapping its own nested step sequence
//     ([Element.StepGroup])
//
// Elements matching none of these shapes are kept as-is by [Decode]; the
// graph builder skips them so one malformed entry does not blank a diagram.
//
// # Decoding and validation
//
// [Decode] accepts JSON or YAML documents rooted at `pipeline`, `stages` or
// `steps`. [Validate] runs the embedded JSON Schema and reports violations as
// an [ErrorMap] keyed by dot-separated instance path, which is the form the
// graph builder consults when flagging incomplete nodes.
package workflow
