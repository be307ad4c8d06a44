// Package viewport tracks pan, zoom and drag state of a diagram and decides
// when links must be re-routed.
//
// [Controller] is a two-state machine. A primary-button press on the pan
// surface (not on a node) enters Dragging; pointer moves update the visual
// offset only, and the committed pan changes when the button is released.
// Losing focus cancels the drag and keeps the last committed pan. Committed
// pan and every scale change are reported to listeners registered with
// [Controller.OnChange]; those re-route immediately.
//
// Data changes re-route later instead: box measurements lag behind tree
// changes, so [Scheduler] runs the re-route after a short delay and replaces
// any re-route still pending.
package viewport
