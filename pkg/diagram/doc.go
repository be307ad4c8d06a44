// Package diagram runs the interactive workflow diagram.
//
// A [Diagram] owns the graph-state tree, the committed group dimensions, the
// viewport and the latest routed links. It reacts to four kinds of change:
//
//   - new workflow data ([Diagram.SetData], [Diagram.SetDocument])
//   - measured node sizes ([Diagram.Resize])
//   - collapsing or expanding a group ([Diagram.ToggleCollapse])
//   - viewport changes (zoom, committed pan, reset, fit)
//
// The first three rebuild what they affect at once and re-route after a
// short delay, so an external layout pass can settle first. A newer change
// supersedes a re-route that has not run yet. Viewport changes re-route
// immediately.
//
// User interaction is reported on the [Bus] as tagged [Event] values:
// node clicks, removal and parallel-add requests, drag start and end,
// canvas clicks, and one links.routed event per routing pass.
//
//	d := diagram.New(diagram.Options{Editable: true})
//	d.Bus().Subscribe(diagram.EventLinksRouted, func(e diagram.Event) {
//	    redraw(d.Paths())
//	})
//	d.SetData(items)
//
// Without an external [layout.BoxQuery] the diagram places nodes itself with
// [layout.Flow], which is enough for previews and tests.
package diagram
