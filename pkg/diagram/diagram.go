package diagram

import (
	"fmt"
	"io"
	"maps"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"k8s.io/utils/clock"

	"github.com/matzehuels/stagegraph/pkg/errors"
	"github.com/matzehuels/stagegraph/pkg/graph"
	"github.com/matzehuels/stagegraph/pkg/layout"
	"github.com/matzehuels/stagegraph/pkg/observability"
	"github.com/matzehuels/stagegraph/pkg/route"
	"github.com/matzehuels/stagegraph/pkg/viewport"
	"github.com/matzehuels/stagegraph/pkg/workflow"
)

// Re-route reasons reported in [RoutePayload].
const (
	ReasonData     = "data"
	ReasonResize   = "resize"
	ReasonCollapse = "collapse"
	ReasonFlush    = "flush"
)

// Options configure a [Diagram]. The zero value is usable.
type Options struct {
	// Editable adds the create terminal.
	Editable bool
	// Build is passed to the graph builder. Its Logger defaults to the
	// diagram's.
	Build graph.Options
	// Spacing defaults to layout.DefaultSpacing.
	Spacing layout.Spacing
	// Geometry defaults to route.DefaultGeometry.
	Geometry route.Geometry
	Viewport viewport.Options
	// Query resolves boxes measured by an external layout. When nil the
	// diagram places nodes itself with layout.Flow and zooms the result.
	Query layout.BoxQuery
	// Flow adds options to the built-in placement.
	Flow []layout.FlowOption
	// Clock drives the delayed re-route. Defaults to the real clock.
	Clock clock.WithDelayedExecution
	// Delay defaults to viewport.DefaultDelay.
	Delay time.Duration
	// Now stamps events. Defaults to time.Now.
	Now    func() time.Time
	Logger *log.Logger
}

// Diagram ties the builder, the dimension aggregator, the router and the
// viewport together. Data, resize and collapse changes re-route after a
// short delay so the external layout can settle; viewport changes re-route
// at once.
type Diagram struct {
	opts   Options
	logger *log.Logger
	now    func() time.Time

	vp    *viewport.Controller
	sched *viewport.Scheduler
	bus   *Bus
	dims  *layout.Store

	mu        sync.Mutex
	nodes     []*graph.Node
	index     *graph.Index
	measured  layout.Table
	collapsed map[string]bool
	placement layout.Placement
	paths     route.Paths
	passes    int
}

// New returns an empty diagram.
func New(opts Options) *Diagram {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Spacing == (layout.Spacing{}) {
		opts.Spacing = layout.DefaultSpacing()
	}
	if opts.Geometry == (route.Geometry{}) {
		opts.Geometry = route.DefaultGeometry()
	}
	if opts.Delay <= 0 {
		opts.Delay = viewport.DefaultDelay
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Build.Logger == nil {
		opts.Build.Logger = opts.Logger
	}

	d := &Diagram{
		opts:      opts,
		logger:    opts.Logger,
		now:       opts.Now,
		vp:        viewport.NewController(opts.Viewport),
		sched:     viewport.NewScheduler(opts.Clock, opts.Delay, opts.Logger),
		bus:       NewBus(opts.Logger),
		dims:      layout.NewStore(),
		index:     graph.NewIndex(nil),
		measured:  layout.Table{},
		collapsed: map[string]bool{},
		paths:     route.Paths{},
	}
	d.vp.OnChange(func(ch viewport.Change) {
		d.Reroute("viewport." + string(ch.Reason))
	})
	return d
}

// Bus returns the event bus.
func (d *Diagram) Bus() *Bus { return d.bus }

// Viewport returns the viewport controller.
func (d *Diagram) Viewport() *viewport.Controller { return d.vp }

// Dimensions returns the committed dimension store.
func (d *Diagram) Dimensions() *layout.Store { return d.dims }

// SetData rebuilds the tree from a workflow sequence and schedules a
// re-route.
func (d *Diagram) SetData(items []workflow.Element) {
	nodes := graph.Build(items, d.opts.Build)
	d.replace(nodes, ReasonData)
}

// SetDocument rebuilds the tree from a document's top-level sequence.
func (d *Diagram) SetDocument(doc *workflow.Document) {
	nodes := graph.BuildDocument(doc, d.opts.Build)
	d.replace(nodes, ReasonData)
}

// SetStage rebuilds the tree from the steps of one stage of doc.
func (d *Diagram) SetStage(doc *workflow.Document, identifier string) error {
	nodes, err := graph.BuildStage(doc, identifier, d.opts.Build)
	if err != nil {
		return err
	}
	d.replace(nodes, ReasonData)
	return nil
}

func (d *Diagram) replace(nodes []*graph.Node, reason string) {
	d.mu.Lock()
	d.nodes = nodes
	d.index = graph.NewIndex(nodes)
	for id := range d.collapsed {
		if _, ok := d.index.Node(id); !ok {
			delete(d.collapsed, id)
		}
	}
	d.aggregateLocked()
	d.mu.Unlock()

	d.logger.Debug("built graph state", "nodes", graph.Count(nodes))
	d.schedule(reason)
}

// Resize records measured node sizes, recomputes group dimensions and
// schedules a re-route.
func (d *Diagram) Resize(measured layout.Table) {
	d.mu.Lock()
	maps.Copy(d.measured, measured)
	d.aggregateLocked()
	d.mu.Unlock()
	d.schedule(ReasonResize)
}

// ToggleCollapse flips the collapsed state of a group and reports the new
// state.
func (d *Diagram) ToggleCollapse(groupID string) (bool, error) {
	d.mu.Lock()
	n, ok := d.index.Node(groupID)
	if !ok {
		d.mu.Unlock()
		return false, errors.New(errors.ErrCodeNodeNotFound, "node %s not found", groupID)
	}
	if !n.IsGroup() {
		d.mu.Unlock()
		return false, errors.New(errors.ErrCodeInvalidInput, "node %s is not a group", groupID)
	}
	collapsed := !d.collapsed[groupID]
	if collapsed {
		d.collapsed[groupID] = true
	} else {
		delete(d.collapsed, groupID)
	}
	d.aggregateLocked()
	d.mu.Unlock()

	observability.Diagram().OnCollapse(groupID, collapsed)
	d.schedule(ReasonCollapse)
	return collapsed, nil
}

// Collapsed reports whether a group is collapsed.
func (d *Diagram) Collapsed(groupID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.collapsed[groupID]
}

// Pending reports whether a delayed re-route is waiting.
func (d *Diagram) Pending() bool { return d.sched.Pending() }

// Flush runs a pending delayed re-route now.
func (d *Diagram) Flush() {
	if d.sched.Cancel() {
		d.Reroute(ReasonFlush)
	}
}

// Close drops any pending re-route.
func (d *Diagram) Close() {
	d.sched.Cancel()
}

// Nodes returns the current tree.
func (d *Diagram) Nodes() []*graph.Node {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.nodes
}

// Paths returns the most recent routing result.
func (d *Diagram) Paths() route.Paths {
	d.mu.Lock()
	defer d.mu.Unlock()
	return maps.Clone(d.paths)
}

// Placement returns the boxes of the built-in placement at scale 1. It is
// empty when an external Query is configured.
func (d *Diagram) Placement() layout.Placement {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.placement
}

// Passes counts completed routing passes.
func (d *Diagram) Passes() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.passes
}

// Reroute routes every link now with the current viewport scale.
func (d *Diagram) Reroute(reason string) {
	vp := d.vp.Viewport()
	start := d.now()

	d.mu.Lock()
	query := d.queryLocked(vp.Scale)
	paths := route.Route(d.nodes, route.Context{
		Query:     query,
		Scale:     vp.Scale,
		Editable:  d.opts.Editable,
		Collapsed: maps.Clone(d.collapsed),
		Geometry:  d.opts.Geometry,
		Logger:    d.logger,
	})
	d.paths = paths
	d.passes++
	d.mu.Unlock()

	observability.Diagram().OnReroute(reason, len(paths), paths.Drawable(), d.now().Sub(start))
	d.logger.Debug("routed links", "reason", reason, "links", len(paths), "drawable", paths.Drawable(), "scale", vp.Scale)
	d.publish(EventLinksRouted, RoutePayload{
		Reason:   reason,
		Links:    len(paths),
		Drawable: paths.Drawable(),
		Scale:    vp.Scale,
	})
}

// Fit scales the viewport so every node and terminal fits a container of
// the given size.
func (d *Diagram) Fit(width, height float64, offset viewport.Point) error {
	scale := d.vp.Viewport().Scale
	d.mu.Lock()
	query := d.queryLocked(scale)
	ids := []string{graph.TerminalStart, graph.TerminalCreate, graph.TerminalEnd}
	graph.Walk(d.nodes, func(n, _ *graph.Node) bool {
		ids = append(ids, n.ID)
		return true
	})
	d.mu.Unlock()

	content, err := layout.Extent(query, "", ids...)
	if err != nil {
		return fmt.Errorf("fit: %w", err)
	}
	return d.vp.ScaleToFit(content, width, height, offset)
}

// Press handles a pointer press. A press on a node reports a click on it;
// a primary press on the surface starts a drag.
func (d *Diagram) Press(b viewport.Button, at viewport.Point, nodeID string) {
	if nodeID != "" {
		if p, ok := d.nodePayload(nodeID); ok {
			d.publish(EventNodeClicked, p)
		}
		return
	}
	if d.vp.PointerDown(b, viewport.TargetSurface, at) {
		d.publish(EventDragStart, DragPayload{Viewport: d.vp.Viewport()})
	}
}

// Move forwards pointer movement to the viewport.
func (d *Diagram) Move(at viewport.Point) {
	d.vp.PointerMove(at)
}

// Release ends a drag. A drag that did not move is a canvas click.
func (d *Diagram) Release() {
	before := d.vp.Viewport().Pan
	if !d.vp.PointerUp() {
		return
	}
	after := d.vp.Viewport()
	d.publish(EventDragEnd, DragPayload{Viewport: after})
	if after.Pan == before {
		d.publish(EventCanvasClicked, nil)
	}
}

// Blur cancels a drag in progress.
func (d *Diagram) Blur() {
	d.vp.Blur()
}

// RemoveNode announces that the user asked to remove a node. The owner of
// the workflow data applies the change and calls SetData.
func (d *Diagram) RemoveNode(nodeID string) error {
	p, ok := d.nodePayload(nodeID)
	if !ok {
		return errors.New(errors.ErrCodeNodeNotFound, "node %s not found", nodeID)
	}
	d.publish(EventNodeRemoved, p)
	return nil
}

// AddParallel announces that the user asked for a node running in parallel
// with nodeID.
func (d *Diagram) AddParallel(nodeID string) error {
	p, ok := d.nodePayload(nodeID)
	if !ok {
		return errors.New(errors.ErrCodeNodeNotFound, "node %s not found", nodeID)
	}
	d.publish(EventParallelNodeAdded, p)
	return nil
}

func (d *Diagram) nodePayload(id string) (NodePayload, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	n, ok := d.index.Node(id)
	if !ok {
		return NodePayload{}, false
	}
	return NodePayload{NodeID: n.ID, Identifier: n.Identifier, Path: n.Data.Path, ParentID: n.ParentID}, true
}

func (d *Diagram) publish(t EventType, payload any) {
	d.bus.Publish(Event{Type: t, Timestamp: d.now(), Payload: payload})
}

// schedule runs Reroute after the delay. The callback must not touch the
// clock: fake clocks run it while holding their own lock.
func (d *Diagram) schedule(reason string) {
	d.sched.Schedule(reason, func() { d.Reroute(reason) })
}

// aggregateLocked recomputes and commits group dimensions in one step.
func (d *Diagram) aggregateLocked() {
	d.dims.Commit(layout.Aggregate(d.nodes, d.measured, d.collapsed, d.opts.Spacing))
}

func (d *Diagram) queryLocked(scale float64) layout.BoxQuery {
	if d.opts.Query != nil {
		return d.opts.Query
	}
	opts := append([]layout.FlowOption{
		layout.WithSpacing(d.opts.Spacing),
		layout.WithCollapsed(maps.Clone(d.collapsed)),
		layout.WithMeasured(maps.Clone(d.measured)),
		layout.WithCreateTerminal(d.opts.Editable),
	}, d.opts.Flow...)
	d.placement = layout.Flow(d.nodes, opts...)
	return layout.Zoom(d.placement.Boxes, scale)
}
