package route

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/stagegraph/pkg/graph"
	"github.com/matzehuels/stagegraph/pkg/layout"
	"github.com/matzehuels/stagegraph/pkg/workflow"
)

func node(id string, children ...*graph.Node) *graph.Node {
	return &graph.Node{ID: id, Identifier: id, Kind: graph.KindStep, Children: children}
}

func grp(id string, steps ...*graph.Node) *graph.Node {
	g := &graph.Node{ID: id, Identifier: id, Kind: graph.KindStepGroup, Data: graph.Data{Steps: steps}}
	for _, s := range steps {
		for _, m := range s.Members() {
			m.ParentID = id
		}
	}
	return g
}

func scaledQuery(q layout.MapQuery, s float64) layout.MapQuery {
	out := layout.MapQuery{}
	for id, b := range q {
		out[id] = layout.Box{NodeID: id, Left: b.Left * s, Top: b.Top * s, Right: b.Right * s, Bottom: b.Bottom * s}
	}
	return out
}

func pathStrings(ps Paths) map[string]string {
	out := make(map[string]string, len(ps))
	for k, p := range ps {
		out[k] = p.String()
	}
	return out
}

func TestScaled(t *testing.T) {
	tests := []struct {
		v, scale, want float64
	}{
		{100, 1, 100},
		{100, 2, 50},
		{100, 0.5, 200},
		{10, 3, 3.33},
		{10, 0, 10},
		{12.345, 1, 12.345},
	}
	for _, tt := range tests {
		if got := Scaled(tt.v, tt.scale); got != tt.want {
			t.Errorf("Scaled(%v, %v) = %v, want %v", tt.v, tt.scale, got, tt.want)
		}
	}
}

func TestSequentialShapes(t *testing.T) {
	tests := []struct {
		name string
		b    layout.Box
		want string
	}{
		{
			name: "same row",
			b:    layout.Rect("b", 84, 0, 64, 64),
			want: "M 64,32 L 84,32",
		},
		{
			name: "below",
			b:    layout.Rect("b", 164, 100, 64, 64),
			want: "M 64,32 L 94,32 Q 114,32 114,52 L 114,112 Q 114,132 134,132 L 164,132",
		},
		{
			name: "above",
			b:    layout.Rect("b", 164, -100, 64, 64),
			want: "M 64,32 L 94,32 Q 114,32 114,12 L 114,-48 Q 114,-68 134,-68 L 164,-68",
		},
		{
			name: "short drop",
			b:    layout.Rect("b", 144, 10, 64, 64),
			want: "M 64,32 L 99,32 Q 104,32 104,37 Q 104,42 109,42 L 144,42",
		},
		{
			name: "short rise",
			b:    layout.Rect("b", 144, -10, 64, 64),
			want: "M 64,32 L 99,32 Q 104,32 104,27 Q 104,22 109,22 L 144,22",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := layout.MapQuery{"a": layout.Rect("a", 0, 0, 64, 64), "b": tt.b}
			paths := Route([]*graph.Node{node("a"), node("b")}, Context{Query: q, NoTerminals: true})
			require.Len(t, paths, 1)
			p := paths["a->b"]
			assert.Equal(t, KindSequential, p.Kind)
			assert.Equal(t, tt.want, p.String())
			assertMonotonic(t, p)
		})
	}
}

// assertMonotonic checks that a path never doubles back along either axis.
func assertMonotonic(t *testing.T, p PathSpec) {
	t.Helper()
	var xs, ys []float64
	for _, c := range p.Commands {
		for _, pt := range c.Points {
			xs = append(xs, pt.X)
			ys = append(ys, pt.Y)
		}
	}
	for _, vs := range [][]float64{xs, ys} {
		up, down := true, true
		for i := 1; i < len(vs); i++ {
			up = up && vs[i] >= vs[i-1]
			down = down && vs[i] <= vs[i-1]
		}
		assert.True(t, up || down, "path doubles back: %s", p.String())
	}
}

// verticalRuns returns the x of every vertical line segment in p.
func verticalRuns(p PathSpec) []float64 {
	var (
		xs   []float64
		prev Point
	)
	for _, c := range p.Commands {
		end := c.Points[len(c.Points)-1]
		if c.Op == LineTo && end.X == prev.X && end.Y != prev.Y {
			xs = append(xs, end.X)
		}
		prev = end
	}
	return xs
}

func TestParallelRouting(t *testing.T) {
	q := layout.MapQuery{
		"A": layout.Rect("A", 0, 0, 64, 64),
		"B": layout.Rect("B", 144, 0, 64, 64),
		"C": layout.Rect("C", 144, 184, 64, 64),
		"D": layout.Rect("D", 288, 0, 64, 64),
	}
	nodes := []*graph.Node{node("A"), node("B", node("C")), node("D")}
	paths := Route(nodes, Context{Query: q, NoTerminals: true})

	assert.Equal(t, map[string]string{
		"A->B":         "M 64,32 L 144,32",
		"B->C#fan-in":  "M 99,32 Q 119,32 119,52 L 119,196 Q 119,216 139,216 L 144,216",
		"B->D#fan-out": "M 208,32 L 288,32",
		"C->D#fan-out": "M 208,216 Q 228,216 228,196 L 228,52 Q 228,32 248,32 L 288,32",
	}, pathStrings(paths))
	assert.Equal(t, KindFanIn, paths["B->C#fan-in"].Kind)
	assert.Equal(t, KindFanOut, paths["C->D#fan-out"].Kind)
}

func TestFanOutSharesRail(t *testing.T) {
	q := layout.MapQuery{
		"B": layout.Rect("B", 144, 0, 64, 64),
		"C": layout.Rect("C", 144, 184, 256, 64),
		"E": layout.Rect("E", 144, 368, 64, 64),
		"D": layout.Rect("D", 480, 0, 64, 64),
	}
	nodes := []*graph.Node{node("B", node("C"), node("E")), node("D")}
	paths := Route(nodes, Context{Query: q, NoTerminals: true})

	assert.Equal(t, "M 208,32 L 480,32", paths["B->D#fan-out"].String())
	assert.Equal(t, "M 400,216 Q 420,216 420,196 L 420,52 Q 420,32 440,32 L 480,32", paths["C->D#fan-out"].String())
	assert.Equal(t, "M 208,400 L 400,400 Q 420,400 420,380 L 420,52 Q 420,32 440,32 L 480,32", paths["E->D#fan-out"].String())

	for _, key := range []string{"C->D#fan-out", "E->D#fan-out"} {
		assert.Equal(t, []float64{420}, verticalRuns(paths[key]), key)
	}
}

func TestGroupBoundary(t *testing.T) {
	q := layout.MapQuery{
		"G": layout.Rect("G", 0, 0, 300, 200),
		"x": layout.Rect("x", 100, 150, 64, 64),
	}
	paths := Route([]*graph.Node{grp("G", node("x"))}, Context{Query: q, NoTerminals: true})

	assert.Equal(t, map[string]string{
		"G->x": "M 0,100 L 30,100 Q 50,100 50,120 L 50,162 Q 50,182 70,182 L 100,182",
		"x->G": "M 164,182 L 212,182 Q 232,182 232,162 L 232,120 Q 232,100 252,100 L 300,100",
	}, pathStrings(paths))
	assert.Equal(t, KindBoundary, paths["G->x"].Kind)
}

func TestDirections(t *testing.T) {
	a := layout.Rect("a", 0, 0, 10, 10)
	b := layout.Rect("b", 100, 0, 10, 10)
	tests := []struct {
		dir    Direction
		sx, ex float64
		name   string
	}{
		{RightToLeft, 10, 100, "right-to-left"},
		{LeftToLeft, 0, 100, "left-to-left"},
		{LeftToRight, 0, 110, "left-to-right"},
		{RightToRight, 10, 110, "right-to-right"},
	}
	for _, tt := range tests {
		s, e := tt.dir.anchors(a, b)
		if s.X != tt.sx || e.X != tt.ex {
			t.Errorf("%v anchors = %v, %v, want x %v, %v", tt.dir, s, e, tt.sx, tt.ex)
		}
		if got := tt.dir.String(); got != tt.name {
			t.Errorf("String() = %q, want %q", got, tt.name)
		}
	}
}

func TestFanOutNudges(t *testing.T) {
	q := layout.MapQuery{
		"A": layout.Rect("A", 0, 0, 64, 64),
		"C": layout.Rect("C", 0, 184, 64, 64),
		"G": layout.Rect("G", 144, -20, 200, 104),
		"x": layout.Rect("x", 200, 0, 64, 64),
	}
	nodes := []*graph.Node{node("A", node("C")), grp("G", node("x"))}

	paths := Route(nodes, Context{Query: q, NoTerminals: true})
	for _, key := range []string{"A->G#fan-out", "C->G#fan-out"} {
		end, ok := paths[key].End()
		require.True(t, ok, key)
		assert.Equal(t, Point{X: 149, Y: 22}, end, key)
	}

	collapsed := Route(nodes, Context{Query: q, NoTerminals: true, Collapsed: map[string]bool{"G": true}})
	end, ok := collapsed["C->G#fan-out"].End()
	require.True(t, ok)
	assert.Equal(t, Point{X: 144, Y: 32}, end)
}

func TestInsideGroupOffsets(t *testing.T) {
	q := layout.MapQuery{
		"G": layout.Rect("G", 0, 0, 400, 400),
		"A": layout.Rect("A", 100, 50, 64, 64),
		"C": layout.Rect("C", 100, 234, 64, 64),
		"y": layout.Rect("y", 250, 50, 64, 64),
	}
	g := grp("G", node("A", node("C")), node("y"))
	paths := Route([]*graph.Node{g}, Context{Query: q, NoTerminals: true})

	start, ok := paths["A->C#fan-in"].Start()
	require.True(t, ok)
	assert.Equal(t, Point{X: 55, Y: 52}, start)

	end, ok := paths["C->y#fan-out"].End()
	require.True(t, ok)
	assert.Equal(t, Point{X: 250, Y: 112}, end)

	assert.Contains(t, paths, "G->A")
	assert.Contains(t, paths, "y->G")
}

func TestStitchToEnclosingHeader(t *testing.T) {
	p := &graph.Node{ID: "P", Kind: graph.KindStepGroup, Children: []*graph.Node{node("Q")}}
	g := grp("G", p)
	q := layout.MapQuery{
		"G":                 layout.Rect("G", 0, 0, 400, 300),
		"P":                 layout.Rect("P", 50, 50, 100, 64),
		"Q":                 layout.Rect("Q", 50, 234, 100, 64),
		graph.HeaderID("G"): {Left: 300, Right: 300, Top: 82, Bottom: 82},
	}
	paths := Route([]*graph.Node{g}, Context{Query: q, NoTerminals: true})

	for _, key := range []string{"P->G#header#fan-out", "Q->G#header#fan-out"} {
		require.Contains(t, paths, key)
		end, ok := paths[key].End()
		require.True(t, ok, key)
		assert.Equal(t, Point{X: 300, Y: 82}, end, key)
	}
	assert.Equal(t, "M 150,82 L 300,82", paths["P->G#header#fan-out"].String())
}

func TestTrailingBranchWithoutNext(t *testing.T) {
	q := layout.MapQuery{
		"B": layout.Rect("B", 0, 0, 64, 64),
		"C": layout.Rect("C", 0, 184, 64, 64),
	}
	nodes := []*graph.Node{node("B", node("C"))}

	paths := Route(nodes, Context{Query: q, NoTerminals: true})
	assert.Equal(t, "M 64,32 L 84,32", paths["B->B#fan-out"].String())
	assert.Equal(t, "M 64,216 Q 84,216 84,196 L 84,52 Q 84,32 64,32", paths["C->B#fan-out"].String())
	end, ok := paths["C->B#fan-out"].End()
	require.True(t, ok)
	assert.Equal(t, Point{X: 64, Y: 32}, end)
	assert.Contains(t, paths, "B->C#fan-in")

	skipped := Route(nodes, Context{Query: q, NoTerminals: true, SkipRightPath: true})
	assert.Len(t, skipped, 1)
}

func TestTerminals(t *testing.T) {
	q := layout.MapQuery{
		graph.TerminalStart:  layout.Rect(graph.TerminalStart, 0, 22, 20, 20),
		graph.TerminalCreate: layout.Rect(graph.TerminalCreate, 200, 22, 20, 20),
		graph.TerminalEnd:    layout.Rect(graph.TerminalEnd, 260, 22, 20, 20),
		"a":                  layout.Rect("a", 60, 0, 64, 64),
	}
	tests := []struct {
		name     string
		nodes    []*graph.Node
		editable bool
		want     []string
	}{
		{"empty editable", nil, true, []string{"create->end", "start->create"}},
		{"empty read-only", nil, false, []string{"start->end"}},
		{"editable", []*graph.Node{node("a")}, true, []string{"a->create", "create->end", "start->a"}},
		{"read-only", []*graph.Node{node("a")}, false, []string{"a->end", "start->a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			paths := Route(tt.nodes, Context{Query: q, Editable: tt.editable})
			assert.Equal(t, tt.want, paths.Keys())
			assert.Equal(t, len(tt.want), paths.Drawable())
			for _, p := range paths {
				assert.Equal(t, KindTerminal, p.Kind)
			}
		})
	}
}

func TestTrailingBranchJoinsTerminal(t *testing.T) {
	q := layout.MapQuery{
		graph.TerminalStart: layout.Rect(graph.TerminalStart, 0, 22, 20, 20),
		graph.TerminalEnd:   layout.Rect(graph.TerminalEnd, 300, 22, 20, 20),
		"B":                 layout.Rect("B", 60, 0, 64, 64),
		"C":                 layout.Rect("C", 60, 184, 64, 64),
	}
	paths := Route([]*graph.Node{node("B", node("C"))}, Context{Query: q})
	assert.Equal(t, []string{"B->C#fan-in", "B->end#fan-out", "C->end#fan-out", "start->B"}, paths.Keys())
}

func TestBuiltSequence(t *testing.T) {
	items := []workflow.Element{
		{Step: &workflow.Step{Identifier: "one", Name: "one", Type: "Run"}},
		{Step: &workflow.Step{Identifier: "two", Name: "two", Type: "Run"}},
		{Step: &workflow.Step{Identifier: "three", Name: "three", Type: "Run"}},
	}
	nodes := graph.Build(items, graph.Options{Path: "steps"})
	placed := layout.Flow(nodes, layout.WithCreateTerminal(true))

	paths := Route(nodes, Context{Query: placed.Boxes, Editable: true})
	assert.Len(t, paths, 5)
	assert.Equal(t, 5, paths.Drawable())
	assert.Contains(t, paths, graph.TerminalStart+"->"+nodes[0].ID)
	assert.Contains(t, paths, nodes[2].ID+"->"+graph.TerminalCreate)
	assert.Contains(t, paths, graph.TerminalCreate+"->"+graph.TerminalEnd)

	for _, p := range paths {
		assert.False(t, p.Empty())
		assert.Equal(t, 2, len(p.Commands), "flow places every node on one row: %s", p.String())
	}
}

func TestFanInSymmetry(t *testing.T) {
	b := node("B", node("C1"), node("C2"), node("C3"))
	nodes := []*graph.Node{node("A"), b, node("D")}
	placed := layout.Flow(nodes)
	left := placed.Boxes["B"].Left

	for _, scale := range []float64{1, 2} {
		paths := Route(nodes, Context{Query: scaledQuery(placed.Boxes, scale), Scale: scale})
		var fanIns int
		for _, p := range paths {
			if p.Kind != KindFanIn {
				continue
			}
			fanIns++
			start, ok := p.Start()
			require.True(t, ok)
			assert.Equal(t, left-45, start.X, "scale %v %s", scale, p.Key)
		}
		assert.Equal(t, 3, fanIns)
	}
}

func TestPathStartsAtSourceAnchor(t *testing.T) {
	nodes := []*graph.Node{node("a"), node("b", node("c")), grp("g", node("x"))}
	placed := layout.Flow(nodes, layout.WithCreateTerminal(true))

	paths := Route(nodes, Context{Query: placed.Boxes, Editable: true})
	for _, p := range paths {
		require.False(t, p.Empty(), p.Key)
		assert.Equal(t, MoveTo, p.Commands[0].Op)
		if p.Kind != KindSequential && p.Kind != KindTerminal {
			continue
		}
		src := placed.Boxes[p.From]
		start, _ := p.Start()
		assert.Equal(t, Point{X: src.Right, Y: src.CenterY()}, start, p.Key)
	}
}

func TestScaleRoundTrip(t *testing.T) {
	nodes := []*graph.Node{node("a"), node("b", node("c")), node("d")}
	placed := layout.Flow(nodes)

	base := pathStrings(Route(nodes, Context{Query: placed.Boxes, Scale: 1}))
	zoomed := pathStrings(Route(nodes, Context{Query: scaledQuery(placed.Boxes, 1.5), Scale: 1.5}))
	back := pathStrings(Route(nodes, Context{Query: placed.Boxes, Scale: 1}))
	double := pathStrings(Route(nodes, Context{Query: scaledQuery(placed.Boxes, 2), Scale: 2}))

	assert.Equal(t, base, zoomed)
	assert.Equal(t, base, back)
	assert.Equal(t, base, double)
}

func TestMissingBoxes(t *testing.T) {
	q := layout.MapQuery{
		"a": layout.Rect("a", 0, 0, 64, 64),
		"b": layout.Rect("b", 100, 0, 64, 64),
	}
	nodes := []*graph.Node{node("a"), node("b"), node("c")}

	var paths Paths
	require.NotPanics(t, func() {
		paths = Route(nodes, Context{Query: q, NoTerminals: true})
	})
	assert.Len(t, paths, 2)
	assert.Equal(t, 1, paths.Drawable())
	assert.True(t, paths["b->c"].Empty())
	assert.Equal(t, "", paths["b->c"].String())
}

func TestCollapsedGroupDegrades(t *testing.T) {
	nodes := graph.Build([]workflow.Element{
		{Step: &workflow.Step{Identifier: "a", Name: "a", Type: "Run"}},
		{StepGroup: &workflow.StepGroup{Identifier: "g", Name: "g", Steps: []workflow.Element{
			{Step: &workflow.Step{Identifier: "inner", Name: "inner", Type: "Run"}},
		}}},
	}, graph.Options{Path: "steps"})
	g := nodes[1]
	collapsed := map[string]bool{g.ID: true}
	placed := layout.Flow(nodes, layout.WithCollapsed(collapsed))

	var paths Paths
	require.NotPanics(t, func() {
		paths = Route(nodes, Context{Query: placed.Boxes, Collapsed: collapsed})
	})
	inner := g.Data.Steps[0].ID
	require.Contains(t, paths, g.ID+"->"+inner)
	require.Contains(t, paths, inner+"->"+g.ID)
	assert.True(t, paths[g.ID+"->"+inner].Empty())
	assert.True(t, paths[inner+"->"+g.ID].Empty())
	assert.Equal(t, len(paths)-2, paths.Drawable())
}

func TestExecutedMeta(t *testing.T) {
	q := layout.MapQuery{
		"a": layout.Rect("a", 0, 0, 64, 64),
		"b": layout.Rect("b", 100, 0, 64, 64),
		"c": layout.Rect("c", 200, 0, 64, 64),
	}
	a, b := node("a"), node("b")
	a.Status = graph.StatusSuccess
	b.Status = graph.StatusNotStarted
	paths := Route([]*graph.Node{a, b, node("c")}, Context{Query: q, NoTerminals: true})

	assert.True(t, paths["a->b"].Executed())
	assert.False(t, paths["b->c"].Executed())
	assert.Equal(t, false, paths["b->c"].Meta[MetaLinkExecuted])
}

func TestCustomGeometry(t *testing.T) {
	q := layout.MapQuery{
		"B": layout.Rect("B", 100, 0, 64, 64),
		"C": layout.Rect("C", 100, 200, 64, 64),
	}
	geo := DefaultGeometry()
	geo.FanInOffset = 60
	paths := Route([]*graph.Node{node("B", node("C"))}, Context{Query: q, NoTerminals: true, Geometry: geo})
	start, ok := paths["B->C#fan-in"].Start()
	require.True(t, ok)
	assert.Equal(t, 40.0, start.X)
}
