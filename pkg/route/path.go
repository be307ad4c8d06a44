package route

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// Op is a path command.
type Op byte

const (
	MoveTo Op = 'M'
	LineTo Op = 'L'
	QuadTo Op = 'Q'
)

// Point is a coordinate in routing space.
type Point struct {
	X, Y float64
}

// Command is one step of a path. QuadTo carries a control point followed by
// the end point; MoveTo and LineTo carry one point.
type Command struct {
	Op     Op
	Points []Point
}

// Kind classifies a path.
type Kind string

const (
	KindSequential Kind = "sequential"
	KindFanIn      Kind = "fan-in"
	KindFanOut     Kind = "fan-out"
	KindBoundary   Kind = "boundary"
	KindTerminal   Kind = "terminal"
)

// MetaLinkExecuted is the meta key set on every path.
const MetaLinkExecuted = "isLinkExecuted"

// PathSpec describes how to draw one connector.
type PathSpec struct {
	Key      string
	From     string
	To       string
	Kind     Kind
	Commands []Command
	Meta     map[string]any
}

// Empty reports whether the path has nothing to draw.
func (p PathSpec) Empty() bool { return len(p.Commands) == 0 }

// Start returns the first point of the path.
func (p PathSpec) Start() (Point, bool) {
	if p.Empty() || len(p.Commands[0].Points) == 0 {
		return Point{}, false
	}
	return p.Commands[0].Points[0], true
}

// End returns the last point of the path.
func (p PathSpec) End() (Point, bool) {
	if p.Empty() {
		return Point{}, false
	}
	pts := p.Commands[len(p.Commands)-1].Points
	if len(pts) == 0 {
		return Point{}, false
	}
	return pts[len(pts)-1], true
}

// Executed reports the isLinkExecuted flag.
func (p PathSpec) Executed() bool {
	v, _ := p.Meta[MetaLinkExecuted].(bool)
	return v
}

// String returns the path in SVG path data syntax, e.g. "M 0,10 L 40,10".
func (p PathSpec) String() string {
	var sb strings.Builder
	for i, c := range p.Commands {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteByte(byte(c.Op))
		for _, pt := range c.Points {
			sb.WriteByte(' ')
			sb.WriteString(formatNum(pt.X))
			sb.WriteByte(',')
			sb.WriteString(formatNum(pt.Y))
		}
	}
	return sb.String()
}

type pathJSON struct {
	Key  string         `json:"key"`
	From string         `json:"from"`
	To   string         `json:"to"`
	Kind Kind           `json:"kind"`
	D    string         `json:"d"`
	Meta map[string]any `json:"meta,omitempty"`
}

// MarshalJSON encodes the path with its commands as SVG path data.
func (p PathSpec) MarshalJSON() ([]byte, error) {
	return json.Marshal(pathJSON{Key: p.Key, From: p.From, To: p.To, Kind: p.Kind, D: p.String(), Meta: p.Meta})
}

// UnmarshalJSON decodes a path written by MarshalJSON.
func (p *PathSpec) UnmarshalJSON(data []byte) error {
	var raw pathJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	cmds, err := ParsePath(raw.D)
	if err != nil {
		return fmt.Errorf("path %s: %w", raw.Key, err)
	}
	*p = PathSpec{Key: raw.Key, From: raw.From, To: raw.To, Kind: raw.Kind, Commands: cmds, Meta: raw.Meta}
	return nil
}

// ParsePath reads path data in the form produced by String: absolute M, L
// and Q commands with comma-separated coordinates.
func ParsePath(d string) ([]Command, error) {
	fields := strings.Fields(d)
	var cmds []Command
	for i := 0; i < len(fields); {
		op := Op(0)
		if len(fields[i]) == 1 {
			op = Op(fields[i][0])
		}
		n := 0
		switch op {
		case MoveTo, LineTo:
			n = 1
		case QuadTo:
			n = 2
		default:
			return nil, fmt.Errorf("unknown path command %q", fields[i])
		}
		if i+n >= len(fields) {
			return nil, fmt.Errorf("command %c needs %d points", op, n)
		}
		cmd := Command{Op: op, Points: make([]Point, 0, n)}
		for _, f := range fields[i+1 : i+1+n] {
			pt, err := parsePoint(f)
			if err != nil {
				return nil, err
			}
			cmd.Points = append(cmd.Points, pt)
		}
		cmds = append(cmds, cmd)
		i += 1 + n
	}
	return cmds, nil
}

func parsePoint(s string) (Point, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return Point{}, fmt.Errorf("invalid point %q", s)
	}
	x, err := strconv.ParseFloat(xs, 64)
	if err != nil {
		return Point{}, fmt.Errorf("invalid point %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(ys, 64)
	if err != nil {
		return Point{}, fmt.Errorf("invalid point %q: %w", s, err)
	}
	return Point{X: x, Y: y}, nil
}

func formatNum(v float64) string {
	v = round2(v)
	if v == 0 {
		v = 0 // drop negative zero
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Paths maps edge keys to paths.
type Paths map[string]PathSpec

// Keys returns the edge keys in sorted order.
func (ps Paths) Keys() []string {
	keys := make([]string, 0, len(ps))
	for k := range ps {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Drawable counts the non-empty paths.
func (ps Paths) Drawable() int {
	n := 0
	for _, p := range ps {
		if !p.Empty() {
			n++
		}
	}
	return n
}

type pathBuilder struct {
	cmds []Command
}

func (b *pathBuilder) move(p Point) *pathBuilder {
	b.cmds = append(b.cmds, Command{Op: MoveTo, Points: []Point{p}})
	return b
}

func (b *pathBuilder) line(p Point) *pathBuilder {
	b.cmds = append(b.cmds, Command{Op: LineTo, Points: []Point{p}})
	return b
}

func (b *pathBuilder) quad(c, p Point) *pathBuilder {
	b.cmds = append(b.cmds, Command{Op: QuadTo, Points: []Point{c, p}})
	return b
}
