// Package pipeline provides the batch build → route → render pipeline.
//
// The interactive [diagram.Diagram] keeps state between user actions. The
// pipeline is its one-shot counterpart used by the CLI and the HTTP API: it
// takes a workflow document, builds the graph state, places and routes the
// links once, and renders the requested artifacts. Every stage is cached by
// content hash so repeated requests for the same document are cheap.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Build: Load and validate the document, then build the graph state
//  2. Route: Place nodes (or take measured boxes) and route every link
//  3. Render: Generate output in various formats (JSON, SVG, DOT, PNG, PDF)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Input:   data,
//	    Formats: []string{"svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stagegraph/pkg/cache"
	"github.com/matzehuels/stagegraph/pkg/errors"
	"github.com/matzehuels/stagegraph/pkg/graph"
	"github.com/matzehuels/stagegraph/pkg/layout"
	"github.com/matzehuels/stagegraph/pkg/route"
	"github.com/matzehuels/stagegraph/pkg/workflow"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultScale is the zoom factor routes are computed at.
	DefaultScale = 1.0

	// DefaultTheme is the default SVG style.
	DefaultTheme = ThemeSimple

	// DefaultPNGScale is the rasterization factor for PNG output.
	DefaultPNGScale = 2.0
)

// Format constants for output formats.
const (
	FormatJSON     = "json"
	FormatSVG      = "svg"
	FormatDOT      = "dot"
	FormatGraphviz = "graphviz"
	FormatPNG      = "png"
	FormatPDF      = "pdf"
)

// ThemeSimple is the flat built-in SVG style.
const ThemeSimple = "simple"

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON:     true,
	FormatSVG:      true,
	FormatDOT:      true,
	FormatGraphviz: true,
	FormatPNG:      true,
	FormatPDF:      true,
}

// ValidThemes is the set of supported SVG styles.
var ValidThemes = map[string]bool{
	ThemeSimple: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Build options
	Input        []byte            `json:"-"`
	Format       workflow.Format   `json:"format,omitempty"`
	Stage        string            `json:"stage,omitempty"`
	Statuses     map[string]string `json:"statuses,omitempty"`
	NoValidation bool              `json:"no_validation,omitempty"`
	Refresh      bool              `json:"refresh,omitempty"`

	// Route options
	Scale     float64         `json:"scale,omitempty"`
	Editable  bool            `json:"editable,omitempty"`
	Collapsed []string        `json:"collapsed,omitempty"`
	Boxes     layout.MapQuery `json:"boxes,omitempty"`
	Spacing   layout.Spacing  `json:"-"`
	Geometry  route.Geometry  `json:"-"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Theme    string   `json:"theme,omitempty"`
	Title    string   `json:"title,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger  `json:"-"`
	IDFunc graph.IDFunc `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Nodes is the graph-state tree.
	Nodes []*graph.Node

	// Errors is the schema-validation map the build flagged nodes from.
	Errors workflow.ErrorMap

	// GraphHash is the content hash of the graph state.
	GraphHash string

	// Routed holds the placement and the paths.
	Routed Routed

	// RouteHash is the content hash of the routed result.
	RouteHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Built is the cached result of the build stage.
type Built struct {
	Nodes  []*graph.Node     `json:"nodes"`
	Errors workflow.ErrorMap `json:"errors,omitempty"`
}

// Routed is the cached result of the route stage. Placement is empty when
// the caller supplied measured boxes.
type Routed struct {
	Placement layout.Placement `json:"placement"`
	Boxes     layout.MapQuery  `json:"boxes"`
	Paths     route.Paths      `json:"paths"`
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	LinkCount  int
	Drawable   int
	BuildTime  time.Duration
	RouteTime  time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	BuildHit  bool // Whether the graph state came from cache
	RouteHit  bool // Whether the paths came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: json, svg, dot, graphviz, png, pdf)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateTheme checks that a theme is valid.
func ValidateTheme(theme string) error {
	if !ValidThemes[theme] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid theme: %q (must be one of: simple)", theme)
	}
	return nil
}

// ValidateScale checks that a zoom factor is usable.
func ValidateScale(scale float64) error {
	if scale <= 0 {
		return errors.New(errors.ErrCodeInvalidScale, "invalid scale: %v (must be positive)", scale)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForBuild(); err != nil {
		return err
	}
	if err := o.ValidateForRoute(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForBuild checks required fields for building.
func (o *Options) ValidateForBuild() error {
	if len(o.Input) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "input document is required")
	}
	switch o.Format {
	case workflow.FormatAuto, workflow.FormatJSON, workflow.FormatYAML:
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "invalid document format: %q", o.Format)
	}
	if o.Stage != "" {
		if err := errors.ValidateIdentifier(o.Stage); err != nil {
			return err
		}
	}
	o.setLogger()
	return nil
}

// SetRouteDefaults sets default values for routing.
func (o *Options) SetRouteDefaults() {
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Spacing == (layout.Spacing{}) {
		o.Spacing = layout.DefaultSpacing()
	}
	if o.Geometry == (route.Geometry{}) {
		o.Geometry = route.DefaultGeometry()
	}
	o.setLogger()
}

// ValidateForRoute validates and sets defaults for routing.
func (o *Options) ValidateForRoute() error {
	o.SetRouteDefaults()
	return ValidateScale(o.Scale)
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Theme == "" {
		o.Theme = DefaultTheme
	}
	o.setLogger()
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRouteDefaults()
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	return ValidateTheme(o.Theme)
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// CollapsedSet returns Collapsed as a lookup set.
func (o *Options) CollapsedSet() map[string]bool {
	if len(o.Collapsed) == 0 {
		return nil
	}
	set := make(map[string]bool, len(o.Collapsed))
	for _, id := range o.Collapsed {
		set[id] = true
	}
	return set
}

// GraphKeyOpts returns cache key options for the build stage.
func (o *Options) GraphKeyOpts() cache.GraphKeyOpts {
	return cache.GraphKeyOpts{
		Stage:      o.Stage,
		Statuses:   o.Statuses,
		Validation: !o.NoValidation,
	}
}

// RouteKeyOpts returns cache key options for the route stage.
func (o *Options) RouteKeyOpts() (cache.RouteKeyOpts, error) {
	collapsed := slices.Clone(o.Collapsed)
	slices.Sort(collapsed)
	opts := cache.RouteKeyOpts{
		Scale:     o.Scale,
		Editable:  o.Editable,
		Collapsed: slices.Compact(collapsed),
	}
	if o.Boxes != nil {
		h, err := cache.HashJSON(o.Boxes)
		if err != nil {
			return opts, fmt.Errorf("hash boxes: %w", err)
		}
		opts.BoxesHash = h
	}
	h, err := cache.HashJSON(struct {
		Spacing  layout.Spacing
		Geometry route.Geometry
	}{o.Spacing, o.Geometry})
	if err != nil {
		return opts, fmt.Errorf("hash config: %w", err)
	}
	opts.ConfigHash = h
	return opts, nil
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	theme := o.Theme
	if o.Detailed {
		theme += "+detailed"
	}
	if o.Title != "" {
		theme += "+" + o.Title
	}
	return cache.ArtifactKeyOpts{Format: format, Theme: theme}
}

func (o *Options) statuses() map[string]graph.Status {
	if len(o.Statuses) == 0 {
		return nil
	}
	out := make(map[string]graph.Status, len(o.Statuses))
	for k, v := range o.Statuses {
		out[k] = graph.Status(v)
	}
	return out
}
