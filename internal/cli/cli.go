package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stagegraph/pkg/buildinfo"
	"github.com/matzehuels/stagegraph/pkg/cache"
	"github.com/matzehuels/stagegraph/pkg/config"
	"github.com/matzehuels/stagegraph/pkg/errors"
	"github.com/matzehuels/stagegraph/pkg/graph"
	"github.com/matzehuels/stagegraph/pkg/pipeline"
	"github.com/matzehuels/stagegraph/pkg/workflow"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = config.AppName

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
	LogError = log.ErrorLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// configPath is set by the persistent --config flag. Empty means the
	// default location.
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Stagegraph draws pipeline workflows as interactive diagrams",
		Long: `Stagegraph turns pipeline workflow documents (stages, steps, step groups and
parallel blocks) into a node graph, routes the connectors between nodes and
renders the result as SVG, DOT, PNG or PDF, or shows it in the terminal.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/stagegraph/config.toml)")

	root.AddCommand(c.buildCommand())
	root.AddCommand(c.routeCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Config & Runner Factory
// =============================================================================

// loadConfig reads the configuration selected by --config.
func (c *CLI) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, cfg config.Config, noCache bool) (*pipeline.Runner, error) {
	store, err := newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(store, nil, c.Logger), nil
}

func newCache(ctx context.Context, cfg config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	return cfg.OpenCache(ctx)
}

// =============================================================================
// Options Helpers
// =============================================================================

// docFlags are the document selection flags shared by every pipeline command.
type docFlags struct {
	stage        string
	statuses     []string
	noValidation bool
	noCache      bool
	refresh      bool
}

func (f *docFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.stage, "stage", "", "draw the steps of this stage instead of the stage list")
	cmd.Flags().StringSliceVar(&f.statuses, "status", nil, "execution status per node, as identifier=Status (repeatable)")
	cmd.Flags().BoolVar(&f.noValidation, "no-validation", false, "do not mark nodes with schema violations as incomplete")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute and overwrite cached results")
}

// options reads the workflow at path and fills the build options.
func (f *docFlags) options(path string, cfg config.Config) (pipeline.Options, error) {
	if err := errors.ValidateInputPath(path, ".json", ".yaml", ".yml"); err != nil {
		return pipeline.Options{}, err
	}
	data, err := readInput(path)
	if err != nil {
		return pipeline.Options{}, err
	}
	statuses, err := parseStatuses(f.statuses)
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{
		Input:        data,
		Format:       workflow.FormatFromPath(path),
		Stage:        f.stage,
		Statuses:     statuses,
		NoValidation: f.noValidation,
		Refresh:      f.refresh,
		Spacing:      cfg.Spacing(),
		Geometry:     cfg.RouteGeometry(),
	}, nil
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// parseStatuses turns identifier=Status pairs into a status map.
func parseStatuses(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		id, status, ok := strings.Cut(p, "=")
		if !ok || id == "" || status == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "invalid status %q (want identifier=Status)", p)
		}
		out[id] = status
	}
	return out, nil
}

// resolveCollapsed maps group identifiers to node IDs. Values that are
// already node IDs pass through.
func resolveCollapsed(nodes []*graph.Node, refs []string) ([]string, error) {
	if len(refs) == 0 {
		return nil, nil
	}
	ix := graph.NewIndex(nodes)
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		if _, ok := ix.Node(ref); ok {
			out = append(out, ref)
			continue
		}
		n := graph.FindIdentifier(nodes, ref)
		if n == nil {
			return nil, errors.New(errors.ErrCodeNodeNotFound, "collapsed group %q not found", ref)
		}
		out = append(out, n.ID)
	}
	return out, nil
}

// defaultOutput derives an output path from the input path.
func defaultOutput(input, suffix string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + suffix
}
