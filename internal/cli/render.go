package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stagegraph/pkg/pipeline"
)

// renderCommand creates the render command for generating diagrams.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		doc        docFlags
		rt         routeFlags
		output     string
		formatsStr string
		theme      string
		title      string
		detailed   bool
	)

	cmd := &cobra.Command{
		Use:   "render [workflow.yaml]",
		Short: "Render a workflow diagram to SVG, DOT, PNG, PDF or JSON",
		Long: `Render a workflow diagram.

Builds the graph state, routes the links and writes one file per format:

  svg       the interactive diagram (default)
  graphviz  the diagram laid out by Graphviz, as SVG
  dot       Graphviz source
  png, pdf  the SVG rasterized or converted
  json      the scene: nodes, boxes and paths

Every stage is cached, so re-rendering an unchanged workflow in another
format only runs the last stage.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(formats); err != nil {
				return err
			}
			if err := pipeline.ValidateTheme(theme); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], doc, rt, renderFlags{
				output:   output,
				formats:  formats,
				theme:    theme,
				title:    title,
				detailed: detailed,
			})
		},
	}

	doc.register(cmd)
	rt.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), graphviz, dot, png, pdf, json (comma-separated)")
	cmd.Flags().StringVar(&theme, "theme", pipeline.DefaultTheme, "visual theme")
	cmd.Flags().StringVar(&title, "title", "", "diagram title")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "add node types and paths to DOT labels")

	return cmd
}

type renderFlags struct {
	output   string
	formats  []string
	theme    string
	title    string
	detailed bool
}

// runRender runs the full pipeline and writes the artifacts.
func (c *CLI) runRender(ctx context.Context, input string, doc docFlags, rt routeFlags, rf renderFlags) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	opts, err := doc.options(input, cfg)
	if err != nil {
		return err
	}
	opts.Formats = rf.formats
	opts.Theme = rf.theme
	opts.Title = rf.title
	opts.Detailed = rf.detailed

	runner, err := c.newRunner(ctx, cfg, doc.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	ctx = withLogger(ctx, c.Logger)

	// Collapsed groups are named by identifier, so the nodes are needed
	// before the full run.
	built, _, err := buildWithSpinner(ctx, runner, opts)
	if err != nil {
		return err
	}
	if err := rt.apply(&opts, built.Nodes); err != nil {
		return err
	}

	spinner := newSpinner(ctx, "Rendering...")
	spinner.Start()
	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()
	if spinner.Cancelled() {
		return ctx.Err()
	}

	paths, err := writeArtifacts(input, rf.output, rf.formats, result.Artifacts)
	if err != nil {
		return err
	}

	printSuccess("Rendered %d file(s)", len(paths))
	for _, p := range paths {
		printFile(p)
	}
	cached := result.CacheInfo.BuildHit && result.CacheInfo.RouteHit && result.CacheInfo.RenderHit
	printStats(result.Stats.NodeCount, result.Stats.LinkCount, result.Stats.Drawable, cached)
	printViolations(result.Errors)
	return nil
}
