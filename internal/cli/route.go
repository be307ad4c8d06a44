package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stagegraph/pkg/graph"
	"github.com/matzehuels/stagegraph/pkg/pipeline"
)

// routeFlags are the routing flags shared by route and render.
type routeFlags struct {
	boxes     string
	scale     float64
	editable  bool
	collapsed []string
}

func (f *routeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.boxes, "boxes", "", "JSON file of measured boxes keyed by node ID (default: built-in placement)")
	cmd.Flags().Float64Var(&f.scale, "scale", pipeline.DefaultScale, "zoom factor the boxes were measured at")
	cmd.Flags().BoolVar(&f.editable, "editable", false, "add the create terminal before end")
	cmd.Flags().StringSliceVar(&f.collapsed, "collapse", nil, "collapse a step group, by identifier or node ID (repeatable)")
}

// apply copies the routing flags into opts. Collapsed groups are resolved
// against the built nodes.
func (f *routeFlags) apply(opts *pipeline.Options, nodes []*graph.Node) error {
	opts.Scale = f.scale
	opts.Editable = f.editable
	if f.boxes != "" {
		boxes, err := readBoxes(f.boxes)
		if err != nil {
			return err
		}
		opts.Boxes = boxes
	}
	collapsed, err := resolveCollapsed(nodes, f.collapsed)
	if err != nil {
		return err
	}
	opts.Collapsed = collapsed
	return nil
}

// routeCommand creates the route command for computing link paths.
func (c *CLI) routeCommand() *cobra.Command {
	var (
		doc    docFlags
		rt     routeFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "route [workflow.yaml]",
		Short: "Route the links between the nodes of a workflow",
		Long: `Route the links between the nodes of a workflow.

Without --boxes the nodes are placed left to right with the configured
dimensions. With --boxes the paths follow boxes measured by an external
layout at --scale; the output is normalized to scale 1 either way.

The output (default: <input>.paths.json) holds the boxes and one SVG path
per link, keyed "from->to".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRoute(cmd.Context(), args[0], doc, rt, output)
		},
	}

	doc.register(cmd)
	rt.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.paths.json)")

	return cmd
}

// runRoute builds the graph state, routes it and writes the routed result.
func (c *CLI) runRoute(ctx context.Context, input string, doc docFlags, rt routeFlags, output string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	opts, err := doc.options(input, cfg)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, cfg, doc.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	ctx = withLogger(ctx, c.Logger)

	built, _, err := buildWithSpinner(ctx, runner, opts)
	if err != nil {
		return err
	}
	if err := rt.apply(&opts, built.Nodes); err != nil {
		return err
	}

	spinner := newSpinner(ctx, "Routing links...")
	spinner.Start()
	routed, hit, err := runner.RouteWithCacheInfo(ctx, built, opts)
	if err != nil {
		spinner.StopWithError("Routing failed")
		return fmt.Errorf("route: %w", err)
	}
	spinner.Stop()
	if spinner.Cancelled() {
		return ctx.Err()
	}

	if output == "" {
		output = defaultOutput(input, ".paths.json")
	}
	if err := writeJSONFile(output, routed); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	printSuccess("Links routed")
	printFile(output)
	printStats(graph.Count(built.Nodes), len(routed.Paths), routed.Paths.Drawable(), hit)
	printNewline()
	printNextStep("Render", appName+" render "+input)
	return nil
}
