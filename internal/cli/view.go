package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stagegraph/internal/tui"
	"github.com/matzehuels/stagegraph/pkg/config"
	"github.com/matzehuels/stagegraph/pkg/diagram"
	"github.com/matzehuels/stagegraph/pkg/pipeline"
	"github.com/matzehuels/stagegraph/pkg/workflow"
)

// viewCommand creates the view command for exploring a workflow in the terminal.
func (c *CLI) viewCommand() *cobra.Command {
	var (
		doc      docFlags
		editable bool
	)

	cmd := &cobra.Command{
		Use:   "view [workflow.yaml]",
		Short: "Explore a workflow diagram in the terminal",
		Long: `Explore a workflow diagram in the terminal.

Keys:
  arrows      pan
  + / -       zoom in / out (ctrl+wheel also zooms)
  0           reset the viewport
  f           fit the diagram to the terminal
  tab, j / k  select the next / previous node
  enter       click the selected node
  c           collapse or expand the selected step group
  q           quit

Links are routed again after every change; the status line shows the scale,
the pan offset and how many links were drawn.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runView(cmd.Context(), args[0], doc, editable)
		},
	}

	doc.register(cmd)
	cmd.Flags().BoolVar(&editable, "editable", false, "add the create terminal before end")

	return cmd
}

func (c *CLI) runView(ctx context.Context, input string, doc docFlags, editable bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	opts, err := doc.options(input, cfg)
	if err != nil {
		return err
	}
	d, err := newDiagram(opts, cfg, editable)
	if err != nil {
		return err
	}

	// Keep log lines from tearing the alternate screen.
	level := c.Logger.GetLevel()
	c.Logger.SetLevel(LogError)
	defer c.Logger.SetLevel(level)

	return tui.Run(ctx, d, input)
}

// newDiagram loads the document in opts and returns a diagram holding it,
// routed once.
func newDiagram(opts pipeline.Options, cfg config.Config, editable bool) (*diagram.Diagram, error) {
	loaded, err := workflow.Load(opts.Input, opts.Format)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", describe(opts), err)
	}

	d := diagram.New(diagram.Options{
		Editable: editable,
		Build:    opts.GraphOptions(loaded),
		Spacing:  cfg.Spacing(),
		Geometry: cfg.RouteGeometry(),
		Viewport: cfg.ViewportOptions(),
		Delay:    cfg.Viewport.RerouteDelay,
		Logger:   opts.Logger,
	})
	if opts.Stage != "" {
		if err := d.SetStage(loaded.Document, opts.Stage); err != nil {
			d.Close()
			return nil, err
		}
	} else {
		d.SetDocument(loaded.Document)
	}
	d.Flush()
	return d, nil
}
