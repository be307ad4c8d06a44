package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stagegraph/pkg/graph"
	"github.com/matzehuels/stagegraph/pkg/pipeline"
)

// buildCommand creates the build command for computing the graph state.
func (c *CLI) buildCommand() *cobra.Command {
	var (
		flags  docFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "build [workflow.yaml]",
		Short: "Build the graph state of a workflow",
		Long: `Build the graph state of a workflow document.

The document is a JSON or YAML pipeline with stages, or a bare list of steps.
Every stage, step, step group and parallel block becomes a node with a stable
ID; parallel siblings become children of the first member. The result is
written as JSON (default: <input>.graph.json).

Results are cached by document hash.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBuild(cmd.Context(), args[0], flags, output)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.graph.json)")

	return cmd
}

// runBuild builds the graph state and writes it as JSON.
func (c *CLI) runBuild(ctx context.Context, input string, flags docFlags, output string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	opts, err := flags.options(input, cfg)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, cfg, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	ctx = withLogger(ctx, c.Logger)

	built, hit, err := buildWithSpinner(ctx, runner, opts)
	if err != nil {
		return err
	}

	if output == "" {
		output = defaultOutput(input, ".graph.json")
	}
	if err := writeJSONFile(output, built); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	printSuccess("Graph state built")
	printFile(output)
	printStats(graph.Count(built.Nodes), 0, 0, hit)
	printViolations(built.Errors)
	printNewline()
	printNextStep("Render", appName+" render "+input)
	return nil
}

// buildWithSpinner runs the build stage behind a spinner.
func buildWithSpinner(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options) (pipeline.Built, bool, error) {
	prog := newProgress(loggerFromContext(ctx))
	spinner := newSpinner(ctx, "Building graph state...")
	spinner.Start()

	built, hit, err := runner.BuildWithCacheInfo(ctx, opts)
	if err != nil {
		spinner.StopWithError("Build failed")
		return pipeline.Built{}, false, fmt.Errorf("build %s: %w", describe(opts), err)
	}
	spinner.Stop()
	if spinner.Cancelled() {
		return pipeline.Built{}, false, ctx.Err()
	}
	prog.done(fmt.Sprintf("Built %d nodes", graph.Count(built.Nodes)))
	return built, hit, nil
}

func describe(opts pipeline.Options) string {
	if opts.Stage != "" {
		return "stage " + opts.Stage
	}
	return "workflow"
}
