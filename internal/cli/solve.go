package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/burrow/pkg/burrow"
	"github.com/matzehuels/burrow/pkg/config"
	errs "github.com/matzehuels/burrow/pkg/errors"
	burrowio "github.com/matzehuels/burrow/pkg/io"
	"github.com/matzehuels/burrow/pkg/pipeline"
	"github.com/matzehuels/burrow/pkg/render"
)

// solveOpts holds the command-line flags for the solve command.
type solveOpts struct {
	input   string        // diagram or layout file; empty or "-" reads stdin
	json    bool          // input is a JSON layout document
	unfold  bool          // insert the two extra rows below the first room row
	memoize bool          // skip states already reached at no greater cost
	bound   int           // initial upper bound; 0 means none
	timeout time.Duration // search time limit
	formats string        // comma-separated output formats
	output  string        // output file (single format) or base path
	compact bool          // omit diagrams from DOT/SVG nodes
	noCache bool          // bypass the solution cache entirely
	refresh bool          // recompute even if a cached solution exists
}

// solveCommand creates the solve command.
func (c *CLI) solveCommand() *cobra.Command {
	var opts solveOpts

	cmd := &cobra.Command{
		Use:   "solve [file]",
		Short: "Find the least energy needed to sort a burrow",
		Long: `Solve reads a burrow diagram (or, with --json, a layout document) and
prints the minimum total energy together with one cheapest move sequence.

Without a file argument the input is read from stdin.`,
		Example: `  burrow solve input.txt
  burrow solve --unfold input.txt
  burrow solve -f json,svg -o solution input.txt
  cat layout.json | burrow solve --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.input = args[0]
			}
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("memoize") {
				opts.memoize = cfg.Search.Memoize
			}
			if !cmd.Flags().Changed("bound") {
				opts.bound = cfg.Search.Bound
			}
			if !cmd.Flags().Changed("timeout") {
				opts.timeout = cfg.Search.Timeout
			}
			return c.runSolve(cmd, cfg, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.json, "json", false, "input is a JSON layout instead of a diagram")
	cmd.Flags().BoolVar(&opts.unfold, "unfold", false, "insert the two extra rows below the first room row")
	cmd.Flags().BoolVar(&opts.memoize, "memoize", true, "skip states already reached at lower or equal cost")
	cmd.Flags().IntVar(&opts.bound, "bound", 0, "initial upper bound on the answer (0 = none)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", pipeline.DefaultTimeout, "search time limit")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): txt (default), json, dot, svg (comma-separated)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&opts.compact, "compact", false, "omit burrow diagrams from dot/svg nodes")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the solution cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached solutions")

	return cmd
}

// runSolve executes the pipeline and prints or writes the results.
func (c *CLI) runSolve(cmd *cobra.Command, cfg config.Config, opts solveOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	formats := parseFormats(opts.formats)
	if err := pipeline.ValidateFormats(formats); err != nil {
		return err
	}
	if len(formats) > 1 && opts.output == "" {
		return errs.New(errs.ErrCodeInvalidInput, "%d formats need an output path (-o)", len(formats))
	}
	catalog, err := cfg.BurrowCatalog()
	if err != nil {
		return err
	}

	popts, err := pipelineOptions(cmd, opts, catalog)
	if err != nil {
		return err
	}
	popts.Formats = formats
	popts.Progress = func(explored, pruned, best int) {
		if best < 0 {
			logger.Debug("searching", "explored", explored, "pruned", pruned)
			return
		}
		logger.Debug("searching", "explored", explored, "pruned", pruned, "best", best)
	}

	runner, err := c.newRunner(ctx, cfg, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close(context.WithoutCancel(ctx))

	prog := newProgress(logger)
	spinner := newSpinner(ctx, cmd.ErrOrStderr(), "Searching...")
	spinner.Start()
	res, err := runner.Execute(ctx, popts)
	spinner.Stop()
	if err != nil {
		return err
	}
	prog.done("solved burrow", "solved", res.Search.Solved, "cached", res.CacheInfo.SolveHit)

	if opts.output != "" {
		return writeArtifacts(cmd, res, formats, opts.output)
	}
	return printResult(cmd, res, formats)
}

// pipelineOptions reads the input named by opts into pipeline options.
func pipelineOptions(cmd *cobra.Command, opts solveOpts, catalog burrow.Catalog) (pipeline.Options, error) {
	data, err := readInput(cmd, opts.input)
	if err != nil {
		return pipeline.Options{}, fmt.Errorf("read input: %w", err)
	}
	popts := pipeline.Options{
		Unfold:  opts.unfold,
		Catalog: catalog,
		Memoize: opts.memoize,
		Bound:   opts.bound,
		Timeout: opts.timeout,
		Refresh: opts.refresh,
		Compact: opts.compact,
	}
	if opts.json {
		l, err := burrowio.ReadJSON(bytes.NewReader(data), catalog)
		if err != nil {
			return pipeline.Options{}, err
		}
		popts.Layout = &l
		return popts, nil
	}
	popts.Diagram = string(data)
	return popts, nil
}

// printResult prints the summary and move table, or for a single non-text
// format the artifact itself, to stdout.
func printResult(cmd *cobra.Command, res *pipeline.Result, formats []string) error {
	out := cmd.OutOrStdout()
	if len(formats) == 1 && formats[0] != pipeline.FormatText {
		_, err := out.Write(res.Artifacts[formats[0]])
		return err
	}

	p := newPrinter(cmd)
	p.energy(res)
	p.solveStats(res)
	if !res.Search.Solved {
		return nil
	}
	p.newline()
	fmt.Fprint(out, string(res.Artifacts[pipeline.FormatText]))
	if res.RunID != "" {
		p.newline()
		p.nextStep("Replay this run", "burrow replay --run "+res.RunID)
	}
	return nil
}

// writeArtifacts writes each rendered format to its own file.
func writeArtifacts(cmd *cobra.Command, res *pipeline.Result, formats []string, output string) error {
	paths := artifactPaths(output, formats)
	for _, f := range formats {
		if err := os.WriteFile(paths[f], res.Artifacts[f], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", f, err)
		}
	}
	p := newPrinter(cmd)
	p.energy(res)
	p.solveStats(res)
	for _, f := range formats {
		p.file(paths[f])
	}
	return nil
}

// artifactPaths maps each format to an output path. A single format is
// written to output as given; several formats share output as base path
// with the format as extension.
func artifactPaths(output string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 {
		paths[formats[0]] = output
		return paths
	}
	base := strings.TrimSuffix(output, filepath.Ext(output))
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}

// tableFor renders the move table used by replay and history show.
func tableFor(moves []burrow.Move, catalog burrow.Catalog) string {
	if len(moves) == 0 {
		return StyleDim.Render("(no moves)")
	}
	return render.Table(moves, catalog)
}
