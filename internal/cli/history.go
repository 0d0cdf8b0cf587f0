package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/burrow/pkg/config"
	errs "github.com/matzehuels/burrow/pkg/errors"
	"github.com/matzehuels/burrow/pkg/history"
)

// errNoHistory is returned when a history command runs without a store.
var errNoHistory = errs.New(errs.ErrCodeInvalidConfig,
	"run history needs a MongoDB store: set history.mongo_uri or %s", config.EnvMongoURI)

// historyCommand creates the history command.
func (c *CLI) historyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List and inspect recorded solve runs",
	}

	cmd.AddCommand(c.historyListCommand())
	cmd.AddCommand(c.historyShowCommand())

	return cmd
}

// historyListCommand creates the "history list" subcommand.
func (c *CLI) historyListCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			store, err := openHistory(ctx, cfg)
			if err != nil {
				return err
			}
			defer store.Close(context.WithoutCancel(ctx))

			runs, err := store.List(ctx, limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				newPrinter(cmd).info("No runs recorded")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), runsTable(runs))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", history.DefaultListLimit, "maximum number of runs to list")

	return cmd
}

// historyShowCommand creates the "history show" subcommand.
func (c *CLI) historyShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one run with its moves",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			catalog, err := cfg.BurrowCatalog()
			if err != nil {
				return err
			}
			run, err := c.getRun(cmd.Context(), cfg, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			p := newPrinter(cmd)
			p.keyValue("Run", run.ID)
			p.keyValue("Created", run.CreatedAt.Local().Format(time.DateTime))
			if run.Solved {
				p.keyValue("Energy", strconv.Itoa(run.Cost))
			} else {
				p.keyValue("Energy", "unsolvable")
			}
			p.keyValue("Explored", strconv.Itoa(run.Explored))
			p.keyValue("Duration", run.Duration.Round(time.Millisecond).String())
			p.newline()
			fmt.Fprint(out, run.Diagram)
			p.newline()
			fmt.Fprintln(out, tableFor(run.Moves, catalog))
			return nil
		},
	}
}

// openHistory connects to the configured history store.
func openHistory(ctx context.Context, cfg config.Config) (history.Store, error) {
	if cfg.History.MongoURI == "" {
		return nil, errNoHistory
	}
	return newHistoryStore(ctx, cfg)
}

// getRun fetches a single run, mapping a missing ID to ErrCodeNotFound.
func (c *CLI) getRun(ctx context.Context, cfg config.Config, id string) (*history.Run, error) {
	if err := errs.ValidateRunID(id); err != nil {
		return nil, err
	}
	store, err := openHistory(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer store.Close(context.WithoutCancel(ctx))

	run, err := store.Get(ctx, id)
	if errors.Is(err, history.ErrNotFound) {
		return nil, errs.Wrap(errs.ErrCodeNotFound, err, "run %s", id)
	}
	return run, err
}

// runsTable renders a run listing.
func runsTable(runs []*history.Run) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		energy := StyleWarning.Render("unsolvable")
		if r.Solved {
			energy = strconv.Itoa(r.Cost)
		}
		status := iconFresh
		if r.Cached {
			status = iconCached
		}
		rows = append(rows, []string{
			r.ID,
			r.CreatedAt.Local().Format(time.DateTime),
			energy,
			strconv.Itoa(len(r.Moves)),
			strconv.Itoa(r.Explored),
			status,
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Run", "Created", "Energy", "Moves", "Explored", "Status").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 5 && runs[row].Cached {
				return styleSource[true]
			}
			return lipgloss.NewStyle()
		}).
		Render()
}
