package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/burrow/pkg/burrow"
	"github.com/matzehuels/burrow/pkg/config"
	"github.com/matzehuels/burrow/pkg/diagram"
	errs "github.com/matzehuels/burrow/pkg/errors"
	"github.com/matzehuels/burrow/pkg/history"
	"github.com/matzehuels/burrow/pkg/pipeline"
)

const autoplayInterval = 600 * time.Millisecond

// Replay styles
var (
	replayFrameStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorDim).
				Padding(0, 2)
	replayMoveStyle = lipgloss.NewStyle().Foreground(colorWhite)
	replayHelpStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// ReplayModel - Interactive solution stepping
// =============================================================================

// ReplayModel is the bubbletea model that steps through a solution one move
// at a time. Frames[0] is the initial state and Frames[i] the state after
// Moves[i-1].
type ReplayModel struct {
	Frames  []burrow.State
	Moves   []burrow.Move
	Catalog burrow.Catalog
	Step    int
	Playing bool
}

type tickMsg struct{}

// NewReplayModel replays moves from initial. It fails if a move is not
// legal in the state it is applied to.
func NewReplayModel(initial burrow.State, moves []burrow.Move, c burrow.Catalog) (ReplayModel, error) {
	frames, err := burrow.Replay(initial, moves)
	if err != nil {
		return ReplayModel{}, err
	}
	return ReplayModel{Frames: frames, Moves: moves, Catalog: c}, nil
}

func (m ReplayModel) Init() tea.Cmd {
	return nil
}

func (m ReplayModel) last() int { return len(m.Frames) - 1 }

func (m ReplayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "right", "l", "n", " ":
			m.Playing = false
			if m.Step < m.last() {
				m.Step++
			}
		case "left", "h", "p":
			m.Playing = false
			if m.Step > 0 {
				m.Step--
			}
		case "home", "g":
			m.Playing = false
			m.Step = 0
		case "end", "G":
			m.Playing = false
			m.Step = m.last()
		case "a":
			m.Playing = !m.Playing
			if m.Playing {
				if m.Step == m.last() {
					m.Step = 0
				}
				return m, tick()
			}
		}
	case tickMsg:
		if !m.Playing {
			return m, nil
		}
		if m.Step < m.last() {
			m.Step++
		}
		if m.Step == m.last() {
			m.Playing = false
			return m, nil
		}
		return m, tick()
	}
	return m, nil
}

func tick() tea.Cmd {
	return tea.Tick(autoplayInterval, func(time.Time) tea.Msg { return tickMsg{} })
}

func (m ReplayModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Burrow Replay"))
	b.WriteString("\n")
	b.WriteString(replayHelpStyle.Render("←/→ step  g/G first/last  a autoplay  q quit"))
	b.WriteString("\n\n")

	st := m.Frames[m.Step]
	b.WriteString(replayFrameStyle.Render(strings.TrimRight(diagram.FormatState(st, m.Catalog), "\n")))
	b.WriteString("\n\n")

	if m.Step == 0 {
		b.WriteString(replayMoveStyle.Render("start"))
	} else {
		mv := m.Moves[m.Step-1]
		b.WriteString(replayMoveStyle.Render(mv.Describe(m.Catalog)))
		b.WriteString(StyleDim.Render(fmt.Sprintf("  +%d", mv.Cost)))
	}
	b.WriteString("\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("step %d/%d · energy ", m.Step, m.last())))
	b.WriteString(StyleNumber.Render(fmt.Sprint(st.Cost)))
	if m.Step == m.last() && st.IsTerminal() {
		b.WriteString("  " + StyleSuccess.Render(iconSuccess+" sorted"))
	}
	b.WriteString("\n")

	return b.String()
}

// =============================================================================
// Command
// =============================================================================

// replayOpts holds the command-line flags for the replay command.
type replayOpts struct {
	solveOpts
	runID string // replay a recorded run instead of solving
	plain bool   // print every frame instead of starting the TUI
}

// replayCommand creates the replay command.
func (c *CLI) replayCommand() *cobra.Command {
	var opts replayOpts

	cmd := &cobra.Command{
		Use:   "replay [file]",
		Short: "Step through the cheapest solution of a burrow",
		Long: `Replay solves a burrow (using the solution cache when possible) or loads a
recorded run with --run, then steps through the moves interactively.`,
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
			if !cmd.Flags().Changed("timeout") {
				opts.timeout = cfg.Search.Timeout
			}
			model, err := c.loadReplay(cmd, cfg, opts)
			if err != nil {
				return err
			}
			if opts.plain {
				return printFrames(cmd, model)
			}
			_, err = tea.NewProgram(model, tea.WithContext(cmd.Context()), tea.WithOutput(cmd.OutOrStdout())).Run()
			return err
		},
	}

	cmd.Flags().StringVar(&opts.runID, "run", "", "replay a recorded run by ID")
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "print all frames instead of starting the interactive viewer")
	cmd.Flags().BoolVar(&opts.json, "json", false, "input is a JSON layout instead of a diagram")
	cmd.Flags().BoolVar(&opts.unfold, "unfold", false, "insert the two extra rows below the first room row")
	cmd.Flags().BoolVar(&opts.memoize, "memoize", true, "skip states already reached at lower or equal cost")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", pipeline.DefaultTimeout, "search time limit")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the solution cache")

	return cmd
}

// loadReplay builds the replay model from a recorded run or a fresh solve.
func (c *CLI) loadReplay(cmd *cobra.Command, cfg config.Config, opts replayOpts) (ReplayModel, error) {
	ctx := cmd.Context()
	catalog, err := cfg.BurrowCatalog()
	if err != nil {
		return ReplayModel{}, err
	}

	if opts.runID != "" {
		run, err := c.getRun(ctx, cfg, opts.runID)
		if err != nil {
			return ReplayModel{}, err
		}
		return replayRun(run, catalog)
	}

	popts, err := pipelineOptions(cmd, opts.solveOpts, catalog)
	if err != nil {
		return ReplayModel{}, err
	}
	runner, err := c.newRunner(ctx, cfg, opts.noCache)
	if err != nil {
		return ReplayModel{}, err
	}
	defer runner.Close(context.WithoutCancel(ctx))

	spinner := newSpinner(ctx, cmd.ErrOrStderr(), "Searching...")
	spinner.Start()
	res, err := runner.Solve(ctx, popts)
	spinner.Stop()
	if err != nil {
		return ReplayModel{}, err
	}
	if !res.Search.Solved {
		return ReplayModel{}, errs.New(errs.ErrCodeUnsolvable, "burrow cannot be sorted")
	}
	return NewReplayModel(res.Initial, res.Search.Moves, res.Catalog)
}

// replayRun rebuilds the initial state of a recorded run from its diagram.
func replayRun(run *history.Run, catalog burrow.Catalog) (ReplayModel, error) {
	if !run.Solved {
		return ReplayModel{}, errs.New(errs.ErrCodeUnsolvable, "run %s has no solution", run.ID)
	}
	l, err := diagram.Parse(run.Diagram, catalog)
	if err != nil {
		return ReplayModel{}, fmt.Errorf("run %s: %w", run.ID, err)
	}
	initial, err := burrow.NewState(l, catalog)
	if err != nil {
		return ReplayModel{}, fmt.Errorf("run %s: %w", run.ID, err)
	}
	return NewReplayModel(initial, run.Moves, catalog)
}

// printFrames writes every frame of the model, separated by the move that
// leads to it.
func printFrames(cmd *cobra.Command, m ReplayModel) error {
	out := cmd.OutOrStdout()
	for i, st := range m.Frames {
		if i > 0 {
			mv := m.Moves[i-1]
			fmt.Fprintf(out, "\n%d. %s (+%d, total %d)\n", i, mv.Describe(m.Catalog), mv.Cost, st.Cost)
		}
		if _, err := fmt.Fprint(out, diagram.FormatState(st, m.Catalog)); err != nil {
			return err
		}
	}
	return nil
}
