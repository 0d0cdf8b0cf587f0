package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/burrow/pkg/pipeline"
)

// =============================================================================
// Palette and Styles
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // energy, titles
	colorGreen  = lipgloss.Color("35")  // sorted, cached
	colorYellow = lipgloss.Color("220") // unsolvable
	colorBlue   = lipgloss.Color("75")  // suggested commands
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for energies and counts.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleSuccess for a sorted burrow.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for an unsolvable burrow.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
	styleSource      = map[bool]lipgloss.Style{
		true:  lipgloss.NewStyle().Foreground(colorGreen),
		false: lipgloss.NewStyle().Foreground(colorGray),
	}
)

const (
	iconSuccess = "✓"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Printer
// =============================================================================

// printer writes styled status lines to a command's output, so that they
// interleave correctly with the command's other output.
type printer struct {
	w io.Writer
}

func newPrinter(cmd *cobra.Command) printer {
	return printer{w: cmd.OutOrStdout()}
}

func (p printer) status(icon string, style lipgloss.Style, msg string) {
	fmt.Fprintln(p.w, style.Render(icon)+" "+msg)
}

func (p printer) success(format string, args ...any) {
	p.status(iconSuccess, StyleSuccess, fmt.Sprintf(format, args...))
}

func (p printer) warning(format string, args ...any) {
	p.status(iconWarning, StyleWarning, StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func (p printer) info(format string, args ...any) {
	p.status(iconInfo, StyleDim, fmt.Sprintf(format, args...))
}

// detail prints an indented secondary line.
func (p printer) detail(format string, args ...any) {
	fmt.Fprintln(p.w, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// file prints a written output path.
func (p printer) file(path string) {
	fmt.Fprintln(p.w, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

func (p printer) keyValue(key, value string) {
	fmt.Fprintln(p.w, styleKey.Render(key)+" "+StyleValue.Render(value))
}

// energy prints the headline of a solve: the minimum energy, or a warning
// when the burrow cannot be sorted.
func (p printer) energy(res *pipeline.Result) {
	if !res.Search.Solved {
		p.warning("No solution found")
		return
	}
	p.success("Minimum energy: %s", StyleNumber.Render(fmt.Sprint(res.Search.Cost)))
}

// solveStats prints the search counters on one line, ending with whether
// the result came from the cache.
func (p printer) solveStats(res *pipeline.Result) {
	parts := []string{
		fmt.Sprintf("%d moves", len(res.Search.Moves)),
		fmt.Sprintf("%d states", res.Search.Explored),
		fmt.Sprintf("%d pruned", res.Search.Pruned),
		res.Search.Duration.Round(time.Millisecond).String(),
	}
	for i, part := range parts {
		parts[i] = StyleDim.Render(part)
	}
	source := iconFresh
	if res.CacheInfo.SolveHit {
		source = iconCached
	}
	parts = append(parts, styleSource[res.CacheInfo.SolveHit].Render(source))
	fmt.Fprintln(p.w, "  "+strings.Join(parts, StyleDim.Render(" · ")))
}

// nextStep suggests a follow-up command.
func (p printer) nextStep(description, command string) {
	fmt.Fprintln(p.w, StyleDim.Render(description+":")+" "+styleCommand.Render(command))
}

func (p printer) newline() {
	fmt.Fprintln(p.w)
}
