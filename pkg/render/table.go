package render

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/burrow/pkg/burrow"
)

// Table renders moves as a bordered table with one row per move and a
// running energy total.
func Table(moves []burrow.Move, c burrow.Catalog) string {
	rows := make([][]string, 0, len(moves))
	total := 0
	for i, m := range moves {
		total += m.Cost
		from, to := fmt.Sprintf("room %d[%d]", m.Room, m.Slot), fmt.Sprintf("hallway %d", m.Cell)
		if m.Kind == burrow.ToRoom {
			from, to = to, from
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			string(c.Symbol(m.Class)),
			from,
			to,
			strconv.Itoa(m.Steps),
			strconv.Itoa(m.Cost),
			strconv.Itoa(total),
		})
	}

	numeric := lipgloss.NewStyle().Align(lipgloss.Right).Padding(0, 1)
	plain := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "Unit", "From", "To", "Steps", "Energy", "Total").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row != table.HeaderRow && (col == 0 || col >= 4) {
				return numeric
			}
			return plain
		})
	return t.Render()
}
