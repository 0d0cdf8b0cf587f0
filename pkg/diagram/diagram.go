// Package diagram reads and writes burrows in the textual puzzle notation:
//
//	#############
//	#...........#
//	###B#C#B#D###
//	  #A#D#C#A#
//	  #########
//
// The second line is the hallway, the lines between it and the bottom wall
// are room rows from the entrance down. Room openings are the columns of the
// first room row that are not wall, and they determine both the number of
// rooms and the entrance cells. '.' marks an empty cell or slot.
package diagram

import (
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/burrow/pkg/burrow"
	"github.com/matzehuels/burrow/pkg/errors"
)

const (
	wall  = '#'
	blank = ' '
	empty = '.'
)

// DefaultFold holds the two room rows hidden in the folded form of the
// canonical puzzle. Unfold inserts them below the first room row.
var DefaultFold = []string{
	"  #D#C#B#A#",
	"  #D#B#A#C#",
}

// Parse reads a diagram into a validated layout. Any problem is reported as
// an *errors.Error with code ErrCodeMalformedLayout wrapping a
// *burrow.MalformedLayoutError.
func Parse(text string, c burrow.Catalog) (burrow.Layout, error) {
	if err := c.Validate(); err != nil {
		return burrow.Layout{}, errors.Wrap(errors.ErrCodeInvalidCatalog, err, "invalid catalog")
	}
	lines := splitLines(text)
	if len(lines) < 4 {
		return burrow.Layout{}, malformed("need a top wall, a hallway, at least one room row and a bottom wall; got %d lines", len(lines))
	}

	hall := lines[1]
	if len(hall) < 3 || hall[0] != wall || hall[len(hall)-1] != wall {
		return burrow.Layout{}, malformed("hallway line must be enclosed by walls")
	}
	width := len(hall) - 2
	if string(trimRight(lines[0])) != strings.Repeat(string(wall), width+2) {
		return burrow.Layout{}, malformed("top wall must be %d '#' characters", width+2)
	}

	hallway := make([]burrow.Class, width)
	for i, r := range hall[1 : width+1] {
		cl, err := classOf(r, c)
		if err != nil {
			return burrow.Layout{}, malformed("hallway cell %d: %v", i, err)
		}
		hallway[i] = cl
	}

	bottom := lines[len(lines)-1]
	if !isWallRow(bottom) {
		return burrow.Layout{}, malformed("missing bottom wall")
	}

	rows := lines[2 : len(lines)-1]
	var openings []int
	for col, r := range rows[0] {
		if r != wall && r != blank {
			openings = append(openings, col)
		}
	}
	if len(openings) == 0 {
		return burrow.Layout{}, malformed("first room row has no openings")
	}

	rooms := make([][]burrow.Class, len(openings))
	for i := range rooms {
		rooms[i] = make([]burrow.Class, len(rows))
	}
	for depth, row := range rows {
		var cols []int
		for col, r := range row {
			if r != wall && r != blank {
				cols = append(cols, col)
			}
		}
		if !slices.Equal(cols, openings) {
			return burrow.Layout{}, malformed("room row %d does not line up with the room openings", depth)
		}
		for i, col := range openings {
			if col < 1 || col > width || row[col-1] != wall || col+1 >= len(row) || row[col+1] != wall {
				return burrow.Layout{}, malformed("room %d is not walled in at row %d", i, depth)
			}
			cl, err := classOf(row[col], c)
			if err != nil {
				return burrow.Layout{}, malformed("room %d slot %d: %v", i, depth, err)
			}
			rooms[i][depth] = cl
		}
	}

	entrances := make([]int, len(openings))
	for i, col := range openings {
		entrances[i] = col - 1
	}

	l := burrow.Layout{Hallway: hallway, Entrances: entrances, Rooms: rooms}
	if err := l.Validate(c); err != nil {
		return burrow.Layout{}, errors.Wrap(errors.ErrCodeMalformedLayout, err, "invalid burrow")
	}
	return l, nil
}

// Format renders l in diagram notation. Format and Parse round-trip for
// valid layouts whose entrances are at least two cells apart; adjacent
// entrances have no wall between their rooms and do not parse back.
func Format(l burrow.Layout, c burrow.Catalog) string {
	width := len(l.Hallway)
	var b strings.Builder

	b.WriteString(strings.Repeat(string(wall), width+2))
	b.WriteByte('\n')

	b.WriteRune(wall)
	for _, cl := range l.Hallway {
		b.WriteRune(c.Symbol(cl))
	}
	b.WriteRune(wall)
	b.WriteByte('\n')

	if len(l.Entrances) == 0 {
		return b.String()
	}
	lo, hi := l.Entrances[0], l.Entrances[len(l.Entrances)-1]+2
	for depth := 0; depth < l.Depth(); depth++ {
		row := make([]rune, width+2)
		for col := range row {
			switch {
			case depth == 0, col >= lo && col <= hi:
				row[col] = wall
			default:
				row[col] = blank
			}
		}
		for i, e := range l.Entrances {
			row[e+1] = c.Symbol(l.Rooms[i][depth])
		}
		b.WriteString(string(trimRight(row)))
		b.WriteByte('\n')
	}

	b.WriteString(strings.Repeat(string(blank), lo))
	b.WriteString(strings.Repeat(string(wall), hi-lo+1))
	b.WriteByte('\n')
	return b.String()
}

// FormatState renders the current contents of s.
func FormatState(s burrow.State, c burrow.Catalog) string {
	return Format(s.Layout(), c)
}

// Unfold inserts extra room rows directly below the first room row of text.
// Blank lines before the diagram are ignored.
func Unfold(text string, extra []string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	seen := 0
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		seen++
		if seen == 3 {
			out := make([]string, 0, len(lines)+len(extra))
			out = append(out, lines[:i+1]...)
			out = append(out, extra...)
			out = append(out, lines[i+1:]...)
			return strings.Join(out, "\n")
		}
	}
	return text
}

func splitLines(text string) [][]rune {
	var out [][]rune
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, trimRight([]rune(line)))
	}
	return out
}

func trimRight(row []rune) []rune {
	end := len(row)
	for end > 0 && (row[end-1] == blank || row[end-1] == '\t') {
		end--
	}
	return row[:end]
}

func isWallRow(row []rune) bool {
	walls := 0
	for _, r := range row {
		switch r {
		case wall:
			walls++
		case blank:
		default:
			return false
		}
	}
	return walls > 0
}

func classOf(r rune, c burrow.Catalog) (burrow.Class, error) {
	if r == empty {
		return burrow.Empty, nil
	}
	cl, ok := c.ClassOf(r)
	if !ok {
		return burrow.Empty, fmt.Errorf("unknown symbol %q", r)
	}
	return cl, nil
}

func malformed(format string, args ...any) error {
	reason := fmt.Sprintf(format, args...)
	return errors.Wrap(errors.ErrCodeMalformedLayout, &burrow.MalformedLayoutError{Reason: reason}, "invalid diagram")
}
