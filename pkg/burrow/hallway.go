package burrow

import (
	"fmt"
	"slices"
)

// Hallway is the shared corridor. Entrance cells sit in front of the rooms;
// amphipods may pass over them but never stop there.
//
// A Hallway is a value: Occupy and Vacate return a modified copy.
type Hallway struct {
	cells     []Unit
	entrances []int  // entrance cell of room i, shared between copies
	isEntry   []bool // shared between copies
}

// NewHallway returns an empty hallway of the given width. entrances[i] is the
// cell in front of room i.
func NewHallway(width int, entrances []int) Hallway {
	h := Hallway{
		cells:     make([]Unit, width),
		entrances: slices.Clone(entrances),
		isEntry:   make([]bool, width),
	}
	for i := range h.cells {
		h.cells[i] = vacant
	}
	for _, e := range entrances {
		if e >= 0 && e < width {
			h.isEntry[e] = true
		}
	}
	return h
}

// Len returns the number of cells.
func (h Hallway) Len() int { return len(h.cells) }

// At returns the amphipod on cell, if any.
func (h Hallway) At(cell int) (Unit, bool) {
	if cell < 0 || cell >= len(h.cells) || !h.cells[cell].Present() {
		return vacant, false
	}
	return h.cells[cell], true
}

// IsEntrance reports whether cell is in front of a room.
func (h Hallway) IsEntrance(cell int) bool {
	return cell >= 0 && cell < len(h.isEntry) && h.isEntry[cell]
}

// Entrance returns the cell in front of room.
func (h Hallway) Entrance(room int) int { return h.entrances[room] }

// Entrances returns a copy of the entrance cells in room order.
func (h Hallway) Entrances() []int { return slices.Clone(h.entrances) }

// Occupy returns a hallway with u standing on cell.
func (h Hallway) Occupy(cell int, u Unit) (Hallway, error) {
	if cell < 0 || cell >= len(h.cells) {
		return h, fmt.Errorf("hallway cell %d: %w", cell, ErrOutOfRange)
	}
	if h.cells[cell].Present() {
		return h, &OccupiedCellError{Cell: cell}
	}
	next := h.clone()
	next.cells[cell] = u
	return next, nil
}

// Vacate returns a hallway with cell cleared together with the amphipod
// that stood there.
func (h Hallway) Vacate(cell int) (Hallway, Unit, error) {
	if cell < 0 || cell >= len(h.cells) {
		return h, vacant, fmt.Errorf("hallway cell %d: %w", cell, ErrOutOfRange)
	}
	u := h.cells[cell]
	if !u.Present() {
		return h, vacant, &EmptyCellError{Cell: cell}
	}
	next := h.clone()
	next.cells[cell] = vacant
	return next, u, nil
}

// IsPathClear reports whether every cell strictly between from and to is
// empty. Out-of-range endpoints are never clear.
func (h Hallway) IsPathClear(from, to int) bool {
	n := len(h.cells)
	if from < 0 || to < 0 || from >= n || to >= n {
		return false
	}
	lo, hi := min(from, to), max(from, to)
	for i := lo + 1; i < hi; i++ {
		if h.cells[i].Present() {
			return false
		}
	}
	return true
}

// ReachableFrom returns the empty, non-entrance cells an amphipod standing at
// cell could stop on. Cells to the right come first (nearest first), then
// cells to the left. Each direction ends at the first occupied cell.
func (h Hallway) ReachableFrom(cell int) []int {
	n := len(h.cells)
	if cell < 0 || cell >= n {
		return nil
	}
	var out []int
	for i := cell + 1; i < n; i++ {
		if h.cells[i].Present() {
			break
		}
		if !h.isEntry[i] {
			out = append(out, i)
		}
	}
	for i := cell - 1; i >= 0; i-- {
		if h.cells[i].Present() {
			break
		}
		if !h.isEntry[i] {
			out = append(out, i)
		}
	}
	return out
}

// Occupied returns the occupied cells in ascending order.
func (h Hallway) Occupied() []int {
	var out []int
	for i, u := range h.cells {
		if u.Present() {
			out = append(out, i)
		}
	}
	return out
}

// IsEmpty reports whether no amphipod is in the hallway.
func (h Hallway) IsEmpty() bool {
	for _, u := range h.cells {
		if u.Present() {
			return false
		}
	}
	return true
}

func (h Hallway) clone() Hallway {
	return Hallway{
		cells:     slices.Clone(h.cells),
		entrances: h.entrances,
		isEntry:   h.isEntry,
	}
}
