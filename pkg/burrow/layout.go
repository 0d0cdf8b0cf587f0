package burrow

import "slices"

// DefaultHallwayWidth is the hallway width of the canonical four-room burrow.
const DefaultHallwayWidth = 11

// Layout is a plain description of a burrow used to build the initial
// [State]. Rooms list their contents from the entrance (index 0) to the back
// wall; [Empty] marks a vacancy.
type Layout struct {
	Hallway   []Class   `json:"hallway"`
	Entrances []int     `json:"entrances"`
	Rooms     [][]Class `json:"rooms"`
}

// DefaultEntrances returns the entrance cells of n rooms in the canonical
// arrangement: one wall cell at each end of the hallway and one between
// neighbouring rooms, i.e. cells 2, 4, 6, ...
func DefaultEntrances(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = (i + 1) * 2
	}
	return out
}

// NewLayout builds a layout with an empty hallway and canonical entrances
// around the given rooms. The hallway width is 2*len(rooms)+3.
func NewLayout(rooms [][]Class) Layout {
	width := 2*len(rooms) + 3
	hallway := make([]Class, width)
	for i := range hallway {
		hallway[i] = Empty
	}
	copied := make([][]Class, len(rooms))
	for i, r := range rooms {
		copied[i] = slices.Clone(r)
	}
	return Layout{
		Hallway:   hallway,
		Entrances: DefaultEntrances(len(rooms)),
		Rooms:     copied,
	}
}

// Depth returns the depth of the first room, or 0 if there are none.
func (l Layout) Depth() int {
	if len(l.Rooms) == 0 {
		return 0
	}
	return len(l.Rooms[0])
}

// Validate checks that the layout describes a burrow this package can
// search. It returns a *MalformedLayoutError describing the first problem.
func (l Layout) Validate(c Catalog) error {
	if len(l.Rooms) != c.Len() {
		return malformed("%d rooms for %d classes", len(l.Rooms), c.Len())
	}
	if len(l.Entrances) != len(l.Rooms) {
		return malformed("%d entrances for %d rooms", len(l.Entrances), len(l.Rooms))
	}
	depth := l.Depth()
	if depth == 0 {
		return malformed("rooms have no slots")
	}
	width := len(l.Hallway)
	for i, e := range l.Entrances {
		if e < 0 || e >= width {
			return malformed("entrance %d at cell %d is outside a hallway of width %d", i, e, width)
		}
		if i > 0 && e <= l.Entrances[i-1] {
			return malformed("entrances must be strictly increasing (room %d at %d)", i, e)
		}
	}
	for cell, cl := range l.Hallway {
		if cl == Empty {
			continue
		}
		if !c.Has(cl) {
			return malformed("unknown class %d in hallway cell %d", cl, cell)
		}
		if slices.Contains(l.Entrances, cell) {
			return malformed("amphipod %c rests on entrance cell %d", c.Symbol(cl), cell)
		}
	}
	for i, room := range l.Rooms {
		if len(room) != depth {
			return malformed("room %d has depth %d, want %d", i, len(room), depth)
		}
		seen := false
		for slot, cl := range room {
			if cl == Empty {
				if seen {
					return malformed("room %d has a gap at slot %d", i, slot)
				}
				continue
			}
			if !c.Has(cl) {
				return malformed("unknown class %d in room %d slot %d", cl, i, slot)
			}
			seen = true
		}
	}
	return nil
}

// Clone returns a deep copy of l.
func (l Layout) Clone() Layout {
	rooms := make([][]Class, len(l.Rooms))
	for i, r := range l.Rooms {
		rooms[i] = slices.Clone(r)
	}
	return Layout{
		Hallway:   slices.Clone(l.Hallway),
		Entrances: slices.Clone(l.Entrances),
		Rooms:     rooms,
	}
}
