package burrow

import "fmt"

// MoveKind distinguishes the two kinds of legal move.
type MoveKind int

const (
	// ToRoom moves an amphipod from the hallway into its own room, settling it.
	ToRoom MoveKind = iota
	// ToHallway moves the entrance-most amphipod of a room onto a hallway cell.
	ToHallway
)

var moveKindNames = map[MoveKind]string{
	ToRoom:    "room",
	ToHallway: "hallway",
}

func (k MoveKind) String() string {
	if s, ok := moveKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("MoveKind(%d)", int(k))
}

// MarshalText encodes the kind as "room" or "hallway".
func (k MoveKind) MarshalText() ([]byte, error) {
	s, ok := moveKindNames[k]
	if !ok {
		return nil, fmt.Errorf("unknown move kind %d", int(k))
	}
	return []byte(s), nil
}

// UnmarshalText decodes "room" or "hallway".
func (k *MoveKind) UnmarshalText(b []byte) error {
	for kind, name := range moveKindNames {
		if name == string(b) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown move kind %q", b)
}

// Move is one atomic step of a solution. Cell is the hallway end of the move
// (the source for ToRoom, the destination for ToHallway); Room and Slot are
// the room end.
type Move struct {
	Kind  MoveKind `json:"kind"`
	Class Class    `json:"class"`
	Cell  int      `json:"cell"`
	Room  int      `json:"room"`
	Slot  int      `json:"slot"`
	Steps int      `json:"steps"`
	Cost  int      `json:"cost"`
}

func (m Move) String() string {
	switch m.Kind {
	case ToRoom:
		return fmt.Sprintf("class %d: hallway %d -> room %d slot %d (%d steps, %d energy)",
			m.Class, m.Cell, m.Room, m.Slot, m.Steps, m.Cost)
	default:
		return fmt.Sprintf("class %d: room %d slot %d -> hallway %d (%d steps, %d energy)",
			m.Class, m.Room, m.Slot, m.Cell, m.Steps, m.Cost)
	}
}

// Describe renders the move with the catalog's class symbol.
func (m Move) Describe(c Catalog) string {
	sym := c.Symbol(m.Class)
	switch m.Kind {
	case ToRoom:
		return fmt.Sprintf("%c hallway %d → room %d[%d]", sym, m.Cell, m.Room, m.Slot)
	default:
		return fmt.Sprintf("%c room %d[%d] → hallway %d", sym, m.Room, m.Slot, m.Cell)
	}
}

// TotalCost sums the cost of moves.
func TotalCost(moves []Move) int {
	total := 0
	for _, m := range moves {
		total += m.Cost
	}
	return total
}

func moveCost(c Catalog, cl Class, cell, entrance, slot int) (steps, cost int) {
	steps = abs(cell-entrance) + slot + 1
	return steps, steps * c.Weight(cl)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
