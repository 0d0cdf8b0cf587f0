package burrow

import "fmt"

// State is a snapshot of the burrow together with the energy spent reaching
// it. States are never modified; Apply returns a new one.
type State struct {
	Hallway Hallway
	Rooms   Rooms
	Cost    int
}

// NewState builds the initial state for a validated layout. Amphipods that
// already sit at the back of their own room, with only their own class behind
// them, start out settled.
func NewState(l Layout, c Catalog) (State, error) {
	if err := c.Validate(); err != nil {
		return State{}, err
	}
	if err := l.Validate(c); err != nil {
		return State{}, err
	}

	h := NewHallway(len(l.Hallway), l.Entrances)
	for cell, cl := range l.Hallway {
		if cl == Empty {
			continue
		}
		h.cells[cell] = Unit{Class: cl}
	}

	r := NewRooms(len(l.Rooms), l.Depth())
	for i, room := range l.Rooms {
		bay := r.bays[i]
		settling := true
		for slot := len(room) - 1; slot >= 0; slot-- {
			cl := room[slot]
			if cl == Empty {
				continue
			}
			settling = settling && int(cl) == i
			bay[slot] = Unit{Class: cl, Settled: settling}
		}
	}
	return State{Hallway: h, Rooms: r}, nil
}

// IsTerminal reports whether the burrow is sorted: the hallway is empty and
// every room holds only its own class.
func (s State) IsTerminal() bool {
	return s.Hallway.IsEmpty() && s.Rooms.AllSorted()
}

// Moves enumerates every legal move from s. Settling moves come first, in
// ascending hallway order, followed by exits from each room in room order.
func (s State) Moves(c Catalog) []Move {
	var moves []Move

	for _, cell := range s.Hallway.Occupied() {
		u, _ := s.Hallway.At(cell)
		if u.Settled {
			continue
		}
		slot, ok := s.Rooms.SettleSlot(u.Class)
		if !ok {
			continue
		}
		entrance := s.Hallway.Entrance(int(u.Class))
		if !s.Hallway.IsPathClear(cell, entrance) {
			continue
		}
		steps, cost := moveCost(c, u.Class, cell, entrance, slot)
		moves = append(moves, Move{
			Kind: ToRoom, Class: u.Class,
			Cell: cell, Room: int(u.Class), Slot: slot,
			Steps: steps, Cost: cost,
		})
	}

	for _, src := range s.Rooms.FirstMovable() {
		u, _ := s.Rooms.At(src.Room, src.Index)
		entrance := s.Hallway.Entrance(src.Room)
		for _, cell := range s.Hallway.ReachableFrom(entrance) {
			steps, cost := moveCost(c, u.Class, cell, entrance, src.Index)
			moves = append(moves, Move{
				Kind: ToHallway, Class: u.Class,
				Cell: cell, Room: src.Room, Slot: src.Index,
				Steps: steps, Cost: cost,
			})
		}
	}
	return moves
}

// Apply performs m and returns the resulting state. It does not re-check
// path legality; it fails only on structural violations, which indicate m
// was not produced by Moves for this state.
func (s State) Apply(m Move) (State, error) {
	switch m.Kind {
	case ToRoom:
		h, u, err := s.Hallway.Vacate(m.Cell)
		if err != nil {
			return s, err
		}
		if int(u.Class) != m.Room {
			return s, fmt.Errorf("class %d cannot settle in room %d", u.Class, m.Room)
		}
		r, err := s.Rooms.Put(u, m.Slot)
		if err != nil {
			return s, err
		}
		return State{Hallway: h, Rooms: r, Cost: s.Cost + m.Cost}, nil
	case ToHallway:
		r, u, err := s.Rooms.Take(m.Room, m.Slot)
		if err != nil {
			return s, err
		}
		h, err := s.Hallway.Occupy(m.Cell, u)
		if err != nil {
			return s, err
		}
		return State{Hallway: h, Rooms: r, Cost: s.Cost + m.Cost}, nil
	}
	return s, fmt.Errorf("unknown move kind %d", int(m.Kind))
}

// Key returns a compact encoding of the hallway and room contents (not the
// cost). Two states with equal keys have identical futures.
func (s State) Key() string {
	buf := make([]byte, 0, len(s.Hallway.cells)+len(s.Rooms.bays)*s.Rooms.depth)
	for _, u := range s.Hallway.cells {
		buf = append(buf, encodeUnit(u))
	}
	for _, bay := range s.Rooms.bays {
		for _, u := range bay {
			buf = append(buf, encodeUnit(u))
		}
	}
	return string(buf)
}

func encodeUnit(u Unit) byte {
	b := byte(u.Class + 1)
	if u.Settled {
		b |= 0x80
	}
	return b
}

// Counts returns the number of amphipods of each of n classes.
func (s State) Counts(n int) []int {
	counts := make([]int, n)
	add := func(u Unit) {
		if u.Present() && int(u.Class) < n {
			counts[u.Class]++
		}
	}
	for _, u := range s.Hallway.cells {
		add(u)
	}
	for _, bay := range s.Rooms.bays {
		for _, u := range bay {
			add(u)
		}
	}
	return counts
}

// Layout converts s back into a plain layout.
func (s State) Layout() Layout {
	l := Layout{
		Hallway:   make([]Class, len(s.Hallway.cells)),
		Entrances: s.Hallway.Entrances(),
		Rooms:     make([][]Class, len(s.Rooms.bays)),
	}
	for i, u := range s.Hallway.cells {
		l.Hallway[i] = u.Class
	}
	for i, bay := range s.Rooms.bays {
		room := make([]Class, len(bay))
		for j, u := range bay {
			room[j] = u.Class
		}
		l.Rooms[i] = room
	}
	return l
}

// Replay applies moves to s in order and returns every intermediate state,
// starting with s itself.
func Replay(s State, moves []Move) ([]State, error) {
	frames := make([]State, 0, len(moves)+1)
	frames = append(frames, s)
	for i, m := range moves {
		next, err := s.Apply(m)
		if err != nil {
			return frames, fmt.Errorf("move %d: %w", i+1, err)
		}
		frames = append(frames, next)
		s = next
	}
	return frames, nil
}
