package burrow

import (
	"errors"
	"math/rand/v2"
	"slices"
	"testing"
)

// exampleRooms is the well-known four-room puzzle with rooms of depth two.
func exampleRooms() [][]Class {
	return [][]Class{{B, A}, {C, D}, {B, C}, {D, A}}
}

func mustState(t testing.TB, l Layout, c Catalog) State {
	t.Helper()
	s, err := NewState(l, c)
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	return s
}

func TestNewStateSettlesBackRun(t *testing.T) {
	s := mustState(t, NewLayout(exampleRooms()), DefaultCatalog())

	tests := []struct {
		room, slot int
		settled    bool
	}{
		{0, 0, false},
		{0, 1, true},
		{1, 0, false},
		{1, 1, false},
		{2, 0, false},
		{2, 1, true},
		{3, 0, false},
		{3, 1, false},
	}
	for _, tt := range tests {
		u, ok := s.Rooms.At(tt.room, tt.slot)
		if !ok {
			t.Fatalf("slot %d/%d unexpectedly empty", tt.room, tt.slot)
		}
		if u.Settled != tt.settled {
			t.Errorf("room %d slot %d settled = %v, want %v", tt.room, tt.slot, u.Settled, tt.settled)
		}
	}
}

func TestNewStateErrors(t *testing.T) {
	tests := []struct {
		name    string
		layout  Layout
		catalog Catalog
		check   func(error) bool
	}{
		{
			name:    "empty catalog",
			layout:  NewLayout(exampleRooms()),
			catalog: Catalog{},
			check:   func(err error) bool { return errors.Is(err, ErrEmptyCatalog) },
		},
		{
			name:    "room count mismatch",
			layout:  NewLayout([][]Class{{A}, {B}}),
			catalog: DefaultCatalog(),
			check:   isMalformed,
		},
		{
			name:    "gap in room",
			layout:  NewLayout([][]Class{{A, vac}, {B, B}}),
			catalog: DefaultCatalog()[:2],
			check:   isMalformed,
		},
		{
			name:    "uneven depth",
			layout:  NewLayout([][]Class{{A, A}, {B}}),
			catalog: DefaultCatalog()[:2],
			check:   isMalformed,
		},
		{
			name: "unit on entrance",
			layout: func() Layout {
				l := NewLayout([][]Class{{vac}, {B}})
				l.Hallway[2] = A
				return l
			}(),
			catalog: DefaultCatalog()[:2],
			check:   isMalformed,
		},
		{
			name:    "unknown class",
			layout:  NewLayout([][]Class{{Class(5)}, {B}}),
			catalog: DefaultCatalog()[:2],
			check:   isMalformed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewState(tt.layout, tt.catalog)
			if err == nil || !tt.check(err) {
				t.Errorf("NewState() err = %v", err)
			}
		})
	}
}

func isMalformed(err error) bool {
	var m *MalformedLayoutError
	return errors.As(err, &m)
}

func TestStateMovesInitial(t *testing.T) {
	s := mustState(t, NewLayout(exampleRooms()), DefaultCatalog())
	moves := s.Moves(DefaultCatalog())

	// Four unsettled tops, seven resting cells each, nothing in the hallway.
	if len(moves) != 28 {
		t.Fatalf("len(Moves()) = %d, want 28", len(moves))
	}
	for _, m := range moves {
		if m.Kind != ToHallway {
			t.Errorf("unexpected %v", m)
		}
		if m.Slot != 0 {
			t.Errorf("move from buried slot: %v", m)
		}
		if m.Cost != m.Steps*DefaultCatalog().Weight(m.Class) {
			t.Errorf("cost %d != steps %d * weight", m.Cost, m.Steps)
		}
	}
	first := moves[0]
	want := Move{Kind: ToHallway, Class: B, Cell: 3, Room: 0, Slot: 0, Steps: 2, Cost: 20}
	if first != want {
		t.Errorf("Moves()[0] = %+v, want %+v", first, want)
	}
}

func TestStateMovesSettleFirst(t *testing.T) {
	l := NewLayout([][]Class{{vac, A}, {B, B}, {C, C}, {D, D}})
	l.Hallway[0] = A
	s := mustState(t, l, DefaultCatalog())

	moves := s.Moves(DefaultCatalog())
	if len(moves) != 1 {
		t.Fatalf("Moves() = %v, want a single settling move", moves)
	}
	want := Move{Kind: ToRoom, Class: A, Cell: 0, Room: 0, Slot: 0, Steps: 3, Cost: 3}
	if moves[0] != want {
		t.Errorf("Moves()[0] = %+v, want %+v", moves[0], want)
	}

	next, err := s.Apply(moves[0])
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !next.IsTerminal() || next.Cost != 3 {
		t.Errorf("after Apply: terminal = %v, cost = %d", next.IsTerminal(), next.Cost)
	}
	if s.IsTerminal() {
		t.Error("Apply modified the receiver")
	}
}

func TestStateApplyRejectsIllegalMoves(t *testing.T) {
	s := mustState(t, NewLayout(exampleRooms()), DefaultCatalog())

	tests := []struct {
		name string
		move Move
	}{
		{"room out of range", Move{Kind: ToHallway, Room: 7, Slot: 0, Cell: 0}},
		{"buried unit", Move{Kind: ToHallway, Room: 1, Slot: 1, Cell: 0}},
		{"empty hallway cell", Move{Kind: ToRoom, Cell: 5, Room: 0, Slot: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.Apply(tt.move); !IsInvariantViolation(err) {
				t.Errorf("Apply(%v) err = %v, want invariant violation", tt.move, err)
			}
		})
	}

	if _, err := s.Apply(Move{Kind: MoveKind(9)}); err == nil {
		t.Error("Apply with unknown kind succeeded")
	}
}

func TestStateKey(t *testing.T) {
	s := mustState(t, NewLayout(exampleRooms()), DefaultCatalog())
	m := s.Moves(DefaultCatalog())[0]

	next, err := s.Apply(m)
	if err != nil {
		t.Fatal(err)
	}
	if s.Key() == next.Key() {
		t.Error("distinct positions share a key")
	}

	same := next
	same.Cost = 0
	if same.Key() != next.Key() {
		t.Error("key depends on cost")
	}
}

func TestStateLayoutRoundTrip(t *testing.T) {
	l := NewLayout(exampleRooms())
	l.Rooms[0][0] = Empty
	l.Hallway[5] = B
	s := mustState(t, l, DefaultCatalog())

	got := s.Layout()
	if !slices.Equal(got.Hallway, l.Hallway) || !slices.Equal(got.Entrances, l.Entrances) {
		t.Errorf("Layout() hallway = %v %v, want %v %v", got.Hallway, got.Entrances, l.Hallway, l.Entrances)
	}
	for i := range l.Rooms {
		if !slices.Equal(got.Rooms[i], l.Rooms[i]) {
			t.Errorf("Layout() room %d = %v, want %v", i, got.Rooms[i], l.Rooms[i])
		}
	}
}

// TestRandomWalkInvariants follows random legal moves from the example
// burrow and checks the properties every reachable state must have.
func TestRandomWalkInvariants(t *testing.T) {
	cat := DefaultCatalog()
	initial := mustState(t, NewLayout(exampleRooms()), cat)
	want := initial.Counts(cat.Len())
	rng := rand.New(rand.NewPCG(23, 2021))

	for walk := 0; walk < 200; walk++ {
		s := initial
		for step := 0; step < 64; step++ {
			moves := s.Moves(cat)
			if len(moves) == 0 {
				break
			}
			for _, m := range moves {
				if m.Steps <= 0 || m.Cost != m.Steps*cat.Weight(m.Class) {
					t.Fatalf("bad move cost: %v", m)
				}
				if m.Kind == ToHallway {
					u, _ := s.Rooms.At(m.Room, m.Slot)
					if u.Settled {
						t.Fatalf("move of settled unit offered: %v", m)
					}
					if s.Hallway.IsEntrance(m.Cell) {
						t.Fatalf("move onto entrance offered: %v", m)
					}
				}
			}

			m := moves[rng.IntN(len(moves))]
			next, err := s.Apply(m)
			if err != nil {
				t.Fatalf("walk %d step %d: Apply(%v): %v", walk, step, m, err)
			}
			if next.Cost != s.Cost+m.Cost {
				t.Fatalf("cost went from %d to %d with move cost %d", s.Cost, next.Cost, m.Cost)
			}
			if got := next.Counts(cat.Len()); !slices.Equal(got, want) {
				t.Fatalf("counts changed: got %v, want %v", got, want)
			}
			if err := next.Rooms.CheckPacking(); err != nil {
				t.Fatalf("walk %d step %d: %v", walk, step, err)
			}
			checkSettledKept(t, s, next)
			s = next
		}
	}
}

func checkSettledKept(t *testing.T, before, after State) {
	t.Helper()
	for room := 0; room < before.Rooms.Count(); room++ {
		for slot := 0; slot < before.Rooms.Depth(); slot++ {
			u, ok := before.Rooms.At(room, slot)
			if !ok || !u.Settled {
				continue
			}
			v, ok := after.Rooms.At(room, slot)
			if !ok || !v.Settled || v.Class != u.Class {
				t.Fatalf("settled unit at room %d slot %d moved", room, slot)
			}
		}
	}
}

func TestReplay(t *testing.T) {
	l := NewLayout([][]Class{{B}, {A}, {C}, {D}})
	s := mustState(t, l, DefaultCatalog())
	moves := []Move{
		{Kind: ToHallway, Class: B, Cell: 3, Room: 0, Slot: 0, Steps: 2, Cost: 20},
		{Kind: ToHallway, Class: A, Cell: 5, Room: 1, Slot: 0, Steps: 2, Cost: 2},
		{Kind: ToRoom, Class: B, Cell: 3, Room: 1, Slot: 0, Steps: 2, Cost: 20},
		{Kind: ToRoom, Class: A, Cell: 5, Room: 0, Slot: 0, Steps: 4, Cost: 4},
	}

	frames, err := Replay(s, moves)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if len(frames) != len(moves)+1 {
		t.Fatalf("len(frames) = %d, want %d", len(frames), len(moves)+1)
	}
	last := frames[len(frames)-1]
	if !last.IsTerminal() || last.Cost != 46 {
		t.Errorf("final frame terminal = %v cost = %d, want terminal at 46", last.IsTerminal(), last.Cost)
	}

	_, err = Replay(s, moves[1:2:2])
	if err != nil {
		t.Fatalf("Replay partial: %v", err)
	}
	frames, err = Replay(s, []Move{moves[0], moves[0]})
	if err == nil {
		t.Fatal("Replay of a repeated exit succeeded")
	}
	if len(frames) != 2 {
		t.Errorf("Replay returned %d frames before failing, want 2", len(frames))
	}
}
