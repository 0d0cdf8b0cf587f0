package burrow

import (
	"errors"
	"testing"
)

// roomsOf builds rooms directly from class lists (Empty for vacancies) and
// marks the correctly placed back run of each room settled.
func roomsOf(t *testing.T, bays ...[]Class) Rooms {
	t.Helper()
	l := NewLayout(bays)
	s, err := NewState(l, Catalog(DefaultCatalog()[:len(bays)]))
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	return s.Rooms
}

const (
	A Class = iota
	B
	C
	D
	vac = Empty
)

func TestRoomsSettleSlot(t *testing.T) {
	tests := []struct {
		name     string
		bays     [][]Class
		class    Class
		wantSlot int
		wantOK   bool
	}{
		{"empty room", [][]Class{{vac, vac}, {B, A}}, A, 1, true},
		{"own class at back", [][]Class{{vac, A}, {B, B}}, A, 0, true},
		{"entrance taken", [][]Class{{A, A}, {B, B}}, A, 0, false},
		{"foreigner at back", [][]Class{{vac, B}, {A, B}}, A, 0, false},
		{"foreigner below own class", [][]Class{{vac, vac, A, B}, {A, B, B, vac}}, A, 0, false},
		{"deep room", [][]Class{{vac, vac, vac, A}, {B, B, B, B}}, A, 2, true},
		{"depth one", [][]Class{{vac}, {B}}, A, 0, true},
		{"unknown class", [][]Class{{vac}, {B}}, Class(7), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRooms(len(tt.bays), len(tt.bays[0]))
			for i, bay := range tt.bays {
				for j, cl := range bay {
					r.bays[i][j] = Unit{Class: cl}
				}
			}
			slot, ok := r.SettleSlot(tt.class)
			if ok != tt.wantOK || (ok && slot != tt.wantSlot) {
				t.Errorf("SettleSlot(%d) = %d, %v, want %d, %v", tt.class, slot, ok, tt.wantSlot, tt.wantOK)
			}
		})
	}
}

func TestRoomsPut(t *testing.T) {
	r := roomsOf(t, []Class{vac, A}, []Class{B, B})

	r2, err := r.Put(Unit{Class: A}, 0)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	u, ok := r2.At(0, 0)
	if !ok || !u.Settled {
		t.Errorf("At(0, 0) = %+v, %v, want settled A", u, ok)
	}
	if _, ok := r.At(0, 0); ok {
		t.Error("Put modified the receiver")
	}

	_, err = r2.Put(Unit{Class: A}, 0)
	var occupied *OccupiedSlotError
	if !errors.As(err, &occupied) || occupied.Room != 0 || occupied.Slot != 0 {
		t.Errorf("Put into filled slot: err = %v, want *OccupiedSlotError{0 0}", err)
	}

	if _, err := r.Put(Unit{Class: A}, 5); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Put(slot 5) err = %v, want ErrOutOfRange", err)
	}
}

func TestRoomsTake(t *testing.T) {
	r := roomsOf(t, []Class{B, A}, []Class{vac, A}, []Class{C, C}, []Class{D, D})

	r2, u, err := r.Take(0, 0)
	if err != nil {
		t.Fatalf("Take: %v", err)
	}
	if u.Class != B || u.Settled {
		t.Errorf("Take returned %+v, want unsettled B", u)
	}
	if _, ok := r2.At(0, 0); ok {
		t.Error("slot should be empty after Take")
	}
	if _, ok := r.At(0, 0); !ok {
		t.Error("Take modified the receiver")
	}

	tests := []struct {
		name       string
		room, slot int
		check      func(error) bool
	}{
		{"empty slot", 1, 0, func(err error) bool { var e *EmptySlotError; return errors.As(err, &e) }},
		{"blocked slot", 0, 1, func(err error) bool { var e *BlockedSlotError; return errors.As(err, &e) && e.Blocker == 0 }},
		{"settled unit", 2, 0, func(err error) bool { var e *SettledUnitError; return errors.As(err, &e) }},
		{"out of range", 9, 0, func(err error) bool { return errors.Is(err, ErrOutOfRange) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := r.Take(tt.room, tt.slot)
			if !tt.check(err) {
				t.Errorf("Take(%d, %d) err = %v", tt.room, tt.slot, err)
			}
			if !IsInvariantViolation(err) {
				t.Errorf("IsInvariantViolation(%v) = false, want true", err)
			}
		})
	}
}

func TestRoomsIsSorted(t *testing.T) {
	r := roomsOf(t, []Class{vac, A}, []Class{A, B}, []Class{vac, vac}, []Class{D, D})

	want := []bool{true, false, true, true}
	for i, w := range want {
		if got := r.IsSorted(i); got != w {
			t.Errorf("IsSorted(%d) = %v, want %v", i, got, w)
		}
	}
	if r.AllSorted() {
		t.Error("AllSorted() = true, want false")
	}
	if r.IsSorted(4) {
		t.Error("IsSorted(4) = true for a missing room")
	}
}

func TestRoomsFirstMovable(t *testing.T) {
	r := roomsOf(t, []Class{B, A}, []Class{vac, B}, []Class{vac, vac}, []Class{A, D})

	got := r.FirstMovable()
	want := []Slot{{Room: 0, Index: 0}, {Room: 3, Index: 0}}
	if len(got) != len(want) {
		t.Fatalf("FirstMovable() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("FirstMovable()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestRoomsCheckPacking(t *testing.T) {
	r := NewRooms(1, 3)
	r.bays[0][0] = Unit{Class: A}
	err := r.CheckPacking()
	var gap *PackingError
	if !errors.As(err, &gap) || gap.Slot != 1 {
		t.Errorf("CheckPacking() = %v, want gap at slot 1", err)
	}

	if err := roomsOf(t, []Class{vac, A}, []Class{B, B}).CheckPacking(); err != nil {
		t.Errorf("CheckPacking() on packed rooms = %v", err)
	}
}
