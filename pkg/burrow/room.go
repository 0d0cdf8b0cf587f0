package burrow

import (
	"fmt"
	"slices"
)

// Slot addresses one position in one room. Index 0 is next to the entrance,
// Index depth-1 is the back wall.
type Slot struct {
	Room  int `json:"room"`
	Index int `json:"index"`
}

// Rooms holds one bay per class. Occupied slots of a bay always form a run
// that ends at the back wall.
//
// Rooms is a value: Put and Take return a modified copy. Bays that a call
// does not touch are shared with the receiver.
type Rooms struct {
	bays  [][]Unit
	depth int
}

// NewRooms returns count empty rooms of the given depth.
func NewRooms(count, depth int) Rooms {
	r := Rooms{bays: make([][]Unit, count), depth: depth}
	for i := range r.bays {
		bay := make([]Unit, depth)
		for j := range bay {
			bay[j] = vacant
		}
		r.bays[i] = bay
	}
	return r
}

// Count returns the number of rooms.
func (r Rooms) Count() int { return len(r.bays) }

// Depth returns the number of slots per room.
func (r Rooms) Depth() int { return r.depth }

// At returns the amphipod in a slot, if any.
func (r Rooms) At(room, slot int) (Unit, bool) {
	if !r.inRange(room, slot) || !r.bays[room][slot].Present() {
		return vacant, false
	}
	return r.bays[room][slot], true
}

// SettleSlot returns the slot an amphipod of class c would move into if it
// entered its room now. It reports false when the entrance slot is taken or
// when any amphipod of another class is still in the room.
func (r Rooms) SettleSlot(c Class) (int, bool) {
	if c < 0 || int(c) >= len(r.bays) {
		return 0, false
	}
	bay := r.bays[c]
	if bay[0].Present() {
		return 0, false
	}
	top := r.depth
	for i, u := range bay {
		if u.Present() {
			top = i
			break
		}
	}
	for _, u := range bay[top:] {
		if u.Class != c {
			return 0, false
		}
	}
	return top - 1, true
}

// Put returns rooms with u placed in slot of its own room. The placed
// amphipod is marked settled: Put is only called with a slot obtained from
// SettleSlot, which guarantees it never has to move again.
func (r Rooms) Put(u Unit, slot int) (Rooms, error) {
	room := int(u.Class)
	if !r.inRange(room, slot) {
		return r, fmt.Errorf("room %d slot %d: %w", room, slot, ErrOutOfRange)
	}
	if r.bays[room][slot].Present() {
		return r, &OccupiedSlotError{Room: room, Slot: slot}
	}
	u.Settled = true
	next := r.cloneBay(room)
	next.bays[room][slot] = u
	return next, nil
}

// Take returns rooms with slot emptied together with the amphipod taken out.
// Only the entrance-most amphipod of a room can leave, and never a settled one.
func (r Rooms) Take(room, slot int) (Rooms, Unit, error) {
	if !r.inRange(room, slot) {
		return r, vacant, fmt.Errorf("room %d slot %d: %w", room, slot, ErrOutOfRange)
	}
	bay := r.bays[room]
	u := bay[slot]
	if !u.Present() {
		return r, vacant, &EmptySlotError{Room: room, Slot: slot}
	}
	for i := 0; i < slot; i++ {
		if bay[i].Present() {
			return r, vacant, &BlockedSlotError{Room: room, Slot: slot, Blocker: i}
		}
	}
	if u.Settled {
		return r, vacant, &SettledUnitError{Room: room, Slot: slot}
	}
	next := r.cloneBay(room)
	next.bays[room][slot] = vacant
	return next, u, nil
}

// IsSorted reports whether every occupied slot of room holds its own class.
func (r Rooms) IsSorted(room int) bool {
	if room < 0 || room >= len(r.bays) {
		return false
	}
	for _, u := range r.bays[room] {
		if u.Present() && int(u.Class) != room {
			return false
		}
	}
	return true
}

// AllSorted reports whether IsSorted holds for every room.
func (r Rooms) AllSorted() bool {
	for i := range r.bays {
		if !r.IsSorted(i) {
			return false
		}
	}
	return true
}

// FirstMovable returns, for each room whose entrance-most amphipod is not
// settled, the slot of that amphipod. Rooms that are empty or whose top
// amphipod is settled contribute nothing.
func (r Rooms) FirstMovable() []Slot {
	var out []Slot
	for room, bay := range r.bays {
		for i, u := range bay {
			if !u.Present() {
				continue
			}
			if !u.Settled {
				out = append(out, Slot{Room: room, Index: i})
			}
			break
		}
	}
	return out
}

// CheckPacking returns a *PackingError for the first vacant slot found
// behind an occupied one.
func (r Rooms) CheckPacking() error {
	for room, bay := range r.bays {
		seen := false
		for i, u := range bay {
			switch {
			case u.Present():
				seen = true
			case seen:
				return &PackingError{Room: room, Slot: i}
			}
		}
	}
	return nil
}

func (r Rooms) inRange(room, slot int) bool {
	return room >= 0 && room < len(r.bays) && slot >= 0 && slot < r.depth
}

// cloneBay copies the outer slice and the bay about to change.
func (r Rooms) cloneBay(room int) Rooms {
	bays := slices.Clone(r.bays)
	bays[room] = slices.Clone(bays[room])
	return Rooms{bays: bays, depth: r.depth}
}
