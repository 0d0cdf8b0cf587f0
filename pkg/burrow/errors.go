package burrow

import (
	"errors"
	"fmt"
)

// ErrOutOfRange is returned when a hallway cell or room slot index does not
// exist in the burrow.
var ErrOutOfRange = errors.New("position out of range")

// OccupiedCellError reports an attempt to stop on a hallway cell that
// already holds an amphipod.
type OccupiedCellError struct {
	Cell int
}

func (e *OccupiedCellError) Error() string {
	return fmt.Sprintf("hallway cell %d is already occupied", e.Cell)
}

// EmptyCellError reports an attempt to move an amphipod out of a vacant
// hallway cell.
type EmptyCellError struct {
	Cell int
}

func (e *EmptyCellError) Error() string {
	return fmt.Sprintf("hallway cell %d is empty", e.Cell)
}

// OccupiedSlotError reports an attempt to put an amphipod into a filled slot.
type OccupiedSlotError struct {
	Room, Slot int
}

func (e *OccupiedSlotError) Error() string {
	return fmt.Sprintf("room %d slot %d is already occupied", e.Room, e.Slot)
}

// EmptySlotError reports an attempt to take an amphipod from a vacant slot.
type EmptySlotError struct {
	Room, Slot int
}

func (e *EmptySlotError) Error() string {
	return fmt.Sprintf("room %d slot %d is empty", e.Room, e.Slot)
}

// BlockedSlotError reports an attempt to take an amphipod that has another
// one between it and the entrance.
type BlockedSlotError struct {
	Room, Slot int
	Blocker    int // slot of the amphipod in the way
}

func (e *BlockedSlotError) Error() string {
	return fmt.Sprintf("room %d slot %d is blocked by slot %d", e.Room, e.Slot, e.Blocker)
}

// SettledUnitError reports an attempt to move a settled amphipod.
type SettledUnitError struct {
	Room, Slot int
}

func (e *SettledUnitError) Error() string {
	return fmt.Sprintf("room %d slot %d holds a settled amphipod", e.Room, e.Slot)
}

// PackingError reports a vacant slot behind an occupied one.
type PackingError struct {
	Room, Slot int
}

func (e *PackingError) Error() string {
	return fmt.Sprintf("room %d has a gap at slot %d", e.Room, e.Slot)
}

// MalformedLayoutError reports a structurally invalid [Layout].
type MalformedLayoutError struct {
	Reason string
}

func (e *MalformedLayoutError) Error() string {
	return "malformed layout: " + e.Reason
}

func malformed(format string, args ...any) error {
	return &MalformedLayoutError{Reason: fmt.Sprintf(format, args...)}
}

// IsInvariantViolation reports whether err is one of the structural errors
// that can only come from an illegal move: the search aborts on these.
func IsInvariantViolation(err error) bool {
	var (
		occupiedCell *OccupiedCellError
		emptyCell    *EmptyCellError
		occupiedSlot *OccupiedSlotError
		emptySlot    *EmptySlotError
		blocked      *BlockedSlotError
		settled      *SettledUnitError
		packing      *PackingError
	)
	switch {
	case errors.As(err, &occupiedCell), errors.As(err, &emptyCell),
		errors.As(err, &occupiedSlot), errors.As(err, &emptySlot),
		errors.As(err, &blocked), errors.As(err, &settled),
		errors.As(err, &packing), errors.Is(err, ErrOutOfRange):
		return true
	}
	return false
}
