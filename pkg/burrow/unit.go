package burrow

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrEmptyCatalog is returned by [Catalog.Validate] when no classes are defined.
	ErrEmptyCatalog = errors.New("catalog has no classes")

	// ErrInvalidWeight is returned by [Catalog.Validate] for a non-positive step weight.
	ErrInvalidWeight = errors.New("step weight must be positive")

	// ErrDuplicateSymbol is returned by [Catalog.Validate] when two classes share a symbol.
	ErrDuplicateSymbol = errors.New("duplicate class symbol")

	// ErrReservedSymbol is returned by [Catalog.Validate] when a class uses one of
	// the diagram characters '.', '#' or ' '.
	ErrReservedSymbol = errors.New("reserved class symbol")
)

// Class identifies an amphipod class. Class c lives in room c.
type Class int8

// Empty marks a vacant hallway cell or room slot in a [Layout].
const Empty Class = -1

// Unit is a single amphipod. Settled only ever goes from false to true.
type Unit struct {
	Class   Class `json:"class"`
	Settled bool  `json:"settled,omitempty"`
}

var vacant = Unit{Class: Empty}

// Present reports whether u is an actual amphipod rather than a vacancy.
func (u Unit) Present() bool { return u.Class != Empty }

// ClassInfo describes one amphipod class.
type ClassInfo struct {
	Symbol rune `json:"symbol" toml:"symbol" yaml:"symbol"`
	Weight int  `json:"weight" toml:"weight" yaml:"weight"`
}

// Catalog is the fixed table of classes. The index of an entry is its Class
// and also the index of its destination room.
type Catalog []ClassInfo

// DefaultCatalog returns the four classes A, B, C and D with step weights
// 1, 10, 100 and 1000.
func DefaultCatalog() Catalog {
	return Catalog{
		{Symbol: 'A', Weight: 1},
		{Symbol: 'B', Weight: 10},
		{Symbol: 'C', Weight: 100},
		{Symbol: 'D', Weight: 1000},
	}
}

// Len returns the number of classes (and rooms).
func (c Catalog) Len() int { return len(c) }

// Weight returns the energy one step costs for class cl.
func (c Catalog) Weight(cl Class) int {
	if !c.Has(cl) {
		return 0
	}
	return c[cl].Weight
}

// Symbol returns the display rune of cl, or '.' for [Empty].
func (c Catalog) Symbol(cl Class) rune {
	if !c.Has(cl) {
		return '.'
	}
	return c[cl].Symbol
}

// ClassOf maps a symbol back to its class.
func (c Catalog) ClassOf(r rune) (Class, bool) {
	for i, info := range c {
		if info.Symbol == r {
			return Class(i), true
		}
	}
	return Empty, false
}

// Has reports whether cl is a class of this catalog.
func (c Catalog) Has(cl Class) bool {
	return cl >= 0 && int(cl) < len(c)
}

// Validate checks that the catalog is non-empty, weights are positive and
// symbols are unique and distinct from the diagram characters.
func (c Catalog) Validate() error {
	if len(c) == 0 {
		return ErrEmptyCatalog
	}
	if len(c) > math.MaxInt8 {
		return fmt.Errorf("catalog has %d classes, at most %d are supported", len(c), math.MaxInt8)
	}
	seen := make(map[rune]bool, len(c))
	for i, info := range c {
		if info.Weight <= 0 {
			return fmt.Errorf("class %d (%c): %w", i, info.Symbol, ErrInvalidWeight)
		}
		switch {
		case info.Symbol == '.' || info.Symbol == '#' || info.Symbol == ' ':
			return fmt.Errorf("class %d: %w: %q", i, ErrReservedSymbol, info.Symbol)
		case seen[info.Symbol]:
			return fmt.Errorf("class %d: %w: %q", i, ErrDuplicateSymbol, info.Symbol)
		}
		seen[info.Symbol] = true
	}
	return nil
}
