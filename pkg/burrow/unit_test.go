package burrow

import (
	"errors"
	"testing"
)

func TestCatalogValidate(t *testing.T) {
	tests := []struct {
		name    string
		catalog Catalog
		wantErr error
	}{
		{"default", DefaultCatalog(), nil},
		{"single class", Catalog{{Symbol: 'Z', Weight: 7}}, nil},
		{"empty", Catalog{}, ErrEmptyCatalog},
		{"zero weight", Catalog{{Symbol: 'A', Weight: 0}}, ErrInvalidWeight},
		{"negative weight", Catalog{{Symbol: 'A', Weight: -3}}, ErrInvalidWeight},
		{"duplicate symbol", Catalog{{Symbol: 'A', Weight: 1}, {Symbol: 'A', Weight: 2}}, ErrDuplicateSymbol},
		{"dot symbol", Catalog{{Symbol: '.', Weight: 1}}, ErrReservedSymbol},
		{"wall symbol", Catalog{{Symbol: '#', Weight: 1}}, ErrReservedSymbol},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.catalog.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCatalogLookups(t *testing.T) {
	c := DefaultCatalog()

	if got := c.Weight(C); got != 100 {
		t.Errorf("Weight(C) = %d, want 100", got)
	}
	if got := c.Weight(Class(9)); got != 0 {
		t.Errorf("Weight(9) = %d, want 0", got)
	}
	if got := c.Symbol(D); got != 'D' {
		t.Errorf("Symbol(D) = %c, want D", got)
	}
	if got := c.Symbol(Empty); got != '.' {
		t.Errorf("Symbol(Empty) = %c, want .", got)
	}
	if cl, ok := c.ClassOf('B'); !ok || cl != B {
		t.Errorf("ClassOf('B') = %d, %v, want %d, true", cl, ok, B)
	}
	if _, ok := c.ClassOf('E'); ok {
		t.Error("ClassOf('E') found a class")
	}
}

func TestMoveKindText(t *testing.T) {
	for _, k := range []MoveKind{ToRoom, ToHallway} {
		b, err := k.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v): %v", k, err)
		}
		var got MoveKind
		if err := got.UnmarshalText(b); err != nil || got != k {
			t.Errorf("UnmarshalText(%q) = %v, %v, want %v", b, got, err, k)
		}
	}
	var k MoveKind
	if err := k.UnmarshalText([]byte("teleport")); err == nil {
		t.Error("UnmarshalText(teleport) succeeded")
	}
}
