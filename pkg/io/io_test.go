package io

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/burrow/pkg/burrow"
	"github.com/matzehuels/burrow/pkg/errors"
)

const exampleJSON = `{
  "hallway": "...........",
  "entrances": [2, 4, 6, 8],
  "rooms": ["BA", "CD", "BC", "DA"]
}`

func TestReadJSON(t *testing.T) {
	l, err := ReadJSON(strings.NewReader(exampleJSON), burrow.DefaultCatalog())
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if len(l.Hallway) != 11 || l.Depth() != 2 {
		t.Errorf("ReadJSON() width %d depth %d, want 11 and 2", len(l.Hallway), l.Depth())
	}
	if !slices.Equal(l.Rooms[1], []burrow.Class{2, 3}) {
		t.Errorf("room 1 = %v, want [2 3]", l.Rooms[1])
	}
}

func TestReadJSONDefaults(t *testing.T) {
	l, err := ReadJSON(strings.NewReader(`{"rooms": ["BA", "CD", "BC", "DA"]}`), burrow.DefaultCatalog())
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if len(l.Hallway) != 11 {
		t.Errorf("hallway width = %d, want 11", len(l.Hallway))
	}
	if !slices.Equal(l.Entrances, []int{2, 4, 6, 8}) {
		t.Errorf("Entrances = %v, want [2 4 6 8]", l.Entrances)
	}
}

func TestReadJSONErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  errors.Code
	}{
		{"not json", `rooms: [BA]`, errors.ErrCodeInvalidFormat},
		{"unknown field", `{"rooms": ["BA","CD","BC","DA"], "depth": 2}`, errors.ErrCodeInvalidFormat},
		{"no rooms", `{"hallway": "..........."}`, errors.ErrCodeMalformedLayout},
		{"unknown symbol", `{"rooms": ["BA","CD","BC","DE"]}`, errors.ErrCodeMalformedLayout},
		{"unknown hallway symbol", `{"hallway": "..x........", "rooms": ["BA","CD","BC","D."]}`, errors.ErrCodeMalformedLayout},
		{"uneven rooms", `{"rooms": ["BA","CD","BC","D"]}`, errors.ErrCodeMalformedLayout},
		{"gap", `{"hallway": "A..........", "rooms": ["B.","CD","BC","DA"]}`, errors.ErrCodeMalformedLayout},
		{"entrance occupied", `{"hallway": "..A........", "rooms": [".B","CD","BC","DA"]}`, errors.ErrCodeMalformedLayout},
		{"too few rooms", `{"rooms": ["BA","CD","BC"]}`, errors.ErrCodeMalformedLayout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadJSON(strings.NewReader(tt.input), burrow.DefaultCatalog())
			if err == nil {
				t.Fatal("ReadJSON() succeeded, want error")
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("ReadJSON() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	inputs := []string{
		exampleJSON,
		`{"hallway": ".A.....D...", "entrances": [2, 4, 6, 8], "rooms": [".B", "CD", "BC", ".A"]}`,
	}
	cat := burrow.DefaultCatalog()
	for _, in := range inputs {
		l1, err := ReadJSON(strings.NewReader(in), cat)
		if err != nil {
			t.Fatalf("ReadJSON(%s): %v", in, err)
		}

		path := filepath.Join(t.TempDir(), "layout.json")
		if err := WriteJSONFile(l1, cat, path); err != nil {
			t.Fatalf("WriteJSONFile: %v", err)
		}
		l2, err := ReadJSONFile(path, cat)
		if err != nil {
			t.Fatalf("ReadJSONFile: %v", err)
		}

		if !slices.Equal(l1.Hallway, l2.Hallway) || !slices.Equal(l1.Entrances, l2.Entrances) {
			t.Errorf("round trip changed hallway or entrances: %+v vs %+v", l1, l2)
		}
		for i := range l1.Rooms {
			if !slices.Equal(l1.Rooms[i], l2.Rooms[i]) {
				t.Errorf("room %d = %v after round trip, want %v", i, l2.Rooms[i], l1.Rooms[i])
			}
		}
	}
}

func TestReadJSONFileMissing(t *testing.T) {
	_, err := ReadJSONFile(filepath.Join(t.TempDir(), "missing.json"), burrow.DefaultCatalog())
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("ReadJSONFile(missing) = %v, want %s", err, errors.ErrCodeFileNotFound)
	}
}

func TestWriteResultJSON(t *testing.T) {
	res := burrow.Result{
		Cost:     20,
		Solved:   true,
		Explored: 3,
		Duration: 1500 * time.Millisecond,
		Moves: []burrow.Move{
			{Kind: burrow.ToHallway, Class: 1, Cell: 3, Room: 2, Slot: 0, Steps: 2, Cost: 20},
		},
	}
	var buf bytes.Buffer
	if err := WriteResultJSON(res, burrow.DefaultCatalog(), &buf); err != nil {
		t.Fatalf("WriteResultJSON: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if got["cost"] != float64(20) || got["solved"] != true || got["duration_ms"] != float64(1500) {
		t.Errorf("WriteResultJSON() = %s", buf.String())
	}
	moves := got["moves"].([]any)
	first := moves[0].(map[string]any)
	if first["symbol"] != "B" || first["kind"] != "hallway" {
		t.Errorf("move = %v, want symbol B kind hallway", first)
	}

	buf.Reset()
	if err := WriteResultJSON(burrow.Result{}, burrow.DefaultCatalog(), &buf); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), `"cost"`) {
		t.Errorf("unsolved result should omit cost: %s", buf.String())
	}
}
