package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/matzehuels/burrow/pkg/burrow"
	"github.com/matzehuels/burrow/pkg/errors"
)

const vacancy = '.'

type layoutDoc struct {
	Hallway   string   `json:"hallway,omitempty"`
	Entrances []int    `json:"entrances,omitempty"`
	Rooms     []string `json:"rooms"`
}

// ReadJSON decodes a layout from r and validates it against c.
//
// ReadJSON returns an error with code ErrCodeInvalidFormat if the JSON is
// malformed, and ErrCodeMalformedLayout if it names an unknown symbol or
// describes an invalid burrow. ReadJSON does not close r.
func ReadJSON(r io.Reader, c burrow.Catalog) (burrow.Layout, error) {
	var doc layoutDoc
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return burrow.Layout{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode layout")
	}
	if len(doc.Rooms) == 0 {
		return burrow.Layout{}, errors.New(errors.ErrCodeMalformedLayout, "layout has no rooms")
	}

	rooms := make([][]burrow.Class, len(doc.Rooms))
	for i, s := range doc.Rooms {
		room, err := decodeRow(s, c)
		if err != nil {
			return burrow.Layout{}, errors.Wrap(errors.ErrCodeMalformedLayout, err, "room %d", i)
		}
		rooms[i] = room
	}

	l := burrow.NewLayout(rooms)
	if doc.Hallway != "" {
		hallway, err := decodeRow(doc.Hallway, c)
		if err != nil {
			return burrow.Layout{}, errors.Wrap(errors.ErrCodeMalformedLayout, err, "hallway")
		}
		l.Hallway = hallway
	}
	if doc.Entrances != nil {
		l.Entrances = doc.Entrances
	}

	if err := l.Validate(c); err != nil {
		return burrow.Layout{}, errors.Wrap(errors.ErrCodeMalformedLayout, err, "invalid layout")
	}
	return l, nil
}

// ReadJSONFile reads the layout file at path. See [ReadJSON].
func ReadJSONFile(path string, c burrow.Catalog) (burrow.Layout, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return burrow.Layout{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "layout file %s", path)
		}
		return burrow.Layout{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f, c)
}

// WriteJSON encodes l as an indented JSON layout document.
func WriteJSON(l burrow.Layout, c burrow.Catalog, w io.Writer) error {
	doc := layoutDoc{
		Hallway:   encodeRow(l.Hallway, c),
		Entrances: l.Entrances,
		Rooms:     make([]string, len(l.Rooms)),
	}
	for i, room := range l.Rooms {
		doc.Rooms[i] = encodeRow(room, c)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteJSONFile writes l to a JSON file at path.
func WriteJSONFile(l burrow.Layout, c burrow.Catalog, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteJSON(l, c, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func decodeRow(s string, c burrow.Catalog) ([]burrow.Class, error) {
	row := make([]burrow.Class, 0, utf8.RuneCountInString(s))
	for i, r := range s {
		if r == vacancy {
			row = append(row, burrow.Empty)
			continue
		}
		cl, ok := c.ClassOf(r)
		if !ok {
			return nil, &burrow.MalformedLayoutError{Reason: fmt.Sprintf("unknown symbol %q at offset %d", r, i)}
		}
		row = append(row, cl)
	}
	return row, nil
}

func encodeRow(row []burrow.Class, c burrow.Catalog) string {
	var b strings.Builder
	for _, cl := range row {
		b.WriteRune(c.Symbol(cl))
	}
	return b.String()
}
