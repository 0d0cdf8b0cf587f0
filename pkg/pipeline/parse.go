package pipeline

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/burrow/pkg/burrow"
	"github.com/matzehuels/burrow/pkg/cache"
	"github.com/matzehuels/burrow/pkg/diagram"
	"github.com/matzehuels/burrow/pkg/errors"
)

// Parse reads the diagram or layout of opts into a validated layout.
// Options must have passed ValidateForParse.
func Parse(opts Options) (burrow.Layout, error) {
	if opts.Layout != nil {
		l := opts.Layout.Clone()
		if err := l.Validate(opts.Catalog); err != nil {
			return burrow.Layout{}, errors.Wrap(errors.ErrCodeMalformedLayout, err, "invalid layout")
		}
		return l, nil
	}

	text := opts.Diagram
	if opts.Unfold {
		text = diagram.Unfold(text, diagram.DefaultFold)
	}
	return diagram.Parse(text, opts.Catalog)
}

// LayoutHash returns the content hash of a layout. Layouts that describe the
// same burrow hash identically regardless of how they were written.
func LayoutHash(l burrow.Layout) (string, error) {
	data, err := json.Marshal(l)
	if err != nil {
		return "", fmt.Errorf("hash layout: %w", err)
	}
	return cache.Hash(data), nil
}

// CatalogHash returns the content hash of a catalog.
func CatalogHash(c burrow.Catalog) (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("hash catalog: %w", err)
	}
	return cache.Hash(data), nil
}
