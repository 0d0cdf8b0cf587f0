// Package pipeline provides the solve pipeline shared by the burrow CLI and
// the HTTP API.
//
// By centralizing parsing, caching, searching and rendering here, both entry
// points produce identical results and hit the same cache entries.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Parse: read a diagram (optionally unfolded) or a layout into a state
//  2. Solve: run the branch-and-bound search, consulting the solution cache
//  3. Render: produce artifacts (text table, JSON, DOT, SVG) from the result
//
// Every solve is recorded in the run history when the [Runner] has a store.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, store, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Diagram: input,
//	    Unfold:  true,
//	    Formats: []string{"txt"},
//	})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result.Search.Cost)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/burrow/pkg/burrow"
	"github.com/matzehuels/burrow/pkg/errors"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

// DefaultTimeout bounds a single search when the caller sets no timeout.
const DefaultTimeout = 5 * time.Minute

// Format constants for rendered artifacts.
const (
	FormatText = "txt"
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatText: true,
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run. Exactly one of
// Diagram and Layout must be set.
type Options struct {
	// Input
	Diagram string         `json:"diagram,omitempty"`
	Layout  *burrow.Layout `json:"layout,omitempty"`
	Unfold  bool           `json:"unfold,omitempty"` // insert diagram.DefaultFold below the first room row

	// Search options
	Catalog burrow.Catalog `json:"-"` // nil means burrow.DefaultCatalog
	Memoize bool           `json:"memoize,omitempty"`
	Bound   int            `json:"bound,omitempty"`
	Timeout time.Duration  `json:"timeout,omitempty"`
	Refresh bool           `json:"refresh,omitempty"` // ignore cached solutions

	// Render options
	Formats []string `json:"formats,omitempty"`
	Compact bool     `json:"compact,omitempty"` // omit diagrams from DOT/SVG nodes

	// Runtime options (not serialized)
	Logger   *log.Logger                      `json:"-"`
	Progress func(explored, pruned, best int) `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies the run in the history store.
	RunID string

	// LayoutHash is the content hash of the parsed layout.
	LayoutHash string

	// Layout is the parsed (and possibly unfolded) input.
	Layout burrow.Layout

	// Initial is the search's starting state.
	Initial burrow.State

	// Catalog is the catalog the search ran with.
	Catalog burrow.Catalog

	// Search is the search outcome. Search.Solved is false for an
	// unsolvable burrow.
	Search burrow.Result

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline timing.
type Stats struct {
	ParseTime  time.Duration
	SolveTime  time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks which stages hit the cache.
type CacheInfo struct {
	SolveHit  bool // Whether the search result came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: txt, json, dot, svg)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks the input and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForParse(); err != nil {
		return err
	}
	if err := o.ValidateForSolve(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForParse checks the input fields.
func (o *Options) ValidateForParse() error {
	switch {
	case o.Diagram == "" && o.Layout == nil:
		return errors.New(errors.ErrCodeInvalidInput, "diagram or layout is required")
	case o.Diagram != "" && o.Layout != nil:
		return errors.New(errors.ErrCodeInvalidInput, "diagram and layout are mutually exclusive")
	case o.Layout != nil && o.Unfold:
		return errors.New(errors.ErrCodeInvalidInput, "unfold applies to diagrams only")
	}
	if o.Diagram != "" {
		if err := errors.ValidateDiagram(o.Diagram); err != nil {
			return err
		}
	}

	if o.Catalog == nil {
		o.Catalog = burrow.DefaultCatalog()
	}
	if err := o.Catalog.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidCatalog, err, "invalid catalog")
	}

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// ValidateForSolve checks the search options and sets defaults.
func (o *Options) ValidateForSolve() error {
	if o.Bound < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "bound must not be negative")
	}
	if o.Timeout < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "timeout must not be negative")
	}
	if o.Timeout == 0 {
		o.Timeout = DefaultTimeout
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatText}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}
