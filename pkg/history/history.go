// Package history records solve runs so they can be listed and replayed
// later, by the CLI's history command and the API's /v1/runs endpoints.
package history

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/burrow/pkg/burrow"
)

// ErrNotFound is returned by Get for an unknown run ID.
var ErrNotFound = errors.New("run not found")

// DefaultListLimit caps List when the caller passes a non-positive limit.
const DefaultListLimit = 50

// Run is one recorded solve.
type Run struct {
	ID         string        `json:"id" bson:"_id"`
	LayoutHash string        `json:"layout_hash" bson:"layout_hash"`
	Diagram    string        `json:"diagram" bson:"diagram"`
	Cost       int           `json:"cost" bson:"cost"`
	Solved     bool          `json:"solved" bson:"solved"`
	Moves      []burrow.Move `json:"moves,omitempty" bson:"moves,omitempty"`
	Explored   int           `json:"explored" bson:"explored"`
	Pruned     int           `json:"pruned" bson:"pruned"`
	Duration   time.Duration `json:"duration" bson:"duration"`
	Cached     bool          `json:"cached" bson:"cached"`
	CreatedAt  time.Time     `json:"created_at" bson:"created_at"`
}

// NewID returns a fresh run identifier.
func NewID() string {
	return uuid.NewString()
}

// Store persists runs. Implementations must be safe for concurrent use.
type Store interface {
	// Record saves run, assigning an ID and CreatedAt when they are unset.
	Record(ctx context.Context, run *Run) error

	// Get returns the run with the given ID or ErrNotFound.
	Get(ctx context.Context, id string) (*Run, error)

	// List returns up to limit runs, newest first.
	List(ctx context.Context, limit int) ([]*Run, error)

	Close(ctx context.Context) error
}

// prepare fills in the fields Record is responsible for.
func prepare(run *Run) {
	if run.ID == "" {
		run.ID = NewID()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
