package burrow

import (
	"context"
	"fmt"
	"math"
	"time"
)

// Unbounded is the bound of a search that has not found any solution yet.
const Unbounded = math.MaxInt

const (
	cancelCheckInterval = 1 << 10
	progressInterval    = 1 << 12
)

// Search is a depth-first branch-and-bound over burrow states.
// The zero value searches with the [DefaultCatalog], no initial bound and no
// memoization.
type Search struct {
	// Catalog supplies step weights. Nil means DefaultCatalog.
	Catalog Catalog

	// Bound is an optional upper bound on the answer. Branches costing more are
	// never explored, so a bound below the optimum yields an unsolved result.
	// Zero or negative means no bound.
	Bound int

	// Memoize skips states already reached at a lower or equal cost.
	Memoize bool

	// Progress, if set, is called whenever a cheaper solution is found and
	// periodically while searching.
	Progress func(explored, pruned, best int)
}

// Result is the outcome of a search.
type Result struct {
	// Cost is the minimal total energy. It is meaningful only when Solved.
	Cost int `json:"cost"`

	// Solved is false when no sequence of legal moves within the bound sorts
	// the burrow. This is an ordinary outcome, not an error.
	Solved bool `json:"solved"`

	// Moves is one cheapest move sequence.
	Moves []Move `json:"moves,omitempty"`

	// Explored counts non-terminal states whose moves were generated.
	Explored int `json:"explored"`

	// Pruned counts moves discarded because they exceeded the bound.
	Pruned int `json:"pruned"`

	Duration time.Duration `json:"duration"`
}

// Solve runs the search from initial to completion.
func (s Search) Solve(initial State) (Result, error) {
	return s.SolveContext(context.Background(), initial)
}

// SolveContext is like Solve but stops with ctx's error once ctx is done.
// Structural errors from move application abort the search as well.
func (s Search) SolveContext(ctx context.Context, initial State) (Result, error) {
	start := time.Now()
	cat := s.Catalog
	if cat == nil {
		cat = DefaultCatalog()
	}
	bound := s.Bound
	if bound <= 0 {
		bound = Unbounded
	}

	run := &searcher{
		ctx:      ctx,
		catalog:  cat,
		progress: s.Progress,
		best:     Unbounded,
	}
	if s.Memoize {
		run.seen = make(map[string]int)
	}

	cost, moves, err := run.explore(initial, bound)
	res := Result{
		Explored: run.explored,
		Pruned:   run.pruned,
		Duration: time.Since(start),
	}
	if err != nil {
		return res, err
	}
	if cost != Unbounded {
		res.Cost = cost
		res.Solved = true
		res.Moves = moves
	}
	run.report()
	return res, nil
}

// searcher carries the per-run context and diagnostic counters. The bound
// itself is never stored here; it travels through explore's arguments and
// return value.
type searcher struct {
	ctx      context.Context
	catalog  Catalog
	progress func(explored, pruned, best int)
	seen     map[string]int

	explored int
	pruned   int
	best     int // for progress reports only
}

// explore returns the cheapest total cost of sorting the burrow from st
// without exceeding bound, along with the moves achieving it. It returns
// Unbounded when no such sequence exists.
func (r *searcher) explore(st State, bound int) (int, []Move, error) {
	if st.IsTerminal() {
		if st.Cost < r.best {
			r.best = st.Cost
			r.report()
		}
		return st.Cost, nil, nil
	}

	if r.seen != nil {
		key := st.Key()
		if prev, ok := r.seen[key]; ok && prev <= st.Cost {
			return Unbounded, nil, nil
		}
		r.seen[key] = st.Cost
	}

	r.explored++
	if r.explored%cancelCheckInterval == 0 {
		if err := r.ctx.Err(); err != nil {
			return Unbounded, nil, fmt.Errorf("search interrupted after %d states: %w", r.explored, err)
		}
	}
	if r.explored%progressInterval == 0 {
		r.report()
	}

	best := Unbounded
	var path []Move
	for _, m := range st.Moves(r.catalog) {
		limit := min(bound, best)
		if st.Cost+m.Cost > limit {
			r.pruned++
			continue
		}
		child, err := st.Apply(m)
		if err != nil {
			return Unbounded, nil, fmt.Errorf("apply %v: %w", m, err)
		}
		cost, rest, err := r.explore(child, limit)
		if err != nil {
			return Unbounded, nil, err
		}
		if cost < best {
			best = cost
			path = append([]Move{m}, rest...)
		}
	}
	return best, path, nil
}

func (r *searcher) report() {
	if r.progress == nil {
		return
	}
	best := r.best
	if best == Unbounded {
		best = -1
	}
	r.progress(r.explored, r.pruned, best)
}
