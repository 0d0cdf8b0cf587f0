package pipeline

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/burrow/pkg/burrow"
	"github.com/matzehuels/burrow/pkg/cache"
	"github.com/matzehuels/burrow/pkg/diagram"
	"github.com/matzehuels/burrow/pkg/errors"
	"github.com/matzehuels/burrow/pkg/history"
	"github.com/matzehuels/burrow/pkg/observability"
)

// Cache key types reported to the cache hooks.
const (
	keyTypeSolution = "solution"
	keyTypeArtifact = "artifact"
)

// Runner encapsulates pipeline execution with caching and run history.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner is stateless except for its cache, history store and logger.
// Multiple goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache   cache.Cache
	Keyer   cache.Keyer
	History history.Store
	Logger  *log.Logger

	// SolutionTTL overrides cache.TTLSolution when positive.
	SolutionTTL time.Duration
}

// NewRunner creates a runner.
// If keyer is nil, a DefaultKeyer is used.
// If c is nil, a NullCache is used (caching disabled).
// If store is nil, runs are not recorded.
func NewRunner(c cache.Cache, keyer cache.Keyer, store history.Store, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:   c,
		Keyer:   keyer,
		History: store,
		Logger:  logger,
	}
}

// Execute runs the complete parse → solve → render pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result, err := r.Solve(ctx, opts)
	if err != nil {
		return nil, err
	}

	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, result, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	opts.Logger.Debug("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Solve parses the input, finds the least total energy (from cache when
// possible) and records the run. An unsolvable burrow is not an error: the
// result has Search.Solved == false.
func (r *Runner) Solve(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	hooks := observability.Search()

	// Stage 1: Parse
	parseStart := time.Now()
	l, err := Parse(opts)
	parseTime := time.Since(parseStart)
	hooks.OnParseComplete(ctx, len(l.Rooms), l.Depth(), parseTime, err)
	if err != nil {
		return nil, err
	}
	initial, err := burrow.NewState(l, opts.Catalog)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedLayout, err, "invalid burrow")
	}

	layoutHash, err := LayoutHash(l)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "hash layout")
	}
	result := &Result{
		LayoutHash: layoutHash,
		Layout:     l,
		Initial:    initial,
		Catalog:    opts.Catalog,
	}
	result.Stats.ParseTime = parseTime

	opts.Logger.Debug("parsed burrow",
		"rooms", len(l.Rooms),
		"depth", l.Depth(),
		"hash", layoutHash[:12])

	// Stage 2: Solve
	solveStart := time.Now()
	hooks.OnSolveStart(ctx, len(l.Rooms), l.Depth())
	search, hit, err := r.SolveWithCacheInfo(ctx, initial, layoutHash, opts)
	result.Stats.SolveTime = time.Since(solveStart)
	hooks.OnSolveComplete(ctx, outcome(search, hit, err), search.Explored, result.Stats.SolveTime, err)
	if err != nil {
		return nil, err
	}
	result.Search = search
	result.CacheInfo.SolveHit = hit

	opts.Logger.Info("solved burrow",
		"solved", search.Solved,
		"cost", search.Cost,
		"moves", len(search.Moves),
		"explored", search.Explored,
		"cached", hit,
		"duration", result.Stats.SolveTime)

	result.RunID = r.record(ctx, result, opts)
	return result, nil
}

// SolveWithCacheInfo searches from initial, consulting the cache first
// unless opts.Refresh is set, and reports whether the result was cached.
// Cached entries are replayed before use; an entry that does not replay to
// a sorted burrow at its recorded cost is treated as a miss.
func (r *Runner) SolveWithCacheInfo(ctx context.Context, initial burrow.State, layoutHash string, opts Options) (burrow.Result, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForSolve(); err != nil {
		return burrow.Result{}, false, err
	}
	if opts.Catalog == nil {
		opts.Catalog = burrow.DefaultCatalog()
	}

	catalogHash, err := CatalogHash(opts.Catalog)
	if err != nil {
		return burrow.Result{}, false, errors.Wrap(errors.ErrCodeInternal, err, "hash catalog")
	}
	cacheKey := r.Keyer.SolutionKey(layoutHash, opts.SolutionKeyOpts(catalogHash))

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err != nil {
			opts.Logger.Warn("cache lookup failed", "err", err)
		} else if hit {
			var cached burrow.Result
			if err := json.Unmarshal(data, &cached); err == nil && verify(initial, cached) {
				observability.Cache().OnCacheHit(ctx, keyTypeSolution)
				return cached, true, nil
			}
			opts.Logger.Warn("discarding invalid cache entry", "key", cacheKey)
		}
		observability.Cache().OnCacheMiss(ctx, keyTypeSolution)
	}

	// Search
	searchCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()
	s := burrow.Search{
		Catalog:  opts.Catalog,
		Bound:    opts.Bound,
		Memoize:  opts.Memoize,
		Progress: opts.Progress,
	}
	res, err := s.SolveContext(searchCtx, initial)
	if err != nil {
		return res, false, classify(ctx, err, opts.Timeout)
	}

	// Cache the result
	if data, err := json.Marshal(res); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, r.solutionTTL()); err != nil {
			opts.Logger.Warn("cache store failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, keyTypeSolution, len(data))
		}
	}

	return res, false, nil
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, res *Result, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	catalog := res.Catalog
	if catalog == nil {
		catalog = burrow.DefaultCatalog()
	}
	catalogHash, err := CatalogHash(catalog)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "hash catalog")
	}
	hash := solutionHash(res.LayoutHash, catalogHash, res.Search, opts.Compact)

	// Try to get all formats from cache
	artifacts := make(map[string][]byte)
	for _, format := range opts.Formats {
		cacheKey := r.Keyer.ArtifactKey(hash, cache.ArtifactKeyOpts{Format: format})
		data, hit, err := r.Cache.Get(ctx, cacheKey)
		if err != nil || !hit {
			observability.Cache().OnCacheMiss(ctx, keyTypeArtifact)
			break
		}
		observability.Cache().OnCacheHit(ctx, keyTypeArtifact)
		artifacts[format] = data
	}
	if len(artifacts) == len(opts.Formats) {
		return artifacts, true, nil
	}

	// Render all formats
	rendered, err := Render(ctx, res, opts)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "render")
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(hash, cache.ArtifactKeyOpts{Format: format})
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact); err == nil {
			observability.Cache().OnCacheSet(ctx, keyTypeArtifact, len(data))
		}
	}

	return rendered, false, nil
}

// SolutionKeyOpts returns cache key options for a search.
func (o *Options) SolutionKeyOpts(catalogHash string) cache.SolutionKeyOpts {
	return cache.SolutionKeyOpts{
		CatalogHash: catalogHash,
		Bound:       o.Bound,
		Memoize:     o.Memoize,
	}
}

// Close releases resources held by the runner.
func (r *Runner) Close(ctx context.Context) error {
	var errs []error
	if r.Cache != nil {
		errs = append(errs, r.Cache.Close())
	}
	if r.History != nil {
		errs = append(errs, r.History.Close(ctx))
	}
	return stderrors.Join(errs...)
}

// record stores the run in the history and returns its ID. History failures
// are logged, not returned: the solve itself succeeded.
func (r *Runner) record(ctx context.Context, res *Result, opts Options) string {
	if r.History == nil {
		return ""
	}
	run := &history.Run{
		LayoutHash: res.LayoutHash,
		Diagram:    diagram.Format(res.Layout, res.Catalog),
		Cost:       res.Search.Cost,
		Solved:     res.Search.Solved,
		Moves:      res.Search.Moves,
		Explored:   res.Search.Explored,
		Pruned:     res.Search.Pruned,
		Duration:   res.Search.Duration,
		Cached:     res.CacheInfo.SolveHit,
	}
	if err := r.History.Record(ctx, run); err != nil {
		opts.Logger.Warn("failed to record run", "err", err)
		return ""
	}
	return run.ID
}

func (r *Runner) solutionTTL() time.Duration {
	if r.SolutionTTL > 0 {
		return r.SolutionTTL
	}
	return cache.TTLSolution
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// verify replays a cached result from initial.
func verify(initial burrow.State, res burrow.Result) bool {
	if !res.Solved {
		return len(res.Moves) == 0
	}
	frames, err := burrow.Replay(initial, res.Moves)
	if err != nil {
		return false
	}
	final := frames[len(frames)-1]
	return final.IsTerminal() && final.Cost == res.Cost
}

// classify maps search errors onto error codes. A deadline that expired on
// the search's own timeout is reported as a timeout; the caller giving up is
// a cancellation.
func classify(parent context.Context, err error, timeout time.Duration) error {
	switch {
	case stderrors.Is(err, context.DeadlineExceeded) && parent.Err() == nil:
		return errors.Wrap(errors.ErrCodeTimeout, err, "search exceeded %s", timeout)
	case stderrors.Is(err, context.DeadlineExceeded), stderrors.Is(err, context.Canceled):
		return errors.Wrap(errors.ErrCodeCanceled, err, "search canceled")
	case burrow.IsInvariantViolation(err):
		return errors.Wrap(errors.ErrCodeInvariantViolation, err, "search aborted")
	default:
		return errors.Wrap(errors.ErrCodeInternal, err, "search failed")
	}
}

func outcome(res burrow.Result, cached bool, err error) string {
	switch {
	case err != nil:
		return observability.OutcomeError
	case cached:
		return observability.OutcomeCached
	case !res.Solved:
		return observability.OutcomeUnsolvable
	default:
		return observability.OutcomeSolved
	}
}
