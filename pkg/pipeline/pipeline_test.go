package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/burrow/pkg/burrow"
	"github.com/matzehuels/burrow/pkg/cache"
	"github.com/matzehuels/burrow/pkg/errors"
	"github.com/matzehuels/burrow/pkg/history"
	burrowio "github.com/matzehuels/burrow/pkg/io"
	"github.com/matzehuels/burrow/pkg/observability"
)

const example = `#############
#...........#
###B#C#B#D###
  #A#D#C#A#
  #########
`

func newTestRunner(t *testing.T) (*Runner, *history.MemoryStore) {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	store := history.NewMemoryStore(0)
	r := NewRunner(c, nil, store, nil)
	r.Logger = nil
	t.Cleanup(func() { r.Close(context.Background()) })
	return r, store
}

func crossedLayout() *burrow.Layout {
	l := burrow.NewLayout([][]burrow.Class{{1, 0}, {0, 1}, {2, 2}, {3, 3}})
	return &l
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"txt", false},
		{"json", false},
		{"dot", false},
		{"svg", false},
		{"png", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"txt", "svg"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"no input", Options{}, errors.ErrCodeInvalidInput},
		{"both inputs", Options{Diagram: example, Layout: crossedLayout()}, errors.ErrCodeInvalidInput},
		{"unfold layout", Options{Layout: crossedLayout(), Unfold: true}, errors.ErrCodeInvalidInput},
		{"control chars", Options{Diagram: "#\x00#"}, errors.ErrCodeInvalidInput},
		{"bad catalog", Options{Diagram: example, Catalog: burrow.Catalog{{Symbol: 'A', Weight: 0}}}, errors.ErrCodeInvalidCatalog},
		{"negative bound", Options{Diagram: example, Bound: -1}, errors.ErrCodeInvalidInput},
		{"negative timeout", Options{Diagram: example, Timeout: -time.Second}, errors.ErrCodeInvalidInput},
		{"bad format", Options{Diagram: example, Formats: []string{"png"}}, errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !errors.Is(err, tt.code) {
				t.Errorf("ValidateAndSetDefaults() = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{Diagram: example}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", opts.Timeout, DefaultTimeout)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatText {
		t.Errorf("Formats = %v, want [txt]", opts.Formats)
	}
	if len(opts.Catalog) != 4 || opts.Logger == nil {
		t.Errorf("Catalog/Logger defaults not applied: %+v", opts)
	}

	// Second call should be idempotent
	opts.Timeout = time.Second
	if err := opts.ValidateAndSetDefaults(); err != nil || opts.Timeout != time.Second {
		t.Errorf("second ValidateAndSetDefaults() changed options: %v, %v", err, opts.Timeout)
	}
}

func TestSolveExample(t *testing.T) {
	r, store := newTestRunner(t)
	ctx := context.Background()

	first, err := r.Solve(ctx, Options{Diagram: example})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if !first.Search.Solved || first.Search.Cost != 12521 {
		t.Fatalf("Solve() cost = %d (solved %v), want 12521", first.Search.Cost, first.Search.Solved)
	}
	if first.CacheInfo.SolveHit {
		t.Error("first Solve() reported a cache hit")
	}
	if burrow.TotalCost(first.Search.Moves) != 12521 {
		t.Errorf("moves cost %d, want 12521", burrow.TotalCost(first.Search.Moves))
	}

	second, err := r.Solve(ctx, Options{Diagram: example})
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.SolveHit {
		t.Error("second Solve() missed the cache")
	}
	if second.Search.Cost != first.Search.Cost || len(second.Search.Moves) != len(first.Search.Moves) {
		t.Errorf("cached result differs: %d/%d moves vs %d/%d",
			second.Search.Cost, len(second.Search.Moves), first.Search.Cost, len(first.Search.Moves))
	}
	if second.LayoutHash != first.LayoutHash {
		t.Error("layout hash is not stable")
	}

	runs, err := store.List(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("history has %d runs, want 2", len(runs))
	}
	if !runs[0].Cached || runs[0].ID != second.RunID || runs[1].ID != first.RunID {
		t.Errorf("history = %+v, %+v", runs[0], runs[1])
	}
	if !strings.Contains(runs[1].Diagram, "###B#C#B#D###") {
		t.Errorf("recorded diagram = %q", runs[1].Diagram)
	}
}

func TestSolveRefreshAndOptionsChangeKey(t *testing.T) {
	r, _ := newTestRunner(t)
	ctx := context.Background()

	if _, err := r.Solve(ctx, Options{Layout: crossedLayout()}); err != nil {
		t.Fatal(err)
	}
	res, err := r.Solve(ctx, Options{Layout: crossedLayout(), Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheInfo.SolveHit {
		t.Error("Refresh still used the cache")
	}
	res, err = r.Solve(ctx, Options{Layout: crossedLayout(), Memoize: true})
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheInfo.SolveHit {
		t.Error("different search options shared a cache entry")
	}
	if res.Search.Cost != 46 {
		t.Errorf("cost = %d, want 46", res.Search.Cost)
	}
}

func TestSolveDiscardsInvalidCacheEntry(t *testing.T) {
	r, _ := newTestRunner(t)
	ctx := context.Background()

	res, err := r.Solve(ctx, Options{Layout: crossedLayout()})
	if err != nil {
		t.Fatal(err)
	}
	catHash, _ := CatalogHash(burrow.DefaultCatalog())
	key := r.Keyer.SolutionKey(res.LayoutHash, cache.SolutionKeyOpts{CatalogHash: catHash})
	if err := r.Cache.Set(ctx, key, []byte(`{"cost":1,"solved":true}`), time.Hour); err != nil {
		t.Fatal(err)
	}

	again, err := r.Solve(ctx, Options{Layout: crossedLayout()})
	if err != nil {
		t.Fatal(err)
	}
	if again.CacheInfo.SolveHit || again.Search.Cost != 46 {
		t.Errorf("Solve() = cost %d hit %v, want a fresh 46", again.Search.Cost, again.CacheInfo.SolveHit)
	}
}

func TestSolveUnsolvableWithinBound(t *testing.T) {
	r, _ := newTestRunner(t)
	res, err := r.Solve(context.Background(), Options{Layout: crossedLayout(), Bound: 45})
	if err != nil {
		t.Fatalf("Solve() = %v, want an unsolved result", err)
	}
	if res.Search.Solved {
		t.Errorf("Solve() with bound 45 solved at %d", res.Search.Cost)
	}
}

func TestSolveUnfold(t *testing.T) {
	if testing.Short() {
		t.Skip("deep search")
	}
	r, _ := newTestRunner(t)
	res, err := r.Solve(context.Background(), Options{Diagram: example, Unfold: true, Memoize: true})
	if err != nil {
		t.Fatal(err)
	}
	if res.Layout.Depth() != 4 || res.Search.Cost != 44169 {
		t.Errorf("Solve(unfold) = depth %d cost %d, want 4 and 44169", res.Layout.Depth(), res.Search.Cost)
	}
}

func TestSolveErrors(t *testing.T) {
	r, _ := newTestRunner(t)

	_, err := r.Solve(context.Background(), Options{Diagram: "#####\n#...#\n"})
	if !errors.Is(err, errors.ErrCodeMalformedLayout) {
		t.Errorf("Solve(malformed) = %v, want %s", err, errors.ErrCodeMalformedLayout)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Solve(ctx, Options{Diagram: example})
	if !errors.Is(err, errors.ErrCodeCanceled) {
		t.Errorf("Solve(canceled) = %v, want %s", err, errors.ErrCodeCanceled)
	}
}

func TestExecuteRendersAndCachesArtifacts(t *testing.T) {
	r, _ := newTestRunner(t)
	ctx := context.Background()
	opts := Options{Layout: crossedLayout(), Formats: []string{FormatText, FormatJSON, FormatDOT}}

	res, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.CacheInfo.RenderHit {
		t.Error("first Execute() reported a render cache hit")
	}
	for _, f := range opts.Formats {
		if len(res.Artifacts[f]) == 0 {
			t.Errorf("artifact %s is empty", f)
		}
	}
	if !strings.Contains(string(res.Artifacts[FormatJSON]), `"cost": 46`) {
		t.Errorf("json artifact = %s", res.Artifacts[FormatJSON])
	}
	if !strings.HasPrefix(string(res.Artifacts[FormatDOT]), "digraph") {
		t.Errorf("dot artifact = %s", res.Artifacts[FormatDOT])
	}

	again, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !again.CacheInfo.RenderHit || string(again.Artifacts[FormatText]) != string(res.Artifacts[FormatText]) {
		t.Error("second Execute() did not reuse cached artifacts")
	}
}

func TestExecuteArtifactsFollowCatalog(t *testing.T) {
	r, _ := newTestRunner(t)
	ctx := context.Background()

	doubled := burrow.DefaultCatalog()
	for i := range doubled {
		doubled[i].Weight *= 2
	}

	var costs []int
	for _, cat := range []burrow.Catalog{burrow.DefaultCatalog(), doubled} {
		res, err := r.Execute(ctx, Options{Layout: crossedLayout(), Catalog: cat, Formats: []string{FormatJSON}})
		if err != nil {
			t.Fatalf("Execute: %v", err)
		}
		if res.CacheInfo.RenderHit {
			t.Errorf("catalog %v: artifacts came from another catalog's cache entry", cat)
		}
		want := fmt.Sprintf(`"cost": %d`, res.Search.Cost)
		if !strings.Contains(string(res.Artifacts[FormatJSON]), want) {
			t.Errorf("json artifact lacks %s:\n%s", want, res.Artifacts[FormatJSON])
		}
		costs = append(costs, res.Search.Cost)
	}
	if costs[1] != 2*costs[0] {
		t.Errorf("costs = %v, want the doubled catalog to cost twice as much", costs)
	}
}

type recordingHooks struct {
	observability.NoopSearchHooks
	mu       sync.Mutex
	outcomes []string
}

func (h *recordingHooks) OnSolveComplete(_ context.Context, outcome string, _ int, _ time.Duration, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.outcomes = append(h.outcomes, outcome)
}

func TestSolveReportsOutcomes(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetSearchHooks(hooks)
	t.Cleanup(observability.Reset)

	r, _ := newTestRunner(t)
	ctx := context.Background()
	r.Solve(ctx, Options{Layout: crossedLayout()})
	r.Solve(ctx, Options{Layout: crossedLayout()})
	r.Solve(ctx, Options{Layout: crossedLayout(), Bound: 10})

	want := []string{observability.OutcomeSolved, observability.OutcomeCached, observability.OutcomeUnsolvable}
	if strings.Join(hooks.outcomes, ",") != strings.Join(want, ",") {
		t.Errorf("outcomes = %v, want %v", hooks.outcomes, want)
	}
}

func TestSolveExampleFiles(t *testing.T) {
	dir := filepath.Join("..", "..", "examples")
	text, err := os.ReadFile(filepath.Join(dir, "input.txt"))
	if err != nil {
		t.Fatal(err)
	}
	layout, err := burrowio.ReadJSONFile(filepath.Join(dir, "layout.json"), burrow.DefaultCatalog())
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		opts Options
	}{
		{"input.txt", Options{Diagram: string(text)}},
		{"layout.json", Options{Layout: &layout}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestRunner(t)
			res, err := r.Solve(context.Background(), tt.opts)
			if err != nil {
				t.Fatalf("Solve: %v", err)
			}
			if res.Search.Cost != 12521 {
				t.Errorf("cost = %d, want 12521", res.Search.Cost)
			}
		})
	}
}
