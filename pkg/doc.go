// Package pkg provides the libraries behind the burrow solver.
//
// # Overview
//
// Burrow finds the least total energy needed to sort amphipods from a row of
// rooms, through a shared hallway, into the room of their own class. The pkg
// directory is organized into three areas:
//
//  1. [burrow] - Domain logic (hallway, rooms, states, moves, search)
//  2. [diagram], [io], [render] - Input and output formats
//  3. [pipeline], [cache], [history], [config] - Orchestration and storage
//
// # Architecture
//
// The typical data flow:
//
//	Diagram text / layout JSON
//	         ↓
//	    [diagram] or [io] package (parse into a burrow.Layout)
//	         ↓
//	    [burrow] package (initial State, branch-and-bound Search)
//	         ↓
//	    [render] package (move table, DOT, SVG)
//
// [pipeline] wraps these steps with caching and run history for the CLI and
// the HTTP API.
//
// # Quick Start
//
// Solve a diagram directly:
//
//	import (
//	    "github.com/matzehuels/burrow/pkg/burrow"
//	    "github.com/matzehuels/burrow/pkg/diagram"
//	)
//
//	cat := burrow.DefaultCatalog()
//	l, _ := diagram.Parse(input, cat)
//	s, _ := burrow.NewState(l, cat)
//	res, _ := burrow.Search{Catalog: cat}.Solve(s)
//	fmt.Println(res.Cost)
//
// # Main Packages
//
// [burrow] - Hallway and room stores, the State value, move generation and
// application, and the depth-first branch-and-bound search. Has no
// dependencies outside the standard library.
//
// [diagram] - Parse and format the walled text diagram, including the
// two-row unfold.
//
// [io] - JSON layout documents and search result export.
//
// [render] - Move tables (lipgloss) and solution graphs (DOT, SVG via
// Graphviz).
//
// [pipeline] - Parse → solve → render with caching, used by CLI and API.
//
// [cache] - Solution cache backends: file, Redis and a no-op cache.
//
// [history] - Run records in memory or MongoDB.
//
// [config] - TOML/YAML configuration with environment overrides.
//
// [errors] - Error codes shared by CLI and API.
//
// [observability] - Hooks for metrics without a metrics dependency.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...          # All tests
//	go test -short ./pkg/...   # Skip the long searches
//	go test -run Example       # Examples only
//
// [burrow]: https://pkg.go.dev/github.com/matzehuels/burrow/pkg/burrow
// [diagram]: https://pkg.go.dev/github.com/matzehuels/burrow/pkg/diagram
// [io]: https://pkg.go.dev/github.com/matzehuels/burrow/pkg/io
// [render]: https://pkg.go.dev/github.com/matzehuels/burrow/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/burrow/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/burrow/pkg/cache
// [history]: https://pkg.go.dev/github.com/matzehuels/burrow/pkg/history
// [config]: https://pkg.go.dev/github.com/matzehuels/burrow/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/burrow/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/burrow/pkg/observability
package pkg
