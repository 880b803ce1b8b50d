// Package pkg provides the libraries behind the overflow engine.
//
// # Overview
//
// Overflow decides which items of a sequence (toolbar buttons, breadcrumb
// segments, tabs) stay visible when their container is too small. Items
// carry a priority; the lowest priorities are hidden first and the highest
// hidden ones come back first as space returns. The pkg directory is
// organized into three areas:
//
//  1. Engine - [overflow], [pqueue], [turn] and [resize]
//  2. Scenarios - [scenario] and its [cache] of results
//  3. Service - [api], [observability], [errors] and [buildinfo]
//
// # Architecture
//
// The typical data flow:
//
//	resize.Source / scenario capacity
//	         ↓
//	    [resize] package (coalesce size reports into one per turn)
//	         ↓
//	    [overflow] package (fitting pass over two priority queues)
//	         ↓
//	    update notification (visible items, hidden items, group states)
//
// # Quick Start
//
// Fit a toolbar into 200 units:
//
//	import "github.com/matzehuels/overflow/pkg/overflow"
//
//	m := overflow.New(func(u overflow.Update) {
//	    fmt.Println(u.VisibleIDs(), u.HiddenIDs())
//	})
//	m.Observe(container)
//	m.AddItems(items...)
//	m.Flush() // run the debounced fitting pass
//
// # Main Packages
//
// ## Engine
//
// [overflow] - The fitting engine. Items live in an eviction queue while
// visible and a restore queue while hidden; a fitting pass moves items
// between them until the visible extent fits the container.
//
// [pqueue] - Comparator-driven binary heap with removal by value, plus
// Graphviz rendering of the heap shape for debugging.
//
// [turn] - Scheduling turns: a deferred-callback queue, a single-goroutine
// loop and a debouncer that collapses triggers within one turn.
//
// [resize] - Size notifiers and an observer that feeds them to a Manager.
//
// ## Scenarios
//
// [scenario] - Declarative fitting runs in TOML or JSON, built-in presets,
// fingerprints, and stores (memory, MongoDB).
//
// [cache] - Result caches (null, file, Redis) keyed by scenario fingerprint.
//
// ## Service
//
// [api] - chi-based HTTP service for one-shot fits, stored scenarios and
// live engine sessions.
//
// [observability] - Hooks for fitting passes, cache lookups and requests,
// with a Prometheus implementation.
//
// [errors] - Coded errors shared by the CLI and the service.
//
// [buildinfo] - Version information set at build time.
//
// # Testing
//
// Run tests:
//
//	go test ./...                  # All tests
//	go test ./pkg/overflow/...     # Engine only
//	go test -run Example ./pkg/... # Examples only
//
// MongoDB tests run when OVERFLOW_TEST_MONGO_URI is set.
//
// [overflow]: https://pkg.go.dev/github.com/matzehuels/overflow/pkg/overflow
// [pqueue]: https://pkg.go.dev/github.com/matzehuels/overflow/pkg/pqueue
// [turn]: https://pkg.go.dev/github.com/matzehuels/overflow/pkg/turn
// [resize]: https://pkg.go.dev/github.com/matzehuels/overflow/pkg/resize
// [scenario]: https://pkg.go.dev/github.com/matzehuels/overflow/pkg/scenario
// [cache]: https://pkg.go.dev/github.com/matzehuels/overflow/pkg/cache
// [api]: https://pkg.go.dev/github.com/matzehuels/overflow/pkg/api
// [observability]: https://pkg.go.dev/github.com/matzehuels/overflow/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/overflow/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/overflow/pkg/buildinfo
package pkg
