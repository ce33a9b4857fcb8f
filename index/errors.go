// Package index implements the persistent term-indexed document store
// (spec.md §4.5) on top of Bleve, the Lucene-equivalent Go search
// library referenced by the example corpus's nishad-srake manifest. It
// models the writer/searcher duality as an explicit state machine per
// spec.md's design note (§9 "Writer/searcher duality"), rather than
// relying on Bleve's own (fully concurrent) Index type directly.
package index

import "errors"

// ErrNoIndexYet is returned by OpenSearcher when the store directory has
// never been initialized by a writer (spec.md §4.5: "must tolerate an
// absent/never-initialized index directory ... by surfacing a distinct
// 'no index yet' error").
var ErrNoIndexYet = errors.New("index: no index yet")

// ErrShutdown is returned by any operation attempted after Shutdown.
var ErrShutdown = errors.New("index: store is shut down")

// ErrWrongState is returned when an operation is attempted in a state
// that does not support it (e.g. AddDocument while searching).
var ErrWrongState = errors.New("index: operation not valid in current state")
