// Package chemindex ties the chemistry binding, resource tracker,
// fingerprint engine and inverted index store into the single facade
// described in spec.md §4.6: ingest a stream of structure-data records
// and search it five ways (free text, name, exact structure, fingerprint
// screen, full substructure). It is grounded on the teacher repo's
// top-level package layout (a thin façade type wiring its own
// sub-packages together), generalized from a CLI/demo entry point to a
// library facade with no process-exit semantics of its own.
package chemindex

import "errors"

// ErrShutdown is returned by every facade operation once Shutdown has
// been called (spec.md §7: "operations on a shut-down facade return a
// null collector or a distinguished 'shut down' signal; they never
// crash").
var ErrShutdown = errors.New("chemindex: facade is shut down")

// ErrIngestInProgress is returned by IngestStream if another ingest is
// already running (spec.md §4.6: "at most one ingest runs at a time").
var ErrIngestInProgress = errors.New("chemindex: ingest already in progress")

// ErrTooManyConsecutiveErrors is the fatal cause reported when an ingest
// aborts after exceeding the consecutive-error budget (spec.md §4.6,
// §7, scenario S6).
var ErrTooManyConsecutiveErrors = errors.New("chemindex: too many consecutive record errors")

// RecordError describes a single per-record ingest failure (missing
// primary key, unparsable molblock, empty canonical SMILES, or a
// fingerprint computation failure), carrying enough context for a
// caller to locate the offending record in its input.
type RecordError struct {
	LineNumber   int
	RecordNumber int
	PK           string
	Op           string
	Err          error
}

func (e *RecordError) Error() string {
	if e.PK != "" {
		return "chemindex: " + e.Op + ": pk=" + e.PK + ": " + e.Err.Error()
	}
	return "chemindex: " + e.Op + ": " + e.Err.Error()
}

func (e *RecordError) Unwrap() error { return e.Err }
