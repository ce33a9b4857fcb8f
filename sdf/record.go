// Package sdf streams structure-data-file records from a byte stream, per
// spec.md §4.3 and §6. Grounded on the teacher's src/sdf_loader.go
// line-oriented reader, rewritten to produce raw records (molblock text +
// property map) rather than parsed molecule objects — chemistry parsing
// is the core package's job, not the record parser's.
package sdf

import "strconv"

// Record is one parsed SD file record: the raw molecule-block text plus
// its property map and the synthetic fields the spec requires.
type Record struct {
	Molblock   string
	Properties map[string]string

	// Synthetic properties, always present.
	DatasetName  string
	LineNumber   int // 1-based line at which this record's molblock begins
	RecordNumber int // monotonic from the parser's configured start
}

// Get returns the value of a property, checking the synthetic fields
// first since they are not stored in Properties.
func (r *Record) Get(name string) (string, bool) {
	switch name {
	case "dataset_name":
		return r.DatasetName, true
	case "line_number":
		return strconv.Itoa(r.LineNumber), true
	case "record_number":
		return strconv.Itoa(r.RecordNumber), true
	}
	v, ok := r.Properties[name]
	return v, ok
}
