// Package core wraps the Indigo cheminformatics toolkit via CGO: molecule
// parsing, canonicalization, substructure matching, and fingerprinting.
package core

import (
	"fmt"
	"strings"
)

// Kind tags the three ways a toolkit call can fail, so callers can branch
// on failure class instead of parsing the wrapped message.
type Kind int

const (
	// KindParse means the input text could not be parsed as a molecule.
	KindParse Kind = iota
	// KindSanitize means parsing succeeded but sanitation (valence check,
	// aromaticity perception) rejected the structure.
	KindSanitize
	// KindToolkit means an internal Indigo error unrelated to the input,
	// e.g. a bad handle or a call made after session teardown.
	KindToolkit
)

func (k Kind) String() string {
	switch k {
	case KindParse:
		return "parse"
	case KindSanitize:
		return "sanitize"
	case KindToolkit:
		return "toolkit"
	default:
		return "unknown"
	}
}

// Error is a tagged Indigo failure. Msg is normally the toolkit's own
// indigoGetLastError() string.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("core: %s: %s: %s", e.Op, e.Kind, e.Msg)
}

func newError(kind Kind, op string) *Error {
	return &Error{Kind: kind, Op: op, Msg: lastErrorString()}
}

// sanitizationMarkers are substrings Indigo's own error messages use when a
// load call fails sanitation (valence/aromaticity/stereo/charge checks)
// rather than failing to parse the input's grammar at all.
var sanitizationMarkers = []string{"valence", "aromat", "stereo", "charge", "radical", "sanitiz"}

// newLoadError classifies a failed parse_smiles/parse_molblock/parse_smarts
// call as KindParse or KindSanitize by inspecting Indigo's own last-error
// text: both failure modes surface through the same negative-handle return,
// so the toolkit's message is the only signal available to tell them apart.
func newLoadError(op string) *Error {
	msg := lastErrorString()
	kind := KindParse
	lower := strings.ToLower(msg)
	for _, marker := range sanitizationMarkers {
		if strings.Contains(lower, marker) {
			kind = KindSanitize
			break
		}
	}
	return &Error{Kind: kind, Op: op, Msg: msg}
}
