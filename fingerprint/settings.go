package fingerprint

// Kind names a supported fingerprint algorithm.
type Kind string

// KindAvalon is the only fingerprint algorithm this package implements
// directly against the native toolkit today; the Kind field exists so a
// second kind (spec.md §4.4 table: "one of {avalon, …}") can be added
// without changing the Settings or Engine API.
const KindAvalon Kind = "avalon"

// DefaultWidth is the default fingerprint bit width (spec.md §3, §6).
const DefaultWidth = 512

// Settings configures one flavour of fingerprint computation: either the
// structure settings used at index time, or the query settings used at
// search time. Both must share Kind and Width; only AvalonQueryFlag and
// (optionally) AvalonBitFlags differ between the structure and query
// pair (spec.md §4.4).
type Settings struct {
	Kind             Kind
	Width            int
	AvalonQueryFlag  int // 0 for structure fingerprints, 1 for query fingerprints
	AvalonBitFlags   uint32
	ExtraParams      map[string]string
}

// StructureSettings returns the default structure-fingerprint settings:
// Avalon, default width, query flag 0.
func StructureSettings() Settings {
	return Settings{Kind: KindAvalon, Width: DefaultWidth, AvalonQueryFlag: 0}
}

// QuerySettings returns the default query-fingerprint settings: Avalon,
// default width, query flag 1. The screening invariant (spec.md §3
// invariant 4) depends on AvalonQueryFlag differing between the
// structure and query settings while Kind, Width, and AvalonBitFlags
// agree — the Avalon routine itself guarantees the subset property when
// given matching flags and query_flag=1 for the query side.
func QuerySettings() Settings {
	return Settings{Kind: KindAvalon, Width: DefaultWidth, AvalonQueryFlag: 1}
}
