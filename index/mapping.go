package index

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
)

// FieldPK, FieldSMILES and FieldFP are the field contract names fixed by
// spec.md §3: every document carries a primary key, the canonical SMILES
// of the indexed structure, and a not-stored fingerprint-bit field. Name
// and any remaining user-supplied properties are free-form.
const (
	FieldPK     = "pk"
	FieldSMILES = "smiles"
	FieldFP     = "fp"
	FieldName   = "name"
)

// buildMapping constructs the Bleve index mapping implementing the field
// contract table in spec.md §3:
//
//   - pk, smiles, name and every dynamic user field: stored, indexed,
//     not analyzed (keyword — the field value is indexed as a single
//     token, never tokenized into words). The field contract fixes this
//     regardless of analyzerName, so it is never threaded into the
//     per-field mappings below.
//   - fp: indexed but not stored — one token per set fingerprint bit, so
//     callers hand in the decimal bit positions as a []string and the
//     keyword analyzer indexes each one as its own term.
//
// analyzerName is the facade's configured lexical analyzer (spec.md §4.6's
// "analyzer factory (produces the lexical analyzer)"). It is set as the
// mapping's index-level DefaultAnalyzer, which is distinct from the
// per-field analyzers above: Store.AnalyzeText resolves it via
// mapping.AnalyzerNamed to tokenize free-text queries (spec.md §4.1/§4.6
// search_free's "using the configured analyzer") before those terms are
// matched against the not-analyzed fields, since the fields themselves
// never re-tokenize a raw query string.
//
// Dynamic mapping is left on so that ingest-time property names unknown
// ahead of time (the SD file's per-dataset property sections, spec.md
// §4.3) are still indexed and stored without a schema migration step.
func buildMapping(analyzerName string) mapping.IndexMapping {
	keyword := bleve.NewTextFieldMapping()
	keyword.Analyzer = "keyword"
	keyword.Store = true
	keyword.Index = true
	keyword.IncludeInAll = true

	fpField := bleve.NewTextFieldMapping()
	fpField.Analyzer = "keyword"
	fpField.Store = false
	fpField.Index = true
	fpField.IncludeInAll = false

	doc := bleve.NewDocumentMapping()
	doc.DefaultAnalyzer = "keyword"
	doc.Dynamic = true
	doc.AddFieldMappingsAt(FieldPK, keyword)
	doc.AddFieldMappingsAt(FieldSMILES, keyword)
	doc.AddFieldMappingsAt(FieldName, keyword)
	doc.AddFieldMappingsAt(FieldFP, fpField)

	im := bleve.NewIndexMapping()
	im.DefaultMapping = doc
	im.DefaultAnalyzer = analyzerName
	return im
}
