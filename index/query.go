package index

import "github.com/blevesearch/bleve/v2"

// TermQuery builds an exact single-field, single-token match, used for
// primary-key and fingerprint-bit lookups (spec.md §4.1/§4.4 screening).
func TermQuery(field, term string) *bleve.TermQuery {
	q := bleve.NewTermQuery(term)
	q.SetField(field)
	return q
}

// MustShould builds a boolean query requiring every query in must and
// matching at least one of should (when should is non-empty). The
// fingerprint screening stage (spec.md §4.4) uses this to AND together
// one term query per set bit of the query fingerprint.
func MustShould(must, should []bleve.Query) *bleve.BooleanQuery {
	bq := bleve.NewBooleanQuery()
	if len(must) > 0 {
		bq.AddMust(must...)
	}
	if len(should) > 0 {
		bq.AddShould(should...)
	}
	return bq
}

// MultiFieldQueryFromTerms ORs a term query for every (field, term) pair
// whose field is not the fingerprint field fp (those are skipped),
// implementing the free-text search's "union of all indexed field
// names... using the configured analyzer" behavior (spec.md §4.1/§4.6):
// the caller tokenizes text with the facade's configured analyzer (via
// Store.AnalyzeText) and hands the resulting terms in here, since every
// field in this store's mapping is itself indexed not-analyzed
// (keyword) and would not re-tokenize a raw query string on its own.
func MultiFieldQueryFromTerms(fields []string, terms []string) *bleve.DisjunctionQuery {
	queries := make([]bleve.Query, 0, len(fields)*len(terms))
	for _, f := range fields {
		if f == FieldFP {
			continue
		}
		for _, term := range terms {
			queries = append(queries, TermQuery(f, term))
		}
	}
	return bleve.NewDisjunctionQuery(queries...)
}
