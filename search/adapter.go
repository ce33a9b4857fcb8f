// Package search adapts a scored-hit collector and an index searcher
// into the ordered primary-key lists the facade's search methods return
// (spec.md §4.8). It has no teacher analogue since the teacher repo
// never implemented a search-result layer of its own; it is grounded on
// the index package's GetDocument/Fields contract built directly above.
package search

import (
	"github.com/cx-luo/chemindex/collector"
	"github.com/cx-luo/chemindex/index"
)

// PrimaryKeys reads entries in collector order — best first — and
// returns the `pk` field of each corresponding document, skipping any
// document that has no `pk` field. Returns an empty (never nil) slice
// when c is nil or empty.
func PrimaryKeys(store *index.Store, c *collector.Collector) ([]string, error) {
	out := make([]string, 0)
	if c == nil {
		return out, nil
	}
	for _, entry := range c.Results() {
		doc, err := store.GetDocument(entry.DocID)
		if err != nil {
			return nil, err
		}
		if doc == nil {
			continue
		}
		pk, ok := doc[index.FieldPK]
		if !ok {
			continue
		}
		pkStr, ok := pk.(string)
		if !ok || pkStr == "" {
			continue
		}
		out = append(out, pkStr)
	}
	return out, nil
}

// FromSearchResult reads bleve search hits directly (bypassing the
// substructure collector) for search paths that do not need a bounded
// verification pool — free text, name, exact-structure and
// fingerprint-only search (spec.md §4.1–§4.4) all return the matching
// documents, up to their max_hits, in the index's own score order.
func FromSearchResult(store *index.Store, hits []string) ([]string, error) {
	out := make([]string, 0, len(hits))
	for _, id := range hits {
		doc, err := store.GetDocument(id)
		if err != nil {
			return nil, err
		}
		if doc == nil {
			continue
		}
		pk, ok := doc[index.FieldPK]
		if !ok {
			continue
		}
		pkStr, ok := pk.(string)
		if !ok || pkStr == "" {
			continue
		}
		out = append(out, pkStr)
	}
	return out, nil
}
