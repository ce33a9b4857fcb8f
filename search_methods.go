package chemindex

import (
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"go.uber.org/zap"

	"github.com/cx-luo/chemindex/collector"
	"github.com/cx-luo/chemindex/core"
	"github.com/cx-luo/chemindex/index"
	"github.com/cx-luo/chemindex/search"
)

// SearchFree parses text as a multi-field query over the union of every
// indexed field name discovered from the store, except fp (spec.md §4.6
// search_free). Returns (nil, nil) if the index has never been written
// to, and (nil, ErrShutdown) if the facade is shut down.
func (f *Facade) SearchFree(text string, maxHits int) ([]string, error) {
	store, err := f.ensureSearcher()
	if err != nil || store == nil {
		return nil, err
	}

	fields, err := store.Fields()
	if err != nil {
		return nil, fmt.Errorf("chemindex: search_free: %w", err)
	}
	terms, err := store.AnalyzeText(text)
	if err != nil {
		return nil, fmt.Errorf("chemindex: search_free: %w", err)
	}
	q := index.MultiFieldQueryFromTerms(fields, terms)
	return f.runQuery(store, q, maxHits)
}

// SearchByName runs a boolean OR of name:name and pk:name term queries
// (spec.md §4.6 search_by_name).
func (f *Facade) SearchByName(name string, maxHits int) ([]string, error) {
	store, err := f.ensureSearcher()
	if err != nil || store == nil {
		return nil, err
	}

	q := bleve.NewDisjunctionQuery(
		index.TermQuery(index.FieldName, name),
		index.TermQuery(index.FieldPK, name),
	)
	return f.runQuery(store, q, maxHits)
}

// SearchExact canonicalizes smiles and runs a term query on the smiles
// field (spec.md §4.6 search_exact).
func (f *Facade) SearchExact(smiles string, maxHits int) ([]string, error) {
	store, err := f.ensureSearcher()
	if err != nil || store == nil {
		return nil, err
	}

	canonical, err := f.canonicalize(smiles)
	if err != nil {
		return nil, fmt.Errorf("chemindex: search_exact: %w", err)
	}

	q := index.TermQuery(index.FieldSMILES, canonical)
	return f.runQuery(store, q, maxHits)
}

// SearchByFP computes the query fingerprint of smiles and matches
// documents whose stored structure fingerprint is a bit-superset of it
// (spec.md §4.6 search_by_fp): a boolean AND of fp:<i> term queries, one
// per set bit.
func (f *Facade) SearchByFP(smiles string, maxHits int) ([]string, error) {
	store, err := f.ensureSearcher()
	if err != nil || store == nil {
		return nil, err
	}

	q, err := f.fpQuery(smiles)
	if err != nil {
		return nil, fmt.Errorf("chemindex: search_by_fp: %w", err)
	}
	return f.runQuery(store, q, maxHits)
}

// fpQuery builds the MUST-of-fp-terms query shared by SearchByFP and the
// substructure search's candidate stage.
func (f *Facade) fpQuery(smiles string) (*bleve.BooleanQuery, error) {
	bv, err := f.engine.QueryFP(smiles, false)
	if err != nil {
		return nil, err
	}
	bits := bv.Bits()
	must := make([]bleve.Query, len(bits))
	for i, b := range bits {
		must[i] = index.TermQuery(index.FieldFP, fmt.Sprintf("%d", b))
	}
	return index.MustShould(must, nil), nil
}

// SearchSubstructure runs the two-stage candidate-then-verify pipeline
// described in spec.md §4.6 search_substructure: a fingerprint screen
// capped at candidateCap(maxHits), followed by atom-level verification
// of each candidate in relevance order until maxHits survivors are
// found.
func (f *Facade) SearchSubstructure(smiles string, maxHits int) ([]string, error) {
	store, err := f.ensureSearcher()
	if err != nil || store == nil {
		return nil, err
	}

	q, err := f.fpQuery(smiles)
	if err != nil {
		return nil, fmt.Errorf("chemindex: search_substructure: %w", err)
	}

	res, err := store.Search(q, f.candidateCap(maxHits))
	if err != nil {
		return nil, fmt.Errorf("chemindex: search_substructure: candidate screen: %w", err)
	}

	queryWave := f.tracker.FreshWaveID()
	defer f.tracker.Cleanup(queryWave)

	queryMol, err := core.ParseSMILES(smiles, false)
	if err != nil {
		return nil, fmt.Errorf("chemindex: search_substructure: parsing query: %w", err)
	}
	f.tracker.Mark(queryMol, queryWave, false)

	c := collector.New(maxHits)
	survivors := 0
	for _, hit := range res.Hits {
		if maxHits > 0 && survivors >= maxHits {
			break
		}
		matched, err := f.verifyCandidate(hit.ID, store, queryMol)
		if err != nil {
			f.log.Warn("search_substructure: candidate verification failed", zap.String("doc_id", hit.ID), zap.Error(err))
			continue
		}
		if matched {
			c.Collect(hit.ID, hit.Score)
			survivors++
		}
	}

	return search.PrimaryKeys(store, c)
}

// verifyCandidate loads candidateID's stored SMILES, parses it with
// core.ParseSMILES's sanitize flag off, updates its property cache, and tests it as the haystack
// against queryMol as the needle (spec.md §4.1, §4.6). Each candidate
// gets its own nested wave, released on every exit path.
func (f *Facade) verifyCandidate(candidateID string, store *index.Store, queryMol *core.Molecule) (bool, error) {
	wave := f.tracker.FreshWaveID()
	defer f.tracker.Cleanup(wave)

	doc, err := store.GetDocument(candidateID)
	if err != nil {
		return false, err
	}
	if doc == nil {
		return false, nil
	}
	smilesVal, ok := doc[index.FieldSMILES].(string)
	if !ok || smilesVal == "" {
		return false, nil
	}

	candidate, err := core.ParseSMILES(smilesVal, false)
	if err != nil {
		return false, err
	}
	f.tracker.Mark(candidate, wave, false)

	if err := candidate.UpdatePropertyCache(); err != nil {
		return false, err
	}
	return candidate.HasSubstructureMatch(queryMol)
}

// canonicalize parses and re-canonicalizes smiles under its own wave.
func (f *Facade) canonicalize(smiles string) (string, error) {
	wave := f.tracker.FreshWaveID()
	defer f.tracker.Cleanup(wave)

	mol, err := core.ParseSMILES(smiles, false)
	if err != nil {
		return "", err
	}
	f.tracker.Mark(mol, wave, false)
	return mol.ToCanonicalSmiles()
}

// runQuery executes q against store and adapts the hits to pk strings.
func (f *Facade) runQuery(store *index.Store, q bleve.Query, maxHits int) ([]string, error) {
	res, err := store.Search(q, maxHits)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(res.Hits))
	for i, hit := range res.Hits {
		ids[i] = hit.ID
	}
	return search.FromSearchResult(store, ids)
}
