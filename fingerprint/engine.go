package fingerprint

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/cx-luo/chemindex/core"
)

// QueryCacheSize bounds the engine's query-fingerprint cache. Repeated
// fingerprint/substructure searches for the same SMILES (common in
// interactive use) skip the Avalon call entirely once warm.
const QueryCacheSize = 4096

// Engine computes structure and query fingerprints according to a fixed
// (structure, query) settings pair, per spec.md §4.4. Changing either
// settings object invalidates every previously built index, so an Engine
// is meant to be constructed once per index lifetime and reused.
type Engine struct {
	structureSettings Settings
	querySettings     Settings
	queryCache        *lru.Cache[string, *BitVector]
}

// New builds an Engine for the given structure/query settings pair. Kind
// and Width must agree between the two settings.
func New(structureSettings, querySettings Settings) (*Engine, error) {
	if structureSettings.Kind != querySettings.Kind {
		return nil, fmt.Errorf("fingerprint: structure kind %q and query kind %q must match", structureSettings.Kind, querySettings.Kind)
	}
	if structureSettings.Width != querySettings.Width {
		return nil, fmt.Errorf("fingerprint: structure width %d and query width %d must match", structureSettings.Width, querySettings.Width)
	}
	cache, err := lru.New[string, *BitVector](QueryCacheSize)
	if err != nil {
		return nil, fmt.Errorf("fingerprint: allocating query cache: %w", err)
	}
	return &Engine{
		structureSettings: structureSettings,
		querySettings:     querySettings,
		queryCache:        cache,
	}, nil
}

// Width returns the configured fingerprint bit width.
func (e *Engine) Width() int { return e.structureSettings.Width }

// StructureFP computes the structure fingerprint of an ingested molecule.
// For KindAvalon the bits come from canonicalSmiles, which
// core.AvalonFingerprint parses again; mol is not used on that path. For
// any other kind the bits come from mol's live handle, with no reparse.
func (e *Engine) StructureFP(mol *core.Molecule, canonicalSmiles string) (*BitVector, error) {
	switch e.structureSettings.Kind {
	case KindAvalon:
		bits, err := core.AvalonFingerprint(canonicalSmiles, e.structureSettings.Width, e.structureSettings.AvalonQueryFlag, e.structureSettings.AvalonBitFlags)
		if err != nil {
			return nil, fmt.Errorf("fingerprint: structure fp: %w", err)
		}
		return FromBitList(e.structureSettings.Width, bits), nil
	default:
		bits, err := core.GenericFingerprint(mol, string(e.structureSettings.Kind), e.structureSettings.Width)
		if err != nil {
			return nil, fmt.Errorf("fingerprint: structure fp: %w", err)
		}
		return FromBitList(e.structureSettings.Width, bits), nil
	}
}

// QueryFP computes the query fingerprint for smiles. If canonical is
// true, the caller asserts smiles is already canonical, and a generic
// fingerprint kind parses it with core.ParseSMILES's sanitize flag off
// (spec.md §4.4 performance policy); Avalon always reparses from the
// string.
func (e *Engine) QueryFP(smiles string, canonical bool) (*BitVector, error) {
	if bv, ok := e.queryCache.Get(smiles); ok {
		return bv, nil
	}

	var bv *BitVector
	switch e.querySettings.Kind {
	case KindAvalon:
		bits, err := core.AvalonFingerprint(smiles, e.querySettings.Width, e.querySettings.AvalonQueryFlag, e.querySettings.AvalonBitFlags)
		if err != nil {
			return nil, fmt.Errorf("fingerprint: query fp: %w", err)
		}
		bv = FromBitList(e.querySettings.Width, bits)
	default:
		mol, err := core.ParseSMILES(smiles, !canonical)
		if err != nil {
			return nil, fmt.Errorf("fingerprint: query fp: %w", err)
		}
		defer mol.Release()
		bits, err := core.GenericFingerprint(mol, string(e.querySettings.Kind), e.querySettings.Width)
		if err != nil {
			return nil, fmt.Errorf("fingerprint: query fp: %w", err)
		}
		bv = FromBitList(e.querySettings.Width, bits)
	}

	e.queryCache.Add(smiles, bv)
	return bv, nil
}
