package chemindex

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/cx-luo/chemindex/core"
	"github.com/cx-luo/chemindex/index"
	"github.com/cx-luo/chemindex/sdf"
)

// IngestSummary reports the outcome of an IngestStream call (spec.md §7:
// "Ingestion surfaces a structured summary (total errors, last error,
// aborted/completed) at the end").
type IngestSummary struct {
	RecordsRead    int
	RecordsIndexed int
	TotalErrors    int
	LastError      error
	Aborted        bool
}

// IngestStream drives the record parser over input, canonicalizing and
// fingerprinting each record and writing it to the index (spec.md
// §4.6). name is used both as the parser's dataset-name property and
// for gzip/zip suffix detection. skipUntilPK, if non-empty, suppresses
// ingestion of every record before the first one with a matching pk; that
// record itself is ingested. skipPKs names primary keys to skip
// unconditionally.
//
// At most one ingest runs at a time per facade; a concurrent call
// returns ErrIngestInProgress.
func (f *Facade) IngestStream(input io.Reader, name, primaryKeyField string, skipUntilPK string, skipPKs map[string]bool) (*IngestSummary, error) {
	if f.isShutdown() {
		return nil, ErrShutdown
	}
	if !f.ingestMu.TryLock() {
		return nil, ErrIngestInProgress
	}
	defer f.ingestMu.Unlock()

	if err := f.store.OpenWriter(); err != nil {
		return nil, fmt.Errorf("chemindex: opening writer: %w", err)
	}

	parser, err := sdf.New(input, name, 1)
	if err != nil {
		return nil, fmt.Errorf("chemindex: opening record stream: %w", err)
	}

	summary := &IngestSummary{}
	consecutiveErrors := 0
	armed := skipUntilPK == ""

	for {
		rec, err := parser.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return summary, fmt.Errorf("chemindex: reading record stream: %w", err)
		}
		summary.RecordsRead++

		pk, ok := rec.Get(primaryKeyField)
		if !ok {
			summary.TotalErrors++
			summary.LastError = &RecordError{
				LineNumber:   rec.LineNumber,
				RecordNumber: rec.RecordNumber,
				Op:           "missing primary key",
				Err:          fmt.Errorf("field %q not present", primaryKeyField),
			}
			f.log.Warn("ingest: missing primary key", zap.Int("line", rec.LineNumber))
			consecutiveErrors++
			if consecutiveErrors > f.opts.ConsecutiveErrorLimit {
				summary.Aborted = true
				return summary, fmt.Errorf("%w: %v", ErrTooManyConsecutiveErrors, summary.LastError)
			}
			continue
		}

		if !armed {
			if pk == skipUntilPK {
				armed = true
			} else {
				continue
			}
		}
		if skipPKs != nil && skipPKs[pk] {
			continue
		}

		if err := f.ingestRecord(rec, pk, primaryKeyField); err != nil {
			summary.TotalErrors++
			summary.LastError = err
			consecutiveErrors++
			if consecutiveErrors > f.opts.ConsecutiveErrorLimit {
				summary.Aborted = true
				return summary, fmt.Errorf("%w: %v", ErrTooManyConsecutiveErrors, summary.LastError)
			}
			continue
		}

		consecutiveErrors = 0
		summary.RecordsIndexed++
	}

	if err := f.store.Commit(); err != nil {
		return summary, fmt.Errorf("chemindex: committing: %w", err)
	}
	return summary, nil
}

// ingestRecord parses, canonicalizes, fingerprints and writes a single
// record, notifying listeners on success (spec.md §4.6 steps 4-8).
func (f *Facade) ingestRecord(rec *sdf.Record, pk, primaryKeyField string) error {
	wave := f.tracker.FreshWaveID()
	defer f.tracker.Cleanup(wave)

	mol, err := core.ParseMolblock(rec.Molblock)
	if err != nil {
		return &RecordError{LineNumber: rec.LineNumber, RecordNumber: rec.RecordNumber, PK: pk, Op: "parse molblock", Err: err}
	}
	f.tracker.Mark(mol, wave, false)

	canonical, err := mol.ToCanonicalSmiles()
	if err != nil {
		return &RecordError{LineNumber: rec.LineNumber, RecordNumber: rec.RecordNumber, PK: pk, Op: "canonicalize", Err: err}
	}
	if canonical == "" {
		return &RecordError{LineNumber: rec.LineNumber, RecordNumber: rec.RecordNumber, PK: pk, Op: "canonicalize", Err: fmt.Errorf("empty canonical SMILES")}
	}

	fp, err := f.engine.StructureFP(mol, canonical)
	if err != nil {
		return &RecordError{LineNumber: rec.LineNumber, RecordNumber: rec.RecordNumber, PK: pk, Op: "fingerprint", Err: err}
	}

	doc := buildDocument(pk, canonical, fp.Bits(), rec, primaryKeyField)

	if err := f.store.DeleteByTerm(pk); err != nil {
		return &RecordError{LineNumber: rec.LineNumber, RecordNumber: rec.RecordNumber, PK: pk, Op: "delete existing", Err: err}
	}
	if err := f.store.AddDocument(pk, doc); err != nil {
		return &RecordError{LineNumber: rec.LineNumber, RecordNumber: rec.RecordNumber, PK: pk, Op: "add document", Err: err}
	}

	f.notifyListeners(pk, canonical)
	return nil
}

// buildDocument assembles the field map described in spec.md §3's
// Indexed Document entity: pk/smiles stored, fp indexed-only (one token
// per set bit), an optional name field split on newlines (the parser
// joins multi-line property values with \n, spec.md §4.3), and every
// remaining record property stored as-is.
func buildDocument(pk, canonicalSmiles string, bits []int, rec *sdf.Record, primaryKeyField string) map[string]interface{} {
	fpTokens := make([]string, len(bits))
	for i, b := range bits {
		fpTokens[i] = fmt.Sprintf("%d", b)
	}

	doc := map[string]interface{}{
		index.FieldPK:     pk,
		index.FieldSMILES: canonicalSmiles,
		index.FieldFP:     fpTokens,
	}

	if names, ok := rec.Properties[index.FieldName]; ok && names != "" {
		doc[index.FieldName] = strings.Split(names, "\n")
	}

	for key, value := range rec.Properties {
		if key == index.FieldName || key == primaryKeyField ||
			key == index.FieldPK || key == index.FieldSMILES || key == index.FieldFP {
			continue
		}
		doc[key] = value
	}

	return doc
}
