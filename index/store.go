package index

import (
	"fmt"
	"os"
	"sync"

	"github.com/blevesearch/bleve/v2"
	indexapi "github.com/blevesearch/bleve_index_api"
	"go.uber.org/zap"
)

// State names the store's current lifecycle stage (spec.md §4.5).
type State int

const (
	StateClosed State = iota
	StateWriting
	StateSearching
	StateShutdown
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateWriting:
		return "writing"
	case StateSearching:
		return "searching"
	case StateShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// Store is the persistent inverted index described in spec.md §4.5,
// backed by a single Bleve index on disk. At any moment the underlying
// Bleve handle is open for either writing or searching, never both —
// writerMu and searcherMu each guard the transition into their
// respective side, closing whichever side was previously open before
// opening the requested one, matching the one-mutex-per-lifecycle design
// spec.md §5 calls for. A third, finer mu guards the shared state/idx
// fields themselves so NumDocs/GetDocument can run without contending
// with a concurrent OpenWriter/OpenSearcher transition's I/O.
type Store struct {
	dir          string
	mapping      bleve.IndexMapping
	analyzerName string
	writerConfig map[string]interface{}

	writerMu   sync.Mutex
	searcherMu sync.Mutex

	mu    sync.Mutex
	idx   bleve.Index
	state State
	batch *bleve.Batch

	log *zap.Logger
}

// DefaultAnalyzer is the lexical analyzer used for free-text query
// tokenization (spec.md §4.6) when the facade's AnalyzerFactory is left
// at its zero value.
const DefaultAnalyzer = "standard"

// Open returns a Store bound to dir, initially closed. No disk I/O
// happens until OpenWriter or OpenSearcher is called. analyzerName
// selects the lexical analyzer AnalyzeText resolves for free-text query
// tokenization (spec.md §4.6); empty defaults to DefaultAnalyzer.
// writerConfig is an optional Bleve runtime-config map (spec.md §4.6's
// "optional writer-config factory") forwarded to the underlying
// key-value store whenever the writer or searcher opens the index; nil
// uses Bleve's own defaults.
func Open(dir string, analyzerName string, writerConfig map[string]interface{}, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	if analyzerName == "" {
		analyzerName = DefaultAnalyzer
	}
	return &Store{
		dir:          dir,
		mapping:      buildMapping(analyzerName),
		analyzerName: analyzerName,
		writerConfig: writerConfig,
		state:        StateClosed,
		log:          log,
	}
}

// State reports the store's current lifecycle stage.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// OpenWriter closes any open searcher and opens (creating if necessary)
// the index for writing.
func (s *Store) OpenWriter() error {
	s.writerMu.Lock()
	defer s.writerMu.Unlock()

	s.mu.Lock()
	if s.state == StateShutdown {
		s.mu.Unlock()
		return ErrShutdown
	}
	if s.state == StateWriting {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	if err := s.closeCurrent(); err != nil {
		return err
	}

	idx, err := s.openOrCreate()
	if err != nil {
		return fmt.Errorf("index: open writer: %w", err)
	}

	s.mu.Lock()
	s.idx = idx
	s.batch = idx.NewBatch()
	s.state = StateWriting
	s.mu.Unlock()
	return nil
}

// openOrCreate opens the index at s.dir, creating it with s.mapping if it
// does not yet exist. When s.writerConfig is set, both paths go through
// Bleve's *Using variants so the runtime-config map (e.g. a bolt "no_sync"
// override) actually reaches the underlying key-value store.
func (s *Store) openOrCreate() (bleve.Index, error) {
	if s.writerConfig == nil {
		idx, err := bleve.Open(s.dir)
		if err == bleve.ErrorIndexPathDoesNotExist {
			return bleve.New(s.dir, s.mapping)
		}
		return idx, err
	}
	idx, err := bleve.OpenUsing(s.dir, s.writerConfig)
	if err == bleve.ErrorIndexPathDoesNotExist {
		return bleve.NewUsing(s.dir, s.mapping, bleve.Config.DefaultIndexType, bleve.Config.DefaultKVStore, s.writerConfig)
	}
	return idx, err
}

// OpenSearcher closes any open writer (flushing its pending batch) and
// opens the index for searching. If the directory has never
// been initialized by a writer, it returns ErrNoIndexYet rather than
// creating an empty index, per spec.md §4.5's edge case.
func (s *Store) OpenSearcher() error {
	s.searcherMu.Lock()
	defer s.searcherMu.Unlock()

	s.mu.Lock()
	if s.state == StateShutdown {
		s.mu.Unlock()
		return ErrShutdown
	}
	if s.state == StateSearching {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	if err := s.closeCurrent(); err != nil {
		return err
	}

	if _, err := os.Stat(s.dir); os.IsNotExist(err) {
		return ErrNoIndexYet
	}

	var idx bleve.Index
	var err error
	if s.writerConfig == nil {
		idx, err = bleve.Open(s.dir)
	} else {
		idx, err = bleve.OpenUsing(s.dir, s.writerConfig)
	}
	if err == bleve.ErrorIndexPathDoesNotExist {
		return ErrNoIndexYet
	}
	if err != nil {
		return fmt.Errorf("index: open searcher: %w", err)
	}

	s.mu.Lock()
	s.idx = idx
	s.batch = nil
	s.state = StateSearching
	s.mu.Unlock()
	return nil
}

// closeCurrent flushes and closes whatever side is currently open,
// leaving the store in StateClosed. Callers hold the relevant
// writerMu/searcherMu already.
func (s *Store) closeCurrent() error {
	s.mu.Lock()
	idx := s.idx
	batch := s.batch
	state := s.state
	s.idx = nil
	s.batch = nil
	s.state = StateClosed
	s.mu.Unlock()

	if idx == nil {
		return nil
	}
	if state == StateWriting && batch != nil && batch.Size() > 0 {
		if err := idx.Batch(batch); err != nil {
			_ = idx.Close()
			return fmt.Errorf("index: flushing batch on close: %w", err)
		}
	}
	if err := idx.Close(); err != nil {
		return fmt.Errorf("index: closing: %w", err)
	}
	return nil
}

// Close closes whichever side is currently open, returning to
// StateClosed. A closed store can still be reopened via OpenWriter or
// OpenSearcher.
func (s *Store) Close() error {
	if s.State() == StateShutdown {
		return ErrShutdown
	}
	s.writerMu.Lock()
	defer s.writerMu.Unlock()
	s.searcherMu.Lock()
	defer s.searcherMu.Unlock()
	return s.closeCurrent()
}

// Shutdown closes the store permanently; every subsequent operation
// returns ErrShutdown. Shutdown is terminal — there is no reopening a
// shut-down store.
func (s *Store) Shutdown() error {
	s.writerMu.Lock()
	defer s.writerMu.Unlock()
	s.searcherMu.Lock()
	defer s.searcherMu.Unlock()

	err := s.closeCurrent()
	s.mu.Lock()
	s.state = StateShutdown
	s.mu.Unlock()
	return err
}

// AddDocument upserts a document under id. The store must be open for
// writing.
func (s *Store) AddDocument(id string, fields map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateShutdown {
		return ErrShutdown
	}
	if s.state != StateWriting {
		return ErrWrongState
	}
	s.batch.Index(id, fields)
	return nil
}

// DeleteByTerm deletes id from the index if present. The store must be
// open for writing. Deleting a document that does not exist is a no-op,
// matching the ingest path's delete-then-add upsert pattern.
func (s *Store) DeleteByTerm(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateShutdown {
		return ErrShutdown
	}
	if s.state != StateWriting {
		return ErrWrongState
	}
	s.batch.Delete(id)
	return nil
}

// Commit flushes any pending batched writes to disk. The store remains
// open for writing afterward; Commit is also performed implicitly by
// Close/OpenSearcher/Shutdown, so callers only need it to flush writes
// while keeping the writer open.
func (s *Store) Commit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateShutdown {
		return ErrShutdown
	}
	if s.state != StateWriting {
		return ErrWrongState
	}
	if s.batch.Size() == 0 {
		return nil
	}
	if err := s.idx.Batch(s.batch); err != nil {
		return fmt.Errorf("index: commit: %w", err)
	}
	s.batch = s.idx.NewBatch()
	return nil
}

// Search runs query against the open searcher, returning up to maxHits
// results ordered by descending score.
func (s *Store) Search(query bleve.Query, maxHits int) (*bleve.SearchResult, error) {
	s.mu.Lock()
	if s.state == StateShutdown {
		s.mu.Unlock()
		return nil, ErrShutdown
	}
	if s.state != StateSearching {
		s.mu.Unlock()
		return nil, ErrWrongState
	}
	idx := s.idx
	s.mu.Unlock()

	req := bleve.NewSearchRequestOptions(query, maxHits, 0, false)
	req.Fields = []string{"*"}
	return idx.Search(req)
}

// GetDocument fetches the stored fields of id, or (nil, nil) if absent.
func (s *Store) GetDocument(id string) (map[string]interface{}, error) {
	s.mu.Lock()
	if s.state == StateShutdown {
		s.mu.Unlock()
		return nil, ErrShutdown
	}
	if s.state != StateSearching {
		s.mu.Unlock()
		return nil, ErrWrongState
	}
	idx := s.idx
	s.mu.Unlock()

	doc, err := idx.Document(id)
	if err != nil {
		return nil, fmt.Errorf("index: get document: %w", err)
	}
	if doc == nil {
		return nil, nil
	}

	out := make(map[string]interface{})
	doc.VisitFields(func(f indexapi.Field) {
		if existing, ok := out[f.Name()]; ok {
			switch v := existing.(type) {
			case []string:
				out[f.Name()] = append(v, string(f.Value()))
			default:
				out[f.Name()] = []string{v.(string), string(f.Value())}
			}
			return
		}
		out[f.Name()] = string(f.Value())
	})
	return out, nil
}

// NumDocs reports the number of documents visible to the open searcher.
func (s *Store) NumDocs() (uint64, error) {
	s.mu.Lock()
	if s.state == StateShutdown {
		s.mu.Unlock()
		return 0, ErrShutdown
	}
	if s.state != StateSearching {
		s.mu.Unlock()
		return 0, ErrWrongState
	}
	idx := s.idx
	s.mu.Unlock()
	return idx.DocCount()
}

// AnalyzeText tokenizes text with the store's configured analyzer
// (spec.md §4.6's "analyzer factory (produces the lexical analyzer)"),
// returning the resulting term strings. search_free uses this to turn a
// free-text query into the terms it matches against every indexed
// field except fp, since every field in this mapping is itself indexed
// not-analyzed (spec.md §3's field contract) and would not tokenize a
// raw query string on its own.
func (s *Store) AnalyzeText(text string) ([]string, error) {
	analyzer := s.mapping.AnalyzerNamed(s.analyzerName)
	if analyzer == nil {
		return nil, fmt.Errorf("index: unknown analyzer %q", s.analyzerName)
	}
	tokens := analyzer.Analyze([]byte(text))
	terms := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		terms = append(terms, string(tok.Term))
	}
	return terms, nil
}

// Fields returns the set of indexed field names, used by the free-text
// multi-field query (spec.md §4.1) to discover which fields to search
// without hardcoding a schema.
func (s *Store) Fields() ([]string, error) {
	s.mu.Lock()
	if s.state == StateShutdown {
		s.mu.Unlock()
		return nil, ErrShutdown
	}
	if s.state != StateSearching {
		s.mu.Unlock()
		return nil, ErrWrongState
	}
	idx := s.idx
	s.mu.Unlock()
	return idx.Fields()
}
