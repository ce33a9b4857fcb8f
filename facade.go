package chemindex

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cx-luo/chemindex/core"
	"github.com/cx-luo/chemindex/fingerprint"
	"github.com/cx-luo/chemindex/index"
	"github.com/cx-luo/chemindex/resource"
)

// DefaultConsecutiveErrorLimit is the default ingest abort threshold
// (spec.md §6 "ingest.consecutive_error_limit").
const DefaultConsecutiveErrorLimit = 100

// DefaultCandidateCapMax bounds the substructure candidate-stage screen
// regardless of max_hits (spec.md §6 "substructure.candidate_cap").
const DefaultCandidateCapMax = 100000

// DefaultCandidateCapMultiplier is the factor applied to max_hits to
// compute the candidate-stage cap before clamping to
// DefaultCandidateCapMax.
const DefaultCandidateCapMultiplier = 10

// AnalyzerFactory produces the name of the lexical analyzer search_free
// uses to tokenize free-text queries (spec.md §4.6's "an analyzer
// factory (produces the lexical analyzer)"). The name must resolve via
// Bleve's analyzer registry; "standard" and "keyword" are both built in
// without any extra wiring.
type AnalyzerFactory func() string

// WriterConfigFactory optionally produces a Bleve runtime-config map
// (spec.md §4.6's "optional writer-config factory"), forwarded verbatim
// to the underlying key-value store whenever the index's writer or
// searcher opens it — e.g. a bolt "no_sync"/"read_only" override. A nil
// factory, or one returning nil, leaves the store on Bleve's defaults.
type WriterConfigFactory func() map[string]interface{}

// Options configures a Facade. Every field has a documented default
// applied by New; the zero value of Options picks default fingerprint
// settings and is already valid for Dir.
type Options struct {
	// Dir is the index storage directory (spec.md §6).
	Dir string

	// StructureSettings and QuerySettings configure the fingerprint
	// engine (spec.md §4.4). Both default to fingerprint.StructureSettings
	// and fingerprint.QuerySettings when zero-valued.
	StructureSettings fingerprint.Settings
	QuerySettings     fingerprint.Settings

	// AnalyzerFactory selects search_free's query-tokenization analyzer.
	// Defaults to a factory returning index.DefaultAnalyzer ("standard").
	AnalyzerFactory AnalyzerFactory

	// WriterConfigFactory optionally supplies the index's runtime
	// key-value store config. Left nil, the store uses Bleve's defaults.
	WriterConfigFactory WriterConfigFactory

	// ConsecutiveErrorLimit is the number of consecutive per-record
	// ingest failures tolerated before the ingest aborts fatally.
	ConsecutiveErrorLimit int

	// QuarantineDelay is the Resource Tracker's deferred-release delay.
	QuarantineDelay time.Duration

	// CandidateCapMultiplier and CandidateCapMax bound the substructure
	// search's candidate-stage fingerprint screen.
	CandidateCapMultiplier int
	CandidateCapMax        int

	Logger *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.StructureSettings.Kind == "" {
		o.StructureSettings = fingerprint.StructureSettings()
	}
	if o.QuerySettings.Kind == "" {
		o.QuerySettings = fingerprint.QuerySettings()
	}
	if o.AnalyzerFactory == nil {
		o.AnalyzerFactory = func() string { return index.DefaultAnalyzer }
	}
	if o.ConsecutiveErrorLimit <= 0 {
		o.ConsecutiveErrorLimit = DefaultConsecutiveErrorLimit
	}
	if o.QuarantineDelay <= 0 {
		o.QuarantineDelay = resource.DefaultQuarantineDelay
	}
	if o.CandidateCapMultiplier <= 0 {
		o.CandidateCapMultiplier = DefaultCandidateCapMultiplier
	}
	if o.CandidateCapMax <= 0 {
		o.CandidateCapMax = DefaultCandidateCapMax
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// Facade is the chemical index's single entry point (spec.md §4.6).
type Facade struct {
	opts    Options
	store   *index.Store
	engine  *fingerprint.Engine
	tracker *resource.Tracker
	log     *zap.Logger

	ingestMu sync.Mutex

	listenersMu sync.Mutex
	listeners   []registeredListener

	shutdownMu sync.Mutex
	shutdown   bool
}

// New constructs a Facade. Construction fails if the native toolkit
// cannot be activated or the fingerprint settings are inconsistent
// (spec.md §4.6: "Construction fails if the native toolkit cannot be
// initialized").
func New(opts Options) (*Facade, error) {
	opts = opts.withDefaults()

	if err := core.Activate(); err != nil {
		return nil, fmt.Errorf("chemindex: activating native toolkit: %w", err)
	}

	engine, err := fingerprint.New(opts.StructureSettings, opts.QuerySettings)
	if err != nil {
		return nil, fmt.Errorf("chemindex: building fingerprint engine: %w", err)
	}

	tracker := resource.New(opts.Logger)
	tracker.SetQuarantineDelay(opts.QuarantineDelay)

	var writerConfig map[string]interface{}
	if opts.WriterConfigFactory != nil {
		writerConfig = opts.WriterConfigFactory()
	}

	return &Facade{
		opts:    opts,
		store:   index.Open(opts.Dir, opts.AnalyzerFactory(), writerConfig, opts.Logger),
		engine:  engine,
		tracker: tracker,
		log:     opts.Logger,
	}, nil
}

// candidateCap computes the substructure search's candidate-stage cap
// for the given max_hits (spec.md §6).
func (f *Facade) candidateCap(maxHits int) int {
	cap := maxHits * f.opts.CandidateCapMultiplier
	if cap > f.opts.CandidateCapMax || cap <= 0 {
		cap = f.opts.CandidateCapMax
	}
	return cap
}

func (f *Facade) isShutdown() bool {
	f.shutdownMu.Lock()
	defer f.shutdownMu.Unlock()
	return f.shutdown
}

// Shutdown closes the facade permanently. Every subsequent operation
// returns ErrShutdown. Shutdown is idempotent.
func (f *Facade) Shutdown() error {
	f.shutdownMu.Lock()
	if f.shutdown {
		f.shutdownMu.Unlock()
		return nil
	}
	f.shutdown = true
	f.shutdownMu.Unlock()

	f.tracker.CleanupAll()
	return f.store.Shutdown()
}

// ensureSearcher transitions the store into the searching state,
// translating a never-initialized index into (nil, nil) rather than an
// error — a facade that has never ingested anything has no hits to
// offer, which every search method treats as "found nothing".
func (f *Facade) ensureSearcher() (*index.Store, error) {
	if f.isShutdown() {
		return nil, ErrShutdown
	}
	err := f.store.OpenSearcher()
	if err == index.ErrNoIndexYet {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return f.store, nil
}
