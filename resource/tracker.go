// Package resource provides deterministic cleanup of native-backed
// objects via wave-scoped registration and quarantine, matching spec.md
// §4.2. It replaces the teacher's reflective "call a Close-like method"
// pattern with a capability: objects are tracked as Releasable values, no
// introspection required.
package resource

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Releasable is any native-backed object the tracker can dispose of.
// core.Molecule satisfies this directly.
type Releasable interface {
	Release() error
}

// DefaultQuarantineDelay is the delay QuarantineAndCleanup uses when the
// caller does not override it (spec.md §6: cleanup.quarantine_delay_ms).
const DefaultQuarantineDelay = 60 * time.Second

// Tracker is the Cleanup Ledger: a mapping from wave id to the ordered
// collection of objects registered for it.
type Tracker struct {
	mu      sync.Mutex
	waves   map[int][]Releasable
	log     *zap.Logger
	delay   time.Duration
	timerMu sync.Mutex
	timers  []*time.Timer
}

// New creates an empty tracker. A nil logger is replaced with a no-op
// logger, mirroring the teacher's habit of defaulting optional knobs
// rather than requiring every caller to supply them.
func New(log *zap.Logger) *Tracker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Tracker{
		waves: make(map[int][]Releasable),
		log:   log,
		delay: DefaultQuarantineDelay,
	}
}

// SetQuarantineDelay overrides the delay used by QuarantineAndCleanup.
func (t *Tracker) SetQuarantineDelay(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.delay = d
}

// waveCounter backs FreshWaveID and is shared by every Tracker.
var waveCounter int64

// FreshWaveID returns a process-unique, monotonically increasing positive
// wave id.
func (t *Tracker) FreshWaveID() int {
	return int(atomic.AddInt64(&waveCounter, 1))
}

// Mark registers obj under wave. If moveFromOtherWave is set, obj is
// first removed from every other wave it may be tracked under.
// Duplicate registration under the same wave is a no-op.
func (t *Tracker) Mark(obj Releasable, wave int, moveFromOtherWave bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if moveFromOtherWave {
		for w, objs := range t.waves {
			if w == wave {
				continue
			}
			t.waves[w] = removeObj(objs, obj)
		}
	}

	objs := t.waves[wave]
	for _, o := range objs {
		if o == obj {
			return
		}
	}
	t.waves[wave] = append(objs, obj)
}

func removeObj(objs []Releasable, target Releasable) []Releasable {
	out := objs[:0]
	for _, o := range objs {
		if o != target {
			out = append(out, o)
		}
	}
	return out
}

// Cleanup releases every object tracked for wave and removes the wave.
// Objects are removed from the ledger before release is invoked, so a
// panic or error from one object's Release cannot cause a double-release.
func (t *Tracker) Cleanup(wave int) {
	t.mu.Lock()
	objs := t.waves[wave]
	delete(t.waves, wave)
	t.mu.Unlock()

	t.releaseAll(objs)
}

// CleanupAll runs Cleanup for every known wave.
func (t *Tracker) CleanupAll() {
	t.mu.Lock()
	waves := make([]int, 0, len(t.waves))
	for w := range t.waves {
		waves = append(waves, w)
	}
	t.mu.Unlock()

	for _, w := range waves {
		t.Cleanup(w)
	}
}

// QuarantineAndCleanup snapshots the entire ledger, clears it, and
// schedules a deferred CleanupAll-equivalent sweep of the snapshot after
// delay (SetQuarantineDelay, default DefaultQuarantineDelay). It exists
// for objects that might still be referenced by an in-flight operation at
// the moment the caller wants to start tearing down.
func (t *Tracker) QuarantineAndCleanup() {
	t.mu.Lock()
	snapshot := t.waves
	t.waves = make(map[int][]Releasable)
	delay := t.delay
	t.mu.Unlock()

	timer := time.AfterFunc(delay, func() {
		for _, objs := range snapshot {
			t.releaseAll(objs)
		}
	})

	t.timerMu.Lock()
	t.timers = append(t.timers, timer)
	t.timerMu.Unlock()
}

func (t *Tracker) releaseAll(objs []Releasable) {
	for _, obj := range objs {
		if obj == nil {
			continue
		}
		if err := t.safeRelease(obj); err != nil {
			t.log.Warn("resource release failed", zap.Error(err))
		}
	}
}

func (t *Tracker) safeRelease(obj Releasable) (err error) {
	defer func() {
		if r := recover(); r != nil {
			t.log.Error("resource release panicked", zap.Any("recover", r))
		}
	}()
	return obj.Release()
}
