package resource_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cx-luo/chemindex/resource"
)

type fakeObj struct {
	mu       sync.Mutex
	released int
	err      error
}

func (f *fakeObj) Release() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.released++
	return f.err
}

func (f *fakeObj) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.released
}

func TestMarkAndCleanupReleasesOnce(t *testing.T) {
	tr := resource.New(nil)
	obj := &fakeObj{}

	tr.Mark(obj, 1, false)
	tr.Mark(obj, 1, false) // duplicate registration is a no-op
	tr.Cleanup(1)

	assert.Equal(t, 1, obj.count())

	// wave is gone; a second cleanup must not double-release.
	tr.Cleanup(1)
	assert.Equal(t, 1, obj.count())
}

func TestMarkMoveFromOtherWave(t *testing.T) {
	tr := resource.New(nil)
	obj := &fakeObj{}

	tr.Mark(obj, 1, false)
	tr.Mark(obj, 2, true)

	tr.Cleanup(1)
	assert.Equal(t, 0, obj.count(), "object should have moved out of wave 1")

	tr.Cleanup(2)
	assert.Equal(t, 1, obj.count())
}

func TestCleanupAll(t *testing.T) {
	tr := resource.New(nil)
	a, b := &fakeObj{}, &fakeObj{}
	tr.Mark(a, tr.FreshWaveID(), false)
	tr.Mark(b, tr.FreshWaveID(), false)

	tr.CleanupAll()

	assert.Equal(t, 1, a.count())
	assert.Equal(t, 1, b.count())
}

func TestReleaseFailureDoesNotAbortSweep(t *testing.T) {
	tr := resource.New(nil)
	bad := &fakeObj{err: errors.New("boom")}
	good := &fakeObj{}

	wave := tr.FreshWaveID()
	tr.Mark(bad, wave, false)
	tr.Mark(good, wave, false)

	require.NotPanics(t, func() { tr.Cleanup(wave) })

	assert.Equal(t, 1, bad.count())
	assert.Equal(t, 1, good.count())
}

func TestFreshWaveIDIsMonotonicAndUnique(t *testing.T) {
	tr := resource.New(nil)
	seen := make(map[int]bool)
	for i := 0; i < 100; i++ {
		id := tr.FreshWaveID()
		assert.False(t, seen[id], "wave id %d reused", id)
		seen[id] = true
		assert.Greater(t, id, 0)
	}
}

func TestQuarantineAndCleanupDefersRelease(t *testing.T) {
	tr := resource.New(nil)
	tr.SetQuarantineDelay(20 * time.Millisecond)
	obj := &fakeObj{}
	tr.Mark(obj, tr.FreshWaveID(), false)

	tr.QuarantineAndCleanup()
	assert.Equal(t, 0, obj.count(), "release must be deferred, not immediate")

	require.Eventually(t, func() bool {
		return obj.count() == 1
	}, time.Second, 5*time.Millisecond)
}
