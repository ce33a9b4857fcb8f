package collector_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cx-luo/chemindex/collector"
)

func TestSizeReflectsCapacityNotInsertions(t *testing.T) {
	c := collector.New(5)
	assert.Equal(t, 5, c.Size())
	c.Collect("a", 1.0)
	assert.Equal(t, 5, c.Size(), "sentinel pre-population must keep size == capacity")
}

func TestCollectKeepsTopScores(t *testing.T) {
	c := collector.New(3)
	c.Collect("a", 1.0)
	c.Collect("b", 5.0)
	c.Collect("c", 3.0)
	c.Collect("d", 0.5) // worse than everything already held, discarded

	results := c.Results()
	if assert.Len(t, results, 3) {
		assert.Equal(t, "b", results[0].DocID)
		assert.Equal(t, "c", results[1].DocID)
		assert.Equal(t, "a", results[2].DocID)
	}
}

func TestCollectReplacesWorstWhenFull(t *testing.T) {
	c := collector.New(2)
	c.Collect("a", 1.0)
	c.Collect("b", 2.0)
	c.Collect("c", 3.0) // beats "a" (the current worst), replaces it

	results := c.Results()
	if assert.Len(t, results, 2) {
		assert.Equal(t, "c", results[0].DocID)
		assert.Equal(t, "b", results[1].DocID)
	}
}

func TestTieBreakPrefersLowerDocID(t *testing.T) {
	c := collector.New(2)
	c.Collect("z", 1.0)
	c.Collect("a", 1.0)
	c.Collect("m", 1.0) // tied score; "z" is the current worst (higher id), gets replaced

	results := c.Results()
	if assert.Len(t, results, 2) {
		assert.Equal(t, "a", results[0].DocID)
		assert.Equal(t, "m", results[1].DocID)
	}
}

func TestZeroCapacityDiscardsEverything(t *testing.T) {
	c := collector.New(0)
	c.Collect("a", 100.0)
	assert.Equal(t, 0, c.Size())
	assert.Empty(t, c.Results())
}

func TestResultsDrainsSentinelsWhenUnderfilled(t *testing.T) {
	c := collector.New(5)
	c.Collect("a", 1.0)
	c.Collect("b", 2.0)

	results := c.Results()
	if assert.Len(t, results, 2) {
		assert.Equal(t, "b", results[0].DocID)
		assert.Equal(t, "a", results[1].DocID)
	}
}
