package fingerprint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cx-luo/chemindex/fingerprint"
)

func TestBitVectorSetAndTest(t *testing.T) {
	bv := fingerprint.NewBitVector(64)
	bv.Set(3)
	bv.Set(63)

	assert.True(t, bv.Test(3))
	assert.True(t, bv.Test(63))
	assert.False(t, bv.Test(4))
	assert.Equal(t, 2, bv.Count())
}

func TestBitVectorOutOfRangeIgnored(t *testing.T) {
	bv := fingerprint.NewBitVector(8)
	bv.Set(-1)
	bv.Set(100)
	assert.Equal(t, 0, bv.Count())
	assert.False(t, bv.Test(100))
}

func TestBitVectorBitsRoundTrip(t *testing.T) {
	positions := []int{0, 5, 64, 127, 200}
	bv := fingerprint.FromBitList(512, positions)
	assert.ElementsMatch(t, positions, bv.Bits())
}

func TestBitVectorSupersetOf(t *testing.T) {
	structureFP := fingerprint.FromBitList(512, []int{1, 2, 3, 4, 5})
	queryFP := fingerprint.FromBitList(512, []int{2, 4})
	nonSubsetFP := fingerprint.FromBitList(512, []int{2, 4, 999 % 512})

	assert.True(t, structureFP.SupersetOf(queryFP), "structure fp must contain all query fp bits")
	assert.True(t, structureFP.SupersetOf(fingerprint.NewBitVector(512)), "every fp is a superset of the empty fp")
	assert.False(t, structureFP.SupersetOf(nonSubsetFP), "a bit outside the structure fp must fail the superset test")
}

func TestBitVectorSupersetOfWidthMismatch(t *testing.T) {
	a := fingerprint.NewBitVector(512)
	b := fingerprint.NewBitVector(256)
	assert.False(t, a.SupersetOf(b))
}
