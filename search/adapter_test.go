package search_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cx-luo/chemindex/collector"
	"github.com/cx-luo/chemindex/index"
	"github.com/cx-luo/chemindex/search"
)

func openFixture(t *testing.T) *index.Store {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "idx")
	s := index.Open(dir, "", nil, nil)
	require.NoError(t, s.OpenWriter())
	require.NoError(t, s.AddDocument("mol-1", map[string]interface{}{
		index.FieldPK:     "CHEMBL1",
		index.FieldSMILES: "CCO",
	}))
	require.NoError(t, s.AddDocument("mol-2", map[string]interface{}{
		index.FieldSMILES: "CCN", // no pk field on purpose
	}))
	require.NoError(t, s.Commit())
	require.NoError(t, s.OpenSearcher())
	return s
}

func TestPrimaryKeysOrdersByCollectorScoreAndSkipsMissingPK(t *testing.T) {
	s := openFixture(t)

	c := collector.New(5)
	c.Collect("mol-2", 9.0) // best score, but has no pk -> skipped
	c.Collect("mol-1", 1.0)

	pks, err := search.PrimaryKeys(s, c)
	require.NoError(t, err)
	require.Equal(t, []string{"CHEMBL1"}, pks)
}

func TestPrimaryKeysWithNilCollectorReturnsEmptyNotNil(t *testing.T) {
	s := openFixture(t)
	pks, err := search.PrimaryKeys(s, nil)
	require.NoError(t, err)
	require.NotNil(t, pks)
	require.Empty(t, pks)
}

func TestPrimaryKeysWithEmptyCollectorReturnsEmptyNotNil(t *testing.T) {
	s := openFixture(t)
	pks, err := search.PrimaryKeys(s, collector.New(3))
	require.NoError(t, err)
	require.NotNil(t, pks)
	require.Empty(t, pks)
}

func TestFromSearchResultSkipsMissingPK(t *testing.T) {
	s := openFixture(t)
	pks, err := search.FromSearchResult(s, []string{"mol-2", "mol-1"})
	require.NoError(t, err)
	require.Equal(t, []string{"CHEMBL1"}, pks)
}
