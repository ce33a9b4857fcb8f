package index_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cx-luo/chemindex/index"
)

func TestOpenSearcherWithoutWriterYieldsNoIndexYet(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "never-created")
	s := index.Open(dir, "", nil, nil)

	err := s.OpenSearcher()
	require.ErrorIs(t, err, index.ErrNoIndexYet)
}

func TestWriteThenSearchRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "idx")
	s := index.Open(dir, "", nil, nil)

	require.NoError(t, s.OpenWriter())
	require.NoError(t, s.AddDocument("mol-1", map[string]interface{}{
		index.FieldPK:     "mol-1",
		index.FieldSMILES: "CCO",
		index.FieldName:   []string{"ethanol"},
		index.FieldFP:     []string{"2", "4", "9"},
	}))
	require.NoError(t, s.AddDocument("mol-2", map[string]interface{}{
		index.FieldPK:     "mol-2",
		index.FieldSMILES: "CCN",
		index.FieldName:   []string{"ethylamine"},
		index.FieldFP:     []string{"2", "7"},
	}))
	require.NoError(t, s.Commit())

	require.NoError(t, s.OpenSearcher())

	n, err := s.NumDocs()
	require.NoError(t, err)
	require.Equal(t, uint64(2), n)

	res, err := s.Search(index.TermQuery(index.FieldName, "ethanol"), 10)
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)
	require.Equal(t, "mol-1", res.Hits[0].ID)

	doc, err := s.GetDocument("mol-2")
	require.NoError(t, err)
	require.Equal(t, "CCN", doc[index.FieldSMILES])
}

func TestDeleteByTermRemovesDocument(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "idx")
	s := index.Open(dir, "", nil, nil)

	require.NoError(t, s.OpenWriter())
	require.NoError(t, s.AddDocument("a", map[string]interface{}{index.FieldPK: "a", index.FieldSMILES: "C"}))
	require.NoError(t, s.Commit())
	require.NoError(t, s.DeleteByTerm("a"))
	require.NoError(t, s.Commit())

	require.NoError(t, s.OpenSearcher())
	n, err := s.NumDocs()
	require.NoError(t, err)
	require.Equal(t, uint64(0), n)
}

func TestWriterSearcherTransitionsCloseOtherSide(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "idx")
	s := index.Open(dir, "", nil, nil)

	require.NoError(t, s.OpenWriter())
	require.NoError(t, s.AddDocument("a", map[string]interface{}{index.FieldPK: "a", index.FieldSMILES: "C"}))

	require.NoError(t, s.OpenSearcher())
	require.Equal(t, index.StateSearching, s.State())
	n, err := s.NumDocs()
	require.NoError(t, err)
	require.Equal(t, uint64(1), n, "opening the searcher must flush the pending batch first")

	require.NoError(t, s.OpenWriter())
	require.Equal(t, index.StateWriting, s.State())
}

func TestShutdownIsTerminal(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "idx")
	s := index.Open(dir, "", nil, nil)
	require.NoError(t, s.OpenWriter())
	require.NoError(t, s.Shutdown())

	require.ErrorIs(t, s.OpenWriter(), index.ErrShutdown)
	require.ErrorIs(t, s.OpenSearcher(), index.ErrShutdown)
	require.Equal(t, index.StateShutdown, s.State())
}

func TestFieldsDiscoversIndexedFieldNames(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "idx")
	s := index.Open(dir, "", nil, nil)

	require.NoError(t, s.OpenWriter())
	require.NoError(t, s.AddDocument("a", map[string]interface{}{
		index.FieldPK:     "a",
		index.FieldSMILES: "C",
		index.FieldName:   []string{"methane"},
		"cas_number":      "74-82-8",
	}))
	require.NoError(t, s.Commit())
	require.NoError(t, s.OpenSearcher())

	fields, err := s.Fields()
	require.NoError(t, err)
	require.Contains(t, fields, index.FieldSMILES)
	require.Contains(t, fields, "cas_number")
}

func TestAnalyzeTextUsesConfiguredAnalyzer(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "idx")
	s := index.Open(dir, "standard", nil, nil)

	terms, err := s.AnalyzeText("Ethanol, 74-82-8 mixtures")
	require.NoError(t, err)
	require.Equal(t, []string{"ethanol", "74", "82", "8", "mixtures"}, terms)
}

func TestAnalyzeTextWithKeywordAnalyzerDoesNotTokenize(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "idx")
	s := index.Open(dir, "keyword", nil, nil)

	terms, err := s.AnalyzeText("CCO mixture")
	require.NoError(t, err)
	require.Equal(t, []string{"CCO mixture"}, terms)
}

func TestAnalyzeTextRejectsUnknownAnalyzer(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "idx")
	s := index.Open(dir, "not-a-real-analyzer", nil, nil)

	_, err := s.AnalyzeText("x")
	require.Error(t, err)
}
