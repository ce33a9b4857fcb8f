package sdf_test

import (
	"bytes"
	"compress/gzip"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cx-luo/chemindex/sdf"
)

const twoRecords = `mol1
  -ISIS-  11010112122D

  2  1  0  0  0  0  0  0  0  0999 V2000
    0.0000    0.0000    0.0000 C   0  0  0  0  0  0  0  0  0  0  0  0
    1.0000    0.0000    0.0000 C   0  0  0  0  0  0  0  0  0  0  0  0
  1  2  1  0  0  0  0
M  END
> <pk>
A1

> <name>
ethanol
alt-name

$$$$
mol2
  -ISIS-  11010112122D

  1  0  0  0  0  0  0  0  0  0999 V2000
    0.0000    0.0000    0.0000 C   0  0  0  0  0  0  0  0  0  0  0  0
M  END
> <pk>
A2
$$$$
`

func TestParserReadsTwoRecords(t *testing.T) {
	p, err := sdf.New(strings.NewReader(twoRecords), "test.sdf", 1)
	require.NoError(t, err)

	r1, err := p.Next()
	require.NoError(t, err)
	pk, ok := r1.Get("pk")
	require.True(t, ok)
	require.Equal(t, "A1", pk)
	require.Equal(t, "ethanol\nalt-name", r1.Properties["name"])
	require.Equal(t, "test.sdf", r1.DatasetName)
	require.Equal(t, 1, r1.RecordNumber)
	require.True(t, strings.Contains(r1.Molblock, "M  END"))

	r2, err := p.Next()
	require.NoError(t, err)
	pk2, _ := r2.Get("pk")
	require.Equal(t, "A2", pk2)
	require.Equal(t, 2, r2.RecordNumber)

	_, err = p.Next()
	require.ErrorIs(t, err, io.EOF)
}

func TestParserMissingMEndTreatsRegionAsMolblock(t *testing.T) {
	input := "junk line one\njunk line two\n$$$$\n"
	p, err := sdf.New(strings.NewReader(input), "test.sdf", 1)
	require.NoError(t, err)

	r, err := p.Next()
	require.NoError(t, err)
	require.Empty(t, r.Properties)
	require.Contains(t, r.Molblock, "junk line one")
}

func TestParserSkipsHeaderWithoutAngleBracket(t *testing.T) {
	input := "M  END\n> missing-bracket\nvalue\n\n> <pk>\nB1\n$$$$\n"
	p, err := sdf.New(strings.NewReader(input), "test.sdf", 1)
	require.NoError(t, err)

	r, err := p.Next()
	require.NoError(t, err)
	_, ok := r.Properties["missing-bracket"]
	require.False(t, ok)
	pk, ok := r.Get("pk")
	require.True(t, ok)
	require.Equal(t, "B1", pk)
}

func TestParserGzipDetectionBySuffix(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte(twoRecords))
	require.NoError(t, err)
	require.NoError(t, gz.Close())

	p, err := sdf.New(&buf, "compound.sdf.gz", 1)
	require.NoError(t, err)

	r, err := p.Next()
	require.NoError(t, err)
	pk, _ := r.Get("pk")
	require.Equal(t, "A1", pk)
}

func TestParserEmptyStreamReturnsEOFImmediately(t *testing.T) {
	p, err := sdf.New(strings.NewReader(""), "empty.sdf", 1)
	require.NoError(t, err)
	_, err = p.Next()
	require.ErrorIs(t, err, io.EOF)
}
