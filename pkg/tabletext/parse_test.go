package tabletext_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/phisan/deedocr/pkg/tabletext"
)

func TestParseArtifact(t *testing.T) {
	artifact := []byte(`<html><body>
<table>
  <thead><tr><th>MARKER</th><th></th><th>NORTHING</th><th>EASTING</th></tr></thead>
  <tbody>
    <tr><td>s24</td><td>stone</td><td>711494.218</td><td>810313.001</td></tr>
    <tr><td><b>s25</b></td><td></td><td>711500.100</td><td>810320.250</td></tr>
  </tbody>
</table>
</body></html>`)

	rows, err := tabletext.ParseArtifact(artifact)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, []string{"MARKER", "", "NORTHING", "EASTING"}, rows[0])
	require.Equal(t, []string{"s24", "stone", "711494.218", "810313.001"}, rows[1])
	// Nested markup inside a cell flattens to its text.
	require.Equal(t, []string{"s25", "", "711500.100", "810320.250"}, rows[2])
}

func TestParseArtifactWithoutTable(t *testing.T) {
	_, err := tabletext.ParseArtifact([]byte("<html><body><p>no table here</p></body></html>"))
	require.ErrorIs(t, err, tabletext.ErrNoTable)
}

func TestParseArtifactLatin1Fallback(t *testing.T) {
	// 0xE9 is "é" in Latin-1 and invalid as a standalone UTF-8 byte.
	artifact := []byte("<table><tr><td>caf\xe9</td></tr></table>")

	rows, err := tabletext.ParseArtifact(artifact)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "café", rows[0][0])
}
