package ocr

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/phisan/deedocr/pkg/tabletext"
)

func TestRowsFromText(t *testing.T) {
	text := "s24 stone 711494.218 810313.001\n" +
		"s25 711500.100 810320.250\n" +
		"short line\n" + // two fields, skipped
		"\n" +
		"s26 old stone post 711488.000 810330.500\n"

	rows := rowsFromText(text)
	require.Len(t, rows, 3)
	require.Equal(t, []string{"s24", "stone", "711494.218", "810313.001"}, rows[0])
	require.Equal(t, []string{"s25", "", "711500.100", "810320.250"}, rows[1])
	require.Equal(t, []string{"s26", "old stone post", "711488.000", "810330.500"}, rows[2])
}

func TestRenderArtifactEmpty(t *testing.T) {
	require.Nil(t, RenderArtifact(nil))
	require.Nil(t, RenderArtifact([][]string{}))
}

func TestRenderArtifactRoundTripsThroughParser(t *testing.T) {
	rows := [][]string{
		{"s24", "", "711494.218", "810313.001"},
		{"a<b", "x & y", "1.000", "2.000"}, // markup characters must survive escaping
	}

	parsed, err := tabletext.ParseArtifact(RenderArtifact(rows))
	require.NoError(t, err)
	require.Equal(t, rows, parsed)
}
