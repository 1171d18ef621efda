package tabletext_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/phisan/deedocr/pkg/tabletext"
)

func TestNormalizeCoordinate(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"0121.50", "121.500"},       // confusion-corrected cell
		{"711494.218", "711494.218"}, // already clean
		{"810,313.001", "810313.001"}, // thousands separator stripped
		{" 123 ", "123.000"},         // integer gains decimals
		{"12.34.56", "12.346"},       // first dot wins, remaining digits concatenated
		{"", ""},                     // empty stays empty
		{"N/A", ""},                  // no digits at all
		{"abc", ""},                  // parse failure degrades to empty
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, tabletext.NormalizeCoordinate(tc.in), "input %q", tc.in)
	}
}

func TestNormalizeCellConfusionRules(t *testing.T) {
	require.Equal(t, "0121.50", tabletext.NormalizeCell("O12I.5o"))
	require.Equal(t, "1111", tabletext.NormalizeCell("IilL"))
	require.Equal(t, "s24", tabletext.NormalizeCell(" s24 "))
}

func TestNormalizeCellThenCoordinate(t *testing.T) {
	// The documented end-to-end cell behavior for a coordinate column.
	require.Equal(t, "121.500", tabletext.NormalizeCoordinate(tabletext.NormalizeCell("O12I.5o")))
}

func TestNormalizeRows(t *testing.T) {
	raw := [][]string{
		{"MARKER", "TYPE", "N", "E"}, // header row: coords parse to empty, kept via marker
		{"s24", "", "711494.2I8", "8I0313.00l"},
		{"", "", "", ""},            // blank row dropped silently
		{"   ", " ", " ", " "}, // whitespace-only row dropped too
		{"s25"},                     // short row padded with empty cells
	}

	rows := tabletext.Normalize(raw)
	require.Len(t, rows, 3)

	require.Equal(t, "MARKER", rows[0].Marker)
	require.Equal(t, "", rows[0].Northing)

	require.Equal(t, "s24", rows[1].Marker)
	require.Equal(t, "711494.218", rows[1].Northing)
	require.Equal(t, "810313.001", rows[1].Easting)

	require.Equal(t, "s25", rows[2].Marker)
	require.Equal(t, "", rows[2].Northing)
	require.Equal(t, "", rows[2].Easting)
}
