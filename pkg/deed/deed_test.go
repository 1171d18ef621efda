package deed_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/phisan/deedocr/pkg/deed"
	"github.com/phisan/deedocr/pkg/tabletext"
)

func TestLabel(t *testing.T) {
	require.Equal(t, "A", deed.Label(1))
	require.Equal(t, "B", deed.Label(2))
	require.Equal(t, "Z", deed.Label(26))
	require.Equal(t, "P27", deed.Label(27))
	require.Equal(t, "P100", deed.Label(100))
}

func TestBuildDropsRowsMissingCoordinates(t *testing.T) {
	rows := []tabletext.Row{
		{Marker: "s24", Northing: "100.123", Easting: "200.456"},
		{Marker: "noise", Northing: "", Easting: "200.000"},
		{Marker: "noise", Northing: "100.000", Easting: ""},
		{Marker: "s25", Northing: "100.789", Easting: "200.111"},
	}

	vl := deed.Build(rows)
	require.Len(t, vl.Vertices, 2)
	require.False(t, vl.Closed)
	require.Equal(t, "s24", vl.Vertices[0].Marker)
	require.Equal(t, "s25", vl.Vertices[1].Marker)
}

func TestBuildDetectsClosure(t *testing.T) {
	rows := []tabletext.Row{
		{Marker: "A", Northing: "100.123", Easting: "200.456"},
		{Marker: "B", Northing: "100.789", Easting: "200.111"},
		{Marker: "C", Northing: "100.500", Easting: "200.900"},
		{Marker: "A", Northing: "100.123", Easting: "200.456"},
	}

	vl := deed.Build(rows)
	require.True(t, vl.Closed)
	require.Len(t, vl.Vertices, 3, "trailing duplicate must be removed")
	require.Equal(t, "A", vl.Vertices[0].Marker)
	require.Equal(t, "C", vl.Vertices[2].Marker)
}

func TestBuildClosureRequiresExactMarkerMatch(t *testing.T) {
	rows := []tabletext.Row{
		{Marker: "A", Northing: "100.123", Easting: "200.456"},
		{Marker: "B", Northing: "100.789", Easting: "200.111"},
		{Marker: "a", Northing: "100.123", Easting: "200.456"},
	}

	vl := deed.Build(rows)
	require.False(t, vl.Closed)
	require.Len(t, vl.Vertices, 3)
}

func TestBuildClosureToleranceIsPerAxis(t *testing.T) {
	// 0.0005 off on each axis: inside the 1e-3 per-axis tolerance even
	// though the combined distance would exceed it under a stricter rule.
	rows := []tabletext.Row{
		{Marker: "A", Northing: "100.0000", Easting: "200.0000"},
		{Marker: "B", Northing: "101.0000", Easting: "201.0000"},
		{Marker: "A", Northing: "100.0005", Easting: "200.0005"},
	}
	vl := deed.Build(rows)
	require.True(t, vl.Closed)
	require.Len(t, vl.Vertices, 2)

	// Exactly at the tolerance is not inside it.
	rows[2].Northing = "100.001"
	vl = deed.Build(rows)
	require.False(t, vl.Closed)
}

func TestBuildTwoVertexMinimumForClosure(t *testing.T) {
	rows := []tabletext.Row{
		{Marker: "A", Northing: "100.123", Easting: "200.456"},
	}
	vl := deed.Build(rows)
	require.False(t, vl.Closed)
	require.Len(t, vl.Vertices, 1)
}
