package plot_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/phisan/deedocr/pkg/deed"
	"github.com/phisan/deedocr/pkg/plot"
)

func TestRenderWritesPDF(t *testing.T) {
	vl := deed.VertexList{
		Closed: true,
		Vertices: []deed.Vertex{
			{Marker: "A", Northing: 711494.218, Easting: 810313.001},
			{Marker: "B", Northing: 711500.100, Easting: 810320.250},
			{Marker: "C", Northing: 711488.000, Easting: 810330.500},
		},
	}

	out := filepath.Join(t.TempDir(), "D1_plot.pdf")
	require.NoError(t, plot.NewPDF().Render("D1", vl, out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.True(t, len(data) > 0)
	require.Equal(t, "%PDF", string(data[:4]))
}

func TestRenderRejectsTooFewVertices(t *testing.T) {
	vl := deed.VertexList{
		Vertices: []deed.Vertex{{Marker: "A", Northing: 1, Easting: 2}},
	}
	err := plot.NewPDF().Render("D1", vl, filepath.Join(t.TempDir(), "x.pdf"))
	require.Error(t, err)
}
