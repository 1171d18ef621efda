// Package deed turns normalized survey-table rows into an ordered list
// of boundary-marker vertices and handles the canonical deed document
// they are serialized into.
package deed

import (
	"fmt"
	"math"
	"strconv"

	"github.com/phisan/deedocr/pkg/tabletext"
)

// closureTolerance is the per-axis coordinate slack, in meters, under
// which the first and last vertices count as the same monument.
const closureTolerance = 1e-3

// Vertex is one boundary-marker position in the projected CRS.
type Vertex struct {
	Marker   string  // original marker text from the survey table
	Northing float64 // meters
	Easting  float64 // meters
}

// VertexList is an ordered run of boundary vertices. When Closed is
// true the trailing duplicate of the first vertex has been removed, so
// the list holds unique vertices only.
type VertexList struct {
	Vertices []Vertex
	Closed   bool
}

// Label returns the plot label for a 1-based vertex index: "A" through
// "Z" for 1..26, then "P27", "P28", and so on.
func Label(index int) string {
	if index >= 1 && index <= 26 {
		return string(rune('A' + index - 1))
	}
	return fmt.Sprintf("P%d", index)
}

// Build assembles the vertex list from normalized table rows. Rows
// missing either coordinate are discarded. When the first and last
// vertices coincide within the closure tolerance on both axes and carry
// exactly the same marker text, the polygon is closed: the flag is set
// and the trailing duplicate dropped. Labels are assigned afterwards,
// over the final list.
func Build(rows []tabletext.Row) VertexList {
	var vl VertexList
	for _, r := range rows {
		if r.Northing == "" || r.Easting == "" {
			continue
		}
		n, errN := strconv.ParseFloat(r.Northing, 64)
		e, errE := strconv.ParseFloat(r.Easting, 64)
		if errN != nil || errE != nil {
			continue
		}
		vl.Vertices = append(vl.Vertices, Vertex{Marker: r.Marker, Northing: n, Easting: e})
	}

	if len(vl.Vertices) >= 2 {
		first := vl.Vertices[0]
		last := vl.Vertices[len(vl.Vertices)-1]
		if math.Abs(first.Northing-last.Northing) < closureTolerance &&
			math.Abs(first.Easting-last.Easting) < closureTolerance &&
			first.Marker == last.Marker {
			vl.Closed = true
			vl.Vertices = vl.Vertices[:len(vl.Vertices)-1]
		}
	}

	return vl
}
