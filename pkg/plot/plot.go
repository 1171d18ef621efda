// Package plot renders a resolved vertex list as a labeled parcel
// polygon for human review. The pipeline only hands over the final,
// ordered vertices; any Renderer implementation can consume them.
package plot

import (
	"fmt"
	"os"

	"codeberg.org/go-pdf/fpdf"

	"github.com/phisan/deedocr/pkg/deed"
)

// Renderer draws the resolved, ordered vertex list of one document.
type Renderer interface {
	Render(docID string, vl deed.VertexList, outPath string) error
}

// Page layout constants, all in points on an A4 page.
const (
	pageSize   = 595.0 // A4 width; the plot area is square
	marginPt   = 60.0
	labelPtSz  = 9.0
	titlePtSz  = 14.0
	captionPt  = 10.0
	vertexDotR = 2.0
)

// PDF renders plots as single-page PDF files.
type PDF struct{}

// NewPDF creates the PDF plot renderer.
func NewPDF() *PDF { return &PDF{} }

// Render draws the polygon axis-equal with per-vertex labels, the
// closing edge back to the first vertex, and axis captions. Fewer than
// two vertices cannot form an outline and is an error the caller
// records against the document.
func (p *PDF) Render(docID string, vl deed.VertexList, outPath string) error {
	if len(vl.Vertices) < 2 {
		return fmt.Errorf("not enough vertices to plot: %d", len(vl.Vertices))
	}

	minN, maxN := vl.Vertices[0].Northing, vl.Vertices[0].Northing
	minE, maxE := vl.Vertices[0].Easting, vl.Vertices[0].Easting
	for _, v := range vl.Vertices[1:] {
		minN = min(minN, v.Northing)
		maxN = max(maxN, v.Northing)
		minE = min(minE, v.Easting)
		maxE = max(maxE, v.Easting)
	}

	// Axis-equal: one scale for both axes, fitted to the larger extent.
	extent := max(maxN-minN, maxE-minE)
	if extent <= 0 {
		extent = 1
	}
	area := pageSize - 2*marginPt
	scale := area / extent

	// Easting grows right, northing grows up; PDF y grows down.
	toPage := func(v deed.Vertex) (float64, float64) {
		x := marginPt + (v.Easting-minE)*scale
		y := marginPt + area - (v.Northing-minN)*scale
		return x, y
	}

	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", titlePtSz)
	pdf.Text(marginPt, marginPt/2, docID)

	// Outline, including the closing edge back to the first vertex.
	pdf.SetDrawColor(30, 30, 200)
	pdf.SetLineWidth(1)
	prevX, prevY := toPage(vl.Vertices[0])
	for _, v := range append(vl.Vertices[1:], vl.Vertices[0]) {
		x, y := toPage(v)
		pdf.Line(prevX, prevY, x, y)
		prevX, prevY = x, y
	}

	// Vertex dots and marker labels.
	pdf.SetFont("Helvetica", "", labelPtSz)
	pdf.SetFillColor(200, 30, 30)
	for _, v := range vl.Vertices {
		x, y := toPage(v)
		pdf.Circle(x, y, vertexDotR, "F")
		pdf.Text(x+4, y-2, v.Marker)
	}

	pdf.SetFont("Helvetica", "", captionPt)
	pdf.Text(marginPt, pageSize-marginPt/4, "EASTING (m)")
	pdf.TransformBegin()
	pdf.TransformRotate(90, marginPt/3, pageSize-marginPt)
	pdf.Text(marginPt/3, pageSize-marginPt, "NORTHING (m)")
	pdf.TransformEnd()

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create plot file: %w", err)
	}
	defer out.Close()
	if err := pdf.Output(out); err != nil {
		return fmt.Errorf("failed to render plot: %w", err)
	}
	return nil
}
