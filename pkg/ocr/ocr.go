// Package ocr defines the table-recognition engine contract the
// pipeline drives. Engines are expensive to initialize, so one engine
// is constructed per batch run and shared, read-only, by every worker.
package ocr

import (
	"bytes"
	"context"
	"html"
)

// Artifact is one recognized table rendered as an HTML fragment with a
// single <table> element. A document can yield several artifacts; their
// order is the engine's detection order and is preserved on disk.
type Artifact []byte

// Engine recognizes tables in a clipped deed image. Implementations
// must be safe for concurrent use from pipeline workers.
type Engine interface {
	// Name identifies the engine in logs and batch summaries.
	Name() string
	// ExtractTables recognizes the image at imagePath and returns one
	// artifact per detected table, in detection order.
	ExtractTables(ctx context.Context, imagePath string) ([]Artifact, error)
}

// RenderArtifact writes a cell grid as the HTML-table artifact format
// every engine produces, so fresh recognition and artifact reparse go
// through a single parser. An empty grid yields nil.
func RenderArtifact(rows [][]string) Artifact {
	if len(rows) == 0 {
		return nil
	}
	var b bytes.Buffer
	b.WriteString("<html><body><table>\n")
	for _, cells := range rows {
		b.WriteString("<tr>")
		for _, cell := range cells {
			b.WriteString("<td>")
			b.WriteString(html.EscapeString(cell))
			b.WriteString("</td>")
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("</table></body></html>\n")
	return b.Bytes()
}
