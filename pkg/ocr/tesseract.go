package ocr

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

// Tesseract runs the local Tesseract engine through gosseract. The
// underlying client is created once and reused for every document in
// the batch; model loading is the dominant startup cost.
type Tesseract struct {
	// gosseract clients hold per-image state, so calls are serialized.
	mu     sync.Mutex
	client *gosseract.Client
}

// NewTesseract creates the engine. Language hints ("tha", "eng") select
// the trained data; with none given the client default ("eng") applies.
// Close the engine when the batch is done.
func NewTesseract(languages ...string) (*Tesseract, error) {
	client := gosseract.NewClient()
	if len(languages) > 0 {
		if err := client.SetLanguage(languages...); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to set languages: %w", err)
		}
	}
	return &Tesseract{client: client}, nil
}

// Name implements Engine.
func (t *Tesseract) Name() string { return "tesseract" }

// Close releases the Tesseract client.
func (t *Tesseract) Close() error { return t.client.Close() }

// ExtractTables recognizes the clipped table image and renders the
// text back onto the fixed four-column survey layout as one artifact.
func (t *Tesseract) ExtractTables(ctx context.Context, imagePath string) ([]Artifact, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.client.SetImage(imagePath); err != nil {
		return nil, fmt.Errorf("failed to set image %s: %w", imagePath, err)
	}
	text, err := t.client.Text()
	if err != nil {
		return nil, fmt.Errorf("recognition failed for %s: %w", imagePath, err)
	}

	art := RenderArtifact(rowsFromText(text))
	if art == nil {
		return nil, nil
	}
	return []Artifact{art}, nil
}

// rowsFromText rebuilds table rows from plain recognized text. The grid
// is lost, so each line is split on whitespace and mapped back onto the
// four-column layout: first field is the marker, the last two are the
// coordinates, and anything in between lands in the ignored column.
func rowsFromText(text string) [][]string {
	var rows [][]string
	for _, line := range strings.Split(text, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		marker := fields[0]
		northing := fields[len(fields)-2]
		easting := fields[len(fields)-1]
		middle := strings.Join(fields[1:len(fields)-2], " ")
		rows = append(rows, []string{marker, middle, northing, easting})
	}
	return rows
}
