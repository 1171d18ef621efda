// Package docai implements the table-recognition engine on Google
// Document AI. It sends clipped table images to a processor and
// converts the detected tables into the shared artifact format.
//
// Requirements:
//
// - Google Cloud project with the Document AI API enabled
// - A processor configured for OCR with table recognition
// - Authentication via the GOOGLE_APPLICATION_CREDENTIALS environment variable
package docai

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/api/option"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/phisan/deedocr/pkg/ocr"
)

// Config holds the Document AI processor coordinates.
type Config struct {
	ProjectID   string `yaml:"project_id"`
	Location    string `yaml:"location"`
	ProcessorID string `yaml:"processor_id"`
	// DebugDir, when set, receives the raw API response for every
	// processed image as JSON.
	DebugDir string `yaml:"debug_dir"`
}

// Engine is a Document AI backed recognition engine. It holds one
// client for the whole batch run and is safe for concurrent use.
type Engine struct {
	client *documentai.DocumentProcessorClient
	cfg    Config
	name   string // processor resource name
}

// New connects to the regional Document AI endpoint using credentials
// from the GOOGLE_APPLICATION_CREDENTIALS environment variable.
func New(ctx context.Context, cfg Config) (*Engine, error) {
	endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", cfg.Location)

	client, err := documentai.NewDocumentProcessorClient(
		ctx,
		option.WithEndpoint(endpoint),
		option.WithCredentialsFile(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Document AI client: %w", err)
	}

	name := fmt.Sprintf(
		"projects/%s/locations/%s/processors/%s",
		cfg.ProjectID, cfg.Location, cfg.ProcessorID,
	)
	return &Engine{client: client, cfg: cfg, name: name}, nil
}

// Name implements ocr.Engine.
func (e *Engine) Name() string { return "documentai" }

// Close shuts down the underlying client.
func (e *Engine) Close() error { return e.client.Close() }

// ExtractTables processes one clipped image and renders every table the
// processor detected as an artifact, in detection order.
func (e *Engine) ExtractTables(ctx context.Context, imagePath string) ([]ocr.Artifact, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read image %s: %w", imagePath, err)
	}

	req := &documentaipb.ProcessRequest{
		Name: e.name,
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  data,
				MimeType: mimeType(imagePath),
			},
		},
		SkipHumanReview: true,
	}

	resp, err := e.client.ProcessDocument(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to process document: %w", err)
	}
	doc := resp.Document

	if e.cfg.DebugDir != "" {
		e.dumpResponse(imagePath, doc)
	}

	var artifacts []ocr.Artifact
	for _, page := range doc.GetPages() {
		for _, table := range page.GetTables() {
			if art := ocr.RenderArtifact(tableRows(table, doc.GetText())); art != nil {
				artifacts = append(artifacts, art)
			}
		}
	}
	return artifacts, nil
}

// dumpResponse saves the raw API response as JSON for debugging. Dump
// failures are ignored; the recognition result has already been
// obtained.
func (e *Engine) dumpResponse(imagePath string, doc *documentaipb.Document) {
	jsonData, err := protojson.Marshal(doc)
	if err != nil {
		return
	}
	base := strings.TrimSuffix(filepath.Base(imagePath), filepath.Ext(imagePath))
	os.WriteFile(filepath.Join(e.cfg.DebugDir, base+"_docai.json"), jsonData, 0644)
}

// tableRows flattens a detected table into a cell grid, header rows
// first, in the order Document AI reports them.
func tableRows(table *documentaipb.Document_Page_Table, fullText string) [][]string {
	var rows [][]string
	for _, tr := range table.GetHeaderRows() {
		rows = append(rows, rowCells(tr, fullText))
	}
	for _, tr := range table.GetBodyRows() {
		rows = append(rows, rowCells(tr, fullText))
	}
	return rows
}

func rowCells(tr *documentaipb.Document_Page_Table_TableRow, fullText string) []string {
	var cells []string
	for _, cell := range tr.GetCells() {
		cells = append(cells, textFromLayout(cell.GetLayout(), fullText))
	}
	return cells
}

// textFromLayout extracts text from a layout's text anchor segments.
func textFromLayout(layout *documentaipb.Document_Page_Layout, fullText string) string {
	if layout == nil || layout.TextAnchor == nil {
		return ""
	}
	runes := []rune(fullText)
	total := len(runes)
	var b strings.Builder

	for _, seg := range layout.TextAnchor.TextSegments {
		start := int(seg.StartIndex)
		end := int(seg.EndIndex)
		if start < 0 {
			start = 0
		}
		if end > total {
			end = total
		}
		if start > end {
			start = end
		}
		b.WriteString(string(runes[start:end]))
	}
	return strings.TrimSpace(b.String())
}

func mimeType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".tif", ".tiff":
		return "image/tiff"
	default:
		return "image/jpeg"
	}
}
