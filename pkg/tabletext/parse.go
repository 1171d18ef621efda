// Package tabletext parses table-extraction artifacts from the
// recognition engine and normalizes their noisy cell text into rows the
// vertex builder can consume.
package tabletext

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/text/encoding/charmap"
)

// ErrNoTable reports an artifact without a <table> element. Extraction
// occasionally emits prose-only fragments; callers usually treat this
// as an empty artifact rather than a failure.
var ErrNoTable = errors.New("no table element in extraction artifact")

// ParseArtifact extracts the cell grid from one extraction artifact, an
// HTML fragment holding a single <table>. Rows are returned in document
// order with one string per cell. Artifacts that are not valid UTF-8
// are decoded as Latin-1 before parsing.
func ParseArtifact(data []byte) ([][]string, error) {
	if !utf8.Valid(data) {
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode artifact: %w", err)
		}
		data = decoded
	}

	doc, err := html.Parse(strings.NewReader(string(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse artifact: %w", err)
	}

	table := findTable(doc)
	if table == nil {
		return nil, ErrNoTable
	}

	var rows [][]string
	var collectRows func(*html.Node)
	collectRows = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			if cells := parseRow(n); len(cells) > 0 {
				rows = append(rows, cells)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collectRows(c)
		}
	}
	collectRows(table)

	return rows, nil
}

// findTable walks the node tree for the first table element.
func findTable(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "table" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findTable(c); found != nil {
			return found
		}
	}
	return nil
}

// parseRow collects the text of every td/th cell in a tr element.
func parseRow(tr *html.Node) []string {
	var cells []string
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
			cells = append(cells, textContent(c))
		}
	}
	return cells
}

// textContent concatenates all text nodes under n.
func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
