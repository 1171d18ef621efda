package deed

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// Header values stamped into every canonical document. The CRS is a
// fixed EPSG code (UTM zone 47N); no coordinate transformation happens
// anywhere in the pipeline.
const (
	CRS  = "32647"
	Unit = "meter"
)

// Row is one serialized vertex: 1-based index, generated label, the
// original marker text and the projected coordinates.
type Row struct {
	Index    int
	Label    string
	Marker   string
	Northing float64
	Easting  float64
}

// Document is the canonical structured form written to, and read back
// from, the deed TOML file. The override document a reviewer hand-edits
// has the same shape.
type Document struct {
	CRS    string
	Unit   string
	Closed bool
	Rows   []Row
}

// NewDocument builds the canonical document for a resolved vertex list,
// assigning labels over the final, closure-resolved order.
func NewDocument(vl VertexList) Document {
	doc := Document{CRS: CRS, Unit: Unit, Closed: vl.Closed}
	for i, v := range vl.Vertices {
		doc.Rows = append(doc.Rows, Row{
			Index:    i + 1,
			Label:    Label(i + 1),
			Marker:   v.Marker,
			Northing: v.Northing,
			Easting:  v.Easting,
		})
	}
	return doc
}

// Vertices returns the ordered vertex list the document rows describe.
func (d Document) Vertices() VertexList {
	vl := VertexList{Closed: d.Closed}
	for _, r := range d.Rows {
		vl.Vertices = append(vl.Vertices, Vertex{Marker: r.Marker, Northing: r.Northing, Easting: r.Easting})
	}
	return vl
}

// escape makes a string safe for embedding in a TOML basic string.
func escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

// Encode renders the document in the fixed [Deed] layout: header,
// closed flag, then one positional tuple per vertex with coordinates at
// three decimals.
func (d Document) Encode() []byte {
	var b strings.Builder
	b.WriteString("[Deed]\n")
	fmt.Fprintf(&b, "crs = \"%s\"\n", escape(d.CRS))
	fmt.Fprintf(&b, "unit = \"%s\"\n", escape(d.Unit))
	fmt.Fprintf(&b, "polygon_closed = %t\n", d.Closed)
	b.WriteString("marker = [\n")
	for _, r := range d.Rows {
		fmt.Fprintf(&b, "  [%d, \"%s\", \"%s\", %.3f, %.3f],\n",
			r.Index, escape(r.Label), escape(r.Marker), r.Northing, r.Easting)
	}
	b.WriteString("]\n")
	return []byte(b.String())
}

// WriteFile writes the encoded document to path, replacing any previous
// canonical output.
func WriteFile(path string, d Document) error {
	if err := os.WriteFile(path, d.Encode(), 0644); err != nil {
		return fmt.Errorf("failed to write deed document: %w", err)
	}
	return nil
}

// rawSection mirrors the subset of the TOML layout the reader needs.
type rawSection struct {
	CRS           string          `toml:"crs"`
	Unit          string          `toml:"unit"`
	PolygonClosed bool            `toml:"polygon_closed"`
	Marker        [][]interface{} `toml:"marker"`
}

type rawFile struct {
	rawSection
	Deed rawSection `toml:"Deed"`
}

// ReadDocument parses a canonical or hand-edited override deed file.
// Two layout conventions are accepted: the marker array at the document
// root, or nested under a [Deed] section. Rows with fewer than five
// positional elements are ignored outright; rows whose index or
// coordinates cannot be coerced to numbers are dropped and tallied in
// the returned count, so a column shift in a hand-edited file surfaces
// as a non-zero drop count instead of disappearing.
func ReadDocument(data []byte) (Document, int, error) {
	var raw rawFile
	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		return Document{}, 0, fmt.Errorf("failed to parse deed document: %w", err)
	}

	section := raw.rawSection
	if md.IsDefined("Deed") {
		section = raw.Deed
	}

	doc := Document{CRS: section.CRS, Unit: section.Unit, Closed: section.PolygonClosed}
	dropped := 0
	for _, tuple := range section.Marker {
		if len(tuple) < 5 {
			continue
		}
		if _, ok := coerceFloat(tuple[0]); !ok {
			dropped++
			continue
		}
		northing, okN := coerceFloat(tuple[3])
		easting, okE := coerceFloat(tuple[4])
		if !okN || !okE {
			dropped++
			continue
		}
		doc.Rows = append(doc.Rows, Row{
			Index:    len(doc.Rows) + 1,
			Label:    Label(len(doc.Rows) + 1),
			Marker:   coerceString(tuple[2]),
			Northing: northing,
			Easting:  easting,
		})
	}
	return doc, dropped, nil
}

// ReadFile loads and parses the deed document at path.
func ReadFile(path string) (Document, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, 0, fmt.Errorf("failed to read deed document: %w", err)
	}
	return ReadDocument(data)
}

// coerceFloat accepts the numeric shapes a TOML row element can take,
// plus numeric strings, which hand-edited files often contain.
func coerceFloat(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func coerceString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
