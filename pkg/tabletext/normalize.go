package tabletext

import (
	"strconv"
	"strings"
)

// columnSpec maps cell positions in the extracted table onto fields.
// The empty name marks a column the survey table carries but the
// pipeline ignores.
var columnSpec = []string{"MARKER", "", "NORTHING", "EASTING"}

// confusionRules corrects the digit/letter ambiguities the recognition
// engine produces in this material. The rule order is fixed: O o I i l
// L, applied in a single left-to-right pass per cell. None of the
// replacement characters appear on the left side of a later rule, so
// the pass is stable.
var confusionRules = strings.NewReplacer(
	"O", "0",
	"o", "0",
	"I", "1",
	"i", "1",
	"l", "1",
	"L", "1",
)

// Row is one normalized survey-table row. Northing and Easting hold a
// fixed three-decimal rendering of the coordinate, or "" when the cell
// could not be parsed as a number.
type Row struct {
	Marker   string
	Northing string
	Easting  string
}

// Normalize cleans raw extracted cell grids into rows. Every cell is
// trimmed, non-breaking spaces collapsed and confusion-corrected; the
// coordinate columns are additionally reduced to digits and re-rendered
// with three decimals. Parse failures degrade the field to "" rather
// than erroring. Rows whose fields all end up empty are dropped; blank
// rows are routine extraction noise and are not reported.
func Normalize(raw [][]string) []Row {
	var rows []Row
	for _, cells := range raw {
		var row Row
		for idx, name := range columnSpec {
			if name == "" {
				continue
			}
			var cell string
			if idx < len(cells) {
				cell = cells[idx]
			}
			val := NormalizeCell(cell)
			switch name {
			case "MARKER":
				row.Marker = val
			case "NORTHING":
				row.Northing = NormalizeCoordinate(val)
			case "EASTING":
				row.Easting = NormalizeCoordinate(val)
			}
		}
		if row.Marker != "" || row.Northing != "" || row.Easting != "" {
			rows = append(rows, row)
		}
	}
	return rows
}

// NormalizeCell trims the cell, turns non-breaking spaces into plain
// ones and applies the confusion correction.
func NormalizeCell(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	s = strings.TrimSpace(s)
	return confusionRules.Replace(s)
}

// NormalizeCoordinate reduces a confusion-corrected cell to a numeric
// string with exactly three decimals. Every character outside [0-9.] is
// stripped; when more than one dot survives, the first one is the
// decimal point and the remaining digit groups are concatenated. A cell
// that still fails to parse yields "".
func NormalizeCoordinate(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == '.' || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()

	if strings.Count(cleaned, ".") > 1 {
		head, tail, _ := strings.Cut(cleaned, ".")
		cleaned = head + "." + strings.ReplaceAll(tail, ".", "")
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 3, 64)
}
