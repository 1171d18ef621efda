// Package region persists the rectangular table annotation drawn on a
// scanned deed sheet. Coordinates are in full-image pixel space with the
// origin in the upper-left corner.
package region

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrNotPresent reports that no region file exists for a document.
var ErrNotPresent = errors.New("region not present")

// FormatError reports a region file that exists but cannot be decoded.
// It is recorded against the owning document; it never aborts a batch.
type FormatError struct {
	Path string
	Err  error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("malformed region file %s: %v", e.Path, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// Point is a position in image-pixel space.
type Point struct {
	X float64
	Y float64
}

// Rect is an annotated rectangle. The annotation surface hands over the
// raw drag endpoints; Normalize orders them so UL is the componentwise
// minimum and LR the maximum.
type Rect struct {
	UL Point
	LR Point
}

// Normalize returns the rectangle with its corners reordered so that
// UL.X < LR.X and UL.Y < LR.Y hold for any non-degenerate drag.
func (r Rect) Normalize() Rect {
	if r.UL.X > r.LR.X {
		r.UL.X, r.LR.X = r.LR.X, r.UL.X
	}
	if r.UL.Y > r.LR.Y {
		r.UL.Y, r.LR.Y = r.LR.Y, r.UL.Y
	}
	return r
}

// Width returns the horizontal extent of the normalized rectangle.
func (r Rect) Width() float64 { return r.LR.X - r.UL.X }

// Height returns the vertical extent of the normalized rectangle.
func (r Rect) Height() float64 { return r.LR.Y - r.UL.Y }

// regionFile is the on-disk JSON layout written by the annotation tool.
type regionFile struct {
	Image string       `json:"image"`
	Rect  *rectPayload `json:"rect"`
}

type rectPayload struct {
	UL []float64 `json:"ul"`
	LR []float64 `json:"lr"`
}

// Save writes the rectangle for a document to path, overwriting any
// previous annotation. The image name is stored alongside the corners
// so the file stays self-describing when moved between folders.
func Save(path, imageName string, r Rect) error {
	r = r.Normalize()
	payload := regionFile{
		Image: imageName,
		Rect: &rectPayload{
			UL: []float64{r.UL.X, r.UL.Y},
			LR: []float64{r.LR.X, r.LR.Y},
		},
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode region: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write region file: %w", err)
	}
	return nil
}

// Load reads the rectangle stored at path. It returns ErrNotPresent
// when the file does not exist and a FormatError when the file exists
// but is missing or garbling its rectangle data.
func Load(path string) (Rect, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Rect{}, ErrNotPresent
		}
		return Rect{}, fmt.Errorf("failed to read region file %s: %w", path, err)
	}

	var payload regionFile
	if err := json.Unmarshal(data, &payload); err != nil {
		return Rect{}, &FormatError{Path: path, Err: err}
	}
	if payload.Rect == nil {
		return Rect{}, &FormatError{Path: path, Err: errors.New("missing rect object")}
	}
	if len(payload.Rect.UL) < 2 || len(payload.Rect.LR) < 2 {
		return Rect{}, &FormatError{Path: path, Err: errors.New("rect corners need two coordinates each")}
	}

	r := Rect{
		UL: Point{X: payload.Rect.UL[0], Y: payload.Rect.UL[1]},
		LR: Point{X: payload.Rect.LR[0], Y: payload.Rect.LR[1]},
	}
	return r.Normalize(), nil
}
