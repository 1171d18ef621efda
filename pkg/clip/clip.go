// Package clip extracts the annotated table region from a deed image
// and writes a downscaled crop for the recognition engine.
package clip

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"os"

	_ "image/png"

	"golang.org/x/image/draw"

	"github.com/phisan/deedocr/pkg/region"
)

// DefaultScaleFactor divides both crop dimensions before encoding.
// Survey sheets are scanned at high resolution; half size keeps the
// table legible for recognition while shrinking the artifact.
const DefaultScaleFactor = 2

// jpegQuality matches the quality the annotation tool saved crops with.
const jpegQuality = 95

// ErrInvalidRegion reports a region that is empty once clamped to the
// image bounds.
var ErrInvalidRegion = errors.New("region empty after clamping to image bounds")

// Clip crops r (image-pixel coordinates) out of src, clamping it to the
// image bounds, and downscales the crop by scaleFactor using CatmullRom
// resampling. The result is never smaller than 1x1. A scaleFactor below
// 1 is treated as 1.
func Clip(src image.Image, r region.Rect, scaleFactor int) (image.Image, error) {
	if scaleFactor < 1 {
		scaleFactor = 1
	}
	r = r.Normalize()

	b := src.Bounds()
	x0 := clampInt(int(r.UL.X), b.Min.X, b.Max.X)
	y0 := clampInt(int(r.UL.Y), b.Min.Y, b.Max.Y)
	x1 := clampInt(int(r.LR.X), b.Min.X, b.Max.X)
	y1 := clampInt(int(r.LR.Y), b.Min.Y, b.Max.Y)
	if x1 <= x0 || y1 <= y0 {
		return nil, ErrInvalidRegion
	}
	crop := image.Rect(x0, y0, x1, y1)

	w := crop.Dx() / scaleFactor
	if w < 1 {
		w = 1
	}
	h := crop.Dy() / scaleFactor
	if h < 1 {
		h = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, crop, draw.Src, nil)
	return dst, nil
}

// ClipFile reads the source image, clips the region and writes the
// result as JPEG.
func ClipFile(srcPath, dstPath string, r region.Rect, scaleFactor int) error {
	f, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("failed to open source image: %w", err)
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("failed to decode source image %s: %w", srcPath, err)
	}

	clipped, err := Clip(src, r, scaleFactor)
	if err != nil {
		return err
	}

	out, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("failed to create clipped image: %w", err)
	}
	defer out.Close()

	if err := jpeg.Encode(out, clipped, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return fmt.Errorf("failed to encode clipped image: %w", err)
	}
	return nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
