package clip_test

import (
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/phisan/deedocr/pkg/clip"
	"github.com/phisan/deedocr/pkg/region"
)

func grayImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.Gray{Y: uint8((x + y) % 251)})
		}
	}
	return img
}

func rect(x0, y0, x1, y1 float64) region.Rect {
	return region.Rect{
		UL: region.Point{X: x0, Y: y0},
		LR: region.Point{X: x1, Y: y1},
	}
}

func TestClipFullImageHalvesDimensions(t *testing.T) {
	src := grayImage(200, 120)

	out, err := clip.Clip(src, rect(0, 0, 200, 120), 2)
	require.NoError(t, err)
	require.Equal(t, 100, out.Bounds().Dx())
	require.Equal(t, 60, out.Bounds().Dy())
}

func TestClipClampsToImageBounds(t *testing.T) {
	src := grayImage(50, 50)

	// Rectangle hangs past the right and bottom edges.
	out, err := clip.Clip(src, rect(40, 40, 400, 400), 1)
	require.NoError(t, err)
	require.Equal(t, 10, out.Bounds().Dx())
	require.Equal(t, 10, out.Bounds().Dy())
}

func TestClipRejectsDegenerateRegion(t *testing.T) {
	src := grayImage(50, 50)

	// Entirely outside the image: clamps to a zero-width slice.
	_, err := clip.Clip(src, rect(60, 10, 90, 40), 1)
	require.ErrorIs(t, err, clip.ErrInvalidRegion)

	// Zero-height drag.
	_, err = clip.Clip(src, rect(10, 20, 30, 20), 1)
	require.ErrorIs(t, err, clip.ErrInvalidRegion)
}

func TestClipNeverShrinksBelowOnePixel(t *testing.T) {
	src := grayImage(50, 50)

	out, err := clip.Clip(src, rect(10, 10, 11, 11), 2)
	require.NoError(t, err)
	require.Equal(t, 1, out.Bounds().Dx())
	require.Equal(t, 1, out.Bounds().Dy())
}

func writeSourceImage(t *testing.T, path string, w, h int) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, jpeg.Encode(f, grayImage(w, h), nil))
}

func TestBatchPolicies(t *testing.T) {
	dir := t.TempDir()

	// D1: annotated, no artifact yet.
	writeSourceImage(t, filepath.Join(dir, "D1_rv25j.jpg"), 200, 200)
	require.NoError(t, region.Save(filepath.Join(dir, "D1_rect.json"), "D1_rv25j.jpg", rect(10, 10, 110, 60)))

	// D2: not annotated.
	writeSourceImage(t, filepath.Join(dir, "D2_rv25j.jpg"), 200, 200)

	// D3: malformed annotation.
	writeSourceImage(t, filepath.Join(dir, "D3_rv25j.jpg"), 200, 200)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "D3_rect.json"), []byte("{"), 0644))

	targets := []clip.Target{}
	for _, id := range []string{"D1", "D2", "D3"} {
		targets = append(targets, clip.Target{
			DocID:      id,
			SourcePath: filepath.Join(dir, id+"_rv25j.jpg"),
			RegionPath: filepath.Join(dir, id+"_rect.json"),
			OutputPath: filepath.Join(dir, id+"_table.jpg"),
		})
	}

	sum, failures := clip.Batch(targets, 2, clip.CreateMissing)
	require.Equal(t, 1, sum.Created)
	require.Equal(t, 2, sum.SkippedNoRegion)
	require.Equal(t, 0, sum.SkippedExisting)
	require.Len(t, failures, 1, "only the malformed region is an error")
	require.Equal(t, "D3", failures[0].DocID)

	// Second run without force skips the existing artifact.
	sum, _ = clip.Batch(targets, 2, clip.CreateMissing)
	require.Equal(t, 0, sum.Created)
	require.Equal(t, 1, sum.SkippedExisting)

	// Force mode recreates it.
	sum, _ = clip.Batch(targets, 2, clip.ForceOverwrite)
	require.Equal(t, 1, sum.Created)
	require.Equal(t, 0, sum.SkippedExisting)

	// The artifact has the downscaled dimensions.
	f, err := os.Open(filepath.Join(dir, "D1_table.jpg"))
	require.NoError(t, err)
	defer f.Close()
	cfg, err := jpeg.DecodeConfig(f)
	require.NoError(t, err)
	require.Equal(t, 50, cfg.Width)
	require.Equal(t, 25, cfg.Height)
}
