// deedclip is a command-line tool for the annotation half of the deed
// pipeline: it stores table-region rectangles and batch-clips the
// annotated regions into *_table.jpg artifacts.
//
// The interactive rectangle drawing happens in an external annotation
// tool; deedclip covers the scripted cases: writing a known rectangle
// for a document and (re)clipping a whole folder.
//
// Usage:
//
// Clip every annotated document that has no clipped artifact yet:
//
//	deedclip -root ./deeds
//
// Re-clip everything, overwriting existing artifacts:
//
//	deedclip -root ./deeds -force
//
// Store a rectangle (image-pixel coordinates) for one document:
//
//	deedclip -root ./deeds -write-rect D1 -rect 120,35,980,410
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/phisan/deedocr/pkg/clip"
	"github.com/phisan/deedocr/pkg/pipeline"
	"github.com/phisan/deedocr/pkg/region"
)

// parseRect reads "ulx,uly,lrx,lry". The corners may be given in any
// drag direction; normalization orders them.
func parseRect(s string) (region.Rect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return region.Rect{}, fmt.Errorf("want 4 comma-separated coordinates, got %d", len(parts))
	}
	vals := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return region.Rect{}, fmt.Errorf("bad coordinate %q: %w", p, err)
		}
		vals[i] = v
	}
	r := region.Rect{
		UL: region.Point{X: vals[0], Y: vals[1]},
		LR: region.Point{X: vals[2], Y: vals[3]},
	}
	return r.Normalize(), nil
}

func main() {
	root := flag.String("root", "", "Folder containing *_rv25j.jpg deed scans (required)")
	force := flag.Bool("force", false, "Overwrite existing *_table.jpg artifacts")
	scaleFactor := flag.Int("scale", clip.DefaultScaleFactor, "Downscale factor for clipped regions")
	writeRect := flag.String("write-rect", "", "Document id to store a rectangle for (requires -rect)")
	rectSpec := flag.String("rect", "", "Rectangle as ulx,uly,lrx,lry in image-pixel coordinates")
	flag.Parse()

	if *root == "" {
		fmt.Fprintln(os.Stderr, "Error: -root flag is required")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if *writeRect != "" {
		if *rectSpec == "" {
			fmt.Fprintln(os.Stderr, "Error: -write-rect requires -rect")
			os.Exit(1)
		}
		rect, err := parseRect(*rectSpec)
		if err != nil {
			log.Fatalf("Invalid -rect: %v", err)
		}
		doc := pipeline.Document{ID: *writeRect, Dir: *root}
		if _, err := os.Stat(doc.SourcePath()); err != nil {
			log.Fatalf("No source scan for %s: %v", *writeRect, err)
		}
		if err := region.Save(doc.RegionPath(), *writeRect+pipeline.SourceSuffix, rect); err != nil {
			log.Fatalf("Failed to save rectangle: %v", err)
		}
		fmt.Println("Rectangle saved to:", doc.RegionPath())
		return
	}

	docs, err := pipeline.Discover(*root)
	if err != nil {
		log.Fatalf("Failed to scan %s: %v", *root, err)
	}
	fmt.Printf("Found %d deed documents\n", len(docs))

	policy := clip.CreateMissing
	if *force {
		policy = clip.ForceOverwrite
	}

	sum, failures := clip.Batch(pipeline.ClipTargets(docs), *scaleFactor, policy)
	for _, f := range failures {
		fmt.Printf("Failed [%s]: %v\n", f.DocID, f.Err)
	}

	fmt.Printf("Created %d clipped artifacts\n", sum.Created)
	fmt.Printf("Skipped (no valid region): %d\n", sum.SkippedNoRegion)
	if *force {
		fmt.Println("Force mode: existing artifacts were overwritten")
	} else {
		fmt.Printf("Skipped (existing artifact): %d\n", sum.SkippedExisting)
	}
	if sum.Failed > 0 {
		os.Exit(1)
	}
}
