package clip

import (
	"errors"
	"os"

	"github.com/phisan/deedocr/pkg/region"
)

// Policy selects how a batch treats documents that already have a
// clipped artifact on disk.
type Policy int

const (
	// CreateMissing clips only documents without an existing artifact.
	CreateMissing Policy = iota
	// ForceOverwrite re-clips every document.
	ForceOverwrite
)

// Target names the per-document paths one batch entry touches.
type Target struct {
	DocID      string
	SourcePath string // original deed scan
	RegionPath string // annotation file next to it
	OutputPath string // clipped table artifact to produce
}

// Failure records one target the batch could not clip, with the reason.
type Failure struct {
	DocID string
	Err   error
}

// Summary aggregates the outcome of one batch run.
type Summary struct {
	Created         int
	SkippedNoRegion int
	SkippedExisting int
	Failed          int
}

// Batch clips every target under the given policy. A failing target is
// tallied and reported; it never stops the run. Targets without a
// region annotation are counted as skipped, since annotation simply has
// not happened yet, but a present-but-malformed region file is reported
// as a failure on top of the skip.
func Batch(targets []Target, scaleFactor int, policy Policy) (Summary, []Failure) {
	var sum Summary
	var failures []Failure

	for _, tgt := range targets {
		if policy == CreateMissing {
			if _, err := os.Stat(tgt.OutputPath); err == nil {
				sum.SkippedExisting++
				continue
			}
		}

		rect, err := region.Load(tgt.RegionPath)
		if err != nil {
			sum.SkippedNoRegion++
			var fe *region.FormatError
			if errors.As(err, &fe) {
				failures = append(failures, Failure{DocID: tgt.DocID, Err: err})
			}
			continue
		}

		if err := ClipFile(tgt.SourcePath, tgt.OutputPath, rect, scaleFactor); err != nil {
			sum.Failed++
			failures = append(failures, Failure{DocID: tgt.DocID, Err: err})
			continue
		}
		sum.Created++
	}

	return sum, failures
}
