// Package pipeline drives the per-document deed processing sequence:
// region fetch, clip, table recognition, normalization, vertex build,
// canonical serialization, override resolution and plot handoff.
package pipeline

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/phisan/deedocr/pkg/clip"
)

// Artifact suffixes, all relative to the document prefix. Every file a
// document owns sits next to its source scan.
const (
	SourceSuffix   = "_rv25j.jpg"  // original deed scan
	regionSuffix   = "_rect.json"  // table annotation
	tableSuffix    = "_table.jpg"  // clipped, downscaled table
	artifactFormat = "_tbl%02d.md" // extraction artifacts, discovery-ordered
	deedSuffix     = "_MAPL1.toml" // canonical OCR-derived document
	overrideSuffix = "_MAPL1x.toml"
	plotSuffix     = "_plot.pdf"
)

// Document names every artifact path for one discovered deed sheet.
// Paths are keyed by the document id (the scan filename prefix), so
// documents never share files.
type Document struct {
	ID  string
	Dir string
}

func (d Document) SourcePath() string   { return filepath.Join(d.Dir, d.ID+SourceSuffix) }
func (d Document) RegionPath() string   { return filepath.Join(d.Dir, d.ID+regionSuffix) }
func (d Document) TablePath() string    { return filepath.Join(d.Dir, d.ID+tableSuffix) }
func (d Document) DeedPath() string     { return filepath.Join(d.Dir, d.ID+deedSuffix) }
func (d Document) OverridePath() string { return filepath.Join(d.Dir, d.ID+overrideSuffix) }
func (d Document) PlotPath() string     { return filepath.Join(d.Dir, d.ID+plotSuffix) }

// ArtifactPath names the i-th (0-based) extraction artifact.
func (d Document) ArtifactPath(i int) string {
	return filepath.Join(d.Dir, d.ID+fmt.Sprintf(artifactFormat, i))
}

// artifactPattern globs every extraction artifact of the document.
func (d Document) artifactPattern() string {
	return filepath.Join(d.Dir, d.ID+"_tbl*.md")
}

// Discover walks root recursively for deed scans and returns their
// documents sorted by path, the order the batch processes them in.
func Discover(root string) ([]Document, error) {
	var docs []Document
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := entry.Name()
		if entry.Type().IsRegular() && strings.HasSuffix(name, SourceSuffix) {
			docs = append(docs, Document{
				ID:  strings.TrimSuffix(name, SourceSuffix),
				Dir: filepath.Dir(path),
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].SourcePath() < docs[j].SourcePath()
	})
	return docs, nil
}

// ClipTargets turns discovered documents into clip batch targets.
func ClipTargets(docs []Document) []clip.Target {
	targets := make([]clip.Target, 0, len(docs))
	for _, d := range docs {
		targets = append(targets, clip.Target{
			DocID:      d.ID,
			SourcePath: d.SourcePath(),
			RegionPath: d.RegionPath(),
			OutputPath: d.TablePath(),
		})
	}
	return targets
}
