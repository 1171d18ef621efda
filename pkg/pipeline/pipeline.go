package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/phisan/deedocr/pkg/clip"
	"github.com/phisan/deedocr/pkg/deed"
	"github.com/phisan/deedocr/pkg/ocr"
	"github.com/phisan/deedocr/pkg/plot"
	"github.com/phisan/deedocr/pkg/region"
	"github.com/phisan/deedocr/pkg/tabletext"
)

// ErrNoVertices reports that neither recognition nor an override
// produced any vertices, so there is nothing to plot.
var ErrNoVertices = errors.New("no vertices available")

// Stage identifies a step of the per-document sequence. Failed outcomes
// carry the stage that produced the error.
type Stage string

const (
	StageSource    Stage = "source"
	StageRegion    Stage = "region"
	StageClip      Stage = "clip"
	StageExtract   Stage = "extract"
	StageSerialize Stage = "serialize"
	StageRender    Stage = "render"
)

// Outcome records what happened to one document. Err is nil on
// success; otherwise Stage names where processing stopped. Warnings
// hold recoverable oddities (an unreadable override, an artifact
// without a table) that did not stop the document.
type Outcome struct {
	DocID      string
	Stage      Stage
	Err        error
	Warnings   []string
	Vertices   int
	Closed     bool
	Overridden bool
	// DroppedOverrideRows counts override rows the reader had to drop;
	// non-zero usually means a hand-edit shifted the columns.
	DroppedOverrideRows int
	Plotted             bool
}

// Options configure one batch run.
type Options struct {
	// SkipOCR reparses previously saved extraction artifacts instead of
	// calling the recognition engine.
	SkipOCR bool
	// ForceClip re-clips even when the table artifact already exists.
	ForceClip bool
	// ScaleFactor for clipping; 0 means clip.DefaultScaleFactor.
	ScaleFactor int
	// Workers bounds concurrent documents; values below 2 run
	// sequentially. Documents touch disjoint paths, so the only shared
	// state is the engine, which workers never mutate.
	Workers int
	// Logger receives per-document progress lines; nil discards them.
	Logger io.Writer
}

// Runner executes the batch. The engine must be fully constructed
// before Run is called and is shared read-only across workers; it is
// the dominant startup cost and is never re-initialized per document.
type Runner struct {
	Engine   ocr.Engine    // may be nil when Opts.SkipOCR is set
	Renderer plot.Renderer // nil skips plot rendering
	Opts     Options
}

// Summary aggregates a batch run.
type Summary struct {
	Documents     int
	Plotted       int
	Closed        int
	Overridden    int
	Failed        int
	FailedByStage map[Stage]int
}

// Run processes every document under root. A missing root is the only
// fatal condition; anything that goes wrong with one document is
// recorded in its outcome and the batch moves on. Outcomes are returned
// in discovery order regardless of worker count.
func (r *Runner) Run(ctx context.Context, root string) (Summary, []Outcome, error) {
	if _, err := os.Stat(root); err != nil {
		return Summary{}, nil, fmt.Errorf("root input location: %w", err)
	}
	docs, err := Discover(root)
	if err != nil {
		return Summary{}, nil, err
	}
	r.logf("found %d deed documents under %s", len(docs), root)

	outcomes := make([]Outcome, len(docs))
	workers := r.Opts.Workers
	if workers < 2 {
		for i, doc := range docs {
			outcomes[i] = r.process(ctx, doc)
		}
	} else {
		sem := make(chan struct{}, workers)
		var wg sync.WaitGroup
		for i, doc := range docs {
			wg.Add(1)
			sem <- struct{}{}
			go func(i int, doc Document) {
				defer wg.Done()
				defer func() { <-sem }()
				outcomes[i] = r.process(ctx, doc)
			}(i, doc)
		}
		wg.Wait()
	}

	return Summarize(outcomes), outcomes, nil
}

// Summarize folds per-document outcomes into batch counters.
func Summarize(outcomes []Outcome) Summary {
	sum := Summary{
		Documents:     len(outcomes),
		FailedByStage: make(map[Stage]int),
	}
	for _, out := range outcomes {
		if out.Err != nil {
			sum.Failed++
			sum.FailedByStage[out.Stage]++
			continue
		}
		if out.Plotted {
			sum.Plotted++
		}
		if out.Closed {
			sum.Closed++
		}
		if out.Overridden {
			sum.Overridden++
		}
	}
	return sum
}

func (r *Runner) process(ctx context.Context, doc Document) Outcome {
	out := Outcome{DocID: doc.ID}
	fail := func(stage Stage, err error) Outcome {
		out.Stage = stage
		out.Err = err
		r.logf("[%s] %s failed: %v", doc.ID, stage, err)
		return out
	}
	r.logf("[%s] processing", doc.ID)

	if _, err := os.Stat(doc.SourcePath()); err != nil {
		return fail(StageSource, fmt.Errorf("source image: %w", err))
	}

	// Clip the annotated region, unless the artifact already exists and
	// force mode is off.
	if _, err := os.Stat(doc.TablePath()); r.Opts.ForceClip || err != nil {
		rect, err := region.Load(doc.RegionPath())
		if err != nil {
			return fail(StageRegion, err)
		}
		sf := r.Opts.ScaleFactor
		if sf == 0 {
			sf = clip.DefaultScaleFactor
		}
		if err := clip.ClipFile(doc.SourcePath(), doc.TablePath(), rect, sf); err != nil {
			return fail(StageClip, err)
		}
	}

	raw, err := r.extractRows(ctx, doc, &out)
	if err != nil {
		return fail(StageExtract, err)
	}

	vl := deed.Build(tabletext.Normalize(raw))
	out.Vertices = len(vl.Vertices)
	out.Closed = vl.Closed

	// The canonical document reflects recognition output and is written
	// whenever vertices were derived, independent of any override.
	if len(vl.Vertices) > 0 {
		if err := deed.WriteFile(doc.DeedPath(), deed.NewDocument(vl)); err != nil {
			return fail(StageSerialize, err)
		}
	}

	// An override document supersedes the derived vertices, but only
	// for rendering; it never feeds back into derivation.
	rendered := vl
	if _, err := os.Stat(doc.OverridePath()); err == nil {
		ovr, dropped, err := deed.ReadFile(doc.OverridePath())
		switch {
		case err != nil:
			out.Warnings = append(out.Warnings, fmt.Sprintf("override unreadable: %v", err))
		case len(ovr.Rows) == 0:
			out.Warnings = append(out.Warnings, "override has no usable vertices")
		default:
			rendered = ovr.Vertices()
			out.Overridden = true
			out.DroppedOverrideRows = dropped
			r.logf("[%s] override supersedes %d derived vertices", doc.ID, len(vl.Vertices))
		}
	}

	if len(rendered.Vertices) == 0 {
		return fail(StageRender, ErrNoVertices)
	}
	if r.Renderer != nil {
		if err := r.Renderer.Render(doc.ID, rendered, doc.PlotPath()); err != nil {
			return fail(StageRender, err)
		}
		out.Plotted = true
	}

	r.logf("[%s] done: %d vertices, closed=%t", doc.ID, out.Vertices, out.Closed)
	return out
}

// extractRows obtains the raw cell grid for a document, either from a
// fresh engine call (saving the artifacts it produces) or by reparsing
// artifacts saved by an earlier run, concatenated in discovery order.
func (r *Runner) extractRows(ctx context.Context, doc Document, out *Outcome) ([][]string, error) {
	var artifacts []ocr.Artifact
	if r.Opts.SkipOCR {
		paths, err := filepath.Glob(doc.artifactPattern())
		if err != nil {
			return nil, err
		}
		sort.Strings(paths)
		for _, p := range paths {
			data, err := os.ReadFile(p)
			if err != nil {
				return nil, fmt.Errorf("failed to read artifact: %w", err)
			}
			artifacts = append(artifacts, data)
		}
		if len(artifacts) == 0 {
			out.Warnings = append(out.Warnings, "no extraction artifacts to reparse")
		}
	} else {
		if r.Engine == nil {
			return nil, errors.New("no recognition engine configured")
		}
		var err error
		artifacts, err = r.Engine.ExtractTables(ctx, doc.TablePath())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", r.Engine.Name(), err)
		}
		for i, art := range artifacts {
			if err := os.WriteFile(doc.ArtifactPath(i), art, 0644); err != nil {
				return nil, fmt.Errorf("failed to save artifact: %w", err)
			}
		}
	}

	var raw [][]string
	for _, art := range artifacts {
		rows, err := tabletext.ParseArtifact(art)
		if errors.Is(err, tabletext.ErrNoTable) {
			out.Warnings = append(out.Warnings, "artifact without a table")
			continue
		}
		if err != nil {
			return nil, err
		}
		raw = append(raw, rows...)
	}
	return raw, nil
}

func (r *Runner) logf(format string, args ...interface{}) {
	if r.Opts.Logger == nil {
		return
	}
	fmt.Fprintf(r.Opts.Logger, format+"\n", args...)
}
