// deedocr is a command-line tool that converts annotated cadastral
// survey sheets into canonical boundary-vertex documents and review
// plots.
//
// For every *_rv25j.jpg scan under the root folder, the tool clips the
// annotated table region, recognizes the survey table, normalizes the
// extracted text, builds the ordered vertex list with polygon-closure
// detection, writes the canonical *_MAPL1.toml document, resolves a
// hand-edited *_MAPL1x.toml override when present, and renders the
// parcel plot.
//
// Configuration:
//
// An optional YAML configuration file selects the recognition engine:
//
//	engine: tesseract          # or "documentai"
//	languages: ["tha", "eng"]  # tesseract trained-data hints
//	scale_factor: 2
//	documentai:
//	  project_id: "your-gcp-project-id"
//	  location: "us"
//	  processor_id: "your-processor-id"
//
// Usage:
//
//	deedocr -root ./deeds [options]
//
// Options:
//
//	-config string  Path to the YAML configuration file
//	-skip-ocr       Reparse saved *_tblNN.md artifacts instead of running recognition
//	-force-clip     Re-clip table regions even when *_table.jpg exists
//	-workers int    Documents processed concurrently (default 1)
//	-no-plot        Skip plot rendering
//
// The Document AI engine authenticates through the
// GOOGLE_APPLICATION_CREDENTIALS environment variable.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/phisan/deedocr/pkg/ocr"
	"github.com/phisan/deedocr/pkg/ocr/docai"
	"github.com/phisan/deedocr/pkg/pipeline"
	"github.com/phisan/deedocr/pkg/plot"
)

type yamlConfig struct {
	Engine      string       `yaml:"engine"`
	Languages   []string     `yaml:"languages"`
	ScaleFactor int          `yaml:"scale_factor"`
	DocumentAI  docai.Config `yaml:"documentai"`
}

// loadConfig reads the YAML config; a missing -config flag falls back
// to the Tesseract defaults.
func loadConfig(path string) (*yamlConfig, error) {
	cfg := &yamlConfig{Engine: "tesseract"}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.Engine == "" {
		cfg.Engine = "tesseract"
	}
	return cfg, nil
}

func main() {
	configPath := flag.String("config", "", "Path to the config YAML file")
	root := flag.String("root", "", "Folder containing *_rv25j.jpg deed scans (required)")
	skipOCR := flag.Bool("skip-ocr", false, "Reparse saved extraction artifacts instead of running recognition")
	forceClip := flag.Bool("force-clip", false, "Re-clip table regions even when the clipped artifact exists")
	workers := flag.Int("workers", 1, "Number of documents processed concurrently")
	noPlot := flag.Bool("no-plot", false, "Skip plot rendering")
	flag.Parse()

	if *root == "" {
		fmt.Fprintln(os.Stderr, "Error: -root flag is required")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	// The engine is initialized once and shared by every worker for the
	// whole batch run.
	var engine ocr.Engine
	if !*skipOCR {
		switch cfg.Engine {
		case "tesseract":
			t, err := ocr.NewTesseract(cfg.Languages...)
			if err != nil {
				log.Fatalf("Failed to initialize tesseract: %v", err)
			}
			defer t.Close()
			engine = t
		case "documentai":
			e, err := docai.New(ctx, cfg.DocumentAI)
			if err != nil {
				log.Fatalf("Failed to initialize Document AI: %v", err)
			}
			defer e.Close()
			engine = e
		default:
			log.Fatalf("Unknown recognition engine %q (want tesseract or documentai)", cfg.Engine)
		}
		fmt.Println("Recognition engine:", engine.Name())
	}

	var renderer plot.Renderer
	if !*noPlot {
		renderer = plot.NewPDF()
	}

	runner := &pipeline.Runner{
		Engine:   engine,
		Renderer: renderer,
		Opts: pipeline.Options{
			SkipOCR:     *skipOCR,
			ForceClip:   *forceClip,
			ScaleFactor: cfg.ScaleFactor,
			Workers:     *workers,
			Logger:      os.Stdout,
		},
	}

	sum, outcomes, err := runner.Run(ctx, *root)
	if err != nil {
		log.Fatalf("Batch aborted: %v", err)
	}

	for _, out := range outcomes {
		for _, w := range out.Warnings {
			fmt.Printf("Warning [%s]: %s\n", out.DocID, w)
		}
		if out.DroppedOverrideRows > 0 {
			fmt.Printf("Warning [%s]: override dropped %d rows, check its columns\n",
				out.DocID, out.DroppedOverrideRows)
		}
		if out.Err != nil {
			fmt.Printf("Failed [%s] at %s: %v\n", out.DocID, out.Stage, out.Err)
		}
	}

	fmt.Printf("Processed %d documents: %d plotted, %d closed, %d overridden, %d failed\n",
		sum.Documents, sum.Plotted, sum.Closed, sum.Overridden, sum.Failed)
	for stage, n := range sum.FailedByStage {
		fmt.Printf("  failed at %s: %d\n", stage, n)
	}
	if sum.Failed > 0 {
		os.Exit(1)
	}
}
