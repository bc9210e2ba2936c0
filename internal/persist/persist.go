// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package persist writes surviving page images as <index>.png, optionally
// quantized to a target color count and recompressed.
package persist

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pdiddy/pdfread/internal/raster"
	"github.com/pdiddy/pdfread/internal/tools"
	"github.com/pdiddy/pdfread/pkg/types"
)

// Histogram gate parameters: an image is persisted only when both its
// near-black (0-31) and near-white (224-255) luminance buckets hold at
// least GateMinPixels pixels.
const (
	GateDarkEnd    = 32
	GateLightStart = 224
	GateMinPixels  = 10
)

// ErrQuantizeFailed is returned when the quantizer ran but left no output
// file. It aborts the run.
var ErrQuantizeFailed = errors.New("quantizer produced no output")

// Scratch file names, reused for every image.
const (
	scratchIn  = "quant.png"
	scratchOut = "quant-nq8.png"
)

// NameFor returns the file name of the image with the given output index.
func NameFor(index int) string {
	return fmt.Sprintf("%d.png", index)
}

// Keep applies the histogram gate.
func Keep(img image.Image) bool {
	hist := raster.Histogram(img)
	dark, light := 0, 0
	for _, n := range hist[:GateDarkEnd] {
		dark += n
	}
	for _, n := range hist[GateLightStart:] {
		light += n
	}
	return dark >= GateMinPixels && light >= GateMinPixels
}

// Image describes one persisted file.
type Image struct {
	Index  int    `json:"index" yaml:"index"`
	Name   string `json:"name" yaml:"name"`
	Width  int    `json:"width" yaml:"width"`
	Height int    `json:"height" yaml:"height"`
}

// Result is the outcome of saving one page's images.
type Result struct {
	Saved    []Image
	Rejected int
}

// Saver owns the output index counter. It is not safe for concurrent use.
type Saver struct {
	dir       string
	colors    int
	optimize  bool
	quantizer Quantizer
	caps      *tools.Capabilities
	log       *slog.Logger
	next      int
}

// NewSaver prepares a saver writing into dir. The tools a configuration
// needs are checked here so a missing quantizer fails before page 1.
func NewSaver(dir string, cfg types.PipelineConfig, caps *tools.Capabilities, log *slog.Logger) (*Saver, error) {
	if log == nil {
		log = slog.Default()
	}
	s := &Saver{
		dir:      dir,
		colors:   cfg.Colors,
		optimize: cfg.Optimize,
		caps:     caps,
		log:      log,
	}
	if cfg.Colors >= 2 {
		q, err := SelectQuantizer(caps)
		if err != nil {
			return nil, err
		}
		s.quantizer = q
		log.Debug("quantizer selected", "tool", q.Name(), "colors", cfg.Colors)
	}
	if cfg.Optimize {
		if err := caps.Require(tools.Optipng); err != nil {
			return nil, fmt.Errorf("optimize: %w", err)
		}
	}
	return s, nil
}

// Count returns the number of images persisted so far.
func (s *Saver) Count() int {
	return s.next
}

// Save gates and persists imgs in order. Only persisted images advance
// the index. Any returned error is fatal for the run.
func (s *Saver) Save(imgs []image.Image) (Result, error) {
	var res Result
	for _, img := range imgs {
		if !Keep(img) {
			res.Rejected++
			continue
		}
		name := NameFor(s.next)
		path := filepath.Join(s.dir, name)

		if err := s.write(path, img); err != nil {
			return res, err
		}
		if s.optimize {
			if err := s.caps.Run(s.dir, tools.Optipng, name); err != nil {
				return res, fmt.Errorf("optimizing %s: %w", name, err)
			}
		}
		if _, err := os.Stat(path); err != nil {
			return res, fmt.Errorf("checking %s: %w", name, err)
		}

		b := img.Bounds()
		res.Saved = append(res.Saved, Image{Index: s.next, Name: name, Width: b.Dx(), Height: b.Dy()})
		s.next++
	}
	return res, nil
}

func (s *Saver) write(path string, img image.Image) error {
	if s.quantizer == nil {
		return raster.SavePNG(path, img)
	}

	in, out := filepath.Join(s.dir, scratchIn), filepath.Join(s.dir, scratchOut)
	if err := removeAll(in, out); err != nil {
		return err
	}
	if err := raster.SavePNG(in, img); err != nil {
		return err
	}
	if err := s.quantizer.Quantize(s.dir, scratchIn, scratchOut, s.colors); err != nil {
		return fmt.Errorf("quantizing %s: %w", filepath.Base(path), err)
	}
	if _, err := os.Stat(out); err != nil {
		return fmt.Errorf("%w: %s after %s", ErrQuantizeFailed, scratchOut, s.quantizer.Name())
	}
	if err := os.Rename(out, path); err != nil {
		return fmt.Errorf("renaming quantized image: %w", err)
	}
	return nil
}

// Cleanup removes the quantizer scratch files.
func (s *Saver) Cleanup() error {
	return removeAll(filepath.Join(s.dir, scratchIn), filepath.Join(s.dir, scratchOut))
}

func removeAll(paths ...string) error {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing %s: %w", p, err)
		}
	}
	return nil
}
