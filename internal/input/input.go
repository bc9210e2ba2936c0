// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package input opens paginated documents and rasterizes them one page at
// a time. Each format is a registered Opener; rasterizing is delegated to
// external programs through a tools.Capabilities probe.
package input

import (
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/pdfread/internal/raster"
	"github.com/pdiddy/pdfread/internal/registry"
	"github.com/pdiddy/pdfread/internal/tools"
	"github.com/pdiddy/pdfread/pkg/types"
)

// Document is an opened input.
type Document interface {
	// PageCount returns the number of pages the document reports, or 0
	// when no metadata source knew it.
	PageCount() int

	// TOC returns the document outline, possibly empty.
	TOC() []types.TOCEntry

	// Page rasterizes page n (1-based). A nil image with a nil error means
	// the rasterizer produced nothing for this page.
	Page(n int) (image.Image, error)

	// Close removes the document's scratch files.
	Close() error
}

// Options configures an Opener.
type Options struct {
	// DPI is the rasterizing resolution.
	DPI int

	// WorkDir holds the fixed-name scratch files.
	WorkDir string

	// GSCrop rasterizes PDF pages through Ghostscript after replacing the
	// EPS bounding box with the one Ghostscript detects.
	GSCrop bool

	Caps *tools.Capabilities
	Log  *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Log == nil {
		return slog.Default()
	}
	return o.Log
}

// Opener opens the document at path.
type Opener func(path string, opts Options) (Document, error)

// Format keys.
const (
	FormatPDF    = "pdf"
	FormatDjVu   = "djvu"
	FormatTIFF   = "tiff"
	FormatImages = "images"
)

// Registry returns the registry of every input format.
func Registry() *registry.Registry[Opener] {
	return registry.New[Opener]("input format").
		MustRegister(FormatPDF, OpenPDF).
		MustRegister(FormatDjVu, OpenDjVu).
		MustRegister(FormatTIFF, OpenTIFF).
		MustRegister(FormatImages, OpenImages)
}

// Open opens path with the opener registered for format.
func Open(format, path string, opts Options) (Document, error) {
	open, err := Registry().Get(format)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return open(abs, opts)
}

// DetectFormat guesses the input format from path. Directories and .txt
// lists are image lists; unknown extensions default to PDF.
func DetectFormat(path string) string {
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		return FormatImages
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".djvu", ".djv":
		return FormatDjVu
	case ".tif", ".tiff":
		return FormatTIFF
	case ".txt", ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".webp":
		return FormatImages
	}
	return types.DefaultInputFormat
}

// removeScratch deletes fixed-name scratch files in dir, ignoring ones
// that do not exist.
func removeScratch(dir string, names ...string) error {
	for _, n := range names {
		if err := os.Remove(filepath.Join(dir, n)); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// loadIfExists decodes path, returning nil when the file is absent.
func loadIfExists(path string) (image.Image, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	return raster.Load(path)
}
