// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package output packages the persisted page images into an e-book.
// Every format is a Generator registered by name. A Generator reports true
// when the finished artifact was moved to the requested output path, which
// tells the caller the work directory may be removed.
package output

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/pdfread/internal/persist"
	"github.com/pdiddy/pdfread/internal/registry"
	"github.com/pdiddy/pdfread/internal/tools"
	"github.com/pdiddy/pdfread/pkg/types"
)

// baseName is the file name, without extension, of every artifact written
// into the work directory.
const baseName = "ebook"

// Book is everything a Generator needs.
type Book struct {
	// Dir is the work directory holding 0.png .. <Images-1>.png.
	Dir    string
	Images int
	Meta   types.Metadata
	TOC    []types.ResolvedEntry

	// Output is the requested artifact path. Empty leaves the artifact in
	// Dir.
	Output string

	Caps *tools.Capabilities
	Log  *slog.Logger

	// Notice receives user-facing messages such as a missing packager.
	Notice io.Writer
}

func (b Book) logger() *slog.Logger {
	if b.Log == nil {
		return slog.Default()
	}
	return b.Log
}

func (b Book) notice(format string, args ...any) {
	if b.Notice != nil {
		fmt.Fprintf(b.Notice, format+"\n", args...)
	}
}

func (b Book) artifact(ext string) string {
	return filepath.Join(b.Dir, baseName+"."+ext)
}

// images returns the indices of the persisted images in order, skipping
// any that are missing on disk.
func (b Book) images() []int {
	var idx []int
	for i := 0; i < b.Images; i++ {
		if _, err := os.Stat(filepath.Join(b.Dir, persist.NameFor(i))); err == nil {
			idx = append(idx, i)
		}
	}
	return idx
}

// Generator writes one output format.
type Generator func(b Book) (bool, error)

// Format keys.
const (
	FormatHTML = "html"
	FormatRB   = "rb"
	FormatLRF  = "lrf"
	FormatIMP1 = "imp1"
	FormatIMP2 = "imp2"
	FormatEPUB = "epub"
	FormatPDF  = "pdf"
)

// Registry returns the registry of every output format.
func Registry() *registry.Registry[Generator] {
	return registry.New[Generator]("output format").
		MustRegister(FormatHTML, generateHTML).
		MustRegister(FormatRB, generateRB).
		MustRegister(FormatLRF, generateLRF).
		MustRegister(FormatIMP1, generateIMP).
		MustRegister(FormatIMP2, generateIMP).
		MustRegister(FormatEPUB, generateEPUB).
		MustRegister(FormatPDF, generatePDF)
}

// Generate runs the generator registered for format.
func Generate(format string, b Book) (bool, error) {
	gen, err := Registry().Get(format)
	if err != nil {
		return false, err
	}
	b.logger().Debug("generating output", "format", format, "images", b.Images, "toc", len(b.TOC))
	return gen(b)
}

// IndexLookup resolves a logical page to its first output image.
type IndexLookup interface {
	Lookup(page int) (int, bool)
}

// RemapTOC resolves outline entries against the output index. Entries
// whose page produced no image are dropped.
func RemapTOC(entries []types.TOCEntry, idx IndexLookup) []types.ResolvedEntry {
	var out []types.ResolvedEntry
	for _, e := range entries {
		i, ok := idx.Lookup(e.Page)
		if !ok {
			continue
		}
		level := e.Level
		if level < 1 {
			level = 1
		}
		out = append(out, types.ResolvedEntry{Title: strings.TrimSpace(e.Title), Level: level, Index: i})
	}
	return out
}

// moveOutput moves ebook.<ext> to the requested output path, appending
// .<ext> when the path lacks it. It reports false when there is no
// output path or no artifact.
func moveOutput(b Book, ext string) (bool, error) {
	if b.Output == "" {
		return false, nil
	}
	src := b.artifact(ext)
	if _, err := os.Stat(src); err != nil {
		b.logger().Warn("no artifact to move", "path", src)
		return false, nil
	}

	dst := b.Output
	if !strings.EqualFold(filepath.Ext(dst), "."+ext) {
		dst += "." + ext
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return false, fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.Rename(src, dst); err != nil {
		var linkErr *os.LinkError
		if !errors.As(err, &linkErr) {
			return false, err
		}
		if err := copyFile(src, dst); err != nil {
			return false, fmt.Errorf("moving %s to %s: %w", filepath.Base(src), dst, err)
		}
		if err := os.Remove(src); err != nil {
			return false, err
		}
	}
	b.logger().Info("output written", "path", dst)
	return true, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
