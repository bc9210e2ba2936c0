// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package input

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/image/tiff"

	"github.com/pdiddy/pdfread/internal/raster"
	"github.com/pdiddy/pdfread/internal/tools"
	"github.com/pdiddy/pdfread/pkg/types"
)

const tiffPrefix = "tiff-"

// tiffDocument serves pages either from files split out by tiffsplit or,
// without tiffsplit, from the first directory of the file itself.
type tiffDocument struct {
	path  string
	opts  Options
	pages []string
}

// OpenTIFF splits a multi-page TIFF into one file per page.
func OpenTIFF(path string, opts Options) (Document, error) {
	d := &tiffDocument{path: path, opts: opts}
	if !opts.Caps.Has(tools.Tiffsplit) {
		opts.logger().Warn("tiffsplit not found, reading only the first page", "path", path)
		return d, nil
	}

	if err := d.Close(); err != nil {
		return nil, err
	}
	if err := opts.Caps.Run(opts.WorkDir, tools.Tiffsplit, path, tiffPrefix); err != nil {
		return nil, err
	}
	pages, err := filepath.Glob(filepath.Join(opts.WorkDir, tiffPrefix+"*.tif"))
	if err != nil {
		return nil, err
	}
	sort.Strings(pages)
	d.pages = pages
	return d, nil
}

func (d *tiffDocument) PageCount() int {
	if d.pages == nil {
		return 1
	}
	return len(d.pages)
}

func (d *tiffDocument) TOC() []types.TOCEntry { return nil }

func (d *tiffDocument) Page(n int) (image.Image, error) {
	if d.pages == nil {
		if n != 1 {
			return nil, nil
		}
		return decodeTIFF(d.path)
	}
	if n < 1 || n > len(d.pages) {
		return nil, nil
	}
	return decodeTIFF(d.pages[n-1])
}

func decodeTIFF(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := tiff.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	return raster.Normalize(img), nil
}

func (d *tiffDocument) Close() error {
	old, err := filepath.Glob(filepath.Join(d.opts.WorkDir, tiffPrefix+"*.tif"))
	if err != nil {
		return err
	}
	for _, p := range old {
		if err := os.Remove(p); err != nil {
			return err
		}
	}
	return nil
}
