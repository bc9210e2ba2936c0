// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package input

import (
	"fmt"
	"image"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pdiddy/pdfread/internal/tools"
	"github.com/pdiddy/pdfread/pkg/types"
)

const djvuScratch = "page.tif"

type djvuDocument struct {
	path  string
	opts  Options
	count int
}

// OpenDjVu reads the page count with djvused. Pages are rendered as
// black-and-white TIFF by ddjvu.
func OpenDjVu(path string, opts Options) (Document, error) {
	if err := opts.Caps.Require(tools.Ddjvu); err != nil {
		return nil, fmt.Errorf("djvu input: %w", err)
	}
	d := &djvuDocument{path: path, opts: opts}

	if opts.Caps.Has(tools.Djvused) {
		out, err := opts.Caps.Output(opts.WorkDir, tools.Djvused, "-e", "n", path)
		if err != nil {
			opts.logger().Warn("djvused failed", "error", err)
		} else if n, err := strconv.Atoi(strings.TrimSpace(string(out))); err == nil {
			d.count = n
		}
	}
	return d, nil
}

func (d *djvuDocument) PageCount() int        { return d.count }
func (d *djvuDocument) TOC() []types.TOCEntry { return nil }

func (d *djvuDocument) Page(n int) (image.Image, error) {
	dir := d.opts.WorkDir
	if err := removeScratch(dir, djvuScratch); err != nil {
		return nil, err
	}
	err := d.opts.Caps.Run(dir, tools.Ddjvu,
		"-format=tiff", "-mode=black",
		"-page="+strconv.Itoa(n),
		"-scale="+strconv.Itoa(d.opts.DPI),
		d.path, djvuScratch,
	)
	if err != nil {
		return nil, err
	}
	return loadIfExists(filepath.Join(dir, djvuScratch))
}

func (d *djvuDocument) Close() error {
	return removeScratch(d.opts.WorkDir, djvuScratch)
}
