// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package input

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/pdiddy/pdfread/internal/tools"
	"github.com/pdiddy/pdfread/pkg/types"
)

const (
	pdfScratchPNG = "page.png"
	pdfScratchEPS = "page.eps"
)

var (
	hiResBBox = regexp.MustCompile(`%%HiResBoundingBox: .*`)
	bbox      = regexp.MustCompile(`%%BoundingBox: .*`)
)

type pdfDocument struct {
	path  string
	opts  Options
	count int
	toc   []types.TOCEntry
}

// OpenPDF reads the page count and outline, preferring pdfcpu and falling
// back to pdftk and then pdfinfo.
func OpenPDF(path string, opts Options) (Document, error) {
	if opts.GSCrop {
		if err := opts.Caps.Require(tools.Pdftops, tools.Ghostscript); err != nil {
			return nil, fmt.Errorf("pdf input with gscrop: %w", err)
		}
	} else if err := opts.Caps.Require(tools.Pdftoppm); err != nil {
		return nil, fmt.Errorf("pdf input: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	d := &pdfDocument{path: path, opts: opts}
	d.readMeta()
	return d, nil
}

func (d *pdfDocument) readMeta() {
	log := d.opts.logger()

	count, toc, err := readPdfcpu(d.path)
	if err == nil {
		d.count, d.toc = count, toc
		log.Debug("pdf metadata", "source", "pdfcpu", "pages", count, "toc", len(toc))
		return
	}
	log.Debug("pdfcpu could not read document", "path", d.path, "error", err)

	caps := d.opts.Caps
	if caps.Has(tools.Pdftk) {
		out, err := caps.Output(d.opts.WorkDir, tools.Pdftk, d.path, "dump_data", "output", "-")
		if err == nil {
			d.count, d.toc = parseDumpData(string(out))
			log.Debug("pdf metadata", "source", "pdftk", "pages", d.count, "toc", len(d.toc))
			return
		}
		log.Warn("pdftk dump_data failed", "error", err)
	}
	if caps.Has(tools.Pdfinfo) {
		out, err := caps.Output(d.opts.WorkDir, tools.Pdfinfo, d.path)
		if err == nil {
			d.count = parsePdfinfo(string(out))
			return
		}
		log.Warn("pdfinfo failed", "error", err)
	}
}

func (d *pdfDocument) PageCount() int        { return d.count }
func (d *pdfDocument) TOC() []types.TOCEntry { return d.toc }

func (d *pdfDocument) Page(n int) (image.Image, error) {
	dir := d.opts.WorkDir
	if err := removeScratch(dir, pdfScratchPNG, pdfScratchEPS); err != nil {
		return nil, err
	}
	if d.opts.GSCrop {
		if err := d.renderEPS(n); err != nil {
			return nil, err
		}
	} else if err := d.renderPoppler(n); err != nil {
		return nil, err
	}
	return loadIfExists(filepath.Join(dir, pdfScratchPNG))
}

// renderPoppler writes page.png with pdftoppm.
func (d *pdfDocument) renderPoppler(n int) error {
	page := strconv.Itoa(n)
	return d.opts.Caps.Run(d.opts.WorkDir, tools.Pdftoppm,
		"-png", "-gray",
		"-f", page, "-l", page,
		"-r", strconv.Itoa(d.opts.DPI),
		"-singlefile",
		d.path, "page",
	)
}

// renderEPS converts the page to EPS, tightens its bounding box with the
// one Ghostscript measures, and rasterizes it.
func (d *pdfDocument) renderEPS(n int) error {
	dir, caps := d.opts.WorkDir, d.opts.Caps
	page := strconv.Itoa(n)
	if err := caps.Run(dir, tools.Pdftops, "-f", page, "-l", page, "-eps", d.path, pdfScratchEPS); err != nil {
		return err
	}

	out, err := caps.CombinedOutput(dir, tools.Ghostscript,
		"-q", "-dBATCH", "-dSAFER", "-dNOPAUSE", "-sDEVICE=bbox", pdfScratchEPS)
	if err != nil {
		return err
	}
	if box := bbox.Find(out); box != nil {
		epsPath := filepath.Join(dir, pdfScratchEPS)
		eps, err := os.ReadFile(epsPath)
		if err != nil {
			return err
		}
		eps = bbox.ReplaceAllLiteral(eps, box)
		eps = hiResBBox.ReplaceAllLiteral(eps, nil)
		if err := os.WriteFile(epsPath, eps, 0o644); err != nil {
			return err
		}
	}

	return caps.Run(dir, tools.Ghostscript,
		"-q", "-dBATCH", "-dSAFER", "-dNOPAUSE",
		fmt.Sprintf("-r%d", d.opts.DPI),
		"-dTextAlphaBits=4", "-dGraphicsAlphaBits=4",
		"-dEPSFitPage", "-dEPSCrop",
		"-sDEVICE=pnggray", "-sOutputFile="+pdfScratchPNG,
		pdfScratchEPS,
	)
}

func (d *pdfDocument) Close() error {
	return removeScratch(d.opts.WorkDir, pdfScratchPNG, pdfScratchEPS)
}
