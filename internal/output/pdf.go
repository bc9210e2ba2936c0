// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package output

import (
	"fmt"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	"github.com/pdiddy/pdfread/internal/persist"
)

// pxToPt maps one image pixel to one PDF point, so a page is exactly the
// size of its image at 72 dpi.
func pxToPt(px int) float64 {
	return float64(px)
}

// generatePDF writes one image per page. Outline entries become bookmarks
// on the page of their image.
func generatePDF(b Book) (bool, error) {
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.SetTitle(b.Meta.Title, true)
	pdf.SetAuthor(b.Meta.Author, true)
	pdf.SetSubject(b.Meta.Category, true)
	pdf.SetCreator("pdfread", true)

	marks := make(map[int][]int)
	for i, e := range b.TOC {
		marks[e.Index] = append(marks[e.Index], i)
	}
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	level := -1
	for _, i := range b.images() {
		path := filepath.Join(b.Dir, persist.NameFor(i))
		w, h, err := imageSize(path)
		if err != nil {
			return false, err
		}
		pdf.AddPageFormat("P", gofpdf.SizeType{Wd: pxToPt(w), Ht: pxToPt(h)})
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptions(path, opts)
		pdf.ImageOptions(path, 0, 0, pxToPt(w), pxToPt(h), false, opts, 0, "")

		for _, t := range marks[i] {
			e := b.TOC[t]
			// Bookmark levels may only deepen one step at a time.
			level = min(e.Level-1, level+1)
			pdf.Bookmark(tr(e.Title), level, 0)
		}
		if err := pdf.Error(); err != nil {
			return false, fmt.Errorf("adding %s: %w", persist.NameFor(i), err)
		}
	}
	if pdf.PageCount() == 0 {
		pdf.AddPage()
	}

	if err := pdf.OutputFileAndClose(b.artifact(FormatPDF)); err != nil {
		return false, fmt.Errorf("writing %s.pdf: %w", baseName, err)
	}
	return moveOutput(b, FormatPDF)
}
