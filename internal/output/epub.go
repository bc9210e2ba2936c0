// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package output

import (
	"archive/zip"
	"fmt"
	"image"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/pdfread/internal/persist"
	"github.com/pdiddy/pdfread/pkg/types"
)

// epubPage is one fixed-layout page holding one image.
type epubPage struct {
	Index         int
	Width, Height int
}

func (p epubPage) id() string    { return fmt.Sprintf("p%04d", p.Index) }
func (p epubPage) xhtml() string { return "pages/" + p.id() + ".xhtml" }
func (p epubPage) image() string { return "images/" + persist.NameFor(p.Index) }

// epubBuilder writes a pre-paginated EPUB 3 with one image per page.
type epubBuilder struct {
	id    string
	meta  types.Metadata
	toc   []types.ResolvedEntry
	dir   string
	pages []epubPage
}

func newEPUBBuilder(b Book) (*epubBuilder, error) {
	eb := &epubBuilder{
		id:   "urn:uuid:" + uuid.New().String(),
		meta: b.Meta,
		toc:  b.TOC,
		dir:  b.Dir,
	}
	for _, i := range b.images() {
		w, h, err := imageSize(filepath.Join(b.Dir, persist.NameFor(i)))
		if err != nil {
			return nil, err
		}
		eb.pages = append(eb.pages, epubPage{Index: i, Width: w, Height: h})
	}
	return eb, nil
}

func imageSize(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	return cfg.Width, cfg.Height, nil
}

func generateEPUB(b Book) (bool, error) {
	eb, err := newEPUBBuilder(b)
	if err != nil {
		return false, err
	}
	if err := eb.Build(b.artifact(FormatEPUB)); err != nil {
		return false, err
	}
	return moveOutput(b, FormatEPUB)
}

// Build writes the EPUB to path.
func (eb *epubBuilder) Build(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Base(path), err)
	}
	if err := eb.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteTo writes the EPUB container to w.
func (eb *epubBuilder) WriteTo(w io.Writer) error {
	zw := zip.NewWriter(w)

	// mimetype must be the first entry and stored uncompressed.
	mw, err := zw.CreateHeader(&zip.FileHeader{Name: "mimetype", Method: zip.Store})
	if err != nil {
		return fmt.Errorf("creating mimetype: %w", err)
	}
	if _, err := io.WriteString(mw, "application/epub+zip"); err != nil {
		return err
	}

	files := []struct {
		name    string
		content string
	}{
		{"META-INF/container.xml", containerXML},
		{"OEBPS/content.opf", eb.packageDocument()},
		{"OEBPS/nav.xhtml", eb.navigation()},
		{"OEBPS/toc.ncx", eb.ncx()},
	}
	for _, p := range eb.pages {
		files = append(files, struct {
			name    string
			content string
		}{"OEBPS/" + p.xhtml(), eb.pageXHTML(p)})
	}
	for _, f := range files {
		fw, err := zw.Create(f.name)
		if err != nil {
			return fmt.Errorf("creating %s: %w", f.name, err)
		}
		if _, err := io.WriteString(fw, f.content); err != nil {
			return err
		}
	}

	for _, p := range eb.pages {
		if err := eb.copyImage(zw, p); err != nil {
			return err
		}
	}
	return zw.Close()
}

func (eb *epubBuilder) copyImage(zw *zip.Writer, p epubPage) error {
	src, err := os.Open(filepath.Join(eb.dir, persist.NameFor(p.Index)))
	if err != nil {
		return err
	}
	defer src.Close()

	// PNG data is already deflated.
	fw, err := zw.CreateHeader(&zip.FileHeader{Name: "OEBPS/" + p.image(), Method: zip.Store})
	if err != nil {
		return fmt.Errorf("creating %s: %w", p.image(), err)
	}
	_, err = io.Copy(fw, src)
	return err
}

const containerXML = `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>
`

func (eb *epubBuilder) packageDocument() string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0" unique-identifier="pub-id" prefix="rendition: http://www.idpf.org/vocab/rendition/#">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
`)
	fmt.Fprintf(&sb, "    <dc:identifier id=\"pub-id\">%s</dc:identifier>\n", eb.id)
	fmt.Fprintf(&sb, "    <dc:title>%s</dc:title>\n", escapeXML(eb.meta.Title))
	fmt.Fprintf(&sb, "    <dc:creator>%s</dc:creator>\n", escapeXML(eb.meta.Author))
	fmt.Fprintf(&sb, "    <dc:subject>%s</dc:subject>\n", escapeXML(eb.meta.Category))
	sb.WriteString("    <dc:language>en</dc:language>\n")
	fmt.Fprintf(&sb, "    <meta property=\"dcterms:modified\">%s</meta>\n",
		time.Now().UTC().Format("2006-01-02T15:04:05Z"))
	sb.WriteString("    <meta property=\"rendition:layout\">pre-paginated</meta>\n")
	sb.WriteString("  </metadata>\n  <manifest>\n")
	sb.WriteString("    <item id=\"nav\" href=\"nav.xhtml\" media-type=\"application/xhtml+xml\" properties=\"nav\"/>\n")
	sb.WriteString("    <item id=\"ncx\" href=\"toc.ncx\" media-type=\"application/x-dtbncx+xml\"/>\n")
	for _, p := range eb.pages {
		fmt.Fprintf(&sb, "    <item id=\"%s\" href=\"%s\" media-type=\"application/xhtml+xml\"/>\n", p.id(), p.xhtml())
		fmt.Fprintf(&sb, "    <item id=\"img-%s\" href=\"%s\" media-type=\"image/png\"/>\n", p.id(), p.image())
	}
	sb.WriteString("  </manifest>\n  <spine toc=\"ncx\">\n")
	for _, p := range eb.pages {
		fmt.Fprintf(&sb, "    <itemref idref=\"%s\"/>\n", p.id())
	}
	sb.WriteString("  </spine>\n</package>\n")
	return sb.String()
}

func (eb *epubBuilder) pageXHTML(p epubPage) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml">
<head>
  <title>%s</title>
  <meta name="viewport" content="width=%d, height=%d"/>
  <style>body { margin: 0; } img { display: block; }</style>
</head>
<body>
  <img src="../%s" width="%d" height="%d" alt=""/>
</body>
</html>
`, escapeXML(eb.meta.Title), p.Width, p.Height, p.image(), p.Width, p.Height)
}

// pageFor returns the page document holding image index, or the first
// page when the index was not persisted.
func (eb *epubBuilder) pageFor(index int) string {
	for _, p := range eb.pages {
		if p.Index == index {
			return p.xhtml()
		}
	}
	if len(eb.pages) > 0 {
		return eb.pages[0].xhtml()
	}
	return ""
}

// navigation writes the EPUB 3 nav document. The outline nests by level;
// an empty outline lists the first page.
func (eb *epubBuilder) navigation() string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml" xmlns:epub="http://www.idpf.org/2007/ops">
<head>
  <title>Table of Contents</title>
</head>
<body>
  <nav epub:type="toc" id="toc">
    <h1>Table of Contents</h1>
`)
	toc := eb.toc
	if len(toc) == 0 {
		toc = []types.ResolvedEntry{{Title: eb.meta.Title, Level: 1, Index: 0}}
	}

	depth := 0
	for i, e := range toc {
		switch {
		case e.Level > depth:
			for depth < e.Level {
				sb.WriteString("<ol>")
				depth++
				if depth < e.Level {
					sb.WriteString("<li>")
				}
			}
		case i > 0:
			sb.WriteString("</li>")
			for depth > e.Level {
				sb.WriteString("</ol></li>")
				depth--
			}
		}
		fmt.Fprintf(&sb, "<li><a href=\"%s\">%s</a>", eb.pageFor(e.Index), escapeXML(e.Title))
	}
	sb.WriteString("</li>")
	for ; depth > 1; depth-- {
		sb.WriteString("</ol></li>")
	}
	sb.WriteString("</ol>\n  </nav>\n</body>\n</html>\n")
	return sb.String()
}

// ncx writes the flat EPUB 2 table of contents.
func (eb *epubBuilder) ncx() string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<ncx xmlns="http://www.daisy.org/z3986/2005/ncx/" version="2005-1">
  <head>
`)
	fmt.Fprintf(&sb, "    <meta name=\"dtb:uid\" content=\"%s\"/>\n", eb.id)
	sb.WriteString("  </head>\n  <docTitle>\n")
	fmt.Fprintf(&sb, "    <text>%s</text>\n", escapeXML(eb.meta.Title))
	sb.WriteString("  </docTitle>\n  <navMap>\n")
	for i, e := range eb.toc {
		fmt.Fprintf(&sb, "    <navPoint id=\"nav-%d\" playOrder=\"%d\">\n", i+1, i+1)
		fmt.Fprintf(&sb, "      <navLabel><text>%s</text></navLabel>\n", escapeXML(e.Title))
		fmt.Fprintf(&sb, "      <content src=\"%s\"/>\n", eb.pageFor(e.Index))
		sb.WriteString("    </navPoint>\n")
	}
	sb.WriteString("  </navMap>\n</ncx>\n")
	return sb.String()
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}
