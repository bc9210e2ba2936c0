// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package output

import (
	"fmt"
	"html"
	"os"
	"strings"

	"github.com/pdiddy/pdfread/internal/persist"
	"github.com/pdiddy/pdfread/internal/tools"
	"github.com/pdiddy/pdfread/pkg/types"
)

// writeHTML writes ebook.html: a heading, the outline as nested lists and
// one anchored image per paragraph.
func writeHTML(b Book) error {
	var sb strings.Builder
	title := html.EscapeString(b.Meta.Title)
	author := html.EscapeString(b.Meta.Author)
	category := html.EscapeString(b.Meta.Category)

	sb.WriteString("<html>\n <head>\n")
	fmt.Fprintf(&sb, "  <title>%s</title>\n", title)
	fmt.Fprintf(&sb, "  <meta name=\"author\"   content=\"%s\">\n", author)
	fmt.Fprintf(&sb, "  <meta name=\"genre\"    content=\"%s\">\n", category)
	fmt.Fprintf(&sb, "  <meta name=\"category\" content=\"%s\">\n", category)
	sb.WriteString(" </head>\n <body>\n")
	fmt.Fprintf(&sb, "   <h1 align=\"center\">%s</h1>\n", title)
	sb.WriteString(tocHTML(b.TOC))

	for _, i := range b.images() {
		fmt.Fprintf(&sb, "<p><a name=\"img%d\"></a><img src=\"%s\"/></p>\n", i, persist.NameFor(i))
	}
	sb.WriteString("</body></html>\n")

	if err := os.WriteFile(b.artifact(FormatHTML), []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("writing %s.html: %w", baseName, err)
	}
	return nil
}

// tocHTML renders the outline as nested <ul> lists linking to the image
// anchors.
func tocHTML(toc []types.ResolvedEntry) string {
	var sb strings.Builder
	depth := 0
	for _, e := range toc {
		for depth < e.Level {
			sb.WriteString("<ul>")
			depth++
		}
		for depth > e.Level {
			sb.WriteString("</ul>")
			depth--
		}
		fmt.Fprintf(&sb, "<li><a href=\"#img%d\">%s</a></li>", e.Index, html.EscapeString(e.Title))
	}
	for ; depth > 0; depth-- {
		sb.WriteString("</ul>")
	}
	if sb.Len() > 0 {
		sb.WriteString("\n")
	}
	return sb.String()
}

func generateHTML(b Book) (bool, error) {
	return false, writeHTML(b)
}

// generateRB builds a Rocket eBook with rbmake.
func generateRB(b Book) (bool, error) {
	if err := writeHTML(b); err != nil {
		return false, err
	}
	if !b.Caps.Has(tools.Rbmake) {
		b.notice("rbmake not found, leaving %s.html in %s", baseName, b.Dir)
		return false, nil
	}
	b.notice("Creating Rocket eBook ...")
	if err := b.Caps.Run(b.Dir, tools.Rbmake, "-beio", baseName+".rb", baseName+".html"); err != nil {
		return false, err
	}
	return moveOutput(b, FormatRB)
}

// generateLRF converts the HTML book to Sony BBeB with calibre.
func generateLRF(b Book) (bool, error) {
	if err := writeHTML(b); err != nil {
		return false, err
	}
	if !b.Caps.Has(tools.EbookConvert) {
		b.notice("ebook-convert not found, leaving %s.html in %s", baseName, b.Dir)
		return false, nil
	}
	b.notice("Creating BBeB file ...")
	err := b.Caps.Run(b.Dir, tools.EbookConvert, baseName+".html", baseName+".lrf",
		"--title", b.Meta.Title, "--authors", b.Meta.Author, "--tags", b.Meta.Category)
	if err != nil {
		return false, err
	}
	return moveOutput(b, FormatLRF)
}

// generateIMP writes the HTML source for eBook Publisher, which only runs
// on Windows.
func generateIMP(b Book) (bool, error) {
	if err := writeHTML(b); err != nil {
		return false, err
	}
	b.notice("IMP creation requires the Windows eBook Publisher; %s.html is in %s", baseName, b.Dir)
	return false, nil
}
