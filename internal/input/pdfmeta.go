// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package input

import (
	"html"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"

	"github.com/pdiddy/pdfread/pkg/types"
)

var (
	pdftkCount   = regexp.MustCompile(`NumberOfPages: (\d+)`)
	pdftkTOC     = regexp.MustCompile(`BookmarkTitle:\s+(.*)\s+BookmarkLevel:\s+(\d+)\s+BookmarkPageNumber:\s+(\d+)`)
	pdfinfoCount = regexp.MustCompile(`Pages:\s+(\d+)`)
)

// parseDumpData extracts the page count and outline from `pdftk dump_data`.
func parseDumpData(data string) (int, []types.TOCEntry) {
	count := 0
	if m := pdftkCount.FindStringSubmatch(data); m != nil {
		count, _ = strconv.Atoi(m[1])
	}

	var toc []types.TOCEntry
	for _, m := range pdftkTOC.FindAllStringSubmatch(data, -1) {
		level, _ := strconv.Atoi(m[2])
		page, _ := strconv.Atoi(m[3])
		toc = append(toc, types.TOCEntry{
			Title: html.UnescapeString(strings.TrimSpace(m[1])),
			Level: level,
			Page:  page,
		})
	}
	return count, toc
}

// parsePdfinfo extracts the page count from `pdfinfo` output.
func parsePdfinfo(data string) int {
	if m := pdfinfoCount.FindStringSubmatch(data); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n
	}
	return 0
}

// readPdfcpu reads the page count and outline in-process.
func readPdfcpu(path string) (int, []types.TOCEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, nil, err
	}
	defer f.Close()

	count, err := api.PageCount(f, nil)
	if err != nil {
		return 0, nil, err
	}

	if _, err := f.Seek(0, 0); err != nil {
		return count, nil, err
	}
	bms, err := api.Bookmarks(f, nil)
	if err != nil {
		// A missing outline is reported as an error; the count still stands.
		return count, nil, nil
	}
	return count, flattenBookmarks(bms, 1, nil), nil
}

func flattenBookmarks(bms []pdfcpu.Bookmark, level int, out []types.TOCEntry) []types.TOCEntry {
	for _, bm := range bms {
		out = append(out, types.TOCEntry{Title: strings.TrimSpace(bm.Title), Level: level, Page: bm.PageFrom})
		out = flattenBookmarks(bm.Kids, level+1, out)
	}
	return out
}
