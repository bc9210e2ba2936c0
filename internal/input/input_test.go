// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package input

import (
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/tiff"

	"github.com/pdiddy/pdfread/internal/registry"
	"github.com/pdiddy/pdfread/internal/tools"
	"github.com/pdiddy/pdfread/pkg/types"
)

// fakeExecutor pretends the listed tools exist; outputs holds canned
// stdout per tool and effects emulates files a tool writes.
type fakeExecutor struct {
	bins    map[string]bool
	outputs map[string]string
	fail    map[string]bool
	effects map[string]func(dir string, args []string) error
	calls   []string
}

func (f *fakeExecutor) LookPath(file string) (string, error) {
	if f.bins[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found")
}

func (f *fakeExecutor) Run(dir, name string, args ...string) ([]byte, []byte, error) {
	f.calls = append(f.calls, name+" "+strings.Join(args, " "))
	if f.fail[name] {
		return nil, []byte("boom"), errors.New("exit status 1")
	}
	if fx := f.effects[name]; fx != nil {
		if err := fx(dir, args); err != nil {
			return nil, nil, err
		}
	}
	return []byte(f.outputs[name]), nil, nil
}

func caps(f *fakeExecutor) *tools.Capabilities {
	return tools.NewCapabilities(f, tools.Known...)
}

func grayImage(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = uint8(i)
	}
	return img
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	require.NoError(t, encodePNG(path, img))
}

func writeTIFF(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return tiff.Encode(f, img, nil)
}

const dumpData = `InfoBegin
InfoKey: Title
InfoValue: Sample
NumberOfPages: 42
BookmarkBegin
BookmarkTitle: Chapter 1
BookmarkLevel: 1
BookmarkPageNumber: 3
BookmarkBegin
BookmarkTitle: Caf&#233; society
BookmarkLevel: 2
BookmarkPageNumber: 5
PageMediaBegin
`

func TestParseDumpData(t *testing.T) {
	count, toc := parseDumpData(dumpData)
	assert.Equal(t, 42, count)
	assert.Equal(t, []types.TOCEntry{
		{Title: "Chapter 1", Level: 1, Page: 3},
		{Title: "Café society", Level: 2, Page: 5},
	}, toc)
}

func TestParsePdfinfo(t *testing.T) {
	assert.Equal(t, 17, parsePdfinfo("Producer: x\nPages:          17\nEncrypted: no\n"))
	assert.Equal(t, 0, parsePdfinfo("garbage"))
}

func TestFlattenBookmarks(t *testing.T) {
	bms := []pdfcpu.Bookmark{
		{Title: "Part I", PageFrom: 1, Kids: []pdfcpu.Bookmark{
			{Title: " Intro ", PageFrom: 2},
		}},
		{Title: "Part II", PageFrom: 9},
	}
	assert.Equal(t, []types.TOCEntry{
		{Title: "Part I", Level: 1, Page: 1},
		{Title: "Intro", Level: 2, Page: 2},
		{Title: "Part II", Level: 1, Page: 9},
	}, flattenBookmarks(bms, 1, nil))
}

type stubDoc struct{ count int }

func (s stubDoc) PageCount() int                { return s.count }
func (s stubDoc) TOC() []types.TOCEntry         { return nil }
func (s stubDoc) Page(int) (image.Image, error) { return nil, nil }
func (s stubDoc) Close() error                  { return nil }

type stubPrompt struct {
	n   int
	err error
}

func (s stubPrompt) PageCount() (int, error) { return s.n, s.err }

func TestResolveCount(t *testing.T) {
	tests := []struct {
		name     string
		doc      stubDoc
		override int
		prompt   Prompter
		want     int
		wantErr  bool
	}{
		{name: "override wins", doc: stubDoc{10}, override: 3, want: 3},
		{name: "document count", doc: stubDoc{10}, want: 10},
		{name: "prompted", prompt: stubPrompt{n: 7}, want: 7},
		{name: "prompt answers zero", prompt: stubPrompt{n: 0}, wantErr: true},
		{name: "prompt fails", prompt: stubPrompt{err: errors.New("eof")}, wantErr: true},
		{name: "no prompt", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveCount(tt.doc, tt.override, tt.prompt)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNoPageCount)
				assert.Zero(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLinePrompter(t *testing.T) {
	var out strings.Builder
	n, err := LinePrompter{In: strings.NewReader(" 12 \n"), Out: &out}.PageCount()
	require.NoError(t, err)
	assert.Equal(t, 12, n)
	assert.Contains(t, out.String(), "Please enter number of pages")

	_, err = LinePrompter{In: strings.NewReader("twelve\n"), Out: &out}.PageCount()
	assert.Error(t, err)
}

func TestDetectFormat(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, FormatImages, DetectFormat(dir))
	assert.Equal(t, FormatPDF, DetectFormat("book.PDF"))
	assert.Equal(t, FormatDjVu, DetectFormat("book.djvu"))
	assert.Equal(t, FormatTIFF, DetectFormat("scan.tif"))
	assert.Equal(t, FormatImages, DetectFormat("pages.txt"))
	assert.Equal(t, FormatPDF, DetectFormat("book"))
}

func TestOpen_UnknownFormat(t *testing.T) {
	_, err := Open("lrf", "book.lrf", Options{})
	assert.ErrorIs(t, err, registry.ErrNotFound)
}

func TestOpenImages_Directory(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "b.png"), grayImage(4, 2))
	writePNG(t, filepath.Join(dir, "a.png"), grayImage(3, 5))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("x"), 0o644))

	doc, err := Open(FormatImages, dir, Options{})
	require.NoError(t, err)
	defer doc.Close()

	assert.Equal(t, 2, doc.PageCount())
	img, err := doc.Page(1)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 3, 5), img.Bounds())

	img, err = doc.Page(3)
	require.NoError(t, err)
	assert.Nil(t, img)
}

func TestOpenImages_List(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "one.png"), grayImage(2, 2))
	writePNG(t, filepath.Join(dir, "two.png"), grayImage(6, 6))
	list := filepath.Join(dir, "pages.txt")
	require.NoError(t, os.WriteFile(list, []byte("# scans\ntwo.png\n\none.png\n"), 0o644))

	doc, err := OpenImages(list, Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, doc.PageCount())

	img, err := doc.Page(1)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 6, 6), img.Bounds())
}

func TestPDF_PdftkFallbackAndRender(t *testing.T) {
	work := t.TempDir()
	pdf := filepath.Join(t.TempDir(), "book.pdf")
	require.NoError(t, os.WriteFile(pdf, []byte("not really a pdf"), 0o644))

	exec := &fakeExecutor{
		bins:    map[string]bool{"pdftoppm": true, "pdftk": true},
		outputs: map[string]string{"pdftk": dumpData},
		effects: map[string]func(string, []string) error{
			"pdftoppm": func(dir string, args []string) error {
				if args[5] == "2" {
					return nil // page 2 renders nothing
				}
				return encodePNG(filepath.Join(dir, "page.png"), grayImage(8, 8))
			},
		},
	}

	doc, err := OpenPDF(pdf, Options{DPI: 150, WorkDir: work, Caps: caps(exec)})
	require.NoError(t, err)
	defer doc.Close()

	assert.Equal(t, 42, doc.PageCount())
	assert.Len(t, doc.TOC(), 2)

	img, err := doc.Page(1)
	require.NoError(t, err)
	require.NotNil(t, img)
	assert.Equal(t, image.Rect(0, 0, 8, 8), img.Bounds())
	assert.Contains(t, exec.calls, "pdftoppm -png -gray -f 1 -l 1 -r 150 -singlefile "+pdf+" page")

	img, err = doc.Page(2)
	require.NoError(t, err)
	assert.Nil(t, img, "stale page.png from page 1 must not be reused")

	require.NoError(t, doc.Close())
	assert.NoFileExists(t, filepath.Join(work, "page.png"))
}

func TestPDF_RasterizerFailureIsAnError(t *testing.T) {
	pdf := filepath.Join(t.TempDir(), "book.pdf")
	require.NoError(t, os.WriteFile(pdf, []byte("x"), 0o644))
	exec := &fakeExecutor{
		bins: map[string]bool{"pdftoppm": true},
		fail: map[string]bool{"pdftoppm": true},
	}

	doc, err := OpenPDF(pdf, Options{DPI: 300, WorkDir: t.TempDir(), Caps: caps(exec)})
	require.NoError(t, err)
	assert.Zero(t, doc.PageCount())

	_, err = doc.Page(1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pdftoppm failed")
}

func TestPDF_MissingRasterizer(t *testing.T) {
	_, err := OpenPDF("book.pdf", Options{Caps: caps(&fakeExecutor{})})
	assert.ErrorIs(t, err, tools.ErrToolMissing)

	_, err = OpenPDF("book.pdf", Options{GSCrop: true, Caps: caps(&fakeExecutor{bins: map[string]bool{"gs": true}})})
	assert.ErrorIs(t, err, tools.ErrToolMissing)
}

func TestDjVu(t *testing.T) {
	work := t.TempDir()
	exec := &fakeExecutor{
		bins:    map[string]bool{"djvused": true, "ddjvu": true},
		outputs: map[string]string{"djvused": "7\n"},
		effects: map[string]func(string, []string) error{
			"ddjvu": func(dir string, args []string) error {
				return writeTIFF(filepath.Join(dir, args[len(args)-1]), grayImage(5, 9))
			},
		},
	}

	doc, err := OpenDjVu("/books/scan.djvu", Options{DPI: 300, WorkDir: work, Caps: caps(exec)})
	require.NoError(t, err)
	assert.Equal(t, 7, doc.PageCount())

	img, err := doc.Page(4)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 5, 9), img.Bounds())
	assert.Contains(t, exec.calls, "ddjvu -format=tiff -mode=black -page=4 -scale=300 /books/scan.djvu page.tif")
}

func TestTIFF_WithoutTiffsplit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.tif")
	require.NoError(t, writeTIFF(path, grayImage(10, 20)))

	doc, err := OpenTIFF(path, Options{WorkDir: t.TempDir(), Caps: caps(&fakeExecutor{})})
	require.NoError(t, err)
	assert.Equal(t, 1, doc.PageCount())

	img, err := doc.Page(1)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 10, 20), img.Bounds())
}

func TestTIFF_Split(t *testing.T) {
	work := t.TempDir()
	exec := &fakeExecutor{
		bins: map[string]bool{"tiffsplit": true},
		effects: map[string]func(string, []string) error{
			"tiffsplit": func(dir string, args []string) error {
				for i, name := range []string{"aab", "aaa"} {
					if err := writeTIFF(filepath.Join(dir, args[1]+name+".tif"), grayImage(3+i, 3)); err != nil {
						return err
					}
				}
				return nil
			},
		},
	}

	doc, err := OpenTIFF("/scans/book.tif", Options{WorkDir: work, Caps: caps(exec)})
	require.NoError(t, err)
	assert.Equal(t, 2, doc.PageCount())

	img, err := doc.Page(1)
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx(), "pages follow tiffsplit name order")

	require.NoError(t, doc.Close())
	left, _ := filepath.Glob(filepath.Join(work, "tiff-*"))
	assert.Empty(t, left)
}

func encodePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
