// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package input

import (
	"bufio"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdiddy/pdfread/internal/raster"
	"github.com/pdiddy/pdfread/pkg/types"
)

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".bmp": true, ".tif": true, ".tiff": true, ".webp": true,
}

// imageList is a document whose pages are individual image files.
type imageList struct {
	files []string
}

// OpenImages accepts a directory (images sorted by name), a text file
// listing one image path per line, or a single image.
func OpenImages(path string, opts Options) (Document, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	var files []string
	switch {
	case fi.IsDir():
		files, err = listDir(path)
	case strings.EqualFold(filepath.Ext(path), ".txt"):
		files, err = readList(path)
	default:
		files = []string{path}
	}
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no images found in %s", path)
	}
	opts.logger().Debug("image list", "path", path, "images", len(files))
	return &imageList{files: files}, nil
}

func listDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// readList reads one path per line; blank lines and # comments are
// skipped and relative paths resolve against the list's directory.
func readList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	base := filepath.Dir(path)
	var files []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !filepath.IsAbs(line) {
			line = filepath.Join(base, line)
		}
		files = append(files, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return files, nil
}

func (l *imageList) PageCount() int        { return len(l.files) }
func (l *imageList) TOC() []types.TOCEntry { return nil }

func (l *imageList) Page(n int) (image.Image, error) {
	if n < 1 || n > len(l.files) {
		return nil, nil
	}
	return raster.Load(l.files[n-1])
}

func (l *imageList) Close() error { return nil }
