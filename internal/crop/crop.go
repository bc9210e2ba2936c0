// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package crop removes blank margins from page images. A pixel counts as
// ink when it is not pure white in any channel, which is the same as being
// non-zero after inversion.
package crop

import (
	"image"

	"golang.org/x/image/draw"

	"github.com/pdiddy/pdfread/internal/raster"
)

// Axis selects the direction a content profile is taken along.
type Axis int

const (
	// Horizontal scans columns left to right.
	Horizontal Axis = iota
	// Vertical scans rows top to bottom.
	Vertical
)

func isInk(img image.Image, x, y int) bool {
	switch m := img.(type) {
	case *image.Gray:
		return m.Pix[m.PixOffset(x, y)] != 0xff
	case *image.RGBA:
		i := m.PixOffset(x, y)
		return m.Pix[i] != 0xff || m.Pix[i+1] != 0xff || m.Pix[i+2] != 0xff
	}
	r, g, b, _ := img.At(x, y).RGBA()
	return r != 0xffff || g != 0xffff || b != 0xffff
}

// BoundingBox returns the smallest rectangle holding every ink pixel, and
// false when the image has none.
func BoundingBox(img image.Image) (image.Rectangle, bool) {
	b := img.Bounds()
	box := image.Rectangle{Min: b.Max, Max: b.Min}
	found := false
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if !isInk(img, x, y) {
				continue
			}
			found = true
			box.Min.X = min(box.Min.X, x)
			box.Min.Y = min(box.Min.Y, y)
			box.Max.X = max(box.Max.X, x+1)
			box.Max.Y = max(box.Max.Y, y+1)
		}
	}
	if !found {
		return image.Rectangle{}, false
	}
	return box, true
}

// Trim crops img to its ink bounding box. It returns nil for a blank page.
func Trim(img image.Image) image.Image {
	img = raster.Normalize(img)
	box, ok := BoundingBox(img)
	if !ok {
		return nil
	}
	return raster.Crop(img, box)
}

// Crop trims the outer margins and then squeezes internal blank bands,
// columns first and rows second. A percent of zero or less only trims.
// It returns nil for a blank page.
func Crop(img image.Image, percent float64) image.Image {
	trimmed := Trim(img)
	if trimmed == nil || percent <= 0 {
		return trimmed
	}
	out := Squeeze(trimmed, Horizontal, percent)
	return Squeeze(out, Vertical, percent)
}

// Window returns the probe window and stride for an axis of length n.
func Window(n int, percent float64) (window, stride int) {
	window = clamp(int(float64(n)*percent/100), 1, 100)
	stride = clamp(window/10, 1, 10)
	return window, stride
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

// profile reports, for each column (Horizontal) or row (Vertical), whether
// it holds any ink.
func profile(img image.Image, axis Axis) []bool {
	b := img.Bounds()
	n, m := b.Dx(), b.Dy()
	if axis == Vertical {
		n, m = m, n
	}
	ink := make([]bool, n)
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			x, y := b.Min.X+i, b.Min.Y+j
			if axis == Vertical {
				x, y = b.Min.X+j, b.Min.Y+i
			}
			if isInk(img, x, y) {
				ink[i] = true
				break
			}
		}
	}
	return ink
}

// ContentRuns probes an ink profile with a sliding window and returns the
// half-open ranges left after every fully blank window is removed.
func ContentRuns(ink []bool, window, stride int) [][2]int {
	n := len(ink)
	prefix := make([]int, n+1)
	for i, v := range ink {
		prefix[i+1] = prefix[i]
		if v {
			prefix[i+1]++
		}
	}

	blank := make([]bool, n)
	for p := 0; p+window <= n; p += stride {
		if prefix[p+window]-prefix[p] == 0 {
			for i := p; i < p+window; i++ {
				blank[i] = true
			}
		}
	}

	var runs [][2]int
	start := -1
	for i := 0; i <= n; i++ {
		if i < n && !blank[i] {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			runs = append(runs, [2]int{start, i})
			start = -1
		}
	}
	return runs
}

// Squeeze removes blank bands along one axis by concatenating the content
// runs. An axis that is a single run is returned unchanged.
func Squeeze(img image.Image, axis Axis, percent float64) image.Image {
	img = raster.Normalize(img)
	ink := profile(img, axis)
	window, stride := Window(len(ink), percent)
	runs := ContentRuns(ink, window, stride)
	if len(runs) == 0 || (len(runs) == 1 && runs[0] == [2]int{0, len(ink)}) {
		return img
	}

	b := img.Bounds()
	total := 0
	for _, r := range runs {
		total += r[1] - r[0]
	}

	var dst draw.Image
	if axis == Horizontal {
		dst = raster.New(img, total, b.Dy()).(draw.Image)
	} else {
		dst = raster.New(img, b.Dx(), total).(draw.Image)
	}

	at := 0
	for _, r := range runs {
		var src image.Rectangle
		var dp image.Point
		if axis == Horizontal {
			src = image.Rect(r[0], 0, r[1], b.Dy())
			dp = image.Pt(at, 0)
		} else {
			src = image.Rect(0, r[0], b.Dx(), r[1])
			dp = image.Pt(0, at)
		}
		draw.Draw(dst, image.Rectangle{Min: dp, Max: dp.Add(src.Size())}, img, src.Min, draw.Src)
		at += r[1] - r[0]
	}
	return dst
}
