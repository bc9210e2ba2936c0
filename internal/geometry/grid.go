// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package geometry

import (
	"fmt"
	"image"
	"math"

	"github.com/pdiddy/pdfread/internal/raster"
	"github.com/pdiddy/pdfread/pkg/types"
)

// Order is the sequence in which grid tiles are emitted.
type Order int

const (
	// RowMajor emits left to right, then top to bottom.
	RowMajor Order = iota
	// ColumnMajor emits top to bottom, then left to right, which is the
	// reading order of a two-column page.
	ColumnMajor
)

// Grid describes a fixed NxM split.
type Grid struct {
	Rows, Cols int

	// TileW and TileH are the target tile size.
	TileW, TileH int

	// OverlapH is shared between horizontally adjacent tiles, OverlapV
	// between vertically adjacent ones.
	OverlapH, OverlapV int

	Order Order
}

func (g Grid) validate() error {
	if g.Rows < 1 || g.Cols < 1 || g.TileW <= g.OverlapH || g.TileH <= g.OverlapV ||
		g.OverlapH < 0 || g.OverlapV < 0 {
		return fmt.Errorf("%w: grid %dx%d tile %dx%d overlap %d/%d", ErrInvalidGeometry,
			g.Rows, g.Cols, g.TileW, g.TileH, g.OverlapH, g.OverlapV)
	}
	return nil
}

// Cover returns the size spanned by all tiles once overlaps are removed.
func (g Grid) Cover() (int, int) {
	return g.Cols*g.TileW - (g.Cols-1)*g.OverlapH, g.Rows*g.TileH - (g.Rows-1)*g.OverlapV
}

// Scale returns the single ratio that makes a w x h image fit the grid
// cover without distortion.
func (g Grid) Scale(w, h int) float64 {
	cw, ch := g.Cover()
	return math.Min(float64(cw)/float64(w), float64(ch)/float64(h))
}

// Tiles returns the tile rectangles for an image of size w x h, offset by
// index*(tile-overlap) on each axis and clipped to the image. Empty tiles
// are omitted.
func (g Grid) Tiles(w, h int) []image.Rectangle {
	bounds := image.Rect(0, 0, w, h)
	stepX, stepY := g.TileW-g.OverlapH, g.TileH-g.OverlapV

	tile := func(r, c int) image.Rectangle {
		x0, y0 := c*stepX, r*stepY
		return image.Rect(x0, y0, x0+g.TileW, y0+g.TileH).Intersect(bounds)
	}

	var out []image.Rectangle
	add := func(r image.Rectangle) {
		if !r.Empty() {
			out = append(out, r)
		}
	}
	if g.Order == ColumnMajor {
		for c := 0; c < g.Cols; c++ {
			for r := 0; r < g.Rows; r++ {
				add(tile(r, c))
			}
		}
		return out
	}
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			add(tile(r, c))
		}
	}
	return out
}

// GridSplit resizes img once so the grid covers it and returns the tiles,
// each rotated by rot.
func GridSplit(img image.Image, g Grid, rot types.Rotation) ([]image.Image, error) {
	if err := g.validate(); err != nil {
		return nil, err
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("%w: empty image", ErrInvalidGeometry)
	}

	cw, ch := g.Cover()
	ratio := g.Scale(b.Dx(), b.Dy())
	w, h := min(scale(b.Dx(), ratio), cw), min(scale(b.Dy(), ratio), ch)
	scaled := raster.Resize(img, w, h)

	rects := g.Tiles(w, h)
	out := make([]image.Image, 0, len(rects))
	for _, r := range rects {
		out = append(out, raster.Rotate(raster.Crop(scaled, r), rot))
	}
	return out, nil
}
