// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package geometry

import (
	"fmt"
	"image"

	"github.com/pdiddy/pdfread/internal/raster"
	"github.com/pdiddy/pdfread/pkg/types"
)

// Span is a half-open row range [Start, End) of the scaled image.
type Span struct {
	Start, End int
}

// SliceSpans walks a column of the given height in steps of
// (vres - overlap) and returns the row range of every slice. Consecutive
// spans share exactly overlap rows, and the last span is clipped to height.
// A column no taller than the overlap still yields one span.
func SliceSpans(height, vres, overlap int) ([]Span, error) {
	if height <= 0 || vres <= 0 || overlap < 0 || vres <= overlap {
		return nil, fmt.Errorf("%w: height %d, vres %d, overlap %d",
			ErrInvalidGeometry, height, vres, overlap)
	}
	step := vres - overlap

	var spans []Span
	for pos := 0; pos+overlap < height; pos += step {
		spans = append(spans, Span{Start: pos, End: min(pos+vres, height)})
	}
	if len(spans) == 0 {
		spans = append(spans, Span{Start: 0, End: height})
	}
	return spans, nil
}

// LandscapeSplit scales img to a width of hres and cuts it into slices at
// most vres tall, overlapping by overlap rows, each rotated last. An image
// small enough that both fit ratios are at least 2 is fitted to the box
// instead and returned alone.
func LandscapeSplit(img image.Image, hres, vres, overlap int, rot types.Rotation) ([]image.Image, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 || hres <= 0 || vres <= 0 {
		return nil, fmt.Errorf("%w: image %dx%d, box %dx%d", ErrInvalidGeometry, w, h, hres, vres)
	}

	ratioW := float64(hres) / float64(w)
	ratioH := float64(vres) / float64(h)
	if ratioW >= 2 && ratioH >= 2 {
		return []image.Image{Fit(img, hres, vres)}, nil
	}

	height := scale(h, ratioW)
	spans, err := SliceSpans(height, vres, overlap)
	if err != nil {
		return nil, err
	}

	scaled := raster.Resize(img, hres, height)
	out := make([]image.Image, 0, len(spans))
	for _, s := range spans {
		slice := raster.Crop(scaled, image.Rect(0, s.Start, hres, s.End))
		out = append(out, raster.Rotate(slice, rot))
	}
	return out, nil
}
