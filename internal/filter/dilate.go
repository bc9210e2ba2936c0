// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package filter holds the neighborhood filters applied to a cropped page:
// dilation, which thickens dark strokes before downscaling, and edge
// enhancement.
package filter

import (
	"image"

	"github.com/pdiddy/pdfread/internal/raster"
)

// channels returns the pixel buffer, stride and the number of color
// channels to filter. Alpha in RGBA buffers is left alone.
func channels(img image.Image) (pix []uint8, stride, bpp, n int) {
	switch m := img.(type) {
	case *image.Gray:
		return m.Pix, m.Stride, 1, 1
	case *image.RGBA:
		return m.Pix, m.Stride, 4, 3
	}
	panic("filter: image not normalized")
}

// Dilate replaces every sample with the minimum of its 3x3 neighborhood,
// replicating the border. Dark ink on a light page grows by one pixel in
// every direction.
func Dilate(img image.Image) image.Image {
	src := raster.Normalize(img)
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := raster.New(src, w, h)
	if w == 0 || h == 0 {
		return dst
	}

	sp, stride, bpp, n := channels(src)
	dp, _, _, _ := channels(dst)
	copy(dp, sp)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			for c := 0; c < n; c++ {
				m := uint8(0xff)
				for dy := -1; dy <= 1; dy++ {
					yy := min(max(y+dy, 0), h-1)
					for dx := -1; dx <= 1; dx++ {
						xx := min(max(x+dx, 0), w-1)
						m = min(m, sp[yy*stride+xx*bpp+c])
					}
				}
				dp[y*stride+x*bpp+c] = m
			}
		}
	}
	return dst
}
