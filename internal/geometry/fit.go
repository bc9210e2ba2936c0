// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package geometry implements the device-fitting size math: fit-to-device,
// landscape splitting with overlap, and fixed NxM grid splitting.
package geometry

import (
	"errors"
	"image"
	"math"

	"github.com/pdiddy/pdfread/internal/raster"
)

// ErrInvalidGeometry is returned for non-positive sizes or an overlap that
// leaves no forward progress between slices.
var ErrInvalidGeometry = errors.New("invalid geometry")

// epsilon absorbs float error in w*ratio so an exact fit does not round up
// to one pixel past the device box.
const epsilon = 1e-9

// scale returns ceil(n*ratio), at least 1.
func scale(n int, ratio float64) int {
	v := int(math.Ceil(float64(n)*ratio - epsilon))
	if v < 1 {
		return 1
	}
	return v
}

// FitSize returns the size of a w x h image scaled, aspect preserved, to
// the largest size that fits inside hres x vres.
func FitSize(w, h, hres, vres int) (int, int) {
	ratio := math.Min(float64(hres)/float64(w), float64(vres)/float64(h))
	return min(scale(w, ratio), hres), min(scale(h, ratio), vres)
}

// Fit resizes img to fit the device box. The result has at least one side
// equal to the box and never exceeds it.
func Fit(img image.Image, hres, vres int) image.Image {
	b := img.Bounds()
	w, h := FitSize(b.Dx(), b.Dy(), hres, vres)
	return raster.Resize(img, w, h)
}
