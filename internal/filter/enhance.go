// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package filter

import (
	"errors"
	"fmt"
	"image"

	"github.com/pdiddy/pdfread/internal/raster"
)

// ErrInvalidLevel is returned for an enhancement level outside 1..9.
var ErrInvalidLevel = errors.New("enhancement level must be between 1 and 9")

// Kernel is the 3x3 edge enhancement kernel for one level, after the
// dot-diffusion sharpening of Jarvis, Judice and Ninke as described by
// Knuth: out = (p - phi*mean) / (1 - phi).
type Kernel struct {
	// Weights are the raw coefficients in row-major order: every
	// neighbor is -phi/9 and the center is 1 - phi/9.
	Weights [9]float64

	// Scale is 1 - phi. The convolution sum is divided by it.
	Scale float64

	// Offset is added after scaling so truncation rounds to nearest.
	Offset float64
}

// NewKernel builds the kernel for level 1..9. Any other level is rejected.
func NewKernel(level int) (Kernel, error) {
	if level < 1 || level > 9 {
		return Kernel{}, fmt.Errorf("%w: got %d", ErrInvalidLevel, level)
	}
	phi := float64(level) / 10
	x := -phi / 9

	var k Kernel
	for i := range k.Weights {
		k.Weights[i] = x
	}
	k.Weights[4] = 1 + x
	k.Scale = 1 - phi
	k.Offset = 0.5
	return k, nil
}

// Effective returns the weights after division by Scale. They sum to 1,
// so flat regions pass through unchanged.
func (k Kernel) Effective() [9]float64 {
	var eff [9]float64
	for i, w := range k.Weights {
		eff[i] = w / k.Scale
	}
	return eff
}

// Apply convolves img with the kernel. Border pixels are copied through.
func (k Kernel) Apply(img image.Image) image.Image {
	src := raster.Normalize(img)
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := raster.New(src, w, h)

	sp, stride, bpp, n := channels(src)
	dp, _, _, _ := channels(dst)
	copy(dp, sp)
	if w < 3 || h < 3 {
		return dst
	}

	eff := k.Effective()
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			for c := 0; c < n; c++ {
				sum := k.Offset
				i := 0
				for dy := -1; dy <= 1; dy++ {
					row := (y+dy)*stride + c
					for dx := -1; dx <= 1; dx++ {
						sum += eff[i] * float64(sp[row+(x+dx)*bpp])
						i++
					}
				}
				dp[y*stride+x*bpp+c] = clip8(sum)
			}
		}
	}
	return dst
}

func clip8(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v)
}

// Enhance sharpens img at the given level.
func Enhance(img image.Image, level int) (image.Image, error) {
	k, err := NewKernel(level)
	if err != nil {
		return nil, err
	}
	return k.Apply(img), nil
}
