// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package crop

import (
	"image"
	"image/color"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func white(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	return img
}

func fill(img *image.Gray, r image.Rectangle, v uint8) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
}

func inkCount(img image.Image) int {
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if isInk(img, x, y) {
				n++
			}
		}
	}
	return n
}

func TestBoundingBox(t *testing.T) {
	img := white(100, 80)
	fill(img, image.Rect(10, 30, 20, 40), 0)
	fill(img, image.Rect(50, 5, 51, 6), 200)

	box, ok := BoundingBox(img)
	require.True(t, ok)
	assert.Equal(t, image.Rect(10, 5, 51, 40), box)
}

func TestBlankPage(t *testing.T) {
	_, ok := BoundingBox(white(40, 40))
	assert.False(t, ok)
	assert.Nil(t, Trim(white(40, 40)))
	assert.Nil(t, Crop(white(40, 40), 2.0))
}

func TestTrim(t *testing.T) {
	img := white(100, 100)
	fill(img, image.Rect(10, 30, 20, 40), 0)

	out := Trim(img)
	require.NotNil(t, out)
	assert.Equal(t, image.Rect(0, 0, 10, 10), out.Bounds())
	assert.Equal(t, 100, inkCount(out))
}

func TestTrim_RGB(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 20, 20))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.Set(5, 7, color.RGBA{R: 0xff, G: 0xff, B: 0x00, A: 0xff})

	out := Trim(img)
	require.NotNil(t, out)
	assert.Equal(t, image.Rect(0, 0, 1, 1), out.Bounds())
}

func TestWindow(t *testing.T) {
	tests := []struct {
		n          int
		percent    float64
		wantWindow int
		wantStride int
	}{
		{3300, 2.0, 66, 6},
		{10000, 2.0, 100, 10},
		{10, 2.0, 1, 1},
		{500, 10, 50, 5},
	}
	for _, tt := range tests {
		w, s := Window(tt.n, tt.percent)
		assert.Equal(t, tt.wantWindow, w, "window for %d", tt.n)
		assert.Equal(t, tt.wantStride, s, "stride for %d", tt.n)
	}
}

func TestContentRuns(t *testing.T) {
	ink := make([]bool, 30)
	for _, i := range []int{0, 1, 2, 20, 21, 29} {
		ink[i] = true
	}

	runs := ContentRuns(ink, 5, 1)
	assert.Equal(t, [][2]int{{0, 3}, {20, 22}, {29, 30}}, runs)

	// A gap narrower than the window survives.
	runs = ContentRuns(ink, 10, 1)
	assert.Equal(t, [][2]int{{0, 3}, {20, 30}}, runs)
}

func TestSqueeze_Columns(t *testing.T) {
	img := white(70, 10)
	fill(img, image.Rect(0, 0, 10, 10), 0)
	fill(img, image.Rect(60, 0, 70, 10), 0)

	out := Squeeze(img, Horizontal, 10)
	assert.Equal(t, image.Rect(0, 0, 20, 10), out.Bounds())
	assert.Equal(t, 200, inkCount(out))
}

func TestSqueeze_SingleRunIsNoop(t *testing.T) {
	img := white(50, 50)
	fill(img, image.Rect(0, 0, 50, 50), 10)

	out := Squeeze(img, Vertical, 2.0)
	assert.Same(t, image.Image(img), out)
}

func TestCrop_Idempotent(t *testing.T) {
	img := white(200, 300)
	fill(img, image.Rect(20, 40, 180, 260), 30)

	once := Crop(img, 2.0)
	require.NotNil(t, once)
	twice := Crop(once, 2.0)
	require.NotNil(t, twice)
	assert.Equal(t, once.Bounds(), twice.Bounds())
	assert.Equal(t, once.(*image.Gray).Pix, twice.(*image.Gray).Pix)
}

func TestCrop_NeverExceedsBoundingBoxAndKeepsInk(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 40; i++ {
		img := white(80+rng.Intn(200), 80+rng.Intn(200))
		b := img.Bounds()
		for j := 0; j < 1+rng.Intn(6); j++ {
			x, y := rng.Intn(b.Dx()), rng.Intn(b.Dy())
			fill(img, image.Rect(x, y, x+1+rng.Intn(15), y+1+rng.Intn(15)).Intersect(b), uint8(rng.Intn(200)))
		}
		for _, percent := range []float64{0.5, 2, 10, 40} {
			trimmed := Trim(img)
			out := Crop(img, percent)
			require.NotNil(t, out)

			assert.LessOrEqual(t, out.Bounds().Dx(), trimmed.Bounds().Dx())
			assert.LessOrEqual(t, out.Bounds().Dy(), trimmed.Bounds().Dy())
			assert.Equal(t, inkCount(img), inkCount(out), "ink lost at %.1f%%", percent)
		}
	}
}
