// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package raster holds the pixel-level helpers shared by the page stages.
// Every stage works on *image.Gray or *image.RGBA anchored at the origin;
// Normalize converts anything else. Helpers never modify their input.
package raster

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/pdiddy/pdfread/pkg/types"
)

// Normalize returns img as an origin-anchored, tightly packed *image.Gray
// when its color model is gray, and as *image.RGBA otherwise.
func Normalize(img image.Image) image.Image {
	b := img.Bounds()
	switch src := img.(type) {
	case *image.Gray:
		if b.Min == (image.Point{}) && src.Stride == b.Dx() {
			return src
		}
	case *image.RGBA:
		if b.Min == (image.Point{}) && src.Stride == 4*b.Dx() {
			return src
		}
	}

	r := image.Rect(0, 0, b.Dx(), b.Dy())
	if IsGray(img) {
		dst := image.NewGray(r)
		draw.Draw(dst, r, img, b.Min, draw.Src)
		return dst
	}
	dst := image.NewRGBA(r)
	draw.Draw(dst, r, img, b.Min, draw.Src)
	return dst
}

// IsGray reports whether img carries a single luminance channel.
func IsGray(img image.Image) bool {
	switch m := img.ColorModel(); m {
	case color.GrayModel, color.Gray16Model:
		return true
	default:
		p, ok := m.(color.Palette)
		if !ok {
			return false
		}
		for _, c := range p {
			r, g, b, _ := c.RGBA()
			if r != g || g != b {
				return false
			}
		}
		return true
	}
}

// New allocates a blank image of the same kind as like.
func New(like image.Image, w, h int) image.Image {
	r := image.Rect(0, 0, w, h)
	if _, ok := like.(*image.Gray); ok {
		return image.NewGray(r)
	}
	return image.NewRGBA(r)
}

// Crop copies the rectangle r of img into a new origin-anchored image.
func Crop(img image.Image, r image.Rectangle) image.Image {
	r = r.Intersect(img.Bounds())
	dst := New(img, r.Dx(), r.Dy())
	draw.Draw(dst.(draw.Image), dst.Bounds(), img, r.Min, draw.Src)
	return dst
}

// Resize scales img to w x h with a Catmull-Rom filter.
func Resize(img image.Image, w, h int) image.Image {
	b := img.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return img
	}
	dst := New(img, w, h)
	draw.CatmullRom.Scale(dst.(draw.Image), dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// Rotate turns img by a quarter turn. RotateLeft is counter-clockwise.
func Rotate(img image.Image, rot types.Rotation) image.Image {
	if rot == types.RotateNone || rot == "" {
		return img
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := New(img, h, w).(draw.Image)
	for y := 0; y < w; y++ {
		for x := 0; x < h; x++ {
			var sx, sy int
			if rot == types.RotateLeft {
				sx, sy = w-1-y, x
			} else {
				sx, sy = y, h-1-x
			}
			dst.Set(x, y, img.At(b.Min.X+sx, b.Min.Y+sy))
		}
	}
	return dst
}

// Luma returns the 8-bit luminance of the pixel at (x, y) using the
// ITU-R 601-2 weights.
func Luma(img image.Image, x, y int) uint8 {
	switch m := img.(type) {
	case *image.Gray:
		return m.Pix[m.PixOffset(x, y)]
	case *image.RGBA:
		i := m.PixOffset(x, y)
		r, g, b := int(m.Pix[i]), int(m.Pix[i+1]), int(m.Pix[i+2])
		return uint8((r*299 + g*587 + b*114) / 1000)
	}
	return color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y
}

// Histogram counts pixels per luminance value.
func Histogram(img image.Image) [256]int {
	var hist [256]int
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			hist[Luma(img, x, y)]++
		}
	}
	return hist
}

// Load decodes an image file of any registered format and normalizes it.
func Load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return Normalize(img), nil
}

// SavePNG writes img to path through a temporary file in the same
// directory, so a reader never sees a partial file.
func SavePNG(path string, img image.Image) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".page-*.png")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if err := png.Encode(tmp, img); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming to %s: %w", path, err)
	}
	return nil
}
