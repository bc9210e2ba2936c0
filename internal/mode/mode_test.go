// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mode

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pdfread/internal/registry"
	"github.com/pdiddy/pdfread/pkg/types"
)

var reb1100 = Params{HRes: 315, VRes: 472, OverlapH: 20, OverlapV: 20, Rotation: types.RotateNone}

func page(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 128
	}
	return img
}

func TestRegistry_AllModes(t *testing.T) {
	names := Registry().Names()
	for _, m := range types.PageModes {
		assert.Contains(t, names, string(m))
	}
}

func TestNew_Unknown(t *testing.T) {
	_, err := New("sideways", reb1100)
	assert.ErrorIs(t, err, registry.ErrNotFound)
}

func TestStrategies(t *testing.T) {
	tests := []struct {
		name      string
		mode      types.PageMode
		params    Params
		src       image.Rectangle
		wantCount int
		wantFirst image.Rectangle
	}{
		{
			name:      "portrait fits one page",
			mode:      types.ModePortrait,
			params:    reb1100,
			src:       image.Rect(0, 0, 2000, 3000),
			wantCount: 1,
			wantFirst: image.Rect(0, 0, 315, 472),
		},
		{
			name:      "landscape slices sideways box",
			mode:      types.ModeLandscape,
			params:    reb1100,
			src:       image.Rect(0, 0, 1000, 1000),
			wantCount: 2,
			wantFirst: image.Rect(0, 0, 472, 315),
		},
		{
			name: "landscape rotated left",
			mode: types.ModeLandscape,
			params: Params{HRes: 315, VRes: 472, OverlapV: 20,
				Rotation: types.RotateLeft},
			src:       image.Rect(0, 0, 1000, 1000),
			wantCount: 2,
			wantFirst: image.Rect(0, 0, 315, 472),
		},
		{
			name:      "landscape half",
			mode:      types.ModeLandscapeHalf,
			params:    reb1100,
			src:       image.Rect(0, 0, 3000, 2000),
			wantCount: 2,
		},
		{
			name:      "landscape third",
			mode:      types.ModeLandscapeThird,
			params:    reb1100,
			src:       image.Rect(0, 0, 3000, 1500),
			wantCount: 3,
		},
		{
			name:      "portrait two column",
			mode:      types.ModePortraitTwoColumn,
			params:    reb1100,
			src:       image.Rect(0, 0, 2000, 3000),
			wantCount: 4,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.mode, tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.mode, s.Name())

			out, err := s.Apply(page(tt.src.Dx(), tt.src.Dy()))
			require.NoError(t, err)
			require.Len(t, out, tt.wantCount)
			if !tt.wantFirst.Empty() {
				assert.Equal(t, tt.wantFirst, out[0].Bounds())
			}
			for _, img := range out {
				b := img.Bounds()
				if tt.params.Rotation == types.RotateNone && tt.mode != types.ModeLandscape {
					assert.LessOrEqual(t, b.Dx(), tt.params.HRes)
					assert.LessOrEqual(t, b.Dy(), tt.params.VRes)
				}
			}
		})
	}
}
