// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mode turns one filtered page image into the ordered images that
// are persisted for it. Each page mode is a Strategy built from the
// pipeline configuration.
package mode

import (
	"image"

	"github.com/pdiddy/pdfread/internal/geometry"
	"github.com/pdiddy/pdfread/internal/registry"
	"github.com/pdiddy/pdfread/pkg/types"
)

// Strategy produces the output images for one logical page.
type Strategy interface {
	// Name returns the mode key.
	Name() types.PageMode

	// Apply returns the images for img in reading order.
	Apply(img image.Image) ([]image.Image, error)
}

// Params carries the device geometry a strategy needs.
type Params struct {
	HRes, VRes         int
	OverlapH, OverlapV int
	Rotation           types.Rotation
}

// ParamsFrom extracts Params from a pipeline configuration.
func ParamsFrom(cfg types.PipelineConfig) Params {
	return Params{
		HRes:     cfg.HRes,
		VRes:     cfg.VRes,
		OverlapH: cfg.OverlapH,
		OverlapV: cfg.OverlapV,
		Rotation: cfg.Rotation,
	}
}

// Factory builds a strategy.
type Factory func(Params) Strategy

// Registry returns the registry of every page mode.
func Registry() *registry.Registry[Factory] {
	r := registry.New[Factory]("page mode")
	r.MustRegister(string(types.ModePortrait), newPortrait)
	r.MustRegister(string(types.ModeLandscape), newLandscape)
	r.MustRegister(string(types.ModeLandscapeHalf), gridMode(types.ModeLandscapeHalf, 1, 2, geometry.RowMajor))
	r.MustRegister(string(types.ModeLandscapeThird), gridMode(types.ModeLandscapeThird, 1, 3, geometry.RowMajor))
	r.MustRegister(string(types.ModePortraitTwoColumn), gridMode(types.ModePortraitTwoColumn, 2, 2, geometry.ColumnMajor))
	return r
}

// New builds the strategy registered under m.
func New(m types.PageMode, p Params) (Strategy, error) {
	f, err := Registry().Get(string(m))
	if err != nil {
		return nil, err
	}
	return f(p), nil
}

type portrait struct{ p Params }

func newPortrait(p Params) Strategy { return portrait{p: p} }

func (portrait) Name() types.PageMode { return types.ModePortrait }

func (s portrait) Apply(img image.Image) ([]image.Image, error) {
	return []image.Image{geometry.Fit(img, s.p.HRes, s.p.VRes)}, nil
}

// landscape lays the page sideways: slices are cut to the device's
// rotated box (VRes wide, HRes tall) and then turned by the rotation.
type landscape struct{ p Params }

func newLandscape(p Params) Strategy { return landscape{p: p} }

func (landscape) Name() types.PageMode { return types.ModeLandscape }

func (s landscape) Apply(img image.Image) ([]image.Image, error) {
	return geometry.LandscapeSplit(img, s.p.VRes, s.p.HRes, s.p.OverlapV, s.p.Rotation)
}

type grid struct {
	name types.PageMode
	g    geometry.Grid
	rot  types.Rotation
}

// gridMode cuts a fixed rows x cols grid. With a rotation the tiles are
// cut to the sideways box so they fit the screen once turned.
func gridMode(name types.PageMode, rows, cols int, order geometry.Order) Factory {
	return func(p Params) Strategy {
		tw, th := p.HRes, p.VRes
		if p.Rotation != types.RotateNone && p.Rotation != "" {
			tw, th = p.VRes, p.HRes
		}
		return grid{
			name: name,
			g: geometry.Grid{
				Rows:     rows,
				Cols:     cols,
				TileW:    tw,
				TileH:    th,
				OverlapH: p.OverlapH,
				OverlapV: p.OverlapV,
				Order:    order,
			},
			rot: p.Rotation,
		}
	}
}

func (s grid) Name() types.PageMode { return s.name }

func (s grid) Apply(img image.Image) ([]image.Image, error) {
	return geometry.GridSplit(img, s.g, s.rot)
}
