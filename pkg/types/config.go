// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
)

// Defaults applied when neither a flag, the config file, nor the profile
// supplies a value.
const (
	DefaultProfile      = "reb1100"
	DefaultInputFormat  = "pdf"
	DefaultDPI          = 300
	DefaultEnhanceLevel = 5
	DefaultCropPercent  = 2.0
	DefaultOverlap      = 20
)

// ErrInvalidConfig is returned by PipelineConfig.Validate.
var ErrInvalidConfig = errors.New("invalid pipeline configuration")

// PipelineConfig is the frozen set of enabled stages and their parameters.
// It is built once from a DeviceProfile plus overrides and shared
// read-only by every page iteration.
type PipelineConfig struct {
	// Crop enables whitespace cropping.
	Crop bool `json:"crop" yaml:"crop"`

	// CropPercent is the axial probe window as a percentage of the axis
	// length. Zero selects the plain bounding-box crop.
	CropPercent float64 `json:"crop_percent" yaml:"crop_percent"`

	// Dilate enables the 3x3 minimum filter.
	Dilate bool `json:"dilate" yaml:"dilate"`

	// EnhanceLevel is the edge enhancement level (1-9). Zero disables it.
	EnhanceLevel int `json:"enhance_level" yaml:"enhance_level"`

	// Mode is the page-shape policy applied after filtering.
	Mode PageMode `json:"mode" yaml:"mode"`

	// HRes and VRes are the device resolution in pixels.
	HRes int `json:"hres" yaml:"hres"`
	VRes int `json:"vres" yaml:"vres"`

	// OverlapH and OverlapV are the duplicated pixels between split pages.
	OverlapH int `json:"overlap_h" yaml:"overlap_h"`
	OverlapV int `json:"overlap_v" yaml:"overlap_v"`

	// Rotation is applied to each split slice.
	Rotation Rotation `json:"rotation" yaml:"rotation"`

	// Colors is the quantization target. Values below 2 keep full depth.
	Colors int `json:"colors" yaml:"colors"`

	// Optimize runs a lossless recompression pass on every persisted image.
	Optimize bool `json:"optimize" yaml:"optimize"`
}

// NewPipelineConfig returns the default stage set for a profile.
func NewPipelineConfig(p DeviceProfile) PipelineConfig {
	return PipelineConfig{
		Crop:         true,
		CropPercent:  DefaultCropPercent,
		Dilate:       true,
		EnhanceLevel: DefaultEnhanceLevel,
		Mode:         p.Mode,
		HRes:         p.HRes,
		VRes:         p.VRes,
		OverlapH:     p.OverlapH,
		OverlapV:     p.OverlapV,
		Rotation:     p.Rotation,
		Colors:       p.Colors,
	}
}

// Validate reports the first parameter that would make a stage fail.
func (c PipelineConfig) Validate() error {
	switch {
	case c.HRes <= 0 || c.VRes <= 0:
		return fmt.Errorf("%w: resolution %dx%d", ErrInvalidConfig, c.HRes, c.VRes)
	case c.OverlapH < 0 || c.OverlapV < 0:
		return fmt.Errorf("%w: negative overlap", ErrInvalidConfig)
	case c.OverlapH >= min(c.HRes, c.VRes) || c.OverlapV >= min(c.HRes, c.VRes):
		return fmt.Errorf("%w: overlap %d/%d not below resolution %dx%d",
			ErrInvalidConfig, c.OverlapH, c.OverlapV, c.HRes, c.VRes)
	case c.CropPercent < 0 || c.CropPercent > 100:
		return fmt.Errorf("%w: crop percent %.1f", ErrInvalidConfig, c.CropPercent)
	case c.EnhanceLevel < 0 || c.EnhanceLevel > 9:
		return fmt.Errorf("%w: enhance level %d", ErrInvalidConfig, c.EnhanceLevel)
	case c.Colors < 0 || c.Colors > 256:
		return fmt.Errorf("%w: colors %d", ErrInvalidConfig, c.Colors)
	}
	if _, err := ParseRotation(string(c.Rotation)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := ParsePageMode(string(c.Mode)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
