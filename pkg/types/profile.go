// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// Rotation is the quarter turn applied to split output pages.
type Rotation string

const (
	RotateNone  Rotation = "none"
	RotateLeft  Rotation = "left"  // +90 degrees (counter-clockwise)
	RotateRight Rotation = "right" // -90 degrees (clockwise)
)

// ParseRotation validates a rotation name. The empty string means none.
func ParseRotation(s string) (Rotation, error) {
	switch Rotation(s) {
	case "", RotateNone:
		return RotateNone, nil
	case RotateLeft, RotateRight:
		return Rotation(s), nil
	}
	return "", fmt.Errorf("unknown rotation %q (want none, left or right)", s)
}

// PageMode names the per-page output shape policy.
type PageMode string

const (
	ModePortrait          PageMode = "portrait"
	ModeLandscape         PageMode = "landscape"
	ModeLandscapeHalf     PageMode = "landscape-half"
	ModeLandscapeThird    PageMode = "landscape-third"
	ModePortraitTwoColumn PageMode = "portrait-two-column"
)

// PageModes lists every supported mode in display order.
var PageModes = []PageMode{
	ModePortrait,
	ModeLandscape,
	ModeLandscapeHalf,
	ModeLandscapeThird,
	ModePortraitTwoColumn,
}

// ParsePageMode validates a mode name.
func ParsePageMode(s string) (PageMode, error) {
	for _, m := range PageModes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown page mode %q", s)
}

// DeviceProfile describes one e-reader: screen size, default page shape
// and the container format it reads. Profiles are read-only once the run
// starts; overrides are applied to a copy before the pipeline is built.
type DeviceProfile struct {
	// Name is the lookup key (e.g. "reb1100").
	Name string `json:"name" yaml:"name" mapstructure:"name"`

	// HRes is the horizontal screen resolution in pixels.
	HRes int `json:"hres" yaml:"hres" mapstructure:"hres"`

	// VRes is the vertical screen resolution in pixels.
	VRes int `json:"vres" yaml:"vres" mapstructure:"vres"`

	// Mode is the default page mode.
	Mode PageMode `json:"mode" yaml:"mode" mapstructure:"mode"`

	// Rotation is applied to split slices.
	Rotation Rotation `json:"rotate" yaml:"rotate" mapstructure:"rotate"`

	// Colors is the quantization target; 0 keeps full gray depth.
	Colors int `json:"colors" yaml:"colors" mapstructure:"colors"`

	// OverlapH is the horizontal overlap between grid tiles.
	OverlapH int `json:"overlap_h" yaml:"overlap_h" mapstructure:"overlap_h"`

	// OverlapV is the vertical overlap between consecutive slices.
	OverlapV int `json:"overlap_v" yaml:"overlap_v" mapstructure:"overlap_v"`

	// Format is the output container key (e.g. "rb", "lrf", "epub").
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}
