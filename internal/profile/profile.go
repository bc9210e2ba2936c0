// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package profile holds the device profile table and layers explicit
// overrides on top of a selected profile.
package profile

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pdfread/pkg/types"
)

// ErrUnknownProfile is returned by Lookup for a name not in the table.
var ErrUnknownProfile = errors.New("unknown profile")

func device(name string, hres, vres int, m types.PageMode, rot types.Rotation, colors int, format string) types.DeviceProfile {
	return types.DeviceProfile{
		Name:     name,
		HRes:     hres,
		VRes:     vres,
		Mode:     m,
		Rotation: rot,
		Colors:   colors,
		OverlapH: types.DefaultOverlap,
		OverlapV: types.DefaultOverlap,
		Format:   format,
	}
}

// builtin is the shipped profile table.
var builtin = []types.DeviceProfile{
	device("reb1100", 315, 472, types.ModeLandscape, types.RotateNone, 0, "rb"),
	device("eb1150", 315, 445, types.ModeLandscape, types.RotateLeft, 16, "imp2"),
	device("reb1200", 455, 595, types.ModeLandscape, types.RotateLeft, 16, "imp1"),
	device("reb1200-p", 455, 595, types.ModePortrait, types.RotateNone, 16, "imp1"),
	device("prs500-l", 565, 754, types.ModeLandscape, types.RotateRight, 4, "lrf"),
	device("prs500", 565, 754, types.ModePortrait, types.RotateNone, 4, "lrf"),
}

// Table is a named set of device profiles.
type Table struct {
	byName map[string]types.DeviceProfile
}

// Builtin returns a table holding the shipped profiles.
func Builtin() *Table {
	t := &Table{byName: make(map[string]types.DeviceProfile, len(builtin))}
	for _, p := range builtin {
		t.byName[p.Name] = p
	}
	return t
}

// Merge adds custom profiles, replacing built-in ones of the same name.
// Map keys name the profiles; unset overlaps default to DefaultOverlap and
// an unset mode or rotation to portrait and none.
func (t *Table) Merge(custom map[string]types.DeviceProfile) error {
	for name, p := range custom {
		p.Name = name
		if p.Mode == "" {
			p.Mode = types.ModePortrait
		}
		if p.Rotation == "" {
			p.Rotation = types.RotateNone
		}
		if p.OverlapH == 0 && p.OverlapV == 0 {
			p.OverlapH, p.OverlapV = types.DefaultOverlap, types.DefaultOverlap
		}
		if err := validate(p); err != nil {
			return fmt.Errorf("profile %s: %w", name, err)
		}
		t.byName[name] = p
	}
	return nil
}

func validate(p types.DeviceProfile) error {
	if p.HRes <= 0 || p.VRes <= 0 {
		return fmt.Errorf("resolution %dx%d must be positive", p.HRes, p.VRes)
	}
	if _, err := types.ParsePageMode(string(p.Mode)); err != nil {
		return err
	}
	if _, err := types.ParseRotation(string(p.Rotation)); err != nil {
		return err
	}
	return nil
}

// Names returns the profile names, sorted.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.byName))
	for n := range t.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// All returns every profile sorted by name.
func (t *Table) All() []types.DeviceProfile {
	out := make([]types.DeviceProfile, 0, len(t.byName))
	for _, n := range t.Names() {
		out = append(out, t.byName[n])
	}
	return out
}

// Lookup returns the profile called name.
func (t *Table) Lookup(name string) (types.DeviceProfile, error) {
	p, ok := t.byName[name]
	if !ok {
		return types.DeviceProfile{}, fmt.Errorf("%w %q (known: %s)", ErrUnknownProfile, name, strings.Join(t.Names(), ", "))
	}
	return p, nil
}

// WriteHelp prints every profile's non-zero settings.
func (t *Table) WriteHelp(w io.Writer) {
	for _, p := range t.All() {
		fmt.Fprintf(w, "Default options for the profile %s:\n ", p.Name)
		fmt.Fprintf(w, " hres=%d vres=%d mode=%s", p.HRes, p.VRes, p.Mode)
		if p.Rotation != types.RotateNone {
			fmt.Fprintf(w, " rotate=%s", p.Rotation)
		}
		if p.Colors != 0 {
			fmt.Fprintf(w, " colors=%d", p.Colors)
		}
		fmt.Fprintf(w, " overlap_h=%d overlap_v=%d format=%s\n\n", p.OverlapH, p.OverlapV, p.Format)
	}
}

// WriteYAML dumps the table as a profiles: map, the same shape the
// config file accepts.
func (t *Table) WriteYAML(w io.Writer) error {
	doc := struct {
		Profiles map[string]types.DeviceProfile `yaml:"profiles"`
	}{Profiles: t.byName}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}

// Overrides are explicit settings that win over the profile. Nil fields
// keep the profile value.
type Overrides struct {
	HRes     *int
	VRes     *int
	OverlapH *int
	OverlapV *int
	Colors   *int
	Mode     *types.PageMode
	Rotation *types.Rotation
	Format   *string

	// NoSplit forces portrait mode.
	NoSplit bool
}

// Apply returns a copy of p with o layered on top.
func Apply(p types.DeviceProfile, o Overrides) (types.DeviceProfile, error) {
	if o.HRes != nil {
		p.HRes = *o.HRes
	}
	if o.VRes != nil {
		p.VRes = *o.VRes
	}
	if o.OverlapH != nil {
		p.OverlapH = *o.OverlapH
	}
	if o.OverlapV != nil {
		p.OverlapV = *o.OverlapV
	}
	if o.Colors != nil {
		p.Colors = *o.Colors
	}
	if o.Mode != nil {
		p.Mode = *o.Mode
	}
	if o.NoSplit {
		p.Mode = types.ModePortrait
	}
	if o.Rotation != nil {
		p.Rotation = *o.Rotation
	}
	if o.Format != nil {
		p.Format = *o.Format
	}
	if err := validate(p); err != nil {
		return p, fmt.Errorf("profile %s: %w", p.Name, err)
	}
	return p, nil
}
