// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package profile

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pdfread/pkg/types"
)

func TestBuiltin(t *testing.T) {
	tests := []struct {
		name   string
		hres   int
		vres   int
		mode   types.PageMode
		rot    types.Rotation
		colors int
		format string
	}{
		{"reb1100", 315, 472, types.ModeLandscape, types.RotateNone, 0, "rb"},
		{"eb1150", 315, 445, types.ModeLandscape, types.RotateLeft, 16, "imp2"},
		{"reb1200", 455, 595, types.ModeLandscape, types.RotateLeft, 16, "imp1"},
		{"reb1200-p", 455, 595, types.ModePortrait, types.RotateNone, 16, "imp1"},
		{"prs500-l", 565, 754, types.ModeLandscape, types.RotateRight, 4, "lrf"},
		{"prs500", 565, 754, types.ModePortrait, types.RotateNone, 4, "lrf"},
	}
	table := Builtin()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := table.Lookup(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.hres, p.HRes)
			assert.Equal(t, tt.vres, p.VRes)
			assert.Equal(t, tt.mode, p.Mode)
			assert.Equal(t, tt.rot, p.Rotation)
			assert.Equal(t, tt.colors, p.Colors)
			assert.Equal(t, tt.format, p.Format)
			assert.Equal(t, 20, p.OverlapH)
			assert.Equal(t, 20, p.OverlapV)
		})
	}
	assert.Len(t, table.Names(), len(tests))
}

func TestLookup_Unknown(t *testing.T) {
	_, err := Builtin().Lookup("kindle")
	assert.ErrorIs(t, err, ErrUnknownProfile)
	assert.Contains(t, err.Error(), "prs500-l")
}

func TestMerge(t *testing.T) {
	table := Builtin()
	err := table.Merge(map[string]types.DeviceProfile{
		"kobo":   {HRes: 600, VRes: 800, Format: "epub"},
		"prs500": {HRes: 584, VRes: 754, Mode: types.ModePortrait, Colors: 8, OverlapH: 10, OverlapV: 30, Format: "pdf"},
	})
	require.NoError(t, err)

	kobo, err := table.Lookup("kobo")
	require.NoError(t, err)
	assert.Equal(t, "kobo", kobo.Name)
	assert.Equal(t, types.ModePortrait, kobo.Mode)
	assert.Equal(t, types.RotateNone, kobo.Rotation)
	assert.Equal(t, 20, kobo.OverlapV)

	prs, err := table.Lookup("prs500")
	require.NoError(t, err)
	assert.Equal(t, 584, prs.HRes)
	assert.Equal(t, 30, prs.OverlapV)
	assert.Equal(t, "pdf", prs.Format)

	err = table.Merge(map[string]types.DeviceProfile{"bad": {HRes: 100, VRes: 0}})
	assert.Error(t, err)
	err = table.Merge(map[string]types.DeviceProfile{"bad": {HRes: 1, VRes: 1, Mode: "sideways"}})
	assert.Error(t, err)
}

func TestApply(t *testing.T) {
	base, err := Builtin().Lookup("prs500-l")
	require.NoError(t, err)

	hres, colors, overlap := 600, 2, 0
	rot := types.RotateLeft
	format := "epub"
	got, err := Apply(base, Overrides{
		HRes: &hres, Colors: &colors, OverlapV: &overlap, Rotation: &rot, Format: &format, NoSplit: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 600, got.HRes)
	assert.Equal(t, 754, got.VRes)
	assert.Equal(t, 2, got.Colors)
	assert.Equal(t, 0, got.OverlapV)
	assert.Equal(t, 20, got.OverlapH)
	assert.Equal(t, types.ModePortrait, got.Mode)
	assert.Equal(t, types.RotateLeft, got.Rotation)
	assert.Equal(t, "epub", got.Format)

	assert.Equal(t, 565, base.HRes, "the table entry is not modified")

	bad := types.Rotation("up")
	_, err = Apply(base, Overrides{Rotation: &bad})
	assert.Error(t, err)
}

func TestWriteHelp(t *testing.T) {
	var buf bytes.Buffer
	Builtin().WriteHelp(&buf)
	out := buf.String()
	assert.Contains(t, out, "Default options for the profile reb1100:\n  hres=315 vres=472 mode=landscape overlap_h=20 overlap_v=20 format=rb\n")
	assert.Contains(t, out, "rotate=right colors=4")
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Builtin().WriteYAML(&buf))

	var doc struct {
		Profiles map[string]types.DeviceProfile `yaml:"profiles"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	assert.Len(t, doc.Profiles, 6)
	assert.Equal(t, types.RotateLeft, doc.Profiles["eb1150"].Rotation)
}
