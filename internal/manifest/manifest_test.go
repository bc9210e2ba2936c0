// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package manifest

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pdfread/internal/persist"
	"github.com/pdiddy/pdfread/internal/pipeline"
	"github.com/pdiddy/pdfread/pkg/types"
)

func sampleManifest() Manifest {
	cfg := types.NewPipelineConfig(types.DeviceProfile{
		HRes: 315, VRes: 472, Mode: types.ModeLandscape, Rotation: types.RotateNone,
		OverlapH: 20, OverlapV: 20,
	})
	return Manifest{
		Run: Run{
			Input:     "/books/sample.pdf",
			Format:    "rb",
			Profile:   "reb1100",
			Meta:      types.Metadata{Title: "Sample", Author: "A. Writer", Category: "General"},
			Config:    cfg,
			Pages:     3,
			Blank:     1,
			CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		},
		Index: []pipeline.IndexEntry{{Page: 1, Index: 0}, {Page: 3, Index: 2}},
		TOC: []types.TOCEntry{
			{Title: "Intro", Level: 1, Page: 1},
			{Title: "Missing", Level: 2, Page: 2},
		},
		Images: []persist.Image{
			{Index: 0, Name: "0.png", Width: 315, Height: 472},
			{Index: 1, Name: "1.png", Width: 315, Height: 472},
			{Index: 2, Name: "2.png", Width: 315, Height: 200},
		},
	}
}

func TestCreateSchema(t *testing.T) {
	store, err := Create(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	for _, table := range []string{"run", "page_index", "toc", "images"} {
		var count int
		err := store.db.QueryRow(
			`SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table,
		).Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 1, count, table)
	}
}

func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	want := sampleManifest()

	store, err := Create(dir)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, want))
	require.NoError(t, store.Close())

	store, err = Open(dir)
	require.NoError(t, err)
	defer store.Close()

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	idx := got.IndexMap()
	i, ok := idx.Lookup(3)
	assert.True(t, ok)
	assert.Equal(t, 2, i)
	_, ok = idx.Lookup(2)
	assert.False(t, ok)
}

func TestSaveReplacesPreviousRun(t *testing.T) {
	ctx := context.Background()
	store, err := Create(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Save(ctx, sampleManifest()))

	second := sampleManifest()
	second.Run.Format = "epub"
	second.Index = second.Index[:1]
	second.TOC = nil
	second.Images = second.Images[:1]
	require.NoError(t, store.Save(ctx, second))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "epub", got.Run.Format)
	assert.Len(t, got.Index, 1)
	assert.Empty(t, got.TOC)
	assert.Len(t, got.Images, 1)
}

func TestOpen_MissingManifest(t *testing.T) {
	_, err := Open(t.TempDir())
	assert.ErrorIs(t, err, ErrNoManifest)
}

func TestLoad_EmptyStore(t *testing.T) {
	store, err := Create(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Load(context.Background())
	assert.ErrorIs(t, err, ErrNoManifest)
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampleManifest().WriteYAML(&buf))

	var got map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	run := got["run"].(map[string]any)
	assert.Equal(t, "reb1100", run["profile"])
	assert.Len(t, got["images"], 3)
}
