package assets

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-terrain/internal/config"
	"github.com/Faultbox/midgard-terrain/internal/engine/material"
	"github.com/Faultbox/midgard-terrain/internal/engine/terrain"
)

func writePNG(t *testing.T, path string, size int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for i := range size {
		img.Set(i, i, color.NRGBA{R: 200, A: 255})
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestLoadSources(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "grass", "base.png"), 8)
	writePNG(t, filepath.Join(dir, "grass", "normal.png"), 8)
	writePNG(t, filepath.Join(dir, "shared.png"), 8)

	cfg := config.MaterialsConfig{
		Reference:     "grass",
		UseNormalMaps: true,
		Types: []config.MaterialEntry{
			{Type: "grass", BaseColor: "grass/base.png", Normal: "grass/normal.png", Smoothness: 0.2},
			{Type: "sand", BaseColor: "shared.png", Normal: "shared.png", Metallic: "ignored.png"},
		},
	}

	l := NewLoader(dir)
	sources, err := l.LoadSources(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, sources, 2)

	assert.Equal(t, terrain.Grass, sources[0].Type)
	assert.InDelta(t, 0.2, sources[0].Smoothness, 1e-6)
	require.NotNil(t, sources[0].BaseColor)
	assert.Equal(t, 8, sources[0].BaseColor.Width)
	assert.NotNil(t, sources[0].Normal)
	assert.Nil(t, sources[0].Metallic, "metallic maps are off")

	assert.Same(t, sources[1].BaseColor, sources[1].Normal, "shared file decoded once")
	assert.Equal(t, 3, l.Cache().Len())

	atlas, err := material.Build(terrain.Grass, sources, material.Flags{UseNormalMaps: true}, material.Template{Name: "terrain"})
	require.NoError(t, err)
	assert.Len(t, atlas.Arrays(), 2)
}

func TestLoadSourcesMissingFile(t *testing.T) {
	cfg := config.MaterialsConfig{
		Reference: "grass",
		Types:     []config.MaterialEntry{{Type: "grass", BaseColor: "nope.png"}},
	}

	_, err := NewLoader(t.TempDir()).LoadSources(context.Background(), cfg)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadSourcesPlaceholders(t *testing.T) {
	cfg := config.Default().Materials

	l := NewLoader(t.TempDir())
	l.Placeholders = true
	sources, err := l.LoadSources(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, sources, terrain.NumTerrainTypes)

	for _, s := range sources {
		require.NotNil(t, s.BaseColor, "type %s", s.Type)
		require.NotNil(t, s.Normal, "type %s", s.Type)
		assert.Equal(t, PlaceholderSize, s.BaseColor.Width)
	}

	atlas, err := material.Build(terrain.Grass, sources, material.Flags{UseNormalMaps: true}, material.Template{Name: "terrain"})
	require.NoError(t, err)
	assert.Equal(t, []string{material.FeatureNormalMap}, atlas.Material.Features())
}

func TestLoadSourcesBadType(t *testing.T) {
	cfg := config.MaterialsConfig{Types: []config.MaterialEntry{{Type: "lava", BaseColor: "x.png"}}}
	_, err := NewLoader(t.TempDir()).LoadSources(context.Background(), cfg)
	assert.Error(t, err)
}

func TestLoadSourcesCancelled(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "a.png"), 4)
	cfg := config.MaterialsConfig{Types: []config.MaterialEntry{{Type: "grass", BaseColor: "a.png"}}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewLoader(dir).LoadSources(ctx, cfg)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPlaceholder(t *testing.T) {
	tex := Placeholder(terrain.Sand, "base_color")
	assert.Equal(t, []byte{214, 196, 140, 255}, tex.Pix[:4])

	n := Placeholder(terrain.Sand, "normal")
	assert.Equal(t, []byte{128, 128, 255, 255}, n.Pix[len(n.Pix)-4:])
}

func TestCache(t *testing.T) {
	c := NewCache()
	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Set("a", Placeholder(terrain.Grass, "base_color"))
	_, ok = c.Get("a")
	assert.True(t, ok)

	hits, misses := c.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)
	assert.Equal(t, 1, c.Len())
}

func TestLoadFetchesPack(t *testing.T) {
	pack := t.TempDir()
	writePNG(t, filepath.Join(pack, "grass", "base.png"), 8)

	cfg := config.Default()
	cfg.Data.AssetDir = filepath.Join(t.TempDir(), "terrain")
	cfg.Data.FetchURL = pack
	cfg.Data.Placeholders = true

	sources, err := Load(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, sources, terrain.NumTerrainTypes)
	assert.Equal(t, 8, sources[0].BaseColor.Width, "fetched file")
	assert.Equal(t, PlaceholderSize, sources[1].BaseColor.Width, "placeholder")
}

func TestLoadWithoutFetch(t *testing.T) {
	cfg := config.Default()
	cfg.Data.AssetDir = t.TempDir()
	cfg.Data.Placeholders = true

	sources, err := Load(context.Background(), cfg)
	require.NoError(t, err)
	assert.Len(t, sources, terrain.NumTerrainTypes)
}

func TestLoadMissingTextures(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "grass", "base.png"), 8)

	cfg := config.Default()
	cfg.Data.AssetDir = dir
	for i := range cfg.Materials.Types {
		cfg.Materials.Types[i].BaseColor = "does/not/exist.png"
	}
	_, err := Load(context.Background(), cfg)
	assert.ErrorIs(t, err, os.ErrNotExist)

	// An empty path for an enabled channel fails too.
	cfg.Materials.Types = []config.MaterialEntry{{Type: "grass", BaseColor: "grass/base.png"}}
	_, err = Load(context.Background(), cfg)
	assert.ErrorIs(t, err, material.ErrMissingTexture)

	// A disabled channel may stay empty.
	cfg.Materials.UseNormalMaps = false
	sources, err := Load(context.Background(), cfg)
	require.NoError(t, err)
	assert.Nil(t, sources[0].Normal)
}
