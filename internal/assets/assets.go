// Package assets loads the per-type source textures of the material atlas.
package assets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	getter "github.com/hashicorp/go-getter"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/Faultbox/midgard-terrain/internal/config"
	"github.com/Faultbox/midgard-terrain/internal/engine/material"
	"github.com/Faultbox/midgard-terrain/internal/engine/terrain"
	"github.com/Faultbox/midgard-terrain/internal/engine/texture"
	"github.com/Faultbox/midgard-terrain/internal/logger"
)

// PlaceholderSize is the edge length of generated placeholder textures.
const PlaceholderSize = 64

// Loader reads source textures from a directory.
type Loader struct {
	dir    string
	cache  *Cache
	flight singleflight.Group

	// Placeholders makes unset or missing files load as generated solid
	// textures instead of failing.
	Placeholders bool
}

// NewLoader creates a loader rooted at dir.
func NewLoader(dir string) *Loader {
	return &Loader{
		dir:   dir,
		cache: NewCache(),
	}
}

// Dir returns the asset directory.
func (l *Loader) Dir() string { return l.dir }

// Cache returns the decoded texture cache.
func (l *Loader) Cache() *Cache { return l.cache }

// Fetch downloads src into the asset directory. src is any go-getter
// source: a local path, an archive URL, a git repository.
func (l *Loader) Fetch(ctx context.Context, src string) error {
	logger.Info("fetching material pack", zap.String("src", src), zap.String("dir", l.dir))
	if err := getter.Get(l.dir, src, getter.WithContext(ctx)); err != nil {
		return fmt.Errorf("fetching %s: %w", src, err)
	}
	return nil
}

// job is one texture file to decode into a source slot.
type job struct {
	typ     terrain.TerrainType
	channel string
	path    string
	dst     **texture.Texture
}

// LoadSources decodes every texture the material config references, in
// parallel. Channels whose flag is off are skipped.
func (l *Loader) LoadSources(ctx context.Context, cfg config.MaterialsConfig) ([]material.Source, error) {
	sources := make([]material.Source, len(cfg.Types))
	var jobs []job

	for i, e := range cfg.Types {
		t, err := terrain.ParseTerrainType(e.Type)
		if err != nil {
			return nil, err
		}
		s := &sources[i]
		s.Type = t
		s.Smoothness = e.Smoothness

		jobs = append(jobs, job{t, "base_color", e.BaseColor, &s.BaseColor})
		if cfg.UseNormalMaps {
			jobs = append(jobs, job{t, "normal", e.Normal, &s.Normal})
		}
		if cfg.UseMetallicMaps {
			jobs = append(jobs, job{t, "metallic", e.Metallic, &s.Metallic})
		}
		if cfg.UseOcclusionMaps {
			jobs = append(jobs, job{t, "occlusion", e.Occlusion, &s.Occlusion})
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for _, j := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			tex, err := l.load(j)
			if err != nil {
				return err
			}
			*j.dst = tex
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	hits, misses := l.cache.Stats()
	logger.Info("material sources loaded",
		zap.Int("types", len(sources)),
		zap.Int("textures", len(jobs)),
		zap.Int("decoded", l.cache.Len()),
		zap.Int("cacheHits", hits),
		zap.Int("cacheMisses", misses),
	)
	return sources, nil
}

func (l *Loader) load(j job) (*texture.Texture, error) {
	if j.path == "" {
		if l.Placeholders {
			return Placeholder(j.typ, j.channel), nil
		}
		return nil, fmt.Errorf("%w: %s %s has no path", material.ErrMissingTexture, j.typ, j.channel)
	}

	full := filepath.Join(l.dir, j.path)
	if tex, ok := l.cache.Get(full); ok {
		return tex, nil
	}

	// Jobs sharing a file decode it once.
	v, err, _ := l.flight.Do(full, func() (any, error) {
		if tex, ok := l.cache.Get(full); ok {
			return tex, nil
		}
		data, err := os.ReadFile(full)
		if err != nil {
			return nil, err
		}
		tex, err := texture.Decode(full, data)
		if err != nil {
			return nil, err
		}
		l.cache.Set(full, tex)
		return tex, nil
	})
	if errors.Is(err, fs.ErrNotExist) && l.Placeholders {
		logger.Warn("texture missing, using placeholder",
			zap.String("path", full),
			zap.Stringer("type", j.typ),
			zap.String("channel", j.channel),
		)
		return Placeholder(j.typ, j.channel), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", j.typ, j.channel, err)
	}
	return v.(*texture.Texture), nil
}

// palette is the placeholder base color of each terrain type.
var palette = [terrain.NumTerrainTypes][3]byte{
	terrain.Grass:     {86, 140, 58},
	terrain.Dirt:      {120, 86, 52},
	terrain.SoftRocks: {140, 132, 120},
	terrain.HardRocks: {90, 90, 96},
	terrain.Sand:      {214, 196, 140},
}

// Placeholder returns a generated PlaceholderSize square RGBA8 texture for
// a channel: the type's palette color for base color, a flat normal, mid
// gray for metallic and white for occlusion.
func Placeholder(t terrain.TerrainType, channel string) *texture.Texture {
	var c [4]byte
	switch channel {
	case "normal":
		c = [4]byte{128, 128, 255, 255}
	case "metallic":
		c = [4]byte{64, 64, 64, 255}
	case "occlusion":
		c = [4]byte{255, 255, 255, 255}
	default:
		if t.Valid() {
			p := palette[t]
			c = [4]byte{p[0], p[1], p[2], 255}
		} else {
			c = [4]byte{255, 0, 255, 255}
		}
	}

	tex := texture.New(fmt.Sprintf("%s %s placeholder", t, channel), PlaceholderSize, PlaceholderSize, texture.FormatRGBA8)
	for i := 0; i < len(tex.Pix); i += 4 {
		copy(tex.Pix[i:i+4], c[:])
	}
	return tex
}

// Cache is a simple in-memory cache for decoded textures.
type Cache struct {
	data map[string]*texture.Texture
	mu   sync.RWMutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string]*texture.Texture),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) (*texture.Texture, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	tex, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return tex, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, tex *texture.Texture) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = tex
}

// Len returns the number of cached textures.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}

// Load fetches cfg.Data.FetchURL into the asset directory when set and
// loads every configured type's source textures. Missing files are an error
// unless cfg.Data.Placeholders is set.
func Load(ctx context.Context, cfg *config.Config) ([]material.Source, error) {
	l := NewLoader(cfg.Data.AssetDir)
	l.Placeholders = cfg.Data.Placeholders
	if cfg.Data.FetchURL != "" {
		if err := l.Fetch(ctx, cfg.Data.FetchURL); err != nil {
			return nil, err
		}
	}
	sources, err := l.LoadSources(ctx, cfg.Materials)
	if err != nil {
		return nil, fmt.Errorf("load material sources: %w", err)
	}
	return sources, nil
}
