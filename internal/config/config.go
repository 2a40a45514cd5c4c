// Package config handles terrain viewer configuration loading and management.
package config

import "github.com/Faultbox/midgard-terrain/internal/engine/lighting"

// Config holds all viewer settings.
type Config struct {
	Graphics  GraphicsConfig  `yaml:"graphics"`
	Terrain   TerrainConfig   `yaml:"terrain"`
	Materials MaterialsConfig `yaml:"materials"`
	Lighting  LightingConfig  `yaml:"lighting"`
	Picking   PickingConfig   `yaml:"picking"`
	Data      DataConfig      `yaml:"data"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
}

// TerrainConfig holds the generated field and its chunking.
type TerrainConfig struct {
	Width            int     `yaml:"width"`
	Depth            int     `yaml:"depth"`
	MaxHeight        int     `yaml:"max_height"`
	Seed             int64   `yaml:"seed"`
	TileWidth        float32 `yaml:"tile_width"`
	TileDepth        float32 `yaml:"tile_depth"`
	TileHeight       float32 `yaml:"tile_height"`
	ChunkSize        int     `yaml:"chunk_size"`
	ChunkTextureSize int     `yaml:"chunk_texture_size"`
	LegacySeamGuard  bool    `yaml:"legacy_seam_guard"` // guard the Z seam with the X coordinate
}

// MaterialsConfig describes the per-type source textures of the atlas.
type MaterialsConfig struct {
	Reference        string          `yaml:"reference"`
	UseNormalMaps    bool            `yaml:"use_normal_maps"`
	UseMetallicMaps  bool            `yaml:"use_metallic_maps"`
	UseOcclusionMaps bool            `yaml:"use_occlusion_maps"`
	Shader           string          `yaml:"shader"`
	Types            []MaterialEntry `yaml:"types"`
}

// MaterialEntry is one terrain type's source textures. Paths are relative
// to Data.AssetDir.
type MaterialEntry struct {
	Type       string  `yaml:"type"`
	BaseColor  string  `yaml:"base_color"`
	Normal     string  `yaml:"normal,omitempty"`
	Metallic   string  `yaml:"metallic,omitempty"`
	Occlusion  string  `yaml:"occlusion,omitempty"`
	Smoothness float32 `yaml:"smoothness"`
}

// LightingConfig places the sun.
type LightingConfig struct {
	SunLongitude float32    `yaml:"sun_longitude"` // degrees around Y
	SunLatitude  float32    `yaml:"sun_latitude"`  // degrees above the horizon
	Ambient      [3]float32 `yaml:"ambient"`
	Diffuse      [3]float32 `yaml:"diffuse"`
}

// PickingConfig holds tile picking settings.
type PickingConfig struct {
	MaxDistance float32 `yaml:"max_distance"`
	// WaterLevel adds a water plane at this world height that blocks picks.
	WaterLevel *float32 `yaml:"water_level,omitempty"`
}

// DataConfig holds asset locations.
type DataConfig struct {
	AssetDir string `yaml:"asset_dir"`
	FetchURL string `yaml:"fetch_url"` // optional go-getter source fetched into AssetDir

	// Placeholders substitutes generated textures for missing or unset
	// files. Off by default so a broken pack fails at load.
	Placeholders bool `yaml:"placeholders"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	sun := lighting.DefaultSun()
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
		},
		Terrain: TerrainConfig{
			Width:            128,
			Depth:            128,
			MaxHeight:        6,
			Seed:             1,
			TileWidth:        1,
			TileDepth:        1,
			TileHeight:       0.5,
			ChunkSize:        16,
			ChunkTextureSize: 64,
		},
		Materials: MaterialsConfig{
			Reference:     "grass",
			UseNormalMaps: true,
			Shader:        "terrain",
			Types: []MaterialEntry{
				{Type: "grass", BaseColor: "grass/base.png", Normal: "grass/normal.png", Smoothness: 0.1},
				{Type: "dirt", BaseColor: "dirt/base.png", Normal: "dirt/normal.png", Smoothness: 0.2},
				{Type: "soft_rocks", BaseColor: "soft_rocks/base.png", Normal: "soft_rocks/normal.png", Smoothness: 0.4},
				{Type: "hard_rocks", BaseColor: "hard_rocks/base.png", Normal: "hard_rocks/normal.png", Smoothness: 0.6},
				{Type: "sand", BaseColor: "sand/base.png", Normal: "sand/normal.png", Smoothness: 0.3},
			},
		},
		Lighting: LightingConfig{
			SunLongitude: sun.Longitude,
			SunLatitude:  sun.Latitude,
			Ambient:      [3]float32(sun.Ambient),
			Diffuse:      [3]float32(sun.Diffuse),
		},
		Picking: PickingConfig{
			MaxDistance: 1000,
		},
		Data: DataConfig{
			AssetDir: "assets/terrain",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
