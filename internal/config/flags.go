package config

import "flag"

var (
	flagConfig      = flag.String("config", "", "Path to config file")
	flagDebug       = flag.Bool("debug", false, "Enable debug logging")
	flagChunkSize   = flag.Int("chunk-size", 0, "Chunk edge length in tiles")
	flagSeed        = flag.Int64("seed", 0, "Terrain generator seed")
	flagLegacySeams = flag.Bool("legacy-seams", false, "Guard the Z seam with the X coordinate")
	flagAssets      = flag.String("assets", "", "Directory holding material textures")
	flagFetch       = flag.String("fetch", "", "Material pack to download into the asset directory")
	flagPlaceholder = flag.Bool("placeholders", false, "Generate textures for missing material files")
	flagWindowed    = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen  = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth       = flag.Int("width", 0, "Window width")
	flagHeight      = flag.Int("height", 0, "Window height")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagChunkSize > 0 {
		cfg.Terrain.ChunkSize = *flagChunkSize
	}
	if *flagSeed != 0 {
		cfg.Terrain.Seed = *flagSeed
	}
	if *flagLegacySeams {
		cfg.Terrain.LegacySeamGuard = true
	}
	if *flagAssets != "" {
		cfg.Data.AssetDir = *flagAssets
	}
	if *flagFetch != "" {
		cfg.Data.FetchURL = *flagFetch
	}
	if *flagPlaceholder {
		cfg.Data.Placeholders = true
	}
	if *flagWindowed {
		cfg.Graphics.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Graphics.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Graphics.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Graphics.Height = *flagHeight
	}
}
