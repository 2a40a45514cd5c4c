// atlastool is a CLI utility for inspecting the terrain material atlas and
// chunk layout without opening a window.
package main

import (
	"context"
	"flag"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/Faultbox/midgard-terrain/internal/assets"
	"github.com/Faultbox/midgard-terrain/internal/config"
	"github.com/Faultbox/midgard-terrain/internal/engine/chunk"
	"github.com/Faultbox/midgard-terrain/internal/engine/material"
	"github.com/Faultbox/midgard-terrain/internal/engine/scene"
	"github.com/Faultbox/midgard-terrain/internal/engine/terrain"
	"github.com/Faultbox/midgard-terrain/internal/logger"
)

func main() {
	config.ParseFlags()
	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	// init runs before Load so it works without a config file.
	if args[0] == "init" {
		if err := cmdInit(args[1:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.InitWithFileConfig(cfg.Logging.Level, logger.FileConfig{Path: cfg.Logging.LogFile}, false); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	switch args[0] {
	case "info":
		err = cmdInfo(ctx, cfg)
	case "export":
		err = cmdExport(ctx, cfg, args[1:])
	case "fetch":
		err = cmdFetch(ctx, cfg, args[1:])
	case "chunks":
		err = cmdChunks(ctx, cfg)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`atlastool - terrain material atlas utility

Usage:
  atlastool [flags] <command> [options]

Commands:
  init [path]       Write the default config (default ./terrain.yaml)
  info              Build the atlas and show its arrays and per-type info
  export <dir>      Write every array layer as PNG into dir
  fetch [src]       Download a material pack into the asset directory
  chunks            Generate the configured world and show chunk statistics

Examples:
  atlastool info
  atlastool -assets ./pack export ./out
  atlastool fetch github.com/example/terrain-pack//textures
  atlastool -chunk-size 32 chunks`)
}

func cmdInit(args []string) error {
	path := "terrain.yaml"
	if len(args) > 0 {
		path = args[0]
	}
	if err := config.WriteDefault(path); err != nil {
		return err
	}
	fmt.Printf("Wrote default config to %s\n", path)
	return nil
}

func buildAtlas(ctx context.Context, cfg *config.Config) (*scene.TerrainRenderer, error) {
	sources, err := assets.Load(ctx, cfg)
	if err != nil {
		return nil, err
	}
	tr, err := scene.NewFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	tmpl := material.Template{Name: "terrain", Shader: cfg.Materials.Shader}
	if err := tr.Initialise(sources, tmpl); err != nil {
		return nil, err
	}
	return tr, nil
}

func cmdInfo(ctx context.Context, cfg *config.Config) error {
	tr, err := buildAtlas(ctx, cfg)
	if err != nil {
		return err
	}
	atlas := tr.Atlas()
	mat := atlas.Material

	fmt.Printf("Material:  %s\n", mat.Name)
	fmt.Printf("Reference: %s\n", cfg.Materials.Reference)
	fmt.Printf("Features:  %v\n", mat.Features())
	fmt.Println()
	fmt.Println("Arrays:")
	for _, slot := range mat.Slots() {
		a := mat.Texture(slot)
		filled := 0
		for i := range a.LayerCount() {
			if a.Filled(i) {
				filled++
			}
		}
		fmt.Printf("  %-18s %4dx%-4d %-6s %d/%d layers\n",
			slot, a.Width, a.Height, a.Format, filled, a.LayerCount())
	}
	fmt.Println()
	fmt.Println("Types:")
	for _, t := range terrain.AllTypes() {
		info, err := tr.GetMaterialInfo(t)
		if err != nil {
			fmt.Printf("  %-12s (unregistered)\n", t)
			continue
		}
		fmt.Printf("  %-12s layer %.1f  smoothness %.2f\n", t, info.ShaderIndex, info.Smoothness)
	}
	return nil
}

func cmdExport(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: atlastool export <dir>")
	}
	out := args[0]
	if err := os.MkdirAll(out, 0o755); err != nil {
		return err
	}

	tr, err := buildAtlas(ctx, cfg)
	if err != nil {
		return err
	}
	mat := tr.Atlas().Material
	count := 0
	for _, slot := range mat.Slots() {
		a := mat.Texture(slot)
		for i := range a.LayerCount() {
			if !a.Filled(i) {
				continue
			}
			img, err := a.LayerImage(i)
			if err != nil {
				return err
			}
			path := filepath.Join(out, fmt.Sprintf("%s_%s.png", slot, terrain.TerrainType(i)))
			f, err := os.Create(path)
			if err != nil {
				return err
			}
			if err := png.Encode(f, img); err != nil {
				f.Close()
				return fmt.Errorf("encoding %s: %w", path, err)
			}
			if err := f.Close(); err != nil {
				return err
			}
			count++
		}
	}
	fmt.Printf("Exported %d layers to %s\n", count, out)
	return nil
}

func cmdFetch(ctx context.Context, cfg *config.Config, args []string) error {
	src := cfg.Data.FetchURL
	if len(args) > 0 {
		src = args[0]
	}
	if src == "" {
		return fmt.Errorf("no source given and data.fetch_url is empty")
	}
	if err := assets.NewLoader(cfg.Data.AssetDir).Fetch(ctx, src); err != nil {
		return err
	}
	fmt.Printf("Fetched %s into %s\n", src, cfg.Data.AssetDir)
	return nil
}

func cmdChunks(ctx context.Context, cfg *config.Config) error {
	tr, err := buildAtlas(ctx, cfg)
	if err != nil {
		return err
	}
	t := cfg.Terrain
	field, err := terrain.Generate(t.Width, t.Depth, t.Seed, t.MaxHeight)
	if err != nil {
		return err
	}
	n, err := tr.CreateWorld(field)
	if err != nil {
		return err
	}
	start := time.Now()
	if err := tr.UpdateWorldMesh(); err != nil {
		return err
	}
	elapsed := time.Since(start)

	var vertices, indices int
	tr.Chunks().Each(func(_ chunk.Coord, c chunk.Chunk) {
		r, ok := c.(chunk.Renderable)
		if !ok || r.Mesh() == nil {
			return
		}
		vertices += len(r.Mesh().Vertices)
		indices += len(r.Mesh().Indices)
	})

	nx, nz := tr.Chunks().Shape()
	size := tr.WorldSize()
	fmt.Printf("World:     %dx%d tiles (%.1f x %.1f units)\n", t.Width, t.Depth, size.X(), size.Z())
	fmt.Printf("Chunks:    %d (%dx%d of %d tiles)\n", n, nx, nz, t.ChunkSize)
	fmt.Printf("Vertices:  %d\n", vertices)
	fmt.Printf("Triangles: %d\n", indices/3)
	fmt.Printf("Meshed in: %s\n", elapsed)
	return nil
}
