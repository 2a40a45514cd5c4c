// Package viewer implements the interactive terrain viewer: window, main
// loop, camera controls and click-to-edit.
package viewer

import (
	"context"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-terrain/internal/assets"
	"github.com/Faultbox/midgard-terrain/internal/config"
	"github.com/Faultbox/midgard-terrain/internal/engine/camera"
	"github.com/Faultbox/midgard-terrain/internal/engine/gpu"
	"github.com/Faultbox/midgard-terrain/internal/engine/input"
	"github.com/Faultbox/midgard-terrain/internal/engine/lighting"
	"github.com/Faultbox/midgard-terrain/internal/engine/material"
	"github.com/Faultbox/midgard-terrain/internal/engine/picking"
	"github.com/Faultbox/midgard-terrain/internal/engine/scene"
	"github.com/Faultbox/midgard-terrain/internal/engine/terrain"
	"github.com/Faultbox/midgard-terrain/internal/engine/window"
	"github.com/Faultbox/midgard-terrain/internal/logger"
)

var clearColor = mgl32.Vec3{0.45, 0.6, 0.75}

// Viewer is the running terrain viewer.
type Viewer struct {
	cfg     *config.Config
	running bool

	window   *window.Window
	input    *input.Dispatcher
	camera   *camera.OrbitCamera
	terrain  *scene.TerrainRenderer
	field    *terrain.Field
	editor   *scene.Editor
	picker   *picking.Controller
	pass     *gpu.TerrainPass
	sun      lighting.Sun

	width, height int
}

// New loads the material sources, creates the window and GL resources and
// builds the world.
func New(ctx context.Context, cfg *config.Config) (*Viewer, error) {
	v := &Viewer{
		cfg:      cfg,
		input:    input.NewDispatcher(),
		camera:   camera.NewOrbitCamera(),
		sun:      cfg.Lighting.Sun(),
		width:    cfg.Graphics.Width,
		height:   cfg.Graphics.Height,
	}

	sources, err := assets.Load(ctx, cfg)
	if err != nil {
		return nil, err
	}

	v.terrain, err = scene.NewFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	tmpl := material.Template{Name: "terrain", Shader: cfg.Materials.Shader}
	if err := v.terrain.Initialise(sources, tmpl); err != nil {
		return nil, err
	}

	t := cfg.Terrain
	v.field, err = terrain.Generate(t.Width, t.Depth, t.Seed, t.MaxHeight)
	if err != nil {
		return nil, fmt.Errorf("generate terrain: %w", err)
	}
	if _, err := v.terrain.CreateWorld(v.field); err != nil {
		return nil, err
	}
	if err := v.terrain.UpdateWorldMesh(); err != nil {
		return nil, err
	}

	// Window and GL context must exist before any GL call.
	v.window, err = window.New(window.Config{
		Title:      "Midgard Terrain",
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("create window: %w", err)
	}
	if err := gpu.Init(); err != nil {
		v.Close()
		return nil, err
	}
	gpu.SetupState(clearColor)

	v.pass, err = gpu.NewTerrainPass(v.terrain.Atlas().Material)
	if err != nil {
		v.Close()
		return nil, err
	}

	v.editor = scene.NewEditor(v.terrain, v.field, t.MaxHeight*2)
	v.picker = picking.NewController(v.terrain, v.camera, cfg.Picking.MaxDistance)
	v.picker.OnTileClicked(v.editor.HandleTileClicked)
	v.editor.OnTileEdited(v.highlight)

	v.camera.FitToBounds(mgl32.Vec3{}, v.terrain.WorldSize())
	v.bindInput()

	logger.Info("viewer ready",
		zap.Int("chunks", v.terrain.Chunks().Count()),
		zap.Strings("features", v.terrain.Atlas().Material.Features()),
	)
	return v, nil
}

func (v *Viewer) bindInput() {
	v.input.On(input.EventQuit, func(input.Event) { v.running = false })
	v.input.OnResize(func(e input.Event) {
		v.width, v.height = e.Width, e.Height
	})
	v.input.OnMouseDown(func(e input.Event) {
		switch e.Button {
		case input.ButtonLeft:
			v.picker.HandleClick(float32(e.MouseX), float32(e.MouseY), float32(v.width), float32(v.height))
		}
	})
	v.input.OnMouseMove(func(e input.Event) {
		if v.input.ButtonDown(input.ButtonRight) {
			v.camera.HandleDrag(float32(e.DeltaX), float32(e.DeltaY))
		}
	})
	v.input.OnMouseWheel(func(e input.Event) {
		v.camera.HandleZoom(float32(e.DeltaY))
	})
	v.input.OnKeyDown(func(e input.Event) {
		switch e.Key {
		case input.KeyEscape:
			v.running = false
		case input.KeyR:
			v.editor.SetTool(scene.ToolRaise)
		case input.KeyE:
			v.editor.SetTool(scene.ToolLower)
		case input.KeyF:
			v.pass.SetOverlay(!v.pass.Overlay())
		case input.KeySpace:
			v.pass.ClearHighlight()
		case input.Key1, input.Key2, input.Key3, input.Key4, input.Key5:
			v.editor.SetPaint(terrain.TerrainType(e.Key - input.Key1))
		default:
			return
		}
		logger.Debug("tool", zap.Stringer("tool", v.editor.Tool()))
	})
}

func (v *Viewer) highlight(e scene.TileEdited) {
	vox, err := v.terrain.GetVoxel(e.Tile)
	if err != nil {
		v.pass.ClearHighlight()
		return
	}
	v.pass.SetHighlight(vox.Bounds)
}

// Run drives the main loop until the window closes.
func (v *Viewer) Run() error {
	v.running = true

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	logger.Info("starting main loop")

	for v.running {
		now := time.Now()
		dt := float32(now.Sub(lastTime).Seconds())
		lastTime = now

		if !v.window.PollEvents(v.input) {
			break
		}
		v.update(dt)
		v.render()
		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			logger.Debug("fps", zap.Int("count", frameCount))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}
	return nil
}

func (v *Viewer) update(dt float32) {
	var forward, right, up float32
	if v.input.KeyDown(input.KeyW) {
		forward++
	}
	if v.input.KeyDown(input.KeyS) {
		forward--
	}
	if v.input.KeyDown(input.KeyD) {
		right++
	}
	if v.input.KeyDown(input.KeyA) {
		right--
	}
	if v.input.KeyDown(input.KeyQ) {
		up++
	}
	if v.input.KeyDown(input.KeyLeftShift) {
		up--
	}
	if forward != 0 || right != 0 || up != 0 {
		step := dt * 60
		v.camera.HandleMovement(forward*step, right*step, up*step)
	}
}

func (v *Viewer) render() {
	v.pass.Sync(v.terrain.Chunks())

	gpu.BeginFrame(v.width, v.height)
	vp := v.camera.ViewProjection(float32(v.width), float32(v.height))
	v.pass.Render(vp, v.camera.Position(), v.sun)
}

// Close releases GPU resources and the window.
func (v *Viewer) Close() {
	logger.Info("closing viewer")
	if v.pass != nil {
		v.pass.Destroy()
		v.pass = nil
	}
	if v.window != nil {
		v.window.Close()
		v.window = nil
	}
}
