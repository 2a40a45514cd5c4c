package gpu

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-terrain/internal/engine/chunk"
	"github.com/Faultbox/midgard-terrain/internal/engine/gpu/shaders"
	"github.com/Faultbox/midgard-terrain/internal/engine/lighting"
	"github.com/Faultbox/midgard-terrain/internal/engine/material"
	"github.com/Faultbox/midgard-terrain/internal/engine/picking"
	"github.com/Faultbox/midgard-terrain/internal/engine/terrain"
	"github.com/Faultbox/midgard-terrain/internal/logger"
)

// chunkMesh is the GPU copy of one chunk's geometry.
type chunkMesh struct {
	vao, vbo, ebo uint32
	count         int32
	revision      uint64
	origin        mgl32.Vec3
	footprint     mgl32.Vec2
	control       uint32
}

// TerrainPass draws every chunk of a grid with the shared terrain material.
type TerrainPass struct {
	program *Program
	arrays  map[string]uint32 // slot -> texture id
	meshes  map[chunk.Coord]*chunkMesh

	highlight    picking.AABB
	highlightOn  bool
	overlay      bool
	uploadsTotal int
}

// NewTerrainPass compiles the terrain shader for mat's features and
// uploads its array textures.
func NewTerrainPass(mat *material.Material) (*TerrainPass, error) {
	features := mat.Features()
	vert := shaders.WithDefines(shaders.TerrainVertexShader, features...)
	frag := shaders.WithDefines(shaders.TerrainFragmentShader, features...)

	program, err := NewProgram(vert, frag)
	if err != nil {
		return nil, fmt.Errorf("terrain shader: %w", err)
	}

	p := &TerrainPass{
		program: program,
		arrays:  make(map[string]uint32),
		meshes:  make(map[chunk.Coord]*chunkMesh),
	}
	for _, slot := range mat.Slots() {
		id, err := UploadArray(mat.Texture(slot))
		if err != nil {
			p.Destroy()
			return nil, err
		}
		p.arrays[slot] = id
	}

	logger.Info("terrain pass ready",
		zap.Strings("features", features),
		zap.Strings("slots", mat.Slots()),
	)
	return p, nil
}

// SetHighlight marks a world-space box (a picked tile) for tinting.
func (p *TerrainPass) SetHighlight(box picking.AABB) {
	p.highlight = box
	p.highlightOn = true
}

// ClearHighlight removes the tile tint.
func (p *TerrainPass) ClearHighlight() {
	p.highlightOn = false
}

// SetOverlay toggles the terrain type overlay drawn from the chunk control
// maps.
func (p *TerrainPass) SetOverlay(on bool) {
	p.overlay = on
}

// Overlay reports whether the type overlay is on.
func (p *TerrainPass) Overlay() bool { return p.overlay }

// Sync uploads chunks whose revision changed since the last call.
func (p *TerrainPass) Sync(grid *chunk.Grid) {
	uploads := 0
	grid.Each(func(c chunk.Coord, ch chunk.Chunk) {
		r, ok := ch.(chunk.Renderable)
		if !ok {
			return
		}
		m := r.Mesh()
		if m == nil {
			return
		}
		cm, ok := p.meshes[c]
		if ok && cm.revision == r.Revision() {
			return
		}
		if !ok {
			cm = &chunkMesh{}
			p.meshes[c] = cm
		}
		cm.upload(m)
		if r.ControlMap() != nil {
			id, err := UploadTexture(cm.control, r.ControlMap())
			if err != nil {
				logger.Warn("control map upload failed", zap.Stringer("chunk", c), zap.Error(err))
			} else {
				cm.control = id
			}
		}
		cm.revision = r.Revision()
		cm.origin = r.Origin()
		cm.footprint = r.Footprint()
		uploads++
	})
	if uploads > 0 {
		p.uploadsTotal += uploads
		logger.Debug("chunk meshes uploaded", zap.Int("chunks", uploads), zap.Int("total", p.uploadsTotal))
	}
}

func (cm *chunkMesh) upload(m *terrain.Mesh) {
	if cm.vao == 0 {
		gl.GenVertexArrays(1, &cm.vao)
		gl.GenBuffers(1, &cm.vbo)
		gl.GenBuffers(1, &cm.ebo)
	}
	cm.count = int32(len(m.Indices))
	if cm.count == 0 {
		return
	}

	gl.BindVertexArray(cm.vao)

	gl.BindBuffer(gl.ARRAY_BUFFER, cm.vbo)
	vertexSize := int(unsafe.Sizeof(terrain.Vertex{}))
	gl.BufferData(gl.ARRAY_BUFFER, len(m.Vertices)*vertexSize, gl.Ptr(m.Vertices), gl.DYNAMIC_DRAW)

	// Position (location 0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, int32(vertexSize), 0)
	gl.EnableVertexAttribArray(0)

	// Normal (location 1)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, int32(vertexSize), 3*4)
	gl.EnableVertexAttribArray(1)

	// TexCoord (location 2)
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, int32(vertexSize), 6*4)
	gl.EnableVertexAttribArray(2)

	// Layer (location 3)
	gl.VertexAttribPointerWithOffset(3, 1, gl.FLOAT, false, int32(vertexSize), 8*4)
	gl.EnableVertexAttribArray(3)

	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, cm.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(m.Indices)*4, gl.Ptr(m.Indices), gl.DYNAMIC_DRAW)

	gl.BindVertexArray(0)
}

// Render draws all synced chunks.
func (p *TerrainPass) Render(viewProj mgl32.Mat4, cameraPos mgl32.Vec3, sun lighting.Sun) {
	p.program.Use()

	gl.UniformMatrix4fv(p.program.Uniform("uViewProj"), 1, false, &viewProj[0])
	dir := sun.Direction()
	gl.Uniform3fv(p.program.Uniform("uLightDir"), 1, &dir[0])
	gl.Uniform3fv(p.program.Uniform("uAmbient"), 1, &sun.Ambient[0])
	gl.Uniform3fv(p.program.Uniform("uDiffuse"), 1, &sun.Diffuse[0])
	gl.Uniform3fv(p.program.Uniform("uCameraPos"), 1, &cameraPos[0])

	if p.highlightOn {
		gl.Uniform1i(p.program.Uniform("uHighlightOn"), 1)
		gl.Uniform3fv(p.program.Uniform("uHighlightMin"), 1, &p.highlight.Min[0])
		gl.Uniform3fv(p.program.Uniform("uHighlightMax"), 1, &p.highlight.Max[0])
	} else {
		gl.Uniform1i(p.program.Uniform("uHighlightOn"), 0)
	}

	// Bind each array to its own unit, in slot order.
	unit := int32(0)
	for _, slot := range []string{material.SlotBaseColor, material.SlotNormal, material.SlotMetallic, material.SlotOcclusion} {
		id, ok := p.arrays[slot]
		if !ok {
			continue
		}
		gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
		gl.BindTexture(gl.TEXTURE_2D_ARRAY, id)
		gl.Uniform1i(p.program.Uniform(slot), unit)
		unit++
	}

	overlay := int32(0)
	if p.overlay {
		overlay = 1
	}
	gl.Uniform1i(p.program.Uniform("uOverlay"), overlay)
	gl.Uniform1i(p.program.Uniform("uControlMap"), unit)
	controlUnit := gl.TEXTURE0 + uint32(unit)

	locOrigin := p.program.Uniform("uOrigin")
	locFootprint := p.program.Uniform("uFootprint")
	for _, cm := range p.meshes {
		if cm.count == 0 {
			continue
		}
		gl.Uniform3fv(locOrigin, 1, &cm.origin[0])
		gl.Uniform2fv(locFootprint, 1, &cm.footprint[0])
		gl.ActiveTexture(controlUnit)
		gl.BindTexture(gl.TEXTURE_2D, cm.control)
		gl.BindVertexArray(cm.vao)
		gl.DrawElements(gl.TRIANGLES, cm.count, gl.UNSIGNED_INT, nil)
	}
	gl.BindVertexArray(0)
}

// Destroy releases all GPU resources.
func (p *TerrainPass) Destroy() {
	for _, cm := range p.meshes {
		gl.DeleteVertexArrays(1, &cm.vao)
		gl.DeleteBuffers(1, &cm.vbo)
		gl.DeleteBuffers(1, &cm.ebo)
		if cm.control != 0 {
			gl.DeleteTextures(1, &cm.control)
		}
	}
	p.meshes = make(map[chunk.Coord]*chunkMesh)
	for _, id := range p.arrays {
		gl.DeleteTextures(1, &id)
	}
	p.arrays = make(map[string]uint32)
	if p.program != nil {
		p.program.Delete()
	}
}
