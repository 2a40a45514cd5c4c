// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// TerrainVertexShader is the vertex shader for chunk rendering.
//
//go:embed terrain.vert
var TerrainVertexShader string

// TerrainFragmentShader is the fragment shader for chunk rendering. It
// samples the material array textures by the per-vertex shader index.
//
//go:embed terrain.frag
var TerrainFragmentShader string
