// Package material builds the per-terrain-type texture arrays and the single
// runtime material instance shared by every chunk.
package material

import (
	"maps"
	"slices"

	"github.com/Faultbox/midgard-terrain/internal/engine/texture"
)

// Texture slot names. They match the sampler uniforms of the terrain shader.
const (
	SlotBaseColor = "uBaseColorArray"
	SlotNormal    = "uNormalArray"
	SlotMetallic  = "uMetallicArray"
	SlotOcclusion = "uOcclusionArray"
)

// Feature flags toggled on the runtime material. The GPU layer turns them
// into shader defines.
const (
	FeatureNormalMap    = "USE_NORMAL_MAP"
	FeatureMetallicMap  = "USE_METALLIC_MAP"
	FeatureOcclusionMap = "USE_OCCLUSION_MAP"
)

// Template is the shader template asset. Build never mutates it.
type Template struct {
	Name     string
	Shader   string
	Features map[string]bool
	Floats   map[string]float32
}

// Material is a runtime material instance: a private copy of a template with
// texture arrays bound to slots.
type Material struct {
	Name     string
	Shader   string
	features map[string]bool
	floats   map[string]float32
	textures map[string]*texture.Array
}

// Instantiate returns a new material that copies the template's state.
func (t Template) Instantiate() *Material {
	m := &Material{
		Name:     t.Name + " (instance)",
		Shader:   t.Shader,
		features: make(map[string]bool, len(t.Features)),
		floats:   make(map[string]float32, len(t.Floats)),
		textures: make(map[string]*texture.Array),
	}
	maps.Copy(m.features, t.Features)
	maps.Copy(m.floats, t.Floats)
	return m
}

// SetTexture binds an array texture to a slot.
func (m *Material) SetTexture(slot string, a *texture.Array) {
	m.textures[slot] = a
}

// Texture returns the array bound to slot, or nil.
func (m *Material) Texture(slot string) *texture.Array {
	return m.textures[slot]
}

// Slots returns the bound slot names in sorted order.
func (m *Material) Slots() []string {
	return slices.Sorted(maps.Keys(m.textures))
}

// EnableFeature turns a shader feature on or off.
func (m *Material) EnableFeature(name string, on bool) {
	m.features[name] = on
}

// FeatureEnabled reports whether a shader feature is on.
func (m *Material) FeatureEnabled(name string) bool {
	return m.features[name]
}

// Features returns the enabled feature names in sorted order.
func (m *Material) Features() []string {
	var out []string
	for name, on := range m.features {
		if on {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out
}

// SetFloat sets a float parameter.
func (m *Material) SetFloat(name string, v float32) {
	m.floats[name] = v
}

// Float returns a float parameter and whether it is set.
func (m *Material) Float(name string) (float32, bool) {
	v, ok := m.floats[name]
	return v, ok
}

// Floats returns a copy of all float parameters.
func (m *Material) Floats() map[string]float32 {
	return maps.Clone(m.floats)
}
