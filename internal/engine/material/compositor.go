package material

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-terrain/internal/engine/terrain"
	"github.com/Faultbox/midgard-terrain/internal/engine/texture"
	"github.com/Faultbox/midgard-terrain/internal/logger"
)

// Compositor errors.
var (
	ErrMissingReference = errors.New("reference terrain type has no source material")
	ErrMissingTexture   = errors.New("source texture missing")
	ErrDuplicateType    = errors.New("terrain type has more than one source material")
	ErrUnregisteredType = errors.New("terrain type not registered")
)

// Source is the source material of one terrain type.
type Source struct {
	Type       terrain.TerrainType
	BaseColor  *texture.Texture
	Normal     *texture.Texture
	Metallic   *texture.Texture
	Occlusion  *texture.Texture
	Smoothness float32
}

// Flags selects the optional layers.
type Flags struct {
	UseNormalMaps    bool
	UseMetallicMaps  bool
	UseOcclusionMaps bool
}

// Info is the per-type record consumed by chunk meshing.
type Info struct {
	Type        terrain.TerrainType
	Smoothness  float32
	ShaderIndex float32
}

// InfoTable maps terrain types to their Info. It is indexed by ordinal.
type InfoTable struct {
	entries    [terrain.NumTerrainTypes]Info
	registered [terrain.NumTerrainTypes]bool
}

// Lookup returns the info of t, or ErrUnregisteredType.
func (it *InfoTable) Lookup(t terrain.TerrainType) (Info, error) {
	if !t.Valid() || !it.registered[t] {
		return Info{}, fmt.Errorf("%w: %s", ErrUnregisteredType, t)
	}
	return it.entries[t], nil
}

// Registered reports whether t has an entry.
func (it *InfoTable) Registered(t terrain.TerrainType) bool {
	return t.Valid() && it.registered[t]
}

func (it *InfoTable) set(info Info) {
	it.entries[info.Type] = info
	it.registered[info.Type] = true
}

// channel describes one optional or mandatory layer of the atlas.
type channel struct {
	name    string
	slot    string
	feature string
	pick    func(*Source) *texture.Texture
}

var (
	baseChannel      = channel{name: "base_color", slot: SlotBaseColor, pick: func(s *Source) *texture.Texture { return s.BaseColor }}
	normalChannel    = channel{name: "normal", slot: SlotNormal, feature: FeatureNormalMap, pick: func(s *Source) *texture.Texture { return s.Normal }}
	metallicChannel  = channel{name: "metallic", slot: SlotMetallic, feature: FeatureMetallicMap, pick: func(s *Source) *texture.Texture { return s.Metallic }}
	occlusionChannel = channel{name: "occlusion", slot: SlotOcclusion, feature: FeatureOcclusionMap, pick: func(s *Source) *texture.Texture { return s.Occlusion }}
)

// Atlas is the output of Build. It is read-only once returned.
type Atlas struct {
	BaseColor *texture.Array
	Normal    *texture.Array // nil unless normal maps are enabled
	Metallic  *texture.Array // nil unless metallic maps are enabled
	Occlusion *texture.Array // nil unless occlusion maps are enabled

	Material *Material
	Table    InfoTable
}

// Arrays returns the built array textures, base color first.
func (a *Atlas) Arrays() []*texture.Array {
	out := []*texture.Array{a.BaseColor}
	for _, arr := range []*texture.Array{a.Normal, a.Metallic, a.Occlusion} {
		if arr != nil {
			out = append(out, arr)
		}
	}
	return out
}

// Info returns the material info of t.
func (a *Atlas) Info(t terrain.TerrainType) (Info, error) {
	return a.Table.Lookup(t)
}

// Build packs the per-type source materials into array textures, one layer
// per terrain type, and returns a runtime material referencing them.
//
// Every channel takes its layer shape from the reference type's texture for
// that channel. A missing texture for an enabled channel, or a texture whose
// size or format differs from the reference, fails the whole build.
func Build(reference terrain.TerrainType, sources []Source, flags Flags, tmpl Template) (*Atlas, error) {
	byType := make(map[terrain.TerrainType]*Source, len(sources))
	for i := range sources {
		s := &sources[i]
		if !s.Type.Valid() {
			return nil, fmt.Errorf("source %d: %w: %s", i, ErrUnregisteredType, s.Type)
		}
		if _, dup := byType[s.Type]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateType, s.Type)
		}
		byType[s.Type] = s
	}

	ref, ok := byType[reference]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingReference, reference)
	}

	atlas := &Atlas{Material: tmpl.Instantiate()}

	channels := []channel{baseChannel}
	for _, opt := range []struct {
		ch channel
		on bool
	}{
		{normalChannel, flags.UseNormalMaps},
		{metallicChannel, flags.UseMetallicMaps},
		{occlusionChannel, flags.UseOcclusionMaps},
	} {
		if opt.on {
			channels = append(channels, opt.ch)
			continue
		}
		// A template may carry the feature; no array backs it here.
		atlas.Material.EnableFeature(opt.ch.feature, false)
	}

	for _, ch := range channels {
		refTex := ch.pick(ref)
		if refTex == nil {
			return nil, fmt.Errorf("%w: %s %s (reference)", ErrMissingTexture, reference, ch.name)
		}

		arr := texture.NewArrayLike(ch.name, refTex, terrain.NumTerrainTypes)
		for _, t := range terrain.AllTypes() {
			src, ok := byType[t]
			if !ok {
				continue
			}
			tex := ch.pick(src)
			if tex == nil {
				return nil, fmt.Errorf("%w: %s %s", ErrMissingTexture, t, ch.name)
			}
			if err := arr.CopyLayer(int(t), tex); err != nil {
				return nil, fmt.Errorf("%s %s: %w", t, ch.name, err)
			}
		}

		atlas.assign(ch, arr)
		atlas.Material.SetTexture(ch.slot, arr)
		if ch.feature != "" {
			atlas.Material.EnableFeature(ch.feature, true)
		}
	}

	for _, t := range terrain.AllTypes() {
		src, ok := byType[t]
		if !ok {
			continue
		}
		info := Info{Type: t, ShaderIndex: t.ShaderIndex()}
		if flags.UseMetallicMaps {
			info.Smoothness = src.Smoothness
		}
		atlas.Table.set(info)
	}

	logger.Debug("material atlas built",
		zap.String("reference", reference.String()),
		zap.Int("sources", len(byType)),
		zap.Int("arrays", len(atlas.Arrays())),
		zap.Int("width", atlas.BaseColor.Width),
		zap.Int("height", atlas.BaseColor.Height),
		zap.Strings("features", atlas.Material.Features()),
	)

	return atlas, nil
}

func (a *Atlas) assign(ch channel, arr *texture.Array) {
	switch ch.slot {
	case SlotBaseColor:
		a.BaseColor = arr
	case SlotNormal:
		a.Normal = arr
	case SlotMetallic:
		a.Metallic = arr
	case SlotOcclusion:
		a.Occlusion = arr
	}
}
