package gpu

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/midgard-terrain/internal/engine/texture"
)

// glFormat maps a texture format to GL internal format and pixel format.
func glFormat(f texture.Format) (internal int32, format uint32, err error) {
	switch f {
	case texture.FormatR8:
		return gl.R8, gl.RED, nil
	case texture.FormatRG8:
		return gl.RG8, gl.RG, nil
	case texture.FormatRGB8:
		return gl.RGB8, gl.RGB, nil
	case texture.FormatRGBA8:
		return gl.RGBA8, gl.RGBA, nil
	}
	return 0, 0, fmt.Errorf("unsupported texture format %s", f)
}

// UploadArray creates a TEXTURE_2D_ARRAY holding every layer of a. Layers
// that were never filled stay black.
func UploadArray(a *texture.Array) (uint32, error) {
	internal, format, err := glFormat(a.Format)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", a.Name, err)
	}

	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D_ARRAY, id)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)

	gl.TexImage3D(gl.TEXTURE_2D_ARRAY, 0, internal,
		int32(a.Width), int32(a.Height), int32(a.LayerCount()),
		0, format, gl.UNSIGNED_BYTE, nil)

	for i, layer := range a.Layers {
		if !a.Filled(i) {
			continue
		}
		gl.TexSubImage3D(gl.TEXTURE_2D_ARRAY, 0,
			0, 0, int32(i),
			int32(a.Width), int32(a.Height), 1,
			format, gl.UNSIGNED_BYTE, gl.Ptr(layer))
	}

	gl.GenerateMipmap(gl.TEXTURE_2D_ARRAY)
	gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.TexParameterf(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_MAX_ANISOTROPY, 8.0)
	gl.BindTexture(gl.TEXTURE_2D_ARRAY, 0)

	return id, nil
}

// UploadTexture creates or refreshes a nearest-filtered TEXTURE_2D from t.
// Pass id 0 to create a new texture.
func UploadTexture(id uint32, t *texture.Texture) (uint32, error) {
	internal, format, err := glFormat(t.Format)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", t.Name, err)
	}

	if id == 0 {
		gl.GenTextures(1, &id)
	}
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, internal,
		int32(t.Width), int32(t.Height),
		0, format, gl.UNSIGNED_BYTE, gl.Ptr(t.Pix))

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	return id, nil
}
