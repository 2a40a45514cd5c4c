// Package texture provides CPU-side textures, array textures and the layer
// copy primitive used to pack per-type materials.
package texture

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// Texture errors.
var (
	ErrLayerMismatch = errors.New("layer does not match array texture")
	ErrLayerIndex    = errors.New("layer index out of range")
)

// Format is a pixel format.
type Format uint8

// Supported pixel formats.
const (
	FormatR8 Format = iota + 1
	FormatRG8
	FormatRGB8
	FormatRGBA8
)

// BytesPerPixel returns the pixel size of the format.
func (f Format) BytesPerPixel() int {
	switch f {
	case FormatR8:
		return 1
	case FormatRG8:
		return 2
	case FormatRGB8:
		return 3
	case FormatRGBA8:
		return 4
	default:
		return 0
	}
}

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatR8:
		return "R8"
	case FormatRG8:
		return "RG8"
	case FormatRGB8:
		return "RGB8"
	case FormatRGBA8:
		return "RGBA8"
	default:
		return fmt.Sprintf("Format(%d)", f)
	}
}

// Texture is a tightly packed 2D image.
type Texture struct {
	Name   string
	Width  int
	Height int
	Format Format
	Pix    []byte
}

// New allocates a zeroed texture.
func New(name string, width, height int, format Format) *Texture {
	return &Texture{
		Name:   name,
		Width:  width,
		Height: height,
		Format: format,
		Pix:    make([]byte, width*height*format.BytesPerPixel()),
	}
}

// FromImage converts any image to a texture of the given format.
// Gray images convert to R8 when format is zero.
func FromImage(name string, img image.Image, format Format) *Texture {
	if format == 0 {
		format = FormatRGBA8
		if _, ok := img.(*image.Gray); ok {
			format = FormatR8
		}
	}

	b := img.Bounds()
	t := New(name, b.Dx(), b.Dy(), format)
	bpp := format.BytesPerPixel()

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			px := [4]byte{c.R, c.G, c.B, c.A}
			i := ((y-b.Min.Y)*t.Width + (x - b.Min.X)) * bpp
			copy(t.Pix[i:i+bpp], px[:bpp])
		}
	}
	return t
}

// Array is a layered texture: every layer shares width, height and format.
type Array struct {
	Name   string
	Width  int
	Height int
	Format Format
	Layers [][]byte
	filled []bool
}

// NewArray allocates an array texture with the given layer count.
func NewArray(name string, width, height int, format Format, layers int) *Array {
	a := &Array{
		Name:   name,
		Width:  width,
		Height: height,
		Format: format,
		Layers: make([][]byte, layers),
		filled: make([]bool, layers),
	}
	size := width * height * format.BytesPerPixel()
	for i := range a.Layers {
		a.Layers[i] = make([]byte, size)
	}
	return a
}

// NewArrayLike allocates an array whose layer shape is taken from ref.
func NewArrayLike(name string, ref *Texture, layers int) *Array {
	return NewArray(name, ref.Width, ref.Height, ref.Format, layers)
}

// LayerCount returns the number of layers.
func (a *Array) LayerCount() int {
	return len(a.Layers)
}

// Filled reports whether layer i has been written by CopyLayer.
func (a *Array) Filled(i int) bool {
	return i >= 0 && i < len(a.filled) && a.filled[i]
}

// CopyLayer copies src into layer i. The source must match the array's
// width, height and format exactly.
func (a *Array) CopyLayer(i int, src *Texture) error {
	if i < 0 || i >= len(a.Layers) {
		return fmt.Errorf("%w: %d of %d", ErrLayerIndex, i, len(a.Layers))
	}
	if src.Width != a.Width || src.Height != a.Height || src.Format != a.Format {
		return fmt.Errorf("%w: %s is %dx%d %s, %s wants %dx%d %s", ErrLayerMismatch,
			src.Name, src.Width, src.Height, src.Format,
			a.Name, a.Width, a.Height, a.Format)
	}
	if len(src.Pix) != len(a.Layers[i]) {
		return fmt.Errorf("%w: %s has %d bytes, want %d", ErrLayerMismatch, src.Name, len(src.Pix), len(a.Layers[i]))
	}
	copy(a.Layers[i], src.Pix)
	a.filled[i] = true
	return nil
}

// LayerImage returns layer i as an NRGBA image. Missing channels read as
// zero and alpha defaults to opaque.
func (a *Array) LayerImage(i int) (*image.NRGBA, error) {
	if i < 0 || i >= len(a.Layers) {
		return nil, fmt.Errorf("%w: %d of %d", ErrLayerIndex, i, len(a.Layers))
	}
	img := image.NewNRGBA(image.Rect(0, 0, a.Width, a.Height))
	bpp := a.Format.BytesPerPixel()
	src := a.Layers[i]
	for p := range a.Width * a.Height {
		px := [4]byte{0, 0, 0, 255}
		copy(px[:bpp], src[p*bpp:(p+1)*bpp])
		if bpp == 1 {
			px[1], px[2] = px[0], px[0]
		}
		copy(img.Pix[p*4:p*4+4], px[:])
	}
	return img, nil
}
