package texture

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(name string, w, h int, f Format, v byte) *Texture {
	t := New(name, w, h, f)
	for i := range t.Pix {
		t.Pix[i] = v
	}
	return t
}

func TestCopyLayer(t *testing.T) {
	arr := NewArray("base", 4, 4, FormatRGBA8, 3)
	require.Equal(t, 3, arr.LayerCount())

	src := solid("grass", 4, 4, FormatRGBA8, 7)
	require.NoError(t, arr.CopyLayer(1, src))

	assert.True(t, arr.Filled(1))
	assert.False(t, arr.Filled(0))
	assert.Equal(t, src.Pix, arr.Layers[1])
	assert.Equal(t, byte(0), arr.Layers[0][0])
}

func TestCopyLayerMismatch(t *testing.T) {
	arr := NewArray("base", 4, 4, FormatRGBA8, 2)

	tests := []struct {
		name string
		src  *Texture
		want error
	}{
		{"width", solid("a", 8, 4, FormatRGBA8, 1), ErrLayerMismatch},
		{"height", solid("b", 4, 2, FormatRGBA8, 1), ErrLayerMismatch},
		{"format", solid("c", 4, 4, FormatRGB8, 1), ErrLayerMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := arr.CopyLayer(0, tt.src)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.False(t, arr.Filled(0))
		})
	}

	err := arr.CopyLayer(2, solid("d", 4, 4, FormatRGBA8, 1))
	assert.True(t, errors.Is(err, ErrLayerIndex))
}

func TestNewArrayLike(t *testing.T) {
	ref := New("ref", 16, 8, FormatRG8)
	arr := NewArrayLike("normal", ref, 5)

	assert.Equal(t, 16, arr.Width)
	assert.Equal(t, 8, arr.Height)
	assert.Equal(t, FormatRG8, arr.Format)
	assert.Len(t, arr.Layers[4], 16*8*2)
}

func TestFromImageGray(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 2, 2))
	img.SetGray(1, 1, color.Gray{Y: 200})

	tex := FromImage("ao", img, 0)
	assert.Equal(t, FormatR8, tex.Format)
	assert.Equal(t, []byte{0, 0, 0, 200}, tex.Pix)
}

func TestDecodePNG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.SetRGBA(2, 1, color.RGBA{R: 10, G: 20, B: 30, A: 255})

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	tex, err := Decode("grass.png", buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 3, tex.Width)
	assert.Equal(t, 2, tex.Height)
	assert.Equal(t, FormatRGBA8, tex.Format)

	i := (1*3 + 2) * 4
	assert.Equal(t, []byte{10, 20, 30, 255}, tex.Pix[i:i+4])
}

func TestDecodeTGA(t *testing.T) {
	// 2x1 uncompressed 24-bit, top-to-bottom, BGR pixels.
	header := make([]byte, 18)
	header[2] = TGATypeUncompressed
	header[12] = 2
	header[14] = 1
	header[16] = 24
	header[17] = 0x20
	data := append(header, 3, 2, 1, 30, 20, 10)

	tex, err := Decode("dirt.TGA", data)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 255, 10, 20, 30, 255}, tex.Pix)
}

func TestDecodeTGARLE(t *testing.T) {
	// 3x1 RLE 32-bit: one run packet of 3 pixels.
	header := make([]byte, 18)
	header[2] = TGATypeRLE
	header[12] = 3
	header[14] = 1
	header[16] = 32
	header[17] = 0x20
	data := append(header, 0x82, 5, 6, 7, 128)

	img, err := DecodeTGA(data)
	require.NoError(t, err)
	for x := range 3 {
		assert.Equal(t, color.RGBA{R: 7, G: 6, B: 5, A: 128}, img.At(x, 0))
	}
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode("broken.png", []byte("not an image"))
	assert.Error(t, err)

	_, err = DecodeTGA([]byte{1, 2, 3})
	assert.Error(t, err)

	header := make([]byte, 18)
	header[2] = 1
	header[16] = 24
	_, err = DecodeTGA(header)
	assert.Error(t, err)
}

func TestLayerImage(t *testing.T) {
	a := NewArray("base", 2, 1, FormatRGB8, 2)
	src := New("grass", 2, 1, FormatRGB8)
	copy(src.Pix, []byte{10, 20, 30, 40, 50, 60})
	require.NoError(t, a.CopyLayer(1, src))

	img, err := a.LayerImage(1)
	require.NoError(t, err)
	assert.Equal(t, []byte{10, 20, 30, 255, 40, 50, 60, 255}, img.Pix)

	gray := NewArray("control", 1, 1, FormatR8, 1)
	gray.Layers[0][0] = 7
	img, err = gray.LayerImage(0)
	require.NoError(t, err)
	assert.Equal(t, []byte{7, 7, 7, 255}, img.Pix)

	_, err = a.LayerImage(2)
	assert.True(t, errors.Is(err, ErrLayerIndex))
}
