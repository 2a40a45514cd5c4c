package texture

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp" // BMP decoder registration
)

// Decode decodes an encoded image into a texture. TGA is handled here,
// everything else goes through the registered image decoders.
func Decode(name string, data []byte) (*Texture, error) {
	var img image.Image
	var err error

	if strings.EqualFold(filepath.Ext(name), ".tga") {
		img, err = DecodeTGA(data)
	} else {
		img, _, err = image.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return FromImage(name, img, 0), nil
}

// TGA image types.
const (
	TGATypeUncompressed = 2
	TGATypeRLE          = 10
)

// DecodeTGA decodes uncompressed or RLE true-color TGA data (24 or 32 bpp).
func DecodeTGA(data []byte) (image.Image, error) {
	if len(data) < 18 {
		return nil, fmt.Errorf("TGA data too short")
	}

	idLength := int(data[0])
	colorMapType := data[1]
	imageType := int(data[2])
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	topToBottom := data[17]&0x20 != 0

	if colorMapType != 0 {
		return nil, fmt.Errorf("color-mapped TGA not supported")
	}
	if imageType != TGATypeUncompressed && imageType != TGATypeRLE {
		return nil, fmt.Errorf("unsupported TGA type %d", imageType)
	}
	if bpp != 24 && bpp != 32 {
		return nil, fmt.Errorf("unsupported TGA bit depth %d", bpp)
	}
	if 18+idLength > len(data) {
		return nil, fmt.Errorf("TGA data truncated")
	}

	r := &tgaReader{data: data[18+idLength:], bpp: bpp / 8}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	total := width * height

	put := func(i int, c color.RGBA) {
		x, y := i%width, i/width
		if !topToBottom {
			y = height - 1 - y
		}
		img.SetRGBA(x, y, c)
	}

	if imageType == TGATypeUncompressed {
		if len(r.data) < total*r.bpp {
			return nil, fmt.Errorf("TGA pixel data truncated")
		}
		for i := range total {
			c, _ := r.pixel()
			put(i, c)
		}
		return img, nil
	}

	for i := 0; i < total; {
		header, ok := r.byte()
		if !ok {
			break
		}
		count := int(header&0x7F) + 1
		if header&0x80 != 0 {
			c, ok := r.pixel()
			if !ok {
				break
			}
			for ; count > 0 && i < total; count-- {
				put(i, c)
				i++
			}
			continue
		}
		for ; count > 0 && i < total; count-- {
			c, ok := r.pixel()
			if !ok {
				return img, nil
			}
			put(i, c)
			i++
		}
	}
	return img, nil
}

// tgaReader reads BGR(A) pixels sequentially.
type tgaReader struct {
	data []byte
	pos  int
	bpp  int
}

func (r *tgaReader) byte() (byte, bool) {
	if r.pos >= len(r.data) {
		return 0, false
	}
	b := r.data[r.pos]
	r.pos++
	return b, true
}

func (r *tgaReader) pixel() (color.RGBA, bool) {
	if r.pos+r.bpp > len(r.data) {
		return color.RGBA{}, false
	}
	p := r.data[r.pos : r.pos+r.bpp]
	r.pos += r.bpp
	c := color.RGBA{R: p[2], G: p[1], B: p[0], A: 255}
	if r.bpp == 4 {
		c.A = p[3]
	}
	return c, true
}
