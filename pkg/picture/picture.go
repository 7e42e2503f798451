// Package picture decodes palette indexed images stored in archive lumps: the
// column/post format used for title screens, sprites and wall patches, and the
// raw full-screen format Heretic uses for its title.
package picture

import (
	"encoding/binary"

	"github.com/chocolatkey/wadthumb/pkg/wad"
	"github.com/pkg/errors"
)

// MaxPixels bounds the raster a picture header may ask for. Width and height
// are 16 bit, so without a limit a hostile header could demand gigabytes.
const MaxPixels = 16 << 20

const (
	postEnd     = 0xff
	postPadding = 4 // top, count, and one unused byte on each side of the run
)

// Header is the fixed prefix of a column/post picture.
type Header struct {
	Width      int16
	Height     int16
	LeftOffset int16
	TopOffset  int16
}

// Indexed is a decoded raster of palette indices. Pixels no post wrote to
// have Opaque false.
type Indexed struct {
	Width, Height         int
	LeftOffset, TopOffset int
	Pix                   []byte // row major, Width*Height
	Opaque                []bool

	// Clipped counts posts that ran past the bottom of the picture or the
	// end of the lump and were cut short, plus columns abandoned at a post
	// out of row order.
	Clipped int
}

func newIndexed(w, h int) *Indexed {
	return &Indexed{
		Width:  w,
		Height: h,
		Pix:    make([]byte, w*h),
		Opaque: make([]bool, w*h),
	}
}

func (img *Indexed) set(x, y int, index byte) {
	i := y*img.Width + x
	img.Pix[i] = index
	img.Opaque[i] = true
}

// At returns the palette index at x, y and whether anything was drawn there.
func (img *Indexed) At(x, y int) (byte, bool) {
	i := y*img.Width + x
	return img.Pix[i], img.Opaque[i]
}

func ParseHeader(lump []byte) (Header, error) {
	if len(lump) < wad.PictureHeaderSize {
		return Header{}, errors.Wrapf(wad.ErrMalformedLump, "picture is %d bytes, too small for a header", len(lump))
	}
	return Header{
		Width:      int16(binary.LittleEndian.Uint16(lump[0:])),
		Height:     int16(binary.LittleEndian.Uint16(lump[2:])),
		LeftOffset: int16(binary.LittleEndian.Uint16(lump[4:])),
		TopOffset:  int16(binary.LittleEndian.Uint16(lump[6:])),
	}, nil
}

// Decode expands a column/post picture. Structural problems (bad header,
// column offsets outside the lump) are errors; a post that overruns the
// picture is clipped and counted in Clipped instead.
func Decode(lump []byte) (*Indexed, error) {
	hdr, err := ParseHeader(lump)
	if err != nil {
		return nil, err
	}
	w, h := int(hdr.Width), int(hdr.Height)
	if w <= 0 || h <= 0 {
		return nil, errors.Wrapf(wad.ErrMalformedLump, "picture has non-positive size %dx%d", w, h)
	}
	if w*h > MaxPixels {
		return nil, errors.Wrapf(wad.ErrMalformedLump, "picture size %dx%d exceeds %d pixels", w, h, MaxPixels)
	}
	tableEnd := wad.PictureHeaderSize + 4*w
	if tableEnd > len(lump) {
		return nil, errors.Wrapf(wad.ErrMalformedLump, "column table for %d columns overruns %d byte lump", w, len(lump))
	}

	columns := make([]int, w)
	for x := range columns {
		off := binary.LittleEndian.Uint32(lump[wad.PictureHeaderSize+4*x:])
		if int64(off) >= int64(len(lump)) {
			return nil, errors.Wrapf(wad.ErrMalformedLump, "column %d offset %d outside %d byte lump", x, off, len(lump))
		}
		columns[x] = int(off)
	}

	img := newIndexed(w, h)
	img.LeftOffset, img.TopOffset = int(hdr.LeftOffset), int(hdr.TopOffset)
	for x, off := range columns {
		img.drawColumn(lump, x, off)
	}
	return img, nil
}

// drawColumn walks the posts of column x starting at p. Running into the end
// of the lump before the terminator simply ends the column. Posts must start
// below the end of the previous one; a post that doesn't, or starts below the
// picture, ends the column as clipped. That keeps the walk to at most one
// post per row however the lump is crafted.
func (img *Indexed) drawColumn(lump []byte, x, p int) {
	next := 0 // first row the next post may start at
	for p+1 < len(lump) {
		top := int(lump[p])
		if top == postEnd {
			return
		}
		if top < next || top >= img.Height {
			img.Clipped++
			return
		}
		count := int(lump[p+1])
		data := p + 3

		n := count
		if avail := len(lump) - data; n > avail {
			n = max(avail, 0)
		}
		if top+n > img.Height {
			n = img.Height - top
		}
		if n < count {
			img.Clipped++
		}
		for i := 0; i < n; i++ {
			img.set(x, top+i, lump[data+i])
		}

		next = top + max(count, 1)
		p += count + postPadding
	}
}

const (
	ScreenWidth  = 320
	ScreenHeight = 200
	ScreenSize   = ScreenWidth * ScreenHeight
)

// DecodeScreen expands a raw 320x200 full-screen image, one index per pixel
// with no header. Every pixel is opaque.
func DecodeScreen(lump []byte) (*Indexed, error) {
	if len(lump) < ScreenSize {
		return nil, errors.Wrapf(wad.ErrMalformedLump, "screen is %d bytes, need %d", len(lump), ScreenSize)
	}
	img := newIndexed(ScreenWidth, ScreenHeight)
	copy(img.Pix, lump[:ScreenSize])
	for i := range img.Opaque {
		img.Opaque[i] = true
	}
	return img, nil
}
