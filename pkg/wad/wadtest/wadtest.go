// Package wadtest builds small archives in memory for tests.
package wadtest

import (
	"bytes"
	"encoding/binary"
)

type lump struct {
	name string
	data []byte
}

// Builder lays out lumps back to back after the header and appends the
// directory at the end, the way most editors write archives.
type Builder struct {
	magic string
	lumps []lump
}

func New(magic string) *Builder {
	return &Builder{magic: magic}
}

func (b *Builder) Add(name string, data []byte) *Builder {
	b.lumps = append(b.lumps, lump{name, data})
	return b
}

func (b *Builder) Bytes() []byte {
	var buf bytes.Buffer
	var magic [4]byte
	copy(magic[:], b.magic)

	dataSize := 0
	for _, l := range b.lumps {
		dataSize += len(l.data)
	}

	buf.Write(magic[:])
	binary.Write(&buf, binary.LittleEndian, int32(len(b.lumps)))
	binary.Write(&buf, binary.LittleEndian, uint32(12+dataSize))

	offsets := make([]uint32, len(b.lumps))
	for i, l := range b.lumps {
		offsets[i] = uint32(buf.Len())
		buf.Write(l.data)
	}
	for i, l := range b.lumps {
		var name [8]byte
		copy(name[:], l.name)
		binary.Write(&buf, binary.LittleEndian, offsets[i])
		binary.Write(&buf, binary.LittleEndian, int32(len(l.data)))
		buf.Write(name[:])
	}
	return buf.Bytes()
}

// Palette returns a 768 byte palette where every entry is black except those in colors.
func Palette(colors map[byte][3]byte) []byte {
	pal := make([]byte, 768)
	for i, c := range colors {
		copy(pal[int(i)*3:], c[:])
	}
	return pal
}

// Post is one run of pixels in a picture column.
type Post struct {
	Top    byte
	Pixels []byte
}

// Picture encodes a column/post picture. columns must hold width entries.
// Each post is written as top, count, pad, pixels, pad and each column ends
// with 0xFF.
func Picture(width, height int, columns [][]Post) []byte {
	var body bytes.Buffer
	offsets := make([]uint32, width)
	tableEnd := 8 + 4*width
	for x := 0; x < width; x++ {
		offsets[x] = uint32(tableEnd + body.Len())
		for _, p := range columns[x] {
			body.WriteByte(p.Top)
			body.WriteByte(byte(len(p.Pixels)))
			body.WriteByte(0)
			body.Write(p.Pixels)
			body.WriteByte(0)
		}
		body.WriteByte(0xff)
	}

	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, int16(width))
	binary.Write(&buf, binary.LittleEndian, int16(height))
	binary.Write(&buf, binary.LittleEndian, int16(0))
	binary.Write(&buf, binary.LittleEndian, int16(0))
	binary.Write(&buf, binary.LittleEndian, offsets)
	buf.Write(body.Bytes())
	return buf.Bytes()
}

// SolidPicture is a width x height picture of a single palette index, one post
// per column. height must be below 255.
func SolidPicture(width, height int, index byte) []byte {
	column := bytes.Repeat([]byte{index}, height)
	columns := make([][]Post, width)
	for x := range columns {
		columns[x] = []Post{{Top: 0, Pixels: column}}
	}
	return Picture(width, height, columns)
}

// Archive is a PWAD holding PLAYPAL and TITLEPIC, where TITLEPIC is a solid
// width x height picture of index and palette entry index is c.
func Archive(width, height int, index byte, c [3]byte) []byte {
	return New("PWAD").
		Add("PLAYPAL", Palette(map[byte][3]byte{index: c})).
		Add("TITLEPIC", SolidPicture(width, height, index)).
		Bytes()
}
