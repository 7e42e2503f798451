package picture

import (
	"image/color"

	"github.com/chocolatkey/wadthumb/pkg/wad"
	"github.com/pkg/errors"
)

// Palette is 256 raw R, G, B triplets. Lumps such as PLAYPAL hold several
// palettes back to back; only the first is used.
type Palette [256][3]byte

func ParsePalette(lump []byte) (*Palette, error) {
	if len(lump) < wad.PaletteSize {
		return nil, errors.Wrapf(wad.ErrMalformedLump, "palette is %d bytes, need %d", len(lump), wad.PaletteSize)
	}
	var p Palette
	for i := range p {
		copy(p[i][:], lump[i*3:i*3+3])
	}
	return &p, nil
}

// RGBA returns the opaque color for palette index i.
func (p *Palette) RGBA(i byte) color.RGBA {
	c := p[i]
	return color.RGBA{R: c[0], G: c[1], B: c[2], A: 0xff}
}
