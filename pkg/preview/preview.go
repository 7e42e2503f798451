package preview

import (
	"image"

	"github.com/chocolatkey/wadthumb/pkg/picture"
)

// Decode maps an indexed raster through pal. Pixels nothing was drawn to
// stay fully transparent.
func Decode(src *picture.Indexed, pal *picture.Palette) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, src.Width, src.Height))
	bounds := img.Bounds()
	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		out := img.PixOffset(bounds.Min.X, y)
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if src.Opaque[i] {
				c := pal[src.Pix[i]]
				img.Pix[out] = c[0]
				img.Pix[out+1] = c[1]
				img.Pix[out+2] = c[2]
				img.Pix[out+3] = 0xff
			}
			out += 4
			i++
		}
	}
	return img
}
