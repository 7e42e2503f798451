// Package scale fits images into square thumbnails.
package scale

import (
	"image"

	"github.com/pkg/errors"
	"golang.org/x/image/draw"
)

var (
	ErrInvalidSize = errors.New("scale: requested size must be positive")
	ErrEmptyImage  = errors.New("scale: source image has no area")
)

// Mode is the resampling Fit picked.
type Mode int

const (
	Copy Mode = iota
	Enlarge
	Shrink
)

func (m Mode) String() string {
	switch m {
	case Copy:
		return "copy"
	case Enlarge:
		return "nearest-neighbor"
	case Shrink:
		return "bilinear"
	}
	return "unknown"
}

// Bounds returns where src's content lands inside a size x size canvas: the
// longer side spans the canvas, the shorter is scaled proportionally (rounded,
// never below one pixel) and centred.
func Bounds(src image.Rectangle, size int) image.Rectangle {
	sw, sh := src.Dx(), src.Dy()
	longest := max(sw, sh)
	dw := max((2*sw*size+longest)/(2*longest), 1)
	dh := max((2*sh*size+longest)/(2*longest), 1)
	x0, y0 := (size-dw)/2, (size-dh)/2
	return image.Rect(x0, y0, x0+dw, y0+dh)
}

// Fit returns a transparent size x size canvas with src scaled onto it
// without distortion. Shrinking filters with a bilinear kernel widened to the
// scale factor so detail is averaged rather than aliased; enlarging repeats
// pixels.
func Fit(src image.Image, size int) (*image.RGBA, Mode, error) {
	if size <= 0 {
		return nil, Copy, errors.Wrapf(ErrInvalidSize, "got %d", size)
	}
	sb := src.Bounds()
	if sb.Empty() {
		return nil, Copy, ErrEmptyImage
	}

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	dr := Bounds(sb, size)
	longest := max(sb.Dx(), sb.Dy())

	var mode Mode
	switch {
	case longest == size:
		mode = Copy
		draw.Draw(dst, dr, src, sb.Min, draw.Src)
	case longest < size:
		mode = Enlarge
		draw.NearestNeighbor.Scale(dst, dr, src, sb, draw.Src, nil)
	default:
		mode = Shrink
		draw.BiLinear.Scale(dst, dr, src, sb, draw.Src, nil)
	}
	return dst, mode, nil
}
