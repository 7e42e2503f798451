// Package wadthumb renders preview thumbnails of WAD game archives from
// their title screen.
//
// The pipeline reads the archive directory, locates the title picture and
// palette for the game the archive belongs to, decodes the picture and fits
// it into a square, transparent padded canvas:
//
//	thumb, err := wadthumb.New().Thumbnail(f, info.Size(), 256)
//
// Corrupt input is reported as one of the error values below and never
// panics, so a host enumerating many files can fall back to a generic icon.
package wadthumb

import (
	"fmt"
	"image"
	"io"

	"github.com/chocolatkey/wadthumb/pkg/picture"
	"github.com/chocolatkey/wadthumb/pkg/preview"
	"github.com/chocolatkey/wadthumb/pkg/scale"
	"github.com/chocolatkey/wadthumb/pkg/wad"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// MaxThumbnailSize is the largest edge a caller may request.
const MaxThumbnailSize = 4096

var (
	ErrIO               = wad.ErrIO
	ErrMalformedHeader  = wad.ErrMalformedHeader
	ErrResourceNotFound = wad.ErrResourceNotFound
	ErrMalformedLump    = wad.ErrMalformedLump
	ErrDecodeFailed     = wad.ErrDecodeFailed
)

// Thumbnail is a square RGBA raster. Padding around non-square art is
// transparent, so HasAlpha is always set.
type Thumbnail struct {
	Image    *image.RGBA
	Variant  wad.Variant
	HasAlpha bool
}

func (t *Thumbnail) Width() int {
	return t.Image.Bounds().Dx()
}

func (t *Thumbnail) Height() int {
	return t.Image.Bounds().Dy()
}

// Pix is the raster as premultiplied RGBA, 4 bytes per pixel with no row padding.
func (t *Thumbnail) Pix() []byte {
	return t.Image.Pix
}

// Thumbnailer holds no state between calls; one value may serve concurrent
// requests.
type Thumbnailer struct{}

func New() *Thumbnailer {
	return &Thumbnailer{}
}

// Thumbnail renders the archive held in r, which is length bytes long, as a
// size x size thumbnail.
func (t *Thumbnailer) Thumbnail(r io.ReaderAt, length int64, size int) (thumb *Thumbnail, err error) {
	defer func() {
		if p := recover(); p != nil {
			logrus.Warnf("recovered while rendering thumbnail: %v", p)
			thumb = nil
			err = errors.Wrap(ErrDecodeFailed, fmt.Sprint(p))
		}
	}()

	if size < 1 || size > MaxThumbnailSize {
		return nil, errors.Wrapf(ErrDecodeFailed, "requested size %d outside 1..%d", size, MaxThumbnailSize)
	}

	archive, err := wad.Open(r, length)
	if err != nil {
		return nil, err
	}
	res, err := wad.Locate(archive.Entries)
	if err != nil {
		return nil, err
	}

	palLump, err := archive.ReadLump(res.Palette)
	if err != nil {
		return nil, err
	}
	pal, err := picture.ParsePalette(palLump)
	if err != nil {
		return nil, err
	}

	picLump, err := archive.ReadLump(res.Picture)
	if err != nil {
		return nil, err
	}
	indexed, err := decodeTitle(res.Variant, picLump)
	if err != nil {
		return nil, err
	}
	if indexed.Clipped > 0 {
		logrus.Debugf("clipped %d malformed posts in %s", indexed.Clipped, res.Picture.Name)
	}

	img, mode, err := scale.Fit(preview.Decode(indexed, pal), size)
	if err != nil {
		return nil, errors.Wrap(ErrDecodeFailed, err.Error())
	}
	logrus.Debugf("scaled %dx%d %s title to %d using %s", indexed.Width, indexed.Height, res.Variant, size, mode)

	return &Thumbnail{Image: img, Variant: res.Variant, HasAlpha: true}, nil
}

// Heretic stores its title as a bare 320x200 screen; anything else is a
// column/post picture.
func decodeTitle(v wad.Variant, lump []byte) (*picture.Indexed, error) {
	if v == wad.Heretic && len(lump) == picture.ScreenSize {
		return picture.DecodeScreen(lump)
	}
	return picture.Decode(lump)
}
