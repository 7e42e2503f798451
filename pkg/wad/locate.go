package wad

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Variant is the game a title picture belongs to. Both share the archive layout
// and differ only in lump names.
type Variant int

const (
	Doom Variant = iota
	Heretic
)

func (v Variant) String() string {
	switch v {
	case Doom:
		return "doom"
	case Heretic:
		return "heretic"
	}
	return "unknown"
}

type variantLumps struct {
	variant Variant
	title   Name
	palette Name
}

// Checked in order: when an archive carries both title names, Doom wins.
var variants = [...]variantLumps{
	{Doom, NameTitlePic, NamePlayPal},
	{Heretic, NameTitle, NamePalette},
}

// Resources are the directory entries needed to render a preview.
type Resources struct {
	Variant Variant
	Palette Entry
	Picture Entry
}

// Locate picks the title picture and palette out of a directory. When a name
// occurs more than once, the entry with the lowest index is used.
func Locate(entries []Entry) (*Resources, error) {
	first := make(map[Name]Entry, 4)
	for _, e := range entries {
		if !isKnown(e.Name) {
			continue
		}
		if _, seen := first[e.Name]; !seen {
			first[e.Name] = e
		}
	}

	var res *Resources
	for _, v := range variants {
		title, ok := first[v.title]
		if !ok {
			continue
		}
		res = &Resources{Variant: v.variant, Picture: title}
		if pal, ok := first[v.palette]; ok {
			res.Palette = pal
		} else if pal, ok := first[NamePlayPal]; ok {
			res.Palette = pal
		} else {
			return nil, errors.Wrapf(ErrResourceNotFound, "no palette for %s title picture", v.variant)
		}
		break
	}
	if res == nil {
		return nil, errors.Wrap(ErrResourceNotFound, "no title picture")
	}

	if res.Palette.Size < PaletteSize {
		return nil, errors.Wrapf(ErrMalformedLump, "palette %s is %d bytes, need %d", res.Palette.Name, res.Palette.Size, PaletteSize)
	}
	if res.Picture.Size < PictureHeaderSize {
		return nil, errors.Wrapf(ErrMalformedLump, "picture %s is %d bytes, too small for a header", res.Picture.Name, res.Picture.Size)
	}

	logrus.Debugf(
		"located %s resources: %s at %d (%d bytes), %s at %d (%d bytes)",
		res.Variant,
		res.Picture.Name, res.Picture.Offset, res.Picture.Size,
		res.Palette.Name, res.Palette.Offset, res.Palette.Size,
	)
	return res, nil
}

func isKnown(n Name) bool {
	for _, v := range variants {
		if n == v.title || n == v.palette {
			return true
		}
	}
	return false
}
