package wad

const (
	HeaderSize = 12 // magic, lump count, directory offset
	EntrySize  = 16 // offset, size, name
	NameSize   = 8
)

// Recognized archive tags. Internal archives ship with the game, patch
// archives are user content layered on top; both share one layout.
var (
	MagicIWAD = [4]byte{'I', 'W', 'A', 'D'}
	MagicPWAD = [4]byte{'P', 'W', 'A', 'D'}
)

// Lump identifiers consulted when picking a preview.
var (
	NameTitlePic = MakeName("TITLEPIC") // Doom title screen, column/post picture
	NameTitle    = MakeName("TITLE")    // Heretic title screen
	NamePlayPal  = MakeName("PLAYPAL")  // default palette
	NamePalette  = MakeName("PALETTE")  // Heretic palette, preferred over PLAYPAL
)

const PaletteSize = 256 * 3

// PictureHeaderSize is width, height, left and top offsets, 2 bytes each.
const PictureHeaderSize = 8
