package wad

import "bytes"

// Name is the raw 8 byte lump identifier. It is not necessarily NUL
// terminated and is compared byte for byte, case sensitively.
type Name [NameSize]byte

// MakeName pads (or truncates) s to a Name.
func MakeName(s string) Name {
	var n Name
	copy(n[:], s)
	return n
}

func (n Name) String() string {
	i := bytes.IndexByte(n[:], 0)
	if i == -1 {
		i = len(n)
	}
	return string(n[:i])
}
