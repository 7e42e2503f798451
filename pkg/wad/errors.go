package wad

import "github.com/pkg/errors"

// Every failure returned by this module wraps exactly one of these, so callers
// can classify with errors.Is regardless of which layer produced it.
var (
	ErrIO               = errors.New("wad: i/o error")
	ErrMalformedHeader  = errors.New("wad: malformed header")
	ErrResourceNotFound = errors.New("wad: resource not found")
	ErrMalformedLump    = errors.New("wad: malformed lump")
	ErrDecodeFailed     = errors.New("wad: decode failed")
)
