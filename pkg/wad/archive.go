package wad

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type Header struct {
	Magic           [4]byte
	LumpCount       int32
	DirectoryOffset uint32
}

// Entry is one record of the lump directory. Open does not check entries
// against the stream; use Within, or let ReadLump reject them.
type Entry struct {
	Offset uint32
	Size   int32
	Name   Name
}

// Within reports whether the entry's byte range lies inside a stream of the given length.
func (e Entry) Within(length int64) bool {
	return e.Size >= 0 && int64(e.Offset)+int64(e.Size) <= length
}

// Archive is a parsed header and directory over a random access byte source.
// Lump contents are only read on demand.
type Archive struct {
	r       io.ReaderAt
	length  int64
	Header  Header
	Entries []Entry // on-disk order, offsets and sizes unvalidated
}

// Open validates the header and reads the whole directory of the archive
// held in r, which must be length bytes long.
func Open(r io.ReaderAt, length int64) (*Archive, error) {
	if length < HeaderSize {
		return nil, errors.Wrapf(ErrMalformedHeader, "archive is %d bytes, need at least %d", length, HeaderSize)
	}

	var raw [HeaderSize]byte
	if err := readFull(r, raw[:], 0); err != nil {
		return nil, errors.Wrap(err, "failed reading header")
	}

	a := &Archive{r: r, length: length}
	copy(a.Header.Magic[:], raw[0:4])
	a.Header.LumpCount = int32(binary.LittleEndian.Uint32(raw[4:]))
	a.Header.DirectoryOffset = binary.LittleEndian.Uint32(raw[8:])

	if a.Header.Magic != MagicIWAD && a.Header.Magic != MagicPWAD {
		return nil, errors.Wrapf(ErrMalformedHeader, "unrecognized magic %q", a.Header.Magic[:])
	}
	if a.Header.LumpCount < 0 {
		return nil, errors.Wrapf(ErrMalformedHeader, "negative lump count %d", a.Header.LumpCount)
	}
	// Both operands fit comfortably in int64, so this cannot overflow.
	dirEnd := int64(a.Header.DirectoryOffset) + int64(a.Header.LumpCount)*EntrySize
	if dirEnd > length {
		return nil, errors.Wrapf(
			ErrMalformedHeader,
			"directory of %d entries at %d ends past archive length %d",
			a.Header.LumpCount, a.Header.DirectoryOffset, length,
		)
	}

	if err := a.readDirectory(); err != nil {
		return nil, err
	}
	logrus.Debugf("opened %s with %d lumps", a.Header.Magic[:], len(a.Entries))
	return a, nil
}

func (a *Archive) readDirectory() error {
	count := int(a.Header.LumpCount)
	dir := make([]byte, count*EntrySize)
	if err := readFull(a.r, dir, int64(a.Header.DirectoryOffset)); err != nil {
		return errors.Wrap(err, "failed reading lump directory")
	}

	a.Entries = make([]Entry, count)
	for i := range a.Entries {
		rec := dir[i*EntrySize : (i+1)*EntrySize]
		e := &a.Entries[i]
		e.Offset = binary.LittleEndian.Uint32(rec[0:])
		e.Size = int32(binary.LittleEndian.Uint32(rec[4:]))
		copy(e.Name[:], rec[8:16])
	}
	return nil
}

// Length is the total byte length of the underlying source.
func (a *Archive) Length() int64 {
	return a.length
}

// ReadLump returns the bytes of e, which must lie inside the archive.
func (a *Archive) ReadLump(e Entry) ([]byte, error) {
	if !e.Within(a.length) {
		return nil, errors.Wrapf(
			ErrMalformedLump,
			"lump %s (offset %d, size %d) lies outside archive of %d bytes",
			e.Name, e.Offset, e.Size, a.length,
		)
	}
	lump := make([]byte, e.Size)
	if err := readFull(a.r, lump, int64(e.Offset)); err != nil {
		return nil, errors.Wrapf(err, "failed reading lump %s", e.Name)
	}
	return lump, nil
}

// readFull fills buf from r at off. ReaderAt may report io.EOF alongside a
// complete read, which is not an error here.
func readFull(r io.ReaderAt, buf []byte, off int64) error {
	n, err := r.ReadAt(buf, off)
	if n == len(buf) {
		return nil
	}
	if err == nil {
		err = io.ErrUnexpectedEOF
	}
	return errors.Wrapf(ErrIO, "read of %d bytes at %d returned %d: %v", len(buf), off, n, err)
}
