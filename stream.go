package wadthumb

import (
	"bytes"
	"io"

	"github.com/pkg/errors"
)

// Hosts often hand over a forward-only stream. It is buffered in memory,
// starting with room for a typical IWAD and growing in steps up to a hard
// limit.
const (
	DefaultBufferSize = 24 << 20
	BufferIncrement   = 4 << 20
	MaxArchiveSize    = 256 << 20
)

// ReadArchive buffers all of r. Streams longer than MaxArchiveSize fail with ErrIO.
func ReadArchive(r io.Reader) ([]byte, error) {
	return readArchive(r, DefaultBufferSize, BufferIncrement, MaxArchiveSize)
}

func readArchive(r io.Reader, initial, increment, limit int) ([]byte, error) {
	buf := make([]byte, 0, min(initial, limit))
	for {
		if len(buf) == cap(buf) {
			if len(buf) >= limit {
				// Full at the limit; one more byte means the stream is too long.
				var probe [1]byte
				n, err := io.ReadFull(r, probe[:])
				if n > 0 {
					return nil, errors.Wrapf(ErrIO, "archive exceeds %d bytes", limit)
				}
				if err == io.EOF {
					return buf, nil
				}
				return nil, errors.Wrapf(ErrIO, "failed reading archive: %v", err)
			}
			grown := make([]byte, len(buf), min(cap(buf)+increment, limit))
			copy(grown, buf)
			buf = grown
		}
		n, err := r.Read(buf[len(buf):cap(buf)])
		buf = buf[:len(buf)+n]
		if err == io.EOF {
			return buf, nil
		}
		if err != nil {
			return nil, errors.Wrapf(ErrIO, "failed reading archive after %d bytes: %v", len(buf), err)
		}
	}
}

// ThumbnailStream buffers r with ReadArchive and renders it.
func (t *Thumbnailer) ThumbnailStream(r io.Reader, size int) (*Thumbnail, error) {
	data, err := ReadArchive(r)
	if err != nil {
		return nil, err
	}
	return t.Thumbnail(bytes.NewReader(data), int64(len(data)), size)
}
