// Package thumbcache keeps recently rendered thumbnails keyed by the content
// of the archive they came from, so renamed or copied files hit the cache.
package thumbcache

import (
	"io"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/chocolatkey/wadthumb"
)

type Key struct {
	Sum  uint64 // xxhash of the archive bytes
	Size int    // requested edge
}

// KeyOf hashes everything r yields.
func KeyOf(r io.Reader, size int) (Key, error) {
	d := xxhash.New()
	if _, err := io.Copy(d, r); err != nil {
		return Key{}, errors.Wrap(wadthumb.ErrIO, err.Error())
	}
	return Key{Sum: d.Sum64(), Size: size}, nil
}

func KeyOfBytes(data []byte, size int) Key {
	return Key{Sum: xxhash.Sum64(data), Size: size}
}

// Cache is safe for concurrent use. Failures are not cached.
type Cache struct {
	entries *lru.Cache[Key, *wadthumb.Thumbnail]
}

func New(entries int) (*Cache, error) {
	c, err := lru.New[Key, *wadthumb.Thumbnail](entries)
	if err != nil {
		return nil, errors.Wrap(err, "failed creating thumbnail cache")
	}
	return &Cache{entries: c}, nil
}

func (c *Cache) Get(k Key) (*wadthumb.Thumbnail, bool) {
	return c.entries.Get(k)
}

func (c *Cache) Add(k Key, t *wadthumb.Thumbnail) {
	if c.entries.Add(k, t) {
		logrus.Debugln("thumbnail cache full, evicted oldest entry")
	}
}

func (c *Cache) Len() int {
	return c.entries.Len()
}

// GetOrRender returns the cached thumbnail for k or calls render and caches
// its result. Two concurrent misses on one key may both render.
func (c *Cache) GetOrRender(k Key, render func() (*wadthumb.Thumbnail, error)) (*wadthumb.Thumbnail, error) {
	if t, ok := c.entries.Get(k); ok {
		logrus.Debugf("thumbnail cache hit %016x@%d", k.Sum, k.Size)
		return t, nil
	}
	t, err := render()
	if err != nil {
		return nil, err
	}
	c.Add(k, t)
	return t, nil
}
