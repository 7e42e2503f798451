package main

import (
	"image"
	"image/png"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"

	"github.com/chocolatkey/wadthumb"
	"github.com/chocolatkey/wadthumb/pkg/registry"
	"github.com/chocolatkey/wadthumb/pkg/thumbcache"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/bmp"
)

type server struct {
	root     string
	registry *registry.Registry[*wadthumb.Thumbnailer]
	cache    *thumbcache.Cache
}

// render produces the thumbnail for one file, going through the cache.
func (s *server) render(name string, size int) (*wadthumb.Thumbnail, error) {
	provider, release, err := s.registry.Acquire(filepath.Ext(name))
	if err != nil {
		return nil, err
	}
	defer release()

	f, err := os.Open(filepath.Join(s.root, filepath.FromSlash(name)))
	if err != nil {
		return nil, errors.Wrap(err, "failed opening archive")
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, errors.Wrap(err, "failed reading archive info")
	}
	if info.Size() > wadthumb.MaxArchiveSize {
		return nil, errors.Wrapf(wadthumb.ErrIO, "archive is %d bytes, limit is %d", info.Size(), wadthumb.MaxArchiveSize)
	}

	key, err := thumbcache.KeyOf(io.NewSectionReader(f, 0, info.Size()), size)
	if err != nil {
		return nil, err
	}
	return s.cache.GetOrRender(key, func() (*wadthumb.Thumbnail, error) {
		return provider.Thumbnail(f, info.Size(), size)
	})
}

func (s *server) handleThumbnail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request body", http.StatusBadRequest)
		return
	}

	file := r.FormValue("file")
	if file == "" {
		http.Error(w, "Missing file", http.StatusBadRequest)
		return
	}
	// Rooting the path before cleaning keeps ".." from escaping the served directory.
	name := path.Clean("/" + file)[1:]
	if name == "" {
		http.Error(w, "Invalid file", http.StatusBadRequest)
		return
	}

	size, err := strconv.Atoi(r.FormValue("size"))
	if err != nil || size < 1 || size > wadthumb.MaxThumbnailSize {
		http.Error(w, "Invalid/empty size", http.StatusBadRequest)
		return
	}

	var encode func(io.Writer, image.Image) error
	var contentType string
	switch r.FormValue("format") {
	case "", "bmp":
		encode, contentType = bmp.Encode, "image/bmp"
	case "png":
		encode, contentType = png.Encode, "image/png"
	default:
		http.Error(w, "Unsupported format", http.StatusBadRequest)
		return
	}

	thumb, err := s.render(name, size)
	if err != nil {
		// Whatever went wrong, the caller falls back to a generic icon.
		logrus.Warnf("no thumbnail for %s: %v", name, err)
		http.Error(w, "No thumbnail available", http.StatusNotFound)
		return
	}

	w.Header().Set("content-type", contentType)
	w.WriteHeader(http.StatusOK)
	if err := encode(w, thumb.Image); err != nil {
		logrus.Warnf("failed writing thumbnail for %s: %v", name, err)
	}
}
