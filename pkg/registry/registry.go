// Package registry is the host side of thumbnail provider discovery: it maps
// file extensions to a component id and a factory, and keeps the process-wide
// count of live provider instances that decides whether the providing module
// may be unloaded.
package registry

import (
	"strings"
	"sync"
	"sync/atomic"

	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Association of the archive thumbnailer.
const (
	WADExtension = ".wad"
	ComponentID  = "{95b6f654-fce0-4dc6-afbc-f33df295f12b}"
)

var ErrNotRegistered = errors.New("registry: no provider registered for extension")

type Factory[T any] func() T

type registration[T any] struct {
	id      string
	factory Factory[T]
}

type Registry[T any] struct {
	providers cmap.ConcurrentMap[string, registration[T]]
	refs      atomic.Int32
}

func New[T any]() *Registry[T] {
	return &Registry[T]{providers: cmap.New[registration[T]]()}
}

func normalize(ext string) string {
	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// Register associates ext with a component. An extension holds one
// association at a time.
func (r *Registry[T]) Register(ext, id string, factory Factory[T]) error {
	ext = normalize(ext)
	if !r.providers.SetIfAbsent(ext, registration[T]{id: id, factory: factory}) {
		existing, _ := r.providers.Get(ext)
		return errors.Errorf("registry: %s already handled by %s", ext, existing.id)
	}
	logrus.Infof("registered %s for %s", id, ext)
	return nil
}

// Unregister removes the association for ext. Removing a missing one is not an error.
func (r *Registry[T]) Unregister(ext string) {
	if reg, ok := r.providers.Pop(normalize(ext)); ok {
		logrus.Infof("unregistered %s for %s", reg.id, ext)
	}
}

// Lookup returns the component id associated with ext.
func (r *Registry[T]) Lookup(ext string) (string, bool) {
	reg, ok := r.providers.Get(normalize(ext))
	return reg.id, ok
}

// Acquire instantiates the provider for ext. The instance holds a module
// reference until release is called; calling release more than once is harmless.
func (r *Registry[T]) Acquire(ext string) (provider T, release func(), err error) {
	reg, ok := r.providers.Get(normalize(ext))
	if !ok {
		return provider, nil, errors.Wrap(ErrNotRegistered, ext)
	}
	r.refs.Add(1)
	var once sync.Once
	return reg.factory(), func() {
		once.Do(func() { r.refs.Add(-1) })
	}, nil
}

// Lock pins the module in memory independently of live instances. An unlock
// with nothing held is ignored.
func (r *Registry[T]) Lock(lock bool) {
	if lock {
		r.refs.Add(1)
		return
	}
	for {
		n := r.refs.Load()
		if n == 0 {
			logrus.Warnln("registry: unlock without a matching lock")
			return
		}
		if r.refs.CompareAndSwap(n, n-1) {
			return
		}
	}
}

// CanUnload reports whether no instance or lock references the module.
func (r *Registry[T]) CanUnload() bool {
	return r.refs.Load() == 0
}

// Extensions lists the registered extensions in no particular order.
func (r *Registry[T]) Extensions() []string {
	return r.providers.Keys()
}
