package compat

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/oriumgames/compat/version"
)

// Wrapper is a Provider whose implementation is built around a context value,
// such as the world handle a World wraps.
//
// The context passed to the first successful Get is the one the value is
// built from. Later calls return that value regardless of their argument, so
// a Wrapper must be kept per context: the API does this for worlds.
type Wrapper[A, B any] struct {
	name    string
	version func() (int, error)
	choose  func(v int, ctx B) (A, string, error)
	opts    ProviderOptions

	mu       sync.Mutex
	resolved atomic.Pointer[resolution[A]]
}

// NewWrapper creates a wrapper factory named name.
func NewWrapper[A, B any](name string, ver func() (int, error), choose func(v int, ctx B) (A, string, error), opts ...ProviderOption) *Wrapper[A, B] {
	o := defaultProviderOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Wrapper[A, B]{name: name, version: ver, choose: choose, opts: o}
}

// Get returns the wrapped value, building it around ctx on the first call.
func (w *Wrapper[A, B]) Get(ctx B) (A, error) {
	if r := w.resolved.Load(); r != nil {
		return r.value, nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if r := w.resolved.Load(); r != nil {
		return r.value, nil
	}

	var zero A
	v, err := w.version()
	if err != nil {
		w.opts.Metrics.resolutionFailed(w.name)
		return zero, fmt.Errorf("compat: wrap %s: %w", w.name, err)
	}
	value, leaf, err := w.choose(v, ctx)
	if err != nil {
		w.opts.Metrics.resolutionFailed(w.name)
		return zero, fmt.Errorf("compat: wrap %s: %w", w.name, err)
	}

	w.resolved.Store(&resolution[A]{value: value, leaf: leaf, version: v})
	w.opts.Metrics.resolved(w.name, leaf)
	w.opts.Logger.Debug("compat: context wrapped",
		"capability", w.name, "leaf", leaf, "version", version.Format(v))
	return value, nil
}

// Name returns the capability name of the wrapper.
func (w *Wrapper[A, B]) Name() string {
	return w.name
}

// Leaf returns the name of the resolved implementation, or false if the
// wrapper has not resolved yet.
func (w *Wrapper[A, B]) Leaf() (string, bool) {
	if r := w.resolved.Load(); r != nil {
		return r.leaf, true
	}
	return "", false
}

// SelectContext adapts a breakpoint table of context constructors to a
// wrapper selector.
func SelectContext[A, B any](t *version.Table[func(B) (A, error)]) func(v int, ctx B) (A, string, error) {
	return func(v int, ctx B) (A, string, error) {
		var zero A
		bp, err := t.Resolve(v)
		if err != nil {
			return zero, "", err
		}
		value, err := bp.New(ctx)
		if err != nil {
			return zero, bp.Name, err
		}
		return value, bp.Name, nil
	}
}
