package compat

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/oriumgames/compat/version"
)

// Provider lazily resolves one capability to the implementation that matches
// the host version. The first Get reads the version, runs the selector and
// stores the result; every later Get returns the same value.
//
// Providers are safe for concurrent use. Concurrent first calls construct the
// implementation exactly once. Failed resolutions are not stored, so a later
// Get retries.
type Provider[T any] struct {
	name    string
	version func() (int, error)
	choose  func(v int) (T, string, error)
	opts    ProviderOptions

	mu       sync.Mutex
	resolved atomic.Pointer[resolution[T]]
}

// resolution is a resolved capability implementation.
type resolution[T any] struct {
	value   T
	leaf    string
	version int
}

// ProviderOptions configures provider behavior.
type ProviderOptions struct {
	// Logger receives a debug record per resolution. Default: slog.Default().
	Logger *slog.Logger

	// Metrics counts resolutions and failures. Default: nil (disabled).
	Metrics *Metrics

	// Required indicates this provider must resolve for the API to initialize
	// eagerly. If false, eager resolution failures are logged and the
	// provider is retried on first use.
	// Default: false.
	Required bool
}

// defaultProviderOptions returns sensible defaults.
func defaultProviderOptions() ProviderOptions {
	return ProviderOptions{Logger: slog.Default()}
}

// ProviderOption configures a provider.
type ProviderOption func(*ProviderOptions)

// WithLogger sets the logger of the provider.
func WithLogger(l *slog.Logger) ProviderOption {
	return func(o *ProviderOptions) {
		if l != nil {
			o.Logger = l
		}
	}
}

// WithMetrics sets the metrics the provider reports to.
func WithMetrics(m *Metrics) ProviderOption {
	return func(o *ProviderOptions) {
		o.Metrics = m
	}
}

// WithRequired marks the provider as required for eager initialization.
func WithRequired(required bool) ProviderOption {
	return func(o *ProviderOptions) {
		o.Required = required
	}
}

// NewProvider creates a provider named name. ver supplies the canonical host
// version and choose builds the implementation for it, returning the name of
// the chosen implementation alongside it.
func NewProvider[T any](name string, ver func() (int, error), choose func(v int) (T, string, error), opts ...ProviderOption) *Provider[T] {
	o := defaultProviderOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Provider[T]{name: name, version: ver, choose: choose, opts: o}
}

// Get returns the implementation for the host version, resolving it on the
// first call.
func (p *Provider[T]) Get() (T, error) {
	if r := p.resolved.Load(); r != nil {
		return r.value, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if r := p.resolved.Load(); r != nil {
		return r.value, nil
	}

	var zero T
	v, err := p.version()
	if err != nil {
		p.opts.Metrics.resolutionFailed(p.name)
		return zero, fmt.Errorf("compat: resolve %s: %w", p.name, err)
	}
	value, leaf, err := p.choose(v)
	if err != nil {
		p.opts.Metrics.resolutionFailed(p.name)
		return zero, fmt.Errorf("compat: resolve %s: %w", p.name, err)
	}

	p.resolved.Store(&resolution[T]{value: value, leaf: leaf, version: v})
	p.opts.Metrics.resolved(p.name, leaf)
	p.opts.Logger.Debug("compat: capability resolved",
		"capability", p.name, "leaf", leaf, "version", version.Format(v))
	return value, nil
}

// MustGet is like Get but panics if the capability cannot be resolved.
func (p *Provider[T]) MustGet() T {
	v, err := p.Get()
	if err != nil {
		panic(err)
	}
	return v
}

// Name returns the capability name of the provider.
func (p *Provider[T]) Name() string {
	return p.name
}

// Leaf returns the name of the resolved implementation, or false if the
// provider has not resolved yet.
func (p *Provider[T]) Leaf() (string, bool) {
	if r := p.resolved.Load(); r != nil {
		return r.leaf, true
	}
	return "", false
}

// Resolved reports whether the provider has resolved.
func (p *Provider[T]) Resolved() bool {
	return p.resolved.Load() != nil
}

// Select adapts a breakpoint table of constructors to a provider selector.
func Select[T any](t *version.Table[func() (T, error)]) func(v int) (T, string, error) {
	return func(v int) (T, string, error) {
		var zero T
		bp, err := t.Resolve(v)
		if err != nil {
			return zero, "", err
		}
		value, err := bp.New()
		if err != nil {
			return zero, bp.Name, err
		}
		return value, bp.Name, nil
	}
}

// selectFor is Select for the capability tables of this package, whose
// constructors receive the API they are built for.
func selectFor[T any](t *version.Table[func(*API) (T, error)], a *API) func(v int) (T, string, error) {
	return func(v int) (T, string, error) {
		var zero T
		bp, err := t.Resolve(v)
		if err != nil {
			return zero, "", err
		}
		value, err := bp.New(a)
		if err != nil {
			return zero, bp.Name, err
		}
		return value, bp.Name, nil
	}
}
