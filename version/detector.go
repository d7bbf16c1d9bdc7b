package version

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// ErrNoSource is returned by a Detector that has no Source configured.
var ErrNoSource = errors.New("version: no host version source configured")

// Source reports the raw release string of the running host, for example
// "1.20.4-R0.1-SNAPSHOT".
type Source func() (string, error)

// Detector memoizes the canonical version of the running host. The host cannot
// change its version while the process runs, so the first successful
// detection is permanent. Failed detections are not stored.
//
// Concurrency:
// Version is safe for concurrent use. Concurrent first callers serialize on an
// internal lock and exactly one of them queries the Source.
type Detector struct {
	mu     sync.Mutex
	source Source
	value  atomic.Int64
	raw    atomic.Pointer[string]
}

// NewDetector creates a Detector reading from src.
func NewDetector(src Source) *Detector {
	return &Detector{source: src}
}

// Fixed returns a Detector that always reports s.
func Fixed(s string) *Detector {
	return NewDetector(func() (string, error) { return s, nil })
}

// std is the process-wide detector.
var std = &Detector{}

// Default returns the process-wide Detector. It has no Source until SetSource
// is called on it.
func Default() *Detector {
	return std
}

// Current returns the canonical version from the process-wide Detector.
func Current() (int, error) {
	return std.Version()
}

// SetSource replaces the Source of d. It reports false and leaves d unchanged
// if a version has already been detected.
func (d *Detector) SetSource(src Source) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.value.Load() != 0 {
		return false
	}
	d.source = src
	return true
}

// HasSource reports whether d has a Source.
func (d *Detector) HasSource() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.source != nil
}

// Version returns the canonical version of the host, detecting it on first
// use.
func (d *Detector) Version() (int, error) {
	// Fast path: already detected
	if v := d.value.Load(); v != 0 {
		return int(v), nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	// Another goroutine may have finished while we waited
	if v := d.value.Load(); v != 0 {
		return int(v), nil
	}
	if d.source == nil {
		return 0, ErrNoSource
	}

	raw, err := d.source()
	if err != nil {
		return 0, fmt.Errorf("version: read host version: %w", err)
	}
	v, err := Encode(raw)
	if err != nil {
		return 0, err
	}

	d.raw.Store(&raw)
	d.value.Store(int64(v))
	return v, nil
}

// Raw returns the release string the version was detected from, or an empty
// string if detection has not succeeded yet.
func (d *Detector) Raw() string {
	if p := d.raw.Load(); p != nil {
		return *p
	}
	return ""
}

// Detected reports whether a version has been detected.
func (d *Detector) Detected() bool {
	return d.value.Load() != 0
}
