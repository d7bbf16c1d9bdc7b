package compat

import (
	"fmt"
	"log/slog"

	"github.com/oriumgames/compat/host"
	"github.com/oriumgames/compat/version"
	"github.com/prometheus/client_golang/prometheus"
)

// Builder configures an API before initialization.
// Use NewBuilder() to create a builder and chain configuration methods.
type Builder struct {
	log       *slog.Logger
	detector  *version.Detector
	reg       prometheus.Registerer
	formatter Formatter
	sink      LogSink
	eager     bool
}

// NewBuilder creates a new builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Logger sets the logger of the API. Default: slog.Default().
func (b *Builder) Logger(l *slog.Logger) *Builder {
	b.log = l
	return b
}

// Detector sets the version detector. Default: a detector reading the server
// version. Pass version.Default() to share the process-wide detector; a
// detector without a source gets the server version as its source.
func (b *Builder) Detector(d *version.Detector) *Builder {
	b.detector = d
	return b
}

// Metrics registers the metrics of the API on reg.
func (b *Builder) Metrics(reg prometheus.Registerer) *Builder {
	b.reg = reg
	return b
}

// Formatter sets the rich text formatter used by the message manager.
// Default: PlainFormatter.
func (b *Builder) Formatter(f Formatter) *Builder {
	b.formatter = f
	return b
}

// LogSink sets the sink of the component logger. Default: a SlogSink over
// the API logger.
func (b *Builder) LogSink(s LogSink) *Builder {
	b.sink = s
	return b
}

// Eager makes Init resolve every capability up front and fail with the first
// error of a required one.
func (b *Builder) Eager() *Builder {
	b.eager = true
	return b
}

// Init creates the API for srv.
//
// Example:
//
//	api, err := compat.NewBuilder().Eager().Init(srv)
func (b *Builder) Init(srv host.Server) (*API, error) {
	if srv == nil {
		return nil, fmt.Errorf("compat: init: nil server")
	}
	log := logger(b.log)

	src := func() (string, error) { return srv.Version(), nil }
	d := b.detector
	if d == nil {
		d = version.NewDetector(src)
	} else if !d.HasSource() {
		d.SetSource(src)
	}

	var metrics *Metrics
	if b.reg != nil {
		m, err := NewMetrics(b.reg)
		if err != nil {
			return nil, fmt.Errorf("compat: init metrics: %w", err)
		}
		metrics = m
	}

	formatter := b.formatter
	if formatter == nil {
		formatter = PlainFormatter{}
	}
	sink := b.sink
	if sink == nil {
		sink = SlogSink{Logger: log}
	}

	a := newAPI(srv, d, log, metrics, formatter, sink)
	if b.eager {
		if err := a.Resolve(); err != nil {
			return nil, err
		}
	}
	log.Debug("compat: initialized", "server", srv.Name(), "version", srv.Version())
	return a, nil
}

// logger returns l or the default logger.
func logger(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
