package compat

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the prometheus collectors of an API. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	resolutions *prometheus.CounterVec
	failures    *prometheus.CounterVec
	packets     *prometheus.CounterVec
	mutations   *prometheus.CounterVec
	chunkSaves  prometheus.Counter
}

// NewMetrics creates the collectors and registers them on reg. Collectors
// that are already registered are reused, so several APIs may share one
// registry.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "compat",
			Name:      "capability_resolutions_total",
			Help:      "Capabilities resolved to an implementation.",
		}, []string{"capability", "leaf"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "compat",
			Name:      "resolution_errors_total",
			Help:      "Failed capability resolutions.",
		}, []string{"capability"}),
		packets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "compat",
			Name:      "packets_wrapped_total",
			Help:      "Host packets classified by the packet handler.",
		}, []string{"kind"}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "compat",
			Name:      "block_mutations_total",
			Help:      "Block placements by place type.",
		}, []string{"place_type"}),
		chunkSaves: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "compat",
			Name:      "chunk_saves_total",
			Help:      "Chunks saved through the compat layer.",
		}),
	}
	if reg == nil {
		return m, nil
	}

	var err error
	m.resolutions, err = register(reg, m.resolutions)
	if err != nil {
		return nil, err
	}
	if m.failures, err = register(reg, m.failures); err != nil {
		return nil, err
	}
	if m.packets, err = register(reg, m.packets); err != nil {
		return nil, err
	}
	if m.mutations, err = register(reg, m.mutations); err != nil {
		return nil, err
	}
	if m.chunkSaves, err = register(reg, m.chunkSaves); err != nil {
		return nil, err
	}
	return m, nil
}

// register registers c on reg, returning the existing collector if an equal
// one is already registered.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *Metrics) resolved(capability, leaf string) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues(capability, leaf).Inc()
}

func (m *Metrics) resolutionFailed(capability string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(capability).Inc()
}

func (m *Metrics) packetWrapped(kind string) {
	if m == nil {
		return
	}
	m.packets.WithLabelValues(kind).Inc()
}

func (m *Metrics) blockMutated(t PlaceType) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(t.String()).Inc()
}

func (m *Metrics) chunkSaved() {
	if m == nil {
		return
	}
	m.chunkSaves.Inc()
}
