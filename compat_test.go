package compat_test

import (
	"testing"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/oriumgames/compat"
	"github.com/oriumgames/compat/host/memhost"
	"github.com/oriumgames/compat/version"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

// fixture is an API over an in-memory server with one world.
type fixture struct {
	api   *compat.API
	srv   *memhost.Server
	world *memhost.World
	store *memhost.LevelStore
	reg   *prometheus.Registry
}

func newFixture(t *testing.T, v string) *fixture {
	t.Helper()
	store, err := memhost.NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	srv, err := memhost.NewServer(memhost.Config{Version: v, Store: store})
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })

	w, err := srv.CreateWorld("world", cube.Range{})
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	api, err := compat.NewBuilder().
		Detector(version.Fixed(v)).
		Metrics(reg).
		Init(srv)
	require.NoError(t, err)
	return &fixture{api: api, srv: srv, world: w, store: store, reg: reg}
}

func (f *fixture) wrap(t *testing.T) compat.World {
	t.Helper()
	w, err := f.api.World(f.world)
	require.NoError(t, err)
	return w
}

func (f *fixture) chunk(t *testing.T, x, z int) compat.Chunk {
	t.Helper()
	c, err := f.wrap(t).ChunkProvider().ChunkAt(x, z)
	require.NoError(t, err)
	return c
}

// versions covers one release of every host generation.
var versions = []string{"1.8.8-R0.1-SNAPSHOT", "1.12.2", "1.16.5", "1.20.4", "1.21.5"}

// metricValue returns the value of the counter name with labels in the
// registry of f, or zero if there is none.
func metricValue(t *testing.T, f *fixture, name string, labels map[string]string) float64 {
	t.Helper()
	mfs, err := f.reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
	metrics:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					continue metrics
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}
