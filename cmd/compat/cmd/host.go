package cmd

import (
	"fmt"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/oriumgames/compat"
	"github.com/oriumgames/compat/host/memhost"
	"github.com/prometheus/client_golang/prometheus"
)

// hostEnv is an in-memory host with one world and the compatibility layer
// bound to it.
type hostEnv struct {
	srv   *memhost.Server
	world *memhost.World
	store *memhost.LevelStore
	api   *compat.API
}

// bootHost starts an in-memory host emulating release. Chunks are persisted
// to dataDir, or kept in memory if dataDir is empty.
func bootHost(release, dataDir string, reg prometheus.Registerer) (*hostEnv, error) {
	var (
		store *memhost.LevelStore
		err   error
	)
	if dataDir != "" {
		store, err = memhost.OpenLevelStore(dataDir)
	} else {
		store, err = memhost.NewMemoryStore()
	}
	if err != nil {
		return nil, err
	}

	log := newLogger()
	srv, err := memhost.NewServer(memhost.Config{Version: release, Store: store, Log: log})
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("boot host %s: %w", release, err)
	}
	env := &hostEnv{srv: srv, store: store}

	env.world, err = srv.CreateWorld("world", cube.Range{})
	if err != nil {
		env.close()
		return nil, err
	}

	b := compat.NewBuilder().Logger(log).Eager()
	if reg != nil {
		b = b.Metrics(reg)
	}
	env.api, err = b.Init(srv)
	if err != nil {
		env.close()
		return nil, err
	}
	return env, nil
}

func (e *hostEnv) close() {
	_ = e.srv.Close()
	_ = e.store.Close()
}
