package cmd

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	result, err := resolve("1.12.2-R0.1-SNAPSHOT")
	require.NoError(t, err)
	assert.Equal(t, 1122, result.Version)
	assert.Equal(t, "1.12.2", result.Canonical)

	leaves := make(map[string]string)
	for _, r := range result.Capabilities {
		leaves[r.Capability] = r.Leaf
	}
	assert.Equal(t, "legacy", leaves["block_util"])
	assert.Equal(t, "legacy", leaves["packets"])

	_, err = resolve("git-Spigot")
	assert.Error(t, err)
}

func TestSimulate(t *testing.T) {
	for _, release := range []string{"1.8.8", "1.20.4", "1.21.5"} {
		t.Run(release, func(t *testing.T) {
			reg := prometheus.NewRegistry()
			env, err := bootHost(release, "", reg)
			require.NoError(t, err)
			defer env.close()

			res, err := simulate(env, reg)
			require.NoError(t, err)
			assert.Equal(t, 256, res.BlocksWritten)
			assert.Equal(t, release == "1.21.5", res.DirtyAfter)
			assert.True(t, res.Unloaded)
			assert.EqualValues(t, 1, res.StoreSaves)
			assert.EqualValues(t, 1, res.ChunkSaves)
			assert.Equal(t, "minecraft:stone", res.Persisted)
			assert.Zero(t, res.Effects["on_place"])
			assert.Zero(t, res.Effects["neighbor_update"])
		})
	}
}

func TestSimulatePersistsToDisk(t *testing.T) {
	dir := t.TempDir()
	env, err := bootHost("1.20.4", dir, nil)
	require.NoError(t, err)
	res, err := simulate(env, prometheus.NewRegistry())
	require.NoError(t, err)
	assert.Zero(t, res.ChunkSaves, "no metrics without a registry")
	env.close()

	env, err = bootHost("1.20.4", dir, nil)
	require.NoError(t, err)
	defer env.close()
	b, err := env.world.Block(cube.Pos{0, simSection << 4, 0})
	require.NoError(t, err)
	assert.Equal(t, "minecraft:stone", b.String())
}

func TestRouter(t *testing.T) {
	reg := prometheus.NewRegistry()
	env, err := bootHost("1.16.5", "", reg)
	require.NoError(t, err)
	defer env.close()
	router := newRouter(env, reg)

	t.Run("Capabilities", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/capabilities", nil))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var body struct {
			Canonical       string            `json:"canonical"`
			Implementations map[string]string `json:"implementations"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "1.16.5", body.Canonical)
		assert.Equal(t, "json", body.Implementations["item_text"])
		assert.Equal(t, "flattened", body.Implementations["block_util"])
	})

	t.Run("Resolve", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/resolve/1.7.10", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "does not support")

		w = httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/resolve/latest", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Metrics", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, strings.Contains(w.Body.String(), "compat_capability_resolutions_total"))
	})

	t.Run("MethodNotAllowed", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/health", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})
}
