package compat_test

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/oriumgames/compat"
	"github.com/oriumgames/compat/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type leaf struct{ name string }

func leafTable(built *atomic.Int32) *version.Table[func() (*leaf, error)] {
	build := func(name string) func() (*leaf, error) {
		return func() (*leaf, error) {
			built.Add(1)
			return &leaf{name: name}, nil
		}
	}
	return &version.Table[func() (*leaf, error)]{
		Capability: "sample",
		Floor:      "1.8",
		Breakpoints: []version.Breakpoint[func() (*leaf, error)]{
			{Through: "1.12.2", Name: "X", New: build("X")},
			{Through: "1.16.5", Name: "Y", New: build("Y")},
		},
		Default: version.Breakpoint[func() (*leaf, error)]{Name: "Z", New: build("Z")},
	}
}

func TestProviderResolvesByVersion(t *testing.T) {
	tests := map[string]string{
		"1.8":    "X",
		"1.12.2": "X",
		"1.12.3": "Y",
		"1.16.5": "Y",
		"1.17.0": "Z",
		"1.99.9": "Z",
	}
	for v, want := range tests {
		var built atomic.Int32
		p := compat.NewProvider("sample", version.Fixed(v).Version, compat.Select(leafTable(&built)))
		got, err := p.Get()
		require.NoError(t, err, v)
		assert.Equal(t, want, got.name, v)

		name, ok := p.Leaf()
		assert.True(t, ok)
		assert.Equal(t, want, name)
	}
}

func TestProviderSameIdentity(t *testing.T) {
	var built atomic.Int32
	p := compat.NewProvider("sample", version.Fixed("1.20.4").Version, compat.Select(leafTable(&built)))

	a, err := p.Get()
	require.NoError(t, err)
	b, err := p.Get()
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.EqualValues(t, 1, built.Load())
}

func TestProviderConcurrentFirstGet(t *testing.T) {
	var built atomic.Int32
	p := compat.NewProvider("sample", version.Fixed("1.12.2").Version, compat.Select(leafTable(&built)))

	const n = 64
	got := make([]*leaf, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got[i] = p.MustGet()
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, built.Load())
	for _, l := range got {
		assert.Same(t, got[0], l)
	}
}

func TestProviderBelowFloor(t *testing.T) {
	var built atomic.Int32
	p := compat.NewProvider("sample", version.Fixed("1.7.10").Version, compat.Select(leafTable(&built)))

	_, err := p.Get()
	var uve *compat.UnsupportedVersionError
	require.ErrorAs(t, err, &uve)
	assert.Equal(t, "sample", uve.Capability)
	assert.Equal(t, version.MustEncode("1.7.10"), uve.Version)
	assert.False(t, p.Resolved())
	assert.Zero(t, built.Load())
	assert.Panics(t, func() { p.MustGet() })
}

func TestProviderRetriesAfterFailure(t *testing.T) {
	fail := true
	src := func() (string, error) {
		if fail {
			return "", errors.New("not ready")
		}
		return "1.20.4", nil
	}
	var built atomic.Int32
	p := compat.NewProvider("sample", version.NewDetector(src).Version, compat.Select(leafTable(&built)))

	_, err := p.Get()
	require.Error(t, err)

	fail = false
	got, err := p.Get()
	require.NoError(t, err)
	assert.Equal(t, "Z", got.name)
}

func TestProviderParseError(t *testing.T) {
	var built atomic.Int32
	p := compat.NewProvider("sample", version.Fixed("1.x").Version, compat.Select(leafTable(&built)))

	_, err := p.Get()
	var pe *compat.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "1.x", pe.Input)
}

func TestWrapperKeepsFirstContext(t *testing.T) {
	table := &version.Table[func(string) (string, error)]{
		Capability: "greeting",
		Floor:      "1.8",
		Breakpoints: []version.Breakpoint[func(string) (string, error)]{
			{Through: "1.12.2", Name: "old", New: func(s string) (string, error) { return "hi " + s, nil }},
		},
		Default: version.Breakpoint[func(string) (string, error)]{Name: "new", New: func(s string) (string, error) {
			return "hello " + s, nil
		}},
	}
	w := compat.NewWrapper("greeting", version.Fixed("1.20").Version, compat.SelectContext(table))

	got, err := w.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "hello a", got)

	got, err = w.Get("b")
	require.NoError(t, err)
	assert.Equal(t, "hello a", got)

	name, ok := w.Leaf()
	assert.True(t, ok)
	assert.Equal(t, "new", name)
}

func TestCapabilityTablesValid(t *testing.T) {
	for _, c := range compat.Capabilities() {
		assert.NoError(t, c.Validate(), c.Name)
		assert.NotEmpty(t, c.Leaves, c.Name)
	}
}

func TestResolveAll(t *testing.T) {
	leaves := func(v string) map[string]string {
		out := make(map[string]string)
		for _, r := range compat.ResolveAll(version.MustEncode(v)) {
			if r.Error != "" {
				out[r.Capability] = "error"
				continue
			}
			out[r.Capability] = r.Leaf
		}
		return out
	}

	old := leaves("1.8.8")
	assert.Equal(t, "legacy", old["block_util"])
	assert.Equal(t, "single", old["main_hand"])
	assert.Equal(t, "raw", old["item_text"])
	assert.Equal(t, "legacy_keys", old["item_names"])

	mid := leaves("1.16.5")
	assert.Equal(t, "flattened", mid["block_util"])
	assert.Equal(t, "hex", mid["chat_colors"])
	assert.Equal(t, "json", mid["item_text"])
	assert.Equal(t, "spawn_data", mid["entity_methods"])

	latest := leaves("1.21.5")
	assert.Equal(t, "flagged", latest["block_util"])
	assert.Equal(t, "error", latest["item_text"])
	assert.Equal(t, "namespaced", latest["item_names"])
	assert.Equal(t, "spawn_data_entity", latest["entity_methods"])

	for name, leaf := range leaves("1.7.10") {
		assert.Equal(t, "error", leaf, name)
	}
}
