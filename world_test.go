package compat_test

import (
	"testing"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oriumgames/compat"
	"github.com/oriumgames/compat/host"
	"github.com/oriumgames/compat/host/memhost"
	"github.com/sandertv/gophertunnel/minecraft/protocol/packet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	stone   host.Material = "minecraft:stone"
	chest   host.Material = "minecraft:chest"
	bedrock host.Material = "minecraft:bedrock"
)

func TestWorldHeights(t *testing.T) {
	f := newFixture(t, "1.8.8")
	w := f.wrap(t)
	assert.Equal(t, 0, w.MinHeight())
	assert.Equal(t, 255, w.MaxHeight())

	f = newFixture(t, "1.20.4")
	w = f.wrap(t)
	assert.Equal(t, -64, w.MinHeight())
	assert.Equal(t, 319, w.MaxHeight())
}

func TestWorldWrappersPerHandle(t *testing.T) {
	f := newFixture(t, "1.20.4")
	other, err := f.srv.CreateWorld("nether", cube.Range{0, 127})
	require.NoError(t, err)

	a, err := f.api.World(f.world)
	require.NoError(t, err)
	b, err := f.api.World(other)
	require.NoError(t, err)
	again, err := f.api.World(f.world)
	require.NoError(t, err)

	assert.NotSame(t, a, b)
	assert.Same(t, a, again)
	assert.Equal(t, host.World(other), b.Handle())
	assert.Equal(t, 127, b.MaxHeight())

	f.api.ForgetWorld(f.world)
	fresh, err := f.api.World(f.world)
	require.NoError(t, err)
	assert.NotSame(t, a, fresh)
}

// taggedWorld is a world handle whose dynamic type cannot be a map key.
type taggedWorld struct {
	host.World
	tags []string
}

func TestWorldRejectsUncomparableHandle(t *testing.T) {
	f := newFixture(t, "1.20.4")
	h := taggedWorld{World: f.world, tags: []string{"lobby"}}

	_, err := f.api.World(h)
	var ise *compat.IllegalStateError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, "wrap world", ise.Op)

	assert.NotPanics(t, func() { f.api.ForgetWorld(h) })

	w, err := f.api.World(f.world)
	require.NoError(t, err)
	assert.Equal(t, host.World(f.world), w.Handle())
}

func TestSectionAbsoluteY(t *testing.T) {
	for _, v := range versions {
		t.Run(v, func(t *testing.T) {
			f := newFixture(t, v)
			c := f.chunk(t, 0, 0)

			s, err := c.SectionOrCreate(4)
			require.NoError(t, err)
			assert.Equal(t, 4, s.YShift())
			require.NoError(t, s.SetType(3, 5, 2, stone))

			b, err := f.world.Block(cube.Pos{3, 69, 2})
			require.NoError(t, err)
			assert.Equal(t, stone, b.Material)
			assert.False(t, s.Empty())
		})
	}
}

func TestSectionWritesSkipDirtyTracking(t *testing.T) {
	tests := map[string]bool{
		"1.8.8":  false,
		"1.20.4": false,
		"1.21.5": true,
	}
	for v, dirty := range tests {
		f := newFixture(t, v)
		c := f.chunk(t, 1, 1)
		require.False(t, c.Handle().Dirty(), v)

		s, err := c.SectionOrCreate(5)
		require.NoError(t, err, v)
		require.NoError(t, s.SetType(0, 0, 0, stone), v)
		assert.Equal(t, dirty, c.Handle().Dirty(), v)
		assert.Empty(t, f.world.EffectsOf(memhost.EffectOnPlace), v)
		assert.Empty(t, f.world.EffectsOf(memhost.EffectNeighborUpdate), v)
	}
}

func TestSectionBounds(t *testing.T) {
	f := newFixture(t, "1.20.4")
	s, err := f.chunk(t, 0, 0).SectionOrCreate(0)
	require.NoError(t, err)

	assert.Error(t, s.SetType(16, 0, 0, stone))
	assert.Error(t, s.SetType(0, -1, 0, stone))
	assert.Error(t, s.SetType(0, 0, 16, stone))
}

func TestMissingSection(t *testing.T) {
	f := newFixture(t, "1.20.4")
	c := f.chunk(t, 0, 0)

	_, ok := c.Section(10)
	assert.False(t, ok)

	_, err := c.SectionOrCreate(10)
	require.NoError(t, err)
	s, ok := c.Section(10)
	require.True(t, ok)
	assert.True(t, s.Empty())
	assert.Same(t, c, s.Chunk())
}

func TestSaveAndRefresh(t *testing.T) {
	for _, v := range versions {
		t.Run(v, func(t *testing.T) {
			f := newFixture(t, v)
			p := f.srv.Join("alex", f.world, mgl64.Vec3{})
			w := f.wrap(t)
			c := f.chunk(t, 0, 0)

			s, err := c.SectionOrCreate(4)
			require.NoError(t, err)
			require.NoError(t, s.SetType(3, 5, 2, stone))
			p.Reset()

			require.NoError(t, c.SaveAndRefresh())
			assert.False(t, f.world.Loaded(0, 0))
			assert.EqualValues(t, 1, f.store.Saves())
			assert.Empty(t, f.world.EffectsOf(memhost.EffectOnPlace))
			assert.Empty(t, f.world.EffectsOf(memhost.EffectNeighborUpdate))
			assert.Equal(t, 1.0, metricValue(t, f, "compat_chunk_saves_total", nil))

			pks := p.Packets()
			require.NotEmpty(t, pks)
			switch pk := pks[len(pks)-1].(type) {
			case *host.LegacyMapChunk:
				assert.Equal(t, 0, pk.X)
			case *packet.LevelChunk:
				assert.EqualValues(t, 0, pk.Position[0])
			default:
				t.Fatalf("last packet is %T, want a chunk packet", pk)
			}

			b, err := f.world.Block(cube.Pos{3, 69, 2})
			require.NoError(t, err)
			assert.Equal(t, stone, b.Material)

			anchor, err := f.world.Block(cube.Pos{0, w.MinHeight(), 0})
			require.NoError(t, err)
			assert.Equal(t, bedrock, anchor.Material)
		})
	}
}

func TestSaveAndRefreshAirAnchor(t *testing.T) {
	for _, v := range versions {
		t.Run(v, func(t *testing.T) {
			f := newFixture(t, v)
			w := f.wrap(t)
			u, err := w.BlockUtil()
			require.NoError(t, err)
			c := f.chunk(t, 0, 0)

			anchor := cube.Pos{0, w.MinHeight(), 0}
			require.NoError(t, u.SetType(f.world, anchor, host.Air, compat.PlaceRaw))
			require.NoError(t, w.ChunkProvider().SaveChunk(c))
			require.EqualValues(t, 1, f.store.Saves())

			s, err := c.SectionOrCreate(4)
			require.NoError(t, err)
			require.NoError(t, s.SetType(3, 5, 2, stone))

			require.NoError(t, c.SaveAndRefresh())
			assert.EqualValues(t, 2, f.store.Saves())

			b, err := f.world.Block(cube.Pos{3, 69, 2})
			require.NoError(t, err)
			assert.Equal(t, stone, b.Material)

			a, err := f.world.Block(anchor)
			require.NoError(t, err)
			assert.Equal(t, host.Air, a.Material)
		})
	}
}

func TestSaveAndRefreshTwice(t *testing.T) {
	f := newFixture(t, "1.21.5")
	w := f.wrap(t)
	anchor := cube.Pos{32, w.MinHeight(), 48}

	before, err := f.world.Block(anchor)
	require.NoError(t, err)

	for range 2 {
		require.NoError(t, f.chunk(t, 2, 3).SaveAndRefresh())
	}

	after, err := f.world.Block(anchor)
	require.NoError(t, err)
	assert.True(t, before.Equal(after))
	assert.EqualValues(t, 2, f.store.Saves())
}

func TestRawPlacementOverChest(t *testing.T) {
	for _, v := range versions {
		t.Run(v, func(t *testing.T) {
			f := newFixture(t, v)
			w := f.wrap(t)
			u, err := w.BlockUtil()
			require.NoError(t, err)

			pos := cube.Pos{5, 70, 5}
			require.NoError(t, u.SetType(f.world, pos, chest, compat.PlaceRaw))
			mc, ok := memhost.Unwrap(f.chunk(t, 0, 0).Handle())
			require.True(t, ok)
			mc.SetContainer(pos, "minecraft:chest", host.ItemStack{Material: "minecraft:diamond", Count: 3})
			f.world.ResetEffects()

			require.NoError(t, u.SetType(f.world, pos, stone, compat.PlaceRaw))

			drops := f.world.EffectsOf(memhost.EffectDrop)
			require.Len(t, drops, 1)
			assert.Equal(t, 3, drops[0].Items[0].Count)
			assert.Empty(t, f.world.EffectsOf(memhost.EffectOnPlace))
			assert.Empty(t, f.world.EffectsOf(memhost.EffectNeighborUpdate))
			assert.Empty(t, f.world.EffectsOf(memhost.EffectRelight))

			b, err := u.Block(f.world, pos)
			require.NoError(t, err)
			assert.Equal(t, stone, b.Material)
		})
	}
}

func TestPlaceTypes(t *testing.T) {
	f := newFixture(t, "1.20.4")
	u, err := f.wrap(t).BlockUtil()
	require.NoError(t, err)

	require.NoError(t, u.SetType(f.world, cube.Pos{1, 10, 1}, stone, compat.PlaceNoPhysics))
	assert.Len(t, f.world.EffectsOf(memhost.EffectRelight), 1)
	assert.Empty(t, f.world.EffectsOf(memhost.EffectNeighborUpdate))

	f.world.ResetEffects()
	require.NoError(t, u.SetType(f.world, cube.Pos{2, 10, 1}, stone, compat.PlaceFull))
	assert.NotEmpty(t, f.world.EffectsOf(memhost.EffectNeighborUpdate))
	assert.NotEmpty(t, f.world.EffectsOf(memhost.EffectOnPlace))

	assert.Error(t, u.SetType(f.world, cube.Pos{3, 10, 1}, stone, compat.PlaceType(42)))
	assert.Error(t, u.SetType(f.world, cube.Pos{3, 400, 1}, stone, compat.PlaceRaw))

	assert.Equal(t, 1.0, metricValue(t, f, "compat_block_mutations_total", map[string]string{"place_type": "no_physics"}))
	assert.Equal(t, 1.0, metricValue(t, f, "compat_block_mutations_total", map[string]string{"place_type": "full"}))
}

func TestLegacyBlockData(t *testing.T) {
	f := newFixture(t, "1.8.8")
	u, err := f.wrap(t).BlockUtil()
	require.NoError(t, err)

	wool := host.Block("minecraft:white_wool")
	wool.Data = 14
	pos := cube.Pos{4, 20, 4}
	require.NoError(t, u.SetBlock(f.world, pos, wool, compat.PlaceRaw))

	got, err := u.Block(f.world, pos)
	require.NoError(t, err)
	assert.Equal(t, wool.Material, got.Material)
	assert.EqualValues(t, 14, got.Data)

	assert.Error(t, u.SetType(f.world, pos, "minecraft:deepslate", compat.PlaceRaw))
}

func TestRefreshBlock(t *testing.T) {
	f := newFixture(t, "1.20.4")
	a := f.srv.Join("a", f.world, mgl64.Vec3{})
	b := f.srv.Join("b", f.world, mgl64.Vec3{})
	w := f.wrap(t)

	require.NoError(t, w.RefreshBlock(a, cube.Pos{0, -64, 0}))
	require.Len(t, a.Packets(), 1)
	pk, ok := a.Packets()[0].(*packet.UpdateBlock)
	require.True(t, ok)
	assert.EqualValues(t, -64, pk.Position[1])
	assert.Empty(t, b.Packets())
	assert.Empty(t, f.world.Effects())
}

func TestForceLoad(t *testing.T) {
	f := newFixture(t, "1.20.4")
	cp := f.wrap(t).ChunkProvider()
	assert.True(t, cp.ForceLoad())
	assert.True(t, cp.SetForceLoad(false))
	assert.False(t, cp.ForceLoad())
	_, err := cp.ChunkAt(9, 9)
	assert.ErrorIs(t, err, memhost.ErrNotLoaded)

	f = newFixture(t, "1.21.5")
	cp = f.wrap(t).ChunkProvider()
	assert.False(t, cp.SetForceLoad(false))
	assert.True(t, cp.ForceLoad())
}

func TestWrapForeignChunk(t *testing.T) {
	legacy := newFixture(t, "1.8.8")
	modern := newFixture(t, "1.20.4")

	_, err := modern.wrap(t).ChunkProvider().Wrap(legacy.chunk(t, 0, 0).Handle())
	var ise *compat.IllegalStateError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, "wrap chunk", ise.Op)

	_, err = modern.wrap(t).ChunkProvider().Wrap("not a chunk")
	require.ErrorAs(t, err, &ise)
}

func TestSaveChunk(t *testing.T) {
	f := newFixture(t, "1.12.2")
	cp := f.wrap(t).ChunkProvider()
	c := f.chunk(t, 0, 0)

	require.NoError(t, cp.SaveChunk(c))
	assert.Zero(t, f.store.Saves(), "clean chunks are not written")

	require.NoError(t, f.api.BlockUtil().MustGet().SetType(f.world, cube.Pos{1, 1, 1}, stone, compat.PlaceRaw))
	require.NoError(t, cp.SaveChunk(c))
	assert.EqualValues(t, 1, f.store.Saves())
	assert.False(t, c.Handle().Dirty())
}

func TestClearBlockEntities(t *testing.T) {
	f := newFixture(t, "1.20.4")
	u := f.api.BlockUtil().MustGet()
	require.NoError(t, u.SetType(f.world, cube.Pos{1, 1, 1}, chest, compat.PlaceRaw))

	c := f.chunk(t, 0, 0)
	require.Len(t, c.Handle().BlockEntities(), 1)
	c.ClearBlockEntities()
	assert.Empty(t, c.Handle().BlockEntities())
	assert.Empty(t, f.world.EffectsOf(memhost.EffectDrop))
}

func TestSpawnEntity(t *testing.T) {
	f := newFixture(t, "1.16.5")
	e, err := f.wrap(t).SpawnEntity("minecraft:zombie", mgl64.Vec3{1, 5, 1}, host.SpawnSpawner)
	require.NoError(t, err)
	assert.Equal(t, "minecraft:zombie", e.Kind())
	assert.Equal(t, host.SpawnSpawner, e.SpawnReason())

	e, err = f.wrap(t).SpawnEntity("minecraft:pig", mgl64.Vec3{}, "")
	require.NoError(t, err)
	assert.Equal(t, host.SpawnCustom, e.SpawnReason())
}
