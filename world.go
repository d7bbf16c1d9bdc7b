package compat

import (
	"fmt"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oriumgames/compat/host"
	"github.com/oriumgames/compat/version"
)

// World wraps a host world with generation independent access to its chunks.
type World interface {
	// MinHeight is the lowest block y of the world.
	MinHeight() int
	// MaxHeight is the highest block y of the world.
	MaxHeight() int
	ChunkProvider() ChunkProvider
	// RefreshBlock resends the block at pos to o only. Nothing else is sent
	// and the world is not changed.
	RefreshBlock(o host.Observer, pos cube.Pos) error
	// SpawnEntity spawns an entity of kind at pos, recording reason as the
	// spawn cause.
	SpawnEntity(kind string, pos mgl64.Vec3, reason host.SpawnReason) (host.Entity, error)
	// BlockUtil returns the block mutation engine of the host.
	BlockUtil() (BlockUtil, error)
	// Handle returns the wrapped world.
	Handle() host.World
}

var worldTable = version.Table[func(*API, host.World) (World, error)]{
	Capability: "world",
	Floor:      "1.8",
	Breakpoints: []version.Breakpoint[func(*API, host.World) (World, error)]{
		{Through: "1.12.2", Name: "legacy", New: newWorld(legacyGen{})},
		{Through: "1.21.4", Name: "flattened", New: newWorld(flattenedGen{})},
	},
	Default: version.Breakpoint[func(*API, host.World) (World, error)]{Name: "flagged", New: newWorld(flaggedGen{})},
}

func newWorld(g generation) func(*API, host.World) (World, error) {
	return func(a *API, h host.World) (World, error) {
		lvl, err := levelOf(h)
		if err != nil {
			return nil, err
		}
		switch g.(type) {
		case legacyGen:
			if _, ok := lvl.(host.LegacyRegistry); !ok {
				return nil, illegalState("wrap world", lvl)
			}
		default:
			if _, ok := lvl.(host.StateRegistry); !ok {
				return nil, illegalState("wrap world", lvl)
			}
		}
		w := &world{api: a, handle: h, lvl: lvl, gen: g}
		w.provider = &chunkProvider{w: w}
		return w, nil
	}
}

// world implements World.
type world struct {
	api      *API
	handle   host.World
	lvl      host.Level
	gen      generation
	provider *chunkProvider
}

// MinHeight returns the lowest block y of the world.
func (w *world) MinHeight() int { return w.lvl.Range().Min() }

// MaxHeight returns the highest block y of the world.
func (w *world) MaxHeight() int { return w.lvl.Range().Max() }

// ChunkProvider returns the world's chunk provider.
func (w *world) ChunkProvider() ChunkProvider { return w.provider }

// Handle returns the wrapped host world.
func (w *world) Handle() host.World { return w.handle }

// BlockUtil returns the block utility resolved for the running version.
func (w *world) BlockUtil() (BlockUtil, error) { return w.api.blocks.Get() }

// RefreshBlock resends the block at pos to o.
func (w *world) RefreshBlock(o host.Observer, pos cube.Pos) error {
	if pos.OutOfBounds(w.lvl.Range()) {
		return fmt.Errorf("compat: %v outside world range %v", pos, w.lvl.Range())
	}
	c, err := w.lvl.Chunk(pos[0]>>4, pos[2]>>4)
	if err != nil {
		return err
	}
	return o.SendPacket(w.gen.blockPacket(pos, c.Block(pos[0]&15, pos[1], pos[2]&15)))
}

// SpawnEntity spawns an entity of kind at pos with the given reason.
func (w *world) SpawnEntity(kind string, pos mgl64.Vec3, reason host.SpawnReason) (host.Entity, error) {
	if reason == "" {
		reason = host.SpawnCustom
	}
	return w.lvl.SpawnEntity(kind, pos, reason)
}
