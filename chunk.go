package compat

import (
	"fmt"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/oriumgames/compat/host"
)

// ChunkProvider gives access to the chunks of a World.
type ChunkProvider interface {
	World() World
	// Wrap wraps a chunk handle of the world.
	Wrap(handle any) (Chunk, error)
	// ChunkAt returns the chunk at chunk coordinates x and z, loading it
	// synchronously.
	ChunkAt(x, z int) (Chunk, error)
	// ForceLoad reports whether chunks load synchronously on access.
	ForceLoad() bool
	// SetForceLoad switches synchronous loading. It returns false when the
	// host cannot change it.
	SetForceLoad(v bool) bool
	// SaveChunk writes c to storage if it has unsaved changes.
	SaveChunk(c Chunk) error
}

// Chunk wraps a 16x16 column of a world. A Chunk must not be kept across an
// unload of the chunk it wraps.
type Chunk interface {
	Provider() ChunkProvider
	Handle() host.Chunk
	// X and Z are the chunk coordinates.
	X() int
	Z() int
	// Section returns the section with vertical index y, or false if it was
	// never allocated.
	Section(y int) (Section, bool)
	// SectionOrCreate returns the section with vertical index y, allocating
	// it if needed.
	SectionOrCreate(y int) (Section, error)
	// ClearBlockEntities drops every block entity of the chunk.
	ClearBlockEntities()
	// SendUpdate resends the whole chunk to o.
	SendUpdate(o host.Observer) error
	// SaveAndRefresh persists the chunk and resends it to every viewer.
	SaveAndRefresh() error
}

// chunkProvider implements ChunkProvider.
type chunkProvider struct {
	w *world
}

// World returns the world the provider belongs to.
func (p *chunkProvider) World() World { return p.w }

// Wrap wraps a host chunk of this world.
func (p *chunkProvider) Wrap(handle any) (Chunk, error) {
	c, ok := handle.(host.Chunk)
	if !ok || !p.w.gen.accepts(c) {
		return nil, illegalState("wrap chunk", handle)
	}
	return &chunk{p: p, h: c}, nil
}

// ChunkAt returns the chunk at x, z, loading it if needed.
func (p *chunkProvider) ChunkAt(x, z int) (Chunk, error) {
	c, err := p.w.lvl.Chunk(x, z)
	if err != nil {
		return nil, err
	}
	return p.Wrap(c)
}

// ForceLoad reports whether chunks load synchronously.
func (p *chunkProvider) ForceLoad() bool {
	return p.w.lvl.ForceLoad()
}

// SetForceLoad toggles synchronous loading and reports whether the host allowed it.
func (p *chunkProvider) SetForceLoad(v bool) bool {
	t, ok := p.w.lvl.(host.ForceLoadToggler)
	if !ok {
		p.w.api.log.Warn("compat: force loading cannot be changed on this host",
			"world", p.w.handle.Name(), "generation", p.w.gen.name())
		return false
	}
	t.SetForceLoad(v)
	return true
}

// SaveChunk writes c to disk if it is dirty.
func (p *chunkProvider) SaveChunk(c Chunk) error {
	if err := p.w.lvl.Save(c.Handle()); err != nil {
		return fmt.Errorf("compat: save chunk %d,%d: %w", c.X(), c.Z(), err)
	}
	p.w.api.metrics.chunkSaved()
	return nil
}

// chunk implements Chunk.
type chunk struct {
	p *chunkProvider
	h host.Chunk
}

// Provider returns the chunk's provider.
func (c *chunk) Provider() ChunkProvider { return c.p }

// Handle returns the wrapped host chunk.
func (c *chunk) Handle() host.Chunk { return c.h }

// X returns the chunk x coordinate.
func (c *chunk) X() int { return int(c.h.Position()[0]) }

// Z returns the chunk z coordinate.
func (c *chunk) Z() int { return int(c.h.Position()[1]) }

// Section returns the section at index y if it exists.
func (c *chunk) Section(y int) (Section, bool) {
	s := c.h.Section(y)
	if s == nil {
		return nil, false
	}
	return &section{c: c, h: s, yShift: y}, true
}

// SectionOrCreate returns the section at index y, allocating it if needed.
func (c *chunk) SectionOrCreate(y int) (Section, error) {
	s, err := c.h.CreateSection(y)
	if err != nil {
		return nil, err
	}
	return &section{c: c, h: s, yShift: y}, nil
}

// ClearBlockEntities removes every block entity in the chunk.
func (c *chunk) ClearBlockEntities() {
	c.h.ClearBlockEntities()
}

// SendUpdate sends the chunk to o.
func (c *chunk) SendUpdate(o host.Observer) error {
	return o.SendPacket(c.p.w.gen.chunkPacket(c.h))
}

// anchorFiller is written over an air anchor, since air over air leaves the
// chunk clean.
const anchorFiller host.Material = "minecraft:bedrock"

// SaveAndRefresh rewrites the block at the lowest corner of the chunk to mark
// it dirty, which a raw section write does not. The chunk is then resent to
// every viewer and unloaded with a save.
//
// The anchor block is written back with its block data only. A block entity
// at the anchor is lost. The chunk must not be used after this returns.
func (c *chunk) SaveAndRefresh() error {
	w := c.p.w
	u, err := w.BlockUtil()
	if err != nil {
		return err
	}

	x, z := c.X(), c.Z()
	anchor := cube.Pos{x << 4, w.MinHeight(), z << 4}
	prev, err := u.Block(w.handle, anchor)
	if err != nil {
		return fmt.Errorf("compat: read anchor of chunk %d,%d: %w", x, z, err)
	}
	filler := host.Air
	if prev.Material == host.Air || prev.Material == "" {
		filler = anchorFiller
	}
	if err := u.SetType(w.handle, anchor, filler, PlaceRaw); err != nil {
		return fmt.Errorf("compat: clear anchor of chunk %d,%d: %w", x, z, err)
	}
	if err := u.SetBlock(w.handle, anchor, prev, PlaceRaw); err != nil {
		return fmt.Errorf("compat: restore anchor of chunk %d,%d: %w", x, z, err)
	}

	if err := w.lvl.Refresh(x, z); err != nil {
		return fmt.Errorf("compat: refresh chunk %d,%d: %w", x, z, err)
	}
	if err := w.lvl.Unload(x, z, true); err != nil {
		return fmt.Errorf("compat: unload chunk %d,%d: %w", x, z, err)
	}
	w.api.metrics.chunkSaved()
	return nil
}
