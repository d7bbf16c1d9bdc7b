package memhost

import (
	"fmt"
	"maps"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/df-mc/dragonfly/server/world/chunk"
	"github.com/oriumgames/compat/host"
)

// airRID is the runtime id of air in both id schemes.
const airRID = 0

// Chunk is an in-memory chunk column. It implements host.Chunk; the
// generation specific mutation primitive is added by the legacyChunk,
// flattenedChunk and flaggedChunk views.
type Chunk struct {
	w   *World
	pos world.ChunkPos
	col *chunk.Chunk

	// sections holds the vertical indices of allocated sections.
	sections map[int]struct{}
	// entities maps world positions to block entities.
	entities map[cube.Pos]*host.BlockEntity
	// dirty is set by the chunk level primitive and cleared by a save.
	dirty bool
}

func newChunk(w *World, pos world.ChunkPos) *Chunk {
	return &Chunk{
		w:        w,
		pos:      pos,
		col:      chunk.New(airRID, w.r),
		sections: make(map[int]struct{}),
		entities: make(map[cube.Pos]*host.BlockEntity),
	}
}

// Position returns the chunk coordinates.
func (c *Chunk) Position() world.ChunkPos { return c.pos }

// Range returns the world's height range.
func (c *Chunk) Range() cube.Range { return c.w.r }

// Block returns the runtime id at the chunk-relative position.
func (c *Chunk) Block(x, y, z int) uint32 {
	if y < c.w.r.Min() || y > c.w.r.Max() {
		return airRID
	}
	return c.col.Block(uint8(x&15), int16(y), uint8(z&15), 0)
}

// Section returns the section at index y, or nil if it has no storage.
func (c *Chunk) Section(y int) host.Section {
	if _, ok := c.sections[y]; !ok {
		return nil
	}
	return &section{c: c, y: y}
}

// CreateSection allocates the section at index y.
func (c *Chunk) CreateSection(y int) (host.Section, error) {
	if y < c.w.r.Min()>>4 || y > c.w.r.Max()>>4 {
		return nil, fmt.Errorf("memhost: section %d is outside the world range %v", y, c.w.r)
	}
	c.sections[y] = struct{}{}
	return &section{c: c, y: y}, nil
}

// BlockEntities returns the chunk's block entities.
func (c *Chunk) BlockEntities() map[cube.Pos]*host.BlockEntity {
	return c.entities
}

// ClearBlockEntities removes every block entity.
func (c *Chunk) ClearBlockEntities() {
	clear(c.entities)
}

// Dirty reports whether the chunk changed since it was last saved.
func (c *Chunk) Dirty() bool { return c.dirty }

// Payload returns the encoded blocks sent in a chunk packet.
func (c *Chunk) Payload() []byte {
	return encodeBlocks(c)
}

// SetContainer attaches a container block entity holding items at pos. It
// is a test helper and does not mark the chunk dirty.
func (c *Chunk) SetContainer(pos cube.Pos, kind string, items ...host.ItemStack) {
	c.entities[pos] = &host.BlockEntity{Kind: kind, Items: items}
}

// set is the chunk level mutation primitive shared by every generation. It
// writes rid at the world position pos, marks the chunk dirty when the block
// changes and runs the side effects flags allows.
func (c *Chunk) set(pos cube.Pos, rid uint32, flags host.SetFlags) uint32 {
	x, y, z := uint8(pos[0]&15), int16(pos[1]), uint8(pos[2]&15)
	prev := c.col.Block(x, y, z, 0)
	if prev == rid {
		return prev
	}
	w := c.w

	// Remove the replaced block entity
	if be, ok := c.entities[pos]; ok {
		if !flags.Has(host.FlagSkipBlockEntityEffects) && be.Container() {
			w.record(Effect{Kind: EffectDrop, Pos: pos, Items: be.Items})
		}
		delete(c.entities, pos)
	}

	c.col.SetBlock(x, y, z, 0, rid)
	c.sections[pos[1]>>4] = struct{}{}
	c.dirty = true

	if kind := w.reg.entityKind(w.materialOf(rid)); kind != "" {
		c.entities[pos] = &host.BlockEntity{Kind: kind}
	}

	if flags.Has(host.FlagNeighborUpdates) {
		w.record(Effect{Kind: EffectNeighborUpdate, Pos: pos})
	}
	if flags.Has(host.FlagAdditionalNeighbors) {
		w.record(Effect{Kind: EffectShapeUpdate, Pos: pos})
	}
	if !flags.Has(host.FlagSkipOnPlace) {
		w.record(Effect{Kind: EffectOnPlace, Pos: pos})
	}
	return prev
}

// encode captures the chunk for storage.
func (c *Chunk) encode() *Column {
	return &Column{
		Blocks:   encodeBlocks(c),
		Entities: maps.Clone(c.entities),
	}
}

// decode restores the chunk from storage.
func (c *Chunk) decode(col *Column) error {
	if err := decodeBlocks(c, col.Blocks); err != nil {
		return err
	}
	maps.Copy(c.entities, col.Entities)
	return nil
}

// section is an allocated 16 block tall slice of a Chunk.
type section struct {
	c *Chunk
	y int
}

// Y returns the section index.
func (s *section) Y() int { return s.y }

// Empty reports whether the section holds only air.
func (s *section) Empty() bool {
	subs := s.c.col.Sub()
	i := s.y - s.c.w.r.Min()>>4
	if i < 0 || i >= len(subs) {
		return true
	}
	return subs[i].Empty()
}

// Set writes rid without marking the chunk dirty and without side effects.
func (s *section) Set(x, y, z int, rid uint32) error {
	if x < 0 || x > 15 || z < 0 || z > 15 {
		return fmt.Errorf("memhost: section coordinates %d %d out of range", x, z)
	}
	if y>>4 != s.y {
		return fmt.Errorf("memhost: y %d is outside section %d", y, s.y)
	}
	s.c.col.SetBlock(uint8(x), int16(y), uint8(z), 0, rid)
	return nil
}

// legacyChunk is the chunk handle of legacy levels.
type legacyChunk struct{ *Chunk }

// SetTypeAndData places a combined legacy id and returns the previous one.
func (c legacyChunk) SetTypeAndData(pos cube.Pos, combined uint32, physics, doPlace bool) uint32 {
	return c.set(pos, combined, host.FlagsFromLegacy(physics, doPlace))
}

// flattenedChunk is the chunk handle of flattened levels.
type flattenedChunk struct{ *Chunk }

// SetBlockState places a runtime id and returns the previous one.
func (c flattenedChunk) SetBlockState(pos cube.Pos, state uint32, physics, doPlace bool) uint32 {
	return c.set(pos, state, host.FlagsFromLegacy(physics, doPlace))
}

// flaggedChunk is the chunk handle of flagged levels.
type flaggedChunk struct{ *Chunk }

// SetBlockStateFlags places a runtime id with flags and returns the previous one.
func (c flaggedChunk) SetBlockStateFlags(pos cube.Pos, state uint32, flags host.SetFlags) uint32 {
	return c.set(pos, state, flags)
}

// view wraps c in the handle type of the world's generation.
func (c *Chunk) view() host.Chunk {
	switch c.w.srv.gen {
	case Legacy:
		return legacyChunk{c}
	case Flattened:
		return flattenedChunk{c}
	default:
		return flaggedChunk{c}
	}
}

// Unwrap returns the concrete chunk behind a handle returned by a level, for
// inspection in tests.
func Unwrap(h host.Chunk) (*Chunk, bool) {
	switch h := h.(type) {
	case *Chunk:
		return h, true
	case legacyChunk:
		return h.Chunk, true
	case flattenedChunk:
		return h.Chunk, true
	case flaggedChunk:
		return h.Chunk, true
	}
	return nil, false
}
