package compat

import (
	"fmt"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/oriumgames/compat/host"
	"github.com/oriumgames/compat/version"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
	"github.com/sandertv/gophertunnel/minecraft/protocol/packet"
)

// generation is the part of the block model that differs between host
// generations: how a block is addressed, how a chunk is mutated without side
// effects and which packets re-render blocks on the client.
type generation interface {
	name() string
	// runtimeID converts b to the runtime id the level stores.
	runtimeID(lvl host.Level, b host.BlockData) (uint32, error)
	// blockData is the inverse of runtimeID.
	blockData(lvl host.Level, rid uint32) (host.BlockData, error)
	// place writes rid at pos through the chunk primitive of the generation.
	// t is PlaceRaw or PlaceNoPhysics.
	place(c host.Chunk, pos cube.Pos, rid uint32, t PlaceType) error
	// writeSection writes rid at the world position pos, which lies in s.
	writeSection(c host.Chunk, s host.Section, pos cube.Pos, rid uint32) error
	// accepts reports whether c is a chunk handle of the generation.
	accepts(c host.Chunk) bool
	// blockPacket re-renders the block at pos.
	blockPacket(pos cube.Pos, rid uint32) any
	// chunkPacket re-renders the whole chunk c.
	chunkPacket(c host.Chunk) any
}

// generations maps host releases to their block model.
var generations = version.Table[func() generation]{
	Capability: "generation",
	Floor:      "1.8",
	Breakpoints: []version.Breakpoint[func() generation]{
		{Through: "1.12.2", Name: "legacy", New: func() generation { return legacyGen{} }},
		{Through: "1.21.4", Name: "flattened", New: func() generation { return flattenedGen{} }},
	},
	Default: version.Breakpoint[func() generation]{Name: "flagged", New: func() generation { return flaggedGen{} }},
}

// generationOf resolves the block model of release v.
func generationOf(v int) (generation, error) {
	bp, err := generations.Resolve(v)
	if err != nil {
		return nil, err
	}
	return bp.New(), nil
}

// legacyGen addresses blocks with a numeric id and a data value packed into a
// combined id.
type legacyGen struct{}

func (legacyGen) name() string { return "legacy" }

func (legacyGen) runtimeID(lvl host.Level, b host.BlockData) (uint32, error) {
	reg, ok := lvl.(host.LegacyRegistry)
	if !ok {
		return 0, illegalState("runtime id", lvl)
	}
	id, ok := reg.LegacyID(b.Material)
	if !ok {
		return 0, fmt.Errorf("compat: %s has no legacy block id", b.Material)
	}
	return host.CombineLegacy(id, b.Data), nil
}

func (legacyGen) blockData(lvl host.Level, rid uint32) (host.BlockData, error) {
	reg, ok := lvl.(host.LegacyRegistry)
	if !ok {
		return host.BlockData{}, illegalState("block data", lvl)
	}
	id, data := host.SplitLegacy(rid)
	m, ok := reg.LegacyMaterial(id)
	if !ok {
		return host.BlockData{}, fmt.Errorf("compat: unknown legacy block id %d", id)
	}
	b := host.Block(m)
	b.Data = data
	return b, nil
}

func (legacyGen) place(c host.Chunk, pos cube.Pos, rid uint32, t PlaceType) error {
	lc, ok := c.(host.LegacyChunk)
	if !ok {
		return illegalState("place block", c)
	}
	lc.SetTypeAndData(pos, rid, false, t == PlaceNoPhysics)
	return nil
}

func (legacyGen) writeSection(_ host.Chunk, s host.Section, pos cube.Pos, rid uint32) error {
	return s.Set(pos[0]&15, pos[1], pos[2]&15, rid)
}

func (legacyGen) accepts(c host.Chunk) bool {
	_, ok := c.(host.LegacyChunk)
	return ok
}

func (legacyGen) blockPacket(pos cube.Pos, rid uint32) any {
	return &host.LegacyBlockChange{Pos: pos, Combined: rid}
}

func (legacyGen) chunkPacket(c host.Chunk) any {
	pos := c.Position()
	return &host.LegacyMapChunk{X: int(pos[0]), Z: int(pos[1]), Payload: c.Payload()}
}

// flattenedGen addresses blocks by state id and mutates chunks through a
// boolean primitive.
type flattenedGen struct{}

func (flattenedGen) name() string { return "flattened" }

func (flattenedGen) runtimeID(lvl host.Level, b host.BlockData) (uint32, error) {
	reg, ok := lvl.(host.StateRegistry)
	if !ok {
		return 0, illegalState("runtime id", lvl)
	}
	rid, ok := reg.StateID(b)
	if !ok {
		return 0, fmt.Errorf("compat: %s has no block state", b)
	}
	return rid, nil
}

func (flattenedGen) blockData(lvl host.Level, rid uint32) (host.BlockData, error) {
	reg, ok := lvl.(host.StateRegistry)
	if !ok {
		return host.BlockData{}, illegalState("block data", lvl)
	}
	b, ok := reg.State(rid)
	if !ok {
		return host.BlockData{}, fmt.Errorf("compat: unknown block state %d", rid)
	}
	return b, nil
}

func (flattenedGen) place(c host.Chunk, pos cube.Pos, rid uint32, t PlaceType) error {
	fc, ok := c.(host.FlattenedChunk)
	if !ok {
		return illegalState("place block", c)
	}
	fc.SetBlockState(pos, rid, false, t == PlaceNoPhysics)
	return nil
}

func (flattenedGen) writeSection(_ host.Chunk, s host.Section, pos cube.Pos, rid uint32) error {
	return s.Set(pos[0]&15, pos[1], pos[2]&15, rid)
}

func (flattenedGen) accepts(c host.Chunk) bool {
	_, ok := c.(host.FlattenedChunk)
	return ok
}

func (flattenedGen) blockPacket(pos cube.Pos, rid uint32) any {
	return &packet.UpdateBlock{
		Position:          protocol.BlockPos{int32(pos[0]), int32(pos[1]), int32(pos[2])},
		NewBlockRuntimeID: rid,
		Flags:             packet.BlockUpdateNetwork,
	}
}

func (flattenedGen) chunkPacket(c host.Chunk) any {
	pos := c.Position()
	r := c.Range()
	return &packet.LevelChunk{
		Position:      protocol.ChunkPos{pos[0], pos[1]},
		SubChunkCount: uint32((r.Max() - r.Min() + 1) >> 4),
		RawPayload:    c.Payload(),
	}
}

// flaggedGen is flattenedGen with a side effect mask on the mutation
// primitive. Section writes go through the chunk primitive with the raw mask
// and therefore mark the chunk dirty.
type flaggedGen struct{ flattenedGen }

func (flaggedGen) name() string { return "flagged" }

func (flaggedGen) place(c host.Chunk, pos cube.Pos, rid uint32, _ PlaceType) error {
	fc, ok := c.(host.FlaggedChunk)
	if !ok {
		return illegalState("place block", c)
	}
	fc.SetBlockStateFlags(pos, rid, host.RawPlaceFlags)
	return nil
}

func (flaggedGen) writeSection(c host.Chunk, _ host.Section, pos cube.Pos, rid uint32) error {
	fc, ok := c.(host.FlaggedChunk)
	if !ok {
		return illegalState("write section", c)
	}
	fc.SetBlockStateFlags(pos, rid, host.RawPlaceFlags)
	return nil
}

func (flaggedGen) accepts(c host.Chunk) bool {
	_, ok := c.(host.FlaggedChunk)
	return ok
}
