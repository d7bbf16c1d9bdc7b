package memhost

import (
	"github.com/df-mc/dragonfly/server/world"
	"github.com/df-mc/dragonfly/server/world/chunk"
	"github.com/oriumgames/compat/host"
)

// Generator fills chunks that have never been saved. blockID resolves a
// material to a runtime id in the id scheme of the world being generated.
type Generator interface {
	GenerateChunk(pos world.ChunkPos, c *chunk.Chunk, blockID func(host.Material) uint32)
}

// NopGenerator generates void chunks.
type NopGenerator struct{}

// GenerateChunk leaves the chunk empty.
func (NopGenerator) GenerateChunk(world.ChunkPos, *chunk.Chunk, func(host.Material) uint32) {}

// Flat generates a superflat world: one layer of each material from the
// bottom of the world upwards.
type Flat struct {
	Layers []host.Material
}

// DefaultFlat returns the classic superflat preset: bedrock, two layers of
// dirt and grass.
func DefaultFlat() Flat {
	return Flat{Layers: []host.Material{
		"minecraft:bedrock",
		"minecraft:dirt",
		"minecraft:dirt",
		"minecraft:grass_block",
	}}
}

// GenerateChunk fills the chunk with the layers of f.
func (f Flat) GenerateChunk(_ world.ChunkPos, c *chunk.Chunk, blockID func(host.Material) uint32) {
	base := c.Range().Min()
	for i, m := range f.Layers {
		rid := blockID(m)
		y := int16(base + i)
		for x := uint8(0); x < 16; x++ {
			for z := uint8(0); z < 16; z++ {
				c.SetBlock(x, y, z, 0, rid)
			}
		}
	}
}
