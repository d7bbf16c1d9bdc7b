package memhost

import (
	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/oriumgames/compat/host"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
	"github.com/sandertv/gophertunnel/minecraft/protocol/packet"
)

// blockPacket builds the single block update of generation g.
func blockPacket(g Generation, pos cube.Pos, rid uint32) any {
	if g == Legacy {
		return &host.LegacyBlockChange{Pos: pos, Combined: rid}
	}
	return &packet.UpdateBlock{
		Position:          protocol.BlockPos{int32(pos[0]), int32(pos[1]), int32(pos[2])},
		NewBlockRuntimeID: rid,
		Flags:             packet.BlockUpdateNetwork,
	}
}

// chunkPacket builds the full chunk packet of generation g.
func chunkPacket(g Generation, c *Chunk) any {
	if g == Legacy {
		return &host.LegacyMapChunk{X: int(c.pos[0]), Z: int(c.pos[1]), Payload: c.Payload()}
	}
	return &packet.LevelChunk{
		Position:      protocol.ChunkPos(c.pos),
		SubChunkCount: uint32(len(c.sections)),
		RawPayload:    c.Payload(),
	}
}
