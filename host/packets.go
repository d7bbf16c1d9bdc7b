package host

import (
	"github.com/df-mc/dragonfly/server/block/cube"
)

// The packets below are spoken by legacy hosts. Newer hosts use the gophertunnel
// packet types instead.

// LegacyEntityStatus carries a single entity status byte.
type LegacyEntityStatus struct {
	EntityID int
	Status   byte
}

// LegacyEntityDestroy removes entities from the client.
type LegacyEntityDestroy struct {
	EntityIDs []int
}

// LegacyBlockChange updates one block on the client.
type LegacyBlockChange struct {
	Pos      cube.Pos
	Combined uint32
}

// LegacyMapChunk sends a whole chunk column.
type LegacyMapChunk struct {
	X, Z    int
	Payload []byte
}

// LegacyPosition moves the receiving player.
type LegacyPosition struct {
	X, Y, Z    float64
	Yaw, Pitch float64
}

// LegacyChat is a chat message carrying legacy formatted text.
type LegacyChat struct {
	Text string
}
