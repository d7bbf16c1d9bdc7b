package compat

import (
	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oriumgames/compat/host"
	"github.com/oriumgames/compat/version"
	"github.com/sandertv/gophertunnel/minecraft/protocol/packet"
)

// Teleporter moves players without firing the teleport event of the host.
type Teleporter interface {
	TeleportWithoutEvent(p host.Player, pos mgl64.Vec3, rot cube.Rotation) error
}

var teleporterTable = version.Table[func(*API) (Teleporter, error)]{
	Capability: "teleporter",
	Floor:      "1.8",
	Breakpoints: []version.Breakpoint[func(*API) (Teleporter, error)]{
		{Through: "1.12.2", Name: "legacy", New: func(*API) (Teleporter, error) { return teleporter{legacy: true}, nil }},
	},
	Default: version.Breakpoint[func(*API) (Teleporter, error)]{Name: "modern", New: func(*API) (Teleporter, error) {
		return teleporter{}, nil
	}},
}

// teleporter implements Teleporter: it repositions the player server side and
// sends the position packet of the generation.
type teleporter struct {
	legacy bool
}

// TeleportWithoutEvent moves p without firing a teleport event.
func (t teleporter) TeleportWithoutEvent(p host.Player, pos mgl64.Vec3, rot cube.Rotation) error {
	if p == nil {
		return illegalState("teleport", nil)
	}
	m, ok := p.Internal().(host.Mover)
	if !ok {
		return illegalState("teleport", p.Internal())
	}
	m.MoveTo(pos, rot)

	if t.legacy {
		return p.SendPacket(&host.LegacyPosition{
			X: pos[0], Y: pos[1], Z: pos[2],
			Yaw: rot.Yaw(), Pitch: rot.Pitch(),
		})
	}
	return p.SendPacket(&packet.MovePlayer{
		EntityRuntimeID: uint64(p.ID()),
		Position:        mgl32.Vec3{float32(pos[0]), float32(pos[1]), float32(pos[2])},
		Yaw:             float32(rot.Yaw()),
		HeadYaw:         float32(rot.Yaw()),
		Pitch:           float32(rot.Pitch()),
		Mode:            packet.MoveModeTeleport,
	})
}
