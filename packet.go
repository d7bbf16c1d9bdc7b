package compat

import (
	"fmt"
	"slices"

	"github.com/oriumgames/compat/host"
	"github.com/oriumgames/compat/version"
	"github.com/sandertv/gophertunnel/minecraft/protocol/packet"
)

// Packet is a host packet classified by a PacketHandler. The set of packet
// kinds is closed: it is either an *EntityStatusPacket or an
// *EntityDestroyPacket.
type Packet interface {
	// Handle returns the host packet the value was wrapped from, or nil if
	// it was created by a PacketHandler.
	Handle() any
	packet()
}

// EntityStatusPacket plays a status effect, such as the hurt animation, on
// one entity.
type EntityStatusPacket struct {
	EntityID int
	Status   byte
	handle   any
}

// Handle returns the host packet.
func (p *EntityStatusPacket) Handle() any { return p.handle }

func (*EntityStatusPacket) packet() {}

// EntityDestroyPacket removes entities from the client.
type EntityDestroyPacket struct {
	ids    []int
	handle any
}

// ToDestroy returns the ids of the entities removed by the packet. The slice
// must not be modified.
func (p *EntityDestroyPacket) ToDestroy() []int { return p.ids }

// Handle returns the host packet.
func (p *EntityDestroyPacket) Handle() any { return p.handle }

func (*EntityDestroyPacket) packet() {}

// PacketHandler converts between host packets and Packet values.
type PacketHandler interface {
	// WrapPacket classifies a host packet. Packets of any other kind fail
	// with an *IllegalStateError.
	WrapPacket(handle any) (Packet, error)
	// CreateDestroyPacket creates a packet removing the entities with ids.
	CreateDestroyPacket(ids ...int) *EntityDestroyPacket
	// CreateStatusPacket creates a packet playing status on entity id.
	CreateStatusPacket(id int, status byte) *EntityStatusPacket
	// SendPacket sends p to o in the wire format of the host.
	SendPacket(o host.Observer, p Packet) error
}

var packetTable = version.Table[func(*API) (PacketHandler, error)]{
	Capability: "packets",
	Floor:      "1.8",
	Breakpoints: []version.Breakpoint[func(*API) (PacketHandler, error)]{
		{Through: "1.12.2", Name: "legacy", New: func(a *API) (PacketHandler, error) {
			return legacyPackets{metrics: a.metrics}, nil
		}},
	},
	Default: version.Breakpoint[func(*API) (PacketHandler, error)]{Name: "modern", New: func(a *API) (PacketHandler, error) {
		return modernPackets{metrics: a.metrics}, nil
	}},
}

// legacyPackets speaks the host.Legacy packet structs.
type legacyPackets struct {
	metrics *Metrics
}

// WrapPacket wraps a legacy host packet.
func (h legacyPackets) WrapPacket(handle any) (Packet, error) {
	switch pk := handle.(type) {
	case *host.LegacyEntityStatus:
		if pk != nil {
			h.metrics.packetWrapped("entity_status")
			return &EntityStatusPacket{EntityID: pk.EntityID, Status: pk.Status, handle: pk}, nil
		}
	case *host.LegacyEntityDestroy:
		if pk != nil {
			h.metrics.packetWrapped("entity_destroy")
			return &EntityDestroyPacket{ids: pk.EntityIDs, handle: pk}, nil
		}
	}
	return nil, illegalState("wrap packet", handle)
}

// CreateDestroyPacket returns a legacy destroy packet for ids.
func (legacyPackets) CreateDestroyPacket(ids ...int) *EntityDestroyPacket {
	return &EntityDestroyPacket{ids: slices.Clone(ids)}
}

// CreateStatusPacket returns a legacy status packet for the entity id.
func (legacyPackets) CreateStatusPacket(id int, status byte) *EntityStatusPacket {
	return &EntityStatusPacket{EntityID: id, Status: status}
}

// SendPacket sends the host packet behind p to o.
func (legacyPackets) SendPacket(o host.Observer, p Packet) error {
	switch p := p.(type) {
	case *EntityStatusPacket:
		return o.SendPacket(&host.LegacyEntityStatus{EntityID: p.EntityID, Status: p.Status})
	case *EntityDestroyPacket:
		return o.SendPacket(&host.LegacyEntityDestroy{EntityIDs: slices.Clone(p.ids)})
	}
	return illegalState("send packet", p)
}

// modernPackets speaks gophertunnel packets. Entities are removed one packet
// at a time.
type modernPackets struct {
	metrics *Metrics
}

// WrapPacket wraps a gophertunnel packet.
func (h modernPackets) WrapPacket(handle any) (Packet, error) {
	switch pk := handle.(type) {
	case *packet.ActorEvent:
		if pk != nil {
			h.metrics.packetWrapped("entity_status")
			return &EntityStatusPacket{EntityID: int(pk.EntityRuntimeID), Status: pk.EventType, handle: pk}, nil
		}
	case *packet.RemoveActor:
		if pk != nil {
			h.metrics.packetWrapped("entity_destroy")
			return &EntityDestroyPacket{ids: []int{int(pk.EntityUniqueID)}, handle: pk}, nil
		}
	}
	return nil, illegalState("wrap packet", handle)
}

// CreateDestroyPacket returns a packet that sends one remove-actor per id.
func (modernPackets) CreateDestroyPacket(ids ...int) *EntityDestroyPacket {
	return &EntityDestroyPacket{ids: slices.Clone(ids)}
}

// CreateStatusPacket returns an actor-event packet for the entity id.
func (modernPackets) CreateStatusPacket(id int, status byte) *EntityStatusPacket {
	return &EntityStatusPacket{EntityID: id, Status: status}
}

// SendPacket sends the host packet behind p to o.
func (modernPackets) SendPacket(o host.Observer, p Packet) error {
	switch p := p.(type) {
	case *EntityStatusPacket:
		return o.SendPacket(&packet.ActorEvent{EntityRuntimeID: uint64(p.EntityID), EventType: p.Status})
	case *EntityDestroyPacket:
		for _, id := range p.ids {
			if err := o.SendPacket(&packet.RemoveActor{EntityUniqueID: int64(id)}); err != nil {
				return fmt.Errorf("compat: remove entity %d: %w", id, err)
			}
		}
		return nil
	}
	return illegalState("send packet", p)
}
