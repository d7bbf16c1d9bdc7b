package memhost

import (
	"slices"
	"sync"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oriumgames/compat/host"
	"github.com/oriumgames/compat/version"
)

// dualWield is the first release with an off hand.
var dualWield = version.MustEncode("1.9")

// Player is a connected in-memory player. Everything sent to it is recorded.
type Player struct {
	*Entity
	srv   *Server
	name  string
	world *World

	mu        sync.Mutex
	main, off host.ItemStack
	packets   []any
	messages  []any
	teleports int
}

func newPlayer(s *Server, name string, w *World, pos mgl64.Vec3) *Player {
	return &Player{
		Entity: newEntity(s.entityID(), EntityConfig{Kind: "minecraft:player", Name: name, Position: pos}),
		srv:    s,
		name:   name,
		world:  w,
	}
}

// Name returns the player's name.
func (p *Player) Name() string { return p.name }

// World returns the world the player is in.
func (p *Player) World() host.World { return p.world }

// SendPacket records pk as sent to the player.
func (p *Player) SendPacket(pk any) error {
	p.mu.Lock()
	p.packets = append(p.packets, pk)
	p.mu.Unlock()
	return nil
}

// SendMessage records msg as sent to the player.
func (p *Player) SendMessage(msg any) error {
	p.mu.Lock()
	p.messages = append(p.messages, msg)
	p.mu.Unlock()
	return nil
}

// Teleport moves the player and counts a teleport event.
func (p *Player) Teleport(pos mgl64.Vec3, rot cube.Rotation) error {
	p.mu.Lock()
	p.teleports++
	p.mu.Unlock()
	p.move(pos, rot)
	return nil
}

// Internal returns a single handed handle before 1.9 and a dual handed one
// from 1.9 on.
func (p *Player) Internal() any {
	if p.srv.version < dualWield {
		return singleHand{playerHandle{p}}
	}
	return dualHand{playerHandle{p}}
}

// Packets returns the packets sent to the player.
func (p *Player) Packets() []any {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.packets)
}

// Messages returns the messages sent to the player.
func (p *Player) Messages() []any {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.messages)
}

// Reset forgets recorded packets and messages.
func (p *Player) Reset() {
	p.mu.Lock()
	p.packets, p.messages = nil, nil
	p.mu.Unlock()
}

// TeleportEvents returns the number of teleport events fired for the player.
func (p *Player) TeleportEvents() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.teleports
}

// Held returns the items in the main and off hand.
func (p *Player) Held() (main, off host.ItemStack) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.main, p.off
}

// SetHeld sets the items in the main and off hand.
func (p *Player) SetHeld(main, off host.ItemStack) {
	p.mu.Lock()
	p.main, p.off = main, off
	p.mu.Unlock()
}

// playerHandle is the part of the player handle shared by every generation.
type playerHandle struct{ p *Player }

// MoveTo repositions the player without firing a teleport event.
func (h playerHandle) MoveTo(pos mgl64.Vec3, rot cube.Rotation) {
	h.p.move(pos, rot)
}

// singleHand is the player handle of legacy releases.
type singleHand struct{ playerHandle }

// ItemInHand returns the held item.
func (h singleHand) ItemInHand() host.ItemStack {
	main, _ := h.p.Held()
	return main
}

// SetItemInHand replaces the held item.
func (h singleHand) SetItemInHand(it host.ItemStack) {
	_, off := h.p.Held()
	h.p.SetHeld(it, off)
}

// dualHand is the player handle of releases with an off hand.
type dualHand struct{ playerHandle }

// HeldItems returns the main hand and off hand items.
func (h dualHand) HeldItems() (main, off host.ItemStack) { return h.p.Held() }

// SetHeldItems replaces both held items.
func (h dualHand) SetHeldItems(main, off host.ItemStack) { h.p.SetHeld(main, off) }
