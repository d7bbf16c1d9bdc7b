// Package host describes the object model of the server application that the
// compat layer runs inside.
//
// The stable surface (Server, World, Player, Entity, Observer, CommandMap) is
// the same on every release. Each of these also exposes an Internal handle
// whose concrete shape depends on the release generation of the host. The
// shapes a handle may take are declared in level.go; the compat package
// discriminates between them.
package host

import (
	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// Server is the running host application.
type Server interface {
	// Name is the implementation name of the host, for example "Paper".
	Name() string
	// Version is the raw release identifier, for example "1.20.4-R0.1-SNAPSHOT".
	Version() string
	// World looks up a loaded world by name.
	World(name string) (World, bool)
	// Worlds lists all loaded worlds.
	Worlds() []World
	// Player looks up an online player.
	Player(id uuid.UUID) (Player, bool)
	// Commands returns the command table of the server.
	Commands() CommandMap
}

// World is a loaded dimension of the host.
type World interface {
	Name() string
	// Range is the inclusive vertical block range of the world.
	Range() cube.Range
	// Block returns the block at pos, loading its chunk if needed.
	Block(pos cube.Pos) (BlockData, error)
	// SetBlock places b through the full simulation pipeline: block updates,
	// physics and lighting all run.
	SetBlock(pos cube.Pos, b BlockData) error
	// Players lists the players currently in the world.
	Players() []Player
	// Internal returns the generation specific handle of the world. It is
	// one of the Level shapes.
	Internal() any
}

// Observer is anything that can receive packets and chat, usually a player
// connection.
type Observer interface {
	UUID() uuid.UUID
	Name() string
	// SendPacket writes a host-native packet to the observer.
	SendPacket(pk any) error
	// SendMessage sends a host-native rich text object.
	SendMessage(msg any) error
}

// Entity is a living or non-living entity in a world.
type Entity interface {
	// ID is the network id of the entity.
	ID() int
	UUID() uuid.UUID
	// Kind is the namespaced entity type, for example "minecraft:zombie".
	Kind() string
	Position() mgl64.Vec3
	Rotation() cube.Rotation
	// SpawnReason is the cause the entity was spawned with.
	SpawnReason() SpawnReason
}

// Player is a connected player. It is both an Observer and an Entity.
type Player interface {
	Observer
	Entity
	// World returns the world the player is in.
	World() World
	// Teleport moves the player, firing the teleport event of the host.
	Teleport(pos mgl64.Vec3, rot cube.Rotation) error
	// Internal returns the generation specific handle of the player. It is
	// either a SingleHanded or a DualHanded.
	Internal() any
}

// SpawnReason tags an entity spawn with its cause, used by the host's spawn
// causality tracking.
type SpawnReason string

const (
	SpawnCustom   SpawnReason = "CUSTOM"
	SpawnNatural  SpawnReason = "NATURAL"
	SpawnCommand  SpawnReason = "COMMAND"
	SpawnSpawner  SpawnReason = "SPAWNER"
	SpawnEgg      SpawnReason = "SPAWNER_EGG"
	SpawnDefault  SpawnReason = "DEFAULT"
	SpawnBreeding SpawnReason = "BREEDING"
)

// Hand identifies which hand an interaction was performed with.
type Hand uint8

const (
	HandMain Hand = iota
	HandOff
)

// String returns the hand name.
func (h Hand) String() string {
	if h == HandOff {
		return "off_hand"
	}
	return "main_hand"
}

// InteractEvent is fired when a player interacts with a block or the air.
// Hosts without a second hand always report HandMain.
type InteractEvent struct {
	Player Player
	Hand   Hand
	Pos    cube.Pos
}

// Command is a registered chat command.
type Command struct {
	Name        string
	Aliases     []string
	Description string
	Usage       string
	// Plugin is the owning plugin, used as the fallback namespace prefix.
	Plugin string
	Run    func(sender Observer, args []string) error
}

// CommandMap is the command table of the server.
type CommandMap interface {
	// Lookup finds a command by name or alias.
	Lookup(name string) (Command, bool)
	// Internal returns the generation specific handle. It is a KnownCommands
	// value, and also a CommandSyncer on releases with a client command tree.
	Internal() any
}

// BlockTypes is implemented by servers that can tell placeable block
// materials from item-only ones.
type BlockTypes interface {
	IsBlock(m Material) bool
}
