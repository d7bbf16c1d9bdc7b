package host

import (
	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/go-gl/mathgl/mgl64"
)

// Level is the internal handle behind World.Internal. Every generation
// implements it; the block registry and the chunk mutation primitive differ.
//
// Level methods that mutate state must be called from the host main thread.
type Level interface {
	Range() cube.Range
	// Chunk returns the chunk at the chunk coordinates x and z, loading or
	// generating it synchronously.
	Chunk(x, z int) (Chunk, error)
	// Loaded returns the chunk at x and z if it is currently loaded.
	Loaded(x, z int) (Chunk, bool)
	// Save writes c to persistent storage if it is dirty.
	Save(c Chunk) error
	// Unload removes the chunk at x and z from memory, saving it first when
	// save is true.
	Unload(x, z int, save bool) error
	// Refresh resends the whole chunk at x and z to every viewer.
	Refresh(x, z int) error
	// Relight recalculates light around pos.
	Relight(pos cube.Pos)
	// Viewers lists the observers currently viewing the level.
	Viewers() []Observer
	// ForceLoad reports whether chunks are loaded synchronously on access.
	ForceLoad() bool
	// SpawnEntity adds a new entity of the given kind, recording reason as its
	// spawn cause.
	SpawnEntity(kind string, pos mgl64.Vec3, reason SpawnReason) (Entity, error)
}

// ForceLoadToggler is implemented by levels that allow synchronous chunk
// loading to be switched off.
type ForceLoadToggler interface {
	SetForceLoad(v bool)
}

// LegacyRegistry is implemented by levels of releases before the flattening,
// where blocks are addressed by a numeric id and a data value.
type LegacyRegistry interface {
	LegacyID(m Material) (uint16, bool)
	LegacyMaterial(id uint16) (Material, bool)
}

// StateRegistry is implemented by levels of flattened releases, where every
// block state has its own runtime id.
type StateRegistry interface {
	StateID(b BlockData) (uint32, bool)
	State(rid uint32) (BlockData, bool)
}

// Chunk is the internal handle of a 16x16 column of blocks. Block values are
// runtime ids: combined legacy ids on legacy hosts and state ids otherwise.
type Chunk interface {
	Position() world.ChunkPos
	Range() cube.Range
	// Block returns the runtime id at chunk relative x and z and absolute y.
	Block(x, y, z int) uint32
	// Section returns the section with the vertical index y, or nil if the
	// section has never been allocated.
	Section(y int) Section
	// CreateSection returns the section with the vertical index y, allocating
	// it if needed.
	CreateSection(y int) (Section, error)
	// BlockEntities returns the block entities of the chunk keyed by world
	// position. The map must not be modified.
	BlockEntities() map[cube.Pos]*BlockEntity
	// ClearBlockEntities drops every block entity of the chunk without side
	// effects.
	ClearBlockEntities()
	// Dirty reports whether the chunk has unsaved changes.
	Dirty() bool
	// Payload encodes the blocks of the chunk for network transfer.
	Payload() []byte
}

// Section is a 16x16x16 slice of a chunk. Writes to a section bypass the
// chunk's dirty tracking and all side effects.
type Section interface {
	// Y is the vertical index of the section: its lowest block Y >> 4.
	Y() int
	// Empty reports whether the section only holds air.
	Empty() bool
	// Set writes rid at chunk relative x and z and absolute y. y must lie
	// within the section.
	Set(x, y, z int, rid uint32) error
}

// LegacyChunk is the chunk handle of releases up to 1.12.2. The primitive
// takes two booleans rather than a flag mask.
type LegacyChunk interface {
	Chunk
	// SetTypeAndData writes a combined legacy id and returns the previous one.
	SetTypeAndData(pos cube.Pos, combined uint32, physics, doPlace bool) uint32
}

// FlattenedChunk is the chunk handle of releases from 1.13 through 1.21.4.
type FlattenedChunk interface {
	Chunk
	// SetBlockState writes a state id and returns the previous one.
	SetBlockState(pos cube.Pos, state uint32, physics, doPlace bool) uint32
}

// FlaggedChunk is the chunk handle of releases after 1.21.4, whose mutation
// primitive takes a side effect mask.
type FlaggedChunk interface {
	Chunk
	// SetBlockStateFlags writes a state id and returns the previous one.
	SetBlockStateFlags(pos cube.Pos, state uint32, flags SetFlags) uint32
}

// SingleHanded is the player handle of releases before dual wielding.
type SingleHanded interface {
	ItemInHand() ItemStack
	SetItemInHand(it ItemStack)
}

// DualHanded is the player handle of releases with an off hand.
type DualHanded interface {
	HeldItems() (main, off ItemStack)
	SetHeldItems(main, off ItemStack)
}

// Mover is implemented by player handles that can be repositioned without
// firing a teleport event.
type Mover interface {
	MoveTo(pos mgl64.Vec3, rot cube.Rotation)
}

// KnownCommands exposes the raw name to command table of a CommandMap.
type KnownCommands interface {
	// KnownCommands returns the live table. Changes to it take effect
	// immediately.
	KnownCommands() map[string]Command
}

// CommandSyncer is implemented by command maps whose clients hold a copy of
// the command tree that must be resent after a change.
type CommandSyncer interface {
	SyncCommands()
}
