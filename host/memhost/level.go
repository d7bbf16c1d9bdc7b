package memhost

import (
	"fmt"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oriumgames/compat/host"
)

// level implements host.Level over a World. The generation specific level
// types below embed it and add their block registry.
type level struct{ w *World }

// Range returns the world's height range.
func (l level) Range() cube.Range { return l.w.r }

// Chunk returns the chunk at x, z, loading it if needed.
func (l level) Chunk(x, z int) (host.Chunk, error) {
	c, err := l.w.load(x, z)
	if err != nil {
		return nil, err
	}
	return c.view(), nil
}

// Loaded returns the chunk at x, z if it is loaded.
func (l level) Loaded(x, z int) (host.Chunk, bool) {
	c, ok := l.w.loaded(x, z)
	if !ok {
		return nil, false
	}
	return c.view(), true
}

// Save writes h to the store.
func (l level) Save(h host.Chunk) error {
	c, ok := Unwrap(h)
	if !ok || c.w != l.w {
		return fmt.Errorf("memhost: chunk %T does not belong to world %s", h, l.w.name)
	}
	return l.w.save(c)
}

// Unload drops the chunk at x, z, saving it first if save is set.
func (l level) Unload(x, z int, save bool) error { return l.w.unload(x, z, save) }

// Refresh resends the chunk at x, z to every viewer.
func (l level) Refresh(x, z int) error { return l.w.refresh(x, z) }

// Relight records a light update at pos.
func (l level) Relight(pos cube.Pos) { l.w.Relight(pos) }

// Viewers returns every player in the world.
func (l level) Viewers() []host.Observer { return l.w.viewers() }

// ForceLoad reports whether chunks load synchronously.
func (l level) ForceLoad() bool { return l.w.ForceLoad() }

// SpawnEntity spawns an entity of kind at pos.
func (l level) SpawnEntity(kind string, pos mgl64.Vec3, reason host.SpawnReason) (host.Entity, error) {
	if pos.Y() < float64(l.w.r.Min()) || pos.Y() > float64(l.w.r.Max()+1) {
		return nil, fmt.Errorf("memhost: cannot spawn %s at %v outside the world range", kind, pos)
	}
	return l.w.Spawn(EntityConfig{Kind: kind, Position: pos, Reason: reason}), nil
}

// legacyLevel is the world handle of legacy releases. Chunk force loading can
// be switched off.
type legacyLevel struct{ level }

// LegacyID returns the numeric id of m.
func (l legacyLevel) LegacyID(m host.Material) (uint16, bool) { return l.w.reg.LegacyID(m) }

// LegacyMaterial returns the material with the numeric id.
func (l legacyLevel) LegacyMaterial(id uint16) (host.Material, bool) {
	return l.w.reg.LegacyMaterial(id)
}

// SetForceLoad toggles synchronous chunk loading.
func (l legacyLevel) SetForceLoad(v bool) { l.w.SetForceLoad(v) }

// flattenedLevel is the world handle of flattened releases. Chunk force
// loading can be switched off.
type flattenedLevel struct{ level }

// StateID returns the runtime id of b.
func (l flattenedLevel) StateID(b host.BlockData) (uint32, bool) { return l.w.reg.StateID(b) }

// State returns the block state behind rid.
func (l flattenedLevel) State(rid uint32) (host.BlockData, bool) { return l.w.reg.State(rid) }

// SetForceLoad toggles synchronous chunk loading.
func (l flattenedLevel) SetForceLoad(v bool) { l.w.SetForceLoad(v) }

// flaggedLevel is the world handle of flagged releases. Chunks are always
// loaded synchronously.
type flaggedLevel struct{ level }

// StateID returns the runtime id of b.
func (l flaggedLevel) StateID(b host.BlockData) (uint32, bool) { return l.w.reg.StateID(b) }

// State returns the block state behind rid.
func (l flaggedLevel) State(rid uint32) (host.BlockData, bool) { return l.w.reg.State(rid) }
