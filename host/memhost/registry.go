package memhost

import (
	"sync"
	"sync/atomic"

	"github.com/oriumgames/compat/host"
)

// materialInfo describes one block type known to the in-memory host.
type materialInfo struct {
	material host.Material
	// legacy is the pre-flattening numeric id.
	legacy uint16
	// entity is the block entity kind created when the block is placed, if
	// any.
	entity string
}

// materials is the fixed block set of the in-memory host. Air must stay first
// so that it receives runtime id zero in both id schemes.
var materials = []materialInfo{
	{material: host.Air, legacy: 0},
	{material: "minecraft:stone", legacy: 1},
	{material: "minecraft:grass_block", legacy: 2},
	{material: "minecraft:dirt", legacy: 3},
	{material: "minecraft:cobblestone", legacy: 4},
	{material: "minecraft:oak_planks", legacy: 5},
	{material: "minecraft:bedrock", legacy: 7},
	{material: "minecraft:sand", legacy: 12},
	{material: "minecraft:gravel", legacy: 13},
	{material: "minecraft:oak_log", legacy: 17},
	{material: "minecraft:glass", legacy: 20},
	{material: "minecraft:white_wool", legacy: 35},
	{material: "minecraft:gold_block", legacy: 41},
	{material: "minecraft:spawner", legacy: 52, entity: "minecraft:mob_spawner"},
	{material: "minecraft:chest", legacy: 54, entity: "minecraft:chest"},
	{material: "minecraft:furnace", legacy: 61, entity: "minecraft:furnace"},
	{material: "minecraft:hopper", legacy: 154, entity: "minecraft:hopper"},
	{material: "minecraft:barrier", legacy: 166},
}

// registry maps block types and states to runtime ids.
//
// Flattened state ids are allocated lazily the first time a state is seen,
// with lock-free reads for states that are already known.
type registry struct {
	byMaterial map[host.Material]*materialInfo
	byLegacy   map[uint16]*materialInfo

	// stateIDs maps a canonical state string to its runtime id.
	stateIDs sync.Map // map[string]uint32

	// states holds the state of every allocated runtime id. It is only
	// written by the goroutine that won the allocation race for an id.
	states   map[uint32]host.BlockData
	statesMu sync.RWMutex

	nextID atomic.Uint32
}

// defaultRegistry is shared by every server; the block set is fixed.
var defaultRegistry = newRegistry()

func newRegistry() *registry {
	r := &registry{
		byMaterial: make(map[host.Material]*materialInfo, len(materials)),
		byLegacy:   make(map[uint16]*materialInfo, len(materials)),
		states:     make(map[uint32]host.BlockData, len(materials)),
	}
	for i := range materials {
		info := &materials[i]
		r.byMaterial[info.material] = info
		r.byLegacy[info.legacy] = info
		r.StateID(host.Block(info.material))
	}
	return r
}

// LegacyID returns the numeric id of m.
func (r *registry) LegacyID(m host.Material) (uint16, bool) {
	info, ok := r.byMaterial[m]
	if !ok {
		return 0, false
	}
	return info.legacy, true
}

// LegacyMaterial returns the material with the numeric id.
func (r *registry) LegacyMaterial(id uint16) (host.Material, bool) {
	info, ok := r.byLegacy[id]
	if !ok {
		return "", false
	}
	return info.material, true
}

// StateID returns the runtime id of b, allocating one if the state has not
// been seen before. Unknown materials are rejected.
func (r *registry) StateID(b host.BlockData) (uint32, bool) {
	if _, ok := r.byMaterial[b.Material]; !ok {
		return 0, false
	}
	// Legacy data values do not exist on flattened hosts
	b.Data = 0
	key := b.String()

	// Fast path: state already allocated
	if id, ok := r.stateIDs.Load(key); ok {
		return id.(uint32), true
	}

	newID := r.nextID.Add(1) - 1
	actual, loaded := r.stateIDs.LoadOrStore(key, newID)
	if loaded {
		// Another goroutine allocated this state first; our id is skipped
		return actual.(uint32), true
	}

	r.statesMu.Lock()
	r.states[newID] = b
	r.statesMu.Unlock()
	return newID, true
}

// State returns the block state behind rid.
func (r *registry) State(rid uint32) (host.BlockData, bool) {
	r.statesMu.RLock()
	defer r.statesMu.RUnlock()
	b, ok := r.states[rid]
	return b, ok
}

// entityKind returns the block entity kind created by m, or an empty string.
func (r *registry) entityKind(m host.Material) string {
	if info, ok := r.byMaterial[m]; ok {
		return info.entity
	}
	return ""
}
