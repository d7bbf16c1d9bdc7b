package memhost

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/df-mc/dragonfly/server/world/chunk"
	"github.com/oriumgames/compat/host"
)

// ErrNotLoaded is returned when a chunk is accessed while force loading is
// disabled and the chunk is not in memory.
var ErrNotLoaded = errors.New("memhost: chunk not loaded")

// fullEngineFlags is the mask used by World.SetBlock.
const fullEngineFlags = host.FlagNeighborUpdates | host.FlagAdditionalNeighbors

// World is an in-memory world.
type World struct {
	srv  *Server
	name string
	r    cube.Range
	reg  *registry

	mu        sync.Mutex
	chunks    map[world.ChunkPos]*Chunk
	forceLoad bool
	entities  map[int]*Entity

	effectsMu sync.Mutex
	effects   []Effect
}

func newWorld(s *Server, name string, r cube.Range) *World {
	return &World{
		srv:       s,
		name:      name,
		r:         r,
		reg:       s.reg,
		chunks:    make(map[world.ChunkPos]*Chunk),
		forceLoad: true,
		entities:  make(map[int]*Entity),
	}
}

// Name returns the world's name.
func (w *World) Name() string { return w.name }

// Range returns the world's height range.
func (w *World) Range() cube.Range { return w.r }

// Generation returns the generation of the server the world belongs to.
func (w *World) Generation() Generation { return w.srv.gen }

// Block returns the block at pos, loading its chunk if needed.
func (w *World) Block(pos cube.Pos) (host.BlockData, error) {
	c, err := w.chunkAt(pos)
	if err != nil {
		return host.BlockData{}, err
	}
	rid := c.Block(pos[0]&15, pos[1], pos[2]&15)
	b, ok := w.decode(rid)
	if !ok {
		return host.BlockData{}, fmt.Errorf("memhost: unknown runtime id %d at %v", rid, pos)
	}
	return b, nil
}

// SetBlock places b with every side effect and notifies viewers.
func (w *World) SetBlock(pos cube.Pos, b host.BlockData) error {
	rid, err := w.encode(b)
	if err != nil {
		return err
	}
	c, err := w.chunkAt(pos)
	if err != nil {
		return err
	}
	c.set(pos, rid, fullEngineFlags)
	w.Relight(pos)
	w.notify(pos, rid)
	return nil
}

// Players returns the players in the world.
func (w *World) Players() []host.Player {
	ps := w.srv.playersIn(w)
	out := make([]host.Player, len(ps))
	for i, p := range ps {
		out[i] = p
	}
	return out
}

// Internal returns the level handle of the world's generation.
func (w *World) Internal() any {
	switch w.srv.gen {
	case Legacy:
		return legacyLevel{level{w}}
	case Flattened:
		return flattenedLevel{level{w}}
	default:
		return flaggedLevel{level{w}}
	}
}

// encode returns the runtime id of b in the world's id scheme.
func (w *World) encode(b host.BlockData) (uint32, error) {
	if w.srv.gen == Legacy {
		id, ok := w.reg.LegacyID(b.Material)
		if !ok {
			return 0, fmt.Errorf("memhost: unknown material %s", b.Material)
		}
		return host.CombineLegacy(id, b.Data), nil
	}
	rid, ok := w.reg.StateID(b)
	if !ok {
		return 0, fmt.Errorf("memhost: unknown block state %s", b)
	}
	return rid, nil
}

// decode is the inverse of encode.
func (w *World) decode(rid uint32) (host.BlockData, bool) {
	if w.srv.gen == Legacy {
		id, data := host.SplitLegacy(rid)
		m, ok := w.reg.LegacyMaterial(id)
		return host.BlockData{Material: m, Data: data}, ok
	}
	return w.reg.State(rid)
}

// materialOf returns the material of rid, or air if it is unknown.
func (w *World) materialOf(rid uint32) host.Material {
	if b, ok := w.decode(rid); ok {
		return b.Material
	}
	return host.Air
}

// chunkAt returns the chunk containing pos.
func (w *World) chunkAt(pos cube.Pos) (*Chunk, error) {
	if pos.OutOfBounds(w.r) {
		return nil, fmt.Errorf("memhost: %v is outside the world range %v", pos, w.r)
	}
	return w.load(pos[0]>>4, pos[2]>>4)
}

// load returns the chunk at x and z, reading it from the store or generating
// it when it is not in memory.
func (w *World) load(x, z int) (*Chunk, error) {
	pos := world.ChunkPos{int32(x), int32(z)}

	w.mu.Lock()
	defer w.mu.Unlock()
	if c, ok := w.chunks[pos]; ok {
		return c, nil
	}
	if !w.forceLoad {
		return nil, fmt.Errorf("%w: %d %d", ErrNotLoaded, x, z)
	}

	c := newChunk(w, pos)
	col, err := w.srv.store.LoadColumn(w.name, pos)
	if err != nil {
		return nil, fmt.Errorf("memhost: load chunk %d %d: %w", x, z, err)
	}
	if col != nil {
		if err := c.decode(col); err != nil {
			return nil, fmt.Errorf("memhost: decode chunk %d %d: %w", x, z, err)
		}
	} else {
		w.srv.conf.Generator.GenerateChunk(pos, c.col, w.generatorID)
		for _, sub := range subIndices(c.col) {
			c.sections[sub+w.r.Min()>>4] = struct{}{}
		}
	}
	w.chunks[pos] = c
	return c, nil
}

// generatorID resolves generator materials, falling back to air.
func (w *World) generatorID(m host.Material) uint32 {
	rid, err := w.encode(host.Block(m))
	if err != nil {
		return 0
	}
	return rid
}

// subIndices lists the indices of the non-empty sub chunks of c.
func subIndices(c *chunk.Chunk) []int {
	var out []int
	for i, sub := range c.Sub() {
		if !sub.Empty() {
			out = append(out, i)
		}
	}
	return out
}

// loaded returns the chunk at x and z if it is in memory.
func (w *World) loaded(x, z int) (*Chunk, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	c, ok := w.chunks[world.ChunkPos{int32(x), int32(z)}]
	return c, ok
}

// Loaded reports whether the chunk at x and z is in memory.
func (w *World) Loaded(x, z int) bool {
	_, ok := w.loaded(x, z)
	return ok
}

// save writes c to the store if it is dirty.
func (w *World) save(c *Chunk) error {
	if !c.dirty {
		return nil
	}
	if err := w.srv.store.StoreColumn(w.name, c.pos, c.encode()); err != nil {
		return fmt.Errorf("memhost: save chunk %v: %w", c.pos, err)
	}
	c.dirty = false
	return nil
}

// SaveAll saves every dirty loaded chunk.
func (w *World) SaveAll() error {
	w.mu.Lock()
	chunks := make([]*Chunk, 0, len(w.chunks))
	for _, c := range w.chunks {
		chunks = append(chunks, c)
	}
	w.mu.Unlock()

	for _, c := range chunks {
		if err := w.save(c); err != nil {
			return err
		}
	}
	return nil
}

// unload drops the chunk at x and z, saving it first when save is true.
func (w *World) unload(x, z int, save bool) error {
	pos := world.ChunkPos{int32(x), int32(z)}
	w.mu.Lock()
	c, ok := w.chunks[pos]
	if ok {
		delete(w.chunks, pos)
	}
	w.mu.Unlock()

	if !ok || !save {
		return nil
	}
	return w.save(c)
}

// viewers lists the observers of the world.
func (w *World) viewers() []host.Observer {
	ps := w.srv.playersIn(w)
	out := make([]host.Observer, len(ps))
	for i, p := range ps {
		out[i] = p
	}
	return out
}

// notify sends a single block update to every viewer.
func (w *World) notify(pos cube.Pos, rid uint32) {
	pk := blockPacket(w.srv.gen, pos, rid)
	for _, v := range w.viewers() {
		_ = v.SendPacket(pk)
	}
}

// refresh resends the chunk at x and z to every viewer.
func (w *World) refresh(x, z int) error {
	c, ok := w.loaded(x, z)
	if !ok {
		return fmt.Errorf("%w: %d %d", ErrNotLoaded, x, z)
	}
	pk := chunkPacket(w.srv.gen, c)
	for _, v := range w.viewers() {
		_ = v.SendPacket(pk)
	}
	return nil
}

// Relight records a light update at pos.
func (w *World) Relight(pos cube.Pos) {
	w.record(Effect{Kind: EffectRelight, Pos: pos})
}

// SetForceLoad toggles synchronous chunk loading.
func (w *World) SetForceLoad(v bool) {
	w.mu.Lock()
	w.forceLoad = v
	w.mu.Unlock()
}

// ForceLoad reports whether chunks load synchronously.
func (w *World) ForceLoad() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.forceLoad
}

// Entities lists the entities of the world ordered by id.
func (w *World) Entities() []*Entity {
	w.mu.Lock()
	out := make([]*Entity, 0, len(w.entities))
	for _, e := range w.entities {
		out = append(out, e)
	}
	w.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// RemoveEntity removes e from the world.
func (w *World) RemoveEntity(e *Entity) {
	w.mu.Lock()
	delete(w.entities, e.id)
	w.mu.Unlock()
}
