package memhost

import (
	"sync"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/oriumgames/compat/host"
)

// EntityConfig configures the initial state of an entity spawned with
// World.Spawn.
type EntityConfig struct {
	// Identity
	Kind string
	Name string

	// Position & Physics
	Position mgl64.Vec3
	Velocity mgl64.Vec3
	Rotation cube.Rotation

	// Vitals
	Health    float64
	HealthMax float64

	// Reason is recorded as the spawn cause. Default: host.SpawnDefault.
	Reason host.SpawnReason
}

// Entity is an in-memory entity.
type Entity struct {
	id     int
	uuid   uuid.UUID
	kind   string
	name   string
	reason host.SpawnReason

	mu     sync.Mutex
	pos    mgl64.Vec3
	vel    mgl64.Vec3
	rot    cube.Rotation
	health float64
	maxHP  float64
}

func newEntity(id int, conf EntityConfig) *Entity {
	if conf.Reason == "" {
		conf.Reason = host.SpawnDefault
	}
	if conf.HealthMax == 0 {
		conf.HealthMax = 20
	}
	if conf.Health == 0 {
		conf.Health = conf.HealthMax
	}
	return &Entity{
		id:     id,
		uuid:   uuid.New(),
		kind:   conf.Kind,
		name:   conf.Name,
		reason: conf.Reason,
		pos:    conf.Position,
		vel:    conf.Velocity,
		rot:    conf.Rotation,
		health: conf.Health,
		maxHP:  conf.HealthMax,
	}
}

// Spawn adds a new entity configured by conf to the world.
func (w *World) Spawn(conf EntityConfig) *Entity {
	e := newEntity(w.srv.entityID(), conf)
	w.mu.Lock()
	w.entities[e.id] = e
	w.mu.Unlock()
	return e
}

// ID returns the entity's runtime id.
func (e *Entity) ID() int { return e.id }

// UUID returns the entity's unique id.
func (e *Entity) UUID() uuid.UUID { return e.uuid }

// Kind returns the entity type.
func (e *Entity) Kind() string { return e.kind }

// SpawnReason returns why the entity was spawned.
func (e *Entity) SpawnReason() host.SpawnReason { return e.reason }

// Position returns the entity's position.
func (e *Entity) Position() mgl64.Vec3 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pos
}

// Rotation returns the entity's rotation.
func (e *Entity) Rotation() cube.Rotation {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rot
}

// Velocity returns the entity's velocity.
func (e *Entity) Velocity() mgl64.Vec3 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.vel
}

// Health returns the current and maximum health of the entity.
func (e *Entity) Health() (float64, float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.health, e.maxHP
}

// move sets the position and rotation of the entity.
func (e *Entity) move(pos mgl64.Vec3, rot cube.Rotation) {
	e.mu.Lock()
	e.pos, e.rot = pos, rot
	e.mu.Unlock()
}
