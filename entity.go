package compat

import (
	"strings"

	"github.com/oriumgames/compat/host"
	"github.com/oriumgames/compat/version"
)

// SpawnerMaterial is the material of spawner items.
const SpawnerMaterial host.Material = "minecraft:spawner"

// EntityMethods reads and writes entity data that moved between releases.
type EntityMethods interface {
	// SpawnerKind returns the namespaced entity type of a spawner item.
	SpawnerKind(it host.ItemStack) (string, bool)
	// SetSpawnerKind returns a copy of the spawner item it spawning kind.
	SetSpawnerKind(it host.ItemStack, kind string) host.ItemStack
}

var entityTable = version.Table[func(*API) (EntityMethods, error)]{
	Capability: "entity_methods",
	Floor:      "1.8",
	Breakpoints: []version.Breakpoint[func(*API) (EntityMethods, error)]{
		{Through: "1.12.2", Name: "entity_id", New: func(*API) (EntityMethods, error) { return entityIDSpawners{}, nil }},
		{Through: "1.17.1", Name: "spawn_data", New: func(*API) (EntityMethods, error) { return spawnDataSpawners{}, nil }},
	},
	Default: version.Breakpoint[func(*API) (EntityMethods, error)]{Name: "spawn_data_entity", New: func(*API) (EntityMethods, error) {
		return spawnDataSpawners{nested: true}, nil
	}},
}

// legacyEntityNames maps the legacy entity names that differ from their
// namespaced key, lower cased.
var legacyEntityNames = map[string]string{
	"pigzombie":     "minecraft:zombie_pigman",
	"cavespider":    "minecraft:cave_spider",
	"villagergolem": "minecraft:iron_golem",
	"irongolem":     "minecraft:iron_golem",
	"lavaslime":     "minecraft:magma_cube",
	"magmacube":     "minecraft:magma_cube",
	"mushroomcow":   "minecraft:mooshroom",
	"ozelot":        "minecraft:ocelot",
	"entityhorse":   "minecraft:horse",
}

// legacyEntityID converts a namespaced key to the legacy entity name.
func legacyEntityID(kind string) string {
	switch kind {
	case "minecraft:zombie_pigman":
		return "PigZombie"
	case "minecraft:cave_spider":
		return "CaveSpider"
	case "minecraft:iron_golem":
		return "VillagerGolem"
	case "minecraft:magma_cube":
		return "LavaSlime"
	case "minecraft:mooshroom":
		return "MushroomCow"
	case "minecraft:ocelot":
		return "Ozelot"
	case "minecraft:horse":
		return "EntityHorse"
	}
	key := strings.TrimPrefix(kind, "minecraft:")
	if key == "" {
		return ""
	}
	return strings.ToUpper(key[:1]) + key[1:]
}

// namespacedEntity converts a legacy entity name to its namespaced key.
func namespacedEntity(name string) string {
	if strings.Contains(name, ":") {
		return name
	}
	name = strings.ToLower(name)
	if k, ok := legacyEntityNames[name]; ok {
		return k
	}
	return "minecraft:" + name
}

// compound returns the compound at key in m, creating it if needed.
func compound(m map[string]any, key string) map[string]any {
	c, ok := m[key].(map[string]any)
	if !ok {
		c = make(map[string]any)
		m[key] = c
	}
	return c
}

// entityIDSpawners stores the spawner type as BlockEntityTag.EntityId.
type entityIDSpawners struct{}

// SpawnerKind reads the entity id stored on a spawner item.
func (entityIDSpawners) SpawnerKind(it host.ItemStack) (string, bool) {
	if it.Material != SpawnerMaterial {
		return "", false
	}
	bet, _ := it.Tag["BlockEntityTag"].(map[string]any)
	id, ok := bet["EntityId"].(string)
	if !ok || id == "" {
		return "", false
	}
	return namespacedEntity(id), true
}

// SetSpawnerKind stores kind as the spawner item's entity id.
func (entityIDSpawners) SetSpawnerKind(it host.ItemStack, kind string) host.ItemStack {
	it = withTag(it)
	compound(it.Tag, "BlockEntityTag")["EntityId"] = legacyEntityID(kind)
	return it
}

// spawnDataSpawners stores the spawner type under BlockEntityTag.SpawnData,
// nested one compound deeper from 1.18.
type spawnDataSpawners struct {
	nested bool
}

func (s spawnDataSpawners) spawnData(it host.ItemStack) map[string]any {
	bet, _ := it.Tag["BlockEntityTag"].(map[string]any)
	data, _ := bet["SpawnData"].(map[string]any)
	if s.nested {
		data, _ = data["entity"].(map[string]any)
	}
	return data
}

// SpawnerKind reads the entity id from the spawner item's spawn data.
func (s spawnDataSpawners) SpawnerKind(it host.ItemStack) (string, bool) {
	if it.Material != SpawnerMaterial {
		return "", false
	}
	id, ok := s.spawnData(it)["id"].(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// SetSpawnerKind writes kind into the spawner item's spawn data.
func (s spawnDataSpawners) SetSpawnerKind(it host.ItemStack, kind string) host.ItemStack {
	it = withTag(it)
	data := compound(compound(it.Tag, "BlockEntityTag"), "SpawnData")
	if s.nested {
		data = compound(data, "entity")
	}
	data["id"] = kind
	return it
}
