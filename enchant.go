package compat

import (
	"fmt"

	"github.com/oriumgames/compat/host"
	"github.com/oriumgames/compat/version"
)

// EnchantID resolves the namespaced key of an enchantment.
type EnchantID interface {
	Namespaced(e host.Enchantment) (string, error)
}

var enchantTable = version.Table[func(*API) (EnchantID, error)]{
	Capability: "enchant_id",
	Floor:      "1.8",
	Breakpoints: []version.Breakpoint[func(*API) (EnchantID, error)]{
		{Through: "1.12.2", Name: "legacy_names", New: func(*API) (EnchantID, error) { return legacyEnchants{}, nil }},
	},
	Default: version.Breakpoint[func(*API) (EnchantID, error)]{Name: "keys", New: func(*API) (EnchantID, error) {
		return keyedEnchants{}, nil
	}},
}

// legacyEnchantKeys maps the constant names of legacy hosts to namespaced
// keys.
var legacyEnchantKeys = map[string]string{
	"PROTECTION_ENVIRONMENTAL": "minecraft:protection",
	"PROTECTION_FIRE":          "minecraft:fire_protection",
	"PROTECTION_FALL":          "minecraft:feather_falling",
	"PROTECTION_EXPLOSIONS":    "minecraft:blast_protection",
	"PROTECTION_PROJECTILE":    "minecraft:projectile_protection",
	"OXYGEN":                   "minecraft:respiration",
	"WATER_WORKER":             "minecraft:aqua_affinity",
	"THORNS":                   "minecraft:thorns",
	"DEPTH_STRIDER":            "minecraft:depth_strider",
	"FROST_WALKER":             "minecraft:frost_walker",
	"BINDING_CURSE":            "minecraft:binding_curse",
	"DAMAGE_ALL":               "minecraft:sharpness",
	"DAMAGE_UNDEAD":            "minecraft:smite",
	"DAMAGE_ARTHROPODS":        "minecraft:bane_of_arthropods",
	"KNOCKBACK":                "minecraft:knockback",
	"FIRE_ASPECT":              "minecraft:fire_aspect",
	"LOOT_BONUS_MOBS":          "minecraft:looting",
	"SWEEPING_EDGE":            "minecraft:sweeping",
	"DIG_SPEED":                "minecraft:efficiency",
	"SILK_TOUCH":               "minecraft:silk_touch",
	"DURABILITY":               "minecraft:unbreaking",
	"LOOT_BONUS_BLOCKS":        "minecraft:fortune",
	"ARROW_DAMAGE":             "minecraft:power",
	"ARROW_KNOCKBACK":          "minecraft:punch",
	"ARROW_FIRE":               "minecraft:flame",
	"ARROW_INFINITE":           "minecraft:infinity",
	"LUCK":                     "minecraft:luck_of_the_sea",
	"LURE":                     "minecraft:lure",
	"MENDING":                  "minecraft:mending",
	"VANISHING_CURSE":          "minecraft:vanishing_curse",
}

// legacyEnchants resolves keys from the legacy constant name.
type legacyEnchants struct{}

// Namespaced maps the legacy enchantment name to its namespaced key.
func (legacyEnchants) Namespaced(e host.Enchantment) (string, error) {
	if k, ok := legacyEnchantKeys[e.LegacyName]; ok {
		return k, nil
	}
	return "", fmt.Errorf("compat: unknown legacy enchantment %q", e.LegacyName)
}

// keyedEnchants reads the key the host provides.
type keyedEnchants struct{}

// Namespaced returns the enchantment key.
func (keyedEnchants) Namespaced(e host.Enchantment) (string, error) {
	if e.Key == "" {
		return "", illegalState("enchantment key", e)
	}
	return e.Key, nil
}
