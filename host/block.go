package host

import (
	"maps"
	"slices"
	"strings"
)

// Material is a namespaced block or item type, for example "minecraft:chest".
type Material string

// Air is the empty block.
const Air Material = "minecraft:air"

// Namespace returns the namespace of m, defaulting to "minecraft".
func (m Material) Namespace() string {
	if ns, _, ok := strings.Cut(string(m), ":"); ok {
		return ns
	}
	return "minecraft"
}

// Key returns m without its namespace.
func (m Material) Key() string {
	if _, key, ok := strings.Cut(string(m), ":"); ok {
		return key
	}
	return string(m)
}

// BlockData is a block type together with its state.
type BlockData struct {
	Material Material
	// Data is the legacy data value. Flattened releases ignore it.
	Data uint8
	// Properties are the block state properties. Legacy releases ignore
	// them.
	Properties map[string]string
}

// Block returns the default state of m.
func Block(m Material) BlockData {
	return BlockData{Material: m}
}

// With returns a copy of b with the property k set to v.
func (b BlockData) With(k, v string) BlockData {
	props := make(map[string]string, len(b.Properties)+1)
	maps.Copy(props, b.Properties)
	props[k] = v
	b.Properties = props
	return b
}

// String renders b in the canonical state notation, with properties sorted:
// "minecraft:chest[facing=north]".
func (b BlockData) String() string {
	if len(b.Properties) == 0 {
		return string(b.Material)
	}
	keys := slices.Sorted(maps.Keys(b.Properties))
	var sb strings.Builder
	sb.WriteString(string(b.Material))
	sb.WriteByte('[')
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(b.Properties[k])
	}
	sb.WriteByte(']')
	return sb.String()
}

// Equal reports whether b and o describe the same state.
func (b BlockData) Equal(o BlockData) bool {
	return b.Material == o.Material && b.Data == o.Data && maps.Equal(b.Properties, o.Properties)
}

// BlockEntity is the extra state attached to some blocks, such as the items
// of a chest.
type BlockEntity struct {
	// Kind is the block entity type, for example "minecraft:chest".
	Kind  string
	Items []ItemStack
}

// Container reports whether the block entity holds items.
func (e *BlockEntity) Container() bool {
	return len(e.Items) > 0
}

// ItemStack is a stack of items. Tag holds the item's NBT compound.
type ItemStack struct {
	Material   Material
	Count      int
	Durability int16
	Tag        map[string]any
}

// Empty reports whether the stack holds nothing.
func (s ItemStack) Empty() bool {
	return s.Count <= 0 || s.Material == "" || s.Material == Air
}

// Clone returns a deep copy of the stack's tag so the result can be edited
// without affecting s.
func (s ItemStack) Clone() ItemStack {
	s.Tag = cloneCompound(s.Tag)
	return s
}

func cloneCompound(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		switch v := v.(type) {
		case map[string]any:
			out[k] = cloneCompound(v)
		case []string:
			out[k] = slices.Clone(v)
		default:
			out[k] = v
		}
	}
	return out
}

// Enchantment identifies an enchantment type across naming schemes.
type Enchantment struct {
	// LegacyName is the pre-1.13 constant name, for example "DAMAGE_ALL".
	LegacyName string
	// Key is the namespaced key, for example "minecraft:sharpness". It is
	// empty on hosts that predate namespaced enchantments.
	Key string
}

// CombineLegacy packs a legacy block id and data value into the combined id
// used by legacy chunk storage: id + data<<12.
func CombineLegacy(id uint16, data uint8) uint32 {
	return uint32(id) + uint32(data)<<12
}

// SplitLegacy is the inverse of CombineLegacy.
func SplitLegacy(combined uint32) (id uint16, data uint8) {
	return uint16(combined & 0xfff), uint8(combined >> 12)
}
