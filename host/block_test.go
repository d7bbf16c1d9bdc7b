package host

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlockDataString(t *testing.T) {
	assert.Equal(t, "minecraft:stone", Block("minecraft:stone").String())

	chest := Block("minecraft:chest").With("waterlogged", "false").With("facing", "north")
	assert.Equal(t, "minecraft:chest[facing=north,waterlogged=false]", chest.String())
}

func TestBlockDataWithDoesNotAlias(t *testing.T) {
	base := Block("minecraft:chest").With("facing", "north")
	east := base.With("facing", "east")
	assert.Equal(t, "north", base.Properties["facing"])
	assert.Equal(t, "east", east.Properties["facing"])
	assert.False(t, base.Equal(east))
	assert.True(t, base.Equal(Block("minecraft:chest").With("facing", "north")))
}

func TestMaterialParts(t *testing.T) {
	assert.Equal(t, "minecraft", Material("minecraft:stone").Namespace())
	assert.Equal(t, "stone", Material("minecraft:stone").Key())
	assert.Equal(t, "minecraft", Material("stone").Namespace())
	assert.Equal(t, "stone", Material("stone").Key())
}

func TestItemStackClone(t *testing.T) {
	it := ItemStack{Material: "minecraft:diamond_sword", Count: 1, Tag: map[string]any{
		"display": map[string]any{"Lore": []string{"a"}},
	}}
	c := it.Clone()
	c.Tag["display"].(map[string]any)["Lore"].([]string)[0] = "b"
	c.Tag["Unbreakable"] = true

	assert.Equal(t, "a", it.Tag["display"].(map[string]any)["Lore"].([]string)[0])
	assert.NotContains(t, it.Tag, "Unbreakable")
}

func TestItemStackEmpty(t *testing.T) {
	assert.True(t, ItemStack{}.Empty())
	assert.True(t, ItemStack{Material: Air, Count: 1}.Empty())
	assert.False(t, ItemStack{Material: "minecraft:stone", Count: 1}.Empty())
}

func TestCombineLegacy(t *testing.T) {
	assert.Equal(t, uint32(54), CombineLegacy(54, 0))
	assert.Equal(t, uint32(35+14<<12), CombineLegacy(35, 14))

	id, data := SplitLegacy(CombineLegacy(35, 14))
	assert.Equal(t, uint16(35), id)
	assert.Equal(t, uint8(14), data)
}
