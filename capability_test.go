package compat_test

import (
	"log/slog"
	"testing"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oriumgames/compat"
	"github.com/oriumgames/compat/host"
	"github.com/oriumgames/compat/version"
	"github.com/sandertv/gophertunnel/minecraft/protocol/packet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestOffHandBeforeDualWield(t *testing.T) {
	f := newFixture(t, "1.8.8")
	p := f.srv.Join("a", f.world, mgl64.Vec3{})
	hands := f.api.Hands().MustGet()

	sword := host.ItemStack{Material: "minecraft:diamond_sword", Count: 1}
	require.NoError(t, hands.SetMainHand(p, sword))
	got, err := hands.MainHand(p)
	require.NoError(t, err)
	assert.Equal(t, sword, got)

	err = hands.SetOffHand(p, sword)
	var uoe *compat.UnsupportedOperationError
	require.ErrorAs(t, err, &uoe)
	assert.Equal(t, version.MustEncode("1.8.8"), uoe.Version)

	off, err := hands.OffHand(p)
	require.NoError(t, err)
	assert.True(t, off.Empty())
	assert.False(t, hands.IsOffHand(host.InteractEvent{Player: p, Hand: host.HandOff}))
}

func TestDualWield(t *testing.T) {
	f := newFixture(t, "1.12.2")
	p := f.srv.Join("a", f.world, mgl64.Vec3{})
	hands := f.api.Hands().MustGet()

	shield := host.ItemStack{Material: "minecraft:shield", Count: 1}
	require.NoError(t, hands.SetOffHand(p, shield))
	main, off := p.Held()
	assert.True(t, main.Empty())
	assert.Equal(t, shield, off)
	assert.True(t, hands.IsOffHand(host.InteractEvent{Player: p, Hand: host.HandOff}))
	assert.False(t, hands.IsOffHand(host.InteractEvent{Player: p, Hand: host.HandMain}))
}

func TestItemEditor(t *testing.T) {
	pick := host.ItemStack{Material: "minecraft:iron_pickaxe", Count: 1}

	legacy := newFixture(t, "1.12.2").api.Items().MustGet()
	it := legacy.SetDamage(legacy.SetUnbreakable(pick, true), 12)
	assert.EqualValues(t, 12, it.Durability)
	assert.Equal(t, byte(1), it.Tag["Unbreakable"])
	assert.True(t, legacy.Unbreakable(it))
	assert.Equal(t, 12, legacy.Damage(it))
	assert.Nil(t, pick.Tag, "input is not modified")

	modern := newFixture(t, "1.13").api.Items().MustGet()
	it = modern.SetDamage(modern.SetUnbreakable(pick, true), 12)
	assert.Zero(t, it.Durability)
	assert.Equal(t, true, it.Tag["Unbreakable"])
	assert.Equal(t, int32(12), it.Tag["Damage"])
	assert.Equal(t, 12, modern.Damage(it))

	it = modern.SetUnbreakable(it, false)
	assert.False(t, modern.Unbreakable(it))
}

func TestItemTextCeiling(t *testing.T) {
	f := newFixture(t, "1.17")
	_, err := f.api.ItemText().Get()
	var uve *compat.UnsupportedVersionError
	require.ErrorAs(t, err, &uve)
	assert.Equal(t, version.MustEncode("1.16.5"), uve.Ceiling)

	sword := host.ItemStack{Material: "minecraft:iron_sword", Count: 1}

	raw := newFixture(t, "1.8.8").api.ItemText().MustGet()
	it := raw.SetLore(raw.SetName(sword, "§6Excalibur"), []string{"a", "b"})
	assert.Equal(t, "§6Excalibur", it.Tag["display"].(map[string]any)["Name"])

	js := newFixture(t, "1.16.5").api.ItemText().MustGet()
	it = js.SetLore(js.SetName(sword, "Excalibur"), []string{"sharp"})
	assert.JSONEq(t, `{"text":"Excalibur"}`, it.Tag["display"].(map[string]any)["Name"].(string))
	name, err := js.Name(it)
	require.NoError(t, err)
	assert.Equal(t, "Excalibur", name)
	lore, err := js.Lore(it)
	require.NoError(t, err)
	assert.Equal(t, []string{"sharp"}, lore)
}

func TestItemNames(t *testing.T) {
	cases := map[string]map[host.Material]string{
		"1.8.8": {
			"minecraft:diamond_sword": "item.diamondSword.name",
			"minecraft:gold_block":    "tile.goldBlock.name",
			"minecraft:stone":         "tile.stone.name",
		},
		"1.12.2": {
			"minecraft:apple": "item.apple.name",
		},
		"1.13": {
			"minecraft:diamond_sword": "item.minecraft.diamond_sword",
			"minecraft:gold_block":    "block.minecraft.gold_block",
		},
		"1.21.5": {
			"minecraft:chest":      "block.minecraft.chest",
			"example:ruby_pickaxe": "item.example.ruby_pickaxe",
		},
	}
	for v, keys := range cases {
		t.Run(v, func(t *testing.T) {
			names := newFixture(t, v).api.ItemNames().MustGet()
			for m, want := range keys {
				got, err := names.TranslationKey(host.ItemStack{Material: m, Count: 1})
				require.NoError(t, err)
				assert.Equal(t, want, got, m)
			}

			_, err := names.TranslationKey(host.ItemStack{})
			assert.Error(t, err)
		})
	}
}

func TestSpawnerKind(t *testing.T) {
	spawner := host.ItemStack{Material: compat.SpawnerMaterial, Count: 1}
	tests := map[string][]string{
		"1.8.8":  {"BlockEntityTag", "EntityId"},
		"1.13":   {"BlockEntityTag", "SpawnData", "id"},
		"1.17.1": {"BlockEntityTag", "SpawnData", "id"},
		"1.18":   {"BlockEntityTag", "SpawnData", "entity", "id"},
	}
	for v, path := range tests {
		em := newFixture(t, v).api.Entities().MustGet()
		it := em.SetSpawnerKind(spawner, "minecraft:cave_spider")

		var node any = it.Tag
		for _, k := range path {
			m, ok := node.(map[string]any)
			require.True(t, ok, "%s: %s", v, k)
			node = m[k]
		}
		if v == "1.8.8" {
			assert.Equal(t, "CaveSpider", node)
		} else {
			assert.Equal(t, "minecraft:cave_spider", node, v)
		}

		kind, ok := em.SpawnerKind(it)
		assert.True(t, ok, v)
		assert.Equal(t, "minecraft:cave_spider", kind, v)

		_, ok = em.SpawnerKind(host.ItemStack{Material: "minecraft:stone", Count: 1})
		assert.False(t, ok, v)
	}
}

func TestEnchantID(t *testing.T) {
	legacy := newFixture(t, "1.12.2").api.Enchants().MustGet()
	key, err := legacy.Namespaced(host.Enchantment{LegacyName: "DAMAGE_ALL"})
	require.NoError(t, err)
	assert.Equal(t, "minecraft:sharpness", key)
	_, err = legacy.Namespaced(host.Enchantment{LegacyName: "SOUL_SPEED"})
	assert.Error(t, err)

	modern := newFixture(t, "1.20.4").api.Enchants().MustGet()
	key, err = modern.Namespaced(host.Enchantment{LegacyName: "DAMAGE_ALL", Key: "minecraft:sharpness"})
	require.NoError(t, err)
	assert.Equal(t, "minecraft:sharpness", key)
	_, err = modern.Namespaced(host.Enchantment{LegacyName: "DAMAGE_ALL"})
	var ise *compat.IllegalStateError
	assert.ErrorAs(t, err, &ise)
}

func TestTeleportWithoutEvent(t *testing.T) {
	legacy := newFixture(t, "1.8.8")
	p := legacy.srv.Join("a", legacy.world, mgl64.Vec3{})
	to := mgl64.Vec3{10, 65, -3}
	require.NoError(t, legacy.api.Teleporter().MustGet().TeleportWithoutEvent(p, to, cube.Rotation{90, 10}))
	assert.Equal(t, to, p.Position())
	assert.Zero(t, p.TeleportEvents())
	assert.Equal(t, &host.LegacyPosition{X: 10, Y: 65, Z: -3, Yaw: 90, Pitch: 10}, p.Packets()[0])

	modern := newFixture(t, "1.20.4")
	p = modern.srv.Join("b", modern.world, mgl64.Vec3{})
	require.NoError(t, modern.api.Teleporter().MustGet().TeleportWithoutEvent(p, to, cube.Rotation{}))
	pk, ok := p.Packets()[0].(*packet.MovePlayer)
	require.True(t, ok)
	assert.Equal(t, packet.MoveModeTeleport, pk.Mode)
	assert.EqualValues(t, 65, pk.Position[1])
	assert.Zero(t, p.TeleportEvents())
}

func TestCommandRegistration(t *testing.T) {
	for v, syncs := range map[string]int{"1.12.2": 0, "1.13": 3} {
		f := newFixture(t, v)
		cm := f.api.Commands().MustGet()
		m := f.srv.Commands()

		cmd := host.Command{Name: "Spawn", Aliases: []string{"hub"}, Plugin: "Lobby"}
		require.NoError(t, cm.Register(m, cmd), v)
		for _, label := range []string{"spawn", "hub", "lobby:spawn", "lobby:hub"} {
			_, ok := m.Lookup(label)
			assert.True(t, ok, "%s %s", v, label)
		}
		assert.Error(t, cm.Register(m, cmd), v)

		other := host.Command{Name: "spawn", Plugin: "Other"}
		require.NoError(t, cm.Register(m, other))
		got, _ := m.Lookup("spawn")
		assert.Equal(t, "Lobby", got.Plugin, "existing labels are kept")

		removed, err := cm.Unregister(m, "hub")
		require.NoError(t, err)
		assert.True(t, removed)
		known, err := cm.KnownCommands(m)
		require.NoError(t, err)
		assert.Equal(t, []string{"other:spawn"}, keys(known), v)

		assert.Equal(t, syncs, f.srv.CommandMap().Syncs(), v)
	}
}

func keys(m map[string]host.Command) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestMessages(t *testing.T) {
	legacy := newFixture(t, "1.15.2")
	p := legacy.srv.Join("a", legacy.world, mgl64.Vec3{})
	mm := legacy.api.Messages().MustGet()

	msg := compat.NewMessage("&aHello {name} &#FF0000!").AddHoverText("{name}", "&bSteve", "a player")
	require.NoError(t, mm.Send(p, msg))
	require.Len(t, p.Messages(), 1)
	assert.Equal(t, &host.LegacyChat{Text: "§aHello §bSteve §4!"}, p.Messages()[0])

	modern := newFixture(t, "1.16")
	out, err := modern.api.Messages().MustGet().Process(msg, compat.MessageBlock([]string{"x", "y"}))
	require.NoError(t, err)
	assert.Equal(t, []any{"§aHello §bSteve §x§f§f§0§0§0§0!", "x", "y"}, out)
}

func TestWholeLineActions(t *testing.T) {
	msg := compat.ClickRunCommand("&eClick me", "/spawn")
	require.Len(t, msg.Lines, 1)
	require.Len(t, msg.Actions, 1)
	assert.Regexp(t, `^\{cR_[0-9a-f-]{36}\}$`, msg.Lines[0])
	assert.Equal(t, msg.Lines[0], msg.Actions[0].Placeholder)
	assert.Equal(t, "/spawn", msg.Actions[0].ClickRunCommand)

	assert.NotEqual(t, msg.Lines[0], compat.ClickRunCommand("&eClick me", "/spawn").Lines[0])
	assert.Contains(t, compat.HoverText("a", "b").Lines[0], "{hT_")
	assert.Contains(t, compat.ClickOpenURL("a", "https://example.org").Lines[0], "{oU_")
	assert.Contains(t, compat.ClickSuggestCommand("a", "/msg ").Lines[0], "{cS_")
}

func TestCustomFormatter(t *testing.T) {
	f := newFixture(t, "1.20.4")
	var seen []compat.Action
	api, err := compat.NewBuilder().
		Detector(version.Fixed("1.20.4")).
		Formatter(compat.FormatterFunc(func(text string, actions []compat.Action) (any, error) {
			seen = append(seen, actions...)
			return map[string]string{"text": text}, nil
		})).
		Init(f.srv)
	require.NoError(t, err)

	p := f.srv.Join("a", f.world, mgl64.Vec3{})
	require.NoError(t, api.Messages().MustGet().Send(p, compat.ClickOpenURL("site", "https://example.org")))
	require.Len(t, seen, 1)
	assert.Equal(t, "https://example.org", seen[0].ClickOpenURL)
	assert.IsType(t, map[string]string{}, p.Messages()[0])
}

func TestColors(t *testing.T) {
	c, err := compat.ParseColor("&c")
	require.NoError(t, err)
	assert.Equal(t, "red", c.Name)

	c, err = compat.ParseColor("§9")
	require.NoError(t, err)
	assert.Equal(t, "blue", c.Name)

	c, err = compat.ParseColor("#123456")
	require.NoError(t, err)
	assert.False(t, c.Named())
	assert.EqualValues(t, 0x123456, c.RGB)

	c, err = compat.ParseColor("GOLD")
	require.NoError(t, err)
	assert.EqualValues(t, '6', c.Code)

	for _, bad := range []string{"&z", "#12345", "#GGGGGG", "purple", "&"} {
		_, err := compat.ParseColor(bad)
		assert.Error(t, err, bad)
	}

	assert.Equal(t, "red", compat.NearestNamed(0xFF4040).Name)
	assert.Equal(t, "black", compat.NearestNamed(0x010101).Name)
	assert.Equal(t, "plain text", compat.StripColors("§aplain §x§f§f§0§0§0§0text"))
}

func TestTranslateSpelledOutHex(t *testing.T) {
	c := newFixture(t, "1.16").api.Colors().MustGet()
	assert.Equal(t, "§x§f§f§0§0§0§0hi", c.Translate("&x&f&f&0&0&0&0hi"))
	assert.Equal(t, "§x§a§b§c§d§e§fhi", c.Translate("&X&A&B&C&D&E&Fhi"))
	assert.Equal(t, "&zhi", c.Translate("&zhi"))
}

func TestComponentLoggerFlattensBeforeRichText(t *testing.T) {
	for v, want := range map[string]string{"1.15.2": "Hello", "1.16": "§aHello"} {
		core, logs := observer.New(zapcore.DebugLevel)
		f := newFixture(t, v)
		api, err := compat.NewBuilder().
			Detector(version.Fixed(v)).
			LogSink(compat.ZapSink{Logger: zap.New(core)}).
			Init(f.srv)
		require.NoError(t, err)

		api.ComponentLog().MustGet().Log("Lobby", "§aHello", slog.LevelWarn)
		entries := logs.All()
		require.Len(t, entries, 1, v)
		assert.Equal(t, want, entries[0].Message, v)
		assert.Equal(t, zapcore.WarnLevel, entries[0].Level, v)
		assert.Equal(t, "Lobby", entries[0].ContextMap()["plugin"], v)
	}
}
