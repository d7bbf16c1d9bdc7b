package compat

import (
	"encoding/json"
	"fmt"

	"github.com/oriumgames/compat/host"
	"github.com/oriumgames/compat/version"
)

// ItemEditor edits item properties whose storage changed with the
// flattening.
type ItemEditor interface {
	SetUnbreakable(it host.ItemStack, v bool) host.ItemStack
	Unbreakable(it host.ItemStack) bool
	SetDamage(it host.ItemStack, damage int) host.ItemStack
	Damage(it host.ItemStack) int
}

var itemEditorTable = version.Table[func(*API) (ItemEditor, error)]{
	Capability: "item_editor",
	Floor:      "1.8",
	Breakpoints: []version.Breakpoint[func(*API) (ItemEditor, error)]{
		{Through: "1.12.2", Name: "durability", New: func(*API) (ItemEditor, error) { return durabilityItems{}, nil }},
	},
	Default: version.Breakpoint[func(*API) (ItemEditor, error)]{Name: "damage", New: func(*API) (ItemEditor, error) {
		return damageItems{}, nil
	}},
}

// durabilityItems stores damage in the durability field and unbreakable as a
// byte tag.
type durabilityItems struct{}

// SetUnbreakable sets the unbreakable tag.
func (durabilityItems) SetUnbreakable(it host.ItemStack, v bool) host.ItemStack {
	it = withTag(it)
	if v {
		it.Tag["Unbreakable"] = byte(1)
	} else {
		delete(it.Tag, "Unbreakable")
	}
	return it
}

// Unbreakable reports whether the unbreakable tag is set.
func (durabilityItems) Unbreakable(it host.ItemStack) bool {
	b, _ := it.Tag["Unbreakable"].(byte)
	return b != 0
}

// SetDamage stores damage in the durability component.
func (durabilityItems) SetDamage(it host.ItemStack, damage int) host.ItemStack {
	it = it.Clone()
	it.Durability = int16(damage)
	return it
}

// Damage returns the durability damage.
func (durabilityItems) Damage(it host.ItemStack) int {
	return int(it.Durability)
}

// damageItems stores damage in the Damage tag and unbreakable as a boolean.
type damageItems struct{}

// SetUnbreakable sets the unbreakable tag.
func (damageItems) SetUnbreakable(it host.ItemStack, v bool) host.ItemStack {
	it = withTag(it)
	if v {
		it.Tag["Unbreakable"] = true
	} else {
		delete(it.Tag, "Unbreakable")
	}
	return it
}

// Unbreakable reports whether the unbreakable tag is set.
func (damageItems) Unbreakable(it host.ItemStack) bool {
	b, _ := it.Tag["Unbreakable"].(bool)
	return b
}

// SetDamage stores damage in the damage tag.
func (damageItems) SetDamage(it host.ItemStack, damage int) host.ItemStack {
	it = withTag(it)
	if damage <= 0 {
		delete(it.Tag, "Damage")
		return it
	}
	it.Tag["Damage"] = int32(damage)
	return it
}

// Damage returns the damage tag.
func (damageItems) Damage(it host.ItemStack) int {
	d, _ := it.Tag["Damage"].(int32)
	return int(d)
}

// withTag returns a copy of it with a non-nil tag.
func withTag(it host.ItemStack) host.ItemStack {
	it = it.Clone()
	if it.Tag == nil {
		it.Tag = make(map[string]any)
	}
	return it
}

// ItemText edits the display name and lore of items on hosts before 1.17.
// Newer hosts edit them through their own API, and the capability fails to
// resolve there.
type ItemText interface {
	SetName(it host.ItemStack, name string) host.ItemStack
	Name(it host.ItemStack) (string, error)
	SetLore(it host.ItemStack, lines []string) host.ItemStack
	Lore(it host.ItemStack) ([]string, error)
}

var itemTextTable = version.Table[func(*API) (ItemText, error)]{
	Capability: "item_text",
	Floor:      "1.8",
	Ceiling:    "1.16.5",
	Breakpoints: []version.Breakpoint[func(*API) (ItemText, error)]{
		{Through: "1.12.2", Name: "raw", New: func(*API) (ItemText, error) { return itemText{}, nil }},
	},
	Default: version.Breakpoint[func(*API) (ItemText, error)]{Name: "json", New: func(*API) (ItemText, error) {
		return itemText{json: true}, nil
	}},
}

// itemText implements ItemText. Legacy hosts store raw formatted strings in
// the display compound, later ones a JSON text object per string.
type itemText struct {
	json bool
}

// textObject is the JSON text object of a plain string.
type textObject struct {
	Text string `json:"text"`
}

func (t itemText) encode(s string) string {
	if !t.json {
		return s
	}
	raw, _ := json.Marshal(textObject{Text: s})
	return string(raw)
}

func (t itemText) decode(s string) (string, error) {
	if !t.json {
		return s, nil
	}
	var obj textObject
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return "", fmt.Errorf("compat: decode item text %q: %w", s, err)
	}
	return obj.Text, nil
}

// display returns the display compound of it, creating it if needed.
func display(it host.ItemStack) map[string]any {
	d, ok := it.Tag["display"].(map[string]any)
	if !ok {
		d = make(map[string]any)
		it.Tag["display"] = d
	}
	return d
}

// SetName sets the display name.
func (t itemText) SetName(it host.ItemStack, name string) host.ItemStack {
	it = withTag(it)
	display(it)["Name"] = t.encode(name)
	return it
}

// Name returns the display name as plain text.
func (t itemText) Name(it host.ItemStack) (string, error) {
	d, _ := it.Tag["display"].(map[string]any)
	s, ok := d["Name"].(string)
	if !ok {
		return "", nil
	}
	return t.decode(s)
}

// SetLore sets the lore lines.
func (t itemText) SetLore(it host.ItemStack, lines []string) host.ItemStack {
	it = withTag(it)
	lore := make([]string, len(lines))
	for i, l := range lines {
		lore[i] = t.encode(l)
	}
	display(it)["Lore"] = lore
	return it
}

// Lore returns the lore lines as plain text.
func (t itemText) Lore(it host.ItemStack) ([]string, error) {
	d, _ := it.Tag["display"].(map[string]any)
	lore, _ := d["Lore"].([]string)
	out := make([]string, 0, len(lore))
	for _, l := range lore {
		s, err := t.decode(l)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
