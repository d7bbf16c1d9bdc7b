package compat

import (
	"fmt"
	"strings"

	"github.com/oriumgames/compat/host"
	"github.com/oriumgames/compat/version"
)

// ItemNames returns the client translation key of an item's default name.
type ItemNames interface {
	TranslationKey(it host.ItemStack) (string, error)
}

var itemNamesTable = version.Table[func(*API) (ItemNames, error)]{
	Capability: "item_names",
	Floor:      "1.8",
	Breakpoints: []version.Breakpoint[func(*API) (ItemNames, error)]{
		{Through: "1.12.2", Name: "legacy_keys", New: func(a *API) (ItemNames, error) {
			return itemNames{blocks: blockTypes(a.srv)}, nil
		}},
	},
	Default: version.Breakpoint[func(*API) (ItemNames, error)]{Name: "namespaced", New: func(a *API) (ItemNames, error) {
		return itemNames{blocks: blockTypes(a.srv), namespaced: true}, nil
	}},
}

// blockTypes returns the block lookup of srv. Without one every material is
// named as an item.
func blockTypes(srv host.Server) host.BlockTypes {
	if b, ok := srv.(host.BlockTypes); ok {
		return b
	}
	return nil
}

// itemNames derives keys from the material. Before the flattening the key is
// "item.<name>.name", or "tile.<name>.name" for blocks, with the name in
// lower camel case. Later releases use "item.<ns>.<key>" or "block.<ns>.<key>".
type itemNames struct {
	blocks     host.BlockTypes
	namespaced bool
}

// TranslationKey returns the key of the stack's material.
func (n itemNames) TranslationKey(it host.ItemStack) (string, error) {
	if it.Material == "" {
		return "", fmt.Errorf("compat: item name: stack has no material")
	}
	block := n.blocks != nil && n.blocks.IsBlock(it.Material)
	if n.namespaced {
		kind := "item"
		if block {
			kind = "block"
		}
		return kind + "." + it.Material.Namespace() + "." + it.Material.Key(), nil
	}
	kind := "item"
	if block {
		kind = "tile"
	}
	return kind + "." + lowerCamel(it.Material.Key()) + ".name", nil
}

// lowerCamel turns "gold_block" into "goldBlock".
func lowerCamel(s string) string {
	parts := strings.Split(s, "_")
	var b strings.Builder
	b.Grow(len(s))
	for i, p := range parts {
		if p == "" {
			continue
		}
		if i > 0 {
			b.WriteString(strings.ToUpper(p[:1]))
			p = p[1:]
		}
		b.WriteString(p)
	}
	return b.String()
}
