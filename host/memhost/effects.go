package memhost

import (
	"slices"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/oriumgames/compat/host"
)

// EffectKind is a side effect of a block change.
type EffectKind uint8

const (
	// EffectNeighborUpdate is a block update sent to the six neighbours.
	EffectNeighborUpdate EffectKind = iota
	// EffectShapeUpdate is a shape update of connected blocks.
	EffectShapeUpdate
	// EffectDrop is a replaced container dropping its items.
	EffectDrop
	// EffectOnPlace is the on-placed hook of a new block.
	EffectOnPlace
	// EffectRelight is a light recalculation.
	EffectRelight
)

// String returns the effect name.
func (k EffectKind) String() string {
	switch k {
	case EffectNeighborUpdate:
		return "neighbor_update"
	case EffectShapeUpdate:
		return "shape_update"
	case EffectDrop:
		return "drop"
	case EffectOnPlace:
		return "on_place"
	case EffectRelight:
		return "relight"
	default:
		return "unknown"
	}
}

// Effect is one recorded side effect.
type Effect struct {
	Kind EffectKind
	Pos  cube.Pos
	// Items are the dropped items of an EffectDrop.
	Items []host.ItemStack
}

func (w *World) record(e Effect) {
	w.effectsMu.Lock()
	w.effects = append(w.effects, e)
	w.effectsMu.Unlock()
}

// Effects returns the side effects recorded since the last ResetEffects.
func (w *World) Effects() []Effect {
	w.effectsMu.Lock()
	defer w.effectsMu.Unlock()
	return slices.Clone(w.effects)
}

// EffectsOf returns the recorded effects of kind k.
func (w *World) EffectsOf(k EffectKind) []Effect {
	var out []Effect
	for _, e := range w.Effects() {
		if e.Kind == k {
			out = append(out, e)
		}
	}
	return out
}

// ResetEffects clears the recorded side effects.
func (w *World) ResetEffects() {
	w.effectsMu.Lock()
	w.effects = nil
	w.effectsMu.Unlock()
}
