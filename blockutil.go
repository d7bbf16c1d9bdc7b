package compat

import (
	"fmt"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/oriumgames/compat/host"
	"github.com/oriumgames/compat/version"
)

// BlockUtil places and reads blocks with a chosen set of side effects.
//
// Placement must run on the host main thread.
type BlockUtil interface {
	// SetBlock places b at pos in w.
	SetBlock(w host.World, pos cube.Pos, b host.BlockData, t PlaceType) error
	// SetType places the default state of m at pos in w.
	SetType(w host.World, pos cube.Pos, m host.Material, t PlaceType) error
	// Block returns the block at pos in w.
	Block(w host.World, pos cube.Pos) (host.BlockData, error)
}

var blockUtilTable = version.Table[func(*API) (BlockUtil, error)]{
	Capability: "block_util",
	Floor:      "1.8",
	Breakpoints: []version.Breakpoint[func(*API) (BlockUtil, error)]{
		{Through: "1.12.2", Name: "legacy", New: newBlockUtil(legacyGen{})},
		{Through: "1.21.4", Name: "flattened", New: newBlockUtil(flattenedGen{})},
	},
	Default: version.Breakpoint[func(*API) (BlockUtil, error)]{Name: "flagged", New: newBlockUtil(flaggedGen{})},
}

func newBlockUtil(g generation) func(*API) (BlockUtil, error) {
	return func(a *API) (BlockUtil, error) {
		return &blockUtil{gen: g, metrics: a.metrics}, nil
	}
}

// blockUtil implements BlockUtil on top of a generation.
type blockUtil struct {
	gen     generation
	metrics *Metrics
}

// SetBlock places b at pos using the primitive of the host generation.
func (u *blockUtil) SetBlock(w host.World, pos cube.Pos, b host.BlockData, t PlaceType) error {
	if !t.Valid() {
		return fmt.Errorf("compat: invalid place type %d", t)
	}
	if t == PlaceFull {
		if err := w.SetBlock(pos, b); err != nil {
			return err
		}
		u.metrics.blockMutated(t)
		return nil
	}

	lvl, err := levelOf(w)
	if err != nil {
		return err
	}
	if pos.OutOfBounds(lvl.Range()) {
		return fmt.Errorf("compat: %v outside world range %v", pos, lvl.Range())
	}
	rid, err := u.gen.runtimeID(lvl, b)
	if err != nil {
		return err
	}
	c, err := lvl.Chunk(pos[0]>>4, pos[2]>>4)
	if err != nil {
		return err
	}
	if err := u.gen.place(c, pos, rid, t); err != nil {
		return err
	}
	if t == PlaceNoPhysics {
		lvl.Relight(pos)
	}

	pk := u.gen.blockPacket(pos, rid)
	for _, o := range lvl.Viewers() {
		if err := o.SendPacket(pk); err != nil {
			return fmt.Errorf("compat: send block update to %s: %w", o.Name(), err)
		}
	}
	u.metrics.blockMutated(t)
	return nil
}

// SetType places the default state of m at pos.
func (u *blockUtil) SetType(w host.World, pos cube.Pos, m host.Material, t PlaceType) error {
	return u.SetBlock(w, pos, host.Block(m), t)
}

// Block returns the block at pos.
func (u *blockUtil) Block(w host.World, pos cube.Pos) (host.BlockData, error) {
	lvl, err := levelOf(w)
	if err != nil {
		return host.BlockData{}, err
	}
	if pos.OutOfBounds(lvl.Range()) {
		return host.BlockData{}, fmt.Errorf("compat: %v outside world range %v", pos, lvl.Range())
	}
	c, err := lvl.Chunk(pos[0]>>4, pos[2]>>4)
	if err != nil {
		return host.BlockData{}, err
	}
	return u.gen.blockData(lvl, c.Block(pos[0]&15, pos[1], pos[2]&15))
}

// levelOf returns the internal level handle of w.
func levelOf(w host.World) (host.Level, error) {
	if w == nil {
		return nil, illegalState("world handle", nil)
	}
	lvl, ok := w.Internal().(host.Level)
	if !ok {
		return nil, illegalState("world handle", w.Internal())
	}
	return lvl, nil
}
