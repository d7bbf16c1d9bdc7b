package compat

import (
	"fmt"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/oriumgames/compat/host"
)

// Section wraps a 16x16x16 slice of a chunk. Coordinates are relative to the
// section. Writes skip every side effect, including the chunk's dirty flag on
// legacy and flattened hosts; use Chunk.SaveAndRefresh to persist them.
type Section interface {
	Chunk() Chunk
	// YShift is the vertical index of the section.
	YShift() int
	// SetType writes the default state of m.
	SetType(x, y, z int, m host.Material) error
	// SetBlockData writes b.
	SetBlockData(x, y, z int, b host.BlockData) error
	// Empty reports whether the section only holds air.
	Empty() bool
}

// section implements Section.
type section struct {
	c      *chunk
	h      host.Section
	yShift int
}

// Chunk returns the chunk holding the section.
func (s *section) Chunk() Chunk { return s.c }

// YShift returns the absolute y of the section's lowest block.
func (s *section) YShift() int { return s.yShift }

// Empty reports whether the section holds only air.
func (s *section) Empty() bool { return s.h.Empty() }

// SetType writes the default state of m without physics or dirty tracking.
func (s *section) SetType(x, y, z int, m host.Material) error {
	return s.SetBlockData(x, y, z, host.Block(m))
}

// SetBlockData writes b without physics or dirty tracking.
func (s *section) SetBlockData(x, y, z int, b host.BlockData) error {
	if x < 0 || x > 15 || y < 0 || y > 15 || z < 0 || z > 15 {
		return fmt.Errorf("compat: section coordinates %d,%d,%d out of range", x, y, z)
	}
	w := s.c.p.w
	rid, err := w.gen.runtimeID(w.lvl, b)
	if err != nil {
		return err
	}
	pos := cube.Pos{s.c.X()<<4 + x, y + (s.yShift << 4), s.c.Z()<<4 + z}
	return w.gen.writeSection(s.c.h, s.h, pos, rid)
}
