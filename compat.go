// Package compat is a version-resolved compatibility layer for a block game
// server host whose internals change between releases.
//
// Every capability (placing blocks, wrapping packets, editing items, sending
// chat) has one implementation per range of host releases. A capability is
// exposed as a Provider: on first use it reads the host version once, picks
// the implementation registered for that version in a breakpoint table and
// keeps it for the life of the process.
//
// # Quick Start
//
//	api, err := compat.NewBuilder().
//	    Logger(slog.Default()).
//	    Metrics(prometheus.DefaultRegisterer).
//	    Eager().
//	    Init(srv)
//	if err != nil {
//	    return err
//	}
//
//	w, err := api.World(srv.Worlds()[0])
//	c, err := w.ChunkProvider().ChunkAt(0, 0)
//	s, err := c.SectionOrCreate(4)
//	s.SetType(3, 5, 2, "minecraft:stone") // absolute y 69
//	c.SaveAndRefresh()
//
// # Host generations
//
// Hosts fall in three generations with different block models:
//
//	legacy     1.8 - 1.12.2   numeric id and data value
//	flattened  1.13 - 1.21.4  block state ids, boolean mutation primitive
//	flagged    1.21.5+        block state ids, side effect mask
//
// Capabilities layer their own breakpoints on top, see Capabilities for the
// full list.
//
// # Errors
//
// Versions outside the range a capability supports fail with
// *version.UnsupportedVersionError. Handles that do not have the shape the
// resolved generation expects fail with *IllegalStateError, and operations a
// generation cannot perform fail with *UnsupportedOperationError. Nothing is
// degraded silently.
package compat

import "github.com/oriumgames/compat/version"

// Version is the compat library version.
const Version = "1.0.0"

// Re-export the version errors for callers that only import compat.
type (
	// ParseError is returned for malformed version strings.
	ParseError = version.ParseError

	// UnsupportedVersionError is returned when a capability has no
	// implementation for the host version.
	UnsupportedVersionError = version.UnsupportedVersionError
)
