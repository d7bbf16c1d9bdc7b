package host

import (
	"strconv"
	"strings"
)

// SetFlags is the side effect mask accepted by FlaggedChunk.SetBlockStateFlags.
// The low bits enable effects and the high bits suppress them.
type SetFlags uint32

const (
	// FlagNeighborUpdates propagates a block update to the six neighbours.
	FlagNeighborUpdates SetFlags = 1 << 0
	// FlagAdditionalNeighbors triggers shape updates of diagonal and
	// connected blocks.
	FlagAdditionalNeighbors SetFlags = 1 << 6
	// FlagSkipBlockEntityEffects suppresses the side effects of removing the
	// replaced block entity, such as a container dropping its items.
	FlagSkipBlockEntityEffects SetFlags = 1 << 8
	// FlagSkipOnPlace suppresses the on-placed hook of the new block.
	FlagSkipOnPlace SetFlags = 1 << 9
)

// RawPlaceFlags is the mask used for raw placement. Only the on-placed hook
// is suppressed, so replacing a container still drops its contents. Neighbour
// updates are off because their bits are not set.
const RawPlaceFlags = FlagSkipOnPlace

// FlagsFromLegacy maps the boolean pair of the older mutation primitives to an
// equivalent mask. Block entity removal effects cannot be toggled on those
// releases, so FlagSkipBlockEntityEffects is never set.
func FlagsFromLegacy(physics, doPlace bool) SetFlags {
	var f SetFlags
	if !physics || !doPlace {
		f |= FlagSkipOnPlace
	}
	if physics {
		f |= FlagNeighborUpdates | FlagAdditionalNeighbors
	}
	return f
}

// Has reports whether every bit of o is set in f.
func (f SetFlags) Has(o SetFlags) bool {
	return f&o == o
}

// With returns f with the bits of o set.
func (f SetFlags) With(o SetFlags) SetFlags {
	return f | o
}

// Without returns f with the bits of o cleared.
func (f SetFlags) Without(o SetFlags) SetFlags {
	return f &^ o
}

var flagNames = []struct {
	flag SetFlags
	name string
}{
	{FlagNeighborUpdates, "neighbors"},
	{FlagAdditionalNeighbors, "shapes"},
	{FlagSkipBlockEntityEffects, "skip_block_entity"},
	{FlagSkipOnPlace, "skip_on_place"},
}

// String lists the named bits of f, for example "neighbors|skip_on_place".
func (f SetFlags) String() string {
	if f == 0 {
		return "none"
	}
	var names []string
	for _, n := range flagNames {
		if f.Has(n.flag) {
			names = append(names, n.name)
			f = f.Without(n.flag)
		}
	}
	if f != 0 {
		names = append(names, "0x"+strconv.FormatUint(uint64(f), 16))
	}
	return strings.Join(names, "|")
}
