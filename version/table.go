package version

import (
	"fmt"
)

// Breakpoint is one entry of a Table. Through is the inclusive upper bound of
// the releases the entry covers. Name identifies the implementation for logs
// and diagnostics.
type Breakpoint[F any] struct {
	Through string
	Name    string
	New     F
}

// Table maps ascending version ranges to implementations of one capability.
//
// Resolution walks Breakpoints in order and returns the first entry whose
// Through bound is greater than or equal to the version. Versions past the
// last bound fall through to Default, so a host release that changes nothing
// is covered without touching the table. Versions below Floor, and above
// Ceiling when one is set, are rejected with an UnsupportedVersionError.
type Table[F any] struct {
	// Capability names what the table resolves. It is reported in errors.
	Capability string
	// Floor is the oldest supported release.
	Floor string
	// Ceiling optionally caps the newest supported release.
	Ceiling string
	// Breakpoints are strictly ascending by Through.
	Breakpoints []Breakpoint[F]
	// Default covers every release newer than the last breakpoint. Its Through
	// field is ignored.
	Default Breakpoint[F]
}

// UnsupportedVersionError is returned when a version falls outside the range a
// Table supports.
type UnsupportedVersionError struct {
	Capability string
	Version    int
	Floor      int
	// Ceiling is zero when the capability has no upper bound.
	Ceiling int
}

// Error implements the error interface.
func (e *UnsupportedVersionError) Error() string {
	if e.Ceiling != 0 {
		return fmt.Sprintf("version: %s does not support %s (supported %s through %s)",
			e.Capability, Format(e.Version), Format(e.Floor), Format(e.Ceiling))
	}
	return fmt.Sprintf("version: %s does not support %s (supported from %s)",
		e.Capability, Format(e.Version), Format(e.Floor))
}

// bounds holds the encoded limits of a validated table.
type bounds struct {
	floor, ceiling int
	through        []int
}

// compile validates the table and encodes its bounds.
func (t *Table[F]) compile() (bounds, error) {
	var b bounds
	if t.Default.Name == "" {
		return b, fmt.Errorf("version: table %s: missing default", t.Capability)
	}

	floor, err := Encode(t.Floor)
	if err != nil {
		return b, fmt.Errorf("version: table %s: floor: %w", t.Capability, err)
	}
	b.floor = floor

	if t.Ceiling != "" {
		if b.ceiling, err = Encode(t.Ceiling); err != nil {
			return b, fmt.Errorf("version: table %s: ceiling: %w", t.Capability, err)
		}
		if b.ceiling < b.floor {
			return b, fmt.Errorf("version: table %s: ceiling %s below floor %s", t.Capability, t.Ceiling, t.Floor)
		}
	}

	b.through = make([]int, len(t.Breakpoints))
	prev := floor - 1
	for i, bp := range t.Breakpoints {
		v, err := Encode(bp.Through)
		if err != nil {
			return b, fmt.Errorf("version: table %s: breakpoint %q: %w", t.Capability, bp.Name, err)
		}
		if v <= prev {
			return b, fmt.Errorf("version: table %s: breakpoint %q (%s) is not above its predecessor",
				t.Capability, bp.Name, bp.Through)
		}
		if bp.Name == "" {
			return b, fmt.Errorf("version: table %s: breakpoint %d has no name", t.Capability, i)
		}
		b.through[i] = v
		prev = v
	}
	return b, nil
}

// Validate reports whether the table is well formed: parseable bounds, a named
// default, and strictly ascending breakpoints starting at or above the floor.
func (t *Table[F]) Validate() error {
	_, err := t.compile()
	return err
}

// Resolve returns the breakpoint covering v.
func (t *Table[F]) Resolve(v int) (Breakpoint[F], error) {
	var zero Breakpoint[F]
	b, err := t.compile()
	if err != nil {
		return zero, err
	}

	if v < b.floor || (b.ceiling != 0 && v > b.ceiling) {
		return zero, &UnsupportedVersionError{
			Capability: t.Capability,
			Version:    v,
			Floor:      b.floor,
			Ceiling:    b.ceiling,
		}
	}

	for i, through := range b.through {
		if through >= v {
			return t.Breakpoints[i], nil
		}
	}
	return t.Default, nil
}

// ResolveString encodes s and resolves the result.
func (t *Table[F]) ResolveString(s string) (Breakpoint[F], error) {
	v, err := Encode(s)
	if err != nil {
		var zero Breakpoint[F]
		return zero, err
	}
	return t.Resolve(v)
}

// Names lists the implementation names of the table in resolution order,
// default last.
func (t *Table[F]) Names() []string {
	names := make([]string, 0, len(t.Breakpoints)+1)
	for _, bp := range t.Breakpoints {
		names = append(names, bp.Name)
	}
	return append(names, t.Default.Name)
}
