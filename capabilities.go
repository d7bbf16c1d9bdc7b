package compat

import (
	"github.com/oriumgames/compat/version"
)

// Capability describes the breakpoint table of one capability.
type Capability struct {
	Name    string
	Floor   string
	Ceiling string
	// Leaves are the implementation names in resolution order.
	Leaves []string

	resolve  func(v int) (string, error)
	validate func() error
}

// Resolve returns the name of the implementation selected for v.
func (c Capability) Resolve(v int) (string, error) {
	return c.resolve(v)
}

// Validate reports whether the table of the capability is well formed.
func (c Capability) Validate() error {
	return c.validate()
}

func describe[F any](t *version.Table[F]) Capability {
	return Capability{
		Name:    t.Capability,
		Floor:   t.Floor,
		Ceiling: t.Ceiling,
		Leaves:  t.Names(),
		resolve: func(v int) (string, error) {
			bp, err := t.Resolve(v)
			if err != nil {
				return "", err
			}
			return bp.Name, nil
		},
		validate: t.Validate,
	}
}

// Capabilities lists every capability of the package in a fixed order.
func Capabilities() []Capability {
	return []Capability{
		describe(&generations),
		describe(&worldTable),
		describe(&blockUtilTable),
		describe(&packetTable),
		describe(&chatColorsTable),
		describe(&messageTable),
		describe(&itemEditorTable),
		describe(&itemTextTable),
		describe(&itemNamesTable),
		describe(&entityTable),
		describe(&commandTable),
		describe(&componentLoggerTable),
		describe(&enchantTable),
		describe(&teleporterTable),
		describe(&mainHandTable),
	}
}

// Resolution is the outcome of resolving one capability for a version.
type Resolution struct {
	Capability string `json:"capability" yaml:"capability"`
	Leaf       string `json:"leaf,omitempty" yaml:"leaf,omitempty"`
	Error      string `json:"error,omitempty" yaml:"error,omitempty"`
}

// ResolveAll resolves every capability for v without constructing anything.
func ResolveAll(v int) []Resolution {
	caps := Capabilities()
	out := make([]Resolution, 0, len(caps))
	for _, c := range caps {
		r := Resolution{Capability: c.Name}
		leaf, err := c.Resolve(v)
		if err != nil {
			r.Error = err.Error()
		} else {
			r.Leaf = leaf
		}
		out = append(out, r)
	}
	return out
}
