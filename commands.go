package compat

import (
	"fmt"
	"maps"
	"strings"

	"github.com/oriumgames/compat/host"
	"github.com/oriumgames/compat/version"
)

// CommandMapModifier registers commands directly in the command table of the
// host, bypassing its plugin descriptor.
type CommandMapModifier interface {
	// Register adds c under "plugin:name" and, where they are free, under its
	// name and aliases.
	Register(m host.CommandMap, c host.Command) error
	// Unregister removes every label of the command registered as name. It
	// reports whether anything was removed.
	Unregister(m host.CommandMap, name string) (bool, error)
	// KnownCommands returns a copy of the command table.
	KnownCommands(m host.CommandMap) (map[string]host.Command, error)
}

var commandTable = version.Table[func(*API) (CommandMapModifier, error)]{
	Capability: "commands",
	Floor:      "1.8",
	Breakpoints: []version.Breakpoint[func(*API) (CommandMapModifier, error)]{
		{Through: "1.12.2", Name: "table", New: func(*API) (CommandMapModifier, error) { return commandMap{}, nil }},
	},
	Default: version.Breakpoint[func(*API) (CommandMapModifier, error)]{Name: "synced", New: func(*API) (CommandMapModifier, error) {
		return commandMap{sync: true}, nil
	}},
}

// commandMap implements CommandMapModifier. Clients from 1.13 hold a copy of
// the command tree, which is resent after every change when sync is set.
type commandMap struct {
	sync bool
}

func (c commandMap) known(m host.CommandMap, op string) (map[string]host.Command, error) {
	if m == nil {
		return nil, illegalState(op, nil)
	}
	k, ok := m.Internal().(host.KnownCommands)
	if !ok {
		return nil, illegalState(op, m.Internal())
	}
	if c.sync {
		if _, ok := k.(host.CommandSyncer); !ok {
			return nil, illegalState(op, k)
		}
	}
	return k.KnownCommands(), nil
}

func (c commandMap) resync(m host.CommandMap) {
	if !c.sync {
		return
	}
	if s, ok := m.Internal().(host.CommandSyncer); ok {
		s.SyncCommands()
	}
}

// Register adds cmd under its name, its aliases and their plugin-prefixed forms.
func (c commandMap) Register(m host.CommandMap, cmd host.Command) error {
	if cmd.Name == "" || cmd.Plugin == "" {
		return fmt.Errorf("compat: register command: name and plugin are required")
	}
	known, err := c.known(m, "register command")
	if err != nil {
		return err
	}

	prefix := strings.ToLower(cmd.Plugin) + ":"
	fallback := prefix + strings.ToLower(cmd.Name)
	if _, ok := known[fallback]; ok {
		return fmt.Errorf("compat: command %s is already registered", fallback)
	}
	known[fallback] = cmd
	for _, label := range append([]string{cmd.Name}, cmd.Aliases...) {
		label = strings.ToLower(label)
		if _, ok := known[label]; !ok {
			known[label] = cmd
		}
		known[prefix+label] = cmd
	}
	c.resync(m)
	return nil
}

// Unregister removes every label that points at the command known as name.
func (c commandMap) Unregister(m host.CommandMap, name string) (bool, error) {
	known, err := c.known(m, "unregister command")
	if err != nil {
		return false, err
	}
	cmd, ok := known[strings.ToLower(name)]
	if !ok {
		return false, nil
	}
	maps.DeleteFunc(known, func(_ string, v host.Command) bool {
		return v.Name == cmd.Name && v.Plugin == cmd.Plugin
	})
	c.resync(m)
	return true, nil
}

// KnownCommands returns a copy of the host's label table.
func (c commandMap) KnownCommands(m host.CommandMap) (map[string]host.Command, error) {
	known, err := c.known(m, "known commands")
	if err != nil {
		return nil, err
	}
	return maps.Clone(known), nil
}
