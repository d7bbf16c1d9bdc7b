package memhost

import (
	"strings"
	"sync"
	"sync/atomic"

	"github.com/oriumgames/compat/host"
)

// CommandMap is the command table of an in-memory server.
type CommandMap struct {
	mu    sync.Mutex
	known map[string]host.Command
	// tree is set on releases whose clients hold a command tree.
	tree  bool
	syncs atomic.Int32
}

func newCommandMap(tree bool) *CommandMap {
	return &CommandMap{known: make(map[string]host.Command), tree: tree}
}

// Lookup returns the command registered under name.
func (m *CommandMap) Lookup(name string) (host.Command, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.known[strings.ToLower(name)]
	return c, ok
}

// Internal returns a host.KnownCommands, which is also a host.CommandSyncer
// on releases with a client command tree.
func (m *CommandMap) Internal() any {
	if m.tree {
		return syncingCommands{knownCommands{m}}
	}
	return knownCommands{m}
}

// Syncs returns the number of times the command tree was resent.
func (m *CommandMap) Syncs() int {
	return int(m.syncs.Load())
}

// knownCommands exposes the raw table.
type knownCommands struct{ m *CommandMap }

// KnownCommands returns the live label table.
func (k knownCommands) KnownCommands() map[string]host.Command {
	return k.m.known
}

// syncingCommands adds command tree syncing.
type syncingCommands struct{ knownCommands }

// SyncCommands counts a resend of the command tree.
func (s syncingCommands) SyncCommands() {
	s.m.syncs.Add(1)
}
