// Package memhost is an in-memory implementation of the host object model.
//
// A Server emulates one release of the host. The release string picks one of
// three generations, and the generation decides the shape of every internal
// handle: legacy hosts (up to 1.12.2) store combined numeric block ids and
// mutate chunks through a boolean primitive, flattened hosts (1.13 through
// 1.21.4) store block state ids, and flagged hosts (anything newer) mutate
// chunks through a side effect mask.
//
// Blocks are stored in dragonfly chunk columns, saved chunks go to a Store
// (goleveldb backed by default) and modern observers receive gophertunnel
// packets. Mutating methods must run on the main thread, see Server.Exec.
package memhost

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/oriumgames/compat/host"
	"github.com/oriumgames/compat/version"
)

// Generation is the block and packet model of an emulated release.
type Generation uint8

const (
	// Legacy releases use combined numeric block ids.
	Legacy Generation = iota
	// Flattened releases use block state ids and a boolean chunk primitive.
	Flattened
	// Flagged releases use block state ids and a side effect mask.
	Flagged
)

// String returns the generation name.
func (g Generation) String() string {
	switch g {
	case Legacy:
		return "legacy"
	case Flattened:
		return "flattened"
	case Flagged:
		return "flagged"
	default:
		return "unknown"
	}
}

var generations = &version.Table[Generation]{
	Capability: "memhost",
	Floor:      "1.8",
	Breakpoints: []version.Breakpoint[Generation]{
		{Through: "1.12.2", Name: "legacy", New: Legacy},
		{Through: "1.21.4", Name: "flattened", New: Flattened},
	},
	Default: version.Breakpoint[Generation]{Name: "flagged", New: Flagged},
}

// Config configures a Server.
type Config struct {
	// Version is the release string reported by the server, for example
	// "1.20.4-R0.1-SNAPSHOT".
	Version string
	// Name is the implementation name. Default: "memhost".
	Name string
	// Store persists saved chunks. Default: an in-memory LevelStore owned by
	// the server.
	Store Store
	// Generator fills chunks that are not in the Store. Default: DefaultFlat.
	Generator Generator
	// Log receives server diagnostics. Default: slog.Default().
	Log *slog.Logger
	// TickRate is the main thread tick interval. Default: 50ms.
	TickRate time.Duration
	// AutosaveTicks saves dirty chunks every n ticks. Zero disables autosave.
	AutosaveTicks uint64
}

// Server is an in-memory host.
type Server struct {
	conf    Config
	version int
	gen     Generation
	log     *slog.Logger
	reg     *registry

	store     Store
	ownsStore bool

	exec *executor

	worlds   map[string]*World
	worldsMu sync.RWMutex

	players   map[uuid.UUID]*Player
	playersMu sync.RWMutex

	commands *CommandMap

	nextEntityID atomic.Int64
}

// NewServer creates a server emulating conf.Version.
func NewServer(conf Config) (*Server, error) {
	v, err := version.Encode(conf.Version)
	if err != nil {
		return nil, err
	}
	bp, err := generations.Resolve(v)
	if err != nil {
		return nil, err
	}

	if conf.Name == "" {
		conf.Name = "memhost"
	}
	if conf.Log == nil {
		conf.Log = slog.Default()
	}
	if conf.Generator == nil {
		conf.Generator = DefaultFlat()
	}

	s := &Server{
		conf:     conf,
		version:  v,
		gen:      bp.New,
		log:      conf.Log,
		reg:      defaultRegistry,
		store:    conf.Store,
		worlds:   make(map[string]*World),
		players:  make(map[uuid.UUID]*Player),
		commands: newCommandMap(bp.New != Legacy),
	}
	if s.store == nil {
		st, err := NewMemoryStore()
		if err != nil {
			return nil, fmt.Errorf("memhost: open memory store: %w", err)
		}
		s.store, s.ownsStore = st, true
	}
	s.exec = newExecutor(conf.Log, conf.TickRate, s.tick)

	s.log.Debug("memhost: server created", "version", conf.Version, "generation", s.gen)
	return s, nil
}

// Name returns the server name.
func (s *Server) Name() string { return s.conf.Name }

// Version returns the configured release string.
func (s *Server) Version() string { return s.conf.Version }

// Generation returns the emulated generation.
func (s *Server) Generation() Generation { return s.gen }

// Start starts the main thread.
func (s *Server) Start() {
	s.exec.Start()
}

// Exec runs fn on the main thread and returns a channel closed once it has
// run. Before Start and after Close, fn runs inline on the caller.
func (s *Server) Exec(fn func()) <-chan struct{} {
	return s.exec.Exec(fn)
}

// Ticks returns the number of main thread ticks run so far.
func (s *Server) Ticks() uint64 {
	return s.exec.Ticks()
}

// Close stops the main thread, saves every dirty chunk and closes the store
// if the server opened it.
func (s *Server) Close() error {
	s.exec.Stop()

	var firstErr error
	for _, w := range s.worldList() {
		if err := w.SaveAll(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if s.ownsStore {
		if err := s.store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// tick runs on the main thread once per tick.
func (s *Server) tick(n uint64) {
	if s.conf.AutosaveTicks == 0 || n%s.conf.AutosaveTicks != 0 {
		return
	}
	for _, w := range s.worldList() {
		if err := w.SaveAll(); err != nil {
			s.log.Warn("memhost: autosave failed", "world", w.Name(), "error", err)
		}
	}
}

// CreateWorld creates an empty world. A zero range picks the height limits of
// the emulated release.
func (s *Server) CreateWorld(name string, r cube.Range) (*World, error) {
	if r == (cube.Range{}) {
		r = s.defaultRange()
	}
	if s.gen == Legacy && (r.Min() != 0 || r.Max() != 255) {
		return nil, fmt.Errorf("memhost: legacy worlds span 0 to 255, got %d to %d", r.Min(), r.Max())
	}
	if r.Min()%16 != 0 || (r.Max()+1)%16 != 0 {
		return nil, fmt.Errorf("memhost: world range %v is not section aligned", r)
	}

	s.worldsMu.Lock()
	defer s.worldsMu.Unlock()
	if _, ok := s.worlds[name]; ok {
		return nil, fmt.Errorf("memhost: world %q already exists", name)
	}
	w := newWorld(s, name, r)
	s.worlds[name] = w
	return w, nil
}

// defaultRange returns the height limits of the emulated release.
func (s *Server) defaultRange() cube.Range {
	if s.version >= version.MustEncode("1.18") {
		return cube.Range{-64, 319}
	}
	return cube.Range{0, 255}
}

// World returns the world called name.
func (s *Server) World(name string) (host.World, bool) {
	s.worldsMu.RLock()
	defer s.worldsMu.RUnlock()
	w, ok := s.worlds[name]
	return w, ok
}

// Worlds returns every world in creation order.
func (s *Server) Worlds() []host.World {
	list := s.worldList()
	out := make([]host.World, len(list))
	for i, w := range list {
		out[i] = w
	}
	return out
}

func (s *Server) worldList() []*World {
	s.worldsMu.RLock()
	defer s.worldsMu.RUnlock()
	out := make([]*World, 0, len(s.worlds))
	for _, w := range s.worlds {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// Join connects a new player named name at pos in w.
func (s *Server) Join(name string, w *World, pos mgl64.Vec3) *Player {
	p := newPlayer(s, name, w, pos)
	s.playersMu.Lock()
	s.players[p.UUID()] = p
	s.playersMu.Unlock()
	return p
}

// Quit disconnects p.
func (s *Server) Quit(p *Player) {
	s.playersMu.Lock()
	delete(s.players, p.UUID())
	s.playersMu.Unlock()
}

// Player returns the online player with id.
func (s *Server) Player(id uuid.UUID) (host.Player, bool) {
	s.playersMu.RLock()
	defer s.playersMu.RUnlock()
	p, ok := s.players[id]
	return p, ok
}

// playersIn lists the players in w, ordered by name.
func (s *Server) playersIn(w *World) []*Player {
	s.playersMu.RLock()
	var out []*Player
	for _, p := range s.players {
		if p.world == w {
			out = append(out, p)
		}
	}
	s.playersMu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// Commands returns the server's command map.
func (s *Server) Commands() host.CommandMap {
	return s.commands
}

// IsBlock reports whether m is one of the block types of the server.
func (s *Server) IsBlock(m host.Material) bool {
	_, ok := s.reg.byMaterial[m]
	return ok
}

// CommandMap returns the concrete command map, for inspection.
func (s *Server) CommandMap() *CommandMap {
	return s.commands
}

// entityID allocates a network id.
func (s *Server) entityID() int {
	return int(s.nextEntityID.Add(1))
}
