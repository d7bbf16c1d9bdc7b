package compat

import (
	"log/slog"
	"reflect"
	"sync"

	"github.com/oriumgames/compat/host"
	"github.com/oriumgames/compat/version"
)

// API is the entry point of the compat layer for one host server. It holds
// one Provider per capability and one World wrapper per world handle.
// Multiple API instances can coexist in the same process.
type API struct {
	srv       host.Server
	detector  *version.Detector
	log       *slog.Logger
	metrics   *Metrics
	formatter Formatter
	sink      LogSink

	blocks     *Provider[BlockUtil]
	packets    *Provider[PacketHandler]
	colors     *Provider[ChatColors]
	messages   *Provider[MessageManager]
	items      *Provider[ItemEditor]
	itemText   *Provider[ItemText]
	itemNames  *Provider[ItemNames]
	entities   *Provider[EntityMethods]
	commands   *Provider[CommandMapModifier]
	components *Provider[ComponentLogger]
	enchants   *Provider[EnchantID]
	teleporter *Provider[Teleporter]
	hands      *Provider[MainHand]

	// worlds maps host.World -> *Wrapper[World, host.World]
	worlds sync.Map
}

// newAPI creates the API and its providers.
func newAPI(srv host.Server, d *version.Detector, log *slog.Logger, m *Metrics, f Formatter, sink LogSink) *API {
	a := &API{srv: srv, detector: d, log: log, metrics: m, formatter: f, sink: sink}

	required := []ProviderOption{WithLogger(log), WithMetrics(m), WithRequired(true)}
	optional := []ProviderOption{WithLogger(log), WithMetrics(m)}

	a.blocks = NewProvider(blockUtilTable.Capability, a.Version, selectFor(&blockUtilTable, a), required...)
	a.packets = NewProvider(packetTable.Capability, a.Version, selectFor(&packetTable, a), required...)
	a.colors = NewProvider(chatColorsTable.Capability, a.Version, selectFor(&chatColorsTable, a), required...)
	a.messages = NewProvider(messageTable.Capability, a.Version, selectFor(&messageTable, a), required...)
	a.items = NewProvider(itemEditorTable.Capability, a.Version, selectFor(&itemEditorTable, a), required...)
	a.itemText = NewProvider(itemTextTable.Capability, a.Version, selectFor(&itemTextTable, a), optional...)
	a.itemNames = NewProvider(itemNamesTable.Capability, a.Version, selectFor(&itemNamesTable, a), required...)
	a.entities = NewProvider(entityTable.Capability, a.Version, selectFor(&entityTable, a), required...)
	a.commands = NewProvider(commandTable.Capability, a.Version, selectFor(&commandTable, a), required...)
	a.components = NewProvider(componentLoggerTable.Capability, a.Version, selectFor(&componentLoggerTable, a), required...)
	a.enchants = NewProvider(enchantTable.Capability, a.Version, selectFor(&enchantTable, a), required...)
	a.teleporter = NewProvider(teleporterTable.Capability, a.Version, selectFor(&teleporterTable, a), required...)
	a.hands = NewProvider(mainHandTable.Capability, a.Version, selectFor(&mainHandTable, a), required...)
	return a
}

// Server returns the host server of the API.
func (a *API) Server() host.Server { return a.srv }

// Version returns the canonical host version.
func (a *API) Version() (int, error) { return a.detector.Version() }

// BlockUtil returns the block mutation provider.
func (a *API) BlockUtil() *Provider[BlockUtil] { return a.blocks }

// Packets returns the packet handler provider.
func (a *API) Packets() *Provider[PacketHandler] { return a.packets }

// Colors returns the chat color provider.
func (a *API) Colors() *Provider[ChatColors] { return a.colors }

// Messages returns the message manager provider.
func (a *API) Messages() *Provider[MessageManager] { return a.messages }

// Items returns the item editor provider.
func (a *API) Items() *Provider[ItemEditor] { return a.items }

// ItemText returns the item text provider. It only resolves on hosts up to
// 1.16.5.
func (a *API) ItemText() *Provider[ItemText] { return a.itemText }

// ItemNames returns the item translation key provider.
func (a *API) ItemNames() *Provider[ItemNames] { return a.itemNames }

// Entities returns the entity methods provider.
func (a *API) Entities() *Provider[EntityMethods] { return a.entities }

// Commands returns the command map modifier provider.
func (a *API) Commands() *Provider[CommandMapModifier] { return a.commands }

// ComponentLog returns the component logger provider.
func (a *API) ComponentLog() *Provider[ComponentLogger] { return a.components }

// Enchants returns the enchantment id provider.
func (a *API) Enchants() *Provider[EnchantID] { return a.enchants }

// Teleporter returns the teleporter provider.
func (a *API) Teleporter() *Provider[Teleporter] { return a.teleporter }

// Hands returns the held item provider.
func (a *API) Hands() *Provider[MainHand] { return a.hands }

// World returns the wrapper of h, creating it on first use. Wrappers are
// kept per handle until ForgetWorld is called. A handle that is not
// comparable cannot key the cache and is rejected.
func (a *API) World(h host.World) (World, error) {
	if h == nil {
		return nil, illegalState("wrap world", nil)
	}
	if !reflect.TypeOf(h).Comparable() {
		return nil, illegalState("wrap world", h)
	}
	if w, ok := a.worlds.Load(h); ok {
		return w.(*Wrapper[World, host.World]).Get(h)
	}

	w := NewWrapper(worldTable.Capability, a.Version, func(v int, ctx host.World) (World, string, error) {
		bp, err := worldTable.Resolve(v)
		if err != nil {
			return nil, "", err
		}
		value, err := bp.New(a, ctx)
		return value, bp.Name, err
	}, WithLogger(a.log), WithMetrics(a.metrics))

	// LoadOrStore ensures only one wrapper exists per handle
	actual, _ := a.worlds.LoadOrStore(h, w)
	return actual.(*Wrapper[World, host.World]).Get(h)
}

// ForgetWorld drops the wrapper of h, for example after the world unloads.
func (a *API) ForgetWorld(h host.World) {
	if h == nil || !reflect.TypeOf(h).Comparable() {
		return
	}
	a.worlds.Delete(h)
}

// Resolve resolves every capability. Errors of required capabilities are
// returned, the others are logged.
func (a *API) Resolve() error {
	for _, r := range a.resolvers() {
		if err := r.resolve(); err != nil {
			if r.required {
				return err
			}
			a.log.Warn("compat: optional capability unavailable", "capability", r.name, "error", err)
		}
	}
	return nil
}

// resolver is a type erased provider.
type resolver struct {
	name     string
	required bool
	resolve  func() error
	leaf     func() (string, bool)
}

func erase[T any](p *Provider[T]) resolver {
	return resolver{
		name:     p.name,
		required: p.opts.Required,
		resolve: func() error {
			_, err := p.Get()
			return err
		},
		leaf: p.Leaf,
	}
}

func (a *API) resolvers() []resolver {
	return []resolver{
		erase(a.blocks),
		erase(a.packets),
		erase(a.colors),
		erase(a.messages),
		erase(a.items),
		erase(a.itemText),
		erase(a.itemNames),
		erase(a.entities),
		erase(a.commands),
		erase(a.components),
		erase(a.enchants),
		erase(a.teleporter),
		erase(a.hands),
	}
}

// Leaves returns the implementation name of every resolved capability.
func (a *API) Leaves() map[string]string {
	out := make(map[string]string)
	for _, r := range a.resolvers() {
		if leaf, ok := r.leaf(); ok {
			out[r.name] = leaf
		}
	}
	return out
}
