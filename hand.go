package compat

import (
	"github.com/oriumgames/compat/host"
	"github.com/oriumgames/compat/version"
)

// MainHand reads and writes the items players hold.
type MainHand interface {
	MainHand(p host.Player) (host.ItemStack, error)
	SetMainHand(p host.Player, it host.ItemStack) error
	// OffHand returns an empty stack on hosts without an off hand.
	OffHand(p host.Player) (host.ItemStack, error)
	// SetOffHand fails with an *UnsupportedOperationError on hosts without an
	// off hand.
	SetOffHand(p host.Player, it host.ItemStack) error
	// IsOffHand reports whether ev was performed with the off hand.
	IsOffHand(ev host.InteractEvent) bool
}

var mainHandTable = version.Table[func(*API) (MainHand, error)]{
	Capability: "main_hand",
	Floor:      "1.8",
	Breakpoints: []version.Breakpoint[func(*API) (MainHand, error)]{
		{Through: "1.8.9", Name: "single", New: func(a *API) (MainHand, error) {
			v, err := a.Version()
			if err != nil {
				return nil, err
			}
			return singleHand{version: v}, nil
		}},
	},
	Default: version.Breakpoint[func(*API) (MainHand, error)]{Name: "dual", New: func(*API) (MainHand, error) {
		return dualHand{}, nil
	}},
}

// singleHand implements MainHand for hosts before the off hand.
type singleHand struct {
	version int
}

func (singleHand) handle(p host.Player, op string) (host.SingleHanded, error) {
	if p == nil {
		return nil, illegalState(op, nil)
	}
	h, ok := p.Internal().(host.SingleHanded)
	if !ok {
		return nil, illegalState(op, p.Internal())
	}
	return h, nil
}

// MainHand returns the held item.
func (s singleHand) MainHand(p host.Player) (host.ItemStack, error) {
	h, err := s.handle(p, "main hand")
	if err != nil {
		return host.ItemStack{}, err
	}
	return h.ItemInHand(), nil
}

// SetMainHand replaces the held item.
func (s singleHand) SetMainHand(p host.Player, it host.ItemStack) error {
	h, err := s.handle(p, "set main hand")
	if err != nil {
		return err
	}
	h.SetItemInHand(it)
	return nil
}

// OffHand returns an empty stack.
func (singleHand) OffHand(host.Player) (host.ItemStack, error) {
	return host.ItemStack{}, nil
}

// SetOffHand fails, since there is no off hand.
func (s singleHand) SetOffHand(host.Player, host.ItemStack) error {
	return &UnsupportedOperationError{Op: "set off hand", Version: s.version}
}

// IsOffHand is always false.
func (singleHand) IsOffHand(host.InteractEvent) bool {
	return false
}

// dualHand implements MainHand for hosts with an off hand.
type dualHand struct{}

func (dualHand) handle(p host.Player, op string) (host.DualHanded, error) {
	if p == nil {
		return nil, illegalState(op, nil)
	}
	h, ok := p.Internal().(host.DualHanded)
	if !ok {
		return nil, illegalState(op, p.Internal())
	}
	return h, nil
}

// MainHand returns the main hand item.
func (d dualHand) MainHand(p host.Player) (host.ItemStack, error) {
	h, err := d.handle(p, "main hand")
	if err != nil {
		return host.ItemStack{}, err
	}
	main, _ := h.HeldItems()
	return main, nil
}

// SetMainHand replaces the main hand item.
func (d dualHand) SetMainHand(p host.Player, it host.ItemStack) error {
	h, err := d.handle(p, "set main hand")
	if err != nil {
		return err
	}
	_, off := h.HeldItems()
	h.SetHeldItems(it, off)
	return nil
}

// OffHand returns the off hand item.
func (d dualHand) OffHand(p host.Player) (host.ItemStack, error) {
	h, err := d.handle(p, "off hand")
	if err != nil {
		return host.ItemStack{}, err
	}
	_, off := h.HeldItems()
	return off, nil
}

// SetOffHand replaces the off hand item.
func (d dualHand) SetOffHand(p host.Player, it host.ItemStack) error {
	h, err := d.handle(p, "set off hand")
	if err != nil {
		return err
	}
	main, _ := h.HeldItems()
	h.SetHeldItems(main, it)
	return nil
}

// IsOffHand reports whether ev came from the off hand.
func (dualHand) IsOffHand(ev host.InteractEvent) bool {
	return ev.Hand == host.HandOff
}
