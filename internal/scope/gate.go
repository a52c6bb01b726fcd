package scope

import "sync/atomic"

// Gate is the single-slot store behind the allow-global-writes switch.
// The zero value is a closed gate. It is owned by the composition root and
// passed by reference to anything that evaluates editability.
type Gate struct {
	enabled atomic.Bool
}

// NewGate returns a gate with the given initial state.
func NewGate(enabled bool) *Gate {
	g := &Gate{}
	g.enabled.Store(enabled)
	return g
}

// Get returns whether global and managed writes are currently allowed.
// A nil gate is closed.
func (g *Gate) Get() bool {
	if g == nil {
		return false
	}
	return g.enabled.Load()
}

// Set changes the gate. It applies to every subsequent editability check.
// Setting a nil gate does nothing, so a nil gate stays closed.
func (g *Gate) Set(enabled bool) {
	if g == nil {
		return
	}
	g.enabled.Store(enabled)
}

// Editable evaluates IsEditable against the gate's current state.
func (g *Gate) Editable(s ConfigScope) bool {
	return IsEditable(s, g.Get())
}
