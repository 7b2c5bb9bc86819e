package restraints

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Structure is the view of the model a Manager needs.
type Structure interface {
	Len() int
	CartesianSite(i int) r3.Vec
	FractionalizeGradient(g r3.Vec) r3.Vec
}

// SlotMap locates an atom's site gradient; -1 means the site is not refined.
type SlotMap interface {
	SiteSlot(i int) int
}

// Manager holds the bond restraints of a model.
type Manager struct {
	bonds []BondProxy
}

// NewManager returns a manager over proxies.
func NewManager(proxies ...BondProxy) *Manager {
	return &Manager{bonds: append([]BondProxy(nil), proxies...)}
}

// Add appends a validated proxy.
func (m *Manager) Add(p BondProxy) error {
	if err := p.check(-1); err != nil {
		return err
	}
	m.bonds = append(m.bonds, p)

	return nil
}

// Proxies returns a copy of the proxies.
func (m *Manager) Proxies() []BondProxy {
	return append([]BondProxy(nil), m.bonds...)
}

// Len returns the number of proxies.
func (m *Manager) Len() int { return len(m.bonds) }

// Target returns Σ w·δ² over all proxies.
func (m *Manager) Target(s Structure) (float64, error) {
	var sum float64
	for _, p := range m.bonds {
		b, err := m.evaluate(s, p)
		if err != nil {
			return 0, err
		}
		sum += b.Residual()
	}

	return sum, nil
}

// AddGradients adds every proxy's fractional site gradients to grads at the
// slots given by pm and returns the residual sum. Atoms without a slot are
// skipped.
func (m *Manager) AddGradients(s Structure, pm SlotMap, grads []float64) (float64, error) {
	var sum float64
	for _, p := range m.bonds {
		// 1. Evaluate in Cartesian space
		b, err := m.evaluate(s, p)
		if err != nil {
			return 0, err
		}
		sum += b.Residual()

		// 2. Fractionalize and accumulate
		g := b.Gradients()
		for k, atom := range [2]int{p.I, p.J} {
			slot := pm.SiteSlot(atom)
			if slot < 0 {
				continue
			}
			if slot+3 > len(grads) {
				return 0, fmt.Errorf("%w: atom %d slot %d, length %d", ErrGradientLength, atom, slot, len(grads))
			}
			f := s.FractionalizeGradient(g[k])
			grads[slot] += f.X
			grads[slot+1] += f.Y
			grads[slot+2] += f.Z
		}
	}

	return sum, nil
}

func (m *Manager) evaluate(s Structure, p BondProxy) (Bond, error) {
	if err := p.check(s.Len()); err != nil {
		return Bond{}, err
	}

	return NewBond(s.CartesianSite(p.I), s.CartesianSite(p.J), p.Ideal, p.Weight), nil
}
