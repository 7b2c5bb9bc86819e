package xray

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/katalvlaran/riding/cell"
)

// Flags are the per-scatterer refinement flags.
type Flags struct {
	// GradSite reports whether the scatterer owns independent site gradients.
	GradSite bool
}

// Scatterer is one atom of the structure.
type Scatterer struct {
	// Label is a human-readable name such as "C1" or "H1A".
	Label string

	// Site is the fractional position.
	Site r3.Vec

	// Flags selects which parameters the target evaluator differentiates.
	Flags Flags
}

// NewScatterer returns a scatterer with a refined site.
func NewScatterer(label string, site r3.Vec) Scatterer {
	return Scatterer{Label: label, Site: site, Flags: Flags{GradSite: true}}
}

// ParameterMap assigns three consecutive gradient slots to every scatterer
// whose site is refined, in scatterer order.
type ParameterMap struct {
	site []int // scatterer index -> first slot, -1 when the site is not refined
	n    int   // total number of slots
}

// NewParameterMap lays out site slots for scatterers with Flags.GradSite set.
// Complexity: O(N).
func NewParameterMap(scatterers []Scatterer) *ParameterMap {
	m := &ParameterMap{site: make([]int, len(scatterers))}
	for i, sc := range scatterers {
		if !sc.Flags.GradSite {
			m.site[i] = -1
			continue
		}
		m.site[i] = m.n
		m.n += 3
	}

	return m
}

// SiteSlot returns the offset of scatterer i's site gradient, or -1 if the
// site is not refined or i is out of range.
func (m *ParameterMap) SiteSlot(i int) int {
	if i < 0 || i >= len(m.site) {
		return -1
	}

	return m.site[i]
}

// Len returns the length of the crystallographic gradient vector.
func (m *ParameterMap) Len() int { return m.n }

// SiteSymmetryTable records which scatterers sit on special positions.
// The zero value is an empty table.
type SiteSymmetryTable struct {
	special map[int]struct{}
}

// NewSiteSymmetryTable returns a table with the given scatterers marked special.
func NewSiteSymmetryTable(special ...int) *SiteSymmetryTable {
	t := &SiteSymmetryTable{}
	for _, i := range special {
		t.MarkSpecial(i)
	}

	return t
}

// MarkSpecial records scatterer i as sitting on a special position.
func (t *SiteSymmetryTable) MarkSpecial(i int) {
	if t.special == nil {
		t.special = make(map[int]struct{})
	}
	t.special[i] = struct{}{}
}

// IsSpecial reports whether scatterer i sits on a special position.
func (t *SiteSymmetryTable) IsSpecial(i int) bool {
	if t == nil {
		return false
	}
	_, ok := t.special[i]

	return ok
}

// Special returns the number of special-position scatterers.
func (t *SiteSymmetryTable) Special() int {
	if t == nil {
		return 0
	}

	return len(t.special)
}

// Structure is a set of scatterers in a unit cell.
type Structure struct {
	Cell         *cell.UnitCell
	Scatterers   []Scatterer
	SiteSymmetry *SiteSymmetryTable
}

// NewStructure wraps scatterers in uc with an empty site-symmetry table.
func NewStructure(uc *cell.UnitCell, scatterers []Scatterer) *Structure {
	return &Structure{Cell: uc, Scatterers: scatterers, SiteSymmetry: NewSiteSymmetryTable()}
}

// Len returns the number of scatterers.
func (s *Structure) Len() int { return len(s.Scatterers) }

// CartesianSite returns scatterer i's position in Å.
func (s *Structure) CartesianSite(i int) r3.Vec {
	return s.Cell.Orthogonalize(s.Scatterers[i].Site)
}

// SetCartesianSite moves scatterer i to the Cartesian position x.
func (s *Structure) SetCartesianSite(i int, x r3.Vec) {
	s.Scatterers[i].Site = s.Cell.Fractionalize(x)
}

// FractionalizeGradient converts a Cartesian gradient into fractional form.
func (s *Structure) FractionalizeGradient(g r3.Vec) r3.Vec {
	return s.Cell.FractionalizeGradient(g)
}

// ConstraintFlags returns a copy of the scatterer flags for constraints to edit.
func (s *Structure) ConstraintFlags() []Flags {
	out := make([]Flags, len(s.Scatterers))
	for i, sc := range s.Scatterers {
		out[i] = sc.Flags
	}

	return out
}

// ParameterMap lays out the crystallographic gradient vector for s.
func (s *Structure) ParameterMap() *ParameterMap {
	return NewParameterMap(s.Scatterers)
}

// Index returns the index of the first scatterer with the given label, or -1.
func (s *Structure) Index(label string) int {
	for i, sc := range s.Scatterers {
		if sc.Label == label {
			return i
		}
	}

	return -1
}
