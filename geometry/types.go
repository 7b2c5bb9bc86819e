package geometry

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrInvalidConfiguration indicates a dependent count the variant cannot place.
	ErrInvalidConfiguration = errors.New("geometry: invalid hydrogen configuration")

	// ErrNeighborCount indicates the wrong number of neighbor positions.
	ErrNeighborCount = errors.New("geometry: wrong number of pivot neighbors")

	// ErrDegenerateGeometry indicates coincident atoms or collinear bonds.
	ErrDegenerateGeometry = errors.New("geometry: degenerate neighbor geometry")

	// ErrUnknownKind indicates a Kind outside the known variants.
	ErrUnknownKind = errors.New("geometry: unknown variant kind")
)

var (
	// TetrahedralAngle is arccos(−1/3) in radians.
	TetrahedralAngle = math.Acos(-1.0 / 3.0)

	sinTetrahedral = math.Sin(TetrahedralAngle)
)

const degree = math.Pi / 180

// Kind enumerates the placement models.
type Kind int

const (
	// TerminalXH3 places 1–3 hydrogens on a terminal atom with one neighbor.
	TerminalXH3 Kind = iota
	// SecondaryCH2 places 2 hydrogens on an atom with two neighbors.
	SecondaryCH2
	// TertiaryCH places 1 hydrogen on an atom with three neighbors.
	TertiaryCH
	// AromaticOrAmideH places 1 hydrogen on the bisector of two bonds.
	AromaticOrAmideH
)

var kindNames = [...]string{
	TerminalXH3:      "terminal_xh3",
	SecondaryCH2:     "secondary_ch2",
	TertiaryCH:       "tertiary_ch",
	AromaticOrAmideH: "aromatic_or_amide_h",
}

// String returns the snake_case name used in session files.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}

	return kindNames[k]
}

// ParseKind is the inverse of Kind.String. Matching ignores case.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if strings.EqualFold(s, name) {
			return Kind(k), nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Param identifies an auxiliary parameter.
type Param int

const (
	// BondLength is the pivot–hydrogen distance in Å.
	BondLength Param = iota
	// Azimuth is the rotation about the pivot–neighbor bond, in degrees.
	Azimuth
)

// String names the parameter.
func (p Param) String() string {
	switch p {
	case BondLength:
		return "bond_length"
	case Azimuth:
		return "azimuth"
	default:
		return fmt.Sprintf("Param(%d)", int(p))
	}
}

// Mode is the set of enabled reparametrizations.
type Mode uint8

const (
	// Stretching frees the bond length.
	Stretching Mode = 1 << iota
	// Rotating frees the azimuth.
	Rotating
)

// Has reports whether all bits of m2 are set in m.
func (m Mode) Has(m2 Mode) bool { return m&m2 == m2 }

// Params holds the auxiliary parameter values.
type Params struct {
	BondLength float64 // Å
	Azimuth    float64 // degrees
}

// Add shifts parameter p by delta.
func (ps *Params) Add(p Param, delta float64) {
	switch p {
	case BondLength:
		ps.BondLength += delta
	case Azimuth:
		ps.Azimuth += delta
	}
}

// Placement is the result of placing the dependents of one constraint.
// All vectors are Cartesian.
type Placement struct {
	// Sites are the dependent positions, in dependent order.
	Sites []r3.Vec

	// DxDl[i] is ∂Sites[i]/∂l.
	DxDl []r3.Vec

	// DxDphi[i] is ∂Sites[i]/∂φ with φ in degrees; nil when not rotatable.
	DxDphi []r3.Vec
}

// Derivative returns ∂Sites/∂p, or nil if the variant has no such parameter.
func (pl Placement) Derivative(p Param) []r3.Vec {
	switch p {
	case BondLength:
		return pl.DxDl
	case Azimuth:
		return pl.DxDphi
	default:
		return nil
	}
}

// Variant is a placement model. Implementations may keep state between
// placements (the terminal group carries its local frame) and are therefore
// owned by a single constraint.
type Variant interface {
	// Kind identifies the model.
	Kind() Kind

	// NeighborCount is the number of pivot neighbors the model reads.
	NeighborCount() int

	// CheckDependents validates the number of dependents.
	CheckDependents(n int) error

	// Rotatable reports whether the Azimuth parameter exists.
	Rotatable() bool

	// ActiveParams lists the parameters enabled by m, BondLength first.
	ActiveParams(m Mode) []Param

	// Init prepares per-context state from the current geometry.
	Init(pivot r3.Vec, neighbors []r3.Vec) error

	// Place computes n dependent sites and their parameter derivatives.
	Place(pivot r3.Vec, neighbors []r3.Vec, p Params, n int) (Placement, error)
}

// New returns a fresh Variant of the given kind.
func New(k Kind) (Variant, error) {
	switch k {
	case TerminalXH3:
		return &TerminalXH3Variant{}, nil
	case SecondaryCH2:
		return SecondaryCH2Variant{}, nil
	case TertiaryCH:
		return TertiaryCHVariant{}, nil
	case AromaticOrAmideH:
		return AromaticOrAmideHVariant{}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, int(k))
	}
}

// activeParams is shared by every variant: stretching first, then rotation.
func activeParams(m Mode, rotatable bool) []Param {
	var out []Param
	if m.Has(Stretching) {
		out = append(out, BondLength)
	}
	if rotatable && m.Has(Rotating) {
		out = append(out, Azimuth)
	}

	return out
}

func checkNeighbors(k Kind, want int, got []r3.Vec) error {
	if len(got) != want {
		return fmt.Errorf("%w: %s needs %d, got %d", ErrNeighborCount, k, want, len(got))
	}

	return nil
}
