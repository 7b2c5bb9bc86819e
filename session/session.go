package session

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/katalvlaran/riding/geometry"
)

var (
	// ErrInvalidSession indicates a document that cannot describe a model.
	ErrInvalidSession = errors.New("session: invalid session")

	// ErrUnknownKind indicates an unknown constraint kind.
	ErrUnknownKind = errors.New("session: unknown constraint kind")
)

// validate is shared by all sessions; it is safe for concurrent use.
var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("hkind", validateKind)
}

// validateKind accepts the constraint kind names of package geometry.
func validateKind(fl validator.FieldLevel) bool {
	_, err := geometry.ParseKind(fl.Field().String())

	return err == nil
}

// Session is the persisted form of a model.
type Session struct {
	ID          uuid.UUID    `yaml:"id"`
	Cell        Cell         `yaml:"cell"`
	Scatterers  []Scatterer  `yaml:"scatterers" validate:"required,min=1,dive"`
	Constraints []Constraint `yaml:"constraints,omitempty" validate:"dive"`
	Restraints  []Restraint  `yaml:"restraints,omitempty" validate:"dive"`
}

// Cell holds the unit cell parameters (Å, degrees).
type Cell struct {
	A     float64 `yaml:"a" validate:"gt=0"`
	B     float64 `yaml:"b" validate:"gt=0"`
	C     float64 `yaml:"c" validate:"gt=0"`
	Alpha float64 `yaml:"alpha" validate:"gt=0,lt=180"`
	Beta  float64 `yaml:"beta" validate:"gt=0,lt=180"`
	Gamma float64 `yaml:"gamma" validate:"gt=0,lt=180"`
}

// Scatterer is one atom; Site is fractional.
type Scatterer struct {
	Label   string     `yaml:"label" validate:"required"`
	Site    [3]float64 `yaml:"site,flow"`
	Fixed   bool       `yaml:"fixed,omitempty"`
	Special bool       `yaml:"special,omitempty"`
}

// Constraint is one riding constraint. Rotating is nil for the kind's default.
// Reference is the saved E0 of a terminal group's local frame.
type Constraint struct {
	Kind       string      `yaml:"kind" validate:"required,hkind"`
	Pivot      string      `yaml:"pivot" validate:"required"`
	Neighbors  []string    `yaml:"neighbors,flow" validate:"min=1,max=3,dive,required"`
	Dependents []string    `yaml:"dependents,flow" validate:"min=1,max=3,dive,required"`
	BondLength float64     `yaml:"bond_length" validate:"gt=0"`
	Azimuth    float64     `yaml:"azimuth,omitempty"`
	Stretching bool        `yaml:"stretching,omitempty"`
	Rotating   *bool       `yaml:"rotating,omitempty"`
	Reference  *[3]float64 `yaml:"reference,omitempty,flow"`
}

// Restraint is one bond restraint between two labelled atoms.
type Restraint struct {
	Atoms  [2]string `yaml:"atoms,flow" validate:"dive,required"`
	Ideal  float64   `yaml:"ideal" validate:"gt=0"`
	Weight float64   `yaml:"weight" validate:"gt=0"`
}

// Validate checks field constraints, label uniqueness and references.
func (s *Session) Validate() error {
	// 1. Field tags
	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				if fe.Tag() == "hkind" {
					return fmt.Errorf("%w: %w: %v", ErrInvalidSession, ErrUnknownKind, fe.Value())
				}
			}
		}

		return fmt.Errorf("%w: %w", ErrInvalidSession, err)
	}

	// 2. Labels and references
	_, err := s.labels()

	return err
}

// labels maps each label to its scatterer index and resolves every reference.
func (s *Session) labels() (map[string]int, error) {
	idx := make(map[string]int, len(s.Scatterers))
	for i, sc := range s.Scatterers {
		if _, dup := idx[sc.Label]; dup {
			return nil, fmt.Errorf("%w: duplicate label %q", ErrInvalidSession, sc.Label)
		}
		idx[sc.Label] = i
	}
	check := func(where string, labels ...string) error {
		for _, l := range labels {
			if _, ok := idx[l]; !ok {
				return fmt.Errorf("%w: %s: unknown label %q", ErrInvalidSession, where, l)
			}
		}
		return nil
	}
	for i, c := range s.Constraints {
		where := fmt.Sprintf("constraint %d", i)
		if err := check(where, c.Pivot); err != nil {
			return nil, err
		}
		if err := check(where, c.Neighbors...); err != nil {
			return nil, err
		}
		if err := check(where, c.Dependents...); err != nil {
			return nil, err
		}
	}
	for i, r := range s.Restraints {
		if err := check(fmt.Sprintf("restraint %d", i), r.Atoms[:]...); err != nil {
			return nil, err
		}
	}

	return idx, nil
}
