package constraints

import (
	"errors"

	"github.com/katalvlaran/riding/geometry"
)

var (
	// ErrInvalidConfiguration is geometry.ErrInvalidConfiguration; construction
	// errors match it with errors.Is regardless of which package raised them.
	ErrInvalidConfiguration = geometry.ErrInvalidConfiguration

	// ErrIndexOutOfRange indicates an atom index outside the structure.
	ErrIndexOutOfRange = errors.New("constraints: atom index out of range")

	// ErrSpecialPosition indicates a dependent atom on a special position.
	ErrSpecialPosition = errors.New("constraints: dependent atom on a special position")

	// ErrNilContext indicates a nil Context or Registry.
	ErrNilContext = errors.New("constraints: nil context")

	// ErrNotInitialised indicates a lifecycle call before Initialise.
	ErrNotInitialised = errors.New("constraints: constraint not initialised")

	// ErrNotPlaced indicates gradients requested before the first placement.
	ErrNotPlaced = errors.New("constraints: constraint not placed yet")

	// ErrNoReparamSlice indicates shifts applied before gradients were propagated.
	ErrNoReparamSlice = errors.New("constraints: no reparametrization slice recorded")

	// ErrShiftLength indicates a shift vector too short for the recorded slice.
	ErrShiftLength = errors.New("constraints: shift vector too short")

	// ErrGradientLength indicates a gradient vector too short for a site slot.
	ErrGradientLength = errors.New("constraints: gradient vector too short")

	// ErrNoSiteSlot indicates a dependent atom without site gradients.
	ErrNoSiteSlot = errors.New("constraints: dependent atom has no site gradient slot")

	// ErrCycleDetected indicates cyclic dependencies between constraints.
	ErrCycleDetected = errors.New("constraints: cycle detected")
)
