// Package constraints implements riding constraints for geometrically placed
// hydrogen atoms and the orchestration that runs them once per refinement
// cycle.
//
// What:
//
//   - Constraint: one pivot atom, 1–3 dependent hydrogens, the pivot's bonded
//     neighbors and a geometry.Variant. It
//   - Initialise: claims the dependents in a Registry and clears their
//     independent site-gradient flag; a dependent that is already
//     constrained disables the whole constraint instead of failing.
//   - Place: writes the dependents' sites from the pivot, the neighbors
//     and the auxiliary parameters.
//   - PropagateGradients: rides every dependent's site gradient onto the
//     pivot, then appends ∂T/∂l and ∂T/∂φ (when free) to the
//     reparametrization gradient vector and remembers where.
//   - ApplyShifts: adds the optimizer's shifts found at that offset to the
//     auxiliary parameters and re-places the dependents.
//   - Set: the orchestrator. It orders the constraints once from the static
//     pivot/dependent graph, places and applies shifts in that order, and
//     propagates gradients in reverse so that each pivot has collected
//     everything riding on it before it rides on its own pivot.
//
// Why:
//
//   - Refining hydrogen sites freely against X-ray data is ill-conditioned.
//     Expressing them through a bond length and at most one torsion keeps the
//     chemistry right and shrinks the parameter set the optimizer sees.
//
// Cycle:
//
//	Set.Place → evaluate target (raw gradients) → Set.PropagateGradients →
//	optimizer shifts → Set.ApplyShifts → next cycle.
//
// Concurrency:
//
//	A Set runs single-threaded by default. WithParallelism(n) runs each
//	dependency level with up to n goroutines; pivot gradient accumulation is
//	collected per constraint and reduced serially in the sequential order,
//	so the reparametrization vector layout is identical in both modes.
//
// Complexity:
//
//   - Set.Initialise: O(C + A) for C constraints touching A atoms.
//   - Place / PropagateGradients / ApplyShifts: O(C).
//
// Errors:
//
//   - ErrInvalidConfiguration  wrong dependent or neighbor count, reused atom,
//     bad bond length, rotation on a non-rotatable variant.
//   - ErrIndexOutOfRange       an atom index outside the structure.
//   - ErrSpecialPosition       a dependent sits on a special position.
//   - ErrNotInitialised        lifecycle call before Initialise.
//   - ErrNotPlaced             gradients requested before the first Place.
//   - ErrNoReparamSlice        shifts applied before gradients were propagated.
//   - ErrShiftLength           shift vector shorter than the recorded slice.
//   - ErrGradientLength        gradient vector shorter than a site slot.
//   - ErrNoSiteSlot            a dependent has no site gradient slot.
//   - ErrCycleDetected         constraints depend on each other cyclically.
//   - geometry.ErrDegenerateGeometry from Place on collinear or coincident atoms.
package constraints
