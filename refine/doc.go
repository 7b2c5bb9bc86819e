// Package refine drives the refinement cycle over a structure whose hydrogen
// sites ride on constraints:
//
//	place → restraint target and raw gradients → propagate through the
//	constraints → steepest-descent shifts → apply shifts.
//
// The optimizer is a fixed-step steepest descent. It is enough to exercise
// the reparametrization end to end; a least-squares solver would consume the
// same reduced gradient vector.
//
// Errors:
//
//   - ErrBadStep       a non-positive or non-finite step size, or negative step count.
//   - errors from constraints and restraints are returned wrapped.
package refine
