// Package frame builds the local orthonormal frames that anchor riding
// hydrogen geometry on a pivot atom.
//
// What:
//
//   - Build(axis): a fresh right-handed frame (e0, e1, e2) with e2 along axis
//     and e1 chosen by a fixed convention (cross product with the coordinate
//     axis least aligned with e2).
//   - Update(prev, axis): rotates prev so that e2 follows the new axis,
//     e1 = unit(f2 × e0_prev), e2 = f2, e0 = e1 × e2.
//   - BuildOrUpdate(pivot, neighbor, prev): the axis is the neighbor→pivot bond.
//   - FromBonds(pivot, n1, n2): the frame of an X–C–Y fragment, e0 bisecting
//     the two bonds and e2 spanning them.
//
// Why:
//
//   - Any fixed convention for e1 has orientations where the chosen reference
//     axis switches and e1 jumps by a large angle. A terminal group rotating
//     about e2 would then see its azimuth origin jump between two refinement
//     cycles. Update carries the previous frame along instead, so the axes only
//     move as much as the bond does.
//
// Continuity holds for small changes of the axis between calls, which is
// what iterative refinement produces.
//
// Errors:
//
//   - ErrDegenerate  zero-length or non-finite axis, coincident atoms, or
//     collinear bonds in FromBonds.
package frame
