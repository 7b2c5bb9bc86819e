// Package cell implements the unit-cell geometry used by the riding
// constraints: conversion between fractional and Cartesian coordinates and
// the matching transforms for gradients.
//
// What:
//
//   - UnitCell is built from the six cell parameters a, b, c (Å) and
//     α, β, γ (degrees). The Cartesian frame follows the usual crystallographic
//     convention: a along x, b in the xy plane, c completing a right-handed set.
//   - Orthogonalize / Fractionalize map sites between frames (x = O·f, f = F·x,
//     F = O⁻¹).
//   - OrthogonalizeGradient maps ∂T/∂f to ∂T/∂x (Fᵀ·g), FractionalizeGradient
//     maps ∂T/∂x back to ∂T/∂f (Oᵀ·g).
//
// Why:
//
//   - Sites are stored and refined in fractional coordinates, while every
//     geometric rule (bond lengths, tetrahedral angles) is stated in Cartesian
//     space. Every read and write of a constrained position crosses this boundary,
//     and so does every gradient flowing back to the optimizer.
//
// Complexity:
//
//   - New:        O(1) (one 3×3 inverse).
//   - Transforms: O(1) (one 3×3 matrix-vector product).
//
// Errors:
//
//   - ErrBadParameters  non-positive length, angle outside (0°,180°),
//     or angles that cannot close a cell.
//   - ErrSingularCell   the orthogonalization matrix could not be inverted.
package cell
