// Package restraints evaluates bond-distance restraints and adds their
// gradients to the raw crystallographic gradient vector.
//
// A BondProxy ties atoms I and J to an ideal distance d₀ with weight w:
//
//	δ = d₀ − d,  residual = w·δ²,
//	∂residual/∂xᵢ = −2·w·δ/d · (xᵢ − xⱼ),  ∂residual/∂xⱼ = −∂residual/∂xᵢ.
//
// Gradients are computed in Cartesian space and converted to fractional
// coordinates before they are added at the atoms' site slots, which is where
// riding constraints expect raw gradients to be.
//
// Errors:
//
//   - ErrIndexOutOfRange  an atom index outside the structure, or I == J.
//   - ErrBadWeight        a non-positive weight or ideal distance.
//   - ErrGradientLength   the gradient vector is shorter than a site slot.
package restraints
