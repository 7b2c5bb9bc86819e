// Package geometry implements the placement models for geometrically
// constrained hydrogen atoms. Each model maps the Cartesian position of a pivot
// atom, the positions of its bonded neighbors and a few auxiliary parameters to
// the Cartesian positions of the dependent hydrogens, together with the
// derivatives of those positions with respect to each auxiliary parameter.
//
// Variants:
//
//   - TerminalXH3       Y–XH₁₋₃: tetrahedral angles, free azimuth φ about Y–X.
//     x_i = x_X + l·(sin τ·(cos φ_i·e0 + sin φ_i·e1) + e2/3),
//     φ_i = φ + i·120°, τ = arccos(−1/3).
//   - SecondaryCH2      X–CH₂–Y: both H in the plane bisecting X–C–Y,
//     half-angle θ = θ0 − k·|XY|².
//   - TertiaryCH        X,Y,Z–C–H: H opposite the three bonds.
//   - AromaticOrAmideH  X–C(H)–Y or X–N(H)–Y: H on the external bisector.
//
// Parameters:
//
//   - BondLength  the X–H distance l; free when the Stretching mode is set.
//   - Azimuth     φ in degrees; free when the Rotating mode is set. Only
//     TerminalXH3 is rotatable.
//
// Derivatives are returned for every parameter a variant supports, whether or
// not it is active; ActiveParams selects the ones a refinement sees, always in
// the order BondLength, Azimuth.
//
// Errors:
//
//   - ErrInvalidConfiguration  wrong number of dependents for the variant.
//   - ErrNeighborCount         wrong number of neighbor positions.
//   - ErrDegenerateGeometry    coincident atoms or collinear bonds.
package geometry
