// Package xray models the parts of a crystal structure the riding constraints
// touch: scatterer sites, per-scatterer refinement flags, the parameter map that
// locates each site's three gradient components, and the site-symmetry table.
//
// Sites are fractional. Structure couples the scatterers with a cell.UnitCell
// and exposes the Cartesian view every geometric rule is written in.
//
// Scatterer.Flags describes what the target-function evaluator computes
// gradients for; ParameterMap is built from those flags. Structure.ConstraintFlags
// returns a separate copy that constraints are allowed to flip, so the raw
// gradient layout stays stable while the reduced parameter set shrinks.
package xray
