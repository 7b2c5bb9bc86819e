// Package riding places hydrogen atoms on geometric riding constraints
// during crystal structure refinement.
//
// A riding hydrogen has no independent site parameters. Its position is
// generated from the pivot it is bonded to, the pivot's heavy-atom
// neighbors and a handful of auxiliary parameters (bond length, azimuth).
// The chain rule then folds the hydrogen's site gradient back onto the
// pivot and onto those auxiliaries.
//
// Subpackages:
//
//	cell/        — unit cell metric: fractional ⇄ Cartesian sites and gradients
//	xray/        — scatterers, refinement flags, site-gradient parameter map
//	frame/       — right-handed orthonormal local frame around a pivot
//	geometry/    — X–H3, >CH2, >CH and aromatic/amide placement with derivatives
//	constraints/ — riding constraint lifecycle, registry and ordered constraint set
//	restraints/  — harmonic bond restraints and their least-squares target
//	refine/      — steepest-descent refinement cycle over constrained structures
//	session/     — YAML refinement sessions: load, validate, build, capture
//	cmd/riding/  — CLI: order, place and cycle over a session file
//
// Typical flow:
//
//	s, _ := session.LoadFile("model.yaml")
//	r, _ := s.Build()
//	_, _ = r.Run(ctx, 10, 0.01)
//	_ = session.Save(os.Stdout, session.Capture(r))
//
//	go install github.com/katalvlaran/riding/cmd/riding@latest
package riding
