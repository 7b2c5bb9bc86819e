// Package session persists a riding-hydrogen model as YAML.
//
// A session holds the unit cell, the scatterers (by label), the riding
// constraints with their construction parameters and current auxiliary
// values, and the bond restraints. Atoms are referenced by label.
//
//	id: 6f1c...                # uuid, assigned on load when absent
//	cell: {a: 10, b: 10, c: 10, alpha: 90, beta: 90, gamma: 90}
//	scatterers:
//	  - {label: C1, site: [0, 0, 0]}
//	  - {label: H1, site: [0.1, 0, 0]}
//	constraints:
//	  - kind: terminal_xh3
//	    pivot: C1
//	    neighbors: [C2]
//	    dependents: [H1, H2, H3]
//	    bond_length: 0.96
//	restraints:
//	  - {atoms: [C1, H1], ideal: 0.96, weight: 400}
//
// Load → Build gives a placed refine.Refinement; Capture → Save writes its
// current state. Floats are written with the shortest exact representation,
// so captured values reload bit for bit.
//
// Errors:
//
//   - ErrInvalidSession  a document that fails validation or references unknown labels.
//   - ErrUnknownKind     an unknown constraint kind (also matches ErrInvalidSession).
package session
