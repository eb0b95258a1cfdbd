// Package forcefield provides the standard bonded force kinds and turns
// them into registry terms: parameter buffers, device snippets, and the
// matching host routines.
//
// Each force owns its per-term parameters and registers itself:
//
//	ff := &forcefield.HarmonicBondForce{Bonds: bonds, ForceGroup: 0}
//	err := ff.AddTo(ctx, reg)
//
// Kinds: harmonic_bond (arity 2), harmonic_angle (arity 3),
// periodic_torsion (arity 4). FromConfig builds forces and the system from
// a loaded configuration.
package forcefield
