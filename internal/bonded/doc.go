// Package bonded fuses many small per-atom-tuple force computations into
// one generated kernel evaluated every simulation step.
//
// A force term is an ordered list of atom tuples of fixed arity plus a
// device-source snippet computing the energy and per-atom forces for one
// tuple. Terms accumulate in a Registry:
//
//   - AddInteraction registers a term with its snippet and group selector
//   - AddArgument registers an extra device buffer usable from snippets
//   - AddPrefixCode injects shared declarations before the kernel body
//
// Initialize packs each term's atom tuples into vector-width index buffers,
// synthesizes the fused kernel source, compiles it through the device
// context, and seals the registry. ComputeInteractions then launches the
// kernel with a bitmask selecting which term groups contribute.
//
// Forces accumulate in fixed point (see the device package) so thousands of
// unordered lanes sum contributions exactly, with no floating-point
// atomics.
package bonded
