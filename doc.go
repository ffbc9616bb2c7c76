// Package mutgen overlays random point mutations onto a genealogy.
//
// A genealogy is a set of timed nodes connected by genomic-interval edges
// (an ancestral recombination graph encoded as node/edge tables, see the
// tables package). Mutgen walks every edge and drops mutations on it
// according to a piecewise-constant mutation-rate map: per branch segment a
// non-homogeneous Poisson process decides how many mutations fall, and each
// one is placed at a fresh random position, rejecting positions that already
// carry a site.
//
// # Quick Start
//
//	gen, _ := mutgen.New(mutgen.WithAlphabet(mutgen.AlphabetNucleotide))
//	_ = gen.SetRate(1e-2)
//	_ = gen.Generate(tc) // tc is a *tables.Collection
//
// To merge with sites from an earlier pass instead of discarding them:
//
//	_ = gen.Generate(tc, mutgen.KeepSites())
//
// # Reproducibility
//
// The generator consumes a single sequential random stream (rng.Source) in a
// fixed, documented order: edges in table order, rate-map sub-intervals left
// to right, then the per-mutation position and transition draws. Two runs
// with the same seed, genealogy, and rate map produce byte-identical output
// tables. Generation is single-threaded by contract; nothing here is safe
// for concurrent use.
//
// # Memory Model
//
// All per-run records (sites, mutations, state strings) live in an arena
// that is rebuilt at the start of every Generate call and discarded wholesale
// with the run. Block size is derived from the input table statistics; an
// advisory hint can raise it via WithBlockSize.
package mutgen
