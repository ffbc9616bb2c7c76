package mutgen

import "github.com/hupe1980/mutgen/rng"

type options struct {
	alphabet      Alphabet
	source        rng.Source
	blockSize     int
	maxRejections int
	logger        *Logger
}

// Option configures Generator construction.
type Option func(*options)

// WithAlphabet selects the substitution model. Default is AlphabetBinary.
func WithAlphabet(a Alphabet) Option {
	return func(o *options) {
		o.alphabet = a
	}
}

// WithRNG injects the random draw source. The generator owns the source
// exclusively; pass a freshly seeded source per generator for reproducible
// runs. Default is rng.New(1).
func WithRNG(src rng.Source) Option {
	return func(o *options) {
		if src != nil {
			o.source = src
		}
	}
}

// WithBlockSize sets an advisory arena block size hint in bytes. The
// generator raises it as needed to satisfy the largest single allocation
// implied by the input tables.
func WithBlockSize(n int) Option {
	return func(o *options) {
		o.blockSize = n
	}
}

// WithMaxRejections caps the rejection-sampling attempts per mutation
// position before generation fails with ErrTooManyRejections.
// Default is DefaultMaxRejections.
func WithMaxRejections(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxRejections = n
		}
	}
}

// WithLogger sets the logger. Default discards all output.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// GenerateOptions controls a single Generate call.
type GenerateOptions struct {
	// KeepSites preloads the existing site/mutation rows into the registry
	// before generation instead of discarding them, merging old and new
	// mutations in the output.
	KeepSites bool
}

// KeepSites enables import mode for one Generate call.
func KeepSites() func(*GenerateOptions) {
	return func(o *GenerateOptions) {
		o.KeepSites = true
	}
}
