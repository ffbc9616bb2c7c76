package mutgen

import (
	"fmt"
	"math"
	"time"

	"github.com/hupe1980/mutgen/internal/arena"
	"github.com/hupe1980/mutgen/internal/siteset"
	"github.com/hupe1980/mutgen/ratemap"
	"github.com/hupe1980/mutgen/rng"
	"github.com/hupe1980/mutgen/tables"
)

// DefaultMaxRejections caps position rejection sampling per mutation.
// With continuous positions a collision is already rare; hitting the cap
// means the local rate is pathological for the interval width.
const DefaultMaxRejections = 100

// Generator overlays mutations onto a genealogy. Construct with New,
// configure the rate map and time interval, then call Generate.
//
// A Generator is not safe for concurrent use and Generate calls must not
// overlap on the same instance. Calls are otherwise independent: the arena
// and site registry are rebuilt from scratch every time.
type Generator struct {
	alphabet      Alphabet
	source        rng.Source
	blockSize     int
	maxRejections int
	logger        *Logger

	rateMap   *ratemap.Map
	startTime float64
	endTime   float64

	arena *arena.Arena
	sites *siteset.Set
}

// New creates a Generator. The default configuration uses the binary
// alphabet, a rate of zero everywhere, an unrestricted time interval, and a
// fixed-seed random source.
func New(opts ...Option) (*Generator, error) {
	o := options{
		alphabet:      AlphabetBinary,
		source:        rng.New(1),
		maxRejections: DefaultMaxRejections,
		logger:        NoopLogger(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if !o.alphabet.Valid() {
		return nil, fmt.Errorf("%w: alphabet %d", ErrBadParamValue, o.alphabet)
	}

	rm, err := ratemap.Uniform(0)
	if err != nil {
		return nil, err
	}
	return &Generator{
		alphabet:      o.alphabet,
		source:        o.source,
		blockSize:     o.blockSize,
		maxRejections: o.maxRejections,
		logger:        o.logger,
		rateMap:       rm,
		startTime:     math.Inf(-1),
		endTime:       math.Inf(1),
		arena:         arena.New(o.blockSize),
		sites:         siteset.New(),
	}, nil
}

// SetRate applies a single genome-wide mutation rate, replacing the current
// rate map.
func (g *Generator) SetRate(rate float64) error {
	rm, err := ratemap.Uniform(rate)
	if err != nil {
		return err
	}
	g.rateMap = rm
	return nil
}

// SetRateMap replaces the rate map with one built from breakpoint and rate
// slices. On validation failure the previous map is left untouched.
func (g *Generator) SetRateMap(positions, rates []float64) error {
	rm, err := ratemap.New(positions, rates)
	if err != nil {
		return err
	}
	g.rateMap = rm
	return nil
}

// SetTimeInterval restricts mutations to the portion of each branch inside
// [start, end]. end < start fails with ErrBadParamValue.
func (g *Generator) SetTimeInterval(start, end float64) error {
	if end < start {
		return fmt.Errorf("%w: time interval [%v, %v]", ErrBadParamValue, start, end)
	}
	g.startTime = start
	g.endTime = end
	return nil
}

// Generate runs one mutation pass over the collection: it validates the
// input, optionally imports existing sites (KeepSites), generates new
// mutations edge by edge, and rewrites the site and mutation tables from the
// registry.
//
// On failure the output tables are in an unspecified state and the caller
// must regenerate; there is no partial recovery.
func (g *Generator) Generate(tc *tables.Collection, optFns ...func(*GenerateOptions)) error {
	var opts GenerateOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	start := time.Now()
	err := g.generate(tc, opts)
	g.logger.LogGenerate(tc.Edges.NumRows(), tc.Sites.NumRows(), tc.Mutations.NumRows(),
		opts.KeepSites, time.Since(start), err)
	return err
}

func (g *Generator) generate(tc *tables.Collection, opts GenerateOptions) error {
	g.resetArena(tc)
	g.sites.Reset(tc.Sites.NumRows(), tc.Mutations.NumRows()+1)

	if err := tc.CheckIntegrity(); err != nil {
		return err
	}
	if g.rateMap.LastPosition() >= tc.SequenceLength {
		return fmt.Errorf("%w: last breakpoint %v, sequence length %v",
			ErrIncompatibleRateMap, g.rateMap.LastPosition(), tc.SequenceLength)
	}

	if opts.KeepSites {
		if err := g.importSites(tc); err != nil {
			return err
		}
	}
	tc.Sites.Clear()
	tc.Mutations.Clear()

	if err := g.placeMutations(tc); err != nil {
		return err
	}
	return g.populateTables(tc)
}

// resetArena rebuilds the arena with a block size covering the largest
// single allocation the input tables can imply: each string column copied
// whole, plus one byte of headroom.
func (g *Generator) resetArena(tc *tables.Collection) {
	blockSize := g.blockSize
	for _, n := range []int{
		1 + tc.Sites.AncestralStateLength(),
		1 + tc.Sites.MetadataLength(),
		1 + tc.Mutations.DerivedStateLength(),
		1 + tc.Mutations.MetadataLength(),
	} {
		if n > blockSize {
			blockSize = n
		}
	}
	g.arena.Reset(blockSize)
}

// placeMutations is the core sampling loop. The draw order below is part of
// the observable contract: edges in table order, rate-map sub-intervals left
// to right, then per mutation the position draws followed by the transition
// draw.
func (g *Generator) placeMutations(tc *tables.Collection) error {
	transitions := g.alphabet.transitions()
	numTransitions := uint64(len(transitions))

	for j := 0; j < tc.Edges.NumRows(); j++ {
		left := tc.Edges.Left[j]
		edgeRight := tc.Edges.Right[j]
		child := tc.Edges.Child[j]
		parent := tc.Edges.Parent[j]

		branchStart := math.Max(g.startTime, tc.Nodes.Time[child])
		branchEnd := math.Min(g.endTime, tc.Nodes.Time[parent])
		branchLength := branchEnd - branchStart
		if branchLength <= 0 {
			// The time window excludes this edge entirely.
			continue
		}

		mapIndex := g.rateMap.IndexOf(left)
		a := left
		for a < edgeRight {
			b := math.Min(edgeRight, g.rateMap.End(mapIndex, tc.SequenceLength))
			mean := branchLength * (b - a) * g.rateMap.Rate(mapIndex)
			count := g.source.Poisson(mean)
			for l := uint64(0); l < count; l++ {
				position, err := g.samplePosition(a, b)
				if err != nil {
					return err
				}
				tr := transitions[g.source.UintN(numTransitions)]
				err = g.sites.Insert(siteset.Site{
					Position:       position,
					AncestralState: tr.ancestral,
				}, []siteset.Mutation{{
					Node:         child,
					Parent:       siteset.NullParent,
					DerivedState: tr.derived,
					Generated:    true,
				}})
				if err != nil {
					return translateError(err)
				}
			}
			mapIndex++
			a = b
		}
	}
	return nil
}

// samplePosition rejection-samples a position in [a, b) until it does not
// collide with a registered site, up to the configured attempt cap.
func (g *Generator) samplePosition(a, b float64) (float64, error) {
	for attempt := 0; attempt < g.maxRejections; attempt++ {
		position := g.source.Uniform(a, b)
		if !g.sites.Contains(position) {
			return position, nil
		}
	}
	return 0, fmt.Errorf("%w: %d attempts in [%v, %v)", ErrTooManyRejections, g.maxRejections, a, b)
}
