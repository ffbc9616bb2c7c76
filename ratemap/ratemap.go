// Package ratemap provides validated piecewise-constant mutation rate maps
// over a genomic coordinate space.
//
// A rate map is a sequence of (position, rate) breakpoints. The rate at
// genomic coordinate x is the rate of the last breakpoint at or before x.
// Maps are immutable once constructed; validation happens up front so a
// failed construction never leaves partial state behind.
package ratemap

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrBadSize is returned when the breakpoint slices are empty or of
	// unequal length.
	ErrBadSize = errors.New("rate map must have at least one (position, rate) pair")

	// ErrBadPosition is returned when positions do not start at zero or are
	// not strictly increasing.
	ErrBadPosition = errors.New("rate map positions must start at 0 and be strictly increasing")

	// ErrBadRate is returned when a rate is negative.
	ErrBadRate = errors.New("rate map rates must be non-negative")
)

// Map is an immutable piecewise-constant rate function. The zero value is
// not usable; construct with New or Uniform.
type Map struct {
	positions []float64
	rates     []float64
}

// New builds a rate map from parallel breakpoint and rate slices.
//
// Requirements: len(positions) == len(rates) >= 1, positions[0] == 0,
// positions strictly increasing, all rates >= 0. The input slices are
// copied.
func New(positions, rates []float64) (*Map, error) {
	if len(positions) < 1 || len(positions) != len(rates) {
		return nil, fmt.Errorf("%w: got %d positions, %d rates", ErrBadSize, len(positions), len(rates))
	}
	if positions[0] != 0 {
		return nil, fmt.Errorf("%w: first position is %v", ErrBadPosition, positions[0])
	}
	for i := range positions {
		if i > 0 && positions[i-1] >= positions[i] {
			return nil, fmt.Errorf("%w: positions[%d]=%v, positions[%d]=%v",
				ErrBadPosition, i-1, positions[i-1], i, positions[i])
		}
		if rates[i] < 0 {
			return nil, fmt.Errorf("%w: rates[%d]=%v", ErrBadRate, i, rates[i])
		}
	}
	m := &Map{
		positions: append([]float64(nil), positions...),
		rates:     append([]float64(nil), rates...),
	}
	return m, nil
}

// Uniform builds a single-interval map applying rate across the whole
// sequence.
func Uniform(rate float64) (*Map, error) {
	return New([]float64{0}, []float64{rate})
}

// Size returns the number of breakpoints.
func (m *Map) Size() int {
	return len(m.positions)
}

// Position returns the i-th breakpoint position.
func (m *Map) Position(i int) float64 {
	return m.positions[i]
}

// Rate returns the rate of the i-th interval.
func (m *Map) Rate(i int) float64 {
	return m.rates[i]
}

// End returns the end of the i-th interval: the next breakpoint, or
// sentinel for the last interval. The sentinel is the sequence length the
// map is being applied to.
func (m *Map) End(i int, sentinel float64) float64 {
	if i+1 < len(m.positions) {
		return m.positions[i+1]
	}
	return sentinel
}

// IndexOf returns the index of the interval containing coordinate x.
// x must be >= 0.
func (m *Map) IndexOf(x float64) int {
	// sort.SearchFloat64s returns the insertion point; when the breakpoint
	// there exceeds x the containing interval is the one before it.
	i := sort.SearchFloat64s(m.positions, x)
	if i == len(m.positions) || m.positions[i] > x {
		i--
	}
	return i
}

// LastPosition returns the position of the final breakpoint.
func (m *Map) LastPosition() float64 {
	return m.positions[len(m.positions)-1]
}
