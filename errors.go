package mutgen

import (
	"errors"
	"fmt"

	"github.com/hupe1980/mutgen/internal/arena"
	"github.com/hupe1980/mutgen/internal/siteset"
)

var (
	// ErrBadParamValue is returned for an invalid alphabet or a time
	// interval with end < start.
	ErrBadParamValue = errors.New("invalid parameter value")

	// ErrIncompatibleRateMap is returned when the rate map's last breakpoint
	// is not strictly below the genealogy's sequence length.
	ErrIncompatibleRateMap = errors.New("rate map does not span the sequence")

	// ErrTooManyRejections is returned when position rejection sampling
	// exceeds the configured attempt cap. This indicates a pathologically
	// high local mutation rate relative to the interval width.
	ErrTooManyRejections = errors.New("too many rejected position samples")

	// ErrDuplicateSitePosition is returned when two sites collide at the
	// exact same position, typically while importing existing tables.
	ErrDuplicateSitePosition = errors.New("duplicate site position")

	// ErrOutOfMemory is returned when the arena cannot satisfy an
	// allocation. Generation aborts; the output tables are unspecified.
	ErrOutOfMemory = errors.New("arena exhausted")
)

// translateError maps internal error values onto the public contract.
// The original underlying error can be accessed via errors.Unwrap.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, arena.ErrOutOfMemory) {
		return fmt.Errorf("%w: %w", ErrOutOfMemory, err)
	}
	if errors.Is(err, siteset.ErrDuplicatePosition) {
		return fmt.Errorf("%w: %w", ErrDuplicateSitePosition, err)
	}
	return err
}
