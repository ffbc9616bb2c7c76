package mutgen

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/mutgen/internal/arena"
	"github.com/hupe1980/mutgen/internal/siteset"
)

func TestTranslateError(t *testing.T) {
	assert.NoError(t, translateError(nil))

	// Internal errors map onto the public sentinels; the original stays
	// reachable through the wrap chain.
	err := translateError(fmt.Errorf("copy ancestral state: %w", arena.ErrOutOfMemory))
	assert.ErrorIs(t, err, ErrOutOfMemory)
	assert.ErrorIs(t, err, arena.ErrOutOfMemory)

	err = translateError(fmt.Errorf("%w: 2.5", siteset.ErrDuplicatePosition))
	assert.ErrorIs(t, err, ErrDuplicateSitePosition)
	assert.ErrorIs(t, err, siteset.ErrDuplicatePosition)

	// Everything else passes through unchanged.
	other := errors.New("unrelated")
	assert.Same(t, other, translateError(other))
}
