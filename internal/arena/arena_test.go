package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocWithinBlock(t *testing.T) {
	a := New(256)

	b1, err := a.Alloc(100)
	require.NoError(t, err)
	assert.Len(t, b1, 100)

	b2, err := a.Alloc(100)
	require.NoError(t, err)

	// Distinct regions: writes must not alias.
	for i := range b1 {
		b1[i] = 0xAA
	}
	for _, v := range b2 {
		assert.EqualValues(t, 0, v)
	}
	assert.EqualValues(t, 1, a.Stats().ActiveBlocks)
}

func TestAllocGrowsByBlock(t *testing.T) {
	a := New(256)

	_, err := a.Alloc(200)
	require.NoError(t, err)
	_, err = a.Alloc(200)
	require.NoError(t, err)
	assert.EqualValues(t, 2, a.Stats().ActiveBlocks)
}

func TestAllocTooLarge(t *testing.T) {
	a := New(256)

	_, err := a.Alloc(257)
	assert.ErrorIs(t, err, ErrOutOfMemory)

	// Boundary request succeeds.
	_, err = a.Alloc(256)
	assert.NoError(t, err)
}

func TestBlockSizeFloors(t *testing.T) {
	a := New(1)
	assert.Equal(t, MinBlockSize, a.BlockSize())

	a = New(0)
	assert.Equal(t, DefaultBlockSize, a.BlockSize())
}

func TestCopy(t *testing.T) {
	a := New(256)

	src := []byte("ACGT")
	dst, err := a.Copy(src)
	require.NoError(t, err)
	assert.Equal(t, src, dst)

	// The copy is detached from the source.
	src[0] = 'T'
	assert.Equal(t, byte('A'), dst[0])
}

func TestCopyEmpty(t *testing.T) {
	a := New(256)

	b, err := a.Copy(nil)
	require.NoError(t, err)
	assert.Empty(t, b)
	assert.EqualValues(t, 0, a.Stats().ActiveBlocks)
}

func TestReset(t *testing.T) {
	a := New(256)
	_, err := a.Alloc(200)
	require.NoError(t, err)

	a.Reset(512)
	assert.Equal(t, 512, a.BlockSize())
	assert.EqualValues(t, 0, a.Stats().ActiveBlocks)

	_, err = a.Alloc(500)
	assert.NoError(t, err)
}
