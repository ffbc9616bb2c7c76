// Package arena provides a block-based bump allocator for records that share
// a single generation-pass lifetime.
//
// # Memory Management
//
// The arena hands out sub-slices of fixed-size backing blocks. When the
// current block is exhausted a fresh one is appended; exhausted blocks stay
// alive for as long as references into them exist. Nothing is freed
// individually: records are written once, read many times, and discarded
// together by Reset at the start of the next pass.
//
// A single request larger than the block size can never be satisfied by
// growing, so it fails with ErrOutOfMemory. Callers size blocks from table
// statistics up front to rule this out for well-formed inputs.
//
// The arena is not safe for concurrent use; generation passes are
// single-threaded by contract.
package arena

import (
	"errors"
	"fmt"
)

// MinBlockSize is the smallest usable block size.
const MinBlockSize = 128

// DefaultBlockSize is used when no size hint is given.
const DefaultBlockSize = 8192

// ErrOutOfMemory is returned when a single allocation request exceeds the
// arena block size.
var ErrOutOfMemory = errors.New("arena: allocation exceeds block size")

// Stats tracks arena memory usage.
type Stats struct {
	BytesReserved uint64 // total memory backing the blocks
	BytesUsed     uint64 // bytes handed out since the last Reset
	ActiveBlocks  uint64 // blocks currently held
	TotalAllocs   uint64 // allocations since the last Reset
}

// Arena is a block-based bump allocator.
type Arena struct {
	blockSize int
	blocks    [][]byte
	off       int
	stats     Stats
}

// New creates an arena with the given block size. A size below MinBlockSize
// is raised to it; zero selects DefaultBlockSize. The first block is
// allocated lazily on first use.
func New(blockSize int) *Arena {
	a := &Arena{}
	a.Reset(blockSize)
	return a
}

// Reset discards all blocks and re-arms the arena with a new block size,
// invalidating every slice previously handed out.
func (a *Arena) Reset(blockSize int) {
	if blockSize == 0 {
		blockSize = DefaultBlockSize
	}
	if blockSize < MinBlockSize {
		blockSize = MinBlockSize
	}
	a.blockSize = blockSize
	a.blocks = nil
	a.off = 0
	a.stats = Stats{}
}

// BlockSize returns the current block size.
func (a *Arena) BlockSize() int {
	return a.blockSize
}

// Alloc returns a zeroed sub-slice of n bytes owned by the arena.
// A zero-byte request never consumes a block.
func (a *Arena) Alloc(n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	if n > a.blockSize {
		return nil, fmt.Errorf("%w: requested %d, block size %d", ErrOutOfMemory, n, a.blockSize)
	}
	if len(a.blocks) == 0 || a.off+n > a.blockSize {
		a.blocks = append(a.blocks, make([]byte, a.blockSize))
		a.off = 0
		a.stats.ActiveBlocks++
		a.stats.BytesReserved += uint64(a.blockSize)
	}
	cur := a.blocks[len(a.blocks)-1]
	buf := cur[a.off : a.off+n : a.off+n]
	a.off += n
	a.stats.BytesUsed += uint64(n)
	a.stats.TotalAllocs++
	return buf, nil
}

// Copy allocates len(b) bytes and copies b into them.
func (a *Arena) Copy(b []byte) ([]byte, error) {
	dst, err := a.Alloc(len(b))
	if err != nil {
		return nil, err
	}
	copy(dst, b)
	return dst, nil
}

// Stats returns the current arena statistics.
func (a *Arena) Stats() Stats {
	return a.stats
}

// Usage returns the used fraction of reserved memory as a percentage.
func (a *Arena) Usage() float64 {
	if a.stats.BytesReserved == 0 {
		return 0
	}
	return float64(a.stats.BytesUsed) / float64(a.stats.BytesReserved) * 100
}

func (a *Arena) String() string {
	return fmt.Sprintf("Arena{blocks: %d, reserved: %d B, used: %d B, usage: %.1f%%, allocs: %d}",
		a.stats.ActiveBlocks, a.stats.BytesReserved, a.stats.BytesUsed, a.Usage(), a.stats.TotalAllocs)
}
