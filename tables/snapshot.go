package tables

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"golang.org/x/sync/errgroup"
)

// Snapshot format:
//
//	[FileHeader]
//	[SectionHeader][payload]   x4 (nodes, edges, sites, mutations)
//	[Checksum uint32]          CRC32 (IEEE) of all section headers + payloads
//
// A SectionHeader with CompressedSize == 0 marks an uncompressed payload.

const (
	// SnapshotMagic identifies snapshot files (ASCII: "MUTG").
	SnapshotMagic = 0x4D555447
	// SnapshotVersion is the current format version.
	SnapshotVersion = 0x00010000

	numSections = 4
)

// CompressionType selects the section compression algorithm.
type CompressionType uint8

const (
	// CompressionNone stores sections uncompressed.
	CompressionNone CompressionType = 0
	// CompressionLZ4 uses LZ4 block compression (fast).
	CompressionLZ4 CompressionType = 1
	// CompressionZSTD uses zstd block compression (better ratio).
	CompressionZSTD CompressionType = 2
)

var (
	// ErrInvalidMagic is returned when a snapshot does not start with
	// SnapshotMagic.
	ErrInvalidMagic = errors.New("invalid snapshot magic")
	// ErrInvalidVersion is returned for unsupported snapshot versions.
	ErrInvalidVersion = errors.New("unsupported snapshot version")
	// ErrChecksumMismatch is returned when the stored checksum does not
	// match the snapshot contents.
	ErrChecksumMismatch = errors.New("snapshot checksum mismatch")
	// ErrSnapshotCorrupt is returned for malformed snapshot contents.
	ErrSnapshotCorrupt = errors.New("snapshot corrupt")
)

type fileHeader struct {
	Magic          uint32
	Version        uint32
	Compression    uint8
	Padding        [3]byte
	SequenceLength float64
}

type sectionHeader struct {
	UncompressedSize uint32
	CompressedSize   uint32 // 0 means stored uncompressed
}

// WriteSnapshot serializes the collection to w. Sections are compressed
// concurrently and written in a fixed order; a trailing CRC32 protects the
// section data.
func WriteSnapshot(w io.Writer, c *Collection, compression CompressionType) error {
	payloads := [numSections][]byte{
		encodeNodes(&c.Nodes),
		encodeEdges(&c.Edges),
		encodeSites(&c.Sites),
		encodeMutations(&c.Mutations),
	}

	var compressed [numSections][]byte
	g := new(errgroup.Group)
	for i := range payloads {
		g.Go(func() error {
			var err error
			compressed[i], err = compressSection(payloads[i], compression)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	header := fileHeader{
		Magic:          SnapshotMagic,
		Version:        SnapshotVersion,
		Compression:    uint8(compression),
		SequenceLength: c.SequenceLength,
	}
	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return err
	}

	crc := crc32.NewIEEE()
	body := io.MultiWriter(w, crc)
	for i := range payloads {
		sh := sectionHeader{UncompressedSize: uint32(len(payloads[i]))}
		if compressed[i] != nil {
			sh.CompressedSize = uint32(len(compressed[i]))
		}
		if err := binary.Write(body, binary.LittleEndian, &sh); err != nil {
			return err
		}
		data := compressed[i]
		if data == nil {
			data = payloads[i]
		}
		if _, err := body.Write(data); err != nil {
			return err
		}
	}
	return binary.Write(w, binary.LittleEndian, crc.Sum32())
}

// ReadSnapshot deserializes a collection from r, verifying the checksum.
func ReadSnapshot(r io.Reader) (*Collection, error) {
	var header fileHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, err
	}
	if header.Magic != SnapshotMagic {
		return nil, fmt.Errorf("%w: got 0x%08x", ErrInvalidMagic, header.Magic)
	}
	if header.Version != SnapshotVersion {
		return nil, fmt.Errorf("%w: got 0x%08x", ErrInvalidVersion, header.Version)
	}

	rest, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(rest) < 4 {
		return nil, fmt.Errorf("%w: truncated", ErrSnapshotCorrupt)
	}
	body, sum := rest[:len(rest)-4], binary.LittleEndian.Uint32(rest[len(rest)-4:])
	if got := crc32.ChecksumIEEE(body); got != sum {
		return nil, fmt.Errorf("%w: expected 0x%08x, got 0x%08x", ErrChecksumMismatch, sum, got)
	}

	compression := CompressionType(header.Compression)
	var payloads [numSections][]byte
	off := 0
	for i := 0; i < numSections; i++ {
		if off+8 > len(body) {
			return nil, fmt.Errorf("%w: truncated section header", ErrSnapshotCorrupt)
		}
		sh := sectionHeader{
			UncompressedSize: binary.LittleEndian.Uint32(body[off:]),
			CompressedSize:   binary.LittleEndian.Uint32(body[off+4:]),
		}
		off += 8
		size := int(sh.CompressedSize)
		if size == 0 {
			size = int(sh.UncompressedSize)
		}
		if off+size > len(body) {
			return nil, fmt.Errorf("%w: section extends beyond data", ErrSnapshotCorrupt)
		}
		payloads[i], err = decompressSection(body[off:off+size], sh, compression)
		if err != nil {
			return nil, err
		}
		off += size
	}

	c := &Collection{SequenceLength: header.SequenceLength}
	if err := decodeNodes(payloads[0], &c.Nodes); err != nil {
		return nil, err
	}
	if err := decodeEdges(payloads[1], &c.Edges); err != nil {
		return nil, err
	}
	if err := decodeSites(payloads[2], &c.Sites); err != nil {
		return nil, err
	}
	if err := decodeMutations(payloads[3], &c.Mutations); err != nil {
		return nil, err
	}
	return c, nil
}

// compressSection returns the compressed payload, or nil when the section
// should be stored uncompressed (incompressible or compression disabled).
func compressSection(data []byte, compression CompressionType) ([]byte, error) {
	if compression == CompressionNone || len(data) == 0 {
		return nil, nil
	}
	var compressed []byte
	switch compression {
	case CompressionLZ4:
		bound := lz4.CompressBlockBound(len(data))
		buf := make([]byte, bound)
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, nil // incompressible
		}
		compressed = buf[:n]
	case CompressionZSTD:
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, err
		}
		compressed = enc.EncodeAll(data, nil)
		_ = enc.Close()
	default:
		return nil, fmt.Errorf("unknown compression type %d", compression)
	}
	if len(compressed) >= len(data) {
		return nil, nil
	}
	return compressed, nil
}

func decompressSection(data []byte, sh sectionHeader, compression CompressionType) ([]byte, error) {
	if sh.CompressedSize == 0 {
		return data, nil
	}
	out := make([]byte, sh.UncompressedSize)
	switch compression {
	case CompressionLZ4:
		n, err := lz4.UncompressBlock(data, out)
		if err != nil {
			return nil, err
		}
		if uint32(n) != sh.UncompressedSize {
			return nil, fmt.Errorf("%w: decompressed size mismatch", ErrSnapshotCorrupt)
		}
		return out, nil
	case CompressionZSTD:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		decoded, err := dec.DecodeAll(data, out[:0])
		if err != nil {
			return nil, err
		}
		if uint32(len(decoded)) != sh.UncompressedSize {
			return nil, fmt.Errorf("%w: decompressed size mismatch", ErrSnapshotCorrupt)
		}
		return decoded, nil
	default:
		return nil, fmt.Errorf("%w: compressed section with compression type %d", ErrSnapshotCorrupt, compression)
	}
}

func encodeNodes(t *NodeTable) []byte {
	var buf bytes.Buffer
	writeCount(&buf, t.NumRows())
	writeSlice(&buf, t.Time)
	writeSlice(&buf, t.Flags)
	return buf.Bytes()
}

func decodeNodes(b []byte, t *NodeTable) error {
	r := bytes.NewReader(b)
	n, err := readCount(r)
	if err != nil {
		return err
	}
	t.Time = make([]float64, n)
	t.Flags = make([]uint32, n)
	return readSlices(r, t.Time, t.Flags)
}

func encodeEdges(t *EdgeTable) []byte {
	var buf bytes.Buffer
	writeCount(&buf, t.NumRows())
	writeSlice(&buf, t.Left)
	writeSlice(&buf, t.Right)
	writeSlice(&buf, t.Parent)
	writeSlice(&buf, t.Child)
	return buf.Bytes()
}

func decodeEdges(b []byte, t *EdgeTable) error {
	r := bytes.NewReader(b)
	n, err := readCount(r)
	if err != nil {
		return err
	}
	t.Left = make([]float64, n)
	t.Right = make([]float64, n)
	t.Parent = make([]int32, n)
	t.Child = make([]int32, n)
	return readSlices(r, t.Left, t.Right, t.Parent, t.Child)
}

func encodeSites(t *SiteTable) []byte {
	var buf bytes.Buffer
	writeCount(&buf, t.NumRows())
	writeSlice(&buf, t.Position)
	writeColumn(&buf, &t.ancestralState)
	writeColumn(&buf, &t.metadata)
	return buf.Bytes()
}

func decodeSites(b []byte, t *SiteTable) error {
	r := bytes.NewReader(b)
	n, err := readCount(r)
	if err != nil {
		return err
	}
	t.Position = make([]float64, n)
	if err := readSlices(r, t.Position); err != nil {
		return err
	}
	if err := readColumn(r, &t.ancestralState, n); err != nil {
		return err
	}
	return readColumn(r, &t.metadata, n)
}

func encodeMutations(t *MutationTable) []byte {
	var buf bytes.Buffer
	writeCount(&buf, t.NumRows())
	writeSlice(&buf, t.Site)
	writeSlice(&buf, t.Node)
	writeSlice(&buf, t.Parent)
	writeColumn(&buf, &t.derivedState)
	writeColumn(&buf, &t.metadata)
	return buf.Bytes()
}

func decodeMutations(b []byte, t *MutationTable) error {
	r := bytes.NewReader(b)
	n, err := readCount(r)
	if err != nil {
		return err
	}
	t.Site = make([]int32, n)
	t.Node = make([]int32, n)
	t.Parent = make([]int32, n)
	if err := readSlices(r, t.Site, t.Node, t.Parent); err != nil {
		return err
	}
	if err := readColumn(r, &t.derivedState, n); err != nil {
		return err
	}
	return readColumn(r, &t.metadata, n)
}

func writeCount(buf *bytes.Buffer, n int) {
	_ = binary.Write(buf, binary.LittleEndian, uint32(n))
}

func readCount(r *bytes.Reader) (int, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return 0, err
	}
	return int(n), nil
}

func writeSlice(buf *bytes.Buffer, v any) {
	_ = binary.Write(buf, binary.LittleEndian, v)
}

func readSlices(r *bytes.Reader, vs ...any) error {
	for _, v := range vs {
		if err := binary.Read(r, binary.LittleEndian, v); err != nil {
			return fmt.Errorf("%w: %w", ErrSnapshotCorrupt, err)
		}
	}
	return nil
}

func writeColumn(buf *bytes.Buffer, c *column) {
	c.ensure()
	writeCount(buf, len(c.data))
	_, _ = buf.Write(c.data)
	_ = binary.Write(buf, binary.LittleEndian, c.offsets)
}

func readColumn(r *bytes.Reader, c *column, numRows int) error {
	dataLen, err := readCount(r)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSnapshotCorrupt, err)
	}
	c.data = make([]byte, dataLen)
	if _, err := io.ReadFull(r, c.data); err != nil {
		return fmt.Errorf("%w: %w", ErrSnapshotCorrupt, err)
	}
	c.offsets = make([]uint64, numRows+1)
	return readSlices(r, c.offsets)
}
