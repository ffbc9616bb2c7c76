// Package tables provides the columnar genealogy tables the mutation
// generator reads and writes: nodes, edges, sites, and mutations, grouped
// into a Collection with a sequence length.
//
// Variable-length string columns (ancestral/derived state, metadata) are
// offset-encoded: one flat byte column plus an offset vector with one more
// entry than there are rows. CheckIntegrity validates the structural
// invariants the generator relies on before a pass.
package tables

import (
	"errors"
	"fmt"
	"math"
)

// NullID marks an absent row reference (e.g. a mutation without a parent).
const NullID int32 = -1

// ErrIntegrity is the sentinel wrapped by all integrity violations.
var ErrIntegrity = errors.New("table integrity violation")

// IntegrityError describes a structural violation in a table row or column.
type IntegrityError struct {
	Table  string
	Row    int
	Reason string
}

func (e *IntegrityError) Error() string {
	if e.Row < 0 {
		return fmt.Sprintf("integrity: %s: %s", e.Table, e.Reason)
	}
	return fmt.Sprintf("integrity: %s row %d: %s", e.Table, e.Row, e.Reason)
}

func (e *IntegrityError) Unwrap() error { return ErrIntegrity }

// ErrBadRow is returned when appending a structurally invalid row.
var ErrBadRow = errors.New("invalid table row")

// column is an offset-encoded variable-length byte column.
type column struct {
	data    []byte
	offsets []uint64
}

func (c *column) ensure() {
	if len(c.offsets) == 0 {
		c.offsets = append(c.offsets, 0)
	}
}

func (c *column) append(b []byte) {
	c.ensure()
	c.data = append(c.data, b...)
	c.offsets = append(c.offsets, uint64(len(c.data)))
}

func (c *column) at(row int) []byte {
	c.ensure()
	return c.data[c.offsets[row]:c.offsets[row+1]]
}

func (c *column) clear() {
	c.data = c.data[:0]
	c.offsets = c.offsets[:0]
}

func (c *column) check(table, name string, numRows int) error {
	c.ensure()
	if len(c.offsets) != numRows+1 {
		return &IntegrityError{Table: table, Row: -1,
			Reason: fmt.Sprintf("%s offsets: %d entries for %d rows", name, len(c.offsets), numRows)}
	}
	if c.offsets[0] != 0 {
		return &IntegrityError{Table: table, Row: -1,
			Reason: fmt.Sprintf("%s offsets must start at 0", name)}
	}
	for i := 1; i < len(c.offsets); i++ {
		if c.offsets[i] < c.offsets[i-1] {
			return &IntegrityError{Table: table, Row: i - 1,
				Reason: fmt.Sprintf("%s offsets decrease", name)}
		}
	}
	if c.offsets[numRows] != uint64(len(c.data)) {
		return &IntegrityError{Table: table, Row: -1,
			Reason: fmt.Sprintf("%s offsets end at %d, data length %d", name, c.offsets[numRows], len(c.data))}
	}
	return nil
}

// NodeTable holds one row per genealogy node.
type NodeTable struct {
	Time  []float64
	Flags []uint32
}

// AddRow appends a node and returns its row index.
func (t *NodeTable) AddRow(time float64, flags uint32) int32 {
	t.Time = append(t.Time, time)
	t.Flags = append(t.Flags, flags)
	return int32(len(t.Time) - 1)
}

// NumRows returns the number of nodes.
func (t *NodeTable) NumRows() int { return len(t.Time) }

// Clear removes all rows.
func (t *NodeTable) Clear() {
	t.Time = t.Time[:0]
	t.Flags = t.Flags[:0]
}

// EdgeTable holds one row per genealogy edge. Row order is the order the
// generator walks edges in, so it is part of the reproducibility contract.
type EdgeTable struct {
	Left   []float64
	Right  []float64
	Parent []int32
	Child  []int32
}

// AddRow appends an edge and returns its row index.
func (t *EdgeTable) AddRow(left, right float64, parent, child int32) int32 {
	t.Left = append(t.Left, left)
	t.Right = append(t.Right, right)
	t.Parent = append(t.Parent, parent)
	t.Child = append(t.Child, child)
	return int32(len(t.Left) - 1)
}

// NumRows returns the number of edges.
func (t *EdgeTable) NumRows() int { return len(t.Left) }

// Clear removes all rows.
func (t *EdgeTable) Clear() {
	t.Left = t.Left[:0]
	t.Right = t.Right[:0]
	t.Parent = t.Parent[:0]
	t.Child = t.Child[:0]
}

// SiteTable holds one row per site with offset-encoded ancestral state and
// metadata columns.
type SiteTable struct {
	Position       []float64
	ancestralState column
	metadata       column
}

// AddRow appends a site and returns its row index.
func (t *SiteTable) AddRow(position float64, ancestralState, metadata []byte) (int32, error) {
	if math.IsNaN(position) || position < 0 {
		return NullID, fmt.Errorf("%w: site position %v", ErrBadRow, position)
	}
	t.Position = append(t.Position, position)
	t.ancestralState.append(ancestralState)
	t.metadata.append(metadata)
	return int32(len(t.Position) - 1), nil
}

// NumRows returns the number of sites.
func (t *SiteTable) NumRows() int { return len(t.Position) }

// AncestralState returns the ancestral state of a row.
func (t *SiteTable) AncestralState(row int) []byte { return t.ancestralState.at(row) }

// Metadata returns the metadata of a row.
func (t *SiteTable) Metadata(row int) []byte { return t.metadata.at(row) }

// AncestralStateLength returns the total byte length of the ancestral state
// column, used for arena sizing.
func (t *SiteTable) AncestralStateLength() int { return len(t.ancestralState.data) }

// MetadataLength returns the total byte length of the metadata column.
func (t *SiteTable) MetadataLength() int { return len(t.metadata.data) }

// Clear removes all rows.
func (t *SiteTable) Clear() {
	t.Position = t.Position[:0]
	t.ancestralState.clear()
	t.metadata.clear()
}

// MutationTable holds one row per mutation with offset-encoded derived state
// and metadata columns. Rows are grouped by site, in site order.
type MutationTable struct {
	Site         []int32
	Node         []int32
	Parent       []int32
	derivedState column
	metadata     column
}

// AddRow appends a mutation and returns its row index.
func (t *MutationTable) AddRow(site, node, parent int32, derivedState, metadata []byte) (int32, error) {
	if site < 0 {
		return NullID, fmt.Errorf("%w: mutation site %d", ErrBadRow, site)
	}
	if parent != NullID && parent < 0 {
		return NullID, fmt.Errorf("%w: mutation parent %d", ErrBadRow, parent)
	}
	t.Site = append(t.Site, site)
	t.Node = append(t.Node, node)
	t.Parent = append(t.Parent, parent)
	t.derivedState.append(derivedState)
	t.metadata.append(metadata)
	return int32(len(t.Site) - 1), nil
}

// NumRows returns the number of mutations.
func (t *MutationTable) NumRows() int { return len(t.Site) }

// DerivedState returns the derived state of a row.
func (t *MutationTable) DerivedState(row int) []byte { return t.derivedState.at(row) }

// Metadata returns the metadata of a row.
func (t *MutationTable) Metadata(row int) []byte { return t.metadata.at(row) }

// DerivedStateLength returns the total byte length of the derived state
// column, used for arena sizing.
func (t *MutationTable) DerivedStateLength() int { return len(t.derivedState.data) }

// MetadataLength returns the total byte length of the metadata column.
func (t *MutationTable) MetadataLength() int { return len(t.metadata.data) }

// Clear removes all rows.
func (t *MutationTable) Clear() {
	t.Site = t.Site[:0]
	t.Node = t.Node[:0]
	t.Parent = t.Parent[:0]
	t.derivedState.clear()
	t.metadata.clear()
}

// Collection groups the genealogy tables over one coordinate space.
type Collection struct {
	SequenceLength float64

	Nodes     NodeTable
	Edges     EdgeTable
	Sites     SiteTable
	Mutations MutationTable
}

// CheckIntegrity validates the structural invariants required before a
// generation pass: a positive sequence length, consistent offset vectors,
// in-range node references, parent-older-than-child edges, and edge
// coordinates inside [0, SequenceLength].
func (c *Collection) CheckIntegrity() error {
	if !(c.SequenceLength > 0) {
		return &IntegrityError{Table: "collection", Row: -1,
			Reason: fmt.Sprintf("sequence length %v must be positive", c.SequenceLength)}
	}

	numNodes := int32(c.Nodes.NumRows())
	for i := 0; i < c.Edges.NumRows(); i++ {
		parent, child := c.Edges.Parent[i], c.Edges.Child[i]
		if parent < 0 || parent >= numNodes {
			return &IntegrityError{Table: "edges", Row: i, Reason: fmt.Sprintf("parent node %d out of range", parent)}
		}
		if child < 0 || child >= numNodes {
			return &IntegrityError{Table: "edges", Row: i, Reason: fmt.Sprintf("child node %d out of range", child)}
		}
		if !(c.Nodes.Time[parent] > c.Nodes.Time[child]) {
			return &IntegrityError{Table: "edges", Row: i, Reason: "parent time must exceed child time"}
		}
		left, right := c.Edges.Left[i], c.Edges.Right[i]
		if left < 0 || right > c.SequenceLength || !(left < right) {
			return &IntegrityError{Table: "edges", Row: i,
				Reason: fmt.Sprintf("interval [%v, %v) invalid for sequence length %v", left, right, c.SequenceLength)}
		}
	}

	if err := c.Sites.ancestralState.check("sites", "ancestral state", c.Sites.NumRows()); err != nil {
		return err
	}
	if err := c.Sites.metadata.check("sites", "metadata", c.Sites.NumRows()); err != nil {
		return err
	}
	if err := c.Mutations.derivedState.check("mutations", "derived state", c.Mutations.NumRows()); err != nil {
		return err
	}
	if err := c.Mutations.metadata.check("mutations", "metadata", c.Mutations.NumRows()); err != nil {
		return err
	}

	numSites := int32(c.Sites.NumRows())
	numMutations := int32(c.Mutations.NumRows())
	for i := 0; i < c.Mutations.NumRows(); i++ {
		if s := c.Mutations.Site[i]; s < 0 || s >= numSites {
			return &IntegrityError{Table: "mutations", Row: i, Reason: fmt.Sprintf("site %d out of range", s)}
		}
		if i > 0 && c.Mutations.Site[i] < c.Mutations.Site[i-1] {
			return &IntegrityError{Table: "mutations", Row: i, Reason: "rows must be sorted by site"}
		}
		if n := c.Mutations.Node[i]; n < 0 || n >= numNodes {
			return &IntegrityError{Table: "mutations", Row: i, Reason: fmt.Sprintf("node %d out of range", n)}
		}
		if p := c.Mutations.Parent[i]; p != NullID && (p < 0 || p >= numMutations || p >= int32(i)) {
			return &IntegrityError{Table: "mutations", Row: i, Reason: fmt.Sprintf("parent %d must be an earlier row", p)}
		}
	}
	return nil
}
