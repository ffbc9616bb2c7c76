// Package siteset provides a position-ordered, duplicate-rejecting registry
// of mutation sites for a single generation pass.
//
// Sites and their mutations live in growable slabs; the ordering structure is
// an AVL tree of slab indices keyed by genomic position. Within a pass the
// set is append-only, so the tree never rebalances for deletion and slab
// records are never moved or freed individually. String payloads (states,
// metadata) are expected to be arena-owned byte slices provided by the
// caller.
package siteset

import (
	"errors"
	"fmt"
	"iter"
)

// NullParent marks a mutation with no parent mutation at its site.
const NullParent int32 = -1

// ErrDuplicatePosition is returned when inserting a site at a position that
// is already registered. The set never silently overwrites.
var ErrDuplicatePosition = errors.New("siteset: duplicate site position")

// Mutation is one mutation carried by a site. Parent is the row index of
// the parent mutation in the source mutation table (always a mutation at
// the same site), or NullParent for a root mutation; the exporter rewrites
// it for the rebuilt table.
type Mutation struct {
	Node         int32
	Parent       int32
	DerivedState []byte
	Metadata     []byte
	Generated    bool // false for mutations rehydrated from existing tables
}

// Site is one registered site. Its mutations are held in the set's mutation
// slab; access them through Set.Mutations.
type Site struct {
	Position       float64
	AncestralState []byte
	Metadata       []byte

	firstMut int32
	numMut   int32
}

const nilNode int32 = -1

type avlNode struct {
	left   int32
	right  int32
	height int32
	site   int32
}

// Set is the position-ordered site registry. The zero value is not usable;
// construct with New.
type Set struct {
	sites []Site
	muts  []Mutation
	nodes []avlNode
	root  int32
}

// New creates an empty registry.
func New() *Set {
	return &Set{root: nilNode}
}

// Reset clears the registry and pre-sizes the slabs for the expected number
// of sites and mutations. Previously returned Site pointers and mutation
// slices become invalid.
func (s *Set) Reset(siteCap, mutCap int) {
	s.sites = make([]Site, 0, siteCap)
	s.muts = make([]Mutation, 0, mutCap)
	s.nodes = make([]avlNode, 0, siteCap)
	s.root = nilNode
}

// Len returns the number of registered sites.
func (s *Set) Len() int {
	return len(s.sites)
}

// NumMutations returns the total number of mutations across all sites.
func (s *Set) NumMutations() int {
	return len(s.muts)
}

// Contains reports whether a site exists at exactly the given position.
func (s *Set) Contains(position float64) bool {
	_, ok := s.Find(position)
	return ok
}

// Find returns the site at exactly the given position. The returned pointer
// is valid until the next Insert or Reset.
func (s *Set) Find(position float64) (*Site, bool) {
	i := s.root
	for i != nilNode {
		site := &s.sites[s.nodes[i].site]
		switch {
		case position < site.Position:
			i = s.nodes[i].left
		case position > site.Position:
			i = s.nodes[i].right
		default:
			return site, true
		}
	}
	return nil, false
}

// Insert registers a site with its mutations. The mutation slice is copied
// into the set's slab. Fails with ErrDuplicatePosition when a site already
// exists at the same position, leaving the set unchanged.
func (s *Set) Insert(site Site, muts []Mutation) error {
	if s.Contains(site.Position) {
		return fmt.Errorf("%w: %v", ErrDuplicatePosition, site.Position)
	}

	site.firstMut = int32(len(s.muts))
	site.numMut = int32(len(muts))
	s.muts = append(s.muts, muts...)

	siteIdx := int32(len(s.sites))
	s.sites = append(s.sites, site)

	nodeIdx := int32(len(s.nodes))
	s.nodes = append(s.nodes, avlNode{left: nilNode, right: nilNode, height: 1, site: siteIdx})
	s.root = s.insert(s.root, nodeIdx)
	return nil
}

// Mutations returns the mutation list of a site, in insertion order.
func (s *Set) Mutations(site *Site) []Mutation {
	return s.muts[site.firstMut : site.firstMut+site.numMut]
}

// Ascend iterates sites in ascending position order. Inserting during
// iteration is not supported.
func (s *Set) Ascend() iter.Seq[*Site] {
	return func(yield func(*Site) bool) {
		s.ascend(s.root, yield)
	}
}

func (s *Set) ascend(i int32, yield func(*Site) bool) bool {
	if i == nilNode {
		return true
	}
	n := s.nodes[i]
	if !s.ascend(n.left, yield) {
		return false
	}
	if !yield(&s.sites[n.site]) {
		return false
	}
	return s.ascend(n.right, yield)
}

func (s *Set) height(i int32) int32 {
	if i == nilNode {
		return 0
	}
	return s.nodes[i].height
}

func (s *Set) fix(i int32) {
	l, r := s.height(s.nodes[i].left), s.height(s.nodes[i].right)
	if l > r {
		s.nodes[i].height = l + 1
	} else {
		s.nodes[i].height = r + 1
	}
}

func (s *Set) balance(i int32) int32 {
	return s.height(s.nodes[i].left) - s.height(s.nodes[i].right)
}

func (s *Set) rotateRight(y int32) int32 {
	x := s.nodes[y].left
	s.nodes[y].left = s.nodes[x].right
	s.nodes[x].right = y
	s.fix(y)
	s.fix(x)
	return x
}

func (s *Set) rotateLeft(x int32) int32 {
	y := s.nodes[x].right
	s.nodes[x].right = s.nodes[y].left
	s.nodes[y].left = x
	s.fix(x)
	s.fix(y)
	return y
}

// insert assumes the key is not present; Insert checks first.
func (s *Set) insert(root, nodeIdx int32) int32 {
	if root == nilNode {
		return nodeIdx
	}
	key := s.sites[s.nodes[nodeIdx].site].Position
	if key < s.sites[s.nodes[root].site].Position {
		s.nodes[root].left = s.insert(s.nodes[root].left, nodeIdx)
	} else {
		s.nodes[root].right = s.insert(s.nodes[root].right, nodeIdx)
	}
	s.fix(root)

	bf := s.balance(root)
	if bf > 1 {
		if key >= s.sites[s.nodes[s.nodes[root].left].site].Position {
			s.nodes[root].left = s.rotateLeft(s.nodes[root].left)
		}
		return s.rotateRight(root)
	}
	if bf < -1 {
		if key < s.sites[s.nodes[s.nodes[root].right].site].Position {
			s.nodes[root].right = s.rotateRight(s.nodes[root].right)
		}
		return s.rotateLeft(root)
	}
	return root
}
