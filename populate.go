package mutgen

import (
	"github.com/hupe1980/mutgen/internal/siteset"
	"github.com/hupe1980/mutgen/tables"
)

// importSites rehydrates every existing site row with its mutation rows into
// arena-owned records and registers them. Mutation rows are grouped by site
// in site order (an integrity invariant of the input tables). Imported
// mutations keep their stored parent row indices; populateTables shifts them
// when new mutations are interleaved.
func (g *Generator) importSites(tc *tables.Collection) error {
	mutRow := 0
	for s := 0; s < tc.Sites.NumRows(); s++ {
		first := mutRow
		for mutRow < tc.Mutations.NumRows() && tc.Mutations.Site[mutRow] == int32(s) {
			mutRow++
		}

		ancestral, err := g.arena.Copy(tc.Sites.AncestralState(s))
		if err != nil {
			return translateError(err)
		}
		metadata, err := g.arena.Copy(tc.Sites.Metadata(s))
		if err != nil {
			return translateError(err)
		}

		muts := make([]siteset.Mutation, 0, mutRow-first)
		for m := first; m < mutRow; m++ {
			derived, err := g.arena.Copy(tc.Mutations.DerivedState(m))
			if err != nil {
				return translateError(err)
			}
			mutMeta, err := g.arena.Copy(tc.Mutations.Metadata(m))
			if err != nil {
				return translateError(err)
			}
			muts = append(muts, siteset.Mutation{
				Node:         tc.Mutations.Node[m],
				Parent:       tc.Mutations.Parent[m],
				DerivedState: derived,
				Metadata:     mutMeta,
			})
		}

		err = g.sites.Insert(siteset.Site{
			Position:       tc.Sites.Position[s],
			AncestralState: ancestral,
			Metadata:       metadata,
		}, muts)
		if err != nil {
			return translateError(err)
		}
	}
	return nil
}

// populateTables flushes the registry into the output tables in position
// order. Imported parent row indices are shifted forward by the number of
// generated mutations emitted before them, keeping parent links consistent
// in the rebuilt mutation table; a single forward pass with a running
// counter suffices because registry order is the output row order.
func (g *Generator) populateTables(tc *tables.Collection) error {
	var newMutations int32
	for site := range g.sites.Ascend() {
		siteID, err := tc.Sites.AddRow(site.Position, site.AncestralState, site.Metadata)
		if err != nil {
			return err
		}
		for _, m := range g.sites.Mutations(site) {
			parent := m.Parent
			if parent != tables.NullID {
				parent += newMutations
			}
			if _, err := tc.Mutations.AddRow(siteID, m.Node, parent, m.DerivedState, m.Metadata); err != nil {
				return err
			}
			if m.Generated {
				newMutations++
			}
		}
	}
	return nil
}
