package mutgen_test

import (
	"fmt"

	"github.com/hupe1980/mutgen"
	"github.com/hupe1980/mutgen/rng"
	"github.com/hupe1980/mutgen/tables"
)

func Example() {
	// A single branch over [0, 10) between a leaf at time 0 and its
	// parent at time 1.
	tc := &tables.Collection{SequenceLength: 10}
	child := tc.Nodes.AddRow(0, 0)
	parent := tc.Nodes.AddRow(1, 0)
	tc.Edges.AddRow(0, 10, parent, child)

	gen, err := mutgen.New(mutgen.WithRNG(rng.New(42)))
	if err != nil {
		panic(err)
	}
	if err := gen.SetRate(0.5); err != nil {
		panic(err)
	}
	if err := gen.Generate(tc); err != nil {
		panic(err)
	}

	// Freshly generated sites carry exactly one mutation each.
	fmt.Println(tc.Sites.NumRows() == tc.Mutations.NumRows())
	// Output: true
}
