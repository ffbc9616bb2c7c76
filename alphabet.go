package mutgen

// Alphabet selects the substitution model used for new mutations.
type Alphabet int

const (
	// AlphabetBinary has a single transition 0 -> 1.
	AlphabetBinary Alphabet = iota
	// AlphabetNucleotide has the 12 ordered A/C/G/T substitutions,
	// excluding self-transitions.
	AlphabetNucleotide
)

// Valid reports whether a is a known alphabet.
func (a Alphabet) Valid() bool {
	return a == AlphabetBinary || a == AlphabetNucleotide
}

func (a Alphabet) String() string {
	switch a {
	case AlphabetBinary:
		return "binary"
	case AlphabetNucleotide:
		return "nucleotide"
	default:
		return "unknown"
	}
}

// transition is one (ancestral, derived) state pair. The byte slices are
// static and shared by every mutation using the transition.
type transition struct {
	ancestral []byte
	derived   []byte
}

var binaryTransitions = []transition{
	{[]byte("0"), []byte("1")},
}

// The transition order is part of the reproducibility contract: the uniform
// type draw indexes into this list.
var nucleotideTransitions = []transition{
	{[]byte("A"), []byte("C")},
	{[]byte("A"), []byte("G")},
	{[]byte("A"), []byte("T")},
	{[]byte("C"), []byte("A")},
	{[]byte("C"), []byte("G")},
	{[]byte("C"), []byte("T")},
	{[]byte("G"), []byte("A")},
	{[]byte("G"), []byte("C")},
	{[]byte("G"), []byte("T")},
	{[]byte("T"), []byte("A")},
	{[]byte("T"), []byte("C")},
	{[]byte("T"), []byte("G")},
}

func (a Alphabet) transitions() []transition {
	if a == AlphabetNucleotide {
		return nucleotideTransitions
	}
	return binaryTransitions
}
