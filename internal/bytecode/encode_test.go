package bytecode

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func samplePogram() *Program {
	p := NewProgram(KindCircuit)
	p.Instructions = []Instruction{
		{Op: OpPush, Int: 1},
		{Op: OpPush, Int: 2},
		{Op: OpAdd},
		{Op: OpExit},
	}
	p.FunctionAddresses["main"] = 0
	p.Entries = []EntryMetadata{{Name: "main", InputSize: 0, OutputSize: 1, Address: 0}}
	return p
}

func Test_Encode_DeterministicRoundTrip(t *testing.T) {
	p1 := samplePogram()
	p2 := samplePogram()

	b1, err := Encode(p1)
	require.NoError(t, err)
	b2, err := Encode(p2)
	require.NoError(t, err)
	require.Equal(t, b1, b2, "identical programs must encode byte-identically")

	decoded, err := Decode(b1)
	require.NoError(t, err)

	if diff := cmp.Diff(p1, decoded); diff != "" {
		t.Errorf("round-tripped program differs (-want +got):\n%s", diff)
	}
}
