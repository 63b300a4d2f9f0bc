package behavior

import "github.com/nullwave/audiograph/pkg/types"

// InterleavingOutput is the designated output-capture node type (§4.5):
// two inputs (left, right), zero outputs. During Evaluate it writes
// interleaved samples [L0, R0, L1, R1, ...] into a capture buffer of
// length 2*B shared with the generator's transport loop.
//
// The source read input index 0 for both channels, so right silently
// doubled left; §9 calls that a bug. This reads left from input 0 and
// right from input 1 independently.
type InterleavingOutput struct {
	capture []types.Sample
}

// NewInterleavingOutput builds an InterleavingOutput recipe closed over a
// capture buffer owned by the generator. The buffer must have length 2*B
// and must outlive the node; ownership is the generator's, the behavior
// only ever writes into it during Evaluate (§9, output-capture ownership).
func NewInterleavingOutput(capture []types.Sample) Recipe {
	return func() types.Behavior {
		return &InterleavingOutput{capture: capture}
	}
}

func (o *InterleavingOutput) Descriptor() types.Descriptor {
	return types.Descriptor{TypeName: "InterleavingOutput", NumInputs: 2, NumOutputs: 0}
}

func (o *InterleavingOutput) Evaluate(inputs [][]types.Sample, outputs [][]types.Sample) {
	left, right := inputs[0], inputs[1]
	for n := range left {
		o.capture[2*n] = left[n]
		o.capture[2*n+1] = right[n]
	}
}
