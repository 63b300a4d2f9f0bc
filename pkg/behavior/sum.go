package behavior

import "github.com/nullwave/audiograph/pkg/types"

// Sum is an n-input, one-output generator emitting the per-sample sum of
// its inputs. With zero inputs it emits zeros (§4.6).
type Sum struct {
	numInputs int
}

// NewSum builds a Sum recipe with the given number of input ports.
func NewSum(numInputs int) Recipe {
	return func() types.Behavior {
		return &Sum{numInputs: numInputs}
	}
}

func (s *Sum) Descriptor() types.Descriptor {
	return types.Descriptor{TypeName: "Sum", NumInputs: s.numInputs, NumOutputs: 1}
}

func (s *Sum) Evaluate(inputs [][]types.Sample, outputs [][]types.Sample) {
	out := outputs[0]
	for n := range out {
		var acc types.Sample
		for _, in := range inputs {
			acc += in[n]
		}
		out[n] = acc
	}
}
