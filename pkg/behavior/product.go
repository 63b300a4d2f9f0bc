package behavior

import "github.com/nullwave/audiograph/pkg/types"

// Product is an n-input, one-output generator emitting the per-sample
// product of its inputs. With zero inputs it emits ones (§4.6).
type Product struct {
	numInputs int
}

// NewProduct builds a Product recipe with the given number of input ports.
func NewProduct(numInputs int) Recipe {
	return func() types.Behavior {
		return &Product{numInputs: numInputs}
	}
}

func (p *Product) Descriptor() types.Descriptor {
	return types.Descriptor{TypeName: "Product", NumInputs: p.numInputs, NumOutputs: 1}
}

func (p *Product) Evaluate(inputs [][]types.Sample, outputs [][]types.Sample) {
	out := outputs[0]
	for n := range out {
		acc := types.Sample(1)
		for _, in := range inputs {
			acc *= in[n]
		}
		out[n] = acc
	}
}
