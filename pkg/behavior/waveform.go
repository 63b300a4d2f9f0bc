package behavior

import "github.com/nullwave/audiograph/pkg/types"

// Waveform is a zero-input, one-output constant/table generator (§4.6).
// It emits w[n mod k] for a finite sample vector w of length k >= 1,
// wrapping forever; a length-1 table degenerates to a DC constant.
type Waveform struct {
	table []types.Sample
	pos   int
}

// NewWaveform builds a Waveform recipe closed over the given table. table
// must have length >= 1; a nil or empty table is replaced with [0].
func NewWaveform(table []types.Sample) Recipe {
	t := table
	if len(t) == 0 {
		t = []types.Sample{0}
	}
	cloned := make([]types.Sample, len(t))
	copy(cloned, t)
	return func() types.Behavior {
		return &Waveform{table: cloned}
	}
}

func (w *Waveform) Descriptor() types.Descriptor {
	return types.Descriptor{TypeName: "Waveform", NumInputs: 0, NumOutputs: 1}
}

func (w *Waveform) Evaluate(inputs [][]types.Sample, outputs [][]types.Sample) {
	out := outputs[0]
	k := len(w.table)
	for n := range out {
		out[n] = w.table[w.pos]
		w.pos++
		if w.pos == k {
			w.pos = 0
		}
	}
}
