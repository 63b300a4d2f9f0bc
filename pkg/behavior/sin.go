package behavior

import (
	"math"

	"github.com/nullwave/audiograph/pkg/types"
)

// Sin is a sine oscillator: one input (instantaneous frequency in Hz), one
// output. It standardizes on the input-driven variant described in §4.6 and
// §9 — the source's fixed-frequency-in-constructor variant is subsumed by
// feeding this one a constant Waveform, so only this form is kept.
//
// Internal state is a phase accumulator phi in [0, SR), initially 0. Per
// sample: emit sin(2*pi*phi/SR), then phi <- (phi + f[n]) mod SR. An
// unconnected input reads as zero, so the accumulator holds and the
// oscillator produces DC at its current phase.
type Sin struct {
	sampleRate float64
	phase      float64
}

// NewSin builds a Sin recipe for the given sample rate.
func NewSin(sampleRate int) Recipe {
	sr := float64(sampleRate)
	return func() types.Behavior {
		return &Sin{sampleRate: sr}
	}
}

func (s *Sin) Descriptor() types.Descriptor {
	return types.Descriptor{TypeName: "Sin", NumInputs: 1, NumOutputs: 1}
}

func (s *Sin) Evaluate(inputs [][]types.Sample, outputs [][]types.Sample) {
	freq := inputs[0]
	out := outputs[0]
	for n := range out {
		out[n] = types.Sample(math.Sin(2 * math.Pi * s.phase / s.sampleRate))
		s.phase = math.Mod(s.phase+float64(freq[n]), s.sampleRate)
		if s.phase < 0 {
			s.phase += s.sampleRate
		}
	}
}
