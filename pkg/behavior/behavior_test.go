package behavior

import (
	"math"
	"testing"

	"github.com/nullwave/audiograph/pkg/types"
)

func newBlock(n int) []types.Sample { return make([]types.Sample, n) }

func TestWaveformWrapsTable(t *testing.T) {
	b := NewWaveform([]types.Sample{1, 2, 3})()
	out := newBlock(7)
	b.Evaluate(nil, [][]types.Sample{out})

	want := []types.Sample{1, 2, 3, 1, 2, 3, 1}
	for i, w := range want {
		if out[i] != w {
			t.Fatalf("sample %d: got %v want %v", i, out[i], w)
		}
	}
}

func TestWaveformEmptyTableDefaultsToZero(t *testing.T) {
	b := NewWaveform(nil)()
	out := newBlock(4)
	b.Evaluate(nil, [][]types.Sample{out})
	for i, s := range out {
		if s != 0 {
			t.Fatalf("sample %d: got %v want 0", i, s)
		}
	}
}

func TestSumZeroInputsEmitsZero(t *testing.T) {
	b := NewSum(0)()
	out := newBlock(4)
	b.Evaluate([][]types.Sample{}, [][]types.Sample{out})
	for i, s := range out {
		if s != 0 {
			t.Fatalf("sample %d: got %v want 0", i, s)
		}
	}
}

func TestSumAddsInputs(t *testing.T) {
	b := NewSum(2)()
	a := []types.Sample{1, 2, 3}
	c := []types.Sample{10, 20, 30}
	out := newBlock(3)
	b.Evaluate([][]types.Sample{a, c}, [][]types.Sample{out})
	want := []types.Sample{11, 22, 33}
	for i, w := range want {
		if out[i] != w {
			t.Fatalf("sample %d: got %v want %v", i, out[i], w)
		}
	}
}

func TestProductZeroInputsEmitsOne(t *testing.T) {
	b := NewProduct(0)()
	out := newBlock(4)
	b.Evaluate([][]types.Sample{}, [][]types.Sample{out})
	for i, s := range out {
		if s != 1 {
			t.Fatalf("sample %d: got %v want 1", i, s)
		}
	}
}

func TestProductMultipliesInputs(t *testing.T) {
	b := NewProduct(2)()
	a := []types.Sample{1, 2, 3}
	c := []types.Sample{2, 2, 2}
	out := newBlock(3)
	b.Evaluate([][]types.Sample{a, c}, [][]types.Sample{out})
	want := []types.Sample{2, 4, 6}
	for i, w := range want {
		if out[i] != w {
			t.Fatalf("sample %d: got %v want %v", i, out[i], w)
		}
	}
}

func TestSinPureTone(t *testing.T) {
	const sr = 44100
	b := NewSin(sr)()
	freq := make([]types.Sample, 8)
	for i := range freq {
		freq[i] = 440.0
	}
	out := newBlock(8)
	b.Evaluate([][]types.Sample{freq}, [][]types.Sample{out})

	for n := 0; n < 8; n++ {
		want := math.Sin(2 * math.Pi * 440.0 * float64(n) / sr)
		if math.Abs(float64(out[n])-want) > 1e-5 {
			t.Fatalf("sample %d: got %v want %v", n, out[n], want)
		}
	}
}

func TestSinUnconnectedInputHoldsDC(t *testing.T) {
	b := NewSin(44100)()
	zeroFreq := newBlock(4)
	out := newBlock(4)
	b.Evaluate([][]types.Sample{zeroFreq}, [][]types.Sample{out})
	for i, s := range out {
		if s != 0 {
			t.Fatalf("sample %d: got %v want 0 (phase never advances from 0)", i, s)
		}
	}
}

func TestInterleavingOutputIndependentChannels(t *testing.T) {
	capture := make([]types.Sample, 6)
	b := NewInterleavingOutput(capture)()
	left := []types.Sample{1, 2, 3}
	right := []types.Sample{-1, -2, -3}
	b.Evaluate([][]types.Sample{left, right}, nil)

	want := []types.Sample{1, -1, 2, -2, 3, -3}
	for i, w := range want {
		if capture[i] != w {
			t.Fatalf("capture[%d]: got %v want %v", i, capture[i], w)
		}
	}
}
