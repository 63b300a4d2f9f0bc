package graph

import (
	"strings"
	"testing"

	"github.com/nullwave/audiograph/pkg/types"
)

// shrinkingBehavior deliberately violates the Evaluate contract (§4.1,
// §10.3): it writes fewer samples than its output buffer's declared length
// by replacing the buffer with a shorter one.
type shrinkingBehavior struct{}

func (shrinkingBehavior) Descriptor() types.Descriptor {
	return types.Descriptor{TypeName: "Shrinking", NumInputs: 0, NumOutputs: 1}
}

func (shrinkingBehavior) Evaluate(inputs [][]types.Sample, outputs [][]types.Sample) {
	outputs[0] = outputs[0][:len(outputs[0])-1]
}

func TestTickPanicsOnMisbehavingOutputLength(t *testing.T) {
	g := New(blockSize)
	g.AddNode("bad", shrinkingBehavior{})

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("Tick() did not panic on a misbehaving output length")
		}
		msg, ok := r.(string)
		if !ok || !strings.Contains(msg, "output 0 has length") {
			t.Fatalf("panic value = %v, want a message naming the offending output", r)
		}
	}()

	_ = g.Tick()
	t.Fatal("unreachable: Tick() should have panicked")
}
