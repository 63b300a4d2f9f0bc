package types

import "testing"

type constBehavior struct {
	desc Descriptor
}

func (b constBehavior) Descriptor() Descriptor { return b.desc }
func (b constBehavior) Evaluate(inputs [][]Sample, outputs [][]Sample) {
	for _, out := range outputs {
		for i := range out {
			out[i] = 1
		}
	}
}

func TestNewNodeAllocatesBuffersPerDescriptor(t *testing.T) {
	behavior := constBehavior{desc: Descriptor{TypeName: "Const", NumInputs: 2, NumOutputs: 1}}
	n := NewNode(1, "osc", behavior, 256)

	if n.NumInputs() != 2 {
		t.Fatalf("NumInputs() = %d, want 2", n.NumInputs())
	}
	if n.NumOutputs() != 1 {
		t.Fatalf("NumOutputs() = %d, want 1", n.NumOutputs())
	}
	for i, buf := range n.Inputs {
		if len(buf) != 256 {
			t.Fatalf("Inputs[%d] len = %d, want 256", i, len(buf))
		}
	}
	for i, buf := range n.Outputs {
		if len(buf) != 256 {
			t.Fatalf("Outputs[%d] len = %d, want 256", i, len(buf))
		}
	}
	if len(n.InEdgeByPort) != 2 {
		t.Fatalf("InEdgeByPort len = %d, want 2", len(n.InEdgeByPort))
	}
	for i, e := range n.InEdgeByPort {
		if e != nil {
			t.Fatalf("InEdgeByPort[%d] = %v, want nil", i, e)
		}
	}
}

func TestNewNodeNormalizesNameToNFC(t *testing.T) {
	behavior := constBehavior{desc: Descriptor{TypeName: "Const"}}

	// "cafe" + combining acute accent (U+0301) on the final letter: the
	// decomposed form of "café".
	decomposed := "café"
	// Precomposed "é" (U+00E9): the NFC form of the same name.
	composed := "café"

	a := NewNode(1, decomposed, behavior, 8)
	b := NewNode(2, composed, behavior, 8)

	if a.Name != composed {
		t.Fatalf("decomposed input normalized to %q, want %q", a.Name, composed)
	}
	if a.Name != b.Name {
		t.Fatalf("names differing only in normalization form compare unequal: %q != %q", a.Name, b.Name)
	}
}

func TestNodeZeroPortBehaviorGetsEmptyCollections(t *testing.T) {
	behavior := constBehavior{desc: Descriptor{TypeName: "Sink", NumInputs: 0, NumOutputs: 0}}
	n := NewNode(1, "sink", behavior, 8)

	if len(n.Inputs) != 0 {
		t.Fatalf("Inputs = %v, want empty", n.Inputs)
	}
	if len(n.Outputs) != 0 {
		t.Fatalf("Outputs = %v, want empty", n.Outputs)
	}
}
