package engine

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/nullwave/audiograph/pkg/behavior"
	"github.com/nullwave/audiograph/pkg/config"
	"github.com/nullwave/audiograph/pkg/editproto"
	"github.com/nullwave/audiograph/pkg/types"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	reg := behavior.NewRegistry()
	reg.MustRegister("Waveform1", behavior.NewWaveform([]types.Sample{0.5}))
	reg.MustRegister("Waveform440", behavior.NewWaveform([]types.Sample{440}))
	reg.MustRegister("Waveform400", behavior.NewWaveform([]types.Sample{400}))
	reg.MustRegister("Waveform0_87", behavior.NewWaveform([]types.Sample{0.87}))
	reg.MustRegister("Sin", behavior.NewSin(44100))
	reg.MustRegister("Sum", behavior.NewSum(1))
	reg.MustRegister("Product", behavior.NewProduct(2))
	e, err := New("test-graph", config.Testing(), reg)
	if err != nil {
		t.Fatalf("New() = %v, want nil", err)
	}
	return e
}

func popBlock(t *testing.T, e *Engine) []types.Sample {
	t.Helper()
	out := make([]types.Sample, e.cfg.BlockSize*2)
	if !e.ring.Pop(out) {
		t.Fatal("Pop() = false, want true")
	}
	return out
}

func TestS1SilenceEmptyGraph(t *testing.T) {
	e := newTestEngine(t)
	for i := 0; i < 10; i++ {
		if err := e.step(); err != nil {
			t.Fatalf("step() = %v, want nil", err)
		}
	}
	for i := 0; i < 10; i++ {
		out := popBlock(t, e)
		for j, s := range out {
			if s != 0 {
				t.Fatalf("tick %d sample %d = %v, want 0", i, j, s)
			}
		}
	}
}

func TestS2DC(t *testing.T) {
	e := newTestEngine(t)
	w, _ := e.registry.New("Waveform1")
	out, _ := e.registry.New("InterleavingOutput")
	wID := e.graph.AddNode("Waveform1", w)
	oID := e.graph.AddNode("InterleavingOutput", out)

	if err := e.graph.Connect(wID, 0, oID, 0); err != nil {
		t.Fatalf("Connect(left) = %v, want nil", err)
	}
	if err := e.graph.Connect(wID, 0, oID, 1); err != nil {
		t.Fatalf("Connect(right) = %v, want nil", err)
	}
	if err := e.step(); err != nil {
		t.Fatalf("step() = %v, want nil", err)
	}
	block := popBlock(t, e)
	for i, s := range block {
		if s != 0.5 {
			t.Fatalf("sample %d = %v, want 0.5", i, s)
		}
	}
}

func TestS3PureTone(t *testing.T) {
	e := newTestEngine(t)
	freq, _ := e.registry.New("Waveform440")
	sin, _ := e.registry.New("Sin")
	out, _ := e.registry.New("InterleavingOutput")

	freqID := e.graph.AddNode("Waveform440", freq)
	sinID := e.graph.AddNode("Sin", sin)
	outID := e.graph.AddNode("InterleavingOutput", out)

	if err := e.graph.Connect(freqID, 0, sinID, 0); err != nil {
		t.Fatalf("Connect(freq->sin) = %v, want nil", err)
	}
	if err := e.graph.Connect(sinID, 0, outID, 0); err != nil {
		t.Fatalf("Connect(sin->left) = %v, want nil", err)
	}
	if err := e.graph.Connect(sinID, 0, outID, 1); err != nil {
		t.Fatalf("Connect(sin->right) = %v, want nil", err)
	}

	const k = 4
	const sr = 44100.0
	for tick := 0; tick < k; tick++ {
		if err := e.step(); err != nil {
			t.Fatalf("step() = %v, want nil", err)
		}
		block := popBlock(t, e)
		for n := 0; n < e.cfg.BlockSize; n++ {
			sampleIndex := tick*e.cfg.BlockSize + n
			want := math.Sin(2 * math.Pi * 440.0 * float64(sampleIndex) / sr)
			got := float64(block[2*n])
			if math.Abs(got-want) > 1e-5 {
				t.Fatalf("tick %d sample %d: got %v want %v", tick, n, got, want)
			}
			if block[2*n] != block[2*n+1] {
				t.Fatalf("tick %d sample %d: left/right diverge: %v != %v", tick, n, block[2*n], block[2*n+1])
			}
		}
	}
}

func TestS4AmplitudeModulation(t *testing.T) {
	e := newTestEngine(t)
	carrierFreq, _ := e.registry.New("Waveform400")
	modFreq, _ := e.registry.New("Waveform0_87")
	carrier, _ := e.registry.New("Sin")
	modulator, _ := e.registry.New("Sin")
	product, _ := e.registry.New("Product")
	out, _ := e.registry.New("InterleavingOutput")

	carrierFreqID := e.graph.AddNode("Waveform400", carrierFreq)
	modFreqID := e.graph.AddNode("Waveform0_87", modFreq)
	carrierID := e.graph.AddNode("Sin", carrier)
	modulatorID := e.graph.AddNode("Sin", modulator)
	productID := e.graph.AddNode("Product", product)
	outID := e.graph.AddNode("InterleavingOutput", out)

	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("Connect() = %v, want nil", err)
		}
	}
	must(e.graph.Connect(carrierFreqID, 0, carrierID, 0))
	must(e.graph.Connect(modFreqID, 0, modulatorID, 0))
	must(e.graph.Connect(carrierID, 0, productID, 0))
	must(e.graph.Connect(modulatorID, 0, productID, 1))
	must(e.graph.Connect(productID, 0, outID, 0))
	must(e.graph.Connect(productID, 0, outID, 1))

	if err := e.step(); err != nil {
		t.Fatalf("step() = %v, want nil", err)
	}
	block := popBlock(t, e)

	if block[0] != 0 {
		t.Fatalf("sample 0 = %v, want 0", block[0])
	}
	want := math.Sin(2*math.Pi*400.0/44100) * math.Sin(2*math.Pi*0.87/44100)
	if math.Abs(float64(block[2])-want) > 1e-6 {
		t.Fatalf("sample 1 = %v, want %v", block[2], want)
	}
}

func TestS5CycleRejectionLeavesGraphTickable(t *testing.T) {
	e := newTestEngine(t)
	a, _ := e.registry.New("Sum")
	b, _ := e.registry.New("Sum")
	c, _ := e.registry.New("Sum")
	aID := e.graph.AddNode("A", a)
	bID := e.graph.AddNode("B", b)
	cID := e.graph.AddNode("C", c)

	if err := e.graph.Connect(aID, 0, bID, 0); err != nil {
		t.Fatalf("Connect(a->b) = %v, want nil", err)
	}
	if err := e.graph.Connect(bID, 0, cID, 0); err != nil {
		t.Fatalf("Connect(b->c) = %v, want nil", err)
	}
	if err := e.graph.Connect(cID, 0, aID, 0); err == nil {
		t.Fatal("Connect(c->a) = nil, want WouldCreateCycle")
	}
	if err := e.step(); err != nil {
		t.Fatalf("step() after rejected cycle = %v, want nil", err)
	}
}

func TestS6EditAtomicityMidStreamDisconnect(t *testing.T) {
	e := newTestEngine(t)
	freq, _ := e.registry.New("Waveform440")
	sin, _ := e.registry.New("Sin")
	out, _ := e.registry.New("InterleavingOutput")

	freqID := e.graph.AddNode("Waveform440", freq)
	sinID := e.graph.AddNode("Sin", sin)
	outID := e.graph.AddNode("InterleavingOutput", out)

	if err := e.graph.Connect(freqID, 0, sinID, 0); err != nil {
		t.Fatalf("Connect(freq->sin) = %v, want nil", err)
	}
	if err := e.graph.Connect(sinID, 0, outID, 0); err != nil {
		t.Fatalf("Connect(sin->left) = %v, want nil", err)
	}
	if err := e.graph.Connect(sinID, 0, outID, 1); err != nil {
		t.Fatalf("Connect(sin->right) = %v, want nil", err)
	}

	if err := e.step(); err != nil {
		t.Fatalf("step() = %v, want nil", err)
	}
	popBlock(t, e)

	if err := e.graph.Disconnect(freqID, 0, sinID, 0); err != nil {
		t.Fatalf("Disconnect() = %v, want nil", err)
	}

	if err := e.step(); err != nil {
		t.Fatalf("step() = %v, want nil", err)
	}
	block := popBlock(t, e)
	first := block[0]
	for i := 0; i < len(block); i += 2 {
		if block[i] != first {
			t.Fatalf("sample %d = %v, want constant %v (phase frozen after disconnect)", i, block[i], first)
		}
	}
}

func TestSubmitAddNodeRoundTripsReply(t *testing.T) {
	e := newTestEngine(t)
	replies := e.Subscribe("conn-1")
	defer e.Unsubscribe("conn-1")

	cmd, err := editproto.Decode("conn-1", []byte(`{"type":"AddNode","data":{"node_type":"Sum"}}`))
	if err != nil {
		t.Fatalf("Decode() = %v, want nil", err)
	}
	if err := e.Submit(cmd); err != nil {
		t.Fatalf("Submit() = %v, want nil", err)
	}
	e.drainInbound()

	select {
	case reply := <-replies:
		if reply.Type != editproto.ReplyOk {
			t.Fatalf("reply.Type = %v, want Ok", reply.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for reply")
	}
}

func TestSubmitUnknownRecipeRejected(t *testing.T) {
	e := newTestEngine(t)
	replies := e.Subscribe("conn-1")
	defer e.Unsubscribe("conn-1")

	cmd, err := editproto.Decode("conn-1", []byte(`{"type":"AddNode","data":{"node_type":"Nonexistent"}}`))
	if err != nil {
		t.Fatalf("Decode() = %v, want nil", err)
	}
	e.Submit(cmd)
	e.drainInbound()

	reply := <-replies
	if reply.Type != editproto.ReplyErr || reply.Kind != "UnknownRecipe" {
		t.Fatalf("reply = %+v, want Err{UnknownRecipe}", reply)
	}
}

func TestCommandOrderingPreservedPerConnection(t *testing.T) {
	e := newTestEngine(t)
	replies := e.Subscribe("conn-1")
	defer e.Unsubscribe("conn-1")

	for i := 0; i < 5; i++ {
		cmd, err := editproto.Decode("conn-1", []byte(`{"type":"AddNode","data":{"node_type":"Sum"}}`))
		if err != nil {
			t.Fatalf("Decode() = %v, want nil", err)
		}
		if err := e.Submit(cmd); err != nil {
			t.Fatalf("Submit() = %v, want nil", err)
		}
	}
	e.drainInbound()

	for i := 0; i < 5; i++ {
		select {
		case reply := <-replies:
			if reply.Type != editproto.ReplyOk {
				t.Fatalf("reply %d = %+v, want Ok", i, reply)
			}
			if want := fmt.Sprintf("node %d added", i); reply.Message != want {
				t.Fatalf("reply %d message = %q, want %q", i, reply.Message, want)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for reply %d", i)
		}
	}
}

func TestShutdownReleasesGraphAndRejectsNewCommands(t *testing.T) {
	e := newTestEngine(t)
	a, _ := e.registry.New("Sum")
	e.graph.AddNode("a", a)
	if e.graph.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", e.graph.Len())
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after cancellation")
	}

	if e.graph.Len() != 0 {
		t.Fatalf("Len() after shutdown = %d, want 0", e.graph.Len())
	}

	cmd, _ := editproto.Decode("conn-1", []byte(`{"type":"AddNode","data":{"node_type":"Sum"}}`))
	if err := e.Submit(cmd); err != types.ErrShuttingDown {
		t.Fatalf("Submit() after shutdown = %v, want ErrShuttingDown", err)
	}
}
