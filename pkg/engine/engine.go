// Package engine implements the generator (§2) and the edit-arbitration
// dispatcher (§4.3): it owns the graph, the output-capture buffer, and the
// sample ring, evaluates blocks in a loop, and drains control-plane edit
// commands between blocks, replying to each on the outbound side of the
// edit protocol.
package engine

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nullwave/audiograph/pkg/behavior"
	"github.com/nullwave/audiograph/pkg/config"
	"github.com/nullwave/audiograph/pkg/editproto"
	"github.com/nullwave/audiograph/pkg/graph"
	"github.com/nullwave/audiograph/pkg/logging"
	"github.com/nullwave/audiograph/pkg/observer"
	"github.com/nullwave/audiograph/pkg/ring"
	"github.com/nullwave/audiograph/pkg/telemetry"
	"github.com/nullwave/audiograph/pkg/types"
)

// outputNodeType is the registry name reserved for the single
// InterleavingOutput recipe each Engine registers for itself (§4.5): its
// capture buffer belongs to this Engine's transport loop, so the recipe
// cannot be supplied generically by a caller-owned registry.
const outputNodeType = "InterleavingOutput"

// graphSizeSampleTicks is how often, in evaluated blocks, the generator
// samples live node/edge counts into telemetry (§4.4's reference block size
// of 256 samples at 44100Hz is ~172 blocks/sec; sampling every 172nd block
// is about once a second).
const graphSizeSampleTicks = 172

// Engine is the generator: it owns a Graph, a Ring, and the capture buffer
// the graph's InterleavingOutput node writes into, and arbitrates edits
// arriving from the control plane (§4.3, §5).
type Engine struct {
	cfg      *config.Config
	graph    *graph.Graph
	registry *behavior.Registry
	ring     *ring.Ring
	capture  []types.Sample

	inbound chan *editproto.Command

	subsMu sync.Mutex
	subs   map[string]chan editproto.Reply

	tickCount    uint64
	shuttingDown atomic.Bool

	graphID     string
	logger      *logging.Logger
	observerMgr *observer.Manager
	telemetry   *telemetry.Provider
}

// New constructs an Engine. registry must already carry every recipe the
// host wants AddNode to resolve except InterleavingOutput, which New
// registers itself, closed over a capture buffer private to this instance.
func New(graphID string, cfg *config.Config, registry *behavior.Registry) (*Engine, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if registry == nil {
		return nil, ErrNilRegistry
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	capture := make([]types.Sample, cfg.BlockSize*2)
	registry.MustRegister(outputNodeType, behavior.NewInterleavingOutput(capture))

	e := &Engine{
		cfg:         cfg,
		graph:       graph.New(cfg.BlockSize),
		registry:    registry,
		ring:        ring.New(cfg.RingCapacityFloats()),
		capture:     capture,
		inbound:     make(chan *editproto.Command, cfg.InboundQueueSize),
		subs:        make(map[string]chan editproto.Reply),
		graphID:     graphID,
		logger:      logging.New(logging.DefaultConfig()).WithGraphID(graphID),
		observerMgr: observer.NewManager(),
	}
	return e, nil
}

// RegisterObserver adds an observer to receive edit-command events
// (applied or rejected). Returns the engine for chaining.
func (e *Engine) RegisterObserver(obs observer.Observer) *Engine {
	e.observerMgr.Register(obs)
	return e
}

// WithTelemetry attaches an OpenTelemetry provider. Once set, step records
// block evaluation duration and the generator loop periodically records the
// live node and edge counts. Returns the engine for chaining.
func (e *Engine) WithTelemetry(provider *telemetry.Provider) *Engine {
	e.telemetry = provider
	return e
}

// Ring exposes the sample ring for the host audio adapter to hand its
// consumer half to the audio callback (§6.1).
func (e *Engine) Ring() *ring.Ring { return e.ring }

// Underruns reports the running count of audio-callback underruns.
func (e *Engine) Underruns() uint64 { return e.ring.Underruns() }

// Snapshot returns the current topology as a stable diagnostic string
// (§4.1, §6.4).
func (e *Engine) Snapshot() (string, error) { return e.graph.SnapshotDot() }

// Subscribe registers connectionID to receive broadcast replies and
// returns the receive side of its channel. Replies are broadcast to every
// currently-connected client in the order the generator processes commands
// (§6.2); a slow subscriber drops replies rather than stalling the
// generator.
func (e *Engine) Subscribe(connectionID string) <-chan editproto.Reply {
	ch := make(chan editproto.Reply, e.cfg.OutboundQueueSize)
	e.subsMu.Lock()
	e.subs[connectionID] = ch
	e.subsMu.Unlock()
	return ch
}

// Unsubscribe removes connectionID and closes its reply channel.
func (e *Engine) Unsubscribe(connectionID string) {
	e.subsMu.Lock()
	if ch, ok := e.subs[connectionID]; ok {
		delete(e.subs, connectionID)
		close(ch)
	}
	e.subsMu.Unlock()
}

// Submit enqueues a decoded command for the generator to apply between
// blocks. It blocks if the inbound queue is full, which is the backpressure
// the control plane is required to apply to its clients rather than
// dropping commands (§5). Submit rejects new commands once shutdown has
// begun rather than risk blocking forever on a generator that has stopped
// draining the queue.
func (e *Engine) Submit(cmd *editproto.Command) error {
	if e.shuttingDown.Load() {
		return types.ErrShuttingDown
	}
	e.inbound <- cmd
	return nil
}

// Shutdown begins cooperative shutdown (§5): it sets the shutdown flag and
// unparks the generator so it notices promptly instead of waiting out its
// park timeout.
func (e *Engine) Shutdown() {
	e.shuttingDown.Store(true)
	e.ring.Unpark()
}

// Run is the generator loop (§2, §4.4). It evaluates blocks and pushes them
// into the ring whenever there is room, parks when there is not, and drains
// the inbound command queue between every block. It returns when Shutdown
// has been called (after releasing the graph) or when ctx is canceled.
func (e *Engine) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			e.Shutdown()
		default:
		}

		if e.shuttingDown.Load() {
			e.drainShuttingDown()
			e.graph.Release()
			return nil
		}

		e.drainInbound()
		if e.shuttingDown.Load() {
			continue
		}

		if err := e.step(); err != nil {
			return fmt.Errorf("engine: tick: %w", err)
		}
	}
}

// step evaluates one block and pushes it into the ring if there is room for
// it, or parks until there is room or the poll timeout elapses (§4.4).
func (e *Engine) step() error {
	blockFloats := e.cfg.BlockSize * 2
	if e.ring.Free() < blockFloats {
		e.ring.Park(e.cfg.ParkPollTimeout)
		return nil
	}
	start := time.Now()
	if err := e.graph.Tick(); err != nil {
		return err
	}
	e.ring.Push(e.capture)
	if e.telemetry != nil {
		e.telemetry.RecordTick(context.Background(), e.graphID, time.Since(start))
		e.tickCount++
		// Graph size changes only on edits, which are far rarer than
		// blocks; sampling every graphSizeSampleTicks avoids adding gauge
		// bookkeeping to the real-time path on every single block.
		if e.tickCount%graphSizeSampleTicks == 0 {
			e.telemetry.RecordGraphSize(context.Background(), e.graphID, e.graph.Len(), e.graph.EdgeCount())
		}
	}
	return nil
}

// drainInbound applies every command currently queued, without blocking; a
// block must never wait on a command (§5).
func (e *Engine) drainInbound() {
	for {
		select {
		case cmd := <-e.inbound:
			e.apply(cmd)
		default:
			return
		}
	}
}

// drainShuttingDown empties the inbound queue one last time, replying
// Err{Shuttingdown} to every command still pending (§5).
func (e *Engine) drainShuttingDown() {
	for {
		select {
		case cmd := <-e.inbound:
			e.broadcast(editproto.Err(cmd.ConnectionID, types.ErrShuttingDown))
		default:
			return
		}
	}
}

// apply dispatches a single command to the graph and broadcasts exactly
// one reply (§4.3).
func (e *Engine) apply(cmd *editproto.Command) {
	var reply editproto.Reply
	switch cmd.Type {
	case editproto.CommandAddNode:
		reply = e.applyAddNode(cmd)
	case editproto.CommandRemoveNode:
		reply = e.applyRemoveNode(cmd)
	case editproto.CommandConnectNodes:
		reply = e.applyConnectNodes(cmd)
	case editproto.CommandDisconnectNodes:
		reply = e.applyDisconnectNodes(cmd)
	default:
		reply = editproto.Err(cmd.ConnectionID, fmt.Errorf("engine: unhandled command type %q", cmd.Type))
	}
	if reply.Type == editproto.ReplyErr {
		e.logger.WithConnectionID(cmd.ConnectionID).Warnf("%s rejected: %s: %s", cmd.Type, reply.Kind, reply.Detail)
	}
	e.notifyEdit(cmd, reply)
	e.broadcast(reply)
}

func (e *Engine) applyAddNode(cmd *editproto.Command) editproto.Reply {
	if e.cfg.MaxNodes > 0 && e.graph.Len() >= e.cfg.MaxNodes {
		return editproto.Err(cmd.ConnectionID, ErrMaxNodesReached)
	}
	b, err := e.registry.New(cmd.AddNode.NodeType)
	if err != nil {
		return editproto.Err(cmd.ConnectionID, err)
	}
	id := e.graph.AddNode(cmd.AddNode.NodeType, b)
	return editproto.Ok(cmd.ConnectionID, fmt.Sprintf("node %d added", id))
}

func (e *Engine) applyRemoveNode(cmd *editproto.Command) editproto.Reply {
	id := types.NodeID(cmd.RemoveNode.NodeID)
	if err := e.graph.RemoveNode(id); err != nil {
		return editproto.Err(cmd.ConnectionID, err)
	}
	return editproto.Ok(cmd.ConnectionID, fmt.Sprintf("node %d removed", id))
}

func (e *Engine) applyConnectNodes(cmd *editproto.Command) editproto.Reply {
	d := cmd.ConnectNodes
	if e.cfg.MaxEdges > 0 && e.graph.EdgeCount() >= e.cfg.MaxEdges {
		return editproto.Err(cmd.ConnectionID, ErrMaxEdgesReached)
	}
	err := e.graph.Connect(types.NodeID(d.FromID), d.OutputIdx, types.NodeID(d.ToID), d.InputIdx)
	if err != nil {
		return editproto.Err(cmd.ConnectionID, err)
	}
	return editproto.Ok(cmd.ConnectionID, fmt.Sprintf("connected %d:%d -> %d:%d", d.FromID, d.OutputIdx, d.ToID, d.InputIdx))
}

func (e *Engine) applyDisconnectNodes(cmd *editproto.Command) editproto.Reply {
	d := cmd.DisconnectNodes
	err := e.graph.Disconnect(types.NodeID(d.FromID), d.OutputIdx, types.NodeID(d.ToID), d.InputIdx)
	if err != nil {
		return editproto.Err(cmd.ConnectionID, err)
	}
	return editproto.Ok(cmd.ConnectionID, fmt.Sprintf("disconnected %d:%d -> %d:%d", d.FromID, d.OutputIdx, d.ToID, d.InputIdx))
}

func (e *Engine) broadcast(reply editproto.Reply) {
	e.subsMu.Lock()
	defer e.subsMu.Unlock()
	for _, ch := range e.subs {
		select {
		case ch <- reply:
		default:
		}
	}
}

func (e *Engine) notifyEdit(cmd *editproto.Command, reply editproto.Reply) {
	evt := observer.Event{
		GraphID:      e.graphID,
		ConnectionID: cmd.ConnectionID,
		Command:      string(cmd.Type),
	}
	if reply.Type == editproto.ReplyOk {
		evt.Type = observer.EventEditApplied
		evt.Status = observer.StatusSuccess
		evt.Result = reply.Message
	} else {
		evt.Type = observer.EventEditRejected
		evt.Status = observer.StatusFailure
		evt.Error = fmt.Errorf("%s: %s", reply.Kind, reply.Detail)
	}
	if cmd.AddNode != nil {
		evt.NodeType = cmd.AddNode.NodeType
	}
	if cmd.RemoveNode != nil {
		evt.NodeID = strconv.FormatUint(cmd.RemoveNode.NodeID, 10)
	}
	e.observerMgr.Notify(context.Background(), evt)
}
