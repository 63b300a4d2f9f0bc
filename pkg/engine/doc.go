// Package engine ties together the graph, behavior registry, and sample
// ring into the generator described by §2 and §4.
//
// # Lifecycle
//
//	reg := behavior.NewRegistry()
//	reg.MustRegister("Sin", behavior.NewSin(cfg.SampleRate))
//	e, _ := engine.New("graph-1", cfg, reg)
//	go e.Run(ctx)
//
//	replies := e.Subscribe("conn-1")
//	e.Submit(cmd)
//	reply := <-replies
//
// Run evaluates blocks and drains inbound edit commands between them until
// Shutdown is called or ctx is canceled, at which point it drains the
// inbound queue one last time (replying Err{Shuttingdown} to anything left)
// and releases the graph (§5).
//
// WithTelemetry and RegisterObserver are both optional; an Engine built
// without either still runs, it just doesn't report anything beyond what
// Underruns and Snapshot expose directly.
package engine
