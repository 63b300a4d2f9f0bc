// Command server starts the audiograph engine behind an HTTP control plane.
//
// Usage:
//
//	server [flags]
//
// Flags:
//
//	-addr string
//	    Server address (default ":8080")
//	-env string
//	    Config profile: default, development, or production (default "default")
//	    "development" also registers a console observer that logs every
//	    edit-command event to stdout/stderr.
//
// The server exposes the following endpoints:
//
//	POST   /api/v1/edit         - submit an edit command (§6.2)
//	GET    /api/v1/snapshot     - current topology as Graphviz DOT
//	GET    /health              - health check
//	GET    /health/live         - liveness probe
//	GET    /health/ready        - readiness probe
//	GET    /metrics             - Prometheus metrics
//
// Since the host audio adapter (§6.1) is outside this repository's scope,
// main also starts a simulated audio callback: a goroutine that pops blocks
// from the engine's ring at the configured sample rate and discards them,
// standing in for the real-time audio thread so the generator has a
// consumer to produce against.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nullwave/audiograph/pkg/behavior"
	"github.com/nullwave/audiograph/pkg/config"
	"github.com/nullwave/audiograph/pkg/engine"
	"github.com/nullwave/audiograph/pkg/observer"
	"github.com/nullwave/audiograph/pkg/server"
	"github.com/nullwave/audiograph/pkg/types"
)

func main() {
	addr := flag.String("addr", ":8080", "Server address")
	env := flag.String("env", "default", "Config profile: default, development, or production")
	flag.Parse()

	cfg := resolveConfig(*env)

	registry := buildRegistry(cfg)

	eng, err := engine.New("graph-1", cfg, registry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create engine: %v\n", err)
		os.Exit(1)
	}

	if *env == "development" {
		eng.RegisterObserver(observer.NewConsoleObserver())
	}

	serverConfig := server.DefaultConfig()
	serverConfig.Address = *addr

	srv, err := server.New(serverConfig, eng)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create server: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runErrCh := make(chan error, 1)
	go func() { runErrCh <- eng.Run(ctx) }()

	stopSink := startSimulatedAudioSink(eng, cfg)
	defer stopSink()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	serverErrCh := make(chan error, 1)
	go func() {
		fmt.Printf("Starting audiograph engine server on %s\n", *addr)
		fmt.Printf("Edit:        http://localhost%s/api/v1/edit\n", *addr)
		fmt.Printf("Snapshot:    http://localhost%s/api/v1/snapshot\n", *addr)
		fmt.Printf("Health:      http://localhost%s/health\n", *addr)
		fmt.Printf("Metrics:     http://localhost%s/metrics\n", *addr)
		fmt.Println("\nPress Ctrl+C to shutdown")
		if err := srv.Start(); err != nil {
			serverErrCh <- err
		}
	}()

	select {
	case err := <-serverErrCh:
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	case err := <-runErrCh:
		if err != nil {
			fmt.Fprintf(os.Stderr, "engine error: %v\n", err)
			os.Exit(1)
		}
	case sig := <-sigChan:
		fmt.Printf("\nreceived signal: %v, shutting down gracefully...\n", sig)

		stopSink()
		eng.Shutdown()
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), serverConfig.ShutdownTimeout)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			fmt.Fprintf(os.Stderr, "shutdown error: %v\n", err)
			os.Exit(1)
		}
		<-runErrCh
		fmt.Println("server stopped")
	}
}

// buildRegistry registers the reference unit generators of §4.6 under fixed
// node_type names. Recipes are zero-argument factories (§6.3), so a
// parameterized oscillator (a given pitch, a given waveform table) needs its
// own registered name rather than a runtime argument to AddNode; this set
// covers a small playable synth: two fixed pitches feeding Sin oscillators,
// combined additively or multiplicatively, plus raw constants for
// amplitude/offset control.
func buildRegistry(cfg *config.Config) *behavior.Registry {
	registry := behavior.NewRegistry()

	registry.MustRegister("Const0", behavior.NewWaveform([]types.Sample{0}))
	registry.MustRegister("ConstA4", behavior.NewWaveform([]types.Sample{440}))
	registry.MustRegister("ConstA3", behavior.NewWaveform([]types.Sample{220}))
	registry.MustRegister("ConstLFO", behavior.NewWaveform([]types.Sample{0.87}))

	registry.MustRegister("Sin", behavior.NewSin(cfg.SampleRate))
	registry.MustRegister("Sum2", behavior.NewSum(2))
	registry.MustRegister("Sum3", behavior.NewSum(3))
	registry.MustRegister("Product2", behavior.NewProduct(2))

	// InterleavingOutput is registered by engine.New itself (§4.5).
	return registry
}

func resolveConfig(env string) *config.Config {
	switch env {
	case "development":
		return config.Development()
	case "production":
		return config.Production()
	default:
		return config.Default()
	}
}

// startSimulatedAudioSink stands in for the host audio adapter (§6.1): it
// pops one stereo block from the ring at the block period and unparks the
// generator, exactly as the real callback would, but discards the samples
// instead of handing them to a device. Returns a function that stops it.
func startSimulatedAudioSink(eng *engine.Engine, cfg *config.Config) func() {
	blockPeriod := time.Duration(cfg.BlockSize) * time.Second / time.Duration(cfg.SampleRate)
	buf := make([]float32, cfg.BlockSize*2)
	ring := eng.Ring()

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(blockPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				ring.Pop(buf)
				ring.Unpark()
			}
		}
	}()

	var stopped bool
	return func() {
		if stopped {
			return
		}
		stopped = true
		close(stop)
		<-done
	}
}
