package config

import (
	"time"
)

// Config holds engine-wide configuration for the audio graph.
// All configuration options are centralized here for easy management and validation.
type Config struct {
	// Signal path
	BlockSize  int // Samples per port per tick (reference: 256)
	SampleRate int // Samples per second per channel (reference: 44100)

	// Real-time transport
	RingBlocks      int           // Ring capacity expressed as multiples of BlockSize stereo frames (reference: 32)
	ParkPollTimeout time.Duration // Upper bound the generator waits on a park before re-checking shutdown

	// Edit protocol
	InboundQueueSize  int           // Capacity of the inbound command queue before the control plane must back off
	OutboundQueueSize int           // Capacity of the outbound reply queue
	ShutdownTimeout   time.Duration // Grace period for draining in-flight commands after shutdown begins

	// Resource limits
	MaxNodes int // Maximum live nodes in the graph (0 = unlimited)
	MaxEdges int // Maximum live edges in the graph (0 = unlimited)
}

// Default returns a Config with the reference block size and sample rate.
func Default() *Config {
	return &Config{
		BlockSize:  256,
		SampleRate: 44100,

		RingBlocks:      32,
		ParkPollTimeout: 50 * time.Millisecond,

		InboundQueueSize:  256,
		OutboundQueueSize: 256,
		ShutdownTimeout:   2 * time.Second,

		MaxNodes: 10000,
		MaxEdges: 50000,
	}
}

// Development returns a Config with generous queue sizes and no node/edge ceiling,
// useful when exercising the engine outside of a real-time host.
func Development() *Config {
	cfg := Default()
	cfg.InboundQueueSize = 4096
	cfg.OutboundQueueSize = 4096
	cfg.MaxNodes = 0
	cfg.MaxEdges = 0
	return cfg
}

// Production returns a Config identical to Default; kept distinct so callers
// can depend on the name rather than the default's specific values.
func Production() *Config {
	return Default()
}

// Testing returns a Config with a short shutdown grace period and small queues,
// suited to deterministic unit tests.
func Testing() *Config {
	cfg := Default()
	cfg.ShutdownTimeout = 100 * time.Millisecond
	cfg.InboundQueueSize = 16
	cfg.OutboundQueueSize = 16
	cfg.MaxNodes = 256
	cfg.MaxEdges = 1024
	return cfg
}

// Validate checks if the configuration values are valid.
func (c *Config) Validate() error {
	if c.BlockSize <= 0 {
		return ErrInvalidBlockSize
	}
	if c.SampleRate <= 0 {
		return ErrInvalidSampleRate
	}
	if c.RingBlocks <= 0 {
		return ErrInvalidRingBlocks
	}
	if c.ParkPollTimeout < 0 {
		return ErrInvalidParkPollTimeout
	}
	if c.InboundQueueSize <= 0 {
		return ErrInvalidQueueSize
	}
	if c.OutboundQueueSize <= 0 {
		return ErrInvalidQueueSize
	}
	if c.ShutdownTimeout < 0 {
		return ErrInvalidShutdownTimeout
	}
	if c.MaxNodes < 0 {
		return ErrInvalidMaxNodes
	}
	if c.MaxEdges < 0 {
		return ErrInvalidMaxEdges
	}
	return nil
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// RingCapacityFloats returns the ring's total capacity in interleaved stereo floats.
func (c *Config) RingCapacityFloats() int {
	return c.RingBlocks * c.BlockSize * 2
}
