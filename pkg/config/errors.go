package config

import "errors"

// Sentinel errors for configuration validation
var (
	ErrInvalidBlockSize       = errors.New("invalid block size: must be positive")
	ErrInvalidSampleRate      = errors.New("invalid sample rate: must be positive")
	ErrInvalidRingBlocks      = errors.New("invalid ring blocks: must be positive")
	ErrInvalidParkPollTimeout = errors.New("invalid park poll timeout: must be non-negative")
	ErrInvalidQueueSize       = errors.New("invalid queue size: must be positive")
	ErrInvalidShutdownTimeout = errors.New("invalid shutdown timeout: must be non-negative")
	ErrInvalidMaxNodes        = errors.New("invalid max nodes: must be non-negative")
	ErrInvalidMaxEdges        = errors.New("invalid max edges: must be non-negative")
)
