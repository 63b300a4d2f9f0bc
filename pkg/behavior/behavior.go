// Package behavior is the process-wide recipe registry (§6.3): a
// read-mostly map from a string type_name to a zero-argument factory
// producing a fresh types.Behavior. It replaces the strategy-dispatch
// switch statement with registration, the same shape the engine used for
// node executors before this port, generalized to the audio domain where
// the "strategy" is a unit generator's Evaluate method.
package behavior

import "github.com/nullwave/audiograph/pkg/types"

// Recipe is a zero-argument factory returning a fresh behavior instance.
// AddNode resolves a node_type string against the registry to obtain one.
type Recipe func() types.Behavior
