// Package editproto is the wire format of §6.2: JSON envelopes
// `{"type": <tag>, "data": <payload>}` flowing in both directions between
// the control plane and the engine.
//
// Decode validates and parses an inbound envelope into a typed Command.
// Ok and Err build outbound Reply values, which Encode serializes back to
// the wire envelope shape; Err classifies the triggering error through
// types.Kind so the wire "kind" field always matches the §7 taxonomy.
package editproto
