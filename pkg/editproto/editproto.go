// Package editproto implements the control-plane edit command schema (§6.2):
// the JSON envelope clients use to mutate the graph, and the Ok/Err reply
// envelope the engine sends back. Every inbound envelope is validated
// against a JSON Schema before being decoded into a typed Command.
package editproto

import (
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"github.com/nullwave/audiograph/pkg/types"
)

// CommandType names the inbound edit command tags (§6.2).
type CommandType string

const (
	CommandAddNode         CommandType = "AddNode"
	CommandRemoveNode      CommandType = "RemoveNode"
	CommandConnectNodes    CommandType = "ConnectNodes"
	CommandDisconnectNodes CommandType = "DisconnectNodes"
)

// ReplyType names the outbound reply tags (§6.2).
type ReplyType string

const (
	ReplyOk  ReplyType = "Ok"
	ReplyErr ReplyType = "Err"
)

// envelope is the wire shape `{"type": <tag>, "data": <payload>}` shared by
// every inbound and outbound message.
type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

var envelopeSchema = gojsonschema.NewStringLoader(`{
	"type": "object",
	"required": ["type", "data"],
	"properties": {
		"type": {"type": "string", "minLength": 1},
		"data": {"type": "object"}
	}
}`)

// AddNodeData is the payload of an AddNode command.
type AddNodeData struct {
	NodeType string `json:"node_type"`
}

// RemoveNodeData is the payload of a RemoveNode command.
type RemoveNodeData struct {
	NodeID uint64 `json:"node_id"`
}

// EdgeData is the shared payload shape of ConnectNodes and DisconnectNodes.
type EdgeData struct {
	FromID    uint64 `json:"from_id"`
	ToID      uint64 `json:"to_id"`
	OutputIdx int    `json:"output_idx"`
	InputIdx  int    `json:"input_idx"`
}

// Command is a fully decoded, typed inbound edit command, tagged with the
// connection it arrived on so replies can preserve per-connection ordering
// (§5). Exactly one of the payload fields is non-nil, selected by Type.
type Command struct {
	ConnectionID string
	Type         CommandType

	AddNode         *AddNodeData
	RemoveNode      *RemoveNodeData
	ConnectNodes    *EdgeData
	DisconnectNodes *EdgeData
}

// Decode validates raw against the envelope schema, then decodes it into a
// typed Command tagged with connectionID. A malformed envelope or an
// unrecognized type tag is reported as a plain decode error; it never
// reaches the engine's own error taxonomy (§7), which only classifies
// commands well-formed enough to identify which operation was requested.
func Decode(connectionID string, raw []byte) (*Command, error) {
	result, err := gojsonschema.Validate(envelopeSchema, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("editproto: malformed envelope: %w", err)
	}
	if !result.Valid() {
		return nil, fmt.Errorf("editproto: envelope failed validation: %v", result.Errors())
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("editproto: %w", err)
	}

	cmd := &Command{ConnectionID: connectionID, Type: CommandType(env.Type)}
	switch cmd.Type {
	case CommandAddNode:
		var d AddNodeData
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return nil, fmt.Errorf("editproto: AddNode: %w", err)
		}
		cmd.AddNode = &d
	case CommandRemoveNode:
		var d RemoveNodeData
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return nil, fmt.Errorf("editproto: RemoveNode: %w", err)
		}
		cmd.RemoveNode = &d
	case CommandConnectNodes:
		var d EdgeData
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return nil, fmt.Errorf("editproto: ConnectNodes: %w", err)
		}
		cmd.ConnectNodes = &d
	case CommandDisconnectNodes:
		var d EdgeData
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return nil, fmt.Errorf("editproto: DisconnectNodes: %w", err)
		}
		cmd.DisconnectNodes = &d
	default:
		return nil, fmt.Errorf("editproto: unknown command type %q", env.Type)
	}
	return cmd, nil
}

// Reply is a fully populated outbound reply (§6.2). ConnectionID identifies
// which connection originated the command being replied to; it is not part
// of the wire envelope itself, since replies are broadcast to every
// currently-connected client (§6.2).
type Reply struct {
	ConnectionID string    `json:"-"`
	Type         ReplyType `json:"type"`
	Message      string    `json:"-"`
	Kind         string    `json:"-"`
	Detail       string    `json:"-"`
}

// Ok builds a successful reply carrying a short human-readable tag.
func Ok(connectionID, message string) Reply {
	return Reply{ConnectionID: connectionID, Type: ReplyOk, Message: message}
}

// Err builds a failure reply from an engine error, classifying it through
// types.Kind (§7).
func Err(connectionID string, err error) Reply {
	return Reply{ConnectionID: connectionID, Type: ReplyErr, Kind: types.Kind(err), Detail: err.Error()}
}

// Encode marshals a Reply to its wire envelope `{"type": ..., "data": ...}`.
func (r Reply) Encode() ([]byte, error) {
	var data interface{}
	switch r.Type {
	case ReplyOk:
		data = struct {
			Message string `json:"message"`
		}{r.Message}
	case ReplyErr:
		data = struct {
			Kind   string `json:"kind"`
			Detail string `json:"detail"`
		}{r.Kind, r.Detail}
	default:
		return nil, fmt.Errorf("editproto: unknown reply type %q", r.Type)
	}
	return json.Marshal(struct {
		Type ReplyType   `json:"type"`
		Data interface{} `json:"data"`
	}{r.Type, data})
}
