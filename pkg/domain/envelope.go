package domain

import "encoding/json"

// DefaultEndpoint is the RPC endpoint both sides assume unless configured.
const DefaultEndpoint = "/api/_nest_rpc"

// Envelope is the wire payload of one call. Data carries the codec-encoded
// argument bundle ({"args": [...]}) so rich values survive transport.
type Envelope struct {
	Controller string          `json:"controller" yaml:"controller"`
	Action     string          `json:"action" yaml:"action"`
	Data       json.RawMessage `json:"data" yaml:"data"`
}
