package codec

import (
	"encoding/json"
	"fmt"
)

// EncodeArgs wraps a caller argument list into the wire bundle
// {"args": [...]} carried in the envelope's data field.
func EncodeArgs(args []any) (json.RawMessage, error) {
	encoded, err := encodeSlice(args)
	if err != nil {
		return nil, err
	}
	return json.Marshal(map[string]any{"args": encoded})
}

// DecodeArgs unwraps the {"args": [...]} bundle back into an argument list.
// A missing or null bundle decodes to an empty list.
func DecodeArgs(data json.RawMessage) ([]any, error) {
	if len(data) == 0 {
		return nil, nil
	}
	decoded, err := Decode(data)
	if err != nil {
		return nil, err
	}
	if decoded == nil {
		return nil, nil
	}
	bundle, ok := decoded.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("argument bundle must be an object, got %T", decoded)
	}
	rawArgs, ok := bundle["args"]
	if !ok || rawArgs == nil {
		return nil, nil
	}
	args, ok := rawArgs.([]any)
	if !ok {
		return nil, fmt.Errorf("argument bundle args must be an array, got %T", rawArgs)
	}
	return args, nil
}
