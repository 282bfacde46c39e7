// Package codec implements the extended serialization scheme that carries
// values JSON cannot express natively: time instants, big integers, sets,
// arbitrary-key mappings, and the undefined marker. The wire form is
// self-describing: rich values travel as {"$type": tag, "$value": ...}
// objects, plain JSON values travel unchanged.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/dexxiez/analog-nest-rpc/pkg/domain"
)

const (
	tagKey   = "$type"
	valueKey = "$value"

	tagDate      = "date"
	tagBigInt    = "bigint"
	tagSet       = "set"
	tagMap       = "map"
	tagUndefined = "undefined"
	tagObject    = "object" // escape for string maps carrying $-prefixed keys
)

// maxSafeInt is the largest integer exactly representable as a float64.
// Integers beyond it ride as tagged decimal strings.
const maxSafeInt = int64(1)<<53 - 1

// Encode serializes v to wire bytes. Values outside the supported universe
// fail with a domain.EncodingError rather than degrading lossily.
func Encode(v any) ([]byte, error) {
	tree, err := EncodeValue(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(tree)
}

// Decode parses wire bytes produced by Encode back into in-memory values.
func Decode(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode wire value: %w", err)
	}
	return DecodeValue(raw)
}

// EncodeValue transforms v into a JSON-marshalable tree. It is exposed so
// callers composing larger payloads (the argument bundle, envelopes) can
// embed encoded values without double-serializing.
func EncodeValue(v any) (any, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case Undefined:
		return map[string]any{tagKey: tagUndefined}, nil
	case bool, string, float64:
		return val, nil
	case float32:
		return float64(val), nil
	case int:
		return encodeInt(int64(val))
	case int8:
		return int64(val), nil
	case int16:
		return int64(val), nil
	case int32:
		return int64(val), nil
	case int64:
		return encodeInt(val)
	case uint8:
		return int64(val), nil
	case uint16:
		return int64(val), nil
	case uint32:
		return int64(val), nil
	case uint:
		return encodeUint(uint64(val))
	case uint64:
		return encodeUint(val)
	case *big.Int:
		if val == nil {
			return nil, nil
		}
		return tagged(tagBigInt, val.String()), nil
	case time.Time:
		return tagged(tagDate, val.Format(time.RFC3339Nano)), nil
	case json.Number:
		return val, nil
	case Set:
		items, err := encodeSlice([]any(val))
		if err != nil {
			return nil, err
		}
		return tagged(tagSet, items), nil
	case Map:
		pairs := make([]any, 0, len(val))
		for _, entry := range val {
			k, err := EncodeValue(entry.Key)
			if err != nil {
				return nil, err
			}
			mv, err := EncodeValue(entry.Value)
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, []any{k, mv})
		}
		return tagged(tagMap, pairs), nil
	case []any:
		return encodeSlice(val)
	case map[string]any:
		return encodeObject(val)
	default:
		return nil, &domain.EncodingError{Value: v, Msg: "unsupported value type"}
	}
}

// DecodeValue reverses EncodeValue over a generic JSON tree (as produced by
// a json.Decoder with UseNumber).
func DecodeValue(raw any) (any, error) {
	switch val := raw.(type) {
	case nil, bool, string:
		return val, nil
	case json.Number:
		return decodeNumber(val)
	case float64:
		// Tolerate trees decoded without UseNumber.
		return val, nil
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			dv, err := DecodeValue(item)
			if err != nil {
				return nil, err
			}
			out[i] = dv
		}
		return out, nil
	case map[string]any:
		if tag, ok := val[tagKey].(string); ok {
			return decodeTagged(tag, val[valueKey])
		}
		out := make(map[string]any, len(val))
		for k, item := range val {
			dv, err := DecodeValue(item)
			if err != nil {
				return nil, err
			}
			out[k] = dv
		}
		return out, nil
	default:
		return nil, &domain.EncodingError{Value: raw, Msg: "unsupported wire value"}
	}
}

func tagged(tag string, value any) map[string]any {
	return map[string]any{tagKey: tag, valueKey: value}
}

func encodeInt(v int64) (any, error) {
	if v > maxSafeInt || v < -maxSafeInt {
		return tagged(tagBigInt, big.NewInt(v).String()), nil
	}
	return v, nil
}

func encodeUint(v uint64) (any, error) {
	if v > uint64(maxSafeInt) {
		return tagged(tagBigInt, new(big.Int).SetUint64(v).String()), nil
	}
	return int64(v), nil
}

func encodeSlice(items []any) ([]any, error) {
	out := make([]any, len(items))
	for i, item := range items {
		ev, err := EncodeValue(item)
		if err != nil {
			return nil, err
		}
		out[i] = ev
	}
	return out, nil
}

func encodeObject(obj map[string]any) (any, error) {
	out := make(map[string]any, len(obj))
	escape := false
	for k, item := range obj {
		if strings.HasPrefix(k, "$") {
			escape = true
		}
		ev, err := EncodeValue(item)
		if err != nil {
			return nil, err
		}
		out[k] = ev
	}
	if escape {
		// A literal $-prefixed key would be mistaken for a type tag.
		return tagged(tagObject, out), nil
	}
	return out, nil
}

func decodeNumber(n json.Number) (any, error) {
	s := n.String()
	if strings.ContainsAny(s, ".eE") {
		f, err := n.Float64()
		if err != nil {
			return nil, fmt.Errorf("decode number %q: %w", s, err)
		}
		return f, nil
	}
	if i, err := n.Int64(); err == nil {
		return i, nil
	}
	// Out-of-range integer literal; keep exact precision.
	bi, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("decode number %q: not an integer", s)
	}
	return bi, nil
}

func decodeTagged(tag string, raw any) (any, error) {
	switch tag {
	case tagUndefined:
		return Undefined{}, nil
	case tagDate:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("date value must be a string, got %T", raw)
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return nil, fmt.Errorf("decode date: %w", err)
		}
		return t, nil
	case tagBigInt:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("bigint value must be a string, got %T", raw)
		}
		bi, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return nil, fmt.Errorf("decode bigint: invalid literal %q", s)
		}
		return bi, nil
	case tagSet:
		items, ok := raw.([]any)
		if !ok {
			return nil, fmt.Errorf("set value must be an array, got %T", raw)
		}
		out := make(Set, len(items))
		for i, item := range items {
			dv, err := DecodeValue(item)
			if err != nil {
				return nil, err
			}
			out[i] = dv
		}
		return out, nil
	case tagMap:
		pairs, ok := raw.([]any)
		if !ok {
			return nil, fmt.Errorf("map value must be an array of pairs, got %T", raw)
		}
		out := make(Map, 0, len(pairs))
		for _, p := range pairs {
			pair, ok := p.([]any)
			if !ok || len(pair) != 2 {
				return nil, fmt.Errorf("map entry must be a [key, value] pair")
			}
			k, err := DecodeValue(pair[0])
			if err != nil {
				return nil, err
			}
			v, err := DecodeValue(pair[1])
			if err != nil {
				return nil, err
			}
			out = append(out, Entry{Key: k, Value: v})
		}
		return out, nil
	case tagObject:
		obj, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("object value must be an object, got %T", raw)
		}
		out := make(map[string]any, len(obj))
		for k, item := range obj {
			dv, err := DecodeValue(item)
			if err != nil {
				return nil, err
			}
			out[k] = dv
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown type tag %q", tag)
	}
}
