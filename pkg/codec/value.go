package codec

// Undefined is the absence-of-value marker, distinct from nil. It survives
// the wire as its own tagged value.
type Undefined struct{}

// Set is an ordered collection of unique values. Order is preserved across
// the wire; uniqueness is the caller's contract.
type Set []any

// Entry is one key/value pair of a Map.
type Entry struct {
	Key   any
	Value any
}

// Map is a key-unique mapping whose keys are not restricted to strings.
// Pair order is preserved across the wire.
type Map []Entry

// NewSet builds a Set from values, dropping duplicates of comparable values
// while preserving first-seen order.
func NewSet(values ...any) Set {
	seen := make(map[any]struct{}, len(values))
	out := make(Set, 0, len(values))
	for _, v := range values {
		if isComparable(v) {
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
		}
		out = append(out, v)
	}
	return out
}

func isComparable(v any) bool {
	switch v.(type) {
	case nil, bool, string, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	}
	return false
}
