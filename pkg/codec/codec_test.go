package codec

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dexxiez/analog-nest-rpc/pkg/domain"
)

func TestRoundTrip(t *testing.T) {
	instant := time.Date(2024, 3, 14, 15, 9, 26, 535897932, time.UTC)
	huge, ok := new(big.Int).SetString("123456789012345678901234567890", 10)
	require.True(t, ok)

	tests := []struct {
		name  string
		value any
	}{
		{"nil", nil},
		{"bool", true},
		{"string", "hello"},
		{"float", 1.5},
		{"int", int64(42)},
		{"negative int", int64(-7)},
		{"max safe int", int64(1)<<53 - 1},
		{"big int", huge},
		{"date", instant},
		{"undefined", Undefined{}},
		{"set", Set{"a", "b", int64(3)}},
		{"map with non-string keys", Map{
			{Key: int64(1), Value: "one"},
			{Key: "two", Value: int64(2)},
		}},
		{"array", []any{"x", int64(1), nil}},
		{"object", map[string]any{"name": "Ada", "age": int64(36)}},
		{"nested", map[string]any{
			"when":  instant,
			"items": []any{Set{int64(1), int64(2)}, Undefined{}},
		}},
		{"object with dollar key", map[string]any{"$type": "not a tag", "x": int64(1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wire, err := Encode(tt.value)
			require.NoError(t, err)

			back, err := Decode(wire)
			require.NoError(t, err)
			assert.Equal(t, tt.value, back)
		})
	}
}

func TestEncodeOversizedIntegersAsBigInt(t *testing.T) {
	wire, err := Encode(int64(1) << 60)
	require.NoError(t, err)

	back, err := Decode(wire)
	require.NoError(t, err)
	assert.Equal(t, new(big.Int).Lsh(big.NewInt(1), 60), back)

	wire, err = Encode(uint64(1) << 60)
	require.NoError(t, err)

	back, err = Decode(wire)
	require.NoError(t, err)
	assert.Equal(t, new(big.Int).Lsh(big.NewInt(1), 60), back)
}

func TestUndefinedIsDistinctFromNil(t *testing.T) {
	wire, err := Encode(Undefined{})
	require.NoError(t, err)

	back, err := Decode(wire)
	require.NoError(t, err)
	assert.Equal(t, Undefined{}, back)
	assert.NotNil(t, back)

	wire, err = Encode(nil)
	require.NoError(t, err)

	back, err = Decode(wire)
	require.NoError(t, err)
	assert.Nil(t, back)
}

func TestEncodeRejectsUnsupportedTypes(t *testing.T) {
	type opaque struct{ X int }

	_, err := Encode(opaque{X: 1})
	require.Error(t, err)

	var encErr *domain.EncodingError
	assert.ErrorAs(t, err, &encErr)

	// Unsupported values nested in composites fail too.
	_, err = Encode(map[string]any{"inner": make(chan int)})
	assert.Error(t, err)
}

func TestDecodeRejectsUnknownTag(t *testing.T) {
	_, err := Decode([]byte(`{"$type":"mystery","$value":1}`))
	assert.ErrorContains(t, err, "unknown type tag")
}

func TestSetPreservesOrder(t *testing.T) {
	s := NewSet("b", "a", "b", int64(1))
	assert.Equal(t, Set{"b", "a", int64(1)}, s)

	wire, err := Encode(s)
	require.NoError(t, err)
	back, err := Decode(wire)
	require.NoError(t, err)
	assert.Equal(t, s, back)
}

func TestArgsBundle(t *testing.T) {
	instant := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	args := []any{"Ada", instant, Undefined{}}

	data, err := EncodeArgs(args)
	require.NoError(t, err)

	back, err := DecodeArgs(data)
	require.NoError(t, err)
	assert.Equal(t, args, back)
}

func TestDecodeArgsEmpty(t *testing.T) {
	back, err := DecodeArgs(nil)
	require.NoError(t, err)
	assert.Empty(t, back)

	back, err = DecodeArgs([]byte(`{"args":null}`))
	require.NoError(t, err)
	assert.Empty(t, back)
}
