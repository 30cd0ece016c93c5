package types

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueOf(t *testing.T) {
	testCases := []struct {
		name     string
		input    any
		expected Value
		wantErr  bool
	}{
		{"int", 5, IntegerValue(5), false},
		{"int32", int32(-7), IntegerValue(-7), false},
		{"uint16", uint16(9), IntegerValue(9), false},
		{"uint64_overflow", uint64(math.MaxUint64), Value{}, true},
		{"float32", float32(1.5), FloatValue(1.5), false},
		{"float64", 2.25, FloatValue(2.25), false},
		{"string", "blue", TextValue("blue"), false},
		{"geojson", GeoJSON(`{"type":"Point"}`), GeoJSONValue(`{"type":"Point"}`), false},
		{"value_passthrough", TextValue("x"), TextValue("x"), false},
		{"bool_rejected", true, Value{}, true},
		{"nil_rejected", nil, Value{}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ValueOf(tc.input)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrValueType)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestValueConversions(t *testing.T) {
	i, err := IntegerValue(42).AsInteger()
	require.NoError(t, err)
	assert.Equal(t, int64(42), i)

	_, err = TextValue("42").AsInteger()
	assert.ErrorIs(t, err, ErrValueType)

	n, err := IntegerValue(3).AsNumber()
	require.NoError(t, err)
	assert.Equal(t, 3.0, n)

	n, err = FloatValue(-0.5).AsNumber()
	require.NoError(t, err)
	assert.Equal(t, -0.5, n)

	_, err = TextValue("x").AsNumber()
	assert.ErrorIs(t, err, ErrValueType)

	s, err := GeoJSONValue(`{"type":"Point"}`).AsText()
	require.NoError(t, err)
	assert.Equal(t, `{"type":"Point"}`, s)

	_, err = FloatValue(1).AsText()
	assert.ErrorIs(t, err, ErrValueType)
}

func TestValueEqualityAndString(t *testing.T) {
	assert.True(t, IntegerValue(1) == IntegerValue(1))
	assert.False(t, IntegerValue(1) == FloatValue(1))
	assert.False(t, TextValue("a") == GeoJSONValue("a"))

	assert.Equal(t, "25", IntegerValue(25).String())
	assert.Equal(t, "0.1", FloatValue(0.1).String())
	assert.Equal(t, "1e+21", FloatValue(1e21).String())
	assert.Equal(t, "blue", TextValue("blue").String())

	assert.Equal(t, int64(7), IntegerValue(7).Interface())
	assert.Equal(t, GeoJSON("g"), GeoJSONValue("g").Interface())
	assert.Nil(t, Value{}.Interface())
	assert.False(t, Value{}.IsValid())
}
