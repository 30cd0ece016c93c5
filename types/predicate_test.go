package types

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPredicateValidation(t *testing.T) {
	region := GeoJSONValue(`{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]}`)

	testCases := []struct {
		name     string
		field    string
		ctx      CollectionContext
		op       Operator
		operands []Value
		wantErr  bool
	}{
		{"equal_integer", "age", Scalar, Equal, []Value{IntegerValue(26)}, false},
		{"equal_text", "color", Scalar, Equal, []Value{TextValue("blue")}, false},
		{"equal_no_operand", "age", Scalar, Equal, nil, true},
		{"equal_two_operands", "age", Scalar, Equal, []Value{IntegerValue(1), IntegerValue(2)}, true},
		{"equal_in_list_context", "tags", ListElements, Equal, []Value{TextValue("x")}, true},
		{"equal_geojson_operand", "loc", Scalar, Equal, []Value{region}, true},
		{"between_same_type", "age", Scalar, Between, []Value{IntegerValue(25), IntegerValue(29)}, false},
		{"between_mixed_type", "age", Scalar, Between, []Value{IntegerValue(25), FloatValue(29)}, true},
		{"between_map_values", "scores", MapValues, Between, []Value{IntegerValue(1), IntegerValue(9)}, false},
		{"startswith_text", "name", Scalar, StartsWith, []Value{TextValue("Ma")}, false},
		{"startswith_integer", "name", Scalar, StartsWith, []Value{IntegerValue(1)}, true},
		{"contains_scalar_context", "tags", Scalar, Contains, []Value{TextValue("x")}, true},
		{"contains_list", "tags", ListElements, Contains, []Value{TextValue("dogs7")}, false},
		{"contains_mapkeys_float", "m", MapKeys, Contains, []Value{FloatValue(1.5)}, false},
		{"geo_region", "loc", Scalar, GeoWithinRegion, []Value{region}, false},
		{"geo_region_text", "loc", Scalar, GeoWithinRegion, []Value{TextValue("{}")}, true},
		{"geo_contains_list", "areas", ListElements, GeoContains, []Value{region}, false},
		{"geo_radius", "loc", Scalar, GeoWithinRadius, []Value{FloatValue(-122.0), FloatValue(37.5), IntegerValue(50000)}, false},
		{"geo_radius_text", "loc", Scalar, GeoWithinRadius, []Value{TextValue("a"), FloatValue(37.5), IntegerValue(5)}, true},
		{"geo_radius_negative", "loc", Scalar, GeoWithinRadius, []Value{FloatValue(0), FloatValue(0), FloatValue(-1)}, true},
		{"geo_radius_arity", "loc", Scalar, GeoWithinRadius, []Value{FloatValue(0), FloatValue(0)}, true},
		{"empty_field", "", Scalar, Equal, []Value{IntegerValue(1)}, true},
		{"unknown_operator", "age", Scalar, Operator(99), []Value{IntegerValue(1)}, true},
		{"zero_value_operand", "age", Scalar, Equal, []Value{{}}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := NewPredicate(tc.field, tc.ctx, tc.op, tc.operands...)
			if tc.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrMalformedPredicate)
				var malformed *MalformedPredicateError
				assert.True(t, errors.As(err, &malformed))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.field, p.Field())
			assert.Equal(t, tc.ctx, p.Context())
			assert.Equal(t, tc.op, p.Operator())
			assert.Equal(t, tc.operands, p.Operands())
		})
	}
}

func TestPredicateImmutability(t *testing.T) {
	operands := []Value{IntegerValue(25), IntegerValue(29)}
	p := MustPredicate("age", Scalar, Between, operands...)

	operands[0] = IntegerValue(0)
	assert.Equal(t, IntegerValue(25), p.Operand(0))

	got := p.Operands()
	got[1] = IntegerValue(100)
	assert.Equal(t, IntegerValue(29), p.Operand(1))

	assert.Equal(t, Value{}, p.Operand(2))
	assert.Equal(t, Value{}, p.Operand(-1))
}

func TestPredicateEquality(t *testing.T) {
	a := MustPredicate("age", Scalar, Equal, IntegerValue(26))
	b := MustPredicate("age", Scalar, Equal, IntegerValue(26))
	c := MustPredicate("age", Scalar, Equal, FloatValue(26))

	assert.True(t, a == b)
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.Equal(t, "age:default:EQ:26", a.String())
	assert.Equal(t, "age:default:BETWEEN:25:29", MustPredicate("age", Scalar, Between, IntegerValue(25), IntegerValue(29)).String())
}

func TestMustPredicatePanics(t *testing.T) {
	assert.Panics(t, func() {
		MustPredicate("age", Scalar, Between, IntegerValue(1))
	})
}

func TestMetadataPredicates(t *testing.T) {
	gen, err := NewGenerationPredicate(GreaterOrEqual, IntegerValue(2))
	require.NoError(t, err)
	assert.Equal(t, MetaGeneration, gen.Meta())
	assert.True(t, gen.IsMeta())
	assert.Equal(t, "@generation", gen.Field())

	ttl, err := NewExpiryPredicate(Between, IntegerValue(60), IntegerValue(3600))
	require.NoError(t, err)
	assert.Equal(t, MetaExpiry, ttl.Meta())

	_, err = NewGenerationPredicate(StartsWith, TextValue("1"))
	assert.ErrorIs(t, err, ErrMalformedPredicate)

	_, err = NewExpiryPredicate(Equal, FloatValue(1.5))
	assert.ErrorIs(t, err, ErrMalformedPredicate)

	bin := MustPredicate("@generation", Scalar, Equal, IntegerValue(1))
	assert.False(t, bin.IsMeta())
	assert.NotEqual(t, bin, gen)
}

func TestKeyPredicates(t *testing.T) {
	key, err := NewKeyPredicate(TextValue("u1"))
	require.NoError(t, err)
	assert.Equal(t, MetaKey, key.Meta())
	assert.Equal(t, "@key", key.Field())
	assert.Equal(t, Equal, key.Operator())
	assert.Nil(t, key.Digest())

	_, err = NewKeyPredicate(IntegerValue(7))
	assert.NoError(t, err)
	_, err = NewKeyPredicate(FloatValue(1.5))
	assert.ErrorIs(t, err, ErrMalformedPredicate)

	raw := bytes.Repeat([]byte{0xab}, 20)
	digest, err := NewDigestPredicate(raw)
	require.NoError(t, err)
	assert.Equal(t, MetaDigest, digest.Meta())
	assert.Equal(t, raw, digest.Digest())
	assert.Equal(t, "@digest:default:EQ:"+strings.Repeat("ab", 20), digest.String())

	raw[0] = 0
	assert.Equal(t, byte(0xab), digest.Digest()[0])

	_, err = NewDigestPredicate([]byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrMalformedPredicate)
}

func TestOperatorTableCoversAllOperators(t *testing.T) {
	for _, op := range AllOperators() {
		spec, ok := op.Spec()
		require.True(t, ok, op.String())
		assert.NotZero(t, spec.Arity, op.String())
		assert.NotEmpty(t, spec.Types, op.String())
		assert.NotEmpty(t, spec.Contexts, op.String())
		assert.NotContains(t, op.String(), "Operator(", "operator without a name")
	}
	assert.Len(t, AllOperators(), 13)
}

func TestParseCollectionContext(t *testing.T) {
	for _, ctx := range AllContexts() {
		parsed, err := ParseCollectionContext(ctx.String())
		require.NoError(t, err)
		assert.Equal(t, ctx, parsed)
	}
	parsed, err := ParseCollectionContext("MAPKEYS")
	require.NoError(t, err)
	assert.Equal(t, MapKeys, parsed)

	_, err = ParseCollectionContext("stack")
	assert.Error(t, err)
}
