package compiler

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datazip-inc/aeroquery/types"
)

func TestExpression(t *testing.T) {
	gen, err := types.NewGenerationPredicate(types.GreaterOrEqual, types.IntegerValue(2))
	require.NoError(t, err)
	ttl, err := types.NewExpiryPredicate(types.Between, types.IntegerValue(60), types.IntegerValue(3600))
	require.NoError(t, err)

	testCases := []struct {
		name     string
		pred     types.Predicate
		expected string
	}{
		{"equal_integer", types.MustPredicate("age", types.Scalar, types.Equal, types.IntegerValue(26)), "rec['age'] == 26"},
		{"equal_text", types.MustPredicate("color", types.Scalar, types.Equal, types.TextValue("blue")), "rec['color'] == 'blue'"},
		{"not_equal", types.MustPredicate("age", types.Scalar, types.NotEqual, types.IntegerValue(-3)), "rec['age'] ~= -3"},
		{"greater", types.MustPredicate("age", types.Scalar, types.GreaterThan, types.FloatValue(2.5)), "rec['age'] > 2.5"},
		{"greater_equal", types.MustPredicate("age", types.Scalar, types.GreaterOrEqual, types.IntegerValue(1)), "rec['age'] >= 1"},
		{"less", types.MustPredicate("name", types.Scalar, types.LessThan, types.TextValue("m")), "rec['name'] < 'm'"},
		{"less_equal", types.MustPredicate("age", types.Scalar, types.LessOrEqual, types.IntegerValue(9)), "rec['age'] <= 9"},
		{"between", types.MustPredicate("age", types.Scalar, types.Between, types.IntegerValue(25), types.IntegerValue(29)), "rec['age'] >= 25 and rec['age'] <= 29"},
		{"starts_with", types.MustPredicate("name", types.Scalar, types.StartsWith, types.TextValue("Ma")), "string.sub(rec['name'],1,string.len('Ma'))=='Ma'"},
		{"ends_with", types.MustPredicate("name", types.Scalar, types.EndsWith, types.TextValue("ry")), "'ry'=='' or string.sub(rec['name'],-string.len('ry'))=='ry'"},
		{"list_contains", types.MustPredicate("tags", types.ListElements, types.Contains, types.TextValue("dogs7")), "containsValue(rec['tags'], 'dogs7')"},
		{"mapkeys_contains", types.MustPredicate("m", types.MapKeys, types.Contains, types.IntegerValue(1)), "containsKey(rec['m'], 1)"},
		{"mapvalues_contains", types.MustPredicate("m", types.MapValues, types.Contains, types.TextValue("x")), "containsValue(rec['m'], 'x')"},
		{"list_between", types.MustPredicate("l", types.ListElements, types.Between, types.IntegerValue(1), types.IntegerValue(5)), "rangeValue(rec['l'], 1, 5)"},
		{"mapkeys_between", types.MustPredicate("m", types.MapKeys, types.Between, types.TextValue("a"), types.TextValue("c")), "rangeKey(rec['m'], 'a', 'c')"},
		{"mapvalues_between", types.MustPredicate("m", types.MapValues, types.Between, types.FloatValue(0.5), types.FloatValue(1.5)), "rangeValue(rec['m'], 0.5, 1.5)"},
		{"generation", gen, "record.gen(rec) >= 2"},
		{"expiry_between", ttl, "record.ttl(rec) >= 60 and record.ttl(rec) <= 3600"},
		{"escaped_field", types.MustPredicate("it's", types.Scalar, types.Equal, types.IntegerValue(1)), `rec['it\'s'] == 1`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Expression(tc.pred)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestExpressionGeoUnsupported(t *testing.T) {
	preds := []types.Predicate{
		types.MustPredicate("loc", types.Scalar, types.GeoWithinRadius, types.FloatValue(-122.0), types.FloatValue(37.5), types.IntegerValue(50000)),
		types.MustPredicate("loc", types.Scalar, types.GeoWithinRegion, types.GeoJSONValue(region)),
		types.MustPredicate("zone", types.MapValues, types.GeoContains, types.GeoJSONValue(`{"type":"Point","coordinates":[1,2]}`)),
	}
	for _, p := range preds {
		got, err := Expression(p)
		assert.ErrorIs(t, err, ErrUnsupportedExpression)
		assert.Empty(t, got)
	}
}

func TestExpressionKeys(t *testing.T) {
	key, err := types.NewKeyPredicate(types.TextValue("u1"))
	require.NoError(t, err)
	_, err = Expression(key)
	assert.ErrorIs(t, err, ErrUnsupportedExpression)

	digest, err := types.NewDigestPredicate([]byte{0, 'a', '\'', 10, 200, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19})
	require.NoError(t, err)
	got, err := Expression(digest)
	require.NoError(t, err)
	assert.Equal(t, `digestOf(rec) == '\000a\'\n`+"\xc8"+`\005\006\007\008\t\n\011\012\r\014\015\016\017\018\019'`, got)
	assert.False(t, Pushdownable(digest))
	assert.False(t, Pushdownable(key))
}

func TestLiteral(t *testing.T) {
	testCases := []struct {
		name     string
		value    types.Value
		expected string
	}{
		{"integer", types.IntegerValue(-42), "-42"},
		{"integer_max", types.IntegerValue(math.MaxInt64), "9223372036854775807"},
		{"float", types.FloatValue(0.1), "0.1"},
		{"float_whole", types.FloatValue(3), "3"},
		{"float_exponent", types.FloatValue(1e21), "1e+21"},
		{"float_nan", types.FloatValue(math.NaN()), "(0/0)"},
		{"float_inf", types.FloatValue(math.Inf(1)), "math.huge"},
		{"float_neg_inf", types.FloatValue(math.Inf(-1)), "(-math.huge)"},
		{"text_plain", types.TextValue("blue"), "'blue'"},
		{"text_quote", types.TextValue("it's"), `'it\'s'`},
		{"text_backslash", types.TextValue(`a\b`), `'a\\b'`},
		{"text_newline", types.TextValue("a\nb\tc\r"), `'a\nb\tc\r'`},
		{"text_control", types.TextValue("a\x00" + "1"), `'a\0001'`},
		{"text_del", types.TextValue("\x7f"), `'\127'`},
		{"text_utf8", types.TextValue("héllo"), "'héllo'"},
		{"text_empty", types.TextValue(""), "''"},
		{"geojson", types.GeoJSONValue(`{"type":"Point"}`), `'{"type":"Point"}'`},
		{"invalid", types.Value{}, "nil"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, literal(tc.value))
		})
	}
}

func TestConjunction(t *testing.T) {
	age := types.MustPredicate("age", types.Scalar, types.Between, types.IntegerValue(25), types.IntegerValue(29))
	color := types.MustPredicate("color", types.Scalar, types.Equal, types.TextValue("blue"))
	loc := types.MustPredicate("loc", types.Scalar, types.GeoWithinRadius, types.FloatValue(0), types.FloatValue(0), types.FloatValue(1))

	expr, unsupported, err := Conjunction(age)
	require.NoError(t, err)
	assert.Equal(t, "rec['age'] >= 25 and rec['age'] <= 29", expr)
	assert.Empty(t, unsupported)

	expr, unsupported, err = Conjunction(age, loc, color)
	require.NoError(t, err)
	assert.Equal(t, "(rec['age'] >= 25 and rec['age'] <= 29) and (rec['color'] == 'blue')", expr)
	assert.Equal(t, []types.Predicate{loc}, unsupported)

	expr, unsupported, err = Conjunction()
	require.NoError(t, err)
	assert.Empty(t, expr)
	assert.Empty(t, unsupported)

	expr, unsupported, err = Conjunction(loc)
	require.NoError(t, err)
	assert.Empty(t, expr)
	assert.Len(t, unsupported, 1)
}
