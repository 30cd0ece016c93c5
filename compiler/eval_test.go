package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datazip-inc/aeroquery/types"
)

func record(bins map[string]any) *types.KeyRecord {
	return &types.KeyRecord{Bins: bins, Generation: 3, Expiration: 120}
}

func TestMatchesScalar(t *testing.T) {
	testCases := []struct {
		name     string
		pred     types.Predicate
		bins     map[string]any
		expected bool
	}{
		{"equal_integer", types.MustPredicate("age", types.Scalar, types.Equal, types.IntegerValue(26)), map[string]any{"age": int64(26)}, true},
		{"equal_integer_float_bin", types.MustPredicate("age", types.Scalar, types.Equal, types.IntegerValue(26)), map[string]any{"age": 26.0}, true},
		{"equal_text_vs_number", types.MustPredicate("age", types.Scalar, types.Equal, types.TextValue("26")), map[string]any{"age": int64(26)}, false},
		{"equal_missing", types.MustPredicate("age", types.Scalar, types.Equal, types.IntegerValue(26)), map[string]any{}, false},
		{"not_equal_missing", types.MustPredicate("age", types.Scalar, types.NotEqual, types.IntegerValue(26)), map[string]any{}, true},
		{"not_equal_mixed", types.MustPredicate("age", types.Scalar, types.NotEqual, types.IntegerValue(26)), map[string]any{"age": "26"}, true},
		{"greater_mixed", types.MustPredicate("age", types.Scalar, types.GreaterThan, types.IntegerValue(1)), map[string]any{"age": "9"}, false},
		{"greater_text", types.MustPredicate("name", types.Scalar, types.GreaterThan, types.TextValue("M")), map[string]any{"name": "Mary"}, true},
		{"less_equal_boundary", types.MustPredicate("age", types.Scalar, types.LessOrEqual, types.IntegerValue(29)), map[string]any{"age": int64(29)}, true},
		{"less_than_boundary", types.MustPredicate("age", types.Scalar, types.LessThan, types.IntegerValue(29)), map[string]any{"age": int64(29)}, false},
		{"greater_equal_bool", types.MustPredicate("flag", types.Scalar, types.GreaterOrEqual, types.IntegerValue(0)), map[string]any{"flag": true}, false},
		{"between_inclusive_low", types.MustPredicate("age", types.Scalar, types.Between, types.IntegerValue(25), types.IntegerValue(29)), map[string]any{"age": int64(25)}, true},
		{"between_inclusive_high", types.MustPredicate("age", types.Scalar, types.Between, types.IntegerValue(25), types.IntegerValue(29)), map[string]any{"age": int64(29)}, true},
		{"between_outside", types.MustPredicate("age", types.Scalar, types.Between, types.IntegerValue(25), types.IntegerValue(29)), map[string]any{"age": 29.5}, false},
		{"between_inverted", types.MustPredicate("age", types.Scalar, types.Between, types.IntegerValue(29), types.IntegerValue(25)), map[string]any{"age": int64(27)}, false},
		{"starts_with", types.MustPredicate("name", types.Scalar, types.StartsWith, types.TextValue("Ma")), map[string]any{"name": "Mary"}, true},
		{"starts_with_number", types.MustPredicate("code", types.Scalar, types.StartsWith, types.TextValue("12")), map[string]any{"code": int64(123)}, true},
		{"starts_with_float", types.MustPredicate("code", types.Scalar, types.StartsWith, types.TextValue("2.")), map[string]any{"code": 2.5}, true},
		{"starts_with_list", types.MustPredicate("tags", types.Scalar, types.StartsWith, types.TextValue("a")), map[string]any{"tags": []any{"a"}}, false},
		{"ends_with", types.MustPredicate("name", types.Scalar, types.EndsWith, types.TextValue("ry")), map[string]any{"name": "Mary"}, true},
		{"ends_with_longer_value", types.MustPredicate("name", types.Scalar, types.EndsWith, types.TextValue("xMary")), map[string]any{"name": "Mary"}, false},
		{"ends_with_empty_missing", types.MustPredicate("name", types.Scalar, types.EndsWith, types.TextValue("")), map[string]any{}, true},
		{"ends_with_empty_number", types.MustPredicate("name", types.Scalar, types.EndsWith, types.TextValue("")), map[string]any{"name": int64(4)}, true},
		{"equal_geojson_bin", types.MustPredicate("loc", types.Scalar, types.Equal, types.TextValue("x")), map[string]any{"loc": types.GeoJSON("x")}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Matches(tc.pred, record(tc.bins)))
		})
	}
}

func TestMatchesCollections(t *testing.T) {
	bins := map[string]any{
		"tags":   []any{"dogs7", int64(3), 4.5},
		"scores": map[any]any{"math": int64(90), "art": int64(72), int64(7): "seven"},
		"nested": []any{[]any{"dogs7"}},
	}

	testCases := []struct {
		name     string
		pred     types.Predicate
		expected bool
	}{
		{"list_contains_text", types.MustPredicate("tags", types.ListElements, types.Contains, types.TextValue("dogs7")), true},
		{"list_contains_integer_as_float", types.MustPredicate("tags", types.ListElements, types.Contains, types.FloatValue(3)), true},
		{"list_contains_missing_value", types.MustPredicate("tags", types.ListElements, types.Contains, types.TextValue("cats")), false},
		{"list_contains_nested", types.MustPredicate("nested", types.ListElements, types.Contains, types.TextValue("dogs7")), false},
		{"list_contains_missing_bin", types.MustPredicate("none", types.ListElements, types.Contains, types.TextValue("x")), false},
		{"list_context_on_map_values", types.MustPredicate("scores", types.ListElements, types.Contains, types.IntegerValue(90)), true},
		{"mapkeys_contains", types.MustPredicate("scores", types.MapKeys, types.Contains, types.TextValue("art")), true},
		{"mapkeys_contains_integer", types.MustPredicate("scores", types.MapKeys, types.Contains, types.IntegerValue(7)), true},
		{"mapkeys_on_list", types.MustPredicate("tags", types.MapKeys, types.Contains, types.TextValue("dogs7")), false},
		{"mapvalues_contains", types.MustPredicate("scores", types.MapValues, types.Contains, types.TextValue("seven")), true},
		{"list_between", types.MustPredicate("tags", types.ListElements, types.Between, types.IntegerValue(4), types.IntegerValue(5)), true},
		{"list_between_text", types.MustPredicate("tags", types.ListElements, types.Between, types.TextValue("d"), types.TextValue("e")), true},
		{"list_between_none", types.MustPredicate("tags", types.ListElements, types.Between, types.IntegerValue(10), types.IntegerValue(20)), false},
		{"mapkeys_between_integer", types.MustPredicate("scores", types.MapKeys, types.Between, types.IntegerValue(5), types.IntegerValue(8)), true},
		{"mapkeys_between_text", types.MustPredicate("scores", types.MapKeys, types.Between, types.TextValue("a"), types.TextValue("b")), true},
		{"mapvalues_between", types.MustPredicate("scores", types.MapValues, types.Between, types.IntegerValue(80), types.IntegerValue(100)), true},
		{"mapvalues_between_none", types.MustPredicate("scores", types.MapValues, types.Between, types.IntegerValue(0), types.IntegerValue(10)), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Matches(tc.pred, record(bins)))
		})
	}
}

func TestMatchesMetadata(t *testing.T) {
	gen, err := types.NewGenerationPredicate(types.Equal, types.IntegerValue(3))
	require.NoError(t, err)
	ttl, err := types.NewExpiryPredicate(types.Between, types.IntegerValue(60), types.IntegerValue(3600))
	require.NoError(t, err)
	stale, err := types.NewGenerationPredicate(types.LessThan, types.IntegerValue(3))
	require.NoError(t, err)

	rec := record(map[string]any{"@generation": int64(99)})
	assert.True(t, Matches(gen, rec))
	assert.True(t, Matches(ttl, rec))
	assert.False(t, Matches(stale, rec))
	assert.True(t, MatchesAll(rec, gen, ttl))
	assert.False(t, MatchesAll(rec, gen, stale))
	assert.True(t, MatchesAll(rec))
	assert.False(t, Matches(gen, nil))
}

func TestMatchesKeys(t *testing.T) {
	digest := make([]byte, 20)
	digest[19] = 7
	rec := &types.KeyRecord{Key: &types.Key{UserKey: int64(42), Digest: digest}, Bins: map[string]any{}}

	byKey, err := types.NewKeyPredicate(types.IntegerValue(42))
	require.NoError(t, err)
	otherKey, err := types.NewKeyPredicate(types.TextValue("42"))
	require.NoError(t, err)
	byDigest, err := types.NewDigestPredicate(digest)
	require.NoError(t, err)
	otherDigest, err := types.NewDigestPredicate(make([]byte, 20))
	require.NoError(t, err)

	assert.True(t, Matches(byKey, rec))
	assert.False(t, Matches(otherKey, rec))
	assert.True(t, Matches(byDigest, rec))
	assert.False(t, Matches(otherDigest, rec))

	keyless := &types.KeyRecord{Bins: map[string]any{}}
	assert.False(t, Matches(byKey, keyless))
	assert.False(t, Matches(byDigest, keyless))
}

func TestMatchesFilter(t *testing.T) {
	bins := map[string]any{
		"age":    int64(26),
		"score":  26.0,
		"color":  "blue",
		"tags":   []any{"dogs7", int64(3)},
		"scores": map[any]any{"math": int64(90), int64(7): "seven"},
	}

	testCases := []struct {
		name     string
		filter   *types.IndexFilter
		expected bool
	}{
		{"nil_filter", nil, true},
		{"equal_integer", &types.IndexFilter{Bin: "age", Kind: types.FilterEqual, Value: types.IntegerValue(26)}, true},
		{"equal_integer_float_bin_not_indexed", &types.IndexFilter{Bin: "score", Kind: types.FilterEqual, Value: types.IntegerValue(26)}, false},
		{"equal_text", &types.IndexFilter{Bin: "color", Kind: types.FilterEqual, Value: types.TextValue("blue")}, true},
		{"equal_text_on_integer", &types.IndexFilter{Bin: "age", Kind: types.FilterEqual, Value: types.TextValue("26")}, false},
		{"range_inclusive", &types.IndexFilter{Bin: "age", Kind: types.FilterRange, Begin: 26, End: 26}, true},
		{"range_outside", &types.IndexFilter{Bin: "age", Kind: types.FilterRange, Begin: 27, End: 30}, false},
		{"missing_bin", &types.IndexFilter{Bin: "none", Kind: types.FilterEqual, Value: types.IntegerValue(1)}, false},
		{"list_contains", &types.IndexFilter{Bin: "tags", Collection: types.ListElements, Kind: types.FilterContains, Value: types.TextValue("dogs7")}, true},
		{"list_range", &types.IndexFilter{Bin: "tags", Collection: types.ListElements, Kind: types.FilterRange, Begin: 1, End: 3}, true},
		{"list_index_on_scalar", &types.IndexFilter{Bin: "age", Collection: types.ListElements, Kind: types.FilterContains, Value: types.IntegerValue(26)}, false},
		{"mapkeys_contains", &types.IndexFilter{Bin: "scores", Collection: types.MapKeys, Kind: types.FilterContains, Value: types.IntegerValue(7)}, true},
		{"mapvalues_contains", &types.IndexFilter{Bin: "scores", Collection: types.MapValues, Kind: types.FilterContains, Value: types.TextValue("seven")}, true},
		{"mapvalues_on_list", &types.IndexFilter{Bin: "tags", Collection: types.MapValues, Kind: types.FilterContains, Value: types.TextValue("dogs7")}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, MatchesFilter(tc.filter, bins))
		})
	}
}
