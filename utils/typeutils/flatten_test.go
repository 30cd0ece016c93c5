package typeutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datazip-inc/aeroquery/types"
)

func TestFlatten(t *testing.T) {
	bins := map[string]any{
		"name":   "Mary",
		"age":    int64(24),
		"ratio":  0.5,
		"gone":   nil,
		"tags":   []any{"a", int64(1)},
		"scores": map[any]any{"math": int64(90)},
		"loc":    types.GeoJSON(`{"type":"Point","coordinates":[1,2]}`),
		"blob":   []byte("hi"),
		"nested": []any{map[any]any{int64(1): types.GeoJSON(`{"type":"Point","coordinates":[0,0]}`)}},
	}

	out, err := NewFlattener().Flatten(bins)
	require.NoError(t, err)
	assert.Equal(t, "Mary", out["name"])
	assert.Equal(t, int64(24), out["age"])
	assert.Equal(t, 0.5, out["ratio"])
	assert.NotContains(t, out, "gone")
	assert.Equal(t, `["a",1]`, out["tags"])
	assert.Equal(t, `{"math":90}`, out["scores"])
	assert.Equal(t, `{"type":"Point","coordinates":[1,2]}`, out["loc"])
	assert.Equal(t, "hi", out["blob"])
	assert.JSONEq(t, `[{"1":{"type":"Point","coordinates":[0,0]}}]`, out["nested"].(string))
}
