package memory

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datazip-inc/aeroquery/compiler"
	"github.com/datazip-inc/aeroquery/types"
)

var corpusWords = []string{"", "a", "ab", "abc", "b", "ba", "3", "2.5", "dogs7", "Ma", "Mary"}

func randomScalar(r *rand.Rand) any {
	switch r.Intn(5) {
	case 0, 1:
		return int64(r.Intn(7) - 1)
	case 2:
		return float64(r.Intn(13)-2) / 2
	case 3:
		return corpusWords[r.Intn(len(corpusWords))]
	default:
		return r.Intn(2) == 0
	}
}

func randomKey(r *rand.Rand) any {
	if r.Intn(3) == 0 {
		return int64(r.Intn(5))
	}
	return corpusWords[1+r.Intn(len(corpusWords)-1)]
}

func randomBin(r *rand.Rand) (any, bool) {
	switch r.Intn(9) {
	case 0:
		return nil, false
	case 1, 2:
		list := make([]any, r.Intn(5))
		for idx := range list {
			list[idx] = randomScalar(r)
		}
		return list, true
	case 3, 4:
		m := map[any]any{}
		for idx := r.Intn(4); idx > 0; idx-- {
			m[randomKey(r)] = randomScalar(r)
		}
		return m, true
	case 5:
		return types.GeoJSON(fmt.Sprintf(`{"type":"Point","coordinates":[%d,%d]}`, r.Intn(10), r.Intn(10))), true
	default:
		return randomScalar(r), true
	}
}

func scalarCorpus(r *rand.Rand, size int) []*types.KeyRecord {
	records := make([]*types.KeyRecord, size)
	for idx := range records {
		bins := map[string]any{}
		if v, ok := randomBin(r); ok {
			bins["v"] = v
		}
		records[idx] = &types.KeyRecord{
			Key:        &types.Key{Namespace: "test", UserKey: int64(idx)},
			Bins:       bins,
			Generation: uint32(r.Intn(5)),
			Expiration: uint32(r.Intn(3) * 60),
		}
	}
	return records
}

func operandPool() []types.Value {
	pool := []types.Value{types.FloatValue(2.5), types.FloatValue(3.0), types.FloatValue(-0.5)}
	for i := int64(-1); i <= 5; i++ {
		pool = append(pool, types.IntegerValue(i))
	}
	for _, word := range corpusWords {
		pool = append(pool, types.TextValue(word))
	}
	return pool
}

// predicates builds every well-formed non-geo predicate over bin "v" from the
// operand pool, for every legal context.
func predicates(t *testing.T) []types.Predicate {
	t.Helper()
	pool := operandPool()

	var preds []types.Predicate
	for _, op := range types.AllOperators() {
		if op.IsGeo() {
			continue
		}
		for _, ctx := range types.AllContexts() {
			for idx, lo := range pool {
				if op != types.Between {
					if p, err := types.NewPredicate("v", ctx, op, lo); err == nil {
						preds = append(preds, p)
					}
					continue
				}
				for _, hi := range pool[idx:] {
					if p, err := types.NewPredicate("v", ctx, op, lo, hi); err == nil {
						preds = append(preds, p)
					}
				}
			}
		}
	}

	for _, op := range []types.Operator{types.Equal, types.NotEqual, types.GreaterThan, types.LessOrEqual} {
		gen, err := types.NewGenerationPredicate(op, types.IntegerValue(2))
		require.NoError(t, err)
		ttl, err := types.NewExpiryPredicate(op, types.IntegerValue(60))
		require.NoError(t, err)
		preds = append(preds, gen, ttl)
	}
	between, err := types.NewExpiryPredicate(types.Between, types.IntegerValue(1), types.IntegerValue(100))
	require.NoError(t, err)
	return append(preds, between)
}

// The compiled expression evaluated by the Lua runtime and the in-process
// evaluator must agree on every row.
func TestExpressionAgreesWithInProcessEvaluation(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	records := scalarCorpus(r, 150)
	ctx := context.Background()

	preds := predicates(t)
	require.NotEmpty(t, preds)

	for _, p := range preds {
		expr, err := compiler.Expression(p)
		require.NoError(t, err, p.String())

		filter, err := newLuaFilter(expr)
		require.NoError(t, err, expr)

		for _, rec := range records {
			luaResult, err := filter.Match(ctx, rec)
			require.NoError(t, err)
			if !assert.Equal(t, luaResult, compiler.Matches(p, rec), "%s on %#v (gen=%d ttl=%d): %s", p, rec.Bins["v"], rec.Generation, rec.Expiration, expr) {
				break
			}
		}
		require.NoError(t, filter.Close())
	}
}

func indexTypedCorpus(r *rand.Rand, size int) []*types.KeyRecord {
	scalar := func() any {
		if r.Intn(2) == 0 {
			return int64(r.Intn(8))
		}
		return corpusWords[1+r.Intn(len(corpusWords)-1)]
	}

	records := make([]*types.KeyRecord, size)
	for idx := range records {
		bins := map[string]any{}
		if r.Intn(6) > 0 {
			bins["n"] = int64(r.Intn(10))
		}
		if r.Intn(6) > 0 {
			bins["s"] = corpusWords[r.Intn(len(corpusWords))]
		}
		if r.Intn(6) > 0 {
			list := make([]any, r.Intn(4))
			for i := range list {
				list[i] = scalar()
			}
			bins["l"] = list
		}
		if r.Intn(6) > 0 {
			m := map[any]any{}
			for i := r.Intn(4); i > 0; i-- {
				m[randomKey(r)] = scalar()
			}
			bins["m"] = m
		}
		records[idx] = &types.KeyRecord{Key: &types.Key{UserKey: int64(idx)}, Bins: bins}
	}
	return records
}

// On bins holding the value types their index stores, an index lookup keeps
// exactly the rows the filter expression keeps.
func TestPushdownAgreesWithExpression(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	records := indexTypedCorpus(r, 200)
	ctx := context.Background()

	var preds []types.Predicate
	for i := int64(0); i < 8; i++ {
		preds = append(preds,
			types.MustPredicate("n", types.Scalar, types.Equal, types.IntegerValue(i)),
			types.MustPredicate("n", types.Scalar, types.Between, types.IntegerValue(i), types.IntegerValue(i+2)),
			types.MustPredicate("l", types.ListElements, types.Contains, types.IntegerValue(i)),
			types.MustPredicate("l", types.ListElements, types.Between, types.IntegerValue(i), types.IntegerValue(i+1)),
			types.MustPredicate("m", types.MapKeys, types.Contains, types.IntegerValue(i)),
			types.MustPredicate("m", types.MapKeys, types.Between, types.IntegerValue(0), types.IntegerValue(i)),
			types.MustPredicate("m", types.MapValues, types.Contains, types.IntegerValue(i)),
			types.MustPredicate("m", types.MapValues, types.Between, types.IntegerValue(i), types.IntegerValue(7)),
		)
	}
	for _, word := range corpusWords {
		preds = append(preds,
			types.MustPredicate("s", types.Scalar, types.Equal, types.TextValue(word)),
			types.MustPredicate("l", types.ListElements, types.Contains, types.TextValue(word)),
			types.MustPredicate("m", types.MapKeys, types.Contains, types.TextValue(word)),
			types.MustPredicate("m", types.MapValues, types.Contains, types.TextValue(word)),
		)
	}

	for _, p := range preds {
		filter, ok := compiler.IndexFilter(p)
		require.True(t, ok, p.String())

		expr, err := compiler.Expression(p)
		require.NoError(t, err)
		lf, err := newLuaFilter(expr)
		require.NoError(t, err)

		for _, rec := range records {
			luaResult, err := lf.Match(ctx, rec)
			require.NoError(t, err)
			if !assert.Equal(t, luaResult, compiler.MatchesFilter(filter, rec.Bins), "%s on %#v", p, rec.Bins[p.Field()]) {
				break
			}
		}
		require.NoError(t, lf.Close())
	}
}

func TestLuaFilterRejectsBadExpression(t *testing.T) {
	_, err := newLuaFilter("rec['a'] ==")
	assert.Error(t, err)

	filter, err := newLuaFilter("")
	require.NoError(t, err)
	defer filter.Close()
	ok, err := filter.Match(context.Background(), &types.KeyRecord{})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDigestExpressionAgreesWithInProcessEvaluation(t *testing.T) {
	store := loadUsers(t)
	ctx := context.Background()
	records := store.snapshot("test", "users")
	require.NotEmpty(t, records)

	for _, target := range records {
		p, err := types.NewDigestPredicate(target.Key.Digest)
		require.NoError(t, err)
		expr, err := compiler.Expression(p)
		require.NoError(t, err)

		filter, err := newLuaFilter(expr)
		require.NoError(t, err, expr)
		for _, rec := range records {
			luaResult, err := filter.Match(ctx, rec)
			require.NoError(t, err)
			assert.Equal(t, compiler.Matches(p, rec), luaResult, "%s on %s", p, rec.Key)
			assert.Equal(t, rec == target, luaResult, "%s on %s", p, rec.Key)
		}
		require.NoError(t, filter.Close())
	}
}
