package translation

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type priceRow struct {
	ID        int
	Commodity string
	Status    string
}

func commodityField(r *priceRow) *string { return &r.Commodity }
func statusField(r *priceRow) *string    { return &r.Status }

func TestBatchTranslate(t *testing.T) {
	remote := &fakeRemote{}
	tr := newTestTranslator(t, remote, NewMemoryCache(16, time.Minute))
	ctx := context.Background()

	rows := []priceRow{
		{ID: 1, Commodity: "Wheat", Status: "increase"},
		{ID: 2, Commodity: "Cotton", Status: "increase"},
		{ID: 3, Commodity: "Wheat", Status: "stable"},
	}

	out := BatchTranslate(ctx, tr, rows, LangHindi, commodityField, statusField)
	require.Len(t, out, 3)
	assert.Equal(t, []priceRow{
		{ID: 1, Commodity: "गेहूं", Status: "[hi]increase"},
		{ID: 2, Commodity: "कपास", Status: "[hi]increase"},
		{ID: 3, Commodity: "गेहूं", Status: "[hi]stable"},
	}, out)
	assert.Equal(t, "Wheat", rows[0].Commodity, "input must not be modified")
	assert.Equal(t, 2, remote.count(), "each distinct status is translated once")

	again := BatchTranslate(ctx, tr, rows, LangHindi, commodityField, statusField)
	assert.Equal(t, out, again)
	assert.Equal(t, 2, remote.count(), "second call is served from cache")
}

func TestBatchTranslateHonoursLaterCustomEntries(t *testing.T) {
	tr := newTestTranslator(t, &fakeRemote{}, NewMemoryCache(16, time.Minute))
	ctx := context.Background()
	rows := []priceRow{{ID: 1, Commodity: "Wheat"}}

	out := BatchTranslate(ctx, tr, rows, LangHindi, commodityField)
	assert.Equal(t, "गेहूं", out[0].Commodity)

	tr.AddCustomTranslation("Wheat", "कनक", LangHindi)
	assert.Equal(t, "कनक", tr.Translate(ctx, "Wheat", LangHindi).Text)

	out = BatchTranslate(ctx, tr, rows, LangHindi, commodityField)
	assert.Equal(t, "कनक", out[0].Commodity)

	tr.AddCustomTranslation("कनक", "Wheat", LangEnglish)
	english := BatchToEnglish(ctx, tr, []priceRow{{Commodity: "कनक"}}, commodityField)
	assert.Equal(t, "Wheat", english[0].Commodity)
}

func TestBatchTranslateEnglishIsIdentity(t *testing.T) {
	remote := &fakeRemote{}
	tr := newTestTranslator(t, remote, nil)
	rows := []priceRow{{ID: 1, Commodity: "Wheat"}}

	out := BatchTranslate(context.Background(), tr, rows, LangEnglish, commodityField)
	assert.Equal(t, rows, out)
	assert.Zero(t, remote.count())
}

func TestBatchTranslateDoesNotCacheFallbacks(t *testing.T) {
	remote := &fakeRemote{fail: true}
	cache := NewMemoryCache(16, time.Minute)
	tr := newTestTranslator(t, remote, cache)

	rows := []priceRow{{ID: 1, Status: "decrease"}}
	out := BatchTranslate(context.Background(), tr, rows, LangGujarati, statusField)
	assert.Equal(t, "decrease", out[0].Status)
	assert.Zero(t, cache.Len())
}

func TestBatchToEnglish(t *testing.T) {
	tr := newTestTranslator(t, &fakeRemote{}, nil)
	rows := []priceRow{{ID: 1, Commodity: "ઘઉં"}, {ID: 2, Commodity: "Onion"}}

	out := BatchToEnglish(context.Background(), tr, rows, commodityField)
	assert.Equal(t, "Wheat", out[0].Commodity)
	assert.Equal(t, "Onion", out[1].Commodity)
}

func TestCacheKeyIgnoresInputOrder(t *testing.T) {
	a := CacheKey(distinctSorted([]string{"b", "a", "b"}), LangHindi)
	b := CacheKey(distinctSorted([]string{"a", "b"}), LangHindi)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, CacheKey([]string{"a", "b"}, LangGujarati))
}

func TestTieredCacheBackfillsFromRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := NewRedisClient(mr.Addr(), "", 0)
	require.NoError(t, err)
	defer client.Close()

	ctx := context.Background()
	shared := NewRedisCache(client, time.Hour)
	shared.Set(ctx, "k", []string{"x", "y"})

	local := NewMemoryCache(4, time.Minute)
	tiered := NewTieredCache(local, shared)

	got, ok := tiered.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []string{"x", "y"}, got)

	got, ok = local.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []string{"x", "y"}, got)

	_, ok = tiered.Get(ctx, "missing")
	assert.False(t, ok)
}
