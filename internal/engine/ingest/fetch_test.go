package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/sportsbook-engine/internal/engine/store"
)

type fakeCache struct {
	data map[string][]ProviderEvent
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]ProviderEvent)}
}

func (c *fakeCache) Get(_ context.Context, key string) ([]ProviderEvent, bool) {
	feed, ok := c.data[key]
	return feed, ok
}

func (c *fakeCache) Set(_ context.Context, key string, feed []ProviderEvent, _ time.Duration) {
	c.data[key] = feed
}

type fakeBudget struct{ allowed bool }

func (b *fakeBudget) Consume(context.Context) (bool, error) { return b.allowed, nil }

type fakeProvider struct {
	feed  []ProviderEvent
	err   error
	calls int
}

func (p *fakeProvider) Odds(context.Context, string) ([]ProviderEvent, error) {
	p.calls++
	return p.feed, p.err
}

func (p *fakeProvider) Scores(context.Context, string) ([]ProviderEvent, error) {
	return nil, nil
}

func fetchFixture() (*Service, *fakeCache, *fakeProvider, *fakeBudget) {
	cache := newFakeCache()
	provider := &fakeProvider{feed: []ProviderEvent{oddsEvent("ev1")}}
	budget := &fakeBudget{allowed: true}
	svc := &Service{
		Log:      zap.NewNop(),
		Store:    store.NewMemory(),
		Cache:    cache,
		Provider: provider,
		Budget:   budget,
		Settler:  &captureSettler{},
		Sports:   []string{"basketball_nba"},
		CacheTTL: 10 * time.Minute,
	}
	return svc, cache, provider, budget
}

func TestFetchOddsFreshPopulatesCache(t *testing.T) {
	svc, cache, provider, _ := fetchFixture()

	feed, state, calls, err := svc.fetchOdds(context.Background(), "basketball_nba", false)
	require.NoError(t, err)
	assert.Equal(t, "fresh", state)
	assert.Equal(t, 1, calls)
	assert.Len(t, feed, 1)
	assert.Equal(t, 1, provider.calls)

	// feed e cópia stale gravados
	assert.Contains(t, cache.data, "odds:feed:basketball_nba")
	assert.Contains(t, cache.data, "odds:feed:basketball_nba:stale")
}

func TestFetchOddsCacheHitSkipsProvider(t *testing.T) {
	svc, cache, provider, _ := fetchFixture()
	cache.data["odds:feed:basketball_nba"] = []ProviderEvent{oddsEvent("cached")}

	feed, state, calls, err := svc.fetchOdds(context.Background(), "basketball_nba", false)
	require.NoError(t, err)
	assert.Equal(t, "hit", state)
	assert.Zero(t, calls)
	assert.Equal(t, "cached", feed[0].ID)
	assert.Zero(t, provider.calls)
}

func TestFetchOddsForceBypassesCache(t *testing.T) {
	svc, cache, provider, _ := fetchFixture()
	cache.data["odds:feed:basketball_nba"] = []ProviderEvent{oddsEvent("cached")}

	feed, state, _, err := svc.fetchOdds(context.Background(), "basketball_nba", true)
	require.NoError(t, err)
	assert.Equal(t, "fresh", state)
	assert.Equal(t, "ev1", feed[0].ID)
	assert.Equal(t, 1, provider.calls)
}

func TestFetchOddsBudgetExhaustedServesStale(t *testing.T) {
	svc, cache, provider, budget := fetchFixture()
	budget.allowed = false
	cache.data["odds:feed:basketball_nba:stale"] = []ProviderEvent{oddsEvent("old")}

	feed, state, calls, err := svc.fetchOdds(context.Background(), "basketball_nba", false)
	require.NoError(t, err)
	assert.Equal(t, "stale", state)
	assert.Zero(t, calls)
	assert.Equal(t, "old", feed[0].ID)
	assert.Zero(t, provider.calls)
}

func TestFetchOddsBudgetExhaustedNoStaleFails(t *testing.T) {
	svc, _, _, budget := fetchFixture()
	budget.allowed = false

	_, _, _, err := svc.fetchOdds(context.Background(), "basketball_nba", false)
	assert.Error(t, err)
}

func TestFetchOddsProviderDownServesStale(t *testing.T) {
	svc, cache, provider, _ := fetchFixture()
	provider.err = errors.New("connection refused")
	cache.data["odds:feed:basketball_nba:stale"] = []ProviderEvent{oddsEvent("old")}

	feed, state, _, err := svc.fetchOdds(context.Background(), "basketball_nba", false)
	require.NoError(t, err)
	assert.Equal(t, "stale", state)
	assert.Equal(t, "old", feed[0].ID)
}

func TestRefreshUpsertsFeed(t *testing.T) {
	svc, _, _, _ := fetchFixture()

	res, err := svc.Refresh(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)
	assert.Zero(t, res.Updated)
	assert.Equal(t, "fresh", res.Cache)

	// segundo passe bate no cache e só atualiza
	res, err = svc.Refresh(context.Background(), false)
	require.NoError(t, err)
	assert.Zero(t, res.Created)
	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, "hit", res.Cache)
}

func TestRefreshSyntheticFeedFromKnownMatches(t *testing.T) {
	svc, _, provider, _ := fetchFixture()
	svc.Synthetic = true

	// semeia uma partida cadastrada; o modo demo fabrica odds pra ela
	_, _, err := svc.upsertEvent(context.Background(), "basketball_nba", ProviderEvent{
		ID:           "ev9",
		HomeTeam:     "Bucks",
		AwayTeam:     "Heat",
		CommenceTime: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	res, err := svc.Refresh(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, "synthetic", res.Cache)
	assert.Zero(t, provider.calls)
	assert.Equal(t, 1, res.Updated)
}
