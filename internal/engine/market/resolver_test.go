package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/sportsbook-engine/internal/engine/domain"
)

func ptr(f float64) *float64 { return &f }

func testMatch() *domain.Match {
	return &domain.Match{
		ID:        "m1",
		HomeTeam:  "Lakers",
		AwayTeam:  "Celtics",
		StartTime: time.Now().Add(2 * time.Hour),
		Status:    domain.MatchScheduled,
		Odds: domain.MarketShape{
			Markets: []domain.Market{
				{Key: "h2h", Outcomes: []domain.Outcome{
					{Name: "Lakers", Price: 1.91},
					{Name: "Celtics", Price: 1.95},
				}},
				{Key: "spreads", Outcomes: []domain.Outcome{
					{Name: "Lakers", Price: 1.90, Point: ptr(-3.5)},
					{Name: "Celtics", Price: 1.90, Point: ptr(3.5)},
				}},
				{Key: "totals", Outcomes: []domain.Outcome{
					{Name: "Over 210.5", Price: 1.87, Point: ptr(210.5)},
					{Name: "Under 210.5", Price: 1.93, Point: ptr(210.5)},
				}},
			},
		},
	}
}

func TestResolveLegCapturesStoredPrice(t *testing.T) {
	r := &Resolver{OddsTolerance: 0.25}
	now := time.Now()

	leg, err := r.ResolveLeg(testMatch(), "Lakers", 1.91, "h2h", now)
	require.NoError(t, err)
	assert.Equal(t, "m1", leg.MatchID)
	assert.Equal(t, 1.91, leg.Price)
	assert.Equal(t, "h2h", leg.MarketKey)
	assert.Equal(t, domain.LegPending, leg.Status)
}

func TestResolveLegMarketAliases(t *testing.T) {
	r := &Resolver{}
	now := time.Now()

	for _, hint := range []string{"straight", "moneyline", "ml", "h2h", ""} {
		leg, err := r.ResolveLeg(testMatch(), "Celtics", 0, hint, now)
		require.NoError(t, err, "hint %q", hint)
		assert.Equal(t, "h2h", leg.MarketKey)
	}
}

func TestResolveLegMoneylineStoredKey(t *testing.T) {
	m := testMatch()
	m.Odds.Markets[0].Key = "moneyline"

	r := &Resolver{}
	leg, err := r.ResolveLeg(m, "Lakers", 0, "h2h", time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1.91, leg.Price)
}

func TestResolveLegLegacyShape(t *testing.T) {
	m := &domain.Match{
		ID:        "m2",
		HomeTeam:  "Palmeiras",
		AwayTeam:  "Flamengo",
		StartTime: time.Now().Add(time.Hour),
		Status:    domain.MatchScheduled,
		Odds: domain.MarketShape{
			HomeWin: ptr(2.10),
			AwayWin: ptr(3.40),
			Draw:    ptr(3.10),
		},
	}

	r := &Resolver{}
	leg, err := r.ResolveLeg(m, "Draw", 0, "", time.Now())
	require.NoError(t, err)
	assert.Equal(t, 3.10, leg.Price)
	assert.Equal(t, "h2h", leg.MarketKey)
}

func TestResolveLegTotalsSubstring(t *testing.T) {
	r := &Resolver{}
	leg, err := r.ResolveLeg(testMatch(), "over", 0, "totals", time.Now())
	require.NoError(t, err)
	assert.Equal(t, "Over 210.5", leg.Selection)
	require.NotNil(t, leg.Point)
	assert.Equal(t, 210.5, *leg.Point)
}

func TestResolveLegSpreadsCapturesPoint(t *testing.T) {
	r := &Resolver{}
	leg, err := r.ResolveLeg(testMatch(), "Lakers", 0, "spreads", time.Now())
	require.NoError(t, err)
	require.NotNil(t, leg.Point)
	assert.Equal(t, -3.5, *leg.Point)
}

func TestResolveLegClosedMarket(t *testing.T) {
	r := &Resolver{}
	now := time.Now()

	started := testMatch()
	started.StartTime = now.Add(-time.Minute)
	_, err := r.ResolveLeg(started, "Lakers", 0, "h2h", now)
	assert.ErrorIs(t, err, domain.ErrMarketClosed)

	finished := testMatch()
	finished.Status = domain.MatchFinished
	_, err = r.ResolveLeg(finished, "Lakers", 0, "h2h", now)
	assert.ErrorIs(t, err, domain.ErrMarketClosed)
}

func TestResolveLegLiveStaysOpen(t *testing.T) {
	m := testMatch()
	m.Status = domain.MatchLive
	m.StartTime = time.Now().Add(-time.Hour)

	r := &Resolver{}
	_, err := r.ResolveLeg(m, "Lakers", 0, "h2h", time.Now())
	assert.NoError(t, err)
}

func TestResolveLegOddsTolerance(t *testing.T) {
	r := &Resolver{OddsTolerance: 0.25}
	now := time.Now()

	// dentro da tolerância
	_, err := r.ResolveLeg(testMatch(), "Lakers", 2.10, "h2h", now)
	assert.NoError(t, err)

	// fora da tolerância
	_, err = r.ResolveLeg(testMatch(), "Lakers", 2.50, "h2h", now)
	assert.ErrorIs(t, err, domain.ErrOddsChanged)

	// tolerância zero aceita qualquer odd reivindicada
	permissive := &Resolver{}
	_, err = permissive.ResolveLeg(testMatch(), "Lakers", 9.99, "h2h", now)
	assert.NoError(t, err)
}

func TestResolveLegUnknownSelection(t *testing.T) {
	r := &Resolver{}
	_, err := r.ResolveLeg(testMatch(), "Warriors", 0, "h2h", time.Now())
	assert.ErrorIs(t, err, domain.ErrSelectionUnavailable)
}

func TestResolveLegNilMatch(t *testing.T) {
	r := &Resolver{}
	_, err := r.ResolveLeg(nil, "Lakers", 0, "h2h", time.Now())
	assert.ErrorIs(t, err, domain.ErrMatchNotFound)
}
