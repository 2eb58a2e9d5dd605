package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(f float64) *float64 { return &f }

func TestNormalizeBetType(t *testing.T) {
	assert.Equal(t, BetStraight, NormalizeBetType(""))
	assert.Equal(t, BetStraight, NormalizeBetType("Straight"))
	assert.Equal(t, BetIf, NormalizeBetType("If-Bet"))
	assert.Equal(t, BetIf, NormalizeBetType("if_bet"))
	assert.Equal(t, BetReverse, NormalizeBetType(" REVERSE "))
}

func TestNormalizeMarketKey(t *testing.T) {
	for _, alias := range []string{"straight", "Moneyline", "ml", "H2H", ""} {
		assert.Equal(t, MarketH2H, NormalizeMarketKey(alias), alias)
	}
	assert.Equal(t, "spreads", NormalizeMarketKey("Spreads"))
}

func TestOpenForBetting(t *testing.T) {
	now := time.Now()

	scheduled := &Match{Status: MatchScheduled, StartTime: now.Add(time.Hour)}
	assert.True(t, scheduled.OpenForBetting(now))

	started := &Match{Status: MatchScheduled, StartTime: now.Add(-time.Minute)}
	assert.False(t, started.OpenForBetting(now))

	live := &Match{Status: MatchLive, StartTime: now.Add(-time.Hour)}
	assert.True(t, live.OpenForBetting(now))

	finished := &Match{Status: MatchFinished}
	assert.False(t, finished.OpenForBetting(now))

	cancelled := &Match{Status: MatchCancelled, StartTime: now.Add(time.Hour)}
	assert.False(t, cancelled.OpenForBetting(now))
}

func TestMarketShapeNormalizeLegacy(t *testing.T) {
	ms := MarketShape{HomeWin: ptr(2.10), AwayWin: ptr(3.40), Draw: ptr(3.10)}

	markets := ms.Normalize("Palmeiras", "Flamengo")
	require.Len(t, markets, 1)
	assert.Equal(t, MarketH2H, markets[0].Key)
	require.Len(t, markets[0].Outcomes, 3)
	assert.Equal(t, "Palmeiras", markets[0].Outcomes[0].Name)
	assert.Equal(t, "Draw", markets[0].Outcomes[2].Name)
}

func TestMarketShapeNormalizeStructuredWins(t *testing.T) {
	ms := MarketShape{
		Markets: []Market{{Key: "totals", Outcomes: []Outcome{{Name: "Over 210.5", Price: 1.87}}}},
		HomeWin: ptr(2.10), // ignorado quando há mercados estruturados
	}
	markets := ms.Normalize("A", "B")
	require.Len(t, markets, 1)
	assert.Equal(t, "totals", markets[0].Key)
}

func TestAvailableCentsNeverNegative(t *testing.T) {
	a := &Account{BalanceCents: 1_000, PendingCents: 5_000}
	assert.Equal(t, int64(0), a.AvailableCents())

	a = &Account{BalanceCents: 5_000, PendingCents: 1_000}
	assert.Equal(t, int64(4_000), a.AvailableCents())
}

func TestCanWager(t *testing.T) {
	assert.True(t, (&Account{Status: AccountActive}).CanWager())
	for _, st := range []AccountStatus{AccountSuspended, AccountDisabled, AccountReadOnly} {
		assert.False(t, (&Account{Status: st}).CanWager(), string(st))
	}
}

func TestTeaserMultiplier(t *testing.T) {
	assert.Equal(t, 1.8, TeaserMultiplier(2))
	assert.Equal(t, 9.5, TeaserMultiplier(6))
	// fora da tabela só devolve a aposta
	assert.Equal(t, 1.0, TeaserMultiplier(1))
	assert.Equal(t, 1.0, TeaserMultiplier(7))
}

func TestRoundCents(t *testing.T) {
	assert.Equal(t, int64(19_100), RoundCents(10_000*1.91))
	assert.Equal(t, int64(2), RoundCents(1.5))
	assert.Equal(t, int64(1), RoundCents(1.49))
	assert.Equal(t, int64(0), RoundCents(-3.2))
}

func TestSnapshotCarriesNormalizedMarkets(t *testing.T) {
	m := &Match{
		ID: "m1", HomeTeam: "Lakers", AwayTeam: "Celtics",
		Odds: MarketShape{HomeWin: ptr(1.91), AwayWin: ptr(1.95)},
	}
	snap := m.Snapshot()
	require.Len(t, snap.Markets, 1)
	assert.Equal(t, MarketH2H, snap.Markets[0].Key)
	assert.False(t, snap.TakenAt.IsZero())
}
