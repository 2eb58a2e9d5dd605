package placement

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/sportsbook-engine/internal/engine/domain"
	"github.com/radieske/sportsbook-engine/internal/engine/market"
	"github.com/radieske/sportsbook-engine/internal/engine/store"
)

func ptr(f float64) *float64 { return &f }

func fixture() (*Engine, *store.Memory) {
	mem := store.NewMemory()
	mem.Accounts["acct1"] = &domain.Account{
		ID:           "acct1",
		Username:     "player1",
		Status:       domain.AccountActive,
		BalanceCents: 100_000,
	}
	mem.Matches["m1"] = match("m1", "Lakers", "Celtics", 1.91, 1.95)
	mem.Matches["m2"] = match("m2", "Warriors", "Suns", 2.00, 1.85)
	mem.Matches["m3"] = match("m3", "Bucks", "Heat", 1.70, 2.20)

	eng := &Engine{
		Log:      zap.NewNop(),
		Scope:    mem,
		Resolver: &market.Resolver{OddsTolerance: 0.25},
	}
	return eng, mem
}

func match(id, home, away string, homePrice, awayPrice float64) *domain.Match {
	return &domain.Match{
		ID:        id,
		HomeTeam:  home,
		AwayTeam:  away,
		StartTime: time.Now().Add(2 * time.Hour),
		Status:    domain.MatchScheduled,
		Odds: domain.MarketShape{
			Markets: []domain.Market{
				{Key: "h2h", Outcomes: []domain.Outcome{
					{Name: home, Price: homePrice},
					{Name: away, Price: awayPrice},
				}},
				{Key: "spreads", Outcomes: []domain.Outcome{
					{Name: home, Price: 1.90, Point: ptr(-3.5)},
					{Name: away, Price: 1.90, Point: ptr(3.5)},
				}},
			},
		},
	}
}

func TestPlaceStraightBet(t *testing.T) {
	eng, mem := fixture()

	res, err := eng.PlaceBet(context.Background(), Request{
		AccountID:   "acct1",
		Type:        "straight",
		AmountCents: 10_000,
		Legs:        []LegSpec{{MatchID: "m1", Selection: "Lakers", Odds: 1.91}},
	})
	require.NoError(t, err)
	require.Len(t, res.Bets, 1)

	bet := res.Bets[0]
	assert.Equal(t, domain.BetStraight, bet.Type)
	assert.Equal(t, int64(19_100), bet.PotentialPayoutCents)
	assert.Equal(t, domain.BetPending, bet.Status)

	// fundos reservados, não removidos
	acct := mem.Accounts["acct1"]
	assert.Equal(t, int64(90_000), acct.BalanceCents)
	assert.Equal(t, int64(10_000), acct.PendingCents)
	assert.Equal(t, int64(10_000), acct.TotalWageredCents)
	assert.Equal(t, int64(1), acct.BetCount)

	// lançamento no ledger amarrado à aposta
	require.Len(t, mem.Ledger, 1)
	entry := mem.Ledger[0]
	assert.Equal(t, domain.LedgerBetPlaced, entry.Type)
	assert.Equal(t, int64(10_000), entry.AmountCents)
	assert.Equal(t, int64(100_000), entry.BalanceBeforeCents)
	assert.Equal(t, int64(90_000), entry.BalanceAfterCents)
	assert.Equal(t, bet.ID, entry.ReferenceID)
}

func TestPlaceParlayMultipliesOdds(t *testing.T) {
	eng, _ := fixture()

	res, err := eng.PlaceBet(context.Background(), Request{
		AccountID:   "acct1",
		Type:        "parlay",
		AmountCents: 10_000,
		Legs: []LegSpec{
			{MatchID: "m1", Selection: "Lakers"},
			{MatchID: "m2", Selection: "Warriors"},
			{MatchID: "m3", Selection: "Bucks"},
		},
	})
	require.NoError(t, err)
	require.Len(t, res.Bets, 1)

	// 1.91 * 2.00 * 1.70 = 6.494
	assert.Equal(t, int64(64_940), res.Bets[0].PotentialPayoutCents)
}

func TestPlaceTeaserUsesMultiplierTable(t *testing.T) {
	eng, _ := fixture()

	res, err := eng.PlaceBet(context.Background(), Request{
		AccountID:    "acct1",
		Type:         "teaser",
		AmountCents:  10_000,
		TeaserPoints: 6,
		Legs: []LegSpec{
			{MatchID: "m1", Selection: "Lakers", MarketKey: "spreads"},
			{MatchID: "m2", Selection: "Warriors", MarketKey: "spreads"},
			{MatchID: "m3", Selection: "Bucks", MarketKey: "spreads"},
		},
	})
	require.NoError(t, err)

	// 3 pernas -> 2.6x
	assert.Equal(t, int64(26_000), res.Bets[0].PotentialPayoutCents)
}

func TestPlaceTeaserRejectsUnknownPoints(t *testing.T) {
	eng, _ := fixture()

	_, err := eng.PlaceBet(context.Background(), Request{
		AccountID:    "acct1",
		Type:         "teaser",
		AmountCents:  10_000,
		TeaserPoints: 5,
		Legs: []LegSpec{
			{MatchID: "m1", Selection: "Lakers", MarketKey: "spreads"},
			{MatchID: "m2", Selection: "Warriors", MarketKey: "spreads"},
		},
	})
	require.Error(t, err)
	assert.True(t, domain.IsClientError(err))
}

func TestPlaceReverseCreatesSiblingIfBets(t *testing.T) {
	eng, mem := fixture()

	res, err := eng.PlaceBet(context.Background(), Request{
		AccountID:   "acct1",
		Type:        "reverse",
		AmountCents: 10_000,
		Legs: []LegSpec{
			{MatchID: "m1", Selection: "Lakers"},
			{MatchID: "m2", Selection: "Warriors"},
		},
	})
	require.NoError(t, err)
	require.Len(t, res.Bets, 2)

	// risco dobrado: uma if_bet em cada direção
	acct := mem.Accounts["acct1"]
	assert.Equal(t, int64(80_000), acct.BalanceCents)
	assert.Equal(t, int64(20_000), acct.PendingCents)

	forward, backward := res.Bets[0], res.Bets[1]
	assert.Equal(t, domain.BetIf, forward.Type)
	assert.Equal(t, domain.BetIf, backward.Type)
	assert.Equal(t, "m1", forward.Legs[0].MatchID)
	assert.Equal(t, "m2", backward.Legs[0].MatchID)

	// pagamento combinado dividido entre as irmãs sem perder centavo
	stake := float64(10_000)
	combined := int64(stake*1.91*2.00 + 0.5)
	assert.Equal(t, combined, forward.PotentialPayoutCents+backward.PotentialPayoutCents)

	// ids de perna independentes entre as irmãs
	assert.NotEqual(t, forward.Legs[0].ID, backward.Legs[1].ID)
}

func TestPlaceBetInsufficientFundsNoSideEffects(t *testing.T) {
	eng, mem := fixture()
	mem.Accounts["acct1"].BalanceCents = 5_000

	_, err := eng.PlaceBet(context.Background(), Request{
		AccountID:   "acct1",
		Type:        "straight",
		AmountCents: 10_000,
		Legs:        []LegSpec{{MatchID: "m1", Selection: "Lakers"}},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)

	acct := mem.Accounts["acct1"]
	assert.Equal(t, int64(5_000), acct.BalanceCents)
	assert.Equal(t, int64(0), acct.PendingCents)
	assert.Empty(t, mem.Bets)
	assert.Empty(t, mem.Ledger)
}

func TestPlaceBetPendingReducesAvailable(t *testing.T) {
	eng, mem := fixture()
	mem.Accounts["acct1"].BalanceCents = 15_000

	place := func() error {
		_, err := eng.PlaceBet(context.Background(), Request{
			AccountID:   "acct1",
			Type:        "straight",
			AmountCents: 10_000,
			Legs:        []LegSpec{{MatchID: "m1", Selection: "Lakers"}},
		})
		return err
	}

	require.NoError(t, place())
	// 5k disponíveis não cobrem mais 10k
	assert.ErrorIs(t, place(), domain.ErrInsufficientFunds)
}

func TestPlaceBetRestrictedAccount(t *testing.T) {
	eng, mem := fixture()
	mem.Accounts["acct1"].Status = domain.AccountSuspended

	_, err := eng.PlaceBet(context.Background(), Request{
		AccountID:   "acct1",
		Type:        "straight",
		AmountCents: 10_000,
		Legs:        []LegSpec{{MatchID: "m1", Selection: "Lakers"}},
	})
	assert.ErrorIs(t, err, domain.ErrAccountRestricted)
}

func TestPlaceBetLegCountRules(t *testing.T) {
	eng, _ := fixture()
	ctx := context.Background()

	cases := []struct {
		name string
		typ  string
		legs []LegSpec
	}{
		{"straight with two legs", "straight", []LegSpec{
			{MatchID: "m1", Selection: "Lakers"}, {MatchID: "m2", Selection: "Warriors"},
		}},
		{"parlay with one leg", "parlay", []LegSpec{
			{MatchID: "m1", Selection: "Lakers"},
		}},
		{"if_bet with three legs", "if_bet", []LegSpec{
			{MatchID: "m1", Selection: "Lakers"},
			{MatchID: "m2", Selection: "Warriors"},
			{MatchID: "m3", Selection: "Bucks"},
		}},
		{"unknown type", "exotic", []LegSpec{
			{MatchID: "m1", Selection: "Lakers"},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := eng.PlaceBet(ctx, Request{
				AccountID:   "acct1",
				Type:        tc.typ,
				AmountCents: 10_000,
				Legs:        tc.legs,
			})
			require.Error(t, err)
			assert.True(t, domain.IsClientError(err))
		})
	}
}

func TestPlaceBetInvalidAmount(t *testing.T) {
	eng, _ := fixture()

	_, err := eng.PlaceBet(context.Background(), Request{
		AccountID:   "acct1",
		Type:        "straight",
		AmountCents: 0,
		Legs:        []LegSpec{{MatchID: "m1", Selection: "Lakers"}},
	})
	require.Error(t, err)
	assert.True(t, domain.IsClientError(err))
}

func TestPlaceBetNormalizesTypeSpelling(t *testing.T) {
	eng, _ := fixture()

	res, err := eng.PlaceBet(context.Background(), Request{
		AccountID:   "acct1",
		Type:        "If-Bet",
		AmountCents: 10_000,
		Legs: []LegSpec{
			{MatchID: "m1", Selection: "Lakers"},
			{MatchID: "m2", Selection: "Warriors"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.BetIf, res.Bets[0].Type)
}

func TestPlaceBetAccountLimits(t *testing.T) {
	eng, mem := fixture()
	mem.Accounts["acct1"].MinBetCents = 2_000
	mem.Accounts["acct1"].MaxBetCents = 20_000

	_, err := eng.PlaceBet(context.Background(), Request{
		AccountID:   "acct1",
		Type:        "straight",
		AmountCents: 1_000,
		Legs:        []LegSpec{{MatchID: "m1", Selection: "Lakers"}},
	})
	assert.True(t, domain.IsClientError(err))

	_, err = eng.PlaceBet(context.Background(), Request{
		AccountID:   "acct1",
		Type:        "straight",
		AmountCents: 50_000,
		Legs:        []LegSpec{{MatchID: "m1", Selection: "Lakers"}},
	})
	assert.True(t, domain.IsClientError(err))
}
