package settlement

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/radieske/sportsbook-engine/internal/engine/domain"
)

func TestLegResultH2HDraw(t *testing.T) {
	m := finishedMatch("m1", "Palmeiras", "Flamengo", 2, 2)

	draw := h2hLeg("m1", "Draw", 3.10)
	assert.Equal(t, domain.LegWon, legResult(&draw, m, ""))

	home := h2hLeg("m1", "Palmeiras", 2.10)
	assert.Equal(t, domain.LegLost, legResult(&home, m, ""))
}

func TestLegResultTotals(t *testing.T) {
	m := finishedMatch("m1", "Lakers", "Celtics", 110, 102) // total 212

	over := h2hLeg("m1", "Over 210.5", 1.87)
	over.MarketKey = "totals"
	over.Point = ptr(210.5)
	assert.Equal(t, domain.LegWon, legResult(&over, m, ""))

	under := h2hLeg("m1", "Under 215.5", 1.93)
	under.MarketKey = "totals"
	under.Point = ptr(215.5)
	assert.Equal(t, domain.LegWon, legResult(&under, m, ""))

	// total exatamente na linha é push
	push := h2hLeg("m1", "Over 212", 1.90)
	push.MarketKey = "totals"
	push.Point = ptr(212.0)
	assert.Equal(t, domain.LegVoid, legResult(&push, m, ""))
}

func TestLegResultUnfinishedMatchStaysPending(t *testing.T) {
	m := &domain.Match{
		ID: "m1", HomeTeam: "Lakers", AwayTeam: "Celtics",
		Status: domain.MatchLive,
		Score:  &domain.Score{Home: 50, Away: 48},
	}
	leg := h2hLeg("m1", "Lakers", 1.91)
	assert.Equal(t, domain.LegPending, legResult(&leg, m, ""))
}

func TestLegResultSpreadWithoutPointStaysPending(t *testing.T) {
	m := finishedMatch("m1", "Lakers", "Celtics", 110, 102)
	leg := h2hLeg("m1", "Lakers", 1.90)
	leg.MarketKey = "spreads"
	assert.Equal(t, domain.LegPending, legResult(&leg, m, ""))
}

func TestCompositeStatusAllVoidIsVoid(t *testing.T) {
	legs := []domain.Leg{
		{Status: domain.LegVoid},
		{Status: domain.LegVoid},
	}
	assert.Equal(t, domain.BetVoid, compositeStatus(domain.BetParlay, legs))
	assert.Equal(t, domain.BetVoid, compositeStatus(domain.BetIf, legs))
}

func TestCompositeStatusLostDominates(t *testing.T) {
	legs := []domain.Leg{
		{Status: domain.LegWon},
		{Status: domain.LegLost},
		{Status: domain.LegPending},
	}
	assert.Equal(t, domain.BetLost, compositeStatus(domain.BetParlay, legs))
}

func TestCompositeStatusLostDominatesPendingFirst(t *testing.T) {
	// a perna perdida derruba a aposta mesmo vindo depois de uma aberta
	legs := []domain.Leg{
		{Status: domain.LegPending},
		{Status: domain.LegLost},
	}
	assert.Equal(t, domain.BetLost, compositeStatus(domain.BetParlay, legs))
	assert.Equal(t, domain.BetLost, compositeStatus(domain.BetTeaser, legs))
}

func TestCompositeStatusIfBetStopsAtPending(t *testing.T) {
	legs := []domain.Leg{
		{Status: domain.LegPending},
		{Status: domain.LegLost},
	}
	// a primeira perna ainda aberta congela a avaliação ordenada
	assert.Equal(t, domain.BetPending, compositeStatus(domain.BetIf, legs))
}
