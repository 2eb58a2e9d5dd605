package ingest

import (
	"hash/fnv"
	"math"
	"math/rand"
	"strconv"
	"time"

	"github.com/radieske/sportsbook-engine/internal/engine/domain"
)

// syntheticMarkets gera mercados determinísticos para um evento sem
// cotações do fornecedor (modo demo ou bookmakers vazios). A seed vem
// da identidade do evento, então o mesmo jogo sempre produz as mesmas
// odds entre reinícios.
func syntheticMarkets(externalID, homeTeam, awayTeam string) []domain.Market {
	h := fnv.New64a()
	h.Write([]byte(externalID))
	h.Write([]byte(homeTeam))
	h.Write([]byte(awayTeam))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	price := func(lo, hi float64) float64 {
		return math.Round((lo+rng.Float64()*(hi-lo))*100) / 100
	}
	// Spread entre 1 e 7, arredondado ao meio ponto. Total entre 38 e 55.
	spread := math.Round((1+rng.Float64()*6)*2) / 2
	totalLine := math.Round((38+rng.Float64()*17)*2) / 2
	homeSpread := -spread
	awaySpread := spread
	if rng.Intn(2) == 0 {
		homeSpread, awaySpread = awaySpread, homeSpread
	}

	return []domain.Market{
		{
			Key: domain.MarketH2H,
			Outcomes: []domain.Outcome{
				{Name: homeTeam, Price: price(1.60, 2.40)},
				{Name: awayTeam, Price: price(1.60, 2.40)},
			},
		},
		{
			Key: domain.MarketSpreads,
			Outcomes: []domain.Outcome{
				{Name: homeTeam, Price: price(1.72, 2.12), Point: ptr(homeSpread)},
				{Name: awayTeam, Price: price(1.72, 2.12), Point: ptr(awaySpread)},
			},
		},
		{
			Key: domain.MarketTotals,
			Outcomes: []domain.Outcome{
				{Name: "Over " + formatPoint(totalLine), Price: price(1.72, 2.12), Point: ptr(totalLine)},
				{Name: "Under " + formatPoint(totalLine), Price: price(1.72, 2.12), Point: ptr(totalLine)},
			},
		},
	}
}

func ptr(f float64) *float64 { return &f }

func formatPoint(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}

// syntheticEvent fabrica um ProviderEvent demo completo.
func syntheticEvent(externalID, sport, homeTeam, awayTeam string, start time.Time) ProviderEvent {
	markets := syntheticMarkets(externalID, homeTeam, awayTeam)
	pm := make([]ProviderMarket, 0, len(markets))
	for _, m := range markets {
		outs := make([]ProviderOutcome, 0, len(m.Outcomes))
		for _, o := range m.Outcomes {
			outs = append(outs, ProviderOutcome{Name: o.Name, Price: o.Price, Point: o.Point})
		}
		pm = append(pm, ProviderMarket{Key: m.Key, Outcomes: outs})
	}
	return ProviderEvent{
		ID:           externalID,
		SportKey:     sport,
		CommenceTime: start,
		HomeTeam:     homeTeam,
		AwayTeam:     awayTeam,
		Bookmakers: []ProviderBookmaker{
			{Key: "demoodds", Title: "DemoOdds", Markets: pm},
		},
	}
}
