// Package market resolve uma seleção reivindicada pelo cliente contra o
// snapshot corrente da partida. Leitura pura: nenhuma função aqui tem
// efeito colateral; quem chama é responsável por embutir o snapshot da
// partida na perna criada.
package market

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/radieske/sportsbook-engine/internal/engine/domain"
)

// Resolver valida pernas contra o preço autoritativo armazenado.
// OddsTolerance limita a divergência aceita entre a odd que o cliente
// viu e a odd corrente; zero desativa a checagem (comportamento legado
// permissivo).
type Resolver struct {
	OddsTolerance float64
}

// ResolveLeg resolve o mercado e o outcome da seleção e devolve a perna
// com preço/point capturados do estado corrente da partida.
func (r *Resolver) ResolveLeg(m *domain.Match, selection string, claimedOdds float64, marketHint string, now time.Time) (domain.Leg, error) {
	if m == nil {
		return domain.Leg{}, domain.ErrMatchNotFound
	}
	if !m.OpenForBetting(now) {
		return domain.Leg{}, fmt.Errorf("%w: %s vs %s", domain.ErrMarketClosed, m.HomeTeam, m.AwayTeam)
	}

	mkt := findMarket(m, marketHint)
	if mkt == nil || len(mkt.Outcomes) == 0 {
		return domain.Leg{}, fmt.Errorf("%w: market %q for %s vs %s",
			domain.ErrSelectionUnavailable, marketHint, m.HomeTeam, m.AwayTeam)
	}

	out := findOutcome(mkt, selection)
	if out == nil {
		return domain.Leg{}, fmt.Errorf("%w: %q for %s vs %s",
			domain.ErrSelectionUnavailable, selection, m.HomeTeam, m.AwayTeam)
	}

	// O preço autoritativo é sempre o armazenado. A odd do cliente só é
	// rejeitada quando diverge além da tolerância configurada.
	if r.OddsTolerance > 0 && claimedOdds > 0 && math.Abs(out.Price-claimedOdds) > r.OddsTolerance {
		return domain.Leg{}, fmt.Errorf("%w: current=%.2f claimed=%.2f", domain.ErrOddsChanged, out.Price, claimedOdds)
	}

	return domain.Leg{
		MatchID:   m.ID,
		Selection: out.Name,
		Price:     out.Price,
		MarketKey: mkt.Key,
		Point:     out.Point,
		Status:    domain.LegPending,
	}, nil
}

// findMarket procura a chave normalizada na lista de mercados; a forma
// legada de odds já chega sintetizada em h2h pelo Normalize. Para h2h
// também aceita mercados gravados como moneyline/ml.
func findMarket(m *domain.Match, hint string) *domain.Market {
	key := domain.NormalizeMarketKey(hint)
	markets := m.Odds.Normalize(m.HomeTeam, m.AwayTeam)

	find := func(k string) *domain.Market {
		for i := range markets {
			if strings.EqualFold(markets[i].Key, k) {
				return &markets[i]
			}
		}
		return nil
	}

	if mk := find(key); mk != nil {
		return mk
	}
	if key == domain.MarketH2H {
		if mk := find("moneyline"); mk != nil {
			return mk
		}
		return find("ml")
	}
	return nil
}

// findOutcome faz match exato do nome; em totals aceita substring
// case-insensitive ("over" casa com "Over").
func findOutcome(mkt *domain.Market, selection string) *domain.Outcome {
	totals := domain.NormalizeMarketKey(mkt.Key) == domain.MarketTotals
	for i := range mkt.Outcomes {
		o := &mkt.Outcomes[i]
		if o.Name == selection {
			return o
		}
		if totals && selection != "" &&
			strings.Contains(strings.ToLower(o.Name), strings.ToLower(selection)) {
			return o
		}
	}
	return nil
}
