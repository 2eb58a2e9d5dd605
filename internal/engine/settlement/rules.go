package settlement

import (
	"strings"

	"github.com/radieske/sportsbook-engine/internal/engine/domain"
)

// legResult resolve o status terminal de uma perna a partir do placar
// final. Devolve pending quando a partida ainda não terminou ou quando
// faltam dados para resolver (ex: spread sem point capturado).
func legResult(leg *domain.Leg, m *domain.Match, manualWinner string) domain.LegStatus {
	// Vencedor manual sobrepõe o placar: igualdade de nome apenas.
	if manualWinner != "" {
		if leg.Selection == manualWinner {
			return domain.LegWon
		}
		return domain.LegLost
	}
	if m.Status != domain.MatchFinished || m.Score == nil {
		return domain.LegPending
	}

	home := m.Score.Home
	away := m.Score.Away

	switch domain.NormalizeMarketKey(leg.MarketKey) {
	case domain.MarketH2H:
		switch {
		case home > away:
			if leg.Selection == m.HomeTeam {
				return domain.LegWon
			}
			return domain.LegLost
		case away > home:
			if leg.Selection == m.AwayTeam {
				return domain.LegWon
			}
			return domain.LegLost
		default:
			// Empate: só o outcome "Draw" ganha.
			if leg.Selection == "Draw" {
				return domain.LegWon
			}
			return domain.LegLost
		}

	case domain.MarketSpreads:
		if leg.Point == nil {
			return domain.LegPending
		}
		point := *leg.Point
		if leg.Selection == m.HomeTeam {
			adjusted := float64(home) + point
			return spreadOutcome(adjusted, float64(away))
		}
		if leg.Selection == m.AwayTeam {
			adjusted := float64(away) + point
			return spreadOutcome(adjusted, float64(home))
		}
		return domain.LegPending

	case domain.MarketTotals:
		if leg.Point == nil {
			return domain.LegPending
		}
		total := float64(m.Score.Total())
		point := *leg.Point
		over := strings.Contains(strings.ToLower(leg.Selection), "over")
		switch {
		case total == point:
			return domain.LegVoid // push
		case over && total > point, !over && total < point:
			return domain.LegWon
		default:
			return domain.LegLost
		}
	}

	return domain.LegPending
}

// spreadOutcome compara o placar ajustado pelo point com o do
// adversário: estritamente maior ganha, empate exato é push (void).
func spreadOutcome(adjusted, opponent float64) domain.LegStatus {
	switch {
	case adjusted > opponent:
		return domain.LegWon
	case adjusted == opponent:
		return domain.LegVoid
	default:
		return domain.LegLost
	}
}

// compositeStatus avalia o status da aposta composta a partir dos
// status das pernas, conforme as regras de cada modalidade.
func compositeStatus(betType domain.BetType, legs []domain.Leg) domain.BetStatus {
	switch betType {
	case domain.BetStraight:
		return domain.BetStatus(legs[0].Status)

	case domain.BetParlay, domain.BetTeaser:
		// Qualquer perna perdida derruba a aposta na hora, mesmo com
		// outras pernas ainda abertas; pending só segura a aposta
		// quando nenhuma perdeu.
		pending := false
		allVoid := true
		for i := range legs {
			switch legs[i].Status {
			case domain.LegLost:
				return domain.BetLost
			case domain.LegPending:
				pending = true
			case domain.LegWon:
				allVoid = false
			}
		}
		if pending {
			return domain.BetPending
		}
		if allVoid {
			return domain.BetVoid
		}
		return domain.BetWon

	case domain.BetIf:
		// Avaliação em ordem: a primeira perdida derruba a aposta, a
		// primeira pendente congela. Pernas void são puladas (push);
		// todas void anula a aposta.
		won := 0
		for i := range legs {
			switch legs[i].Status {
			case domain.LegLost:
				return domain.BetLost
			case domain.LegPending:
				return domain.BetPending
			case domain.LegWon:
				won++
			}
		}
		if won == 0 {
			return domain.BetVoid
		}
		return domain.BetWon
	}

	return domain.BetPending
}

// recomputePayoutCents refaz o pagamento de uma aposta vencedora que
// contém pernas void, usando só as pernas vencedoras: produto das odds
// para parlay/if_bet, tabela por contagem de vitórias para teaser.
func recomputePayoutCents(b *domain.Bet) int64 {
	hasVoid := false
	won := 0
	combined := 1.0
	for i := range b.Legs {
		switch b.Legs[i].Status {
		case domain.LegVoid:
			hasVoid = true
		case domain.LegWon:
			won++
			combined *= b.Legs[i].Price
		}
	}
	if !hasVoid {
		return b.PotentialPayoutCents
	}

	switch b.Type {
	case domain.BetParlay, domain.BetIf:
		return domain.RoundCents(float64(b.AmountCents) * combined)
	case domain.BetTeaser:
		return domain.RoundCents(float64(b.AmountCents) * domain.TeaserMultiplier(won))
	}
	return b.PotentialPayoutCents
}
