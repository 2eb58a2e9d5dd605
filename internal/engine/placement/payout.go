package placement

import (
	"github.com/radieske/sportsbook-engine/internal/engine/domain"
)

// payoutCents calcula o pagamento potencial em centavos a partir das
// odds capturadas no momento da aposta, nunca das odds correntes.
//
// reverse devolve o pagamento combinado das duas if_bets irmãs; quem
// chama divide metade para cada uma.
func payoutCents(betType domain.BetType, amountCents int64, legs []domain.Leg) int64 {
	switch betType {
	case domain.BetStraight:
		return domain.RoundCents(float64(amountCents) * legs[0].Price)
	case domain.BetParlay:
		combined := 1.0
		for i := range legs {
			combined *= legs[i].Price
		}
		return domain.RoundCents(float64(amountCents) * combined)
	case domain.BetTeaser:
		return domain.RoundCents(float64(amountCents) * domain.TeaserMultiplier(len(legs)))
	case domain.BetIf, domain.BetReverse:
		// Fórmula simplificada do encadeamento condicional de duas pernas.
		return domain.RoundCents(float64(amountCents) * legs[0].Price * legs[1].Price)
	}
	return 0
}
