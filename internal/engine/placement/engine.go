// Package placement orquestra a aceitação de apostas: validação das
// pernas contra o snapshot de mercado, cálculo de risco, checagem de
// saldo e reserva atômica de fundos com registro no ledger.
package placement

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/radieske/sportsbook-engine/internal/engine/domain"
	"github.com/radieske/sportsbook-engine/internal/engine/market"
	"github.com/radieske/sportsbook-engine/internal/engine/store"
	"github.com/radieske/sportsbook-engine/internal/shared/metrics"
)

// LegSpec é uma seleção como chega do cliente.
type LegSpec struct {
	MatchID   string  `json:"matchId"`
	Selection string  `json:"selection"`
	Odds      float64 `json:"odds"` // odd que o cliente viu
	MarketKey string  `json:"type"` // dica de mercado ("straight", "spreads", "totals", ...)
}

// Request é o pedido de aposta completo.
type Request struct {
	AccountID    string
	Type         string
	AmountCents  int64
	TeaserPoints float64
	Legs         []LegSpec
}

// Result devolve as apostas criadas e o saldo pós-débito.
type Result struct {
	Bets         []domain.Bet
	BalanceCents int64
	PendingCents int64
}

// Engine é o motor de aceitação de apostas.
type Engine struct {
	Log      *zap.Logger
	Scope    store.Scope
	Resolver *market.Resolver

	// Now permite fixar o relógio nos testes.
	Now func() time.Time
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now().UTC()
}

// PlaceBet executa o fluxo completo dentro de um escopo. Qualquer
// rejeição antes do débito não deixa efeito colateral; o débito e o
// ledger são as últimas escritas do escopo.
func (e *Engine) PlaceBet(ctx context.Context, req Request) (*Result, error) {
	if req.AmountCents <= 0 {
		metrics.BetsRejected.WithLabelValues("amount").Inc()
		return nil, domain.Validationf("bet amount must be positive")
	}

	betType := domain.NormalizeBetType(req.Type)
	rule := domain.RuleFor(betType)
	if rule == nil {
		metrics.BetsRejected.WithLabelValues("type").Inc()
		return nil, domain.Validationf("unknown bet type %q", req.Type)
	}
	if err := checkLegCount(betType, rule, len(req.Legs)); err != nil {
		metrics.BetsRejected.WithLabelValues("legs").Inc()
		return nil, err
	}
	if err := checkTeaserPoints(betType, rule, req.TeaserPoints); err != nil {
		metrics.BetsRejected.WithLabelValues("teaser_points").Inc()
		return nil, err
	}

	var out Result
	err := e.Scope.Run(ctx, func(s store.Store) error {
		acct, err := s.GetAccountForUpdate(ctx, req.AccountID)
		if err != nil {
			return err
		}
		if !acct.CanWager() {
			return domain.ErrAccountRestricted
		}
		if acct.MinBetCents > 0 && req.AmountCents < acct.MinBetCents {
			return domain.Validationf("minimum bet for this account is %d cents", acct.MinBetCents)
		}
		if acct.MaxBetCents > 0 && req.AmountCents > acct.MaxBetCents {
			return domain.Validationf("maximum bet for this account is %d cents", acct.MaxBetCents)
		}

		// Resolve todas as pernas antes de qualquer mutação; uma perna
		// inválida aborta a aposta inteira.
		now := e.now()
		legs := make([]domain.Leg, 0, len(req.Legs))
		for _, spec := range req.Legs {
			m, err := s.GetMatch(ctx, spec.MatchID)
			if err != nil {
				return err
			}
			leg, err := e.Resolver.ResolveLeg(m, spec.Selection, spec.Odds, spec.MarketKey, now)
			if err != nil {
				return err
			}
			leg.ID = uuid.NewString()
			leg.Snapshot = m.Snapshot()
			legs = append(legs, leg)
		}

		totalRisk := req.AmountCents
		if betType == domain.BetReverse {
			// reverse são duas if_bets independentes (A->B e B->A),
			// cada uma arriscando o valor integral.
			totalRisk = req.AmountCents * 2
		}

		if acct.AvailableCents() < totalRisk {
			return domain.ErrInsufficientFunds
		}

		bets := buildBets(betType, req, legs, now)

		// Ordem das escritas: apostas primeiro, débito e ledger por
		// último, para que uma falha parcial no modo sequencial nunca
		// perca dinheiro silenciosamente.
		for i := range bets {
			if err := s.InsertBet(ctx, &bets[i]); err != nil {
				return fmt.Errorf("insert bet: %w", err)
			}
		}

		balanceBefore := acct.BalanceCents
		acct.BalanceCents -= totalRisk
		acct.PendingCents += totalRisk
		acct.TotalWageredCents += totalRisk
		acct.BetCount += int64(len(bets))
		if err := s.UpdateAccountBalances(ctx, acct); err != nil {
			return fmt.Errorf("debit account: %w", err)
		}

		entry := domain.LedgerEntry{
			ID:                 uuid.NewString(),
			AccountID:          acct.ID,
			AmountCents:        totalRisk,
			Type:               domain.LedgerBetPlaced,
			Status:             domain.LedgerCompleted,
			BalanceBeforeCents: balanceBefore,
			BalanceAfterCents:  acct.BalanceCents,
			ReferenceType:      "Bet",
			ReferenceID:        bets[0].ID,
			Reason:             "BET_PLACED",
			Description:        fmt.Sprintf("%s bet placed", betType),
			CreatedAt:          now,
		}
		if err := s.InsertLedgerEntry(ctx, &entry); err != nil {
			return fmt.Errorf("ledger append: %w", err)
		}

		out = Result{
			Bets:         bets,
			BalanceCents: acct.BalanceCents,
			PendingCents: acct.PendingCents,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.BetsPlaced.WithLabelValues(string(betType)).Inc()
	e.Log.Info("bet placed",
		zap.String("accountId", req.AccountID),
		zap.String("type", string(betType)),
		zap.Int64("amount_cents", req.AmountCents),
		zap.Int("legs", len(req.Legs)),
	)
	return &out, nil
}

func checkLegCount(betType domain.BetType, rule *domain.BetModeRule, n int) error {
	if betType == domain.BetStraight {
		if n != 1 {
			return domain.Validationf("straight bet requires exactly 1 selection")
		}
		return nil
	}
	if n < rule.MinLegs {
		return domain.Validationf("%s requires at least %d selections", betType, rule.MinLegs)
	}
	if rule.MaxLegs > 0 && n > rule.MaxLegs {
		return domain.Validationf("%s accepts at most %d selections", betType, rule.MaxLegs)
	}
	return nil
}

func checkTeaserPoints(betType domain.BetType, rule *domain.BetModeRule, points float64) error {
	if betType != domain.BetTeaser || points == 0 {
		return nil
	}
	for _, p := range rule.TeaserPointOptions {
		if p == points {
			return nil
		}
	}
	return domain.Validationf("teaser points %.1f not offered", points)
}

// buildBets monta a(s) aposta(s) persistidas. reverse vira duas if_bets
// irmãs com as pernas em ordem invertida, cada uma com metade do
// pagamento combinado.
func buildBets(betType domain.BetType, req Request, legs []domain.Leg, now time.Time) []domain.Bet {
	base := domain.Bet{
		AccountID:    req.AccountID,
		Type:         betType,
		AmountCents:  req.AmountCents,
		TeaserPoints: req.TeaserPoints,
		Status:       domain.BetPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if betType != domain.BetReverse {
		b := base
		b.ID = uuid.NewString()
		b.Legs = legs
		b.PotentialPayoutCents = payoutCents(betType, req.AmountCents, legs)
		return []domain.Bet{b}
	}

	combined := payoutCents(domain.BetReverse, req.AmountCents, legs)

	forward := base
	forward.ID = uuid.NewString()
	forward.Type = domain.BetIf
	forward.Legs = cloneLegs(legs[0], legs[1])
	forward.PotentialPayoutCents = combined / 2

	backward := base
	backward.ID = uuid.NewString()
	backward.Type = domain.BetIf
	backward.Legs = cloneLegs(legs[1], legs[0])
	backward.PotentialPayoutCents = combined - combined/2

	return []domain.Bet{forward, backward}
}

// cloneLegs copia as pernas com ids novos para que as irmãs do reverse
// liquidem de forma independente.
func cloneLegs(ordered ...domain.Leg) []domain.Leg {
	out := make([]domain.Leg, len(ordered))
	for i, leg := range ordered {
		leg.ID = uuid.NewString()
		out[i] = leg
	}
	return out
}
