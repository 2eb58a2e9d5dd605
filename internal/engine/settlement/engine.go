// Package settlement resolve apostas pendentes quando uma partida
// termina: status por perna, status composto por modalidade, e efeitos
// monetários (pagamento, estorno, liberação de pendente) com registro
// no ledger.
//
// Idempotência no lugar de lock: a busca só seleciona apostas ainda
// pendentes e as transições são monotônicas, então repetir a liquidação
// de uma partida já liquidada é um no-op seguro.
package settlement

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/radieske/sportsbook-engine/internal/engine/domain"
	"github.com/radieske/sportsbook-engine/internal/engine/store"
	"github.com/radieske/sportsbook-engine/internal/shared/metrics"
	"github.com/radieske/sportsbook-engine/pkg/contracts/events"
)

// Publisher emite eventos de aposta liquidada para assinantes externos.
type Publisher interface {
	PublishBetSettled(ctx context.Context, e events.BetSettled) error
}

// Summary agrega os resultados de um passe de liquidação.
type Summary struct {
	Total  int `json:"total"`
	Won    int `json:"won"`
	Lost   int `json:"lost"`
	Voided int `json:"voided"`
}

// Engine é o motor de liquidação.
type Engine struct {
	Log   *zap.Logger
	Scope store.Scope
	Store store.Store // leituras fora de escopo
	Publ  Publisher   // opcional

	Now func() time.Time
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now().UTC()
}

// SettleMatch liquida toda aposta pendente que referencia a partida.
// manualWinner, quando presente, sobrepõe a resolução por placar.
// A falha de uma aposta não aborta o lote: ela fica pendente para o
// próximo passe.
func (e *Engine) SettleMatch(ctx context.Context, matchID, manualWinner, settledBy string) (Summary, error) {
	m, err := e.Store.GetMatch(ctx, matchID)
	if err != nil {
		return Summary{}, err
	}

	bets, err := e.Store.ListPendingBetsByMatch(ctx, matchID)
	if err != nil {
		return Summary{}, fmt.Errorf("list pending bets: %w", err)
	}

	sum := Summary{Total: len(bets)}
	for i := range bets {
		final, err := e.settleOne(ctx, &bets[i], m, manualWinner, settledBy)
		if err != nil {
			metrics.SettlementFailures.Inc()
			e.Log.Error("bet settlement failed",
				zap.String("betId", bets[i].ID),
				zap.String("matchId", matchID),
				zap.Error(err),
			)
			continue
		}
		switch final {
		case domain.BetWon:
			sum.Won++
		case domain.BetLost:
			sum.Lost++
		case domain.BetVoid:
			sum.Voided++
		}
	}

	e.Log.Info("settlement pass complete",
		zap.String("matchId", matchID),
		zap.Int("total", sum.Total),
		zap.Int("won", sum.Won),
		zap.Int("lost", sum.Lost),
		zap.Int("voided", sum.Voided),
	)
	return sum, nil
}

// settleOne processa uma aposta dentro do seu próprio escopo. Devolve o
// status final (pending quando a aposta segue aberta).
func (e *Engine) settleOne(ctx context.Context, bet *domain.Bet, m *domain.Match, manualWinner, settledBy string) (domain.BetStatus, error) {
	dirty := false
	for i := range bet.Legs {
		leg := &bet.Legs[i]
		if leg.MatchID != m.ID || leg.Status != domain.LegPending {
			continue
		}
		if res := legResult(leg, m, manualWinner); res != domain.LegPending {
			leg.Status = res
			dirty = true
		}
	}
	if !dirty {
		return domain.BetPending, nil
	}

	final := compositeStatus(bet.Type, bet.Legs)

	if final == domain.BetPending {
		// Progresso parcial: persiste só os status das pernas. Seguro
		// de repetir.
		err := e.Scope.Run(ctx, func(s store.Store) error {
			return s.UpdateBetSettlement(ctx, bet)
		})
		return domain.BetPending, err
	}

	if final == domain.BetWon {
		bet.PotentialPayoutCents = recomputePayoutCents(bet)
	}

	now := e.now()
	bet.Status = final
	bet.Result = string(final)
	bet.SettledAt = &now
	bet.SettledBy = settledBy

	err := e.Scope.Run(ctx, func(s store.Store) error {
		acct, err := s.GetAccountForUpdate(ctx, bet.AccountID)
		if err != nil {
			return err
		}

		if err := s.UpdateBetSettlement(ctx, bet); err != nil {
			return fmt.Errorf("update bet: %w", err)
		}

		wager := bet.AmountCents
		balanceBefore := acct.BalanceCents

		switch final {
		case domain.BetVoid:
			acct.BalanceCents += wager
			releasePending(acct, wager)
		case domain.BetWon:
			acct.BalanceCents += bet.PotentialPayoutCents
			releasePending(acct, wager)
			acct.TotalWinningsCents += bet.PotentialPayoutCents - wager
		case domain.BetLost:
			releasePending(acct, wager)
		}

		if err := s.UpdateAccountBalances(ctx, acct); err != nil {
			return fmt.Errorf("credit account: %w", err)
		}

		// Perdas só liberam pendente; não mexem em balance e não geram
		// lançamento no ledger.
		if final == domain.BetWon || final == domain.BetVoid {
			entry := domain.LedgerEntry{
				ID:                 uuid.NewString(),
				AccountID:          acct.ID,
				Type:               domain.LedgerBetWon,
				Status:             domain.LedgerCompleted,
				AmountCents:        bet.PotentialPayoutCents,
				BalanceBeforeCents: balanceBefore,
				BalanceAfterCents:  acct.BalanceCents,
				ReferenceType:      "Bet",
				ReferenceID:        bet.ID,
				Reason:             "BET_WON",
				Description:        fmt.Sprintf("%s bet won", bet.Type),
				CreatedAt:          now,
			}
			if final == domain.BetVoid {
				entry.Type = domain.LedgerBetRefund
				entry.AmountCents = wager
				entry.Reason = "BET_VOID"
				entry.Description = fmt.Sprintf("%s bet voided, stake refunded", bet.Type)
			}
			if err := s.InsertLedgerEntry(ctx, &entry); err != nil {
				return fmt.Errorf("ledger append: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return domain.BetPending, err
	}

	metrics.BetsSettled.WithLabelValues(string(final)).Inc()
	e.publish(ctx, bet, m, now)
	return final, nil
}

func releasePending(acct *domain.Account, wager int64) {
	acct.PendingCents -= wager
	if acct.PendingCents < 0 {
		acct.PendingCents = 0
	}
}

func (e *Engine) publish(ctx context.Context, bet *domain.Bet, m *domain.Match, ts time.Time) {
	if e.Publ == nil {
		return
	}
	payout := int64(0)
	if bet.Status == domain.BetWon {
		payout = bet.PotentialPayoutCents
	}
	ev := events.BetSettled{
		BetID:       bet.ID,
		AccountID:   bet.AccountID,
		MatchID:     m.ID,
		Type:        string(bet.Type),
		Result:      bet.Result,
		StakeCents:  bet.AmountCents,
		PayoutCents: payout,
		SettledBy:   bet.SettledBy,
		Ts:          ts,
	}
	if err := e.Publ.PublishBetSettled(ctx, ev); err != nil {
		e.Log.Warn("publish bet_settled", zap.String("betId", bet.ID), zap.Error(err))
	}
}
