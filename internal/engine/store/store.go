package store

import (
	"context"

	"github.com/radieske/sportsbook-engine/internal/engine/domain"
)

// Store agrupa as operações de persistência do motor de apostas.
// Dentro de um Scope, todas as chamadas enxergam a mesma unidade de
// trabalho (transação ou execução sequencial).
type Store interface {
	GetAccount(ctx context.Context, id string) (*domain.Account, error)
	// GetAccountForUpdate trava a linha da conta até o fim do escopo
	// (FOR UPDATE no Postgres; no-op na execução sequencial/memória).
	GetAccountForUpdate(ctx context.Context, id string) (*domain.Account, error)
	UpdateAccountBalances(ctx context.Context, a *domain.Account) error

	GetMatch(ctx context.Context, id string) (*domain.Match, error)
	GetMatchByExternalID(ctx context.Context, externalID string) (*domain.Match, error)
	ListMatches(ctx context.Context, status domain.MatchStatus, limit int) ([]domain.Match, error)
	InsertMatch(ctx context.Context, m *domain.Match) error
	UpdateMatch(ctx context.Context, m *domain.Match) error

	InsertBet(ctx context.Context, b *domain.Bet) error
	// UpdateBetSettlement persiste status/result/settledAt/settledBy,
	// payout recalculado e os status das pernas.
	UpdateBetSettlement(ctx context.Context, b *domain.Bet) error
	ListPendingBetsByMatch(ctx context.Context, matchID string) ([]domain.Bet, error)
	ListBetsByAccount(ctx context.Context, accountID string, status domain.BetStatus, limit int) ([]domain.Bet, error)

	InsertLedgerEntry(ctx context.Context, e *domain.LedgerEntry) error
}

// Scope executa uma sequência de mutações multi-registro como uma
// unidade. A estratégia (atômica vs sequencial) é escolhida no startup
// a partir da flag de capacidade do deployment, nunca por sniffing de
// mensagem de erro do driver.
type Scope interface {
	Run(ctx context.Context, fn func(s Store) error) error
}
