package store

import (
	"context"
	"sort"
	"sync"

	"github.com/radieske/sportsbook-engine/internal/engine/domain"
)

// Memory é um Store em memória usado nos testes dos motores.
// O Scope correspondente não tem rollback; os motores validam tudo
// antes de qualquer mutação, então os testes continuam fiéis.
type Memory struct {
	mu       sync.Mutex
	Accounts map[string]*domain.Account
	Matches  map[string]*domain.Match
	Bets     map[string]*domain.Bet
	Ledger   []domain.LedgerEntry
}

func NewMemory() *Memory {
	return &Memory{
		Accounts: make(map[string]*domain.Account),
		Matches:  make(map[string]*domain.Match),
		Bets:     make(map[string]*domain.Bet),
	}
}

// Run implementa Scope rodando direto contra o próprio store.
func (m *Memory) Run(_ context.Context, fn func(s Store) error) error {
	return fn(m)
}

func copyAccount(a *domain.Account) *domain.Account { c := *a; return &c }

func copyBet(b *domain.Bet) *domain.Bet {
	c := *b
	c.Legs = make([]domain.Leg, len(b.Legs))
	copy(c.Legs, b.Legs)
	if b.SettledAt != nil {
		t := *b.SettledAt
		c.SettledAt = &t
	}
	return &c
}

func copyMatch(mt *domain.Match) *domain.Match {
	c := *mt
	if mt.Score != nil {
		s := *mt.Score
		c.Score = &s
	}
	return &c
}

func (m *Memory) GetAccount(_ context.Context, id string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.Accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return copyAccount(a), nil
}

func (m *Memory) GetAccountForUpdate(ctx context.Context, id string) (*domain.Account, error) {
	return m.GetAccount(ctx, id)
}

func (m *Memory) UpdateAccountBalances(_ context.Context, a *domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Accounts[a.ID]; !ok {
		return domain.ErrAccountNotFound
	}
	m.Accounts[a.ID] = copyAccount(a)
	return nil
}

func (m *Memory) GetMatch(_ context.Context, id string) (*domain.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mt, ok := m.Matches[id]
	if !ok {
		return nil, domain.ErrMatchNotFound
	}
	return copyMatch(mt), nil
}

func (m *Memory) GetMatchByExternalID(_ context.Context, externalID string) (*domain.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, mt := range m.Matches {
		if mt.ExternalID == externalID {
			return copyMatch(mt), nil
		}
	}
	return nil, domain.ErrMatchNotFound
}

func (m *Memory) ListMatches(_ context.Context, status domain.MatchStatus, limit int) ([]domain.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Match
	for _, mt := range m.Matches {
		if status != "" && mt.Status != status {
			continue
		}
		out = append(out, *copyMatch(mt))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) InsertMatch(_ context.Context, mt *domain.Match) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Matches[mt.ID] = copyMatch(mt)
	return nil
}

func (m *Memory) UpdateMatch(ctx context.Context, mt *domain.Match) error {
	return m.InsertMatch(ctx, mt)
}

func (m *Memory) InsertBet(_ context.Context, b *domain.Bet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Bets[b.ID] = copyBet(b)
	return nil
}

func (m *Memory) UpdateBetSettlement(_ context.Context, b *domain.Bet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Bets[b.ID]; !ok {
		return domain.ErrBetNotFound
	}
	m.Bets[b.ID] = copyBet(b)
	return nil
}

func (m *Memory) ListPendingBetsByMatch(_ context.Context, matchID string) ([]domain.Bet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Bet
	for _, b := range m.Bets {
		if b.Status == domain.BetPending && b.ReferencesMatch(matchID) {
			out = append(out, *copyBet(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) ListBetsByAccount(_ context.Context, accountID string, status domain.BetStatus, limit int) ([]domain.Bet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Bet
	for _, b := range m.Bets {
		if b.AccountID != accountID {
			continue
		}
		if status != "" && b.Status != status {
			continue
		}
		out = append(out, *copyBet(b))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) InsertLedgerEntry(_ context.Context, e *domain.LedgerEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Ledger = append(m.Ledger, *e)
	return nil
}
