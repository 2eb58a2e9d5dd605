package domain

import "time"

// AccountStatus controla o que a conta pode fazer.
type AccountStatus string

const (
	AccountActive    AccountStatus = "active"
	AccountSuspended AccountStatus = "suspended"
	AccountDisabled  AccountStatus = "disabled"
	AccountReadOnly  AccountStatus = "read_only"
)

// Account é o titular de saldo (usuário ou agente).
// Todos os valores monetários são em centavos (int64), nunca float.
type Account struct {
	ID                 string
	Username           string
	Status             AccountStatus
	BalanceCents       int64 // saldo disponível para apostar ou sacar
	PendingCents       int64 // reservado contra apostas em aberto
	TotalWageredCents  int64
	TotalWinningsCents int64
	BetCount           int64
	MinBetCents        int64
	MaxBetCents        int64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// AvailableCents retorna o saldo livre para novas apostas.
// Invariante: available = max(0, balance - pending).
func (a *Account) AvailableCents() int64 {
	av := a.BalanceCents - a.PendingCents
	if av < 0 {
		return 0
	}
	return av
}

// CanWager indica se o status da conta permite apostar.
func (a *Account) CanWager() bool {
	switch a.Status {
	case AccountSuspended, AccountDisabled, AccountReadOnly:
		return false
	}
	return true
}
