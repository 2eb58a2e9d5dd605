package domain

import "time"

// LedgerType classifica o evento que afetou o saldo.
type LedgerType string

const (
	LedgerDeposit    LedgerType = "deposit"
	LedgerWithdrawal LedgerType = "withdrawal"
	LedgerBetPlaced  LedgerType = "bet_placed"
	LedgerBetWon     LedgerType = "bet_won"
	LedgerBetRefund  LedgerType = "bet_refund"
	LedgerAdjustment LedgerType = "adjustment"
	LedgerPayment    LedgerType = "payment"
)

// LedgerStatus só sai de completed/failed via workflow explícito de
// aprovação (colaborador externo).
type LedgerStatus string

const (
	LedgerPending   LedgerStatus = "pending"
	LedgerCompleted LedgerStatus = "completed"
	LedgerFailed    LedgerStatus = "failed"
)

// LedgerEntry é o registro imutável de auditoria de cada evento que
// mexeu no saldo. Sempre carrega o saldo antes/depois.
type LedgerEntry struct {
	ID                 string
	AccountID          string
	AmountCents        int64
	Type               LedgerType
	Status             LedgerStatus
	BalanceBeforeCents int64
	BalanceAfterCents  int64
	ReferenceType      string // "Bet", "Adjustment", ...
	ReferenceID        string
	Reason             string
	Description        string
	CreatedAt          time.Time
}
