package events

import "time"

// Evento emitido pelo motor de liquidação quando uma aposta atinge
// status terminal.
type BetSettled struct {
	BetID       string    `json:"betId"`
	AccountID   string    `json:"accountId"`
	MatchID     string    `json:"matchId"`
	Type        string    `json:"type"`
	Result      string    `json:"result"` // "won" | "lost" | "void"
	StakeCents  int64     `json:"stake_cents"`
	PayoutCents int64     `json:"payout_cents"`
	SettledBy   string    `json:"settledBy"`
	Ts          time.Time `json:"ts"`
}
