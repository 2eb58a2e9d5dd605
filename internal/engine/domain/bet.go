package domain

import (
	"strings"
	"time"
)

// BetType é a modalidade da aposta.
type BetType string

const (
	BetStraight BetType = "straight"
	BetParlay   BetType = "parlay"
	BetTeaser   BetType = "teaser"
	BetIf       BetType = "if_bet"
	BetReverse  BetType = "reverse"
)

// NormalizeBetType aceita variações com hífen/maiúsculas ("If-Bet" => if_bet).
// Vazio vira straight.
func NormalizeBetType(t string) BetType {
	n := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(t)), "-", "_")
	if n == "" {
		return BetStraight
	}
	return BetType(n)
}

// BetStatus é monotônico: sai de pending exatamente uma vez para um
// valor terminal.
type BetStatus string

const (
	BetPending   BetStatus = "pending"
	BetWon       BetStatus = "won"
	BetLost      BetStatus = "lost"
	BetVoid      BetStatus = "void"
	BetCashedOut BetStatus = "cashed_out"
)

// Terminal indica se o status encerra a aposta.
func (s BetStatus) Terminal() bool { return s != BetPending }

// LegStatus é o status individual de uma perna, também monotônico.
type LegStatus string

const (
	LegPending LegStatus = "pending"
	LegWon     LegStatus = "won"
	LegLost    LegStatus = "lost"
	LegVoid    LegStatus = "void"
)

// Leg é uma seleção dentro da aposta, amarrada a uma partida e um
// outcome de mercado. Price e Point são capturados no momento da
// aposta e nunca mudam depois.
type Leg struct {
	ID        string        `json:"id"`
	MatchID   string        `json:"matchId"`
	Selection string        `json:"selection"`
	Price     float64       `json:"price"`
	MarketKey string        `json:"marketKey"`
	Point     *float64      `json:"point,omitempty"`
	Status    LegStatus     `json:"status"`
	Snapshot  MatchSnapshot `json:"matchSnapshot"`
}

// Bet é a aposta composta. Reverse é modelado como duas apostas if_bet
// irmãs (A->B e B->A), cada uma com risco e pagamento independentes.
type Bet struct {
	ID                   string
	AccountID            string
	Type                 BetType
	AmountCents          int64
	PotentialPayoutCents int64
	TeaserPoints         float64
	Status               BetStatus
	Result               string
	Legs                 []Leg
	SettledAt            *time.Time
	SettledBy            string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// ReferencesMatch diz se alguma perna aponta para a partida.
func (b *Bet) ReferencesMatch(matchID string) bool {
	for i := range b.Legs {
		if b.Legs[i].MatchID == matchID {
			return true
		}
	}
	return false
}
