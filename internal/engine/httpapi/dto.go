package httpapi

import (
	"time"

	"github.com/radieske/sportsbook-engine/internal/engine/domain"
	"github.com/radieske/sportsbook-engine/internal/engine/placement"
)

// PlaceBetRequest aceita as duas formas do cliente: legs explícitas
// para apostas compostas, ou os campos planos (matchId/selection/odds)
// como atalho de aposta straight.
type PlaceBetRequest struct {
	AccountID    string             `json:"accountId"`
	Type         string             `json:"type"`
	AmountCents  int64              `json:"amountCents"`
	TeaserPoints float64            `json:"teaserPoints,omitempty"`
	Legs         []placement.LegSpec `json:"legs,omitempty"`

	// atalho straight
	MatchID   string  `json:"matchId,omitempty"`
	Selection string  `json:"selection,omitempty"`
	Odds      float64 `json:"odds,omitempty"`
	MarketKey string  `json:"marketKey,omitempty"`
}

type PlaceBetResponse struct {
	Bets         []BetView `json:"bets"`
	BalanceCents int64     `json:"balanceCents"`
	PendingCents int64     `json:"pendingCents"`
}

// BetView é a projeção da aposta devolvida pela API, com os dados da
// partida vindos do snapshot de cada perna.
type BetView struct {
	ID                   string     `json:"id"`
	AccountID            string     `json:"accountId"`
	Type                 string     `json:"type"`
	AmountCents          int64      `json:"amountCents"`
	PotentialPayoutCents int64      `json:"potentialPayoutCents"`
	TeaserPoints         float64    `json:"teaserPoints,omitempty"`
	Status               string     `json:"status"`
	Result               string     `json:"result,omitempty"`
	SettledAt            *time.Time `json:"settledAt,omitempty"`
	SettledBy            string     `json:"settledBy,omitempty"`
	CreatedAt            time.Time  `json:"createdAt"`
	Legs                 []LegView  `json:"legs"`
}

type LegView struct {
	ID        string   `json:"id"`
	MatchID   string   `json:"matchId"`
	Selection string   `json:"selection"`
	Price     float64  `json:"price"`
	MarketKey string   `json:"marketKey"`
	Point     *float64 `json:"point,omitempty"`
	Status    string   `json:"status"`
	HomeTeam  string   `json:"homeTeam,omitempty"`
	AwayTeam  string   `json:"awayTeam,omitempty"`
	Sport     string   `json:"sport,omitempty"`
	StartTime time.Time `json:"startTime,omitempty"`
}

type MatchView struct {
	ID         string          `json:"id"`
	ExternalID string          `json:"externalId,omitempty"`
	Sport      string          `json:"sport"`
	HomeTeam   string          `json:"homeTeam"`
	AwayTeam   string          `json:"awayTeam"`
	StartTime  time.Time       `json:"startTime"`
	Status     string          `json:"status"`
	Score      *domain.Score   `json:"score,omitempty"`
	Markets    []domain.Market `json:"markets,omitempty"`
	Bookmaker  string          `json:"bookmaker,omitempty"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

type SettleRequest struct {
	Winner string `json:"winner,omitempty"`
}

type SettleResponse struct {
	MatchID string `json:"matchId"`
	Results struct {
		Total  int `json:"total"`
		Won    int `json:"won"`
		Lost   int `json:"lost"`
		Voided int `json:"voided"`
	} `json:"results"`
}

func toBetView(b *domain.Bet) BetView {
	v := BetView{
		ID:                   b.ID,
		AccountID:            b.AccountID,
		Type:                 string(b.Type),
		AmountCents:          b.AmountCents,
		PotentialPayoutCents: b.PotentialPayoutCents,
		TeaserPoints:         b.TeaserPoints,
		Status:               string(b.Status),
		Result:               b.Result,
		SettledAt:            b.SettledAt,
		SettledBy:            b.SettledBy,
		CreatedAt:            b.CreatedAt,
		Legs:                 make([]LegView, 0, len(b.Legs)),
	}
	for i := range b.Legs {
		l := &b.Legs[i]
		v.Legs = append(v.Legs, LegView{
			ID:        l.ID,
			MatchID:   l.MatchID,
			Selection: l.Selection,
			Price:     l.Price,
			MarketKey: l.MarketKey,
			Point:     l.Point,
			Status:    string(l.Status),
			HomeTeam:  l.Snapshot.HomeTeam,
			AwayTeam:  l.Snapshot.AwayTeam,
			Sport:     l.Snapshot.Sport,
			StartTime: l.Snapshot.StartTime,
		})
	}
	return v
}

func toMatchView(m *domain.Match) MatchView {
	return MatchView{
		ID:         m.ID,
		ExternalID: m.ExternalID,
		Sport:      m.Sport,
		HomeTeam:   m.HomeTeam,
		AwayTeam:   m.AwayTeam,
		StartTime:  m.StartTime,
		Status:     string(m.Status),
		Score:      m.Score,
		Markets:    m.Odds.Normalize(m.HomeTeam, m.AwayTeam),
		Bookmaker:  m.Odds.Bookmaker,
		UpdatedAt:  m.UpdatedAt,
	}
}
