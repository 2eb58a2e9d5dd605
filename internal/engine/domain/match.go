package domain

import (
	"strings"
	"time"
)

// MatchStatus é o ciclo de vida de uma partida.
type MatchStatus string

const (
	MatchScheduled MatchStatus = "scheduled"
	MatchLive      MatchStatus = "live"
	MatchFinished  MatchStatus = "finished"
	MatchCancelled MatchStatus = "cancelled"
)

// Score é o placar reportado pelo fornecedor externo.
type Score struct {
	Home           int    `json:"score_home"`
	Away           int    `json:"score_away"`
	Period         string `json:"period,omitempty"`
	ProviderStatus string `json:"event_status,omitempty"` // string crua do fornecedor
}

// Total retorna a soma dos placares (mercado de totals).
func (s Score) Total() int { return s.Home + s.Away }

// Outcome é um resultado apostável dentro de um mercado.
// Point só existe em spreads/totals.
type Outcome struct {
	Name  string   `json:"name"`
	Price float64  `json:"price"`
	Point *float64 `json:"point,omitempty"`
}

// Market é um mercado nomeado (h2h, spreads, totals) com seus outcomes.
type Market struct {
	Key      string    `json:"key"`
	Outcomes []Outcome `json:"outcomes"`
}

// MarketShape é a forma de odds persistida no match.
// União de duas representações: estruturada (Markets) ou legada
// (home_win/away_win/draw vindos de cadastro manual).
type MarketShape struct {
	Bookmaker string   `json:"bookmaker,omitempty"`
	Markets   []Market `json:"markets,omitempty"`

	// forma legada
	HomeWin *float64 `json:"home_win,omitempty"`
	AwayWin *float64 `json:"away_win,omitempty"`
	Draw    *float64 `json:"draw,omitempty"`
}

// Normalize resolve a união em uma lista de mercados.
// A forma legada vira um mercado h2h sintetizado com os nomes dos times.
func (ms MarketShape) Normalize(homeTeam, awayTeam string) []Market {
	if len(ms.Markets) > 0 {
		return ms.Markets
	}

	var outs []Outcome
	if ms.HomeWin != nil {
		outs = append(outs, Outcome{Name: homeTeam, Price: *ms.HomeWin})
	}
	if ms.AwayWin != nil {
		outs = append(outs, Outcome{Name: awayTeam, Price: *ms.AwayWin})
	}
	if ms.Draw != nil {
		outs = append(outs, Outcome{Name: "Draw", Price: *ms.Draw})
	}
	if len(outs) == 0 {
		return nil
	}
	return []Market{{Key: MarketH2H, Outcomes: outs}}
}

// Chaves canônicas de mercado.
const (
	MarketH2H     = "h2h"
	MarketSpreads = "spreads"
	MarketTotals  = "totals"
)

// NormalizeMarketKey traduz apelidos de mercado para a chave canônica.
// "straight", "moneyline" e "ml" são todos h2h.
func NormalizeMarketKey(key string) string {
	k := strings.ToLower(strings.TrimSpace(key))
	switch k {
	case "straight", "moneyline", "ml", "h2h", "":
		return MarketH2H
	}
	return k
}

// Match é uma partida entre dois competidores.
// Mutada apenas pelo serviço de ingestão de odds.
type Match struct {
	ID          string
	ExternalID  string
	Sport       string
	HomeTeam    string
	AwayTeam    string
	StartTime   time.Time
	Status      MatchStatus
	Score       *Score
	Odds        MarketShape
	LastUpdated time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OpenForBetting indica se a partida ainda aceita apostas.
// Partidas scheduled fecham quando o horário de início passa.
func (m *Match) OpenForBetting(now time.Time) bool {
	switch m.Status {
	case MatchLive:
		return true
	case MatchScheduled:
		return m.StartTime.IsZero() || m.StartTime.After(now)
	}
	return false
}

// Snapshot captura o estado imutável da partida no momento da aposta.
// A liquidação nunca depende do match mutável pós-aposta.
func (m *Match) Snapshot() MatchSnapshot {
	return MatchSnapshot{
		MatchID:    m.ID,
		ExternalID: m.ExternalID,
		Sport:      m.Sport,
		HomeTeam:   m.HomeTeam,
		AwayTeam:   m.AwayTeam,
		StartTime:  m.StartTime,
		Markets:    m.Odds.Normalize(m.HomeTeam, m.AwayTeam),
		TakenAt:    time.Now().UTC(),
	}
}

// MatchSnapshot é o retrato da partida embutido em cada perna da aposta.
type MatchSnapshot struct {
	MatchID    string    `json:"matchId"`
	ExternalID string    `json:"externalId,omitempty"`
	Sport      string    `json:"sport"`
	HomeTeam   string    `json:"homeTeam"`
	AwayTeam   string    `json:"awayTeam"`
	StartTime  time.Time `json:"startTime"`
	Markets    []Market  `json:"markets,omitempty"`
	TakenAt    time.Time `json:"takenAt"`
}
