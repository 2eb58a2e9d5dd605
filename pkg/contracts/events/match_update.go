package events

import "time"

// Evento publicado no tópico "match_updates" a cada partida criada ou
// atualizada pela ingestão. Também é o payload do broadcast WebSocket.
type MatchUpdate struct {
	MatchID    string    `json:"matchId"`
	ExternalID string    `json:"externalId,omitempty"`
	Sport      string    `json:"sport"`
	HomeTeam   string    `json:"homeTeam"`
	AwayTeam   string    `json:"awayTeam"`
	Status     string    `json:"status"`
	ScoreHome  int       `json:"scoreHome"`
	ScoreAway  int       `json:"scoreAway"`
	Period     string    `json:"period,omitempty"`
	StartTime  time.Time `json:"startTime"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
