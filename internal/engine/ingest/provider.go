package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/radieske/sportsbook-engine/internal/shared/metrics"
)

// ProviderEvent é um evento esportivo como chega do fornecedor, tanto
// do endpoint de odds quanto do de placares.
type ProviderEvent struct {
	ID           string              `json:"id"`
	SportKey     string              `json:"sport_key"`
	SportTitle   string              `json:"sport_title"`
	CommenceTime time.Time           `json:"commence_time"`
	HomeTeam     string              `json:"home_team"`
	AwayTeam     string              `json:"away_team"`
	Bookmakers   []ProviderBookmaker `json:"bookmakers,omitempty"`

	// Campos do endpoint de placares.
	Completed *bool                `json:"completed,omitempty"`
	Scores    []ProviderScoreEntry `json:"scores,omitempty"`

	// Formas alternativas de placar vistas em feeds legados.
	ScoreHome   *int   `json:"score_home,omitempty"`
	ScoreAway   *int   `json:"score_away,omitempty"`
	Period      string `json:"period,omitempty"`
	EventStatus string `json:"event_status,omitempty"`
}

type ProviderBookmaker struct {
	Key     string           `json:"key"`
	Title   string           `json:"title"`
	Markets []ProviderMarket `json:"markets"`
}

type ProviderMarket struct {
	Key      string            `json:"key"`
	Outcomes []ProviderOutcome `json:"outcomes"`
}

type ProviderOutcome struct {
	Name  string   `json:"name"`
	Price float64  `json:"price"`
	Point *float64 `json:"point,omitempty"`
}

// ProviderScoreEntry é um placar por time, com valor em string como o
// fornecedor envia.
type ProviderScoreEntry struct {
	Name  string `json:"name"`
	Score string `json:"score"`
}

// Client fala com a API externa de odds/placares (formato the-odds-api
// v4). Toda chamada é limitada pelo timeout do http.Client.
type Client struct {
	BaseURL    string
	APIKey     string
	Regions    string
	Markets    string
	OddsFormat string
	HTTP       *http.Client
}

// NewClient monta o cliente com timeout de requisição.
func NewClient(baseURL, apiKey, regions, markets, oddsFormat string, timeout time.Duration) *Client {
	return &Client{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		Regions:    regions,
		Markets:    markets,
		OddsFormat: oddsFormat,
		HTTP:       &http.Client{Timeout: timeout},
	}
}

// Odds busca os eventos com mercados de um esporte.
func (c *Client) Odds(ctx context.Context, sportKey string) ([]ProviderEvent, error) {
	q := url.Values{}
	q.Set("apiKey", c.APIKey)
	q.Set("regions", c.Regions)
	q.Set("markets", c.Markets)
	q.Set("oddsFormat", c.OddsFormat)
	metrics.ProviderCalls.WithLabelValues("odds").Inc()
	return c.get(ctx, fmt.Sprintf("%s/sports/%s/odds", c.BaseURL, sportKey), q)
}

// Scores busca placares e status de eventos de um esporte.
func (c *Client) Scores(ctx context.Context, sportKey string) ([]ProviderEvent, error) {
	q := url.Values{}
	q.Set("apiKey", c.APIKey)
	q.Set("dateFormat", "iso")
	metrics.ProviderCalls.WithLabelValues("scores").Inc()
	return c.get(ctx, fmt.Sprintf("%s/sports/%s/scores", c.BaseURL, sportKey), q)
}

func (c *Client) get(ctx context.Context, endpoint string, q url.Values) ([]ProviderEvent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("provider request: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		return nil, fmt.Errorf("provider http %d", res.StatusCode)
	}
	var out []ProviderEvent
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("provider decode: %w", err)
	}
	return out, nil
}
