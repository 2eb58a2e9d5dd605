// Package httpapi expõe o motor de apostas por REST: criação e
// listagem de apostas, consulta de partidas, liquidação manual e o
// gatilho de refresh de odds.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/radieske/sportsbook-engine/internal/engine/domain"
	"github.com/radieske/sportsbook-engine/internal/engine/ingest"
	"github.com/radieske/sportsbook-engine/internal/engine/placement"
	"github.com/radieske/sportsbook-engine/internal/engine/settlement"
	"github.com/radieske/sportsbook-engine/internal/engine/store"
)

type API struct {
	Log        *zap.Logger
	Store      store.Store
	Placement  *placement.Engine
	Settlement *settlement.Engine
	Ingest     *ingest.Service

	// PublicRefresh libera POST /v1/odds/refresh sem proteção. Fora do
	// modo demo o refresh fica só no agendador interno.
	PublicRefresh bool
}

func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Post("/v1/bets", a.placeBet)
	r.Get("/v1/bets", a.listBets)
	r.Get("/v1/bets/{id}", a.getBet)
	r.Get("/v1/bet-modes", a.betModes)
	r.Get("/v1/matches", a.listMatches)
	r.Get("/v1/matches/{id}", a.getMatch)
	r.Post("/v1/matches/{id}/settle", a.settleMatch)
	r.Post("/v1/odds/refresh", a.refreshOdds)
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError mapeia erros de domínio para status HTTP. Erros internos
// não vazam detalhe para o cliente.
func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrMatchNotFound),
		errors.Is(err, domain.ErrBetNotFound),
		errors.Is(err, domain.ErrAccountNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrOddsChanged):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrInsufficientFunds):
		writeJSON(w, http.StatusPaymentRequired, map[string]string{"error": err.Error()})
	case domain.IsClientError(err):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		a.Log.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func (a *API) placeBet(w http.ResponseWriter, r *http.Request) {
	var req PlaceBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad json"})
		return
	}
	if req.AccountID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "accountId required"})
		return
	}

	legs := req.Legs
	if len(legs) == 0 && req.MatchID != "" {
		legs = []placement.LegSpec{{
			MatchID:   req.MatchID,
			Selection: req.Selection,
			Odds:      req.Odds,
			MarketKey: req.MarketKey,
		}}
	}

	res, err := a.Placement.PlaceBet(r.Context(), placement.Request{
		AccountID:    req.AccountID,
		Type:         req.Type,
		AmountCents:  req.AmountCents,
		TeaserPoints: req.TeaserPoints,
		Legs:         legs,
	})
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	out := PlaceBetResponse{
		Bets:         make([]BetView, 0, len(res.Bets)),
		BalanceCents: res.BalanceCents,
		PendingCents: res.PendingCents,
	}
	for i := range res.Bets {
		out.Bets = append(out.Bets, toBetView(&res.Bets[i]))
	}
	writeJSON(w, http.StatusCreated, out)
}

func (a *API) listBets(w http.ResponseWriter, r *http.Request) {
	accountID := r.URL.Query().Get("accountId")
	if accountID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "accountId required"})
		return
	}
	status := domain.BetStatus(r.URL.Query().Get("status"))
	limit := queryInt(r, "limit", 50)

	bets, err := a.Store.ListBetsByAccount(r.Context(), accountID, status, limit)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	out := make([]BetView, 0, len(bets))
	for i := range bets {
		out = append(out, toBetView(&bets[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) getBet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	accountID := r.URL.Query().Get("accountId")
	if accountID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "accountId required"})
		return
	}
	bets, err := a.Store.ListBetsByAccount(r.Context(), accountID, "", 0)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	for i := range bets {
		if bets[i].ID == id {
			writeJSON(w, http.StatusOK, toBetView(&bets[i]))
			return
		}
	}
	a.writeError(w, r, domain.ErrBetNotFound)
}

func (a *API) betModes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, domain.DefaultBetModeRules)
}

func (a *API) listMatches(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	// "active" é o apelido histórico da UI para partidas ao vivo.
	if status == "active" {
		status = string(domain.MatchLive)
	}
	limit := queryInt(r, "limit", 100)

	matches, err := a.Store.ListMatches(r.Context(), domain.MatchStatus(status), limit)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	out := make([]MatchView, 0, len(matches))
	for i := range matches {
		out = append(out, toMatchView(&matches[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) getMatch(w http.ResponseWriter, r *http.Request) {
	m, err := a.Store.GetMatch(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMatchView(m))
}

func (a *API) settleMatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req SettleRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad json"})
			return
		}
	}

	sum, err := a.Settlement.SettleMatch(r.Context(), id, req.Winner, "manual")
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	var out SettleResponse
	out.MatchID = id
	out.Results.Total = sum.Total
	out.Results.Won = sum.Won
	out.Results.Lost = sum.Lost
	out.Results.Voided = sum.Voided
	writeJSON(w, http.StatusOK, out)
}

func (a *API) refreshOdds(w http.ResponseWriter, r *http.Request) {
	if !a.PublicRefresh {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "refresh disabled"})
		return
	}
	force := r.URL.Query().Get("force") == "true"
	res, err := a.Ingest.Refresh(r.Context(), force)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
