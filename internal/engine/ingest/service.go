// Package ingest sincroniza partidas e cotações a partir do fornecedor
// externo: cache de feed com TTL, cota diária de chamadas, odds
// sintéticas para demo e gatilho de liquidação quando uma partida
// transiciona para finished.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/radieske/sportsbook-engine/internal/engine/domain"
	"github.com/radieske/sportsbook-engine/internal/engine/settlement"
	"github.com/radieske/sportsbook-engine/internal/engine/store"
	"github.com/radieske/sportsbook-engine/internal/shared/metrics"
	"github.com/radieske/sportsbook-engine/pkg/contracts/events"
)

// Provider abstrai a API externa de odds e placares.
type Provider interface {
	Odds(ctx context.Context, sportKey string) ([]ProviderEvent, error)
	Scores(ctx context.Context, sportKey string) ([]ProviderEvent, error)
}

// Budget decide se ainda há cota para chamar o fornecedor.
type Budget interface {
	Consume(ctx context.Context) (bool, error)
}

// Settler liquida as apostas pendentes de uma partida finalizada.
type Settler interface {
	SettleMatch(ctx context.Context, matchID, manualWinner, settledBy string) (settlement.Summary, error)
}

// Notifier publica eventos de partida para consumidores externos.
type Notifier interface {
	PublishMatchUpdate(ctx context.Context, e events.MatchUpdate) error
}

// Broadcaster repassa atualizações para o hub WebSocket.
type Broadcaster interface {
	BroadcastMatchUpdate(ctx context.Context, e events.MatchUpdate) error
}

// RefreshResult resume um passe de sincronização.
type RefreshResult struct {
	Created  int    `json:"created"`
	Updated  int    `json:"updated"`
	Settled  int    `json:"settled"`
	APICalls int    `json:"apiCalls"`
	Cache    string `json:"cache"` // fresh | hit | stale | synthetic
}

// Service é o serviço de ingestão de odds.
type Service struct {
	Log      *zap.Logger
	Store    store.Store
	Cache    FeedCache
	Provider Provider
	Budget   Budget
	Settler  Settler
	Notif    Notifier    // opcional
	Bcast    Broadcaster // opcional

	Sports        []string
	CacheTTL      time.Duration
	ScoresEnabled bool
	Synthetic     bool

	NowFunc func() time.Time

	sf singleflight.Group
}

func (s *Service) now() time.Time {
	if s.NowFunc != nil {
		return s.NowFunc()
	}
	return time.Now().UTC()
}

// Refresh sincroniza todos os esportes configurados. Chamadas
// concorrentes colapsam numa só via singleflight; todas recebem o
// resultado do passe em andamento.
func (s *Service) Refresh(ctx context.Context, force bool) (RefreshResult, error) {
	v, err, _ := s.sf.Do("refresh", func() (interface{}, error) {
		return s.refreshAll(ctx, force)
	})
	if err != nil {
		return RefreshResult{}, err
	}
	return v.(RefreshResult), nil
}

func (s *Service) refreshAll(ctx context.Context, force bool) (RefreshResult, error) {
	var out RefreshResult
	for _, sport := range s.Sports {
		res, err := s.refreshSport(ctx, sport, force)
		if err != nil {
			s.Log.Error("sport refresh failed", zap.String("sport", sport), zap.Error(err))
			continue
		}
		out.Created += res.Created
		out.Updated += res.Updated
		out.Settled += res.Settled
		out.APICalls += res.APICalls
		if out.Cache == "" || res.Cache == "fresh" {
			out.Cache = res.Cache
		}
	}
	if out.Cache == "" {
		out.Cache = "hit"
	}
	return out, nil
}

func (s *Service) refreshSport(ctx context.Context, sport string, force bool) (RefreshResult, error) {
	var res RefreshResult

	feed, cacheState, calls, err := s.fetchOdds(ctx, sport, force)
	if err != nil {
		return res, err
	}
	res.Cache = cacheState
	res.APICalls = calls

	scores := map[string]ProviderEvent{}
	if s.ScoresEnabled && cacheState == "fresh" {
		if sc, n, err := s.fetchScores(ctx, sport); err != nil {
			s.Log.Warn("scores fetch failed", zap.String("sport", sport), zap.Error(err))
		} else {
			res.APICalls += n
			for _, ev := range sc {
				scores[ev.ID] = ev
			}
		}
	}

	for i := range feed {
		ev := feed[i]
		if sc, ok := scores[ev.ID]; ok {
			mergeScore(&ev, sc)
		}
		created, settled, err := s.upsertEvent(ctx, sport, ev)
		if err != nil {
			s.Log.Error("event upsert failed",
				zap.String("externalId", ev.ID),
				zap.Error(err),
			)
			continue
		}
		if created {
			res.Created++
		} else {
			res.Updated++
		}
		res.Settled += settled
	}
	return res, nil
}

// fetchOdds devolve o feed de um esporte, preferindo o cache fresco,
// caindo para o fornecedor (sob cota) e por último para a cópia stale.
func (s *Service) fetchOdds(ctx context.Context, sport string, force bool) ([]ProviderEvent, string, int, error) {
	freshKey := "odds:feed:" + sport
	staleKey := freshKey + ":stale"

	if !force {
		if feed, ok := s.Cache.Get(ctx, freshKey); ok {
			metrics.OddsCache.WithLabelValues("hit").Inc()
			return feed, "hit", 0, nil
		}
	}
	metrics.OddsCache.WithLabelValues("miss").Inc()

	if s.Synthetic {
		feed := s.syntheticFeed(sport)
		s.storeFeed(ctx, freshKey, staleKey, feed)
		return feed, "synthetic", 0, nil
	}

	allowed, err := s.Budget.Consume(ctx)
	if err != nil {
		return nil, "", 0, err
	}
	if !allowed {
		if feed, ok := s.Cache.Get(ctx, staleKey); ok {
			metrics.OddsCache.WithLabelValues("stale").Inc()
			s.Log.Warn("daily call budget exhausted, serving stale feed", zap.String("sport", sport))
			return feed, "stale", 0, nil
		}
		return nil, "", 0, fmt.Errorf("call budget exhausted and no stale feed for %s", sport)
	}

	feed, err := s.Provider.Odds(ctx, sport)
	if err != nil {
		// Fornecedor fora: stale é melhor que nada.
		if stale, ok := s.Cache.Get(ctx, staleKey); ok {
			metrics.OddsCache.WithLabelValues("stale").Inc()
			s.Log.Warn("provider unavailable, serving stale feed",
				zap.String("sport", sport), zap.Error(err))
			return stale, "stale", 1, nil
		}
		return nil, "", 1, err
	}

	s.storeFeed(ctx, freshKey, staleKey, feed)
	return feed, "fresh", 1, nil
}

func (s *Service) fetchScores(ctx context.Context, sport string) ([]ProviderEvent, int, error) {
	allowed, err := s.Budget.Consume(ctx)
	if err != nil {
		return nil, 0, err
	}
	if !allowed {
		return nil, 0, nil
	}
	sc, err := s.Provider.Scores(ctx, sport)
	if err != nil {
		return nil, 1, err
	}
	return sc, 1, nil
}

func (s *Service) storeFeed(ctx context.Context, freshKey, staleKey string, feed []ProviderEvent) {
	s.Cache.Set(ctx, freshKey, feed, s.CacheTTL)
	// Cópia stale sobrevive ao TTL para servir de fallback.
	s.Cache.Set(ctx, staleKey, feed, 7*24*time.Hour)
}

// syntheticFeed deriva eventos demo das partidas já cadastradas e ainda
// abertas. Sem partidas não há o que fabricar.
func (s *Service) syntheticFeed(sport string) []ProviderEvent {
	ctx := context.Background()
	var feed []ProviderEvent
	for _, st := range []domain.MatchStatus{domain.MatchScheduled, domain.MatchLive} {
		matches, err := s.Store.ListMatches(ctx, st, 200)
		if err != nil {
			continue
		}
		for i := range matches {
			m := matches[i]
			if m.Sport != "" && m.Sport != sport {
				continue
			}
			ext := m.ExternalID
			if ext == "" {
				ext = m.ID
			}
			feed = append(feed, syntheticEvent(ext, sport, m.HomeTeam, m.AwayTeam, m.StartTime))
		}
	}
	return feed
}

// upsertEvent cria ou atualiza a partida correspondente ao evento do
// feed. Devolve se criou e quantas apostas foram liquidadas pelo
// gatilho de transição para finished.
func (s *Service) upsertEvent(ctx context.Context, sport string, ev ProviderEvent) (bool, int, error) {
	now := s.now()

	m, err := s.Store.GetMatchByExternalID(ctx, ev.ID)
	if err != nil && !errors.Is(err, domain.ErrMatchNotFound) {
		return false, 0, err
	}

	markets := eventMarkets(ev)
	if len(markets) == 0 && s.Synthetic {
		markets = syntheticMarkets(ev.ID, ev.HomeTeam, ev.AwayTeam)
	}
	score := eventScore(ev)
	status := inferStatus(ev, now)

	if m == nil {
		m = &domain.Match{
			ID:          uuid.NewString(),
			ExternalID:  ev.ID,
			Sport:       sport,
			HomeTeam:    ev.HomeTeam,
			AwayTeam:    ev.AwayTeam,
			StartTime:   ev.CommenceTime,
			Status:      status,
			Score:       score,
			Odds:        domain.MarketShape{Bookmaker: eventBookmaker(ev), Markets: markets},
			LastUpdated: now,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.Store.InsertMatch(ctx, m); err != nil {
			return false, 0, err
		}
		metrics.MatchesUpserted.WithLabelValues("created").Inc()
		s.announce(ctx, m)
		return true, 0, nil
	}

	wasFinished := m.Status == domain.MatchFinished

	if len(markets) > 0 {
		m.Odds = domain.MarketShape{Bookmaker: eventBookmaker(ev), Markets: markets}
	}
	if score != nil {
		m.Score = score
	}
	// Transições só para frente: finished nunca volta a live.
	if !wasFinished {
		m.Status = status
	}
	if !ev.CommenceTime.IsZero() {
		m.StartTime = ev.CommenceTime
	}
	m.LastUpdated = now
	m.UpdatedAt = now

	if err := s.Store.UpdateMatch(ctx, m); err != nil {
		return false, 0, err
	}
	metrics.MatchesUpserted.WithLabelValues("updated").Inc()
	s.announce(ctx, m)

	// Gatilho de borda: a primeira transição para finished dispara a
	// liquidação. Passes seguintes não encontram apostas pendentes.
	settled := 0
	if !wasFinished && m.Status == domain.MatchFinished {
		sum, err := s.Settler.SettleMatch(ctx, m.ID, "", "system")
		if err != nil {
			s.Log.Error("auto settlement failed", zap.String("matchId", m.ID), zap.Error(err))
		} else {
			settled = sum.Won + sum.Lost + sum.Voided
		}
	}
	return false, settled, nil
}

func (s *Service) announce(ctx context.Context, m *domain.Match) {
	ev := events.MatchUpdate{
		MatchID:    m.ID,
		ExternalID: m.ExternalID,
		Sport:      m.Sport,
		HomeTeam:   m.HomeTeam,
		AwayTeam:   m.AwayTeam,
		Status:     string(m.Status),
		StartTime:  m.StartTime,
		UpdatedAt:  m.UpdatedAt,
	}
	if m.Score != nil {
		ev.ScoreHome = m.Score.Home
		ev.ScoreAway = m.Score.Away
		ev.Period = m.Score.Period
	}
	if s.Notif != nil {
		if err := s.Notif.PublishMatchUpdate(ctx, ev); err != nil {
			s.Log.Warn("publish match_updates", zap.String("matchId", m.ID), zap.Error(err))
		}
	}
	if s.Bcast != nil {
		if err := s.Bcast.BroadcastMatchUpdate(ctx, ev); err != nil {
			s.Log.Warn("broadcast match update", zap.String("matchId", m.ID), zap.Error(err))
		}
	}
}

// RunLoop roda Refresh em intervalo fixo até o contexto encerrar.
func (s *Service) RunLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := s.Refresh(ctx, false); err != nil {
			s.Log.Error("scheduled refresh failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// eventMarkets extrai os mercados do primeiro bookmaker do evento.
func eventMarkets(ev ProviderEvent) []domain.Market {
	if len(ev.Bookmakers) == 0 {
		return nil
	}
	src := ev.Bookmakers[0].Markets
	out := make([]domain.Market, 0, len(src))
	for _, pm := range src {
		m := domain.Market{Key: domain.NormalizeMarketKey(pm.Key)}
		for _, po := range pm.Outcomes {
			m.Outcomes = append(m.Outcomes, domain.Outcome{Name: po.Name, Price: po.Price, Point: po.Point})
		}
		out = append(out, m)
	}
	return out
}

func eventBookmaker(ev ProviderEvent) string {
	if len(ev.Bookmakers) == 0 {
		return ""
	}
	if ev.Bookmakers[0].Title != "" {
		return ev.Bookmakers[0].Title
	}
	return ev.Bookmakers[0].Key
}

// eventScore monta o placar a partir de qualquer uma das formas que o
// fornecedor usa: lista nomeada por time ou campos diretos.
func eventScore(ev ProviderEvent) *domain.Score {
	if ev.ScoreHome != nil || ev.ScoreAway != nil {
		sc := &domain.Score{Period: ev.Period, ProviderStatus: ev.EventStatus}
		if ev.ScoreHome != nil {
			sc.Home = *ev.ScoreHome
		}
		if ev.ScoreAway != nil {
			sc.Away = *ev.ScoreAway
		}
		return sc
	}
	if len(ev.Scores) == 0 {
		return nil
	}
	sc := &domain.Score{Period: ev.Period, ProviderStatus: ev.EventStatus}
	for _, e := range ev.Scores {
		v, err := strconv.Atoi(strings.TrimSpace(e.Score))
		if err != nil {
			continue
		}
		switch e.Name {
		case ev.HomeTeam:
			sc.Home = v
		case ev.AwayTeam:
			sc.Away = v
		}
	}
	return sc
}

// inferStatus decide o status da partida a partir dos sinais do
// fornecedor, na ordem: completed, string de status, presença de placar
// com horário de início já passado.
func inferStatus(ev ProviderEvent, now time.Time) domain.MatchStatus {
	if ev.Completed != nil && *ev.Completed {
		return domain.MatchFinished
	}
	switch strings.ToUpper(strings.TrimSpace(ev.EventStatus)) {
	case "FINAL", "COMPLETE", "COMPLETED", "STATUS_FINAL", "STATUS_CLOSED":
		return domain.MatchFinished
	case "IN_PROGRESS", "LIVE", "STATUS_IN_PROGRESS", "HALFTIME":
		return domain.MatchLive
	case "CANCELLED", "CANCELED", "POSTPONED":
		return domain.MatchCancelled
	}
	hasScore := ev.ScoreHome != nil || ev.ScoreAway != nil || len(ev.Scores) > 0
	if hasScore && !ev.CommenceTime.IsZero() && ev.CommenceTime.Before(now) {
		return domain.MatchLive
	}
	return domain.MatchScheduled
}

// mergeScore transfere placar e status do evento de scores para o
// evento de odds correspondente.
func mergeScore(dst *ProviderEvent, src ProviderEvent) {
	dst.Completed = src.Completed
	dst.Scores = src.Scores
	if src.EventStatus != "" {
		dst.EventStatus = src.EventStatus
	}
	if src.Period != "" {
		dst.Period = src.Period
	}
	if src.ScoreHome != nil {
		dst.ScoreHome = src.ScoreHome
	}
	if src.ScoreAway != nil {
		dst.ScoreAway = src.ScoreAway
	}
}
