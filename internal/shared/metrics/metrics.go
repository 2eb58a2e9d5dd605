package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Contadores do motor de apostas. Registrados no registry default e
// expostos pelo servidor de métricas.
var (
	BetsPlaced = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "engine_bets_placed_total",
		Help: "Apostas aceitas, por modalidade.",
	}, []string{"type"})

	BetsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "engine_bets_rejected_total",
		Help: "Apostas rejeitadas na validação, por motivo.",
	}, []string{"reason"})

	BetsSettled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "engine_bets_settled_total",
		Help: "Apostas liquidadas, por resultado final.",
	}, []string{"result"})

	SettlementFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "engine_settlement_failures_total",
		Help: "Apostas cuja liquidação falhou e ficou para o próximo passe.",
	})

	ProviderCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "engine_provider_calls_total",
		Help: "Chamadas ao fornecedor externo, por endpoint.",
	}, []string{"endpoint"})

	ProviderBlocked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "engine_provider_blocked_total",
		Help: "Chamadas bloqueadas pelo orçamento diário.",
	})

	OddsCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "engine_odds_cache_total",
		Help: "Resultado das consultas ao cache de odds (hit/miss/stale).",
	}, []string{"result"})

	MatchesUpserted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "engine_matches_upserted_total",
		Help: "Partidas criadas/atualizadas pela ingestão.",
	}, []string{"op"})
)
