package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/sportsbook-engine/internal/engine/httpapi"
	"github.com/radieske/sportsbook-engine/internal/engine/ingest"
	"github.com/radieske/sportsbook-engine/internal/engine/market"
	"github.com/radieske/sportsbook-engine/internal/engine/notify"
	"github.com/radieske/sportsbook-engine/internal/engine/placement"
	"github.com/radieske/sportsbook-engine/internal/engine/settlement"
	"github.com/radieske/sportsbook-engine/internal/engine/store"
	"github.com/radieske/sportsbook-engine/internal/engine/ws"
	"github.com/radieske/sportsbook-engine/internal/shared/cache"
	"github.com/radieske/sportsbook-engine/internal/shared/config"
	"github.com/radieske/sportsbook-engine/internal/shared/db"
	"github.com/radieske/sportsbook-engine/internal/shared/kafka"
	"github.com/radieske/sportsbook-engine/internal/shared/logger"
	"github.com/radieske/sportsbook-engine/internal/shared/metrics"
)

func main() {
	// carrega config
	cfg := config.Load()

	// inicia logger
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	log.Info("starting service", zap.String("service", cfg.ServiceName), zap.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// conecta com db Postgres
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()
	log.Info("postgres connected")

	// conecta com cache Redis
	redisClient, err := cache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("failed to connect redis", zap.Error(err))
	}
	defer redisClient.Close()
	log.Info("redis connected")

	// writers Kafka dos tópicos do motor
	publisher := &notify.KafkaPublisher{
		Log:          log,
		MatchUpdates: kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicMatchUpdates),
		BetSettled:   kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetSettled),
	}
	defer publisher.Close()
	log.Info("kafka writers ready",
		zap.String("matchUpdates", cfg.TopicMatchUpdates),
		zap.String("betSettled", cfg.TopicBetSettled),
	)

	// persistência e escopo de escrita
	pgStore := store.NewPostgres(pg)
	scope := store.NewScope(pg, cfg.AtomicTx)
	if !cfg.AtomicTx {
		log.Warn("running with sequential write scope, multi-record writes are not atomic")
	}

	// motores
	settler := &settlement.Engine{
		Log:   log,
		Scope: scope,
		Store: pgStore,
		Publ:  publisher,
	}
	placer := &placement.Engine{
		Log:      log,
		Scope:    scope,
		Resolver: &market.Resolver{OddsTolerance: cfg.OddsTolerance},
	}

	// ingestão de odds
	ingester := &ingest.Service{
		Log:   log,
		Store: pgStore,
		Cache: &ingest.RedisFeedCache{R: redisClient, Log: log},
		Provider: ingest.NewClient(
			cfg.OddsAPIBaseURL, cfg.OddsAPIKey,
			cfg.OddsAPIRegions, cfg.OddsAPIMarkets, cfg.OddsAPIFormat,
			cfg.ProviderTimeout,
		),
		Budget:        &ingest.CallBudget{R: redisClient, Max: cfg.MaxCallsPerDay, Log: log},
		Settler:       settler,
		Notif:         publisher,
		Bcast:         &notify.RedisBroadcaster{R: redisClient, Channel: cfg.RedisPubSubChannel},
		Sports:        cfg.AllowedSports,
		CacheTTL:      cfg.OddsCacheTTL,
		ScoresEnabled: cfg.ScoresEnabled,
		Synthetic:     cfg.SyntheticOdds,
	}
	if cfg.ManualFetchMode {
		log.Info("manual fetch mode, scheduled ingest disabled")
	} else {
		go ingester.RunLoop(ctx, cfg.IngestInterval)
	}

	// hub WebSocket alimentado pelo Pub/Sub do Redis
	hub := ws.NewHub(func(r *http.Request) bool { return true })
	go ws.RunSubscriber(ctx, log, redisClient, cfg.RedisPubSubChannel, hub)

	// servidor de métricas e health
	metricsSrv := metrics.StartServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		return nil
	})
	log.Info("metrics/health server starting", zap.String("port", cfg.MetricsPort))

	// API pública
	api := &httpapi.API{
		Log:           log,
		Store:         pgStore,
		Placement:     placer,
		Settlement:    settler,
		Ingest:        ingester,
		PublicRefresh: cfg.PublicRefresh,
	}
	mux := http.NewServeMux()
	mux.Handle("/", api.Router())
	mux.HandleFunc("/ws", hub.HandleWS)

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: mux,
	}
	go func() {
		log.Info("http server starting", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	_ = metricsSrv.Shutdown(shutdownCtx)
}
