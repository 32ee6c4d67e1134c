package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	electionservice "agora/contexts/election-administration/election-service"
	electionpostgres "agora/contexts/election-administration/election-service/adapters/postgres"
	electionworkers "agora/contexts/election-administration/election-service/application/workers"
	ballotengine "agora/contexts/voter-experience/ballot-engine"
	cryptoadapter "agora/contexts/voter-experience/ballot-engine/adapters/crypto"
	ballotmemory "agora/contexts/voter-experience/ballot-engine/adapters/memory"
	ballotpostgres "agora/contexts/voter-experience/ballot-engine/adapters/postgres"
	ballotworkers "agora/contexts/voter-experience/ballot-engine/application/workers"
	"agora/internal/platform/config"
	"agora/internal/platform/db"
	"agora/internal/platform/httpserver"
	"agora/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres         *db.Postgres
	ballotRelay      ballotworkers.OutboxRelay
	electionRelay    electionworkers.OutboxRelay
	statusConsumer   ballotworkers.ElectionStateConsumer
	runBallotRelay   bool
	runElectionRelay bool
	pollInterval     time.Duration
	logger           *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	electionRepo := electionpostgres.NewRepository(pg.DB, logger)
	electionModule := electionservice.NewModule(electionservice.Dependencies{
		Events:    electionRepo,
		Elections: electionRepo,
		Styles:    electionRepo,
		Outbox:    electionRepo,
		Clock:     electionpostgres.SystemClock{},
		IDGen:     electionpostgres.UUIDGenerator{},
		Logger:    logger,
	})

	// Session-scoped selection state stays in process; durable reads and
	// writes (styles, status projection, casts, outbox) go through postgres.
	ballotRepo := ballotpostgres.NewRepository(pg.DB, logger)
	sessionStore := ballotmemory.NewStore(nil)
	ballotModule := ballotengine.NewModule(ballotengine.Dependencies{
		Selections: sessionStore,
		Sessions:   sessionStore,
		Styles:     ballotRepo,
		StyleCache: sessionStore,
		Status:     ballotRepo,
		Crypto:     cryptoadapter.NewProvider(),
		Gateway:    ballotRepo,
		Outbox:     ballotRepo,
		Clock:      ballotpostgres.SystemClock{},
		IDGen:      ballotpostgres.UUIDGenerator{},
		Seed:       sessionStore,
		Logger:     logger,
	})

	server := httpserver.New(electionModule, ballotModule, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	kafka, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
	if err != nil {
		return nil, err
	}

	ballotRepo := ballotpostgres.NewRepository(pg.DB, logger)
	electionRepo := electionpostgres.NewRepository(pg.DB, logger)
	return &WorkerApp{
		postgres: pg,
		ballotRelay: ballotworkers.OutboxRelay{
			Outbox:    ballotRepo,
			Publisher: kafka,
			Clock:     ballotpostgres.SystemClock{},
			BatchSize: 100,
			Logger:    logger,
		},
		electionRelay: electionworkers.OutboxRelay{
			Outbox:    electionRepo,
			Publisher: kafka,
			Clock:     electionpostgres.SystemClock{},
			BatchSize: 100,
			Logger:    logger,
		},
		statusConsumer: ballotworkers.ElectionStateConsumer{
			Subscriber:    kafka,
			Dedup:         ballotRepo,
			Projection:    ballotRepo,
			Clock:         ballotpostgres.SystemClock{},
			ConsumerGroup: "ballot-engine-election-cg",
			DedupTTL:      7 * 24 * time.Hour,
			Disabled:      !cfg.EnableElectionStatusConsumer,
			Logger:        logger,
		},
		runBallotRelay:   cfg.EnableBallotOutboxRelay,
		runElectionRelay: cfg.EnableElectionOutboxRelay,
		pollInterval:     2 * time.Second,
		logger:           logger,
	}, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	if err := w.statusConsumer.Start(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)

	for {
		if w.runElectionRelay {
			if err := w.electionRelay.RunOnce(ctx); err != nil {
				return err
			}
		}
		if w.runBallotRelay {
			if err := w.ballotRelay.RunOnce(ctx); err != nil {
				return err
			}
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
