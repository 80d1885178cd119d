package control

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/vietddude/pricewatch/internal/core/config"
	"github.com/vietddude/pricewatch/internal/core/domain"
	"github.com/vietddude/pricewatch/internal/health"
	redisclient "github.com/vietddude/pricewatch/internal/infra/redis"
	"github.com/vietddude/pricewatch/internal/infra/source"
	"github.com/vietddude/pricewatch/internal/infra/storage"
	"github.com/vietddude/pricewatch/internal/infra/storage/memory"
	"github.com/vietddude/pricewatch/internal/infra/storage/postgres"
	"github.com/vietddude/pricewatch/internal/notify"
	"github.com/vietddude/pricewatch/internal/pipeline"
)

// Tracker is the main application struct that manages the pipeline lifecycle.
type Tracker struct {
	cfg          *config.AppConfig
	pipe         *pipeline.Pipeline
	repo         storage.PriceRepository
	db           *postgres.DB
	redisClient  *redisclient.Client
	notifier     *notify.Notifier
	healthMon    *health.Monitor
	healthServer *health.Server
	scheduler    *Scheduler
	log          *slog.Logger
}

// NewTracker creates a new Tracker instance with all dependencies initialized.
func NewTracker(cfg *config.AppConfig) (*Tracker, error) {
	// 1. Initialize Storage
	var repo storage.PriceRepository
	var db *postgres.DB

	if cfg.Database.URL != "" {
		var err error
		db, err = postgres.NewDB(context.Background(), cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}

		// Run migrations
		if err := goose.SetDialect("postgres"); err != nil {
			return nil, err
		}
		if err := goose.Up(db.DB.DB, "migrations"); err != nil {
			return nil, fmt.Errorf("failed to migrate db: %w", err)
		}

		repo = postgres.NewPriceRepo(db)
		slog.Info("Using PostgreSQL storage")
	} else {
		repo = memory.NewPriceRepo()
		slog.Info("Using Memory storage")
	}

	// 2. Initialize Source Adapters
	if len(cfg.Sources) == 0 {
		return nil, fmt.Errorf("no sources configured")
	}
	adapters := make([]source.Adapter, 0, len(cfg.Sources))
	for _, srcCfg := range cfg.Sources {
		adapters = append(adapters, source.NewHTTPAdapter(srcCfg))
	}

	// 3. Build the Pipeline
	pipe, err := pipeline.New(adapters, cfg.Tracker.RunTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to build pipeline: %w", err)
	}

	// 4. Health Monitor + Server
	healthMon := health.NewMonitor(staleAfter(cfg.Schedule))
	healthServer := health.NewServer(healthMon, cfg.Server.Port)

	// 5. Optional Redis snapshot store
	var redisClient *redisclient.Client
	if cfg.Redis.URL != "" {
		redisClient, err = redisclient.NewClient(cfg.Redis)
		if err != nil {
			slog.Warn("Failed to connect to Redis, snapshots disabled", "error", err)
		}
	}

	t := &Tracker{
		cfg:          cfg,
		pipe:         pipe,
		repo:         repo,
		db:           db,
		redisClient:  redisClient,
		notifier:     notify.NewNotifier(cfg.Notify),
		healthMon:    healthMon,
		healthServer: healthServer,
		log:          slog.Default().With("component", "tracker"),
	}
	t.scheduler, err = NewScheduler(cfg.Schedule, t.RunOnce)
	if err != nil {
		return nil, fmt.Errorf("failed to build scheduler: %w", err)
	}
	return t, nil
}

// Repo exposes the price repository for read-side commands.
func (t *Tracker) Repo() storage.PriceRepository {
	return t.repo
}

// RunOnce executes one full pipeline cycle: fetch, normalize, select,
// persist, snapshot, notify.
func (t *Tracker) RunOnce(ctx context.Context) (*domain.PipelineResult, error) {
	result := t.pipe.Run(ctx, t.cfg.Tracker.QueryTerms)
	t.healthMon.ObserveRun(result)

	date := result.CompletedAt.Format("2006-01-02")
	if len(result.Products) > 0 {
		stored, err := t.repo.AppendMany(ctx, result.Products, date)
		if err != nil {
			t.log.Error("Failed to persist price records", "error", err)
		} else {
			t.log.Info("Persisted price records", "count", stored, "date", date)
		}
	}

	if days := t.cfg.Tracker.RetentionDays; days > 0 {
		cutoff := time.Now().AddDate(0, 0, -days)
		if removed, err := t.repo.PruneOlderThan(ctx, cutoff); err != nil {
			t.log.Warn("Failed to prune old records", "error", err)
		} else if removed > 0 {
			t.log.Info("Pruned old price records", "removed", removed)
		}
	}

	if t.redisClient != nil {
		if err := t.redisClient.PublishResult(ctx, result); err != nil {
			t.log.Warn("Failed to publish result snapshot", "error", err)
		}
	}

	t.notifier.NotifyResult(result)
	return result, nil
}

// Start starts the tracker and all its components.
func (t *Tracker) Start(ctx context.Context) error {
	// Start Health Server
	go func() {
		if err := t.healthServer.Start(); err != nil {
			t.log.Error("Health server failed", "error", err)
		}
	}()

	t.log.Info("Starting scheduler", "times", t.cfg.Schedule.Times)
	go t.scheduler.Start(ctx)

	return nil
}

// Stop stops the tracker.
func (t *Tracker) Stop(ctx context.Context) error {
	t.log.Info("Stopping Tracker...")

	if t.redisClient != nil {
		if err := t.redisClient.Close(); err != nil {
			t.log.Warn("Failed to close Redis", "error", err)
		}
	}
	if t.db != nil {
		if err := t.db.Close(); err != nil {
			t.log.Warn("Failed to close database", "error", err)
		}
	}

	return t.healthServer.Stop(ctx)
}

// staleAfter derives the health staleness window from the schedule: a
// source is stale once it has missed more than one scheduled run.
func staleAfter(sched config.ScheduleConfig) time.Duration {
	if len(sched.Times) == 0 {
		return 24 * time.Hour
	}
	return time.Duration(2*24/len(sched.Times)) * time.Hour
}
