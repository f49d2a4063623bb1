// Package app wires configuration, storage, messaging and the
// application handlers into one container.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/yifanzh/studyclock/adapter/api"
	identityApplication "github.com/yifanzh/studyclock/internal/identity/application"
	identityDomain "github.com/yifanzh/studyclock/internal/identity/domain"
	identityCache "github.com/yifanzh/studyclock/internal/identity/infrastructure/cache"
	identityPersistence "github.com/yifanzh/studyclock/internal/identity/infrastructure/persistence"
	insightsCommands "github.com/yifanzh/studyclock/internal/insights/application/commands"
	insightsQueries "github.com/yifanzh/studyclock/internal/insights/application/queries"
	insightsDomain "github.com/yifanzh/studyclock/internal/insights/domain"
	insightsPersistence "github.com/yifanzh/studyclock/internal/insights/infrastructure/persistence"
	sharedApplication "github.com/yifanzh/studyclock/internal/shared/application"
	"github.com/yifanzh/studyclock/internal/shared/infrastructure/database"
	"github.com/yifanzh/studyclock/internal/shared/infrastructure/eventbus"
	"github.com/yifanzh/studyclock/internal/shared/infrastructure/migrations"
	"github.com/yifanzh/studyclock/internal/shared/infrastructure/outbox"
	sharedPersistence "github.com/yifanzh/studyclock/internal/shared/infrastructure/persistence"
	tasksCommands "github.com/yifanzh/studyclock/internal/tasks/application/commands"
	tasksQueries "github.com/yifanzh/studyclock/internal/tasks/application/queries"
	tasksDomain "github.com/yifanzh/studyclock/internal/tasks/domain"
	tasksPersistence "github.com/yifanzh/studyclock/internal/tasks/infrastructure/persistence"
	timerCommands "github.com/yifanzh/studyclock/internal/timer/application/commands"
	timerQueries "github.com/yifanzh/studyclock/internal/timer/application/queries"
	timerDomain "github.com/yifanzh/studyclock/internal/timer/domain"
	timerPersistence "github.com/yifanzh/studyclock/internal/timer/infrastructure/persistence"
	"github.com/yifanzh/studyclock/pkg/config"
	"github.com/yifanzh/studyclock/pkg/observability"
)

// Container holds all application dependencies.
type Container struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics observability.Metrics
	Health  *observability.HealthRegistry

	// Database. Exactly one of Pool / DB is set, per Driver.
	Driver database.Driver
	Pool   *pgxpool.Pool
	DB     *sql.DB

	// Redis (optional settings cache)
	RedisClient *redis.Client

	// The single local user
	UserID uuid.UUID

	// Repositories
	SessionRepo  timerDomain.Repository
	TaskRepo     tasksDomain.Repository
	StatsRepo    insightsDomain.Repository
	RecordRepo   insightsDomain.StudyRecordRepository
	UserRepo     identityDomain.UserRepository
	SettingsRepo identityDomain.SettingsRepository
	OutboxRepo   outbox.Repository

	// Messaging
	EventPublisher  eventbus.Publisher
	OutboxProcessor *outbox.Processor

	// Unit of Work
	UnitOfWork sharedApplication.UnitOfWork

	// Timer handlers
	StartSessionHandler      *timerCommands.StartSessionHandler
	PauseSessionHandler      *timerCommands.PauseSessionHandler
	ResumeSessionHandler     *timerCommands.ResumeSessionHandler
	CompleteSessionHandler   *timerCommands.CompleteSessionHandler
	CancelSessionHandler     *timerCommands.CancelSessionHandler
	HeartbeatSessionHandler  *timerCommands.HeartbeatSessionHandler
	GetActiveSessionHandler  *timerQueries.GetActiveSessionHandler
	GetSessionHistoryHandler *timerQueries.GetSessionHistoryHandler
	GetSessionStatsHandler   *timerQueries.GetSessionStatsHandler

	// Task handlers
	CreateTaskHandler    *tasksCommands.CreateTaskHandler
	ToggleTaskHandler    *tasksCommands.ToggleTaskHandler
	SetActiveTaskHandler *tasksCommands.SetActiveTaskHandler
	DeleteTaskHandler    *tasksCommands.DeleteTaskHandler
	ListTasksHandler     *tasksQueries.ListTasksHandler
	GetTaskHandler       *tasksQueries.GetTaskHandler
	GetTaskStatsHandler  *tasksQueries.GetTaskStatsHandler

	// Insights handlers
	GetSummaryHandler     *insightsQueries.GetSummaryHandler
	GetBreakdownHandler   *insightsQueries.GetBreakdownHandler
	GetDailySeriesHandler *insightsQueries.GetDailySeriesHandler
	GetHeatmapHandler     *insightsQueries.GetHeatmapHandler
	ListRecordsHandler    *insightsQueries.ListRecordsHandler
	CreateRecordHandler   *insightsCommands.CreateRecordHandler
	DeleteRecordHandler   *insightsCommands.DeleteRecordHandler

	// Identity
	IdentityService *identityApplication.Service
}

// NewContainer creates and wires all dependencies. The database driver
// follows the configuration: a DATABASE_URL selects PostgreSQL,
// otherwise the embedded SQLite database is used.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	userID, err := uuid.Parse(cfg.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid STUDYCLOCK_USER_ID: %w", err)
	}

	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewInMemoryMetrics(),
		Health:  observability.NewHealthRegistry(),
		UserID:  userID,
	}

	if err := c.initStorage(ctx); err != nil {
		return nil, err
	}
	c.initRedis(ctx)
	if err := c.initMessaging(); err != nil {
		c.Close()
		return nil, err
	}
	c.initHandlers()

	if _, err := c.IdentityService.EnsureUser(ctx, c.UserID, cfg.UserName); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to bootstrap user: %w", err)
	}

	logger.Info("container initialized",
		"driver", c.Driver.String(),
		"user_id", c.UserID,
	)
	return c, nil
}

func (c *Container) initStorage(ctx context.Context) error {
	c.Driver = database.DetectDriver(c.Config.DatabaseURL)

	switch c.Driver {
	case database.DriverPostgres:
		pool, err := pgxpool.New(ctx, c.Config.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return fmt.Errorf("failed to ping database: %w", err)
		}
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		c.Pool = pool

		c.SessionRepo = timerPersistence.NewPostgresRepository(pool)
		c.TaskRepo = tasksPersistence.NewPostgresRepository(pool)
		c.StatsRepo = insightsPersistence.NewPostgresStatsRepository(pool)
		c.RecordRepo = insightsPersistence.NewPostgresRecordRepository(pool)
		c.UserRepo = identityPersistence.NewPostgresUserRepository(pool)
		c.SettingsRepo = identityPersistence.NewPostgresSettingsRepository(pool)
		c.OutboxRepo = outbox.NewPostgresRepository(pool)
		c.UnitOfWork = sharedPersistence.NewPostgresUnitOfWork(pool)

		c.Health.Register("postgres", observability.DatabaseHealthChecker(pool.Ping))
		c.Logger.Info("connected to PostgreSQL")

	case database.DriverSQLite:
		db, err := database.OpenSQLite(ctx, c.Config.SQLitePath)
		if err != nil {
			return fmt.Errorf("failed to open SQLite: %w", err)
		}
		if err := migrations.RunSQLiteMigrations(ctx, db); err != nil {
			db.Close()
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		c.DB = db

		c.SessionRepo = timerPersistence.NewSQLiteRepository(db)
		c.TaskRepo = tasksPersistence.NewSQLiteRepository(db)
		c.StatsRepo = insightsPersistence.NewSQLiteStatsRepository(db)
		c.RecordRepo = insightsPersistence.NewSQLiteRecordRepository(db)
		c.UserRepo = identityPersistence.NewSQLiteUserRepository(db)
		c.SettingsRepo = identityPersistence.NewSQLiteSettingsRepository(db)
		c.OutboxRepo = outbox.NewSQLiteRepository(db)
		c.UnitOfWork = sharedPersistence.NewSQLiteUnitOfWork(db)

		c.Health.Register("sqlite", observability.DatabaseHealthChecker(db.PingContext))
		c.Logger.Info("opened SQLite database", "path", c.Config.SQLitePath)
	}

	return nil
}

// initRedis connects the optional settings cache. The service runs
// fully without it.
func (c *Container) initRedis(ctx context.Context) {
	if c.Config.RedisURL == "" {
		return
	}

	opt, err := redis.ParseURL(c.Config.RedisURL)
	if err != nil {
		c.Logger.Warn("invalid Redis URL, settings cache disabled", "error", err)
		return
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		c.Logger.Warn("Redis not available, settings cache disabled", "error", err)
		_ = client.Close()
		return
	}

	c.RedisClient = client
	c.Health.Register("redis", observability.RedisHealthChecker(func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}))
	c.Logger.Info("connected to Redis")
}

// initMessaging sets up the event publisher. RabbitMQ is opt-in; when
// no URL is configured events are logged and discarded.
func (c *Container) initMessaging() error {
	if c.Config.RabbitMQURL == "" {
		c.EventPublisher = eventbus.NewNoopPublisher(c.Logger)
	} else {
		publisher, err := eventbus.NewRabbitMQPublisher(c.Config.RabbitMQURL, c.Logger)
		if err != nil {
			if !c.Config.IsDevelopment() {
				return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
			}
			c.Logger.Warn("RabbitMQ not available, using noop publisher")
			c.EventPublisher = eventbus.NewNoopPublisher(c.Logger)
		} else {
			c.EventPublisher = eventbus.NewBreakerPublisher(publisher, eventbus.DefaultBreakerConfig(), c.Logger)
			c.Health.Register("rabbitmq", observability.RabbitMQHealthChecker(publisher.Ping))
		}
	}

	c.OutboxProcessor = outbox.NewProcessor(c.OutboxRepo, c.EventPublisher, outbox.ProcessorConfig{
		PollInterval: c.Config.OutboxPollInterval,
		BatchSize:    c.Config.OutboxBatchSize,
		MaxRetries:   c.Config.OutboxMaxRetries,
	}, c.Logger)
	return nil
}

func (c *Container) initHandlers() {
	resolver := tasksQueries.NewSubjectResolver(c.TaskRepo)
	recordCompletion := insightsCommands.NewRecordSessionCompletionHandler(c.StatsRepo, resolver)
	focusCompletion := tasksCommands.NewRecordFocusCompletionHandler(c.TaskRepo, c.StatsRepo, c.OutboxRepo, c.Logger)

	c.StartSessionHandler = timerCommands.NewStartSessionHandler(c.SessionRepo, c.OutboxRepo, c.UnitOfWork)
	c.PauseSessionHandler = timerCommands.NewPauseSessionHandler(c.SessionRepo)
	c.ResumeSessionHandler = timerCommands.NewResumeSessionHandler(c.SessionRepo)
	c.CompleteSessionHandler = timerCommands.NewCompleteSessionHandler(c.SessionRepo, recordCompletion, focusCompletion, c.OutboxRepo, c.UnitOfWork)
	c.CancelSessionHandler = timerCommands.NewCancelSessionHandler(c.SessionRepo, c.OutboxRepo, c.UnitOfWork)
	c.HeartbeatSessionHandler = timerCommands.NewHeartbeatSessionHandler(c.SessionRepo, c.CompleteSessionHandler)
	c.GetActiveSessionHandler = timerQueries.NewGetActiveSessionHandler(c.SessionRepo)
	c.GetSessionHistoryHandler = timerQueries.NewGetSessionHistoryHandler(c.SessionRepo)
	c.GetSessionStatsHandler = timerQueries.NewGetSessionStatsHandler(c.SessionRepo)

	c.CreateTaskHandler = tasksCommands.NewCreateTaskHandler(c.TaskRepo, c.StatsRepo, c.OutboxRepo, c.UnitOfWork)
	c.ToggleTaskHandler = tasksCommands.NewToggleTaskHandler(c.TaskRepo, c.StatsRepo, c.OutboxRepo, c.UnitOfWork)
	c.SetActiveTaskHandler = tasksCommands.NewSetActiveTaskHandler(c.TaskRepo, c.UnitOfWork)
	c.DeleteTaskHandler = tasksCommands.NewDeleteTaskHandler(c.TaskRepo, c.OutboxRepo, c.UnitOfWork)
	c.ListTasksHandler = tasksQueries.NewListTasksHandler(c.TaskRepo)
	c.GetTaskHandler = tasksQueries.NewGetTaskHandler(c.TaskRepo)
	c.GetTaskStatsHandler = tasksQueries.NewGetTaskStatsHandler(c.TaskRepo)

	c.GetSummaryHandler = insightsQueries.NewGetSummaryHandler(c.StatsRepo)
	c.GetBreakdownHandler = insightsQueries.NewGetBreakdownHandler(c.StatsRepo)
	c.GetDailySeriesHandler = insightsQueries.NewGetDailySeriesHandler(c.StatsRepo)
	c.GetHeatmapHandler = insightsQueries.NewGetHeatmapHandler(c.StatsRepo)
	c.ListRecordsHandler = insightsQueries.NewListRecordsHandler(c.RecordRepo)
	c.CreateRecordHandler = insightsCommands.NewCreateRecordHandler(c.RecordRepo, c.StatsRepo, c.UnitOfWork)
	c.DeleteRecordHandler = insightsCommands.NewDeleteRecordHandler(c.RecordRepo)

	var settingsCache identityApplication.SettingsCache
	if c.RedisClient != nil {
		settingsCache = identityCache.NewRedisSettingsCache(c.RedisClient, c.Config.SettingsCacheTTL, c.Logger)
	}
	c.IdentityService = identityApplication.NewService(c.UserRepo, c.SettingsRepo, settingsCache, c.Logger)
}

// APIServer builds the HTTP server over the wired handlers.
func (c *Container) APIServer(cfg api.ServerConfig) *api.Server {
	handlers := api.Handlers{
		Sessions: api.NewSessionHandler(api.SessionHandlerConfig{
			Start:      c.StartSessionHandler,
			Pause:      c.PauseSessionHandler,
			Resume:     c.ResumeSessionHandler,
			Complete:   c.CompleteSessionHandler,
			Cancel:     c.CancelSessionHandler,
			Heartbeat:  c.HeartbeatSessionHandler,
			GetActive:  c.GetActiveSessionHandler,
			GetHistory: c.GetSessionHistoryHandler,
			GetStats:   c.GetSessionStatsHandler,
			UserID:     c.UserID,
			Logger:     c.Logger,
		}),
		Tasks: api.NewTaskHandler(api.TaskHandlerConfig{
			Create:    c.CreateTaskHandler,
			Toggle:    c.ToggleTaskHandler,
			SetActive: c.SetActiveTaskHandler,
			Delete:    c.DeleteTaskHandler,
			List:      c.ListTasksHandler,
			Get:       c.GetTaskHandler,
			GetStats:  c.GetTaskStatsHandler,
			UserID:    c.UserID,
			Logger:    c.Logger,
		}),
		Settings: api.NewSettingsHandler(c.IdentityService, c.UserID, c.Logger),
		Stats: api.NewStatsHandler(api.StatsHandlerConfig{
			Summary:      c.GetSummaryHandler,
			Breakdown:    c.GetBreakdownHandler,
			Daily:        c.GetDailySeriesHandler,
			Heatmap:      c.GetHeatmapHandler,
			ListRecords:  c.ListRecordsHandler,
			CreateRecord: c.CreateRecordHandler,
			DeleteRecord: c.DeleteRecordHandler,
			UserID:       c.UserID,
			Logger:       c.Logger,
		}),
	}
	return api.NewServer(cfg, handlers, c.Health, c.Metrics, c.Logger)
}

// Seed creates a set of sample tasks for a fresh database. Individual
// failures are logged and skipped; seeding never aborts halfway.
func (c *Container) Seed(ctx context.Context) error {
	samples := []tasksCommands.CreateTaskCommand{
		{UserID: c.UserID, Title: "数据结构第一轮复习", Subject: string(tasksDomain.SubjectComputer408), EstimatedPomodoros: 4},
		{UserID: c.UserID, Title: "高数真题一套", Subject: string(tasksDomain.SubjectMath), EstimatedPomodoros: 3},
		{UserID: c.UserID, Title: "英语阅读两篇", Subject: string(tasksDomain.SubjectEnglish), EstimatedPomodoros: 2},
		{UserID: c.UserID, Title: "政治选择题", Subject: string(tasksDomain.SubjectPolitics), EstimatedPomodoros: 1},
	}

	failed := 0
	for _, cmd := range samples {
		if _, err := c.CreateTaskHandler.Handle(ctx, cmd); err != nil {
			failed++
			c.Logger.Warn("failed to seed task", "title", cmd.Title, "error", err)
		}
	}
	if failed > 0 {
		c.Logger.Warn("seeding finished with failures", "failed", failed, "total", len(samples))
	} else {
		c.Logger.Info("seeded sample tasks", "count", len(samples))
	}
	return nil
}

// Close cleans up all resources.
func (c *Container) Close() {
	if c.OutboxProcessor != nil {
		c.OutboxProcessor.Stop()
	}
	if c.EventPublisher != nil {
		if err := c.EventPublisher.Close(); err != nil {
			c.Logger.Warn("error closing event publisher", "error", err)
		}
	}
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Warn("error closing Redis connection", "error", err)
		}
	}
	if c.Pool != nil {
		c.Pool.Close()
		c.Logger.Info("PostgreSQL connection closed")
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			c.Logger.Warn("error closing SQLite database", "error", err)
		} else {
			c.Logger.Info("SQLite database closed")
		}
	}
}
