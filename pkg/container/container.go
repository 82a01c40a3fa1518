package container

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"elog-backend/internal/config"
	infraCache "elog-backend/internal/infrastructure/cache"
	"elog-backend/internal/infrastructure/database"
	"elog-backend/internal/infrastructure/email"
	"elog-backend/internal/infrastructure/storage"
	"elog-backend/pkg/cache"
	"elog-backend/pkg/logger"

	attachmentHandler "elog-backend/internal/domains/attachment/handler"
	attachmentRepo "elog-backend/internal/domains/attachment/repository"
	attachmentService "elog-backend/internal/domains/attachment/service"
	entryHandler "elog-backend/internal/domains/entry/handler"
	entryRepo "elog-backend/internal/domains/entry/repository"
	entryService "elog-backend/internal/domains/entry/service"
	logbookHandler "elog-backend/internal/domains/logbook/handler"
	logbookRepo "elog-backend/internal/domains/logbook/repository"
	logbookService "elog-backend/internal/domains/logbook/service"
)

// Container is the root of the dependency graph. Initialization order is
// config, infrastructure, repositories, services, handlers.
type Container struct {
	Config *config.Config

	DB          *database.PostgresDB
	Cache       cache.Cache
	AsynqClient *asynq.Client
	Storage     *storage.MinIOStorage

	EmailService   email.EmailService
	PersonResolver email.PersonResolver

	EntryRepo      entryRepo.EntryRepository
	LogbookRepo    logbookRepo.LogbookRepository
	AttachmentRepo attachmentRepo.AttachmentRepository

	EntryService      entryService.EntryService
	LogbookService    logbookService.Service
	AttachmentService attachmentService.AttachmentService

	EntryHandler      *entryHandler.EntryHandler
	LogbookHandler    *logbookHandler.LogbookHandler
	AttachmentHandler *attachmentHandler.AttachmentHandler
}

func NewContainer() (*Container, error) {
	c := &Container{}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	logger.Info("Config loaded", map[string]interface{}{"environment": cfg.App.Environment})

	if err := c.initInfrastructure(); err != nil {
		return nil, err
	}
	c.initRepositories()
	c.initServices()
	c.initHandlers()

	logger.Info("Container initialized", nil)
	return c, nil
}

func (c *Container) initInfrastructure() error {
	cfg := c.Config

	db := database.NewPostgresDB(&database.DBConfig{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		Username: cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.Database,
		SSLMode:  cfg.Database.SSLMode,
		MaxConns: int32(cfg.Database.MaxConns),
		MinConns: int32(cfg.Database.MinConns),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := db.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	c.DB = db

	redisClient := infraCache.NewRedisClient(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := redisClient.Connect(context.Background()); err != nil {
		// cache misses are survivable, a dead redis is not fatal here
		logger.Error("Redis connection failed (non-critical)", err)
	}
	c.Cache = infraCache.NewRedisCache(redisClient)

	c.AsynqClient = asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Host,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	minioStorage, err := storage.NewMinIOStorage(cfg.MinIO)
	if err != nil {
		return fmt.Errorf("failed to init object storage: %w", err)
	}
	c.Storage = minioStorage

	c.EmailService = email.NewSMTPEmailService(
		cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.From, cfg.App.BaseURL)
	c.PersonResolver = email.NewStaticPersonResolver()

	return nil
}

func (c *Container) initRepositories() {
	pool := c.DB.Pool

	c.EntryRepo = entryRepo.NewPostgresEntryRepository(pool)
	c.LogbookRepo = logbookRepo.NewPostgresLogbookRepository(pool)
	c.AttachmentRepo = attachmentRepo.NewPostgresAttachmentRepository(pool)
}

func (c *Container) initServices() {
	c.LogbookService = logbookService.NewLogbookService(c.LogbookRepo)

	c.AttachmentService = attachmentService.NewAttachmentService(
		c.AttachmentRepo,
		c.Storage,
		storage.NewPreviewProcessor(),
		c.AsynqClient,
	)

	c.EntryService = entryService.NewEntryService(
		c.EntryRepo,
		c.LogbookService,
		c.AttachmentService,
		c.Cache,
		c.AsynqClient,
	)
}

func (c *Container) initHandlers() {
	c.EntryHandler = entryHandler.NewEntryHandler(c.EntryService)
	c.LogbookHandler = logbookHandler.NewLogbookHandler(c.LogbookService)
	c.AttachmentHandler = attachmentHandler.NewAttachmentHandler(c.AttachmentService)
}

// Close releases the infrastructure connections.
func (c *Container) Close() {
	if c.AsynqClient != nil {
		if err := c.AsynqClient.Close(); err != nil {
			logger.Error("Failed to close asynq client", err)
		}
	}
	if c.DB != nil {
		c.DB.Close()
	}
}
