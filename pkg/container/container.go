package container

import (
	"context"
	"fmt"
	"time"

	"catalog-backend/internal/config"
	infraCache "catalog-backend/internal/infrastructure/cache"
	"catalog-backend/internal/infrastructure/database"
	"catalog-backend/internal/infrastructure/storage"
	"catalog-backend/pkg/cache"

	entityHandler "catalog-backend/internal/domains/entity/handler"
	entityRepo "catalog-backend/internal/domains/entity/repository"
	entityService "catalog-backend/internal/domains/entity/service"
	schemaHandler "catalog-backend/internal/domains/schema/handler"
	schemaRepo "catalog-backend/internal/domains/schema/repository"
	schemaService "catalog-backend/internal/domains/schema/service"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

// Container is the root of the dependency graph. Everything in it is a
// singleton built once at startup; both the API and the worker boot from
// the same graph.
type Container struct {
	Config      *config.Config
	DB          *database.PostgresDB
	Cache       cache.Cache
	Storage     *storage.MinIOStorage
	AsynqClient *asynq.Client

	EntityRepo    entityRepo.RepositoryInterface
	ImportJobRepo entityRepo.ImportJobRepository
	SchemaRepo    schemaRepo.RepositoryInterface

	EntityService     entityService.ServiceInterface
	BulkImportService entityService.BulkImportServiceInterface
	SchemaService     schemaService.ServiceInterface

	EntityHandler     *entityHandler.EntityHandler
	BulkImportHandler *entityHandler.BulkImportHandler
	SchemaHandler     *schemaHandler.SchemaHandler
}

// NewContainer builds the full graph in dependency order: config, then
// infrastructure, then repositories, services and handlers.
func NewContainer() (*Container, error) {
	c := &Container{}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg

	if err := c.initInfrastructure(); err != nil {
		return nil, err
	}

	c.initRepositories()
	c.initServices()
	c.initHandlers()

	log.Info().Str("environment", cfg.App.Environment).Msg("Container initialized")
	return c, nil
}

func (c *Container) initInfrastructure() error {
	db := database.NewPostgresDB(c.Config.Database)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DB = db

	redisCache := infraCache.NewRedisCache(
		c.Config.Redis.Host,
		c.Config.Redis.Password,
		c.Config.Redis.DB,
	)
	if err := redisCache.Ping(ctx); err != nil {
		// The schema cache degrades to repo reads, so redis being down is
		// not fatal.
		log.Warn().Err(err).Msg("Redis unavailable, schema caching disabled")
	}
	c.Cache = redisCache

	minioStorage, err := storage.NewMinIOStorage(c.Config.MinIO)
	if err != nil {
		return fmt.Errorf("failed to init minio storage: %w", err)
	}
	c.Storage = minioStorage

	c.AsynqClient = asynq.NewClient(asynq.RedisClientOpt{
		Addr:     c.Config.Redis.Host,
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.DB,
	})

	return nil
}

func (c *Container) initRepositories() {
	pool := c.DB.Pool
	c.EntityRepo = entityRepo.NewPostgresRepository(pool)
	c.ImportJobRepo = entityRepo.NewImportJobRepository(pool)
	c.SchemaRepo = schemaRepo.NewPostgresRepository(pool)
}

func (c *Container) initServices() {
	c.SchemaService = schemaService.NewSchemaService(c.SchemaRepo, c.Cache)
	c.EntityService = entityService.NewEntityService(c.EntityRepo, c.SchemaService)
	c.BulkImportService = entityService.NewBulkImportService(
		c.EntityRepo,
		c.ImportJobRepo,
		c.SchemaService,
		c.EntityService,
		c.Storage,
		c.AsynqClient,
	)
}

func (c *Container) initHandlers() {
	c.EntityHandler = entityHandler.NewEntityHandler(c.EntityService)
	c.BulkImportHandler = entityHandler.NewBulkImportHandler(c.BulkImportService)
	c.SchemaHandler = schemaHandler.NewSchemaHandler(c.SchemaService)
}

// Cleanup releases infrastructure resources on shutdown.
func (c *Container) Cleanup() {
	if c.AsynqClient != nil {
		if err := c.AsynqClient.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close asynq client")
		}
	}
	if c.Cache != nil {
		if rc, ok := c.Cache.(*infraCache.RedisCache); ok {
			if err := rc.Close(); err != nil {
				log.Warn().Err(err).Msg("Failed to close redis")
			}
		}
	}
	if c.DB != nil {
		c.DB.Close()
	}
	log.Info().Msg("Container resources released")
}
