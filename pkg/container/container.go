package container

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"editflow-backend/internal/config"
	infraCache "editflow-backend/internal/infrastructure/cache"
	"editflow-backend/internal/infrastructure/database"
	"editflow-backend/internal/infrastructure/storage"
	"editflow-backend/pkg/cache"
	"editflow-backend/pkg/jwt"

	projectHandler "editflow-backend/internal/domains/project/handler"
	projectRepo "editflow-backend/internal/domains/project/repository"
	projectService "editflow-backend/internal/domains/project/service"
	userHandler "editflow-backend/internal/domains/user/handler"
	userRepo "editflow-backend/internal/domains/user/repository"
	userService "editflow-backend/internal/domains/user/service"
)

// ========================================
// CONTAINER STRUCT
// ========================================
// Container is the root of the dependency graph. Everything in it is a
// singleton built once at startup, in dependency order: config, then
// infrastructure, then repositories, services, handlers.
type Container struct {
	// Infrastructure
	Config      *config.Config
	DB          *database.PostgresDB
	Redis       *infraCache.RedisClient
	Cache       cache.Cache
	JWTManager  *jwt.Manager
	AsynqClient *asynq.Client
	MediaStore  *storage.MediaStore

	// Repositories
	ProjectRepo projectRepo.ProjectRepository
	UserRepo    userRepo.UserRepository

	// Services
	ProjectService projectService.ProjectService
	UserService    userService.UserService

	// Handlers
	ProjectHandler       *projectHandler.ProjectHandler
	PublicProjectHandler *projectHandler.PublicProjectHandler
	UserHandler          *userHandler.UserHandler
}

// NewContainer builds and wires the whole dependency graph.
func NewContainer() (*Container, error) {
	log.Println("[CONTAINER] Initializing...")

	c := &Container{}

	// Step 1: Configuration
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	log.Printf("[CONTAINER] Config loaded (environment: %s)", cfg.App.Environment)

	// Step 2: PostgreSQL
	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DB = db

	// Step 3: Redis. Cache misses degrade to DB reads, so a down Redis is
	// logged but does not block startup.
	redisClient := infraCache.NewRedisClient(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := redisClient.Connect(context.Background()); err != nil {
		log.Printf("[CONTAINER] Redis connection failed (non-critical): %v", err)
	}
	c.Redis = redisClient
	c.Cache = infraCache.NewRedisCache(redisClient)

	// Step 4: Task queue client (producer side)
	c.AsynqClient = asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Host,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Step 5: Media store
	store, err := storage.NewMediaStore(cfg.MinIO)
	if err != nil {
		return nil, fmt.Errorf("failed to init media store: %w", err)
	}
	c.MediaStore = store

	c.JWTManager = jwt.NewManager(cfg.JWT.Secret)

	// Step 6: Repositories
	c.ProjectRepo = projectRepo.NewPostgresProjectRepository(db.Pool)
	c.UserRepo = userRepo.NewPostgresUserRepository(db.Pool)

	// Step 7: Services
	c.UserService = userService.NewUserService(c.UserRepo, c.JWTManager)
	c.ProjectService = projectService.NewProjectService(
		c.ProjectRepo,
		userService.NewEditorDirectory(c.UserRepo),
		c.MediaStore,
		c.Cache,
		c.AsynqClient,
	)

	// Step 8: Handlers
	c.ProjectHandler = projectHandler.NewProjectHandler(c.ProjectService)
	c.PublicProjectHandler = projectHandler.NewPublicProjectHandler(c.ProjectService)
	c.UserHandler = userHandler.NewUserHandler(c.UserService)

	log.Println("[CONTAINER] Initialized successfully")
	return c, nil
}

// Close releases all infrastructure connections, in reverse order of
// creation.
func (c *Container) Close() {
	if c.AsynqClient != nil {
		if err := c.AsynqClient.Close(); err != nil {
			log.Printf("[CONTAINER] Failed to close asynq client: %v", err)
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Printf("[CONTAINER] Failed to close redis: %v", err)
		}
	}
	if c.DB != nil {
		_ = c.DB.Close()
	}
	log.Println("[CONTAINER] Shut down")
}
