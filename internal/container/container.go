package container

import (
	"time"

	"activity-board/internal/config"
	"activity-board/internal/handler"
	"activity-board/internal/service"
	"activity-board/pkg/logger"
	"activity-board/pkg/metrics"
	"activity-board/pkg/redis"
)

// pageIdleTimeout is how long an unvisited browser page is kept
const pageIdleTimeout = 2 * time.Hour

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *logger.Logger
	Metrics     *metrics.Collector
	RedisClient *redis.Client
	Services    *service.Services
	Pages       *handler.PageStore
}

// New creates a new dependency injection container
func New(cfg *config.Config, logger *logger.Logger) (*Container, error) {
	collector := metrics.New("activity_board")

	// Initialize Redis client if Redis URL is configured
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(cfg.RedisURL, cfg.Environment, logger.Logger)
		if err != nil {
			logger.WithError(err).Warn("Failed to initialize Redis client, keeping status messages in memory")
		} else {
			redisClient = client
			logger.Info("Redis client initialized successfully")
		}
	} else {
		logger.Info("Redis URL not configured, keeping status messages in memory")
	}

	var messages service.MessageService
	if redisClient != nil {
		messages = service.NewRedisMessageService(redisClient, cfg.MessageTTL, logger.Named("messages"), collector)
	} else {
		messages = service.NewMemoryMessageService(cfg.MessageTTL, logger.Named("messages"), collector)
	}

	activities := service.NewActivitiesClient(cfg.ActivitiesAPIURL, cfg.APITimeout, logger.Named("activities"), collector)

	return &Container{
		Config:      cfg,
		Logger:      logger,
		Metrics:     collector,
		RedisClient: redisClient,
		Services: &service.Services{
			Activities: activities,
			Messages:   messages,
		},
		Pages: handler.NewPageStore(pageIdleTimeout, logger.Named("pages")),
	}, nil
}

// GetActivitiesAPI returns the activities API client
func (c *Container) GetActivitiesAPI() service.ActivitiesAPI {
	return c.Services.Activities
}

// GetMessageService returns the status message store
func (c *Container) GetMessageService() service.MessageService {
	return c.Services.Messages
}

// GetLogger returns the logger
func (c *Container) GetLogger() *logger.Logger {
	return c.Logger
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.Config
}

// GetRedisClient returns the Redis client (may be nil if not configured)
func (c *Container) GetRedisClient() *redis.Client {
	return c.RedisClient
}

// HasRedis returns true if Redis client is available
func (c *Container) HasRedis() bool {
	return c.RedisClient != nil
}

// NewBoardHandler builds the board handler from the container's services
func (c *Container) NewBoardHandler() *handler.BoardHandler {
	return handler.NewBoardHandler(
		c.Services.Activities,
		c.Services.Messages,
		c.Pages,
		c.Logger.Named("board"),
		c.Metrics,
		c.Config.SecureCookies,
	)
}

// NewHealthHandler builds the health handler
func (c *Container) NewHealthHandler() *handler.HealthHandler {
	return handler.NewHealthHandler(c.Logger, c.RedisClient)
}
