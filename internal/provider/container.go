package provider

import (
	"github.com/dinepromo/internal/cache"
	"github.com/dinepromo/internal/config"
	"github.com/dinepromo/internal/logger"
	"github.com/dinepromo/internal/models"
	"github.com/dinepromo/internal/queue"
	"github.com/dinepromo/internal/repository"
	"github.com/dinepromo/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AdminRepo         repository.AdminRepository
	PromotionRepo     repository.PromotionRepository
	RedemptionLogRepo repository.RedemptionLogRepository

	// Services
	AuthService           *service.AuthService
	PromotionService      *service.PromotionService
	PromotionAdminService *service.PromotionAdminService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.PromotionRepo = repository.NewPromotionRepository(db)
	c.RedemptionLogRepo = repository.NewRedemptionLogRepository(db)
}

func (c *Container) initServices() {
	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.PromotionService = service.NewPromotionService(c.PromotionRepo, c.QueueClient, c.Config.Cache.ActivePromotionsTTLSeconds)
	c.PromotionAdminService = service.NewPromotionAdminService(c.PromotionRepo)
}

// Close 释放容器持有的资源
func (c *Container) Close() {
	if c == nil {
		return
	}
	if c.QueueClient != nil {
		if err := c.QueueClient.Close(); err != nil {
			logger.Warnw("provider_close_queue_client_failed", "error", err)
		}
	}
}
