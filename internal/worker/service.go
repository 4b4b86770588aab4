package worker

import (
	"context"
	"errors"
	"time"

	"github.com/dinepromo/internal/config"
	"github.com/dinepromo/internal/logger"
	"github.com/dinepromo/internal/queue"

	"github.com/hibiken/asynq"
)

const defaultCacheRefreshInterval = time.Minute

// Service 异步队列服务
type Service struct {
	name            string
	server          *asynq.Server
	mux             *asynq.ServeMux
	consumer        *Consumer
	refreshInterval time.Duration
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, cacheCfg *config.CacheConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)

	refreshInterval := defaultCacheRefreshInterval
	if cacheCfg != nil && cacheCfg.ActivePromotionsRefreshSeconds > 0 {
		refreshInterval = time.Duration(cacheCfg.ActivePromotionsRefreshSeconds) * time.Second
	}

	return &Service{
		name:            "worker",
		server:          server,
		mux:             mux,
		consumer:        consumer,
		refreshInterval: refreshInterval,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.consumer != nil && s.consumer.PromotionService != nil {
		go s.runCacheRefreshLoop(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

// runCacheRefreshLoop 定时重建生效活动缓存
func (s *Service) runCacheRefreshLoop(ctx context.Context) {
	runOnce := func() {
		if err := s.consumer.PromotionService.RefreshActivePromotionsCache(ctx); err != nil {
			logger.Warnw("worker_active_promotions_refresh_failed", "error", err)
		}
	}
	runOnce()

	ticker := time.NewTicker(s.refreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
