package worker

import (
	"context"
	"encoding/json"

	"github.com/dinepromo/internal/logger"
	"github.com/dinepromo/internal/models"
	"github.com/dinepromo/internal/provider"
	"github.com/dinepromo/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskRedemptionRecord, c.handleRedemptionRecord)
}

// handleRedemptionRecord 持久化核销审计记录
func (c *Consumer) handleRedemptionRecord(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		return nil
	}
	var payload queue.RedemptionRecordPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_redemption_record_unmarshal_failed", "error", err)
		return err
	}
	if payload.PromotionID == 0 {
		logger.Debugw("worker_redemption_record_skip_invalid_payload", "promotion_id", payload.PromotionID)
		return nil
	}

	record := &models.RedemptionLog{
		PromotionID: payload.PromotionID,
		PromoCode:   payload.PromoCode,
		OrderAmount: payload.OrderAmount,
		Discount:    payload.Discount,
		RequestID:   payload.RequestID,
	}
	if err := c.RedemptionLogRepo.Create(record); err != nil {
		logger.Warnw("worker_redemption_record_persist_failed",
			"promotion_id", payload.PromotionID,
			"error", err,
		)
		return err
	}

	logger.Debugw("worker_redemption_record_persisted",
		"promotion_id", payload.PromotionID,
		"promo_code", payload.PromoCode,
	)
	return nil
}
