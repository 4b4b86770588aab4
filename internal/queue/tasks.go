package queue

import (
	"encoding/json"

	"github.com/dinepromo/internal/constants"
	"github.com/dinepromo/internal/models"

	"github.com/hibiken/asynq"
)

const (
	// TaskRedemptionRecord 核销审计记录任务
	TaskRedemptionRecord = constants.TaskRedemptionRecord
)

// RedemptionRecordPayload 核销审计任务载荷
type RedemptionRecordPayload struct {
	PromotionID uint         `json:"promotion_id"`
	PromoCode   string       `json:"promo_code"`
	OrderAmount models.Money `json:"order_amount"`
	Discount    models.Money `json:"discount"`
	RequestID   string       `json:"request_id"`
}

// NewRedemptionRecordTask 创建核销审计任务
func NewRedemptionRecordTask(payload RedemptionRecordPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRedemptionRecord, body), nil
}
