package models

import "time"

// RedemptionLog 核销审计记录（由异步 worker 写入）
type RedemptionLog struct {
	ID          uint      `gorm:"primarykey" json:"id"`               // 主键
	PromotionID uint      `gorm:"index;not null" json:"promotion_id"` // 促销活动ID
	PromoCode   string    `gorm:"index;not null" json:"promo_code"`   // 核销时的优惠码
	OrderAmount Money     `gorm:"type:decimal(20,2)" json:"order_amount"`
	Discount    Money     `gorm:"type:decimal(20,2)" json:"discount"`
	RequestID   string    `json:"request_id"` // 触发核销的请求ID
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

// TableName 指定表名
func (RedemptionLog) TableName() string {
	return "redemption_logs"
}
