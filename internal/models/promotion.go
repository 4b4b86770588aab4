package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Promotion 促销活动
type Promotion struct {
	ID                uint      `gorm:"primarykey" json:"id"`                                             // 主键
	PromoCode         string    `gorm:"uniqueIndex;not null" json:"promo_code"`                           // 优惠码（大小写敏感）
	Title             string    `gorm:"not null" json:"title"`                                            // 名称
	Description       string    `gorm:"type:text" json:"description"`                                     // 描述
	Kind              string    `gorm:"not null" json:"kind"`                                             // 类型（PERCENTAGE/FIXED/CUSTOM_ITEMS）
	Value             Money     `gorm:"type:decimal(20,2);not null;default:0" json:"value"`               // 折扣数值（CUSTOM_ITEMS 固定为 0）
	MinOrderAmount    Money     `gorm:"type:decimal(20,2);not null;default:0" json:"min_order_amount"`    // 使用门槛
	MaxDiscountAmount Money     `gorm:"type:decimal(20,2);not null;default:0" json:"max_discount_amount"` // 最大优惠金额（0 表示不封顶）
	UsageLimit        *int      `json:"usage_limit"`                                                      // 总使用上限（null 表示不限制）
	UsageCount        int       `gorm:"not null;default:0" json:"usage_count"`                            // 已使用次数
	StartAt           time.Time `gorm:"index;not null" json:"start_at"`                                   // 生效时间
	EndAt             time.Time `gorm:"index;not null" json:"end_at"`                                     // 失效时间
	Status            string    `gorm:"not null;default:ACTIVE" json:"status"`                            // 状态（ACTIVE/INACTIVE）
	Rules             RuleSet   `gorm:"type:text" json:"rules"`                                           // CUSTOM_ITEMS 规则文档
	CreatedAt         time.Time `gorm:"index" json:"created_at"`                                          // 创建时间
	UpdatedAt         time.Time `gorm:"index" json:"updated_at"`                                          // 更新时间
}

// TableName 指定表名
func (Promotion) TableName() string {
	return "promotions"
}

// ItemRule 单品折扣规则
type ItemRule struct {
	ItemID        string `json:"item_id"`        // 菜单项ID（外部引用）
	DiscountType  string `json:"discount_type"`  // PERCENTAGE/FIXED
	DiscountValue Money  `json:"discount_value"` // 折扣数值（> 0）
}

// ComboRule 套餐折扣规则：订单同时包含全部菜品时一次性生效
type ComboRule struct {
	ComboName     string   `json:"combo_name"`     // 套餐名称（用于展示与审计）
	ItemIDs       []string `json:"item_ids"`       // 菜单项ID集合（≥2）
	DiscountType  string   `json:"discount_type"`  // PERCENTAGE/FIXED
	DiscountValue Money    `json:"discount_value"` // 折扣数值（> 0）
}

// RuleSet CUSTOM_ITEMS 促销的规则文档。
// 数据库中持久化为 {"items": [...], "combos": [...]} JSON 文本，
// 序列化只发生在这一存储边界上，引擎内部永远只处理已物化的列表。
type RuleSet struct {
	Items  []ItemRule  `json:"items"`
	Combos []ComboRule `json:"combos"`
}

// Value 用于数据库写入
func (r RuleSet) Value() (driver.Value, error) {
	if len(r.Items) == 0 && len(r.Combos) == 0 {
		return nil, nil
	}
	payload, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	return string(payload), nil
}

// Scan 用于数据库读取
func (r *RuleSet) Scan(value interface{}) error {
	if value == nil {
		*r = RuleSet{}
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("unsupported rule set column type")
	}
	if len(raw) == 0 {
		*r = RuleSet{}
		return nil
	}
	return json.Unmarshal(raw, r)
}

// IsEmpty 判断规则文档是否为空
func (r RuleSet) IsEmpty() bool {
	return len(r.Items) == 0 && len(r.Combos) == 0
}

// OrderedItem 订单行（请求输入，不落库）
type OrderedItem struct {
	ItemID    string `json:"item_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice Money  `json:"unit_price"`
}

// ItemDiscountLine 单品折扣明细
type ItemDiscountLine struct {
	ItemID   string `json:"item_id"`
	Discount Money  `json:"discount"`
}

// ComboDiscountLine 套餐折扣明细
type ComboDiscountLine struct {
	ComboName string   `json:"combo_name"`
	ItemIDs   []string `json:"item_ids"`
	Discount  Money    `json:"discount"`
}

// DiscountBreakdown 折扣明细（仅 CUSTOM_ITEMS 返回）
type DiscountBreakdown struct {
	ItemDiscounts  []ItemDiscountLine  `json:"item_discounts"`
	ComboDiscounts []ComboDiscountLine `json:"combo_discounts"`
}

// DiscountResult 折扣计算结果（请求输出，不落库）
type DiscountResult struct {
	OriginalAmount Money              `json:"original_amount"`
	Discount       Money              `json:"discount"`
	FinalAmount    Money              `json:"final_amount"`
	Breakdown      *DiscountBreakdown `json:"discount_breakdown,omitempty"`
}
