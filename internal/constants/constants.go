package constants

// 促销活动类型常量
const (
	PromoKindPercentage  = "PERCENTAGE"
	PromoKindFixed       = "FIXED"
	PromoKindCustomItems = "CUSTOM_ITEMS"
)

// 促销活动状态常量
const (
	PromoStatusActive   = "ACTIVE"
	PromoStatusInactive = "INACTIVE"
)

// 单品/套餐折扣方式常量
const (
	DiscountTypePercentage = "PERCENTAGE"
	DiscountTypeFixed      = "FIXED"
)

// 促销活动列表筛选常量
const (
	PromoFilterAll      = "all"
	PromoFilterActive   = "active"
	PromoFilterUpcoming = "upcoming"
	PromoFilterExpired  = "expired"
)

// 队列名称常量
const (
	QueueDefault = "default"
)

// 异步任务类型常量
const (
	TaskRedemptionRecord = "promotion:redemption_record"
)

// 缓存键常量
const (
	CacheKeyActivePromotions = "promotions:active"
)
