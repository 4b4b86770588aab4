package service

import "errors"

// 促销活动相关错误
var (
	// ErrPromotionInvalid 请求参数缺失或格式非法
	ErrPromotionInvalid = errors.New("promo code and order amount required")
	// ErrPromotionNotFound 优惠码或ID不存在
	ErrPromotionNotFound = errors.New("invalid promo code")
	// ErrPromotionInactive 活动已停用
	ErrPromotionInactive = errors.New("promotion inactive")
	// ErrPromotionNotInWindow 当前时间不在活动有效期内
	ErrPromotionNotInWindow = errors.New("promotion expired or not started")
	// ErrPromotionMinOrderAmount 订单金额低于使用门槛
	ErrPromotionMinOrderAmount = errors.New("order amount below minimum")
	// ErrPromotionItemsRequired CUSTOM_ITEMS 活动必须提供订单明细
	ErrPromotionItemsRequired = errors.New("ordered items required")
	// ErrPromotionUsageLimit 使用次数已达上限
	ErrPromotionUsageLimit = errors.New("promotion usage limit exceeded")
	// ErrPromotionCodeExists 优惠码已被占用
	ErrPromotionCodeExists = errors.New("promo code already exists")
	// ErrPromotionRuleInvalid 活动规则不合法
	ErrPromotionRuleInvalid = errors.New("invalid promotion rules")
)

// 管理员登录相关错误
var (
	// ErrLoginInvalid 用户名或密码错误
	ErrLoginInvalid = errors.New("invalid username or password")
)
