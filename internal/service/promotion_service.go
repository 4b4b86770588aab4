package service

import (
	"context"
	"strings"
	"time"

	"github.com/dinepromo/internal/cache"
	"github.com/dinepromo/internal/constants"
	"github.com/dinepromo/internal/logger"
	"github.com/dinepromo/internal/models"
	"github.com/dinepromo/internal/queue"
	"github.com/dinepromo/internal/repository"

	"github.com/shopspring/decimal"
)

// PromotionService 促销活动校验与核销服务
type PromotionService struct {
	promotionRepo repository.PromotionRepository
	queueClient   *queue.Client
	cacheTTL      time.Duration
}

// NewPromotionService 创建促销活动服务
func NewPromotionService(promotionRepo repository.PromotionRepository, queueClient *queue.Client, cacheTTLSeconds int) *PromotionService {
	ttl := time.Duration(cacheTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &PromotionService{
		promotionRepo: promotionRepo,
		queueClient:   queueClient,
		cacheTTL:      ttl,
	}
}

// ValidatePromotionInput 校验请求
type ValidatePromotionInput struct {
	PromoCode    string
	OrderAmount  models.Money
	OrderedItems []models.OrderedItem
	CheckOnly    bool   // 仅校验可用性，不消耗额度、不检查订单门槛
	RequestID    string // 透传到核销审计记录
}

// Validate 校验优惠码并计算折扣。
// 除最后的额度消耗外所有步骤都是纯读取；CheckOnly 模式下不产生任何状态变更。
func (s *PromotionService) Validate(input ValidatePromotionInput) (*models.DiscountResult, *models.Promotion, error) {
	code := strings.TrimSpace(input.PromoCode)
	if code == "" || input.OrderAmount.Decimal.IsNegative() {
		return nil, nil, ErrPromotionInvalid
	}

	promotion, err := s.promotionRepo.GetByCode(code)
	if err != nil {
		return nil, nil, err
	}
	if promotion == nil {
		return nil, nil, ErrPromotionNotFound
	}
	if promotion.Status != constants.PromoStatusActive {
		return nil, promotion, ErrPromotionInactive
	}

	now := time.Now()
	if now.Before(promotion.StartAt) || now.After(promotion.EndAt) {
		return nil, promotion, ErrPromotionNotInWindow
	}

	// 预检使用上限：读到的计数可能已过期，最终裁决权在原子自增
	if promotion.UsageLimit != nil && promotion.UsageCount >= *promotion.UsageLimit {
		return nil, promotion, ErrPromotionUsageLimit
	}

	if !input.CheckOnly && input.OrderAmount.Decimal.LessThan(promotion.MinOrderAmount.Decimal) {
		return nil, promotion, ErrPromotionMinOrderAmount
	}

	discount, breakdown, err := s.evaluateDiscount(promotion, input.OrderAmount, input.OrderedItems)
	if err != nil {
		return nil, promotion, err
	}

	if promotion.MaxDiscountAmount.Decimal.GreaterThan(decimal.Zero) && discount.GreaterThan(promotion.MaxDiscountAmount.Decimal) {
		discount = promotion.MaxDiscountAmount.Decimal
	}

	finalAmount := input.OrderAmount.Decimal.Sub(discount)
	if finalAmount.IsNegative() {
		finalAmount = decimal.Zero
	}

	result := &models.DiscountResult{
		OriginalAmount: input.OrderAmount,
		Discount:       models.NewMoneyFromDecimal(discount),
		FinalAmount:    models.NewMoneyFromDecimal(finalAmount),
		Breakdown:      breakdown,
	}

	if !input.CheckOnly {
		consumed, err := s.promotionRepo.AtomicIncrementUsage(promotion.ID)
		if err != nil {
			return nil, promotion, err
		}
		if !consumed {
			return nil, promotion, ErrPromotionUsageLimit
		}
		s.enqueueRedemptionRecord(promotion, input, result)
	}

	return result, promotion, nil
}

// evaluateDiscount 按活动类型计算原始折扣
func (s *PromotionService) evaluateDiscount(promotion *models.Promotion, orderAmount models.Money, orderedItems []models.OrderedItem) (decimal.Decimal, *models.DiscountBreakdown, error) {
	switch promotion.Kind {
	case constants.PromoKindPercentage:
		discount := orderAmount.Decimal.Mul(promotion.Value.Decimal).Div(decimal.NewFromInt(100))
		return discount, nil, nil
	case constants.PromoKindFixed:
		return promotion.Value.Decimal, nil, nil
	case constants.PromoKindCustomItems:
		if len(orderedItems) == 0 {
			return decimal.Zero, nil, ErrPromotionItemsRequired
		}
		breakdown := &models.DiscountBreakdown{
			ItemDiscounts:  calculateItemDiscounts(orderedItems, promotion.Rules.Items),
			ComboDiscounts: calculateComboDiscounts(orderedItems, promotion.Rules.Combos),
		}
		return sumDiscountLines(breakdown), breakdown, nil
	default:
		return decimal.Zero, nil, ErrPromotionRuleInvalid
	}
}

// enqueueRedemptionRecord 推送核销审计任务。
// 审计失败不影响已完成的核销，只记录告警。
func (s *PromotionService) enqueueRedemptionRecord(promotion *models.Promotion, input ValidatePromotionInput, result *models.DiscountResult) {
	if s.queueClient == nil {
		return
	}
	err := s.queueClient.EnqueueRedemptionRecord(queue.RedemptionRecordPayload{
		PromotionID: promotion.ID,
		PromoCode:   promotion.PromoCode,
		OrderAmount: input.OrderAmount,
		Discount:    result.Discount,
		RequestID:   input.RequestID,
	})
	if err != nil {
		logger.Warnw("promotion_redemption_record_enqueue_failed",
			"promotion_id", promotion.ID,
			"promo_code", promotion.PromoCode,
			"error", err,
		)
	}
}

// ActivePromotions 获取当前生效的促销活动（短 TTL 缓存）
func (s *PromotionService) ActivePromotions(ctx context.Context) ([]models.Promotion, error) {
	var promotions []models.Promotion
	hit, err := cache.GetJSON(ctx, constants.CacheKeyActivePromotions, &promotions)
	if err != nil {
		logger.Warnw("promotion_active_cache_read_failed", "error", err)
	}
	if hit {
		return promotions, nil
	}

	promotions, err = s.promotionRepo.ListActive(time.Now())
	if err != nil {
		return nil, err
	}
	if err := cache.SetJSON(ctx, constants.CacheKeyActivePromotions, promotions, s.cacheTTL); err != nil {
		logger.Warnw("promotion_active_cache_write_failed", "error", err)
	}
	return promotions, nil
}

// RefreshActivePromotionsCache 重建生效活动缓存（worker 定时调用）
func (s *PromotionService) RefreshActivePromotionsCache(ctx context.Context) error {
	promotions, err := s.promotionRepo.ListActive(time.Now())
	if err != nil {
		return err
	}
	return cache.SetJSON(ctx, constants.CacheKeyActivePromotions, promotions, s.cacheTTL)
}
