package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dinepromo/internal/cache"
	"github.com/dinepromo/internal/constants"
	"github.com/dinepromo/internal/logger"
	"github.com/dinepromo/internal/models"
	"github.com/dinepromo/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PromotionAdminService 促销活动管理服务
type PromotionAdminService struct {
	repo repository.PromotionRepository
}

// NewPromotionAdminService 创建促销活动管理服务
func NewPromotionAdminService(repo repository.PromotionRepository) *PromotionAdminService {
	return &PromotionAdminService{repo: repo}
}

// CreatePromotionInput 创建促销活动输入
type CreatePromotionInput struct {
	PromoCode         string
	Title             string
	Description       string
	Kind              string
	Value             models.Money
	MinOrderAmount    models.Money
	MaxDiscountAmount models.Money
	UsageLimit        *int
	StartAt           time.Time
	EndAt             time.Time
	Status            string
	Rules             models.RuleSet
}

// UpdatePromotionInput 更新促销活动输入（仅校验并应用被提供的字段）
type UpdatePromotionInput struct {
	PromoCode         *string
	Title             *string
	Description       *string
	Kind              *string
	Value             *models.Money
	MinOrderAmount    *models.Money
	MaxDiscountAmount *models.Money
	UsageLimit        *int
	UsageLimitSet     bool // usage_limit 字段是否出现在请求中（显式 null 表示取消限制）
	StartAt           *time.Time
	EndAt             *time.Time
	Status            *string
	Rules             *models.RuleSet
}

// Create 创建促销活动
func (s *PromotionAdminService) Create(input CreatePromotionInput) (*models.Promotion, error) {
	code := strings.TrimSpace(input.PromoCode)
	title := strings.TrimSpace(input.Title)
	if code == "" || title == "" {
		return nil, ErrPromotionInvalid
	}
	if !isValidPromoKind(input.Kind) {
		return nil, ErrPromotionInvalid
	}
	if input.StartAt.IsZero() || input.EndAt.IsZero() || !input.StartAt.Before(input.EndAt) {
		return nil, ErrPromotionInvalid
	}
	if input.MinOrderAmount.Decimal.IsNegative() || input.MaxDiscountAmount.Decimal.IsNegative() {
		return nil, ErrPromotionInvalid
	}
	if input.UsageLimit != nil && *input.UsageLimit < 0 {
		return nil, ErrPromotionInvalid
	}

	value := input.Value
	rules := input.Rules
	if input.Kind == constants.PromoKindCustomItems {
		if err := validateRuleSet(rules); err != nil {
			return nil, err
		}
		// CUSTOM_ITEMS 的折扣完全由规则决定，value 固定为 0
		value = models.Money{}
	} else {
		if err := validatePromoValue(input.Kind, input.Value); err != nil {
			return nil, err
		}
		rules = models.RuleSet{}
	}

	status := strings.TrimSpace(input.Status)
	if status == "" {
		status = constants.PromoStatusActive
	}
	if status != constants.PromoStatusActive && status != constants.PromoStatusInactive {
		return nil, ErrPromotionInvalid
	}

	// 预检重复码；真正的权威校验是存储层的唯一索引
	exist, err := s.repo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if exist != nil {
		return nil, ErrPromotionCodeExists
	}

	promotion := &models.Promotion{
		PromoCode:         code,
		Title:             title,
		Description:       strings.TrimSpace(input.Description),
		Kind:              input.Kind,
		Value:             value,
		MinOrderAmount:    input.MinOrderAmount,
		MaxDiscountAmount: input.MaxDiscountAmount,
		UsageLimit:        input.UsageLimit,
		UsageCount:        0,
		StartAt:           input.StartAt,
		EndAt:             input.EndAt,
		Status:            status,
		Rules:             rules,
	}
	if err := s.repo.Create(promotion); err != nil {
		if isDuplicateKeyError(err) {
			return nil, ErrPromotionCodeExists
		}
		return nil, err
	}

	s.invalidateActiveCache()
	return promotion, nil
}

// Update 更新促销活动（部分更新）
func (s *PromotionAdminService) Update(id uint, input UpdatePromotionInput) (*models.Promotion, error) {
	if id == 0 {
		return nil, ErrPromotionInvalid
	}
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrPromotionNotFound
	}

	if input.PromoCode != nil {
		code := strings.TrimSpace(*input.PromoCode)
		if code == "" {
			return nil, ErrPromotionInvalid
		}
		if code != existing.PromoCode {
			dup, err := s.repo.GetByCode(code)
			if err != nil {
				return nil, err
			}
			if dup != nil {
				return nil, ErrPromotionCodeExists
			}
		}
		existing.PromoCode = code
	}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrPromotionInvalid
		}
		existing.Title = title
	}
	if input.Description != nil {
		existing.Description = strings.TrimSpace(*input.Description)
	}
	if input.Kind != nil {
		if !isValidPromoKind(*input.Kind) {
			return nil, ErrPromotionInvalid
		}
		existing.Kind = *input.Kind
	}
	if input.Value != nil {
		existing.Value = *input.Value
	}
	if input.MinOrderAmount != nil {
		if input.MinOrderAmount.Decimal.IsNegative() {
			return nil, ErrPromotionInvalid
		}
		existing.MinOrderAmount = *input.MinOrderAmount
	}
	if input.MaxDiscountAmount != nil {
		if input.MaxDiscountAmount.Decimal.IsNegative() {
			return nil, ErrPromotionInvalid
		}
		existing.MaxDiscountAmount = *input.MaxDiscountAmount
	}
	if input.UsageLimitSet {
		if input.UsageLimit != nil && *input.UsageLimit < 0 {
			return nil, ErrPromotionInvalid
		}
		existing.UsageLimit = input.UsageLimit
	}
	if input.StartAt != nil {
		existing.StartAt = *input.StartAt
	}
	if input.EndAt != nil {
		existing.EndAt = *input.EndAt
	}
	if !existing.StartAt.Before(existing.EndAt) {
		return nil, ErrPromotionInvalid
	}
	if input.Status != nil {
		if *input.Status != constants.PromoStatusActive && *input.Status != constants.PromoStatusInactive {
			return nil, ErrPromotionInvalid
		}
		existing.Status = *input.Status
	}
	if input.Rules != nil {
		existing.Rules = *input.Rules
	}

	// 应用完所有字段后按最终类型复核数值与规则
	if existing.Kind == constants.PromoKindCustomItems {
		if err := validateRuleSet(existing.Rules); err != nil {
			return nil, err
		}
		existing.Value = models.Money{}
	} else {
		if err := validatePromoValue(existing.Kind, existing.Value); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(existing); err != nil {
		if isDuplicateKeyError(err) {
			return nil, ErrPromotionCodeExists
		}
		return nil, err
	}

	s.invalidateActiveCache()
	return existing, nil
}

// ToggleStatus 切换活动启停状态
func (s *PromotionAdminService) ToggleStatus(id uint) (*models.Promotion, error) {
	if id == 0 {
		return nil, ErrPromotionInvalid
	}
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrPromotionNotFound
	}

	if existing.Status == constants.PromoStatusActive {
		existing.Status = constants.PromoStatusInactive
	} else {
		existing.Status = constants.PromoStatusActive
	}
	if err := s.repo.Update(existing); err != nil {
		return nil, err
	}

	s.invalidateActiveCache()
	return existing, nil
}

// Delete 删除促销活动（硬删除）
func (s *PromotionAdminService) Delete(id uint) error {
	if id == 0 {
		return ErrPromotionInvalid
	}
	deleted, err := s.repo.Delete(id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrPromotionNotFound
	}

	s.invalidateActiveCache()
	return nil
}

// Get 根据ID获取促销活动
func (s *PromotionAdminService) Get(id uint) (*models.Promotion, error) {
	if id == 0 {
		return nil, ErrPromotionInvalid
	}
	promotion, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if promotion == nil {
		return nil, ErrPromotionNotFound
	}
	return promotion, nil
}

// List 获取促销活动列表
func (s *PromotionAdminService) List(filter repository.PromotionListFilter) ([]models.Promotion, int64, error) {
	promotions, total, err := s.repo.List(filter)
	if errors.Is(err, repository.ErrUnknownListFilter) {
		return nil, 0, ErrPromotionInvalid
	}
	return promotions, total, err
}

func (s *PromotionAdminService) invalidateActiveCache() {
	if err := cache.Del(context.Background(), constants.CacheKeyActivePromotions); err != nil {
		logger.Warnw("promotion_active_cache_invalidate_failed", "error", err)
	}
}

func isValidPromoKind(kind string) bool {
	switch kind {
	case constants.PromoKindPercentage, constants.PromoKindFixed, constants.PromoKindCustomItems:
		return true
	}
	return false
}

func isValidDiscountType(discountType string) bool {
	return discountType == constants.DiscountTypePercentage || discountType == constants.DiscountTypeFixed
}

// validatePromoValue 校验 PERCENTAGE/FIXED 活动的折扣数值
func validatePromoValue(kind string, value models.Money) error {
	if value.Decimal.LessThanOrEqual(decimal.Zero) {
		return ErrPromotionInvalid
	}
	if kind == constants.PromoKindPercentage && value.Decimal.GreaterThan(decimal.NewFromInt(100)) {
		return ErrPromotionInvalid
	}
	return nil
}

// validateRuleSet 校验 CUSTOM_ITEMS 活动的规则文档
func validateRuleSet(rules models.RuleSet) error {
	if len(rules.Items) == 0 {
		return ErrPromotionRuleInvalid
	}
	for _, item := range rules.Items {
		if strings.TrimSpace(item.ItemID) == "" {
			return ErrPromotionRuleInvalid
		}
		if !isValidDiscountType(item.DiscountType) {
			return ErrPromotionRuleInvalid
		}
		if item.DiscountValue.Decimal.LessThanOrEqual(decimal.Zero) {
			return ErrPromotionRuleInvalid
		}
	}
	for _, combo := range rules.Combos {
		if len(distinctItemIDs(combo.ItemIDs)) < 2 {
			return ErrPromotionRuleInvalid
		}
		if !isValidDiscountType(combo.DiscountType) {
			return ErrPromotionRuleInvalid
		}
		if combo.DiscountValue.Decimal.LessThanOrEqual(decimal.Zero) {
			return ErrPromotionRuleInvalid
		}
	}
	return nil
}

func distinctItemIDs(itemIDs []string) []string {
	seen := make(map[string]struct{}, len(itemIDs))
	result := make([]string, 0, len(itemIDs))
	for _, id := range itemIDs {
		trimmed := strings.TrimSpace(id)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	return result
}

// isDuplicateKeyError 判断是否为唯一索引冲突。
// glebarez/sqlite 与 postgres 驱动的错误文案不同，除 gorm 的统一翻译外再做兜底匹配。
func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	message := err.Error()
	return strings.Contains(message, "UNIQUE constraint failed") ||
		strings.Contains(message, "duplicate key value")
}
