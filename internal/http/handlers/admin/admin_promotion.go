package admin

import (
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"time"

	handlershared "github.com/dinepromo/internal/http/handlers/shared"
	"github.com/dinepromo/internal/http/response"
	"github.com/dinepromo/internal/models"
	"github.com/dinepromo/internal/repository"
	"github.com/dinepromo/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ItemRuleRequest 单品折扣规则请求
type ItemRuleRequest struct {
	ItemID        string  `json:"item_id"`
	DiscountType  string  `json:"discount_type"`
	DiscountValue float64 `json:"discount_value"`
}

// ComboRuleRequest 套餐折扣规则请求
type ComboRuleRequest struct {
	ComboName     string   `json:"combo_name"`
	ItemIDs       []string `json:"item_ids"`
	DiscountType  string   `json:"discount_type"`
	DiscountValue float64  `json:"discount_value"`
}

// RuleSetRequest CUSTOM_ITEMS 规则请求
type RuleSetRequest struct {
	Items  []ItemRuleRequest  `json:"items"`
	Combos []ComboRuleRequest `json:"combos"`
}

// CreatePromotionRequest 创建促销活动请求
type CreatePromotionRequest struct {
	PromoCode         string          `json:"promo_code" binding:"required"`
	Title             string          `json:"title" binding:"required"`
	Description       string          `json:"description"`
	Kind              string          `json:"kind" binding:"required"`
	Value             float64         `json:"value"`
	MinOrderAmount    float64         `json:"min_order_amount"`
	MaxDiscountAmount float64         `json:"max_discount_amount"`
	UsageLimit        *int            `json:"usage_limit"`
	StartAt           string          `json:"start_at" binding:"required"`
	EndAt             string          `json:"end_at" binding:"required"`
	Status            string          `json:"status"`
	Rules             *RuleSetRequest `json:"rules"`
}

// CreatePromotion 创建促销活动
func (h *Handler) CreatePromotion(c *gin.Context) {
	var req CreatePromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	startAt, err := parseTime(req.StartAt)
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid start_at", err)
		return
	}
	endAt, err := parseTime(req.EndAt)
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid end_at", err)
		return
	}

	promotion, err := h.PromotionAdminService.Create(service.CreatePromotionInput{
		PromoCode:         req.PromoCode,
		Title:             req.Title,
		Description:       req.Description,
		Kind:              req.Kind,
		Value:             models.NewMoneyFromDecimal(decimal.NewFromFloat(req.Value)),
		MinOrderAmount:    models.NewMoneyFromDecimal(decimal.NewFromFloat(req.MinOrderAmount)),
		MaxDiscountAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(req.MaxDiscountAmount)),
		UsageLimit:        req.UsageLimit,
		StartAt:           startAt,
		EndAt:             endAt,
		Status:            req.Status,
		Rules:             toRuleSet(req.Rules),
	})
	if err != nil {
		respondPromotionError(c, err, "failed to create promotion")
		return
	}

	response.Success(c, promotion)
}

// UpdatePromotionRequest 更新促销活动请求（仅应用出现的字段）
type UpdatePromotionRequest struct {
	PromoCode         *string         `json:"promo_code"`
	Title             *string         `json:"title"`
	Description       *string         `json:"description"`
	Kind              *string         `json:"kind"`
	Value             *float64        `json:"value"`
	MinOrderAmount    *float64        `json:"min_order_amount"`
	MaxDiscountAmount *float64        `json:"max_discount_amount"`
	UsageLimit        *int            `json:"usage_limit"`
	StartAt           *string         `json:"start_at"`
	EndAt             *string         `json:"end_at"`
	Status            *string         `json:"status"`
	Rules             *RuleSetRequest `json:"rules"`
}

// UpdatePromotion 更新促销活动
func (h *Handler) UpdatePromotion(c *gin.Context) {
	promotionID, ok := parsePromotionID(c)
	if !ok {
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	var req UpdatePromotionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	// usage_limit 为显式 null 时表示取消上限，与字段缺省要区分开
	var rawFields map[string]json.RawMessage
	if err := json.Unmarshal(body, &rawFields); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	_, usageLimitSet := rawFields["usage_limit"]

	input := service.UpdatePromotionInput{
		PromoCode:     req.PromoCode,
		Title:         req.Title,
		Description:   req.Description,
		Kind:          req.Kind,
		UsageLimit:    req.UsageLimit,
		UsageLimitSet: usageLimitSet,
		Status:        req.Status,
	}
	if req.Value != nil {
		value := models.NewMoneyFromDecimal(decimal.NewFromFloat(*req.Value))
		input.Value = &value
	}
	if req.MinOrderAmount != nil {
		minOrderAmount := models.NewMoneyFromDecimal(decimal.NewFromFloat(*req.MinOrderAmount))
		input.MinOrderAmount = &minOrderAmount
	}
	if req.MaxDiscountAmount != nil {
		maxDiscountAmount := models.NewMoneyFromDecimal(decimal.NewFromFloat(*req.MaxDiscountAmount))
		input.MaxDiscountAmount = &maxDiscountAmount
	}
	if req.StartAt != nil {
		startAt, err := parseTime(*req.StartAt)
		if err != nil {
			respondError(c, response.CodeBadRequest, "invalid start_at", err)
			return
		}
		input.StartAt = &startAt
	}
	if req.EndAt != nil {
		endAt, err := parseTime(*req.EndAt)
		if err != nil {
			respondError(c, response.CodeBadRequest, "invalid end_at", err)
			return
		}
		input.EndAt = &endAt
	}
	if req.Rules != nil {
		rules := toRuleSet(req.Rules)
		input.Rules = &rules
	}

	promotion, err := h.PromotionAdminService.Update(promotionID, input)
	if err != nil {
		respondPromotionError(c, err, "failed to update promotion")
		return
	}

	response.Success(c, promotion)
}

// TogglePromotionStatus 切换促销活动启停状态
func (h *Handler) TogglePromotionStatus(c *gin.Context) {
	promotionID, ok := parsePromotionID(c)
	if !ok {
		return
	}

	promotion, err := h.PromotionAdminService.ToggleStatus(promotionID)
	if err != nil {
		respondPromotionError(c, err, "failed to toggle promotion")
		return
	}

	requestLog(c).Infow("promotion_status_toggled",
		"promotion_id", promotion.ID,
		"status", promotion.Status,
	)
	response.Success(c, promotion)
}

// DeletePromotion 删除促销活动
func (h *Handler) DeletePromotion(c *gin.Context) {
	promotionID, ok := parsePromotionID(c)
	if !ok {
		return
	}

	if err := h.PromotionAdminService.Delete(promotionID); err != nil {
		respondPromotionError(c, err, "failed to delete promotion")
		return
	}
	response.Success(c, gin.H{
		"deleted": true,
	})
}

// GetAdminPromotion 获取促销活动详情
func (h *Handler) GetAdminPromotion(c *gin.Context) {
	promotionID, ok := parsePromotionID(c)
	if !ok {
		return
	}

	promotion, err := h.PromotionAdminService.Get(promotionID)
	if err != nil {
		respondPromotionError(c, err, "failed to fetch promotion")
		return
	}
	response.Success(c, promotion)
}

// GetAdminPromotions 获取促销活动列表
func (h *Handler) GetAdminPromotions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	scope := c.DefaultQuery("filter", "all")

	promotions, total, err := h.PromotionAdminService.List(repository.PromotionListFilter{
		Scope:    scope,
		Now:      time.Now(),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		respondPromotionError(c, err, "failed to fetch promotions")
		return
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, promotions, pagination)
}

func respondPromotionError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrPromotionNotFound):
		respondError(c, response.CodeNotFound, "promotion not found", nil)
	case errors.Is(err, service.ErrPromotionCodeExists):
		respondError(c, response.CodeConflict, "promo code already exists", nil)
	case errors.Is(err, service.ErrPromotionRuleInvalid):
		respondError(c, response.CodeBadRequest, "invalid promotion rules", nil)
	case errors.Is(err, service.ErrPromotionInvalid):
		respondError(c, response.CodeBadRequest, "invalid promotion payload", nil)
	default:
		respondError(c, response.CodeInternal, fallback, err)
	}
}

func parsePromotionID(c *gin.Context) (uint, bool) {
	promotionID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || promotionID == 0 {
		respondError(c, response.CodeBadRequest, "invalid promotion id", err)
		return 0, false
	}
	return uint(promotionID), true
}

func parseTime(raw string) (time.Time, error) {
	return time.Parse(time.RFC3339, raw)
}

func toRuleSet(req *RuleSetRequest) models.RuleSet {
	if req == nil {
		return models.RuleSet{}
	}
	rules := models.RuleSet{}
	for _, item := range req.Items {
		rules.Items = append(rules.Items, models.ItemRule{
			ItemID:        item.ItemID,
			DiscountType:  item.DiscountType,
			DiscountValue: models.NewMoneyFromDecimal(decimal.NewFromFloat(item.DiscountValue)),
		})
	}
	for _, combo := range req.Combos {
		rules.Combos = append(rules.Combos, models.ComboRule{
			ComboName:     combo.ComboName,
			ItemIDs:       combo.ItemIDs,
			DiscountType:  combo.DiscountType,
			DiscountValue: models.NewMoneyFromDecimal(decimal.NewFromFloat(combo.DiscountValue)),
		})
	}
	return rules
}
