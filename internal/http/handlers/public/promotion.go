package public

import (
	"errors"
	"fmt"

	handlershared "github.com/dinepromo/internal/http/handlers/shared"
	"github.com/dinepromo/internal/http/response"
	"github.com/dinepromo/internal/models"
	"github.com/dinepromo/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// OrderedItemRequest 订单行请求
type OrderedItemRequest struct {
	ItemID    string  `json:"item_id" binding:"required"`
	Quantity  int     `json:"quantity" binding:"required"`
	UnitPrice float64 `json:"unit_price"`
}

// ValidatePromotionRequest 优惠码校验请求
type ValidatePromotionRequest struct {
	PromoCode    string               `json:"promo_code" binding:"required"`
	OrderAmount  float64              `json:"order_amount"`
	OrderedItems []OrderedItemRequest `json:"ordered_items"`
	CheckOnly    bool                 `json:"check_only"`
}

// ValidatePromotionView 优惠码校验响应
type ValidatePromotionView struct {
	Valid     bool                   `json:"valid"`
	Promotion PromotionSummaryView   `json:"promotion"`
	Result    *models.DiscountResult `json:"result"`
}

// PromotionSummaryView 促销活动公开摘要
type PromotionSummaryView struct {
	ID        uint   `json:"id"`
	PromoCode string `json:"promo_code"`
	Title     string `json:"title"`
	Kind      string `json:"kind"`
}

// ValidatePromotion 校验优惠码并计算折扣
func (h *Handler) ValidatePromotion(c *gin.Context) {
	var req ValidatePromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "promo code and order amount required", err)
		return
	}
	if req.OrderAmount < 0 {
		respondError(c, response.CodeBadRequest, "promo code and order amount required", nil)
		return
	}

	orderedItems := make([]models.OrderedItem, 0, len(req.OrderedItems))
	for _, item := range req.OrderedItems {
		if item.Quantity <= 0 || item.UnitPrice < 0 {
			respondError(c, response.CodeBadRequest, "invalid ordered items", nil)
			return
		}
		orderedItems = append(orderedItems, models.OrderedItem{
			ItemID:    item.ItemID,
			Quantity:  item.Quantity,
			UnitPrice: models.NewMoneyFromDecimal(decimal.NewFromFloat(item.UnitPrice)),
		})
	}

	result, promotion, err := h.PromotionService.Validate(service.ValidatePromotionInput{
		PromoCode:    req.PromoCode,
		OrderAmount:  models.NewMoneyFromDecimal(decimal.NewFromFloat(req.OrderAmount)),
		OrderedItems: orderedItems,
		CheckOnly:    req.CheckOnly,
		RequestID:    handlershared.RequestID(c),
	})
	if err != nil {
		respondValidationError(c, promotion, err)
		return
	}

	response.Success(c, ValidatePromotionView{
		Valid: true,
		Promotion: PromotionSummaryView{
			ID:        promotion.ID,
			PromoCode: promotion.PromoCode,
			Title:     promotion.Title,
			Kind:      promotion.Kind,
		},
		Result: result,
	})
}

// GetActivePromotions 获取当前生效的促销活动列表
func (h *Handler) GetActivePromotions(c *gin.Context) {
	promotions, err := h.PromotionService.ActivePromotions(c.Request.Context())
	if err != nil {
		respondError(c, response.CodeInternal, "failed to fetch promotions", err)
		return
	}
	response.Success(c, promotions)
}

func respondValidationError(c *gin.Context, promotion *models.Promotion, err error) {
	switch {
	case errors.Is(err, service.ErrPromotionInvalid):
		respondError(c, response.CodeBadRequest, "promo code and order amount required", nil)
	case errors.Is(err, service.ErrPromotionNotFound):
		respondError(c, response.CodeNotFound, "invalid promo code", nil)
	case errors.Is(err, service.ErrPromotionInactive):
		respondError(c, response.CodeBadRequest, "promotion is not active", nil)
	case errors.Is(err, service.ErrPromotionNotInWindow):
		respondError(c, response.CodeBadRequest, "promotion expired or not started", nil)
	case errors.Is(err, service.ErrPromotionMinOrderAmount):
		msg := "order amount below minimum"
		if promotion != nil {
			msg = fmt.Sprintf("minimum order amount of %s required", promotion.MinOrderAmount.String())
		}
		respondError(c, response.CodeBadRequest, msg, nil)
	case errors.Is(err, service.ErrPromotionItemsRequired):
		respondError(c, response.CodeBadRequest, "ordered items required for this promotion", nil)
	case errors.Is(err, service.ErrPromotionUsageLimit):
		respondError(c, response.CodeBadRequest, "promotion usage limit reached", nil)
	default:
		respondError(c, response.CodeInternal, "failed to validate promo code", err)
	}
}
