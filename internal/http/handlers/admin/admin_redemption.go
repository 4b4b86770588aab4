package admin

import (
	"strconv"

	handlershared "github.com/dinepromo/internal/http/handlers/shared"
	"github.com/dinepromo/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetPromotionRedemptions 获取促销活动的核销记录
func (h *Handler) GetPromotionRedemptions(c *gin.Context) {
	promotionID, ok := parsePromotionID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	logs, total, err := h.RedemptionLogRepo.ListByPromotion(promotionID, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to fetch redemption records", err)
		return
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, logs, pagination)
}
