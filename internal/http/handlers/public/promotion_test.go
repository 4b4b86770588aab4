package public

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dinepromo/internal/constants"
	"github.com/dinepromo/internal/models"
	"github.com/dinepromo/internal/provider"
	"github.com/dinepromo/internal/repository"
	"github.com/dinepromo/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupPublicHandlerTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:public_handler_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Promotion{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	promoRepo := repository.NewPromotionRepository(db)
	container := &provider.Container{
		PromotionRepo:    promoRepo,
		PromotionService: service.NewPromotionService(promoRepo, nil, 0),
	}
	handler := New(container)

	r := gin.New()
	r.POST("/api/v1/promotions/validate", handler.ValidatePromotion)
	r.GET("/api/v1/promotions/active", handler.GetActivePromotions)
	return r, db
}

func seedPublicPromotion(t *testing.T, db *gorm.DB, promo models.Promotion) {
	t.Helper()
	now := time.Now()
	if promo.StartAt.IsZero() {
		promo.StartAt = now.Add(-time.Hour)
	}
	if promo.EndAt.IsZero() {
		promo.EndAt = now.Add(24 * time.Hour)
	}
	if promo.Status == "" {
		promo.Status = constants.PromoStatusActive
	}
	if err := db.Create(&promo).Error; err != nil {
		t.Fatalf("seed promotion failed: %v", err)
	}
}

func postValidate(t *testing.T, r *gin.Engine, body string) map[string]interface{} {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/promotions/validate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("transport status want 200 got %d", w.Code)
	}
	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	return resp
}

func TestValidatePromotionEndpoint(t *testing.T) {
	r, db := setupPublicHandlerTest(t)
	seedPublicPromotion(t, db, models.Promotion{
		PromoCode:      "WELCOME10",
		Title:          "新客立减",
		Kind:           constants.PromoKindFixed,
		Value:          models.NewMoneyFromDecimal(decimal.NewFromInt(20)),
		MinOrderAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
	})

	resp := postValidate(t, r, `{"promo_code":"WELCOME10","order_amount":200}`)
	if code, _ := resp["status_code"].(float64); int(code) != 0 {
		t.Fatalf("expected success envelope, got: %v", resp)
	}
	data, _ := resp["data"].(map[string]interface{})
	if data == nil || data["valid"] != true {
		t.Fatalf("expected valid result, got: %v", resp["data"])
	}
	result, _ := data["result"].(map[string]interface{})
	if result == nil || result["discount"] != "20.00" || result["final_amount"] != "180.00" {
		t.Fatalf("unexpected discount result: %v", data["result"])
	}
}

func TestValidatePromotionEndpointUnknownCode(t *testing.T) {
	r, _ := setupPublicHandlerTest(t)

	resp := postValidate(t, r, `{"promo_code":"NOPE","order_amount":50}`)
	if code, _ := resp["status_code"].(float64); int(code) != 404 {
		t.Fatalf("expected body code 404, got: %v", resp["status_code"])
	}
}

func TestValidatePromotionEndpointBelowMinimumMessage(t *testing.T) {
	r, db := setupPublicHandlerTest(t)
	seedPublicPromotion(t, db, models.Promotion{
		PromoCode:      "WELCOME10",
		Title:          "新客立减",
		Kind:           constants.PromoKindFixed,
		Value:          models.NewMoneyFromDecimal(decimal.NewFromInt(20)),
		MinOrderAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
	})

	resp := postValidate(t, r, `{"promo_code":"WELCOME10","order_amount":80}`)
	if code, _ := resp["status_code"].(float64); int(code) != 400 {
		t.Fatalf("expected body code 400, got: %v", resp["status_code"])
	}
	msg, _ := resp["msg"].(string)
	if !strings.Contains(msg, "100.00") {
		t.Fatalf("threshold message should carry the minimum amount, got: %q", msg)
	}
}

func TestValidatePromotionEndpointCheckOnly(t *testing.T) {
	r, db := setupPublicHandlerTest(t)
	seedPublicPromotion(t, db, models.Promotion{
		PromoCode: "WELCOME10",
		Title:     "新客立减",
		Kind:      constants.PromoKindFixed,
		Value:     models.NewMoneyFromDecimal(decimal.NewFromInt(20)),
	})

	resp := postValidate(t, r, `{"promo_code":"WELCOME10","order_amount":200,"check_only":true}`)
	if code, _ := resp["status_code"].(float64); int(code) != 0 {
		t.Fatalf("expected success envelope, got: %v", resp)
	}

	var stored models.Promotion
	if err := db.Where("promo_code = ?", "WELCOME10").First(&stored).Error; err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if stored.UsageCount != 0 {
		t.Fatalf("check only must not consume usage, got %d", stored.UsageCount)
	}
}

func TestGetActivePromotionsEndpoint(t *testing.T) {
	r, db := setupPublicHandlerTest(t)
	now := time.Now()
	seedPublicPromotion(t, db, models.Promotion{
		PromoCode: "LIVE",
		Title:     "进行中",
		Kind:      constants.PromoKindFixed,
		Value:     models.NewMoneyFromDecimal(decimal.NewFromInt(5)),
	})
	seedPublicPromotion(t, db, models.Promotion{
		PromoCode: "DONE",
		Title:     "已结束",
		Kind:      constants.PromoKindFixed,
		Value:     models.NewMoneyFromDecimal(decimal.NewFromInt(5)),
		StartAt:   now.Add(-48 * time.Hour),
		EndAt:     now.Add(-24 * time.Hour),
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/promotions/active", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	var resp struct {
		StatusCode int                `json:"status_code"`
		Data       []models.Promotion `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if resp.StatusCode != 0 || len(resp.Data) != 1 || resp.Data[0].PromoCode != "LIVE" {
		t.Fatalf("unexpected active list: %+v", resp.Data)
	}
}
