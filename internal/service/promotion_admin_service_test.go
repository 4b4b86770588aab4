package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dinepromo/internal/constants"
	"github.com/dinepromo/internal/models"
	"github.com/dinepromo/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupPromotionAdminServiceTest(t *testing.T) (*PromotionAdminService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:promotion_admin_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Promotion{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	return NewPromotionAdminService(repository.NewPromotionRepository(db)), db
}

func validCreateInput() CreatePromotionInput {
	now := time.Now()
	return CreatePromotionInput{
		PromoCode:      "WELCOME10",
		Title:          "新客立减",
		Kind:           constants.PromoKindFixed,
		Value:          models.NewMoneyFromDecimal(decimal.NewFromInt(20)),
		MinOrderAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
		StartAt:        now.Add(-time.Hour),
		EndAt:          now.Add(24 * time.Hour),
	}
}

func TestAdminCreatePromotion(t *testing.T) {
	svc, _ := setupPromotionAdminServiceTest(t)

	promo, err := svc.Create(validCreateInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if promo.ID == 0 || promo.Status != constants.PromoStatusActive {
		t.Fatalf("unexpected created promotion: %+v", promo)
	}
	if promo.UsageCount != 0 {
		t.Fatalf("new promotion must start with zero usage")
	}
}

func TestAdminCreateRejectsMissingFields(t *testing.T) {
	svc, _ := setupPromotionAdminServiceTest(t)

	cases := []func(*CreatePromotionInput){
		func(in *CreatePromotionInput) { in.PromoCode = "  " },
		func(in *CreatePromotionInput) { in.Title = "" },
		func(in *CreatePromotionInput) { in.Kind = "BOGOF" },
		func(in *CreatePromotionInput) { in.StartAt = in.EndAt.Add(time.Hour) },
		func(in *CreatePromotionInput) { in.Value = models.NewMoneyFromDecimal(decimal.Zero) },
		func(in *CreatePromotionInput) {
			in.Kind = constants.PromoKindPercentage
			in.Value = models.NewMoneyFromDecimal(decimal.NewFromInt(120))
		},
		func(in *CreatePromotionInput) {
			in.MinOrderAmount = models.NewMoneyFromDecimal(decimal.NewFromInt(-1))
		},
		func(in *CreatePromotionInput) {
			limit := -1
			in.UsageLimit = &limit
		},
	}
	for i, mutate := range cases {
		input := validCreateInput()
		input.PromoCode = fmt.Sprintf("CASE%d", i)
		mutate(&input)
		if _, err := svc.Create(input); !errors.Is(err, ErrPromotionInvalid) {
			t.Fatalf("case %d: expected invalid error, got: %v", i, err)
		}
	}
}

func TestAdminCreateDuplicateCode(t *testing.T) {
	svc, _ := setupPromotionAdminServiceTest(t)

	if _, err := svc.Create(validCreateInput()); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	_, err := svc.Create(validCreateInput())
	if !errors.Is(err, ErrPromotionCodeExists) {
		t.Fatalf("expected duplicate code error, got: %v", err)
	}
}

func TestAdminCreateCustomItemsForcesZeroValue(t *testing.T) {
	svc, _ := setupPromotionAdminServiceTest(t)

	input := validCreateInput()
	input.Kind = constants.PromoKindCustomItems
	input.Value = models.NewMoneyFromDecimal(decimal.NewFromInt(99))
	input.Rules = models.RuleSet{
		Items: []models.ItemRule{
			{ItemID: "burger", DiscountType: constants.DiscountTypeFixed, DiscountValue: models.NewMoneyFromDecimal(decimal.NewFromInt(5))},
		},
	}

	promo, err := svc.Create(input)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if !promo.Value.Decimal.Equal(decimal.Zero) {
		t.Fatalf("custom items value must be forced to zero, got: %s", promo.Value.String())
	}
	if promo.Rules.IsEmpty() {
		t.Fatalf("rules must be persisted")
	}
}

func TestAdminCreateCustomItemsRejectsBadRules(t *testing.T) {
	svc, _ := setupPromotionAdminServiceTest(t)

	cases := []models.RuleSet{
		{},
		{Items: []models.ItemRule{{ItemID: " ", DiscountType: constants.DiscountTypeFixed, DiscountValue: models.NewMoneyFromDecimal(decimal.NewFromInt(5))}}},
		{Items: []models.ItemRule{{ItemID: "burger", DiscountType: "HALF", DiscountValue: models.NewMoneyFromDecimal(decimal.NewFromInt(5))}}},
		{Items: []models.ItemRule{{ItemID: "burger", DiscountType: constants.DiscountTypeFixed, DiscountValue: models.NewMoneyFromDecimal(decimal.Zero)}}},
		{
			Items: []models.ItemRule{{ItemID: "burger", DiscountType: constants.DiscountTypeFixed, DiscountValue: models.NewMoneyFromDecimal(decimal.NewFromInt(5))}},
			Combos: []models.ComboRule{
				{ComboName: "solo", ItemIDs: []string{"burger", "burger"}, DiscountType: constants.DiscountTypeFixed, DiscountValue: models.NewMoneyFromDecimal(decimal.NewFromInt(3))},
			},
		},
	}
	for i, rules := range cases {
		input := validCreateInput()
		input.PromoCode = fmt.Sprintf("RULES%d", i)
		input.Kind = constants.PromoKindCustomItems
		input.Rules = rules
		if _, err := svc.Create(input); !errors.Is(err, ErrPromotionRuleInvalid) {
			t.Fatalf("case %d: expected rule error, got: %v", i, err)
		}
	}
}

func TestAdminUpdatePartialFields(t *testing.T) {
	svc, _ := setupPromotionAdminServiceTest(t)
	promo, err := svc.Create(validCreateInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	title := "改名后的活动"
	updated, err := svc.Update(promo.ID, UpdatePromotionInput{Title: &title})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Title != title {
		t.Fatalf("title not applied: %s", updated.Title)
	}
	if updated.PromoCode != promo.PromoCode || !updated.Value.Decimal.Equal(promo.Value.Decimal) {
		t.Fatalf("untouched fields must keep their values")
	}
}

func TestAdminUpdateUsageLimitNullLiftsCap(t *testing.T) {
	svc, db := setupPromotionAdminServiceTest(t)
	input := validCreateInput()
	limit := 5
	input.UsageLimit = &limit
	promo, err := svc.Create(input)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// usage_limit 显式为 null：取消上限
	if _, err := svc.Update(promo.ID, UpdatePromotionInput{UsageLimitSet: true, UsageLimit: nil}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	var stored models.Promotion
	if err := db.First(&stored, promo.ID).Error; err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if stored.UsageLimit != nil {
		t.Fatalf("expected usage limit lifted, got: %v", *stored.UsageLimit)
	}

	// 字段缺省：保持不变
	newLimit := 7
	if _, err := svc.Update(promo.ID, UpdatePromotionInput{UsageLimitSet: true, UsageLimit: &newLimit}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if _, err := svc.Update(promo.ID, UpdatePromotionInput{}); err != nil {
		t.Fatalf("empty update failed: %v", err)
	}
	if err := db.First(&stored, promo.ID).Error; err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if stored.UsageLimit == nil || *stored.UsageLimit != 7 {
		t.Fatalf("absent field must not change usage limit, got: %v", stored.UsageLimit)
	}
}

func TestAdminUpdateRejectsInvertedWindow(t *testing.T) {
	svc, _ := setupPromotionAdminServiceTest(t)
	promo, err := svc.Create(validCreateInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	badStart := promo.EndAt.Add(time.Hour)
	_, err = svc.Update(promo.ID, UpdatePromotionInput{StartAt: &badStart})
	if !errors.Is(err, ErrPromotionInvalid) {
		t.Fatalf("expected invalid window error, got: %v", err)
	}
}

func TestAdminUpdateKindSwitchRevalidates(t *testing.T) {
	svc, _ := setupPromotionAdminServiceTest(t)
	promo, err := svc.Create(validCreateInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// 改成 CUSTOM_ITEMS 但没有提供规则，应按最终类型复核并拒绝
	kind := constants.PromoKindCustomItems
	_, err = svc.Update(promo.ID, UpdatePromotionInput{Kind: &kind})
	if !errors.Is(err, ErrPromotionRuleInvalid) {
		t.Fatalf("expected rule error on kind switch, got: %v", err)
	}

	rules := models.RuleSet{
		Items: []models.ItemRule{
			{ItemID: "burger", DiscountType: constants.DiscountTypeFixed, DiscountValue: models.NewMoneyFromDecimal(decimal.NewFromInt(5))},
		},
	}
	updated, err := svc.Update(promo.ID, UpdatePromotionInput{Kind: &kind, Rules: &rules})
	if err != nil {
		t.Fatalf("update with rules failed: %v", err)
	}
	if !updated.Value.Decimal.Equal(decimal.Zero) {
		t.Fatalf("value must be zeroed on switch to custom items")
	}
}

func TestAdminUpdateDuplicateCode(t *testing.T) {
	svc, _ := setupPromotionAdminServiceTest(t)
	if _, err := svc.Create(validCreateInput()); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	other := validCreateInput()
	other.PromoCode = "OTHER"
	promo, err := svc.Create(other)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	conflicting := "WELCOME10"
	_, err = svc.Update(promo.ID, UpdatePromotionInput{PromoCode: &conflicting})
	if !errors.Is(err, ErrPromotionCodeExists) {
		t.Fatalf("expected duplicate code error, got: %v", err)
	}
}

func TestAdminToggleStatus(t *testing.T) {
	svc, _ := setupPromotionAdminServiceTest(t)
	promo, err := svc.Create(validCreateInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	toggled, err := svc.ToggleStatus(promo.ID)
	if err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if toggled.Status != constants.PromoStatusInactive {
		t.Fatalf("expected inactive after toggle, got: %s", toggled.Status)
	}
	toggled, err = svc.ToggleStatus(promo.ID)
	if err != nil {
		t.Fatalf("second toggle failed: %v", err)
	}
	if toggled.Status != constants.PromoStatusActive {
		t.Fatalf("expected active after second toggle, got: %s", toggled.Status)
	}
}

func TestAdminDeletePromotion(t *testing.T) {
	svc, _ := setupPromotionAdminServiceTest(t)
	promo, err := svc.Create(validCreateInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := svc.Delete(promo.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := svc.Delete(promo.ID); !errors.Is(err, ErrPromotionNotFound) {
		t.Fatalf("expected not found on second delete, got: %v", err)
	}
	if _, err := svc.Get(promo.ID); !errors.Is(err, ErrPromotionNotFound) {
		t.Fatalf("expected not found on get, got: %v", err)
	}
}

func TestAdminListUnknownFilter(t *testing.T) {
	svc, _ := setupPromotionAdminServiceTest(t)

	_, _, err := svc.List(repository.PromotionListFilter{Scope: "bogus", Now: time.Now(), Page: 1, PageSize: 10})
	if !errors.Is(err, ErrPromotionInvalid) {
		t.Fatalf("expected invalid filter error, got: %v", err)
	}
}
