package service

import (
	"testing"

	"github.com/dinepromo/internal/constants"
	"github.com/dinepromo/internal/models"

	"github.com/shopspring/decimal"
)

func TestCalculateItemDiscountsFixedPerUnit(t *testing.T) {
	lines := calculateItemDiscounts(
		[]models.OrderedItem{
			{ItemID: "burger", Quantity: 3, UnitPrice: models.NewMoneyFromDecimal(decimal.NewFromInt(20))},
			{ItemID: "cola", Quantity: 2, UnitPrice: models.NewMoneyFromDecimal(decimal.NewFromInt(6))},
		},
		[]models.ItemRule{
			{ItemID: "burger", DiscountType: constants.DiscountTypeFixed, DiscountValue: models.NewMoneyFromDecimal(decimal.NewFromInt(4))},
		},
	)
	if len(lines) != 1 {
		t.Fatalf("expected one matched line, got %d", len(lines))
	}
	// 固定折扣按数量叠加：4 x 3
	if !lines[0].Discount.Decimal.Equal(decimal.NewFromInt(12)) {
		t.Fatalf("unexpected discount: %s", lines[0].Discount.String())
	}
}

func TestCalculateItemDiscountsPercentage(t *testing.T) {
	lines := calculateItemDiscounts(
		[]models.OrderedItem{
			{ItemID: "pizza", Quantity: 2, UnitPrice: models.NewMoneyFromDecimal(decimal.NewFromInt(50))},
		},
		[]models.ItemRule{
			{ItemID: "pizza", DiscountType: constants.DiscountTypePercentage, DiscountValue: models.NewMoneyFromDecimal(decimal.NewFromInt(25))},
		},
	)
	if len(lines) != 1 {
		t.Fatalf("expected one matched line, got %d", len(lines))
	}
	if !lines[0].Discount.Decimal.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("unexpected discount: %s", lines[0].Discount.String())
	}
}

func TestCalculateItemDiscountsNoMatch(t *testing.T) {
	lines := calculateItemDiscounts(
		[]models.OrderedItem{
			{ItemID: "salad", Quantity: 1, UnitPrice: models.NewMoneyFromDecimal(decimal.NewFromInt(15))},
		},
		[]models.ItemRule{
			{ItemID: "burger", DiscountType: constants.DiscountTypeFixed, DiscountValue: models.NewMoneyFromDecimal(decimal.NewFromInt(4))},
		},
	)
	if len(lines) != 0 {
		t.Fatalf("expected no matched lines, got %d", len(lines))
	}
}

func TestCalculateComboDiscountsAllOrNothing(t *testing.T) {
	combos := []models.ComboRule{
		{
			ComboName:     "双人餐",
			ItemIDs:       []string{"burger", "fries"},
			DiscountType:  constants.DiscountTypeFixed,
			DiscountValue: models.NewMoneyFromDecimal(decimal.NewFromInt(8)),
		},
	}

	// 套餐缺一个菜品时不生效
	lines := calculateComboDiscounts(
		[]models.OrderedItem{
			{ItemID: "burger", Quantity: 1, UnitPrice: models.NewMoneyFromDecimal(decimal.NewFromInt(20))},
		},
		combos,
	)
	if len(lines) != 0 {
		t.Fatalf("incomplete combo must not apply, got %d lines", len(lines))
	}

	// 齐全时一次性生效，不随数量叠加
	lines = calculateComboDiscounts(
		[]models.OrderedItem{
			{ItemID: "burger", Quantity: 5, UnitPrice: models.NewMoneyFromDecimal(decimal.NewFromInt(20))},
			{ItemID: "fries", Quantity: 5, UnitPrice: models.NewMoneyFromDecimal(decimal.NewFromInt(10))},
		},
		combos,
	)
	if len(lines) != 1 {
		t.Fatalf("expected combo applied once, got %d lines", len(lines))
	}
	if !lines[0].Discount.Decimal.Equal(decimal.NewFromInt(8)) {
		t.Fatalf("unexpected combo discount: %s", lines[0].Discount.String())
	}
}

func TestCalculateComboDiscountsPercentageOverComboSubtotal(t *testing.T) {
	lines := calculateComboDiscounts(
		[]models.OrderedItem{
			{ItemID: "burger", Quantity: 2, UnitPrice: models.NewMoneyFromDecimal(decimal.NewFromInt(20))},
			{ItemID: "fries", Quantity: 1, UnitPrice: models.NewMoneyFromDecimal(decimal.NewFromInt(10))},
			{ItemID: "cola", Quantity: 1, UnitPrice: models.NewMoneyFromDecimal(decimal.NewFromInt(6))},
		},
		[]models.ComboRule{
			{
				ComboName:     "汉堡薯条",
				ItemIDs:       []string{"burger", "fries"},
				DiscountType:  constants.DiscountTypePercentage,
				DiscountValue: models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
			},
		},
	)
	if len(lines) != 1 {
		t.Fatalf("expected one combo line, got %d", len(lines))
	}
	// 基数只含套餐菜品：2x20 + 1x10 = 50，10% = 5
	if !lines[0].Discount.Decimal.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("unexpected combo discount: %s", lines[0].Discount.String())
	}
}

func TestSumDiscountLinesAdditive(t *testing.T) {
	breakdown := &models.DiscountBreakdown{
		ItemDiscounts: []models.ItemDiscountLine{
			{ItemID: "burger", Discount: models.NewMoneyFromDecimal(decimal.NewFromInt(4))},
			{ItemID: "pizza", Discount: models.NewMoneyFromDecimal(decimal.NewFromInt(6))},
		},
		ComboDiscounts: []models.ComboDiscountLine{
			{ComboName: "双人餐", Discount: models.NewMoneyFromDecimal(decimal.NewFromInt(8))},
		},
	}
	if !sumDiscountLines(breakdown).Equal(decimal.NewFromInt(18)) {
		t.Fatalf("expected additive total 18, got: %s", sumDiscountLines(breakdown).String())
	}
	if !sumDiscountLines(nil).Equal(decimal.Zero) {
		t.Fatalf("nil breakdown must sum to zero")
	}
}
