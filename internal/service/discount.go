package service

import (
	"github.com/dinepromo/internal/constants"
	"github.com/dinepromo/internal/models"

	"github.com/shopspring/decimal"
)

// calculateItemDiscounts 计算单品折扣明细。
// 每个订单行最多匹配一条规则（按 item_id 首次命中），未命中的行不产生折扣。
func calculateItemDiscounts(orderedItems []models.OrderedItem, rules []models.ItemRule) []models.ItemDiscountLine {
	lines := make([]models.ItemDiscountLine, 0, len(orderedItems))
	for _, item := range orderedItems {
		rule, ok := findItemRule(rules, item.ItemID)
		if !ok {
			continue
		}
		quantity := decimal.NewFromInt(int64(item.Quantity))
		var discount decimal.Decimal
		switch rule.DiscountType {
		case constants.DiscountTypeFixed:
			discount = rule.DiscountValue.Decimal.Mul(quantity)
		case constants.DiscountTypePercentage:
			itemTotal := item.UnitPrice.Decimal.Mul(quantity)
			discount = itemTotal.Mul(rule.DiscountValue.Decimal).Div(decimal.NewFromInt(100))
		default:
			continue
		}
		lines = append(lines, models.ItemDiscountLine{
			ItemID:   item.ItemID,
			Discount: models.NewMoneyFromDecimal(discount),
		})
	}
	return lines
}

// calculateComboDiscounts 计算套餐折扣明细。
// 套餐按"全有或全无"生效：订单包含套餐全部菜品（数量 ≥ 1 即可）时一次性奖励，
// 不随菜品重复次数叠加。套餐与单品规则相互独立、可叠加。
func calculateComboDiscounts(orderedItems []models.OrderedItem, combos []models.ComboRule) []models.ComboDiscountLine {
	lines := make([]models.ComboDiscountLine, 0, len(combos))
	for _, combo := range combos {
		if !orderContainsAll(orderedItems, combo.ItemIDs) {
			continue
		}

		comboTotal := decimal.Zero
		for _, itemID := range combo.ItemIDs {
			for _, item := range orderedItems {
				if item.ItemID == itemID {
					quantity := decimal.NewFromInt(int64(item.Quantity))
					comboTotal = comboTotal.Add(item.UnitPrice.Decimal.Mul(quantity))
					break
				}
			}
		}

		var discount decimal.Decimal
		switch combo.DiscountType {
		case constants.DiscountTypeFixed:
			discount = combo.DiscountValue.Decimal
		case constants.DiscountTypePercentage:
			discount = comboTotal.Mul(combo.DiscountValue.Decimal).Div(decimal.NewFromInt(100))
		default:
			continue
		}
		lines = append(lines, models.ComboDiscountLine{
			ComboName: combo.ComboName,
			ItemIDs:   combo.ItemIDs,
			Discount:  models.NewMoneyFromDecimal(discount),
		})
	}
	return lines
}

// sumDiscountLines 汇总单品与套餐折扣
func sumDiscountLines(breakdown *models.DiscountBreakdown) decimal.Decimal {
	total := decimal.Zero
	if breakdown == nil {
		return total
	}
	for _, line := range breakdown.ItemDiscounts {
		total = total.Add(line.Discount.Decimal)
	}
	for _, line := range breakdown.ComboDiscounts {
		total = total.Add(line.Discount.Decimal)
	}
	return total
}

func findItemRule(rules []models.ItemRule, itemID string) (models.ItemRule, bool) {
	for _, rule := range rules {
		if rule.ItemID == itemID {
			return rule, true
		}
	}
	return models.ItemRule{}, false
}

func orderContainsAll(orderedItems []models.OrderedItem, itemIDs []string) bool {
	if len(itemIDs) == 0 {
		return false
	}
	for _, itemID := range itemIDs {
		found := false
		for _, item := range orderedItems {
			if item.ItemID == itemID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
