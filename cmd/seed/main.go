package main

import (
	"time"

	"github.com/dinepromo/internal/config"
	"github.com/dinepromo/internal/constants"
	"github.com/dinepromo/internal/logger"
	"github.com/dinepromo/internal/models"

	"github.com/shopspring/decimal"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 初始化默认管理员
	if err := models.InitDefaultAdmin("", ""); err != nil {
		stdLog.Printf("Failed to init default admin: %v", err)
	}

	now := time.Now()
	usageLimit := 100

	// 添加示例促销活动
	promotions := []models.Promotion{
		{
			PromoCode:      "WELCOME10",
			Title:          "新客立减",
			Description:    "满 100 立减 20",
			Kind:           constants.PromoKindFixed,
			Value:          models.NewMoneyFromDecimal(decimal.NewFromInt(20)),
			MinOrderAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
			UsageLimit:     &usageLimit,
			StartAt:        now.AddDate(0, 0, -1),
			EndAt:          now.AddDate(0, 1, 0),
			Status:         constants.PromoStatusActive,
		},
		{
			PromoCode:         "HALFOFF",
			Title:             "周年庆五折",
			Description:       "全场五折，单笔最高优惠 30",
			Kind:              constants.PromoKindPercentage,
			Value:             models.NewMoneyFromDecimal(decimal.NewFromInt(50)),
			MaxDiscountAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(30)),
			StartAt:           now.AddDate(0, 0, -1),
			EndAt:             now.AddDate(0, 0, 14),
			Status:            constants.PromoStatusActive,
		},
		{
			PromoCode:   "COMBOMEAL",
			Title:       "招牌套餐优惠",
			Description: "汉堡配薯条立减 5，套餐再减 3",
			Kind:        constants.PromoKindCustomItems,
			StartAt:     now.AddDate(0, 0, -1),
			EndAt:       now.AddDate(0, 1, 0),
			Status:      constants.PromoStatusActive,
			Rules: models.RuleSet{
				Items: []models.ItemRule{
					{
						ItemID:        "burger-classic",
						DiscountType:  constants.DiscountTypeFixed,
						DiscountValue: models.NewMoneyFromDecimal(decimal.NewFromInt(5)),
					},
				},
				Combos: []models.ComboRule{
					{
						ComboName:     "经典套餐",
						ItemIDs:       []string{"burger-classic", "fries-large"},
						DiscountType:  constants.DiscountTypeFixed,
						DiscountValue: models.NewMoneyFromDecimal(decimal.NewFromInt(3)),
					},
				},
			},
		},
	}

	for _, promo := range promotions {
		var existing models.Promotion
		if err := models.DB.Where("promo_code = ?", promo.PromoCode).First(&existing).Error; err != nil {
			// 不存在则创建
			if err := models.DB.Create(&promo).Error; err != nil {
				stdLog.Printf("Failed to create promotion %s: %v", promo.PromoCode, err)
			} else {
				stdLog.Printf("Created promotion: %s", promo.PromoCode)
			}
		} else {
			stdLog.Printf("Promotion already exists: %s", promo.PromoCode)
		}
	}

	stdLog.Printf("Seed finished")
}
