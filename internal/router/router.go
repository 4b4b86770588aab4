package router

import (
	"fmt"
	"strings"

	"github.com/dinepromo/internal/cache"
	"github.com/dinepromo/internal/config"
	adminhandlers "github.com/dinepromo/internal/http/handlers/admin"
	publichandlers "github.com/dinepromo/internal/http/handlers/public"
	"github.com/dinepromo/internal/logger"
	"github.com/dinepromo/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按前台/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "dp"
	}
	redisClient := cache.Client()
	validateRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:validate", redisPrefix),
		WindowSeconds: cfg.Security.ValidateRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.ValidateRateLimit.MaxRequests,
		Message:       "too many validation attempts, slow down",
	}
	adminLoginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:admin_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxRequests,
		Message:       "too many login attempts, try again later",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 公开接口
		promotions := apiV1.Group("/promotions")
		{
			promotions.GET("/active", publicHandler.GetActivePromotions)
			promotions.POST("/validate",
				RateLimitMiddleware(redisClient, validateRule, KeyByIPAndJSONField("promo_code")),
				publicHandler.ValidatePromotion,
			)
		}

		// 管理员接口
		admin := apiV1.Group("/admin")
		{
			// 登录接口（无需鉴权）
			admin.POST("/login", RateLimitMiddleware(redisClient, adminLoginRule, KeyByIP), adminHandler.AdminLogin)

			// 需要鉴权的接口
			authorized := admin.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.AdminRepo))
			{
				authorized.GET("/promotions", adminHandler.GetAdminPromotions)
				authorized.GET("/promotions/:id", adminHandler.GetAdminPromotion)
				authorized.POST("/promotions", adminHandler.CreatePromotion)
				authorized.PUT("/promotions/:id", adminHandler.UpdatePromotion)
				authorized.POST("/promotions/:id/toggle", adminHandler.TogglePromotionStatus)
				authorized.DELETE("/promotions/:id", adminHandler.DeletePromotion)
				authorized.GET("/promotions/:id/redemptions", adminHandler.GetPromotionRedemptions)
			}
		}
	}

	return r
}
