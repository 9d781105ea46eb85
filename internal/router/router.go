package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tourshop/internal/authz"
	"github.com/tourshop/internal/cache"
	"github.com/tourshop/internal/config"
	adminhandlers "github.com/tourshop/internal/http/handlers/admin"
	publichandlers "github.com/tourshop/internal/http/handlers/public"
	"github.com/tourshop/internal/http/response"
	"github.com/tourshop/internal/logger"
	"github.com/tourshop/internal/provider"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter builds the storefront and admin routes.
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "ts"
	}
	redisClient := cache.Client()
	adminLoginRule := RateLimitRule{
		Name:          "admin_login",
		Prefix:        fmt.Sprintf("%s:rate:admin_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
	}
	checkoutRule := RateLimitRule{
		Name:          "checkout",
		Prefix:        fmt.Sprintf("%s:rate:checkout", redisPrefix),
		WindowSeconds: cfg.Security.CheckoutRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.CheckoutRateLimit.MaxAttempts,
	}
	giftCardRule := RateLimitRule{
		Name:          "gift_card",
		Prefix:        fmt.Sprintf("%s:rate:gift_card", redisPrefix),
		WindowSeconds: cfg.Security.GiftCardRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.GiftCardRateLimit.MaxAttempts,
	}

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	{
		apiV1.GET("/tours", publicHandler.ListTours)
		apiV1.GET("/tours/:id", publicHandler.GetTour)
		apiV1.GET("/webshop/items", publicHandler.ListWebshopItems)
		apiV1.GET("/webshop/items/:uuid", publicHandler.GetWebshopItem)
		apiV1.GET("/faq", publicHandler.ListFAQ)
		apiV1.GET("/press", publicHandler.ListPress)

		checkout := apiV1.Group("/checkout")
		checkout.Use(RateLimitMiddleware(redisClient, checkoutRule, KeyByIP))
		{
			checkout.POST("/tour", publicHandler.CreateTourCheckout)
			checkout.POST("/webshop", publicHandler.CreateWebshopCheckout)
		}

		giftCards := apiV1.Group("/gift-cards")
		giftCards.Use(RateLimitMiddleware(redisClient, giftCardRule, KeyByIP))
		{
			giftCards.POST("/validate", publicHandler.ValidateGiftCard)
			giftCards.POST("/balance", publicHandler.GetGiftCardBalance)
		}

		cart := apiV1.Group("/cart")
		{
			cart.POST("", publicHandler.OpenCart)
			cart.GET("", publicHandler.GetCart)
			cart.DELETE("", publicHandler.CloseCart)
			cart.POST("/items", publicHandler.AddCartItem)
			cart.DELETE("/items/:uuid", publicHandler.RemoveCartItem)
			cart.POST("/favorites/:uuid", publicHandler.ToggleCartFavorite)
		}

		apiV1.POST("/stripe/webhook", publicHandler.StripeWebhook)

		admin := apiV1.Group("/admin")
		{
			admin.POST("/login", RateLimitMiddleware(redisClient, adminLoginRule, KeyByIPAndJSONField("username")), adminHandler.AdminLogin)

			authorized := admin.Use(JWTAuthMiddleware(c.AuthService), AdminRBACMiddleware(c.AuthzService))
			{
				authorized.GET("/me", adminHandler.GetAdminMe)
				authorized.PUT("/password", adminHandler.UpdateAdminPassword)

				// Tours
				authorized.GET("/tours", adminHandler.ListTours)
				authorized.GET("/tours/:id", adminHandler.GetTour)
				authorized.POST("/tours", adminHandler.CreateTour)
				authorized.PUT("/tours/:id", adminHandler.UpdateTour)
				authorized.DELETE("/tours/:id", adminHandler.DeleteTour)

				// Webshop
				authorized.GET("/webshop-items", adminHandler.ListWebshopItems)
				authorized.GET("/webshop-items/:uuid", adminHandler.GetWebshopItem)
				authorized.POST("/webshop-items", adminHandler.CreateWebshopItem)
				authorized.PUT("/webshop-items/:uuid", adminHandler.UpdateWebshopItem)
				authorized.DELETE("/webshop-items/:uuid", adminHandler.DeleteWebshopItem)

				// Content
				authorized.GET("/faq", adminHandler.ListFAQ)
				authorized.POST("/faq", adminHandler.CreateFAQ)
				authorized.PUT("/faq/:id", adminHandler.UpdateFAQ)
				authorized.DELETE("/faq/:id", adminHandler.DeleteFAQ)
				authorized.GET("/press", adminHandler.ListPress)
				authorized.POST("/press", adminHandler.CreatePress)
				authorized.PUT("/press/:id", adminHandler.UpdatePress)
				authorized.DELETE("/press/:id", adminHandler.DeletePress)
				authorized.POST("/content/reorder", adminHandler.ReorderContent)

				// Gift cards
				authorized.GET("/gift-cards", adminHandler.ListGiftCards)
				authorized.POST("/gift-cards", adminHandler.CreateGiftCard)
				authorized.GET("/gift-cards/:id", adminHandler.GetGiftCard)
				authorized.PUT("/gift-cards/:id", adminHandler.UpdateGiftCard)
				authorized.DELETE("/gift-cards/:id", adminHandler.DeleteGiftCard)
				authorized.POST("/gift-cards/:id/adjust", adminHandler.AdjustGiftCard)

				// Bookings and profiles
				authorized.GET("/pending-bookings", adminHandler.ListPendingBookings)
				authorized.GET("/bookings", adminHandler.ListBookings)
				authorized.GET("/bookings/:id", adminHandler.GetBooking)
				authorized.GET("/profiles", adminHandler.ListProfiles)
				authorized.PATCH("/profiles/:id", adminHandler.UpdateProfile)

				// Inventory sync
				authorized.POST("/catalog-sync", adminHandler.TriggerCatalogSync)
				authorized.GET("/catalog-sync/runs", adminHandler.ListCatalogSyncRuns)

				// Access control
				authorized.GET("/authz/me", adminHandler.GetAuthzMe)
				authorized.GET("/authz/roles", adminHandler.ListAuthzRoles)
				authorized.POST("/authz/roles", adminHandler.CreateAuthzRole)
				authorized.GET("/authz/roles/:role/policies", adminHandler.GetAuthzRolePolicies)
				authorized.POST("/authz/policies", adminHandler.GrantAuthzPolicy)
				authorized.GET("/authz/admins", adminHandler.ListAuthzAdmins)
				authorized.GET("/authz/admins/:id/roles", adminHandler.GetAuthzAdminRoles)
				authorized.PUT("/authz/admins/:id/roles", adminHandler.SetAuthzAdminRoles)
				authorized.GET("/authz/permissions/catalog", func(ctx *gin.Context) {
					response.Success(ctx, buildAdminPermissionCatalog(r))
				})
			}
		}
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}

type adminPermissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

func buildAdminPermissionCatalog(engine *gin.Engine) []adminPermissionCatalogItem {
	if engine == nil {
		return []adminPermissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]adminPermissionCatalogItem, 0, len(routes))

	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !strings.HasPrefix(item.Path, "/api/v1/admin/") {
			continue
		}
		if item.Path == "/api/v1/admin/login" {
			continue
		}
		object := authz.NormalizeObject(item.Path)
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, adminPermissionCatalogItem{
			Module:     deriveAdminPermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module == items[j].Module {
			if items[i].Object == items[j].Object {
				return items[i].Method < items[j].Method
			}
			return items[i].Object < items[j].Object
		}
		return items[i].Module < items[j].Module
	})

	return items
}

func deriveAdminPermissionModule(object string) string {
	normalized := strings.TrimPrefix(strings.TrimSpace(object), "/")
	if normalized == "" {
		return "system"
	}
	segments := strings.Split(normalized, "/")
	if len(segments) <= 1 {
		return segments[0]
	}
	if segments[0] != "admin" {
		return segments[0]
	}
	if segments[1] == "authz" {
		return "authz"
	}
	return segments[1]
}
