package v1

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"dns_manager/api/v1/accounts"
	"dns_manager/api/v1/activitylogs"
	"dns_manager/api/v1/auth"
	"dns_manager/api/v1/dns"
	"dns_manager/api/v1/domains"
	"dns_manager/api/v1/middleware"
	"dns_manager/api/v1/presets"
	"dns_manager/internal/activity"
	"dns_manager/internal/cloudflare"
	"dns_manager/internal/config"
	"dns_manager/internal/httpx"
	"dns_manager/internal/model"
	"dns_manager/internal/reconcile"
	"dns_manager/internal/store"
)

// SetupRouter sets up the API v1 routes
func SetupRouter(r *gin.Engine, db *gorm.DB, cfg *config.Config) {
	st := store.New(db)
	newClient := func(account *model.CloudflareAccount) reconcile.ZoneAPI {
		return cloudflare.NewClient(account)
	}
	engine := reconcile.New(reconcile.Config{
		Records:     st,
		Domains:     st,
		NewClient:   newClient,
		Audit:       activity.NewDBLogger(db),
		Logger:      logrus.NewEntry(logrus.StandardLogger()),
		MaxAttempts: cfg.Sync.MaxAttempts,
		BackoffBase: time.Duration(cfg.Sync.BackoffBaseMs) * time.Millisecond,
	})
	applier := reconcile.NewApplier(engine, st)

	accountsHandler := accounts.NewHandler(db, newClient)
	domainsHandler := domains.NewHandler(db, engine, applier)
	optionsHandler := domains.NewOptionsHandler(db)
	recordsHandler := dns.NewHandler(db, engine)
	presetsHandler := presets.NewHandler(db)
	logsHandler := activitylogs.NewHandler(db)

	v1 := r.Group("/api/v1")
	{
		// Public routes (no authentication required)
		v1.GET("/ping", pingHandler)

		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/login", auth.LoginHandler(db, cfg))
		}

		// Protected routes (authentication required)
		protected := v1.Group("")
		protected.Use(middleware.AuthRequired())
		{
			protected.GET("/me", auth.MeHandler())
			protected.POST("/auth/logout", auth.LogoutHandler())
			protected.POST("/auth/change-password", auth.ChangePasswordHandler(db))

			accountsGroup := protected.Group("/cloudflare-accounts")
			{
				accountsGroup.GET("", accountsHandler.List)
				accountsGroup.POST("/create", accountsHandler.Create)
				accountsGroup.POST("/update", accountsHandler.Update)
				accountsGroup.POST("/delete", accountsHandler.Delete)
				accountsGroup.POST("/import-zones", accountsHandler.ImportZones)
				accountsGroup.GET("/:id/zones", accountsHandler.Zones)
				accountsGroup.POST("/:id/test-connection", accountsHandler.TestConnection)
			}

			domainsGroup := protected.Group("/domains")
			{
				domainsGroup.GET("", domainsHandler.List)
				domainsGroup.GET("/options", optionsHandler.GetOptions)
				domainsGroup.POST("/create", domainsHandler.Create)
				domainsGroup.POST("/update", domainsHandler.Update)
				domainsGroup.POST("/delete", domainsHandler.Delete)
				domainsGroup.GET("/:id", domainsHandler.Get)
				domainsGroup.POST("/:id/sync-from-cloudflare", domainsHandler.Sync)
				domainsGroup.POST("/:id/push-to-cloudflare", domainsHandler.Push)
				domainsGroup.POST("/:id/apply-preset", domainsHandler.ApplyPreset)

				domainsGroup.GET("/:id/records", recordsHandler.List)
				domainsGroup.POST("/:id/records/create", recordsHandler.Create)
				domainsGroup.POST("/:id/records/:recordId/update", recordsHandler.Update)
				domainsGroup.POST("/:id/records/:recordId/delete", recordsHandler.Delete)
				domainsGroup.POST("/:id/records/:recordId/toggle-proxy", recordsHandler.ToggleProxy)
			}

			presetsGroup := protected.Group("/presets")
			{
				presetsGroup.GET("", presetsHandler.List)
				presetsGroup.GET("/:id", presetsHandler.Get)
				presetsGroup.POST("/create", presetsHandler.Create)
				presetsGroup.POST("/update", presetsHandler.Update)
				presetsGroup.POST("/delete", presetsHandler.Delete)
			}

			protected.GET("/activity-logs", logsHandler.List)
		}
	}
}

// pingHandler handles the ping request using unified response
func pingHandler(c *gin.Context) {
	httpx.OK(c, gin.H{
		"pong": true,
	})
}
