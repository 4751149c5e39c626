package main

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/paritbhardwaj019/pathosaathi/internal/auth"
	"github.com/paritbhardwaj019/pathosaathi/internal/branding"
	"github.com/paritbhardwaj019/pathosaathi/internal/handler"
	"github.com/paritbhardwaj019/pathosaathi/internal/middleware"
	"github.com/paritbhardwaj019/pathosaathi/internal/model"
	"github.com/paritbhardwaj019/pathosaathi/internal/tenant"
	"github.com/paritbhardwaj019/pathosaathi/pkg/cache"
	"github.com/paritbhardwaj019/pathosaathi/pkg/config"
	"github.com/paritbhardwaj019/pathosaathi/pkg/database"
	"github.com/paritbhardwaj019/pathosaathi/pkg/jwtutil"
	"github.com/paritbhardwaj019/pathosaathi/pkg/logger"
	"github.com/paritbhardwaj019/pathosaathi/prometheus"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	if err := logger.InitLogger(&logger.LogConfig{
		Level:       cfg.Log.Level,
		Environment: cfg.Server.Env,
		ServiceName: cfg.ServiceName,
	}); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	log.Info("Starting pathosaathi backend...", zap.String("environment", cfg.Server.Env))

	// Initialize database
	db, err := database.InitDB(&cfg.DB)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Redis-backed rate limiting and session registry
	store := cache.New(cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, log)

	// Tenant routing core
	tenant.SetReservedSubdomains(cfg.Platform.ReservedSubdomains)
	registry := tenant.NewRegistry()
	router := tenant.NewRouter(db, registry, cfg.Platform.RootTenantPrefix)
	configStore := tenant.NewConfigStore(router)
	generator := tenant.NewGenerator(db, router, configStore)
	resolver := tenant.NewResolver(router, tenant.ResolverConfig{
		ApexDomain:  cfg.Platform.ApexDomain,
		MainDomains: cfg.Platform.MainDomains(),
	})

	// Pre-create the root tenant's collections so the platform can serve
	// before the first partner is onboarded.
	for _, entity := range []string{
		tenant.EntityUser, tenant.EntityPartner, tenant.EntityBranding,
		tenant.EntityTheme, tenant.EntityFont, tenant.EntityIdentifierConfig,
		tenant.EntityIdentifierCounter,
	} {
		if _, err := router.Handle(cfg.Platform.RootTenantPrefix, entity); err != nil {
			log.Fatal("Failed to prepare root collection", zap.String("entity", entity), zap.Error(err))
		}
	}

	// Domain-bound token service
	jwt := jwtutil.New(&jwtutil.Config{
		SigningKey: cfg.JWT.SigningKey,
		Issuer:     cfg.Platform.ApexDomain,
		AccessTTL:  cfg.JWT.AccessTTL,
		RefreshTTL: cfg.JWT.RefreshTTL,
	})
	authService := auth.NewService(router, jwt, store, cfg.Platform.ApexDomain, cfg.JWT.RefreshTTL)
	brandingService := branding.NewService(router)

	// Handlers
	authHandler := handler.NewAuthHandler(authService, cfg.JWT.RefreshTTL, cfg.Server.IsProduction())
	brandingHandler := handler.NewBrandingHandler(brandingService, router)
	partnerHandler := handler.NewPartnerHandler(router, generator, cfg.Platform.ApexDomain, cfg.PageSize)
	userHandler := handler.NewUserHandler(router, generator)
	planHandler := handler.NewPlanHandler(router, generator)
	identifierHandler := handler.NewIdentifierConfigHandler(configStore)

	// Initialize Echo framework
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = handler.ErrorHandler(cfg.Server.IsProduction())

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware())
	e.Use(logger.Middleware())
	e.Use(prometheus.MetricsMiddleware())
	e.Use(middleware.TenantContextMiddleware(resolver))

	requireAuth := middleware.AuthMiddleware(authService)

	// Public routes - no authentication required
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", handler.MetricsHandler)

	// Authentication routes
	authGroup := e.Group("/auth")
	authGroup.POST("/login", authHandler.Login,
		middleware.LoginRateLimit(store, cfg.RateLimit.Window, cfg.RateLimit.MaxAttempts))
	authGroup.POST("/refresh", authHandler.Refresh)
	authGroup.GET("/me", authHandler.Me, requireAuth)
	authGroup.POST("/logout", authHandler.Logout, middleware.OptionalAuth(authService))

	api := e.Group("/api")

	// Branding surface: tenant-aware reads are public, writes are gated
	brandingGroup := api.Group("/branding")
	brandingGroup.GET("/config", brandingHandler.Config)
	brandingGroup.GET("/simple", brandingHandler.Simple)
	brandingGroup.GET("/css", brandingHandler.CSS)
	brandingGroup.GET("/fonts", brandingHandler.Fonts)
	brandingGroup.GET("/themes", brandingHandler.Themes)
	brandingGroup.GET("/tenant-info", brandingHandler.TenantInfo)
	brandingGroup.PUT("/partner/:partnerId", brandingHandler.UpdatePartner, requireAuth)
	brandingGroup.POST("/partner/:partnerId/reset", brandingHandler.ResetPartner,
		requireAuth, middleware.RequireRole(model.RoleSuperadmin))

	// Partner onboarding and lifecycle
	partners := api.Group("/partners")
	partners.POST("", partnerHandler.Create, middleware.OptionalAuth(authService))
	partners.GET("", partnerHandler.List, requireAuth, middleware.RequireRole(model.RoleCustomerSupport))
	partners.GET("/:id", partnerHandler.Get, requireAuth, middleware.RequireRole(model.RoleCustomerSupport))
	partners.PUT("/:id", partnerHandler.Update, requireAuth, middleware.RequireRole(model.RoleCustomerSupport))
	partners.POST("/:id/payment-status", partnerHandler.PaymentStatus,
		requireAuth, middleware.RequireRole(model.RoleSuperadmin))

	// Tenant staff management
	users := api.Group("/users", requireAuth)
	users.POST("", userHandler.Create, middleware.RequireRole(model.RoleLabOwner))
	users.GET("", userHandler.List, middleware.RequireRole(model.RoleLabOwner))

	// Pricing catalog
	plans := api.Group("/plans", requireAuth, middleware.RequireRole(model.RoleLabOwner))
	plans.GET("", planHandler.ListPlans)
	plans.POST("", planHandler.CreatePlan)
	plans.PUT("/:id", planHandler.UpdatePlan)
	planTypes := api.Group("/plan-types", requireAuth, middleware.RequireRole(model.RoleLabOwner))
	planTypes.GET("", planHandler.ListPlanTypes)
	planTypes.POST("", planHandler.CreatePlanType)

	// Identifier configuration
	idConfig := api.Group("/identifier-config", requireAuth, middleware.RequireRole(model.RolePartner))
	idConfig.GET("", identifierHandler.Get)
	idConfig.PUT("", identifierHandler.Upsert)
	idConfig.GET("/templates", identifierHandler.Templates)
	idConfig.POST("/template", identifierHandler.ApplyTemplate)
	idConfig.POST("/validate", identifierHandler.Validate)
	idConfig.GET("/preview", identifierHandler.Preview)

	// Start server
	log.Info("Starting server", zap.String("port", cfg.Server.Port))
	if err := e.Start(":" + cfg.Server.Port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
