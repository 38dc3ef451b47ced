package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"

	"commercehub/internal/caching"
	"commercehub/internal/handlers"
	"commercehub/internal/jobs"
	"commercehub/internal/jobs/background"
	"commercehub/internal/middleware"
	"commercehub/internal/repositories"
	"commercehub/internal/services"
	"commercehub/pkg/database"
)

const version = "1.0.0"

func main() {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := database.NewPool(context.Background(), databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = random.String(32) // Generated secret for development
		log.Printf("WARNING: Using generated JWT secret")
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if redisDBStr := os.Getenv("REDIS_DB"); redisDBStr != "" {
		if db, err := strconv.Atoi(redisDBStr); err == nil {
			redisDB = db
		}
	}

	// Repositories
	tenantRepo := repositories.NewTenantRepo(pool)
	customerRepo := repositories.NewCustomerRepo(pool)
	categoryRepo := repositories.NewCategoryRepo(pool)
	productRepo := repositories.NewProductRepo(pool)
	orderRepo := repositories.NewOrderRepo(pool)
	campaignRepo := repositories.NewCampaignRepo(pool)
	returnRepo := repositories.NewReturnRequestRepo(pool)
	notificationRepo := repositories.NewNotificationRepo(pool)
	userRepo := repositories.NewUserRepo(pool)

	// Cache
	cacheSvc := caching.NewRedisCacheService(redisAddr, redisPassword, redisDB)

	// Services
	notificationSvc := services.NewNotificationService(notificationRepo)
	pricingSvc := services.NewPricingService(productRepo, campaignRepo, cacheSvc)
	catalogSvc := services.NewCatalogService(productRepo, categoryRepo, cacheSvc)
	campaignSvc := services.NewCampaignService(campaignRepo, productRepo, categoryRepo, cacheSvc)
	customerSvc := services.NewCustomerService(customerRepo)
	tenantSvc := services.NewTenantService(tenantRepo, cacheSvc)
	orderSvc := services.NewOrderService(orderRepo, productRepo, customerRepo, pricingSvc, notificationSvc)
	returnSvc := services.NewReturnService(returnRepo, orderRepo, productRepo, notificationSvc)
	authSvc := services.NewAuthService(userRepo, tenantRepo, jwtSecret)

	// Handlers
	healthHandlers := handlers.NewHealthHandlers(pool)
	tenantHandlers := handlers.NewTenantHandlers(tenantSvc)
	customerHandlers := handlers.NewCustomerHandlers(customerSvc)
	categoryHandlers := handlers.NewCategoryHandlers(catalogSvc)
	productHandlers := handlers.NewProductHandlers(catalogSvc)
	orderHandlers := handlers.NewOrderHandlers(orderSvc)
	campaignHandlers := handlers.NewCampaignHandlers(campaignSvc, pricingSvc)
	returnHandlers := handlers.NewReturnHandlers(returnSvc)
	notificationHandlers := handlers.NewNotificationHandlers(notificationSvc)
	authHandlers := handlers.NewAuthHandlers(authSvc)

	// Background jobs
	stockAlerts := jobs.NewStockAlertService(productRepo, notificationSvc)
	scheduler := background.NewJobScheduler(stockAlerts, campaignSvc, tenantRepo)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start job scheduler: %v", err)
	}
	defer func() {
		if err := scheduler.Stop(); err != nil {
			log.Printf("Failed to stop job scheduler: %v", err)
		}
	}()

	// Echo instance
	e := echo.New()
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())
	e.Use(middleware.VersionHeader(version))

	// Health endpoints (no auth required)
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)
	e.GET("/health/live", healthHandlers.LivenessCheck)

	// API routes
	v1 := e.Group("/v1")

	// Authentication; credential endpoints are throttled per client IP
	authLimited := middleware.RateLimit(cacheSvc, 10, time.Minute)
	v1.POST("/auth/register", authHandlers.Register, authLimited)
	v1.POST("/auth/login", authHandlers.Login, authLimited)

	// Tenant administration (no tenant scoping; operator surface)
	v1.POST("/tenants", tenantHandlers.CreateTenant)
	v1.GET("/tenants", tenantHandlers.ListTenants)
	v1.GET("/tenants/:id", tenantHandlers.GetTenant)
	v1.PUT("/tenants/:id", tenantHandlers.UpdateTenant)

	// Protected routes (require JWT with tenant claim)
	protected := v1.Group("")
	protected.Use(echojwt.WithConfig(middleware.JWTConfig(jwtSecret)))

	protected.GET("/auth/me", authHandlers.Me)

	// Customer routes
	protected.GET("/customers", customerHandlers.ListCustomers)
	protected.POST("/customers", customerHandlers.CreateCustomer)
	protected.GET("/customers/:id", customerHandlers.GetCustomer)
	protected.POST("/customers/:id/addresses", customerHandlers.AddAddress)

	// Category routes
	protected.GET("/categories", categoryHandlers.ListCategories)
	protected.POST("/categories", categoryHandlers.CreateCategory)
	protected.GET("/categories/:id", categoryHandlers.GetCategory)

	// Product routes
	protected.GET("/products", productHandlers.ListProducts)
	protected.POST("/products", productHandlers.CreateProduct)
	protected.GET("/products/:id", productHandlers.GetProduct)
	protected.PUT("/products/:id", productHandlers.UpdateProduct)
	protected.POST("/products/:id/restock", productHandlers.RestockProduct)
	protected.GET("/products/:id/price", campaignHandlers.ResolvePrice)

	// Order routes
	protected.GET("/orders", orderHandlers.ListOrders)
	protected.POST("/orders", orderHandlers.CreateOrder)
	protected.GET("/orders/:id", orderHandlers.GetOrder)
	protected.POST("/orders/:id/lines", orderHandlers.AddLine)
	protected.DELETE("/orders/:id/lines/:lineId", orderHandlers.RemoveLine)
	protected.POST("/orders/:id/confirm", orderHandlers.ConfirmOrder)
	protected.POST("/orders/:id/ship", orderHandlers.ShipOrder)
	protected.POST("/orders/:id/deliver", orderHandlers.DeliverOrder)
	protected.POST("/orders/:id/receive", orderHandlers.MarkOrderReceived)
	protected.POST("/orders/:id/cancel", orderHandlers.CancelOrder)
	protected.POST("/orders/:id/pay", orderHandlers.MarkOrderPaid)
	protected.POST("/orders/:id/payment-failed", orderHandlers.MarkPaymentFailed)

	// Campaign routes
	protected.GET("/campaigns", campaignHandlers.ListCampaigns)
	protected.POST("/campaigns", campaignHandlers.CreateCampaign)
	protected.GET("/campaigns/:id", campaignHandlers.GetCampaign)
	protected.PUT("/campaigns/:id", campaignHandlers.UpdateCampaign)
	protected.POST("/campaigns/:id/deactivate", campaignHandlers.DeactivateCampaign)
	protected.POST("/campaigns/:id/products", campaignHandlers.AssignProduct)
	protected.POST("/campaigns/:id/categories", campaignHandlers.AssignCategory)

	// Return request routes
	protected.GET("/returns", returnHandlers.ListReturnRequests)
	protected.POST("/returns", returnHandlers.CreateReturnRequest)
	protected.GET("/returns/:id", returnHandlers.GetReturnRequest)
	protected.POST("/returns/:id/approve", returnHandlers.ApproveReturnRequest)
	protected.POST("/returns/:id/reject", returnHandlers.RejectReturnRequest)
	protected.POST("/returns/:id/process", returnHandlers.MarkReturnProcessing)
	protected.POST("/returns/:id/complete", returnHandlers.CompleteReturnRequest)

	// Notification routes
	protected.GET("/notifications", notificationHandlers.ListNotifications)
	protected.GET("/notifications/unread-count", notificationHandlers.CountUnread)
	protected.POST("/notifications/:id/read", notificationHandlers.MarkRead)
	protected.POST("/notifications/read-all", notificationHandlers.MarkAllRead)

	// Start server
	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		log.Fatalf("Invalid port %s: %v", portStr, err)
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Printf("Shutting down")
		if err := e.Shutdown(context.Background()); err != nil {
			log.Printf("Server shutdown: %v", err)
		}
	}()

	log.Printf("commercehub server v%s starting on port %d", version, port)
	e.Logger.Fatal(e.Start(fmt.Sprintf(":%d", port)))
}
