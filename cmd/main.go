package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"
	echoSwagger "github.com/swaggo/echo-swagger"

	"dinemart/internal/caching"
	"dinemart/internal/handlers"
	"dinemart/internal/jobs/background"
	"dinemart/internal/messaging"
	"dinemart/internal/middleware"
	"dinemart/internal/payments"
	"dinemart/internal/repositories"
	"dinemart/internal/services"
	"dinemart/pkg/database"
)

const version = "1.0.0"

func main() {
	// Database connection
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := database.NewPool(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// JWT configuration
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = random.String(32) // Generate random secret for development
		log.Printf("WARNING: Using generated JWT secret")
	}

	// Redis configuration
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
	cacheSvc := caching.NewRedisCacheService(redisAddr, redisPassword, redisDB)

	// MinIO configuration
	minioEndpoint := os.Getenv("MINIO_ENDPOINT")
	if minioEndpoint == "" {
		minioEndpoint = "localhost:9000"
	}
	minioAccessKey := os.Getenv("MINIO_ACCESS_KEY")
	if minioAccessKey == "" {
		minioAccessKey = "minioadmin"
	}
	minioSecretKey := os.Getenv("MINIO_SECRET_KEY")
	if minioSecretKey == "" {
		minioSecretKey = "minioadmin"
	}
	minioSvc, err := services.NewMinioService(minioEndpoint, minioAccessKey, minioSecretKey, os.Getenv("MINIO_USE_SSL") == "true")
	if err != nil {
		log.Fatalf("Failed to initialize MinIO service: %v", err)
	}

	// RabbitMQ order event publisher (optional)
	var publisher messaging.EventPublisher
	if rabbitURL := os.Getenv("RABBITMQ_URL"); rabbitURL != "" {
		publisher, err = messaging.NewAMQPPublisher(rabbitURL)
		if err != nil {
			log.Printf("WARNING: order events disabled: %v", err)
			publisher = nil
		} else {
			defer publisher.Close()
		}
	}

	// Payment provider registry, built once and passed by reference
	registry := payments.NewRegistry()
	guidiniURL := os.Getenv("GUIDINI_API_URL")
	guidiniKey := os.Getenv("GUIDINI_APP_KEY")
	guidiniSecret := os.Getenv("GUIDINI_SECRET")
	if guidiniKey != "" && guidiniSecret != "" {
		guidini, err := payments.NewGuidiniStrategy(guidiniURL, guidiniKey, guidiniSecret)
		if err != nil {
			log.Fatalf("Failed to initialize GuidiniPay: %v", err)
		}
		registry.Register("guidini", guidini)
	} else {
		log.Printf("WARNING: GuidiniPay credentials missing, no payment providers registered")
	}

	// Create repositories
	orderRepo := repositories.NewOrderRepository(pool)
	restaurantRepo := repositories.NewRestaurantRepository(pool)
	userRepo := repositories.NewUserRepository(pool)
	stockRepo := repositories.NewStockRepository(pool)

	// Create services
	calculator := services.NewDefaultInvoiceCalculator()
	orderSvc := services.NewOrderService(orderRepo, restaurantRepo, userRepo, calculator, registry, cacheSvc, publisher)
	stockSvc := services.NewStockService(stockRepo, restaurantRepo)

	// Create handlers
	orderHandlers := handlers.NewOrderHandlers(orderSvc)
	paymentHandlers := handlers.NewPaymentHandlers(registry)
	stockHandlers := handlers.NewStockHandlers(stockSvc)
	receiptHandlers := handlers.NewReceiptHandlers(orderSvc, minioSvc, restaurantRepo, userRepo, cacheSvc)

	// Background jobs
	scheduler, err := background.NewJobScheduler(orderSvc, orderRepo, stockSvc)
	if err != nil {
		log.Fatalf("Failed to create job scheduler: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Create Echo instance
	e := echo.New()

	// Global middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	// Health endpoints (no auth required)
	e.GET("/health", handlers.HealthCheck)
	e.GET("/health/ready", func(c echo.Context) error {
		return handlers.ReadinessCheck(c, pool)
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Payment provider webhook (no auth; acknowledge-only)
	e.POST("/v1/payments/webhook/guidini", paymentHandlers.GuidiniWebhook)

	// Protected routes
	v1 := e.Group("/v1")
	v1.Use(echojwt.WithConfig(middleware.JWTConfig(jwtSecret)))

	// Order routes
	v1.POST("/orders", orderHandlers.CreateOrder, middleware.RequireRoles("client", "restaurant_admin", "admin"))
	v1.POST("/orders/with-payment", orderHandlers.CreateOrderWithPayment, middleware.RequireRoles("client", "restaurant_admin", "admin"))
	v1.GET("/orders", orderHandlers.GetOrders, middleware.RequireRoles("admin"))
	v1.GET("/orders/my-orders", orderHandlers.GetMyOrders, middleware.RequireRoles("client"))
	v1.GET("/orders/restaurant-orders", orderHandlers.GetRestaurantOrders, middleware.RequireRoles("restaurant_admin"))
	v1.GET("/orders/:id", orderHandlers.GetOrder, middleware.RequireRoles("client", "restaurant_admin", "admin"))
	v1.PATCH("/orders/:id", orderHandlers.UpdateOrder, middleware.RequireRoles("restaurant_admin", "admin"))
	v1.PATCH("/orders/:id/status/:status", orderHandlers.UpdateOrderStatus, middleware.RequireRoles("restaurant_admin", "admin"))
	v1.PATCH("/orders/:id/cancel", orderHandlers.CancelOrder, middleware.RequireRoles("client", "restaurant_admin", "admin"))
	v1.POST("/orders/:id/verify-payment", orderHandlers.VerifyOrderPayment, middleware.RequireRoles("client", "restaurant_admin", "admin"))
	v1.POST("/orders/:id/receipt", receiptHandlers.GenerateReceipt, middleware.RequireRoles("client", "restaurant_admin", "admin"))

	// Payment routes
	v1.POST("/payments/initiate", paymentHandlers.InitiatePayment, middleware.RequireRoles("client", "admin"))
	v1.GET("/payments/verify", paymentHandlers.VerifyPayment, middleware.RequireRoles("client", "admin"))
	v1.GET("/payments/providers", paymentHandlers.GetProviders, middleware.RequireRoles("client", "admin"))

	// Stock routes
	v1.POST("/stock", stockHandlers.CreateStockItem, middleware.RequireRoles("restaurant_admin", "admin"))
	v1.GET("/stock", stockHandlers.ListStockItems, middleware.RequireRoles("restaurant_admin", "admin"))
	v1.GET("/stock/low", stockHandlers.GetLowStock, middleware.RequireRoles("restaurant_admin", "admin"))
	v1.GET("/stock/:id", stockHandlers.GetStockItem, middleware.RequireRoles("restaurant_admin", "admin"))
	v1.POST("/stock/:id/adjust", stockHandlers.AdjustStock, middleware.RequireRoles("restaurant_admin", "admin"))
	v1.GET("/stock/:id/adjustments", stockHandlers.GetStockAdjustments, middleware.RequireRoles("restaurant_admin", "admin"))

	// Start server
	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		log.Fatalf("Invalid port %s: %v", portStr, err)
	}

	log.Printf("Dinemart server v%s starting on port %d", version, port)
	e.Logger.Fatal(e.Start(fmt.Sprintf(":%d", port)))
}
