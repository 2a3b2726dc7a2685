package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aaandroiddd/Waboku.gg-sub000/internal/api/dto"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/api/handlers"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/api/middleware"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/api/routes"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/dashboard"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/events"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/favorite"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/listing"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/message"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/offer"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/order"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/review"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/user"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/wantedpost"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/infrastructure/cache"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/infrastructure/persistence/postgres/connection"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/infrastructure/persistence/postgres/migrations"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/infrastructure/scheduler"
	"github.com/aaandroiddd/Waboku.gg-sub000/pkg/config"
	"github.com/aaandroiddd/Waboku.gg-sub000/pkg/logger"
	"github.com/aaandroiddd/Waboku.gg-sub000/pkg/security/auth"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// @title           Waboku.gg API
// @version         1.0
// @description     Trading card marketplace API with a preloaded user dashboard.

// @host      localhost:8000
// @BasePath

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// RequestLoggerMiddleware logs all incoming HTTP requests
func RequestLoggerMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		log.Info("Request completed",
			zap.String("path", path),
			zap.String("method", method),
			zap.String("client_ip", c.ClientIP()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("") // Empty string will make it search in default locations
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	log := logger.NewLogger()
	defer log.Sync()

	log.Info("Configuration loaded successfully")
	log.Info("Server mode: " + cfg.Server.Mode)

	// Set up Gin
	if cfg.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	gin.DefaultWriter = os.Stdout

	if err := dto.RegisterCustomValidators(); err != nil {
		log.Fatal("Failed to register request validators", zap.Error(err))
	}

	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(RequestLoggerMiddleware(log))
	router.Use(gzip.Gzip(gzip.DefaultCompression))
	router.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORS.AllowedOrigins,
		AllowMethods: cfg.CORS.AllowedMethods,
		AllowHeaders: append(cfg.CORS.AllowedHeaders,
			"Accept-Encoding",
			"Content-Encoding",
			"Content-Type",
			"Authorization",
		),
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Encoding",
			"Content-Type",
			"X-RateLimit-Remaining",
			"X-RateLimit-Reset",
		},
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(middleware.NewMetricsMiddleware().CollectMetrics())

	// Add Prometheus metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Connect to database
	db, err := connection.NewDatabase(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if err := migrations.RunMigrations(db.DB); err != nil {
		log.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Initialize Redis
	redisConfig := cache.NewConfigFromEnv(cfg)
	redisClient, err := cache.NewRedisClient(redisConfig)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	// Initialize rate limiter with Redis client
	rateLimiter := auth.NewRedisRateLimiter(redisClient.GetClient(), 1*time.Minute, 300)

	// Create cache middleware instance
	cacheMiddleware := middleware.NewCacheMiddleware(redisClient, "waboku", 5*time.Minute)

	// Event bus. Every event published locally is also forwarded to Redis
	// so other instances can invalidate their dashboards; the origin stamp
	// lets this instance skip its own echoes on the way back in.
	bus := events.NewBus()
	instanceID := uuid.New().String()
	bus.AddForwarder(func(ev events.DashboardEvent) {
		if ev.Details == nil {
			ev.Details = make(map[string]interface{})
		}
		ev.Details["origin"] = instanceID
		if err := redisClient.PublishDashboardEvent(context.Background(), &ev); err != nil {
			log.Error("Failed to publish dashboard event to Redis", zap.Error(err))
		}
	})

	// Initialize notification system
	notificationSystem, err := SetupNotificationSystem(
		db,
		bus,
		log,
		cfg.Server.Mode != "production",
	)
	if err != nil {
		log.Fatal("Failed to initialize notification system", zap.Error(err))
	}
	defer notificationSystem.Shutdown()

	// Initialize repositories
	userRepo := user.NewRepository(db)
	listingRepo := listing.NewRepository(db)
	offerRepo := offer.NewRepository(db)
	orderRepo := order.NewRepository(db)
	messageRepo := message.NewRepository(db)
	wantedPostRepo := wantedpost.NewRepository(db)
	reviewRepo := review.NewRepository(db)
	favoriteRepo := favorite.NewRepository(db)

	// Initialize services
	userService := user.NewService(userRepo, redisClient, bus, log.Logger)
	listingService := listing.NewService(listingRepo, userService, bus, log.Logger)
	offerService := offer.NewService(offerRepo, listingRepo, bus, log.Logger)
	orderService := order.NewService(orderRepo, listingService, bus, log.Logger)
	// Accepted offers become orders; late-bound because orders depend on offers.
	offerService.SetOrderCreator(orderService)
	messageService := message.NewService(messageRepo, bus, log.Logger)
	wantedPostService := wantedpost.NewService(wantedPostRepo, bus, log.Logger)
	reviewService := review.NewService(reviewRepo, orderRepo, userService, bus, log.Logger)
	favoriteService := favorite.NewService(favoriteRepo, listingRepo, bus, log.Logger)

	// Initialize the dashboard preloader
	store := dashboard.NewStore(redisClient, cfg.Dashboard.FreshnessWindow)
	preloader := dashboard.NewPreloader(store, dashboard.Services{
		Listings:      listingService,
		Offers:        offerService,
		Orders:        orderService,
		Messages:      messageService,
		Notifications: notificationSystem.Service,
		WantedPosts:   wantedPostService,
		Reviews:       reviewService,
		Favorites:     favoriteService,
	}, dashboard.Limits{
		Listings: cfg.Dashboard.ListingLimit,
		Offers:   cfg.Dashboard.OfferLimit,
		Orders:   cfg.Dashboard.OrderLimit,
		Messages: cfg.Dashboard.MessageLimit,
	}, bus, log.Logger)

	// Initialize and start the scheduler
	expiryScheduler := scheduler.NewScheduler(listingService, offerService, log.Logger)
	expiryScheduler.Start()
	defer expiryScheduler.Stop()
	log.Info("Expiry scheduler started successfully")

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService, cfg, log.Logger)
	listingHandler := handlers.NewListingHandler(listingService)
	offerHandler := handlers.NewOfferHandler(offerService)
	orderHandler := handlers.NewOrderHandler(orderService)
	messageHandler := handlers.NewMessageHandler(messageService)
	notificationHandler := handlers.NewNotificationHandler(notificationSystem.Service)
	wantedPostHandler := handlers.NewWantedPostHandler(wantedPostService)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	favoriteHandler := handlers.NewFavoriteHandler(favoriteService)
	dashboardHandler := handlers.NewDashboardHandler(
		preloader,
		notificationSystem.Service,
		redisClient,
		bus,
		log.Logger,
	)

	// Start bridging dashboard events published by other instances
	listenerCtx, stopListener := context.WithCancel(context.Background())
	defer stopListener()
	dashboardHandler.StartDashboardEventListener(listenerCtx, instanceID)

	// Register routes
	log.Info("Registering routes...")

	userRoutes := routes.NewUserRoutes(userHandler, cfg.Auth.JWTSecret, rateLimiter)
	userRoutes.RegisterRoutes(router)
	log.Info("Registered user routes at /api/users")

	listingRoutes := routes.NewListingRoutes(listingHandler, cfg.Auth.JWTSecret)
	listingRoutes.RegisterRoutes(router, cacheMiddleware)
	log.Info("Registered listing routes at /api/listings")

	offerRoutes := routes.NewOfferRoutes(offerHandler, cfg.Auth.JWTSecret)
	offerRoutes.RegisterRoutes(router)
	log.Info("Registered offer routes at /api/offers")

	orderRoutes := routes.NewOrderRoutes(orderHandler, cfg.Auth.JWTSecret)
	orderRoutes.RegisterRoutes(router)
	log.Info("Registered order routes at /api/orders")

	messageRoutes := routes.NewMessageRoutes(messageHandler, cfg.Auth.JWTSecret)
	messageRoutes.RegisterRoutes(router)
	log.Info("Registered message routes at /api/messages")

	notificationRoutes := routes.NewNotificationRoutes(notificationHandler, cfg.Auth.JWTSecret)
	notificationRoutes.RegisterRoutes(router)
	log.Info("Registered notification routes at /api/notifications")

	wantedPostRoutes := routes.NewWantedPostRoutes(wantedPostHandler, cfg.Auth.JWTSecret)
	wantedPostRoutes.RegisterRoutes(router, cacheMiddleware)
	log.Info("Registered wanted post routes at /api/wanted-posts")

	reviewRoutes := routes.NewReviewRoutes(reviewHandler, cfg.Auth.JWTSecret)
	reviewRoutes.RegisterRoutes(router)
	log.Info("Registered review routes at /api/reviews")

	favoriteRoutes := routes.NewFavoriteRoutes(favoriteHandler, cfg.Auth.JWTSecret)
	favoriteRoutes.RegisterRoutes(router)
	log.Info("Registered favorite routes at /api/favorites")

	dashboardRoutes := routes.NewDashboardRoutes(dashboardHandler, cfg.Auth.JWTSecret)
	dashboardRoutes.RegisterRoutes(router)
	log.Info("Registered dashboard routes at /api/dashboard")

	// Health check routes (no /api prefix as these are system endpoints)
	routes.SetupHealthRoutes(router, db, redisClient)
	log.Info("Registered health check routes at /health and /health/ready")

	// Start server
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info(fmt.Sprintf("Server starting on port %d", cfg.Server.Port))

		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	log.Info("Shutting down server...")
	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited properly")
}
