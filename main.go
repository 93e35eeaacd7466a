package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"

	"ticket-marketplace/internal/auth"
	"ticket-marketplace/internal/config"
	"ticket-marketplace/internal/handlers"
	"ticket-marketplace/internal/kafka"
	"ticket-marketplace/internal/logger"
	"ticket-marketplace/internal/mailer"
	"ticket-marketplace/internal/middleware"
	"ticket-marketplace/internal/models"
	rediswrap "ticket-marketplace/internal/redis"
	"ticket-marketplace/internal/services"
	"ticket-marketplace/internal/storage"

	"github.com/gin-gonic/gin"
)

// Global logger instance
var log *logger.Logger

func main() {
	log = logger.NewLogger()
	defer log.Close()

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Warn("ENV", "Error loading .env file, using environment variables")
	}

	log.LogProcess("STARTUP", "Ticket Marketplace starting up...")
	log.Info("SYSTEM", "Initializing components...")

	cfg := config.Load()
	log.Info("CONFIG", "Configuration loaded successfully")

	log.LogProcess("DATABASE", "Initializing MySQL database...")
	store, err := storage.NewMySQLStore(cfg.Database, log)
	if err != nil {
		log.Fatal("DATABASE", "Failed to initialize MySQL: "+err.Error())
	}
	defer store.Close()
	log.LogDatabase("INIT", "mysql", "MySQL storage initialized successfully")

	log.LogProcess("KAFKA", "Initializing Kafka producer...")
	kafkaProducer, err := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.MockMode, log)
	if err != nil {
		log.Fatal("KAFKA", "Failed to create Kafka producer: "+err.Error())
	}
	defer kafkaProducer.Close()
	log.LogKafka("INIT", "producer", "Kafka producer initialized successfully")

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
	})
	slotLock := rediswrap.NewRedis(redisClient)
	log.LogProcess("SERVICE", "Redis slot lock initialized")

	log.LogProcess("STRIPE", "Initializing Stripe checkout gateway...")
	stripeService, err := services.NewStripeService(cfg.Stripe, log)
	if err != nil {
		log.Fatal("STRIPE", "Failed to initialize Stripe service: "+err.Error())
	}
	log.LogProcess("SERVICE", "Stripe service initialized")

	// Initialize services
	userService := services.NewUserService(store, log)
	catalogService := services.NewCatalogService(store, slotLock, log)
	bookingService := services.NewBookingService(store, kafkaProducer, log)
	paymentService := services.NewPaymentService(store, stripeService, kafkaProducer, log)
	log.LogProcess("SERVICE", "Marketplace services initialized")

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService)
	ticketHandler := handlers.NewTicketHandler(catalogService)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	checkoutHandler := handlers.NewCheckoutHandler(paymentService)
	log.LogProcess("HANDLER", "All handlers initialized")

	// Receipt mail pipeline: completed payments arrive back over Kafka.
	if !cfg.Kafka.MockMode {
		receiptMailer := mailer.NewMailer()
		paymentConsumer, err := kafka.NewPaymentConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID)
		if err != nil {
			log.Fatal("KAFKA", "Failed to create Kafka consumer: "+err.Error())
		}
		defer paymentConsumer.Close()

		go func() {
			log.LogKafka("START", "consumer", "Starting payment receipt consumer")
			err := paymentConsumer.ConsumePayments(context.Background(), func(event *models.PaymentEvent) error {
				if event.Payment == nil {
					return nil
				}
				if err := receiptMailer.SendReceipt(event.Payment); err != nil {
					log.Error("MAILER", "Failed to send receipt: "+err.Error())
				}
				return nil
			})
			if err != nil {
				log.Error("KAFKA", "Consumer error: "+err.Error())
			}
		}()
	}

	verifier := auth.NewJWTVerifier(cfg.Auth.JWTSecret)

	router := setupRouter(cfg, verifier, userHandler, ticketHandler, bookingHandler, checkoutHandler)
	log.LogProcess("ROUTER", "HTTP router configured")

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.LogProcess("SERVER", "Starting HTTP server on port "+cfg.Server.Port)
		log.Info("STARTUP", "🚀 Ticket Marketplace is ready to accept requests!")
		log.Info("STARTUP", "📊 Health check available at: http://localhost"+cfg.Server.Port+"/health")
		log.Info("STARTUP", "💳 Checkout available at: http://localhost"+cfg.Server.Port+"/create-checkout-session")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("SERVER", "Server failed to start: "+err.Error())
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Warn("SHUTDOWN", "Received shutdown signal, initiating graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("SHUTDOWN", "Server forced to shutdown: "+err.Error())
	}

	log.Info("SHUTDOWN", "✅ Ticket Marketplace shutdown completed successfully")
}

func setupRouter(cfg *config.Config, verifier auth.TokenVerifier,
	userHandler *handlers.UserHandler, ticketHandler *handlers.TicketHandler,
	bookingHandler *handlers.BookingHandler, checkoutHandler *handlers.CheckoutHandler) *gin.Engine {

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(middleware.EnhancedLogger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg.Client.Origin))
	router.Use(middleware.RateLimit(log))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		log.LogAPI("GET", "/health", "200", "0ms")
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC(),
			"service":   "ticket-marketplace",
			"version":   "1.0.0",
		})
	})

	// Public routes
	router.POST("/user", userHandler.Upsert)
	router.GET("/approved-tickets", ticketHandler.ListApproved)
	router.GET("/tickets/:id", ticketHandler.Get)

	// Protected routes: the bearer token must verify before the handler runs.
	protected := router.Group("", middleware.RequireAuth(verifier, log))
	{
		// Admin moderation
		protected.GET("/users", userHandler.List)
		protected.PATCH("/update-role", userHandler.UpdateRole)
		protected.PATCH("/users/mark-fraud/:id", userHandler.MarkFraud)
		protected.PATCH("/users/unmark-fraud/:id", userHandler.UnmarkFraud)
		protected.GET("/tickets", ticketHandler.List)
		protected.PATCH("/tickets/:id", ticketHandler.Moderate)
		protected.PATCH("/advertise-ticket/:id", ticketHandler.Advertise)

		// Vendor surface
		protected.POST("/tickets", ticketHandler.Submit)
		protected.GET("/added-tickets", ticketHandler.ListMine)
		protected.GET("/requested-booking", bookingHandler.ListRequests)
		protected.PATCH("/booking-status/:id", bookingHandler.UpdateStatus)

		// Customer surface
		protected.POST("/book-ticket", bookingHandler.Book)
		protected.GET("/booked-tickets", bookingHandler.ListBooked)

		// Reconciliation flow
		protected.POST("/create-checkout-session", checkoutHandler.CreateSession)
		protected.POST("/payment-success", checkoutHandler.PaymentSuccess)
	}

	log.LogProcess("ROUTER", "All routes registered successfully")
	return router
}
