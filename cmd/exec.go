package cmd

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/plugins/migratecmd"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	pubnub "github.com/pubnub/go"

	"flight-booking/config"
	"flight-booking/internal/handlers"
	"flight-booking/internal/services/gateway"
	"flight-booking/internal/services/gateway/razorpay"
	"flight-booking/internal/services/gateway/sandbox"
	"flight-booking/internal/services/store"
	_ "flight-booking/migrations"
	"flight-booking/monitoring"
	"flight-booking/security"
	"flight-booking/services"
	"flight-booking/utils"
)

func Start() error {
	app := pocketbase.New()

	// Load configuration
	cfg := config.LoadConfig()

	// Initialize Redis
	redisClient := utils.NewRedisClient(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)
	defer redisClient.Close()

	// Initialize PubNub (user-facing notifications)
	var pn *pubnub.PubNub
	if cfg.PubNubPublishKey != "" && cfg.PubNubSubscribeKey != "" {
		pnConfig := pubnub.NewConfig()
		pnConfig.PublishKey = cfg.PubNubPublishKey
		pnConfig.SubscribeKey = cfg.PubNubSubscribeKey
		pnConfig.SecretKey = cfg.PubNubSecretKey
		pn = pubnub.NewPubNub(pnConfig)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize the checkout gateway through the registry
	registry := gateway.NewRegistry(gateway.NewFactory())
	var err error
	switch gateway.Provider(cfg.GatewayProvider) {
	case gateway.ProviderSandbox:
		err = registry.Register(ctx, gateway.ProviderSandbox, &sandbox.Config{
			KeyID:           cfg.GatewayKeyID,
			KeySecret:       cfg.GatewayKeySecret,
			CompletionDelay: cfg.SandboxCompletionDelay,
		})
	default:
		err = registry.Register(ctx, gateway.ProviderRazorpay, &razorpay.Config{
			BaseURL:   cfg.GatewayBaseURL,
			ScriptURL: cfg.GatewayScriptURL,
			KeyID:     cfg.GatewayKeyID,
			KeySecret: cfg.GatewayKeySecret,
			PNSubKey:  cfg.GatewayPNSubKey,
			PNUUID:    cfg.GatewayPNUUID,
			PNChannel: cfg.GatewayPNChannel,
		})
	}
	if err != nil {
		return err
	}
	defer registry.Close(ctx)

	gw, err := registry.Primary()
	if err != nil {
		return err
	}

	// Initialize monitoring
	var monitor *monitoring.Monitor
	if cfg.EnableMetrics {
		monitor = monitoring.NewMonitor(redisClient)
		go serveMetrics(cfg.MetricsPort)
	}

	// Initialize services
	fareService := services.NewFareService()
	validator := services.NewReadinessValidator(fareService)
	rosterService := services.NewRosterService(redisClient, cfg.SessionTTL)
	bookingStore := store.NewClient(&store.ClientConfig{
		BaseURL: cfg.BookingAPIBaseURL,
		Token:   cfg.BookingAPIToken,
		Timeout: cfg.PersistTimeout,
	})
	sequencer := services.NewBookingSequencer(bookingStore, fareService)
	checkoutService := services.NewCheckoutService(
		redisClient, pn, gw, rosterService, validator, fareService, sequencer, monitor,
		services.CheckoutConfig{
			Currency:      cfg.CurrencyCode,
			MerchantName:  cfg.MerchantName,
			Descriptor:    cfg.PaymentDescriptor,
			ScriptTimeout: cfg.ScriptLoadTimeout,
			WidgetTimeout: cfg.WidgetTimeout,
		},
	)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(app)
	checkoutHandler := handlers.NewCheckoutHandler(app, rosterService, checkoutService, fareService)
	bookingHandler := handlers.NewBookingHandler(app, cfg.BookingAPIToken)
	adminHandler := handlers.NewAdminHandler(app, redisClient)

	rateLimiter := security.NewRateLimiter(redisClient)

	// Enable migrations
	migratecmd.MustRegister(app, app.RootCmd, migratecmd.Config{
		Automigrate: true,
	})

	// Setup graceful shutdown
	go handleShutdown(cancel)

	app.OnServe().BindFunc(func(e *core.ServeEvent) error {
		e.Router.BindFunc(rateLimiter.AntiBotMiddleware())

		// Authentication
		e.Router.POST("/api/v1/authentication", authHandler.Authenticate)

		// Checkout session endpoints
		e.Router.POST("/api/v1/checkout/sessions", checkoutHandler.CreateSession)
		e.Router.GET("/api/v1/checkout/sessions/{sessionId}", checkoutHandler.GetSession)
		e.Router.POST("/api/v1/checkout/sessions/{sessionId}/passengers", checkoutHandler.AddPassenger)
		e.Router.PATCH("/api/v1/checkout/sessions/{sessionId}/passengers/{index}", checkoutHandler.UpdatePassenger)
		e.Router.GET("/api/v1/checkout/sessions/{sessionId}/fares", checkoutHandler.GetFareBreakdown)
		e.Router.POST("/api/v1/checkout/sessions/{sessionId}/pay", checkoutHandler.Pay).
			BindFunc(rateLimiter.PaymentRateLimit(5))

		// Attempt endpoints
		e.Router.GET("/api/v1/checkout/attempts/{attemptId}", checkoutHandler.GetAttempt)
		e.Router.POST("/api/v1/checkout/confirm", checkoutHandler.ConfirmPayment)

		// Booking endpoints
		e.Router.POST("/api/v1/book-flight", bookingHandler.BookFlight)
		e.Router.GET("/api/v1/booking/history", bookingHandler.GetBookingHistory)

		// Admin endpoints
		e.Router.GET("/api/v1/admin/attempt-dashboard", adminHandler.GetAttemptDashboard)
		e.Router.GET("/api/v1/admin/partially-booked", adminHandler.GetPartiallyBooked)

		// Test endpoint for completion simulation
		if cfg.Environment == "development" {
			e.Router.POST("/api/v1/test/simulate-completion", checkoutHandler.SimulateCompletion)
		}

		// Health check
		e.Router.GET("/health", func(e *core.RequestEvent) error {
			if err := utils.RedisHealthCheck(redisClient); err != nil {
				return e.JSON(503, map[string]string{
					"status": "unhealthy",
					"error":  err.Error(),
				})
			}
			return e.JSON(200, map[string]string{"status": "healthy"})
		})

		log.Println("Server routes registered")

		return e.Next()
	})

	// Start server
	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
	return nil
}

func serveMetrics(port string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		slog.Error("metrics server stopped", "error", err)
	}
}

// handleShutdown handles graceful shutdown
func handleShutdown(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Println("Shutdown signal received, cleaning up...")
	cancel()
}
