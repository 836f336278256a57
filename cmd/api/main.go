package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pizzeria-api/internal/auth"
	"pizzeria-api/internal/config"
	"pizzeria-api/internal/database"
	"pizzeria-api/internal/delivery"
	"pizzeria-api/internal/handler"
	"pizzeria-api/internal/notification"
	"pizzeria-api/internal/payment"
	"pizzeria-api/internal/pricing"
	"pizzeria-api/internal/repository"
	"pizzeria-api/internal/router"
	"pizzeria-api/internal/seed"
	"pizzeria-api/internal/service"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting pizzeria API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool and schema
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// Initialize repositories
	orderRepo := repository.NewOrderRepository(pool, logger)
	userRepo := repository.NewUserRepository(pool, logger)
	catalogRepo := repository.NewCatalogRepository(pool, logger)

	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn().Err(err).Msg("redis unreachable, catalog reads will fall through to the database")
		}
		catalogRepo = repository.NewCachedCatalogRepository(catalogRepo, rdb, cfg.Redis.TTL, logger)
	}

	// Initialize notifications
	renderer := notification.NewRenderer(notification.DefaultBusiness, cfg.Notify.AdminEmails)
	var notifier notification.Notifier
	if cfg.Notify.BrokerURL != "" {
		broker, err := notification.Dial(cfg.Notify.BrokerURL, cfg.Notify.Exchange, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize notification broker: %w", err)
		}
		defer broker.Close()
		notifier = notification.NewAMQPNotifier(broker, cfg.Notify.Exchange, renderer, logger)
	} else {
		notifier = notification.NewLogNotifier(renderer, logger)
		logger.Info().Msg("no notification broker configured, notifications will only be logged")
	}

	// Initialize payment providers
	gateway := newPaymentGateway(cfg, logger)

	// Initialize services
	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	engine := pricing.NewEngine(cfg.Pricing.TaxRate)
	resolver := delivery.NewResolver(delivery.Policy{
		BaseFee:          cfg.Delivery.BaseFee,
		FreeRadiusMiles:  cfg.Delivery.FreeRadiusMiles,
		PerMileFee:       cfg.Delivery.PerMileFee,
		MaxDeliveryMiles: cfg.Delivery.MaxDeliveryMiles,
	}, delivery.FixedDistance{Miles: cfg.Delivery.FixedDistanceMiles})

	orderService := service.NewOrderService(orderRepo, userRepo, engine, resolver, notifier, service.OrderSettings{
		DeliveryReadyAfter: cfg.Delivery.DeliveryReadyAfter,
		PickupReadyAfter:   cfg.Delivery.PickupReadyAfter,
		StoreTimeout:       cfg.Timeouts.Store,
		NotifyTimeout:      cfg.Timeouts.Notify,
	}, logger)
	authService := service.NewAuthService(userRepo, tokens, cfg.Timeouts.Store, logger)
	catalogService := service.NewCatalogService(catalogRepo, cfg.Timeouts.Store, logger)
	paymentService := service.NewPaymentService(orderService, gateway, logger)

	if err := authService.BootstrapAdmin(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
		return fmt.Errorf("failed to bootstrap admin account: %w", err)
	}

	if cfg.Seed.Enabled {
		if _, err := catalogService.Seed(ctx, newSeedLoader(ctx, cfg, logger), cfg.Seed.File); err != nil {
			return fmt.Errorf("failed to seed catalog: %w", err)
		}
	}

	// Initialize HTTP handlers
	handlers := router.Handlers{
		Auth:    handler.NewAuthHandler(authService, logger),
		Menu:    handler.NewMenuHandler(catalogService, logger),
		Order:   handler.NewOrderHandler(orderService, logger),
		Payment: handler.NewPaymentHandler(paymentService, logger),
	}

	// Initialize router
	mux := router.New(handlers, authService, cfg.CORS.AllowedOrigins, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// newSeedLoader reads the seed menu from S3 when enabled, falling back to the
// local file system.
func newSeedLoader(ctx context.Context, cfg *config.Config, logger zerolog.Logger) seed.Loader {
	fileLoader := seed.NewFileLoader(logger)
	if !cfg.S3.Enabled {
		logger.Info().Msg("using local file system for seed files (S3 disabled)")
		return fileLoader
	}

	s3Loader, err := seed.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
	if err != nil {
		logger.Warn().
			Err(err).
			Msg("failed to initialise S3 loader, falling back to local file system only")
		return fileLoader
	}
	return seed.NewFallbackLoader(s3Loader, fileLoader, cfg.S3.Prefix, logger)
}

func newPaymentGateway(cfg *config.Config, logger zerolog.Logger) *payment.Gateway {
	client := &http.Client{Timeout: cfg.Timeouts.Payment}

	stripe := payment.NewRemoteProvider(payment.ProviderStripe, payment.RemoteConfig{
		Endpoint: cfg.Payment.StripeEndpoint,
		APIKey:   cfg.Payment.StripeKey,
	}, client)
	square := payment.NewRemoteProvider(payment.ProviderSquare, payment.RemoteConfig{
		Endpoint: cfg.Payment.SquareEndpoint,
		APIKey:   cfg.Payment.SquareKey,
	}, client)
	paypal := payment.NewRemoteProvider(payment.ProviderPayPal, payment.RemoteConfig{
		Endpoint: cfg.Payment.PayPalEndpoint,
		APIKey:   cfg.Payment.PayPalKey,
	}, client)

	return payment.NewGateway(cfg.Timeouts.Payment, logger,
		payment.NewCashProvider(),
		stripe,
		square,
		paypal,
		payment.NewWalletProvider(payment.ProviderApplePay, stripe),
		payment.NewWalletProvider(payment.ProviderGooglePay, stripe),
	)
}
