package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"

	"github.com/marketbloc/vendor-api/internal/handlers"
	"github.com/marketbloc/vendor-api/internal/platform/auth"
	"github.com/marketbloc/vendor-api/internal/platform/config"
	pfirestore "github.com/marketbloc/vendor-api/internal/platform/firestore"
	"github.com/marketbloc/vendor-api/internal/platform/jobs"
	"github.com/marketbloc/vendor-api/internal/platform/observability"
	firestoreRepo "github.com/marketbloc/vendor-api/internal/repositories/firestore"
	"github.com/marketbloc/vendor-api/internal/services"
)

func main() {
	ctx := context.Background()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("api")
	ctx = observability.WithLogger(ctx, logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	firestoreProvider := pfirestore.NewProvider(cfg.Firestore)
	firestoreClient, err := firestoreProvider.Client(ctx)
	if err != nil {
		logger.Fatal("failed to initialise firestore client", zap.Error(err))
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := firestoreProvider.Close(closeCtx); err != nil {
			logger.Warn("firestore close error", zap.Error(err))
		}
	}()

	var statusPublisher services.StatusEventPublisher
	if cfg.Events.Topic != "" {
		pubsubClient, err := pubsub.NewClient(ctx, cfg.Events.ProjectID)
		if err != nil {
			logger.Fatal("failed to initialise pubsub client", zap.Error(err))
		}
		defer func() {
			if err := pubsubClient.Close(); err != nil {
				logger.Warn("pubsub close error", zap.Error(err))
			}
		}()
		topic := pubsubClient.Topic(cfg.Events.Topic)
		defer topic.Stop()

		statusPublisher, err = jobs.NewPubSubStatusPublisher(topic)
		if err != nil {
			logger.Fatal("failed to initialise status event publisher", zap.Error(err))
		}
		logger.Info("order event publishing enabled", zap.String("topic", cfg.Events.Topic))
	} else {
		logger.Info("order event publishing disabled; ORDER_EVENTS_TOPIC not set")
	}

	subOrderRepo, err := firestoreRepo.NewSubOrderRepository(firestoreProvider)
	if err != nil {
		logger.Fatal("failed to initialise sub-order repository", zap.Error(err))
	}
	productRepo, err := firestoreRepo.NewProductRepository(firestoreProvider)
	if err != nil {
		logger.Fatal("failed to initialise product repository", zap.Error(err))
	}

	orderQueries, err := services.NewOrderQueryService(services.OrderQueryDeps{Orders: subOrderRepo})
	if err != nil {
		logger.Fatal("failed to initialise order query service", zap.Error(err))
	}
	transitions, err := services.NewStatusTransitionEngine(services.StatusTransitionDeps{
		Orders: subOrderRepo,
		Events: statusPublisher,
		Clock:  time.Now,
	})
	if err != nil {
		logger.Fatal("failed to initialise status transition engine", zap.Error(err))
	}
	exports, err := services.NewExportService(services.ExportDeps{Orders: subOrderRepo})
	if err != nil {
		logger.Fatal("failed to initialise export service", zap.Error(err))
	}
	resolver, err := services.NewVariantResolver(services.VariantResolverDeps{Products: productRepo})
	if err != nil {
		logger.Fatal("failed to initialise variant resolver", zap.Error(err))
	}
	productUpdates, err := services.NewProductUpdateService(services.ProductUpdateDeps{Products: productRepo})
	if err != nil {
		logger.Fatal("failed to initialise product update service", zap.Error(err))
	}

	orderHandlers := handlers.NewVendorOrderHandlers(orderQueries, transitions, exports)
	productHandlers := handlers.NewProductHandlers(resolver, productUpdates)

	healthHandlers := handlers.NewHealthHandlers(
		handlers.WithReadinessCheck("firestore", func(ctx context.Context) error {
			iter := firestoreClient.Collections(ctx)
			_, err := iter.Next()
			if errors.Is(err, iterator.Done) {
				return nil
			}
			return err
		}),
	)

	opts := []handlers.Option{
		handlers.WithMiddlewares(
			observability.InjectLoggerMiddleware(logger.Named("http")),
			observability.RequestLoggerMiddleware(),
		),
		handlers.WithHealthHandlers(healthHandlers),
		handlers.WithProductRoutes(productHandlers.PublicRoutes),
		handlers.WithVendorRoutes(func(r chi.Router) {
			orderHandlers.Routes(r)
			r.Route("/product", productHandlers.VendorRoutes)
		}),
	}

	if cfg.Firebase.ProjectID != "" {
		firebaseVerifier, err := auth.NewFirebaseVerifier(ctx, cfg.Firebase)
		if err != nil {
			logger.Fatal("failed to initialise firebase verifier", zap.Error(err))
		}
		authenticator := auth.NewAuthenticator(firebaseVerifier)
		opts = append(opts, handlers.WithVendorMiddlewares(authenticator.RequireFirebaseAuth(auth.RoleVendor, auth.RoleAdmin)))
	} else {
		// Local development against the emulator runs without token checks.
		logger.Warn("firebase project not configured; vendor routes are unauthenticated")
	}

	router := handlers.NewRouter(opts...)
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))
	go func() {
		serverLogger.Info("vendor api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
