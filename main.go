package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	clerk "github.com/clerk/clerk-sdk-go/v2"
	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mindStepsAPI/handlers"
	"mindStepsAPI/internal/catalog"
	"mindStepsAPI/internal/config"
	"mindStepsAPI/internal/logger"
	"mindStepsAPI/internal/metrics"
	"mindStepsAPI/internal/notification"
	"mindStepsAPI/internal/workers"
	"mindStepsAPI/middleware"
	"mindStepsAPI/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	lg, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatal("Failed to init logger: ", err)
	}
	defer lg.Sync()

	clerk.SetKey(cfg.ClerkSecretKey)
	lg.Info("Clerk initialized")

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := connectDB(rootCtx, cfg)
	if err != nil {
		lg.Fatal("Failed to connect to database", "error", err)
	}
	defer dbPool.Close()
	lg.Info("Connected to database")

	if err := services.EnsureSchema(rootCtx, dbPool); err != nil {
		lg.Fatal("Failed to apply schema", "error", err)
	}

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		lg.Fatal("Failed to load exercise catalog", "error", err)
	}
	lg.Info("Catalog loaded", "exercises", cat.Len(), "badges", len(cat.Badges()))

	userService := services.NewUserService(dbPool)
	activityService := services.NewActivityService(dbPool)
	progressService := services.NewProgressService(dbPool)
	notificationService := services.NewNotificationService(dbPool)
	engagementService := services.NewEngagementService(activityService, progressService, cat, cfg.Location, lg.With("component", "engagement"))

	dispatcher := services.NewNotificationDispatcher(notificationService, services.DefaultDispatchWorkers, lg.With("component", "push"))
	defer dispatcher.Stop()
	fcmService, err := notification.NewFCMService(rootCtx, cfg.FCMServiceAccountPath, lg)
	if err != nil {
		lg.Warn("FCM disabled, badge pushes will be skipped", "error", err)
	} else {
		dispatcher.SetPushProvider(fcmService)
	}
	engagementService.SetNotifier(dispatcher)

	workers.NewWeeklyResetWorker(progressService, cfg.Location, lg.With("component", "weekly_reset")).Start(rootCtx)

	metrics.Register(prometheus.DefaultRegisterer)
	middleware.InitPrometheus(prometheus.DefaultRegisterer)

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go limiter.Cleanup(rootCtx, 3*time.Minute)

	activityHandler := handlers.NewActivityHandler(engagementService, lg)
	progressHandler := handlers.NewProgressHandler(engagementService, lg)
	deviceHandler := handlers.NewDeviceHandler(notificationService, lg)

	r := mux.NewRouter()
	r.Use(limiter.Middleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(cfg.MetricsUser, cfg.MetricsPass)(promhttp.Handler()))
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := dbPool.Ping(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)

	if cfg.ClerkWebhookSecret != "" {
		webhookHandler, err := handlers.NewWebhookHandler(userService, cfg.ClerkWebhookSecret, lg)
		if err != nil {
			lg.Fatal("Failed to init Clerk webhook", "error", err)
		}
		r.HandleFunc("/webhooks/clerk", webhookHandler.HandleClerkWebhook).Methods(http.MethodPost)
	} else {
		lg.Warn("CLERK_WEBHOOK_SECRET not set, account deletion webhook disabled")
	}

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.ClerkAuthMiddleware(middleware.ClerkVerifier, lg))
	api.Use(middleware.ResolveUserMiddleware(userService, lg))
	handlers.RegisterRoutes(api, activityHandler, progressHandler, deviceHandler)

	corsHandler := gorillaHandlers.CORS(
		gorillaHandlers.AllowedOrigins([]string{"*"}),
		gorillaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorillaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	server := http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		lg.Info("Starting server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			lg.Fatal("Error starting server", "error", err)
		}
	}()

	<-rootCtx.Done()
	lg.Info("Shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		lg.Error("Server shutdown error", "error", err)
	}

	lg.Info("Server shutdown complete")
}

func connectDB(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	poolConfig.MaxConns = cfg.DBMaxConns
	poolConfig.MinConns = cfg.DBMinConns
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}
