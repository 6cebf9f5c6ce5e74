package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	emailAdapter "github.com/Abdurahmanit/GroupProject/promotion-service/internal/adapter/email"
	grpcAdapter "github.com/Abdurahmanit/GroupProject/promotion-service/internal/adapter/grpc"
	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/adapter/handler"
	natsAdapter "github.com/Abdurahmanit/GroupProject/promotion-service/internal/adapter/messaging/nats"
	redisAdapter "github.com/Abdurahmanit/GroupProject/promotion-service/internal/adapter/redis"
	mongoRepo "github.com/Abdurahmanit/GroupProject/promotion-service/internal/adapter/repository/mongodb"
	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/config"
	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/moderation"
	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/platform/clock"
	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/platform/tracer"
	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/promotion"
	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/scheduler"
	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/usecase"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("INFO: .env file not found or error loading: %v. Relying on OS environment variables.\n", err)
	}

	// 1. Logger and configuration
	appLogger := logger.NewLogger()
	defer func() { _ = appLogger.Sync() }()

	cfg, err := config.LoadConfig(appLogger)
	if err != nil {
		appLogger.Fatal("Failed to load configuration", zap.Error(err))
	}
	appLogger.Info("Application starting...", zap.String("service_name", cfg.ServiceName))

	// 2. Tracing. Without an endpoint the provider has no exporter but the
	// propagator is still installed so trace context crosses NATS and gRPC.
	tp := tracer.InitTracer(cfg.ServiceName, cfg.OTExporterOTLPEndpoint, appLogger)
	defer func() {
		ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()
		if err := tp.Shutdown(ctxShutdown); err != nil {
			appLogger.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}()

	// 3. Metrics
	metricsManager := metrics.NewMetricsManager(cfg.ServiceName)
	metricsSrv := metrics.NewMetricsServer(cfg.PrometheusMetricsPort, metricsManager.Registry)
	if cfg.PrometheusMetricsPort != "" {
		go func() {
			appLogger.Info("Starting Prometheus metrics server", zap.String("port", cfg.PrometheusMetricsPort))
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				appLogger.Error("Prometheus metrics server failed", zap.Error(err))
			}
		}()
	}

	// 4. Storage, cache and messaging
	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStartup()

	mongoClient, err := mongoRepo.NewClient(startupCtx, cfg.MongoURI)
	if err != nil {
		appLogger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			appLogger.Error("Error disconnecting from MongoDB", zap.Error(err))
		}
	}()
	db := mongoClient.Database(cfg.MongoDatabase)
	listingRepo := mongoRepo.NewListingRepository(db, appLogger)
	reportRepo := mongoRepo.NewReportRepository(db, appLogger)
	appLogger.Info("MongoDB repositories initialized.", zap.String("database", cfg.MongoDatabase))

	redisClient, err := redisAdapter.NewClient(startupCtx, redisAdapter.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() { _ = redisClient.Close() }()
	listingCache := redisAdapter.NewListingCache(redisClient, appLogger)
	sweepLease := redisAdapter.NewSweepLease(redisClient)

	natsConn, err := natsAdapter.Connect(cfg.NATSURL, appLogger, cfg.ServiceName)
	if err != nil {
		appLogger.Fatal("Failed to connect to NATS", zap.Error(err))
	}
	publisher := natsAdapter.NewPublisher(natsConn, appLogger)
	defer publisher.Close()

	var alerter usecase.ReportAlerter
	if cfg.SMTPHost != "" {
		a, err := emailAdapter.NewReportAlerter(emailAdapter.SMTPConfig{
			Host:       cfg.SMTPHost,
			Port:       cfg.SMTPPort,
			Username:   cfg.SMTPUser,
			Password:   cfg.SMTPPassword,
			Sender:     cfg.SMTPSender,
			Recipients: cfg.AlertRecipients(),
		}, appLogger)
		if err != nil {
			appLogger.Warn("SMTP alerter disabled", zap.Error(err))
		} else {
			alerter = a
		}
	}

	// 5. Core managers and use cases
	clk := clock.NewReal()
	promoManager := promotion.NewManager(clk, promotion.Config{
		BumpInterval:     cfg.BumpInterval,
		PresenceDuration: cfg.PresenceDuration,
		SweepConcurrency: cfg.SweepConcurrency,
	})
	modManager := moderation.NewManager(clk, moderation.WithDescriptionLimit(cfg.ReportDescriptionLimit))

	discoveryUC := usecase.NewDiscoveryUsecase(listingRepo, listingCache, promoManager, metricsManager, cfg.ListingCacheTTL, appLogger)
	promotionUC := usecase.NewPromotionUsecase(listingRepo, listingCache, publisher, sweepLease, cfg.SweepLeaseTTL, promoManager, metricsManager, appLogger)
	reportUC := usecase.NewReportUsecase(reportRepo, modManager, publisher, alerter, clk, metricsManager, appLogger)

	purchaseSub := natsAdapter.NewPurchaseSubscriber(natsConn, promotionUC, appLogger)
	if err := purchaseSub.Start(); err != nil {
		appLogger.Fatal("Failed to subscribe to boost purchases", zap.Error(err))
	}

	sweepScheduler, err := scheduler.New(promotionUC, cfg.SweepSchedule, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to configure sweep scheduler", zap.Error(err))
	}
	if err := sweepScheduler.Start(); err != nil {
		appLogger.Fatal("Failed to start sweep scheduler", zap.Error(err))
	}

	// 6. HTTP and gRPC servers
	h := handler.New(discoveryUC, promotionUC, reportUC, metricsManager, appLogger)
	httpSrv := handler.NewServer(cfg.HTTPPort, handler.NewRouter(h, cfg.JWTSecret, appLogger))
	go func() {
		appLogger.Info("Starting HTTP server", zap.String("port", cfg.HTTPPort))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		appLogger.Fatal("Failed to listen for gRPC", zap.String("port", cfg.GRPCPort), zap.Error(err))
	}
	grpcSrv, healthServer := grpcAdapter.NewGRPCServer(appLogger, cfg.JWTSecret)
	go func() {
		appLogger.Info("Starting gRPC server", zap.String("port", cfg.GRPCPort))
		if err := grpcSrv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			appLogger.Fatal("gRPC server Serve error", zap.Error(err))
		}
	}()
	grpcAdapter.SetServing(healthServer, true)

	// 7. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	appLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	grpcAdapter.SetServing(healthServer, false)
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()

	purchaseSub.Stop()
	if err := sweepScheduler.Stop(shutdownCtx); err != nil {
		appLogger.Warn("Sweep scheduler did not stop cleanly", zap.Error(err))
	}
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("HTTP server shutdown failed", zap.Error(err))
	}
	grpcSrv.GracefulStop()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Metrics server shutdown failed", zap.Error(err))
	}

	appLogger.Info("Application shutting down...")
}
