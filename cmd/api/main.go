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

	"github.com/gin-gonic/gin"

	"github.com/axioniz/axioniz-api/config"
	"github.com/axioniz/axioniz-api/internal/cache"
	"github.com/axioniz/axioniz-api/internal/notification"
	"github.com/axioniz/axioniz-api/internal/repository"
	"github.com/axioniz/axioniz-api/internal/server"
	"github.com/axioniz/axioniz-api/internal/services"
	"github.com/axioniz/axioniz-api/pkg/archive"
	"github.com/axioniz/axioniz-api/pkg/httpclient"
	"github.com/axioniz/axioniz-api/pkg/logger"
	"github.com/axioniz/axioniz-api/pkg/metrics"
	"github.com/axioniz/axioniz-api/pkg/profiling"
	"github.com/axioniz/axioniz-api/pkg/tracing"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		Environment: cfg.Server.AppEnv,
		ServiceName: cfg.Observability.ServiceName,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Axioniz API",
		zap.String("version", cfg.Observability.ServiceVersion),
		zap.String("environment", cfg.Server.AppEnv),
	)

	// Initialize distributed tracing
	tracerShutdown, err := tracing.InitTracer(tracing.Config{
		ServiceName:       cfg.Observability.ServiceName,
		ServiceNamespace:  cfg.Observability.ServiceNamespace,
		ServiceVersion:    cfg.Observability.ServiceVersion,
		ServiceInstanceID: cfg.Observability.ServiceInstanceID,
		Environment:       cfg.Server.AppEnv,
		Endpoint:          cfg.Observability.ExporterEndpoint,
	})
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tracerShutdown(ctx); shutdownErr != nil {
			logger.Error("Failed to shutdown tracer", zap.Error(shutdownErr))
		}
	}()

	stopProfiler, err := profiling.InitProfiler(cfg.Profiling, profiling.Service{
		Name:        cfg.Observability.ServiceName,
		Namespace:   cfg.Observability.ServiceNamespace,
		Version:     cfg.Observability.ServiceVersion,
		InstanceID:  cfg.Observability.ServiceInstanceID,
		Environment: cfg.Server.AppEnv,
	})
	if err != nil {
		logger.Fatal("Failed to initialize profiler", zap.Error(err))
	}
	defer stopProfiler()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.RecordInfrastructureMetrics(ctx)

	// Storage: PostgreSQL, SQLite (development) or memory
	dataSource, err := repository.NewConsultationDataSource(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize consultation storage", zap.Error(err))
	}
	defer func() {
		if closeErr := dataSource.Close(); closeErr != nil {
			logger.Error("Failed to close consultation storage", zap.Error(closeErr))
		}
	}()

	consultationsCache := cache.NewConsultationsCache(cfg.Cache.ConsultationsTTLSeconds, cfg.Cache.DisableConsultationsCache)
	consultationRepo := repository.NewConsultationRepository(dataSource, consultationsCache)

	if initErr := consultationRepo.Initialize(ctx); initErr != nil {
		// Submissions retry initialization, so startup continues
		logger.Warn("Consultation storage not initialized at startup", zap.Error(initErr))
	}

	var sender notification.Sender
	if cfg.SMTP.Configured() {
		sender = notification.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Email, cfg.SMTP.Password)
	} else {
		logger.Warn("SMTP credentials not set, consultation emails are disabled")
	}
	dispatcher := notification.NewDispatcher(notification.Config{
		FromEmail:  cfg.SMTP.Email,
		FromName:   cfg.SMTP.FromName,
		Password:   cfg.SMTP.Password,
		TeamEmail:  cfg.SMTP.TeamEmail,
		WebsiteURL: cfg.Server.BaseURL,
		Relay:      fmt.Sprintf("%s:%d", cfg.SMTP.Host, cfg.SMTP.Port),
	}, sender)

	// A nil *StorageClient inside the interface would not compare equal to nil
	var archiver services.Archiver
	if cfg.Archive.Enabled() {
		storageClient, archiveErr := archive.NewStorageClient(archive.Config{
			AccessKeyID:     cfg.Archive.AccessKeyID,
			SecretAccessKey: cfg.Archive.SecretAccessKey,
			Bucket:          cfg.Archive.Bucket,
			Endpoint:        cfg.Archive.Endpoint,
			Region:          cfg.Archive.Region,
			Prefix:          cfg.Archive.Prefix,
		})
		if archiveErr != nil {
			logger.Fatal("Failed to initialize consultation archive", zap.Error(archiveErr))
		}
		archiver = storageClient
	}

	httpClient := httpclient.NewStandardClient()

	consultationService := services.NewConsultationService(consultationRepo, dispatcher, archiver, cfg, httpClient)
	adminConsultationsService := services.NewAdminConsultationsService(consultationRepo, dispatcher)
	adminAuthService := services.NewAdminAuthService(cfg)

	gin.SetMode(cfg.Server.GinMode)
	router := server.NewRouter(ctx, server.Dependencies{
		Config:             cfg,
		Storage:            consultationRepo.Backend(),
		Consultations:      consultationService,
		AdminConsultations: adminConsultationsService,
		AdminAuth:          adminAuthService,
	})

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second, // two SMTP round-trips per submission
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.Info("Server started",
			zap.String("port", cfg.Server.Port),
			zap.String("storage", consultationRepo.Backend()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
