package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/NeuralTrust/TrustGuard/pkg/app/monitor"
	"github.com/NeuralTrust/TrustGuard/pkg/common"
	"github.com/NeuralTrust/TrustGuard/pkg/config"
	"github.com/NeuralTrust/TrustGuard/pkg/domain/platform"
	domainTelemetry "github.com/NeuralTrust/TrustGuard/pkg/domain/telemetry"
	handlers "github.com/NeuralTrust/TrustGuard/pkg/handlers/http"
	"github.com/NeuralTrust/TrustGuard/pkg/infra/httpx"
	"github.com/NeuralTrust/TrustGuard/pkg/infra/jwt"
	infraLogger "github.com/NeuralTrust/TrustGuard/pkg/infra/logger"
	"github.com/NeuralTrust/TrustGuard/pkg/infra/navigation"
	"github.com/NeuralTrust/TrustGuard/pkg/infra/prometheus"
	"github.com/NeuralTrust/TrustGuard/pkg/infra/repository"
	"github.com/NeuralTrust/TrustGuard/pkg/infra/storage"
	"github.com/NeuralTrust/TrustGuard/pkg/infra/telemetry"
	"github.com/NeuralTrust/TrustGuard/pkg/infra/telemetry/kafka"
	"github.com/NeuralTrust/TrustGuard/pkg/middleware"
	"github.com/NeuralTrust/TrustGuard/pkg/server"
	"github.com/NeuralTrust/TrustGuard/pkg/server/router"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func main() {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = common.DefaultEnvFile
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Println("no .env file found, using system environment variables")
	}

	configDir := os.Getenv("CONFIG_DIR")
	if configDir == "" {
		configDir = common.DefaultConfigDir
	}
	if err := config.Load(configDir); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.GetConfig()

	logger, closeLogger, err := infraLogger.NewLogger(infraLogger.Options{
		Component: "trustguard",
		Level:     cfg.Logging.Level,
		Console:   cfg.Logging.Console,
		File:      cfg.Logging.File,
	})
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer closeLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var metrics *prometheus.SecurityMetrics
	if cfg.Metrics.Enabled {
		metrics = prometheus.Initialize()
	}

	store, closeStore := initializeStorage(cfg, logger)
	defer closeStore()

	document, err := navigation.NewDocument(navigation.Options{
		Origin:    cfg.Document.Origin,
		UserAgent: cfg.Document.UserAgent,
		StartPath: cfg.Document.StartPath,
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to initialize navigation document")
	}

	exporters, err := initializeExporters(cfg)
	if err != nil {
		logger.WithError(err).Fatal("failed to initialize telemetry exporters")
	}
	worker := telemetry.NewWorker(logger, telemetry.WorkerOptions{
		Exporters: exporters,
		Origin:    document.Origin(),
		QueueSize: cfg.Telemetry.QueueSize,
		Metrics:   metrics,
	})
	worker.StartWorkers(cfg.Telemetry.Workers)

	securityMonitor, err := monitor.NewSecurityMonitor(logger, monitor.Options{
		Config:     monitor.NewConfig(cfg.Monitor),
		Storage:    store,
		Navigator:  document,
		Window:     document,
		Repository: repository.NewEventLogRepository(store),
		Sink:       worker,
		Metrics:    metrics,
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to initialize security monitor")
	}

	if err := securityMonitor.StartMonitoring(ctx); err != nil {
		logger.WithError(err).Error("continuing without security monitoring")
	}

	// every outbound call of the host goes through the guarded requester
	requester := securityMonitor.GuardRequester(httpx.NewClient(httpx.ClientOptions{
		Name:        "outbound",
		Timeout:     cfg.Outbound.Timeout,
		MaxFailures: cfg.Outbound.MaxFailures,
		OpenTimeout: cfg.Outbound.OpenTimeout,
	}, logger))
	probeOrigin(ctx, requester, document.Origin(), logger)

	adminServer := initializeAdminServer(cfg, logger, securityMonitor)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return adminServer.Run()
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		securityMonitor.StopMonitoring()
		worker.Shutdown()

		done := make(chan error, 1)
		go func() { done <- adminServer.Shutdown() }()
		select {
		case err := <-done:
			return err
		case <-time.After(common.ShutdownTimeout):
			return errors.New("admin server shutdown timed out")
		}
	})

	if err := g.Wait(); err != nil {
		logger.WithError(err).Error("server stopped with error")
	}
	logger.Info("server exited")
}

func probeOrigin(ctx context.Context, requester platform.Requester, origin string, logger *logrus.Logger) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, origin, nil)
	if err != nil {
		logger.WithError(err).Warn("failed to build origin probe")
		return
	}
	resp, err := requester.Do(req)
	if err != nil {
		logger.WithError(err).WithField("origin", origin).Warn("origin is not reachable")
		return
	}
	_ = resp.Body.Close()
	logger.WithFields(logrus.Fields{
		"origin": origin,
		"status": resp.StatusCode,
	}).Info("origin reachable")
}

func initializeStorage(cfg *config.Config, logger *logrus.Logger) (platform.Storage, func()) {
	if !cfg.Redis.Enabled {
		logger.Info("using in-memory storage")
		return storage.NewMemoryStorage(), func() {}
	}
	redisStorage, err := storage.NewRedisStorage(storage.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		TLS:      cfg.Redis.TLS,
		Prefix:   cfg.Redis.Prefix,
		TTL:      cfg.Redis.TTL,
	}, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to initialize redis storage")
	}
	return redisStorage, func() {
		if err := redisStorage.Close(); err != nil {
			logger.WithError(err).Warn("failed to close redis storage")
		}
	}
}

func initializeExporters(cfg *config.Config) ([]domainTelemetry.Exporter, error) {
	if !cfg.Telemetry.Enabled {
		return nil, nil
	}
	locator := telemetry.NewExporterLocator(
		telemetry.WithExporter(kafka.ExporterName, kafka.NewKafkaExporter()),
	)
	return locator.Build(cfg.Telemetry.ExporterCfg)
}

func initializeAdminServer(
	cfg *config.Config,
	logger *logrus.Logger,
	securityMonitor *monitor.SecurityMonitor,
) *server.AdminServer {
	middlewareTransport := middleware.NewTransport(middleware.NewPanicRecoverMiddleware(logger))
	if cfg.Server.SecretKey != "" {
		middlewareTransport.RegisterMiddleware(
			middleware.NewAdminAuthMiddleware(logger, jwt.NewJwtManager(cfg.Server.SecretKey), securityMonitor),
		)
	} else {
		logger.Warn("server.secret_key is empty, admin api is not authenticated")
	}

	handlerTransport := &handlers.HandlerTransport{
		GetVersionHandler:          handlers.NewGetVersionHandler(logger),
		GetThreatReportHandler:     handlers.NewGetThreatReportHandler(logger, securityMonitor),
		ListSecurityEventsHandler:  handlers.NewListSecurityEventsHandler(logger, securityMonitor),
		LogSecurityEventHandler:    handlers.NewLogSecurityEventHandler(logger, securityMonitor),
		ClearSecurityEventsHandler: handlers.NewClearSecurityEventsHandler(logger, securityMonitor),
	}

	return server.NewAdminServer(server.AdminServerDI{
		Config:  cfg,
		Logger:  logger,
		Routers: []router.ServerRouter{router.NewAdminRouter(middlewareTransport, handlerTransport)},
	})
}
