package internal

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"krisha-parser-service/internal/adapters/krishafetcher"
	logger_adapter "krisha-parser-service/internal/adapters/logger"
	postgres_adapter "krisha-parser-service/internal/adapters/postgres"
	rabbitmq_adapter "krisha-parser-service/internal/adapters/rabbitmq"
	"krisha-parser-service/internal/adapters/rest"
	"krisha-parser-service/internal/configs"
	"krisha-parser-service/internal/constants"
	"krisha-parser-service/internal/contextkeys"
	"krisha-parser-service/internal/core/domain"
	"krisha-parser-service/internal/core/port"
	"krisha-parser-service/internal/core/usecase"
	fluentlogger "krisha-parser-service/pkg/fluent_logger"
	"krisha-parser-service/pkg/postgres"
	"krisha-parser-service/pkg/rabbitmq/rabbitmq_common"
	"krisha-parser-service/pkg/rabbitmq/rabbitmq_producer"

	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"
)

// App – структура приложения
type App struct {
	config        *configs.AppConfig
	dbPool        *pgxpool.Pool
	connManager   *rabbitmq_common.ConnectionManager
	eventProducer *rabbitmq_producer.Publisher
	fluentClient  *fluent.Fluent
	fileLogger    *logger_adapter.FileLoggerAdapter
	baseLogger    port.LoggerPort
	logger        port.LoggerPort

	runGuard   *usecase.RunGuard
	scheduler  *cron.Cron
	restServer *rest.Server

	appCtx    context.Context
	cancelApp context.CancelFunc
}

// NewApp создает новый экземпляр приложения.
// Это "Composition Root", где все зависимости создаются и связываются.
func NewApp() (*App, error) {
	appConfig, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}

	// --- 1. ЛОГГЕРЫ ---
	var activeLoggers []port.LoggerPort

	stdoutLogger := logger_adapter.NewSlogAdapter(logger_adapter.SlogConfig{
		Level:    logger_adapter.ParseLevel(appConfig.StdoutLogger.Level),
		UseColor: true,
	})
	activeLoggers = append(activeLoggers, stdoutLogger)

	fileLogger, logPath, err := logger_adapter.NewFileLoggerAdapter(
		appConfig.FileLogger.Dir,
		logger_adapter.ParseLevel(appConfig.FileLogger.Level),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create file logger: %w", err)
	}
	activeLoggers = append(activeLoggers, fileLogger)

	var fluentClient *fluent.Fluent
	if appConfig.FluentBit.Enabled {
		fluentClient, err = fluentlogger.NewClient(fluentlogger.Config{
			Host:         appConfig.FluentBit.Host,
			Port:         appConfig.FluentBit.Port,
			TagPrefix:    appConfig.AppName,
			Async:        true,
			WriteTimeout: 3 * time.Second,
		})
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit client", err, nil)
			_ = fileLogger.Close()
			return nil, fmt.Errorf("failed to create fluentbit client: %w", err)
		}

		fluentAdapter, err := logger_adapter.NewFluentLoggerAdapter(fluentClient, logger_adapter.ParseLevel(appConfig.FluentBit.Level))
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit adapter", err, nil)
			fluentClient.Close()
			_ = fileLogger.Close()
			return nil, err
		}
		activeLoggers = append(activeLoggers, fluentAdapter)
	}

	multiLogger, err := logger_adapter.NewMultiloggerAdapter(activeLoggers...)
	if err != nil {
		return nil, fmt.Errorf("failed to create multi-logger: %w", err)
	}

	baseLogger := multiLogger.WithFields(port.Fields{"service_name": appConfig.AppName})
	appLogger := baseLogger.WithFields(port.Fields{"component": "app"})
	appLogger.Info("Logger system initialized", port.Fields{
		"active_loggers": len(activeLoggers),
		"fluent_enabled": appConfig.FluentBit.Enabled,
		"log_file":       logPath,
	})

	application := &App{
		config:       appConfig,
		fluentClient: fluentClient,
		fileLogger:   fileLogger,
		baseLogger:   baseLogger,
		logger:       appLogger,
	}
	application.appCtx, application.cancelApp = context.WithCancel(
		contextkeys.ContextWithLogger(context.Background(), baseLogger),
	)

	if err := application.initComponents(); err != nil {
		appLogger.Error("Failed to initialize application", err, nil)
		application.closeResources()
		return nil, err
	}

	return application, nil
}

// initComponents собирает адаптеры, use cases и входящие адаптеры.
// При ошибке уже созданные ресурсы закрывает вызывающий через closeResources.
func (a *App) initComponents() error {
	cfg := a.config

	// --- 2. КОНФИГУРАЦИЯ ПОИСКА ---
	searchConfig, err := configs.LoadSearchConfig(cfg.Crawler.SearchConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load search config: %w", err)
	}
	a.logger.Info("Search config loaded", port.Fields{
		"path":             cfg.Crawler.SearchConfigPath,
		"cities":           len(searchConfig.Params.Cities),
		"max_ads_per_city": searchConfig.MaxAdsPerCity,
	})

	// --- 3. ХРАНИЛИЩЕ ---
	a.dbPool, err = postgres.NewClient(a.appCtx, postgres.Config{
		DatabaseURL:    cfg.Database.URL,
		MaxConns:       4,
		ConnectTimeout: 10 * time.Second,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	a.logger.Info("Successfully connected to PostgreSQL pool!", nil)

	adsRepo, err := postgres_adapter.NewPostgresAdsRepository(a.dbPool)
	if err != nil {
		return fmt.Errorf("failed to create ads repository: %w", err)
	}

	// --- 4. ОЧЕРЕДЬ ДЛЯ ОБРАБОТКИ ФОТОГРАФИЙ ---
	imageJob, err := a.initImageJob()
	if err != nil {
		return err
	}

	// --- 5. САЙТ ---
	photoProber := krishafetcher.NewPhotoProber(
		krishafetcher.NewCollyHeadChecker(cfg.Crawler.FetchTimeout),
		cfg.Crawler.PhotoCDNBase,
	)
	allowedDomains, err := krishafetcher.AllowedDomainsFor(searchConfig.BaseURL)
	if err != nil {
		return err
	}
	krishaAdapter, err := krishafetcher.NewKrishaFetcherAdapter(searchConfig, krishafetcher.Options{
		AllowedDomains:  allowedDomains,
		FetchRetries:    cfg.Crawler.FetchRetries,
		FetchRetryDelay: cfg.Crawler.FetchRetryDelay,
		FetchTimeout:    cfg.Crawler.FetchTimeout,
		Browser: krishafetcher.BrowserOptions{
			Headless:      cfg.Crawler.BrowserHeadless,
			ExecPath:      cfg.Crawler.BrowserExecPath,
			DetailTimeout: cfg.Crawler.DetailTimeout,
			PopupTimeout:  cfg.Crawler.PopupTimeout,
		},
	}, photoProber)
	if err != nil {
		return fmt.Errorf("failed to initialize krisha fetcher: %w", err)
	}
	a.logger.Info("All outgoing adapters initialized.", nil)

	// --- 6. USE CASES ---
	crawlUseCase := usecase.NewCrawlAdsUseCase(krishaAdapter, adsRepo, searchConfig, cfg.Crawler.AdPause, nil)
	runParsingUseCase := usecase.NewRunParsingUseCase(crawlUseCase, imageJob)
	a.runGuard = usecase.NewRunGuard(runParsingUseCase)
	a.logger.Info("All use cases initialized.", nil)

	// --- 7. ВХОДЯЩИЕ АДАПТЕРЫ ---
	a.scheduler = cron.New()
	if _, err := a.scheduler.AddFunc(cfg.Scheduler.CronSchedule, a.scheduledRun); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", cfg.Scheduler.CronSchedule, err)
	}

	runsHandler := rest.NewRunsHandler(a.appCtx, a.runGuard)
	a.restServer = rest.NewServer(cfg.HTTP.Port, runsHandler, a.baseLogger.WithFields(port.Fields{"component": "rest"}))

	return nil
}

// initImageJob подключает RabbitMQ, если он настроен. Без брокера событие только логируется.
func (a *App) initImageJob() (port.ImageJobPort, error) {
	cfg := a.config
	if cfg.RabbitMQ.URL == "" {
		a.logger.Warn("RABBITMQ_URL is not set, image job is disabled", nil)
		return rabbitmq_adapter.NoopImageJob{}, nil
	}

	connManagerBridge := rabbitmq_adapter.NewPkgLoggerBridge(a.baseLogger.WithFields(port.Fields{"component": "rabbitmq_conn_manager"}))
	connManager, err := rabbitmq_common.NewConnectionManager(rabbitmq_common.Config{URL: cfg.RabbitMQ.URL}, connManagerBridge)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection manager: %w", err)
	}
	a.connManager = connManager
	a.logger.Info("RabbitMQ Connection Manager initialized.", nil)

	producerBridge := rabbitmq_adapter.NewPkgLoggerBridge(a.baseLogger.WithFields(port.Fields{"component": "rabbitmq_producer"}))
	eventProducer, err := rabbitmq_producer.NewPublisher(rabbitmq_producer.PublisherConfig{
		Config:                   rabbitmq_common.Config{URL: cfg.RabbitMQ.URL},
		ExchangeName:             constants.ParserExchange,
		ExchangeType:             "direct",
		DurableExchange:          true,
		DeclareExchangeIfMissing: true,
		Logger:                   producerBridge,
	}, connManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create event producer: %w", err)
	}
	a.eventProducer = eventProducer
	a.logger.Info("RabbitMQ Event Producer initialized.", nil)

	imageJob, err := rabbitmq_adapter.NewImageJobAdapter(eventProducer, cfg.RabbitMQ.ImageJobRoutingKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create image job adapter: %w", err)
	}
	return imageJob, nil
}

// scheduledRun - задача планировщика. Пересечение с уже идущим запуском пропускается.
func (a *App) scheduledRun() {
	jobLogger := a.logger.WithFields(port.Fields{"trigger": "cron"})
	jobLogger.Info("Scheduled run triggered", nil)

	err := a.runGuard.RunOnce(a.appCtx)
	switch {
	case errors.Is(err, domain.ErrRunInProgress):
		jobLogger.Warn("Previous run is still in progress, skipping", nil)
	case err != nil:
		jobLogger.Error("Scheduled run failed", err, nil)
	}
}

// Run запускает все компоненты приложения и управляет их жизненным циклом.
func (a *App) Run() error {
	defer func() {
		a.logger.Info("Shutdown sequence initiated...", nil)

		stopCtx := a.scheduler.Stop()
		if err := a.restServer.Stop(context.Background()); err != nil {
			a.logger.Error("Error stopping REST server", err, nil)
		}

		// Отмена контекста прерывает текущий запуск между объявлениями
		a.cancelApp()
		a.logger.Info("Waiting for background processes to finish...", nil)
		<-stopCtx.Done()
		a.runGuard.Wait()
		a.logger.Info("All background processes finished.", nil)

		a.closeResources()
	}()

	a.logger.Info("Application is starting...", port.Fields{"cron_schedule": a.config.Scheduler.CronSchedule})

	serverErrors := make(chan error, 1)
	go func() {
		if err := a.restServer.Start(); err != nil {
			serverErrors <- err
		}
	}()

	a.scheduler.Start()

	if a.config.Scheduler.RunOnStart {
		runID, err := a.runGuard.StartRun(a.appCtx)
		if err != nil {
			a.logger.Error("Failed to start initial run", err, nil)
		} else {
			a.logger.Info("Initial run started", port.Fields{"run_id": runID.String()})
		}
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	a.logger.Info("Application running. Waiting for signals...", nil)
	select {
	case receivedSignal := <-quit:
		a.logger.Warn("Received signal, shutting down", port.Fields{"signal": receivedSignal.String()})
	case err := <-serverErrors:
		a.logger.Error("REST server failed, shutting down", err, nil)
		return err
	}

	return nil
}

// closeResources закрывает все, что успели создать. Безопасен при частичной инициализации.
func (a *App) closeResources() {
	if a.eventProducer != nil {
		if err := a.eventProducer.Close(); err != nil {
			a.logger.Error("Error closing event producer", err, nil)
		}
	}
	if a.connManager != nil {
		if err := a.connManager.Close(); err != nil {
			a.logger.Error("Error closing RabbitMQ connection manager", err, nil)
		}
	}
	if a.dbPool != nil {
		a.dbPool.Close()
		a.logger.Info("PostgreSQL pool closed.", nil)
	}
	if a.cancelApp != nil {
		a.cancelApp()
	}

	a.logger.Info("Application shut down gracefully.", nil)

	if a.fluentClient != nil {
		if err := a.fluentClient.Close(); err != nil {
			log.Printf("App: Error closing fluent client: %v\n", err)
		}
	}
	if a.fileLogger != nil {
		if err := a.fileLogger.Close(); err != nil {
			log.Printf("App: Error closing log file: %v\n", err)
		}
	}
}
