package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	generateScheduleBookingsHandler "github.com/m04kA/SMC-RecurringService/internal/api/handlers/generate_schedule_bookings"
	getScheduleBookingsHandler "github.com/m04kA/SMC-RecurringService/internal/api/handlers/get_schedule_bookings"
	healthHandler "github.com/m04kA/SMC-RecurringService/internal/api/handlers/health"
	previewOccurrencesHandler "github.com/m04kA/SMC-RecurringService/internal/api/handlers/preview_occurrences"
	runRecurringGenerationHandler "github.com/m04kA/SMC-RecurringService/internal/api/handlers/run_recurring_generation"
	"github.com/m04kA/SMC-RecurringService/internal/api/middleware"
	"github.com/m04kA/SMC-RecurringService/internal/config"
	"github.com/m04kA/SMC-RecurringService/internal/infra/lock"
	bookingRepo "github.com/m04kA/SMC-RecurringService/internal/infra/storage/booking"
	customerRepo "github.com/m04kA/SMC-RecurringService/internal/infra/storage/customer"
	scheduleRepo "github.com/m04kA/SMC-RecurringService/internal/infra/storage/schedule"
	pricingClient "github.com/m04kA/SMC-RecurringService/internal/integrations/pricing"
	"github.com/m04kA/SMC-RecurringService/internal/scheduler"
	"github.com/m04kA/SMC-RecurringService/internal/service/recurrence"
	schedulesService "github.com/m04kA/SMC-RecurringService/internal/service/schedules"
	generateBookingsUC "github.com/m04kA/SMC-RecurringService/internal/usecase/generate_bookings"
	previewOccurrencesUC "github.com/m04kA/SMC-RecurringService/internal/usecase/preview_occurrences"
	"github.com/m04kA/SMC-RecurringService/pkg/dbmetrics"
	"github.com/m04kA/SMC-RecurringService/pkg/logger"
	"github.com/m04kA/SMC-RecurringService/pkg/metrics"
	"github.com/m04kA/SMC-RecurringService/pkg/txmanager"
)

func main() {
	// Загружаем конфигурацию
	configPath := "config.toml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		configPath = v
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-RecurringService...")
	log.Info("Configuration loaded from %s", configPath)

	// Правила генерации уже проверены в config.Validate
	rules, err := cfg.Generation.Rules()
	if err != nil {
		log.Fatal("Invalid generation rules: %v", err)
	}
	location, err := cfg.Scheduler.Location()
	if err != nil {
		log.Fatal("Invalid scheduler timezone: %v", err)
	}

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var recorder generateBookingsUC.MetricsRecorder = metrics.Nop{}
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		recorder = metricsCollector
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Обёртка с метриками; без метрик работает как обычный *sql.DB
	wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)
	txMgr := txmanager.NewTransactionManager(wrappedDB)

	// Инициализируем репозитории
	scheduleRepository := scheduleRepo.NewRepository(wrappedDB)
	bookingRepository := bookingRepo.NewRepository(wrappedDB)
	customerRepository := customerRepo.NewRepository(wrappedDB)

	// Инициализируем интеграционных клиентов
	pricing := pricingClient.NewClient(
		cfg.PricingService.URL,
		time.Duration(cfg.PricingService.Timeout)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (PricingService=%s timeout=%ds)",
		cfg.PricingService.URL, cfg.PricingService.Timeout)

	// Блокировка запуска: redis для нескольких реплик, иначе в памяти процесса
	var locker generateBookingsUC.Locker
	if cfg.Redis.Enabled {
		redisClient, err := lock.NewRedisClient(context.Background(), cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal("Failed to connect to redis: %v", err)
		}
		defer redisClient.Close()

		locker = lock.NewRedisLocker(redisClient, log)
		log.Info("Run lock backed by redis (addr=%s)", cfg.Redis.Addr)
	} else {
		locker = lock.NewLocalLocker()
		log.Warn("Redis disabled, run lock is local to this process")
	}

	// Инициализируем сервисы
	reconciler := recurrence.NewReconciler(bookingRepository)
	snapshotter := recurrence.NewSnapshotter(pricing, rules)
	scheduleSvc := schedulesService.NewService(scheduleRepository, bookingRepository, log)

	// Инициализируем use cases
	generateBookingsUseCase := generateBookingsUC.NewUseCase(
		scheduleRepository,
		bookingRepository,
		customerRepository,
		reconciler,
		snapshotter,
		txMgr,
		locker,
		recorder,
		log,
		generateBookingsUC.Options{
			Rules:      rules,
			RunTimeout: cfg.Generation.RunTimeout(),
			Location:   location,
			LockTTL:    time.Duration(cfg.Redis.LockTTLSeconds) * time.Second,
		},
	)

	previewOccurrencesUseCase := previewOccurrencesUC.NewUseCase(
		scheduleRepository,
		reconciler,
		location,
		log,
	)

	// Инициализируем handlers
	generateScheduleBookings := generateScheduleBookingsHandler.NewHandler(generateBookingsUseCase, log)
	runRecurringGeneration := runRecurringGenerationHandler.NewHandler(generateBookingsUseCase, log)
	previewOccurrences := previewOccurrencesHandler.NewHandler(previewOccurrencesUseCase, log)
	getScheduleBookings := getScheduleBookingsHandler.NewHandler(scheduleSvc, log)
	health := healthHandler.NewHandler(wrappedDB, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		log.Info("HTTP metrics middleware enabled")

		// Metrics endpoint (публичный, без аутентификации)
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// Health check (публичный)
	r.HandleFunc("/health", health.Handle).Methods(http.MethodGet)

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// JOB ROUTES (внешний планировщик, Authorization: Bearer <cron secret>)
	// ============================================================

	jobs := api.PathPrefix("/jobs").Subrouter()
	jobs.Use(middleware.CronSecret(cfg.Cron.Secret))

	// Ежемесячная генерация по всем расписаниям
	jobs.HandleFunc("/recurring-bookings", runRecurringGeneration.Handle).Methods(http.MethodGet, http.MethodPost)

	if cfg.Cron.Secret == "" {
		log.Warn("Cron secret is empty, /api/v1/jobs endpoints will reject every request")
	}

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("/recurring-schedules").Subrouter()
	protected.Use(middleware.Auth)

	// Ручная генерация по одному расписанию
	protected.HandleFunc("/{scheduleId}/generate", generateScheduleBookings.Handle).Methods(http.MethodPost)

	// Предпросмотр дат месяца
	protected.HandleFunc("/{scheduleId}/occurrences", previewOccurrences.Handle).Methods(http.MethodGet)

	// Бронирования расписания
	protected.HandleFunc("/{scheduleId}/bookings", getScheduleBookings.Handle).Methods(http.MethodGet)

	// Встроенный планировщик (если включен)
	var cronScheduler *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		cronScheduler, err = scheduler.New(cfg.Scheduler.Spec, location, generateBookingsUseCase, log)
		if err != nil {
			log.Fatal("Failed to create scheduler: %v", err)
		}
		cronScheduler.Start()
		log.Info("Scheduler enabled (spec=%q, timezone=%s)", cfg.Scheduler.Spec, cfg.Scheduler.Timezone)
	}

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if cronScheduler != nil {
		if err := cronScheduler.Stop(shutdownCtx); err != nil {
			log.Error("Scheduler forced to stop: %v", err)
		}
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	log.Info("Server stopped gracefully")
}
