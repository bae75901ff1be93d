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
	"github.com/redis/go-redis/v9"

	cancelBookingHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/cancel_booking"
	createBookingHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/create_booking"
	getAvailableSlotsHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/get_available_slots"
	getBookingHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/get_booking"
	getClientBookingsHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/get_client_bookings"
	getCompanyBookingsHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/get_company_bookings"
	getOperatingHoursHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/get_operating_hours"
	transitionBookingHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/transition_booking"
	updateOperatingHoursHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/update_operating_hours"
	"github.com/m04kA/SMC-SchedulingService/internal/api/middleware"
	"github.com/m04kA/SMC-SchedulingService/internal/config"
	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/cache"
	bookingRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/booking"
	hoursRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/operatinghours"
	serviceRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/service"
	"github.com/m04kA/SMC-SchedulingService/internal/integrations/notifier"
	"github.com/m04kA/SMC-SchedulingService/internal/integrations/tenantservice"
	bookingsService "github.com/m04kA/SMC-SchedulingService/internal/service/bookings"
	hoursService "github.com/m04kA/SMC-SchedulingService/internal/service/operatinghours"
	createBookingUC "github.com/m04kA/SMC-SchedulingService/internal/usecase/create_booking"
	getAvailableSlotsUC "github.com/m04kA/SMC-SchedulingService/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-SchedulingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
	"github.com/m04kA/SMC-SchedulingService/pkg/metrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/txmanager"
)

// publisher общий интерфейс Kafka-публикатора и notifier.Nop
type publisher interface {
	createBookingUC.Notifier
	bookingsService.Notifier
	Close() error
}

func main() {
	configPath := "config.toml"
	if v := os.Getenv("SCHEDULING_CONFIG"); v != "" {
		configPath = v
	}

	// Загружаем конфигурацию
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

	log.Info("Starting SMC-SchedulingService...")
	log.Info("Configuration loaded from %s", configPath)

	// Метрики: при выключенных nil-коллектор делает все вызовы no-op
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})
	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)

	txMgr := txmanager.NewTransactionManager(
		wrappedDB,
		txmanager.WithMaxAttempts(cfg.Scheduling.TxMaxAttempts),
		txmanager.WithBackoff(cfg.Scheduling.TxBaseBackoff(), cfg.Scheduling.TxMaxBackoff()),
		txmanager.WithMetrics(metricsCollector),
	)

	// Репозитории
	bookingRepository := bookingRepo.NewRepository(wrappedDB)
	hoursRepository := hoursRepo.NewRepository(wrappedDB)
	serviceRepository := serviceRepo.NewRepository(wrappedDB)

	// Redis кэш расписания и каталога услуг (прозрачен, если выключен)
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			log.Warn("Redis is not reachable, cache reads will fall back to database: %v", err)
		} else {
			log.Info("Connected to Redis at %s", cfg.Redis.Address)
		}
		cancel()
		defer redisClient.Close()
	}
	catalog := cache.NewCatalog(hoursRepository, serviceRepository, redisClient, cfg.Redis.CacheTTL(), log, metricsCollector)

	// События бронирований
	var events publisher = notifier.Nop{}
	if cfg.Kafka.Enabled {
		events = notifier.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, log, metricsCollector)
		log.Info("Kafka publisher enabled (brokers=%v, topic=%s)", cfg.Kafka.Brokers, cfg.Kafka.Topic)
	}

	tenantClient := tenantservice.NewClient(
		cfg.TenantService.URL,
		time.Duration(cfg.TenantService.Timeout)*time.Second,
		log,
	)
	log.Info("TenantService client initialized (url=%s, timeout=%ds)", cfg.TenantService.URL, cfg.TenantService.Timeout)

	defaultHours, err := domain.NewDefaultHoursPolicy(
		cfg.Scheduling.DefaultHours.Enabled,
		cfg.Scheduling.DefaultHours.Open,
		cfg.Scheduling.DefaultHours.Close,
	)
	if err != nil {
		log.Fatal("Invalid default hours: %v", err)
	}
	policy := domain.BookingPolicy{
		StepMinutes:             cfg.Scheduling.SlotStepMinutes,
		MinBookingNoticeMinutes: cfg.Scheduling.MinBookingNoticeMinutes,
		AdvanceBookingDays:      cfg.Scheduling.AdvanceBookingDays,
		DefaultHours:            defaultHours,
	}

	// Сервисы
	bookingSvc := bookingsService.NewService(bookingRepository, tenantClient, events, metricsCollector, log)
	hoursSvc := hoursService.NewService(hoursRepository, catalog, tenantClient, defaultHours, log)

	// Use cases: создание читает расписание из БД, слоты - через кэш
	createBookingUseCase := createBookingUC.NewUseCase(
		bookingRepository,
		hoursRepository,
		serviceRepository,
		tenantClient,
		txMgr,
		events,
		policy,
		cfg.Scheduling.CreateTimeout(),
		metricsCollector,
		log,
	)
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		bookingRepository,
		catalog,
		catalog,
		policy,
		log,
	)

	// Handlers
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	transitionBooking := transitionBookingHandler.NewHandler(bookingSvc, log)
	getClientBookings := getClientBookingsHandler.NewHandler(bookingSvc, log)
	getCompanyBookings := getCompanyBookingsHandler.NewHandler(bookingSvc, log)
	getOperatingHours := getOperatingHoursHandler.NewHandler(hoursSvc, log)
	updateOperatingHours := updateOperatingHoursHandler.NewHandler(hoursSvc, log)

	// Роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(log))
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	api.HandleFunc("/companies/{companyId}/services/{serviceId}/available-slots",
		getAvailableSlots.Handle).Methods(http.MethodGet)
	api.HandleFunc("/companies/{companyId}/operating-hours",
		getOperatingHours.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// Создание бронирования ограничено по времени и частоте запросов
	var create http.Handler = http.HandlerFunc(createBooking.Handle)
	create = middleware.Timeout(cfg.Scheduling.CreateTimeout() + time.Second)(create)
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, 10*time.Minute, log)
		create = limiter.Middleware(create)
		log.Info("Rate limit for booking creation: rps=%.1f, burst=%d", cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}
	protected.Handle("/bookings", create).Methods(http.MethodPost)

	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}/status", transitionBooking.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/clients/{clientId}/bookings", getClientBookings.Handle).Methods(http.MethodGet)

	// --- Управление компанией (для менеджеров) ---
	protected.HandleFunc("/companies/{companyId}/bookings", getCompanyBookings.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/companies/{companyId}/operating-hours/{weekday}",
		updateOperatingHours.Handle).Methods(http.MethodPut)

	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	if err := events.Close(); err != nil {
		log.Error("Failed to close event publisher: %v", err)
	}

	close(stopMetricsCh)

	log.Info("Server stopped gracefully")
}
