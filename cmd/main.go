package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-ReservationService/internal/api"
	cancelReservationHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/cancel_reservation"
	completeReservationHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/complete_reservation"
	confirmReservationHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/confirm_reservation"
	createReservationHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/create_reservation"
	deleteReservationHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/delete_reservation"
	getAvailabilityHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/get_availability"
	getDayReservationsHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/get_day_reservations"
	getMonthReservationsHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/get_month_reservations"
	getReservationHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/get_reservation"
	getSlotsHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/get_slots"
	healthHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/health"
	listReservationsHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/list_reservations"
	updateReservationHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/update_reservation"
	"github.com/m04kA/SMC-ReservationService/internal/config"
	"github.com/m04kA/SMC-ReservationService/internal/consumer"
	"github.com/m04kA/SMC-ReservationService/internal/domain"
	availabilityCache "github.com/m04kA/SMC-ReservationService/internal/infra/cache/availability"
	"github.com/m04kA/SMC-ReservationService/internal/infra/events"
	reservationRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/reservation"
	catalogServiceClient "github.com/m04kA/SMC-ReservationService/internal/integrations/catalogservice"
	userServiceClient "github.com/m04kA/SMC-ReservationService/internal/integrations/userservice"
	"github.com/m04kA/SMC-ReservationService/internal/service/cancellation"
	"github.com/m04kA/SMC-ReservationService/internal/service/conflictguard"
	reservationsService "github.com/m04kA/SMC-ReservationService/internal/service/reservations"
	createReservationUC "github.com/m04kA/SMC-ReservationService/internal/usecase/create_reservation"
	getAvailabilityUC "github.com/m04kA/SMC-ReservationService/internal/usecase/get_availability"
	getMonthViewUC "github.com/m04kA/SMC-ReservationService/internal/usecase/get_month_view"
	"github.com/m04kA/SMC-ReservationService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ReservationService/pkg/logger"
	"github.com/m04kA/SMC-ReservationService/pkg/metrics"
	"github.com/m04kA/SMC-ReservationService/pkg/rabbitmq"
	"github.com/m04kA/SMC-ReservationService/pkg/txmanager"
)

// availabilityStore кэш занятости: redis или заглушка
type availabilityStore interface {
	Get(ctx context.Context, date time.Time) (*domain.DayAvailability, int64, error)
	Set(ctx context.Context, day domain.DayAvailability, version int64) error
	Invalidate(ctx context.Context, dates ...time.Time) error
}

// eventPublisher публикатор событий: rabbitmq или заглушка
type eventPublisher interface {
	Publish(ctx context.Context, e domain.ReservationEvent) error
}

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
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

	log.Info("Starting SMC-ReservationService...")

	catalog, err := cfg.Schedule.Catalog()
	if err != nil {
		log.Fatal("Failed to build slot catalog: %v", err)
	}
	log.Info("Slot catalog: %d slots of %d minutes, timezone=%s",
		len(catalog.All()), catalog.SlotDuration(), catalog.Location())

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName, prometheus.DefaultRegisterer)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sqlx.Open("postgres", cfg.Database.DSN())
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

	if cfg.Metrics.Enabled {
		dbmetrics.StartPoolCollector(db, metricsCollector, dbmetrics.DefaultInterval, stopMetricsCh)
		log.Info("Database pool metrics collection started")
	}

	// Кэш занятости (опционально)
	var cache availabilityStore = availabilityCache.Noop{}
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Warn("Redis unavailable at %s, availability cache disabled: %v", cfg.Redis.Addr, err)
		} else {
			cache = availabilityCache.New(redisClient, time.Duration(cfg.Redis.CacheTTL)*time.Second)
			log.Info("Availability cache enabled (redis=%s, ttl=%ds)", cfg.Redis.Addr, cfg.Redis.CacheTTL)
		}
	}

	// События (опционально)
	var publisher eventPublisher = events.Noop{}
	if cfg.RabbitMQ.Enabled {
		broker, err := rabbitmq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			log.Fatal("Failed to connect to RabbitMQ: %v", err)
		}
		defer broker.Close()

		publisher = events.NewPublisher(broker)
		log.Info("Reservation events are published to exchange %q", cfg.RabbitMQ.Exchange)
	}

	// Инициализируем интеграционных клиентов
	userClient := userServiceClient.NewClient(
		cfg.UserService.URL,
		time.Duration(cfg.UserService.Timeout)*time.Second,
		log,
	)
	catalogClient := catalogServiceClient.NewClient(
		cfg.CatalogService.URL,
		time.Duration(cfg.CatalogService.Timeout)*time.Second,
	)
	log.Info("Integration clients initialized (UserService=%s, CatalogService=%s)",
		cfg.UserService.URL, cfg.CatalogService.URL)

	// Репозиторий, транзакции и сервисы
	txManager := txmanager.NewTransactionManager(db)
	reservationRepository := reservationRepo.NewRepository(db)

	guard := conflictguard.NewGuard(reservationRepository, txManager, metricsCollector, log)
	policy := cancellation.NewPolicy(cfg.Policy.LeadTime(), catalog.Location())

	reservationSvc := reservationsService.NewService(
		reservationRepository,
		guard,
		policy,
		catalog,
		cache,
		publisher,
		metricsCollector,
		txManager,
		log,
	)

	// Инициализируем use cases
	createReservationUseCase := createReservationUC.NewUseCase(
		guard,
		catalog,
		userClient,
		catalogClient,
		cache,
		publisher,
		log,
	)
	getAvailabilityUseCase := getAvailabilityUC.NewUseCase(reservationRepository, catalog, cache, metricsCollector, log)
	getMonthViewUseCase := getMonthViewUC.NewUseCase(reservationRepository, catalog, log)

	// Подписка на историю обслуживания
	var (
		mqConsumer   *rabbitmq.Consumer
		consumerDone <-chan struct{}
	)
	consumerCtx, cancelConsumer := context.WithCancel(context.Background())
	defer cancelConsumer()
	if cfg.RabbitMQ.Enabled {
		mqConsumer, err = rabbitmq.NewConsumer(
			cfg.RabbitMQ.URL,
			cfg.RabbitMQ.Exchange,
			cfg.RabbitMQ.ServiceHistoryQueue,
			consumer.ServiceHistoryRoutingKey,
		)
		if err != nil {
			log.Fatal("Failed to create RabbitMQ consumer: %v", err)
		}

		msgs, err := mqConsumer.Consume()
		if err != nil {
			log.Fatal("Failed to start consuming: %v", err)
		}
		consumerDone = consumer.NewServiceHistoryConsumer(reservationSvc, log).Start(consumerCtx, msgs)
		log.Info("Service history consumer started (queue=%s)", cfg.RabbitMQ.ServiceHistoryQueue)
	}

	// Инициализируем handlers
	h := api.Handlers{
		CreateReservation:    createReservationHandler.NewHandler(createReservationUseCase, log),
		ListReservations:     listReservationsHandler.NewHandler(reservationSvc, log),
		GetReservation:       getReservationHandler.NewHandler(reservationSvc, log),
		GetDayReservations:   getDayReservationsHandler.NewHandler(reservationSvc, log),
		GetMonthReservations: getMonthReservationsHandler.NewHandler(getMonthViewUseCase, log),
		UpdateReservation:    updateReservationHandler.NewHandler(reservationSvc, log),
		CancelReservation:    cancelReservationHandler.NewHandler(reservationSvc, log),
		ConfirmReservation:   confirmReservationHandler.NewHandler(reservationSvc, log),
		CompleteReservation:  completeReservationHandler.NewHandler(reservationSvc, log),
		DeleteReservation:    deleteReservationHandler.NewHandler(reservationSvc, log),
		GetAvailability:      getAvailabilityHandler.NewHandler(getAvailabilityUseCase, log),
		GetSlots:             getSlotsHandler.NewHandler(catalog),
		Health:               healthHandler.NewHandler(db),
	}

	// Настраиваем роутер
	opts := api.Options{}
	if cfg.Metrics.Enabled {
		opts.Metrics = metricsCollector
		opts.MetricsPath = cfg.Metrics.Path
		opts.MetricsHandler = promhttp.Handler()
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}
	r := api.NewRouter(h, userClient, opts, log)

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

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	// Закрытие канала завершает доставку, ждём обработки текущего сообщения
	if mqConsumer != nil {
		mqConsumer.Close()
		select {
		case <-consumerDone:
			log.Info("Service history consumer stopped")
		case <-shutdownCtx.Done():
			log.Warn("Service history consumer did not stop in time")
			cancelConsumer()
		}
	}

	log.Info("Server stopped gracefully")
}
