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

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	beginBookingHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/begin_booking"
	cancelBookingHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/cancel_booking"
	checkAvailabilityHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/check_availability"
	completeBookingHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/complete_booking"
	confirmBookingHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/confirm_booking"
	evaluateBookingHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/evaluate_booking"
	getBookingHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_booking"
	getProfessionalBookingsHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_professional_bookings"
	getScheduleHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_schedule"
	getUserBookingsHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_user_bookings"
	initiatePaymentHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/initiate_payment"
	paymentReturnHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/payment_return"
	rescheduleBookingHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/reschedule_booking"
	reserveBookingHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/reserve_booking"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/config"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/lock"
	bookingRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/booking"
	intentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/intent"
	directoryClient "github.com/m04kA/SMC-AppointmentService/internal/integrations/directory"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/events"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/stripecheckout"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/vnpay"
	bookingsService "github.com/m04kA/SMC-AppointmentService/internal/service/bookings"
	"github.com/m04kA/SMC-AppointmentService/internal/service/intentsweeper"
	"github.com/m04kA/SMC-AppointmentService/internal/service/slotindex"
	"github.com/m04kA/SMC-AppointmentService/internal/service/timing"
	checkAvailabilityUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/check_availability"
	consumePaymentUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/consume_payment"
	getScheduleUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/get_schedule"
	initiatePaymentUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/initiate_payment"
	reserveBookingUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/reserve_booking"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
	"github.com/m04kA/SMC-AppointmentService/pkg/metrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/txmanager"
)

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

	log.Info("Starting SMC-AppointmentService...")

	policies, err := cfg.Policy.PolicySet()
	if err != nil {
		log.Fatal("Invalid scheduling policy: %v", err)
	}
	loc := policies.Default.Loc()
	log.Info("Scheduling policy loaded: timezone=%s, overrides=%d", loc, len(policies.Overrides))

	// Инициализируем метрики (если включены)
	var (
		metricsCollector *metrics.Metrics
		dbRecorder       dbmetrics.Recorder
	)
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		dbRecorder = metricsCollector
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

	wrappedDB := dbmetrics.WrapWithDefault(db, dbRecorder, stopMetricsCh)
	txMgr := txmanager.NewTransactionManager(wrappedDB)

	// Репозитории
	bookings := bookingRepo.NewRepository(wrappedDB)
	intents := intentRepo.NewRepository(wrappedDB)

	// In-flight блокировки: Redis при нескольких инстансах, иначе память процесса
	var guard bookingsService.Guard
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		redisGuard := lock.NewRedisGuard(redisClient, cfg.GuardTTL())
		if err := redisGuard.Ping(context.Background()); err != nil {
			log.Warn("Redis is not reachable at %s, transitions will fail until it recovers: %v", cfg.Redis.Addr, err)
		}
		guard = redisGuard
		log.Info("In-flight guard: redis (addr=%s, ttl=%s)", cfg.Redis.Addr, cfg.GuardTTL())
	} else {
		guard = lock.NewMemoryGuard(cfg.GuardTTL())
		log.Info("In-flight guard: in-memory (ttl=%s)", cfg.GuardTTL())
	}

	// События жизненного цикла
	var publisher reserveBookingUC.EventPublisher = events.NopPublisher{}
	if cfg.RabbitMQ.URL != "" {
		amqpPublisher, err := events.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			log.Fatal("Failed to connect to RabbitMQ: %v", err)
		}
		defer amqpPublisher.Close()
		publisher = amqpPublisher
		log.Info("Booking events are published to exchange %q", cfg.RabbitMQ.Exchange)
	} else {
		log.Warn("RabbitMQ url is empty, booking events are not published")
	}

	// Интеграционные клиенты
	directory := directoryClient.NewClient(
		cfg.Directory.URL,
		time.Duration(cfg.Directory.Timeout)*time.Second,
		log,
	)
	log.Info("Directory client initialized (url=%s timeout=%ds)", cfg.Directory.URL, cfg.Directory.Timeout)

	initiateGateways, consumeGateways := buildGateways(cfg, log)

	// Сервисы и use cases
	index := slotindex.NewIndex(bookings, loc)

	checkAvailabilityUseCase := checkAvailabilityUC.NewUseCase(
		index,
		directory,
		policies,
		metricsCollector,
		cfg.Availability.MaxParallel,
		cfg.CandidateTimeout(),
		log,
	)

	getScheduleUseCase := getScheduleUC.NewUseCase(index, policies, log)

	reserveBookingUseCase := reserveBookingUC.NewUseCase(
		bookings,
		index,
		checkAvailabilityUseCase,
		policies,
		publisher,
		metricsCollector,
		txMgr,
		log,
	)

	initiatePaymentUseCase := initiatePaymentUC.NewUseCase(
		intents,
		index,
		checkAvailabilityUseCase,
		initiateGateways,
		policies,
		initiatePaymentUC.Options{
			IntentTTL:     cfg.IntentTTL(),
			DefaultMethod: defaultMethod(cfg.Payment.Gateway),
			ReturnURL:     cfg.Payment.ReturnURL,
		},
		log,
	)

	consumePaymentUseCase := consumePaymentUC.NewUseCase(
		intents,
		reserveBookingUseCase,
		consumeGateways,
		policies,
		publisher,
		metricsCollector,
		txMgr,
		log,
	)

	bookingSvc := bookingsService.NewService(
		bookings,
		index,
		timing.NewRecorder(),
		guard,
		policies,
		publisher,
		metricsCollector,
		txMgr,
		log,
	)

	sweeper, err := intentsweeper.New(intents, metricsCollector, cfg.Payment.SweepSchedule, log)
	if err != nil {
		log.Fatal("Failed to schedule intent sweeper: %v", err)
	}
	sweeper.Start()

	// Инициализируем handlers
	checkAvailability := checkAvailabilityHandler.NewHandler(checkAvailabilityUseCase, log)
	getSchedule := getScheduleHandler.NewHandler(getScheduleUseCase, log)
	reserveBooking := reserveBookingHandler.NewHandler(reserveBookingUseCase, loc, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	getUserBookings := getUserBookingsHandler.NewHandler(bookingSvc, log)
	getProfessionalBookings := getProfessionalBookingsHandler.NewHandler(bookingSvc, loc, log)
	confirmBooking := confirmBookingHandler.NewHandler(bookingSvc, log)
	rescheduleBooking := rescheduleBookingHandler.NewHandler(bookingSvc, log)
	beginBooking := beginBookingHandler.NewHandler(bookingSvc, log)
	completeBooking := completeBookingHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	evaluateBooking := evaluateBookingHandler.NewHandler(bookingSvc, log)
	initiatePayment := initiatePaymentHandler.NewHandler(initiatePaymentUseCase, log)
	paymentReturn := paymentReturnHandler.NewHandler(consumePaymentUseCase, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, log)
		api.Use(limiter.Middleware)
		log.Info("Rate limit enabled: %.1f rps, burst %d per IP", cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	}

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	api.HandleFunc("/availability", checkAvailability.Handle).Methods(http.MethodGet)
	api.HandleFunc("/professionals/{professionalId}/schedule", getSchedule.Handle).Methods(http.MethodGet)

	// Возврат покупателя с платёжного шлюза
	api.HandleFunc("/payments/return", paymentReturn.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования ---
	protected.HandleFunc("/bookings", reserveBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}/confirm", confirmBooking.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{bookingId}/reschedule", rescheduleBooking.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{bookingId}/begin", beginBooking.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{bookingId}/complete", completeBooking.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{bookingId}/evaluate", evaluateBooking.Handle).Methods(http.MethodPatch)

	// История бронирований клиента
	protected.HandleFunc("/users/{userId}/bookings", getUserBookings.Handle).Methods(http.MethodGet)

	// Расписание специалиста
	protected.HandleFunc("/professionals/{professionalId}/bookings", getProfessionalBookings.Handle).Methods(http.MethodGet)

	// --- Оплата ---
	protected.HandleFunc("/payments", initiatePayment.Handle).Methods(http.MethodPost)

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

	sweeper.Stop(shutdownCtx)

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	log.Info("Server stopped gracefully")
}

// buildGateways создаёт шлюзы, для которых заданы реквизиты.
// Возврат покупателя принимается от любого настроенного шлюза.
func buildGateways(cfg *config.Config, log *logger.Logger) ([]initiatePaymentUC.Gateway, []consumePaymentUC.Gateway) {
	var (
		initiate []initiatePaymentUC.Gateway
		consume  []consumePaymentUC.Gateway
	)

	if vc := cfg.Payment.VNPay; vc.TmnCode != "" && vc.HashSecret != "" {
		gw := vnpay.NewGateway(vnpay.Config{
			TmnCode:    vc.TmnCode,
			HashSecret: vc.HashSecret,
			PayURL:     vc.PayURL,
			Locale:     vc.Locale,
			BankCode:   vc.BankCode,
			Expire:     time.Duration(vc.ExpireMinutes) * time.Minute,
		})
		initiate = append(initiate, gw)
		consume = append(consume, gw)
		log.Info("Payment gateway enabled: VNPay (tmn=%s)", vc.TmnCode)
	}

	if sc := cfg.Payment.Stripe; sc.SecretKey != "" {
		gw := stripecheckout.NewGateway(stripecheckout.Config{
			SecretKey: sc.SecretKey,
			Currency:  sc.Currency,
			CancelURL: sc.CancelURL,
		}, nil)
		initiate = append(initiate, gw)
		consume = append(consume, gw)
		log.Info("Payment gateway enabled: Stripe Checkout (currency=%s)", sc.Currency)
	}

	return initiate, consume
}

func defaultMethod(gateway string) domain.PaymentMethod {
	if gateway == "stripe" {
		return domain.MethodStripe
	}
	return domain.MethodVNPay
}
