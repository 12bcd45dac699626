package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"delivery-pricing/internal/config"
	"delivery-pricing/internal/database"
	"delivery-pricing/internal/handlers"
	"delivery-pricing/internal/kafka"
	"delivery-pricing/internal/logger"
	"delivery-pricing/internal/models"
	"delivery-pricing/internal/redis"
	"delivery-pricing/internal/services"

	"github.com/justinas/alice"
	"github.com/rs/cors"
)

// Фабричные функции для подключения внешних сервисов (подменяемые в тестах).
var (
	dbConnect        = database.Connect
	redisConnect     = redis.Connect
	newKafkaProducer = kafka.NewProducer
	newKafkaConsumer = kafka.NewConsumer
	kafkaHealthCheck = handlers.CheckKafkaBrokers
	loadConfig       = config.Load
	newLogger        = logger.New
)

// application агрегирует собранные зависимости.
type application struct {
	cfg      *config.Config
	log      *logger.Logger
	db       *database.DB
	redis    *redis.Client
	producer *kafka.Producer
	consumer *kafka.Consumer
	handler  http.Handler
	server   *http.Server
}

func main() {
	app, err := buildApplication()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build app: %v\n", err)
		os.Exit(1)
	}
	app.log.WithField("venue_source", app.cfg.VenueAPI.Source).Info("Starting delivery pricing server...")

	go func() {
		app.log.WithField("address", app.server.Addr).Info("HTTP server starting")
		if err := app.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	app.log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := app.server.Shutdown(ctx); err != nil {
		app.log.WithError(err).Error("Server forced to shutdown")
	}
	app.close()
	app.log.Info("Server exited")
}

// close освобождает внешние подключения; все Close безопасны для nil.
func (a *application) close() {
	_ = a.consumer.Stop()
	_ = a.producer.Close()
	_ = a.redis.Close()
	_ = a.db.Close()
	_ = a.log.Close()
}

// buildApplication создает все зависимости (подменяемые в тестах).
func buildApplication() (*application, error) {
	cfg := loadConfig()
	log := newLogger(&cfg.Logger)
	app := &application{cfg: cfg, log: log}

	redisClient, err := redisConnect(&cfg.Redis, log)
	if err != nil {
		return nil, fmt.Errorf("redis connect: %w", err)
	}
	app.redis = redisClient

	var source services.VenueSource
	switch cfg.VenueAPI.Source {
	case config.VenueSourceHTTP:
		source = services.NewVenueAPIClient(&cfg.VenueAPI, log)
	case config.VenueSourcePostgres:
		db, err := dbConnect(&cfg.Database, log)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("db connect: %w", err)
		}
		app.db = db
		source = services.NewVenueStore(db, log)
	default:
		app.close()
		return nil, fmt.Errorf("unknown venue source %q", cfg.VenueAPI.Source)
	}

	producer, err := newKafkaProducer(&cfg.Kafka, log)
	if err != nil {
		app.close()
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	app.producer = producer

	consumer, err := newKafkaConsumer(&cfg.Kafka, log)
	if err != nil {
		app.close()
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	app.consumer = consumer

	venueService := services.NewVenueService(source, redisClient, log, &cfg.VenueAPI)
	pricingService := services.NewPricingService(venueService, producer, log)
	rateLimiter := services.NewRateLimiter(redisClient, log, &cfg.RateLimit)

	var dbHealth handlers.DBHealth
	if app.db != nil {
		dbHealth = app.db
	}

	priceHandler := handlers.NewPriceHandler(pricingService, log)
	venueHandler := handlers.NewVenueHandler(venueService, producer, log)
	healthHandler := handlers.NewHealthHandler(dbHealth, redisClient, cfg.Kafka.Brokers, kafkaHealthCheck)
	rateLimitHandler := handlers.NewRateLimitHandler(rateLimiter, log, &cfg.RateLimit)

	consumer.RegisterHandler(models.EventTypeVenuePricingUpdated, venueService.HandleVenuePricingUpdated)
	if err := consumer.Start(); err != nil {
		app.close()
		return nil, fmt.Errorf("kafka consumer start: %w", err)
	}

	app.handler = setupRoutes(routes{
		price:     priceHandler,
		venue:     venueHandler,
		health:    healthHandler,
		rateLimit: rateLimitHandler,
	}, rateLimiter, cfg, log)

	app.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      app.handler,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	return app, nil
}

// routes набор обработчиков HTTP API
type routes struct {
	price     *handlers.PriceHandler
	venue     *handlers.VenueHandler
	health    *handlers.HealthHandler
	rateLimit *handlers.RateLimitHandler
}

// setupRoutes настраивает маршруты и цепочку middleware HTTP сервера
func setupRoutes(r routes, limiter handlers.MiddlewareLimiter, cfg *config.Config, log *logger.Logger) http.Handler {
	mux := http.NewServeMux()
	api := alice.New(handlers.RateLimit(limiter, log))
	admin := api.Append(handlers.AdminOnly(cfg.Admin.Token, log))

	// Health check endpoints
	mux.HandleFunc("/health", r.health.Health)
	mux.HandleFunc("/health/readiness", r.health.Readiness)
	mux.HandleFunc("/health/liveness", r.health.Liveness)

	// Pricing
	mux.Handle("/api/v1/delivery-order-price", api.ThenFunc(r.price.GetDeliveryOrderPrice))

	// Venue cache (служебный маршрут)
	mux.Handle("/api/v1/venues/", admin.ThenFunc(r.venue.InvalidateVenue))

	// Rate limit status
	mux.HandleFunc("/api/rate-limit/status", r.rateLimit.Status)

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", handlers.RequestIDHeader},
		ExposedHeaders: []string{
			handlers.RequestIDHeader,
			"X-RateLimit-Limit",
			"X-RateLimit-Remaining",
			"X-RateLimit-Reset",
		},
	})

	return alice.New(handlers.RequestLogger(log), c.Handler).Then(mux)
}
