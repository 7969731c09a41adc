package main

import (
	"context"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	redisclient "github.com/redis/go-redis/v9"
	mongoadapter "github.com/robertarktes/movie-ticket-booking/internal/adapters/mongo"
	"github.com/robertarktes/movie-ticket-booking/internal/adapters/rabbit"
	redisadapter "github.com/robertarktes/movie-ticket-booking/internal/adapters/redis"
	"github.com/robertarktes/movie-ticket-booking/internal/booking"
	"github.com/robertarktes/movie-ticket-booking/internal/catalog"
	"github.com/robertarktes/movie-ticket-booking/internal/config"
	"github.com/robertarktes/movie-ticket-booking/internal/flow"
	httphandler "github.com/robertarktes/movie-ticket-booking/internal/http"
	"github.com/robertarktes/movie-ticket-booking/internal/idempotency"
	"github.com/robertarktes/movie-ticket-booking/internal/observability"
	"github.com/robertarktes/movie-ticket-booking/internal/rateLimit"
	"github.com/robertarktes/movie-ticket-booking/internal/seatmap"
	"github.com/robertarktes/movie-ticket-booking/internal/session"
	"github.com/robertarktes/movie-ticket-booking/internal/theatre"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	shutdown, err := observability.SetupOTel(context.Background(), cfg, "movie-booking-api")
	if err != nil {
		log.Fatalf("failed to setup otel: %v", err)
	}
	defer shutdown()

	logger := observability.NewLogger(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	checks := map[string]httphandler.Pinger{}

	var theatres theatre.Provider = theatre.NewStatic()
	if cfg.MongoURI != "" {
		mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			log.Fatalf("failed to connect to mongo: %v", err)
		}
		defer mongoClient.Disconnect(context.Background())
		repo := mongoadapter.NewTheatreRepository(mongoClient.Database(cfg.MongoDB), logger)
		if err := repo.Seed(ctx, theatre.Defaults()); err != nil {
			log.Fatalf("failed to seed theatres: %v", err)
		}
		theatres = repo
		checks["mongo"] = func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) }
	}

	var (
		store   session.Store
		backend idempotency.Backend
		limiter rateLimit.Limiter
	)
	if cfg.RedisAddr != "" {
		redisClient := redisclient.NewClient(&redisclient.Options{Addr: cfg.RedisAddr})
		defer redisClient.Close()
		redisCache := redisadapter.NewCache(redisClient)
		store = redisadapter.NewSessionStore(redisCache, cfg.SessionTTL)
		backend = redisadapter.NewIdempotency(redisCache)
		limiter = rateLimit.NewRateLimiter(redisCache, logger)
		checks["redis"] = redisCache.Ping
	} else {
		mem := session.NewMemoryStore(cfg.SessionTTL, logger)
		go mem.Run(ctx, cfg.SessionSweepEvery)
		store = mem
		backend = idempotency.NewMemoryBackend()
		limiter = rateLimit.NewMemoryLimiter()
	}
	idemp := idempotency.NewIdempotency(backend, cfg.IdempotencyTTL, cfg.BookingTimeout+5*time.Second)

	var publisher booking.EventPublisher
	if cfg.RabbitURL != "" {
		rabbitConn, err := amqp.Dial(cfg.RabbitURL)
		if err != nil {
			log.Fatalf("failed to connect to rabbitmq: %v", err)
		}
		defer rabbitConn.Close()
		rabbitPub, err := rabbit.NewPublisher(rabbitConn)
		if err != nil {
			log.Fatalf("failed to create publisher: %v", err)
		}
		publisher = rabbitPub
	}

	catalogClient := catalog.NewClient(cfg.MovieAPIURL, cfg.MovieAPITimeout, logger)
	searchers := catalog.NewSearchers(catalogClient, 10*time.Minute)
	go searchers.Run(ctx, time.Minute)

	gateway := booking.NewLocalGateway(booking.NewIDGenerator(nil), cfg.BookingDelay)
	bookings := booking.NewService(gateway, publisher, cfg.BookingTimeout, logger)
	generator := seatmap.NewGenerator(seatmap.NewRandomInventory(cfg.OccupancyRate, rand.NewSource(time.Now().UnixNano())))
	fl := flow.NewService(catalogClient, theatres, generator, bookings, store, logger)

	handlers := httphandler.NewHandlers(catalogClient, searchers, fl, idemp, checks)
	r := httphandler.SetupRouter(handlers, logger, limiter, cfg.RateLimitPerMin)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()
	logger.WithField("addr", cfg.HTTPAddr).Info("Server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutdown Server ...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}
	logger.Info("Server exiting")
}
