package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	mongoadapter "github.com/robertarktes/movie-ticket-booking/internal/adapters/mongo"
	"github.com/robertarktes/movie-ticket-booking/internal/adapters/rabbit"
	"github.com/robertarktes/movie-ticket-booking/internal/config"
	"github.com/robertarktes/movie-ticket-booking/internal/domain"
	"github.com/robertarktes/movie-ticket-booking/internal/observability"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.RabbitURL == "" || cfg.MongoURI == "" {
		log.Fatal("RABBIT_URL and MONGO_URI are required")
	}

	shutdownOtel, err := observability.SetupOTel(context.Background(), cfg, "movie-booking-auditor")
	if err != nil {
		log.Fatalf("failed to setup otel: %v", err)
	}
	defer shutdownOtel()

	logger := observability.NewLogger(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("failed to connect to mongo: %v", err)
	}
	defer mongoClient.Disconnect(context.Background())
	audit := mongoadapter.NewAuditLogger(mongoClient.Database(cfg.MongoDB), logger)

	conn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("failed to connect to rabbitmq: %v", err)
	}
	defer conn.Close()
	consumer, err := rabbit.NewConsumer(conn, cfg.AuditQueue, logger, rabbit.KeyBookingConfirmed)
	if err != nil {
		log.Fatalf("failed to create consumer: %v", err)
	}
	defer consumer.Close()

	worker := NewAuditWorker(audit, logger)
	done := make(chan error, 1)
	go func() { done <- consumer.Run(ctx, worker.Handle) }()
	logger.WithField("queue", cfg.AuditQueue).Info("booking auditor started")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case err := <-done:
		if err != nil {
			logger.WithError(err).Error("consumer stopped")
		}
	}
	cancel()
	logger.Info("Shutdown booking auditor")
}

type BookingAuditor interface {
	LogBooking(ctx context.Context, messageID string, record domain.Record) error
}

type AuditWorker struct {
	audit   BookingAuditor
	logger  observability.Logger
	timeout time.Duration
}

func NewAuditWorker(audit BookingAuditor, logger observability.Logger) *AuditWorker {
	return &AuditWorker{audit: audit, logger: logger, timeout: 5 * time.Second}
}

// Handle retries transient audit failures with a short backoff.
func (w *AuditWorker) Handle(ctx context.Context, messageID string, record domain.Record) error {
	const maxRetries = 3
	var err error
	for i := 0; i < maxRetries; i++ {
		attemptCtx, cancel := context.WithTimeout(ctx, w.timeout)
		err = w.audit.LogBooking(attemptCtx, messageID, record)
		cancel()
		if err == nil {
			w.logger.WithField("booking_id", record.ID).Info("booking audited")
			return nil
		}
		backoff := time.Duration(1<<i) * 100 * time.Millisecond
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return err
}
