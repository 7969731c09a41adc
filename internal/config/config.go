package config

import (
	"os"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr          string
	LogLevel          string
	MovieAPIURL       string
	MovieAPITimeout   time.Duration
	MongoURI          string
	MongoDB           string
	RedisAddr         string
	RabbitURL         string
	SessionTTL        time.Duration
	BookingTimeout    time.Duration
	BookingDelay      time.Duration
	OccupancyRate     float64
	RateLimitPerMin   int
	IdempotencyTTL    time.Duration
	OTLPEndpoint      string
	AuditQueue        string
	SessionSweepEvery time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		HTTPAddr:     getenv("HTTP_ADDR", ":8080"),
		LogLevel:     getenv("LOG_LEVEL", "info"),
		MovieAPIURL:  getenv("MOVIE_API_URL", "http://localhost:3000"),
		MongoURI:     os.Getenv("MONGO_URI"),
		MongoDB:      getenv("MONGO_DB", "movie_booking"),
		RedisAddr:    os.Getenv("REDIS_ADDR"),
		RabbitURL:    os.Getenv("RABBIT_URL"),
		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		AuditQueue:   getenv("AUDIT_QUEUE", "booking.audit.q"),
	}

	var err error
	durations := []struct {
		key  string
		def  time.Duration
		dest *time.Duration
	}{
		{"MOVIE_API_TIMEOUT", 10 * time.Second, &cfg.MovieAPITimeout},
		{"SESSION_TTL", 30 * time.Minute, &cfg.SessionTTL},
		{"SESSION_SWEEP_INTERVAL", time.Minute, &cfg.SessionSweepEvery},
		{"BOOKING_TIMEOUT", 10 * time.Second, &cfg.BookingTimeout},
		{"BOOKING_DELAY", 0, &cfg.BookingDelay},
		{"IDEMPOTENCY_TTL", time.Hour, &cfg.IdempotencyTTL},
	}
	for _, d := range durations {
		if *d.dest, err = duration(d.key, d.def); err != nil {
			return nil, err
		}
	}

	cfg.OccupancyRate = 0.2
	if v := os.Getenv("OCCUPANCY_RATE"); v != "" {
		cfg.OccupancyRate, err = strconv.ParseFloat(v, 64)
		if err != nil || cfg.OccupancyRate < 0 || cfg.OccupancyRate > 1 {
			return nil, errors.Newf("OCCUPANCY_RATE must be within [0,1], got %q", v)
		}
	}

	cfg.RateLimitPerMin = 120
	if v := os.Getenv("RATE_LIMIT_PER_MINUTE"); v != "" {
		cfg.RateLimitPerMin, err = strconv.Atoi(v)
		if err != nil {
			return nil, errors.Wrap(err, "RATE_LIMIT_PER_MINUTE")
		}
	}

	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func duration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, errors.Wrap(err, key)
	}
	return d, nil
}
