package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mtb_requests_total",
			Help: "Total number of requests",
		},
		[]string{"route", "code", "method"},
	)

	CatalogRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mtb_catalog_request_seconds",
			Help:    "Duration of movie catalog API calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "outcome"},
	)

	SearchesSuperseded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mtb_searches_superseded_total",
			Help: "Total searches dropped because a newer one was issued",
		},
	)

	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mtb_sessions_active",
			Help: "Booking sessions held in memory",
		},
	)

	SelectionLimitHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mtb_selection_limit_hits_total",
			Help: "Total seat toggles rejected by the selection limit",
		},
	)

	BookingsConfirmed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mtb_bookings_confirmed_total",
			Help: "Total confirmed bookings",
		},
	)

	BookingConfirmDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mtb_booking_confirm_seconds",
			Help:    "Duration of booking confirmation calls",
			Buckets: prometheus.DefBuckets,
		},
	)

	RabbitPublishFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mtb_rabbit_publish_failures_total",
			Help: "Total failed event publishes",
		},
	)

	RateLimitExceeded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mtb_rate_limit_exceeded_total",
			Help: "Total rate limit exceeded",
		},
	)
)
