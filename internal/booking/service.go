package booking

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/robertarktes/movie-ticket-booking/internal/domain"
	"github.com/robertarktes/movie-ticket-booking/internal/observability"
)

// Gateway is the booking-service collaborator that issues booking ids.
type Gateway interface {
	Book(ctx context.Context, draft domain.Draft, customer domain.CustomerInfo) (string, error)
}

type EventPublisher interface {
	PublishConfirmed(ctx context.Context, record domain.Record) error
}

// IDGenerator issues "BK<unix millis>" ids that never repeat within a process,
// even when two bookings land in the same millisecond.
type IDGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func NewIDGenerator(now func() time.Time) *IDGenerator {
	if now == nil {
		now = time.Now
	}
	return &IDGenerator{now: now}
}

func (g *IDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	ms := g.now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return "BK" + strconv.FormatInt(ms, 10)
}

// LocalGateway stands in for a remote booking service. Delay simulates its latency.
type LocalGateway struct {
	ids   *IDGenerator
	delay time.Duration
}

func NewLocalGateway(ids *IDGenerator, delay time.Duration) *LocalGateway {
	return &LocalGateway{ids: ids, delay: delay}
}

func (g *LocalGateway) Book(ctx context.Context, _ domain.Draft, _ domain.CustomerInfo) (string, error) {
	if g.delay > 0 {
		t := time.NewTimer(g.delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-t.C:
		}
	}
	return g.ids.Next(), nil
}

type Service struct {
	gateway   Gateway
	publisher EventPublisher
	timeout   time.Duration
	now       func() time.Time
	logger    observability.Logger
}

func NewService(gateway Gateway, publisher EventPublisher, timeout time.Duration, logger observability.Logger) *Service {
	return &Service{
		gateway:   gateway,
		publisher: publisher,
		timeout:   timeout,
		now:       time.Now,
		logger:    logger,
	}
}

// Confirm validates the customer, books the draft and returns the frozen record.
// Publishing the confirmation event is best effort.
func (s *Service) Confirm(ctx context.Context, draft domain.Draft, customer domain.CustomerInfo) (domain.Record, error) {
	customer, err := ValidateCustomer(customer)
	if err != nil {
		return domain.Record{}, err
	}
	if len(draft.Seats) == 0 {
		return domain.Record{}, domain.ErrEmptySelection
	}

	bookCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		bookCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	id, err := s.gateway.Book(bookCtx, draft, customer)
	observability.BookingConfirmDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return domain.Record{}, &domain.BookingError{Timeout: errors.Is(err, context.DeadlineExceeded), Err: err}
	}

	record := domain.Record{
		ID:        id,
		Draft:     draft,
		Customer:  customer,
		CreatedAt: s.now().UTC(),
	}
	observability.BookingsConfirmed.Inc()

	if s.publisher != nil {
		if err := s.publisher.PublishConfirmed(ctx, record); err != nil {
			observability.RabbitPublishFailures.Inc()
			s.logger.WithField("booking_id", record.ID).WithError(err).Error("failed to publish booking confirmation")
		}
	}
	return record, nil
}
