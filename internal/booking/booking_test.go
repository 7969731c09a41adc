package booking_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/robertarktes/movie-ticket-booking/internal/booking"
	"github.com/robertarktes/movie-ticket-booking/internal/domain"
	"github.com/robertarktes/movie-ticket-booking/internal/observability"
	"github.com/robertarktes/movie-ticket-booking/internal/seatmap"
	"github.com/robertarktes/movie-ticket-booking/internal/theatre"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var customer = domain.CustomerInfo{Name: "Asha", Email: "asha@example.com", Phone: "9876543210"}

func draftFixture(t *testing.T, ids ...string) domain.Draft {
	t.Helper()
	movie := &domain.Movie{ID: 550, Title: "Fight Club"}
	var sel theatre.Selection
	sel.SelectTheatre(theatre.Defaults()[0])
	require.NoError(t, sel.SelectShowtime(1))

	grid := seatmap.NewGenerator(seatmap.FixedInventory{}).Generate(*sel.Showtime)
	var seats seatmap.Selection
	for _, id := range ids {
		s, ok := grid.Seat(id)
		require.True(t, ok)
		_, err := seats.Toggle(s)
		require.NoError(t, err)
	}
	d, err := booking.NewDraft(movie, sel, seats)
	require.NoError(t, err)
	return d
}

func TestNewDraft(t *testing.T) {
	d := draftFixture(t, "A1", "C3")
	assert.Equal(t, 550, d.Total)
	assert.Equal(t, "PVR Cinemas - Forum Mall", d.Theatre.Name)
	assert.Equal(t, "10:00 AM", d.Showtime.Time)

	regular, premium := booking.Counts(d.Seats)
	assert.Equal(t, 1, regular)
	assert.Equal(t, 1, premium)
}

func TestNewDraft_Guards(t *testing.T) {
	movie := &domain.Movie{ID: 1}
	var sel theatre.Selection
	_, err := booking.NewDraft(nil, sel, seatmap.Selection{})
	assert.ErrorIs(t, err, domain.ErrInvalidSession)

	_, err = booking.NewDraft(movie, sel, seatmap.Selection{})
	assert.ErrorIs(t, err, domain.ErrInvalidSession)

	sel.SelectTheatre(theatre.Defaults()[1])
	require.NoError(t, sel.SelectShowtime(6))
	_, err = booking.NewDraft(movie, sel, seatmap.Selection{})
	assert.ErrorIs(t, err, domain.ErrEmptySelection)
}

func TestValidateCustomer(t *testing.T) {
	tests := []struct {
		name    string
		info    domain.CustomerInfo
		missing []string
	}{
		{"complete", customer, nil},
		{"all blank", domain.CustomerInfo{Name: " ", Email: "\t"}, []string{"name", "email", "phone"}},
		{"phone only missing", domain.CustomerInfo{Name: "A", Email: "a@b.c"}, []string{"phone"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := booking.ValidateCustomer(tt.info)
			if tt.missing == nil {
				assert.NoError(t, err)
				return
			}
			var verr *domain.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.missing, verr.Missing)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestIDGenerator_StrictlyIncreasing(t *testing.T) {
	fixed := time.UnixMilli(1700000000000)
	gen := booking.NewIDGenerator(func() time.Time { return fixed })

	assert.Equal(t, "BK1700000000000", gen.Next())
	assert.Equal(t, "BK1700000000001", gen.Next())

	var mu sync.Mutex
	seen := map[string]bool{}
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := gen.Next()
			mu.Lock()
			seen[id] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 50)
}

type recordingPublisher struct {
	records []domain.Record
	err     error
}

func (p *recordingPublisher) PublishConfirmed(_ context.Context, r domain.Record) error {
	p.records = append(p.records, r)
	return p.err
}

func TestService_Confirm(t *testing.T) {
	pub := &recordingPublisher{}
	gw := booking.NewLocalGateway(booking.NewIDGenerator(nil), 0)
	svc := booking.NewService(gw, pub, time.Second, observability.NewNopLogger())

	d := draftFixture(t, "A1", "A2", "E5")
	rec, err := svc.Confirm(context.Background(), d, domain.CustomerInfo{Name: " Asha ", Email: "asha@example.com", Phone: "98"})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(rec.ID, "BK"))
	assert.Equal(t, "Asha", rec.Customer.Name)
	assert.Equal(t, 850, rec.Draft.Total)
	assert.False(t, rec.CreatedAt.IsZero())
	require.Len(t, pub.records, 1)
	assert.Equal(t, rec.ID, pub.records[0].ID)
}

func TestService_ConfirmValidationFailsBeforeGateway(t *testing.T) {
	pub := &recordingPublisher{}
	svc := booking.NewService(failingGateway{}, pub, time.Second, observability.NewNopLogger())

	_, err := svc.Confirm(context.Background(), draftFixture(t, "A1"), domain.CustomerInfo{Name: "x"})
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"email", "phone"}, verr.Missing)
	assert.Empty(t, pub.records)
}

type failingGateway struct{}

func (failingGateway) Book(context.Context, domain.Draft, domain.CustomerInfo) (string, error) {
	return "", errors.New("booking service unavailable")
}

func TestService_ConfirmFailures(t *testing.T) {
	svc := booking.NewService(failingGateway{}, nil, time.Second, observability.NewNopLogger())
	_, err := svc.Confirm(context.Background(), draftFixture(t, "A1"), customer)
	assert.ErrorIs(t, err, domain.ErrBookingFailed)

	slow := booking.NewLocalGateway(booking.NewIDGenerator(nil), time.Second)
	svc = booking.NewService(slow, nil, 20*time.Millisecond, observability.NewNopLogger())
	_, err = svc.Confirm(context.Background(), draftFixture(t, "A1"), customer)
	assert.ErrorIs(t, err, domain.ErrBookingTimeout)
}

func TestService_PublishFailureDoesNotFailBooking(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	gw := booking.NewLocalGateway(booking.NewIDGenerator(nil), 0)
	svc := booking.NewService(gw, pub, time.Second, observability.NewNopLogger())

	rec, err := svc.Confirm(context.Background(), draftFixture(t, "B4"), customer)
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
}
