package confirmation_test

import (
	"testing"
	"time"

	"github.com/robertarktes/movie-ticket-booking/internal/confirmation"
	"github.com/robertarktes/movie-ticket-booking/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	created := time.Date(2026, 3, 1, 18, 30, 0, 0, time.UTC)
	rec := domain.Record{
		ID: "BK1772389800000",
		Draft: domain.Draft{
			Movie:    domain.Movie{ID: 550, Title: "Fight Club"},
			Theatre:  domain.Theatre{ID: 2, Name: "INOX - Garuda Mall", Location: "Magrath Road, Bangalore"},
			Showtime: domain.Showtime{ID: 9, Time: "09:00 PM", Price: 370, Available: true},
			Seats: []domain.Seat{
				{ID: "B3", Class: domain.SeatPremium, Price: 420},
				{ID: "B4", Class: domain.SeatPremium, Price: 420},
				{ID: "F1", Class: domain.SeatRegular, Price: 370},
			},
			Total: 1210,
		},
		Customer:  domain.CustomerInfo{Name: "Asha", Email: "asha@example.com", Phone: "98"},
		CreatedAt: created,
	}

	v := confirmation.Render(rec)
	assert.Equal(t, "confirmed", v.Status)
	assert.Equal(t, "BK1772389800000", v.BookingID)
	assert.Equal(t, "2026-03-01T18:30:00Z", v.BookingDate)
	assert.Equal(t, "B3, B4, F1", v.Seats)
	assert.Equal(t, "1 Regular, 2 Premium", v.SeatBreakup)
	assert.Equal(t, 3, v.SeatCount)
	assert.Equal(t, 1210, v.Total)
	assert.Equal(t, "INOX - Garuda Mall", v.Theatre)
	require.NotNil(t, v.Customer)
	assert.Equal(t, "asha@example.com", v.Customer.Email)
}

func TestRenderOrFallback(t *testing.T) {
	v := confirmation.RenderOrFallback(nil)
	assert.Equal(t, "invalid_session", v.Status)
	assert.Equal(t, "Invalid booking session", v.Message)
	assert.Equal(t, confirmation.CatalogLink, v.Links["movies"])
	assert.Empty(t, v.BookingID)
}
