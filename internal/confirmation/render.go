package confirmation

import (
	"fmt"
	"strings"
	"time"

	"github.com/robertarktes/movie-ticket-booking/internal/booking"
	"github.com/robertarktes/movie-ticket-booking/internal/domain"
)

const CatalogLink = "/v1/movies"

type View struct {
	Status       string               `json:"status"`
	Message      string               `json:"message"`
	BookingID    string               `json:"booking_id,omitempty"`
	BookingDate  string               `json:"booking_date,omitempty"`
	MovieTitle   string               `json:"movie_title,omitempty"`
	PosterPath   string               `json:"poster_path,omitempty"`
	Theatre      string               `json:"theatre,omitempty"`
	Location     string               `json:"location,omitempty"`
	Showtime     string               `json:"showtime,omitempty"`
	Seats        string               `json:"seats,omitempty"`
	SeatCount    int                  `json:"seat_count,omitempty"`
	SeatBreakup  string               `json:"seat_breakup,omitempty"`
	RegularSeats int                  `json:"regular_seats,omitempty"`
	PremiumSeats int                  `json:"premium_seats,omitempty"`
	Total        int                  `json:"total,omitempty"`
	Customer     *domain.CustomerInfo `json:"customer,omitempty"`
	Links        map[string]string    `json:"links"`
}

func Render(record domain.Record) View {
	regular, premium := booking.Counts(record.Draft.Seats)
	ids := make([]string, 0, len(record.Draft.Seats))
	for _, s := range record.Draft.Seats {
		ids = append(ids, s.ID)
	}
	customer := record.Customer
	return View{
		Status:       "confirmed",
		Message:      "Booking Confirmed!",
		BookingID:    record.ID,
		BookingDate:  record.CreatedAt.Format(time.RFC3339),
		MovieTitle:   record.Draft.Movie.Title,
		PosterPath:   record.Draft.Movie.PosterPath,
		Theatre:      record.Draft.Theatre.Name,
		Location:     record.Draft.Theatre.Location,
		Showtime:     record.Draft.Showtime.Time,
		Seats:        strings.Join(ids, ", "),
		SeatCount:    len(ids),
		SeatBreakup:  fmt.Sprintf("%d Regular, %d Premium", regular, premium),
		RegularSeats: regular,
		PremiumSeats: premium,
		Total:        record.Draft.Total,
		Customer:     &customer,
		Links:        map[string]string{"movies": CatalogLink},
	}
}

// InvalidSession is shown when no booking can be rendered.
func InvalidSession(reason string) View {
	if reason == "" {
		reason = "Invalid booking session"
	}
	return View{
		Status:  "invalid_session",
		Message: reason,
		Links:   map[string]string{"movies": CatalogLink},
	}
}

// RenderOrFallback never fails: a nil record yields the invalid-session view.
func RenderOrFallback(record *domain.Record) View {
	if record == nil {
		return InvalidSession("")
	}
	return Render(*record)
}
