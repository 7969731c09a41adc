package booking

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/robertarktes/movie-ticket-booking/internal/domain"
	"github.com/robertarktes/movie-ticket-booking/internal/seatmap"
	"github.com/robertarktes/movie-ticket-booking/internal/theatre"
)

// NewDraft assembles the booking summary. Seats are copied so later changes to
// the selection do not leak into the draft.
func NewDraft(movie *domain.Movie, sel theatre.Selection, seats seatmap.Selection) (domain.Draft, error) {
	if movie == nil {
		return domain.Draft{}, errors.Wrap(domain.ErrInvalidSession, "no movie")
	}
	if !sel.CanProceed() {
		return domain.Draft{}, errors.Wrap(domain.ErrInvalidSession, "no theatre and showtime")
	}
	if seats.Len() == 0 {
		return domain.Draft{}, domain.ErrEmptySelection
	}
	return domain.Draft{
		Movie:    *movie,
		Theatre:  *sel.Theatre,
		Showtime: *sel.Showtime,
		Seats:    append([]domain.Seat(nil), seats.Seats...),
		Total:    seats.Total(),
	}, nil
}

// ValidateCustomer returns a *domain.ValidationError naming every blank field.
func ValidateCustomer(info domain.CustomerInfo) (domain.CustomerInfo, error) {
	info = domain.CustomerInfo{
		Name:  strings.TrimSpace(info.Name),
		Email: strings.TrimSpace(info.Email),
		Phone: strings.TrimSpace(info.Phone),
	}
	var missing []string
	if info.Name == "" {
		missing = append(missing, "name")
	}
	if info.Email == "" {
		missing = append(missing, "email")
	}
	if info.Phone == "" {
		missing = append(missing, "phone")
	}
	if len(missing) > 0 {
		return info, &domain.ValidationError{Missing: missing}
	}
	return info, nil
}

// Counts splits the seats of a booking by class.
func Counts(seats []domain.Seat) (regular, premium int) {
	for _, s := range seats {
		if s.Class == domain.SeatPremium {
			premium++
		} else {
			regular++
		}
	}
	return regular, premium
}
