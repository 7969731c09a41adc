package theatre

import (
	"github.com/cockroachdb/errors"
	"github.com/robertarktes/movie-ticket-booking/internal/domain"
)

// Selection holds the theatre and showtime picked for a booking.
// A showtime is only ever set together with the theatre that lists it.
type Selection struct {
	Theatre  *domain.Theatre  `json:"theatre,omitempty"`
	Showtime *domain.Showtime `json:"showtime,omitempty"`
}

// SelectTheatre reports whether a previously chosen showtime was reset.
func (s *Selection) SelectTheatre(t domain.Theatre) bool {
	if s.Theatre != nil && s.Theatre.ID == t.ID {
		return false
	}
	reset := s.Showtime != nil
	s.Theatre = &t
	s.Showtime = nil
	return reset
}

// SelectShowtime leaves the selection unchanged on error.
func (s *Selection) SelectShowtime(showtimeID int) error {
	if s.Theatre == nil {
		return errors.Wrap(domain.ErrShowtimeNotInTheatre, "no theatre selected")
	}
	st, ok := s.Theatre.Showtime(showtimeID)
	if !ok {
		return errors.Wrapf(domain.ErrShowtimeNotInTheatre, "showtime %d at theatre %d", showtimeID, s.Theatre.ID)
	}
	if !st.Available {
		return errors.Wrapf(domain.ErrShowtimeUnavailable, "showtime %d", showtimeID)
	}
	s.Showtime = &st
	return nil
}

func (s Selection) CanProceed() bool {
	return s.Theatre != nil && s.Showtime != nil && s.Showtime.Available
}
