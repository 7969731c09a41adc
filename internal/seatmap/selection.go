package seatmap

import (
	"github.com/robertarktes/movie-ticket-booking/internal/domain"
)

const MaxSelection = 8

// Selection is the ordered set of seats picked for one showtime.
// The zero value is an empty selection.
type Selection struct {
	Seats []domain.Seat `json:"seats"`
}

func (s Selection) Contains(id string) bool {
	for _, seat := range s.Seats {
		if seat.ID == id {
			return true
		}
	}
	return false
}

// Toggle adds or removes seat and reports whether it is selected afterwards.
// Occupied seats are ignored. Adding past MaxSelection fails and leaves the
// selection untouched.
func (s *Selection) Toggle(seat domain.Seat) (bool, error) {
	if seat.Occupied {
		return false, nil
	}
	if s.Contains(seat.ID) {
		kept := make([]domain.Seat, 0, len(s.Seats)-1)
		for _, cur := range s.Seats {
			if cur.ID != seat.ID {
				kept = append(kept, cur)
			}
		}
		s.Seats = kept
		return false, nil
	}
	if len(s.Seats) >= MaxSelection {
		return false, domain.ErrSelectionLimitExceeded
	}
	next := make([]domain.Seat, len(s.Seats), len(s.Seats)+1)
	copy(next, s.Seats)
	s.Seats = append(next, seat)
	return true, nil
}

func (s Selection) Len() int {
	return len(s.Seats)
}

func (s Selection) Total() int {
	total := 0
	for _, seat := range s.Seats {
		total += seat.Price
	}
	return total
}

func (s Selection) IDs() []string {
	ids := make([]string, 0, len(s.Seats))
	for _, seat := range s.Seats {
		ids = append(ids, seat.ID)
	}
	return ids
}
