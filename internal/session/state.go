package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/robertarktes/movie-ticket-booking/internal/domain"
	"github.com/robertarktes/movie-ticket-booking/internal/seatmap"
	"github.com/robertarktes/movie-ticket-booking/internal/theatre"
)

// State is everything a client has chosen so far in one booking.
type State struct {
	ID        string            `json:"id"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	Movie     *domain.Movie     `json:"movie,omitempty"`
	Theatres  []domain.Theatre  `json:"theatres"`
	Selection theatre.Selection `json:"selection"`
	Grid      *seatmap.Grid     `json:"grid,omitempty"`
	Seats     seatmap.Selection `json:"seat_selection"`
	Record    *domain.Record    `json:"record,omitempty"`
	// ConfirmingSince marks a confirmation in flight.
	ConfirmingSince *time.Time `json:"confirming_since,omitempty"`
}

func New(movie domain.Movie, theatres []domain.Theatre, now time.Time) *State {
	return &State{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
		Movie:     &movie,
		Theatres:  theatres,
	}
}

func (s *State) Theatre(id int) (domain.Theatre, bool) {
	for _, t := range s.Theatres {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Theatre{}, false
}

// ResetSeats drops the cached grid and the seats picked on it.
func (s *State) ResetSeats() {
	s.Grid = nil
	s.Seats = seatmap.Selection{}
}

type Store interface {
	Create(ctx context.Context, st *State) error
	Get(ctx context.Context, id string) (*State, error)
	// Update applies fn atomically and persists the result only if fn succeeds.
	Update(ctx context.Context, id string, fn func(st *State) error) (*State, error)
	Delete(ctx context.Context, id string) error
}
