package theatre

import (
	"context"

	"github.com/robertarktes/movie-ticket-booking/internal/domain"
)

type Provider interface {
	Theatres(ctx context.Context, movieID int) ([]domain.Theatre, error)
}

// Static serves the same fixed theatre list for every movie.
type Static struct {
	theatres []domain.Theatre
}

func NewStatic(theatres ...domain.Theatre) *Static {
	if len(theatres) == 0 {
		theatres = Defaults()
	}
	return &Static{theatres: theatres}
}

func (s *Static) Theatres(ctx context.Context, _ int) ([]domain.Theatre, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return clone(s.theatres), nil
}

func clone(in []domain.Theatre) []domain.Theatre {
	out := make([]domain.Theatre, len(in))
	for i, t := range in {
		t.Showtimes = append([]domain.Showtime(nil), t.Showtimes...)
		out[i] = t
	}
	return out
}

func Defaults() []domain.Theatre {
	return []domain.Theatre{
		{
			ID:       1,
			Name:     "PVR Cinemas - Forum Mall",
			Location: "Koramangala, Bangalore",
			Showtimes: []domain.Showtime{
				{ID: 1, Time: "10:00 AM", Price: 250, Available: true},
				{ID: 2, Time: "01:30 PM", Price: 280, Available: true},
				{ID: 3, Time: "04:45 PM", Price: 300, Available: true},
				{ID: 4, Time: "08:00 PM", Price: 350, Available: true},
				{ID: 5, Time: "11:15 PM", Price: 300, Available: false},
			},
		},
		{
			ID:       2,
			Name:     "INOX - Garuda Mall",
			Location: "Magrath Road, Bangalore",
			Showtimes: []domain.Showtime{
				{ID: 6, Time: "11:00 AM", Price: 270, Available: true},
				{ID: 7, Time: "02:15 PM", Price: 290, Available: true},
				{ID: 8, Time: "05:30 PM", Price: 320, Available: true},
				{ID: 9, Time: "09:00 PM", Price: 370, Available: true},
			},
		},
		{
			ID:       3,
			Name:     "Cinepolis - Orion Mall",
			Location: "Malleswaram, Bangalore",
			Showtimes: []domain.Showtime{
				{ID: 10, Time: "10:30 AM", Price: 260, Available: true},
				{ID: 11, Time: "01:45 PM", Price: 285, Available: true},
				{ID: 12, Time: "05:00 PM", Price: 310, Available: true},
				{ID: 13, Time: "08:30 PM", Price: 360, Available: true},
			},
		},
	}
}
