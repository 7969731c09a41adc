package theatre_test

import (
	"context"
	"testing"

	"github.com/robertarktes/movie-ticket-booking/internal/domain"
	"github.com/robertarktes/movie-ticket-booking/internal/theatre"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func theatres(t *testing.T) []domain.Theatre {
	list, err := theatre.NewStatic().Theatres(context.Background(), 550)
	require.NoError(t, err)
	require.Len(t, list, 3)
	return list
}

func TestStatic_Defaults(t *testing.T) {
	list := theatres(t)

	assert.Equal(t, "PVR Cinemas - Forum Mall", list[0].Name)
	assert.Len(t, list[0].Showtimes, 5)
	assert.False(t, list[0].Showtimes[4].Available)
	assert.Equal(t, "INOX - Garuda Mall", list[1].Name)
	assert.Equal(t, "Cinepolis - Orion Mall", list[2].Name)
	assert.Equal(t, 360, list[2].Showtimes[3].Price)
}

func TestStatic_ReturnsCopies(t *testing.T) {
	p := theatre.NewStatic()
	first, _ := p.Theatres(context.Background(), 1)
	first[0].Showtimes[0].Price = 1

	second, _ := p.Theatres(context.Background(), 1)
	assert.Equal(t, 250, second[0].Showtimes[0].Price)
}

func TestStatic_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := theatre.NewStatic().Theatres(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSelection_Flow(t *testing.T) {
	list := theatres(t)
	var sel theatre.Selection
	assert.False(t, sel.CanProceed())

	assert.False(t, sel.SelectTheatre(list[0]))
	assert.False(t, sel.CanProceed())

	require.NoError(t, sel.SelectShowtime(2))
	assert.True(t, sel.CanProceed())
	assert.Equal(t, 280, sel.Showtime.Price)

	// same theatre keeps the showtime
	assert.False(t, sel.SelectTheatre(list[0]))
	require.NotNil(t, sel.Showtime)

	assert.True(t, sel.SelectTheatre(list[1]))
	assert.Nil(t, sel.Showtime)
	assert.Equal(t, 2, sel.Theatre.ID)
	assert.False(t, sel.CanProceed())
}

func TestSelection_UnavailableShowtime(t *testing.T) {
	list := theatres(t)
	var sel theatre.Selection
	sel.SelectTheatre(list[0])
	require.NoError(t, sel.SelectShowtime(1))

	err := sel.SelectShowtime(5)
	assert.ErrorIs(t, err, domain.ErrShowtimeUnavailable)
	assert.Equal(t, 1, sel.Showtime.ID)
	assert.True(t, sel.CanProceed())
}

func TestSelection_ShowtimeFromOtherTheatre(t *testing.T) {
	list := theatres(t)
	var sel theatre.Selection

	err := sel.SelectShowtime(6)
	assert.ErrorIs(t, err, domain.ErrShowtimeNotInTheatre)

	sel.SelectTheatre(list[0])
	err = sel.SelectShowtime(6)
	assert.ErrorIs(t, err, domain.ErrShowtimeNotInTheatre)
	assert.Nil(t, sel.Showtime)
}
