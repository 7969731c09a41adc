package seatmap

import (
	"strconv"

	"github.com/robertarktes/movie-ticket-booking/internal/domain"
)

const (
	Rows             = "ABCDEFG"
	SeatsPerRow      = 10
	PremiumRows      = 2
	PremiumSurcharge = 50
)

type Row struct {
	Label string        `json:"label"`
	Seats []domain.Seat `json:"seats"`
}

type Grid struct {
	ShowtimeID int   `json:"showtime_id"`
	Rows       []Row `json:"rows"`
}

func (g Grid) Seat(id string) (domain.Seat, bool) {
	for _, row := range g.Rows {
		for _, seat := range row.Seats {
			if seat.ID == id {
				return seat, true
			}
		}
	}
	return domain.Seat{}, false
}

func (g Grid) OccupiedCount() int {
	n := 0
	for _, row := range g.Rows {
		for _, seat := range row.Seats {
			if seat.Occupied {
				n++
			}
		}
	}
	return n
}

type Generator struct {
	inventory Inventory
}

func NewGenerator(inventory Inventory) *Generator {
	return &Generator{inventory: inventory}
}

func (g *Generator) Generate(showtime domain.Showtime) Grid {
	grid := Grid{ShowtimeID: showtime.ID, Rows: make([]Row, 0, len(Rows))}
	for i, label := range Rows {
		row := Row{Label: string(label), Seats: make([]domain.Seat, 0, SeatsPerRow)}
		class, price := domain.SeatRegular, showtime.Price
		if i < PremiumRows {
			class, price = domain.SeatPremium, showtime.Price+PremiumSurcharge
		}
		for n := 1; n <= SeatsPerRow; n++ {
			id := row.Label + strconv.Itoa(n)
			row.Seats = append(row.Seats, domain.Seat{
				ID:       id,
				Row:      row.Label,
				Number:   n,
				Class:    class,
				Price:    price,
				Occupied: g.inventory.IsOccupied(showtime, id),
			})
		}
		grid.Rows = append(grid.Rows, row)
	}
	return grid
}
