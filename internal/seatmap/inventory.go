package seatmap

import (
	"math/rand"
	"sync"
	"time"

	"github.com/robertarktes/movie-ticket-booking/internal/domain"
)

const DefaultOccupancyRate = 0.2

// Inventory decides which seats of a showtime are already taken.
type Inventory interface {
	IsOccupied(showtime domain.Showtime, seatID string) bool
}

// RandomInventory marks each seat occupied independently with a fixed probability.
type RandomInventory struct {
	mu   sync.Mutex
	rate float64
	rnd  *rand.Rand
}

func NewRandomInventory(rate float64, src rand.Source) *RandomInventory {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	if rate < 0 || rate > 1 {
		rate = DefaultOccupancyRate
	}
	return &RandomInventory{rate: rate, rnd: rand.New(src)}
}

func (r *RandomInventory) IsOccupied(_ domain.Showtime, _ string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.Float64() < r.rate
}

// FixedInventory reports the listed seat ids as occupied for every showtime.
type FixedInventory map[string]bool

func (f FixedInventory) IsOccupied(_ domain.Showtime, seatID string) bool {
	return f[seatID]
}
