package domain

import (
	"time"
)

type Genre struct {
	ID   int    `json:"id" bson:"id"`
	Name string `json:"name" bson:"name"`
}

// Movie mirrors the catalog API payload. Detail responses carry Genres and
// Runtime, list responses carry GenreIDs.
type Movie struct {
	ID               int     `json:"id"`
	Title            string  `json:"title"`
	PosterPath       string  `json:"poster_path"`
	Genres           []Genre `json:"genres,omitempty"`
	GenreIDs         []int   `json:"genre_ids,omitempty"`
	VoteAverage      float64 `json:"vote_average"`
	OriginalLanguage string  `json:"original_language"`
	ReleaseDate      string  `json:"release_date"`
	Runtime          int     `json:"runtime,omitempty"`
	Overview         string  `json:"overview"`
}

type Showtime struct {
	ID        int    `json:"id" bson:"id"`
	Time      string `json:"time" bson:"time"`
	Price     int    `json:"price" bson:"price"`
	Available bool   `json:"available" bson:"available"`
}

type Theatre struct {
	ID        int        `json:"id" bson:"_id"`
	Name      string     `json:"name" bson:"name"`
	Location  string     `json:"location" bson:"location"`
	Showtimes []Showtime `json:"showtimes" bson:"showtimes"`
}

func (t Theatre) Showtime(id int) (Showtime, bool) {
	for _, s := range t.Showtimes {
		if s.ID == id {
			return s, true
		}
	}
	return Showtime{}, false
}

type SeatClass string

const (
	SeatRegular SeatClass = "regular"
	SeatPremium SeatClass = "premium"
)

type Seat struct {
	ID       string    `json:"id"`
	Row      string    `json:"row"`
	Number   int       `json:"number"`
	Class    SeatClass `json:"class"`
	Price    int       `json:"price"`
	Occupied bool      `json:"occupied"`
}

type CustomerInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type Draft struct {
	Movie    Movie    `json:"movie"`
	Theatre  Theatre  `json:"theatre"`
	Showtime Showtime `json:"showtime"`
	Seats    []Seat   `json:"seats"`
	Total    int      `json:"total"`
}

// Record is a confirmed booking. It is never mutated after creation.
type Record struct {
	ID        string       `json:"booking_id"`
	Draft     Draft        `json:"booking"`
	Customer  CustomerInfo `json:"customer"`
	CreatedAt time.Time    `json:"booking_date"`
}
