package http

import (
	"github.com/robertarktes/movie-ticket-booking/internal/domain"
	"github.com/robertarktes/movie-ticket-booking/internal/seatmap"
	"github.com/robertarktes/movie-ticket-booking/internal/session"
)

type seatView struct {
	domain.Seat
	Selected bool `json:"selected"`
}

type rowView struct {
	Label string     `json:"label"`
	Seats []seatView `json:"seats"`
}

type selectionView struct {
	Seats     []string `json:"seats"`
	Count     int      `json:"count"`
	Total     int      `json:"total"`
	Limit     int      `json:"limit"`
	CanBook   bool     `json:"can_book"`
	Remaining int      `json:"remaining"`
}

type sessionView struct {
	ID         string           `json:"session_id"`
	Movie      *domain.Movie    `json:"movie,omitempty"`
	Theatres   []domain.Theatre `json:"theatres"`
	Theatre    *domain.Theatre  `json:"theatre,omitempty"`
	Showtime   *domain.Showtime `json:"showtime,omitempty"`
	CanProceed bool             `json:"can_proceed"`
	SeatMap    []rowView        `json:"seat_map,omitempty"`
	Selection  selectionView    `json:"selection"`
	BookingID  string           `json:"booking_id,omitempty"`
}

func newSelectionView(sel seatmap.Selection) selectionView {
	return selectionView{
		Seats:     sel.IDs(),
		Count:     sel.Len(),
		Total:     sel.Total(),
		Limit:     seatmap.MaxSelection,
		CanBook:   sel.Len() > 0,
		Remaining: seatmap.MaxSelection - sel.Len(),
	}
}

func newSessionView(st *session.State) sessionView {
	v := sessionView{
		ID:         st.ID,
		Movie:      st.Movie,
		Theatres:   st.Theatres,
		Theatre:    st.Selection.Theatre,
		Showtime:   st.Selection.Showtime,
		CanProceed: st.Selection.CanProceed(),
		Selection:  newSelectionView(st.Seats),
	}
	if st.Grid != nil {
		v.SeatMap = make([]rowView, 0, len(st.Grid.Rows))
		for _, row := range st.Grid.Rows {
			rv := rowView{Label: row.Label, Seats: make([]seatView, 0, len(row.Seats))}
			for _, seat := range row.Seats {
				rv.Seats = append(rv.Seats, seatView{Seat: seat, Selected: st.Seats.Contains(seat.ID)})
			}
			v.SeatMap = append(v.SeatMap, rv)
		}
	}
	if st.Record != nil {
		v.BookingID = st.Record.ID
	}
	return v
}
