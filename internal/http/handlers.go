package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/robertarktes/movie-ticket-booking/internal/catalog"
	"github.com/robertarktes/movie-ticket-booking/internal/confirmation"
	"github.com/robertarktes/movie-ticket-booking/internal/domain"
	"github.com/robertarktes/movie-ticket-booking/internal/flow"
	"github.com/robertarktes/movie-ticket-booking/internal/idempotency"
)

type Catalog interface {
	Popular(ctx context.Context) ([]domain.Movie, error)
	Movie(ctx context.Context, id int) (domain.Movie, error)
}

// Pinger reports whether a backing service is reachable.
type Pinger func(ctx context.Context) error

type Handlers struct {
	catalog   Catalog
	searchers *catalog.Searchers
	flow      *flow.Service
	idemp     *idempotency.Idempotency
	checks    map[string]Pinger
}

func NewHandlers(cat Catalog, searchers *catalog.Searchers, fl *flow.Service, idemp *idempotency.Idempotency, checks map[string]Pinger) *Handlers {
	return &Handlers{
		catalog:   cat,
		searchers: searchers,
		flow:      fl,
		idemp:     idemp,
		checks:    checks,
	}
}

func (h *Handlers) ListMovies(w http.ResponseWriter, r *http.Request) {
	movies, err := h.catalog.Popular(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"movies": movies})
}

func (h *Handlers) SearchMovies(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	movies, err := h.searchers.For(clientKey(r)).Search(r.Context(), query)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"query": query, "movies": movies})
}

func (h *Handlers) GetMovie(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid movie id", http.StatusBadRequest)
		return
	}
	movie, err := h.catalog.Movie(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, movie)
}

func (h *Handlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MovieID int `json:"movie_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.MovieID <= 0 {
		http.Error(w, "movie_id is required", http.StatusBadRequest)
		return
	}
	st, err := h.flow.StartSession(r.Context(), req.MovieID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/v1/sessions/"+st.ID)
	writeJSON(w, http.StatusCreated, newSessionView(st))
}

func (h *Handlers) GetSession(w http.ResponseWriter, r *http.Request) {
	st, err := h.flow.Session(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionView(st))
}

func (h *Handlers) SelectTheatre(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TheatreID int `json:"theatre_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	st, err := h.flow.SelectTheatre(r.Context(), chi.URLParam(r, "id"), req.TheatreID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionView(st))
}

func (h *Handlers) SelectShowtime(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ShowtimeID int `json:"showtime_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	st, err := h.flow.SelectShowtime(r.Context(), chi.URLParam(r, "id"), req.ShowtimeID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionView(st))
}

func (h *Handlers) SeatMap(w http.ResponseWriter, r *http.Request) {
	st, err := h.flow.SeatMap(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionView(st))
}

func (h *Handlers) ToggleSeat(w http.ResponseWriter, r *http.Request) {
	st, err := h.flow.ToggleSeat(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "seat"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionView(st))
}

func (h *Handlers) GetDraft(w http.ResponseWriter, r *http.Request) {
	draft, err := h.flow.Draft(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

// Confirm is guarded by an idempotency lock on the session, so a double
// submit books once and replays the first response.
func (h *Handlers) Confirm(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	existing, lease, err := h.idemp.Begin(r.Context(), "confirm:"+sessionID)
	if errors.Is(err, idempotency.ErrInFlight) {
		http.Error(w, "booking already in progress", http.StatusConflict)
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	if existing != nil {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Idempotent-Replay", "true")
		w.WriteHeader(existing.Status)
		w.Write(existing.Result)
		return
	}

	var info domain.CustomerInfo
	if err := json.NewDecoder(r.Body).Decode(&info); err != nil {
		h.idemp.Abort(context.WithoutCancel(r.Context()), lease)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	record, err := h.flow.Confirm(r.Context(), sessionID, info)
	if err != nil {
		h.idemp.Abort(context.WithoutCancel(r.Context()), lease)
		writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	json.NewEncoder(&buf).Encode(confirmation.Render(record))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	w.Write(buf.Bytes())

	if err := h.idemp.Complete(context.WithoutCancel(r.Context()), lease, idempotency.Response{Status: http.StatusCreated, Result: buf.Bytes()}); err != nil {
		loggerFrom(r).WithError(err).Error("failed to store confirmation response")
	}
}

func (h *Handlers) GetBooking(w http.ResponseWriter, r *http.Request) {
	record, err := h.flow.Booking(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, confirmation.Render(record))
}

func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *Handlers) Readyz(w http.ResponseWriter, r *http.Request) {
	failed := map[string]string{}
	for name, ping := range h.checks {
		if err := ping(r.Context()); err != nil {
			failed[name] = err.Error()
		}
	}
	if len(failed) > 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{"status": "unavailable", "failed": failed})
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Ready"))
}
