package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robertarktes/movie-ticket-booking/internal/observability"
	"github.com/robertarktes/movie-ticket-booking/internal/rateLimit"
)

func SetupRouter(h *Handlers, logger observability.Logger, rl rateLimit.Limiter, perMinute int) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggerMiddleware(logger))
	r.Use(TracingMiddleware)
	r.Use(MetricsMiddleware)

	r.Get("/v1/healthz", h.Healthz)
	r.Get("/v1/readyz", h.Readyz)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Group(func(r chi.Router) {
		r.Use(RateLimitMiddleware(rl, perMinute))

		r.Get("/v1/movies", h.ListMovies)
		r.Get("/v1/movies/search", h.SearchMovies)
		r.Get("/v1/movies/{id}", h.GetMovie)

		r.Post("/v1/sessions", h.CreateSession)
		r.Route("/v1/sessions/{id}", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Put("/theatre", h.SelectTheatre)
			r.Put("/showtime", h.SelectShowtime)
			r.Get("/seats", h.SeatMap)
			r.Post("/seats/{seat}/toggle", h.ToggleSeat)
			r.Get("/draft", h.GetDraft)
			r.Post("/confirm", h.Confirm)
			r.Get("/booking", h.GetBooking)
		})
	})

	return r
}
