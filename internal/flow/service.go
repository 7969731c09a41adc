package flow

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/robertarktes/movie-ticket-booking/internal/booking"
	"github.com/robertarktes/movie-ticket-booking/internal/domain"
	"github.com/robertarktes/movie-ticket-booking/internal/observability"
	"github.com/robertarktes/movie-ticket-booking/internal/seatmap"
	"github.com/robertarktes/movie-ticket-booking/internal/session"
	"github.com/robertarktes/movie-ticket-booking/internal/theatre"
	"golang.org/x/sync/errgroup"
)

type MovieSource interface {
	Movie(ctx context.Context, id int) (domain.Movie, error)
}

type Confirmer interface {
	Confirm(ctx context.Context, draft domain.Draft, customer domain.CustomerInfo) (domain.Record, error)
}

// Service moves a booking session through movie, theatre, showtime, seats and
// confirmation. Each step loads the session, applies one change and saves it.
type Service struct {
	movies    MovieSource
	theatres  theatre.Provider
	seats     *seatmap.Generator
	confirmer Confirmer
	store     session.Store
	logger    observability.Logger
	now       func() time.Time
	claimTTL  time.Duration
}

// DefaultClaimTTL bounds how long an unfinished confirmation blocks the session.
const DefaultClaimTTL = time.Minute

func NewService(movies MovieSource, theatres theatre.Provider, seats *seatmap.Generator, confirmer Confirmer, store session.Store, logger observability.Logger) *Service {
	return &Service{
		movies:    movies,
		theatres:  theatres,
		seats:     seats,
		confirmer: confirmer,
		store:     store,
		logger:    logger,
		now:       time.Now,
		claimTTL:  DefaultClaimTTL,
	}
}

func (s *Service) StartSession(ctx context.Context, movieID int) (*session.State, error) {
	var (
		movie    domain.Movie
		theatres []domain.Theatre
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		movie, err = s.movies.Movie(gctx, movieID)
		return err
	})
	g.Go(func() error {
		var err error
		theatres, err = s.theatres.Theatres(gctx, movieID)
		return errors.Wrap(err, "load theatres")
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	st := session.New(movie, theatres, s.now())
	if err := s.store.Create(ctx, st); err != nil {
		return nil, err
	}
	s.logger.WithField("session_id", st.ID).WithField("movie_id", movieID).Info("booking session started")
	return st, nil
}

func (s *Service) Session(ctx context.Context, id string) (*session.State, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) SelectTheatre(ctx context.Context, id string, theatreID int) (*session.State, error) {
	return s.mutate(ctx, id, func(st *session.State) error {
		t, ok := st.Theatre(theatreID)
		if !ok {
			return errors.Wrapf(domain.ErrNotFound, "theatre %d", theatreID)
		}
		if st.Selection.SelectTheatre(t) {
			st.ResetSeats()
		}
		return nil
	})
}

// SelectShowtime drops the cached seat map when the showtime changes.
func (s *Service) SelectShowtime(ctx context.Context, id string, showtimeID int) (*session.State, error) {
	return s.mutate(ctx, id, func(st *session.State) error {
		prev := st.Selection.Showtime
		if err := st.Selection.SelectShowtime(showtimeID); err != nil {
			return err
		}
		if prev == nil || prev.ID != showtimeID {
			st.ResetSeats()
		}
		return nil
	})
}

// SeatMap generates the grid on first access and returns the cached one after.
func (s *Service) SeatMap(ctx context.Context, id string) (*session.State, error) {
	return s.mutate(ctx, id, func(st *session.State) error {
		return s.ensureGrid(st)
	})
}

func (s *Service) ensureGrid(st *session.State) error {
	if !st.Selection.CanProceed() {
		return errors.Wrap(domain.ErrInvalidSession, "no theatre and showtime")
	}
	if st.Grid == nil || st.Grid.ShowtimeID != st.Selection.Showtime.ID {
		grid := s.seats.Generate(*st.Selection.Showtime)
		st.Grid = &grid
		st.Seats = seatmap.Selection{}
	}
	return nil
}

func (s *Service) ToggleSeat(ctx context.Context, id, seatID string) (*session.State, error) {
	return s.mutate(ctx, id, func(st *session.State) error {
		if !st.Selection.CanProceed() {
			return errors.Wrap(domain.ErrInvalidSession, "no theatre and showtime")
		}
		if st.Grid == nil {
			return errors.Wrap(domain.ErrInvalidSession, "seat map not loaded")
		}
		seat, ok := st.Grid.Seat(seatID)
		if !ok {
			return errors.Wrapf(domain.ErrNotFound, "seat %s", seatID)
		}
		if _, err := st.Seats.Toggle(seat); err != nil {
			if errors.Is(err, domain.ErrSelectionLimitExceeded) {
				observability.SelectionLimitHits.Inc()
			}
			return err
		}
		return nil
	})
}

func (s *Service) Draft(ctx context.Context, id string) (domain.Draft, error) {
	st, err := s.store.Get(ctx, id)
	if err != nil {
		return domain.Draft{}, err
	}
	if st.Record != nil {
		return st.Record.Draft, nil
	}
	return booking.NewDraft(st.Movie, st.Selection, st.Seats)
}

// Confirm books the session's draft. The session is claimed first so that only
// one confirmation can reach the booking service. The record is written back
// only once the booking succeeded, so a failed attempt can be retried.
func (s *Service) Confirm(ctx context.Context, id string, customer domain.CustomerInfo) (domain.Record, error) {
	var (
		draft   domain.Draft
		claimed time.Time
	)
	_, err := s.store.Update(ctx, id, func(st *session.State) error {
		if st.Record != nil {
			return errors.Wrapf(domain.ErrAlreadyConfirmed, "booking %s", st.Record.ID)
		}
		now := s.now()
		if s.confirming(st, now) {
			return errors.Wrap(domain.ErrConflict, "confirmation in progress")
		}
		d, err := booking.NewDraft(st.Movie, st.Selection, st.Seats)
		if err != nil {
			return err
		}
		draft = d
		claimed = now
		st.ConfirmingSince = &now
		return nil
	})
	if err != nil {
		return domain.Record{}, err
	}

	record, err := s.confirmer.Confirm(ctx, draft, customer)
	if err != nil {
		s.release(context.WithoutCancel(ctx), id, claimed)
		return domain.Record{}, err
	}

	_, err = s.store.Update(context.WithoutCancel(ctx), id, func(st *session.State) error {
		if st.Record != nil {
			return errors.Wrapf(domain.ErrAlreadyConfirmed, "booking %s", st.Record.ID)
		}
		st.Record = &record
		st.ConfirmingSince = nil
		return nil
	})
	if err != nil {
		s.logger.WithField("booking_id", record.ID).WithError(err).Error("failed to attach booking to session")
		return domain.Record{}, err
	}
	s.logger.WithField("session_id", id).WithField("booking_id", record.ID).Info("booking confirmed")
	return record, nil
}

// confirming reports whether another confirmation holds a live claim.
func (s *Service) confirming(st *session.State, now time.Time) bool {
	return st.ConfirmingSince != nil && now.Sub(*st.ConfirmingSince) < s.claimTTL
}

func (s *Service) release(ctx context.Context, id string, claimed time.Time) {
	_, err := s.store.Update(ctx, id, func(st *session.State) error {
		if st.ConfirmingSince != nil && st.ConfirmingSince.Equal(claimed) {
			st.ConfirmingSince = nil
		}
		return nil
	})
	if err != nil {
		s.logger.WithField("session_id", id).WithError(err).Warn("failed to release confirmation claim")
	}
}

// Booking returns the confirmed record, or ErrInvalidSession when there is none.
func (s *Service) Booking(ctx context.Context, id string) (domain.Record, error) {
	st, err := s.store.Get(ctx, id)
	if err != nil {
		return domain.Record{}, err
	}
	if st.Record == nil {
		return domain.Record{}, errors.Wrap(domain.ErrInvalidSession, "booking not confirmed")
	}
	return *st.Record, nil
}

func (s *Service) mutate(ctx context.Context, id string, fn func(st *session.State) error) (*session.State, error) {
	return s.store.Update(ctx, id, func(st *session.State) error {
		if st.Record != nil {
			return errors.Wrapf(domain.ErrAlreadyConfirmed, "booking %s", st.Record.ID)
		}
		if st.Movie == nil {
			return errors.Wrap(domain.ErrInvalidSession, "no movie")
		}
		if s.confirming(st, s.now()) {
			return errors.Wrap(domain.ErrConflict, "confirmation in progress")
		}
		return fn(st)
	})
}
