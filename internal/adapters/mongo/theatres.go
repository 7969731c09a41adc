package mongo

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/robertarktes/movie-ticket-booking/internal/domain"
	"github.com/robertarktes/movie-ticket-booking/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TheatreRepository serves the theatre list for the selector. Theatres are not
// tied to a movie, so every movie sees the same list.
type TheatreRepository struct {
	coll   *mongo.Collection
	logger observability.Logger
}

func NewTheatreRepository(db *mongo.Database, logger observability.Logger) *TheatreRepository {
	return &TheatreRepository{
		coll:   db.Collection("theatres"),
		logger: logger,
	}
}

type TheatreDoc struct {
	domain.Theatre `bson:",inline"`
	UpdatedAt      time.Time `bson:"updated_at"`
}

func (r *TheatreRepository) Theatres(ctx context.Context, _ int) ([]domain.Theatre, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		r.logger.Error("failed to list theatres", err)
		return nil, errors.Wrap(err, "list theatres")
	}
	defer cur.Close(ctx)

	var docs []TheatreDoc
	if err := cur.All(ctx, &docs); err != nil {
		r.logger.Error("failed to decode theatres", err)
		return nil, errors.Wrap(err, "decode theatres")
	}
	theatres := make([]domain.Theatre, 0, len(docs))
	for _, d := range docs {
		theatres = append(theatres, d.Theatre)
	}
	return theatres, nil
}

// Seed inserts the theatres a fresh database is missing. Theatres already
// stored are left alone, availability changes included.
func (r *TheatreRepository) Seed(ctx context.Context, theatres []domain.Theatre) error {
	for _, t := range theatres {
		insert := bson.M{
			"name":       t.Name,
			"location":   t.Location,
			"showtimes":  t.Showtimes,
			"updated_at": time.Now(),
		}
		_, err := r.coll.UpdateOne(ctx, bson.M{"_id": t.ID}, bson.M{"$setOnInsert": insert}, options.Update().SetUpsert(true))
		if err != nil {
			r.logger.Error("failed to seed theatre", err)
			return errors.Wrapf(err, "seed theatre %d", t.ID)
		}
	}
	return nil
}

// SetShowtimeAvailability opens or closes one showtime for booking.
func (r *TheatreRepository) SetShowtimeAvailability(ctx context.Context, theatreID, showtimeID int, available bool) error {
	res, err := r.coll.UpdateOne(
		ctx,
		bson.M{"_id": theatreID, "showtimes.id": showtimeID},
		bson.M{"$set": bson.M{"showtimes.$.available": available, "updated_at": time.Now()}},
	)
	if err != nil {
		r.logger.Error("failed to update showtime availability", err)
		return errors.Wrapf(err, "update showtime %d", showtimeID)
	}
	if res.MatchedCount == 0 {
		return errors.Wrapf(domain.ErrNotFound, "showtime %d at theatre %d", showtimeID, theatreID)
	}
	return nil
}
