package mongo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/robertarktes/movie-ticket-booking/internal/domain"
	"github.com/robertarktes/movie-ticket-booking/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type AuditLogger struct {
	coll   *mongo.Collection
	logger observability.Logger
}

func NewAuditLogger(db *mongo.Database, logger observability.Logger) *AuditLogger {
	return &AuditLogger{
		coll:   db.Collection("booking_audit"),
		logger: logger,
	}
}

type AuditLog struct {
	ID        string    `bson:"_id"`
	Action    string    `bson:"action"`
	BookingID string    `bson:"booking_id"`
	Email     string    `bson:"email"`
	Timestamp time.Time `bson:"timestamp"`
	Data      bson.M    `bson:"data"`
}

// LogEvent is keyed by messageID so a redelivered message is stored once.
func (a *AuditLogger) LogEvent(ctx context.Context, messageID, action, bookingID, email string, data map[string]interface{}) error {
	if messageID == "" {
		messageID = uuid.NewString()
	}
	log := AuditLog{
		ID:        messageID,
		Action:    action,
		BookingID: bookingID,
		Email:     email,
		Timestamp: time.Now(),
		Data:      bson.M(data),
	}
	_, err := a.coll.InsertOne(ctx, log)
	if mongo.IsDuplicateKeyError(err) {
		a.logger.WithField("message_id", messageID).Debug("audit entry already recorded")
		return nil
	}
	if err != nil {
		a.logger.Error("failed to insert audit log", err)
		return err
	}
	return nil
}

func (a *AuditLogger) LogBooking(ctx context.Context, messageID string, record domain.Record) error {
	seats := make([]string, 0, len(record.Draft.Seats))
	for _, s := range record.Draft.Seats {
		seats = append(seats, s.ID)
	}
	data := map[string]interface{}{
		"movie_id":    record.Draft.Movie.ID,
		"movie_title": record.Draft.Movie.Title,
		"theatre":     record.Draft.Theatre.Name,
		"showtime":    record.Draft.Showtime.Time,
		"seats":       seats,
		"total":       record.Draft.Total,
		"booked_at":   record.CreatedAt.Format(time.RFC3339),
	}
	return a.LogEvent(ctx, messageID, "booking.confirmed", record.ID, record.Customer.Email, data)
}

func (a *AuditLogger) ByBooking(ctx context.Context, bookingID string) ([]AuditLog, error) {
	cur, err := a.coll.Find(ctx, bson.M{"booking_id": bookingID}, options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var logs []AuditLog
	err = cur.All(ctx, &logs)
	return logs, err
}
