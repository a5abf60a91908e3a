package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/cws/attendance-system/internal/core/domain"
	"github.com/cws/attendance-system/internal/core/ports"
)

const collectionEvents = "recognition_events"

// EventRepository implements ports.EventRepository using MongoDB.
type EventRepository struct {
	db *mongo.Database
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(db *mongo.Database) ports.EventRepository {
	return &EventRepository{db: db}
}

// InsertEvent persists a recognition event to the audit collection.
func (r *EventRepository) InsertEvent(ctx context.Context, event *domain.RecognitionEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"username":     event.Username,
		"timestamp":    event.Timestamp.UTC(),
		"status":       string(event.Status),
		"source":       event.Source,
		"processed_at": time.Now().UTC(),
	}

	_, err := r.db.Collection(collectionEvents).InsertOne(ctx, doc)
	return err
}
