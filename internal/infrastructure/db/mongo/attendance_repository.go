package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cws/attendance-system/internal/core/domain"
)

const collectionAttendance = "attendance"

// mongoAttendance is the persistence shape of a daily record.
type mongoAttendance struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	Username string             `bson:"username"`
	Date     string             `bson:"date"`
	InTime   time.Time          `bson:"in_time"`
	OutTime  *time.Time         `bson:"out_time,omitempty"`
	Status   string             `bson:"status"`
}

func toDomainAttendance(ma *mongoAttendance) *domain.Attendance {
	return &domain.Attendance{
		ID:       ma.ID.Hex(),
		Username: ma.Username,
		Date:     ma.Date,
		InTime:   ma.InTime,
		OutTime:  ma.OutTime,
		Status:   domain.AttendanceStatus(ma.Status),
	}
}

// AttendanceRepository persists daily attendance records. The (username,
// date) pair is the logical primary key; Upsert relies on a unique compound
// index so concurrent callbacks can never create two records for one day.
type AttendanceRepository struct {
	col *mongo.Collection
}

func NewAttendanceRepository(db *mongo.Database) *AttendanceRepository {
	return &AttendanceRepository{col: db.Collection(collectionAttendance)}
}

func (r *AttendanceRepository) FindByUserAndDate(ctx context.Context, username, date string) (*domain.Attendance, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var ma mongoAttendance
	err := r.col.FindOne(ctx, bson.M{"username": username, "date": date}).Decode(&ma)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAttendanceNotFound
		}
		return nil, fmt.Errorf("find attendance: %w", err)
	}
	return toDomainAttendance(&ma), nil
}

// Upsert inserts or replaces the single record for (record.Username, record.Date).
func (r *AttendanceRepository) Upsert(ctx context.Context, record *domain.Attendance) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"username": record.Username, "date": record.Date}
	update := bson.M{"$set": bson.M{
		"username": record.Username,
		"date":     record.Date,
		"in_time":  record.InTime.UTC(),
		"out_time": record.OutTime,
		"status":   string(record.Status),
	}}

	_, err := r.col.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert attendance: %w", err)
	}
	return nil
}

func (r *AttendanceRepository) FindByUser(ctx context.Context, username string) ([]*domain.Attendance, error) {
	return r.findMany(ctx, bson.M{"username": username})
}

func (r *AttendanceRepository) FindByDate(ctx context.Context, date string) ([]*domain.Attendance, error) {
	return r.findMany(ctx, bson.M{"date": date})
}

func (r *AttendanceRepository) FindByUserAndDateRange(ctx context.Context, username, from, to string) ([]*domain.Attendance, error) {
	// Dates are time.DateOnly strings, so lexical range filters are correct.
	return r.findMany(ctx, bson.M{
		"username": username,
		"date":     bson.M{"$gte": from, "$lte": to},
	})
}

func (r *AttendanceRepository) findMany(ctx context.Context, filter bson.M) ([]*domain.Attendance, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	defer cur.Close(ctx)

	var records []*domain.Attendance
	for cur.Next(ctx) {
		var ma mongoAttendance
		if err := cur.Decode(&ma); err != nil {
			return nil, fmt.Errorf("decode attendance: %w", err)
		}
		records = append(records, toDomainAttendance(&ma))
	}
	return records, cur.Err()
}

// EnsureIndexes creates the compound key index on the attendance collection.
func (r *AttendanceRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "date", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
