package recordsRepo

import (
	"context"
	"errors"
	"time"

	"calbook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Create upserts on eventId so a retried create does not duplicate the record.
func (r *mongoRecordRepo) Create(ctx context.Context, record models.BookingRecord) error {
	now := time.Now().Unix()
	if record.Status == "" {
		record.Status = StatusConfirmed
	}
	record.CreatedAt = now
	record.UpdatedAt = now

	_, err := r.coll.ReplaceOne(ctx, bson.M{"eventId": record.EventID}, record, options.Replace().SetUpsert(true))
	return err
}

func (r *mongoRecordRepo) GetByEventID(ctx context.Context, eventID string) (*models.BookingRecord, error) {
	var record models.BookingRecord
	err := r.coll.FindOne(ctx, bson.M{"eventId": eventID}).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *mongoRecordRepo) MarkCancelled(ctx context.Context, eventID string) error {
	update := bson.M{"$set": bson.M{"status": StatusCancelled, "updatedAt": time.Now().Unix()}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"eventId": eventID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrRecordNotFound
	}
	return nil
}
