package recordsRepo

import (
	"context"
	"errors"

	"calbook/models"

	"go.mongodb.org/mongo-driver/mongo"
)

const (
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

var ErrRecordNotFound = errors.New("booking record not found")

// BookingRecordRepository keeps a local trace of events booked through the API.
type BookingRecordRepository interface {
	Create(ctx context.Context, record models.BookingRecord) error
	GetByEventID(ctx context.Context, eventID string) (*models.BookingRecord, error)
	MarkCancelled(ctx context.Context, eventID string) error
}

type mongoRecordRepo struct {
	coll *mongo.Collection
}

// NewMongoRecordRepo returns a BookingRecordRepository backed by the
// "bookings" collection of db.
func NewMongoRecordRepo(db *mongo.Database) BookingRecordRepository {
	return &mongoRecordRepo{
		coll: db.Collection("bookings"),
	}
}
