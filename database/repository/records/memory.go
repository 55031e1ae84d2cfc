package recordsRepo

import (
	"context"
	"sync"
	"time"

	"calbook/models"
)

type memoryRecordRepo struct {
	mu      sync.RWMutex
	records map[string]models.BookingRecord
}

// NewMemoryRecordRepo is used when no DATABASE_URL is configured.
func NewMemoryRecordRepo() BookingRecordRepository {
	return &memoryRecordRepo{records: make(map[string]models.BookingRecord)}
}

func (r *memoryRecordRepo) Create(_ context.Context, record models.BookingRecord) error {
	now := time.Now().Unix()
	if record.Status == "" {
		record.Status = StatusConfirmed
	}
	record.CreatedAt = now
	record.UpdatedAt = now

	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[record.EventID] = record
	return nil
}

func (r *memoryRecordRepo) GetByEventID(_ context.Context, eventID string) (*models.BookingRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.records[eventID]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return &record, nil
}

func (r *memoryRecordRepo) MarkCancelled(_ context.Context, eventID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[eventID]
	if !ok {
		return ErrRecordNotFound
	}
	record.Status = StatusCancelled
	record.UpdatedAt = time.Now().Unix()
	r.records[eventID] = record
	return nil
}
