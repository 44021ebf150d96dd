package repository

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	bookingserrors "gameden/internal/bookings/errors"
	"gameden/pkg/model"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

// memoryBookingRepository keeps documents in their BSON form so that filters
// and partial updates behave as they do against Mongo.
type memoryBookingRepository struct {
	mu   sync.RWMutex
	docs map[string]bson.M
}

func NewMemoryBookingRepository() BookingRepository {
	return &memoryBookingRepository{
		docs: make(map[string]bson.M),
	}
}

func (r *memoryBookingRepository) Insert(ctx context.Context, booking *model.Booking) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	booking.ID = uuid.NewString()
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}
	doc, err := toDocument(booking)
	if err != nil {
		return "", fmt.Errorf("failed to insert booking: %w", err)
	}

	r.mu.Lock()
	r.docs[booking.ID] = doc
	r.mu.Unlock()
	return booking.ID, nil
}

func (r *memoryBookingRepository) UpdateFields(ctx context.Context, id string, fields Fields) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	patch, err := normalize(fields)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	doc, ok := r.docs[id]
	if !ok {
		return bookingserrors.ErrNotFound
	}
	for k, v := range patch {
		doc[k] = v
	}
	return nil
}

func (r *memoryBookingRepository) QueryByEquality(ctx context.Context, filter Fields) ([]*model.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	want, err := normalize(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var bookings []*model.Booking
	for id, doc := range r.docs {
		if !matches(doc, want) {
			continue
		}
		b, err := fromDocument(id, doc)
		if err != nil {
			return nil, fmt.Errorf("failed to decode bookings: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, nil
}

func (r *memoryBookingRepository) DeleteByID(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	delete(r.docs, id)
	r.mu.Unlock()
	return nil
}

func (r *memoryBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	doc, ok := r.docs[id]
	r.mu.RUnlock()
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	return fromDocument(id, doc)
}

func toDocument(v any) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	delete(doc, "_id")
	return doc, nil
}

func fromDocument(id string, doc bson.M) (*model.Booking, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var b model.Booking
	if err := bson.Unmarshal(raw, &b); err != nil {
		return nil, err
	}
	b.ID = id
	return &b, nil
}

func normalize(fields Fields) (bson.M, error) {
	if len(fields) == 0 {
		return bson.M{}, nil
	}
	return toDocument(bson.M(fields))
}

func matches(doc, want bson.M) bool {
	for k, v := range want {
		if !reflect.DeepEqual(doc[k], v) {
			return false
		}
	}
	return true
}
