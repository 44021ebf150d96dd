package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	bookingserrors "gameden/internal/bookings/errors"
	"gameden/pkg/config"
	"gameden/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const LockCollectionName = "Booking_locks"

// SlotLockRepository provides advisory locks serialising writers of one
// resource pair on one date.
type SlotLockRepository interface {
	// Acquire returns ErrLockHeld while an unexpired lock with the same id exists.
	Acquire(ctx context.Context, lock *model.SlotLock) error
	// Release removes lock only while lock.Owner still holds it. A lock that
	// expired and was taken over is left to its new owner.
	Release(ctx context.Context, lock *model.SlotLock) error
}

type mongoSlotLockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoSlotLockRepository(cfg *config.Config) SlotLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSlotLockRepository{
		cfg:        cfg,
		collection: db.Collection(LockCollectionName),
	}
}

func (r *mongoSlotLockRepository) Acquire(ctx context.Context, lock *model.SlotLock) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	lock.CreatedAt = time.Now().UTC()
	_, err := r.collection.InsertOne(ctx, lock)
	if err == nil {
		return nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("failed to acquire slot lock: %w", err)
	}

	// The TTL monitor runs about once a minute, so a crashed holder can leave
	// an expired lock behind. Clear it and try once more.
	res, err := r.collection.DeleteOne(ctx, bson.M{
		"_id":        lock.ID,
		"expires_at": bson.M{"$lte": lock.CreatedAt},
	})
	if err != nil {
		return fmt.Errorf("failed to clear expired slot lock: %w", err)
	}
	if res.DeletedCount == 0 {
		return bookingserrors.ErrLockHeld
	}

	if _, err := r.collection.InsertOne(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return bookingserrors.ErrLockHeld
		}
		return fmt.Errorf("failed to acquire slot lock: %w", err)
	}
	return nil
}

func (r *mongoSlotLockRepository) Release(ctx context.Context, lock *model.SlotLock) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": lock.ID, "owner": lock.Owner}); err != nil {
		return fmt.Errorf("failed to release slot lock: %w", err)
	}
	return nil
}

type memorySlotLockRepository struct {
	mu    sync.Mutex
	locks map[string]model.SlotLock
	now   func() time.Time
}

func NewMemorySlotLockRepository() SlotLockRepository {
	return &memorySlotLockRepository{
		locks: make(map[string]model.SlotLock),
		now:   time.Now,
	}
}

func (r *memorySlotLockRepository) Acquire(ctx context.Context, lock *model.SlotLock) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	if held, ok := r.locks[lock.ID]; ok && !held.Expired(now) {
		return bookingserrors.ErrLockHeld
	}
	lock.CreatedAt = now
	r.locks[lock.ID] = *lock
	return nil
}

func (r *memorySlotLockRepository) Release(ctx context.Context, lock *model.SlotLock) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if held, ok := r.locks[lock.ID]; ok && held.Owner == lock.Owner {
		delete(r.locks, lock.ID)
	}
	return nil
}
