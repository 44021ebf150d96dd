//go:build integration

package integrationtests

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	bookingserrors "gameden/internal/bookings/errors"
	"gameden/internal/bookings/repository"
	"gameden/internal/bookings/service"
	"gameden/internal/bookings/validator"
	mongoMigration "gameden/internal/migrations/mongo"
	apperrors "gameden/pkg/errors"
	"gameden/pkg/model"
	"gameden/test/integration/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDate = "2031-03-14"

func setup(t *testing.T, transactions bool) (*common.MongoHelper, service.BookingService, repository.BookingRepository) {
	t.Helper()
	h := common.NewMongoHelper(t)
	cfg := h.Config(transactions)

	require.NoError(t, mongoMigration.RunMigration(context.Background(), h.Client, h.DBName, cfg.Log))
	h.CleanCollection(t, repository.CollectionName)
	h.CleanCollection(t, repository.LockCollectionName)

	repo := repository.NewMongoBookingRepository(cfg)
	svc := service.NewBookingService(
		repo,
		repository.NewMongoSlotLockRepository(cfg),
		validator.NewBookingValidator(cfg.Log),
		nil,
		cfg,
	)
	return h, svc, repo
}

func consoleRequest(slot string) *model.BookingRequest {
	return &model.BookingRequest{
		ResourceType: model.StandardConsole,
		Date:         testDate,
		TimeSlot:     slot,
		Duration:     3,
		PartySize:    2,
		CustomerName: "Meera Iyer",
		Phone:        "+919900112233",
		Email:        "meera@example.com",
	}
}

func TestMongoRepository_CRUD(t *testing.T) {
	_, _, repo := setup(t, false)
	ctx := context.Background()

	booking := &model.Booking{
		ResourceType: model.ProConsole,
		Date:         testDate,
		TimeSlot:     "1:00 PM",
		Duration:     1,
		PartySize:    1,
		CustomerName: "Dev",
		Price:        100,
		TotalPrice:   100,
		Status:       model.Confirmed,
	}
	id, err := repo.Insert(ctx, booking)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	found, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "1:00 PM", found.TimeSlot)

	require.NoError(t, repo.UpdateFields(ctx, id, repository.Fields{repository.FieldLinkedBookingID: "x"}))
	matches, err := repo.QueryByEquality(ctx, repository.Fields{
		repository.FieldResourceType: model.ProConsole,
		repository.FieldDate:         testDate,
	})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "x", matches[0].LinkedBookingID)

	require.NoError(t, repo.DeleteByID(ctx, id))
	_, err = repo.FindByID(ctx, id)
	assert.ErrorIs(t, err, bookingserrors.ErrNotFound)

	_, err = repo.FindByID(ctx, "not-an-object-id")
	assert.ErrorIs(t, err, bookingserrors.ErrInvalidID)
}

func TestMongoSlotLock_StaleReleaseKeepsNewOwner(t *testing.T) {
	h, _, _ := setup(t, false)
	locks := repository.NewMongoSlotLockRepository(h.Config(false))
	ctx := context.Background()
	now := time.Now()

	slow := model.NewSlotLock(model.RacingRig, testDate, 10*time.Second, now.Add(-time.Minute))
	require.NoError(t, locks.Acquire(ctx, slow))

	takeover := model.NewSlotLock(model.StandardConsole, testDate, time.Minute, now)
	require.NoError(t, locks.Acquire(ctx, takeover))

	require.NoError(t, locks.Release(ctx, slow))
	late := model.NewSlotLock(model.StandardConsole, testDate, time.Minute, now)
	assert.ErrorIs(t, locks.Acquire(ctx, late), bookingserrors.ErrLockHeld)

	require.NoError(t, locks.Release(ctx, takeover))
	assert.NoError(t, locks.Acquire(ctx, late))
	require.NoError(t, locks.Release(ctx, late))
}

func TestAllocateAndCancel(t *testing.T) {
	modes := []struct {
		name         string
		transactions bool
	}{
		{"saga", false},
		{"transaction", true},
	}
	for _, mode := range modes {
		t.Run(mode.name, func(t *testing.T) {
			if mode.transactions && os.Getenv("MONGO_REPLICA_SET") == "" {
				t.Skip("transactions need a replica set; set MONGO_REPLICA_SET=1")
			}
			h, svc, _ := setup(t, mode.transactions)
			ctx := context.Background()

			booking, err := svc.Allocate(ctx, consoleRequest("5:00 PM"))
			require.NoError(t, err)
			assert.Equal(t, int64(560), booking.TotalPrice)
			assert.Equal(t, int64(2), h.CountDocuments(t, repository.CollectionName))

			rig, err := svc.OccupiedSlots(ctx, model.RacingRig, testDate)
			require.NoError(t, err)
			assert.Equal(t, []string{"5:00 PM", "6:00 PM", "7:00 PM"}, rig)

			_, err = svc.Allocate(ctx, consoleRequest("7:00 PM"))
			assert.True(t, apperrors.Is(err, apperrors.CodeConflict))

			require.NoError(t, svc.Cancel(ctx, booking.ID))
			assert.Equal(t, int64(0), h.CountDocuments(t, repository.CollectionName))
		})
	}
}

func TestConcurrentAllocation(t *testing.T) {
	h, svc, _ := setup(t, false)
	ctx := context.Background()

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Allocate(ctx, consoleRequest("2:00 PM")); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, int64(2), h.CountDocuments(t, repository.CollectionName))
	assert.Equal(t, int64(0), h.CountDocuments(t, repository.LockCollectionName))
}
