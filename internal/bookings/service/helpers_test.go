package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	bookingserrors "gameden/internal/bookings/errors"
	"gameden/internal/bookings/repository"
	"gameden/internal/bookings/validator"
	"gameden/pkg/config"
	mongotx "gameden/pkg/db/mongo"
	"gameden/pkg/logger"
	"gameden/pkg/model"

	"github.com/stretchr/testify/require"
)

const testDate = "2024-06-01"

var errStore = errors.New("store unavailable")

func testConfig() *config.Config {
	return &config.Config{
		Log:         logger.Nop(),
		SlotLockTTL: 10 * time.Second,
	}
}

type publishedEvent struct {
	Type    string
	Booking model.Booking
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, eventType string, b *model.Booking) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Type: eventType, Booking: *b})
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// faultyRepo injects failures into an in-memory store. failInsertAt and
// failUpdateAt are 1-based call numbers; zero disables the fault.
type faultyRepo struct {
	repository.BookingRepository

	mu           sync.Mutex
	inserts      int
	updates      int
	deletes      []string
	failInsertAt int
	failUpdateAt int
	queryErr     error
	deleteErr    error
}

func newFaultyRepo() *faultyRepo {
	return &faultyRepo{BookingRepository: repository.NewMemoryBookingRepository()}
}

func (r *faultyRepo) Insert(ctx context.Context, b *model.Booking) (string, error) {
	r.mu.Lock()
	r.inserts++
	fail := r.inserts == r.failInsertAt
	r.mu.Unlock()
	if fail {
		return "", errStore
	}
	return r.BookingRepository.Insert(ctx, b)
}

func (r *faultyRepo) UpdateFields(ctx context.Context, id string, fields repository.Fields) error {
	r.mu.Lock()
	r.updates++
	fail := r.updates == r.failUpdateAt
	r.mu.Unlock()
	if fail {
		return errStore
	}
	return r.BookingRepository.UpdateFields(ctx, id, fields)
}

func (r *faultyRepo) QueryByEquality(ctx context.Context, filter repository.Fields) ([]*model.Booking, error) {
	if r.queryErr != nil {
		return nil, r.queryErr
	}
	return r.BookingRepository.QueryByEquality(ctx, filter)
}

func (r *faultyRepo) DeleteByID(ctx context.Context, id string) error {
	r.mu.Lock()
	r.deletes = append(r.deletes, id)
	r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	return r.BookingRepository.DeleteByID(ctx, id)
}

// txRepo runs transactional units directly and counts them.
type txRepo struct {
	*faultyRepo
	enabled bool
	txCalls int
}

func (r *txRepo) TransactionsEnabled() bool {
	return r.enabled
}

func (r *txRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	r.txCalls++
	return fn(ctx)
}

type heldLocks struct{}

func (heldLocks) Acquire(ctx context.Context, lock *model.SlotLock) error {
	return bookingserrors.ErrLockHeld
}

func (heldLocks) Release(ctx context.Context, lock *model.SlotLock) error {
	return nil
}

type fixture struct {
	svc       BookingService
	repo      *faultyRepo
	publisher *recordingPublisher
}

// recordingLocks wraps a lock store and remembers what was acquired and
// released.
type recordingLocks struct {
	repository.SlotLockRepository

	mu       sync.Mutex
	acquired []model.SlotLock
	released []model.SlotLock
}

func (l *recordingLocks) Acquire(ctx context.Context, lock *model.SlotLock) error {
	if err := l.SlotLockRepository.Acquire(ctx, lock); err != nil {
		return err
	}
	l.mu.Lock()
	l.acquired = append(l.acquired, *lock)
	l.mu.Unlock()
	return nil
}

func (l *recordingLocks) Release(ctx context.Context, lock *model.SlotLock) error {
	l.mu.Lock()
	l.released = append(l.released, *lock)
	l.mu.Unlock()
	return l.SlotLockRepository.Release(ctx, lock)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := newFaultyRepo()
	return newFixtureWith(t, repo, repo, repository.NewMemorySlotLockRepository())
}

func newFixtureWith(t *testing.T, faulty *faultyRepo, repo repository.BookingRepository, locks repository.SlotLockRepository) *fixture {
	t.Helper()
	cfg := testConfig()
	pub := &recordingPublisher{}
	return &fixture{
		svc:       NewBookingService(repo, locks, validator.NewBookingValidator(cfg.Log), pub, cfg),
		repo:      faulty,
		publisher: pub,
	}
}

func (f *fixture) all(t *testing.T) []*model.Booking {
	t.Helper()
	out, err := f.repo.BookingRepository.QueryByEquality(context.Background(), repository.Fields{})
	require.NoError(t, err)
	return out
}

func request(rt model.ResourceType, slot string, duration, party int) *model.BookingRequest {
	return &model.BookingRequest{
		ResourceType: rt,
		Date:         testDate,
		TimeSlot:     slot,
		Duration:     duration,
		PartySize:    party,
		CustomerName: "Asha Rao",
		Phone:        "98765 43210",
		Email:        "Asha@Example.com",
	}
}
