package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"gameden/internal/bookings/calendar"
	bookingserrors "gameden/internal/bookings/errors"
	"gameden/internal/bookings/pricing"
	"gameden/internal/bookings/repository"
	"gameden/internal/bookings/validator"
	"gameden/pkg/config"
	apperrors "gameden/pkg/errors"
	"gameden/pkg/model"
	"gameden/pkg/sanitizer"
)

// Allocator turns a booking request into stored records. For a paired
// resource it writes the confirmed record, a placeholder on the partner and
// links the two.
type Allocator struct {
	repo      repository.BookingRepository
	locks     repository.SlotLockRepository
	resolver  *AvailabilityResolver
	validator *validator.BookingValidator
	publisher EventPublisher
	cfg       *config.Config
}

func NewAllocator(
	repo repository.BookingRepository,
	locks repository.SlotLockRepository,
	resolver *AvailabilityResolver,
	validator *validator.BookingValidator,
	publisher EventPublisher,
	cfg *config.Config,
) *Allocator {
	return &Allocator{
		repo:      repo,
		locks:     locks,
		resolver:  resolver,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
	}
}

func (a *Allocator) Allocate(ctx context.Context, req *model.BookingRequest) (*model.Booking, error) {
	if req == nil {
		return nil, apperrors.InvalidInput("Booking request cannot be empty")
	}
	applyDefaults(req)
	sanitizer.BookingRequest(req)
	if err := a.validate(req); err != nil {
		return nil, err
	}

	booking, err := newConfirmedBooking(req)
	if err != nil {
		return nil, apperrors.Validation("Booking validation failed", map[string]any{"duration": err.Error()})
	}

	lock, err := a.acquireSlotLock(ctx, req.ResourceType, req.Date)
	if err != nil {
		return nil, err
	}
	defer func() {
		if releaseErr := a.locks.Release(context.WithoutCancel(ctx), lock); releaseErr != nil {
			a.cfg.Log.Warn("Failed to release slot lock", "lock_id", lock.ID, "error", releaseErr)
		}
	}()

	// no write may start once the lock could have been taken over
	ctx, cancel := context.WithDeadline(ctx, lock.ExpiresAt)
	defer cancel()

	if err := a.verifyFree(ctx, booking); err != nil {
		return nil, err
	}

	if tx, ok := a.repo.(repository.Transactional); ok && tx.TransactionsEnabled() {
		err = tx.ExecuteTransaction(ctx, func(txCtx context.Context) error {
			return a.persist(txCtx, booking, false)
		})
	} else {
		err = a.persist(ctx, booking, true)
	}
	if err != nil {
		a.cfg.Log.Error("Failed to create booking",
			"resource_type", booking.ResourceType,
			"date", booking.Date,
			"time_slot", booking.TimeSlot,
			"error", err,
		)
		return nil, err
	}

	a.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"resource_type", booking.ResourceType,
		"date", booking.Date,
		"time_slot", booking.TimeSlot,
		"duration", booking.Duration,
		"linked_booking_id", booking.LinkedBookingID,
	)

	if err := a.publisher.Publish(ctx, EventBookingCreated, booking); err != nil {
		a.cfg.Log.Warn("Failed to publish booking event", "id", booking.ID, "event", EventBookingCreated, "error", err)
	}
	return booking, nil
}

// persist writes booking and, for paired resources, its placeholder, then
// cross-links them. With compensate set, records written before a failing
// step are removed again; inside a transaction the abort does that.
func (a *Allocator) persist(ctx context.Context, booking *model.Booking, compensate bool) error {
	id, err := a.repo.Insert(ctx, booking)
	if err != nil {
		return apperrors.Storage("Failed to store booking", err)
	}

	paired, ok := booking.ResourceType.Paired()
	if !ok {
		return nil
	}

	placeholder := newPlaceholder(booking, paired)
	written := []string{id}
	fail := func(step string, cause error) error {
		if compensate {
			a.rollback(ctx, written)
		}
		return apperrors.PartialLink(fmt.Sprintf("Paired booking failed while %s", step), cause)
	}

	placeholderID, err := a.repo.Insert(ctx, placeholder)
	if err != nil {
		return fail("reserving the paired resource", err)
	}
	written = append(written, placeholderID)

	if err := a.repo.UpdateFields(ctx, id, repository.Fields{repository.FieldLinkedBookingID: placeholderID}); err != nil {
		return fail("linking the booking", err)
	}
	if err := a.repo.UpdateFields(ctx, placeholderID, repository.Fields{repository.FieldLinkedBookingID: id}); err != nil {
		return fail("linking the placeholder", err)
	}

	booking.LinkedBookingID = placeholderID
	return nil
}

// rollback deletes written records newest first. Failures are only logged.
func (a *Allocator) rollback(ctx context.Context, ids []string) {
	ctx = context.WithoutCancel(ctx)
	for i := len(ids) - 1; i >= 0; i-- {
		if err := a.repo.DeleteByID(ctx, ids[i]); err != nil {
			a.cfg.Log.Error("Failed to roll back partial booking", "id", ids[i], "error", err)
			continue
		}
		a.cfg.Log.Warn("Rolled back partial booking", "id", ids[i])
	}
}

func (a *Allocator) verifyFree(ctx context.Context, booking *model.Booking) error {
	occupied, err := a.resolver.StrictOccupiedSlots(ctx, booking.ResourceType, booking.Date)
	if err != nil {
		return apperrors.Storage("Failed to check existing bookings", err)
	}

	taken := make(map[string]struct{}, len(occupied))
	for _, s := range occupied {
		taken[s] = struct{}{}
	}

	var clashes []string
	for _, i := range slotIndexes(booking) {
		label, _ := calendar.Label(i)
		if _, ok := taken[label]; ok {
			clashes = append(clashes, label)
		}
	}
	if len(clashes) > 0 {
		return apperrors.Wrap(bookingserrors.ErrSlotTaken, apperrors.CodeConflict,
			fmt.Sprintf("Slots already booked: %s", strings.Join(clashes, ", ")), http.StatusConflict).
			WithDetails(map[string]any{"slots": clashes})
	}
	return nil
}

func (a *Allocator) acquireSlotLock(ctx context.Context, rt model.ResourceType, date string) (*model.SlotLock, error) {
	lock := model.NewSlotLock(rt, date, a.cfg.SlotLockTTL, time.Now())

	if err := a.locks.Acquire(ctx, lock); err != nil {
		if errors.Is(err, bookingserrors.ErrLockHeld) {
			return nil, apperrors.Conflict("This day is currently being booked by another request. Please try again.")
		}
		return nil, apperrors.Storage("Failed to acquire slot lock", err)
	}
	return lock, nil
}

func (a *Allocator) validate(req *model.BookingRequest) error {
	if err := a.validator.Validate(req); err != nil {
		a.cfg.Log.Warn("Booking validation failed", "error", err)
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return apperrors.Validation("Booking validation failed", verrs.Details())
		}
		return apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

func applyDefaults(req *model.BookingRequest) {
	if req.ResourceType == model.RacingRig || req.PartySize <= 0 {
		req.PartySize = 1
	}
}

func newConfirmedBooking(req *model.BookingRequest) (*model.Booking, error) {
	price, err := pricing.Price(req.ResourceType, req.Duration)
	if err != nil {
		return nil, err
	}
	total, err := pricing.Total(req.ResourceType, req.Duration, req.PartySize)
	if err != nil {
		return nil, err
	}

	return &model.Booking{
		ResourceType: req.ResourceType,
		Date:         req.Date,
		TimeSlot:     req.TimeSlot,
		Duration:     req.Duration,
		DurationUnit: req.ResourceType.DurationUnit(),
		PartySize:    req.PartySize,
		CustomerName: req.CustomerName,
		Phone:        req.Phone,
		Email:        req.Email,
		Price:        price,
		TotalPrice:   total,
		Status:       model.Confirmed,
	}, nil
}

// newPlaceholder blocks the same window on the paired resource, converted to
// that resource's duration unit.
func newPlaceholder(b *model.Booking, paired model.ResourceType) *model.Booking {
	p := &model.Booking{
		ResourceType: paired,
		Date:         b.Date,
		TimeSlot:     b.TimeSlot,
		DurationUnit: paired.DurationUnit(),
		PartySize:    1,
		CustomerName: b.CustomerName,
		Phone:        b.Phone,
		Email:        b.Email,
	}

	slots := slotCount(b)
	switch paired {
	case model.RacingRig:
		p.Duration = slots * pricing.MinutesPerSlot
		p.Status = model.ReservedForPS4
	default:
		p.Duration = slots
		p.Status = model.ReservedForRacingWheel
	}
	return p
}
