package service

import (
	"context"
	"errors"

	bookingserrors "gameden/internal/bookings/errors"
	"gameden/internal/bookings/repository"
	"gameden/pkg/config"
	apperrors "gameden/pkg/errors"
	"gameden/pkg/model"
)

// Canceller removes a booking together with its linked counterpart. Either
// side of a pair may be cancelled.
type Canceller struct {
	repo      repository.BookingRepository
	publisher EventPublisher
	cfg       *config.Config
}

func NewCanceller(repo repository.BookingRepository, publisher EventPublisher, cfg *config.Config) *Canceller {
	return &Canceller{repo: repo, publisher: publisher, cfg: cfg}
}

func (c *Canceller) Cancel(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := findBooking(ctx, c.repo, id)
	if err != nil {
		return nil, err
	}

	// linked record first, then the record itself
	if booking.LinkedBookingID != "" {
		err := c.repo.DeleteByID(ctx, booking.LinkedBookingID)
		if err != nil && !errors.Is(err, bookingserrors.ErrNotFound) {
			c.cfg.Log.Error("Failed to delete linked booking",
				"id", id,
				"linked_booking_id", booking.LinkedBookingID,
				"error", err,
			)
			return nil, apperrors.Storage("Failed to delete linked booking", err)
		}
	}

	if err := c.repo.DeleteByID(ctx, id); err != nil {
		c.cfg.Log.Error("Failed to delete booking", "id", id, "error", err)
		return nil, apperrors.Storage("Failed to delete booking", err)
	}

	c.cfg.Log.Info("Booking cancelled successfully",
		"id", id,
		"resource_type", booking.ResourceType,
		"linked_booking_id", booking.LinkedBookingID,
	)

	if err := c.publisher.Publish(ctx, EventBookingCancelled, booking); err != nil {
		c.cfg.Log.Warn("Failed to publish booking event", "id", id, "event", EventBookingCancelled, "error", err)
	}
	return booking, nil
}

func findBooking(ctx context.Context, repo repository.BookingRepository, id string) (*model.Booking, error) {
	booking, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Storage("Failed to retrieve booking", err)
	}
	return booking, nil
}
