package service

import (
	"context"
	"sort"
	"time"

	"gameden/internal/bookings/calendar"
	"gameden/internal/bookings/pricing"
	"gameden/internal/bookings/repository"
	"gameden/internal/bookings/validator"
	"gameden/pkg/config"
	apperrors "gameden/pkg/errors"
	"gameden/pkg/model"
	"gameden/pkg/sanitizer"
)

type BookingService interface {
	Allocate(ctx context.Context, req *model.BookingRequest) (*model.Booking, error)
	Cancel(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	ListConfirmed(ctx context.Context, filter model.BookingFilter) ([]*model.Booking, error)
	OccupiedSlots(ctx context.Context, rt model.ResourceType, date string) ([]string, error)
	Availability(ctx context.Context, rt model.ResourceType, date string) (*model.Availability, error)
	Quote(rt model.ResourceType, duration, partySize int) (*pricing.Quote, error)
	Slots() []string
}

type bookingService struct {
	repo      repository.BookingRepository
	resolver  *AvailabilityResolver
	allocator *Allocator
	canceller *Canceller
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	locks repository.SlotLockRepository,
	validator *validator.BookingValidator,
	publisher EventPublisher,
	cfg *config.Config,
) BookingService {
	if publisher == nil {
		publisher = NewNoopPublisher()
	}
	resolver := NewAvailabilityResolver(repo, cfg.Log)
	return &bookingService{
		repo:      repo,
		resolver:  resolver,
		allocator: NewAllocator(repo, locks, resolver, validator, publisher, cfg),
		canceller: NewCanceller(repo, publisher, cfg),
		cfg:       cfg,
	}
}

func (s *bookingService) Allocate(ctx context.Context, req *model.BookingRequest) (*model.Booking, error) {
	return s.allocator.Allocate(ctx, req)
}

func (s *bookingService) Cancel(ctx context.Context, id string) error {
	_, err := s.canceller.Cancel(ctx, id)
	return err
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}
	return findBooking(ctx, s.repo, id)
}

// ListConfirmed returns customer bookings ordered by date and slot.
// Placeholders are never listed.
func (s *bookingService) ListConfirmed(ctx context.Context, filter model.BookingFilter) ([]*model.Booking, error) {
	fields := repository.Fields{repository.FieldStatus: model.Confirmed}
	if filter.Date != "" {
		if err := validateDate(filter.Date); err != nil {
			return nil, err
		}
		fields[repository.FieldDate] = filter.Date
	}
	if email := sanitizer.NormalizeEmail(filter.Email); email != "" {
		fields[repository.FieldEmail] = email
	}
	if phone := sanitizer.NormalizePhone(filter.Phone); phone != "" {
		fields[repository.FieldPhone] = phone
	}

	bookings, err := s.repo.QueryByEquality(ctx, fields)
	if err != nil {
		s.cfg.Log.Error("Failed to list bookings", "filter", filter, "error", err)
		return nil, apperrors.Storage("Failed to retrieve bookings", err)
	}

	sort.SliceStable(bookings, func(i, j int) bool {
		if bookings[i].Date != bookings[j].Date {
			return bookings[i].Date < bookings[j].Date
		}
		return calendar.IndexOf(bookings[i].TimeSlot) < calendar.IndexOf(bookings[j].TimeSlot)
	})

	s.cfg.Log.Debug("Booking search completed", "filter", filter, "count", len(bookings))
	if bookings == nil {
		bookings = []*model.Booking{}
	}
	return bookings, nil
}

func (s *bookingService) OccupiedSlots(ctx context.Context, rt model.ResourceType, date string) ([]string, error) {
	if err := validateQuery(rt, date); err != nil {
		return nil, err
	}
	return s.resolver.OccupiedSlots(ctx, rt, date), nil
}

func (s *bookingService) Availability(ctx context.Context, rt model.ResourceType, date string) (*model.Availability, error) {
	if err := validateQuery(rt, date); err != nil {
		return nil, err
	}
	return s.resolver.Availability(ctx, rt, date), nil
}

func (s *bookingService) Quote(rt model.ResourceType, duration, partySize int) (*pricing.Quote, error) {
	quote, err := pricing.NewQuote(rt, duration, partySize)
	if err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}
	return quote, nil
}

func (s *bookingService) Slots() []string {
	return calendar.Labels()
}

func validateQuery(rt model.ResourceType, date string) error {
	if !rt.Valid() {
		return apperrors.InvalidInput("Unknown resource type: " + string(rt))
	}
	return validateDate(date)
}

func validateDate(date string) error {
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		return apperrors.InvalidInput("Date must be in YYYY-MM-DD format")
	}
	return nil
}
