package service

import (
	"context"
	"sort"
	"sync"

	"gameden/internal/bookings/calendar"
	"gameden/internal/bookings/pricing"
	"gameden/internal/bookings/repository"
	"gameden/pkg/logger"
	"gameden/pkg/model"
)

// AvailabilityResolver computes which calendar slots of a resource are taken
// on a date. Paired resources read each other's records as well.
type AvailabilityResolver struct {
	repo repository.BookingRepository
	log  *logger.Logger
}

func NewAvailabilityResolver(repo repository.BookingRepository, log *logger.Logger) *AvailabilityResolver {
	return &AvailabilityResolver{repo: repo, log: log}
}

// OccupiedSlots is the read path used by the UI. Any read failure yields an
// empty set.
func (r *AvailabilityResolver) OccupiedSlots(ctx context.Context, rt model.ResourceType, date string) []string {
	slots, err := r.StrictOccupiedSlots(ctx, rt, date)
	if err != nil {
		r.log.Warn("Failed to read booked slots, reporting none",
			"resource_type", rt,
			"date", date,
			"error", err,
		)
		return []string{}
	}
	return slots
}

// StrictOccupiedSlots is OccupiedSlots without degradation, for writers that
// must not mistake a failed read for a free day.
func (r *AvailabilityResolver) StrictOccupiedSlots(ctx context.Context, rt model.ResourceType, date string) ([]string, error) {
	types := []model.ResourceType{rt}
	if paired, ok := rt.Paired(); ok {
		types = append(types, paired)
	}

	results := make([][]*model.Booking, len(types))
	errs := make([]error, len(types))
	var wg sync.WaitGroup
	wg.Add(len(types))

	for i, t := range types {
		i, t := i, t
		go func() {
			defer wg.Done()
			results[i], errs[i] = r.repo.QueryByEquality(ctx, repository.Fields{
				repository.FieldResourceType: t,
				repository.FieldDate:         date,
			})
		}()
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	taken := make(map[int]struct{})
	for _, bookings := range results {
		for _, b := range bookings {
			for _, i := range slotIndexes(b) {
				taken[i] = struct{}{}
			}
		}
	}
	return labelsOf(taken), nil
}

// Availability marks every calendar slot as booked or free.
func (r *AvailabilityResolver) Availability(ctx context.Context, rt model.ResourceType, date string) *model.Availability {
	occupied := r.OccupiedSlots(ctx, rt, date)
	booked := make(map[string]bool, len(occupied))
	for _, s := range occupied {
		booked[s] = true
	}

	labels := calendar.Labels()
	slots := make([]model.SlotAvailability, 0, len(labels))
	for _, label := range labels {
		slots = append(slots, model.SlotAvailability{Time: label, IsBooked: booked[label]})
	}

	return &model.Availability{
		ResourceType: rt,
		Date:         date,
		Slots:        slots,
		Occupied:     occupied,
	}
}

// slotCount is the number of hourly slots a record blocks.
func slotCount(b *model.Booking) int {
	if b.Duration <= 0 {
		return 0
	}
	if b.Unit() == model.Minutes {
		return (b.Duration + pricing.MinutesPerSlot - 1) / pricing.MinutesPerSlot
	}
	return b.Duration
}

// slotIndexes returns the calendar positions a record blocks. Unknown start
// labels block nothing and runs are cut at the end of the day.
func slotIndexes(b *model.Booking) []int {
	start := calendar.IndexOf(b.TimeSlot)
	if start < 0 {
		return nil
	}
	var out []int
	for i := start; i < start+slotCount(b) && i < calendar.Len(); i++ {
		out = append(out, i)
	}
	return out
}

func labelsOf(taken map[int]struct{}) []string {
	idx := make([]int, 0, len(taken))
	for i := range taken {
		idx = append(idx, i)
	}
	sort.Ints(idx)

	out := make([]string, 0, len(idx))
	for _, i := range idx {
		label, _ := calendar.Label(i)
		out = append(out, label)
	}
	return out
}
