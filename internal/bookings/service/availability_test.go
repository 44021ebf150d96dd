package service

import (
	"context"
	"testing"

	"gameden/pkg/logger"
	"gameden/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, repo *faultyRepo, bookings ...*model.Booking) {
	t.Helper()
	for _, b := range bookings {
		if b.Date == "" {
			b.Date = testDate
		}
		_, err := repo.BookingRepository.Insert(context.Background(), b)
		require.NoError(t, err)
	}
}

func TestOccupiedSlots_DurationUnits(t *testing.T) {
	tests := []struct {
		name    string
		booking *model.Booking
		query   model.ResourceType
		want    []string
	}{
		{
			name:    "console hours",
			booking: &model.Booking{ResourceType: model.StandardConsole, TimeSlot: "2:00 PM", Duration: 3, DurationUnit: model.Hours},
			query:   model.StandardConsole,
			want:    []string{"2:00 PM", "3:00 PM", "4:00 PM"},
		},
		{
			name:    "racing rig minutes round up",
			booking: &model.Booking{ResourceType: model.RacingRig, TimeSlot: "2:00 PM", Duration: 90},
			query:   model.StandardConsole,
			want:    []string{"2:00 PM", "3:00 PM"},
		},
		{
			name:    "legacy racing wheel placeholder counts minutes",
			booking: &model.Booking{ResourceType: model.StandardConsole, TimeSlot: "1:00 PM", Duration: 120, Status: model.ReservedForRacingWheel},
			query:   model.RacingRig,
			want:    []string{"1:00 PM", "2:00 PM"},
		},
		{
			name:    "stored unit wins over status",
			booking: &model.Booking{ResourceType: model.StandardConsole, TimeSlot: "1:00 PM", Duration: 2, DurationUnit: model.Hours, Status: model.ReservedForRacingWheel},
			query:   model.RacingRig,
			want:    []string{"1:00 PM", "2:00 PM"},
		},
		{
			name:    "unknown label contributes nothing",
			booking: &model.Booking{ResourceType: model.StandardConsole, TimeSlot: "10:00 AM", Duration: 2},
			query:   model.StandardConsole,
			want:    []string{},
		},
		{
			name:    "run clipped at end of day",
			booking: &model.Booking{ResourceType: model.ProConsole, TimeSlot: "11:00 PM", Duration: 4},
			query:   model.ProConsole,
			want:    []string{"11:00 PM"},
		},
		{
			name:    "other date is ignored",
			booking: &model.Booking{ResourceType: model.ProConsole, Date: "2024-06-02", TimeSlot: "2:00 PM", Duration: 1},
			query:   model.ProConsole,
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFaultyRepo()
			seed(t, repo, tt.booking)
			r := NewAvailabilityResolver(repo, logger.Nop())

			assert.Equal(t, tt.want, r.OccupiedSlots(context.Background(), tt.query, testDate))
		})
	}
}

func TestOccupiedSlots_MergesAndOrders(t *testing.T) {
	repo := newFaultyRepo()
	seed(t, repo,
		&model.Booking{ResourceType: model.RacingRig, TimeSlot: "6:00 PM", Duration: 60},
		&model.Booking{ResourceType: model.StandardConsole, TimeSlot: "11:00 AM", Duration: 2},
		&model.Booking{ResourceType: model.StandardConsole, TimeSlot: "12:00 PM", Duration: 1},
		&model.Booking{ResourceType: model.ProConsole, TimeSlot: "3:00 PM", Duration: 1},
	)
	r := NewAvailabilityResolver(repo, logger.Nop())

	want := []string{"11:00 AM", "12:00 PM", "6:00 PM"}
	assert.Equal(t, want, r.OccupiedSlots(context.Background(), model.StandardConsole, testDate))
	assert.Equal(t, want, r.OccupiedSlots(context.Background(), model.RacingRig, testDate))
	assert.Equal(t, []string{"3:00 PM"}, r.OccupiedSlots(context.Background(), model.ProConsole, testDate))
}

func TestOccupiedSlots_Idempotent(t *testing.T) {
	repo := newFaultyRepo()
	seed(t, repo, &model.Booking{ResourceType: model.StandardConsole, TimeSlot: "2:00 PM", Duration: 2})
	r := NewAvailabilityResolver(repo, logger.Nop())

	first := r.OccupiedSlots(context.Background(), model.RacingRig, testDate)
	second := r.OccupiedSlots(context.Background(), model.RacingRig, testDate)
	assert.Equal(t, first, second)
}

func TestOccupiedSlots_ReadFailureDegradesToEmpty(t *testing.T) {
	repo := newFaultyRepo()
	seed(t, repo, &model.Booking{ResourceType: model.StandardConsole, TimeSlot: "2:00 PM", Duration: 2})
	repo.queryErr = errStore
	r := NewAvailabilityResolver(repo, logger.Nop())

	slots := r.OccupiedSlots(context.Background(), model.StandardConsole, testDate)
	assert.NotNil(t, slots)
	assert.Empty(t, slots)

	_, err := r.StrictOccupiedSlots(context.Background(), model.StandardConsole, testDate)
	assert.ErrorIs(t, err, errStore)
}

func TestAvailability_Grid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Allocate(ctx, request(model.RacingRig, "8:00 PM", 120, 1))
	require.NoError(t, err)

	grid, err := f.svc.Availability(ctx, model.StandardConsole, testDate)
	require.NoError(t, err)
	require.Len(t, grid.Slots, 13)
	assert.Equal(t, []string{"8:00 PM", "9:00 PM"}, grid.Occupied)

	for _, s := range grid.Slots {
		booked := s.Time == "8:00 PM" || s.Time == "9:00 PM"
		assert.Equal(t, booked, s.IsBooked, s.Time)
	}
}

func TestAvailability_InvalidQuery(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Availability(context.Background(), "xbox", testDate)
	assert.Error(t, err)
	_, err = f.svc.OccupiedSlots(context.Background(), model.ProConsole, "2024-13-01")
	assert.Error(t, err)
}
