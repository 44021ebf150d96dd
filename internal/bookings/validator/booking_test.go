package validator

import (
	"errors"
	"testing"

	"gameden/pkg/logger"
	"gameden/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest() *model.BookingRequest {
	return &model.BookingRequest{
		ResourceType: model.StandardConsole,
		Date:         "2024-06-01",
		TimeSlot:     "2:00 PM",
		Duration:     2,
		PartySize:    2,
		CustomerName: "Asha Rao",
		Phone:        "+919876543210",
		Email:        "asha@example.com",
	}
}

func TestValidate(t *testing.T) {
	v := NewBookingValidator(logger.Nop())

	tests := []struct {
		name      string
		mutate    func(r *model.BookingRequest)
		wantField string
	}{
		{name: "valid console request", mutate: func(r *model.BookingRequest) {}},
		{name: "valid pro console request", mutate: func(r *model.BookingRequest) { r.ResourceType = model.ProConsole }},
		{
			name: "valid racing rig request",
			mutate: func(r *model.BookingRequest) {
				r.ResourceType = model.RacingRig
				r.Duration = 120
				r.PartySize = 1
			},
		},
		{name: "contact details are optional", mutate: func(r *model.BookingRequest) { r.Phone, r.Email = "", "" }},
		{name: "unknown resource type", mutate: func(r *model.BookingRequest) { r.ResourceType = "xbox" }, wantField: "resource_type"},
		{name: "missing resource type", mutate: func(r *model.BookingRequest) { r.ResourceType = "" }, wantField: "resource_type"},
		{name: "malformed date", mutate: func(r *model.BookingRequest) { r.Date = "01/06/2024" }, wantField: "date"},
		{name: "impossible date", mutate: func(r *model.BookingRequest) { r.Date = "2024-02-30" }, wantField: "date"},
		{name: "unknown time slot", mutate: func(r *model.BookingRequest) { r.TimeSlot = "10:00 AM" }, wantField: "time_slot"},
		{name: "zero duration", mutate: func(r *model.BookingRequest) { r.Duration = 0 }, wantField: "duration"},
		{name: "negative duration", mutate: func(r *model.BookingRequest) { r.Duration = -1 }, wantField: "duration"},
		{name: "console duration longer than the day", mutate: func(r *model.BookingRequest) { r.Duration = 14 }, wantField: "duration"},
		{
			name: "racing rig duration not a whole hour",
			mutate: func(r *model.BookingRequest) {
				r.ResourceType = model.RacingRig
				r.Duration = 90
				r.PartySize = 1
			},
			wantField: "duration",
		},
		{
			name: "racing rig with a party",
			mutate: func(r *model.BookingRequest) {
				r.ResourceType = model.RacingRig
				r.Duration = 60
			},
			wantField: "party_size",
		},
		{name: "party too large", mutate: func(r *model.BookingRequest) { r.PartySize = 11 }, wantField: "party_size"},
		{name: "short name", mutate: func(r *model.BookingRequest) { r.CustomerName = "A" }, wantField: "customer_name"},
		{name: "missing name", mutate: func(r *model.BookingRequest) { r.CustomerName = "" }, wantField: "customer_name"},
		{name: "bad phone", mutate: func(r *model.BookingRequest) { r.Phone = "abc" }, wantField: "phone"},
		{name: "bad email", mutate: func(r *model.BookingRequest) { r.Email = "not-an-email" }, wantField: "email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)

			err := v.Validate(req)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			var verrs ValidationErrors
			require.True(t, errors.As(err, &verrs))
			assert.Contains(t, verrs.Details(), tt.wantField)
		})
	}
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "date", Message: "date is required"},
		{Field: "duration", Message: "duration is required"},
	}
	assert.Equal(t, "validation failed: 2 error(s): [date: date is required; duration: duration is required]", errs.Error())
	assert.Empty(t, ValidationErrors{}.Error())
}
