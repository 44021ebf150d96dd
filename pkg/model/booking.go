package model

import (
	"time"
)

type ResourceType string

const (
	StandardConsole ResourceType = "ps4_standard"
	ProConsole      ResourceType = "ps4_pro"
	RacingRig       ResourceType = "racing_wheel"
)

var ResourceTypes = []ResourceType{StandardConsole, ProConsole, RacingRig}

func (rt ResourceType) Valid() bool {
	switch rt {
	case StandardConsole, ProConsole, RacingRig:
		return true
	}
	return false
}

// Paired returns the resource type that shares hardware with rt.
func (rt ResourceType) Paired() (ResourceType, bool) {
	switch rt {
	case StandardConsole:
		return RacingRig, true
	case RacingRig:
		return StandardConsole, true
	}
	return "", false
}

// DurationUnit is the unit a customer booking of rt is expressed in.
func (rt ResourceType) DurationUnit() DurationUnit {
	if rt == RacingRig {
		return Minutes
	}
	return Hours
}

type DurationUnit string

const (
	Hours   DurationUnit = "hours"
	Minutes DurationUnit = "minutes"
)

type Status string

const (
	Confirmed              Status = "confirmed"
	ReservedForRacingWheel Status = "reserved_for_racing_wheel"
	ReservedForPS4         Status = "reserved_for_ps4"
)

func (s Status) IsPlaceholder() bool {
	return s == ReservedForRacingWheel || s == ReservedForPS4
}

type Booking struct {
	ID              string       `json:"id,omitempty" bson:"_id,omitempty"`
	ResourceType    ResourceType `json:"resource_type" bson:"resource_type"`
	Date            string       `json:"date" bson:"date"`
	TimeSlot        string       `json:"time_slot" bson:"time_slot"`
	Duration        int          `json:"duration" bson:"duration"`
	DurationUnit    DurationUnit `json:"duration_unit,omitempty" bson:"duration_unit,omitempty"`
	PartySize       int          `json:"party_size" bson:"party_size"`
	CustomerName    string       `json:"customer_name" bson:"customer_name"`
	Phone           string       `json:"phone,omitempty" bson:"phone"`
	Email           string       `json:"email,omitempty" bson:"email"`
	Price           int64        `json:"price" bson:"price"`
	TotalPrice      int64        `json:"total_price" bson:"total_price"`
	Status          Status       `json:"status" bson:"status"`
	CreatedAt       time.Time    `json:"created_at" bson:"created_at"`
	LinkedBookingID string       `json:"linked_booking_id,omitempty" bson:"linked_booking_id,omitempty"`
}

// Unit resolves the unit of Duration. Records written without a unit fall back
// to the resource type, and a racing wheel placeholder counts as minutes.
func (b *Booking) Unit() DurationUnit {
	if b.DurationUnit != "" {
		return b.DurationUnit
	}
	if b.ResourceType == RacingRig || b.Status == ReservedForRacingWheel {
		return Minutes
	}
	return Hours
}

type BookingRequest struct {
	ResourceType ResourceType `json:"resource_type" validate:"required,resource_type"`
	Date         string       `json:"date" validate:"required,datetime=2006-01-02"`
	TimeSlot     string       `json:"time_slot" validate:"required,time_slot"`
	Duration     int          `json:"duration" validate:"required,gt=0"`
	PartySize    int          `json:"party_size" validate:"omitempty,min=1,max=10"`
	CustomerName string       `json:"customer_name" validate:"required,min=2,max=100"`
	Phone        string       `json:"phone" validate:"omitempty,e164"`
	Email        string       `json:"email" validate:"omitempty,email"`
}

type BookingFilter struct {
	Date  string
	Email string
	Phone string
}

type SlotAvailability struct {
	Time     string `json:"time"`
	IsBooked bool   `json:"is_booked"`
}

type Availability struct {
	ResourceType ResourceType       `json:"resource_type"`
	Date         string             `json:"date"`
	Slots        []SlotAvailability `json:"slots"`
	Occupied     []string           `json:"occupied"`
}
