package sanitizer

import (
	"strings"

	"gameden/pkg/model"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

// BookingRequest normalizes the free-text fields of req in place.
func BookingRequest(req *model.BookingRequest) {
	req.CustomerName = Pipeline{NormalizeName}.Apply(req.CustomerName)
	req.Email = Pipeline{NormalizeEmail}.Apply(req.Email)
	req.Phone = Pipeline{NormalizePhone}.Apply(req.Phone)
	req.Date = Pipeline{strings.TrimSpace}.Apply(req.Date)
	req.TimeSlot = Pipeline{NormalizeTimeSlot}.Apply(req.TimeSlot)
}
