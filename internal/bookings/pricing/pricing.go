package pricing

import (
	"errors"
	"fmt"

	"gameden/pkg/model"
)

const (
	RacingRigPricePerHour = 250
	ConsolePricePerHour   = 100

	MinutesPerSlot = 60
)

// consoleTiers are flat promotional prices that undercut the hourly rate.
var consoleTiers = map[int]int64{
	3: 280,
	5: 450,
}

var (
	ErrInvalidDuration = errors.New("invalid duration")
	ErrUnknownResource = errors.New("unknown resource type")
)

type Quote struct {
	ResourceType model.ResourceType `json:"resource_type"`
	Duration     int                `json:"duration"`
	DurationUnit model.DurationUnit `json:"duration_unit"`
	PartySize    int                `json:"party_size"`
	Price        int64              `json:"price"`
	TotalPrice   int64              `json:"total_price"`
}

// Price returns the base price of one booking of rt. The racing rig is priced
// per 60 minutes; consoles per hour with the tiered discounts.
func Price(rt model.ResourceType, duration int) (int64, error) {
	if duration <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidDuration, duration)
	}

	switch rt {
	case model.RacingRig:
		if duration%MinutesPerSlot != 0 {
			return 0, fmt.Errorf("%w: racing wheel duration must be a multiple of %d minutes, got %d", ErrInvalidDuration, MinutesPerSlot, duration)
		}
		return int64(duration/MinutesPerSlot) * RacingRigPricePerHour, nil
	case model.StandardConsole, model.ProConsole:
		if p, ok := consoleTiers[duration]; ok {
			return p, nil
		}
		return int64(duration) * ConsolePricePerHour, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownResource, rt)
	}
}

// Total multiplies the base price by the party size for consoles. The racing
// rig seats one player and is never multiplied.
func Total(rt model.ResourceType, duration, partySize int) (int64, error) {
	price, err := Price(rt, duration)
	if err != nil {
		return 0, err
	}
	if rt == model.RacingRig || partySize < 1 {
		return price, nil
	}
	return price * int64(partySize), nil
}

func NewQuote(rt model.ResourceType, duration, partySize int) (*Quote, error) {
	if rt == model.RacingRig || partySize < 1 {
		partySize = 1
	}
	price, err := Price(rt, duration)
	if err != nil {
		return nil, err
	}
	total, err := Total(rt, duration, partySize)
	if err != nil {
		return nil, err
	}
	return &Quote{
		ResourceType: rt,
		Duration:     duration,
		DurationUnit: rt.DurationUnit(),
		PartySize:    partySize,
		Price:        price,
		TotalPrice:   total,
	}, nil
}
