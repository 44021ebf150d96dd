package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const slotLockPrefix = "slot_lock_"

// SlotLock is an advisory lock held while a booking for one shared resource
// and date is being written. Owner identifies the holder; only the holder
// may release it.
type SlotLock struct {
	ID        string    `bson:"_id" json:"id"`
	Owner     string    `bson:"owner" json:"owner"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

func NewSlotLock(rt ResourceType, date string, ttl time.Duration, now time.Time) *SlotLock {
	return &SlotLock{
		ID:        SlotLockKey(rt, date),
		Owner:     uuid.NewString(),
		ExpiresAt: now.UTC().Add(ttl),
	}
}

// SlotLockKey names the lock shared by every resource that reads the same
// records, so both sides of a pair serialise on one key.
//
//	slot_lock_ps4_standard+racing_wheel_2024-06-01
//	slot_lock_ps4_pro_2024-06-01
func SlotLockKey(rt ResourceType, date string) string {
	key := string(rt)
	if paired, ok := rt.Paired(); ok {
		names := []string{string(rt), string(paired)}
		if names[0] > names[1] {
			names[0], names[1] = names[1], names[0]
		}
		key = strings.Join(names, "+")
	}
	return fmt.Sprintf("%s%s_%s", slotLockPrefix, key, date)
}

func (l *SlotLock) Expired(now time.Time) bool {
	return !l.ExpiresAt.After(now)
}
