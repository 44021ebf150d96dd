package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSlotLockKey(t *testing.T) {
	tests := []struct {
		rt   ResourceType
		want string
	}{
		{StandardConsole, "slot_lock_ps4_standard+racing_wheel_2024-06-01"},
		{RacingRig, "slot_lock_ps4_standard+racing_wheel_2024-06-01"},
		{ProConsole, "slot_lock_ps4_pro_2024-06-01"},
	}
	for _, tt := range tests {
		t.Run(string(tt.rt), func(t *testing.T) {
			assert.Equal(t, tt.want, SlotLockKey(tt.rt, "2024-06-01"))
		})
	}
}

func TestSlotLock_Expired(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	lock := NewSlotLock(ProConsole, "2024-06-01", 10*time.Second, now)

	assert.False(t, lock.Expired(now))
	assert.False(t, lock.Expired(now.Add(9*time.Second)))
	assert.True(t, lock.Expired(now.Add(10*time.Second)))
}
