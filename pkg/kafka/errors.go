package kafka

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrProducerClosed = errors.New("kafka producer is closed")

	ErrInvalidMessage = errors.New("invalid message")

	ErrEmptyKey = errors.New("message key cannot be empty")

	ErrEmptyValue = errors.New("message value cannot be empty")
)

// PublishError is returned when a message could not be written to its topic.
// DeadLettered reports whether the message was parked on the DLQ instead.
type PublishError struct {
	Topic        string
	Key          string
	DeadLettered bool
	Err          error
}

func (e *PublishError) Error() string {
	if e.DeadLettered {
		return fmt.Sprintf("publish to %s failed, key %s sent to DLQ: %v", e.Topic, e.Key, e.Err)
	}
	return fmt.Sprintf("publish to %s failed for key %s: %v", e.Topic, e.Key, e.Err)
}

func (e *PublishError) Unwrap() error {
	return e.Err
}

var transientPatterns = []string{
	"connection refused",
	"timeout",
	"deadline exceeded",
	"no such host",
	"network is unreachable",
	"broken pipe",
	"connection reset",
	"temporary failure",
	"leader not available",
}

// IsTransient reports whether err looks like a broker or network hiccup that
// a later publish could get past.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, pattern := range transientPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
