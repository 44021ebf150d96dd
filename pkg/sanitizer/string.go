package sanitizer

import (
	"strings"
	"time"
	"unicode"
)

const slotLayout = "3:04 PM"

func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
			continue
		}
		result.WriteRune(r)
		lastWasSpace = false
	}

	return result.String()
}

func NormalizeName(name string) string {
	return TrimAndNormalize(name)
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeTimeSlot rewrites a 12-hour clock label to the calendar form,
// so "02:00 pm" becomes "2:00 PM". Unparseable input is returned as is.
func NormalizeTimeSlot(slot string) string {
	slot = strings.ToUpper(TrimAndNormalize(slot))
	t, err := time.Parse(slotLayout, slot)
	if err != nil {
		return slot
	}
	return t.Format(slotLayout)
}
