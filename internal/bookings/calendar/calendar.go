// Package calendar holds the fixed sequence of bookable hourly slots for an
// operating day. A slot's position in the sequence is its only numeric identity.
package calendar

var slots = []string{
	"11:00 AM", "12:00 PM", "1:00 PM", "2:00 PM", "3:00 PM", "4:00 PM",
	"5:00 PM", "6:00 PM", "7:00 PM", "8:00 PM", "9:00 PM", "10:00 PM", "11:00 PM",
}

var index = func() map[string]int {
	m := make(map[string]int, len(slots))
	for i, s := range slots {
		m[s] = i
	}
	return m
}()

// Labels returns a copy of the ordered slot labels.
func Labels() []string {
	out := make([]string, len(slots))
	copy(out, slots)
	return out
}

func Len() int {
	return len(slots)
}

// IndexOf returns the position of label, or -1 when the label is unknown.
func IndexOf(label string) int {
	if i, ok := index[label]; ok {
		return i
	}
	return -1
}

func Contains(label string) bool {
	return IndexOf(label) >= 0
}

func Label(i int) (string, bool) {
	if i < 0 || i >= len(slots) {
		return "", false
	}
	return slots[i], true
}

// Run returns the labels of n consecutive slots starting at start. Positions
// past the last slot of the day are dropped.
func Run(start, n int) []string {
	if start < 0 || n <= 0 {
		return nil
	}
	out := make([]string, 0, n)
	for i := start; i < start+n && i < len(slots); i++ {
		out = append(out, slots[i])
	}
	return out
}
