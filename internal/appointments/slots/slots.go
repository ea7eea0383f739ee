// Package slots defines the health-center booking grid: fixed half-hour
// boundaries shared by every service type.
package slots

import "fmt"

// MaxPerSlot is the capacity of one (date, service, time) slot. Only
// non-cancelled appointments count against it.
const MaxPerSlot = 3

// Catalogue returns every bookable time of day in ascending order,
// 09:00:00 through 16:30:00 in half-hour steps.
func Catalogue() []string {
	out := make([]string, 0, 16)
	for hour := 9; hour <= 16; hour++ {
		out = append(out, fmt.Sprintf("%02d:00:00", hour), fmt.Sprintf("%02d:30:00", hour))
	}
	return out
}

// IsValid reports whether t ("HH:MM:SS") is a catalogue boundary.
func IsValid(t string) bool {
	for _, s := range Catalogue() {
		if s == t {
			return true
		}
	}
	return false
}
