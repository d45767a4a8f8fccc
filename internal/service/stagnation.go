package service

import "time"

// stagnationThreshold is how long a request may sit without offers before it
// is flagged.
const stagnationThreshold = time.Hour

// IsStagnant flags a request that has sat too long without any offers. The
// flag is purely advisory: it nudges the traveler toward the scheduled-trip
// pool and never changes trip state.
func IsStagnant(createdAt time.Time, offerCount int, now time.Time) bool {
	if offerCount > 0 {
		return false
	}
	return now.Sub(createdAt) > stagnationThreshold
}
