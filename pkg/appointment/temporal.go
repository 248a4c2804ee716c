package appointment

import (
	"fmt"
	"time"

	"github.com/lifelink-health/portal/pkg/common/models"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// ParseSlot validates a (date, time) pair and returns the combined instant.
func ParseSlot(date, timeOfDay string) (time.Time, error) {
	slot, err := time.Parse(DateLayout+" "+TimeLayout, date+" "+timeOfDay)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid appointment slot: %w", err)
	}
	return slot, nil
}

// BucketFor derives the temporal grouping of a slot relative to now: same
// calendar day is current, earlier is past, later is upcoming. Derived at
// read time, never stored.
func BucketFor(date, timeOfDay string, now time.Time) models.TimeBucket {
	slot, err := ParseSlot(date, timeOfDay)
	if err != nil {
		return models.BucketPast
	}

	sy, sm, sd := slot.Date()
	ny, nm, nd := now.Date()
	if sy == ny && sm == nm && sd == nd {
		return models.BucketCurrent
	}
	if slot.Before(now) {
		return models.BucketPast
	}
	return models.BucketUpcoming
}

// HasConflict reports whether any existing appointment occupies the slot.
func HasConflict(existing []models.Appointment, date, timeOfDay string) bool {
	for _, apt := range existing {
		if apt.Date == date && apt.Time == timeOfDay {
			return true
		}
	}
	return false
}
