package route

import "time"

const deliveryStartHour = 8

var pacificTZ = mustLoadPacific()

func mustLoadPacific() *time.Location {
	loc, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		return time.UTC
	}
	return loc
}

// NextBusinessDayStart returns the next weekday at 08:00 Pacific, in UTC.
// Deliveries never start same-day or on a weekend.
func NextBusinessDayStart(reference time.Time) time.Time {
	local := reference.In(pacificTZ)
	next := local.AddDate(0, 0, 1)
	for next.Weekday() == time.Saturday || next.Weekday() == time.Sunday {
		next = next.AddDate(0, 0, 1)
	}

	start := time.Date(next.Year(), next.Month(), next.Day(), deliveryStartHour, 0, 0, 0, pacificTZ)
	return start.UTC()
}
