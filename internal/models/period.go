package models

// Period is the selected stats window. It is view state only; the server
// never persists it, but the last selection survives restarts via the local
// settings store.
type Period int

const (
	// Period7Days shows the last 7 days.
	Period7Days Period = iota
	// Period30Days shows the last 30 days.
	Period30Days
)

// String returns the display name for a period.
func (p Period) String() string {
	switch p {
	case Period7Days:
		return "7 Days"
	case Period30Days:
		return "30 Days"
	default:
		return "Unknown"
	}
}

// Days returns the number of days covered by the period.
func (p Period) Days() int {
	if p == Period30Days {
		return 30
	}
	return 7
}

// Next toggles between the two supported periods.
func (p Period) Next() Period {
	if p == Period7Days {
		return Period30Days
	}
	return Period7Days
}

// PeriodFromDays maps a day count back to a Period, defaulting to 7 days for
// anything unrecognized.
func PeriodFromDays(days int) Period {
	if days == 30 {
		return Period30Days
	}
	return Period7Days
}
