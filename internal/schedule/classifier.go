package schedule

import "time"

const (
	// DateLayout is the wire format for booking dates.
	DateLayout = "2006-01-02"

	// AdminCutoffHour is the evening hour after which next-day bookings need
	// a manual admin confirmation instead of auto-confirmation.
	AdminCutoffHour = 18

	// TodayLeadMinutes is the minimum notice for same-day bookings.
	TodayLeadMinutes = 120
)

// RequiresAdminConfirmation reports whether a booking for the given date,
// placed at instant now, must be created in pendiente_confirmacion rather
// than pendiente. Late-evening bookings for the next day risk the admin not
// seeing them in time to prepare, so they wait for an explicit confirmation.
func RequiresAdminConfirmation(now time.Time, date string) bool {
	tomorrow := now.AddDate(0, 0, 1).Format(DateLayout)
	return date == tomorrow && now.Hour() >= AdminCutoffHour
}

// FilterTodayCutoff drops candidate times on the current date that start in
// less than TodayLeadMinutes from now. Dates other than today pass through
// untouched.
func FilterTodayCutoff(now time.Time, date string, times []string) []string {
	if date != now.Format(DateLayout) {
		return times
	}
	cutoff := now.Hour()*60 + now.Minute() + TodayLeadMinutes
	var kept []string
	for _, t := range times {
		if TimeToMinutes(t) >= cutoff {
			kept = append(kept, t)
		}
	}
	return kept
}
