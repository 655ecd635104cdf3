package schedule

// Occupancy describes an existing active booking as seen by the conflict
// detector: its start clock time, raw duration and service type. The rest
// buffer is derived from the service type, never stored.
type Occupancy struct {
	Start           string      `json:"start_time"`
	DurationMinutes int         `json:"duration_minutes"`
	ServiceType     ServiceType `json:"service_type"`
}

// SplitOccupancies partitions active bookings into center bookings and home
// visits. Home visits block the physical center entirely for their range.
func SplitOccupancies(all []Occupancy) (center, home []Occupancy) {
	for _, o := range all {
		if o.ServiceType.IsHomeVisit() {
			home = append(home, o)
		} else {
			center = append(center, o)
		}
	}
	return center, home
}

// IsTimeSlotBlocked decides whether a candidate start time conflicts with the
// day's existing bookings. It is pure and deterministic: same inputs, same
// answer, no side effects.
//
// Exact adjacency is allowed in both directions: a candidate may end exactly
// when an existing booking starts, and may start exactly when an existing
// booking's buffered end (or a home visit's end) passes.
func IsTimeSlotBlocked(candidateStart string, durationMinutes int, centerBookings, homeVisits []Occupancy) bool {
	slotStart := TimeToMinutes(candidateStart)
	slotEnd := slotStart + durationMinutes

	// A home visit takes the practitioner off-site, so it excludes every
	// center booking in [start, end) with zero grace.
	for _, visit := range homeVisits {
		visitStart := TimeToMinutes(visit.Start)
		visitEnd := visitStart + visit.DurationMinutes
		if slotStart == visitEnd {
			continue
		}
		if slotStart < visitEnd && slotEnd > visitStart {
			return true
		}
	}

	for _, booking := range centerBookings {
		bookingStart := TimeToMinutes(booking.Start)
		bookingEnd := bookingStart + booking.DurationMinutes + RestMinutes(booking.ServiceType)
		if slotEnd == bookingStart || slotStart == bookingEnd {
			continue
		}
		if slotStart < bookingEnd && slotEnd > bookingStart {
			return true
		}
	}

	return false
}
