package schedule

import "sort"

// Window is an admin-configured open-for-booking time range on a single day.
type Window struct {
	Start string `json:"start"` // "HH:MM"
	End   string `json:"end"`   // "HH:MM"
}

// MergeConsecutiveWindows collapses windows whose boundaries touch exactly
// (end of one equals start of the next) into single logical windows, so a
// service whose duration straddles an admin-entered boundary is still
// schedulable. Non-contiguous windows remain separate. The input slice is not
// modified.
func MergeConsecutiveWindows(windows []Window) []Window {
	if len(windows) == 0 {
		return nil
	}

	sorted := make([]Window, len(windows))
	copy(sorted, windows)
	sort.Slice(sorted, func(i, j int) bool {
		return TimeToMinutes(sorted[i].Start) < TimeToMinutes(sorted[j].Start)
	})

	merged := []Window{sorted[0]}
	for _, w := range sorted[1:] {
		last := &merged[len(merged)-1]
		if TimeToMinutes(last.End) == TimeToMinutes(w.Start) {
			last.End = w.End
			continue
		}
		merged = append(merged, w)
	}
	return merged
}
