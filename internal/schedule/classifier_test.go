package schedule

import (
	"testing"
	"time"
)

func at(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02 15:04", value)
	if err != nil {
		t.Fatalf("bad test time %q: %v", value, err)
	}
	return parsed
}

func TestRequiresAdminConfirmation(t *testing.T) {
	cases := []struct {
		name string
		now  string
		date string
		want bool
	}{
		{"evening booking for tomorrow", "2026-03-10 19:30", "2026-03-11", true},
		{"exactly at cutoff hour", "2026-03-10 18:00", "2026-03-11", true},
		{"before cutoff hour", "2026-03-10 17:59", "2026-03-11", false},
		{"evening booking for day after tomorrow", "2026-03-10 21:00", "2026-03-12", false},
		{"evening booking for today", "2026-03-10 21:00", "2026-03-10", false},
		{"month boundary", "2026-03-31 20:00", "2026-04-01", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := RequiresAdminConfirmation(at(t, tc.now), tc.date); got != tc.want {
				t.Errorf("RequiresAdminConfirmation(%s, %s) = %v, want %v", tc.now, tc.date, got, tc.want)
			}
		})
	}
}

func TestFilterTodayCutoff_Today(t *testing.T) {
	now := at(t, "2026-03-10 09:00")
	times := []string{"09:30", "10:45", "11:00", "11:15", "15:00"}
	got := FilterTodayCutoff(now, "2026-03-10", times)
	want := []string{"11:00", "11:15", "15:00"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestFilterTodayCutoff_OtherDate(t *testing.T) {
	now := at(t, "2026-03-10 09:00")
	times := []string{"09:00", "09:15"}
	got := FilterTodayCutoff(now, "2026-03-11", times)
	if len(got) != 2 {
		t.Fatalf("future dates must pass through untouched, got %v", got)
	}
}

func TestFilterTodayCutoff_AllDropped(t *testing.T) {
	now := at(t, "2026-03-10 16:30")
	got := FilterTodayCutoff(now, "2026-03-10", []string{"17:00", "18:00"})
	if len(got) != 0 {
		t.Fatalf("expected every slot inside the lead time to be dropped, got %v", got)
	}
}
