package clinic

import (
	"context"
	"testing"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func newMockDashboard(t *testing.T) (*DashboardRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	t.Cleanup(mock.Close)
	return NewDashboardRepositoryWithDB(mock), mock
}

func dashboardColumns() []string {
	return []string{"id", "start", "duration", "service_name", "service_type",
		"dog_name", "owner_name", "owner_phone", "state", "is_home_visit", "home_address"}
}

func TestDayViewAggregatesStates(t *testing.T) {
	repo, mock := newMockDashboard(t)

	rows := pgxmock.NewRows(dashboardColumns()).
		AddRow(uuid.New(), "09:00", 60, "Rehabilitación", "rehabilitacion",
			"Luna", "Ana García", "600111222", "pendiente", false, "").
		AddRow(uuid.New(), "10:00", 30, "Hidroterapia", "hidroterapia",
			"Rocky", "Luis Pérez", "", "confirmada", false, "").
		AddRow(uuid.New(), "16:00", 90, "Rehabilitación a domicilio", "rehabilitacion_domicilio",
			"Nala", "Marta Ruiz", "", "cancelada", false, "Calle Mayor 12")
	mock.ExpectQuery("SELECT b.id").WithArgs("2026-03-11").WillReturnRows(rows)

	dash, err := repo.DayView(context.Background(), "2026-03-11")
	if err != nil {
		t.Fatalf("day view failed: %v", err)
	}
	if len(dash.Entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(dash.Entries))
	}
	if dash.Entries[0].EndTime != "10:00" {
		t.Errorf("end time = %s, want 10:00", dash.Entries[0].EndTime)
	}
	if dash.CountByState["pendiente"] != 1 || dash.CountByState["cancelada"] != 1 {
		t.Errorf("count by state = %v", dash.CountByState)
	}
	// Cancelled bookings do not count toward booked minutes.
	if dash.BookedMin != 90 {
		t.Errorf("booked minutes = %d, want 90", dash.BookedMin)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDayViewRejectsBadDate(t *testing.T) {
	repo, _ := newMockDashboard(t)

	if _, err := repo.DayView(context.Background(), "11/03/2026"); err == nil {
		t.Fatal("expected error for malformed date")
	}
}

func TestDayViewEmptyDay(t *testing.T) {
	repo, mock := newMockDashboard(t)

	mock.ExpectQuery("SELECT b.id").WithArgs("2026-03-11").
		WillReturnRows(pgxmock.NewRows(dashboardColumns()))

	dash, err := repo.DayView(context.Background(), "2026-03-11")
	if err != nil {
		t.Fatalf("day view failed: %v", err)
	}
	if len(dash.Entries) != 0 || dash.BookedMin != 0 {
		t.Errorf("unexpected dashboard: %+v", dash)
	}
}
