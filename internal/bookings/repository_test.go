package bookings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"

	"github.com/fisiocan/booking-platform/internal/schedule"
)

func newMockRepo(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	t.Cleanup(mock.Close)
	return NewRepositoryWithDB(mock), mock
}

// anyInsertArgs matches the 14 positional arguments of the booking INSERT.
func anyInsertArgs() []any {
	args := make([]any, 14)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func sampleParams() *CreateParams {
	return &CreateParams{
		ID:         uuid.New(),
		ClientID:   uuid.New(),
		DogID:      uuid.New(),
		ServiceID:  uuid.New(),
		Date:       "2026-03-11",
		StartTime:  "11:00",
		Duration:   60,
		PriceCents: 4500,
		State:      StatePendiente,
	}
}

func TestListActiveOccupancies(t *testing.T) {
	repo, mock := newMockRepo(t)

	rows := pgxmock.NewRows([]string{"start", "duration", "service_type"}).
		AddRow("10:00", 30, "hidroterapia").
		AddRow("16:00", 90, "rehabilitacion_domicilio")
	mock.ExpectQuery("SELECT to_char").
		WithArgs("2026-03-11", activeStateStrings()).
		WillReturnRows(rows)

	occ, err := repo.ListActiveOccupancies(context.Background(), "2026-03-11")
	if err != nil {
		t.Fatalf("list occupancies failed: %v", err)
	}
	if len(occ) != 2 {
		t.Fatalf("got %d occupancies, want 2", len(occ))
	}
	if occ[0].ServiceType != schedule.ServiceHidroterapia {
		t.Errorf("service type = %s, want hidroterapia", occ[0].ServiceType)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateAtomic_Success(t *testing.T) {
	repo, mock := newMockRepo(t)

	p := sampleParams()
	rows := pgxmock.NewRows([]string{"created_at", "updated_at"}).
		AddRow(time.Now(), time.Now())
	mock.ExpectQuery("INSERT INTO bookings").
		WithArgs(p.ID, p.ClientID, p.DogID, p.ServiceID, p.SpaceID,
			p.Date, p.StartTime, p.Duration, p.RestMinutes,
			p.PriceCents, "pendiente", false, "", "").
		WillReturnRows(rows)

	b, err := repo.CreateAtomic(context.Background(), p)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if b.EndTime != "12:00" {
		t.Errorf("end time = %s, want 12:00", b.EndTime)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateAtomic_ExclusionViolationIsSlotConflict(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("INSERT INTO bookings").
		WithArgs(anyInsertArgs()...).
		WillReturnError(&pgconn.PgError{Code: "23P01", ConstraintName: "bookings_no_overlap"})

	_, err := repo.CreateAtomic(context.Background(), sampleParams())
	if !errors.Is(err, ErrSlotConflict) {
		t.Fatalf("expected ErrSlotConflict, got %v", err)
	}
}

func TestCreateAtomic_UniqueViolationIsSlotConflict(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("INSERT INTO bookings").
		WithArgs(anyInsertArgs()...).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := repo.CreateAtomic(context.Background(), sampleParams())
	if !errors.Is(err, ErrSlotConflict) {
		t.Fatalf("expected ErrSlotConflict, got %v", err)
	}
}

func TestCreateAtomic_OtherErrorsPassThrough(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("INSERT INTO bookings").
		WithArgs(anyInsertArgs()...).
		WillReturnError(errors.New("connection reset"))

	_, err := repo.CreateAtomic(context.Background(), sampleParams())
	if err == nil || errors.Is(err, ErrSlotConflict) {
		t.Fatalf("expected plain error, got %v", err)
	}
}

func TestUpdateState_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	id := uuid.New()
	mock.ExpectExec("UPDATE bookings").WithArgs(id, "confirmada").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	if err := repo.UpdateState(context.Background(), id, StateConfirmada); !errors.Is(err, ErrBookingNotFound) {
		t.Fatalf("expected ErrBookingNotFound, got %v", err)
	}
}

func TestCancel_AlreadyInactive(t *testing.T) {
	repo, mock := newMockRepo(t)

	id := uuid.New()
	mock.ExpectExec("UPDATE bookings").
		WithArgs(id, "cancelada", 0, activeStateStrings()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	if err := repo.Cancel(context.Background(), id, 0); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestMarkCompletedBefore(t *testing.T) {
	repo, mock := newMockRepo(t)

	cutoff := time.Date(2026, 3, 11, 20, 0, 0, 0, time.UTC)
	mock.ExpectExec("UPDATE bookings").
		WithArgs(cutoff, "completada", []string{"pendiente", "confirmada"}).
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))

	n, err := repo.MarkCompletedBefore(context.Background(), cutoff)
	if err != nil {
		t.Fatalf("mark completed failed: %v", err)
	}
	if n != 3 {
		t.Errorf("completed %d, want 3", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestResolveSpace_HomeVisitHasNoSpace(t *testing.T) {
	repo, _ := newMockRepo(t)

	id, err := repo.ResolveSpace(context.Background(), schedule.ServiceDomicilio)
	if err != nil {
		t.Fatalf("resolve space failed: %v", err)
	}
	if id != nil {
		t.Errorf("space id = %v, want nil", id)
	}
}

func TestResolveSpace_HydroUsesPool(t *testing.T) {
	repo, mock := newMockRepo(t)

	poolID := uuid.New()
	rows := pgxmock.NewRows([]string{"id"}).AddRow(poolID)
	mock.ExpectQuery("SELECT id FROM spaces").WithArgs("piscina").WillReturnRows(rows)

	id, err := repo.ResolveSpace(context.Background(), schedule.ServiceHidroterapia)
	if err != nil {
		t.Fatalf("resolve space failed: %v", err)
	}
	if id == nil || *id != poolID {
		t.Errorf("space id = %v, want %s", id, poolID)
	}
}
