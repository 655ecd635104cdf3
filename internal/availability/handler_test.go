package availability

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"

	"github.com/fisiocan/booking-platform/internal/schedule"
)

type recordingBroadcaster struct {
	dates []string
}

func (b *recordingBroadcaster) SlotsChanged(_ context.Context, date string) error {
	b.dates = append(b.dates, date)
	return nil
}

func newTestHandler(t *testing.T) (*Handler, pgxmock.PgxPoolIface, *recordingBroadcaster, *countingSource) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	t.Cleanup(mock.Close)

	repo := NewRepositoryWithDB(mock)
	source := &countingSource{}
	cache := NewCache(source, time.Minute, nil)
	broadcaster := &recordingBroadcaster{}
	return NewHandler(repo, cache, broadcaster, nil), mock, broadcaster, source
}

func TestCreateWindow_Success(t *testing.T) {
	handler, mock, broadcaster, _ := newTestHandler(t)

	mock.ExpectQuery("SELECT id, to_char").WithArgs("2026-03-10").
		WillReturnRows(pgxmock.NewRows([]string{"id", "date", "start", "end", "admin_only", "active", "created_at", "updated_at"}))
	mock.ExpectQuery("INSERT INTO available_time_slots").
		WithArgs(pgxmock.AnyArg(), "2026-03-10", "09:00", "12:00", false).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(time.Now(), time.Now()))

	body, _ := json.Marshal(UpsertWindowRequest{Date: "2026-03-10", StartTime: "09:00", EndTime: "12:00"})
	req := httptest.NewRequest(http.MethodPost, "/admin/slots", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.CreateWindow(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
	}
	if len(broadcaster.dates) != 1 || broadcaster.dates[0] != "2026-03-10" {
		t.Fatalf("window writes must broadcast the date, got %v", broadcaster.dates)
	}
}

func TestCreateWindow_ValidationError(t *testing.T) {
	handler, _, broadcaster, _ := newTestHandler(t)

	body, _ := json.Marshal(UpsertWindowRequest{Date: "2026-03-10", StartTime: "12:00", EndTime: "09:00"})
	req := httptest.NewRequest(http.MethodPost, "/admin/slots", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.CreateWindow(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected %d, got %d", http.StatusUnprocessableEntity, w.Code)
	}
	if len(broadcaster.dates) != 0 {
		t.Fatal("rejected writes must not broadcast")
	}
}

func TestCreateWindow_InvalidatesCache(t *testing.T) {
	handler, mock, _, source := newTestHandler(t)

	// Warm the cache for the date.
	ctx := context.Background()
	_, _ = handler.cache.ListWindows(ctx, "2026-03-10", schedule.AudienceClient)
	if source.calls != 1 {
		t.Fatalf("expected warm read, got %d", source.calls)
	}

	mock.ExpectQuery("SELECT id, to_char").WithArgs("2026-03-10").
		WillReturnRows(pgxmock.NewRows([]string{"id", "date", "start", "end", "admin_only", "active", "created_at", "updated_at"}))
	mock.ExpectQuery("INSERT INTO available_time_slots").
		WithArgs(pgxmock.AnyArg(), "2026-03-10", "09:00", "12:00", true).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(time.Now(), time.Now()))

	body, _ := json.Marshal(UpsertWindowRequest{Date: "2026-03-10", StartTime: "09:00", EndTime: "12:00", AdminOnly: true})
	w := httptest.NewRecorder()
	handler.CreateWindow(w, httptest.NewRequest(http.MethodPost, "/admin/slots", bytes.NewReader(body)))
	if w.Code != http.StatusCreated {
		t.Fatalf("create failed: %d %s", w.Code, w.Body.String())
	}

	_, _ = handler.cache.ListWindows(ctx, "2026-03-10", schedule.AudienceClient)
	if source.calls != 2 {
		t.Fatalf("cache must be invalidated by the write, got %d calls", source.calls)
	}
}

func TestDeleteWindow_InvalidID(t *testing.T) {
	handler, _, _, _ := newTestHandler(t)

	router := chi.NewRouter()
	router.Delete("/admin/slots/{windowID}", handler.DeleteWindow)

	req := httptest.NewRequest(http.MethodDelete, "/admin/slots/not-a-uuid", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestListWindows_MissingDate(t *testing.T) {
	handler, _, _, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/admin/slots", nil)
	w := httptest.NewRecorder()
	handler.ListWindows(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected %d, got %d", http.StatusBadRequest, w.Code)
	}
}
