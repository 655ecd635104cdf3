package clinic

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/fisiocan/booking-platform/internal/schedule"
	"github.com/fisiocan/booking-platform/pkg/logging"
)

type dashboardSource interface {
	DayView(ctx context.Context, date string) (*DayDashboard, error)
}

// Handler exposes the admin dashboard endpoint.
type Handler struct {
	repo   dashboardSource
	logger *logging.Logger
	now    func() time.Time
}

// NewHandler creates the dashboard handler.
func NewHandler(repo dashboardSource, logger *logging.Logger, now func() time.Time) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &Handler{repo: repo, logger: logger, now: now}
}

// DayView handles GET /admin/dashboard?date=YYYY-MM-DD. The date
// defaults to today.
func (h *Handler) DayView(w http.ResponseWriter, r *http.Request) {
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date == "" {
		date = h.now().Format(schedule.DateLayout)
	} else if _, err := time.Parse(schedule.DateLayout, date); err != nil {
		http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	dash, err := h.repo.DayView(r.Context(), date)
	if err != nil {
		h.logger.Error("dashboard query failed", "error", err, "date", date)
		http.Error(w, "dashboard query failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(dash)
}
