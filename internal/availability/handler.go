package availability

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fisiocan/booking-platform/internal/events"
	"github.com/fisiocan/booking-platform/pkg/logging"
)

// Handler exposes the admin window CRUD endpoints.
type Handler struct {
	repo        *Repository
	cache       *Cache
	broadcaster events.Broadcaster
	logger      *logging.Logger
}

// NewHandler creates the admin availability handler.
func NewHandler(repo *Repository, cache *Cache, broadcaster events.Broadcaster, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if broadcaster == nil {
		broadcaster = events.NopBroadcaster{}
	}
	return &Handler{repo: repo, cache: cache, broadcaster: broadcaster, logger: logger}
}

// ListWindows handles GET /admin/slots?date=YYYY-MM-DD.
func (h *Handler) ListWindows(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		http.Error(w, "missing date", http.StatusBadRequest)
		return
	}
	windows, err := h.repo.ListForDate(r.Context(), date)
	if err != nil {
		h.logger.Error("failed to list windows", "error", err, "date", date)
		http.Error(w, "failed to list windows", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"windows": windows, "count": len(windows)})
}

// CreateWindow handles POST /admin/slots.
func (h *Handler) CreateWindow(w http.ResponseWriter, r *http.Request) {
	var req UpsertWindowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	window, err := h.repo.Create(r.Context(), &req)
	if err != nil {
		h.respondWriteError(w, err, req.Date)
		return
	}
	h.logger.Info("window created", "id", window.ID, "date", window.Date, "start", window.StartTime, "end", window.EndTime)
	h.afterWrite(r, window.Date)
	writeJSON(w, http.StatusCreated, window)
}

// UpdateWindow handles PUT /admin/slots/{windowID}.
func (h *Handler) UpdateWindow(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "windowID"))
	if err != nil {
		http.Error(w, "invalid window id", http.StatusBadRequest)
		return
	}
	var req UpsertWindowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.repo.Update(r.Context(), id, &req); err != nil {
		h.respondWriteError(w, err, req.Date)
		return
	}
	h.logger.Info("window updated", "id", id, "date", req.Date)
	h.afterWrite(r, req.Date)
	w.WriteHeader(http.StatusNoContent)
}

// DeleteWindow handles DELETE /admin/slots/{windowID}. Soft delete only.
func (h *Handler) DeleteWindow(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "windowID"))
	if err != nil {
		http.Error(w, "invalid window id", http.StatusBadRequest)
		return
	}
	date := r.URL.Query().Get("date")
	if err := h.repo.Deactivate(r.Context(), id); err != nil {
		h.respondWriteError(w, err, date)
		return
	}
	h.logger.Info("window deactivated", "id", id)
	if date != "" {
		h.afterWrite(r, date)
	} else {
		h.cache.InvalidateAll()
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) afterWrite(r *http.Request, date string) {
	if h.cache != nil {
		h.cache.InvalidateDate(date)
	}
	if err := h.broadcaster.SlotsChanged(r.Context(), date); err != nil {
		h.logger.Error("slot-change broadcast failed", "error", err, "date", date)
	}
}

func (h *Handler) respondWriteError(w http.ResponseWriter, err error, date string) {
	switch {
	case errors.Is(err, ErrInvalidRange), errors.Is(err, ErrWindowTooShort),
		errors.Is(err, ErrWindowOverlap), errors.Is(err, ErrInvalidDate):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, ErrWindowNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		h.logger.Error("window write failed", "error", err, "date", date)
		http.Error(w, "window write failed", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
