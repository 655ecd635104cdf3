package bookings

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fisiocan/booking-platform/internal/dogs"
	"github.com/fisiocan/booking-platform/internal/identity"
	"github.com/fisiocan/booking-platform/internal/schedule"
	"github.com/fisiocan/booking-platform/internal/services"
	"github.com/fisiocan/booking-platform/pkg/logging"
)

// DefaultQueryTimeout bounds availability reads so a slow database
// degrades into an error response instead of a hung request.
const DefaultQueryTimeout = 8 * time.Second

type serviceCatalog interface {
	GetByID(ctx context.Context, id uuid.UUID) (*services.Service, error)
}

type dogDirectory interface {
	GetForOwner(ctx context.Context, ownerID, dogID uuid.UUID) (*dogs.Dog, error)
}

type bookingLister interface {
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]*Booking, error)
	ListPendingConfirmation(ctx context.Context) ([]*Booking, error)
}

// Handler exposes the availability and booking endpoints.
type Handler struct {
	finalizer *Finalizer
	lifecycle *Lifecycle
	store     bookingLister
	catalog   serviceCatalog
	dogs      dogDirectory
	slots     *schedule.Generator
	logger    *logging.Logger
	timeout   time.Duration
}

// NewHandler creates the booking handler.
func NewHandler(finalizer *Finalizer, lifecycle *Lifecycle, store bookingLister, catalog serviceCatalog, dogDir dogDirectory, slots *schedule.Generator, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		finalizer: finalizer,
		lifecycle: lifecycle,
		store:     store,
		catalog:   catalog,
		dogs:      dogDir,
		slots:     slots,
		logger:    logger,
		timeout:   DefaultQueryTimeout,
	}
}

// WithQueryTimeout overrides the availability read timeout.
func (h *Handler) WithQueryTimeout(d time.Duration) *Handler {
	if d > 0 {
		h.timeout = d
	}
	return h
}

// GetAvailability handles GET /api/availability?service_id=&date=.
func (h *Handler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	serviceID, err := uuid.Parse(r.URL.Query().Get("service_id"))
	if err != nil {
		http.Error(w, "invalid service_id", http.StatusBadRequest)
		return
	}
	date := r.URL.Query().Get("date")
	if _, err := time.Parse(schedule.DateLayout, date); err != nil {
		http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	svc, err := h.catalog.GetByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, services.ErrServiceNotFound) {
			http.Error(w, "service not found", http.StatusNotFound)
			return
		}
		h.logger.Error("service lookup failed", "error", err, "service_id", serviceID)
		http.Error(w, "availability lookup failed", http.StatusInternalServerError)
		return
	}

	audience := schedule.AudienceClient
	if identity.IsAdmin(ctx) {
		audience = schedule.AudienceAdmin
	}
	slots, err := h.slots.GenerateFilteredTimeSlots(ctx, svc.Spec(), date, nil, nil, audience)
	if err != nil {
		h.logger.Error("slot generation failed", "error", err, "date", date, "service_id", serviceID)
		http.Error(w, "availability lookup failed", http.StatusInternalServerError)
		return
	}
	if slots == nil {
		slots = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"date":       date,
		"service_id": serviceID,
		"slots":      slots,
	})
}

// CreateBooking handles POST /api/bookings.
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	clientID, ok := identity.ClientIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing client identity", http.StatusUnauthorized)
		return
	}
	var req CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	svc, err := h.catalog.GetByID(r.Context(), req.ServiceID)
	if err != nil {
		if errors.Is(err, services.ErrServiceNotFound) {
			http.Error(w, "service not found", http.StatusNotFound)
			return
		}
		h.logger.Error("service lookup failed", "error", err, "service_id", req.ServiceID)
		http.Error(w, "booking failed", http.StatusInternalServerError)
		return
	}
	if _, err := h.dogs.GetForOwner(r.Context(), clientID, req.DogID); err != nil {
		if errors.Is(err, dogs.ErrDogNotFound) || errors.Is(err, dogs.ErrNotOwner) {
			http.Error(w, "dog not found", http.StatusNotFound)
			return
		}
		h.logger.Error("dog lookup failed", "error", err, "dog_id", req.DogID)
		http.Error(w, "booking failed", http.StatusInternalServerError)
		return
	}

	res := h.finalizer.Finalize(r.Context(), clientID, &req, svc)
	switch res.Outcome {
	case OutcomeCommitted:
		h.logger.Info("booking committed",
			"booking_id", res.Booking.ID, "date", res.Booking.Date,
			"start", res.Booking.StartTime, "state", res.Booking.State)
		writeJSON(w, http.StatusCreated, res.Booking)
	case OutcomeConflict:
		writeJSON(w, http.StatusConflict, map[string]string{
			"error":   SlotConflictCode,
			"message": "la hora seleccionada ya no está disponible",
		})
	default:
		if errors.Is(res.Err, ErrValidation) {
			http.Error(w, res.Err.Error(), http.StatusUnprocessableEntity)
			return
		}
		h.logger.Error("booking finalization failed", "error", res.Err, "date", req.Date, "start", req.StartTime)
		http.Error(w, "booking failed", http.StatusInternalServerError)
	}
}

// ListMyBookings handles GET /api/bookings.
func (h *Handler) ListMyBookings(w http.ResponseWriter, r *http.Request) {
	clientID, ok := identity.ClientIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing client identity", http.StatusUnauthorized)
		return
	}
	list, err := h.store.ListByClient(r.Context(), clientID)
	if err != nil {
		h.logger.Error("list bookings failed", "error", err, "client_id", clientID)
		http.Error(w, "failed to list bookings", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": list, "count": len(list)})
}

// CancelBooking handles POST /api/bookings/{bookingID}/cancel. Admins
// can cancel any booking, clients only their own.
func (h *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	bookingID, err := uuid.Parse(chi.URLParam(r, "bookingID"))
	if err != nil {
		http.Error(w, "invalid booking id", http.StatusBadRequest)
		return
	}
	isAdmin := identity.IsAdmin(r.Context())
	actorID, ok := identity.ClientIDFromContext(r.Context())
	if !ok && !isAdmin {
		http.Error(w, "missing client identity", http.StatusUnauthorized)
		return
	}

	b, err := h.lifecycle.Cancel(r.Context(), actorID, isAdmin, bookingID)
	if err != nil {
		switch {
		case errors.Is(err, ErrBookingNotFound):
			http.Error(w, "booking not found", http.StatusNotFound)
		case errors.Is(err, ErrInvalidTransition):
			http.Error(w, "booking is no longer active", http.StatusConflict)
		default:
			h.logger.Error("cancel failed", "error", err, "booking_id", bookingID)
			http.Error(w, "cancel failed", http.StatusInternalServerError)
		}
		return
	}
	h.logger.Info("booking cancelled", "booking_id", b.ID, "surcharge_cents", b.SurchargeCents)
	writeJSON(w, http.StatusOK, b)
}

// ListPendingConfirmation handles GET /admin/bookings/pending.
func (h *Handler) ListPendingConfirmation(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.ListPendingConfirmation(r.Context())
	if err != nil {
		h.logger.Error("list pending confirmations failed", "error", err)
		http.Error(w, "failed to list bookings", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": list, "count": len(list)})
}

// ConfirmBooking handles POST /admin/bookings/{bookingID}/confirm.
func (h *Handler) ConfirmBooking(w http.ResponseWriter, r *http.Request) {
	bookingID, err := uuid.Parse(chi.URLParam(r, "bookingID"))
	if err != nil {
		http.Error(w, "invalid booking id", http.StatusBadRequest)
		return
	}
	b, err := h.lifecycle.Confirm(r.Context(), bookingID)
	if err != nil {
		switch {
		case errors.Is(err, ErrBookingNotFound):
			http.Error(w, "booking not found", http.StatusNotFound)
		case errors.Is(err, ErrInvalidTransition):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			h.logger.Error("confirm failed", "error", err, "booking_id", bookingID)
			http.Error(w, "confirm failed", http.StatusInternalServerError)
		}
		return
	}
	h.logger.Info("booking confirmed", "booking_id", b.ID)
	writeJSON(w, http.StatusOK, b)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
