package dogs

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/fisiocan/booking-platform/internal/identity"
	"github.com/fisiocan/booking-platform/pkg/logging"
)

type dogLister interface {
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Dog, error)
}

// Handler exposes the client's dog records.
type Handler struct {
	repo   dogLister
	logger *logging.Logger
}

// NewHandler creates the dogs handler.
func NewHandler(repo dogLister, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// ListMyDogs handles GET /api/dogs.
func (h *Handler) ListMyDogs(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := identity.ClientIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing client identity", http.StatusUnauthorized)
		return
	}
	list, err := h.repo.ListByOwner(r.Context(), ownerID)
	if err != nil {
		h.logger.Error("list dogs failed", "error", err, "owner_id", ownerID)
		http.Error(w, "failed to list dogs", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []*Dog{}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{"dogs": list, "count": len(list)})
}
