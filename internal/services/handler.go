package services

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/fisiocan/booking-platform/pkg/logging"
)

type catalogSource interface {
	ListActive(ctx context.Context) ([]*Service, error)
}

// Handler exposes the public service catalog.
type Handler struct {
	repo   catalogSource
	logger *logging.Logger
}

// NewHandler creates the catalog handler.
func NewHandler(repo catalogSource, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// ListServices handles GET /api/services.
func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.ListActive(r.Context())
	if err != nil {
		h.logger.Error("list services failed", "error", err)
		http.Error(w, "failed to list services", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []*Service{}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{"services": list, "count": len(list)})
}
