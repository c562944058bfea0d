package dashboard

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/pielsano/podoclinic/pkg/logging"
)

// Handler serves GET /dashboard/stats.
type Handler struct {
	svc    *Service
	logger *logging.Logger
}

func NewHandler(svc *Service, logger *logging.Logger) *Handler {
	if svc == nil {
		panic("dashboard: service required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context(), time.Now())
	if err != nil {
		h.logger.Error("failed to compute dashboard stats", "error", err)
		http.Error(w, "failed to compute dashboard stats", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(stats)
}
