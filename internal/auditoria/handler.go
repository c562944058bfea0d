package auditoria

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/pielsano/podoclinic/pkg/logging"
)

// Store combines appending and querying; both the SQL service and the
// in-memory recorder satisfy it.
type Store interface {
	Recorder
	Query(ctx context.Context, filter Filter) ([]Entry, error)
}

// Handler exposes the audit trail to the admin audit view.
type Handler struct {
	store  Store
	logger *logging.Logger
}

// NewHandler creates a new audit handler.
func NewHandler(store Store, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, logger: logger}
}

// List handles GET /audit-logs with optional filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := Filter{
		Action: Action(q.Get("action")),
		Entity: Entity(q.Get("entity")),
		Limit:  100,
	}

	if v := q.Get("usuario_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			filter.ActorID = id
		}
	}
	if v := q.Get("entity_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			filter.EntityID = id
		}
	}
	if v := q.Get("fecha_inicio"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.StartTime = t
		}
	}
	if v := q.Get("fecha_fin"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.EndTime = t
		}
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			filter.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			filter.Offset = n
		}
	}

	entries, err := h.store.Query(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to query audit log", "error", err)
		http.Error(w, "failed to query audit log", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []Entry{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(entries)
}
