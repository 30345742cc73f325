package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hongminglow/all-in-store/internal/http/respond"
)

// HealthHandler returns uptime and basic status.
type HealthHandler struct {
	startedAt time.Time
}

// NewHealthHandler creates a health endpoint handler.
func NewHealthHandler(startedAt time.Time) *HealthHandler {
	return &HealthHandler{startedAt: startedAt}
}

// Register wires the handler into the router.
func (h *HealthHandler) Register(r chi.Router) {
	r.Get("/health", h.handle)
}

func (h *HealthHandler) handle(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, r, http.StatusOK, "ok", map[string]string{
		"status": "ok",
		"uptime": time.Since(h.startedAt).Truncate(time.Second).String(),
	})
}

type sessionSnapshot struct {
	Auth         any  `json:"auth"`
	HasToken     bool `json:"hasToken"`
	PackSelected bool `json:"packSelected"`
}

// SessionSnapshot reports the visitor's auth state as JSON. The token itself
// is never included.
func SessionSnapshot(w http.ResponseWriter, r *http.Request) {
	snap := sessionSnapshot{Auth: storeFrom(r).State()}
	if session := sessionFrom(r); session != nil {
		snap.HasToken = session.AuthToken() != ""
		_, snap.PackSelected = session.SelectedPack()
	}
	respond.JSON(w, r, http.StatusOK, "ok", snap)
}
