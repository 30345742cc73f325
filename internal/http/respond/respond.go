package respond

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/hongminglow/all-in-store/internal/apiclient"
)

// Envelope wraps the storefront's few JSON replies. RequestID matches the
// X-Request-ID forwarded to the backend for the same screen mount.
type Envelope struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
	Data      any    `json:"data,omitempty"`
}

// JSON writes data inside the envelope.
func JSON(w http.ResponseWriter, r *http.Request, status int, message string, data any) {
	write(w, r, Envelope{Code: status, Message: message, Data: data})
}

// Error writes a data-less envelope carrying a visitor-facing message.
func Error(w http.ResponseWriter, r *http.Request, status int, message string) {
	write(w, r, Envelope{Code: status, Message: message})
}

func write(w http.ResponseWriter, r *http.Request, payload Envelope) {
	payload.RequestID = apiclient.RequestIDFrom(r.Context())

	// Replies describe one visitor's session.
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(payload.Code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.S().Warnw("encode json response", "error", err, "request_id", payload.RequestID)
	}
}
