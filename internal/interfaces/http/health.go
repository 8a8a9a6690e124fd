package http

import "net/http"

// HealthHandler reports liveness. When a language model is configured the
// state of its circuit breaker is included.
type HealthHandler struct {
	modelState func() string
}

// NewHealthHandler creates a health handler. modelState may be nil.
func NewHealthHandler(modelState func() string) *HealthHandler {
	return &HealthHandler{modelState: modelState}
}

type HealthResponse struct {
	Status string `json:"status"`
	Model  string `json:"model,omitempty"`
}

// HandleHealth returns a simple health check response.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok"}
	if h.modelState != nil {
		resp.Model = h.modelState()
	}
	writeJSON(w, http.StatusOK, resp)
}
