// Package api provides the JSON endpoints of the onboarding server.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/ashureev/ai-onboarding/internal/domain"
	"github.com/go-chi/chi/v5"
)

const healthCheckTimeout = 5 * time.Second

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// Pinger reports database reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Catalog lists onboarding templates.
type Catalog interface {
	List(ctx context.Context) ([]domain.Template, error)
}

// Handler serves the health and template endpoints.
type Handler struct {
	db      Pinger
	catalog Catalog
}

// NewHandler creates a new Handler.
func NewHandler(db Pinger, catalog Catalog) *Handler {
	return &Handler{db: db, catalog: catalog}
}

// RegisterHealth registers the health check route.
func (h *Handler) RegisterHealth(r chi.Router) {
	r.Get("/health", h.Health)
}

// RegisterRoutes registers the /api routes. OPTIONS is routed so CORS
// middleware on the enclosing group sees preflight requests.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/api/templates", h.Templates)
	r.Options("/api/templates", preflight)
}

func preflight(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// Health returns the health status of the server and its database.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	status := map[string]interface{}{
		"status": "healthy",
		"checks": map[string]string{"api": "ok"},
	}
	statusCode := http.StatusOK

	if err := h.db.Ping(ctx); err != nil {
		slog.Error("Health check failed", "error", err)
		status["status"] = "degraded"
		status["checks"].(map[string]string)["database"] = "unreachable"
		statusCode = http.StatusServiceUnavailable
	} else {
		status["checks"].(map[string]string)["database"] = "ok"
	}

	JSON(w, statusCode, status)
}

// Templates returns the sanitized template catalog.
func (h *Handler) Templates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.catalog.List(r.Context())
	if err != nil {
		slog.Warn("Template catalog unavailable", "error", err)
		Error(w, http.StatusBadGateway, "templates unavailable")
		return
	}
	if templates == nil {
		templates = []domain.Template{}
	}
	JSON(w, http.StatusOK, domain.TemplateManifests{Templates: templates})
}
