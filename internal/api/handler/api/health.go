// internal/api/handler/api/health.go
package api

import (
	"net/http"

	"github.com/tradercopilot/swingdash/internal/api/response"
	"github.com/tradercopilot/swingdash/internal/app"
)

// HealthHandler reports server liveness.
type HealthHandler struct {
	app *app.App
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(a *app.App) *HealthHandler {
	return &HealthHandler{app: a}
}

// Get returns the server status and which optional collaborators are on.
func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"backend":  h.app.Config().Backend.BaseURL,
		"jobs":     h.app.Jobs().Len(),
		"archive":  h.app.Archive() != nil,
		"telegram": h.app.Telegram().Enabled(),
	})
}
