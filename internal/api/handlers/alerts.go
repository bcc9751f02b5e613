package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"disasterwatch/internal/core"
	"disasterwatch/internal/types"
)

// activeAlertsLimit caps GET /alerts.
const activeAlertsLimit = 100

type AlertsHandler struct {
	repo types.AlertRepository
}

func NewAlertsHandler(repo types.AlertRepository) *AlertsHandler {
	return &AlertsHandler{repo: repo}
}

func (h *AlertsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/alerts", h.HandleListActive)
}

// HandleListActive returns up to 100 active alerts, newest first.
func (h *AlertsHandler) HandleListActive(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.repo.ListActive(r.Context(), activeAlertsLimit)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	if alerts == nil {
		alerts = []*types.Alert{}
	}
	core.JSON(w, r, http.StatusOK, alerts)
}
