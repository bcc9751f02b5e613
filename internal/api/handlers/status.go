package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"disasterwatch/internal/core"
	"disasterwatch/internal/types"
)

const statusChecksLimit = 1000

// StatusHandler records and lists client liveness pings.
type StatusHandler struct {
	repo      types.StatusCheckRepository
	validator *core.Validator
	now       func() time.Time
	newID     func() string
}

func NewStatusHandler(repo types.StatusCheckRepository, v *core.Validator) *StatusHandler {
	if v == nil {
		v = core.NewValidator()
	}
	return &StatusHandler{repo: repo, validator: v, now: time.Now, newID: uuid.NewString}
}

func (h *StatusHandler) RegisterRoutes(r chi.Router) {
	r.Post("/status", h.HandleCreate)
	r.Get("/status", h.HandleList)
}

// HandleCreate handles POST /status and returns the stored record.
func (h *StatusHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req types.StatusCheckCreate
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	check := &types.StatusCheck{
		ID:         h.newID(),
		ClientName: req.ClientName,
		Timestamp:  h.now().UTC(),
	}
	if err := h.repo.Create(r.Context(), check); err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, check)
}

// HandleList handles GET /status.
func (h *StatusHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	checks, err := h.repo.List(r.Context(), statusChecksLimit)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	if checks == nil {
		checks = []*types.StatusCheck{}
	}
	core.JSON(w, r, http.StatusOK, checks)
}
