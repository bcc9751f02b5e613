// Package handlers contains the HTTP handlers for the disasterwatch API.
package handlers

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"disasterwatch/internal/core"
	"disasterwatch/internal/types"
	"disasterwatch/internal/weather"
)

// PartialFailuresHeader carries the number of cities left out of the bulk view.
const PartialFailuresHeader = "X-Partial-Failures"

// DemoDataHeader is set on bulk responses served from the demo dataset.
const DemoDataHeader = "X-Demo-Data"

// WeatherService is the subset of weather.Service used here.
type WeatherService interface {
	ByCity(ctx context.Context, city string) (*types.WeatherSnapshot, error)
	ByCoordinates(ctx context.Context, lat, lon float64) (*types.WeatherSnapshot, error)
	Multiple(ctx context.Context) (*weather.BulkResult, error)
}

type WeatherHandler struct {
	service WeatherService
	logger  *slog.Logger
}

func NewWeatherHandler(svc WeatherService, logger *slog.Logger) *WeatherHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WeatherHandler{service: svc, logger: logger}
}

// RegisterRoutes mounts /weather. The static segments are registered first
// for readability; chi prefers them over {city} regardless.
func (h *WeatherHandler) RegisterRoutes(r chi.Router) {
	r.Route("/weather", func(r chi.Router) {
		r.Get("/multiple", h.HandleMultiple)
		r.Get("/coordinates/{lat}/{lon}", h.HandleByCoordinates)
		r.Get("/{city}", h.HandleByCity)
	})
}

// HandleByCity handles GET /weather/{city}.
func (h *WeatherHandler) HandleByCity(w http.ResponseWriter, r *http.Request) {
	city := chi.URLParam(r, "city")
	if unescaped, err := url.PathUnescape(city); err == nil {
		city = unescaped
	}
	city = strings.TrimSpace(city)
	if city == "" {
		core.Error(w, r, types.NewAppError(types.ErrCodeValidationInvalidCity, "city must not be empty", nil))
		return
	}

	snap, err := h.service.ByCity(r.Context(), city)
	if err != nil {
		h.logFailure(r, "city weather request failed", err, "city", city)
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, snap)
}

// HandleByCoordinates handles GET /weather/coordinates/{lat}/{lon}.
func (h *WeatherHandler) HandleByCoordinates(w http.ResponseWriter, r *http.Request) {
	lat, ok := parseCoordinate(chi.URLParam(r, "lat"))
	if !ok {
		core.Error(w, r, types.NewAppError(types.ErrCodeValidationInvalidLat, "lat must be a valid number", nil))
		return
	}
	lon, ok := parseCoordinate(chi.URLParam(r, "lon"))
	if !ok {
		core.Error(w, r, types.NewAppError(types.ErrCodeValidationInvalidLon, "lon must be a valid number", nil))
		return
	}

	snap, err := h.service.ByCoordinates(r.Context(), lat, lon)
	if err != nil {
		h.logFailure(r, "coordinates weather request failed", err, "lat", lat, "lon", lon)
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, snap)
}

// HandleMultiple handles GET /weather/multiple. The body is always the list
// of rows that succeeded.
func (h *WeatherHandler) HandleMultiple(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Multiple(r.Context())
	if err != nil {
		h.logFailure(r, "bulk weather request failed", err)
		core.Error(w, r, err)
		return
	}

	if result.Skipped > 0 {
		w.Header().Set(PartialFailuresHeader, strconv.Itoa(result.Skipped))
		h.logger.WarnContext(r.Context(), "bulk weather view is partial",
			"skipped", result.Skipped,
			"returned", len(result.Cities),
			"request_id", types.GetRequestID(r.Context()),
		)
	}
	if result.Demo {
		w.Header().Set(DemoDataHeader, "true")
	}
	core.JSON(w, r, http.StatusOK, result.Cities)
}

// parseCoordinate accepts any finite decimal.
func parseCoordinate(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func (h *WeatherHandler) logFailure(r *http.Request, msg string, err error, args ...any) {
	args = append(args, "error", err, "request_id", types.GetRequestID(r.Context()))
	if status := httpStatusOf(err); status >= 500 {
		h.logger.ErrorContext(r.Context(), msg, args...)
		return
	}
	h.logger.WarnContext(r.Context(), msg, args...)
}
