package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"disasterwatch/internal/core"
	"disasterwatch/internal/types"
	"disasterwatch/internal/weather"
)

type mockWeatherService struct {
	mock.Mock
}

func (m *mockWeatherService) ByCity(ctx context.Context, city string) (*types.WeatherSnapshot, error) {
	args := m.Called(ctx, city)
	s, _ := args.Get(0).(*types.WeatherSnapshot)
	return s, args.Error(1)
}

func (m *mockWeatherService) ByCoordinates(ctx context.Context, lat, lon float64) (*types.WeatherSnapshot, error) {
	args := m.Called(ctx, lat, lon)
	s, _ := args.Get(0).(*types.WeatherSnapshot)
	return s, args.Error(1)
}

func (m *mockWeatherService) Multiple(ctx context.Context) (*weather.BulkResult, error) {
	args := m.Called(ctx)
	res, _ := args.Get(0).(*weather.BulkResult)
	return res, args.Error(1)
}

func highRiskDelhi() *types.WeatherSnapshot {
	return &types.WeatherSnapshot{
		ID: "snap-1", City: "Delhi", Country: "IN", Lat: 28.6139, Lon: 77.209,
		Temperature: 46, Humidity: 25, Pressure: 1025, WindSpeed: 8, WindDirection: 90,
		Description: "clear sky", Timestamp: time.Date(2026, 6, 1, 9, 30, 0, 0, time.UTC),
		RiskLevel: types.RiskLevelHigh, RiskScore: 0.8, DisasterType: "Extreme Heatwave, Drought Risk",
	}
}

func TestHandleByCity_Success(t *testing.T) {
	svc := new(mockWeatherService)
	svc.On("ByCity", mock.Anything, "Delhi").Return(highRiskDelhi(), nil)
	h := NewWeatherHandler(svc, quietLogger())

	rec := serve(t, h.RegisterRoutes, http.MethodGet, "/api/weather/Delhi", "")

	assertStatus(t, rec, http.StatusOK)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "HIGH", body["risk_level"])
	assert.Equal(t, 0.8, body["risk_score"])
	assert.Equal(t, "Extreme Heatwave, Drought Risk", body["disaster_type"])
	assert.Equal(t, "2026-06-01T09:30:00Z", body["timestamp"])
	assert.NotContains(t, body, "data", "success bodies are not enveloped")
	svc.AssertExpectations(t)
}

func TestHandleByCity_DecodesSpaces(t *testing.T) {
	svc := new(mockWeatherService)
	svc.On("ByCity", mock.Anything, "New York").Return(&types.WeatherSnapshot{City: "New York"}, nil)
	h := NewWeatherHandler(svc, quietLogger())

	rec := serve(t, h.RegisterRoutes, http.MethodGet, "/api/weather/New%20York", "")

	assertStatus(t, rec, http.StatusOK)
	svc.AssertExpectations(t)
}

func TestHandleByCity_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   types.ErrorCode
	}{
		{"missing key", types.NewConfigurationError("Weather API key not configured"), http.StatusInternalServerError, types.ErrCodeConfigWeatherAPIKeyMissing},
		{"provider failure", types.NewProviderError(errors.New("upstream returned 404: city not found")), http.StatusBadRequest, types.ErrCodeProviderWeather},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockWeatherService)
			svc.On("ByCity", mock.Anything, "Atlantis").Return(nil, tt.err)
			h := NewWeatherHandler(svc, quietLogger())

			rec := serve(t, h.RegisterRoutes, http.MethodGet, "/api/weather/Atlantis", "")

			assertStatus(t, rec, tt.wantStatus)
			detail := decodeEnvelope(t, rec)
			assert.Equal(t, string(tt.wantCode), detail.Code)
			assert.NotEmpty(t, detail.RequestID)
		})
	}
}

func TestHandleByCity_BlankCity(t *testing.T) {
	h := NewWeatherHandler(new(mockWeatherService), quietLogger())

	rec := serve(t, h.RegisterRoutes, http.MethodGet, "/api/weather/%20", "")

	assertStatus(t, rec, http.StatusBadRequest)
	assert.Equal(t, string(types.ErrCodeValidationInvalidCity), decodeEnvelope(t, rec).Code)
}

func TestHandleByCoordinates_Success(t *testing.T) {
	svc := new(mockWeatherService)
	svc.On("ByCoordinates", mock.Anything, 28.6139, 77.209).Return(highRiskDelhi(), nil)
	h := NewWeatherHandler(svc, quietLogger())

	rec := serve(t, h.RegisterRoutes, http.MethodGet, "/api/weather/coordinates/28.6139/77.209", "")

	assertStatus(t, rec, http.StatusOK)
	svc.AssertExpectations(t)
}

func TestHandleByCoordinates_Invalid(t *testing.T) {
	tests := []struct {
		path     string
		wantCode types.ErrorCode
	}{
		{"/api/weather/coordinates/abc/77.2", types.ErrCodeValidationInvalidLat},
		{"/api/weather/coordinates/28.6/xyz", types.ErrCodeValidationInvalidLon},
		{"/api/weather/coordinates/NaN/77.2", types.ErrCodeValidationInvalidLat},
		{"/api/weather/coordinates/28.6/Inf", types.ErrCodeValidationInvalidLon},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			svc := new(mockWeatherService)
			h := NewWeatherHandler(svc, quietLogger())

			rec := serve(t, h.RegisterRoutes, http.MethodGet, tt.path, "")

			assertStatus(t, rec, http.StatusBadRequest)
			assert.Equal(t, string(tt.wantCode), decodeEnvelope(t, rec).Code)
			svc.AssertNotCalled(t, "ByCoordinates", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestHandleMultiple_DemoData(t *testing.T) {
	svc := new(mockWeatherService)
	svc.On("Multiple", mock.Anything).Return(&weather.BulkResult{Cities: weather.DemoCities(), Demo: true}, nil)
	h := NewWeatherHandler(svc, quietLogger())

	rec := serve(t, h.RegisterRoutes, http.MethodGet, "/api/weather/multiple", "")

	assertStatus(t, rec, http.StatusOK)
	var cities []types.CityWeather
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cities))
	assert.Len(t, cities, 8)
	assert.Equal(t, "true", rec.Header().Get(DemoDataHeader))
	assert.Empty(t, rec.Header().Get(PartialFailuresHeader))
	svc.AssertNotCalled(t, "ByCity", mock.Anything, mock.Anything)
}

func TestHandleMultiple_PartialFailures(t *testing.T) {
	svc := new(mockWeatherService)
	svc.On("Multiple", mock.Anything).Return(&weather.BulkResult{
		Cities:  []types.CityWeather{{City: "London", RiskLevel: types.RiskLevelLow}},
		Skipped: 11,
	}, nil)
	h := NewWeatherHandler(svc, quietLogger())

	rec := serve(t, h.RegisterRoutes, http.MethodGet, "/api/weather/multiple", "")

	assertStatus(t, rec, http.StatusOK)
	assert.Equal(t, "11", rec.Header().Get(PartialFailuresHeader))
	assert.Empty(t, rec.Header().Get(DemoDataHeader))
	assert.JSONEq(t, `[{"city":"London","country":"","lat":0,"lon":0,"temperature":0,"humidity":0,
		"pressure":0,"wind_speed":0,"description":"","risk_level":"LOW","risk_score":0,"disaster_type":""}]`,
		rec.Body.String())
}

func TestHandleMultiple_AllFailedIsEmptyArray(t *testing.T) {
	svc := new(mockWeatherService)
	svc.On("Multiple", mock.Anything).Return(&weather.BulkResult{Cities: []types.CityWeather{}, Skipped: 12}, nil)
	h := NewWeatherHandler(svc, quietLogger())

	rec := serve(t, h.RegisterRoutes, http.MethodGet, "/api/weather/multiple", "")

	assertStatus(t, rec, http.StatusOK)
	assert.Equal(t, "[]", rec.Body.String())
}

// slowProvider answers London at once and holds every other city until the
// request context is done.
type slowProvider struct{}

func (slowProvider) CurrentByCity(ctx context.Context, city string) (*types.WeatherSnapshot, error) {
	if city == "London" {
		return &types.WeatherSnapshot{City: "London", Country: "GB", Temperature: 22, Humidity: 65, Pressure: 1015, WindSpeed: 5}, nil
	}
	<-ctx.Done()
	return nil, types.NewProviderError(ctx.Err())
}

func (slowProvider) CurrentByCoordinates(context.Context, float64, float64) (*types.WeatherSnapshot, error) {
	return nil, errors.New("not used")
}

func (slowProvider) Configured() bool { return true }

func TestHandleMultiple_DeadlineReturnsPartialList(t *testing.T) {
	svc := weather.NewService(slowProvider{}, nil, quietLogger(),
		weather.WithCities([]string{"London", "Tokyo", "Sydney"}))
	h := NewWeatherHandler(svc, quietLogger())

	r := chi.NewRouter()
	r.Use(core.RequestIDMiddleware, core.ContextTimeoutMiddleware(50*time.Millisecond))
	r.Route("/api", h.RegisterRoutes)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/weather/multiple", nil))

	assertStatus(t, rec, http.StatusOK)
	assert.Equal(t, "2", rec.Header().Get(PartialFailuresHeader))
	var cities []types.CityWeather
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cities))
	require.Len(t, cities, 1)
	assert.Equal(t, "London", cities[0].City)
}

func TestHandleMultiple_ServiceError(t *testing.T) {
	svc := new(mockWeatherService)
	svc.On("Multiple", mock.Anything).Return(nil,
		types.NewAppError(types.ErrCodeInternalUnexpected, "bulk weather view failed", errors.New("boom")))
	h := NewWeatherHandler(svc, quietLogger())

	rec := serve(t, h.RegisterRoutes, http.MethodGet, "/api/weather/multiple", "")

	assertStatus(t, rec, http.StatusInternalServerError)
}

func TestMultipleTakesPrecedenceOverCity(t *testing.T) {
	svc := new(mockWeatherService)
	svc.On("Multiple", mock.Anything).Return(&weather.BulkResult{Cities: []types.CityWeather{}}, nil)
	h := NewWeatherHandler(svc, quietLogger())

	serve(t, h.RegisterRoutes, http.MethodGet, "/api/weather/multiple", "")

	svc.AssertCalled(t, "Multiple", mock.Anything)
	svc.AssertNotCalled(t, "ByCity", mock.Anything, "multiple")
}
