package types

import (
	"time"
)

// RiskLevel is the qualitative bucket a risk score falls into.
type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "LOW"
	RiskLevelMedium RiskLevel = "MEDIUM"
	RiskLevelHigh   RiskLevel = "HIGH"
)

// RaisesAlert reports whether a snapshot at this level produces an Alert.
func (l RiskLevel) RaisesAlert() bool {
	return l == RiskLevelMedium || l == RiskLevelHigh
}

// WeatherSnapshot is one observation for one place at one instant, with the
// risk assessment attached. Immutable once created.
type WeatherSnapshot struct {
	ID            string    `json:"id" db:"id"`
	City          string    `json:"city" db:"city"`
	Country       string    `json:"country" db:"country"`
	Lat           float64   `json:"lat" db:"lat"`
	Lon           float64   `json:"lon" db:"lon"`
	Temperature   float64   `json:"temperature" db:"temperature"`
	Humidity      float64   `json:"humidity" db:"humidity"`
	Pressure      float64   `json:"pressure" db:"pressure"`
	WindSpeed     float64   `json:"wind_speed" db:"wind_speed"`
	WindDirection float64   `json:"wind_direction" db:"wind_direction"`
	Description   string    `json:"description" db:"description"`
	Timestamp     time.Time `json:"timestamp" db:"timestamp"`

	RiskLevel    RiskLevel `json:"risk_level" db:"risk_level"`
	RiskScore    float64   `json:"risk_score" db:"risk_score"`
	DisasterType string    `json:"disaster_type" db:"disaster_type"`
}

// Alert is a persisted warning derived from a MEDIUM or HIGH snapshot.
type Alert struct {
	ID           string    `json:"id" db:"id"`
	City         string    `json:"city" db:"city"`
	DisasterType string    `json:"disaster_type" db:"disaster_type"`
	RiskLevel    RiskLevel `json:"risk_level" db:"risk_level"`
	Message      string    `json:"message" db:"message"`
	Timestamp    time.Time `json:"timestamp" db:"timestamp"`
	Active       bool      `json:"active" db:"active"`
}

// StatusCheck is a client liveness ping.
type StatusCheck struct {
	ID         string    `json:"id" db:"id"`
	ClientName string    `json:"client_name" db:"client_name"`
	Timestamp  time.Time `json:"timestamp" db:"timestamp"`
}

// StatusCheckCreate is the request body for POST /status.
type StatusCheckCreate struct {
	ClientName string `json:"client_name" validate:"required,max=200"`
}

// CityWeather is one row of the bulk weather view. It carries a subset of
// the snapshot plus the disaster label and is never persisted.
type CityWeather struct {
	City         string    `json:"city"`
	Country      string    `json:"country"`
	Lat          float64   `json:"lat"`
	Lon          float64   `json:"lon"`
	Temperature  float64   `json:"temperature"`
	Humidity     float64   `json:"humidity"`
	Pressure     float64   `json:"pressure"`
	WindSpeed    float64   `json:"wind_speed"`
	Description  string    `json:"description"`
	RiskLevel    RiskLevel `json:"risk_level"`
	RiskScore    float64   `json:"risk_score"`
	DisasterType string    `json:"disaster_type"`
}

// RootInfo is the body of GET on the API root.
type RootInfo struct {
	Message string `json:"message"`
}
