// Package risk derives a qualitative disaster-risk assessment from a single
// weather observation.
//
// Rules are grouped into families (heat, flood, storm, drought). Every family
// is evaluated; inside a family the first matching branch wins. The score is
// the highest triggered weight and the level is its bucket.
package risk

import (
	"math"
	"strings"

	"disasterwatch/internal/types"
)

// NormalConditions is the label used when no rule triggers.
const NormalConditions = "Normal Conditions"

// Level thresholds.
const (
	HighThreshold   = 0.7
	MediumThreshold = 0.4
)

// Conditions is the classifier input. Units: °C, %, hPa, m/s.
type Conditions struct {
	TemperatureC float64
	HumidityPct  float64
	PressureHPa  float64
	WindSpeedMS  float64
}

// Assessment is the classifier output.
type Assessment struct {
	Level        types.RiskLevel `json:"risk_level"`
	Score        float64         `json:"risk_score"`
	DisasterType string          `json:"disaster_type"`
}

type rule struct {
	label  string
	weight float64
	match  func(c Conditions) bool
}

// family is an ordered list of mutually exclusive branches.
type family []rule

var families = []family{
	// heat
	{
		{"Extreme Heatwave", 0.8, func(c Conditions) bool { return c.TemperatureC > 40 }},
		{"Heatwave", 0.6, func(c Conditions) bool { return c.TemperatureC > 35 }},
	},
	// flood
	{
		{"Flood Risk", 0.7, func(c Conditions) bool { return c.HumidityPct > 80 && c.PressureHPa < 1000 }},
	},
	// storm
	{
		{"Severe Storm/Cyclone", 0.9, func(c Conditions) bool { return c.WindSpeedMS > 20 && c.PressureHPa < 990 }},
		{"Storm", 0.6, func(c Conditions) bool { return c.WindSpeedMS > 15 && c.PressureHPa < 1000 }},
	},
	// drought
	{
		{"Drought Risk", 0.5, func(c Conditions) bool {
			return c.HumidityPct < 30 && c.PressureHPa > 1020 && c.TemperatureC > 30
		}},
	},
}

// Classify assesses the given conditions. It is pure and safe for concurrent
// use. Inputs are not validated; NaN compares false everywhere and so falls
// through to the baseline branch.
func Classify(c Conditions) Assessment {
	var (
		labels []string
		score  float64
	)
	for _, fam := range families {
		for _, r := range fam {
			if r.match(c) {
				labels = append(labels, r.label)
				score = math.Max(score, r.weight)
				break
			}
		}
	}

	if len(labels) == 0 {
		return Assessment{
			Level:        types.RiskLevelLow,
			Score:        baseline(c),
			DisasterType: NormalConditions,
		}
	}

	return Assessment{
		Level:        LevelFor(score),
		Score:        score,
		DisasterType: strings.Join(labels, ", "),
	}
}

// baseline is the small score reported when nothing triggers. Only the upper
// bound is clamped, so cold humid weather yields a negative score.
func baseline(c Conditions) float64 {
	return math.Min(0.1, (c.TemperatureC-20)/100+(100-c.HumidityPct)/200)
}

// LevelFor buckets a score.
func LevelFor(score float64) types.RiskLevel {
	switch {
	case score >= HighThreshold:
		return types.RiskLevelHigh
	case score >= MediumThreshold:
		return types.RiskLevelMedium
	default:
		return types.RiskLevelLow
	}
}

// FromSnapshot builds classifier input from an observation.
func FromSnapshot(s *types.WeatherSnapshot) Conditions {
	return Conditions{
		TemperatureC: s.Temperature,
		HumidityPct:  s.Humidity,
		PressureHPa:  s.Pressure,
		WindSpeedMS:  s.WindSpeed,
	}
}

// Apply classifies the snapshot and writes the result onto it.
func Apply(s *types.WeatherSnapshot) Assessment {
	a := Classify(FromSnapshot(s))
	s.RiskLevel = a.Level
	s.RiskScore = a.Score
	s.DisasterType = a.DisasterType
	return a
}
