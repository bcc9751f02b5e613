package weather

import "disasterwatch/internal/types"

// demoCities is served by the bulk view when no live provider key is
// configured. The risk fields are fixed showcase values and are not
// recomputed by the classifier.
var demoCities = []types.CityWeather{
	{
		City: "Mumbai", Country: "IN", Lat: 19.0760, Lon: 72.8777,
		Temperature: 42.0, Humidity: 85, Pressure: 995, WindSpeed: 22,
		Description: "heavy rain with strong winds", RiskLevel: types.RiskLevelHigh, RiskScore: 0.9,
		DisasterType: "Severe Storm/Cyclone, Extreme Heatwave",
	},
	{
		City: "Delhi", Country: "IN", Lat: 28.6139, Lon: 77.2090,
		Temperature: 46.0, Humidity: 25, Pressure: 1025, WindSpeed: 8,
		Description: "clear sky, very hot", RiskLevel: types.RiskLevelHigh, RiskScore: 0.8,
		DisasterType: "Extreme Heatwave, Drought Risk",
	},
	{
		City: "London", Country: "GB", Lat: 51.5074, Lon: -0.1278,
		Temperature: 22.0, Humidity: 65, Pressure: 1015, WindSpeed: 5,
		Description: "partly cloudy", RiskLevel: types.RiskLevelLow, RiskScore: 0.1,
		DisasterType: "Normal Conditions",
	},
	{
		City: "Tokyo", Country: "JP", Lat: 35.6762, Lon: 139.6503,
		Temperature: 38.0, Humidity: 78, Pressure: 1002, WindSpeed: 18,
		Description: "thunderstorm with heavy rain", RiskLevel: types.RiskLevelMedium, RiskScore: 0.6,
		DisasterType: "Storm, Heatwave",
	},
	{
		City: "New York", Country: "US", Lat: 40.7128, Lon: -74.0060,
		Temperature: 25.0, Humidity: 55, Pressure: 1012, WindSpeed: 7,
		Description: "clear sky", RiskLevel: types.RiskLevelLow, RiskScore: 0.1,
		DisasterType: "Normal Conditions",
	},
	{
		City: "Sydney", Country: "AU", Lat: -33.8688, Lon: 151.2093,
		Temperature: 35.0, Humidity: 40, Pressure: 1020, WindSpeed: 12,
		Description: "sunny and dry", RiskLevel: types.RiskLevelMedium, RiskScore: 0.4,
		DisasterType: "Drought Risk",
	},
	{
		City: "Dubai", Country: "AE", Lat: 25.2048, Lon: 55.2708,
		Temperature: 48.0, Humidity: 20, Pressure: 1018, WindSpeed: 15,
		Description: "clear sky, extreme heat", RiskLevel: types.RiskLevelHigh, RiskScore: 0.8,
		DisasterType: "Extreme Heatwave",
	},
	{
		City: "Singapore", Country: "SG", Lat: 1.3521, Lon: 103.8198,
		Temperature: 32.0, Humidity: 88, Pressure: 998, WindSpeed: 25,
		Description: "tropical storm approaching", RiskLevel: types.RiskLevelHigh, RiskScore: 0.7,
		DisasterType: "Severe Storm/Cyclone",
	},
}

// DemoCities returns a copy of the demo dataset.
func DemoCities() []types.CityWeather {
	out := make([]types.CityWeather, len(demoCities))
	copy(out, demoCities)
	return out
}
