package weather

import (
	"strings"
	"time"
)

// Snapshot is a stored observation of current conditions at a coordinate.
// Wind speed is in m/s as the provider reports it; visibility in km.
type Snapshot struct {
	ID            int64     `json:"id"`
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	City          string    `json:"city"`
	Country       string    `json:"country"`
	TempC         float64   `json:"temp_c"`
	FeelsLikeC    float64   `json:"feels_like_c"`
	TempMinC      float64   `json:"temp_min_c"`
	TempMaxC      float64   `json:"temp_max_c"`
	Humidity      int       `json:"humidity"`
	Pressure      int       `json:"pressure"`
	WindSpeed     float64   `json:"wind_speed"`
	WindDirection int       `json:"wind_direction"`
	VisibilityKM  float64   `json:"visibility_km"`
	CloudCover    int       `json:"cloud_cover"`
	Condition     string    `json:"condition"`
	Description   string    `json:"description"`
	FetchedAt     time.Time `json:"fetched_at"`
}

// ForecastEntry is one 3-hour forecast step from the provider.
type ForecastEntry struct {
	Time          time.Time `json:"time"`
	TempC         float64   `json:"temp_c"`
	FeelsLikeC    float64   `json:"feels_like_c"`
	TempMinC      float64   `json:"temp_min_c"`
	TempMaxC      float64   `json:"temp_max_c"`
	Humidity      int       `json:"humidity"`
	Pressure      int       `json:"pressure"`
	WindSpeed     float64   `json:"wind_speed"`
	WindDirection int       `json:"wind_direction"`
	CloudCover    int       `json:"cloud_cover"`
	Condition     string    `json:"condition"`
	Description   string    `json:"description"`
	RainMM        float64   `json:"rain_mm"`
	SnowMM        float64   `json:"snow_mm"`
	Probability   float64   `json:"precipitation_probability"`
}

// Forecast is a multi-day forecast for one location.
type Forecast struct {
	City    string          `json:"city"`
	Country string          `json:"country"`
	Entries []ForecastEntry `json:"entries"`
}

// Advice severity levels.
const (
	AdviceWarning = "warning"
	AdviceCaution = "caution"
	AdviceInfo    = "info"
)

// Advice is one agronomic recommendation derived from conditions.
type Advice struct {
	Type     string `json:"type"`
	Category string `json:"category"`
	Message  string `json:"message"`
}

// AdviceFor derives agronomic recommendations from a snapshot.
func AdviceFor(s Snapshot) []Advice {
	var advice []Advice

	switch {
	case s.TempC > 35:
		advice = append(advice, Advice{
			Type:     AdviceWarning,
			Category: "temperature",
			Message:  "High temperature alert. Increase irrigation frequency and consider shade protection for sensitive crops.",
		})
	case s.TempC < 5:
		advice = append(advice, Advice{
			Type:     AdviceWarning,
			Category: "temperature",
			Message:  "Low temperature alert. Protect crops from frost damage and consider covering sensitive plants.",
		})
	}

	switch {
	case s.Humidity > 85:
		advice = append(advice, Advice{
			Type:     AdviceCaution,
			Category: "humidity",
			Message:  "High humidity levels may promote fungal diseases. Monitor crops closely and ensure good ventilation.",
		})
	case s.Humidity < 30:
		advice = append(advice, Advice{
			Type:     AdviceInfo,
			Category: "humidity",
			Message:  "Low humidity levels. Consider increasing irrigation and mulching to retain soil moisture.",
		})
	}

	if s.WindSpeed > 15 {
		advice = append(advice, Advice{
			Type:     AdviceWarning,
			Category: "wind",
			Message:  "Strong winds detected. Secure tall crops and structures, and avoid spraying pesticides.",
		})
	}

	condition := strings.ToLower(s.Condition)
	switch {
	case strings.Contains(condition, "rain"):
		advice = append(advice, Advice{
			Type:     AdviceInfo,
			Category: "precipitation",
			Message:  "Rain expected. Adjust irrigation schedules and avoid field work if soil becomes waterlogged.",
		})
	case strings.Contains(condition, "clear") && s.TempC > 25:
		advice = append(advice, Advice{
			Type:     AdviceInfo,
			Category: "general",
			Message:  "Good weather for field activities. Ideal time for planting, harvesting, or applying treatments.",
		})
	}

	return advice
}

// ActiveAlerts filters advice down to the warning entries.
func ActiveAlerts(s Snapshot) []Advice {
	var alerts []Advice
	for _, a := range AdviceFor(s) {
		if a.Type == AdviceWarning {
			alerts = append(alerts, a)
		}
	}
	return alerts
}
