package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ErrNotConfigured means no provider API key was supplied.
var ErrNotConfigured = errors.New("weather: provider not configured")

// ErrProvider wraps any upstream failure. Handlers translate it to 502.
var ErrProvider = errors.New("weather: provider request failed")

// Client talks to an OpenWeatherMap-compatible provider.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient constructs a provider client. baseURL is the API root,
// e.g. https://api.openweathermap.org/data/2.5.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
}

type owmWeather struct {
	Main        string `json:"main"`
	Description string `json:"description"`
}

type owmMain struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	TempMin   float64 `json:"temp_min"`
	TempMax   float64 `json:"temp_max"`
	Humidity  int     `json:"humidity"`
	Pressure  int     `json:"pressure"`
}

type owmWind struct {
	Speed float64 `json:"speed"`
	Deg   int     `json:"deg"`
}

type owmCurrentResponse struct {
	Name    string       `json:"name"`
	Weather []owmWeather `json:"weather"`
	Main    owmMain      `json:"main"`
	Wind    owmWind      `json:"wind"`
	Clouds  struct {
		All int `json:"all"`
	} `json:"clouds"`
	Visibility int `json:"visibility"`
	Sys        struct {
		Country string `json:"country"`
	} `json:"sys"`
}

type owmForecastResponse struct {
	City struct {
		Name    string `json:"name"`
		Country string `json:"country"`
	} `json:"city"`
	List []struct {
		Dt      int64        `json:"dt"`
		Main    owmMain      `json:"main"`
		Wind    owmWind      `json:"wind"`
		Weather []owmWeather `json:"weather"`
		Clouds  struct {
			All int `json:"all"`
		} `json:"clouds"`
		Pop  float64 `json:"pop"`
		Rain struct {
			ThreeH float64 `json:"3h"`
		} `json:"rain"`
		Snow struct {
			ThreeH float64 `json:"3h"`
		} `json:"snow"`
	} `json:"list"`
}

func (c *Client) get(ctx context.Context, path string, params url.Values, dest any) error {
	if c.apiKey == "" {
		return ErrNotConfigured
	}
	params.Set("appid", c.apiKey)
	params.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProvider, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrProvider, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrProvider, err)
	}
	return nil
}

func coordParams(lat, lon float64) url.Values {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', 4, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', 4, 64))
	return params
}

// Current fetches current conditions for a coordinate.
func (c *Client) Current(ctx context.Context, lat, lon float64) (Snapshot, error) {
	var raw owmCurrentResponse
	if err := c.get(ctx, "/weather", coordParams(lat, lon), &raw); err != nil {
		return Snapshot{}, err
	}
	snap := Snapshot{
		Latitude:      lat,
		Longitude:     lon,
		City:          raw.Name,
		Country:       raw.Sys.Country,
		TempC:         raw.Main.Temp,
		FeelsLikeC:    raw.Main.FeelsLike,
		TempMinC:      raw.Main.TempMin,
		TempMaxC:      raw.Main.TempMax,
		Humidity:      raw.Main.Humidity,
		Pressure:      raw.Main.Pressure,
		WindSpeed:     raw.Wind.Speed,
		WindDirection: raw.Wind.Deg,
		VisibilityKM:  float64(raw.Visibility) / 1000,
		CloudCover:    raw.Clouds.All,
	}
	if len(raw.Weather) > 0 {
		snap.Condition = raw.Weather[0].Main
		snap.Description = raw.Weather[0].Description
	}
	return snap, nil
}

// Forecast fetches the 3-hourly forecast for a coordinate. The provider
// serves eight entries per day.
func (c *Client) Forecast(ctx context.Context, lat, lon float64, days int) (Forecast, error) {
	params := coordParams(lat, lon)
	params.Set("cnt", strconv.Itoa(days*8))

	var raw owmForecastResponse
	if err := c.get(ctx, "/forecast", params, &raw); err != nil {
		return Forecast{}, err
	}
	out := Forecast{City: raw.City.Name, Country: raw.City.Country}
	for _, item := range raw.List {
		entry := ForecastEntry{
			Time:          time.Unix(item.Dt, 0).UTC(),
			TempC:         item.Main.Temp,
			FeelsLikeC:    item.Main.FeelsLike,
			TempMinC:      item.Main.TempMin,
			TempMaxC:      item.Main.TempMax,
			Humidity:      item.Main.Humidity,
			Pressure:      item.Main.Pressure,
			WindSpeed:     item.Wind.Speed,
			WindDirection: item.Wind.Deg,
			CloudCover:    item.Clouds.All,
			RainMM:        item.Rain.ThreeH,
			SnowMM:        item.Snow.ThreeH,
			Probability:   item.Pop * 100,
		}
		if len(item.Weather) > 0 {
			entry.Condition = item.Weather[0].Main
			entry.Description = item.Weather[0].Description
		}
		out.Entries = append(out.Entries, entry)
	}
	return out, nil
}
