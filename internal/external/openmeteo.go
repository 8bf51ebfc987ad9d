package external

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"solarcheck/internal/types"
)

// DefaultOpenMeteoBaseURL is the public Open-Meteo forecast API.
const DefaultOpenMeteoBaseURL = "https://api.open-meteo.com"

// Open-Meteo daily variable names.
const (
	omShortwaveRadiationSum = "shortwave_radiation_sum"
	omTemperatureMax        = "temperature_2m_max"
	omCloudCoverMean        = "cloudcover_mean"
	omWindSpeedMax          = "wind_speed_10m_max"
)

// OpenMeteoClient fetches the daily forecast series used for cloud cover and
// wind speed.
type OpenMeteoClient struct {
	*BaseClient
	baseURL  string
	timezone string
}

// OpenMeteoConfig configures an OpenMeteoClient.
type OpenMeteoConfig struct {
	BaseURL string
	// Timezone is passed through to the API; "auto" picks the location's zone.
	Timezone  string
	UserAgent string
	Breaker   BreakerSettings
}

// NewOpenMeteoClient creates an OpenMeteoClient.
func NewOpenMeteoClient(httpClient *http.Client, cfg OpenMeteoConfig) *OpenMeteoClient {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultOpenMeteoBaseURL
	}
	tz := cfg.Timezone
	if tz == "" {
		tz = "auto"
	}
	return &OpenMeteoClient{
		BaseClient: NewBaseClient(httpClient, "open-meteo", cfg.Breaker, cfg.UserAgent),
		baseURL:    base,
		timezone:   tz,
	}
}

// openMeteoResponse keeps daily values as pointers because the API emits
// null for days it has no data for.
type openMeteoResponse struct {
	Daily map[string][]*float64 `json:"daily"`
}

// DailyWeather fetches daily mean cloud cover (%) and daily max wind speed
// (km/h) for the forecast window at (lat, lon).
func (c *OpenMeteoClient) DailyWeather(ctx context.Context, lat, lon float64) (types.WeatherSeries, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("daily", strings.Join([]string{omShortwaveRadiationSum, omTemperatureMax, omCloudCoverMean, omWindSpeedMax}, ","))
	q.Set("timezone", c.timezone)

	var body openMeteoResponse
	if err := c.GetJSON(ctx, c.baseURL+"/v1/forecast?"+q.Encode(), &body); err != nil {
		return types.WeatherSeries{}, err
	}

	cloud, err := c.series(body.Daily, omCloudCoverMean)
	if err != nil {
		return types.WeatherSeries{}, err
	}
	wind, err := c.series(body.Daily, omWindSpeedMax)
	if err != nil {
		return types.WeatherSeries{}, err
	}

	return types.WeatherSeries{CloudCover: cloud, WindSpeed: wind}, nil
}

// series extracts a variable, dropping null days. A variable missing from
// the payload is reported as incomplete data.
func (c *OpenMeteoClient) series(daily map[string][]*float64, key string) (types.DailySeries, error) {
	raw, ok := daily[key]
	if !ok {
		return nil, types.NewAppErrorWithDetails(
			types.ErrCodeUpstreamDataIncomplete,
			"weather data is missing a required variable",
			nil,
			map[string]any{"provider": c.provider, "variable": key},
		)
	}
	out := make(types.DailySeries, 0, len(raw))
	for _, v := range raw {
		if v != nil {
			out = append(out, *v)
		}
	}
	return out, nil
}
