package external

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"solarcheck/internal/types"
)

// DefaultNASAPowerBaseURL is the public NASA POWER API.
const DefaultNASAPowerBaseURL = "https://power.larc.nasa.gov"

// NASA POWER parameter names.
const (
	powerAllSkyIrradiance   = "ALLSKY_SFC_SW_DWN"
	powerTemperature        = "T2M"
	powerClearSkyIrradiance = "CLRSKY_SFC_SW_DWN"
	powerWindSpeed          = "WS10M"
)

// defaultFillValue marks missing days in NASA POWER output.
const defaultFillValue = -999.0

// NASAPowerClient fetches a reference year of daily irradiance and
// temperature.
type NASAPowerClient struct {
	*BaseClient
	baseURL string
}

// NASAPowerConfig configures a NASAPowerClient.
type NASAPowerConfig struct {
	BaseURL   string
	UserAgent string
	Breaker   BreakerSettings
}

// NewNASAPowerClient creates a NASAPowerClient.
func NewNASAPowerClient(httpClient *http.Client, cfg NASAPowerConfig) *NASAPowerClient {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultNASAPowerBaseURL
	}
	return &NASAPowerClient{
		BaseClient: NewBaseClient(httpClient, "nasa-power", cfg.Breaker, cfg.UserAgent),
		baseURL:    base,
	}
}

type nasaPowerResponse struct {
	Header struct {
		FillValue *float64 `json:"fill_value"`
	} `json:"header"`
	Properties struct {
		Parameter map[string]map[string]float64 `json:"parameter"`
	} `json:"properties"`
}

// DailyIrradiance fetches daily all-sky irradiance (kWh/m²/day) and 2 m air
// temperature (°C) for every day of year at (lat, lon). Fill values are
// dropped.
func (c *NASAPowerClient) DailyIrradiance(ctx context.Context, lat, lon float64, year int) (types.IrradianceSeries, error) {
	q := url.Values{}
	q.Set("parameters", strings.Join([]string{powerAllSkyIrradiance, powerTemperature, powerClearSkyIrradiance, powerWindSpeed}, ","))
	q.Set("community", "RE")
	q.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("start", fmt.Sprintf("%04d0101", year))
	q.Set("end", fmt.Sprintf("%04d1231", year))
	q.Set("format", "JSON")

	var body nasaPowerResponse
	if err := c.GetJSON(ctx, c.baseURL+"/api/temporal/daily/point?"+q.Encode(), &body); err != nil {
		return types.IrradianceSeries{}, err
	}

	fill := defaultFillValue
	if body.Header.FillValue != nil {
		fill = *body.Header.FillValue
	}

	irr, err := c.series(body.Properties.Parameter, powerAllSkyIrradiance, fill)
	if err != nil {
		return types.IrradianceSeries{}, err
	}
	temp, err := c.series(body.Properties.Parameter, powerTemperature, fill)
	if err != nil {
		return types.IrradianceSeries{}, err
	}

	return types.IrradianceSeries{
		Year:            year,
		SolarIrradiance: irr,
		Temperature:     temp,
	}, nil
}

// series returns a parameter's values in date order, without fill values.
func (c *NASAPowerClient) series(params map[string]map[string]float64, key string, fill float64) (types.DailySeries, error) {
	byDate, ok := params[key]
	if !ok {
		return nil, types.NewAppErrorWithDetails(
			types.ErrCodeUpstreamDataIncomplete,
			"solar data is missing a required parameter",
			nil,
			map[string]any{"provider": c.provider, "parameter": key},
		)
	}

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	out := make(types.DailySeries, 0, len(dates))
	for _, d := range dates {
		v := byDate[d]
		if v == fill {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}
