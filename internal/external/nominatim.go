package external

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"solarcheck/internal/types"
)

// DefaultNominatimBaseURL is the public OpenStreetMap Nominatim instance.
const DefaultNominatimBaseURL = "https://nominatim.openstreetmap.org"

// Place is the reverse-geocoded name of a coordinate.
type Place struct {
	City  string
	State string
}

// NominatimClient reverse geocodes coordinates to city and state names.
// The public instance allows at most one request per second, so calls are
// paced by a limiter shared across the client.
type NominatimClient struct {
	*BaseClient
	baseURL string
	limiter *rate.Limiter
}

// NominatimConfig configures a NominatimClient.
type NominatimConfig struct {
	BaseURL string
	// UserAgent is mandatory under the Nominatim usage policy.
	UserAgent string
	// RequestsPerSecond defaults to 1.
	RequestsPerSecond float64
	Breaker           BreakerSettings
}

// NewNominatimClient creates a NominatimClient.
func NewNominatimClient(httpClient *http.Client, cfg NominatimConfig) *NominatimClient {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultNominatimBaseURL
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	return &NominatimClient{
		BaseClient: NewBaseClient(httpClient, "nominatim", cfg.Breaker, cfg.UserAgent),
		baseURL:    base,
		limiter:    rate.NewLimiter(rate.Every(time.Duration(float64(time.Second)/rps)), 1),
	}
}

type nominatimResponse struct {
	Address *struct {
		City    string `json:"city"`
		Town    string `json:"town"`
		Village string `json:"village"`
		State   string `json:"state"`
	} `json:"address"`
	Error string `json:"error"`
}

// Reverse returns the city and state at (lat, lon). A response without an
// address is not an error; it yields the Unknown City / Unknown State
// placeholders.
func (c *NominatimClient) Reverse(ctx context.Context, lat, lon float64) (Place, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return Place{}, types.NewAppError(types.ErrCodeUpstreamUnavailable, "reverse geocode cancelled", err)
	}

	q := url.Values{}
	q.Set("format", "json")
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))

	var body nominatimResponse
	if err := c.GetJSON(ctx, c.baseURL+"/reverse?"+q.Encode(), &body); err != nil {
		return Place{}, err
	}

	place := Place{City: types.UnknownCity, State: types.UnknownState}
	if body.Address == nil {
		return place, nil
	}

	switch {
	case body.Address.City != "":
		place.City = body.Address.City
	case body.Address.Town != "":
		place.City = body.Address.Town
	case body.Address.Village != "":
		place.City = body.Address.Village
	}
	if body.Address.State != "" {
		place.State = body.Address.State
	}
	return place, nil
}
