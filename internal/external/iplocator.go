package external

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"solarcheck/internal/types"
)

// DefaultIPInfoBaseURL is the public ipinfo endpoint.
const DefaultIPInfoBaseURL = "https://ipinfo.io"

// IPLocation is the coordinate fix for a public IP address.
type IPLocation struct {
	IP     string
	Lat    float64
	Lon    float64
	City   string
	Region string
}

// IPLocator resolves IP addresses to coordinates using an ipinfo-compatible
// API.
type IPLocator struct {
	*BaseClient
	baseURL string
	token   string
}

// IPLocatorConfig configures an IPLocator.
type IPLocatorConfig struct {
	BaseURL   string
	Token     string // optional; raises rate limits
	UserAgent string
	Breaker   BreakerSettings
}

// NewIPLocator creates an IPLocator.
func NewIPLocator(httpClient *http.Client, cfg IPLocatorConfig) *IPLocator {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultIPInfoBaseURL
	}
	return &IPLocator{
		BaseClient: NewBaseClient(httpClient, "ipinfo", cfg.Breaker, cfg.UserAgent),
		baseURL:    base,
		token:      cfg.Token,
	}
}

type ipInfoResponse struct {
	IP     string `json:"ip"`
	City   string `json:"city"`
	Region string `json:"region"`
	Loc    string `json:"loc"`
	Bogon  bool   `json:"bogon"`
}

// Locate resolves ip to coordinates. An empty ip asks the service for the
// caller's own public address.
func (l *IPLocator) Locate(ctx context.Context, ip string) (IPLocation, error) {
	endpoint := l.baseURL + "/json"
	if ip != "" {
		if net.ParseIP(ip) == nil {
			return IPLocation{}, types.NewAppError(
				types.ErrCodeValidationInvalidIP,
				fmt.Sprintf("%q is not a valid IP address", ip),
				nil,
			)
		}
		endpoint = l.baseURL + "/" + url.PathEscape(ip) + "/json"
	}
	if l.token != "" {
		endpoint += "?token=" + url.QueryEscape(l.token)
	}

	var body ipInfoResponse
	if err := l.GetJSON(ctx, endpoint, &body); err != nil {
		return IPLocation{}, err
	}

	if body.Bogon {
		return IPLocation{}, types.NewAppErrorWithDetails(
			types.ErrCodeUpstreamLocationUnresolved,
			"could not determine location for a private or reserved address",
			nil,
			map[string]any{"ip": body.IP},
		)
	}

	lat, lon, err := parseLoc(body.Loc)
	if err != nil {
		return IPLocation{}, types.NewAppErrorWithDetails(
			types.ErrCodeUpstreamLocationUnresolved,
			"could not determine location",
			err,
			map[string]any{"ip": body.IP, "loc": body.Loc},
		)
	}

	return IPLocation{
		IP:     body.IP,
		Lat:    lat,
		Lon:    lon,
		City:   body.City,
		Region: body.Region,
	}, nil
}

// parseLoc parses ipinfo's "lat,lon" string.
func parseLoc(loc string) (float64, float64, error) {
	parts := strings.Split(loc, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("loc %q is not lat,lon", loc)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("parsing latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("parsing longitude: %w", err)
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return 0, 0, fmt.Errorf("loc %q out of range", loc)
	}
	return lat, lon, nil
}
