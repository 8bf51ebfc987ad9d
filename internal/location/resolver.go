// Package location resolves a caller's public IP address to a named place.
package location

import (
	"context"
	"log/slog"

	"solarcheck/internal/external"
	"solarcheck/internal/types"
)

// IPLocator maps an IP address to coordinates.
type IPLocator interface {
	Locate(ctx context.Context, ip string) (external.IPLocation, error)
}

// ReverseGeocoder maps coordinates to a city and state.
type ReverseGeocoder interface {
	Reverse(ctx context.Context, lat, lon float64) (external.Place, error)
}

// Resolver chains IP geolocation with reverse geocoding. Coordinates are
// required; place names are best effort.
type Resolver struct {
	locator  IPLocator
	geocoder ReverseGeocoder
	logger   *slog.Logger
}

var _ types.LocationResolver = (*Resolver)(nil)

// NewResolver creates a Resolver. geocoder may be nil, in which case place
// names come from the IP lookup alone.
func NewResolver(locator IPLocator, geocoder ReverseGeocoder, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{locator: locator, geocoder: geocoder, logger: logger}
}

// Resolve returns the Location for ip. An empty ip resolves the caller's own
// public address as seen by the IP service.
func (r *Resolver) Resolve(ctx context.Context, ip string) (types.Location, error) {
	fix, err := r.locator.Locate(ctx, ip)
	if err != nil {
		return types.Location{}, err
	}

	loc := types.Location{
		Lat:   fix.Lat,
		Lon:   fix.Lon,
		City:  orDefault(fix.City, types.UnknownCity),
		State: orDefault(fix.Region, types.UnknownState),
	}

	if r.geocoder == nil {
		return loc, nil
	}

	place, err := r.geocoder.Reverse(ctx, fix.Lat, fix.Lon)
	if err != nil {
		r.logger.WarnContext(ctx, "reverse geocode failed, using ip lookup names",
			"lat", fix.Lat,
			"lon", fix.Lon,
			"error", err,
		)
		return loc, nil
	}

	if place.City != types.UnknownCity {
		loc.City = place.City
	}
	if place.State != types.UnknownState {
		loc.State = place.State
	}
	return loc, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
