package location

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solarcheck/internal/external"
	"solarcheck/internal/types"
)

type mockLocator struct {
	LocateFunc func(ctx context.Context, ip string) (external.IPLocation, error)
}

func (m *mockLocator) Locate(ctx context.Context, ip string) (external.IPLocation, error) {
	return m.LocateFunc(ctx, ip)
}

type mockGeocoder struct {
	ReverseFunc func(ctx context.Context, lat, lon float64) (external.Place, error)
	calls       int
}

func (m *mockGeocoder) Reverse(ctx context.Context, lat, lon float64) (external.Place, error) {
	m.calls++
	return m.ReverseFunc(ctx, lat, lon)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixedLocator(fix external.IPLocation) *mockLocator {
	return &mockLocator{LocateFunc: func(context.Context, string) (external.IPLocation, error) {
		return fix, nil
	}}
}

func TestResolve_UsesReverseGeocodeNames(t *testing.T) {
	var gotIP string
	locator := &mockLocator{LocateFunc: func(_ context.Context, ip string) (external.IPLocation, error) {
		gotIP = ip
		return external.IPLocation{IP: ip, Lat: 33.45, Lon: -112.07, City: "Phx", Region: "AZ"}, nil
	}}
	geocoder := &mockGeocoder{ReverseFunc: func(_ context.Context, lat, lon float64) (external.Place, error) {
		assert.Equal(t, 33.45, lat)
		assert.Equal(t, -112.07, lon)
		return external.Place{City: "Phoenix", State: "Arizona"}, nil
	}}

	loc, err := NewResolver(locator, geocoder, discardLogger()).Resolve(context.Background(), "8.8.8.8")

	require.NoError(t, err)
	assert.Equal(t, "8.8.8.8", gotIP)
	assert.Equal(t, types.Location{Lat: 33.45, Lon: -112.07, City: "Phoenix", State: "Arizona"}, loc)
}

func TestResolve_ReverseFailureIsNonFatal(t *testing.T) {
	geocoder := &mockGeocoder{ReverseFunc: func(context.Context, float64, float64) (external.Place, error) {
		return external.Place{}, types.NewAppError(types.ErrCodeUpstreamUnavailable, "nominatim down", nil)
	}}

	loc, err := NewResolver(
		fixedLocator(external.IPLocation{Lat: 1, Lon: 2, City: "Springfield"}),
		geocoder,
		discardLogger(),
	).Resolve(context.Background(), "")

	require.NoError(t, err)
	assert.Equal(t, 1, geocoder.calls)
	assert.Equal(t, "Springfield", loc.City)
	assert.Equal(t, types.UnknownState, loc.State)
}

func TestResolve_UnknownPlaceKeepsIPNames(t *testing.T) {
	geocoder := &mockGeocoder{ReverseFunc: func(context.Context, float64, float64) (external.Place, error) {
		return external.Place{City: types.UnknownCity, State: types.UnknownState}, nil
	}}

	loc, err := NewResolver(
		fixedLocator(external.IPLocation{Lat: 1, Lon: 2, City: "Reno", Region: "Nevada"}),
		geocoder,
		discardLogger(),
	).Resolve(context.Background(), "")

	require.NoError(t, err)
	assert.Equal(t, "Reno", loc.City)
	assert.Equal(t, "Nevada", loc.State)
}

func TestResolve_NoGeocoder(t *testing.T) {
	loc, err := NewResolver(fixedLocator(external.IPLocation{Lat: 1, Lon: 2}), nil, discardLogger()).
		Resolve(context.Background(), "")

	require.NoError(t, err)
	assert.Equal(t, types.UnknownCity, loc.City)
	assert.Equal(t, types.UnknownState, loc.State)
}

func TestResolve_LocatorFailureIsFatal(t *testing.T) {
	locErr := types.NewAppError(types.ErrCodeUpstreamLocationUnresolved, "no fix", nil)
	geocoder := &mockGeocoder{ReverseFunc: func(context.Context, float64, float64) (external.Place, error) {
		t.Fatal("geocoder must not be called without coordinates")
		return external.Place{}, nil
	}}

	_, err := NewResolver(
		&mockLocator{LocateFunc: func(context.Context, string) (external.IPLocation, error) {
			return external.IPLocation{}, locErr
		}},
		geocoder,
		discardLogger(),
	).Resolve(context.Background(), "")

	assert.True(t, errors.Is(err, locErr))
}
