// Package climate turns raw upstream series into the four averaged scalars
// the feasibility evaluator consumes.
package climate

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"solarcheck/internal/types"
)

// DefaultReferenceYear is the NASA POWER year averaged when none is
// configured.
const DefaultReferenceYear = 2023

// WeatherSource provides the short-range daily forecast series.
type WeatherSource interface {
	DailyWeather(ctx context.Context, lat, lon float64) (types.WeatherSeries, error)
}

// IrradianceSource provides a reference year of daily irradiance and
// temperature.
type IrradianceSource interface {
	DailyIrradiance(ctx context.Context, lat, lon float64, year int) (types.IrradianceSeries, error)
}

// Service fans out to both upstream sources and averages their series.
// It implements types.ReadingSource.
type Service struct {
	weather    WeatherSource
	irradiance IrradianceSource
	year       int
	logger     *slog.Logger
}

var _ types.ReadingSource = (*Service)(nil)

// NewService creates a Service. A zero year selects DefaultReferenceYear.
func NewService(weather WeatherSource, irradiance IrradianceSource, year int, logger *slog.Logger) *Service {
	if year == 0 {
		year = DefaultReferenceYear
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		weather:    weather,
		irradiance: irradiance,
		year:       year,
		logger:     logger,
	}
}

// Reading fetches both sources concurrently and reduces them to an
// EnvironmentalReading. The first upstream failure cancels the other call.
func (s *Service) Reading(ctx context.Context, loc types.Location) (types.EnvironmentalReading, error) {
	var (
		weather types.WeatherSeries
		solar   types.IrradianceSeries
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		weather, err = s.weather.DailyWeather(gctx, loc.Lat, loc.Lon)
		return err
	})
	g.Go(func() error {
		var err error
		solar, err = s.irradiance.DailyIrradiance(gctx, loc.Lat, loc.Lon, s.year)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.WarnContext(ctx, "climate fetch failed",
			"lat", loc.Lat,
			"lon", loc.Lon,
			"error", err,
		)
		return types.EnvironmentalReading{}, err
	}

	reading, err := Average(weather, solar)
	if err != nil {
		return types.EnvironmentalReading{}, err
	}

	s.logger.DebugContext(ctx, "climate reading computed",
		"lat", loc.Lat,
		"lon", loc.Lon,
		"year", s.year,
		"irradiance_days", len(solar.SolarIrradiance),
		"forecast_days", len(weather.CloudCover),
	)
	return reading, nil
}

// seriesMean names a series and where its mean is written.
type seriesMean struct {
	name string
	data types.DailySeries
	dst  *float64
}

// Average reduces the fetched series to their arithmetic means. Every series
// must hold at least one valid day.
func Average(weather types.WeatherSeries, solar types.IrradianceSeries) (types.EnvironmentalReading, error) {
	var r types.EnvironmentalReading
	series := []seriesMean{
		{"solar_irradiance", solar.SolarIrradiance, &r.SolarIrradiance},
		{"temperature", solar.Temperature, &r.Temperature},
		{"cloud_cover", weather.CloudCover, &r.CloudCover},
		{"wind_speed", weather.WindSpeed, &r.WindSpeed},
	}

	for _, s := range series {
		mean, ok := s.data.Mean()
		if !ok {
			return types.EnvironmentalReading{}, types.NewAppErrorWithDetails(
				types.ErrCodeUpstreamDataIncomplete,
				"unable to fetch weather data",
				nil,
				map[string]any{"series": s.name},
			)
		}
		*s.dst = mean
	}
	return r, nil
}
