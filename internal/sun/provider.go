package sun

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/sixdouglas/suncalc"

	"github.com/chpego/adaptive-lighting/pkg/config"
)

// ErrLocationUnavailable is returned when sun anchors cannot be computed
// for the configured location. Callers skip the affected cycle and keep
// the previous setting.
var ErrLocationUnavailable = errors.New("location unavailable")

// Anchors holds the four sun event timestamps bracketing a point in time:
// Midnight <= t < NextMidnight, with Sunrise, Noon and Sunset in between.
type Anchors struct {
	Midnight     time.Time // solar midnight (nadir) opening the window
	Sunrise      time.Time
	Noon         time.Time // solar noon, midpoint of daylight
	Sunset       time.Time
	NextMidnight time.Time // nadir closing the window
}

// Provider computes sun event anchors for a fixed geographic location.
// Deterministic given (location, date).
type Provider struct {
	cfg    *config.Config
	loc    *time.Location
	logger *slog.Logger
}

// NewProvider creates a sun provider for the configured location.
// Fails if the latitude/longitude are out of range or the timezone
// cannot be resolved.
func NewProvider(cfg *config.Config, logger *slog.Logger) (*Provider, error) {
	if math.IsNaN(cfg.Latitude) || cfg.Latitude < -90 || cfg.Latitude > 90 ||
		math.IsNaN(cfg.Longitude) || cfg.Longitude < -180 || cfg.Longitude > 180 {
		return nil, fmt.Errorf("%w: invalid coordinates (%f, %f)",
			ErrLocationUnavailable, cfg.Latitude, cfg.Longitude)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown timezone %q: %v",
			ErrLocationUnavailable, cfg.Timezone, err)
	}

	return &Provider{cfg: cfg, loc: loc, logger: logger}, nil
}

// Anchors returns the sun anchors for the solar day containing t, i.e. the
// window between the solar midnight preceding t and the one following it.
// Sunrise and sunset carry the configured offsets, or are replaced by
// fixed wall-clock times when sunrise_time / sunset_time are set.
func (p *Provider) Anchors(t time.Time) (Anchors, error) {
	t = t.In(p.loc)

	// The nadir for a calendar day can land before or after local 00:00
	// depending on longitude, so probe the neighbouring days for the
	// window that actually contains t.
	for _, dayShift := range []int{0, -1, 1} {
		day := t.AddDate(0, 0, dayShift)
		a, err := p.dayAnchors(day)
		if err != nil {
			return Anchors{}, err
		}
		if !t.Before(a.Midnight) && t.Before(a.NextMidnight) {
			return a, nil
		}
	}

	return Anchors{}, fmt.Errorf("%w: no solar day brackets %s", ErrLocationUnavailable, t)
}

// Altitude returns the sun altitude in degrees at t, for diagnostics.
func (p *Provider) Altitude(t time.Time) float64 {
	pos := suncalc.GetPosition(t, p.cfg.Latitude, p.cfg.Longitude)
	return pos.Altitude * (180.0 / math.Pi)
}

// dayAnchors computes the anchors of the solar day whose noon falls on
// the given calendar day.
func (p *Provider) dayAnchors(day time.Time) (Anchors, error) {
	times := suncalc.GetTimes(day, p.cfg.Latitude, p.cfg.Longitude)
	nextTimes := suncalc.GetTimes(day.AddDate(0, 0, 1), p.cfg.Latitude, p.cfg.Longitude)

	noon := times[suncalc.SolarNoon].Value
	midnight := times[suncalc.Nadir].Value
	nextMidnight := nextTimes[suncalc.Nadir].Value
	if noon.IsZero() || midnight.IsZero() || nextMidnight.IsZero() {
		return Anchors{}, fmt.Errorf("%w: no solar noon for %s", ErrLocationUnavailable, day.Format("2006-01-02"))
	}

	noon = noon.In(p.loc)
	midnight = midnight.In(p.loc)
	nextMidnight = nextMidnight.In(p.loc)

	sunrise := p.eventTime(times[suncalc.Sunrise].Value, p.cfg.SunriseTime, noon, p.cfg.SunriseOffset())
	sunset := p.eventTime(times[suncalc.Sunset].Value, p.cfg.SunsetTime, noon, p.cfg.SunsetOffset())

	// During polar day or night there is no horizon crossing; fall back
	// to a nominal six-hour half-day so the curve stays defined.
	if sunrise.IsZero() {
		sunrise = noon.Add(-6 * time.Hour)
	}
	if sunset.IsZero() {
		sunset = noon.Add(6 * time.Hour)
	}

	// Offsets must not push the ramp breakpoints past the fixed anchors.
	sunrise = clampTime(sunrise, midnight, noon)
	sunset = clampTime(sunset, noon, nextMidnight)

	return Anchors{
		Midnight:     midnight,
		Sunrise:      sunrise,
		Noon:         noon,
		Sunset:       sunset,
		NextMidnight: nextMidnight,
	}, nil
}

// eventTime resolves a sun event: a fixed HH:MM override wins over the
// astronomical time, and the signed offset applies either way.
func (p *Provider) eventTime(astronomical time.Time, fixed string, noon time.Time, offset time.Duration) time.Time {
	if fixed != "" {
		// Validated at config load
		hm, err := time.Parse("15:04", fixed)
		if err == nil {
			return time.Date(noon.Year(), noon.Month(), noon.Day(),
				hm.Hour(), hm.Minute(), 0, 0, p.loc).Add(offset)
		}
	}
	if astronomical.IsZero() {
		return time.Time{}
	}
	return astronomical.In(p.loc).Add(offset)
}

func clampTime(t, lo, hi time.Time) time.Time {
	if t.Before(lo) {
		return lo
	}
	if t.After(hi) {
		return hi
	}
	return t
}
