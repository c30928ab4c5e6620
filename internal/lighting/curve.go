package lighting

import (
	"math"
	"time"

	"github.com/chpego/adaptive-lighting/internal/sun"
	"github.com/chpego/adaptive-lighting/pkg/config"
)

// ComputeSetting maps a point in time onto the circadian curve: a
// four-point piecewise linear interpolation over
// midnight -> sunrise -> noon -> sunset -> next midnight.
//
// Solar midnight anchors the warm/dim extreme (min color temp, min
// brightness) and solar noon the cool/bright extreme. Sunrise and sunset
// sit at the midpoint of each range, so with a symmetric sun the curve is
// a straight ramp and the configured offsets bend it without moving the
// midnight/noon extremes. Kelvin is interpolated linearly; mired
// conversion happens at the device boundary.
func ComputeSetting(now time.Time, anchors sun.Anchors, cfg *config.Config) Setting {
	knots := []time.Time{
		anchors.Midnight,
		anchors.Sunrise,
		anchors.Noon,
		anchors.Sunset,
		anchors.NextMidnight,
	}

	minCT, maxCT := float64(cfg.MinColorTemp), float64(cfg.MaxColorTemp)
	minBR, maxBR := float64(cfg.MinBrightness), float64(cfg.MaxBrightness)
	midCT := (minCT + maxCT) / 2
	midBR := (minBR + maxBR) / 2

	ctValues := []float64{minCT, midCT, maxCT, midCT, minCT}
	brValues := []float64{minBR, midBR, maxBR, midBR, minBR}

	ct := interpolate(now, knots, ctValues)
	br := interpolate(now, knots, brValues)

	return Setting{
		ColorTemp:     clamp(int(math.Round(ct)), cfg.MinColorTemp, cfg.MaxColorTemp),
		Brightness:    clamp(int(math.Round(br)), cfg.MinBrightness, cfg.MaxBrightness),
		TransitionSec: cfg.TransitionSec,
	}
}

// interpolate evaluates a piecewise linear curve through (knots, values).
// Exactly-on-knot times return the knot's canonical value, a collapsed
// segment yields the nearer knot's value, and times outside the knot span
// clamp to the edge values.
func interpolate(t time.Time, knots []time.Time, values []float64) float64 {
	if !t.After(knots[0]) {
		return values[0]
	}
	last := len(knots) - 1
	if !t.Before(knots[last]) {
		return values[last]
	}

	for i := 0; i < last; i++ {
		if t.Equal(knots[i]) {
			return values[i]
		}
		if t.After(knots[i+1]) {
			continue
		}
		duration := knots[i+1].Sub(knots[i])
		if duration <= 0 {
			return values[i+1]
		}
		frac := float64(t.Sub(knots[i])) / float64(duration)
		return values[i] + (values[i+1]-values[i])*frac
	}

	return values[last]
}
