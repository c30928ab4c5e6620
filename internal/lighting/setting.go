package lighting

import (
	"github.com/chpego/adaptive-lighting/pkg/config"
)

// Features is the capability set a light entity reports.
type Features uint8

const (
	FeatureBrightness Features = 1 << iota
	FeatureColorTemp
	FeatureColor
	FeatureTransition
)

// Has reports whether all of the given capabilities are present.
func (f Features) Has(want Features) bool {
	return f&want == want
}

// ParseFeatures converts the feature names from an entity state message
// into a capability set. Unknown names are ignored.
func ParseFeatures(names []string) Features {
	var f Features
	for _, n := range names {
		switch n {
		case "brightness":
			f |= FeatureBrightness
		case "color_temp":
			f |= FeatureColorTemp
		case "color":
			f |= FeatureColor
		case "transition":
			f |= FeatureTransition
		}
	}
	return f
}

// Setting is a computed lighting target. Zero in ColorTemp or Brightness
// means the field is not applicable and must not be applied.
type Setting struct {
	ColorTemp     int     // Kelvin, 0 = not applicable
	Brightness    int     // percent 1-100, 0 = not applicable
	TransitionSec float64 // fade duration in seconds
}

// SleepSetting returns the fixed sleep-mode setting. Sleep values are
// constants from the configuration, never interpolated.
func SleepSetting(cfg *config.Config) Setting {
	return Setting{
		ColorTemp:     cfg.SleepColorTemp,
		Brightness:    cfg.SleepBrightness,
		TransitionSec: cfg.TransitionSec,
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
