package lighting

import (
	"github.com/chpego/adaptive-lighting/pkg/config"
)

// Mode determines how (and whether) the computed curve is applied.
type Mode int

const (
	// ModeAdaptive follows the circadian curve
	ModeAdaptive Mode = iota
	// ModeSleep applies the fixed sleep setting
	ModeSleep
	// ModeDisabled suppresses all adjustments
	ModeDisabled
)

func (m Mode) String() string {
	switch m {
	case ModeAdaptive:
		return "adaptive"
	case ModeSleep:
		return "sleep"
	case ModeDisabled:
		return "disabled"
	default:
		return "unknown"
	}
}

// EvaluateMode resolves the active mode from the disable and sleep entity
// states. Disabled takes precedence over Sleep over Adaptive. A full
// disable-state match is an unconditional override; the narrower
// disable_brightness_adjust option never changes the mode, it only strips
// brightness from an otherwise adaptive setting.
func EvaluateMode(disableState, sleepState string, cfg *config.Config) Mode {
	if cfg.DisableEntity != "" && stateMatches(disableState, cfg.DisableStates) {
		return ModeDisabled
	}
	if cfg.SleepEntity != "" && stateMatches(sleepState, cfg.SleepStates) {
		return ModeSleep
	}
	return ModeAdaptive
}

func stateMatches(state string, patterns []string) bool {
	if state == "" {
		return false
	}
	for _, p := range patterns {
		if state == p {
			return true
		}
	}
	return false
}
