package lighting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chpego/adaptive-lighting/internal/sun"
	"github.com/chpego/adaptive-lighting/pkg/config"
	"github.com/chpego/adaptive-lighting/pkg/mqtt"
	"github.com/chpego/adaptive-lighting/pkg/redis"
)

// Agent is the adaptive lighting scheduler. A repeating ticker recomputes
// the circadian setting and applies it to every configured light that is
// on; an off-to-on transition of a light triggers an immediate one-shot
// apply with the initial transition.
type Agent struct {
	mqtt   mqtt.Client
	redis  redis.Client
	cfg    *config.Config
	logger *slog.Logger

	sun      *sun.Provider
	tracker  *Tracker
	applier  *Applier
	adaptive *Switch
	once     *OnceGuard

	// Per-entity apply serialization: a new cycle must not start an
	// apply for an entity while the previous one is still in flight.
	entityLocksMu sync.Mutex
	entityLocks   map[string]*sync.Mutex

	lightSet map[string]bool

	ticker   *time.Ticker
	stopChan chan struct{}
}

// NewAgent creates a new adaptive lighting agent
func NewAgent(mqttClient mqtt.Client, redisClient redis.Client, sunProvider *sun.Provider, cfg *config.Config, logger *slog.Logger) *Agent {
	lightSet := make(map[string]bool, len(cfg.Lights))
	for _, id := range cfg.Lights {
		lightSet[id] = true
	}

	return &Agent{
		mqtt:        mqttClient,
		redis:       redisClient,
		cfg:         cfg,
		logger:      logger,
		sun:         sunProvider,
		tracker:     NewTracker(logger),
		applier:     NewApplier(mqttClient, logger),
		adaptive:    NewSwitch(cfg, mqttClient, redisClient, logger),
		once:        NewOnceGuard(),
		entityLocks: make(map[string]*sync.Mutex),
		lightSet:    lightSet,
		stopChan:    make(chan struct{}),
	}
}

// Start starts the agent and begins processing
func (a *Agent) Start(ctx context.Context) error {
	a.logger.Info("Starting adaptive lighting agent",
		"service_name", a.cfg.ServiceName,
		"switch", a.cfg.Name,
		"lights", a.cfg.Lights,
		"interval_sec", a.cfg.IntervalSec,
		"only_once", a.cfg.OnlyOnce)

	// Connect to MQTT broker
	if err := a.mqtt.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to MQTT: %w", err)
	}

	// Verify Redis connection
	if err := a.redis.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}

	// Restore the adaptive switch and attach it to its set topic
	if err := a.adaptive.Restore(ctx); err != nil {
		return err
	}
	if err := a.adaptive.Subscribe(); err != nil {
		return err
	}

	// Subscribe to entity state snapshots
	a.tracker.OnTurnedOn(a.handleEntityTurnedOn)
	if err := a.mqtt.Subscribe(mqtt.TopicEntityStates, 0, a.tracker.HandleStateMessage); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", mqtt.TopicEntityStates, err)
	}
	a.logger.Info("Subscribed to entity states", "topic", mqtt.TopicEntityStates)

	// Start the adjustment loop
	a.startAdjustmentLoop()

	a.logger.Info("Adaptive lighting agent started and ready")

	// Block until context is cancelled
	<-ctx.Done()
	a.logger.Info("Adaptive lighting agent stopping")

	return nil
}

// Stop gracefully stops the agent. In-flight applies finish on their own;
// only the timer and trigger sources are cancelled.
func (a *Agent) Stop() error {
	a.logger.Info("Stopping adaptive lighting agent")

	if a.ticker != nil {
		a.ticker.Stop()
	}
	close(a.stopChan)

	a.mqtt.Disconnect()

	if err := a.redis.Close(); err != nil {
		a.logger.Error("Error closing Redis connection", "error", err)
		return err
	}

	a.logger.Info("Adaptive lighting agent stopped")
	return nil
}

// Switch exposes the adaptive toggle (for health/introspection)
func (a *Agent) Switch() *Switch {
	return a.adaptive
}

// startAdjustmentLoop starts the periodic adjustment ticker
func (a *Agent) startAdjustmentLoop() {
	a.ticker = time.NewTicker(a.cfg.Interval())

	go func() {
		a.logger.Info("Starting adjustment loop", "interval_sec", a.cfg.IntervalSec)
		for {
			select {
			case <-a.ticker.C:
				a.adjustAll(time.Now())
			case <-a.stopChan:
				return
			}
		}
	}()
}

// adjustAll runs one periodic adjustment cycle over all configured lights
func (a *Agent) adjustAll(now time.Time) {
	setting, mode, ok := a.currentSetting(now, a.cfg.TransitionSec)
	if !ok {
		return
	}

	a.logger.Debug("Adjustment cycle",
		"mode", mode.String(),
		"color_temp", setting.ColorTemp,
		"brightness", setting.Brightness,
		"sun_altitude", a.sun.Altitude(now))

	for _, entityID := range a.cfg.Lights {
		state, known := a.tracker.State(entityID)
		if !known || !state.On() {
			continue
		}
		if a.cfg.OnlyOnce && !a.once.ShouldApply(entityID) {
			continue
		}

		// One entity's failure must not block the rest of the cycle
		if err := a.applyTo(entityID, setting, state.Features, "interval"); err != nil {
			a.logger.Error("Failed to apply setting",
				"entity_id", entityID,
				"error", err)
			continue
		}
		a.once.MarkApplied(entityID)
	}
}

// handleEntityTurnedOn performs the one-shot apply when a configured light
// turns on, using the initial transition. The turn-on starts a new
// on-session for only_once tracking.
func (a *Agent) handleEntityTurnedOn(entityID string) {
	if !a.lightSet[entityID] {
		return
	}

	a.once.Reset(entityID)

	setting, mode, ok := a.currentSetting(time.Now(), a.cfg.InitialTransitionSec)
	if !ok {
		return
	}

	state, known := a.tracker.State(entityID)
	if !known {
		return
	}

	a.logger.Info("Applying initial setting to freshly turned-on light",
		"entity_id", entityID,
		"mode", mode.String(),
		"color_temp", setting.ColorTemp,
		"brightness", setting.Brightness)

	if err := a.applyTo(entityID, setting, state.Features, "turn_on"); err != nil {
		a.logger.Error("Failed to apply initial setting",
			"entity_id", entityID,
			"error", err)
		return
	}
	a.once.MarkApplied(entityID)
}

// currentSetting evaluates the override gate and computes the target
// setting for this cycle. ok is false when nothing should be applied.
func (a *Agent) currentSetting(now time.Time, transitionSec float64) (Setting, Mode, bool) {
	if !a.adaptive.IsOn() {
		a.logger.Debug("Adaptive switch off, skipping cycle")
		cyclesSkipped.WithLabelValues("switch_off").Inc()
		return Setting{}, ModeAdaptive, false
	}

	mode := EvaluateMode(
		a.tracker.StateValue(a.cfg.DisableEntity),
		a.tracker.StateValue(a.cfg.SleepEntity),
		a.cfg,
	)

	switch mode {
	case ModeDisabled:
		a.logger.Debug("Adaptation disabled by entity state",
			"disable_entity", a.cfg.DisableEntity)
		cyclesSkipped.WithLabelValues("disabled").Inc()
		return Setting{}, mode, false

	case ModeSleep:
		setting := SleepSetting(a.cfg)
		setting.TransitionSec = transitionSec
		return setting, mode, true
	}

	anchors, err := a.sun.Anchors(now)
	if err != nil {
		if errors.Is(err, sun.ErrLocationUnavailable) {
			// Skip this cycle; lights keep their previous setting
			a.logger.Warn("Sun anchors unavailable, skipping cycle", "error", err)
			cyclesSkipped.WithLabelValues("location_unavailable").Inc()
			return Setting{}, mode, false
		}
		a.logger.Error("Sun anchor computation failed", "error", err)
		cyclesSkipped.WithLabelValues("sun_error").Inc()
		return Setting{}, mode, false
	}

	setting := ComputeSetting(now, anchors, a.cfg)
	setting.TransitionSec = transitionSec

	// Brightness-only suppression on top of an active adaptive mode
	if a.cfg.DisableBrightnessAdjust {
		setting.Brightness = 0
	}

	return setting, mode, true
}

// applyTo issues one apply call, serialized per entity
func (a *Agent) applyTo(entityID string, setting Setting, features Features, trigger string) error {
	lock := a.entityLock(entityID)
	lock.Lock()
	defer lock.Unlock()

	if err := a.applier.Apply(entityID, setting, features); err != nil {
		applyFailures.WithLabelValues(entityID).Inc()
		return err
	}
	settingsApplied.WithLabelValues(entityID, trigger).Inc()
	return nil
}

func (a *Agent) entityLock(entityID string) *sync.Mutex {
	a.entityLocksMu.Lock()
	defer a.entityLocksMu.Unlock()
	lock, ok := a.entityLocks[entityID]
	if !ok {
		lock = &sync.Mutex{}
		a.entityLocks[entityID] = lock
	}
	return lock
}
