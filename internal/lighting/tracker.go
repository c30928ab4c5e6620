package lighting

import (
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/chpego/adaptive-lighting/pkg/mqtt"
)

// EntityState is the read-only view of an entity as reported by the
// device layer.
type EntityState struct {
	ID        string
	State     string
	Features  Features
	UpdatedAt time.Time
}

// On reports whether the entity is switched on.
func (e EntityState) On() bool {
	return strings.EqualFold(e.State, "on")
}

// TurnOnHandler is invoked when a tracked entity transitions from off to on.
type TurnOnHandler func(entityID string)

// Tracker keeps the latest known state of every entity seen on the state
// topic and notifies a handler about off-to-on transitions.
type Tracker struct {
	logger *slog.Logger

	mu       sync.RWMutex
	states   map[string]EntityState
	onTurnOn TurnOnHandler
}

// NewTracker creates an empty entity state tracker
func NewTracker(logger *slog.Logger) *Tracker {
	return &Tracker{
		logger: logger,
		states: make(map[string]EntityState),
	}
}

// OnTurnedOn registers the off-to-on transition handler. Must be called
// before the tracker is subscribed.
func (t *Tracker) OnTurnedOn(h TurnOnHandler) {
	t.onTurnOn = h
}

// HandleStateMessage ingests an entity state snapshot from MQTT.
// Payload: {"state": "on", "features": ["brightness", "color_temp"]}
func (t *Tracker) HandleStateMessage(msg mqtt.Message) {
	entityID, ok := mqtt.EntityFromStateTopic(msg.Topic())
	if !ok {
		t.logger.Warn("Invalid entity state topic", "topic", msg.Topic())
		return
	}

	var stateMsg struct {
		State    string   `json:"state"`
		Features []string `json:"features"`
	}
	if err := json.Unmarshal(msg.Payload(), &stateMsg); err != nil {
		t.logger.Error("Failed to parse entity state message",
			"entity_id", entityID,
			"error", err)
		return
	}

	next := EntityState{
		ID:        entityID,
		State:     stateMsg.State,
		Features:  ParseFeatures(stateMsg.Features),
		UpdatedAt: time.Now(),
	}

	t.mu.Lock()
	prev, seen := t.states[entityID]
	t.states[entityID] = next
	t.mu.Unlock()

	t.logger.Debug("Entity state updated",
		"entity_id", entityID,
		"state", stateMsg.State)

	// Retained snapshots seen at startup are not transitions: only a
	// genuine off-to-on change fires the handler.
	if seen && !prev.On() && next.On() && t.onTurnOn != nil {
		t.logger.Info("Entity turned on", "entity_id", entityID)
		t.onTurnOn(entityID)
	}
}

// State returns the latest known state of an entity.
func (t *Tracker) State(entityID string) (EntityState, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	st, ok := t.states[entityID]
	return st, ok
}

// StateValue returns the raw state string of an entity, or "" if the
// entity has never been seen.
func (t *Tracker) StateValue(entityID string) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.states[entityID].State
}
