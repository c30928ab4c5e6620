package mqtt

import (
	"fmt"
	"strings"
)

// Topic layout for the adaptive lighting agent.
//
// Entity state snapshots are published by the device layer on
// automation/state/{entity_id}; the agent only ever consumes these.
// Light commands flow the other way on automation/command/light/{entity_id}.
// The adaptive switch is controlled on its own set/state pair.
const (
	// Entity state snapshots from the device layer (input)
	TopicEntityStates = "automation/state/+"

	topicStatePrefix        = "automation/state/"
	topicLightCommandPrefix = "automation/command/light/"
)

// EntityStateTopic constructs the state topic for a specific entity.
// Pattern: automation/state/{entity_id}
func EntityStateTopic(entityID string) string {
	return topicStatePrefix + entityID
}

// LightCommandTopic constructs the command topic for a specific light.
// Pattern: automation/command/light/{entity_id}
func LightCommandTopic(entityID string) string {
	return topicLightCommandPrefix + entityID
}

// SwitchSetTopic constructs the command topic for the adaptive switch.
// Pattern: automation/switch/{name}/set
func SwitchSetTopic(name string) string {
	return fmt.Sprintf("automation/switch/%s/set", name)
}

// SwitchStateTopic constructs the state topic for the adaptive switch.
// Pattern: automation/switch/{name}/state
func SwitchStateTopic(name string) string {
	return fmt.Sprintf("automation/switch/%s/state", name)
}

// EntityFromStateTopic extracts the entity ID from a state topic.
// Returns false if the topic is not a state topic.
func EntityFromStateTopic(topic string) (string, bool) {
	id, ok := strings.CutPrefix(topic, topicStatePrefix)
	if !ok || id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}
