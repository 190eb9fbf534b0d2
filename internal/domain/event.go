package domain

import "encoding/json"

// EventNotification is the generic event name every dispatch is mirrored
// under, so clients can subscribe to a single channel instead of
// enumerating entity event names.
const EventNotification = "notification"

// Target narrows a delivery to a single room. A nil/empty target means
// broadcast to every connected client.
type Target struct {
	Room string `json:"room,omitempty"`
}

// Envelope is the normalized domain event: a type tag, an opaque payload
// the relay never introspects, and an optional room target. Immutable
// after construction.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Target  *Target         `json:"target,omitempty"`
}

// Room returns the target room, or "" for a broadcast envelope.
func (e Envelope) Room() string {
	if e.Target == nil {
		return ""
	}
	return e.Target.Room
}

// Frame is the JSON message written to a websocket client.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// EntityEvent builds the dotted event name the upstream backend uses for
// entity webhooks, e.g. "animal.created".
func EntityEvent(entity, action string) string {
	return entity + "." + action
}

// CRUDEvent builds the underscore event name the CRUD API emits,
// e.g. "animal_created".
func CRUDEvent(entity, action string) string {
	return entity + "_" + action
}

// ValidEntityEvent reports whether typ is one of the three lifecycle
// events for the given entity.
func ValidEntityEvent(entity, typ string) bool {
	switch typ {
	case EntityEvent(entity, ActionCreated),
		EntityEvent(entity, ActionUpdated),
		EntityEvent(entity, ActionDeleted):
		return true
	}
	return false
}
