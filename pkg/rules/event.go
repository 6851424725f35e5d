package rules

import (
	"time"

	"github.com/tidwall/gjson"
)

const (
	EventPrefix = "notify."
	Status      = EventPrefix + "status"
	CmdStop     = EventPrefix + "stop"
	CmdResume   = EventPrefix + "resume"
)

var (
	// using an empty struct{} here has the advantage that it doesn't require any additional space
	// and go's internal map type is optimized for that kind of values
	CommandTopics = map[string]struct{}{
		CmdStop:   {},
		CmdResume: {},
	}
)

// Event is the raw intake shape: a trigger topic plus its undecoded payload.
type Event struct {
	Received time.Time `json:"received"`
	Trigger  string    `json:"trigger"`
	Data     []byte    `json:"data"`
}

// EventContext is the decoded, ephemeral input to a single evaluation:
// the trigger name and a flat map of event attributes. Constructed fresh
// per invocation, never persisted.
type EventContext struct {
	Trigger string                 `json:"trigger"`
	Data    map[string]interface{} `json:"data"`
}

// NewEventContext decodes a raw event payload into evaluation input.
// Non-object payloads yield an empty attribute map rather than an error,
// a malformed producer then simply matches no field conditions.
func NewEventContext(trigger string, payload []byte) *EventContext {
	ctx := &EventContext{Trigger: trigger, Data: map[string]interface{}{}}
	if m, ok := gjson.ParseBytes(payload).Value().(map[string]interface{}); ok {
		ctx.Data = m
	}
	return ctx
}
