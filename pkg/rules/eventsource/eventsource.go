package eventsource

import (
	"github.com/tourops/backoffice/pkg/rules"
)

// EventSource feeds trigger events and engine commands from an external
// transport into the engine's channels.
type EventSource interface {
	Receive(queue string, commands chan *rules.Event, events chan *rules.Event, triggers []string) error
	Close()
}
