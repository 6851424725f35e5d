package notify

import (
	"github.com/tourops/backoffice/pkg/rules"
)

// Pusher delivers a payload to every subscribed admin endpoint.
// Provider success/failure is opaque to the engine beyond the error.
type Pusher interface {
	Send(payload *rules.PushPayload) error
}

// Mailer delivers an outbound email through the configured provider.
type Mailer interface {
	Send(msg *rules.EmailMessage) error
}
