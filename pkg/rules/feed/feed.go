package feed

import (
	"github.com/tourops/backoffice/pkg/rules"
)

// Store persists matched notifications for the in-app feed.
// Append is called for every match regardless of the rule's delivery
// channels, the feed is the one place an event is always visible.
type Store interface {
	Name() string
	Append(n *rules.Notification) error
	Recent(limit int) ([]*rules.Notification, error)
	MarkRead(id string) error
	Close()
}
