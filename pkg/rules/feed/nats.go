package feed

import (
	"time"

	"github.com/nats-io/nats.go"
	"github.com/tidwall/sjson"

	"github.com/tourops/backoffice/pkg/rules"
)

const FeedSubject = "feed.notifications"

// Publisher pushes matched notifications onto a NATS subject so
// connected back-office UIs can update their feed live.
type Publisher struct {
	con *nats.Conn
}

func NewPublisher(con *nats.Conn) *Publisher {
	return &Publisher{con}
}

func (p *Publisher) Publish(n *rules.Notification) error {
	msg, err := feedMessage(n)
	if err != nil {
		return err
	}
	return p.con.Publish(FeedSubject, msg)
}

func feedMessage(n *rules.Notification) ([]byte, error) {
	var msg []byte
	var err error

	for _, kv := range []struct {
		path  string
		value interface{}
	}{
		{"id", n.ID},
		{"ruleId", n.RuleID},
		{"trigger", n.Trigger},
		{"severity", n.Severity},
		{"title", n.Title},
		{"body", n.Body},
		{"actionUrl", n.ActionURL},
		{"created", n.Created.Format(time.RFC3339Nano)},
	} {
		msg, err = sjson.SetBytes(msg, kv.path, kv.value)
		if err != nil {
			return nil, err
		}
	}

	return msg, nil
}
