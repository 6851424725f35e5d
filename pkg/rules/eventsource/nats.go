package eventsource

import (
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nkeys"

	"github.com/tourops/backoffice/pkg/rules"
)

// SubjectPrefix namespaces trigger subjects on the wire,
// e.g. events.booking_cancelled.
const SubjectPrefix = "events."

type natsEventSource struct {
	url      string
	nkeySeed string
	con      *nats.Conn
	cmdSub   *nats.Subscription
	workSubs []*nats.Subscription
}

// NewNatsEventSource connects the engine to NATS. nkeySeed is optional;
// when set the connection authenticates by signing the server nonce.
func NewNatsEventSource(url string, nkeySeed string) EventSource {
	return &natsEventSource{url: url, nkeySeed: nkeySeed}
}

func (s *natsEventSource) Receive(queue string, commands chan *rules.Event, events chan *rules.Event, triggers []string) error {
	opts := []nats.Option{
		nats.ErrorHandler(errorHandler),
		nats.DisconnectHandler(disconnectHandler),
		nats.ReconnectHandler(reconnectHandler),
		nats.ClosedHandler(closedHandler),
	}

	if len(s.nkeySeed) > 0 {
		opt, err := nkeyOption(s.nkeySeed)
		if err != nil {
			return err
		}
		opts = append(opts, opt)
	}

	var err error
	s.con, err = nats.Connect(s.url, opts...)
	if err != nil {
		return err
	}

	// subscription for commands
	s.cmdSub, err = s.con.Subscribe(rules.EventPrefix+"*", func(msg *nats.Msg) {
		_, cmd := rules.CommandTopics[msg.Subject]
		if cmd {
			commands <- &rules.Event{
				Trigger: msg.Subject,
			}
		}
	})
	if err != nil {
		return err
	}

	// queue subscription per trigger subject
	for _, trigger := range triggers {
		sub, err := s.subscribe(queue, events, trigger)
		if err != nil {
			return err
		}
		s.workSubs = append(s.workSubs, sub)
	}

	return nil
}

func (s *natsEventSource) subscribe(queue string, events chan *rules.Event, trigger string) (*nats.Subscription, error) {
	sub, err := s.con.QueueSubscribe(SubjectPrefix+trigger, queue, func(msg *nats.Msg) {
		go func() {
			events <- &rules.Event{
				Received: time.Now().UTC(),
				Trigger:  strings.TrimPrefix(msg.Subject, SubjectPrefix),
				Data:     msg.Data,
			}
		}()
	})
	if err != nil {
		return nil, err
	}

	// set no limits for workload subscriptions, just in case
	err = sub.SetPendingLimits(-1, -1)
	if err != nil {
		return nil, err
	}

	return sub, nil
}

func (s *natsEventSource) Close() {
	if s.cmdSub != nil {
		s.cmdSub.Unsubscribe()
	}
	for _, sub := range s.workSubs {
		sub.Unsubscribe()
	}
	if s.con != nil {
		s.con.Close()
	}
}

func nkeyOption(seed string) (nats.Option, error) {
	kp, err := nkeys.FromSeed([]byte(seed))
	if err != nil {
		return nil, err
	}
	pub, err := kp.PublicKey()
	if err != nil {
		return nil, err
	}
	return nats.Nkey(pub, func(nonce []byte) ([]byte, error) {
		return kp.Sign(nonce)
	}), nil
}

// error handler helper functions

func errorHandler(nc *nats.Conn, sub *nats.Subscription, err error) {
	slog.Error("nats error", "err", err.Error())

	if err == nats.ErrSlowConsumer {
		pendingMsgs, pendingBytes, err := sub.Pending()
		if err != nil {
			slog.Error("failed to get pending messages", "err", err.Error())
			return
		}
		droppedMsgs, err := sub.Dropped()
		if err != nil {
			slog.Error("failed to get dropped messages", "err", err.Error())
			return
		}
		slog.Error("falling behind with pending messages",
			"droppedMsgs", droppedMsgs,
			"pendingMsgs", pendingMsgs,
			"pendingBytes", pendingBytes,
			"subject", sub.Subject,
		)
	}
}

func disconnectHandler(nc *nats.Conn) {
	slog.Debug("nats disconnected", "lastError", nc.LastError())
}

func reconnectHandler(nc *nats.Conn) {
	slog.Debug("nats reconnected", "url", nc.ConnectedUrl())
}

func closedHandler(nc *nats.Conn) {
	slog.Debug("nats connection closed", "reason", nc.LastError())
}
