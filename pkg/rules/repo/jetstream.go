package repo

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/tourops/backoffice/pkg/rules"
)

const BUCKET_NAME = "notification-rules"

// jetstreamRuleRepo keeps the rule catalog in a NATS JetStream KV
// bucket, handy when the event intake already rides on NATS and no
// relational database is deployed alongside.
type jetstreamRuleRepo struct {
	con *nats.Conn
	kv  nats.KeyValue
}

func NewJetstreamRuleRepo(natsURL string) (RuleRepo, error) {
	con, err := nats.Connect(natsURL)
	if err != nil {
		return nil, err
	}

	js, err := con.JetStream()
	if err != nil {
		con.Close()
		return nil, err
	}

	kv, err := js.KeyValue(BUCKET_NAME)
	if errors.Is(err, nats.ErrBucketNotFound) {
		kv, err = js.CreateKeyValue(&nats.KeyValueConfig{Bucket: BUCKET_NAME})
	}
	if err != nil {
		con.Close()
		return nil, err
	}

	return &jetstreamRuleRepo{con, kv}, nil
}

func (s *jetstreamRuleRepo) Name() string {
	return "jetstream"
}

func (s *jetstreamRuleRepo) Get(id string) (*rules.NotificationRule, error) {
	if len(id) == 0 {
		return nil, errors.New("id not specified")
	}

	entry, err := s.kv.Get(id)
	if err != nil {
		return nil, err
	}

	var r rules.NotificationRule
	err = json.Unmarshal(entry.Value(), &r)
	if err != nil {
		return nil, err
	}

	return &r, nil
}

func (s *jetstreamRuleRepo) Save(rule *rules.NotificationRule) error {
	if len(rule.ID) == 0 {
		return errors.New("id not specified")
	}

	val, err := json.Marshal(rule)
	if err != nil {
		return err
	}

	_, err = s.kv.Put(rule.ID, val)
	return err
}

func (s *jetstreamRuleRepo) Remove(id string) error {
	return s.kv.Purge(id)
}

func (s *jetstreamRuleRepo) RemoveAll() error {
	keys, err := s.keys()
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := s.kv.Purge(key); err != nil {
			return err
		}
	}
	return nil
}

func (s *jetstreamRuleRepo) ActiveForTrigger(trigger string) ([]*rules.NotificationRule, error) {
	return activeForTrigger(s, trigger)
}

func (s *jetstreamRuleRepo) Each(skip int, limit int, fn func(rule *rules.NotificationRule)) error {
	keys, err := s.keys()
	if err != nil {
		return err
	}

	i := 0
	for _, key := range keys {
		if i < skip {
			i++
			continue
		}
		if limit > 0 && i >= skip+limit {
			break
		}
		rule, err := s.Get(key)
		if err != nil {
			return fmt.Errorf("decode rule %s: %w", key, err)
		}
		fn(rule)
		i++
	}
	return nil
}

func (s *jetstreamRuleRepo) Count() int {
	keys, err := s.keys()
	if err != nil {
		return 0
	}
	return len(keys)
}

func (s *jetstreamRuleRepo) Active() int {
	return countActive(s)
}

func (s *jetstreamRuleRepo) Close() {
	s.con.Close()
}

func (s *jetstreamRuleRepo) keys() ([]string, error) {
	keys, err := s.kv.Keys()
	if errors.Is(err, nats.ErrNoKeysFound) {
		return nil, nil
	}
	return keys, err
}
