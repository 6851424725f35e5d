package repo

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tourops/backoffice/pkg/rules"
	"github.com/tourops/backoffice/pkg/store"
	boltstore "github.com/tourops/backoffice/pkg/store/bolt"
	redistore "github.com/tourops/backoffice/pkg/store/redis"
)

const (
	RULE_PREFIX = "rules" // => rules:id {..}
)

// kvRuleRepo backs the rule catalog with any pkg/store implementation,
// redis for shared deployments and bolt for single-node ones.
type kvRuleRepo struct {
	name   string
	store  store.Store
	prefix string
}

func NewRedisRuleRepo(redisStoreURL string) (RuleRepo, error) {
	return &kvRuleRepo{"redis", redistore.New(redisStoreURL), RULE_PREFIX}, nil
}

func NewBoltRuleRepo(storePath string) (RuleRepo, error) {
	return &kvRuleRepo{"bolt", boltstore.New(storePath, RULE_PREFIX), RULE_PREFIX}, nil
}

func (s *kvRuleRepo) Name() string {
	return s.name
}

func (s *kvRuleRepo) Get(id string) (*rules.NotificationRule, error) {
	key, err := fmtKey(id, s.prefix)
	if err != nil {
		return nil, err
	}

	val, err := s.store.Get(key)
	if err != nil {
		return nil, err
	}
	if val == nil {
		return nil, fmt.Errorf("rule not found with id: %s", id)
	}

	var r rules.NotificationRule
	err = json.Unmarshal(val, &r)
	if err != nil {
		return nil, err
	}

	return &r, nil
}

func (s *kvRuleRepo) Save(rule *rules.NotificationRule) error {
	key, err := fmtKey(rule.ID, s.prefix)
	if err != nil {
		return err
	}

	val, err := json.Marshal(rule)
	if err != nil {
		return err
	}

	return s.store.Set(key, val, nil)
}

func (s *kvRuleRepo) Remove(id string) error {
	key, err := fmtKey(id, s.prefix)
	if err != nil {
		return err
	}

	return s.store.Delete(key)
}

func (s *kvRuleRepo) RemoveAll() error {
	return s.store.DeleteAll(s.prefix + ":*")
}

func (s *kvRuleRepo) ActiveForTrigger(trigger string) ([]*rules.NotificationRule, error) {
	return activeForTrigger(s, trigger)
}

func (s *kvRuleRepo) Each(skip int, limit int, fn func(rule *rules.NotificationRule)) error {
	return s.store.Scan(s.prefix+":*", skip, limit, func(key string, val []byte) {
		var r rules.NotificationRule
		err := json.Unmarshal(val, &r)
		if err != nil {
			return
		}
		fn(&r)
	})
}

func (s *kvRuleRepo) Count() int {
	return s.store.Count(s.prefix + ":*")
}

func (s *kvRuleRepo) Active() int {
	return countActive(s)
}

func (s *kvRuleRepo) Close() {
	s.store.Close()
}

func fmtKey(id string, prefix string) (string, error) {
	if len(id) == 0 {
		return "", errors.New("id not specified")
	}
	return fmt.Sprintf("%s:%s", prefix, id), nil
}
