package repo

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/tourops/backoffice/pkg/rules"
)

type inMemoryRuleRepo struct {
	sync.RWMutex
	rules map[string]*rules.NotificationRule
	order []string
}

func NewInMemoryRuleRepo() RuleRepo {
	return &inMemoryRuleRepo{rules: make(map[string]*rules.NotificationRule)}
}

func (s *inMemoryRuleRepo) Name() string {
	return "in-memory"
}

func (s *inMemoryRuleRepo) Get(id string) (*rules.NotificationRule, error) {
	s.RLock()
	defer s.RUnlock()

	rule, ok := s.rules[id]
	if !ok {
		return nil, fmt.Errorf("rule not found with id: %s", id)
	}
	return rule, nil
}

func (s *inMemoryRuleRepo) Save(rule *rules.NotificationRule) error {
	if len(rule.ID) == 0 {
		return errors.New("rule id not specified")
	}

	s.Lock()
	defer s.Unlock()

	if _, ok := s.rules[rule.ID]; !ok {
		s.order = append(s.order, rule.ID)
	}
	s.rules[rule.ID] = rule
	return nil
}

func (s *inMemoryRuleRepo) Remove(id string) error {
	s.Lock()
	defer s.Unlock()

	delete(s.rules, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *inMemoryRuleRepo) RemoveAll() error {
	s.Lock()
	defer s.Unlock()

	s.rules = make(map[string]*rules.NotificationRule)
	s.order = nil
	return nil
}

func (s *inMemoryRuleRepo) ActiveForTrigger(trigger string) ([]*rules.NotificationRule, error) {
	return activeForTrigger(s, trigger)
}

func (s *inMemoryRuleRepo) Each(skip int, limit int, fn func(rule *rules.NotificationRule)) error {
	s.RLock()
	ids := append([]string{}, s.order...)
	s.RUnlock()

	sorted := ids
	if len(sorted) == 0 {
		// repo restored without order tracking, fall back to sorted ids
		s.RLock()
		for id := range s.rules {
			sorted = append(sorted, id)
		}
		s.RUnlock()
		sort.Strings(sorted)
	}

	i := 0
	for _, id := range sorted {
		if i < skip {
			i++
			continue
		}
		if limit > 0 && i >= skip+limit {
			break
		}
		rule, err := s.Get(id)
		if err != nil {
			continue
		}
		fn(rule)
		i++
	}
	return nil
}

func (s *inMemoryRuleRepo) Count() int {
	s.RLock()
	defer s.RUnlock()
	return len(s.rules)
}

func (s *inMemoryRuleRepo) Active() int {
	return countActive(s)
}

func (s *inMemoryRuleRepo) Close() {
	// no op
}
