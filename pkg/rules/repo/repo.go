package repo

import (
	"encoding/json"
	"sort"

	yaml "gopkg.in/yaml.v2"

	"github.com/tourops/backoffice/pkg/rules"
)

// RuleRepo is the rule store read by the evaluator and written by the
// administrative CRUD surface. ActiveForTrigger is the evaluator's only
// entry point: active rules for one trigger, priority descending.
type RuleRepo interface {
	Name() string
	Get(id string) (*rules.NotificationRule, error)
	Save(rule *rules.NotificationRule) error
	Remove(id string) error
	RemoveAll() error
	ActiveForTrigger(trigger string) ([]*rules.NotificationRule, error)
	Each(skip int, limit int, fn func(rule *rules.NotificationRule)) error
	Count() int
	Active() int
	Close()
}

func isJson(data []byte) bool {
	var js json.RawMessage
	return json.Unmarshal(data, &js) == nil
}

func decode(data []byte) (*rules.NotificationRule, error) {
	r := &rules.NotificationRule{}
	if isJson(data) {
		err := json.Unmarshal(data, r)
		if err != nil {
			return nil, err
		}
		return r, nil
	}
	err := yaml.Unmarshal(data, r)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// activeForTrigger implements ActiveForTrigger for the kv-backed repos
// by scanning and filtering in-process. SliceStable keeps insertion
// order as the tie-break for equal priorities.
func activeForTrigger(r RuleRepo, trigger string) ([]*rules.NotificationRule, error) {
	match := make([]*rules.NotificationRule, 0)
	err := r.Each(0, 0, func(rule *rules.NotificationRule) {
		if rule.Active && rule.TriggerEvent == trigger {
			match = append(match, rule)
		}
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(match, func(i, j int) bool {
		return match[i].Priority > match[j].Priority
	})
	return match, nil
}

func countActive(r RuleRepo) int {
	c := 0
	r.Each(0, 0, func(rule *rules.NotificationRule) {
		if rule.Active {
			c++
		}
	})
	return c
}
