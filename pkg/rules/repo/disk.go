package repo

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/tourops/backoffice/pkg/rules"
)

// diskRuleRepo reads rules from yaml/json files under a directory.
// Read-only: authoring happens elsewhere, the files are deployed config.
type diskRuleRepo struct {
	root string
}

func NewDiskRuleRepo(root string) RuleRepo {
	return &diskRuleRepo{root}
}

func (s *diskRuleRepo) Name() string {
	return "disk"
}

func (s *diskRuleRepo) Get(id string) (*rules.NotificationRule, error) {
	var found *rules.NotificationRule
	err := s.Each(0, 0, func(r *rules.NotificationRule) {
		if r.ID == id {
			found = r
		}
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, errors.New("rule not found with id: " + id)
	}
	return found, nil
}

func (s *diskRuleRepo) Save(rule *rules.NotificationRule) error {
	return errors.New("disk repo is read-only")
}

func (s *diskRuleRepo) Remove(id string) error {
	return errors.New("disk repo is read-only")
}

func (s *diskRuleRepo) RemoveAll() error {
	return errors.New("disk repo is read-only")
}

func (s *diskRuleRepo) ActiveForTrigger(trigger string) ([]*rules.NotificationRule, error) {
	return activeForTrigger(s, trigger)
}

func (s *diskRuleRepo) Each(skip int, limit int, fn func(rule *rules.NotificationRule)) error {
	i := 0
	return filepath.Walk(s.root, func(path string, f os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if f.IsDir() {
			return nil
		}
		data, e := os.ReadFile(path)
		if e != nil {
			return e
		}
		r, e := decode(data)
		if e != nil {
			return e
		}
		if i < skip {
			i++
			return nil
		}
		if limit > 0 && i >= skip+limit {
			return filepath.SkipAll
		}
		fn(r)
		i++
		return nil
	})
}

func (s *diskRuleRepo) Count() int {
	count := 0
	s.Each(0, 0, func(r *rules.NotificationRule) {
		count++
	})
	return count
}

func (s *diskRuleRepo) Active() int {
	return countActive(s)
}

func (s *diskRuleRepo) Close() {
	// no op
}
