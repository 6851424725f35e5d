package feed

import (
	"fmt"
	"sync"

	"github.com/tourops/backoffice/pkg/rules"
)

type inMemoryStore struct {
	sync.Mutex
	items []*rules.Notification
}

func NewInMemoryStore() Store {
	return &inMemoryStore{}
}

func (s *inMemoryStore) Name() string {
	return "in-memory"
}

func (s *inMemoryStore) Append(n *rules.Notification) error {
	s.Lock()
	defer s.Unlock()

	// newest first
	s.items = append([]*rules.Notification{n}, s.items...)
	return nil
}

func (s *inMemoryStore) Recent(limit int) ([]*rules.Notification, error) {
	s.Lock()
	defer s.Unlock()

	if limit <= 0 || limit > len(s.items) {
		limit = len(s.items)
	}
	res := make([]*rules.Notification, limit)
	copy(res, s.items[:limit])
	return res, nil
}

func (s *inMemoryStore) MarkRead(id string) error {
	s.Lock()
	defer s.Unlock()

	for _, n := range s.items {
		if n.ID == id {
			n.Read = true
			return nil
		}
	}
	return fmt.Errorf("notification not found with id: %s", id)
}

func (s *inMemoryStore) Close() {
	// no op
}
