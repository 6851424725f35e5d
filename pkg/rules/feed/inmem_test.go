// $ go test -v pkg/rules/feed/*.go

package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tourops/backoffice/pkg/rules"
)

func TestInMemoryStore(t *testing.T) {
	s := NewInMemoryStore()
	assert.Equal(t, "in-memory", s.Name())

	s.Append(&rules.Notification{ID: "1", Title: "first", Created: time.Now().UTC()})
	s.Append(&rules.Notification{ID: "2", Title: "second", Created: time.Now().UTC()})
	s.Append(&rules.Notification{ID: "3", Title: "third", Created: time.Now().UTC()})

	// newest first
	recent, err := s.Recent(0)
	assert.Nil(t, err)
	assert.Len(t, recent, 3)
	assert.Equal(t, "3", recent[0].ID)

	recent, err = s.Recent(2)
	assert.Nil(t, err)
	assert.Len(t, recent, 2)
	assert.Equal(t, "3", recent[0].ID)
	assert.Equal(t, "2", recent[1].ID)

	assert.Nil(t, s.MarkRead("2"))
	recent, _ = s.Recent(0)
	assert.True(t, recent[1].Read)
	assert.False(t, recent[0].Read)

	assert.Error(t, s.MarkRead("nope"))
}
