// $ go test -v pkg/rules/repo/*.go

package repo

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tourops/backoffice/pkg/rules"
)

func TestBoltRuleRepo(t *testing.T) {
	r, err := NewBoltRuleRepo(filepath.Join(t.TempDir(), "rules.db"))
	assert.Nil(t, err)
	assert.Equal(t, "bolt", r.Name())
	defer r.Close()

	r.Save(&rules.NotificationRule{ID: "a", Active: true, TriggerEvent: "booking_cancelled", Priority: 1})
	r.Save(&rules.NotificationRule{ID: "b", Active: true, TriggerEvent: "booking_cancelled", Priority: 7})
	r.Save(&rules.NotificationRule{ID: "c", Active: false, TriggerEvent: "booking_cancelled", Priority: 9})

	assert.Equal(t, 3, r.Count())
	assert.Equal(t, 2, r.Active())

	got, err := r.Get("b")
	assert.Nil(t, err)
	assert.Equal(t, 7, got.Priority)

	_, err = r.Get("missing")
	assert.Error(t, err)

	match, err := r.ActiveForTrigger("booking_cancelled")
	assert.Nil(t, err)
	assert.Len(t, match, 2)
	assert.Equal(t, "b", match[0].ID)
	assert.Equal(t, "a", match[1].ID)

	assert.Nil(t, r.Remove("a"))
	assert.Equal(t, 2, r.Count())

	assert.Nil(t, r.RemoveAll())
	assert.Equal(t, 0, r.Count())
}
