// $ go test -v pkg/rules/repo/*.go

package repo

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tourops/backoffice/pkg/rules"
)

func TestInMemoryRuleRepo(t *testing.T) {
	r := NewInMemoryRuleRepo()
	assert.Equal(t, "in-memory", r.Name())

	assert.Error(t, r.Save(&rules.NotificationRule{}))

	r.Save(&rules.NotificationRule{ID: "1", Active: true, TriggerEvent: "booking_cancelled", Priority: 1})
	r.Save(&rules.NotificationRule{ID: "2", Active: true, TriggerEvent: "booking_cancelled", Priority: 9})
	r.Save(&rules.NotificationRule{ID: "3", Active: false, TriggerEvent: "booking_cancelled", Priority: 5})
	r.Save(&rules.NotificationRule{ID: "4", Active: true, TriggerEvent: "sync_failure"})
	r.Save(&rules.NotificationRule{ID: "5", Active: true, TriggerEvent: "booking_cancelled", Priority: 9})

	assert.Equal(t, 5, r.Count())
	assert.Equal(t, 4, r.Active())

	got, err := r.Get("2")
	assert.Nil(t, err)
	assert.Equal(t, 9, got.Priority)

	_, err = r.Get("nope")
	assert.Error(t, err)

	// active for trigger: filtered, priority descending, stable tie-break
	match, err := r.ActiveForTrigger("booking_cancelled")
	assert.Nil(t, err)
	ids := []string{}
	for _, m := range match {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []string{"2", "5", "1"}, ids)

	match, err = r.ActiveForTrigger("voucher_uploaded")
	assert.Nil(t, err)
	assert.Len(t, match, 0)

	// paging
	var paged string
	r.Each(2, 2, func(rule *rules.NotificationRule) {
		paged += rule.ID
	})
	assert.Equal(t, "34", paged)

	r.Remove("1")
	assert.Equal(t, 4, r.Count())

	r.RemoveAll()
	assert.Equal(t, 0, r.Count())
}
