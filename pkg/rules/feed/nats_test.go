// $ go test -v pkg/rules/feed/*.go

package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"

	"github.com/tourops/backoffice/pkg/rules"
)

func TestFeedMessage(t *testing.T) {
	created := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	msg, err := feedMessage(&rules.Notification{
		ID:       "n1",
		RuleID:   "r1",
		Trigger:  rules.TRIGGER_BOOKING_CANCELLED,
		Severity: rules.SEVERITY_WARNING,
		Title:    "Booking #42 cancelled",
		Body:     "8 tickets released",
		Created:  created,
	})
	assert.Nil(t, err)

	assert.Equal(t, "n1", gjson.GetBytes(msg, "id").String())
	assert.Equal(t, "r1", gjson.GetBytes(msg, "ruleId").String())
	assert.Equal(t, "booking_cancelled", gjson.GetBytes(msg, "trigger").String())
	assert.Equal(t, "warning", gjson.GetBytes(msg, "severity").String())
	assert.Equal(t, "Booking #42 cancelled", gjson.GetBytes(msg, "title").String())
	assert.Equal(t, "2026-08-31T12:00:00Z", gjson.GetBytes(msg, "created").String())
}
