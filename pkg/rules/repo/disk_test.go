// $ go test -v pkg/rules/repo/*.go

package repo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

const yamlRule = `
id: yaml-1
name: large cancellations
triggerEvent: booking_cancelled
active: true
priority: 5
channels:
  push: true
  email: false
conditions:
  kind: group
  combinator: AND
  children:
    - kind: condition
      field: ticket_count
      operator: greater_than
      value: 5
titleTemplate: "Booking #{booking_id} cancelled"
bodyTemplate: "{ticket_count} tickets released"
`

const jsonRule = `{
  "id": "json-1",
  "name": "sync failures",
  "triggerEvent": "sync_failure",
  "active": true,
  "titleTemplate": "Sync failed: {source}",
  "bodyTemplate": "{error}"
}`

func TestDiskRuleRepo(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "cancellations.yaml"), []byte(yamlRule), 0644)
	os.WriteFile(filepath.Join(dir, "sync.json"), []byte(jsonRule), 0644)

	r := NewDiskRuleRepo(dir)
	assert.Equal(t, "disk", r.Name())
	assert.Equal(t, 2, r.Count())
	assert.Equal(t, 2, r.Active())

	rule, err := r.Get("yaml-1")
	assert.Nil(t, err)
	assert.Equal(t, "large cancellations", rule.Name)
	assert.True(t, rule.Channels.Push)
	assert.NotNil(t, rule.Conditions)
	assert.Len(t, rule.Conditions.Children, 1)
	assert.Equal(t, "greater_than", rule.Conditions.Children[0].Operator)

	match, err := r.ActiveForTrigger("booking_cancelled")
	assert.Nil(t, err)
	assert.Len(t, match, 1)
	assert.Equal(t, "yaml-1", match[0].ID)

	// read-only
	assert.Error(t, r.Save(rule))
	assert.Error(t, r.Remove("yaml-1"))
}
