// $ go test -v pkg/rules/*.go

package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTriggerByName(t *testing.T) {
	trigger, ok := TriggerByName(TRIGGER_BOOKING_CANCELLED)
	assert.True(t, ok)
	assert.Equal(t, "Booking cancelled", trigger.Label)
	assert.NotEmpty(t, trigger.Fields)

	_, ok = TriggerByName("nope")
	assert.False(t, ok)
}

func TestTriggerCatalog(t *testing.T) {
	seen := map[string]struct{}{}
	for _, trigger := range Triggers {
		_, dup := seen[trigger.Name]
		assert.False(t, dup, trigger.Name)
		seen[trigger.Name] = struct{}{}

		for _, field := range trigger.Fields {
			assert.Contains(t,
				[]string{FIELDTYPE_STRING, FIELDTYPE_NUMBER, FIELDTYPE_BOOL},
				field.Type, trigger.Name+"."+field.Name)
		}
	}
}

func TestOperatorsForType(t *testing.T) {
	assert.Contains(t, OperatorsForType(FIELDTYPE_STRING), OP_CONTAINS)
	assert.NotContains(t, OperatorsForType(FIELDTYPE_STRING), OP_GREATER)

	assert.Contains(t, OperatorsForType(FIELDTYPE_NUMBER), OP_GREATER)
	assert.NotContains(t, OperatorsForType(FIELDTYPE_NUMBER), OP_CONTAINS)

	assert.Contains(t, OperatorsForType(FIELDTYPE_BOOL), OP_IS_TRUE)

	// presence checks apply to every type
	for _, ft := range []string{FIELDTYPE_STRING, FIELDTYPE_NUMBER, FIELDTYPE_BOOL} {
		assert.Contains(t, OperatorsForType(ft), OP_IS_EMPTY)
		assert.Contains(t, OperatorsForType(ft), OP_IS_NOT_EMPTY)
	}
}
