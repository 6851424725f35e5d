// $ go test -v pkg/rules/*.go

package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderTemplate(t *testing.T) {
	data := map[string]interface{}{
		"booking_id":    float64(42),
		"customer_name": "Ada",
		"cancelled":     true,
	}

	assert.Equal(t, "Booking #42 cancelled",
		RenderTemplate("Booking #{booking_id} cancelled", data))
	assert.Equal(t, "Ada / 42 / true",
		RenderTemplate("{customer_name} / {booking_id} / {cancelled}", data))

	// a token without a matching key stays verbatim,
	// surfacing the authoring mistake instead of hiding it
	assert.Equal(t, "Booking #{booking_id} cancelled",
		RenderTemplate("Booking #{booking_id} cancelled", map[string]interface{}{}))
	assert.Equal(t, "Hi {nobody}, booking 42",
		RenderTemplate("Hi {nobody}, booking {booking_id}", data))

	// null behaves like missing
	assert.Equal(t, "{gone}",
		RenderTemplate("{gone}", map[string]interface{}{"gone": nil}))

	assert.Equal(t, "no tokens here", RenderTemplate("no tokens here", data))
	assert.Equal(t, "", RenderTemplate("", data))
}
