// $ go test -v pkg/parse/*.go

package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseString(t *testing.T) {
	assert.Equal(t, "", ParseString(nil))
	assert.Equal(t, "Roma Tour", ParseString("Roma Tour"))
	assert.Equal(t, "42", ParseString(float64(42)))
	assert.Equal(t, "4.5", ParseString(4.5))
	assert.Equal(t, "true", ParseString(true))
}

func TestParseNumber(t *testing.T) {
	n, ok := ParseNumber(float64(8))
	assert.True(t, ok)
	assert.Equal(t, 8.0, n)

	n, ok = ParseNumber("3.5")
	assert.True(t, ok)
	assert.Equal(t, 3.5, n)

	_, ok = ParseNumber("abc")
	assert.False(t, ok)

	_, ok = ParseNumber(nil)
	assert.False(t, ok)

	_, ok = ParseNumber(true)
	assert.False(t, ok)
}

func TestParseInt(t *testing.T) {
	assert.Equal(t, 5, ParseInt("5"))
	assert.Equal(t, int64(0), ParseInt64("x"))
}
