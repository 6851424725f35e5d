// $ go test -v pkg/notify/email/*.go

package email

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tourops/backoffice/pkg/rules"
)

func TestEmailProviderSend(t *testing.T) {
	var got rules.EmailMessage
	var auth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/send", r.URL.Path)
		auth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := NewProvider(srv.URL, "key-123", "notify@tourops.example")

	err := p.Send(&rules.EmailMessage{
		To:      []string{"ops@example.com"},
		Subject: "Booking #42 cancelled",
		HTML:    "<p>8 tickets released</p>",
	})
	assert.Nil(t, err)

	assert.Equal(t, "Bearer key-123", auth)
	assert.Equal(t, "notify@tourops.example", got.From)
	assert.Equal(t, []string{"ops@example.com"}, got.To)
	assert.Equal(t, "Booking #42 cancelled", got.Subject)
}

func TestEmailProviderErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := NewProvider(srv.URL, "key-123", "notify@tourops.example")

	err := p.Send(&rules.EmailMessage{To: []string{"ops@example.com"}})
	assert.Error(t, err)

	// no recipients is refused before any request
	err = p.Send(&rules.EmailMessage{})
	assert.Error(t, err)
}
