// $ go test -v pkg/api/*.go

package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tourops/backoffice/pkg/rules"
	"github.com/tourops/backoffice/pkg/rules/feed"
	"github.com/tourops/backoffice/pkg/rules/repo"
)

type fakeEvaluator struct {
	evaluated chan *rules.EventContext
}

func (f *fakeEvaluator) EvaluateRules(evt *rules.EventContext) {
	f.evaluated <- evt
}

func newTestServer() (*httptest.Server, *fakeEvaluator, repo.RuleRepo, feed.Store) {
	rulerepo := repo.NewInMemoryRuleRepo()
	sink := feed.NewInMemoryStore()
	eval := &fakeEvaluator{evaluated: make(chan *rules.EventContext, 8)}
	srv := httptest.NewServer(NewServer(rulerepo, sink, eval, nil, "sekrit"))
	return srv, eval, rulerepo, sink
}

func postJSON(t *testing.T, url string, token string, body interface{}) *http.Response {
	payload, err := json.Marshal(body)
	assert.Nil(t, err)

	req, err := http.NewRequest("POST", url, bytes.NewReader(payload))
	assert.Nil(t, err)
	req.Header.Set("Content-Type", "application/json")
	if len(token) > 0 {
		req.Header.Set(ServiceTokenHeader, token)
	}

	resp, err := http.DefaultClient.Do(req)
	assert.Nil(t, err)
	return resp
}

func TestHealth(t *testing.T) {
	srv, _, _, _ := newTestServer()
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/health")
	assert.Nil(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&body)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "in-memory", body["rulesRepo"])
}

func TestEventEndpoint(t *testing.T) {
	srv, eval, _, _ := newTestServer()
	defer srv.Close()

	// no token
	resp := postJSON(t, srv.URL+"/api/v1/events", "", map[string]interface{}{
		"trigger": "booking_cancelled",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// missing trigger
	resp = postJSON(t, srv.URL+"/api/v1/events", "sekrit", map[string]interface{}{
		"data": map[string]interface{}{"booking_id": "b1"},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// accepted and handed to the engine
	resp = postJSON(t, srv.URL+"/api/v1/events", "sekrit", map[string]interface{}{
		"trigger": "booking_cancelled",
		"data":    map[string]interface{}{"booking_id": "b1", "ticket_count": 8},
	})
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	resp.Body.Close()

	select {
	case evt := <-eval.evaluated:
		assert.Equal(t, "booking_cancelled", evt.Trigger)
		assert.Equal(t, "b1", evt.Data["booking_id"])
	case <-time.After(2 * time.Second):
		t.Fatal("event never reached the engine")
	}
}

func TestRuleCRUD(t *testing.T) {
	srv, _, _, _ := newTestServer()
	defer srv.Close()

	// unknown trigger rejected
	resp := postJSON(t, srv.URL+"/api/v1/rules", "", map[string]interface{}{
		"name":         "bad",
		"triggerEvent": "lunar_eclipse",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// create
	resp = postJSON(t, srv.URL+"/api/v1/rules", "", map[string]interface{}{
		"name":         "big cancellations",
		"triggerEvent": "booking_cancelled",
		"active":       true,
		"priority":     5,
		"severity":     "warning",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var created rules.NotificationRule
	json.NewDecoder(resp.Body).Decode(&created)
	resp.Body.Close()
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.Created.IsZero())

	// read back
	resp, err := http.Get(srv.URL + "/api/v1/rules/" + created.ID)
	assert.Nil(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var got rules.NotificationRule
	json.NewDecoder(resp.Body).Decode(&got)
	resp.Body.Close()
	assert.Equal(t, "big cancellations", got.Name)
	assert.Equal(t, 5, got.Priority)

	// update keeps the original creation time
	req, _ := http.NewRequest("PUT", srv.URL+"/api/v1/rules/"+created.ID, bytes.NewReader([]byte(
		`{"name": "big cancellations", "triggerEvent": "booking_cancelled", "active": false}`)))
	resp, err = http.DefaultClient.Do(req)
	assert.Nil(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var updated rules.NotificationRule
	json.NewDecoder(resp.Body).Decode(&updated)
	resp.Body.Close()
	assert.False(t, updated.Active)
	assert.Equal(t, created.Created.Unix(), updated.Created.Unix())

	// delete
	req, _ = http.NewRequest("DELETE", srv.URL+"/api/v1/rules/"+created.ID, nil)
	resp, err = http.DefaultClient.Do(req)
	assert.Nil(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp, _ = http.Get(srv.URL + "/api/v1/rules/" + created.ID)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestListTriggers(t *testing.T) {
	srv, _, _, _ := newTestServer()
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/triggers")
	assert.Nil(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var triggers []rules.Trigger
	json.NewDecoder(resp.Body).Decode(&triggers)
	assert.Equal(t, len(rules.Triggers), len(triggers))
}

func TestNotificationFeed(t *testing.T) {
	srv, _, _, sink := newTestServer()
	defer srv.Close()

	sink.Append(&rules.Notification{ID: "n1", Title: "first"})
	sink.Append(&rules.Notification{ID: "n2", Title: "second"})

	resp, err := http.Get(srv.URL + "/api/v1/notifications?limit=1")
	assert.Nil(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var items []rules.Notification
	json.NewDecoder(resp.Body).Decode(&items)
	resp.Body.Close()
	assert.Len(t, items, 1)
	assert.Equal(t, "n2", items[0].ID)

	resp = postJSON(t, srv.URL+"/api/v1/notifications/n1/read", "", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, srv.URL+"/api/v1/notifications/nope/read", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}
