package push

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/imroc/req/v3"

	"github.com/tourops/backoffice/pkg/rules"
	"github.com/tourops/backoffice/pkg/store"
)

const SUBSCRIPTION_PREFIX = "push:subs"

// Subscription is a registered admin push endpoint.
type Subscription struct {
	ID       string    `json:"id"`
	Endpoint string    `json:"endpoint"`
	Label    string    `json:"label,omitempty"`
	Created  time.Time `json:"created"`
}

// Provider posts push payloads to every registered endpoint.
// Subscriptions live in a kv store so they survive restarts and can be
// shared between instances.
type Provider struct {
	client *req.Client
	store  store.Store
}

func NewProvider(subs store.Store, authToken string) *Provider {
	client := req.C().SetTimeout(10 * time.Second)
	if len(authToken) > 0 {
		client.SetCommonBearerAuthToken(authToken)
	}
	return &Provider{client, subs}
}

func (p *Provider) Subscribe(sub *Subscription) error {
	if len(sub.ID) == 0 || len(sub.Endpoint) == 0 {
		return errors.New("subscription id and endpoint required")
	}
	if sub.Created.IsZero() {
		sub.Created = time.Now().UTC()
	}

	val, err := json.Marshal(sub)
	if err != nil {
		return err
	}
	return p.store.Set(subKey(sub.ID), val, nil)
}

func (p *Provider) Unsubscribe(id string) error {
	return p.store.Delete(subKey(id))
}

func (p *Provider) Subscriptions() ([]*Subscription, error) {
	subs := make([]*Subscription, 0)
	err := p.store.Scan(SUBSCRIPTION_PREFIX+":*", 0, 0, func(key string, val []byte) {
		var sub Subscription
		if json.Unmarshal(val, &sub) == nil {
			subs = append(subs, &sub)
		}
	})
	return subs, err
}

// Send fans the payload out to all subscribed endpoints. Endpoints fail
// independently, a dead subscriber never blocks the others.
func (p *Provider) Send(payload *rules.PushPayload) error {
	subs, err := p.Subscriptions()
	if err != nil {
		return err
	}

	var errs []error
	for _, sub := range subs {
		resp, err := p.client.R().
			SetHeader("content-type", "application/json").
			SetBody(payload).
			Post(sub.Endpoint)
		if err != nil {
			errs = append(errs, fmt.Errorf("push to %s: %w", sub.ID, err))
			continue
		}
		if resp.IsErrorState() {
			errs = append(errs, fmt.Errorf("push to %s: %s", sub.ID, resp.Status))
		}
	}
	return errors.Join(errs...)
}

func subKey(id string) string {
	return fmt.Sprintf("%s:%s", SUBSCRIPTION_PREFIX, id)
}
