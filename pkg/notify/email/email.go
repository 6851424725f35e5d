package email

import (
	"errors"
	"fmt"
	"time"

	"github.com/imroc/req/v3"

	"github.com/tourops/backoffice/pkg/rules"
)

// Provider sends mail through an HTTP email API
// (anything accepting {from, to, subject, html} works).
type Provider struct {
	client *req.Client
	from   string
}

func NewProvider(baseURL string, apiKey string, from string) *Provider {
	client := req.C().
		SetBaseURL(baseURL).
		SetCommonBearerAuthToken(apiKey).
		SetTimeout(15 * time.Second)
	return &Provider{client, from}
}

func (p *Provider) Send(msg *rules.EmailMessage) error {
	if len(msg.To) == 0 {
		return errors.New("no recipients")
	}
	if len(msg.From) == 0 {
		msg.From = p.from
	}

	resp, err := p.client.R().
		SetHeader("content-type", "application/json").
		SetBody(msg).
		Post("/send")
	if err != nil {
		return err
	}
	if resp.IsErrorState() {
		return fmt.Errorf("email provider: %s", resp.Status)
	}
	return nil
}
