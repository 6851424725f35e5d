package rules

import (
	"time"
)

const (
	SEVERITY_INFO     string = "info"
	SEVERITY_WARNING  string = "warning"
	SEVERITY_CRITICAL string = "critical"
)

// NotificationRule is a configured rule: which trigger it subscribes to,
// the condition tree gating it, and what to deliver where when it matches.
// Rules are authored through the administrative CRUD surface and are
// read-only to the evaluator.
type NotificationRule struct {
	ID              string         `json:"id" yaml:"id"`
	Name            string         `json:"name" yaml:"name"`
	TriggerEvent    string         `json:"triggerEvent" yaml:"triggerEvent"`
	Conditions      *ConditionNode `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	Active          bool           `json:"active" yaml:"active"`
	Priority        int            `json:"priority" yaml:"priority"`
	Severity        string         `json:"severity,omitempty" yaml:"severity,omitempty"`
	Channels        Channels       `json:"channels" yaml:"channels"`
	EmailRecipients []string       `json:"emailRecipients,omitempty" yaml:"emailRecipients,omitempty"`
	RoomIDs         []string       `json:"roomIds,omitempty" yaml:"roomIds,omitempty"`
	TitleTemplate   string         `json:"titleTemplate" yaml:"titleTemplate"`
	BodyTemplate    string         `json:"bodyTemplate" yaml:"bodyTemplate"`
	ActionURL       string         `json:"actionUrl,omitempty" yaml:"actionUrl,omitempty"`
	Created         time.Time      `json:"created,omitempty" yaml:"created,omitempty"`
	Updated         time.Time      `json:"updated,omitempty" yaml:"updated,omitempty"`
	CreatedBy       string         `json:"createdBy,omitempty" yaml:"createdBy,omitempty"`
	UpdatedBy       string         `json:"updatedBy,omitempty" yaml:"updatedBy,omitempty"`
}

// Channels are the delivery mechanisms a rule enables independently.
// The in-app feed record is written for every match regardless,
// so there is no flag for it.
type Channels struct {
	Push  bool `json:"push" yaml:"push"`
	Email bool `json:"email" yaml:"email"`
}

// Notification is the persisted feed record for a matched rule.
type Notification struct {
	ID        string    `json:"id"`
	RuleID    string    `json:"ruleId"`
	RuleName  string    `json:"ruleName"`
	Trigger   string    `json:"trigger"`
	Severity  string    `json:"severity"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	ActionURL string    `json:"actionUrl,omitempty"`
	EntityID  string    `json:"entityId,omitempty"`
	Read      bool      `json:"read"`
	Created   time.Time `json:"created"`
}

// PushPayload is what the push provider delivers to every
// subscribed admin endpoint.
type PushPayload struct {
	Title              string   `json:"title"`
	Body               string   `json:"body"`
	Icon               string   `json:"icon,omitempty"`
	Tag                string   `json:"tag,omitempty"`
	Data               PushData `json:"data"`
	RequireInteraction bool     `json:"requireInteraction"`
}

type PushData struct {
	URL  string `json:"url,omitempty"`
	Type string `json:"type"`
}

// EmailMessage is the outbound email shape of the delivery provider.
type EmailMessage struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}
