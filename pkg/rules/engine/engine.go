package engine

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tourops/backoffice/pkg/notify"
	"github.com/tourops/backoffice/pkg/parse"
	"github.com/tourops/backoffice/pkg/rules"
	"github.com/tourops/backoffice/pkg/rules/feed"
	"github.com/tourops/backoffice/pkg/rules/repo"
)

type Engine struct {
	sync.Mutex
	debug   bool
	enabled bool
	onStats func(*EngineStats)

	repo repo.RuleRepo
	feed feed.Store
	live *feed.Publisher

	pusher notify.Pusher
	mailer notify.Mailer

	Commands chan *rules.Event
	Events   chan *rules.Event
}

type EngineStats struct {
	EngineEnabled bool   `json:"engineEnabled"`
	RulesRepo     string `json:"rulesRepo"`
	ActiveRules   int    `json:"activeRules"`
}

func NewEngine(debug bool, rulerepo repo.RuleRepo, sink feed.Store) *Engine {
	e := &Engine{
		debug:    debug,
		enabled:  true,
		repo:     rulerepo,
		feed:     sink,
		Commands: make(chan *rules.Event),
		Events:   make(chan *rules.Event),
	}
	go e.commandsLoop()
	return e
}

func (e *Engine) UsePush(p notify.Pusher) {
	e.pusher = p
}

func (e *Engine) UseEmail(m notify.Mailer) {
	e.mailer = m
}

func (e *Engine) UseLiveFeed(p *feed.Publisher) {
	e.live = p
}

// ProcessEvents starts consuming the Events channel. Every received
// event runs through a full evaluation pass.
func (e *Engine) ProcessEvents() {
	go e.eventsLoop()
}

func (e *Engine) OnStats(interval time.Duration, fn func(stats *EngineStats)) {
	e.onStats = fn
	e.emitStats()                      // emit first immediately
	ticker := time.NewTicker(interval) // then emit every interval
	go func() {
		for range ticker.C {
			e.emitStats()
		}
	}()
}

// EvaluateRules is the sole evaluation entry point: fetch the active
// rules for the trigger, evaluate each condition tree against the event
// data and fan out deliveries for the matches. Best-effort by contract,
// nothing propagates to the caller; failures only surface in logs.
//
// Rules are fetched fresh on every invocation. A rule edit is picked up
// by the next event without any reload choreography.
func (e *Engine) EvaluateRules(evt *rules.EventContext) {
	if evt == nil || len(evt.Trigger) == 0 {
		return
	}
	if !e.isEnabled() {
		slog.Debug("rules processing disabled, event dropped", "trigger", evt.Trigger)
		return
	}

	active, err := e.repo.ActiveForTrigger(evt.Trigger)
	if err != nil {
		// the feed is a side-channel, a failed fetch drops the event
		slog.Error("failed to fetch rules, evaluation aborted", "trigger", evt.Trigger, "err", err.Error())
		return
	}
	if len(active) == 0 {
		return
	}

	if e.debug {
		slog.Info("evaluating rules", "trigger", evt.Trigger, "count", len(active))
	}

	for _, rule := range active {
		e.execRule(rule, evt)
	}
}

// execRule evaluates one rule inside its own error boundary so a
// misconfigured rule or a provider outage never blocks its siblings.
func (e *Engine) execRule(rule *rules.NotificationRule, evt *rules.EventContext) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("rule evaluation panicked", "rule", rule.ID, "err", fmt.Sprintf("%v", r))
		}
	}()

	if !rules.Evaluate(rule.Conditions, evt.Data) {
		slog.Debug("rule unmet", "rule", rule.ID, "trigger", evt.Trigger)
		return
	}

	n := e.renderNotification(rule, evt)

	// the feed record is written for every match, regardless of channels
	if err := e.feed.Append(n); err != nil {
		slog.Error("failed to persist notification", "rule", rule.ID, "err", err.Error())
	}
	if e.live != nil {
		if err := e.live.Publish(n); err != nil {
			slog.Error("failed to publish live feed", "rule", rule.ID, "err", err.Error())
		}
	}

	if rule.Channels.Push && e.pusher != nil {
		payload := &rules.PushPayload{
			Title: n.Title,
			Body:  n.Body,
			Tag:   rule.ID,
			Data: rules.PushData{
				URL:  n.ActionURL,
				Type: evt.Trigger,
			},
			RequireInteraction: n.Severity == rules.SEVERITY_CRITICAL,
		}
		if err := e.pusher.Send(payload); err != nil {
			slog.Error("push delivery failed", "rule", rule.ID, "err", err.Error())
		}
	}

	if rule.Channels.Email && e.mailer != nil && len(rule.EmailRecipients) > 0 {
		msg := &rules.EmailMessage{
			To:      rule.EmailRecipients,
			Subject: n.Title,
			HTML:    n.Body,
		}
		if err := e.mailer.Send(msg); err != nil {
			slog.Error("email delivery failed", "rule", rule.ID, "err", err.Error())
		}
	}
}

func (e *Engine) renderNotification(rule *rules.NotificationRule, evt *rules.EventContext) *rules.Notification {
	severity := rule.Severity
	if len(severity) == 0 {
		severity = rules.SEVERITY_INFO
	}

	return &rules.Notification{
		ID:        uuid.New().String(),
		RuleID:    rule.ID,
		RuleName:  rule.Name,
		Trigger:   evt.Trigger,
		Severity:  severity,
		Title:     rules.RenderTemplate(rule.TitleTemplate, evt.Data),
		Body:      rules.RenderTemplate(rule.BodyTemplate, evt.Data),
		ActionURL: rules.RenderTemplate(rule.ActionURL, evt.Data),
		EntityID:  entityID(evt.Data),
		Created:   time.Now().UTC(),
	}
}

func entityID(data map[string]interface{}) string {
	for _, key := range []string{"entity_id", "booking_id", "voucher_id", "assignment_id"} {
		if v, ok := data[key]; ok && v != nil {
			return parse.ParseString(v)
		}
	}
	return ""
}

func (e *Engine) isEnabled() bool {
	e.Lock()
	defer e.Unlock()
	return e.enabled
}

func (e *Engine) setEnabled(enabled bool) {
	e.Lock()
	e.enabled = enabled
	e.Unlock()
	e.emitStats()
}

func (e *Engine) emitStats() {
	if e.onStats != nil {
		e.onStats(&EngineStats{
			EngineEnabled: e.isEnabled(),
			RulesRepo:     e.repo.Name(),
			ActiveRules:   e.repo.Active(),
		})
	}
}

func (e *Engine) commandsLoop() {
	for cmd := range e.Commands {
		// disable rules processing
		if cmd.Trigger == rules.CmdStop {
			e.setEnabled(false)
		}
		// enable rules processing
		if cmd.Trigger == rules.CmdResume {
			e.setEnabled(true)
		}
	}
}

func (e *Engine) eventsLoop() {
	for event := range e.Events {
		if !e.isEnabled() {
			continue
		}
		e.EvaluateRules(rules.NewEventContext(event.Trigger, event.Data))
	}
}
