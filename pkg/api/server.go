package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/tourops/backoffice/pkg/notify/push"
	"github.com/tourops/backoffice/pkg/rules"
	"github.com/tourops/backoffice/pkg/rules/feed"
	"github.com/tourops/backoffice/pkg/rules/repo"
)

// ServiceTokenHeader carries the shared secret for cross-service event
// submissions.
const ServiceTokenHeader = "X-Service-Token"

// Evaluator is the engine surface the API needs.
type Evaluator interface {
	EvaluateRules(evt *rules.EventContext)
}

type Server struct {
	repo         repo.RuleRepo
	feed         feed.Store
	engine       Evaluator
	pusher       *push.Provider
	serviceToken string
	router       *chi.Mux
}

func NewServer(rulerepo repo.RuleRepo, sink feed.Store, engine Evaluator, pusher *push.Provider, serviceToken string) *Server {
	s := &Server{
		repo:         rulerepo,
		feed:         sink,
		engine:       engine,
		pusher:       pusher,
		serviceToken: serviceToken,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/api/v1/health", s.handleHealth)
	r.Post("/api/v1/events", s.handleEvent)

	r.Get("/api/v1/triggers", s.handleListTriggers)

	r.Route("/api/v1/rules", func(r chi.Router) {
		r.Get("/", s.handleListRules)
		r.Post("/", s.handleCreateRule)
		r.Get("/{ruleId}", s.handleGetRule)
		r.Put("/{ruleId}", s.handleUpdateRule)
		r.Delete("/{ruleId}", s.handleDeleteRule)
	})

	r.Route("/api/v1/notifications", func(r chi.Router) {
		r.Get("/", s.handleListNotifications)
		r.Post("/{notificationId}/read", s.handleMarkRead)
	})

	if s.pusher != nil {
		r.Route("/api/v1/push/subscriptions", func(r chi.Router) {
			r.Get("/", s.handleListSubscriptions)
			r.Post("/", s.handleSubscribe)
			r.Delete("/{subscriptionId}", s.handleUnsubscribe)
		})
	}

	s.router = r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "healthy",
		"rulesRepo":   s.repo.Name(),
		"activeRules": s.repo.Active(),
	})
}

// handleEvent accepts {trigger, data} from internal producers and, with
// the shared-secret header, from other services. Evaluation is
// fire-and-forget so the producer never waits on delivery fan-out.
func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	if len(s.serviceToken) > 0 && r.Header.Get(ServiceTokenHeader) != s.serviceToken {
		respondError(w, http.StatusUnauthorized, "invalid service token")
		return
	}

	var evt rules.EventContext
	if err := json.NewDecoder(r.Body).Decode(&evt); err != nil {
		respondError(w, http.StatusBadRequest, "invalid event payload")
		return
	}
	if len(evt.Trigger) == 0 {
		respondError(w, http.StatusBadRequest, "trigger required")
		return
	}
	if evt.Data == nil {
		evt.Data = map[string]interface{}{}
	}

	go s.engine.EvaluateRules(&evt)

	respondJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func (s *Server) handleListTriggers(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, rules.Triggers)
}

func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	res := make([]*rules.NotificationRule, 0)
	err := s.repo.Each(0, 0, func(rule *rules.NotificationRule) {
		res = append(res, rule)
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (s *Server) handleCreateRule(w http.ResponseWriter, r *http.Request) {
	rule, ok := decodeRule(w, r)
	if !ok {
		return
	}

	if len(rule.ID) == 0 {
		rule.ID = uuid.New().String()
	}
	rule.Created = time.Now().UTC()
	rule.Updated = rule.Created

	if err := s.repo.Save(rule); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, rule)
}

func (s *Server) handleGetRule(w http.ResponseWriter, r *http.Request) {
	rule, err := s.repo.Get(chi.URLParam(r, "ruleId"))
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, rule)
}

func (s *Server) handleUpdateRule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "ruleId")
	existing, err := s.repo.Get(id)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	rule, ok := decodeRule(w, r)
	if !ok {
		return
	}

	rule.ID = id
	rule.Created = existing.Created
	rule.Updated = time.Now().UTC()

	if err := s.repo.Save(rule); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, rule)
}

func (s *Server) handleDeleteRule(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.Remove(chi.URLParam(r, "ruleId")); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if q := r.URL.Query().Get("limit"); len(q) > 0 {
		if n, err := strconv.Atoi(q); err == nil && n > 0 {
			limit = n
		}
	}

	res, err := s.feed.Recent(limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	if err := s.feed.MarkRead(chi.URLParam(r, "notificationId")); err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := s.pusher.Subscriptions()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, subs)
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	var sub push.Subscription
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		respondError(w, http.StatusBadRequest, "invalid subscription payload")
		return
	}
	if len(sub.ID) == 0 {
		sub.ID = uuid.New().String()
	}

	if err := s.pusher.Subscribe(&sub); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, sub)
}

func (s *Server) handleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	if err := s.pusher.Unsubscribe(chi.URLParam(r, "subscriptionId")); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeRule(w http.ResponseWriter, r *http.Request) (*rules.NotificationRule, bool) {
	var rule rules.NotificationRule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		respondError(w, http.StatusBadRequest, "invalid rule payload")
		return nil, false
	}
	if len(rule.Name) == 0 {
		respondError(w, http.StatusBadRequest, "rule name required")
		return nil, false
	}
	if _, ok := rules.TriggerByName(rule.TriggerEvent); !ok {
		respondError(w, http.StatusBadRequest, "unknown trigger: "+rule.TriggerEvent)
		return nil, false
	}
	return &rule, true
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
