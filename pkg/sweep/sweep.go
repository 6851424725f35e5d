package sweep

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/tourops/backoffice/pkg/rules"
)

// Source produces the synthetic events of one sweep pass, e.g. a
// voucher-deadline query returning one event per voucher at risk.
type Source func() ([]*rules.Event, error)

// Sweeper runs registered detection sweeps on cron schedules and feeds
// their events into the engine's intake channel.
type Sweeper struct {
	sync.Mutex
	cron    *cron.Cron
	events  chan<- *rules.Event
	sources map[string]Source
}

func NewSweeper(events chan<- *rules.Event) *Sweeper {
	return &Sweeper{
		cron:    cron.New(),
		events:  events,
		sources: make(map[string]Source),
	}
}

func (s *Sweeper) Register(name string, spec string, src Source) error {
	s.Lock()
	if _, exists := s.sources[name]; exists {
		s.Unlock()
		return fmt.Errorf("sweep already registered: %s", name)
	}
	s.sources[name] = src
	s.Unlock()

	_, err := s.cron.AddFunc(spec, func() {
		s.Run(name)
	})
	return err
}

// Run executes one sweep pass by name. Exposed for manual runs from the
// admin surface next to the cron schedule.
func (s *Sweeper) Run(name string) {
	s.Lock()
	src, ok := s.sources[name]
	s.Unlock()
	if !ok {
		slog.Warn("unknown sweep", "name", name)
		return
	}

	events, err := src()
	if err != nil {
		slog.Error("sweep failed", "name", name, "err", err.Error())
		return
	}

	for _, event := range events {
		if event.Received.IsZero() {
			event.Received = time.Now().UTC()
		}
		s.events <- event
	}

	slog.Debug("sweep completed", "name", name, "events", len(events))
}

func (s *Sweeper) Start() {
	s.cron.Start()
}

func (s *Sweeper) Stop() {
	s.cron.Stop()
}
