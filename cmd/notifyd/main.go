package main

import (
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/tourops/backoffice/pkg/api"
	"github.com/tourops/backoffice/pkg/env"
	"github.com/tourops/backoffice/pkg/notify/email"
	"github.com/tourops/backoffice/pkg/notify/push"
	"github.com/tourops/backoffice/pkg/rules"
	"github.com/tourops/backoffice/pkg/rules/engine"
	"github.com/tourops/backoffice/pkg/rules/eventsource"
	"github.com/tourops/backoffice/pkg/rules/feed"
	"github.com/tourops/backoffice/pkg/rules/repo"
	"github.com/tourops/backoffice/pkg/store"
	boltstore "github.com/tourops/backoffice/pkg/store/bolt"
	redistore "github.com/tourops/backoffice/pkg/store/redis"
	"github.com/tourops/backoffice/pkg/sweep"
)

const natsQueue = "notifyd"

func main() {
	debug := env.Get("DEBUG", "") == "true"
	if debug {
		// slog.SetLogLoggerLevel requires Go 1.22; this is the 1.21 equivalent.
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	rulerepo := newRuleRepo(env.Must("RULES_REPO_URL"))
	defer rulerepo.Close()

	sink := newFeedStore(env.Get("DATABASE_URL", ""))
	defer sink.Close()

	e := engine.NewEngine(debug, rulerepo, sink)

	if token := env.Get("EMAIL_API_KEY", ""); len(token) > 0 {
		e.UseEmail(email.NewProvider(
			env.Must("EMAIL_API_URL"),
			token,
			env.Must("EMAIL_FROM"),
		))
	}

	var pusher *push.Provider
	if subsURL := env.Get("PUSH_SUBS_URL", ""); len(subsURL) > 0 {
		pusher = push.NewProvider(newKVStore(subsURL), env.Get("PUSH_AUTH_TOKEN", ""))
		e.UsePush(pusher)
	}

	natsURL := env.Get("NATS_URL", "")
	if len(natsURL) > 0 {
		source := eventsource.NewNatsEventSource(natsURL, env.Get("NATS_NKEY_SEED", ""))
		defer source.Close()

		err := source.Receive(natsQueue, e.Commands, e.Events, triggerNames())
		if err != nil {
			slog.Error("failed to start event source", "err", err.Error())
			os.Exit(1)
		}

		if con, err := nats.Connect(natsURL); err == nil {
			e.UseLiveFeed(feed.NewPublisher(con))
			defer con.Close()
		} else {
			slog.Error("live feed disabled", "err", err.Error())
		}
	}

	e.ProcessEvents()
	e.OnStats(statsInterval(), func(stats *engine.EngineStats) {
		slog.Info("engine stats",
			"enabled", stats.EngineEnabled,
			"repo", stats.RulesRepo,
			"activeRules", stats.ActiveRules,
		)
	})

	if sweepURL := env.Get("SWEEP_BASE_URL", ""); len(sweepURL) > 0 {
		sweeper := sweep.NewSweeper(e.Events)
		sweepToken := env.Get("SWEEP_AUTH_TOKEN", "")
		for trigger, spec := range map[string]string{
			rules.TRIGGER_VOUCHER_APPROACHING: env.Get("SWEEP_CRON_VOUCHER_APPROACHING", "0 6 * * *"),
			rules.TRIGGER_VOUCHER_MISSED:      env.Get("SWEEP_CRON_VOUCHER_MISSED", "15 6 * * *"),
			rules.TRIGGER_SLOT_MISSING_GUIDE:  env.Get("SWEEP_CRON_SLOT_MISSING", "0 7 * * *"),
			rules.TRIGGER_SLOT_PLACEHOLDER:    env.Get("SWEEP_CRON_SLOT_PLACEHOLDER", "5 7 * * *"),
		} {
			err := sweeper.Register(trigger, spec, sweep.NewHTTPSource(sweepURL, sweepToken, trigger))
			if err != nil {
				slog.Error("failed to register sweep", "trigger", trigger, "err", err.Error())
				os.Exit(1)
			}
		}
		sweeper.Start()
		defer sweeper.Stop()
	}

	server := api.NewServer(rulerepo, sink, e, pusher, env.Get("SERVICE_TOKEN", ""))
	addr := env.Get("HTTP_ADDR", ":8080")

	go func() {
		slog.Info("notifyd listening", "addr", addr, "repo", rulerepo.Name())
		if err := http.ListenAndServe(addr, server); err != nil {
			slog.Error("http server failed", "err", err.Error())
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down")
}

// newRuleRepo picks the rule store from the url scheme:
// postgres://, redis://, nats://, a .db path (bolt) or a directory (yaml files).
func newRuleRepo(url string) repo.RuleRepo {
	var r repo.RuleRepo
	var err error

	switch {
	case strings.HasPrefix(url, "postgres://"):
		r, err = repo.NewPostgresRuleRepo(url)
	case strings.HasPrefix(url, "redis://"):
		r, err = repo.NewRedisRuleRepo(url)
	case strings.HasPrefix(url, "nats://"):
		r, err = repo.NewJetstreamRuleRepo(url)
	case strings.HasSuffix(url, ".db"):
		r, err = repo.NewBoltRuleRepo(url)
	default:
		r = repo.NewDiskRuleRepo(url)
	}

	if err != nil {
		slog.Error("failed to open rule repo", "url", url, "err", err.Error())
		os.Exit(1)
	}
	return r
}

func newFeedStore(databaseURL string) feed.Store {
	if len(databaseURL) == 0 {
		slog.Warn("DATABASE_URL not set, notification feed is in-memory only")
		return feed.NewInMemoryStore()
	}
	sink, err := feed.NewPostgresStore(databaseURL)
	if err != nil {
		slog.Error("failed to open feed store", "err", err.Error())
		os.Exit(1)
	}
	return sink
}

func newKVStore(url string) store.Store {
	if strings.HasPrefix(url, "redis://") {
		return redistore.New(url)
	}
	return boltstore.New(url, "push_subs")
}

func triggerNames() []string {
	names := make([]string, 0, len(rules.Triggers))
	for _, t := range rules.Triggers {
		names = append(names, t.Name)
	}
	return names
}

func statsInterval() time.Duration {
	d, err := time.ParseDuration(env.Get("STATS_INTERVAL", "5m"))
	if err != nil {
		return 5 * time.Minute
	}
	return d
}
