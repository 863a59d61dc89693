// Package app assembles stores, services and the HTTP router from a Config.
// Both the server command and the end-to-end tests build through here.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hackhub/internal/audit"
	eventhandler "hackhub/internal/event/handler"
	eventsvc "hackhub/internal/event/service"
	eventstore "hackhub/internal/event/store"
	identityhandler "hackhub/internal/identity/handler"
	"hackhub/internal/identity/revocation"
	identitysvc "hackhub/internal/identity/service"
	userstore "hackhub/internal/identity/store/user"
	"hackhub/internal/identity/token"
	judginghandler "hackhub/internal/judging/handler"
	judgingsvc "hackhub/internal/judging/service"
	judgingstore "hackhub/internal/judging/store"
	leaderboardhandler "hackhub/internal/leaderboard/handler"
	leaderboardsvc "hackhub/internal/leaderboard/service"
	"hackhub/internal/platform/config"
	"hackhub/internal/platform/metrics"
	"hackhub/internal/platform/middleware"
	"hackhub/internal/platform/postgres"
	platformredis "hackhub/internal/platform/redis"
	projecthandler "hackhub/internal/project/handler"
	projectsvc "hackhub/internal/project/service"
	projectstore "hackhub/internal/project/store"
	registrationhandler "hackhub/internal/registration/handler"
	registrationsvc "hackhub/internal/registration/service"
	registrationstore "hackhub/internal/registration/store"
	httptransport "hackhub/internal/transport/http"
	authmw "hackhub/pkg/platform/middleware/auth"
	"hackhub/pkg/platform/tx"
)

// auditBuffer is the number of audit events queued ahead of the sink.
const auditBuffer = 1024

type eventStore interface {
	eventsvc.EventStore
	registrationsvc.EventStore
	projectsvc.EventStore
	judgingsvc.EventStore
	leaderboardsvc.EventStore
}

type registrationStore interface {
	registrationsvc.RegistrationStore
	projectsvc.RegistrationLocker
	leaderboardsvc.RegistrationCounter
}

type projectStore interface {
	projectsvc.ProjectStore
	eventsvc.ProjectCounter
	judgingsvc.ProjectStore
	leaderboardsvc.ProjectRanker
}

type assignmentStore interface {
	judgingsvc.AssignmentStore
	projectsvc.JudgeDirectory
}

type stores struct {
	users         identitysvc.UserStore
	events        eventStore
	registrations registrationStore
	projects      projectStore
	assignments   assignmentStore
	runner        tx.Runner
}

// memoryStores shares one runner across every store: the in-memory stores
// rely on it to serialize units of work.
func memoryStores() stores {
	return stores{
		users:         userstore.NewInMemory(),
		events:        eventstore.NewInMemory(),
		registrations: registrationstore.NewInMemory(),
		projects:      projectstore.NewInMemory(),
		assignments:   judgingstore.NewInMemory(),
		runner:        tx.NewInMemory(),
	}
}

func postgresStores(db *sql.DB, cfg config.DatabaseConfig, logger *slog.Logger, m *metrics.Metrics) stores {
	return stores{
		users:         userstore.NewPostgres(db),
		events:        eventstore.NewPostgres(db),
		registrations: registrationstore.NewPostgres(db),
		projects:      projectstore.NewPostgres(db),
		assignments:   judgingstore.NewPostgres(db),
		runner: postgres.NewTxManager(db,
			postgres.WithTxTimeout(cfg.TxTimeout),
			postgres.WithMaxRetries(cfg.TxMaxRetries),
			postgres.WithTxLogger(logger),
			postgres.WithTxMetrics(m),
		),
	}
}

// App is a fully wired server.
type App struct {
	Router    http.Handler
	Users     *identitysvc.Service
	Tokens    *token.JWTService
	Revoker   *revocation.RedisTRL
	Publisher *audit.Publisher
	Worker    *audit.Worker
	Metrics   *metrics.Metrics

	closers []func(context.Context) error
}

type options struct {
	sink     audit.Sink
	registry *prometheus.Registry
}

type Option func(*options)

// WithAuditSink replaces the sink chosen from configuration.
func WithAuditSink(s audit.Sink) Option {
	return func(o *options) { o.sink = s }
}

// WithRegistry registers collectors on reg instead of a fresh registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(o *options) { o.registry = reg }
}

// Build connects the configured backends and wires every service. Call Close
// when done, even after a partial failure.
func Build(ctx context.Context, cfg config.Config, logger *slog.Logger, opts ...Option) (a *App, err error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.registry == nil {
		o.registry = prometheus.NewRegistry()
		o.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}

	a = &App{Metrics: metrics.New(o.registry)}
	defer func() {
		if err != nil {
			_ = a.Close(context.WithoutCancel(ctx))
		}
	}()

	health := map[string]httptransport.HealthCheck{}

	var st stores
	if cfg.InMemory() {
		logger.WarnContext(ctx, "DATABASE_URL not set, using in-memory store")
		st = memoryStores()
	} else {
		db, err := postgres.Open(ctx, cfg.Database, logger)
		if err != nil {
			return a, err
		}
		a.closers = append(a.closers, func(context.Context) error { return db.Close() })
		health["postgres"] = db.PingContext
		st = postgresStores(db, cfg.Database, logger, a.Metrics)
	}

	rdb, err := platformredis.Dial(ctx, cfg.Redis)
	if err != nil {
		return a, err
	}
	var revocations authmw.TokenRevocationChecker
	if rdb != nil {
		a.closers = append(a.closers, func(context.Context) error { return rdb.Close() })
		health["redis"] = rdb.Health
		a.Revoker = revocation.NewRedisTRL(rdb.Redis())
		revocations = a.Revoker
	} else {
		logger.WarnContext(ctx, "REDIS_URL not set, token revocation disabled")
	}

	sink := o.sink
	if sink == nil {
		sink, err = buildSink(ctx, cfg.Kafka, logger, a)
		if err != nil {
			return a, err
		}
	}
	a.Publisher = audit.NewPublisher(auditBuffer, audit.WithPublisherLogger(logger), audit.WithPublisherMetrics(a.Metrics))
	a.Worker = audit.NewWorker(sink, a.Publisher.Inbox(), logger, a.Metrics)

	a.Users = identitysvc.New(st.users,
		identitysvc.WithLogger(logger),
		identitysvc.WithAuditPublisher(a.Publisher),
		identitysvc.WithTx(st.runner),
	)
	events := eventsvc.New(st.events, st.registrations, st.projects,
		eventsvc.WithLogger(logger),
		eventsvc.WithMetrics(a.Metrics),
		eventsvc.WithAuditPublisher(a.Publisher),
		eventsvc.WithTx(st.runner),
	)
	registrations := registrationsvc.New(st.registrations, st.events,
		registrationsvc.WithLogger(logger),
		registrationsvc.WithMetrics(a.Metrics),
		registrationsvc.WithAuditPublisher(a.Publisher),
		registrationsvc.WithTx(st.runner),
	)
	projects := projectsvc.New(st.projects, st.events, st.registrations, st.assignments,
		projectsvc.WithLogger(logger),
		projectsvc.WithMetrics(a.Metrics),
		projectsvc.WithAuditPublisher(a.Publisher),
		projectsvc.WithTx(st.runner),
	)
	judging := judgingsvc.New(st.assignments, st.projects, st.events, a.Users,
		judgingsvc.WithLogger(logger),
		judgingsvc.WithMetrics(a.Metrics),
		judgingsvc.WithAuditPublisher(a.Publisher),
		judgingsvc.WithTx(st.runner),
	)
	standings := leaderboardsvc.New(st.projects, st.events, st.users, st.registrations,
		leaderboardsvc.WithMetrics(a.Metrics),
	)

	a.Tokens = token.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.JWTIssuer, cfg.Auth.JWTAudience)
	limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, logger,
		middleware.WithRejectCounter(a.Metrics),
	)

	eventHandler := eventhandler.New(events, logger)
	leaderboardHandler := leaderboardhandler.New(standings, logger)
	a.Router = httptransport.NewRouter(httptransport.Deps{
		Logger:      logger,
		RequireAuth: authmw.RequireAuth(token.NewAdapter(a.Tokens), revocations, a.Users, logger),
		RateLimit:   limiter.Handler,
		Metrics:     promhttp.HandlerFor(o.registry, promhttp.HandlerOpts{}),
		Health:      health,
		Public:      []httptransport.PublicRoutes{eventHandler, leaderboardHandler},
		Private: []httptransport.Routes{
			eventHandler,
			registrationhandler.New(registrations, logger),
			projecthandler.New(projects, logger),
			judginghandler.New(judging, logger),
			identityhandler.New(a.Users, logger),
			leaderboardHandler,
		},
	})
	return a, nil
}

func buildSink(ctx context.Context, cfg config.KafkaConfig, logger *slog.Logger, a *App) (audit.Sink, error) {
	if len(cfg.Brokers) == 0 {
		logger.InfoContext(ctx, "KAFKA_BROKERS not set, audit events go to the log")
		return audit.NewLogSink(logger), nil
	}
	sink, err := audit.NewKafkaSink(ctx, cfg.Brokers, cfg.AuditTopic, logger)
	if err != nil {
		return nil, fmt.Errorf("audit sink: %w", err)
	}
	a.closers = append(a.closers, func(ctx context.Context) error {
		sink.Close(ctx)
		return nil
	})
	return sink, nil
}

// Close releases backends in reverse order of acquisition.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i](ctx))
	}
	a.closers = nil
	return errors.Join(errs...)
}
