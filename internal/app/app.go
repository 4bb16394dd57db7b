package app

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"writing_coach/internal/cache"
	"writing_coach/internal/coach"
	"writing_coach/internal/config"
	"writing_coach/internal/db"
	"writing_coach/internal/languagetool"
	"writing_coach/internal/metrics"
	"writing_coach/internal/pipeline"
	"writing_coach/internal/rubric"
	"writing_coach/internal/session"
)

// App holds the collaborators built from one Config.
type App struct {
	Config   config.Config
	Logger   *slog.Logger
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics
	Pipeline *pipeline.Pipeline
	Grammar  *languagetool.Client
	Coach    *coach.Coach
	Store    *db.Store

	closers []func() error
}

type Option func(*options)

type options struct {
	offline bool
}

// Offline leaves out every network collaborator: the grammar service, the
// shared cache and the coaching model.
func Offline() Option { return func(o *options) { o.offline = true } }

func Build(cfg config.Config, logger *slog.Logger, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{Config: cfg, Logger: logger, Registry: prometheus.NewRegistry()}
	a.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.Metrics = metrics.New(a.Registry)

	settings, err := cfg.PipelineSettings()
	if err != nil {
		return nil, err
	}
	analyzers := pipeline.LocalAnalyzers(settings)

	if cfg.LanguageTool.Enabled && !o.offline {
		store, err := a.resultCache()
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.Grammar = languagetool.New(cfg.LanguageTool,
			languagetool.WithCache(store),
			languagetool.WithLogger(logger),
			languagetool.WithMetrics(a.Metrics),
		)
		analyzers = append(analyzers, a.Grammar)
	}

	a.Pipeline = pipeline.New(analyzers, rubric.New(cfg.Rubric, nil),
		pipeline.WithWorkers(cfg.Workers),
		pipeline.WithLogger(logger),
		pipeline.WithMetrics(a.Metrics),
	)

	var gen coach.Generator
	if !o.offline {
		gen, err = coach.NewGenerator(cfg.Coach)
		switch {
		case errors.Is(err, coach.ErrNoProvider):
			gen = nil
		case err != nil:
			_ = a.Close()
			return nil, fmt.Errorf("build coaching provider: %w", err)
		}
	}
	a.Coach = coach.New(gen,
		coach.WithLogger(logger),
		coach.WithMetrics(a.Metrics),
		coach.WithTimeout(cfg.Coach.Timeout),
	)

	if cfg.Database != "" {
		store, err := db.NewStore(cfg.Database)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.Store = store
		a.closers = append(a.closers, store.Close)
	}
	return a, nil
}

func (a *App) resultCache() (cache.Cache, error) {
	c := a.Config.Cache
	if c.RedisURL == "" {
		return cache.NewMemory(c.TTL, c.MaxEntries), nil
	}
	r, err := cache.NewRedis(c.RedisURL, c.TTL, a.Logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, r.Close)
	return r, nil
}

// SessionOptions configures sessions the way the App is configured.
func (a *App) SessionOptions() []session.Option {
	opts := []session.Option{
		session.WithCoach(a.Coach),
		session.WithLogger(a.Logger),
		session.WithMetrics(a.Metrics),
		session.WithDebounce(a.Config.Debounce),
		session.WithParagraphMinChars(a.Config.ParagraphMinChars),
	}
	if a.Store != nil {
		opts = append(opts, session.WithStore(a.Store))
	}
	return opts
}

func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
