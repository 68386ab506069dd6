package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/dailytutor/internal/asker"
	"github.com/abhisek/dailytutor/internal/config"
	"github.com/abhisek/dailytutor/internal/llm"
	"github.com/abhisek/dailytutor/internal/quota"
	"github.com/abhisek/dailytutor/internal/session"
	"github.com/abhisek/dailytutor/internal/store"
	"github.com/abhisek/dailytutor/internal/topic"
	"github.com/abhisek/dailytutor/internal/tutorapi"
	"github.com/abhisek/dailytutor/internal/verdict"
)

// buildBackend selects the tutoring backend for the configured mode.
func buildBackend(ctx context.Context, cfg config.Config, st *store.Store) (tutorapi.Backend, error) {
	switch cfg.Mode() {
	case config.ModeAPI:
		opts := []tutorapi.Option{tutorapi.WithTimeout(cfg.Retry.AskTimeout)}
		if cfg.Token != "" {
			opts = append(opts, tutorapi.WithToken(cfg.Token))
		}
		return tutorapi.NewHTTPClient(cfg.APIURL, opts...), nil

	case config.ModeDirect:
		provider, err := llm.NewProvider(ctx, cfg.LLM, st.EventRepo())
		if err != nil {
			return nil, fmt.Errorf("build LLM provider: %w", err)
		}
		return tutorapi.NewDirect(provider, st.CounterRepo(), cfg.DirectConfig()), nil

	default:
		llmCfg := cfg.LLM
		llmCfg.Provider = "mock"
		provider, err := llm.NewProvider(ctx, llmCfg, st.EventRepo())
		if err != nil {
			return nil, fmt.Errorf("build offline provider: %w", err)
		}
		return tutorapi.NewDirect(provider, st.CounterRepo(), cfg.DirectConfig()), nil
	}
}

// newAsker wraps the backend with the configured retry policy and records
// every attempt as a request event.
func newAsker(cfg config.Config, st *store.Store, backend tutorapi.Backend) *asker.Client {
	return asker.New(backend, cfg.AskerConfig(), asker.WithEvents(st.EventRepo()))
}

// engineFactory returns a constructor for fresh session engines sharing one
// backend and store.
func engineFactory(cfg config.Config, st *store.Store, backend tutorapi.Backend) (func() *session.Engine, error) {
	catalog, err := topic.DefaultCatalog()
	if err != nil {
		return nil, err
	}
	classifier, err := verdict.ForLocale(cfg.Locale)
	if err != nil {
		return nil, err
	}
	client := newAsker(cfg, st, backend)
	timings := cfg.SessionTimings()

	return func() *session.Engine {
		return session.New(session.Deps{
			Requester:  client,
			Gate:       quota.NewGate(backend),
			Catalog:    catalog,
			Counter:    st.CounterRepo(),
			Profile:    st.ProfileRepo(),
			Sessions:   st.SessionRepo(),
			Classifier: classifier,
			Now:        time.Now,
		}, timings)
	}, nil
}
