// Package config loads dailytutor settings from the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/abhisek/dailytutor/internal/asker"
	"github.com/abhisek/dailytutor/internal/llm"
	"github.com/abhisek/dailytutor/internal/session"
	"github.com/abhisek/dailytutor/internal/tutorapi"
	"github.com/abhisek/dailytutor/internal/verdict"
)

// Backend modes.
const (
	ModeAPI     = "api"
	ModeDirect  = "direct"
	ModeOffline = "offline"
)

// Config is the assembled application configuration.
type Config struct {
	APIURL string
	Token  string
	DBPath string // empty means the default data directory
	Locale string

	Timings Timings
	Retry   Retry
	Direct  Direct
	LLM     llm.Config
}

// Timings are the session engine delays.
type Timings struct {
	Reveal           time.Duration `env:"DAILYTUTOR_REVEAL_INTERVAL" envDefault:"18ms"`
	LoaderRotation   time.Duration `env:"DAILYTUTOR_LOADER_INTERVAL" envDefault:"1800ms"`
	CorrectAnimation time.Duration `env:"DAILYTUTOR_CORRECT_ANIMATION" envDefault:"950ms"`
	PaywallDelay     time.Duration `env:"DAILYTUTOR_PAYWALL_DELAY" envDefault:"2s"`
}

// Retry is the request retry policy.
type Retry struct {
	MaxAttempts int           `env:"DAILYTUTOR_MAX_ATTEMPTS" envDefault:"3"`
	RetryDelay  time.Duration `env:"DAILYTUTOR_RETRY_DELAY" envDefault:"700ms"`
	AskTimeout  time.Duration `env:"DAILYTUTOR_ASK_TIMEOUT" envDefault:"35s"`
}

// Direct is the local allowance used when no API is configured.
type Direct struct {
	SessionsPerDay  int    `env:"DAILYTUTOR_DIRECT_SESSIONS_PER_DAY" envDefault:"1"`
	QuestionsPerDay int    `env:"DAILYTUTOR_DIRECT_QUESTIONS_PER_DAY" envDefault:"0"`
	Plan            string `env:"DAILYTUTOR_DIRECT_PLAN" envDefault:"free"`
}

// appEnv holds raw env values for the top-level settings.
type appEnv struct {
	APIURL  string `env:"DAILYTUTOR_API_URL"`
	Token   string `env:"DAILYTUTOR_TOKEN"`
	DBPath  string `env:"DAILYTUTOR_DB"`
	Locale  string `env:"DAILYTUTOR_LOCALE" envDefault:"ru"`
	Timings Timings
	Retry   Retry
	Direct  Direct
}

// Load reads the configuration from the environment and validates it.
func Load() (Config, error) {
	var raw appEnv
	if err := env.Parse(&raw); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	llmCfg, err := llm.ConfigFromEnv()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		APIURL:  raw.APIURL,
		Token:   raw.Token,
		DBPath:  raw.DBPath,
		Locale:  raw.Locale,
		Timings: raw.Timings,
		Retry:   raw.Retry,
		Direct:  raw.Direct,
		LLM:     llmCfg,
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values the environment parser cannot.
func (c Config) Validate() error {
	var errs []error
	if c.APIURL != "" {
		u, err := url.Parse(c.APIURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("DAILYTUTOR_API_URL %q is not an absolute URL", c.APIURL))
		}
	}
	if _, err := verdict.ForLocale(c.Locale); err != nil {
		errs = append(errs, fmt.Errorf("DAILYTUTOR_LOCALE: %w", err))
	}
	if c.Retry.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("DAILYTUTOR_MAX_ATTEMPTS must be at least 1, got %d", c.Retry.MaxAttempts))
	}
	if c.Direct.SessionsPerDay < 0 || c.Direct.QuestionsPerDay < 0 {
		errs = append(errs, errors.New("direct allowance must not be negative"))
	}
	return errors.Join(errs...)
}

// Mode picks the backend: the remote API when a URL is set, an in-process
// LLM provider when one is configured, otherwise the offline demo.
func (c Config) Mode() string {
	switch {
	case c.APIURL != "":
		return ModeAPI
	case c.LLM.Configured():
		return ModeDirect
	default:
		return ModeOffline
	}
}

// SessionTimings converts the timings for the session engine.
func (c Config) SessionTimings() session.Timings {
	t := session.DefaultTimings()
	t.Reveal = c.Timings.Reveal
	t.LoaderRotation = c.Timings.LoaderRotation
	t.CorrectAnimation = c.Timings.CorrectAnimation
	t.PaywallDelay = c.Timings.PaywallDelay
	return t
}

// AskerConfig converts the retry policy.
func (c Config) AskerConfig() asker.Config {
	return asker.Config{
		MaxAttempts: c.Retry.MaxAttempts,
		RetryDelay:  c.Retry.RetryDelay,
		AskTimeout:  c.Retry.AskTimeout,
	}
}

// DirectConfig converts the local allowance for the direct backend.
func (c Config) DirectConfig() tutorapi.DirectConfig {
	return tutorapi.DirectConfig{
		SessionsPerDay:  c.Direct.SessionsPerDay,
		QuestionsPerDay: c.Direct.QuestionsPerDay,
		Plan:            c.Direct.Plan,
		MaxTokens:       c.LLM.MaxTokens,
		Timeout:         c.LLM.Timeout,
	}
}
