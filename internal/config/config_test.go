package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"DAILYTUTOR_API_URL", "DAILYTUTOR_TOKEN", "DAILYTUTOR_DB", "DAILYTUTOR_LOCALE",
		"DAILYTUTOR_LLM_PROVIDER", "GEMINI_API_KEY", "OPENAI_API_KEY",
		"ANTHROPIC_API_KEY", "OPENROUTER_API_KEY",
		"DAILYTUTOR_ANTHROPIC_API_KEY", "DAILYTUTOR_OPENAI_API_KEY",
		"DAILYTUTOR_GEMINI_API_KEY", "DAILYTUTOR_OPENROUTER_API_KEY",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Locale != "ru" {
		t.Errorf("Locale = %q, want ru", cfg.Locale)
	}
	if cfg.Retry.MaxAttempts != 3 || cfg.Retry.RetryDelay != 700*time.Millisecond || cfg.Retry.AskTimeout != 35*time.Second {
		t.Errorf("Retry = %+v", cfg.Retry)
	}
	if cfg.Timings.CorrectAnimation != 950*time.Millisecond || cfg.Timings.PaywallDelay != 2*time.Second {
		t.Errorf("Timings = %+v", cfg.Timings)
	}
	if cfg.Direct.SessionsPerDay != 1 || cfg.Direct.Plan != "free" {
		t.Errorf("Direct = %+v", cfg.Direct)
	}
	if cfg.Mode() != ModeOffline {
		t.Errorf("Mode() = %q, want offline", cfg.Mode())
	}
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DAILYTUTOR_API_URL", "https://tutor.example.com/api")
	t.Setenv("DAILYTUTOR_TOKEN", "secret")
	t.Setenv("DAILYTUTOR_MAX_ATTEMPTS", "5")
	t.Setenv("DAILYTUTOR_REVEAL_INTERVAL", "5ms")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Mode() != ModeAPI {
		t.Errorf("Mode() = %q, want api", cfg.Mode())
	}
	if cfg.AskerConfig().MaxAttempts != 5 {
		t.Errorf("MaxAttempts = %d, want 5", cfg.AskerConfig().MaxAttempts)
	}
	st := cfg.SessionTimings()
	if st.Reveal != 5*time.Millisecond || st.Elapsed != time.Second {
		t.Errorf("SessionTimings() = %+v", st)
	}
}

func TestLoad_DirectModeFromVendorKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Mode() != ModeDirect {
		t.Errorf("Mode() = %q, want direct", cfg.Mode())
	}
	if dc := cfg.DirectConfig(); dc.MaxTokens != cfg.LLM.MaxTokens || dc.SessionsPerDay != 1 {
		t.Errorf("DirectConfig() = %+v", dc)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{"relative api url", "DAILYTUTOR_API_URL", "tutor.local", "DAILYTUTOR_API_URL"},
		{"bad locale", "DAILYTUTOR_LOCALE", "??", "DAILYTUTOR_LOCALE"},
		{"zero attempts", "DAILYTUTOR_MAX_ATTEMPTS", "0", "DAILYTUTOR_MAX_ATTEMPTS"},
		{"bad duration", "DAILYTUTOR_RETRY_DELAY", "soon", "parse env"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}
