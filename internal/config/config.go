// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Responder modes.
const (
	ResponderRules  = "rules"
	ResponderRemote = "remote"
)

// Remote responder backends.
const (
	BackendDashScope = "dashscope"
	BackendGemini    = "gemini"
)

// Config holds all application configuration.
type Config struct {
	Port         string
	FrontendURL  string
	DBPath       string
	ContentDir   string // empty = embedded demo fixtures
	WatchContent bool
	SessionTTL   time.Duration
	Reveal       RevealConfig
	Responder    ResponderConfig
}

// RevealConfig controls the simulated pacing of the demo.
type RevealConfig struct {
	Interval        time.Duration // minimum gap between two revealed chat turns
	AgentDelay      time.Duration // pause before the clinical decision agent
	PredictionDelay time.Duration
}

// ResponderConfig selects how assistant replies are produced.
// API keys are deliberately absent: they are read from the environment at call time.
type ResponderConfig struct {
	Mode      string
	RulesFile string
	Backend   string
	AppID     string
	BaseURL   string
	Model     string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:         getEnv("PORT", "8080"),
		FrontendURL:  getEnv("FRONTEND_URL", ""),
		DBPath:       getEnv("DB_PATH", "./data/kneeoa.db"),
		ContentDir:   getEnv("CONTENT_DIR", ""),
		WatchContent: getEnvBool("CONTENT_WATCH", false),
		SessionTTL:   getEnvDuration("SESSION_TTL", 60*time.Minute),
		Reveal: RevealConfig{
			Interval:        getEnvDuration("REVEAL_INTERVAL", 2*time.Second),
			AgentDelay:      getEnvDuration("AGENT_REASONING_DELAY", 3*time.Second),
			PredictionDelay: getEnvDuration("PREDICTION_DELAY", 3*time.Second),
		},
		Responder: ResponderConfig{
			Mode:      strings.ToLower(getEnv("RESPONDER", ResponderRules)),
			RulesFile: getEnv("RESPONDER_RULES_FILE", ""),
			Backend:   strings.ToLower(getEnv("REMOTE_BACKEND", BackendDashScope)),
			AppID:     getEnv("DASHSCOPE_APP_ID", ""),
			BaseURL:   getEnv("DASHSCOPE_BASE_URL", "https://dashscope.aliyuncs.com"),
			Model:     getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be > 0")
	}
	if c.Reveal.Interval <= 0 {
		return fmt.Errorf("REVEAL_INTERVAL must be > 0")
	}
	if c.Reveal.AgentDelay < 0 || c.Reveal.PredictionDelay < 0 {
		return fmt.Errorf("simulated delays cannot be negative")
	}
	switch c.Responder.Mode {
	case ResponderRules, ResponderRemote:
	default:
		return fmt.Errorf("RESPONDER must be %q or %q, got %q", ResponderRules, ResponderRemote, c.Responder.Mode)
	}
	switch c.Responder.Backend {
	case BackendDashScope, BackendGemini:
	default:
		return fmt.Errorf("REMOTE_BACKEND must be %q or %q, got %q", BackendDashScope, BackendGemini, c.Responder.Backend)
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

// getEnvDuration accepts Go durations ("1500ms") or plain seconds ("3").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	value = strings.TrimSpace(value)
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if _, err := strconv.Atoi(value); err == nil {
		return time.Duration(getEnvInt(key, 0)) * time.Second
	}
	return fallback
}
