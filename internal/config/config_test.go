package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Reveal.Interval != 2*time.Second {
		t.Errorf("expected 2s reveal interval, got %v", cfg.Reveal.Interval)
	}
	if cfg.Reveal.AgentDelay != 3*time.Second {
		t.Errorf("expected 3s agent delay, got %v", cfg.Reveal.AgentDelay)
	}
	if cfg.Responder.Mode != ResponderRules {
		t.Errorf("expected rules responder by default, got %q", cfg.Responder.Mode)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("REVEAL_INTERVAL", "1500ms")
	t.Setenv("AGENT_REASONING_DELAY", "0")
	t.Setenv("RESPONDER", "Remote")
	t.Setenv("REMOTE_BACKEND", "gemini")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Reveal.Interval != 1500*time.Millisecond {
		t.Errorf("expected 1500ms, got %v", cfg.Reveal.Interval)
	}
	if cfg.Reveal.AgentDelay != 0 {
		t.Errorf("expected zero agent delay, got %v", cfg.Reveal.AgentDelay)
	}
	if cfg.Responder.Mode != ResponderRemote || cfg.Responder.Backend != BackendGemini {
		t.Errorf("unexpected responder config: %+v", cfg.Responder)
	}
}

func TestValidateRejectsUnknownResponder(t *testing.T) {
	t.Setenv("RESPONDER", "oracle")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown responder mode")
	}
}

func TestValidateRejectsNonPositiveInterval(t *testing.T) {
	t.Setenv("REVEAL_INTERVAL", "0s")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for zero reveal interval")
	}
}
