package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if cfg.Model != defaultModel {
		t.Errorf("expected default model %q, got %q", defaultModel, cfg.Model)
	}
	if cfg.UpstreamURL != defaultUpstreamURL {
		t.Errorf("expected default upstream %q, got %q", defaultUpstreamURL, cfg.UpstreamURL)
	}
	if cfg.Addr != defaultAddr {
		t.Errorf("expected default addr %q, got %q", defaultAddr, cfg.Addr)
	}
	if cfg.Timeout() != defaultReadTimeout {
		t.Errorf("expected default timeout %v, got %v", defaultReadTimeout, cfg.Timeout())
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv(envKeyModel, "deepseek-coder")
	t.Setenv(envKeyUpstreamURL, "http://gpu-box:11434/api/generate")
	t.Setenv(envKeyAddr, ":9000")
	t.Setenv(envKeyReadTimeout, "15s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if cfg.Model != "deepseek-coder" {
		t.Errorf("expected model from env, got: %s", cfg.Model)
	}
	if cfg.UpstreamURL != "http://gpu-box:11434/api/generate" {
		t.Errorf("expected upstream from env, got: %s", cfg.UpstreamURL)
	}
	if cfg.Addr != ":9000" {
		t.Errorf("expected addr from env, got: %s", cfg.Addr)
	}
	if cfg.Timeout() != 15*time.Second {
		t.Errorf("expected 15s timeout, got: %v", cfg.Timeout())
	}
}

func TestSetters_PersistAndEnvWins(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if err := SetModel("starcoder"); err != nil {
		t.Fatalf("SetModel failed: %v", err)
	}
	if err := SetUpstreamURL("http://127.0.0.1:8080/generate"); err != nil {
		t.Fatalf("SetUpstreamURL failed: %v", err)
	}
	if err := SetReadTimeout(2 * time.Minute); err != nil {
		t.Fatalf("SetReadTimeout failed: %v", err)
	}

	cfg, _ := Load()
	if cfg.Model != "starcoder" {
		t.Errorf("expected persisted model, got %q", cfg.Model)
	}
	if cfg.UpstreamURL != "http://127.0.0.1:8080/generate" {
		t.Errorf("expected persisted upstream, got %q", cfg.UpstreamURL)
	}
	if cfg.Timeout() != 2*time.Minute {
		t.Errorf("expected persisted timeout, got %v", cfg.Timeout())
	}

	t.Setenv(envKeyModel, "from-env")
	cfg, _ = Load()
	if cfg.Model != "from-env" {
		t.Errorf("env should override file, got %q", cfg.Model)
	}
}

func TestTimeout_InvalidFallsBack(t *testing.T) {
	for _, v := range []string{"soon", "-5s", "0s"} {
		cfg := &Config{ReadTimeout: v}
		if cfg.Timeout() != defaultReadTimeout {
			t.Errorf("%q: expected fallback to %v, got %v", v, defaultReadTimeout, cfg.Timeout())
		}
	}
}

func TestLoad_NeverErrors(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := Load()
	if err != nil {
		t.Fatalf("Load should never error, got: %v", err)
	}
}
