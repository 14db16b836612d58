package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig_DefaultsApply(t *testing.T) {
	path := writeConfig(t, "scenario: registration\n")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Target.Host != "http://localhost:3001" {
		t.Errorf("expected default host, got %q", cfg.Target.Host)
	}
	if cfg.Target.Timeout != 30*time.Second {
		t.Errorf("expected 30s timeout, got %v", cfg.Target.Timeout)
	}
	if len(cfg.Registration.Catalog) != 6 {
		t.Errorf("expected 6 catalog entries, got %d", len(cfg.Registration.Catalog))
	}
	w := cfg.Registration.Weights
	if w.Main != 3 || w.Alternative != 2 || w.Random != 1 {
		t.Errorf("expected weights 3:2:1, got %+v", w)
	}
	if got := cfg.WaitBounds(); got.Min != 2*time.Second || got.Max != 5*time.Second {
		t.Errorf("expected registration wait 2s-5s, got %+v", got)
	}
	wantUsers := filepath.Join(filepath.Dir(path), "registration.csv")
	if cfg.Fixtures.Users != wantUsers {
		t.Errorf("expected users path %q, got %q", wantUsers, cfg.Fixtures.Users)
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("TRAINLOAD_TEST_TOKEN", "secret-token")
	path := writeConfig(t, `
scenario: post
target:
  host: "https://staging.example.com"
  token: "${env:TRAINLOAD_TEST_TOKEN}"
  timeout: 5s
  headers:
    X-Run: "${env:TRAINLOAD_TEST_TOKEN}"
wait:
  min: 10ms
  max: 20ms
fixtures:
  upload: /abs/dummy.JPG
post:
  contentPrefix: "Load post"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Target.Token != "secret-token" {
		t.Errorf("expected token from env, got %q", cfg.Target.Token)
	}
	if cfg.Target.Headers["X-Run"] != "secret-token" {
		t.Errorf("expected header from env, got %v", cfg.Target.Headers)
	}
	if cfg.Target.Timeout != 5*time.Second {
		t.Errorf("expected 5s timeout, got %v", cfg.Target.Timeout)
	}
	if got := cfg.WaitBounds(); got.Min != 10*time.Millisecond || got.Max != 20*time.Millisecond {
		t.Errorf("unexpected wait bounds %+v", got)
	}
	if cfg.Fixtures.Upload != "/abs/dummy.JPG" {
		t.Errorf("absolute path should be kept, got %q", cfg.Fixtures.Upload)
	}
	if cfg.Post.ContentPrefix != "Load post" || cfg.Post.MaxSuffix != 1000000 {
		t.Errorf("expected prefix override with default suffix, got %+v", cfg.Post)
	}
}

func TestLoadConfig_CatalogReplaced(t *testing.T) {
	path := writeConfig(t, `
scenario: registration
registration:
  mainTraining: "a1"
  catalog:
    - id: "a1"
      name: "Go Basics"
    - id: "b2"
      name: "Go Advanced"
  weights:
    random: 0
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if len(cfg.Registration.Catalog) != 2 {
		t.Fatalf("expected catalog to be replaced, got %d entries", len(cfg.Registration.Catalog))
	}
	alts := cfg.Registration.Alternatives()
	if len(alts) != 1 || alts[0].ID != "b2" {
		t.Errorf("unexpected alternatives %+v", alts)
	}
	if cfg.Registration.Weights.Main != 3 || cfg.Registration.Weights.Random != 0 {
		t.Errorf("expected partial weight override, got %+v", cfg.Registration.Weights)
	}
}

func TestLoadConfig_LoadProfile(t *testing.T) {
	path := writeConfig(t, `
scenario: training-list
loadProfile:
  phases:
    - name: "ramp"
      duration: 30s
      startActors: 1
      endActors: 10
    - name: "steady"
      duration: 1m
      actors: 10
      rps: 20
thresholds:
  http_req_duration:
    p95: 500ms
  http_req_failed:
    rate: "1%"
execution:
  max_iterations: 100
  seed: 42
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got := cfg.LoadProfile.TotalDuration(); got != 90*time.Second {
		t.Errorf("expected 90s total, got %v", got)
	}
	if cfg.LoadProfile.Phases[1].RPS != 20 {
		t.Errorf("expected rps 20, got %d", cfg.LoadProfile.Phases[1].RPS)
	}
	if cfg.Thresholds == nil || cfg.Thresholds.HTTPReqDuration.P95 != 500*time.Millisecond {
		t.Errorf("thresholds not parsed: %+v", cfg.Thresholds)
	}
	if cfg.Execution.MaxIterations != 100 || cfg.Execution.Seed != 42 {
		t.Errorf("execution not parsed: %+v", cfg.Execution)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig("/nonexistent/config.yaml")
	if err == nil || !strings.Contains(err.Error(), "reading config file") {
		t.Errorf("expected read error, got %v", err)
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "scenario: [unclosed")
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "parsing config file") {
		t.Errorf("expected parse error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"unknown scenario", func(c *Config) { c.Scenario = "checkout" }, "unknown scenario"},
		{"empty host", func(c *Config) { c.Target.Host = "" }, "target.host is required"},
		{"inverted wait", func(c *Config) { c.Wait = &WaitConfig{Min: 2 * time.Second, Max: time.Second} }, "wait.min"},
		{"zero weights", func(c *Config) { c.Registration.Weights = TaskWeights{} }, "must not all be zero"},
		{"negative weight", func(c *Config) { c.Registration.Weights.Random = -1 }, "must not be negative"},
		{"main not in catalog", func(c *Config) { c.Registration.MainTraining = "missing" }, "is not in the catalog"},
		{"empty catalog", func(c *Config) { c.Registration.Catalog = nil }, "catalog must not be empty"},
		{"no alternatives", func(c *Config) {
			c.Registration.Catalog = c.Registration.Catalog[:1]
		}, "no alternative trainings"},
		{"post without upload", func(c *Config) {
			c.Scenario = ScenarioPost
			c.Fixtures.Upload = ""
		}, "fixtures.upload is required"},
		{"record without log", func(c *Config) {
			c.Scenario = ScenarioTrainingList
			c.TrainingList.LogFile = ""
		}, "logFile is required"},
		{"zero phase duration", func(c *Config) {
			c.LoadProfile = &LoadProfile{Phases: []Phase{{Name: "p", Actors: 1}}}
		}, "duration must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}

	if err := Default().Validate(); err != nil {
		t.Errorf("default config should be valid, got %v", err)
	}
}

func TestParse_UnresolvedPlaceholder(t *testing.T) {
	_, err := Parse([]byte(`target: {token: "${env:TRAINLOAD_NEVER_SET}"}`))
	if err == nil || !strings.Contains(err.Error(), "target.token") {
		t.Errorf("expected placeholder error naming target.token, got %v", err)
	}
}

func TestParse_Vars(t *testing.T) {
	t.Setenv("TRAINLOAD_TEST_STAGE", "staging")
	cfg, err := Parse([]byte(`
vars:
  stage: ${env:TRAINLOAD_TEST_STAGE}
  token: abc123
target:
  host: https://${stage}.example.com
  token: ${token}
  headers:
    X-Stage: ${stage}
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Target.Host != "https://staging.example.com" {
		t.Errorf("host = %q", cfg.Target.Host)
	}
	if cfg.Target.Token != "abc123" {
		t.Errorf("token = %q", cfg.Target.Token)
	}
	if cfg.Target.Headers["X-Stage"] != "staging" {
		t.Errorf("headers = %v", cfg.Target.Headers)
	}
}

func TestParse_UnknownVar(t *testing.T) {
	_, err := Parse([]byte(`target: {host: "http://${nope}"}`))
	if err == nil || !strings.Contains(err.Error(), "target.host") {
		t.Errorf("expected error naming target.host, got %v", err)
	}
}
