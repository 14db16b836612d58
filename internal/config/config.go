// Package config handles YAML configuration parsing.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"trainload/internal/collector"
	"trainload/internal/core"
	"trainload/internal/template"

	"gopkg.in/yaml.v3"
)

// Scenario names accepted in the `scenario` field.
const (
	ScenarioPost         = "post"
	ScenarioRegistration = "registration"
	ScenarioTrainingList = "training-list"
)

// Config is the root configuration structure.
type Config struct {
	Scenario     string                `yaml:"scenario"`
	Target       TargetConfig          `yaml:"target"`
	Wait         *WaitConfig           `yaml:"wait,omitempty"`
	Fixtures     FixturesConfig        `yaml:"fixtures"`
	Post         PostConfig            `yaml:"post"`
	Registration RegistrationConfig    `yaml:"registration"`
	TrainingList TrainingListConfig    `yaml:"trainingList"`
	LoadProfile  *LoadProfile          `yaml:"loadProfile,omitempty"`
	Thresholds   *collector.Thresholds `yaml:"thresholds,omitempty"`
	Execution    ExecutionConfig       `yaml:"execution,omitempty"`
	Metrics      MetricsConfig         `yaml:"metrics,omitempty"`
	// Vars are named values available as ${name} in the other string fields.
	Vars map[string]string `yaml:"vars,omitempty"`
}

// TargetConfig describes the service under test.
type TargetConfig struct {
	Host               string            `yaml:"host"`
	Token              string            `yaml:"token"`
	Timeout            time.Duration     `yaml:"timeout"`
	InsecureSkipVerify bool              `yaml:"insecureSkipVerify"`
	Headers            map[string]string `yaml:"headers,omitempty"`
}

// WaitConfig bounds the random pause an actor takes before each task.
type WaitConfig struct {
	Min time.Duration `yaml:"min"`
	Max time.Duration `yaml:"max"`
}

// FixturesConfig points at the actor fixture files.
type FixturesConfig struct {
	Users  string `yaml:"users"`
	Upload string `yaml:"upload"`
}

// PostConfig shapes the multipart post-create request.
type PostConfig struct {
	ContentPrefix string `yaml:"contentPrefix"`
	MaxSuffix     int    `yaml:"maxSuffix"`
	FileName      string `yaml:"fileName"`
	ContentType   string `yaml:"contentType"`
}

// RegistrationConfig holds the training catalog and task weights.
type RegistrationConfig struct {
	MainTraining  string          `yaml:"mainTraining"`
	Catalog       []TrainingEntry `yaml:"catalog"`
	Weights       TaskWeights     `yaml:"weights"`
	Designation   string          `yaml:"designation"`
	LastEducation string          `yaml:"lastEducation"`
}

// TrainingEntry is one registrable training.
type TrainingEntry struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// TaskWeights are the relative frequencies of the registration tasks.
type TaskWeights struct {
	Main        int `yaml:"main"`
	Alternative int `yaml:"alternative"`
	Random      int `yaml:"random"`
}

// TrainingListConfig holds the list query and the response log settings.
type TrainingListConfig struct {
	Page         int    `yaml:"page"`
	Limit        int    `yaml:"limit"`
	FromDate     string `yaml:"fromDate"`
	ToDate       string `yaml:"toDate"`
	DateField    string `yaml:"dateField"`
	Select       string `yaml:"select"`
	Record       bool   `yaml:"record"`
	LogFile      string `yaml:"logFile"`
	DumpResponse bool   `yaml:"dumpResponse"`
}

// ExecutionConfig controls iteration-level execution behavior.
type ExecutionConfig struct {
	MaxIterations    int   `yaml:"max_iterations"`
	WarmupIterations int   `yaml:"warmup_iterations"`
	Seed             int64 `yaml:"seed"` // 0 = random per actor
}

// MetricsConfig enables the Prometheus endpoint when Listen is set.
type MetricsConfig struct {
	Listen string `yaml:"listen"`
}

// LoadProfile defines the load pattern for a test.
type LoadProfile struct {
	Phases []Phase `yaml:"phases"`
}

// TotalDuration returns the sum of all phase durations.
func (lp *LoadProfile) TotalDuration() time.Duration {
	var total time.Duration
	for _, p := range lp.Phases {
		total += p.Duration
	}
	return total
}

// Phase represents a single phase in the load profile.
type Phase struct {
	Name        string        `yaml:"name"`
	Duration    time.Duration `yaml:"duration"`
	Actors      int           `yaml:"actors"`
	StartActors int           `yaml:"startActors"`
	EndActors   int           `yaml:"endActors"`
	RPS         int           `yaml:"rps"`
}

// Default returns the configuration the training service was load tested with.
func Default() *Config {
	return &Config{
		Scenario: ScenarioRegistration,
		Target: TargetConfig{
			Host:               "http://localhost:3001",
			Timeout:            30 * time.Second,
			InsecureSkipVerify: true,
		},
		Fixtures: FixturesConfig{
			Users:  "registration.csv",
			Upload: "dummy.JPG",
		},
		Post: PostConfig{
			ContentPrefix: "Test post",
			MaxSuffix:     1000000,
			FileName:      "test.png",
			ContentType:   "image/png",
		},
		Registration: RegistrationConfig{
			MainTraining: "68fdbd54adeaed890251a76e",
			Catalog: []TrainingEntry{
				{ID: "68fdbd54adeaed890251a76e", Name: "Main Training"},
				{ID: "68f890dd844d9ad7d2f39925", Name: "Node.js Training 11"},
				{ID: "68f890d3844d9ad7d2f39922", Name: "Node.js Training 10"},
				{ID: "68f890ca844d9ad7d2f3991f", Name: "Node.js Training 09"},
				{ID: "68f890c0844d9ad7d2f3991c", Name: "Node.js Training 08"},
				{ID: "68f88a48cbb8b656f316020b", Name: "Node.js Training 04"},
			},
			Weights:       TaskWeights{Main: 3, Alternative: 2, Random: 1},
			Designation:   "Software Engineer",
			LastEducation: "BSc in Computer Science",
		},
		TrainingList: TrainingListConfig{
			Page:      1,
			Limit:     6,
			FromDate:  "2025-10-26",
			ToDate:    "2026-02-26",
			DateField: "startDateTime",
			Select:    "_id,title,startDateTime,endDateTime,trainerName,trainerDesignation,trainingVenue,lastRegistrationDateTime",
			Record:    true,
			LogFile:   "training_api_responses.csv",
		},
	}
}

// defaultWaits mirrors the pacing each scenario was tuned with.
var defaultWaits = map[string]WaitConfig{
	ScenarioPost:         {Min: 50 * time.Millisecond, Max: 200 * time.Millisecond},
	ScenarioRegistration: {Min: 2 * time.Second, Max: 5 * time.Second},
	ScenarioTrainingList: {Min: 1 * time.Second, Max: 3 * time.Second},
}

// WaitBounds returns the configured wait bounds or the scenario default.
func (c *Config) WaitBounds() WaitConfig {
	if c.Wait != nil {
		return *c.Wait
	}
	return defaultWaits[c.Scenario]
}

// LoadConfig reads a YAML configuration file, overlays it on Default(),
// resolves placeholders and validates the result.
// Relative fixture paths are resolved against the config file's directory.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	cfg.resolvePaths(filepath.Dir(path))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Parse decodes YAML over Default() and resolves placeholders. It does not validate.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if err := cfg.resolvePlaceholders(); err != nil {
		return nil, fmt.Errorf("resolving config placeholders: %w", err)
	}
	return cfg, nil
}

func (c *Config) resolvePlaceholders() error {
	fields := []struct {
		name string
		ptr  *string
	}{
		{"target.host", &c.Target.Host},
		{"target.token", &c.Target.Token},
		{"fixtures.users", &c.Fixtures.Users},
		{"fixtures.upload", &c.Fixtures.Upload},
		{"trainingList.fromDate", &c.TrainingList.FromDate},
		{"trainingList.toDate", &c.TrainingList.ToDate},
		{"trainingList.logFile", &c.TrainingList.LogFile},
	}

	var errs []error
	vars := core.NewVariables()
	for name, raw := range c.Vars {
		v, err := template.Substitute(raw, nil)
		if err != nil {
			errs = append(errs, fmt.Errorf("vars.%s: %w", name, err))
			continue
		}
		vars.Set(name, v)
	}

	for _, f := range fields {
		v, err := template.Substitute(*f.ptr, vars)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", f.name, err))
			continue
		}
		*f.ptr = v
	}

	headers, err := template.SubstituteMap(c.Target.Headers, vars)
	if err != nil {
		errs = append(errs, fmt.Errorf("target.headers: %w", err))
	} else {
		c.Target.Headers = headers
	}
	return errors.Join(errs...)
}

func (c *Config) resolvePaths(dir string) {
	for _, p := range []*string{&c.Fixtures.Users, &c.Fixtures.Upload} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
}

// Validate reports every problem found in the configuration.
func (c *Config) Validate() error {
	var errs []error

	if _, ok := defaultWaits[c.Scenario]; !ok {
		errs = append(errs, fmt.Errorf("unknown scenario %q (use %s, %s or %s)",
			c.Scenario, ScenarioPost, ScenarioRegistration, ScenarioTrainingList))
	}
	if c.Target.Host == "" {
		errs = append(errs, errors.New("target.host is required"))
	}
	if c.Target.Timeout < 0 {
		errs = append(errs, errors.New("target.timeout must not be negative"))
	}

	w := c.WaitBounds()
	if w.Min < 0 || w.Max < 0 {
		errs = append(errs, errors.New("wait bounds must not be negative"))
	}
	if w.Min > w.Max {
		errs = append(errs, fmt.Errorf("wait.min (%v) must be <= wait.max (%v)", w.Min, w.Max))
	}

	switch c.Scenario {
	case ScenarioPost:
		if c.Fixtures.Upload == "" {
			errs = append(errs, errors.New("fixtures.upload is required for the post scenario"))
		}
		if c.Post.MaxSuffix < 1 {
			errs = append(errs, errors.New("post.maxSuffix must be >= 1"))
		}
	case ScenarioRegistration:
		errs = append(errs, c.Registration.validate()...)
	case ScenarioTrainingList:
		if c.TrainingList.Record && c.TrainingList.LogFile == "" {
			errs = append(errs, errors.New("trainingList.logFile is required when record is enabled"))
		}
	}

	if err := c.Thresholds.Validate(); err != nil {
		errs = append(errs, err)
	}

	if c.LoadProfile != nil {
		for i, p := range c.LoadProfile.Phases {
			if p.Duration <= 0 {
				errs = append(errs, fmt.Errorf("loadProfile.phases[%d]: duration must be positive", i))
			}
		}
	}

	return errors.Join(errs...)
}

func (r *RegistrationConfig) validate() []error {
	var errs []error
	if len(r.Catalog) == 0 {
		errs = append(errs, errors.New("registration.catalog must not be empty"))
	}
	if _, ok := r.Lookup(r.MainTraining); !ok {
		errs = append(errs, fmt.Errorf("registration.mainTraining %q is not in the catalog", r.MainTraining))
	}
	w := r.Weights
	if w.Main < 0 || w.Alternative < 0 || w.Random < 0 {
		errs = append(errs, errors.New("registration.weights must not be negative"))
	}
	if w.Main+w.Alternative+w.Random == 0 {
		errs = append(errs, errors.New("registration.weights must not all be zero"))
	}
	if w.Alternative > 0 && len(r.Alternatives()) == 0 {
		errs = append(errs, errors.New("registration.weights.alternative is set but the catalog has no alternative trainings"))
	}
	return errs
}

// Lookup finds a catalog entry by training id.
func (r *RegistrationConfig) Lookup(id string) (TrainingEntry, bool) {
	for _, e := range r.Catalog {
		if e.ID == id {
			return e, true
		}
	}
	return TrainingEntry{}, false
}

// Alternatives returns the catalog without the main training, in catalog order.
func (r *RegistrationConfig) Alternatives() []TrainingEntry {
	out := make([]TrainingEntry, 0, len(r.Catalog))
	for _, e := range r.Catalog {
		if e.ID != r.MainTraining {
			out = append(out, e)
		}
	}
	return out
}
