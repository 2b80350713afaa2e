package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/amishk599/stagescout/internal/model"
)

// EnvPath names the environment variable consulted for the config path.
const EnvPath = "STAGESCOUT_CONFIG"

// DefaultPath is used when neither a flag nor EnvPath is set.
const DefaultPath = "config.yaml"

const (
	defaultDatabaseURL = "sqlite://jobs.db"
	defaultTimeout     = 20 * time.Second
	defaultMinDelay    = 250 * time.Millisecond
	defaultSchedule    = "@every 6h"
	slackWebhookPrefix = "https://hooks.slack.com/"
)

// placeholders are identifier values left over from config templates.
var placeholders = map[string]bool{
	"company1": true, "company2": true, "company3": true, "company4": true, "company5": true,
	"company6": true, "company7": true, "company8": true, "company9": true, "company11": true,
	"tenant": true, "careers": true,
}

// Config is the root configuration for a scraping run.
type Config struct {
	DatabaseURL  string
	HTTP         HTTPConfig
	RateLimit    RateLimitConfig
	Concurrency  int
	Schedule     string
	Filters      FilterConfig
	Notification NotificationConfig
	Sources      []SourceConfig
}

// HTTPConfig controls the shared HTTP client.
type HTTPConfig struct {
	Timeout   time.Duration // per-request timeout
	UserAgent string        // empty keeps the built-in agent
}

// RateLimitConfig controls per-host politeness.
type RateLimitConfig struct {
	MinDelay      time.Duration            // minimum gap between requests to the same host
	HostOverrides map[string]time.Duration // per-host overrides, keyed by host name
}

// FilterConfig toggles the classifier filters and the keyword filter.
type FilterConfig struct {
	InternOnly           bool
	CSOnly               bool
	FranceOnly           bool
	LangFrEnOnly         bool
	ExcludeTitleKeywords []string
	Locations            []string
}

// NotificationConfig controls which notifier is used and its settings.
type NotificationConfig struct {
	Type       string `yaml:"type"`        // "log", "slack" or empty for none
	WebhookURL string `yaml:"webhook_url"` // required if type is "slack"
}

// SourceConfig describes one board to scrape.
type SourceConfig struct {
	Type    string
	ID      model.Identifier
	Company string
	Enabled bool
	Err     error // set when the entry is malformed; the source is skipped
}

// Label names the source in logs and reports: "type:company" when a company
// is configured, "type:identifier" otherwise.
func (s SourceConfig) Label() string {
	if c := strings.TrimSpace(s.Company); c != "" {
		return s.Type + ":" + c
	}
	return s.Type + ":" + s.ID.String()
}

// IsPlaceholder reports whether any identifier value is a template
// placeholder such as "company1" or "tenant".
func (s SourceConfig) IsPlaceholder() bool {
	for _, v := range s.ID.Values() {
		if placeholders[strings.ToLower(strings.TrimSpace(v))] {
			return true
		}
	}
	return false
}

// rawConfig is used for YAML unmarshaling (snake_case fields and duration as string).
type rawConfig struct {
	DatabaseURL  string             `yaml:"database_url"`
	HTTP         rawHTTPConfig      `yaml:"http"`
	RateLimit    rawRateLimitConfig `yaml:"rate_limit"`
	Concurrency  int                `yaml:"concurrency"`
	Schedule     string             `yaml:"schedule"`
	Filters      rawFilterConfig    `yaml:"filters"`
	Notification NotificationConfig `yaml:"notification"`
	Sources      []rawSourceConfig  `yaml:"sources"`
}

type rawHTTPConfig struct {
	Timeout   string `yaml:"timeout"`
	UserAgent string `yaml:"user_agent"`
}

type rawRateLimitConfig struct {
	MinDelay      string            `yaml:"min_delay"`
	HostOverrides map[string]string `yaml:"host_overrides"`
}

type rawFilterConfig struct {
	InternOnly           *bool    `yaml:"intern_only"`
	CSOnly               *bool    `yaml:"cs_only"`
	FranceOnly           *bool    `yaml:"france_only"`
	LangFrEnOnly         *bool    `yaml:"lang_fr_en_only"`
	ExcludeTitleKeywords []string `yaml:"exclude_title_keywords"`
	Locations            []string `yaml:"locations"`
}

type rawSourceConfig struct {
	Type    string    `yaml:"type"`
	Slug    yaml.Node `yaml:"slug"`
	Company string    `yaml:"company"`
	Enabled *bool     `yaml:"enabled"`
}

// Path resolves the config file location: the flag value, then EnvPath,
// then DefaultPath.
func Path(flagValue string) string {
	if p := strings.TrimSpace(flagValue); p != "" {
		return p
	}
	if p := strings.TrimSpace(os.Getenv(EnvPath)); p != "" {
		return p
	}
	return DefaultPath
}

// Load reads and parses the YAML config file at path, validates it, and returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML config bytes, expanding environment variables first.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	timeout, err := parseDuration("http.timeout", raw.HTTP.Timeout, defaultTimeout)
	if err != nil {
		return nil, err
	}
	minDelay, err := parseDuration("rate_limit.min_delay", raw.RateLimit.MinDelay, defaultMinDelay)
	if err != nil {
		return nil, err
	}
	hostOverrides := make(map[string]time.Duration)
	for host, v := range raw.RateLimit.HostOverrides {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("parse rate_limit.host_overrides[%q]: %w", host, err)
		}
		hostOverrides[host] = d
	}

	sources := make([]SourceConfig, 0, len(raw.Sources))
	for i, rs := range raw.Sources {
		sc := SourceConfig{
			Type:    strings.ToLower(strings.TrimSpace(rs.Type)),
			Company: strings.TrimSpace(rs.Company),
			Enabled: boolOr(rs.Enabled, true),
		}
		id, err := decodeIdentifier(&rs.Slug)
		switch {
		case err != nil:
			sc.Err = fmt.Errorf("sources[%d].slug: %w", i, err)
		case sc.Type == "":
			sc.Err = fmt.Errorf("sources[%d].type is required", i)
		}
		sc.ID = id
		sources = append(sources, sc)
	}

	cfg := &Config{
		DatabaseURL: orDefault(raw.DatabaseURL, defaultDatabaseURL),
		HTTP: HTTPConfig{
			Timeout:   timeout,
			UserAgent: strings.TrimSpace(raw.HTTP.UserAgent),
		},
		RateLimit: RateLimitConfig{
			MinDelay:      minDelay,
			HostOverrides: hostOverrides,
		},
		Concurrency: raw.Concurrency,
		Schedule:    orDefault(raw.Schedule, defaultSchedule),
		Filters: FilterConfig{
			InternOnly:           boolOr(raw.Filters.InternOnly, true),
			CSOnly:               boolOr(raw.Filters.CSOnly, true),
			FranceOnly:           boolOr(raw.Filters.FranceOnly, false),
			LangFrEnOnly:         boolOr(raw.Filters.LangFrEnOnly, true),
			ExcludeTitleKeywords: raw.Filters.ExcludeTitleKeywords,
			Locations:            raw.Filters.Locations,
		},
		Notification: raw.Notification,
		Sources:      sources,
	}
	if cfg.Concurrency == 0 {
		cfg.Concurrency = 1
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// EnabledSources returns the sources not switched off, in file order.
func (c *Config) EnabledSources() []SourceConfig {
	out := make([]SourceConfig, 0, len(c.Sources))
	for _, s := range c.Sources {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out
}

// decodeIdentifier accepts a scalar slug or a mapping of named parts.
func decodeIdentifier(n *yaml.Node) (model.Identifier, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		return model.Slug(strings.TrimSpace(n.Value)), nil
	case yaml.MappingNode:
		parts := make(map[string]string)
		if err := n.Decode(&parts); err != nil {
			return model.Identifier{}, err
		}
		return model.Composite(parts), nil
	case 0:
		return model.Identifier{}, errors.New("missing")
	default:
		return model.Identifier{}, fmt.Errorf("expected a string or a mapping at line %d", n.Line)
	}
}

func validate(cfg *Config) error {
	if cfg.Concurrency < 1 {
		return fmt.Errorf("concurrency must be positive, got %d", cfg.Concurrency)
	}
	if cfg.HTTP.Timeout <= 0 {
		return fmt.Errorf("http.timeout must be positive, got %v", cfg.HTTP.Timeout)
	}
	if cfg.RateLimit.MinDelay < 0 {
		return fmt.Errorf("rate_limit.min_delay must not be negative, got %v", cfg.RateLimit.MinDelay)
	}
	if _, err := cron.ParseStandard(cfg.Schedule); err != nil {
		return fmt.Errorf("schedule %q: %w", cfg.Schedule, err)
	}

	enabled := 0
	for _, s := range cfg.Sources {
		if s.Enabled {
			enabled++
		}
	}
	if enabled == 0 {
		return fmt.Errorf("at least one source must be enabled")
	}

	switch cfg.Notification.Type {
	case "", "log":
	case "slack":
		if cfg.Notification.WebhookURL == "" {
			return fmt.Errorf("notification.webhook_url is required when type is \"slack\"")
		}
		if !strings.HasPrefix(cfg.Notification.WebhookURL, slackWebhookPrefix) {
			return fmt.Errorf("notification.webhook_url must start with %s", slackWebhookPrefix)
		}
	default:
		return fmt.Errorf("unknown notification.type %q", cfg.Notification.Type)
	}
	return nil
}

func parseDuration(key, v string, def time.Duration) (time.Duration, error) {
	if strings.TrimSpace(v) == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", key, v, err)
	}
	return d, nil
}

func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}
