package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/umputun/kleinwatch/pkg/validation"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// Config holds the application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" json:"server" jsonschema:"description=Server configuration"`
	Database DatabaseConfig `yaml:"database" json:"database" jsonschema:"description=Database configuration"`
	Schedule ScheduleConfig `yaml:"schedule" json:"schedule" jsonschema:"description=Discovery and notification cycles"`
	Scraper  ScraperConfig  `yaml:"scraper" json:"scraper" jsonschema:"description=Listing index scraper"`
	Telegram TelegramConfig `yaml:"telegram" json:"telegram" jsonschema:"description=Telegram notification channel"`
	LLM      LLMConfig      `yaml:"llm" json:"llm" jsonschema:"required,description=LLM configuration for preference extraction"`
	Sessions SessionsConfig `yaml:"sessions" json:"sessions" jsonschema:"description=Dialog session storage"`
	Refdata  RefdataConfig  `yaml:"refdata" json:"refdata" jsonschema:"description=Category and city reference data overrides"`
}

// ServerConfig holds http server settings
type ServerConfig struct {
	Listen  string        `yaml:"listen" json:"listen" jsonschema:"default=:8080,description=HTTP server listen address"`
	Timeout time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=HTTP server timeout" validate:"gte=1s"`
	BaseURL string        `yaml:"base_url" json:"base_url" jsonschema:"default=http://localhost:8080,description=Base URL for RSS feed links" validate:"omitempty,url"`
}

// DatabaseConfig holds database settings
type DatabaseConfig struct {
	DSN             string `yaml:"dsn" json:"dsn" jsonschema:"default=file:kleinwatch.db?cache=shared&mode=rwc,description=Database connection string"`
	MaxOpenConns    int    `yaml:"max_open_conns" json:"max_open_conns" jsonschema:"default=10,description=Maximum number of open connections" validate:"gte=0"`
	MaxIdleConns    int    `yaml:"max_idle_conns" json:"max_idle_conns" jsonschema:"default=5,description=Maximum number of idle connections" validate:"gte=0"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime" json:"conn_max_lifetime" jsonschema:"default=3600,description=Connection maximum lifetime in seconds" validate:"gte=0"`
}

// ScheduleConfig holds cycle settings
type ScheduleConfig struct {
	DiscoveryInterval time.Duration `yaml:"discovery_interval" json:"discovery_interval" jsonschema:"default=5m,description=Interval between discovery cycles" validate:"gte=1s"`
	NotifyInterval    time.Duration `yaml:"notify_interval" json:"notify_interval" jsonschema:"default=5m,description=Interval between notification cycles" validate:"gte=1s"`
	MaxWorkers        int           `yaml:"max_workers" json:"max_workers" jsonschema:"default=4,description=Maximum concurrent scrape tasks" validate:"min=1,max=32"`
	NotifyDelay       time.Duration `yaml:"notify_delay" json:"notify_delay" jsonschema:"default=500ms,description=Pause after each delivered notification" validate:"gte=0"`
}

// ScraperConfig holds listing index scraper settings
type ScraperConfig struct {
	BaseURL     string        `yaml:"base_url" json:"base_url" jsonschema:"default=https://www.kleinanzeigen.de,description=Listing site root" validate:"url"`
	Timeout     time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=10s,description=Page request timeout" validate:"gte=1s"`
	MaxPages    int           `yaml:"max_pages" json:"max_pages" jsonschema:"default=50,description=Maximum index pages per task" validate:"min=1,max=50"`
	CutoffDays  int           `yaml:"cutoff_days" json:"cutoff_days" jsonschema:"default=90,description=Listings older than this are not collected" validate:"min=1"`
	RequestRate float64       `yaml:"request_rate" json:"request_rate" jsonschema:"default=2,description=Page requests per second over all tasks" validate:"gt=0"`
	UserAgent   string        `yaml:"user_agent" json:"user_agent" jsonschema:"description=Fixed user agent (random browser agent if empty)"`
}

// TelegramConfig holds notification channel settings
type TelegramConfig struct {
	Token            string `yaml:"token" json:"token" jsonschema:"description=Bot token (can use environment variable) required unless dry-run"`
	APIURL           string `yaml:"api_url" json:"api_url" jsonschema:"default=https://api.telegram.org,description=Bot API root" validate:"url"`
	MaxMessageLength int    `yaml:"max_message_length" json:"max_message_length" jsonschema:"default=4096,description=Message length cap" validate:"min=100,max=4096"`
}

// LLMConfig holds LLM configuration for preference extraction
type LLMConfig struct {
	Endpoint     string        `yaml:"endpoint" json:"endpoint" jsonschema:"default=https://api.openai.com/v1,description=OpenAI-compatible API endpoint" validate:"url"`
	APIKey       string        `yaml:"api_key" json:"api_key" jsonschema:"required,description=API key (can use environment variable)"`
	Model        string        `yaml:"model" json:"model" jsonschema:"default=gpt-4o-mini,description=Model name"`
	Temperature  float64       `yaml:"temperature" json:"temperature" jsonschema:"default=0.1,description=Temperature for response generation" validate:"gte=0,lte=2"`
	MaxTokens    int           `yaml:"max_tokens" json:"max_tokens" jsonschema:"default=500,description=Maximum tokens in response" validate:"min=1"`
	Timeout      time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=Request timeout" validate:"gte=1s"`
	JSONMode     bool          `yaml:"json_mode" json:"json_mode" jsonschema:"default=false,description=Use JSON response format (not all models support this)"`
	SystemPrompt string        `yaml:"system_prompt" json:"system_prompt" jsonschema:"description=System prompt override (optional)"`
}

// SessionsConfig holds dialog session store settings
type SessionsConfig struct {
	RedisURL string        `yaml:"redis_url" json:"redis_url" jsonschema:"description=Redis URL (in-memory store if empty)"`
	TTL      time.Duration `yaml:"ttl" json:"ttl" jsonschema:"default=30m,description=Idle dialog expiration" validate:"gte=1s"`
}

// RefdataConfig holds reference data file overrides
type RefdataConfig struct {
	Categories string `yaml:"categories" json:"categories" jsonschema:"description=Categories JSON file (embedded data if empty)"`
	Cities     string `yaml:"cities" json:"cities" jsonschema:"description=Cities JSON file (embedded data if empty)"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.setDefaults()

	if err := validation.New().Validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	if err := VerifyRequired(&cfg); err != nil {
		return nil, fmt.Errorf("verify config: %w", err)
	}
	return &cfg, nil
}

// RequireTelegram checks the settings needed to deliver notifications
func (c *Config) RequireTelegram() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("telegram.token is required")
	}
	return nil
}

// GetServerConfig returns server listen address and timeout
func (c *Config) GetServerConfig() (listen string, timeout time.Duration) {
	return c.Server.Listen, c.Server.Timeout
}

// GetBaseURL returns the public base url used in feed links
func (c *Config) GetBaseURL() string {
	return c.Server.BaseURL
}

func (c *Config) setDefaults() {
	// server
	if c.Server.Listen == "" {
		c.Server.Listen = ":8080"
	}
	if c.Server.Timeout == 0 {
		c.Server.Timeout = 30 * time.Second
	}
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = "http://localhost:8080"
	}

	// database
	if c.Database.DSN == "" {
		c.Database.DSN = "file:kleinwatch.db?cache=shared&mode=rwc&_txlock=immediate"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 10
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = 3600
	}

	// schedule
	if c.Schedule.DiscoveryInterval == 0 {
		c.Schedule.DiscoveryInterval = 300 * time.Second
	}
	if c.Schedule.NotifyInterval == 0 {
		c.Schedule.NotifyInterval = 300 * time.Second
	}
	if c.Schedule.MaxWorkers == 0 {
		c.Schedule.MaxWorkers = 4
	}
	if c.Schedule.NotifyDelay == 0 {
		c.Schedule.NotifyDelay = 500 * time.Millisecond
	}

	// scraper
	if c.Scraper.BaseURL == "" {
		c.Scraper.BaseURL = "https://www.kleinanzeigen.de"
	}
	if c.Scraper.Timeout == 0 {
		c.Scraper.Timeout = 10 * time.Second
	}
	if c.Scraper.MaxPages == 0 {
		c.Scraper.MaxPages = 50
	}
	if c.Scraper.CutoffDays == 0 {
		c.Scraper.CutoffDays = 90
	}
	if c.Scraper.RequestRate == 0 {
		c.Scraper.RequestRate = 2
	}

	// telegram
	if c.Telegram.APIURL == "" {
		c.Telegram.APIURL = "https://api.telegram.org"
	}
	if c.Telegram.MaxMessageLength == 0 {
		c.Telegram.MaxMessageLength = 4096
	}

	// llm
	if c.LLM.Endpoint == "" {
		c.LLM.Endpoint = "https://api.openai.com/v1"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gpt-4o-mini"
	}
	if c.LLM.Temperature == 0 {
		c.LLM.Temperature = 0.1
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 500
	}
	if c.LLM.Timeout == 0 {
		c.LLM.Timeout = 30 * time.Second
	}

	// sessions
	if c.Sessions.TTL == 0 {
		c.Sessions.TTL = 30 * time.Minute
	}
}
