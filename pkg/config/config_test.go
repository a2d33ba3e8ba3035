package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		path := writeConfig(t, `
server:
  listen: ":9090"
  timeout: 45s
  base_url: https://watch.example.com
schedule:
  discovery_interval: 10m
  notify_interval: 1m
  max_workers: 8
  notify_delay: 1s
scraper:
  max_pages: 20
  cutoff_days: 30
  request_rate: 0.5
telegram:
  token: "123:abc"
llm:
  endpoint: https://llm.example.com/v1
  api_key: key
  model: llama3
  temperature: 0.3
sessions:
  redis_url: redis://localhost:6379/1
  ttl: 1h
`)
		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, ":9090", cfg.Server.Listen)
		assert.Equal(t, 45*time.Second, cfg.Server.Timeout)
		assert.Equal(t, "https://watch.example.com", cfg.Server.BaseURL)
		assert.Equal(t, 10*time.Minute, cfg.Schedule.DiscoveryInterval)
		assert.Equal(t, time.Minute, cfg.Schedule.NotifyInterval)
		assert.Equal(t, 8, cfg.Schedule.MaxWorkers)
		assert.Equal(t, time.Second, cfg.Schedule.NotifyDelay)
		assert.Equal(t, 20, cfg.Scraper.MaxPages)
		assert.Equal(t, 30, cfg.Scraper.CutoffDays)
		assert.InDelta(t, 0.5, cfg.Scraper.RequestRate, 0.001)
		assert.Equal(t, "123:abc", cfg.Telegram.Token)
		assert.Equal(t, "https://llm.example.com/v1", cfg.LLM.Endpoint)
		assert.Equal(t, "llama3", cfg.LLM.Model)
		assert.InDelta(t, 0.3, cfg.LLM.Temperature, 0.001)
		assert.Equal(t, "redis://localhost:6379/1", cfg.Sessions.RedisURL)
		assert.Equal(t, time.Hour, cfg.Sessions.TTL)
		require.NoError(t, cfg.RequireTelegram())

		listen, timeout := cfg.GetServerConfig()
		assert.Equal(t, ":9090", listen)
		assert.Equal(t, 45*time.Second, timeout)
		assert.Equal(t, "https://watch.example.com", cfg.GetBaseURL())
	})

	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, "llm:\n  api_key: key\n"))
		require.NoError(t, err)

		assert.Equal(t, ":8080", cfg.Server.Listen)
		assert.Equal(t, 30*time.Second, cfg.Server.Timeout)
		assert.Equal(t, "file:kleinwatch.db?cache=shared&mode=rwc&_txlock=immediate", cfg.Database.DSN)
		assert.Equal(t, 300*time.Second, cfg.Schedule.DiscoveryInterval)
		assert.Equal(t, 300*time.Second, cfg.Schedule.NotifyInterval)
		assert.Equal(t, 4, cfg.Schedule.MaxWorkers)
		assert.Equal(t, 500*time.Millisecond, cfg.Schedule.NotifyDelay)
		assert.Equal(t, "https://www.kleinanzeigen.de", cfg.Scraper.BaseURL)
		assert.Equal(t, 10*time.Second, cfg.Scraper.Timeout)
		assert.Equal(t, 50, cfg.Scraper.MaxPages)
		assert.Equal(t, 90, cfg.Scraper.CutoffDays)
		assert.Equal(t, "https://api.telegram.org", cfg.Telegram.APIURL)
		assert.Equal(t, 4096, cfg.Telegram.MaxMessageLength)
		assert.Equal(t, "https://api.openai.com/v1", cfg.LLM.Endpoint)
		assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
		assert.Equal(t, 30*time.Minute, cfg.Sessions.TTL)
		assert.Empty(t, cfg.Sessions.RedisURL)

		err = cfg.RequireTelegram()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "telegram.token")
	})

	t.Run("environment expansion", func(t *testing.T) {
		t.Setenv("KW_TEST_LLM_KEY", "from-env")
		t.Setenv("KW_TEST_BOT_TOKEN", "bot-from-env")
		cfg, err := Load(writeConfig(t, "llm:\n  api_key: ${KW_TEST_LLM_KEY}\ntelegram:\n  token: $KW_TEST_BOT_TOKEN\n"))
		require.NoError(t, err)
		assert.Equal(t, "from-env", cfg.LLM.APIKey)
		assert.Equal(t, "bot-from-env", cfg.Telegram.Token)
	})

	t.Run("missing api key", func(t *testing.T) {
		_, err := Load(writeConfig(t, "server:\n  listen: \":9090\"\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "llm.api_key")
	})

	t.Run("out of range values", func(t *testing.T) {
		tbl := []struct {
			name, content, field string
		}{
			{"too many pages", "scraper:\n  max_pages: 51\n", "scraper.max_pages"},
			{"message too long", "telegram:\n  max_message_length: 5000\n", "telegram.max_message_length"},
			{"temperature", "llm:\n  temperature: 3\n  api_key: key\n", "llm.temperature"},
			{"short timeout", "server:\n  timeout: 100ms\n", "server.timeout"},
			{"negative workers", "schedule:\n  max_workers: -1\n", "schedule.max_workers"},
			{"bad base url", "scraper:\n  base_url: not-a-url\n", "scraper.base_url"},
		}
		for _, tt := range tbl {
			t.Run(tt.name, func(t *testing.T) {
				content := tt.content
				if !strings.Contains(content, "llm:") {
					content += "llm:\n  api_key: key\n"
				}
				_, err := Load(writeConfig(t, content))
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.field)
			})
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load("/nonexistent/config.yml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "read config file")
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := Load(writeConfig(t, "server: [unclosed"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse config")
	})
}

func TestVerifyRequired(t *testing.T) {
	cfg := &Config{}
	cfg.setDefaults()
	err := VerifyRequired(cfg)
	require.Error(t, err)
	assert.Equal(t, "required fields missing: llm.api_key", err.Error())

	cfg.LLM.APIKey = "key"
	require.NoError(t, VerifyRequired(cfg))
}

func TestGenerateSchema(t *testing.T) {
	schema := GenerateSchema()
	require.NotNil(t, schema)
	def, ok := schema.Definitions["LLMConfig"]
	require.True(t, ok)
	assert.Equal(t, []string{"api_key"}, def.Required)

	srv, ok := schema.Definitions["ScraperConfig"]
	require.True(t, ok)
	prop, ok := srv.Properties.Get("max_pages")
	require.True(t, ok)
	assert.Equal(t, "Maximum index pages per task", prop.Description)
}
