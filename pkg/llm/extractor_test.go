package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/kleinwatch/pkg/config"
	"github.com/umputun/kleinwatch/pkg/domain"
)

func intPtr(v int) *int { return &v }

// llmServer answers chat completions with the given contents in order, repeating the last one
func llmServer(t *testing.T, contents ...string) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(atomic.AddInt32(&calls, 1))
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req openai.ChatCompletionRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Len(t, req.Messages, 2)

		content := contents[len(contents)-1]
		if n <= len(contents) {
			content = contents[n-1]
		}
		resp := openai.ChatCompletionResponse{Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content}},
		}}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(ts.Close)
	return ts, &calls
}

func testConfig(url string) config.LLMConfig {
	return config.LLMConfig{Endpoint: url + "/v1", APIKey: "test-key", Model: "gpt-4o-mini",
		Temperature: 0.1, MaxTokens: 500, Timeout: 5 * time.Second}
}

func TestExtractor_Extract(t *testing.T) {
	ts, calls := llmServer(t, `{"location": {"city": "Berlin", "state": "Berlin"},
		"category": {"category": "Haus & Garten", "subcategory": "Wohnzimmer"},
		"price": {"price_from": 0, "price_to": 0}, "time_window": 604800}`)

	e := NewExtractor(testConfig(ts.URL), "Categories: Haus & Garten")
	draft := e.Extract(context.Background(), "Ich suche ein Sofa zum Verschenken in Berlin")
	assert.Equal(t, domain.Draft{City: "Berlin", State: "Berlin", Category: "Haus & Garten", Subcategory: "Wohnzimmer",
		PriceFrom: intPtr(0), PriceTo: intPtr(0), TimeWindow: 604800}, draft)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
	assert.Contains(t, e.systemMsg, "Available reference data:\nCategories: Haus & Garten")
}

func TestExtractor_RetriesUnusableAnswer(t *testing.T) {
	ts, calls := llmServer(t, "sorry, I can't", "```json\n{\"location\": {\"city\": \"Köln\"}, \"price\": {\"price_to\": \"50\"}}\n```")
	draft := NewExtractor(testConfig(ts.URL), "").Extract(context.Background(), "unter 50 in Köln")
	assert.Equal(t, domain.Draft{City: "Köln", PriceTo: intPtr(50)}, draft)
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}

func TestExtractor_Fallbacks(t *testing.T) {
	t.Run("never usable", func(t *testing.T) {
		ts, calls := llmServer(t, "no json here")
		draft := NewExtractor(testConfig(ts.URL), "").Extract(context.Background(), "hallo")
		assert.True(t, draft.Empty())
		assert.Equal(t, int32(3), atomic.LoadInt32(calls))
	})

	t.Run("api error", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error": {"message": "boom", "type": "server_error"}}`))
		}))
		defer ts.Close()
		draft := NewExtractor(testConfig(ts.URL), "").Extract(context.Background(), "Sofa in Berlin")
		assert.True(t, draft.Empty())
	})

	t.Run("empty text skips the call", func(t *testing.T) {
		ts, calls := llmServer(t, "{}")
		draft := NewExtractor(testConfig(ts.URL), "").Extract(context.Background(), "   ")
		assert.True(t, draft.Empty())
		assert.Equal(t, int32(0), atomic.LoadInt32(calls))
	})
}

func TestExtractor_JSONMode(t *testing.T) {
	var format string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req openai.ChatCompletionRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.ResponseFormat != nil {
			format = string(req.ResponseFormat.Type)
		}
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: `{"time_window": 172800}`}}}})
	}))
	defer ts.Close()

	cfg := testConfig(ts.URL)
	cfg.JSONMode = true
	draft := NewExtractor(cfg, "").Extract(context.Background(), "letzte 2 Tage")
	assert.Equal(t, domain.Draft{TimeWindow: 172800}, draft)
	assert.Equal(t, "json_object", format)
}

func TestParseDraft(t *testing.T) {
	tbl := []struct {
		name    string
		content string
		want    domain.Draft
		wantErr bool
	}{
		{name: "plain json", content: `{"location": {"city": "München", "state": "Bayern"}, "time_window": 172800}`,
			want: domain.Draft{City: "München", State: "Bayern", TimeWindow: 172800}},
		{name: "fenced block", content: "Here you go:\n```json\n{\"category\": {\"subcategory\": \"Konsolen\"}}\n```\nanything else?",
			want: domain.Draft{Subcategory: "Konsolen"}},
		{name: "outer braces", content: `Result: {"price": {"price_from": 20, "price_to": null}} done`,
			want: domain.Draft{PriceFrom: intPtr(20)}},
		{name: "numeric strings and floats", content: `{"price": {"price_from": "10,5", "price_to": 99.6}, "time_window": "86400"}`,
			want: domain.Draft{PriceFrom: intPtr(11), PriceTo: intPtr(100), TimeWindow: 86400}},
		{name: "placeholders dropped", content: `{"location": {"city": "null", "state": "..."}, "category": {"category": "None"}}`,
			want: domain.Draft{}},
		{name: "negative price and window ignored", content: `{"price": {"price_from": -5, "price_to": "abc"}, "time_window": -1}`,
			want: domain.Draft{}},
		{name: "no json", content: "I don't know", wantErr: true},
		{name: "broken json", content: `{"location": {"city": "Berlin"`, wantErr: true},
	}
	for _, tt := range tbl {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDraft(tt.content)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
