// Package llm turns free-text search requests into preference drafts with an OpenAI-compatible model.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-pkgz/lgr"
	"github.com/sashabaranov/go-openai"

	"github.com/umputun/kleinwatch/pkg/config"
	"github.com/umputun/kleinwatch/pkg/domain"
)

const maxAttempts = 3

var (
	errNoJSON  = errors.New("no json object found")
	fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")
)

// Extractor uses LLM to extract search preferences from user text
type Extractor struct {
	client    *openai.Client
	config    config.LLMConfig
	systemMsg string
}

// NewExtractor creates a new extractor. Reference is the category and city list
// appended to the system prompt to anchor names.
func NewExtractor(cfg config.LLMConfig, reference string) *Extractor {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.Endpoint != "" {
		clientConfig.BaseURL = cfg.Endpoint
	}

	systemMsg := cfg.SystemPrompt
	if systemMsg == "" {
		systemMsg = defaultSystemPrompt
	}
	if reference != "" {
		systemMsg += "\n\nAvailable reference data:\n" + reference
	}

	return &Extractor{
		client:    openai.NewClientWithConfig(clientConfig),
		config:    cfg,
		systemMsg: systemMsg,
	}
}

// default system prompt for preference extraction
const defaultSystemPrompt = `You extract structured search preferences for Kleinanzeigen from German/English mixed user input.

Return ONLY a JSON object with these fields:
- location: {"city": "...", "state": "..."}, use null for city if not mentioned
- category: {"category": "...", "subcategory": "..."}, match names from the available categories
- price: {"price_from": number or null, "price_to": number or null}
- time_window: seconds

Category rules:
- Always prefer a subcategory over its parent category when one applies
- "Geschirr", "Teller", "Tassen" belong to "Küche & Esszimmer"
- "Schreibtischstuhl", "Bürostuhl" belong to "Büro"
- "Xbox Controller", "PlayStation Controller" belong to "Konsolen"
- "Sofa", "Couch" belong to "Wohnzimmer"

Price rules:
- "unter X", "max X", "bis X" mean price_from: 0, price_to: X
- "verschenken", "kostenlos", "free", "gratis" mean price_from: 0, price_to: 0
- "ab X" means price_from: X, price_to: null
- no price mentioned means both null

Time rules:
- "letzte 2 Tage" is 172800, "eine Woche" and "letzte Woche" are 604800
- default to 604800 if not specified

Example:
{"location": {"city": "Berlin", "state": "Berlin"}, "category": {"category": "Haus & Garten", "subcategory": "Wohnzimmer"}, "price": {"price_from": 0, "price_to": 0}, "time_window": 604800}`

// extraction is the raw model answer, numbers may come as strings or floats
type extraction struct {
	Location struct {
		City  string `json:"city"`
		State string `json:"state"`
	} `json:"location"`
	Category struct {
		Category    string `json:"category"`
		Subcategory string `json:"subcategory"`
	} `json:"category"`
	Price struct {
		From any `json:"price_from"`
		To   any `json:"price_to"`
	} `json:"price"`
	TimeWindow any `json:"time_window"`
}

// Extract returns the preference draft found in the text. Any failure, including
// an unusable model answer, results in an empty draft.
func (e *Extractor) Extract(ctx context.Context, text string) domain.Draft {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Draft{}
	}

	if e.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.Timeout)
		defer cancel()
	}

	// retry up to 3 times if the answer has no usable json
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		content, err := e.complete(ctx, text)
		if err != nil {
			lgr.Printf("[WARN] preference extraction failed: %v", err)
			return domain.Draft{}
		}

		draft, err := ParseDraft(content)
		if err == nil {
			lgr.Printf("[DEBUG] extracted draft %+v from %q", draft, text)
			return draft
		}
		lgr.Printf("[DEBUG] unusable extraction answer, attempt %d: %v", attempt, err)
	}
	lgr.Printf("[WARN] no usable extraction after %d attempts for %q", maxAttempts, text)
	return domain.Draft{}
}

func (e *Extractor) complete(ctx context.Context, text string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       e.config.Model,
		Temperature: float32(e.config.Temperature),
		MaxTokens:   e.config.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: e.systemMsg},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
	}
	if e.config.JSONMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}

	resp, err := e.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("llm request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from llm")
	}
	return resp.Choices[0].Message.Content, nil
}

// ParseDraft parses a model answer. It tries the whole text as json, then a fenced
// json block, then the outermost braces.
func ParseDraft(content string) (domain.Draft, error) {
	content = strings.TrimSpace(content)
	candidates := []string{content}
	if m := fencedJSON.FindStringSubmatch(content); len(m) == 2 {
		candidates = append(candidates, m[1])
	}
	if start, end := strings.Index(content, "{"), strings.LastIndex(content, "}"); start >= 0 && end > start {
		candidates = append(candidates, content[start:end+1])
	}

	var lastErr error = errNoJSON
	for _, c := range candidates {
		var ex extraction
		if err := json.Unmarshal([]byte(c), &ex); err != nil {
			lastErr = fmt.Errorf("failed to parse json: %w", err)
			continue
		}
		return ex.draft(), nil
	}
	return domain.Draft{}, lastErr
}

func (ex extraction) draft() domain.Draft {
	res := domain.Draft{
		City:        cleanName(ex.Location.City),
		State:       cleanName(ex.Location.State),
		Category:    cleanName(ex.Category.Category),
		Subcategory: cleanName(ex.Category.Subcategory),
		PriceFrom:   toInt(ex.Price.From),
		PriceTo:     toInt(ex.Price.To),
	}
	if tw := toInt(ex.TimeWindow); tw != nil && *tw > 0 {
		res.TimeWindow = *tw
	}
	for _, p := range []**int{&res.PriceFrom, &res.PriceTo} {
		if *p != nil && **p < 0 {
			*p = nil
		}
	}
	return res
}

// cleanName drops placeholder values models put for unknown fields
func cleanName(s string) string {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "null", "none", "...", "n/a", "unknown":
		return ""
	}
	return s
}

// toInt coerces json numbers and numeric strings to int, nil if absent or not numeric
func toInt(v any) *int {
	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case string:
		s := strings.TrimSpace(strings.NewReplacer("€", "", "EUR", "", ",", ".").Replace(val))
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	res := int(math.Round(f))
	return &res
}
