// Package notify delivers listing notifications to users.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/go-pkgz/lgr"
)

// DefaultTelegramAPI is the Telegram Bot API root
const DefaultTelegramAPI = "https://api.telegram.org"

// APIError is a non-ok Telegram API response
type APIError struct {
	Code        int
	Description string
	RetryAfter  time.Duration
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram api error %d: %s", e.Code, e.Description)
}

// Telegram sends messages and photos over the Telegram Bot API
type Telegram struct {
	apiURL   string
	token    string
	client   *http.Client
	attempts uint
}

// TelegramParams defines Telegram channel settings
type TelegramParams struct {
	APIURL   string
	Token    string
	Timeout  time.Duration
	Attempts uint // total attempts for rate limited requests
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
	Parameters  struct {
		RetryAfter int `json:"retry_after"`
	} `json:"parameters"`
}

// NewTelegram makes a Telegram channel
func NewTelegram(p TelegramParams) *Telegram {
	if p.APIURL == "" {
		p.APIURL = DefaultTelegramAPI
	}
	if p.Timeout == 0 {
		p.Timeout = 30 * time.Second
	}
	if p.Attempts == 0 {
		p.Attempts = 3
	}
	return &Telegram{
		apiURL:   strings.TrimRight(p.APIURL, "/"),
		token:    p.Token,
		client:   &http.Client{Timeout: p.Timeout},
		attempts: p.Attempts,
	}
}

// SendMessage sends a Markdown text message with link previews disabled
func (t *Telegram) SendMessage(ctx context.Context, chatID int64, text string) error {
	req := map[string]any{
		"chat_id":                  chatID,
		"text":                     text,
		"parse_mode":               "Markdown",
		"disable_web_page_preview": true,
	}
	if err := t.call(ctx, "sendMessage", req); err != nil {
		return fmt.Errorf("send message to %d: %w", chatID, err)
	}
	return nil
}

// SendPhoto sends a photo by url with a plain caption
func (t *Telegram) SendPhoto(ctx context.Context, chatID int64, photoURL, caption string) error {
	req := map[string]any{"chat_id": chatID, "photo": photoURL, "caption": caption}
	if err := t.call(ctx, "sendPhoto", req); err != nil {
		return fmt.Errorf("send photo to %d: %w", chatID, err)
	}
	return nil
}

// call posts a json request to the bot method. Only rate limited (429) responses are retried,
// after the delay the server asked for.
func (t *Telegram) call(ctx context.Context, method string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", method, err)
	}

	return retry.Do(
		func() error {
			err := t.post(ctx, method, body)
			var apiErr *APIError
			if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
				lgr.Printf("[WARN] telegram %s rate limited, retry after %v", method, apiErr.RetryAfter)
				if werr := sleep(ctx, apiErr.RetryAfter); werr != nil {
					return retry.Unrecoverable(werr)
				}
				return err
			}
			if err != nil {
				return retry.Unrecoverable(err)
			}
			return nil
		},
		retry.Attempts(t.attempts),
		retry.Delay(100*time.Millisecond),
		retry.MaxDelay(time.Second),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			lgr.Printf("[DEBUG] retrying telegram %s, attempt %d: %v", method, n+1, err)
		}),
	)
}

func (t *Telegram) post(ctx context.Context, method string, body []byte) error {
	endpoint := fmt.Sprintf("%s/bot%s/%s", t.apiURL, t.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("make request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		// the url carries the bot token, keep it out of logs
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return fmt.Errorf("%s request failed: %w", method, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1024*1024))
	if err != nil {
		return fmt.Errorf("read %s response: %w", method, err)
	}

	var res apiResponse
	if err := json.Unmarshal(data, &res); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return &APIError{Code: resp.StatusCode, Description: http.StatusText(resp.StatusCode)}
		}
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	if !res.OK || resp.StatusCode < 200 || resp.StatusCode > 299 {
		code := res.ErrorCode
		if code == 0 {
			code = resp.StatusCode
		}
		return &APIError{Code: code, Description: res.Description,
			RetryAfter: time.Duration(res.Parameters.RetryAfter) * time.Second}
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
