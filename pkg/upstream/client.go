// Package upstream fetches today's LLM response records from the recommendations API.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/repeater/v2"

	"github.com/umputun/tradescope/pkg/domain"
)

// DefaultPath is the endpoint serving today's records
const DefaultPath = "/api/llm-responses/today"

// genericMessage is shown when the upstream gives no error text
const genericMessage = "Failed to fetch responses"

// maxBodySize limits how much of a response body is read
const maxBodySize = 10 * 1024 * 1024

// ErrBadShape is returned when the body decodes but lacks the expected fields
var ErrBadShape = errors.New("unexpected response shape")

// StatusError is returned for a non-success response or a body carrying an error field
type StatusError struct {
	Code    int
	Message string // upstream "error" field, may be empty
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("unexpected status code: %d", e.Code)
	}
	return fmt.Sprintf("upstream error (status %d): %s", e.Code, e.Message)
}

// UserMessage returns the text to show for a failed fetch
func UserMessage(err error) string {
	var se *StatusError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return genericMessage
}

// Config defines upstream client parameters
type Config struct {
	BaseURL   string
	Path      string
	Timeout   time.Duration
	UserAgent string
}

// Client fetches records from the upstream API
type Client struct {
	client    *http.Client
	url       string
	baseURL   string
	userAgent string
}

// NewClient makes an upstream client
func NewClient(cfg Config) *Client {
	if cfg.Path == "" {
		cfg.Path = DefaultPath
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		client: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		url:       base + "/" + strings.TrimLeft(cfg.Path, "/"),
		baseURL:   base,
		userAgent: cfg.UserAgent,
	}
}

// todayResponse is the wire format of the endpoint
type todayResponse struct {
	Count *int         `json:"count"`
	Data  []recordJSON `json:"data"`
	Error string       `json:"error"`
}

type recordJSON struct {
	ID             string `json:"_id"`
	CreatedAt      any    `json:"created_at"`
	UpdatedAt      any    `json:"updated_at"`
	Prompt         any    `json:"prompt"`
	PromptResponse any    `json:"prompt_response"`
}

// FetchToday retrieves today's records
func (c *Client) FetchToday(ctx context.Context) (*domain.TodayResponses, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", c.url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var tr todayResponse
	decodeErr := json.Unmarshal(body, &tr)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		se := &StatusError{Code: resp.StatusCode}
		if decodeErr == nil {
			se.Message = tr.Error
		}
		return nil, se
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode response: %w", decodeErr)
	}
	if tr.Error != "" {
		return nil, &StatusError{Code: resp.StatusCode, Message: tr.Error}
	}
	if tr.Count == nil || (tr.Data == nil && *tr.Count != 0) {
		return nil, ErrBadShape
	}

	res := &domain.TodayResponses{Count: *tr.Count, Records: make([]domain.ResponseRecord, 0, len(tr.Data))}
	for _, r := range tr.Data {
		res.Records = append(res.Records, domain.ResponseRecord{
			ID:             r.ID,
			CreatedAt:      parseTimestamp(r.CreatedAt),
			UpdatedAt:      parseTimestamp(r.UpdatedAt),
			Prompt:         textValue(r.Prompt),
			PromptResponse: textValue(r.PromptResponse),
		})
	}
	lgr.Printf("[DEBUG] fetched %d records from %s", res.Count, c.url)
	return res, nil
}

// WaitReady probes the upstream base URL until it answers with a non-5xx status.
// Attempts <= 0 disables the probe.
func (c *Client) WaitReady(ctx context.Context, attempts int, delay time.Duration) error {
	if attempts <= 0 {
		return nil
	}
	retrier := repeater.NewBackoff(attempts, delay, repeater.WithMaxDelay(10*delay))
	err := retrier.Do(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", http.NoBody)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		resp, err := c.client.Do(req)
		if err != nil {
			lgr.Printf("[DEBUG] upstream %s not ready: %v", c.baseURL, err)
			return err
		}
		_ = resp.Body.Close()
		if resp.StatusCode >= 500 {
			return &StatusError{Code: resp.StatusCode}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("upstream %s not ready: %w", c.baseURL, err)
	}
	return nil
}

// timestampLayouts covers RFC3339 and python isoformat output without a zone
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// parseTimestamp converts a created_at/updated_at value, nil if absent or unparsable.
// Timestamps without a zone are UTC.
func parseTimestamp(v any) *time.Time {
	s, ok := v.(string)
	if !ok || s == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// textValue keeps strings as is and re-encodes any other non-null JSON value as text
func textValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}
