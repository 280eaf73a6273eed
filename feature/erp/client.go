package erp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"stock-sync/core/retry"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"
)

// ErrAuth signals an authentication failure. It is fatal for the whole run.
var ErrAuth = errors.New("erp authentication failed")

// DecodeError wraps payloads that could not be decoded or parsed. The caller
// skips the affected page and keeps going.
type DecodeError struct {
	Page int
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("erp page %d decode failed: %v", e.Page, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Client talks to the ERP item-list service. Responses are columnar: a
// field-name array plus row arrays, possibly in a legacy single-byte code
// page that must be decoded before JSON parsing.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *budgetLimiter
	log     *zap.Logger
}

// NewClient validates the connector configuration and builds a client.
func NewClient(cfg Config, log *zap.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("erp base url is empty")
	}
	if strings.TrimSpace(cfg.AppID) == "" || strings.TrimSpace(cfg.Token) == "" {
		return nil, fmt.Errorf("%w: app id or token missing", ErrAuth)
	}

	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 60
	}

	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: time.Duration(timeout) * time.Second},
		limiter: newBudgetLimiter(cfg.RequestsPerMinute, cfg.RequestsPerHour),
		log:     log,
	}, nil
}

// PageSize returns the configured page size (rows requested per page).
func (c *Client) PageSize() int {
	if c.cfg.PageSize <= 0 {
		return 500
	}
	return c.cfg.PageSize
}

type listRequest struct {
	AppID    string `json:"appId"`
	Token    string `json:"token"`
	Filter   string `json:"filter,omitempty"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
}

type listPayload struct {
	Success bool     `json:"success"`
	Error   string   `json:"error"`
	Fields  []string `json:"fields"`
	Rows    [][]any  `json:"rows"`
}

// ListItems fetches one page of ERP items and projects the columnar payload
// into typed records. Pages are numbered from 1; a short page marks the end
// of the data set.
func (c *Client) ListItems(ctx context.Context, page int) ([]Item, error) {
	payload, err := retry.Do(ctx, retry.DefaultMaxTries, func() (listPayload, error) {
		return c.fetchPage(ctx, page)
	})
	if err != nil {
		return nil, err
	}

	projector := newRowProjector(payload.Fields)
	items := make([]Item, 0, len(payload.Rows))
	for _, row := range payload.Rows {
		items = append(items, projector.Item(row))
	}
	return items, nil
}

func (c *Client) fetchPage(ctx context.Context, page int) (listPayload, error) {
	// Every attempt spends a budget slot, so retried requests stay inside
	// the per-minute and per-hour windows.
	if err := c.limiter.Acquire(ctx); err != nil {
		return listPayload{}, retry.Permanent(err)
	}

	body, err := json.Marshal(listRequest{
		AppID:    c.cfg.AppID,
		Token:    c.cfg.Token,
		Filter:   c.cfg.Filter,
		Page:     page,
		PageSize: c.PageSize(),
	})
	if err != nil {
		return listPayload{}, retry.Permanent(err)
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/list/items"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return listPayload{}, retry.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		// Network failures are transient and retried.
		return listPayload{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return listPayload{}, err
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return listPayload{}, retry.Permanent(fmt.Errorf("%w: status %d", ErrAuth, resp.StatusCode))
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return listPayload{}, retry.Permanent(fmt.Errorf("erp request rejected: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw))))
	case resp.StatusCode >= 500:
		return listPayload{}, fmt.Errorf("erp server error: status %d", resp.StatusCode)
	}

	decoded, err := c.decodeCharset(raw)
	if err != nil {
		return listPayload{}, retry.Permanent(&DecodeError{Page: page, Err: err})
	}

	var payload listPayload
	if err := json.Unmarshal(decoded, &payload); err != nil {
		return listPayload{}, retry.Permanent(&DecodeError{Page: page, Err: err})
	}
	if !payload.Success {
		msg := payload.Error
		if msg == "" {
			msg = "unknown error"
		}
		if strings.Contains(strings.ToLower(msg), "auth") || strings.Contains(strings.ToLower(msg), "token") {
			return listPayload{}, retry.Permanent(fmt.Errorf("%w: %s", ErrAuth, msg))
		}
		return listPayload{}, retry.Permanent(fmt.Errorf("erp list failed: %s", msg))
	}

	return payload, nil
}

// decodeCharset converts a legacy single-byte payload to UTF-8 before any
// JSON parsing happens.
func (c *Client) decodeCharset(raw []byte) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(c.cfg.Encoding)) {
	case "", "utf-8", "utf8":
		return raw, nil
	case "windows-1253", "cp1253":
		return charmap.Windows1253.NewDecoder().Bytes(raw)
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder().Bytes(raw)
	default:
		return nil, fmt.Errorf("unsupported erp encoding %q", c.cfg.Encoding)
	}
}
