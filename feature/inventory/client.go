package inventory

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
)

// ErrAuth signals an authentication failure against the inventory API.
var ErrAuth = errors.New("inventory authentication failed")

// Client is a thin REST client over the per-location inventory ledger.
type Client struct {
	cfg  Config
	http *http.Client
	log  *zap.Logger
}

// NewClient validates the connector configuration and builds a client.
func NewClient(cfg Config, log *zap.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("inventory base url is empty")
	}
	if strings.TrimSpace(cfg.ConsumerKey) == "" || strings.TrimSpace(cfg.ConsumerSecret) == "" {
		return nil, fmt.Errorf("%w: consumer key or secret missing", ErrAuth)
	}

	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}

	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: time.Duration(timeout) * time.Second},
		log:  log,
	}, nil
}

// PageSize returns the configured list page size.
func (c *Client) PageSize() int {
	if c.cfg.PageSize <= 0 {
		return 100
	}
	return c.cfg.PageSize
}

// LocationID returns the configured ledger location.
func (c *Client) LocationID() int64 {
	return c.cfg.LocationID
}

// ListRecords fetches one page of ledger records. Pages are numbered from 1;
// a short page marks the end of the data set.
func (c *Client) ListRecords(ctx context.Context, page int) ([]Record, error) {
	path := fmt.Sprintf("/inventories?page=%d&per_page=%d", page, c.PageSize())
	if c.cfg.LocationID != 0 {
		path += fmt.Sprintf("&location_id=%d", c.cfg.LocationID)
	}
	var out []Record
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetRecord fetches a single ledger record by id.
func (c *Client) GetRecord(ctx context.Context, id int64) (*Record, error) {
	var out Record
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/inventories/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateRecord creates a single ledger record.
func (c *Client) CreateRecord(ctx context.Context, in RecordInput) (*Record, error) {
	var out Record
	if err := c.doJSON(ctx, http.MethodPost, "/inventories", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateRecord updates a single ledger record.
func (c *Client) UpdateRecord(ctx context.Context, id int64, in RecordInput) (*Record, error) {
	var out Record
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/inventories/%d", id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Batch submits one bounded batch of creates and updates. The response is
// item-addressable; the call itself only fails on transport or protocol
// errors, never because an individual item was rejected.
func (c *Client) Batch(ctx context.Context, req BatchRequest) (*BatchResponse, error) {
	var out BatchResponse
	if err := c.doJSON(ctx, http.MethodPost, "/inventories/batch", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	_, err := retry.Do(ctx, retry.DefaultMaxTries, func() (struct{}, error) {
		var reader io.Reader
		if body != nil {
			b, err := json.Marshal(body)
			if err != nil {
				return struct{}{}, retry.Permanent(err)
			}
			reader = bytes.NewReader(b)
		}

		endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + path
		req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
		if err != nil {
			return struct{}{}, retry.Permanent(err)
		}
		req.SetBasicAuth(c.cfg.ConsumerKey, c.cfg.ConsumerSecret)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return struct{}{}, err
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return struct{}{}, err
		}

		switch {
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return struct{}{}, retry.Permanent(fmt.Errorf("%w: status %d", ErrAuth, resp.StatusCode))
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			return struct{}{}, retry.Permanent(fmt.Errorf("inventory request rejected: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw))))
		case resp.StatusCode >= 500:
			return struct{}{}, fmt.Errorf("inventory server error: status %d", resp.StatusCode)
		}

		if out != nil {
			if err := json.Unmarshal(raw, out); err != nil {
				return struct{}{}, retry.Permanent(fmt.Errorf("inventory payload parse failed: %w", err))
			}
		}
		return struct{}{}, nil
	})
	return err
}
