package storefront

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

	"stock-sync/core/retry"

	"go.uber.org/zap"
)

// ErrAuth signals an authentication failure against the storefront API.
var ErrAuth = errors.New("storefront authentication failed")

// Client is a thin REST client over the storefront product API.
type Client struct {
	cfg  Config
	http *http.Client
	log  *zap.Logger
}

// NewClient validates the connector configuration and builds a client.
func NewClient(cfg Config, log *zap.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("storefront base url is empty")
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

// GetProduct fetches a product by numeric id. Returns (nil, nil) on 404.
func (c *Client) GetProduct(ctx context.Context, id int64) (*Product, error) {
	var p Product
	found, err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/products/%d", id), nil, &p)
	if err != nil || !found {
		return nil, err
	}
	return &p, nil
}

// FindBySKU looks a product up by its SKU. Returns (nil, nil) when no product
// carries the SKU.
func (c *Client) FindBySKU(ctx context.Context, sku string) (*Product, error) {
	if strings.TrimSpace(sku) == "" {
		return nil, nil
	}
	var list []Product
	path := "/products?sku=" + url.QueryEscape(sku)
	found, err := c.doJSON(ctx, http.MethodGet, path, nil, &list)
	if err != nil || !found {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return &list[0], nil
}

// CreateProduct creates a new product. The product always starts as a draft
// so it stays invisible until reviewed.
func (c *Client) CreateProduct(ctx context.Context, in NewProduct) (*Product, error) {
	in.Status = "draft"
	var p Product
	if _, err := c.doJSON(ctx, http.MethodPost, "/products", in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProduct applies a partial update to an existing product.
func (c *Client) UpdateProduct(ctx context.Context, id int64, in ProductUpdate) (*Product, error) {
	var p Product
	if _, err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/products/%d", id), in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// doJSON performs one authenticated request with transient-failure retry.
// The bool result is false when the resource does not exist (404).
func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) (bool, error) {
	return retry.Do(ctx, retry.DefaultMaxTries, func() (bool, error) {
		var reader io.Reader
		if body != nil {
			b, err := json.Marshal(body)
			if err != nil {
				return false, retry.Permanent(err)
			}
			reader = bytes.NewReader(b)
		}

		endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + path
		req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
		if err != nil {
			return false, retry.Permanent(err)
		}
		req.SetBasicAuth(c.cfg.ConsumerKey, c.cfg.ConsumerSecret)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return false, err
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return false, err
		}

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return false, nil
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return false, retry.Permanent(fmt.Errorf("%w: status %d", ErrAuth, resp.StatusCode))
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			return false, retry.Permanent(fmt.Errorf("storefront request rejected: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw))))
		case resp.StatusCode >= 500:
			return false, fmt.Errorf("storefront server error: status %d", resp.StatusCode)
		}

		if out != nil {
			if err := json.Unmarshal(raw, out); err != nil {
				return false, retry.Permanent(fmt.Errorf("storefront payload parse failed: %w", err))
			}
		}
		return true, nil
	})
}
