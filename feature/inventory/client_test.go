package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(url string) Config {
	return Config{
		BaseURL:        url,
		ConsumerKey:    "key",
		ConsumerSecret: "secret",
		LocationID:     3,
		PageSize:       2,
		TimeoutSeconds: 5,
	}
}

func TestNewClientRequiresCredentials(t *testing.T) {
	_, err := NewClient(Config{BaseURL: "http://localhost"}, zap.NewNop())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAuth))
}

func TestListRecordsPassesPagingAndLocation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "key", user)
		assert.Equal(t, "secret", pass)

		q := r.URL.Query()
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "2", q.Get("per_page"))
		assert.Equal(t, "3", q.Get("location_id"))

		_ = json.NewEncoder(w).Encode([]Record{
			{ID: 11, SKU: "CH-001", Stock: "4"},
			{ID: 12, SKU: "CH-002", Stock: "1.5"},
		})
	}))
	defer srv.Close()

	c, err := NewClient(testConfig(srv.URL), zap.NewNop())
	require.NoError(t, err)

	records, err := c.ListRecords(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.True(t, records[1].Quantity().Equal(decimal.RequireFromString("1.5")))
}

func TestBatchReturnsPerItemErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/inventories/batch", r.URL.Path)

		var req BatchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Create, 2)

		_ = json.NewEncoder(w).Encode(BatchResponse{
			Create: []BatchResult{
				{ID: 21},
				{Error: &APIError{Code: "duplicate_sku", Message: "sku already tracked"}},
			},
		})
	}))
	defer srv.Close()

	c, err := NewClient(testConfig(srv.URL), zap.NewNop())
	require.NoError(t, err)

	resp, err := c.Batch(context.Background(), BatchRequest{
		Create: []RecordInput{{SKU: "CH-001"}, {SKU: "CH-001"}},
	})
	require.NoError(t, err)
	require.Len(t, resp.Create, 2)
	assert.Equal(t, int64(21), resp.Create[0].ID)
	require.NotNil(t, resp.Create[1].Error)
	assert.Contains(t, resp.Create[1].Error.String(), "duplicate_sku")
}

func TestBatchAuthFailureIsPermanent(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c, err := NewClient(testConfig(srv.URL), zap.NewNop())
	require.NoError(t, err)

	_, err = c.Batch(context.Background(), BatchRequest{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAuth))
	assert.Equal(t, 1, calls)
}

func TestServerErrorsAreRetried(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(Record{ID: 7, SKU: "CH-001", Stock: "2"})
	}))
	defer srv.Close()

	c, err := NewClient(testConfig(srv.URL), zap.NewNop())
	require.NoError(t, err)

	rec, err := c.GetRecord(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), rec.ID)
	assert.Equal(t, 3, calls)
}
