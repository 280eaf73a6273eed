package storefront

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{
		BaseURL:        srv.URL,
		ConsumerKey:    "ck",
		ConsumerSecret: "cs",
	}, zap.NewNop())
	require.NoError(t, err)
	return c
}

func TestNewClientRequiresCredentials(t *testing.T) {
	_, err := NewClient(Config{BaseURL: "http://shop.local"}, zap.NewNop())
	assert.ErrorIs(t, err, ErrAuth)
}

func TestGetProductNotFound(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	p, err := c.GetProduct(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestFindBySKU(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "A1", r.URL.Query().Get("sku"))
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "ck", user)
		assert.Equal(t, "cs", pass)
		_ = json.NewEncoder(w).Encode([]Product{{ID: 7, SKU: "A1", Name: "Widget"}})
	})

	p, err := c.FindBySKU(context.Background(), "A1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.EqualValues(t, 7, p.ID)
}

func TestFindBySKUEmptyResult(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]Product{})
	})

	p, err := c.FindBySKU(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestCreateProductForcesDraft(t *testing.T) {
	var got NewProduct
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(Product{ID: 11, SKU: got.SKU, Name: got.Name, Status: got.Status})
	})

	p, err := c.CreateProduct(context.Background(), NewProduct{SKU: "A1", Name: "Widget", Status: "publish"})
	require.NoError(t, err)
	assert.Equal(t, "draft", got.Status)
	assert.EqualValues(t, 11, p.ID)
}

func TestAuthFailure(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.FindBySKU(context.Background(), "A1")
	assert.ErrorIs(t, err, ErrAuth)
}
