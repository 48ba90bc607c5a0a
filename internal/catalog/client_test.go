package catalog_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MiniCatalog/internal/catalog"
)

func TestClient_RoundTrip(t *testing.T) {
	svc := newTestService(t, nil)
	c := catalog.NewClient(svc.ts.URL + "/")
	ctx := context.Background()

	require.NoError(t, c.Health(ctx))

	created, err := c.Create(ctx, "テスト商品", 1000)
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, "テスト商品", created.Name)
	assert.Equal(t, 1000.0, created.Price)
	assert.False(t, created.CreatedAt.IsZero())

	got, ok, err := c.Get(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.Name, got.Name)
	assert.Equal(t, created.Price, got.Price)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))

	_, ok, err = c.Get(ctx, 9999)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClient_ValidationError(t *testing.T) {
	svc := newTestService(t, nil)
	c := catalog.NewClient(svc.ts.URL)

	_, err := c.Create(context.Background(), "", -1)
	require.Error(t, err)

	var ve *catalog.ValidationError
	require.True(t, errors.As(err, &ve), "got %v", err)
	require.Len(t, ve.Fields, 2)
	assert.Equal(t, "string_too_short", ve.Fields[0].Type)
	assert.Equal(t, "greater_than", ve.Fields[1].Type)
	assert.Equal(t, 0, svc.store.Len())

	_, _, err = c.Get(context.Background(), 0)
	require.True(t, errors.As(err, &ve), "got %v", err)
	assert.Equal(t, []string{"path", "id"}, ve.Fields[0].Loc)
}

func TestClient_Unavailable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	c := catalog.NewClient(url)
	err := c.Health(context.Background())
	assert.ErrorIs(t, err, catalog.ErrUnavailable)

	_, err = c.Create(context.Background(), "a", 1)
	assert.ErrorIs(t, err, catalog.ErrUnavailable)
}

func TestClient_BadStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"detail":"upstream down"}`))
	}))
	t.Cleanup(ts.Close)

	c := catalog.NewClient(ts.URL)
	_, _, err := c.Get(context.Background(), 1)
	require.ErrorIs(t, err, catalog.ErrBadStatus)
	assert.Contains(t, err.Error(), "upstream down")
	assert.Contains(t, err.Error(), "502")
}

func TestClient_SendsRequestID(t *testing.T) {
	var seen string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get("X-Request-Id")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	t.Cleanup(ts.Close)

	require.NoError(t, catalog.NewClient(ts.URL).Health(context.Background()))
	assert.Len(t, seen, 36)
}
