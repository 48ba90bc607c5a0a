//go:build integration
// +build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"testing"
	"time"
)

var baseURL = getenv("E2E_BASE_URL", "http://localhost:8000")

func TestSystem_E2E_CreateAndRetrieve(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	waitReady(t, ctx, baseURL+"/readyz")

	var health map[string]string
	doJSON(t, http.MethodGet, baseURL+"/health", nil, &health, 200)
	if health["status"] != "ok" {
		t.Fatalf("unexpected health body: %#v", health)
	}

	name := fmt.Sprintf("テスト商品 %d_%d", time.Now().Unix(), rand.Intn(100000))

	var created map[string]any
	doJSON(t, http.MethodPost, baseURL+"/items", map[string]any{
		"name":  name,
		"price": 1000,
	}, &created, 201)

	id, _ := created["id"].(float64)
	if id < 1 {
		t.Fatalf("product id missing: %#v", created)
	}
	if created["name"] != name || created["price"] != float64(1000) {
		t.Fatalf("unexpected product: %#v", created)
	}
	if s, _ := created["created_at"].(string); s == "" {
		t.Fatalf("created_at missing: %#v", created)
	}

	var got map[string]any
	doJSON(t, http.MethodGet, fmt.Sprintf("%s/items/%d", baseURL, int64(id)), nil, &got, 200)
	for k, v := range created {
		if got[k] != v {
			t.Fatalf("field %s: got %v, created %v", k, got[k], v)
		}
	}

	var missing map[string]any
	doJSON(t, http.MethodGet, baseURL+"/items/999999999", nil, &missing, 404)
	if missing["detail"] != "Product not found" {
		t.Fatalf("unexpected 404 body: %#v", missing)
	}

	var rejected struct {
		Detail []map[string]any `json:"detail"`
	}
	doJSON(t, http.MethodPost, baseURL+"/items", map[string]any{
		"name":  "",
		"price": 1000,
	}, &rejected, 422)
	if len(rejected.Detail) != 1 {
		t.Fatalf("expected one field error, got %#v", rejected.Detail)
	}

	var next map[string]any
	doJSON(t, http.MethodPost, baseURL+"/items", map[string]any{
		"name":  name + " (2)",
		"price": 1,
	}, &next, 201)
	if nextID, _ := next["id"].(float64); nextID <= id {
		t.Fatalf("ids must increase: first=%v next=%v", id, nextID)
	}
}

func waitReady(t *testing.T, ctx context.Context, url string) {
	t.Helper()
	client := &http.Client{Timeout: 2 * time.Second}

	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		resp, err := client.Do(req)
		if err == nil && resp != nil && resp.StatusCode == 200 {
			_ = resp.Body.Close()
			return
		}
		if resp != nil {
			_ = resp.Body.Close()
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("service not ready: %s", url)
}

func doJSON(t *testing.T, method, url string, body any, out any, want int) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		t.Fatalf("%s %s: status=%d want=%d", method, url, resp.StatusCode, want)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
