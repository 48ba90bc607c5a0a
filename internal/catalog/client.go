package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"MiniCatalog/pkg/kit"
)

const defaultClientTimeout = 5 * time.Second

var (
	ErrUnavailable = errors.New("catalog unavailable")
	ErrBadStatus   = errors.New("catalog bad status")
)

// Client talks to a catalog service over HTTP. A 422 answer surfaces as a
// *ValidationError, a 404 on lookup as ok == false.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	if u, err := url.Parse(baseURL); err == nil && u.Scheme != "" && u.Host != "" {
		baseURL = strings.TrimRight(baseURL, "/")
	}
	return &Client{
		BaseURL: baseURL,
		HTTP: &http.Client{
			Timeout:   defaultClientTimeout,
			Transport: kit.TracedTransport(nil),
		},
	}
}

func (c *Client) Health(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.unexpected(resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) Create(ctx context.Context, name string, price float64) (Product, error) {
	resp, err := c.do(ctx, http.MethodPost, "/items", CreateRequest{Name: name, Price: price})
	if err != nil {
		return Product{}, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusCreated:
	case http.StatusUnprocessableEntity:
		return Product{}, decodeValidation(resp.Body)
	default:
		return Product{}, c.unexpected(resp)
	}

	var p Product
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return Product{}, fmt.Errorf("decode product: %w", err)
	}
	return p, nil
}

func (c *Client) Get(ctx context.Context, id int64) (Product, bool, error) {
	resp, err := c.do(ctx, http.MethodGet, "/items/"+strconv.FormatInt(id, 10), nil)
	if err != nil {
		return Product{}, false, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return Product{}, false, nil
	case http.StatusUnprocessableEntity:
		return Product{}, false, decodeValidation(resp.Body)
	default:
		return Product{}, false, c.unexpected(resp)
	}

	var p Product
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return Product{}, false, fmt.Errorf("decode product: %w", err)
	}
	return p, true, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(chimw.RequestIDHeader, uuid.NewString())

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return resp, nil
}

func (c *Client) unexpected(resp *http.Response) error {
	var body kit.DetailResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Detail != nil {
		return fmt.Errorf("%w: status=%d detail=%v", ErrBadStatus, resp.StatusCode, body.Detail)
	}
	return fmt.Errorf("%w: status=%d", ErrBadStatus, resp.StatusCode)
}

func decodeValidation(r io.Reader) error {
	var body struct {
		Detail []FieldError `json:"detail"`
	}
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return fmt.Errorf("decode validation detail: %w", err)
	}
	return &ValidationError{Fields: body.Detail}
}
