// Package client is a typed HTTP client for the bridge BIM API.
package client

import (
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

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/bim"
)

var (
	// ErrNotFound is returned for a 404. It wraps bim.ErrNotFound.
	ErrNotFound = fmt.Errorf("resource not found: %w", bim.ErrNotFound)
	// ErrUnreachable is returned when no response was received.
	ErrUnreachable = errors.New("server unreachable")
)

// StatusError is any other non-2xx response.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// Retryable reports whether the failure is on the server side.
func (e *StatusError) Retryable() bool {
	return e.Status >= 500 || e.Status == http.StatusTooManyRequests
}

// Client talks to one API base URL.
type Client struct {
	base *url.URL
	http *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// New returns a client for baseURL, e.g. "http://localhost:8080".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}
	c := &Client{
		base: u,
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   10 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

func getJSON[T any](ctx context.Context, c *Client, path string, q url.Values) (T, error) {
	var out T
	target := c.base.String() + path
	if len(q) > 0 {
		target += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return out, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return out, ctx.Err()
		}
		return out, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return out, fmt.Errorf("GET %s: %w", path, ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := &StatusError{Status: resp.StatusCode}
		var body struct {
			Message string `json:"message"`
		}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if json.Unmarshal(data, &body) == nil {
			se.Message = body.Message
		}
		return out, fmt.Errorf("GET %s: %w", path, se)
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, fmt.Errorf("GET %s: decode: %w", path, err)
	}
	return out, nil
}

func esc(s string) string { return url.PathEscape(s) }

func (c *Client) Health(ctx context.Context) error {
	_, err := getJSON[map[string]string](ctx, c, "/health", nil)
	return err
}

func (c *Client) Bridges(ctx context.Context) ([]bim.Bridge, error) {
	return getJSON[[]bim.Bridge](ctx, c, "/api/bridges", nil)
}

func (c *Client) Bridge(ctx context.Context, id string) (bim.Bridge, error) {
	return getJSON[bim.Bridge](ctx, c, "/api/bridges/"+esc(id), nil)
}

func (c *Client) Models(ctx context.Context) ([]bim.Metadata, error) {
	return getJSON[[]bim.Metadata](ctx, c, "/api/bim/models", nil)
}

func (c *Client) ModelByBridge(ctx context.Context, bridgeID string) (*bim.Model, error) {
	return getJSON[*bim.Model](ctx, c, "/api/bim/bridges/"+esc(bridgeID)+"/bim", nil)
}

func (c *Client) Model(ctx context.Context, modelID string) (*bim.Model, error) {
	return getJSON[*bim.Model](ctx, c, "/api/bim/models/"+esc(modelID), nil)
}

func filterQuery(f bim.Filter) (url.Values, error) {
	if f.IsZero() {
		return nil, nil
	}
	data, err := json.Marshal(f)
	if err != nil {
		return nil, err
	}
	return url.Values{"filter": {string(data)}}, nil
}

// Components lists the model's components matching f.
func (c *Client) Components(ctx context.Context, modelID string, f bim.Filter) ([]bim.Component, error) {
	q, err := filterQuery(f)
	if err != nil {
		return nil, err
	}
	return getJSON[[]bim.Component](ctx, c, "/api/bim/models/"+esc(modelID)+"/components", q)
}

// SearchComponents returns one page of the filtered components.
func (c *Client) SearchComponents(ctx context.Context, modelID string, f bim.Filter, page, pageSize int) (bim.SearchResult, error) {
	q, err := filterQuery(f)
	if err != nil {
		return bim.SearchResult{}, err
	}
	if q == nil {
		q = url.Values{}
	}
	q.Set("page", strconv.Itoa(page))
	q.Set("pageSize", strconv.Itoa(pageSize))
	return getJSON[bim.SearchResult](ctx, c, "/api/bim/models/"+esc(modelID)+"/components", q)
}

func (c *Client) Component(ctx context.Context, modelID, componentID string) (bim.Component, error) {
	return getJSON[bim.Component](ctx, c, "/api/bim/models/"+esc(modelID)+"/components/"+esc(componentID), nil)
}

func (c *Client) Geometry(ctx context.Context, modelID, componentID string) (bim.Geometry, error) {
	return getJSON[bim.Geometry](ctx, c,
		"/api/bim/models/"+esc(modelID)+"/components/"+esc(componentID)+"/geometry", nil)
}

func (c *Client) Relationships(ctx context.Context, modelID string) ([]bim.Relationship, error) {
	return getJSON[[]bim.Relationship](ctx, c, "/api/bim/models/"+esc(modelID)+"/relationships", nil)
}
