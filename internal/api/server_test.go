package api

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeeJaeHyekk/bridge-bim-platform/internal/config"
	"github.com/LeeJaeHyekk/bridge-bim-platform/internal/repository"
	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/bim"
)

func newTestServer(t *testing.T, mutate ...func(*config.Config)) *Server {
	t.Helper()
	repo, err := repository.Open("")
	require.NoError(t, err)
	cfg := config.Default()
	cfg.Server.RateLimit = 0
	for _, m := range mutate {
		m(&cfg)
	}
	return New(repo, repo, cfg)
}

func do(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func filterQuery(f string) string {
	return "?filter=" + url.QueryEscape(f)
}

func TestHealthAndUpload(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := do(t, h, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]string{"status": "ok"}, decode[map[string]string](t, rec))

	rec = do(t, h, http.MethodPost, "/api/bim/upload")
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
	assert.Equal(t, "not implemented", decode[ErrorBody](t, rec).Message)
}

func TestBridgeRoutes(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := do(t, h, http.MethodGet, "/api/bridges")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]bim.Bridge](t, rec), 3)

	rec = do(t, h, http.MethodGet, "/api/bridges/3")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "잠실대교", decode[bim.Bridge](t, rec).Name)

	rec = do(t, h, http.MethodGet, "/api/bridges/42")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "bridge not found", decode[ErrorBody](t, rec).Message)
}

func TestModelRoutes(t *testing.T) {
	h := newTestServer(t).Handler()

	tests := []struct {
		name   string
		target string
		status int
		msg    string
	}{
		{"by bridge", "/api/bim/bridges/1/bim", http.StatusOK, ""},
		{"by bridge without model", "/api/bim/bridges/2/bim", http.StatusNotFound, "BIM model not found"},
		{"by id", "/api/bim/models/bim-1", http.StatusOK, ""},
		{"unknown id", "/api/bim/models/bim-9", http.StatusNotFound, "BIM model not found"},
		{"component", "/api/bim/models/bim-1/components/comp-2", http.StatusOK, ""},
		{"unknown component", "/api/bim/models/bim-1/components/comp-9", http.StatusNotFound, "component not found"},
		{"geometry", "/api/bim/models/bim-1/components/comp-1/geometry", http.StatusOK, ""},
		{"missing geometry", "/api/bim/models/bim-1/components/comp-2/geometry", http.StatusNotFound, "geometry not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, tt.target)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			if tt.msg != "" {
				assert.Equal(t, tt.msg, decode[ErrorBody](t, rec).Message)
			}
		})
	}

	rec := do(t, h, http.MethodGet, "/api/bim/models/bim-1")
	m := decode[bim.Model](t, rec)
	assert.Equal(t, "bim-1", m.Metadata.ID)
	assert.Len(t, m.Components, 3)
	assert.Len(t, m.Geometries, 1)

	rec = do(t, h, http.MethodGet, "/api/bim/models")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]bim.Metadata](t, rec), 1)
}

func TestComponentsFilter(t *testing.T) {
	h := newTestServer(t).Handler()
	base := "/api/bim/models/bim-1/components"

	ids := func(rec *httptest.ResponseRecorder) []string {
		var out []string
		for _, c := range decode[[]bim.Component](t, rec) {
			out = append(out, c.ID)
		}
		return out
	}

	tests := []struct {
		name   string
		query  string
		status int
		want   []string
	}{
		{"no filter", "", http.StatusOK, []string{"comp-1", "comp-2", "comp-3"}},
		{"warning", filterQuery(`{"status":["WARNING"]}`), http.StatusOK, []string{"comp-3"}},
		{"type", filterQuery(`{"componentType":["Pylon","Cable"]}`), http.StatusOK, []string{"comp-1", "comp-2"}},
		{"numeric", filterQuery(`{"propertyFilters":[{"key":"height","operator":"greaterThan","value":40}]}`),
			http.StatusOK, []string{"comp-1"}},
		{"contains", filterQuery(`{"propertyFilters":[{"key":"material","operator":"contains","value":"Con"}]}`),
			http.StatusOK, []string{"comp-1", "comp-3"}},
		{"malformed", filterQuery(`{"status":`), http.StatusBadRequest, nil},
		{"unknown operator", filterQuery(`{"propertyFilters":[{"key":"height","operator":"near","value":1}]}`),
			http.StatusBadRequest, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, base+tt.query)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.status == http.StatusOK {
				assert.Equal(t, tt.want, ids(rec))
			} else {
				assert.NotEmpty(t, decode[ErrorBody](t, rec).Message)
			}
		})
	}

	rec := do(t, h, http.MethodGet, "/api/bim/models/bim-9/components")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))

	rec = do(t, h, http.MethodGet, "/api/bim/models/bim-9/relationships")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))

	rec = do(t, h, http.MethodGet, "/api/bim/models/bim-1/relationships")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]bim.Relationship](t, rec), 2)
}

func TestComponentsPaging(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := do(t, h, http.MethodGet, "/api/bim/models/bim-1/components?page=2&pageSize=2")
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[bim.SearchResult](t, rec)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 2, res.Page)
	require.Len(t, res.Components, 1)
	assert.Equal(t, "comp-3", res.Components[0].ID)

	rec = do(t, h, http.MethodGet, "/api/bim/models/bim-1/components?pageSize=0")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, h, http.MethodGet, "/api/bim/models/bim-1/components?page=x")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMiddleware(t *testing.T) {
	t.Run("cors preflight", func(t *testing.T) {
		h := newTestServer(t, func(c *config.Config) { c.Server.CORSOrigin = "https://app.example" }).Handler()
		rec := do(t, h, http.MethodOptions, "/api/bridges")
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("request id", func(t *testing.T) {
		h := newTestServer(t).Handler()
		rec := do(t, h, http.MethodGet, "/health")
		assert.Len(t, rec.Header().Get(RequestIDHeader), 36)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set(RequestIDHeader, "0b5c5a3e-8a0e-4b8f-9d4c-2a1f0d3c4b5a")
		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, "0b5c5a3e-8a0e-4b8f-9d4c-2a1f0d3c4b5a", rec.Header().Get(RequestIDHeader))

		req.Header.Set(RequestIDHeader, "not-a-uuid")
		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.NotEqual(t, "not-a-uuid", rec.Header().Get(RequestIDHeader))
	})

	t.Run("rate limit", func(t *testing.T) {
		h := newTestServer(t, func(c *config.Config) {
			c.Server.RateLimit = 0.001
			c.Server.RateBurst = 2
		}).Handler()
		assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/health").Code)
		assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/health").Code)
		rec := do(t, h, http.MethodGet, "/health")
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "too many requests", decode[ErrorBody](t, rec).Message)
	})

	t.Run("recover", func(t *testing.T) {
		h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }), Recover())
		rec := do(t, h, http.MethodGet, "/")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "internal server error", decode[ErrorBody](t, rec).Message)
	})

	t.Run("chain order", func(t *testing.T) {
		var order []int
		mw := func(n int) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, n)
					next.ServeHTTP(w, r)
				})
			}
		}
		h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { order = append(order, 0) }),
			mw(1), mw(2), mw(3))
		do(t, h, http.MethodGet, "/")
		assert.Equal(t, []int{1, 2, 3, 0}, order)
	})

	t.Run("metrics", func(t *testing.T) {
		h := newTestServer(t).Handler()
		do(t, h, http.MethodGet, "/api/bridges")
		rec := do(t, h, http.MethodGet, "/metrics")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `bim_api_requests_total{method="GET",route="GET /api/bridges",status="200"}`)
	})
}

func TestServeShutsDown(t *testing.T) {
	s := newTestServer(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/health")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), "ok")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
