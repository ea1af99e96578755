package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/gridpath/pkg/config"
	"github.com/matzehuels/gridpath/pkg/errors"
	"github.com/matzehuels/gridpath/pkg/graph"
	"github.com/matzehuels/gridpath/pkg/observability"
	"github.com/matzehuels/gridpath/pkg/observability/prom"
	"github.com/matzehuels/gridpath/pkg/search"
	"github.com/matzehuels/gridpath/pkg/session"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Grid.Columns = 4
	cfg.Grid.Rows = 4
	cfg.Grid.Seed = 7
	cfg.Grid.EdgeProbability = 1
	return cfg
}

func newTestServer(t *testing.T, opts ...Option) *httptest.Server {
	t.Helper()
	s := New(testConfig(), log.New(io.Discard), opts...)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, r)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func lineDocument() graph.Document {
	return graph.Document{
		Nodes: []graph.NodeDoc{{ID: "a"}, {ID: "b", X: 1}, {ID: "c", X: 2}},
		Connections: []graph.ConnectionDoc{
			{From: "a", To: "b", Cost: 1},
			{From: "b", To: "c", Cost: 2},
			{From: "a", To: "c", Cost: 5},
		},
	}
}

type snapshotBody struct {
	ID      string         `json:"id"`
	Outcome string         `json:"outcome"`
	Path    []string       `json:"path"`
	Cost    *float64       `json:"cost"`
	Stats   search.Stats   `json:"stats"`
	Cats    map[string]string `json:"categories"`
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp := do(t, http.MethodGet, ts.URL+"/healthz", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[map[string]any](t, resp)
	assert.Equal(t, "ok", body["status"])
	assert.Contains(t, body, "build")
}

func TestCreateAndStepGeneratedGrid(t *testing.T) {
	ts := newTestServer(t)

	resp := do(t, http.MethodPost, ts.URL+"/runs", map[string]any{})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[runResponse](t, resp)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "astar", created.Algorithm)
	assert.Equal(t, "euclidean", created.Heuristic)
	assert.Equal(t, "n[0,0]", created.Start)
	assert.Equal(t, "n[3,3]", created.Goal)
	assert.Equal(t, 16, created.Nodes)
	assert.Equal(t, int64(7), created.Seed)

	resp = do(t, http.MethodGet, ts.URL+"/runs/"+created.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	snap := decode[snapshotBody](t, resp)
	assert.Equal(t, "continue", snap.Outcome)
	assert.Nil(t, snap.Cost)
	assert.Empty(t, snap.Path)

	resp = do(t, http.MethodPost, ts.URL+"/runs/"+created.ID+"/step?count=all", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	snap = decode[snapshotBody](t, resp)
	assert.Equal(t, "found", snap.Outcome)
	require.NotNil(t, snap.Cost)
	assert.Greater(t, *snap.Cost, 0.0)
	require.NotEmpty(t, snap.Path)
	assert.Equal(t, "n[0,0]", snap.Path[0])
	assert.Equal(t, "n[3,3]", snap.Path[len(snap.Path)-1])
	assert.Positive(t, snap.Stats.Expanded)
}

func TestCreatePostedGraph(t *testing.T) {
	ts := newTestServer(t)

	resp := do(t, http.MethodPost, ts.URL+"/runs", map[string]any{
		"graph":     lineDocument(),
		"start":     "a",
		"goal":      "c",
		"algorithm": "dijkstra",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[runResponse](t, resp)
	assert.Equal(t, "dijkstra", created.Algorithm)
	assert.Empty(t, created.Heuristic)
	assert.Equal(t, 3, created.Connections)

	resp = do(t, http.MethodPost, ts.URL+"/runs/"+created.ID+"/step?count=1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	snap := decode[snapshotBody](t, resp)
	assert.Equal(t, "continue", snap.Outcome)
	assert.Equal(t, 1, snap.Stats.Steps)

	resp = do(t, http.MethodPost, ts.URL+"/runs/"+created.ID+"/step?count=all", nil)
	snap = decode[snapshotBody](t, resp)
	assert.Equal(t, "found", snap.Outcome)
	assert.Equal(t, []string{"a", "b", "c"}, snap.Path)
	assert.Equal(t, "closed", snap.Cats["a"])
	require.NotNil(t, snap.Cost)
	assert.Equal(t, 3.0, *snap.Cost)

	resp = do(t, http.MethodGet, ts.URL+"/runs/"+created.ID+"/graph", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc := decode[graph.Document](t, resp)
	assert.Len(t, doc.Nodes, 3)

	resp = do(t, http.MethodGet, ts.URL+"/runs/"+created.ID+"/dot", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	dot, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(dot), "digraph"))
}

func TestCreateRunErrors(t *testing.T) {
	tests := []struct {
		name string
		body any
		code errors.Code
	}{
		{"bad algorithm", map[string]any{"algorithm": "bfs"}, errors.ErrCodeInvalidAlgorithm},
		{"bad heuristic", map[string]any{"heuristic": "octile"}, errors.ErrCodeInvalidHeuristic},
		{"unknown start", map[string]any{"start": "nowhere"}, errors.ErrCodeInvalidNode},
		{"missing endpoints", map[string]any{"graph": lineDocument()}, errors.ErrCodeInvalidInput},
		{"unknown field", map[string]any{"colour": "red"}, errors.ErrCodeInvalidInput},
		{"bad grid", map[string]any{"grid": map[string]any{"columns": 0}}, errors.ErrCodeInvalidConfig},
		{"negative cost", map[string]any{
			"graph": graph.Document{
				Nodes:       []graph.NodeDoc{{ID: "a"}, {ID: "b"}},
				Connections: []graph.ConnectionDoc{{From: "a", To: "b", Cost: -1}},
			},
			"start": "a", "goal": "b",
		}, errors.ErrCodeInvalidGraph},
	}

	ts := newTestServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, http.MethodPost, ts.URL+"/runs", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			body := decode[errorResponse](t, resp)
			assert.Equal(t, tt.code, body.Code)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestUnknownRun(t *testing.T) {
	ts := newTestServer(t)
	for _, req := range []struct{ method, path string }{
		{http.MethodGet, "/runs/missing"},
		{http.MethodPost, "/runs/missing/step"},
		{http.MethodGet, "/runs/missing/graph"},
		{http.MethodDelete, "/runs/missing"},
	} {
		resp := do(t, req.method, ts.URL+req.path, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, "%s %s", req.method, req.path)
		body := decode[errorResponse](t, resp)
		assert.Equal(t, errors.ErrCodeSessionNotFound, body.Code)
	}
}

func TestStepCountValidation(t *testing.T) {
	ts := newTestServer(t)
	created := decode[runResponse](t, do(t, http.MethodPost, ts.URL+"/runs", map[string]any{}))

	for _, count := range []string{"0", "-3", "many"} {
		resp := do(t, http.MethodPost, ts.URL+"/runs/"+created.ID+"/step?count="+count, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "count=%s", count)
	}
}

func TestDeleteRun(t *testing.T) {
	ts := newTestServer(t)
	created := decode[runResponse](t, do(t, http.MethodPost, ts.URL+"/runs", map[string]any{}))

	resp := do(t, http.MethodDelete, ts.URL+"/runs/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, http.MethodGet, ts.URL+"/runs/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStoreFull(t *testing.T) {
	store := session.NewMemoryStore(session.WithCapacity(1))
	ts := newTestServer(t, WithStore(store))

	resp := do(t, http.MethodPost, ts.URL+"/runs", map[string]any{})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = do(t, http.MethodPost, ts.URL+"/runs", map[string]any{})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, errors.ErrCodeUnavailable, decode[errorResponse](t, resp).Code)
}

func TestExpiredRun(t *testing.T) {
	var offset atomic.Int64
	store := session.NewMemoryStore(session.WithClock(func() time.Time {
		return time.Now().Add(time.Duration(offset.Load()))
	}))
	ts := newTestServer(t, WithStore(store))
	created := decode[runResponse](t, do(t, http.MethodPost, ts.URL+"/runs", map[string]any{}))

	offset.Store(int64(time.Hour))
	resp := do(t, http.MethodGet, ts.URL+"/runs/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, errors.ErrCodeSessionExpired, decode[errorResponse](t, resp).Code)
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := prom.New(reg)
	observability.SetHTTPHooks(m)
	t.Cleanup(observability.Reset)

	ts := newTestServer(t, WithMetrics(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	do(t, http.MethodGet, ts.URL+"/healthz", nil)
	do(t, http.MethodGet, ts.URL+"/no/such/page-8f3a", nil)

	resp := do(t, http.MethodGet, ts.URL+"/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "gridpath_http_requests_total")
	assert.Contains(t, string(body), `route="/healthz"`)
	assert.Contains(t, string(body), `route="unmatched"`)
	assert.NotContains(t, string(body), "page-8f3a")
}
