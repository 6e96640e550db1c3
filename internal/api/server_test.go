package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"portfoliolab/internal/engine"
	"portfoliolab/internal/metrics"
	"portfoliolab/types"
)

type mockRunner struct {
	err      error
	requests []engine.Request
	limit    int
}

func (m *mockRunner) Run(_ context.Context, req engine.Request, _ engine.ProgressFunc) (*engine.Result, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	return result(req), nil
}

func (m *mockRunner) RunBatch(_ context.Context, reqs []engine.Request, limit int) ([]*engine.Result, error) {
	m.requests = append(m.requests, reqs...)
	m.limit = limit
	if m.err != nil {
		return nil, m.err
	}
	out := make([]*engine.Result, len(reqs))
	for i, r := range reqs {
		out[i] = result(r)
	}
	return out, nil
}

func result(req engine.Request) *engine.Result {
	return &engine.Result{
		RunID:       uuid.Must(uuid.NewV4()),
		Strategy:    req.Strategy,
		History:     []types.Snapshot{},
		Trades:      []types.Trade{},
		Performance: metrics.Performance{ProfitFactor: metrics.Ratio(math.Inf(1))},
	}
}

func newTestServer(r Runner) http.Handler {
	return NewServer(":0", r, zap.NewNop()).Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

const validBody = `{"strategy":{"type":"buyAndHold"},"universe":["AAPL"],"initialCapital":"1000","dateRange":{"start":"2024-01-01","end":"2024-02-01"}}`

func TestHealth(t *testing.T) {
	w := do(t, newTestServer(&mockRunner{}), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestRunBacktest(t *testing.T) {
	runner := &mockRunner{}
	w := do(t, newTestServer(runner), http.MethodPost, "/api/backtests", validBody)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.Len(t, runner.requests, 1)
	assert.Equal(t, types.StrategyBuyAndHold, runner.requests[0].Strategy.Type)
	assert.Equal(t, []types.AssetID{"AAPL"}, runner.requests[0].Universe)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	perf := body["performance"].(map[string]any)
	assert.Equal(t, "Infinity", perf["profitFactor"])
	assert.NotEmpty(t, body["runId"])
}

func TestRunBacktestErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
	}{
		{"malformed body", `{"strategy":`, nil, http.StatusBadRequest},
		{"configuration", validBody, fmt.Errorf("wrapped: %w", engine.ErrConfiguration), http.StatusBadRequest},
		{"provider", validBody, fmt.Errorf("%w: AAPL: timeout", engine.ErrPriceData), http.StatusBadGateway},
		{"anything else", validBody, errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, newTestServer(&mockRunner{err: tt.err}), http.MethodPost, "/api/backtests", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestRunBatch(t *testing.T) {
	runner := &mockRunner{}
	body := fmt.Sprintf(`{"requests":[%s,%s],"parallelism":2}`, validBody, validBody)
	w := do(t, newTestServer(runner), http.MethodPost, "/api/backtests/batch", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 2, runner.limit)
	assert.Len(t, runner.requests, 2)

	var out struct {
		Count   int               `json:"count"`
		Results []json.RawMessage `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, 2, out.Count)
	assert.Len(t, out.Results, 2)

	w = do(t, newTestServer(runner), http.MethodPost, "/api/backtests/batch", `{"requests":[]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
