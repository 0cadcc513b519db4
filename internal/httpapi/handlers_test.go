package httpapi

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtding233/montyhall/internal/simulator"
	"github.com/xtding233/montyhall/internal/store"
)

func newTestHandler(t *testing.T, opts Options) http.Handler {
	t.Helper()
	db, err := store.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewHandler(simulator.New(simulator.Options{Store: db, Workers: 2, MaxTrials: 100000}), opts)
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestCompare(t *testing.T) {
	h := newTestHandler(t, Options{})
	rec := get(t, h, "/compare?doors=3&trials=20000&seed=5")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out simulator.CompareResult
	decode(t, rec, &out)
	assert.Equal(t, uint64(5), out.Seed)
	assert.NotEmpty(t, out.RunID)
	assert.InDelta(t, 2.0/3.0, out.Comparison.Switch.WinRate(), 0.015)
	assert.InDelta(t, 1.0/3.0, out.Comparison.Stay.WinRate(), 0.015)

	again := get(t, h, "/compare?doors=3&trials=20000&seed=5")
	var out2 simulator.CompareResult
	decode(t, again, &out2)
	assert.Equal(t, out.Comparison, out2.Comparison)
	assert.NotEqual(t, out.RunID, out2.RunID)

	runs := get(t, h, "/runs?limit=3")
	require.Equal(t, http.StatusOK, runs.Code)
	var listed []store.Run
	decode(t, runs, &listed)
	assert.Len(t, listed, 3)
}

func TestEstimate(t *testing.T) {
	h := newTestHandler(t, Options{})

	rec := get(t, h, "/estimate?scenario=thousand&trials=2000&strategy=switch&seed=3")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out simulator.EstimateResult
	decode(t, rec, &out)
	assert.Equal(t, 1000, out.Result.NumDoors)
	assert.Equal(t, 2000, out.Result.TotalTrials)
	assert.Greater(t, out.Result.WinRate(), 0.98)

	rec = get(t, h, "/estimate?doors=4&trials=100&switch=false")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &out)
	assert.Equal(t, "stay", string(out.Result.Strategy))
}

func TestTrial(t *testing.T) {
	h := newTestHandler(t, Options{})
	rec := get(t, h, "/trial?switch=true&seed=9")
	require.Equal(t, http.StatusOK, rec.Code)
	var out simulator.TrialResult
	decode(t, rec, &out)
	assert.Equal(t, 3, out.Trial.NumDoors)
	assert.Len(t, out.Revealed, 1)
	assert.True(t, out.Switch)
}

func TestBadRequests(t *testing.T) {
	h := newTestHandler(t, Options{})
	for _, target := range []string{
		"/compare?doors=2&trials=10",
		"/compare?doors=x",
		"/compare?doors=3&trials=-1",
		"/compare?doors=3&trials=200000",
		"/compare?scenario=nope",
		"/compare?doors=3&seed=-4",
		"/estimate?doors=3&trials=10",
		"/estimate?doors=3&trials=10&strategy=both",
		"/trial?doors=1",
		"/trial?switch=perhaps",
		"/runs?limit=many",
	} {
		rec := get(t, h, target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		var e errResp
		decode(t, rec, &e)
		assert.NotEmpty(t, e.Err, target)
	}
}

func TestScenarios(t *testing.T) {
	h := newTestHandler(t, Options{})
	rec := get(t, h, "/scenarios")
	require.Equal(t, http.StatusOK, rec.Code)
	var out []scenarioResp
	decode(t, rec, &out)
	require.Len(t, out, 3)
	assert.Equal(t, "classic", out[0].Name)
	assert.InDelta(t, 2.0/3.0, out[0].Expected, 1e-12)
}

func TestRateLimit(t *testing.T) {
	h := newTestHandler(t, Options{RatePerSec: 0.001, RateBurst: 2})
	assert.Equal(t, http.StatusOK, get(t, h, "/healthz").Code)
	assert.Equal(t, http.StatusOK, get(t, h, "/healthz").Code)
	rec := get(t, h, "/healthz")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestServeListenerShutsDown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	h := newTestHandler(t, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ServeListener(ctx, ln, h, nil) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestResultsCarryWinRateAndStringSeed(t *testing.T) {
	h := newTestHandler(t, Options{})

	rec := get(t, h, "/estimate?doors=3&trials=1000&strategy=switch&seed=18446744073709551615")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var est map[string]any
	decode(t, rec, &est)
	assert.Equal(t, "18446744073709551615", est["seed"])
	res := est["result"].(map[string]any)
	require.Contains(t, res, "win_rate")
	assert.InDelta(t, res["wins"].(float64)/1000, res["win_rate"], 1e-12)
	assert.Contains(t, res, "ci_low")
	assert.Contains(t, res, "ci_high")
	assert.InDelta(t, 2.0/3.0, res["expected"], 1e-12)

	rec = get(t, h, "/compare?doors=10&trials=1000&seed=3")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var cmp map[string]any
	decode(t, rec, &cmp)
	assert.Equal(t, "3", cmp["seed"])
	c := cmp["comparison"].(map[string]any)
	assert.Equal(t, "3", c["seed"])
	for _, k := range []string{"switch", "stay"} {
		assert.Contains(t, c[k].(map[string]any), "win_rate", k)
	}

	rec = get(t, h, "/runs?limit=1")
	var runs []map[string]any
	decode(t, rec, &runs)
	require.Len(t, runs, 1)
	assert.Equal(t, "3", runs[0]["seed"])
	assert.Contains(t, runs[0]["result"].(map[string]any), "win_rate")
}
