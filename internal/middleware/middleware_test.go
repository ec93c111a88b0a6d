package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wolt-report-service/internal/auth"
)

func TestRequestIDPropagatesAndGenerates(t *testing.T) {
	var seen string
	h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Correlation-Id", "corr-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "corr-1", seen)
	assert.Equal(t, "corr-1", rec.Header().Get("X-Request-Id"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, seen, 36)
	assert.Equal(t, seen, rec.Header().Get("X-Request-Id"))
}

func TestReportAuth(t *testing.T) {
	h := ReportAuth("secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ac, ok := GetAuthContext(r.Context())
		require.True(t, ok)
		assert.Equal(t, "ops", ac.Subject)
		w.WriteHeader(http.StatusNoContent)
	}))

	call := func(token string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/reports/x", nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	good, err := auth.IssueAccessToken("secret", "ops", auth.ScopeReports, time.Hour)
	require.NoError(t, err)
	noScope, err := auth.IssueAccessToken("secret", "ops", "billing", time.Hour)
	require.NoError(t, err)

	assert.Equal(t, http.StatusNoContent, call(good))
	assert.Equal(t, http.StatusForbidden, call(noScope))
	assert.Equal(t, http.StatusUnauthorized, call(""))
}

func TestLatencyPercentiles(t *testing.T) {
	agg := newLatencyAggregator(4)
	for _, v := range []int64{100, 1, 2, 3, 4} {
		agg.record("GET /x", v)
	}
	p50, p95 := agg.record("GET /x", 5)
	// window now holds 5, 2, 3, 4 after the oldest samples rolled off
	assert.Equal(t, int64(3), p50)
	assert.Equal(t, int64(5), p95)
}
