package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"wolt-report-service/internal/auth"
	"wolt-report-service/internal/config"
	"wolt-report-service/internal/report"
)

type stubReports struct{}

func (stubReports) Prepare(context.Context, [][]byte) (report.Prepared, error) {
	return report.Prepared{}, nil
}

func (stubReports) Generate(context.Context, [][]byte) (*report.Report, error) {
	panic("not used")
}

func (stubReports) Lookup(_ context.Context, id string) (*report.Report, error) {
	return &report.Report{ID: id}, nil
}

func (stubReports) Open(context.Context, string) ([]byte, *report.Report, error) {
	return nil, nil, report.ErrNotFound
}

func TestHealth(t *testing.T) {
	router := NewRouter(zap.NewNop(), config.Config{}, stubReports{})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestAPIRequiresTokenWhenSecretSet(t *testing.T) {
	router := NewRouter(zap.NewNop(), config.Config{JWTSecret: "secret"}, stubReports{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reports/abc", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := auth.IssueAccessToken("secret", "ops", auth.ScopeReports, time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/api/reports/abc", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "wolt", rec.Header().Get("X-Report-Service"))
}

func TestPanicBecomesInternalError(t *testing.T) {
	router := NewRouter(zap.NewNop(), config.Config{MaxBodyBytes: 1024}, stubReports{})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/report", strings.NewReader("[]")))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "INTERNAL_ERROR")
}
