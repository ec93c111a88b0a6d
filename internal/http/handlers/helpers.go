package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/klauspost/pgzip"
	"go.uber.org/zap"

	"wolt-report-service/internal/chart"
	"wolt-report-service/internal/middleware"
	"wolt-report-service/internal/orders"
	"wolt-report-service/internal/report"
	"wolt-report-service/internal/storage"
	"wolt-report-service/pkg/response"
)

var errBodyTooLarge = errors.New("request body too large")

func readPathString(r *http.Request, key string) string {
	return strings.TrimSpace(chi.URLParam(r, key))
}

// readBody reads the request body up to limit bytes, inflating it first
// when the client sent Content-Encoding: gzip. The limit applies to both
// the wire and the inflated size.
func readBody(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, error) {
	var body io.Reader = http.MaxBytesReader(w, r.Body, limit)
	if strings.EqualFold(strings.TrimSpace(r.Header.Get("Content-Encoding")), "gzip") {
		gz, err := pgzip.NewReader(body)
		if err != nil {
			return nil, overLimit(err)
		}
		defer gz.Close()
		body = gz
	}

	data, err := io.ReadAll(io.LimitReader(body, limit+1))
	if err != nil {
		return nil, overLimit(err)
	}
	if int64(len(data)) > limit {
		return nil, errBodyTooLarge
	}
	return data, nil
}

func overLimit(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return errBodyTooLarge
	}
	return &orders.MalformedInputError{Reason: "unreadable body", Err: err}
}

// writeReportError maps pipeline errors onto the response envelope.
func (h *Handler) writeReportError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		malformed *orders.MalformedInputError
		timeout   *chart.RenderTimeoutError
		failure   *chart.RenderFailureError
		persist   *storage.PersistenceError
	)
	requestID := middleware.GetRequestID(r.Context())

	switch {
	case errors.Is(err, errBodyTooLarge):
		response.Error(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large")
	case errors.As(err, &malformed):
		details := map[string]any{}
		if malformed.OrderID != "" {
			details["orderId"] = malformed.OrderID
		}
		if malformed.Field != "" {
			details["field"] = malformed.Field
		}
		response.ErrorWithDetails(w, http.StatusBadRequest, "MALFORMED_INPUT", err.Error(), details)
	case errors.Is(err, report.ErrNotFound):
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Report not found")
	case errors.As(err, &timeout):
		h.Logger.Error("chart render timed out", zap.String("requestId", requestID), zap.String("chart", timeout.Title))
		response.Error(w, http.StatusGatewayTimeout, "RENDER_TIMEOUT", "Chart rendering timed out")
	case errors.As(err, &failure):
		h.Logger.Error("chart render failed", zap.String("requestId", requestID), zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "RENDER_FAILED", "Chart rendering failed")
	case errors.As(err, &persist):
		h.Logger.Error("report persistence failed", zap.String("requestId", requestID), zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "PERSISTENCE_FAILED", "Failed to store report")
	case r.Context().Err() != nil:
		h.Logger.Warn("request cancelled", zap.String("requestId", requestID))
		response.Error(w, http.StatusServiceUnavailable, "CANCELLED", "Request cancelled")
	default:
		h.Logger.Error("report request failed", zap.String("requestId", requestID), zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to build report")
	}
}
