package httpapi

import (
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"wolt-report-service/internal/config"
	"wolt-report-service/internal/http/handlers"
	"wolt-report-service/internal/middleware"
	"wolt-report-service/pkg/response"
)

func NewRouter(logger *zap.Logger, cfg config.Config, reports handlers.ReportService) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID())
	r.Use(middleware.Telemetry(logger))
	r.Use(recoverPanic(logger))

	if cfg.Env == "development" || len(cfg.CorsAllowedOrigins) > 0 {
		options := cors.Options{
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{
				"Accept",
				"Authorization",
				"Content-Type",
				"Content-Encoding",
				"X-Request-Id",
			},
			ExposedHeaders:   []string{"X-Request-Id", "Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           300,
		}

		if cfg.Env == "development" {
			options.AllowOriginFunc = func(_ *http.Request, origin string) bool {
				return true
			}
		} else {
			options.AllowedOrigins = cfg.CorsAllowedOrigins
		}

		r.Use(cors.Handler(options))
	}

	h := &handlers.Handler{Logger: logger, Config: cfg, Reports: reports}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(setResponseHeader("X-Report-Service", "wolt"))
		if cfg.JWTSecret != "" {
			r.Use(middleware.ReportAuth(cfg.JWTSecret))
		}

		r.Post("/report", h.ReportCreate)
		r.Post("/summary", h.ReportSummary)
		r.Get("/reports/{guid}", h.ReportGet)
		r.Get("/reports/{guid}/image", h.ReportImage)
		r.Get("/reports/{guid}/pdf", h.ReportPDF)
	})

	return r
}

func recoverPanic(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil || rec == http.ErrAbortHandler {
					if rec != nil {
						panic(rec)
					}
					return
				}
				logger.Error("handler panic",
					zap.Any("panic", rec),
					zap.String("requestId", middleware.GetRequestID(r.Context())),
					zap.ByteString("stack", debug.Stack()),
				)
				response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func setResponseHeader(name string, value string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(name, value)
			next.ServeHTTP(w, r)
		})
	}
}
