package middleware

import (
	"context"
	"net/http"
	"os"
	"strings"

	"wolt-report-service/internal/auth"
	"wolt-report-service/pkg/response"
)

type contextKey string

const authContextKey contextKey = "authContext"

type AuthContext struct {
	Subject string
	Scope   string
}

func WithAuthContext(ctx context.Context, authCtx *AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey, authCtx)
}

func GetAuthContext(ctx context.Context) (*AuthContext, bool) {
	value := ctx.Value(authContextKey)
	if value == nil {
		return nil, false
	}
	ac, ok := value.(*AuthContext)
	return ac, ok
}

func writeAuthError(w http.ResponseWriter, status int, code, message, debug string) {
	var details map[string]any
	if os.Getenv("APP_ENV") == "development" && strings.TrimSpace(debug) != "" {
		details = map[string]any{"debug": debug}
	}
	response.ErrorWithDetails(w, status, code, message, details)
}

// ReportAuth requires a bearer token carrying the reports scope.
func ReportAuth(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := auth.ParseBearerToken(r.Header.Get("Authorization"))
			claims, err := auth.VerifyAccessToken(token, jwtSecret)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authorization token required", err.Error())
				return
			}
			if !claims.HasScope(auth.ScopeReports) {
				writeAuthError(w, http.StatusForbidden, "FORBIDDEN", "Report access required", "")
				return
			}

			ctx := WithAuthContext(r.Context(), &AuthContext{Subject: claims.Subject, Scope: claims.Scope})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
