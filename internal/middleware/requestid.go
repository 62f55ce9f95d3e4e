package middleware

import (
	"context"
	"net/http"

	"badboys-inventory-api/pkg/uid"
)

type contextKey int

const requestIDKey contextKey = iota

// RequestIDHeader is echoed back on every response so game servers can
// correlate their calls with API logs.
const RequestIDHeader = "X-Request-ID"

// RequestID tags each request with an id, honoring one supplied by the
// caller and minting one otherwise.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uid.New()
		}

		w.Header().Set(RequestIDHeader, requestID)

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID returns the id tagged onto ctx, or "" outside a request.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}
