package middleware

import (
	"log"
	"net/http"
	"runtime/debug"

	"badboys-inventory-api/pkg/apperror"
	"badboys-inventory-api/pkg/response"
)

// Recovery turns a handler panic into a 500 instead of tearing down the
// connection.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("[HTTP] panic rid=%s: %v\n%s", GetRequestID(r.Context()), err, debug.Stack())
				response.Error(w, apperror.Internal("internal server error", nil))
			}
		}()

		next.ServeHTTP(w, r)
	})
}
