package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/rkahn/rundash/internal/request"
)

// RequestIDHeader is the response header carrying the request ID.
const RequestIDHeader = "X-Request-ID"

// RequestID assigns each request a UUID, echoes it in the response
// header, and stows it in the context for the logging middleware. An
// incoming X-Request-ID is honored so upstream proxies can correlate.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		r = r.WithContext(request.WithRequestID(r.Context(), id))
		next.ServeHTTP(w, r)
	})
}
