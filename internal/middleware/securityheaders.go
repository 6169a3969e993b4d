package middleware

import (
	"net/http"
)

// SecurityHeaders sets security headers on all responses. The CSP
// allows same-origin assets plus the remote hosts the dashboard
// renders directly: Strava avatars and map tiles.
func SecurityHeaders(enableHSTS bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("X-XSS-Protection", "1; mode=block")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			w.Header().Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
			w.Header().Set("Content-Security-Policy",
				"default-src 'self'; img-src 'self' data: https://*.cloudfront.net https://*.tile.openstreetmap.org; style-src 'self' 'unsafe-inline'")

			// HSTS only over TLS and only when explicitly enabled, so
			// local development stays unaffected.
			if enableHSTS && r.TLS != nil {
				w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
			}

			next.ServeHTTP(w, r)
		})
	}
}
