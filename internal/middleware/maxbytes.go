package middleware

import "net/http"

// DefaultMaxBodyBytes is the default request body cap (1 MiB).
const DefaultMaxBodyBytes = 1 << 20

// MaxBytes caps the request body. Handlers see *http.MaxBytesError once the cap is exceeded.
func MaxBytes(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
