package middleware

import (
	"net/http"
)

// Request bodies here are small JSON documents: session profiles, location
// pings, transcript snippets. 64KB leaves generous headroom.
const maxRequestBodySize = 64 << 10

// BodyLimit rejects oversized requests up front and caps reads on the rest.
func BodyLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil && r.ContentLength > maxRequestBodySize {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{
				"error": "Request body too large",
			})
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		next.ServeHTTP(w, r)
	})
}
