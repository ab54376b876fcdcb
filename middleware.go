package headerlottery

import (
	"net/http"

	"github.com/ericselin/header-lottery/headers"

	"github.com/go-chi/chi/v5/middleware"
)

// Middleware logs the classification of the security headers that the
// given handler sends with each response. Responses are not modified.
func (c *Classifier) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// keeps Flusher, Hijacker etc. of the underlying writer
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			// nothing written, the server sends an empty 200
			status = http.StatusOK
		}
		result := c.Classify(headers.FromHTTP(ww.Header()), requestOrigin(r))
		c.log.Info().
			Str("url", r.URL.String()).
			Int("status", status).
			Interface("classification", result).
			Msg("Classified response headers")
	})
}

// requestOrigin returns the origin the request was sent to.
func requestOrigin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	origin, err := headers.Origin(scheme + "://" + r.Host)
	if err != nil {
		return ""
	}
	return origin
}
