package modal

import (
	"bytes"
	"cmp"
	"net/http"
)

var _ http.ResponseWriter = (*responseWriter)(nil)

// responseWriter buffers an Inertia response so the middleware can rewrite
// its status code or replace it when it is empty.
type responseWriter struct {
	w          http.ResponseWriter
	buf        bytes.Buffer
	statusCode int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	//nolint:exhaustruct
	return &responseWriter{w: w}
}

func (rw *responseWriter) Header() http.Header { return rw.w.Header() }

// WriteHeader records the status code. Unlike http.ResponseWriter it may be
// called again to replace the code until the response is flushed.
func (rw *responseWriter) WriteHeader(statusCode int) { rw.statusCode = statusCode }

func (rw *responseWriter) Write(b []byte) (int, error) {
	if rw.statusCode == 0 {
		rw.statusCode = http.StatusOK
	}

	return rw.buf.Write(b) //nolint:wrapcheck
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *responseWriter) Unwrap() http.ResponseWriter { return rw.w }

// Empty reports whether the handler produced neither a body nor
// a meaningful status code.
func (rw *responseWriter) Empty() bool {
	return rw.buf.Len() == 0 && (rw.statusCode == 0 || rw.statusCode == http.StatusOK)
}

// flush writes the buffered response to the underlying writer.
func (rw *responseWriter) flush() {
	rw.w.WriteHeader(cmp.Or(rw.statusCode, http.StatusOK))

	if rw.buf.Len() > 0 {
		_, err := rw.w.Write(rw.buf.Bytes())
		if err != nil {
			d("failed to flush response: %v", err)
		}
	}
}
