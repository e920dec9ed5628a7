package request

import "net/http"

// ClientWriter wraps a http.ResponseWriter and captures the status code that
// was written, for use in metrics and logging.
type ClientWriter struct {
	http.ResponseWriter

	// statusCode is the status code that was written.
	statusCode int

	// wroteHeader is whether the header has been written.
	wroteHeader bool
}

// NewClientWriter creates a new ClientWriter.
func NewClientWriter(w http.ResponseWriter) *ClientWriter {
	return &ClientWriter{
		ResponseWriter: w,
	}
}

func (w *ClientWriter) WriteHeader(statusCode int) {
	if w.wroteHeader {
		return
	}
	w.statusCode = statusCode
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *ClientWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

// StatusCode returns the status code that was written. It defaults to 200 if
// no header has been written.
func (w *ClientWriter) StatusCode() int {
	if !w.wroteHeader {
		return http.StatusOK
	}
	return w.statusCode
}
