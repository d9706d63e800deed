package internal

import (
	"bufio"
	"net"
	"net/http"
	"sync"
)

// ResponseWriter wraps http.ResponseWriter to track whether and how the
// response was written. Hooks registered with OnBeforeWrite run once, right
// before the headers are sent. For htmx requests every status is sent as
// 200 because htmx ignores bodies of other responses.
type ResponseWriter struct {
	http.ResponseWriter
	hooks   []func()
	status  int
	size    int64
	mu      sync.Mutex
	written bool
	isHTMX  bool
}

// NewResponseWriter wraps w.
func NewResponseWriter(w http.ResponseWriter, isHTMX bool) *ResponseWriter {
	return &ResponseWriter{
		ResponseWriter: w,
		status:         http.StatusOK,
		isHTMX:         isHTMX,
	}
}

// OnBeforeWrite registers fn to run before the headers are sent.
// Hooks registered after the first write are ignored.
func (w *ResponseWriter) OnBeforeWrite(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.written {
		w.hooks = append(w.hooks, fn)
	}
}

// commit marks the response as written and sends the headers once.
func (w *ResponseWriter) commit(code int) {
	w.mu.Lock()
	if w.written {
		w.mu.Unlock()
		return
	}
	w.written = true
	w.status = code
	hooks := w.hooks
	w.hooks = nil
	w.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}

	if w.isHTMX && code != http.StatusOK {
		code = http.StatusOK
	}
	w.ResponseWriter.WriteHeader(code)
}

// WriteHeader sends the status once; later calls are ignored.
func (w *ResponseWriter) WriteHeader(code int) {
	w.commit(code)
}

// Write sends an implicit 200 on first use.
func (w *ResponseWriter) Write(b []byte) (int, error) {
	w.commit(http.StatusOK)
	n, err := w.ResponseWriter.Write(b)
	w.mu.Lock()
	w.size += int64(n)
	w.mu.Unlock()
	return n, err
}

// Status returns the status the handler asked for, before any htmx rewrite.
func (w *ResponseWriter) Status() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

// Size returns the number of body bytes written.
func (w *ResponseWriter) Size() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.size
}

// Written reports whether headers were sent.
func (w *ResponseWriter) Written() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.written
}

// Flush implements http.Flusher.
func (w *ResponseWriter) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// Hijack implements http.Hijacker.
func (w *ResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := w.ResponseWriter.(http.Hijacker); ok {
		return hijacker.Hijack()
	}
	return nil, nil, http.ErrNotSupported
}

// Unwrap returns the underlying writer for http.ResponseController.
func (w *ResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
