// Package server wires C6 (handlers) and C7 (router, error envelope)
// together into an http.Handler: chi-based routing grounded on
// piwi3910-nebulaio's go-chi/chi and go-chi/cors usage, request logging and
// panic recovery grounded on the teacher's internal/silo/router.go and
// internal/silo/middleware.go, and SigV4 enforcement via internal/sigv4.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/xid"

	"crate/internal/apierr"
	"crate/internal/primitives"
)

// responseRecorder wraps http.ResponseWriter to capture the status code and
// byte count written, the way the teacher's ResponseWriterWrapper does, so
// logging middleware can report both after the handler returns.
type responseRecorder struct {
	http.ResponseWriter
	status  int
	written int64
}

func (w *responseRecorder) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *responseRecorder) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.written += int64(n)
	return n, err
}

type requestIDContextKey struct{}

// withRequestID assigns every request an xid-generated identifier
// (globally ordered, lock-free — replacing the crypto/rand+timestamp
// scheme the pack's jsco2t-storas sketches for the same purpose), echoing
// it in X-Request-Id and making it available to handlers for the error
// envelope's RequestId element.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := xid.New().String()
		w.Header().Set("X-Request-Id", id)
		ctx := context.WithValue(r.Context(), requestIDContextKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestIDFrom(r *http.Request) string {
	if v, ok := r.Context().Value(requestIDContextKey{}).(string); ok {
		return v
	}
	return ""
}

// logInternalError reports an unexpected (non-taxonomy) storage or I/O
// failure to stderr via slog, per §7's "others -> InternalError with a
// stderr log line".
func logInternalError(r *http.Request, err error) {
	slog.Error("internal error", "path", r.URL.Path, "request_id", requestIDFrom(r), "error", err)
}

// standardHeaders sets the Date and Server headers C3 requires on every
// response, using the server's own RFC-1123 formatter rather than
// net/http's default Date handling, so the exact byte layout of §4.1/§8
// holds even if the underlying transport changes.
func standardHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Date", primitives.FormatHTTPDate(time.Now().Unix()))
		w.Header().Set("Server", "crate")
		next.ServeHTTP(w, r)
	})
}

// logRequest logs method, path, status, and duration for every request,
// grouped the way the teacher's LogEntry/LogRequest does, through
// log/slog rather than a bespoke logger.
func logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &responseRecorder{ResponseWriter: w}
		start := time.Now()
		next.ServeHTTP(rec, r)
		elapsedMS := float64(time.Since(start)) / float64(time.Millisecond)

		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", elapsedMS,
			"bytes", humanize.Bytes(uint64(rec.written)),
			"remote_addr", r.RemoteAddr,
			"request_id", requestIDFrom(r),
		}
		switch {
		case rec.status >= 500:
			slog.Error("request", attrs...)
		case rec.status >= 400:
			slog.Warn("request", attrs...)
		default:
			slog.Info("request", attrs...)
		}
	})
}

// recoverer turns a panicking handler into a 500 InternalError instead of
// taking down the connection, matching the teacher's middleware.Recoverer.
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rvr := recover(); rvr != nil {
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}
				slog.Error("panic in handler", "error", rvr, "path", r.URL.Path)
				if r.Header.Get("Connection") != "Upgrade" {
					writeError(w, r, apierr.ErrInternalError)
				}
			}
		}()
		next.ServeHTTP(w, r)
	})
}
