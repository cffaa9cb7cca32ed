package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/google/uuid"
	"github.com/jsphweid/saxchart/logger"
	"github.com/jsphweid/saxchart/metrics"
	"github.com/jsphweid/saxchart/model"
)

const (
	RequestIDHeader    = "X-Request-ID"
	sentryFlushTimeout = 2 * time.Second
)

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// RequestTracking adds a request ID to every request and logs its outcome
func RequestTracking(recorder *metrics.Recorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.New().String()
			}
			w.Header().Set(RequestIDHeader, requestID)
			r = r.WithContext(logger.ContextWithRequestID(r.Context(), requestID))

			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)
			duration := time.Since(start)

			fields := logger.WithRequest(r)
			fields["duration_ms"] = duration.Milliseconds()
			fields["status_code"] = sw.status

			// server errors are captured where they happen, not here
			switch {
			case sw.status >= http.StatusInternalServerError:
				logger.Warn("Request failed with server error", fields)
			case sw.status >= http.StatusBadRequest:
				logger.Warn("Request failed with client error", fields)
			default:
				logger.Info("Request completed", fields)
			}

			if recorder != nil {
				recorder.RecordAPIRequest(r.Context(), r.URL.Path, sw.status, duration)
			}
		})
	}
}

// Sentry attaches a hub to each request and reports panics before passing
// them on to Recover.
func Sentry(next http.Handler) http.Handler {
	return sentryhttp.New(sentryhttp.Options{
		Repanic:         true,
		WaitForDelivery: false,
		Timeout:         sentryFlushTimeout,
	}).Handle(next)
}

// Recover turns a panic into a JSON 500. Sentry, inside it, has already
// captured the panic.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				fields := logger.WithRequest(r)
				fields["error"] = err
				logger.ErrorReported("Panic recovered", fmt.Errorf("%v", err), fields)

				WriteJSON(w, http.StatusInternalServerError, model.ErrorResponse{Error: "Internal server error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func WriteJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to write response", err, nil)
	}
}

func WriteError(w http.ResponseWriter, status int, detail string) {
	WriteJSON(w, status, model.ErrorResponse{Error: detail})
}
