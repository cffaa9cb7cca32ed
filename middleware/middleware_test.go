package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/jsphweid/saxchart/logger"
	"github.com/jsphweid/saxchart/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestTrackingSetsID(t *testing.T) {
	var seen string
	h := RequestTracking(metrics.NewRecorder("test"))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logger.RequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/x", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
}

func TestRequestTrackingKeepsIncomingID(t *testing.T) {
	h := RequestTracking(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest("GET", "/x", nil)
	req.Header.Set(RequestIDHeader, "given")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "given", rec.Header().Get(RequestIDHeader))
}

func TestRecoverAnswersJSON(t *testing.T) {
	h := Recover(Sentry(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/x", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Internal server error", body["detail"])
}

func TestPanicReachesSentryOnce(t *testing.T) {
	var captured atomic.Int32
	client, err := sentry.NewClient(sentry.ClientOptions{
		BeforeSend: func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
			captured.Add(1)
			return nil
		},
	})
	require.NoError(t, err)
	hub := sentry.CurrentHub()
	hub.BindClient(client)
	defer hub.BindClient(nil)

	h := RequestTracking(nil)(Recover(Sentry(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/api/parse", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, int32(1), captured.Load())
}
