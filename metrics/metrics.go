package metrics

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/getsentry/sentry-go"
)

const (
	successStatusCodeThreshold = http.StatusBadRequest
	secondsPerMinute           = 60
	secondsPerHour             = 3600
	bytesToMB                  = 1024 * 1024
)

// Recorder counts conversions and reports requests and conversions to
// Sentry as spans. Spans are no-ops while Sentry is not configured.
type Recorder struct {
	startTime   time.Time
	version     string
	conversions atomic.Int64
	failures    atomic.Int64
	events      atomic.Int64
}

func NewRecorder(version string) *Recorder {
	return &Recorder{
		startTime: time.Now(),
		version:   version,
	}
}

// RecordAPIRequest records API request metrics
func (m *Recorder) RecordAPIRequest(ctx context.Context, endpoint string, statusCode int, duration time.Duration) {
	span := sentry.StartSpan(ctx, "api.request")
	defer span.Finish()

	span.SetTag("endpoint", endpoint)
	span.SetTag("status_code", fmt.Sprintf("%d", statusCode))
	span.SetData("duration_ms", duration.Milliseconds())

	if statusCode < successStatusCodeThreshold {
		span.Status = sentry.SpanStatusOK
	} else {
		span.Status = sentry.SpanStatusInternalError
	}
	span.Description = fmt.Sprintf("API Request: %s", endpoint)
}

// RecordConversion counts one score conversion
func (m *Recorder) RecordConversion(ctx context.Context, events, warnings int, duration time.Duration, success bool) {
	m.conversions.Add(1)
	if success {
		m.events.Add(int64(events))
	} else {
		m.failures.Add(1)
	}

	span := sentry.StartSpan(ctx, "score.convert")
	defer span.Finish()

	span.SetTag("success", fmt.Sprintf("%t", success))
	span.SetData("duration_ms", duration.Milliseconds())
	span.SetData("events", events)
	span.SetData("warnings", warnings)
	if success {
		span.Status = sentry.SpanStatusOK
	} else {
		span.Status = sentry.SpanStatusInvalidArgument
	}
	span.Description = fmt.Sprintf("Conversion: %d events", events)
}

type Snapshot struct {
	Status    string        `json:"status"`
	Uptime    string        `json:"uptime"`
	Timestamp string        `json:"timestamp"`
	Version   string        `json:"version"`
	StartTime string        `json:"start_time"`
	System    SystemMetrics `json:"system"`
	API       APIMetrics    `json:"api"`
}

type SystemMetrics struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutine"`
	MemAllocMB   uint64 `json:"mem_alloc_mb"`
	MemTotalMB   uint64 `json:"mem_total_mb"`
	NumGC        uint32 `json:"num_gc"`
}

type APIMetrics struct {
	Conversions       int64 `json:"conversions"`
	FailedConversions int64 `json:"failed_conversions"`
	EventsServed      int64 `json:"events_served"`
}

func (m *Recorder) Snapshot() Snapshot {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return Snapshot{
		Status:    "healthy",
		Uptime:    formatUptime(time.Since(m.startTime)),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   m.version,
		StartTime: m.startTime.UTC().Format(time.RFC3339),
		System: SystemMetrics{
			GoVersion:    runtime.Version(),
			NumGoroutine: runtime.NumGoroutine(),
			MemAllocMB:   mem.Alloc / bytesToMB,
			MemTotalMB:   mem.TotalAlloc / bytesToMB,
			NumGC:        mem.NumGC,
		},
		API: APIMetrics{
			Conversions:       m.conversions.Load(),
			FailedConversions: m.failures.Load(),
			EventsServed:      m.events.Load(),
		},
	}
}

// formatUptime formats the uptime duration with seconds rounded to 2 decimal places
func formatUptime(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % secondsPerMinute
	seconds := d.Seconds() - float64(hours*secondsPerHour) - float64(minutes*secondsPerMinute)

	if hours > 0 {
		return fmt.Sprintf("%dh%dm%.2fs", hours, minutes, seconds)
	}
	if minutes > 0 {
		return fmt.Sprintf("%dm%.2fs", minutes, seconds)
	}
	return fmt.Sprintf("%.2fs", seconds)
}
