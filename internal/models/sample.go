package models

import "time"

// MetricSample is the immutable record produced by one probe invocation.
// A failed check is still a sample: the failure is carried in Error and the
// metrics are degraded accordingly, never dropped.
type MetricSample struct {
	DeviceID     string             `json:"device_id"`
	Timestamp    time.Time          `json:"timestamp"`
	Status       Status             `json:"status"`
	Metrics      map[string]float64 `json:"metrics"`
	ResponseTime float64            `json:"response_time"` // milliseconds
	Error        string             `json:"error,omitempty"`
	Probe        ProbeKind          `json:"probe"`
}

// AggregatedSample is the unified per-device record merged from all probe
// samples of one poll cycle.
type AggregatedSample struct {
	DeviceID     string             `json:"device_id"`
	Timestamp    time.Time          `json:"timestamp"`
	Status       Status             `json:"status"`
	Metrics      map[string]float64 `json:"metrics"`
	ResponseTime float64            `json:"response_time"` // milliseconds, mean over probes
	Error        string             `json:"error,omitempty"`
}
