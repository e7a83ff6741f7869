package probes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/benmeehan/netmon-agent/internal/health"
	"github.com/benmeehan/netmon-agent/internal/models"
	"github.com/rs/zerolog"
)

// maxStatusBodyBytes caps how much of a status endpoint response is read.
const maxStatusBodyBytes = 1 << 20

// statusFieldMappings maps field names commonly seen in device status
// endpoints to canonical metric names.
var statusFieldMappings = map[string]string{
	"cpu":            "cpu_usage",
	"cpu_usage":      "cpu_usage",
	"cpu_percent":    "cpu_usage",
	"memory":         "memory_usage",
	"memory_usage":   "memory_usage",
	"memory_percent": "memory_usage",
	"uptime":         "uptime",
	"temperature":    "temperature",
	"temp":           "temperature",
	"load":           "cpu_load",
	"load_avg":       "cpu_load",
}

// HTTPProber checks device health through a management status endpoint.
type HTTPProber struct {
	Device models.DeviceConfig
	Logger zerolog.Logger

	client   *http.Client
	failures int
}

// NewHTTPProber initializes an HTTP prober for one device.
func NewHTTPProber(device models.DeviceConfig, logger zerolog.Logger) *HTTPProber {
	return &HTTPProber{
		Device: device,
		Logger: logger,
		client: &http.Client{Timeout: device.Timeout},
	}
}

func (p *HTTPProber) Kind() models.ProbeKind {
	return models.ProbeHTTP
}

// Check issues one GET against the configured endpoint, or a status URL
// derived from the device address when none is configured. A transport error
// or non-2xx status yields an error sample with no metrics.
func (p *HTTPProber) Check(ctx context.Context) models.MetricSample {
	start := time.Now()
	metrics := make(map[string]float64)

	var errText string
	var responseTime float64

	url := p.Device.HTTP.Endpoint
	if url == "" {
		url = fmt.Sprintf("http://%s/api/status", p.Device.Address)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		errText = fmt.Sprintf("http request for %s failed: %v", url, err)
		responseTime = float64(p.Device.Timeout.Milliseconds())
	} else {
		if p.Device.HTTP.Username != "" {
			req.SetBasicAuth(p.Device.HTTP.Username, p.Device.HTTP.Password)
		}

		resp, err := p.client.Do(req)
		responseTime = float64(time.Since(start)) / float64(time.Millisecond)

		if err != nil {
			errText = fmt.Sprintf("http check failed: %v", err)
			responseTime = float64(p.Device.Timeout.Milliseconds())
			p.Logger.Debug().Str("device_id", p.Device.ID).Err(err).Msg("HTTP check failed")
		} else {
			body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxStatusBodyBytes))
			resp.Body.Close()

			switch {
			case resp.StatusCode < 200 || resp.StatusCode >= 300:
				errText = fmt.Sprintf("http status %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
			case readErr != nil:
				errText = fmt.Sprintf("http body read failed: %v", readErr)
			default:
				metrics = parseStatusBody(body, p.Device.Type)
			}
		}
	}

	if errText != "" {
		p.failures++
	} else {
		p.failures = 0
	}

	status := health.Classify(metrics, responseTime, errText, p.failures,
		p.Device.CriticalThresholds, p.Device.WarningThresholds)

	return models.MetricSample{
		DeviceID:     p.Device.ID,
		Timestamp:    time.Now().UTC(),
		Status:       status,
		Metrics:      metrics,
		ResponseTime: responseTime,
		Error:        errText,
		Probe:        models.ProbeHTTP,
	}
}

// parseStatusBody decodes a structured status payload into canonical metrics,
// with type-specific extractions for routers and firewalls. Bodies that do
// not decode as JSON fall through to plain-text scanning.
func parseStatusBody(body []byte, deviceType models.DeviceType) map[string]float64 {
	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return parseStatusText(string(body))
	}

	metrics := make(map[string]float64)
	for field, name := range statusFieldMappings {
		if value, ok := toFloat(payload[field]); ok {
			metrics[name] = value
		}
	}

	switch deviceType {
	case models.DeviceTypeRouter:
		if section, ok := payload["interfaces"].(map[string]interface{}); ok {
			if value, ok := toFloat(section["utilization"]); ok {
				metrics["interface_bandwidth"] = value
			}
		}
		if section, ok := payload["routing"].(map[string]interface{}); ok {
			if value, ok := toFloat(section["changes"]); ok {
				metrics["routing_table_changes"] = value
			}
		}
	case models.DeviceTypeFirewall:
		if value, ok := toFloat(payload["sessions"]); ok {
			metrics["active_sessions"] = value
		}
		if value, ok := toFloat(payload["blocked"]); ok {
			metrics["blocked_traffic"] = value
		}
		if value, ok := toFloat(payload["vpn"]); ok {
			metrics["vpn_tunnels"] = value
		}
	}

	return metrics
}

// parseStatusText scans a plain-text status page for "cpu:" and "memory:"
// style lines. Lines that do not parse are skipped.
func parseStatusText(text string) map[string]float64 {
	metrics := make(map[string]float64)

	for _, line := range strings.Split(text, "\n") {
		line = strings.ToLower(strings.TrimSpace(line))

		var name string
		switch {
		case strings.Contains(line, "cpu:") || strings.Contains(line, "cpu usage:"):
			name = "cpu_usage"
		case strings.Contains(line, "memory:") || strings.Contains(line, "memory usage:"):
			name = "memory_usage"
		default:
			continue
		}

		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}
		value, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(parts[1]), "%"), 64)
		if err != nil {
			continue
		}
		metrics[name] = value
	}

	return metrics
}

// toFloat coerces the JSON value shapes seen in the wild, numbers and
// numeric strings, to float64.
func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case string:
		parsed, err := strconv.ParseFloat(v, 64)
		return parsed, err == nil
	default:
		return 0, false
	}
}
