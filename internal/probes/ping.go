package probes

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/benmeehan/netmon-agent/internal/constants"
	"github.com/benmeehan/netmon-agent/internal/health"
	"github.com/benmeehan/netmon-agent/internal/models"
	"github.com/rs/zerolog"
)

// PingProber checks reachability by shelling out to the system ping utility
// and parsing its textual output.
type PingProber struct {
	Device models.DeviceConfig
	Logger zerolog.Logger

	failures int
}

// NewPingProber initializes a reachability prober for one device.
func NewPingProber(device models.DeviceConfig, logger zerolog.Logger) *PingProber {
	return &PingProber{
		Device: device,
		Logger: logger,
	}
}

func (p *PingProber) Kind() models.ProbeKind {
	return models.ProbePing
}

// Check runs one bounded ping and derives latency, packet loss and uptime
// from its output. A nonzero exit code or subprocess timeout is recorded as
// an error with full packet loss.
func (p *PingProber) Check(ctx context.Context) models.MetricSample {
	start := time.Now()

	cmdCtx, cancel := context.WithTimeout(ctx, p.Device.Timeout+constants.PingGracePeriod)
	defer cancel()

	args := pingArgs(runtime.GOOS, p.Device.Address, constants.PingPacketCount, p.Device.Timeout)
	cmd := exec.CommandContext(cmdCtx, "ping", args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	responseTime := float64(time.Since(start)) / float64(time.Millisecond)

	var metrics map[string]float64
	var errText string

	if err != nil {
		p.failures++

		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		errText = fmt.Sprintf("ping failed: %s", detail)
		if errors.Is(cmdCtx.Err(), context.DeadlineExceeded) {
			errText = fmt.Sprintf("ping timed out after %s", p.Device.Timeout)
			responseTime = float64(p.Device.Timeout.Milliseconds())
		}

		metrics = map[string]float64{"latency": 0, "packet_loss": 100, "uptime": 0}
		p.Logger.Debug().Str("device_id", p.Device.ID).Str("error", errText).Msg("Ping check failed")
	} else {
		p.failures = 0

		latency, loss := parsePingOutput(stdout.String())
		metrics, responseTime = pingMetrics(latency, loss, responseTime)
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
		Probe:        models.ProbePing,
	}
}

// pingArgs builds the platform-specific argument list. Windows ping takes the
// packet count as -n and the timeout as -w in milliseconds; everything else
// takes -c and a per-reply -W in whole seconds.
func pingArgs(goos, address string, count int, timeout time.Duration) []string {
	if goos == "windows" {
		return []string{"-n", strconv.Itoa(count), "-w", strconv.Itoa(int(timeout.Milliseconds())), address}
	}

	secs := int(timeout.Seconds())
	if secs < 1 {
		secs = 1
	}
	return []string{"-c", strconv.Itoa(count), "-W", strconv.Itoa(secs), address}
}

// pingMetrics derives the metric set from a parsed transcript. The wall-clock
// duration stands in for latency when no round-trip time was parsed, and
// uptime is up unless every packet was lost.
func pingMetrics(latency, loss, wallClock float64) (map[string]float64, float64) {
	responseTime := wallClock
	if latency > 0 {
		responseTime = latency
	}

	uptime := 0.0
	if loss < 100 {
		uptime = 100.0
	}

	return map[string]float64{"latency": responseTime, "packet_loss": loss, "uptime": uptime}, responseTime
}

// parsePingOutput extracts the first round-trip time ("time=" token) and the
// packet-loss percentage ("% loss" / "% packet loss" line) from ping output.
// Loss defaults to 100 when no summary line parses.
func parsePingOutput(output string) (latency, loss float64) {
	loss = 100
	lines := strings.Split(output, "\n")

	for _, line := range lines {
		idx := strings.Index(strings.ToLower(line), "time=")
		if idx < 0 {
			continue
		}
		fields := strings.Fields(line[idx+len("time="):])
		if len(fields) == 0 {
			continue
		}
		if value, err := strconv.ParseFloat(strings.TrimSuffix(fields[0], "ms"), 64); err == nil {
			latency = value
		}
		break
	}

	for _, line := range lines {
		if !strings.Contains(line, "% packet loss") && !strings.Contains(line, "% loss") {
			continue
		}
		for _, field := range strings.Fields(line) {
			if !strings.Contains(field, "%") {
				continue
			}
			token := strings.TrimSuffix(strings.Trim(field, "(),"), "%")
			if value, err := strconv.ParseFloat(token, 64); err == nil {
				loss = value
				break
			}
		}
		break
	}

	return latency, loss
}
