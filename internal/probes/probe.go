// Package probes implements the protocol-specific health checks run against
// monitored devices.
package probes

import (
	"context"

	"github.com/benmeehan/netmon-agent/internal/models"
	"github.com/rs/zerolog"
)

// Prober runs one protocol-specific health check against a single device.
// A prober carries the consecutive-failure history for its device and probe
// kind and is driven by exactly one monitor goroutine, so implementations
// need no internal locking.
type Prober interface {
	Kind() models.ProbeKind                       // Probe variant producing the sample
	Check(ctx context.Context) models.MetricSample // Run one check; failures are encoded in the sample, never returned
}

// New builds the probers configured for a device. Unknown probe kinds are
// logged and skipped so one bad entry does not take the device out of
// monitoring.
func New(device models.DeviceConfig, logger zerolog.Logger) []Prober {
	probers := make([]Prober, 0, len(device.Probes))

	for _, kind := range device.Probes {
		switch kind {
		case models.ProbePing:
			probers = append(probers, NewPingProber(device, logger))
		case models.ProbeSNMP:
			probers = append(probers, newSNMPProber(device, logger))
		case models.ProbeHTTP:
			probers = append(probers, NewHTTPProber(device, logger))
		default:
			logger.Warn().
				Str("device_id", device.ID).
				Str("probe", string(kind)).
				Msg("Unknown probe kind, skipping")
		}
	}

	return probers
}
