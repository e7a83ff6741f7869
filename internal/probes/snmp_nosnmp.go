//go:build nosnmp

package probes

import (
	"github.com/benmeehan/netmon-agent/internal/models"
	"github.com/rs/zerolog"
)

// newSNMPProber returns the ping-backed stand-in when SNMP support is
// compiled out.
func newSNMPProber(device models.DeviceConfig, logger zerolog.Logger) Prober {
	logger.Warn().
		Str("device_id", device.ID).
		Msg("SNMP support not compiled in, falling back to ping")

	return NewSNMPFallbackProber(device, logger)
}
