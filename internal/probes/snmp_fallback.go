package probes

import (
	"context"

	"github.com/benmeehan/netmon-agent/internal/models"
	"github.com/rs/zerolog"
)

// SNMPFallbackProber stands in for the SNMP prober in builds without SNMP
// support. It delegates the check to the reachability prober and re-tags the
// sample so the substitution stays visible downstream.
type SNMPFallbackProber struct {
	delegate Prober
}

// NewSNMPFallbackProber initializes the stand-in, backed by a ping prober for
// the same device.
func NewSNMPFallbackProber(device models.DeviceConfig, logger zerolog.Logger) *SNMPFallbackProber {
	return &SNMPFallbackProber{
		delegate: NewPingProber(device, logger),
	}
}

func (p *SNMPFallbackProber) Kind() models.ProbeKind {
	return models.ProbeSNMPFallbackPing
}

func (p *SNMPFallbackProber) Check(ctx context.Context) models.MetricSample {
	sample := p.delegate.Check(ctx)
	sample.Probe = models.ProbeSNMPFallbackPing
	return sample
}
