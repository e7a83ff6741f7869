package probes

import (
	"context"
	"testing"
	"time"

	"github.com/benmeehan/netmon-agent/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type stubProber struct {
	kind   models.ProbeKind
	sample models.MetricSample
}

func (s *stubProber) Kind() models.ProbeKind {
	return s.kind
}

func (s *stubProber) Check(_ context.Context) models.MetricSample {
	return s.sample
}

// TestNew_BuildsConfiguredProbers tests that each configured probe kind gets
// its own prober.
func TestNew_BuildsConfiguredProbers(t *testing.T) {
	// Setup
	device := models.DeviceConfig{
		ID:      "dev-1",
		Address: "192.0.2.10",
		Probes:  []models.ProbeKind{models.ProbePing, models.ProbeHTTP},
		Timeout: time.Second,
	}

	// Execute
	probers := New(device, zerolog.Nop())

	// Assert
	assert.Len(t, probers, 2)
	assert.Equal(t, models.ProbePing, probers[0].Kind())
	assert.Equal(t, models.ProbeHTTP, probers[1].Kind())
}

// TestNew_SkipsUnknownKinds tests that an unrecognized probe entry is dropped
// without affecting the rest.
func TestNew_SkipsUnknownKinds(t *testing.T) {
	// Setup
	device := models.DeviceConfig{
		ID:      "dev-1",
		Address: "192.0.2.10",
		Probes:  []models.ProbeKind{models.ProbeKind("telnet"), models.ProbePing},
		Timeout: time.Second,
	}

	// Execute
	probers := New(device, zerolog.Nop())

	// Assert
	assert.Len(t, probers, 1)
	assert.Equal(t, models.ProbePing, probers[0].Kind())
}

// TestNew_FallbackTagNeverConfigurable tests that the fallback result tag is
// not accepted as a configured probe kind.
func TestNew_FallbackTagNeverConfigurable(t *testing.T) {
	// Setup
	device := models.DeviceConfig{
		ID:      "dev-1",
		Address: "192.0.2.10",
		Probes:  []models.ProbeKind{models.ProbeSNMPFallbackPing},
		Timeout: time.Second,
	}

	// Execute
	probers := New(device, zerolog.Nop())

	// Assert
	assert.Empty(t, probers)
}
