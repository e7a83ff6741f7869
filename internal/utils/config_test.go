package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benmeehan/netmon-agent/internal/constants"
	"github.com/benmeehan/netmon-agent/internal/models"
	"github.com/benmeehan/netmon-agent/pkg/file"
)

// writeTestConfig writes the given YAML content to a fresh temp file and
// returns its path.
func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func boolPtr(b bool) *bool {
	return &b
}

// TestLoadConfig_ParsesFullFile tests that every section of a complete
// configuration file is decoded, including duration strings.
func TestLoadConfig_ParsesFullFile(t *testing.T) {
	// Setup
	path := writeTestConfig(t, `
api:
  base_url: http://backend.local:5000/api
  username: Admin
  password: Admin123
  timeout: 45s
  retry_attempts: 4
  retry_delay: 2s

mqtt:
  broker: ssl://broker.local:8883
  client_id: netmon-agent
  ca_certificate: /etc/netmon-agent/ca.crt

services:
  notifier:
    enabled: true
    topic: netmon/devices/status-changes
    qos: 1
    queue_size: 16
  heartbeat:
    enabled: true
    topic: netmon/agent/heartbeat
    interval: 90s
    qos: 1

devices:
  - id: device_router_01
    name: Main Router
    type: router
    address: 192.168.1.1
    location: Server Room A
    probes: [ping, snmp]
    snmp:
      community: private
      port: 1161
      version: "1"
    poll_interval: 15s
    timeout: 5s
    critical_thresholds:
      cpu_usage: 95
`)

	// Execute
	config, err := LoadConfig(path, file.NewFileService())

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, "http://backend.local:5000/api", config.API.BaseURL)
	assert.Equal(t, 45*time.Second, config.API.Timeout)
	assert.Equal(t, 4, config.API.RetryAttempts)
	assert.Equal(t, 2*time.Second, config.API.RetryDelay)
	assert.Equal(t, "ssl://broker.local:8883", config.MQTT.Broker)
	assert.True(t, config.Services.Notifier.Enabled)
	assert.Equal(t, 16, config.Services.Notifier.QueueSize)
	assert.Equal(t, 90*time.Second, config.Services.Heartbeat.Interval)

	require.Len(t, config.Devices, 1)
	device := config.Devices[0]
	assert.Equal(t, "device_router_01", device.ID)
	assert.Equal(t, models.DeviceTypeRouter, device.Type)
	assert.Equal(t, []models.ProbeKind{models.ProbePing, models.ProbeSNMP}, device.Probes)
	assert.Equal(t, "private", device.SNMP.Community)
	assert.Equal(t, uint16(1161), device.SNMP.Port)
	assert.Equal(t, 15*time.Second, device.PollInterval)
	assert.Equal(t, map[string]float64{"cpu_usage": 95}, device.CriticalThresholds)
}

// TestLoadConfig_WritesDefaultTemplateWhenMissing tests that a missing
// configuration file is replaced by the default template and that the
// template itself parses back into a usable configuration.
func TestLoadConfig_WritesDefaultTemplateWhenMissing(t *testing.T) {
	// Setup
	path := filepath.Join(t.TempDir(), "config.yaml")

	// Execute
	config, err := LoadConfig(path, file.NewFileService())

	// Assert
	assert.NoError(t, err)
	assert.FileExists(t, path)
	assert.Equal(t, "http://localhost:5000/api", config.API.BaseURL)
	assert.Equal(t, 30*time.Second, config.API.Timeout)
	assert.False(t, config.Services.Notifier.Enabled)
	assert.False(t, config.Services.Heartbeat.Enabled)

	require.Len(t, config.Devices, 3)
	assert.Equal(t, "device_firewall_01", config.Devices[2].ID)
	assert.Equal(t, "http://192.168.1.254/api/status", config.Devices[2].HTTP.Endpoint)

	// The written template must survive validation without dropping devices.
	built := BuildDeviceConfigs(config.Devices, zerolog.Nop())
	assert.Len(t, built, 3)
}

// TestLoadConfig_InvalidYaml tests that malformed configuration files fail
// loudly instead of producing a half-initialized config.
func TestLoadConfig_InvalidYaml(t *testing.T) {
	// Setup
	path := writeTestConfig(t, "api: [broken")

	// Execute
	config, err := LoadConfig(path, file.NewFileService())

	// Assert
	assert.Error(t, err)
	assert.Nil(t, config)
}

// TestBuildDeviceConfigs_AppliesDefaults tests that a minimal descriptor is
// filled with poll, timeout, SNMP, and threshold defaults.
func TestBuildDeviceConfigs_AppliesDefaults(t *testing.T) {
	// Setup
	devices := []models.DeviceConfig{{
		ID:       "device_switch_01",
		Name:     "Core Switch",
		Type:     models.DeviceTypeSwitch,
		Address:  "192.168.1.10",
		Location: "Server Room A",
		Probes:   []models.ProbeKind{models.ProbePing},
	}}

	// Execute
	built := BuildDeviceConfigs(devices, zerolog.Nop())

	// Assert
	assert.Len(t, built, 1)
	device := built[0]
	assert.Equal(t, constants.DefaultPollInterval, device.PollInterval)
	assert.Equal(t, constants.DefaultProbeTimeout, device.Timeout)
	assert.Equal(t, constants.DefaultSNMPCommunity, device.SNMP.Community)
	assert.Equal(t, constants.DefaultSNMPPort, device.SNMP.Port)
	assert.Equal(t, constants.DefaultSNMPVersion, device.SNMP.Version)
	assert.Equal(t, 90.0, device.CriticalThresholds["cpu_usage"])
	assert.Equal(t, 70.0, device.WarningThresholds["cpu_usage"])
}

// TestBuildDeviceConfigs_DropsInvalidDevices tests that descriptors missing a
// required field are dropped while valid ones survive.
func TestBuildDeviceConfigs_DropsInvalidDevices(t *testing.T) {
	// Setup
	valid := models.DeviceConfig{
		ID:       "device_router_01",
		Name:     "Main Router",
		Type:     models.DeviceTypeRouter,
		Address:  "192.168.1.1",
		Location: "Server Room A",
		Probes:   []models.ProbeKind{models.ProbePing},
	}
	missingName := valid
	missingName.ID = "device_router_02"
	missingName.Name = ""
	missingAddress := valid
	missingAddress.ID = "device_router_03"
	missingAddress.Address = ""
	noProbes := valid
	noProbes.ID = "device_router_04"
	noProbes.Probes = nil

	// Execute
	built := BuildDeviceConfigs([]models.DeviceConfig{valid, missingName, missingAddress, noProbes}, zerolog.Nop())

	// Assert
	assert.Len(t, built, 1)
	assert.Equal(t, "device_router_01", built[0].ID)
}

// TestBuildDeviceConfigs_SkipsDisabledAndDuplicates tests the enabled flag
// and duplicate-ID handling.
func TestBuildDeviceConfigs_SkipsDisabledAndDuplicates(t *testing.T) {
	// Setup
	device := models.DeviceConfig{
		ID:       "device_fw_01",
		Name:     "Edge Firewall",
		Type:     models.DeviceTypeFirewall,
		Address:  "192.168.1.254",
		Location: "DMZ",
		Probes:   []models.ProbeKind{models.ProbeHTTP},
	}
	disabled := device
	disabled.ID = "device_fw_02"
	disabled.Enabled = boolPtr(false)
	duplicate := device
	duplicate.Name = "Shadow Firewall"

	// Execute
	built := BuildDeviceConfigs([]models.DeviceConfig{device, disabled, duplicate}, zerolog.Nop())

	// Assert
	assert.Len(t, built, 1)
	assert.Equal(t, "Edge Firewall", built[0].Name)
}

// TestBuildDeviceConfigs_KeepsExplicitSettings tests that explicitly
// configured values are never overwritten by defaults, including threshold
// maps given only in part.
func TestBuildDeviceConfigs_KeepsExplicitSettings(t *testing.T) {
	// Setup
	devices := []models.DeviceConfig{{
		ID:                 "device_router_01",
		Name:               "Main Router",
		Type:               models.DeviceTypeRouter,
		Address:            "192.168.1.1",
		Location:           "Server Room A",
		Probes:             []models.ProbeKind{models.ProbeSNMP},
		SNMP:               models.SNMPSettings{Community: "private", Port: 1161, Version: "1"},
		PollInterval:       15 * time.Second,
		Timeout:            5 * time.Second,
		CriticalThresholds: map[string]float64{"cpu_usage": 95},
	}}

	// Execute
	built := BuildDeviceConfigs(devices, zerolog.Nop())

	// Assert
	device := built[0]
	assert.Equal(t, 15*time.Second, device.PollInterval)
	assert.Equal(t, 5*time.Second, device.Timeout)
	assert.Equal(t, models.SNMPSettings{Community: "private", Port: 1161, Version: "1"}, device.SNMP)
	// A partial threshold map is taken verbatim, not merged with defaults.
	assert.Equal(t, map[string]float64{"cpu_usage": 95}, device.CriticalThresholds)
	assert.Equal(t, 75.0, device.WarningThresholds["memory_usage"])
}

// TestBuildDeviceConfigs_NormalizesUnknownSNMPVersion tests that an
// unsupported SNMP version falls back to the default instead of reaching the
// prober.
func TestBuildDeviceConfigs_NormalizesUnknownSNMPVersion(t *testing.T) {
	// Setup
	devices := []models.DeviceConfig{{
		ID:       "device_switch_01",
		Name:     "Core Switch",
		Type:     models.DeviceTypeSwitch,
		Address:  "192.168.1.10",
		Location: "Server Room A",
		Probes:   []models.ProbeKind{models.ProbeSNMP},
		SNMP:     models.SNMPSettings{Version: "3"},
	}}

	// Execute
	built := BuildDeviceConfigs(devices, zerolog.Nop())

	// Assert
	assert.Equal(t, constants.DefaultSNMPVersion, built[0].SNMP.Version)
}
