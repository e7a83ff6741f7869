package utils

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/benmeehan/netmon-agent/internal/constants"
	"github.com/benmeehan/netmon-agent/internal/health"
	"github.com/benmeehan/netmon-agent/internal/models"
	"github.com/benmeehan/netmon-agent/pkg/file"
)

// Config represents the structure of the configuration file.
type Config struct {
	API struct {
		BaseURL       string        `yaml:"base_url"`       // Backend API base URL
		Username      string        `yaml:"username"`       // Backend login username
		Password      string        `yaml:"password"`       // Backend login password
		Timeout       time.Duration `yaml:"timeout"`        // HTTP timeout per backend request
		RetryAttempts int           `yaml:"retry_attempts"` // Maximum number of attempts per backend call
		RetryDelay    time.Duration `yaml:"retry_delay"`    // Delay between retry attempts
	} `yaml:"api"`

	MQTT struct {
		Broker        string `yaml:"broker"`         // MQTT broker address
		ClientID      string `yaml:"client_id"`      // MQTT client ID
		CACertificate string `yaml:"ca_certificate"` // Path to the CA certificate
	} `yaml:"mqtt"`

	Identity struct {
		AgentFile string `yaml:"agent_file"` // Path where the generated agent ID is persisted
	} `yaml:"identity"`

	Services struct {
		Notifier struct {
			Topic     string `yaml:"topic"`      // MQTT topic for status-change events
			Enabled   bool   `yaml:"enabled"`    // Enable/disable the notifier service
			QOS       int    `yaml:"qos"`        // MQTT QoS level for event messages
			QueueSize int    `yaml:"queue_size"` // Buffered event queue size
		} `yaml:"notifier"`

		Heartbeat struct {
			Topic    string        `yaml:"topic"`    // MQTT topic for heartbeat service
			Enabled  bool          `yaml:"enabled"`  // Enable/disable heartbeat service
			Interval time.Duration `yaml:"interval"` // Interval between heartbeats
			QOS      int           `yaml:"qos"`      // MQTT QoS level for heartbeat messages
		} `yaml:"heartbeat"`
	} `yaml:"services"`

	Devices []models.DeviceConfig `yaml:"devices"` // Monitored device descriptors
}

// DefaultConfigYAML is the configuration template written on first start:
// backend defaults plus a few example devices covering the common probe
// combinations. MQTT stays unset so both optional services start disabled.
const DefaultConfigYAML = `api:
  base_url: http://localhost:5000/api
  username: Admin
  password: Admin123
  timeout: 30s
  retry_attempts: 3
  retry_delay: 5s

# mqtt:
#   broker: ssl://broker.example.com:8883
#   client_id: netmon-agent
#   ca_certificate: /etc/netmon-agent/ca.crt
#
# identity:
#   agent_file: /var/lib/netmon-agent/identity.json
#
# services:
#   notifier:
#     enabled: true
#     topic: netmon/devices/status-changes
#     qos: 1
#     queue_size: 64
#   heartbeat:
#     enabled: true
#     topic: netmon/agent/heartbeat
#     interval: 60s
#     qos: 1

devices:
  - id: device_router_01
    name: Main Router
    type: router
    address: 192.168.1.1
    location: Server Room A
    probes: [ping, snmp]
    snmp:
      community: public
      port: 161
      version: "2c"
    poll_interval: 30s
    timeout: 10s

  - id: device_switch_01
    name: Core Switch
    type: switch
    address: 192.168.1.10
    location: Server Room A
    probes: [ping, snmp]
    snmp:
      community: public
      port: 161
      version: "2c"
    poll_interval: 30s
    timeout: 10s

  - id: device_firewall_01
    name: Edge Firewall
    type: firewall
    address: 192.168.1.254
    location: DMZ
    probes: [ping, http]
    http:
      endpoint: http://192.168.1.254/api/status
    poll_interval: 30s
    timeout: 10s
`

// LoadConfig loads the YAML configuration from the specified file. When the
// file does not exist yet, the default template is written there first so a
// fresh install starts with a working configuration.
func LoadConfig(filename string, fileClient file.FileOperations) (*Config, error) {
	exists, err := fileClient.IsFileExists(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to check configuration file %s: %w", filename, err)
	}
	if !exists {
		if err := fileClient.WriteFile(filename, DefaultConfigYAML); err != nil {
			return nil, fmt.Errorf("failed to write default configuration to %s: %w", filename, err)
		}
	}

	// Use the ReadYamlFile method from fileClient
	var config Config
	if err := fileClient.ReadYamlFile(filename, &config); err != nil {
		return nil, err
	}

	return &config, nil
}

var knownDeviceTypes = map[models.DeviceType]struct{}{
	models.DeviceTypeRouter:       {},
	models.DeviceTypeSwitch:       {},
	models.DeviceTypeFirewall:     {},
	models.DeviceTypeWirelessAP:   {},
	models.DeviceTypeLoadBalancer: {},
	models.DeviceTypeGeneric:      {},
}

var knownSNMPVersions = map[string]struct{}{"1": {}, "2c": {}}

// BuildDeviceConfigs validates the configured device descriptors and fills in
// defaults for every omitted optional field. Descriptors missing a required
// field are logged and dropped, never fatal, so one bad entry cannot keep the
// remaining devices from being monitored. The returned slice is what the rest
// of the agent treats as immutable for the process lifetime.
func BuildDeviceConfigs(devices []models.DeviceConfig, logger zerolog.Logger) []models.DeviceConfig {
	built := make([]models.DeviceConfig, 0, len(devices))
	seen := make(map[string]struct{}, len(devices))

	for _, device := range devices {
		if device.Enabled != nil && !*device.Enabled {
			logger.Debug().Str("device_id", device.ID).Msg("Skipping disabled device")
			continue
		}

		if err := validateDevice(device); err != nil {
			logger.Error().Err(err).Str("device_id", device.ID).Msg("Dropping invalid device configuration")
			continue
		}

		if _, dup := seen[device.ID]; dup {
			logger.Error().Str("device_id", device.ID).Msg("Dropping device with duplicate ID")
			continue
		}
		seen[device.ID] = struct{}{}

		if _, ok := knownDeviceTypes[device.Type]; !ok {
			logger.Warn().Str("device_id", device.ID).Str("type", string(device.Type)).
				Msg("Unknown device type, no type-specific defaults will apply")
		}

		applyDeviceDefaults(&device, logger)
		built = append(built, device)
	}

	return built
}

// validateDevice checks the fields a descriptor cannot function without.
func validateDevice(device models.DeviceConfig) error {
	switch {
	case device.ID == "":
		return fmt.Errorf("device config is missing required field id")
	case device.Name == "":
		return fmt.Errorf("device %s is missing required field name", device.ID)
	case device.Type == "":
		return fmt.Errorf("device %s is missing required field type", device.ID)
	case device.Address == "":
		return fmt.Errorf("device %s is missing required field address", device.ID)
	case device.Location == "":
		return fmt.Errorf("device %s is missing required field location", device.ID)
	case len(device.Probes) == 0:
		return fmt.Errorf("device %s has no probes configured", device.ID)
	}
	return nil
}

// applyDeviceDefaults fills every omitted optional field in place.
func applyDeviceDefaults(device *models.DeviceConfig, logger zerolog.Logger) {
	if device.PollInterval <= 0 {
		device.PollInterval = constants.DefaultPollInterval
	}
	if device.Timeout <= 0 {
		device.Timeout = constants.DefaultProbeTimeout
	}

	if device.SNMP.Community == "" {
		device.SNMP.Community = constants.DefaultSNMPCommunity
	}
	if device.SNMP.Port == 0 {
		device.SNMP.Port = constants.DefaultSNMPPort
	}
	if device.SNMP.Version == "" {
		device.SNMP.Version = constants.DefaultSNMPVersion
	} else if _, ok := knownSNMPVersions[device.SNMP.Version]; !ok {
		logger.Warn().Str("device_id", device.ID).Str("snmp_version", device.SNMP.Version).
			Msgf("Unsupported SNMP version, using %s", constants.DefaultSNMPVersion)
		device.SNMP.Version = constants.DefaultSNMPVersion
	}

	if device.CriticalThresholds == nil {
		device.CriticalThresholds = health.DefaultCriticalThresholds()
	}
	if device.WarningThresholds == nil {
		device.WarningThresholds = health.DefaultWarningThresholds()
	}
}
