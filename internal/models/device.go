package models

import "time"

// DeviceType identifies the class of network device being monitored.
type DeviceType string

const (
	DeviceTypeRouter       DeviceType = "router"
	DeviceTypeSwitch       DeviceType = "switch"
	DeviceTypeFirewall     DeviceType = "firewall"
	DeviceTypeWirelessAP   DeviceType = "wireless_ap"
	DeviceTypeLoadBalancer DeviceType = "load_balancer"
	DeviceTypeGeneric      DeviceType = "generic"
)

// ProbeKind identifies one health-check method for a device.
type ProbeKind string

const (
	ProbePing ProbeKind = "ping"
	ProbeSNMP ProbeKind = "snmp"
	ProbeHTTP ProbeKind = "http"

	// ProbeSNMPFallbackPing tags samples produced by the ping fallback of a
	// build without SNMP support. It is a result tag only and is never valid
	// in a device's configured probe list.
	ProbeSNMPFallbackPing ProbeKind = "snmp_fallback_ping"
)

// SNMPSettings holds the per-device SNMP access parameters.
type SNMPSettings struct {
	Community string `yaml:"community" json:"community"`
	Port      uint16 `yaml:"port" json:"port"`
	Version   string `yaml:"version" json:"version"` // "1" or "2c"
}

// HTTPSettings holds the per-device HTTP status endpoint parameters.
// An empty Endpoint derives the URL from the device address.
type HTTPSettings struct {
	Endpoint string `yaml:"endpoint" json:"endpoint"`
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// DeviceConfig describes one monitored device. It is built from the agent
// configuration once at startup and treated as immutable afterwards.
type DeviceConfig struct {
	ID       string     `yaml:"id" json:"id"`
	Name     string     `yaml:"name" json:"name"`
	Type     DeviceType `yaml:"type" json:"type"`
	Address  string     `yaml:"address" json:"address"`
	Location string     `yaml:"location" json:"location"`

	// Enabled defaults to true when omitted from the configuration.
	Enabled *bool `yaml:"enabled" json:"enabled,omitempty"`

	Probes []ProbeKind  `yaml:"probes" json:"probes"`
	SNMP   SNMPSettings `yaml:"snmp" json:"snmp"`
	HTTP   HTTPSettings `yaml:"http" json:"http"`

	PollInterval time.Duration `yaml:"poll_interval" json:"poll_interval"`
	Timeout      time.Duration `yaml:"timeout" json:"timeout"`

	CriticalThresholds map[string]float64 `yaml:"critical_thresholds" json:"critical_thresholds"`
	WarningThresholds  map[string]float64 `yaml:"warning_thresholds" json:"warning_thresholds"`
}
