package probes

import "github.com/benmeehan/netmon-agent/internal/models"

// snmpTypeDefaults holds the assumed metric values per device type. After the
// real reads, any metric still missing is filled from this table so the
// classifier always sees a complete set for the device type.
var snmpTypeDefaults = map[models.DeviceType]map[string]float64{
	models.DeviceTypeRouter: {
		"cpu_usage":             25.0,
		"interface_bandwidth":   80.0,
		"routing_table_changes": 5,
		"packet_loss":           0.1,
		"latency":               15.0,
		"uptime":                99.5,
	},
	models.DeviceTypeSwitch: {
		"port_status":      95.0,
		"traffic_per_port": 60.0,
		"broadcast_storms": 2,
		"mac_table_size":   70.0,
		"error_packets":    10,
		"uptime":           99.8,
	},
	models.DeviceTypeFirewall: {
		"active_sessions":  150,
		"blocked_traffic":  25.0,
		"vpn_tunnels":      8,
		"cpu_usage":        30.0,
		"memory_usage":     40.0,
		"threat_detection": 12,
		"uptime":           99.9,
	},
}

// addSNMPTypeDefaults backfills metrics the reads did not produce. Types
// without a default table are left untouched.
func addSNMPTypeDefaults(deviceType models.DeviceType, metrics map[string]float64) {
	for name, value := range snmpTypeDefaults[deviceType] {
		if _, ok := metrics[name]; !ok {
			metrics[name] = value
		}
	}
}
