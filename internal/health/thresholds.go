// Package health holds the pure status-classification and result-aggregation
// logic shared by all probes.
package health

import "github.com/benmeehan/netmon-agent/internal/constants"

// DefaultCriticalThresholds returns a fresh copy of the built-in critical
// limits applied when a device configures none.
func DefaultCriticalThresholds() map[string]float64 {
	return map[string]float64{
		"cpu_usage":     90,
		"memory_usage":  90,
		"response_time": constants.ResponseTimeCriticalDefault,
	}
}

// DefaultWarningThresholds returns a fresh copy of the built-in warning
// limits applied when a device configures none.
func DefaultWarningThresholds() map[string]float64 {
	return map[string]float64{
		"cpu_usage":     70,
		"memory_usage":  75,
		"response_time": constants.ResponseTimeWarningDefault,
	}
}

// thresholdOr looks up a limit by name, falling back when absent.
func thresholdOr(limits map[string]float64, name string, fallback float64) float64 {
	if limit, ok := limits[name]; ok {
		return limit
	}
	return fallback
}
