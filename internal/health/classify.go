package health

import (
	"github.com/benmeehan/netmon-agent/internal/constants"
	"github.com/benmeehan/netmon-agent/internal/models"
)

// Classify maps one probe outcome to a device status. failures is the number
// of consecutive failed checks including this one; an erroring check is
// reported as offline only once it reaches constants.MaxConsecutiveFailures,
// warning before that. Otherwise the metric values are compared against the
// critical and then the warning limits, and finally the response time against
// its own limits.
func Classify(metrics map[string]float64, responseTime float64, errText string, failures int, critical, warning map[string]float64) models.Status {
	if errText != "" {
		if failures >= constants.MaxConsecutiveFailures {
			return models.StatusOffline
		}
		return models.StatusWarning
	}

	for name, value := range metrics {
		if limit, ok := critical[name]; ok && value >= limit {
			return models.StatusCritical
		}
	}
	for name, value := range metrics {
		if limit, ok := warning[name]; ok && value >= limit {
			return models.StatusWarning
		}
	}

	if responseTime >= thresholdOr(critical, "response_time", constants.ResponseTimeCriticalDefault) {
		return models.StatusCritical
	}
	if responseTime >= thresholdOr(warning, "response_time", constants.ResponseTimeWarningDefault) {
		return models.StatusWarning
	}
	return models.StatusOnline
}
