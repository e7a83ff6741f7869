package health

import (
	"strings"
	"time"

	"github.com/benmeehan/netmon-agent/internal/models"
)

// Aggregate merges the samples gathered for one device during a single poll
// cycle into the value pushed to the backend. Metric maps are unioned with
// later samples overwriting earlier ones, the overall status is the worst of
// the per-sample statuses, the response time is the mean across samples and
// error texts are joined with "; ". Returns false when there are no samples.
func Aggregate(deviceID string, samples []models.MetricSample) (models.AggregatedSample, bool) {
	if len(samples) == 0 {
		return models.AggregatedSample{}, false
	}

	merged := make(map[string]float64)
	worst := samples[0].Status
	var totalResponse float64
	var errs []string

	for _, sample := range samples {
		for name, value := range sample.Metrics {
			merged[name] = value
		}
		worst = models.WorstOf(worst, sample.Status)
		totalResponse += sample.ResponseTime
		if sample.Error != "" {
			errs = append(errs, sample.Error)
		}
	}

	return models.AggregatedSample{
		DeviceID:     deviceID,
		Timestamp:    time.Now().UTC(),
		Status:       worst,
		Metrics:      merged,
		ResponseTime: totalResponse / float64(len(samples)),
		Error:        strings.Join(errs, "; "),
	}, true
}
