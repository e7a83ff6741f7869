package constants

import "time"

const (
	// DefaultPollInterval is used when a device omits poll_interval.
	DefaultPollInterval = 30 * time.Second
	// DefaultProbeTimeout is used when a device omits timeout.
	DefaultProbeTimeout = 10 * time.Second

	// MaxConsecutiveFailures is the hysteresis limit: a probe reports a device
	// offline only after this many errored checks in a row.
	MaxConsecutiveFailures = 3

	// ErrorCooldown is how long a device loop sleeps after an unexpected
	// fault before resuming its polling cycle.
	ErrorCooldown = 60 * time.Second
)

const (
	// PingPacketCount is the bounded packet count for one reachability check.
	PingPacketCount = 3
	// PingGracePeriod is added to the device timeout before the ping
	// subprocess is killed, so the ping utility's own timeout fires first.
	PingGracePeriod = 5 * time.Second
)

// Response-time limits (milliseconds) applied when a device's threshold maps
// carry no explicit response_time entry.
const (
	ResponseTimeCriticalDefault = 5000.0
	ResponseTimeWarningDefault  = 2000.0
)
