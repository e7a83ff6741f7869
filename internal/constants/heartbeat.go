package constants

import "time"

// StatusAlive is the agent liveness value carried in heartbeat messages.
const StatusAlive = "alive"

// DefaultHeartbeatInterval is used when the heartbeat service is enabled
// without an explicit interval.
const DefaultHeartbeatInterval = 60 * time.Second
