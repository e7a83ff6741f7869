package constants

import "time"

// Backend API client defaults applied when the configuration omits them.
const (
	DefaultAPITimeout       = 30 * time.Second
	DefaultAPIRetryAttempts = 3
	DefaultAPIRetryDelay    = 5 * time.Second
)
