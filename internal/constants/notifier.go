package constants

// DefaultEventQueueSize bounds the status-change queue between the monitor
// and the notifier. The monitor drops events instead of blocking when the
// queue is full.
const DefaultEventQueueSize = 64
