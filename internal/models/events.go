package models

import "time"

// StatusChange is published whenever a device's aggregated status differs
// from the previous cycle's.
type StatusChange struct {
	EventID    string    `json:"event_id"`
	DeviceID   string    `json:"device_id"`
	DeviceName string    `json:"device_name"`
	Previous   Status    `json:"previous"`
	Current    Status    `json:"current"`
	Timestamp  time.Time `json:"timestamp"`
}

// AgentHeartbeat reports the agent's own liveness together with a summary of
// the device fleet and the host it runs on.
type AgentHeartbeat struct {
	AgentID           string         `json:"agent_id"`
	Timestamp         time.Time      `json:"timestamp"`
	Status            string         `json:"status"`
	DeviceStatuses    map[Status]int `json:"device_statuses"`
	HostCPUPercent    *float64       `json:"host_cpu_percent,omitempty"`
	HostMemoryPercent *float64       `json:"host_memory_percent,omitempty"`
}
