package services

import (
	"encoding/json"
	"testing"
	"time"

	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/benmeehan/netmon-agent/internal/models"
)

// TestHeartbeatService_Start_Success tests the successful start of the HeartbeatService.
func TestHeartbeatService_Start_Success(t *testing.T) {
	// Setup
	mockMQTT := new(MockMQTTClient)
	logger := zerolog.Nop()

	h := NewHeartbeatService(
		"test-topic",
		1*time.Second,
		"netmon-agent-test",
		1,
		mockMQTT,
		cmap.New[models.Status](),
		logger,
	)

	// Execute
	err := h.Start()

	// Assert
	assert.NoError(t, err)

	// Try to start again (should fail)
	err = h.Start()
	assert.Error(t, err)
	assert.Equal(t, "heartbeat service is already running", err.Error())

	// Cleanup
	err = h.Stop()
	assert.NoError(t, err)
}

// TestHeartbeatService_Stop_Success tests the successful stop of the HeartbeatService.
func TestHeartbeatService_Stop_Success(t *testing.T) {
	// Setup
	mockMQTT := new(MockMQTTClient)
	logger := zerolog.Nop()

	h := NewHeartbeatService(
		"test-topic",
		1*time.Second,
		"netmon-agent-test",
		1,
		mockMQTT,
		cmap.New[models.Status](),
		logger,
	)

	// Start the service
	err := h.Start()
	assert.NoError(t, err)

	// Execute
	err = h.Stop()

	// Assert
	assert.NoError(t, err)

	// Try to stop again (should fail)
	err = h.Stop()
	assert.Error(t, err)
	assert.Equal(t, "heartbeat service is not running", err.Error())
}

// TestHeartbeatService_PublishesFleetSummary tests that the heartbeat message
// carries the agent identity, liveness status, and per-status device counts.
func TestHeartbeatService_PublishesFleetSummary(t *testing.T) {
	// Setup
	payloads := make(chan []byte, 4)

	mockMQTT := new(MockMQTTClient)
	mockMQTT.On("Publish", "test-topic", byte(1), false, mock.Anything).
		Run(func(args mock.Arguments) {
			select {
			case payloads <- args.Get(3).([]byte):
			default:
			}
		}).Return(newOkToken())

	statusBoard := cmap.New[models.Status]()
	statusBoard.Set("device_router_01", models.StatusOnline)
	statusBoard.Set("device_switch_01", models.StatusOnline)
	statusBoard.Set("device_firewall_01", models.StatusOffline)

	h := NewHeartbeatService(
		"test-topic",
		50*time.Millisecond,
		"netmon-agent-test",
		1,
		mockMQTT,
		statusBoard,
		zerolog.Nop(),
	)

	// Execute
	assert.NoError(t, h.Start())
	defer h.Stop()

	// Assert
	select {
	case payload := <-payloads:
		var heartbeat models.AgentHeartbeat
		assert.NoError(t, json.Unmarshal(payload, &heartbeat))
		assert.Equal(t, "netmon-agent-test", heartbeat.AgentID)
		assert.Equal(t, "alive", heartbeat.Status)
		assert.Equal(t, map[models.Status]int{
			models.StatusOnline:  2,
			models.StatusOffline: 1,
		}, heartbeat.DeviceStatuses)
		assert.False(t, heartbeat.Timestamp.IsZero())
	case <-time.After(2 * time.Second):
		t.Fatal("heartbeat was never published")
	}
}
