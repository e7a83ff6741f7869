package services

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/benmeehan/netmon-agent/internal/models"
)

// testStatusChange returns a representative transition event.
func testStatusChange(eventID string) models.StatusChange {
	return models.StatusChange{
		EventID:    eventID,
		DeviceID:   "device_lab_01",
		DeviceName: "Lab Router",
		Previous:   models.StatusOnline,
		Current:    models.StatusOffline,
		Timestamp:  time.Now().UTC(),
	}
}

// TestNotifierService_StartAndStop tests the running-state guards of the
// NotifierService.
func TestNotifierService_StartAndStop(t *testing.T) {
	// Setup
	events := make(chan models.StatusChange, 4)
	service := NewNotifierService("netmon/status-changes", 1, new(MockMQTTClient), events, zerolog.Nop())

	// Execute
	err := service.Start()

	// Assert
	assert.NoError(t, err)

	// Try to start again (should fail)
	err = service.Start()
	assert.Error(t, err)
	assert.Equal(t, "notifier service is already running", err.Error())

	// Cleanup
	err = service.Stop()
	assert.NoError(t, err)
}

// TestNotifierService_PublishesEvents tests that a queued status change is
// published as JSON on the configured topic.
func TestNotifierService_PublishesEvents(t *testing.T) {
	// Setup
	payloads := make(chan []byte, 4)

	mockMQTT := new(MockMQTTClient)
	mockMQTT.On("Publish", "netmon/status-changes", byte(1), false, mock.Anything).
		Run(func(args mock.Arguments) {
			select {
			case payloads <- args.Get(3).([]byte):
			default:
			}
		}).Return(newOkToken())

	events := make(chan models.StatusChange, 4)
	service := NewNotifierService("netmon/status-changes", 1, mockMQTT, events, zerolog.Nop())
	assert.NoError(t, service.Start())
	defer service.Stop()

	// Execute
	events <- testStatusChange("event-1")

	// Assert
	select {
	case payload := <-payloads:
		var published models.StatusChange
		assert.NoError(t, json.Unmarshal(payload, &published))
		assert.Equal(t, "event-1", published.EventID)
		assert.Equal(t, "device_lab_01", published.DeviceID)
		assert.Equal(t, models.StatusOnline, published.Previous)
		assert.Equal(t, models.StatusOffline, published.Current)
	case <-time.After(2 * time.Second):
		t.Fatal("event was never published")
	}
}

// TestNotifierService_DrainsQueueOnStop tests that events still buffered when
// the service stops are published before Stop returns.
func TestNotifierService_DrainsQueueOnStop(t *testing.T) {
	// Setup
	payloads := make(chan []byte, 4)

	mockMQTT := new(MockMQTTClient)
	mockMQTT.On("Publish", "netmon/status-changes", byte(1), false, mock.Anything).
		Run(func(args mock.Arguments) {
			select {
			case payloads <- args.Get(3).([]byte):
			default:
			}
		}).Return(newOkToken())

	events := make(chan models.StatusChange, 4)
	events <- testStatusChange("event-1")
	events <- testStatusChange("event-2")

	service := NewNotifierService("netmon/status-changes", 1, mockMQTT, events, zerolog.Nop())

	// Execute
	assert.NoError(t, service.Start())
	assert.NoError(t, service.Stop())

	// Assert
	assert.Len(t, payloads, 2)
}

// TestNotifierService_RetriesFailedPublish tests that a failed publish is
// retried until the broker accepts the event.
func TestNotifierService_RetriesFailedPublish(t *testing.T) {
	// Setup
	failToken := new(MockToken)
	failToken.On("Wait").Return(true)
	failToken.On("Error").Return(assert.AnError)

	published := make(chan struct{}, 1)
	okToken := newOkToken()

	mockMQTT := new(MockMQTTClient)
	mockMQTT.On("Publish", "netmon/status-changes", byte(1), false, mock.Anything).
		Return(failToken).Once()
	mockMQTT.On("Publish", "netmon/status-changes", byte(1), false, mock.Anything).
		Run(func(args mock.Arguments) {
			select {
			case published <- struct{}{}:
			default:
			}
		}).Return(okToken)

	events := make(chan models.StatusChange, 4)
	service := NewNotifierService("netmon/status-changes", 1, mockMQTT, events, zerolog.Nop())
	assert.NoError(t, service.Start())
	defer service.Stop()

	// Execute
	events <- testStatusChange("event-1")

	// Assert
	select {
	case <-published:
		mockMQTT.AssertNumberOfCalls(t, "Publish", 2)
	case <-time.After(5 * time.Second):
		t.Fatal("publish was never retried")
	}
}
